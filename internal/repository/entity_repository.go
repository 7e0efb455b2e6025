package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/rvnp-attendance-api/internal/models"
)

// EntityRepository stores trainers, classes and units through one code path.
// Table and column identifiers come only from the closed EntityKind configuration.
type EntityRepository struct {
	db *sqlx.DB
}

// NewEntityRepository creates a new instance of EntityRepository.
func NewEntityRepository(db *sqlx.DB) *EntityRepository {
	return &EntityRepository{db: db}
}

func entityConfig(kind models.EntityKind) (models.EntityKindConfig, error) {
	if !kind.Valid() {
		return models.EntityKindConfig{}, fmt.Errorf("unsupported entity kind %q", kind)
	}
	return kind.Config(), nil
}

func entitySelect(cfg models.EntityKindConfig) string {
	return fmt.Sprintf("SELECT id, %s AS name, department_code, created_at FROM %s", cfg.Column, cfg.Table)
}

// Insert adds the entity unless (name, department) already exists, reporting which happened.
func (r *EntityRepository) Insert(ctx context.Context, kind models.EntityKind, name, department string) (*models.EntityResult, error) {
	cfg, err := entityConfig(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s, department_code) VALUES ($1, $2) ON CONFLICT (%s, department_code) DO NOTHING RETURNING id, %s AS name, department_code, created_at",
		cfg.Table, cfg.Column, cfg.Column, cfg.Column,
	)
	var entity models.Entity
	err = r.db.GetContext(ctx, &entity, query, name, department)
	switch {
	case err == nil:
		entity.Kind = kind
		return &models.EntityResult{Outcome: models.OutcomeCreated, Entity: entity}, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, classify("insert "+cfg.Table, err)
	}

	existing, err := r.FindByName(ctx, kind, name, department)
	if err != nil {
		return nil, err
	}
	return &models.EntityResult{Outcome: models.OutcomeAlreadyExists, Entity: *existing}, nil
}

// List returns entities of a kind. An empty department lists every department.
func (r *EntityRepository) List(ctx context.Context, kind models.EntityKind, department string) ([]models.Entity, error) {
	cfg, err := entityConfig(kind)
	if err != nil {
		return nil, err
	}

	query := entitySelect(cfg)
	var args []interface{}
	if department != "" {
		query += " WHERE department_code = $1 ORDER BY " + cfg.Column
		args = append(args, department)
	} else {
		query += " ORDER BY department_code, " + cfg.Column
	}

	var entities []models.Entity
	if err := r.db.SelectContext(ctx, &entities, query, args...); err != nil {
		return nil, classify("list "+cfg.Table, err)
	}
	for i := range entities {
		entities[i].Kind = kind
	}
	return entities, nil
}

// Names returns the entity names of one department ordered alphabetically.
func (r *EntityRepository) Names(ctx context.Context, kind models.EntityKind, department string) ([]string, error) {
	cfg, err := entityConfig(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE department_code = $1 ORDER BY %s", cfg.Column, cfg.Table, cfg.Column)
	var names []string
	if err := r.db.SelectContext(ctx, &names, query, department); err != nil {
		return nil, classify("list "+cfg.Table+" names", err)
	}
	return names, nil
}

// FindByID returns an entity by identifier.
func (r *EntityRepository) FindByID(ctx context.Context, kind models.EntityKind, id int64) (*models.Entity, error) {
	cfg, err := entityConfig(kind)
	if err != nil {
		return nil, err
	}
	var entity models.Entity
	if err := r.db.GetContext(ctx, &entity, entitySelect(cfg)+" WHERE id = $1", id); err != nil {
		return nil, classify("find "+cfg.Table, err)
	}
	entity.Kind = kind
	return &entity, nil
}

// FindByName returns an entity by its natural key.
func (r *EntityRepository) FindByName(ctx context.Context, kind models.EntityKind, name, department string) (*models.Entity, error) {
	cfg, err := entityConfig(kind)
	if err != nil {
		return nil, err
	}
	query := entitySelect(cfg) + fmt.Sprintf(" WHERE %s = $1 AND department_code = $2", cfg.Column)
	var entity models.Entity
	if err := r.db.GetContext(ctx, &entity, query, name, department); err != nil {
		return nil, classify("find "+cfg.Table+" by name", err)
	}
	entity.Kind = kind
	return &entity, nil
}

// Exists reports whether (name, department) is present for the kind.
func (r *EntityRepository) Exists(ctx context.Context, kind models.EntityKind, name, department string) (bool, error) {
	cfg, err := entityConfig(kind)
	if err != nil {
		return false, err
	}
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE %s = $1 AND department_code = $2)", cfg.Table, cfg.Column)
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, name, department); err != nil {
		return false, classify("check "+cfg.Table, err)
	}
	return exists, nil
}

// Delete removes an entity row. Attendance history referencing the name is kept.
func (r *EntityRepository) Delete(ctx context.Context, kind models.EntityKind, id int64) error {
	cfg, err := entityConfig(kind)
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", cfg.Table), id)
	if err != nil {
		return classify("delete "+cfg.Table, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return classify("delete "+cfg.Table, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
