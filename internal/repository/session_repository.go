package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/rvnp-attendance-api/internal/models"
)

// SessionRepository persists the login session lifecycle.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new instance of SessionRepository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create persists a new session row.
func (r *SessionRepository) Create(ctx context.Context, session *models.UserSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO user_sessions (id, user_id, created_at, expires_at) VALUES (:id, :user_id, :created_at, :expires_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return classify("create session", err)
	}
	return nil
}

// FindByID returns a session by identifier.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.UserSession, error) {
	const query = `SELECT id, user_id, created_at, expires_at, revoked_at FROM user_sessions WHERE id = $1 LIMIT 1`
	var session models.UserSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, classify("find session", err)
	}
	return &session, nil
}

// Revoke ends a single session.
func (r *SessionRepository) Revoke(ctx context.Context, id string, revokedAt time.Time) error {
	const query = `UPDATE user_sessions SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`
	if _, err := r.db.ExecContext(ctx, query, id, revokedAt); err != nil {
		return classify("revoke session", err)
	}
	return nil
}

// RevokeByUser ends every open session of a user.
func (r *SessionRepository) RevokeByUser(ctx context.Context, userID int64, revokedAt time.Time) error {
	const query = `UPDATE user_sessions SET revoked_at = $2 WHERE user_id = $1 AND revoked_at IS NULL`
	if _, err := r.db.ExecContext(ctx, query, userID, revokedAt); err != nil {
		return classify("revoke user sessions", err)
	}
	return nil
}
