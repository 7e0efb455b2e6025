package models

import (
	"strings"
	"time"
)

// EntityKind identifies one of the department-owned reference tables.
type EntityKind string

const (
	EntityTrainer EntityKind = "trainer"
	EntityClass   EntityKind = "class"
	EntityUnit    EntityKind = "unit"
)

// EntityKindConfig holds the storage identifiers and label of an entity kind.
type EntityKindConfig struct {
	Table  string
	Column string
	Label  string
}

var entityKinds = map[EntityKind]EntityKindConfig{
	EntityTrainer: {Table: "trainers", Column: "trainer_name", Label: "Trainer"},
	EntityClass:   {Table: "classes", Column: "class_name", Label: "Class"},
	EntityUnit:    {Table: "units", Column: "unit_name", Label: "Unit"},
}

// EntityKinds lists the supported kinds in display order.
var EntityKinds = []EntityKind{EntityTrainer, EntityClass, EntityUnit}

// ParseEntityKind accepts singular or plural kind names, e.g. "trainers".
func ParseEntityKind(raw string) (EntityKind, bool) {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case "trainers":
		value = string(EntityTrainer)
	case "classes":
		value = string(EntityClass)
	case "units":
		value = string(EntityUnit)
	}
	kind := EntityKind(value)
	_, ok := entityKinds[kind]
	return kind, ok
}

// Valid returns true when the kind is supported.
func (k EntityKind) Valid() bool {
	_, ok := entityKinds[k]
	return ok
}

// Config returns the storage configuration of the kind.
func (k EntityKind) Config() EntityKindConfig {
	return entityKinds[k]
}

// Entity is a trainer, class or unit row.
type Entity struct {
	ID             int64      `db:"id" json:"id"`
	Kind           EntityKind `db:"-" json:"kind"`
	Name           string     `db:"name" json:"name"`
	DepartmentCode string     `db:"department_code" json:"department_code"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// WriteOutcome distinguishes a fresh insert from an ignored duplicate.
type WriteOutcome string

const (
	OutcomeCreated       WriteOutcome = "created"
	OutcomeAlreadyExists WriteOutcome = "already_exists"
)

// EntityResult is returned by insert-or-ignore entity writes.
type EntityResult struct {
	Outcome WriteOutcome `json:"outcome"`
	Entity  Entity       `json:"entity"`
}

// CreateEntityRequest is the payload for adding a reference entity.
type CreateEntityRequest struct {
	Name       string `json:"name" validate:"required,max=128"`
	Department string `json:"department"`
}

// ImportSkip records one row rejected by a bulk import.
type ImportSkip struct {
	Row    int    `json:"row"`
	Name   string `json:"name,omitempty"`
	Reason string `json:"reason"`
}

// ImportResult summarises a bulk import.
type ImportResult struct {
	Kind            EntityKind   `json:"kind"`
	Imported        int          `json:"imported"`
	AlreadyExisting int          `json:"already_existing"`
	Skipped         []ImportSkip `json:"skipped"`
}
