package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateAppliesSchemaAndSeedsDepartments(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()
	db := sqlx.NewDb(raw, "sqlmock")

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS departments").WillReturnResult(sqlmock.NewResult(0, 0))
	for _, code := range Departments {
		mock.ExpectExec("INSERT INTO departments").
			WithArgs(code, "Department of "+code).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateRollsBackOnSchemaError(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()
	db := sqlx.NewDb(raw, "sqlmock")

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	err = Migrate(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply schema")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchemaTiesReasonToStatus(t *testing.T) {
	assert.True(t, strings.Contains(schemaSQL, "CONSTRAINT lesson_attendance_reason_status CHECK (status = 'Not Taught' OR reason IS NULL)"))
	assert.True(t, strings.Contains(schemaSQL, "UNIQUE (lesson_date, class_name, unit_name, trainer_name, time_slot)"))
}
