package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rvnp-attendance-api/internal/models"
)

func TestAnalyticsRecordsAppliesEveryFilter(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM lesson_attendance WHERE department_code = $1 AND lesson_date >= $2 AND lesson_date <= $3 AND trainer_name = ANY($4) AND class_name = ANY($5) ORDER BY lesson_date, time_slot, id")).
		WithArgs("ICT", from, to, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(lessonRowColumns).
			AddRow(int64(1), from, "ICT1A", "DATABASES", "J.DOE", "7.30-9.00", "Taught", nil, nil, "r1", "ICT", from))

	records, err := repo.Records(context.Background(), models.AttendanceFilter{
		Department: "ICT",
		Range:      models.DateRange{From: &from, To: &to},
		Trainers:   []string{"J.DOE"},
		Classes:    []string{"ICT1A"},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.LessonTaught, records[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRecordsUnfiltered(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + lessonColumns + " FROM lesson_attendance ORDER BY lesson_date, time_slot, id")).
		WillReturnRows(sqlmock.NewRows(lessonRowColumns))

	records, err := repo.Records(context.Background(), models.AttendanceFilter{})
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}
