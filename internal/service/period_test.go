package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rvnp-attendance-api/internal/models"
	appErrors "github.com/noah-isme/rvnp-attendance-api/pkg/errors"
)

func date(value string) time.Time {
	t, err := time.Parse(models.DateLayout, value)
	if err != nil {
		panic(err)
	}
	return t
}

func datePtr(value string) *time.Time {
	t := date(value)
	return &t
}

func TestResolvePeriod(t *testing.T) {
	// Thursday afternoon
	today := time.Date(2024, time.March, 14, 15, 30, 0, 0, time.UTC)

	cases := []struct {
		name string
		kind models.PeriodKind
		year int
		from string
		to   string
	}{
		{name: "today", kind: models.PeriodToday, from: "2024-03-14", to: "2024-03-14"},
		{name: "this week", kind: models.PeriodThisWeek, from: "2024-03-11"},
		{name: "this month", kind: models.PeriodThisMonth, from: "2024-03-01", to: "2024-03-31"},
		{name: "this year", kind: models.PeriodThisYear, from: "2024-01-01", to: "2024-12-31"},
		{name: "term 1", kind: models.PeriodTerm1, from: "2024-01-01", to: "2024-03-31"},
		{name: "term 2", kind: models.PeriodTerm2, from: "2024-05-01", to: "2024-07-31"},
		{name: "term 3 explicit year", kind: models.PeriodTerm3, year: 2023, from: "2023-09-01", to: "2023-11-30"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolvePeriod(tc.kind, today, tc.year, nil, nil)
			require.NoError(t, err)
			require.NotNil(t, got.From)
			assert.Equal(t, date(tc.from), *got.From)
			if tc.to == "" {
				assert.Nil(t, got.To)
			} else {
				require.NotNil(t, got.To)
				assert.Equal(t, date(tc.to), *got.To)
			}
		})
	}
}

func TestResolvePeriodAllIsUnbounded(t *testing.T) {
	got, err := ResolvePeriod(models.PeriodAll, time.Now(), 0, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, got.From)
	assert.Nil(t, got.To)
	assert.True(t, got.Contains(date("1999-01-01")))
}

func TestResolvePeriodTermOneExcludesApril(t *testing.T) {
	got, err := ResolvePeriod(models.PeriodTerm1, date("2024-06-01"), 2024, nil, nil)
	require.NoError(t, err)
	assert.True(t, got.Contains(date("2024-03-31")))
	assert.False(t, got.Contains(date("2024-04-01")))
	assert.False(t, got.Contains(date("2023-12-31")))
}

func TestResolvePeriodThisWeekOnSunday(t *testing.T) {
	got, err := ResolvePeriod(models.PeriodThisWeek, date("2024-03-17"), 0, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, date("2024-03-11"), *got.From)
}

func TestResolvePeriodCustom(t *testing.T) {
	got, err := ResolvePeriod(models.PeriodCustom, time.Now(), 0, datePtr("2024-02-01"), datePtr("2024-02-10"))
	require.NoError(t, err)
	assert.Equal(t, date("2024-02-01"), *got.From)
	assert.Equal(t, date("2024-02-10"), *got.To)

	_, err = ResolvePeriod(models.PeriodCustom, time.Now(), 0, datePtr("2024-02-10"), datePtr("2024-02-01"))
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = ResolvePeriod(models.PeriodCustom, time.Now(), 0, datePtr("2024-02-10"), nil)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestResolvePeriodIsDeterministic(t *testing.T) {
	today := date("2024-09-20")
	first, err := ResolvePeriod(models.PeriodTerm3, today, 0, nil, nil)
	require.NoError(t, err)
	second, err := ResolvePeriod(models.PeriodTerm3, today, 0, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolvePeriodRejectsUnknownKindAndYear(t *testing.T) {
	_, err := ResolvePeriod(models.PeriodKind("fortnight"), time.Now(), 0, nil, nil)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = ResolvePeriod(models.PeriodTerm1, time.Now(), 12000, nil, nil)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
