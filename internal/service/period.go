package service

import (
	"fmt"
	"time"

	"github.com/noah-isme/rvnp-attendance-api/internal/models"
)

// termMonths holds the first month of each term; every term spans three months.
var termMonths = map[models.PeriodKind]time.Month{
	models.PeriodTerm1: time.January,
	models.PeriodTerm2: time.May,
	models.PeriodTerm3: time.September,
}

// ResolvePeriod maps a named period onto an inclusive date range relative to today.
// Terms use year when set and today's year otherwise. Custom ranges need both bounds.
func ResolvePeriod(kind models.PeriodKind, today time.Time, year int, from, to *time.Time) (models.DateRange, error) {
	day := models.DateOf(today)
	switch kind {
	case "", models.PeriodAll:
		return models.DateRange{}, nil
	case models.PeriodToday:
		return closedRange(day, day), nil
	case models.PeriodThisWeek:
		offset := (int(day.Weekday()) + 6) % 7
		monday := day.AddDate(0, 0, -offset)
		return models.DateRange{From: &monday}, nil
	case models.PeriodThisMonth:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		return closedRange(start, start.AddDate(0, 1, -1)), nil
	case models.PeriodThisYear:
		start := time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return closedRange(start, start.AddDate(1, 0, -1)), nil
	case models.PeriodTerm1, models.PeriodTerm2, models.PeriodTerm3:
		if year == 0 {
			year = day.Year()
		}
		if year < 1900 || year > 9999 {
			return models.DateRange{}, validationError(fmt.Sprintf("year %d is out of range", year))
		}
		start := time.Date(year, termMonths[kind], 1, 0, 0, 0, 0, time.UTC)
		return closedRange(start, start.AddDate(0, 3, -1)), nil
	case models.PeriodCustom:
		if from == nil || to == nil {
			return models.DateRange{}, validationError("custom period requires from and to dates")
		}
		start, end := models.DateOf(*from), models.DateOf(*to)
		if start.After(end) {
			return models.DateRange{}, validationError("from date must not be after to date")
		}
		return closedRange(start, end), nil
	default:
		return models.DateRange{}, validationError(fmt.Sprintf("unsupported period %q", kind))
	}
}

func closedRange(from, to time.Time) models.DateRange {
	return models.DateRange{From: &from, To: &to}
}
