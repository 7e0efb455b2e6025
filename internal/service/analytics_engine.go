package service

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/noah-isme/rvnp-attendance-api/internal/models"
)

const unspecifiedReason = "Unspecified"

// AttendanceRate is the percentage of taught lessons rounded to one decimal, 0 when total is 0.
func AttendanceRate(taught, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(taught)*1000/float64(total)) / 10
}

// Tally counts taught and missed lessons and derives the rate.
func Tally(records []models.LessonAttendanceRecord) models.AttendanceTotals {
	var t tally
	for _, r := range records {
		t.add(r)
	}
	return t.totals()
}

type tally struct {
	total  int
	taught int
}

func (t *tally) add(r models.LessonAttendanceRecord) {
	t.total++
	if r.Status == models.LessonTaught {
		t.taught++
	}
}

func (t tally) totals() models.AttendanceTotals {
	return models.AttendanceTotals{
		Total:  t.total,
		Taught: t.taught,
		Missed: t.total - t.taught,
		Rate:   AttendanceRate(t.taught, t.total),
	}
}

// Aggregate computes totals, time buckets, reason breakdown and per-trainer, per-class
// and per-unit rankings for the records.
func Aggregate(records []models.LessonAttendanceRecord, granularity models.Granularity) models.AggregateResult {
	return models.AggregateResult{
		Granularity: granularity,
		Totals:      Tally(records),
		Buckets:     Buckets(records, granularity),
		Reasons:     ReasonBreakdown(records),
		Trainers:    Rank(records, func(r models.LessonAttendanceRecord) string { return r.TrainerName }),
		Classes:     Rank(records, func(r models.LessonAttendanceRecord) string { return r.ClassName }),
		Units:       Rank(records, func(r models.LessonAttendanceRecord) string { return r.UnitName }),
	}
}

// Buckets groups records by day, ISO week or month in ascending order.
func Buckets(records []models.LessonAttendanceRecord, granularity models.Granularity) []models.AttendanceBucket {
	counts := make(map[time.Time]*tally)
	for _, r := range records {
		start := BucketStart(r.LessonDate, granularity)
		t, ok := counts[start]
		if !ok {
			t = &tally{}
			counts[start] = t
		}
		t.add(r)
	}

	buckets := make([]models.AttendanceBucket, 0, len(counts))
	for start, t := range counts {
		buckets = append(buckets, models.AttendanceBucket{
			Key:              BucketKey(start, granularity),
			Start:            start,
			AttendanceTotals: t.totals(),
		})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Start.Before(buckets[j].Start) })
	return buckets
}

// BucketStart returns the first day of the bucket containing date. Weeks start on Monday.
func BucketStart(date time.Time, granularity models.Granularity) time.Time {
	day := models.DateOf(date)
	switch granularity {
	case models.GranularityWeekly:
		return day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7))
	case models.GranularityMonthly:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}

// BucketKey labels a bucket: 2024-03-01 daily, 2024-W09 weekly, 2024-03 monthly.
func BucketKey(start time.Time, granularity models.Granularity) string {
	switch granularity {
	case models.GranularityWeekly:
		year, week := start.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case models.GranularityMonthly:
		return start.Format("2006-01")
	default:
		return start.Format(models.DateLayout)
	}
}

// ReasonBreakdown counts missed lessons per reason, most frequent first then by reason.
func ReasonBreakdown(records []models.LessonAttendanceRecord) []models.ReasonCount {
	counts := make(map[string]int)
	for _, r := range records {
		if r.Status != models.LessonNotTaught {
			continue
		}
		reason := unspecifiedReason
		if r.Reason != nil && *r.Reason != "" {
			reason = *r.Reason
		}
		counts[reason]++
	}

	reasons := make([]models.ReasonCount, 0, len(counts))
	for reason, count := range counts {
		reasons = append(reasons, models.ReasonCount{Reason: reason, Count: count})
	}
	sort.Slice(reasons, func(i, j int) bool {
		if reasons[i].Count != reasons[j].Count {
			return reasons[i].Count > reasons[j].Count
		}
		return reasons[i].Reason < reasons[j].Reason
	})
	return reasons
}

// Rank groups records by key and orders groups by rate descending then name ascending.
func Rank(records []models.LessonAttendanceRecord, key func(models.LessonAttendanceRecord) string) []models.GroupStat {
	counts := make(map[string]*tally)
	for _, r := range records {
		name := key(r)
		t, ok := counts[name]
		if !ok {
			t = &tally{}
			counts[name] = t
		}
		t.add(r)
	}

	stats := make([]models.GroupStat, 0, len(counts))
	for name, t := range counts {
		stats = append(stats, models.GroupStat{Name: name, AttendanceTotals: t.totals()})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Rate != stats[j].Rate {
			return stats[i].Rate > stats[j].Rate
		}
		return stats[i].Name < stats[j].Name
	})
	return stats
}
