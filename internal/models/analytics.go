package models

import "time"

// PeriodKind is a named analytics period.
type PeriodKind string

const (
	PeriodAll       PeriodKind = "all"
	PeriodToday     PeriodKind = "today"
	PeriodThisWeek  PeriodKind = "this_week"
	PeriodThisMonth PeriodKind = "this_month"
	PeriodThisYear  PeriodKind = "this_year"
	PeriodTerm1     PeriodKind = "term1"
	PeriodTerm2     PeriodKind = "term2"
	PeriodTerm3     PeriodKind = "term3"
	PeriodCustom    PeriodKind = "custom"
)

// Valid returns true when the period is a supported value.
func (p PeriodKind) Valid() bool {
	switch p {
	case PeriodAll, PeriodToday, PeriodThisWeek, PeriodThisMonth, PeriodThisYear,
		PeriodTerm1, PeriodTerm2, PeriodTerm3, PeriodCustom:
		return true
	default:
		return false
	}
}

// Granularity controls how analytics records are bucketed.
type Granularity string

const (
	GranularityDaily   Granularity = "daily"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
)

// Valid returns true when the granularity is a supported value.
func (g Granularity) Valid() bool {
	return g == GranularityDaily || g == GranularityWeekly || g == GranularityMonthly
}

// DateRange is an inclusive date window. A nil bound is open.
type DateRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// Contains reports whether the calendar date of t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	day := DateOf(t)
	if r.From != nil && day.Before(*r.From) {
		return false
	}
	if r.To != nil && day.After(*r.To) {
		return false
	}
	return true
}

// AttendanceQuery is the caller-facing analytics request.
type AttendanceQuery struct {
	Department  string
	Period      PeriodKind
	Year        int
	From        *time.Time
	To          *time.Time
	Trainers    []string
	Units       []string
	Classes     []string
	Granularity Granularity
}

// AttendanceFilter is the resolved, scope-narrowed filter applied to the store.
type AttendanceFilter struct {
	Department string
	Range      DateRange
	Trainers   []string
	Units      []string
	Classes    []string
}

// AttendanceTotals holds the counts and derived rate of a record set.
type AttendanceTotals struct {
	Total  int     `json:"total"`
	Taught int     `json:"taught"`
	Missed int     `json:"missed"`
	Rate   float64 `json:"rate"`
}

// AttendanceBucket aggregates the records of one day, week or month.
type AttendanceBucket struct {
	Key   string    `json:"key"`
	Start time.Time `json:"start"`
	AttendanceTotals
}

// ReasonCount is the number of missed lessons per reason.
type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// GroupStat aggregates records sharing a trainer, class or unit name.
type GroupStat struct {
	Name string `json:"name"`
	AttendanceTotals
}

// AggregateResult is the output of an attendance analytics query.
type AggregateResult struct {
	Department  string             `json:"department"`
	Period      PeriodKind         `json:"period"`
	Granularity Granularity        `json:"granularity"`
	Range       DateRange          `json:"range"`
	Totals      AttendanceTotals   `json:"totals"`
	Buckets     []AttendanceBucket `json:"buckets"`
	Reasons     []ReasonCount      `json:"reasons"`
	Trainers    []GroupStat        `json:"trainers"`
	Classes     []GroupStat        `json:"classes"`
	Units       []GroupStat        `json:"units"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// SystemMetrics represents process level figures captured from instrumentation.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
