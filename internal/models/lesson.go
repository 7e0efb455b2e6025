package models

import "time"

// DateLayout is the wire format of lesson dates.
const DateLayout = "2006-01-02"

// LessonStatus is the reported outcome of a lesson slot.
type LessonStatus string

const (
	LessonTaught    LessonStatus = "Taught"
	LessonNotTaught LessonStatus = "Not Taught"
)

// Valid returns true when the status is a supported value.
func (s LessonStatus) Valid() bool {
	return s == LessonTaught || s == LessonNotTaught
}

// LessonStatuses lists the supported statuses.
var LessonStatuses = []LessonStatus{LessonTaught, LessonNotTaught}

// TimeSlots is the fixed daily timetable.
var TimeSlots = []string{
	"7.30-9.00",
	"09.00-10.30",
	"10.30-12.00",
	"12.00-1.30",
	"1.30-3.00",
	"3.00-4.30",
	"4.30-6.00",
}

// MissedReasons enumerates why a lesson was not taught.
var MissedReasons = []string{
	"Trainer Absent",
	"Trainer Late",
	"Notes Given",
	"CAT Given",
	"Other",
}

// ValidTimeSlot reports whether slot is part of the timetable.
func ValidTimeSlot(slot string) bool {
	return contains(TimeSlots, slot)
}

// ValidMissedReason reports whether reason is part of the enumeration.
func ValidMissedReason(reason string) bool {
	return contains(MissedReasons, reason)
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// LessonAttendanceRecord is one reported lesson slot. Records are immutable once stored.
type LessonAttendanceRecord struct {
	ID             int64        `db:"id" json:"id"`
	LessonDate     time.Time    `db:"lesson_date" json:"lesson_date"`
	ClassName      string       `db:"class_name" json:"class_name"`
	UnitName       string       `db:"unit_name" json:"unit_name"`
	TrainerName    string       `db:"trainer_name" json:"trainer_name"`
	TimeSlot       string       `db:"time_slot" json:"time_slot"`
	Status         LessonStatus `db:"status" json:"status"`
	Reason         *string      `db:"reason" json:"reason,omitempty"`
	Remarks        *string      `db:"remarks" json:"remarks,omitempty"`
	ReportedBy     string       `db:"reported_by" json:"reported_by"`
	DepartmentCode string       `db:"department_code" json:"department_code"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
}

// SubmitReportRequest is the payload for reporting a lesson slot.
type SubmitReportRequest struct {
	Date        string `json:"date" validate:"required"`
	ClassName   string `json:"class_name" validate:"required"`
	UnitName    string `json:"unit_name" validate:"required"`
	TrainerName string `json:"trainer_name" validate:"required"`
	TimeSlot    string `json:"time_slot" validate:"required"`
	Status      string `json:"status" validate:"required"`
	Reason      string `json:"reason"`
	Remarks     string `json:"remarks" validate:"max=500"`
	Department  string `json:"department"`
}

// DeleteReportsRequest selects reports for bulk removal.
type DeleteReportsRequest struct {
	IDs []int64 `json:"ids" validate:"required,min=1,dive,gt=0"`
}

// ReportFilter defines list filters for lesson reports.
type ReportFilter struct {
	Department string
	ReportedBy string
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PageSize   int
}

// ReportOptions carries the choices offered by the reporting form.
type ReportOptions struct {
	Department string         `json:"department"`
	Classes    []string       `json:"classes"`
	Units      []string       `json:"units"`
	Trainers   []string       `json:"trainers"`
	TimeSlots  []string       `json:"time_slots"`
	Statuses   []LessonStatus `json:"statuses"`
	Reasons    []string       `json:"reasons"`
}
