package models

import "time"

// ClassRepAssignment links a class rep to a class within a department.
type ClassRepAssignment struct {
	ID             int64     `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	ClassName      string    `db:"class_name" json:"class_name"`
	DepartmentCode string    `db:"department_code" json:"department_code"`
	AssignedAt     time.Time `db:"assigned_at" json:"assigned_at"`
}

// AssignmentResult is returned by insert-or-ignore assignment writes.
type AssignmentResult struct {
	Outcome    WriteOutcome       `json:"outcome"`
	Assignment ClassRepAssignment `json:"assignment"`
}

// AssignClassRepRequest is the payload for assigning a class rep.
type AssignClassRepRequest struct {
	Username   string `json:"username" validate:"required"`
	ClassName  string `json:"class_name" validate:"required"`
	Department string `json:"department"`
}
