package models

// Department is a static organisational unit seeded at bootstrap.
type Department struct {
	Code string `db:"department_code" json:"code"`
	Name string `db:"department_name" json:"name"`
}
