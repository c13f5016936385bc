package models

// Student is a learner that can be selected as the acting identity. It is
// read-only from this service's perspective.
type Student struct {
	ID     string `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	Email  string `db:"email" json:"email"`
	Avatar string `db:"avatar" json:"avatar"`
}
