package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// CourseSummary is the minimal projection used by the course listing.
type CourseSummary struct {
	ID         string `db:"id" json:"id"`
	Name       string `db:"name" json:"name"`
	Instructor string `db:"instructor" json:"instructor"`
	Thumbnail  string `db:"thumbnail" json:"thumbnail"`
}

// Course is the full catalog record including its syllabus.
type Course struct {
	ID               string   `db:"id" json:"id"`
	Name             string   `db:"name" json:"name"`
	Instructor       string   `db:"instructor" json:"instructor"`
	Thumbnail        string   `db:"thumbnail" json:"thumbnail"`
	Description      string   `db:"description" json:"description"`
	EnrollmentStatus string   `db:"enrollment_status" json:"enrollment_status"`
	Duration         string   `db:"duration" json:"duration"`
	Schedule         string   `db:"schedule" json:"schedule"`
	Location         string   `db:"location" json:"location"`
	Prerequisites    string   `db:"prerequisites" json:"prerequisites"`
	Syllabus         Syllabus `db:"syllabus" json:"syllabus"`
}

// Summary projects the course down to its listing fields.
func (c Course) Summary() CourseSummary {
	return CourseSummary{ID: c.ID, Name: c.Name, Instructor: c.Instructor, Thumbnail: c.Thumbnail}
}

// SyllabusEntry describes one week of a course.
type SyllabusEntry struct {
	Week    int    `json:"week"`
	Topic   string `json:"topic"`
	Content string `json:"content"`
}

// Syllabus is an ordered list of weekly entries persisted as JSONB.
type Syllabus []SyllabusEntry

// Scan implements sql.Scanner.
func (s *Syllabus) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = Syllabus{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("syllabus: unsupported source type %T", src)
	}
	if len(raw) == 0 {
		*s = Syllabus{}
		return nil
	}
	var entries Syllabus
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("syllabus: %w", err)
	}
	*s = entries
	return nil
}

// Value implements driver.Valuer.
func (s Syllabus) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s)
}
