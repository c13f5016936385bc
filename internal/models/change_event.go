package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Collections exposed by the data service.
const (
	CollectionStudents    = "students"
	CollectionCourses     = "courses"
	CollectionEnrollments = "enrollments"
	CollectionLikes       = "likes"
)

// ChangeType is the kind of row change carried by a notification.
type ChangeType string

// Change types; ChangeAny matches every type in a subscription filter.
const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
	ChangeAny    ChangeType = "*"
	// ChangeResync is synthesised after the listener reconnects, when
	// notifications may have been missed. It matches every filter.
	ChangeResync ChangeType = "RESYNC"
)

// ChangeEvent is a row-level change notification for one collection.
type ChangeEvent struct {
	Collection string          `json:"table"`
	Type       ChangeType      `json:"type"`
	Record     json.RawMessage `json:"record,omitempty"`
	Old        json.RawMessage `json:"old_record,omitempty"`
	ReceivedAt time.Time       `json:"received_at"`
}

// Matches reports whether the event passes a collection/type filter.
func (e ChangeEvent) Matches(collection string, changeType ChangeType) bool {
	if e.Collection != collection {
		return false
	}
	actual := ChangeType(strings.ToUpper(string(e.Type)))
	return changeType == ChangeAny || actual == ChangeResync || actual == changeType
}
