package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyllabusScan(t *testing.T) {
	var s Syllabus
	require.NoError(t, s.Scan([]byte(`[{"week":1,"topic":"Intro","content":"Setup"},{"week":2,"topic":"Types","content":"Structs"}]`)))

	require.Len(t, s, 2)
	assert.Equal(t, SyllabusEntry{Week: 2, Topic: "Types", Content: "Structs"}, s[1])
}

func TestSyllabusScanNull(t *testing.T) {
	var s Syllabus
	require.NoError(t, s.Scan(nil))
	assert.NotNil(t, s)
	assert.Len(t, s, 0)
}

func TestSyllabusScanRejectsUnknownType(t *testing.T) {
	var s Syllabus
	assert.Error(t, s.Scan(42))
}

func TestSyllabusValue(t *testing.T) {
	v, err := Syllabus{{Week: 1, Topic: "Intro", Content: "Setup"}}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `[{"week":1,"topic":"Intro","content":"Setup"}]`, string(v.([]byte)))
}

func TestChangeEventMatches(t *testing.T) {
	ev := ChangeEvent{Collection: CollectionLikes, Type: ChangeInsert}

	assert.True(t, ev.Matches(CollectionLikes, ChangeAny))
	assert.True(t, ev.Matches(CollectionLikes, ChangeInsert))
	assert.False(t, ev.Matches(CollectionLikes, ChangeDelete))
	assert.False(t, ev.Matches(CollectionCourses, ChangeAny))

	resync := ChangeEvent{Collection: CollectionLikes, Type: ChangeResync}
	assert.True(t, resync.Matches(CollectionLikes, ChangeDelete))
}
