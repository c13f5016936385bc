package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildLikeAggregates(t *testing.T) {
	likes := []Like{
		{CourseID: "A", StudentID: "X"},
		{CourseID: "A", StudentID: "Y"},
		{CourseID: "B", StudentID: "Z"},
		{CourseID: "B", StudentID: "X"},
		{CourseID: "B", StudentID: "Y"},
	}

	aggregates := BuildLikeAggregates(likes)

	assert.Equal(t, LikeAggregate{Count: 2, StudentIDs: []string{"X", "Y"}}, aggregates["A"])
	assert.Equal(t, LikeAggregate{Count: 3, StudentIDs: []string{"X", "Y", "Z"}}, aggregates["B"])
	assert.Equal(t, 0, aggregates.For("C").Count)
	assert.Empty(t, aggregates.For("C").StudentIDs)
}

func TestBuildLikeAggregatesCountMatchesSet(t *testing.T) {
	likes := []Like{
		{CourseID: "A", StudentID: "X"},
		{CourseID: "A", StudentID: "X"},
		{CourseID: "A", StudentID: "Y"},
	}

	aggregates := BuildLikeAggregates(likes)

	for courseID, agg := range aggregates {
		assert.Equal(t, len(agg.StudentIDs), agg.Count, courseID)
	}
	assert.Equal(t, 2, aggregates["A"].Count)
}

func TestLikeAggregateLikedBy(t *testing.T) {
	agg := LikeAggregate{Count: 2, StudentIDs: []string{"X", "Y"}}

	assert.True(t, agg.LikedBy("X"))
	assert.False(t, agg.LikedBy("Z"))
}
