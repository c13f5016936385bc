package models

import "sort"

// Like records that a student likes a course. The (course, student) pair is its identity.
type Like struct {
	CourseID  string `db:"course_id" json:"course_id"`
	StudentID string `db:"student_id" json:"student_id"`
}

// LikeAggregate summarises the likes of one course.
type LikeAggregate struct {
	Count      int      `json:"count"`
	StudentIDs []string `json:"student_ids"`
}

// LikedBy reports whether the student is among the likers.
func (a LikeAggregate) LikedBy(studentID string) bool {
	for _, id := range a.StudentIDs {
		if id == studentID {
			return true
		}
	}
	return false
}

// LikeAggregates maps course ID to its aggregate.
type LikeAggregates map[string]LikeAggregate

// For returns the aggregate of a course, zero-valued when it has no likes.
func (a LikeAggregates) For(courseID string) LikeAggregate {
	if agg, ok := a[courseID]; ok {
		return agg
	}
	return LikeAggregate{StudentIDs: []string{}}
}

// BuildLikeAggregates groups like rows by course. Duplicate pairs count once,
// so Count always equals len(StudentIDs). Student IDs are sorted.
func BuildLikeAggregates(likes []Like) LikeAggregates {
	sets := make(map[string]map[string]struct{})
	for _, like := range likes {
		set, ok := sets[like.CourseID]
		if !ok {
			set = make(map[string]struct{})
			sets[like.CourseID] = set
		}
		set[like.StudentID] = struct{}{}
	}

	aggregates := make(LikeAggregates, len(sets))
	for courseID, set := range sets {
		ids := make([]string, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		aggregates[courseID] = LikeAggregate{Count: len(ids), StudentIDs: ids}
	}
	return aggregates
}
