package dto

import (
	"time"

	"github.com/noah-isme/course-catalog-api/internal/models"
)

// MessageNoCourses is shown when the catalog is empty.
const MessageNoCourses = "No courses found."

// MessageCourseNotFound is shown when a course detail cannot be loaded.
const MessageCourseNotFound = "Course not found."

// CourseCard is one entry of the course listing.
type CourseCard struct {
	models.CourseSummary
	LikeCount int  `json:"likeCount"`
	Liked     bool `json:"liked"`
}

// CourseListingView is the course listing as seen by the active student.
type CourseListingView struct {
	Loading   bool         `json:"loading"`
	StudentID string       `json:"studentId,omitempty"`
	Courses   []CourseCard `json:"courses"`
	Message   string       `json:"message,omitempty"`
	LoadedAt  *time.Time   `json:"loadedAt,omitempty"`
}

// CourseDetailView carries a single course or the not-found state.
type CourseDetailView struct {
	Loading  bool           `json:"loading"`
	NotFound bool           `json:"notFound"`
	Message  string         `json:"message,omitempty"`
	Course   *models.Course `json:"course,omitempty"`
}

// SessionView lists the roster and the active student.
type SessionView struct {
	Current  *models.Student  `json:"current"`
	Students []models.Student `json:"students"`
}

// SwitchStudentRequest selects the acting student.
type SwitchStudentRequest struct {
	StudentID string `json:"student_id" validate:"required"`
}
