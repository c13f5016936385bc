package dto

import "github.com/noah-isme/course-catalog-api/internal/models"

// Dashboard messages rendered to students.
const (
	MessageStudentNotFound = "Student not found."
	MessageNoEnrollments   = "No courses enrolled yet."
)

// DashboardView is the student dashboard: profile plus enrolled courses.
type DashboardView struct {
	Loading     bool                          `json:"loading"`
	NotFound    bool                          `json:"notFound"`
	Message     string                        `json:"message,omitempty"`
	Student     *models.Student               `json:"student,omitempty"`
	Enrollments []models.EnrollmentWithCourse `json:"enrollments"`
}
