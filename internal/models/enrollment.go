package models

// Enrollment links a student to a course. Completed only ever moves from
// false to true through this service.
type Enrollment struct {
	ID        string  `db:"id" json:"id"`
	StudentID string  `db:"student_id" json:"student_id"`
	CourseID  string  `db:"course_id" json:"course_id"`
	Progress  float64 `db:"progress" json:"progress"`
	Completed bool    `db:"completed" json:"completed"`
}

// EnrollmentWithCourse is an enrollment joined client-side with its course.
// Course is never nil: enrollments whose course cannot be loaded are dropped.
type EnrollmentWithCourse struct {
	Enrollment
	Course Course `json:"course"`
}
