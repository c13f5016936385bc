package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-catalog-api/internal/models"
)

// CourseRepository reads catalog records.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// ListSummaries returns every course using the listing projection.
func (r *CourseRepository) ListSummaries(ctx context.Context) ([]models.CourseSummary, error) {
	const query = `SELECT id, name, instructor, thumbnail FROM courses ORDER BY name ASC, id ASC`
	courses := []models.CourseSummary{}
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByID returns the full course record or sql.ErrNoRows.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, name, instructor, thumbnail, description, enrollment_status, duration, schedule, location, prerequisites, syllabus
        FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}
