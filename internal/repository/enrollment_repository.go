package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-catalog-api/internal/models"
)

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ListByStudent returns every enrollment referencing the student.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	const query = `SELECT id, student_id, course_id, progress, completed FROM enrollments WHERE student_id = $1 ORDER BY id ASC`
	enrollments := []models.Enrollment{}
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return enrollments, nil
}

// MarkCompleted flags an enrollment as completed. Re-marking a completed
// enrollment is a no-op; an unknown ID yields sql.ErrNoRows.
func (r *EnrollmentRepository) MarkCompleted(ctx context.Context, id string) error {
	const query = `UPDATE enrollments SET completed = TRUE WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("mark enrollment completed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark enrollment completed: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
