package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-catalog-api/internal/models"
)

// LikeRepository manages like rows keyed by (course, student).
type LikeRepository struct {
	db *sqlx.DB
}

// NewLikeRepository constructs a LikeRepository.
func NewLikeRepository(db *sqlx.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// List returns every like across all courses.
func (r *LikeRepository) List(ctx context.Context) ([]models.Like, error) {
	const query = `SELECT course_id, student_id FROM likes`
	likes := []models.Like{}
	if err := r.db.SelectContext(ctx, &likes, query); err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}
	return likes, nil
}

// Insert records a like; liking twice leaves a single row.
func (r *LikeRepository) Insert(ctx context.Context, like models.Like) error {
	const query = `INSERT INTO likes (course_id, student_id) VALUES (:course_id, :student_id)
        ON CONFLICT (course_id, student_id) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, like); err != nil {
		return fmt.Errorf("insert like: %w", err)
	}
	return nil
}

// Delete removes the like matching the (course, student) pair.
func (r *LikeRepository) Delete(ctx context.Context, courseID, studentID string) error {
	const query = `DELETE FROM likes WHERE course_id = $1 AND student_id = $2`
	if _, err := r.db.ExecContext(ctx, query, courseID, studentID); err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	return nil
}
