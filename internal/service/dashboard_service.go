package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/course-catalog-api/internal/dto"
	"github.com/noah-isme/course-catalog-api/internal/models"
	appErrors "github.com/noah-isme/course-catalog-api/pkg/errors"
)

const (
	screenDashboard = "dashboard"

	defaultCourseFetchLimit = 8
)

type studentFinder interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type enrollmentStore interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error)
	MarkCompleted(ctx context.Context, id string) error
}

type courseFinder interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

// DashboardParams groups the collaborators of a dashboard screen.
type DashboardParams struct {
	Students    studentFinder
	Enrollments enrollmentStore
	Courses     courseFinder
	Metrics     *MetricsService
	Logger      *zap.Logger
	// CourseFetchLimit caps concurrent per-enrollment course fetches.
	CourseFetchLimit int
}

// DashboardSync joins a student's enrollments with their courses.
type DashboardSync struct {
	students    studentFinder
	enrollments enrollmentStore
	courses     courseFinder
	metrics     *MetricsService
	logger      *zap.Logger
	fetchLimit  int

	mu        sync.RWMutex
	seq       uint64
	studentID string
	view      dto.DashboardView
	// owned holds every enrollment id fetched for the student, including
	// enrollments dropped from the view because their course is missing.
	owned map[string]struct{}
}

// NewDashboardSync constructs a dashboard screen in the loading state.
func NewDashboardSync(params DashboardParams) *DashboardSync {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := params.CourseFetchLimit
	if limit <= 0 {
		limit = defaultCourseFetchLimit
	}
	return &DashboardSync{
		students:    params.Students,
		enrollments: params.Enrollments,
		courses:     params.Courses,
		metrics:     params.Metrics,
		logger:      logger.With(zap.String("screen", screenDashboard)),
		fetchLimit:  limit,
		view:        dto.DashboardView{Loading: true, Enrollments: []models.EnrollmentWithCourse{}},
	}
}

// Load rebuilds the dashboard for studentID. The student lookup gates the
// enrollment fetch, which in turn gates the course fan-out. Enrollments whose
// course cannot be fetched are dropped.
func (s *DashboardSync) Load(ctx context.Context, studentID string) error {
	token := s.begin(studentID)
	start := time.Now()

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil || student == nil {
		if err == nil || errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("student not found", zap.String("student_id", studentID))
			s.commit(token, dto.DashboardView{
				NotFound:    true,
				Message:     dto.MessageStudentNotFound,
				Enrollments: []models.EnrollmentWithCourse{},
			}, nil)
			s.metrics.RecordSyncLoad(screenDashboard, OutcomeNotFound, time.Since(start))
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		s.logger.Error("error fetching student", zap.String("student_id", studentID), zap.Error(err))
		s.metrics.RecordSyncLoad(screenDashboard, OutcomeError, time.Since(start))
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load student")
	}

	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("error fetching enrollments", zap.String("student_id", studentID), zap.Error(err))
		s.metrics.RecordSyncLoad(screenDashboard, OutcomeError, time.Since(start))
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load enrollments")
	}

	view := dto.DashboardView{Student: student, Enrollments: []models.EnrollmentWithCourse{}}
	if len(enrollments) == 0 {
		view.Message = dto.MessageNoEnrollments
	} else {
		view.Enrollments = s.joinCourses(ctx, enrollments)
	}

	owned := make(map[string]struct{}, len(enrollments))
	for _, enrollment := range enrollments {
		owned[enrollment.ID] = struct{}{}
	}

	if !s.commit(token, view, owned) {
		s.logger.Debug("discarding superseded load", zap.String("student_id", studentID), zap.Uint64("token", token))
		s.metrics.RecordSyncLoad(screenDashboard, OutcomeDiscarded, time.Since(start))
		return nil
	}
	s.metrics.RecordSyncLoad(screenDashboard, OutcomeOK, time.Since(start))
	return nil
}

// joinCourses fetches each enrollment's course concurrently and keeps the
// enrollment order of the input.
func (s *DashboardSync) joinCourses(ctx context.Context, enrollments []models.Enrollment) []models.EnrollmentWithCourse {
	courses := make([]*models.Course, len(enrollments))

	var g errgroup.Group
	g.SetLimit(s.fetchLimit)
	for i, enrollment := range enrollments {
		i, enrollment := i, enrollment
		g.Go(func() error {
			course, err := s.courses.FindByID(ctx, enrollment.CourseID)
			if err != nil {
				s.logger.Debug("dropping enrollment without course",
					zap.String("enrollment_id", enrollment.ID),
					zap.String("course_id", enrollment.CourseID),
					zap.Error(err))
				return nil
			}
			courses[i] = course
			return nil
		})
	}
	_ = g.Wait()

	joined := make([]models.EnrollmentWithCourse, 0, len(enrollments))
	for i, enrollment := range enrollments {
		if courses[i] == nil {
			continue
		}
		joined = append(joined, models.EnrollmentWithCourse{Enrollment: enrollment, Course: *courses[i]})
	}
	return joined
}

// MarkCompleted sets the enrollment's completed flag and, on success, reloads
// the dashboard for the student it is bound to.
func (s *DashboardSync) MarkCompleted(ctx context.Context, enrollmentID string) error {
	if err := s.enrollments.MarkCompleted(ctx, enrollmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordMutation("mark_completed", OutcomeNotFound)
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		s.logger.Error("error marking enrollment completed", zap.String("enrollment_id", enrollmentID), zap.Error(err))
		s.metrics.RecordMutation("mark_completed", OutcomeError)
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to mark enrollment completed")
	}
	s.metrics.RecordMutation("mark_completed", OutcomeOK)
	s.logger.Info("enrollment marked completed", zap.String("enrollment_id", enrollmentID))

	s.mu.RLock()
	studentID := s.studentID
	s.mu.RUnlock()
	if studentID == "" {
		return nil
	}
	return s.Load(ctx, studentID)
}

// View returns the last committed dashboard.
func (s *DashboardSync) View() dto.DashboardView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	view := s.view
	view.Enrollments = append([]models.EnrollmentWithCourse(nil), s.view.Enrollments...)
	if view.Enrollments == nil {
		view.Enrollments = []models.EnrollmentWithCourse{}
	}
	return view
}

// Owns reports whether the last committed load fetched enrollmentID for its
// student, whether or not the enrollment made it into the view.
func (s *DashboardSync) Owns(enrollmentID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.owned[enrollmentID]
	return ok
}

func (s *DashboardSync) begin(studentID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.studentID = studentID
	return s.seq
}

func (s *DashboardSync) commit(token uint64, view dto.DashboardView, owned map[string]struct{}) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.seq {
		return false
	}
	s.view = view
	s.owned = owned
	return true
}
