package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-catalog-api/internal/dto"
	"github.com/noah-isme/course-catalog-api/internal/models"
	"github.com/noah-isme/course-catalog-api/internal/realtime"
	appErrors "github.com/noah-isme/course-catalog-api/pkg/errors"
)

const (
	screenCourseDetail = "course_detail"

	courseDetailKeyPrefix  = "course:detail:"
	courseDetailKeyPattern = courseDetailKeyPrefix + "*"
)

// CachedCourseReader serves full course records through the cache when it is enabled.
type CachedCourseReader struct {
	repo   courseFinder
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedCourseReader wraps repo with a read-through cache.
func NewCachedCourseReader(repo courseFinder, cache *CacheService, ttl time.Duration, logger *zap.Logger) *CachedCourseReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedCourseReader{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// FindByID returns the course, preferring a cached copy.
func (r *CachedCourseReader) FindByID(ctx context.Context, id string) (*models.Course, error) {
	key := courseDetailKeyPrefix + id
	var cached models.Course
	if r.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}
	course, err := r.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if course != nil {
		r.cache.Set(ctx, key, course, r.ttl)
	}
	return course, nil
}

// WatchCourseChanges drops cached course records whenever the courses
// collection changes. The returned subscription must be released on shutdown.
func WatchCourseChanges(ctx context.Context, feed changeSubscriber, cache *CacheService, logger *zap.Logger) *realtime.Subscription {
	if logger == nil {
		logger = zap.NewNop()
	}
	return feed.Subscribe(models.CollectionCourses, models.ChangeAny, func(ev models.ChangeEvent) {
		if err := cache.Invalidate(ctx, courseDetailKeyPattern); err != nil {
			logger.Warn("failed to invalidate course cache", zap.String("type", string(ev.Type)), zap.Error(err))
			return
		}
		logger.Debug("course cache invalidated", zap.String("type", string(ev.Type)))
	})
}

// CourseDetailSync loads a single course record.
type CourseDetailSync struct {
	courses courseFinder
	metrics *MetricsService
	logger  *zap.Logger

	mu   sync.RWMutex
	view dto.CourseDetailView
}

// NewCourseDetailSync constructs a detail screen in the loading state.
func NewCourseDetailSync(courses courseFinder, metrics *MetricsService, logger *zap.Logger) *CourseDetailSync {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseDetailSync{
		courses: courses,
		metrics: metrics,
		logger:  logger.With(zap.String("screen", screenCourseDetail)),
		view:    dto.CourseDetailView{Loading: true},
	}
}

// Load fetches the course. Both absence and fetch failure render as not found;
// only the latter is logged as an error.
func (s *CourseDetailSync) Load(ctx context.Context, courseID string) error {
	start := time.Now()
	course, err := s.courses.FindByID(ctx, courseID)
	if err == nil && course != nil {
		s.setView(dto.CourseDetailView{Course: course})
		s.metrics.RecordSyncLoad(screenCourseDetail, OutcomeOK, time.Since(start))
		return nil
	}

	s.setView(dto.CourseDetailView{NotFound: true, Message: dto.MessageCourseNotFound})
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		s.logger.Error("error fetching course", zap.String("course_id", courseID), zap.Error(err))
		s.metrics.RecordSyncLoad(screenCourseDetail, OutcomeError, time.Since(start))
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("course %s not found", courseID))
	}
	s.metrics.RecordSyncLoad(screenCourseDetail, OutcomeNotFound, time.Since(start))
	return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("course %s not found", courseID))
}

// View returns the last loaded state.
func (s *CourseDetailSync) View() dto.CourseDetailView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

func (s *CourseDetailSync) setView(view dto.CourseDetailView) {
	s.mu.Lock()
	s.view = view
	s.mu.Unlock()
}
