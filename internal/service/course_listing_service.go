package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-catalog-api/internal/dto"
	"github.com/noah-isme/course-catalog-api/internal/models"
	"github.com/noah-isme/course-catalog-api/internal/realtime"
	"github.com/noah-isme/course-catalog-api/internal/session"
	appErrors "github.com/noah-isme/course-catalog-api/pkg/errors"
)

const (
	screenCourseListing = "course_listing"

	// refreshBacklog bounds queued realtime refreshes per live screen. When it
	// is full a refresh is already pending and will observe the newer state.
	refreshBacklog = 16
)

type courseSummaryLister interface {
	ListSummaries(ctx context.Context) ([]models.CourseSummary, error)
}

type likeStore interface {
	List(ctx context.Context) ([]models.Like, error)
	Insert(ctx context.Context, like models.Like) error
	Delete(ctx context.Context, courseID, studentID string) error
}

type identityProvider interface {
	Current() *models.Student
	Generation() uint64
	Watch(fn session.Listener) func()
}

type changeSubscriber interface {
	Subscribe(collection string, changeType models.ChangeType, cb realtime.Callback) *realtime.Subscription
}

// CourseListingParams groups the collaborators of a course listing screen.
type CourseListingParams struct {
	Courses  courseSummaryLister
	Likes    likeStore
	Identity identityProvider
	Feed     changeSubscriber
	Metrics  *MetricsService
	Logger   *zap.Logger
}

// CourseListingSync keeps one course listing screen in step with the data
// service. Loads always rebuild the listing from scratch; mutations never
// patch local state.
type CourseListingSync struct {
	courses  courseSummaryLister
	likes    likeStore
	identity identityProvider
	feed     changeSubscriber
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time

	mu    sync.RWMutex
	seq   uint64
	state courseListingState
}

type courseListingState struct {
	loaded    bool
	studentID string
	courses   []models.CourseSummary
	likes     models.LikeAggregates
	loadedAt  time.Time
}

// NewCourseListingSync constructs a listing screen in the loading state.
func NewCourseListingSync(params CourseListingParams) *CourseListingSync {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseListingSync{
		courses:  params.Courses,
		likes:    params.Likes,
		identity: params.Identity,
		feed:     params.Feed,
		metrics:  params.Metrics,
		logger:   logger.With(zap.String("screen", screenCourseListing)),
		now:      time.Now,
	}
}

// Load fetches all courses and all likes and replaces the listing in one step.
// If either fetch fails the previous listing is kept. A load overtaken by a
// newer load, or by an identity switch, is discarded and reports ErrSuperseded.
func (s *CourseListingSync) Load(ctx context.Context) error {
	student := s.identity.Current()
	if student == nil {
		return appErrors.ErrNoActiveIdentity
	}
	generation := s.identity.Generation()
	token := s.nextToken()
	start := time.Now()

	courses, err := s.courses.ListSummaries(ctx)
	if err != nil {
		s.logger.Error("error fetching courses", zap.String("student_id", student.ID), zap.Error(err))
		s.metrics.RecordSyncLoad(screenCourseListing, OutcomeError, time.Since(start))
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load courses")
	}

	likes, err := s.likes.List(ctx)
	if err != nil {
		s.logger.Error("error fetching likes", zap.String("student_id", student.ID), zap.Error(err))
		s.metrics.RecordSyncLoad(screenCourseListing, OutcomeError, time.Since(start))
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load likes")
	}

	aggregates := models.BuildLikeAggregates(likes)

	s.mu.Lock()
	if token != s.seq || generation != s.identity.Generation() {
		s.mu.Unlock()
		s.logger.Debug("discarding superseded load", zap.Uint64("token", token))
		s.metrics.RecordSyncLoad(screenCourseListing, OutcomeDiscarded, time.Since(start))
		return appErrors.ErrSuperseded
	}
	s.state = courseListingState{
		loaded:    true,
		studentID: student.ID,
		courses:   courses,
		likes:     aggregates,
		loadedAt:  s.now().UTC(),
	}
	s.mu.Unlock()

	s.metrics.RecordSyncLoad(screenCourseListing, OutcomeOK, time.Since(start))
	return nil
}

// ToggleLike likes or unlikes the course for the active student, depending on
// whether the student is in the course's current aggregate, then reloads.
// The reload runs even when the mutation fails.
func (s *CourseListingSync) ToggleLike(ctx context.Context, courseID string) error {
	student := s.identity.Current()
	if student == nil {
		return appErrors.ErrNoActiveIdentity
	}

	// the like state must belong to the acting student before it decides the direction
	if !s.loadedFor(student.ID) {
		if err := s.loadCurrent(ctx); err != nil {
			return err
		}
		if student = s.identity.Current(); student == nil {
			return appErrors.ErrNoActiveIdentity
		}
	}

	s.mu.RLock()
	liked := s.state.studentID == student.ID && s.state.likes.For(courseID).LikedBy(student.ID)
	s.mu.RUnlock()

	var mutationErr error
	if liked {
		if err := s.likes.Delete(ctx, courseID, student.ID); err != nil {
			s.logger.Error("error unliking course", zap.String("course_id", courseID), zap.String("student_id", student.ID), zap.Error(err))
			s.metrics.RecordMutation("unlike", OutcomeError)
			mutationErr = appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to unlike course")
		} else {
			s.logger.Info("course unliked", zap.String("course_id", courseID), zap.String("student_id", student.ID))
			s.metrics.RecordMutation("unlike", OutcomeOK)
		}
	} else {
		if err := s.likes.Insert(ctx, models.Like{CourseID: courseID, StudentID: student.ID}); err != nil {
			s.logger.Error("error liking course", zap.String("course_id", courseID), zap.String("student_id", student.ID), zap.Error(err))
			s.metrics.RecordMutation("like", OutcomeError)
			mutationErr = appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to like course")
		} else {
			s.logger.Info("course liked", zap.String("course_id", courseID), zap.String("student_id", student.ID))
			s.metrics.RecordMutation("like", OutcomeOK)
		}
	}

	loadErr := s.loadCurrent(ctx)
	if mutationErr != nil {
		return mutationErr
	}
	return loadErr
}

// Watch keeps the screen live until ctx is done. While an identity is active
// it holds a subscription on the likes collection and every change event
// triggers one full load; identity switches rebind and reload. onUpdate
// receives the view after each committed load.
func (s *CourseListingSync) Watch(ctx context.Context, onUpdate func(dto.CourseListingView)) error {
	refresh := make(chan struct{}, refreshBacklog)
	rebind := make(chan struct{}, 1)

	stopWatching := s.identity.Watch(func(*models.Student, uint64) {
		select {
		case rebind <- struct{}{}:
		default:
		}
	})
	defer stopWatching()

	var sub *realtime.Subscription
	defer func() { sub.Release() }()

	bind := func() bool {
		if s.identity.Current() == nil {
			if sub != nil {
				sub.Release()
				sub = nil
				s.logger.Info("active student cleared, realtime subscription released")
			}
			return false
		}
		if sub == nil {
			sub = s.feed.Subscribe(models.CollectionLikes, models.ChangeAny, func(ev models.ChangeEvent) {
				select {
				case refresh <- struct{}{}:
				default:
					s.logger.Debug("refresh already pending, coalescing change event", zap.String("type", string(ev.Type)))
				}
			})
		}
		return true
	}

	// a superseded load publishes nothing; the identity watcher queues its replacement
	reload := func() {
		if err := s.Load(ctx); err != nil {
			return
		}
		if onUpdate != nil {
			onUpdate(s.View())
		}
	}

	if bind() {
		reload()
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-rebind:
			if bind() {
				reload()
			}
		case <-refresh:
			if s.identity.Current() != nil {
				reload()
			}
		}
	}
}

// View renders the last committed listing for the student it was loaded for.
func (s *CourseListingSync) View() dto.CourseListingView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.state.loaded {
		return dto.CourseListingView{Loading: true, Courses: []dto.CourseCard{}}
	}

	cards := make([]dto.CourseCard, 0, len(s.state.courses))
	for _, course := range s.state.courses {
		agg := s.state.likes.For(course.ID)
		cards = append(cards, dto.CourseCard{
			CourseSummary: course,
			LikeCount:     agg.Count,
			Liked:         agg.LikedBy(s.state.studentID),
		})
	}
	loadedAt := s.state.loadedAt
	view := dto.CourseListingView{
		StudentID: s.state.studentID,
		Courses:   cards,
		LoadedAt:  &loadedAt,
	}
	if len(cards) == 0 {
		view.Message = dto.MessageNoCourses
	}
	return view
}

// Likes returns the aggregate of one course from the last committed load.
func (s *CourseListingSync) Likes(courseID string) models.LikeAggregate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.likes.For(courseID)
}

// loadCurrent loads once more when an identity switch discards the first attempt.
func (s *CourseListingSync) loadCurrent(ctx context.Context) error {
	err := s.Load(ctx)
	if errors.Is(err, appErrors.ErrSuperseded) {
		err = s.Load(ctx)
	}
	return err
}

func (s *CourseListingSync) loadedFor(studentID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.loaded && s.state.studentID == studentID
}

func (s *CourseListingSync) nextToken() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}
