package service

import "go.uber.org/zap"

// ScreenDependencies are shared by every screen the factory creates.
type ScreenDependencies struct {
	Students         studentFinder
	Courses          courseSummaryLister
	CourseRecords    courseFinder
	Enrollments      enrollmentStore
	Likes            likeStore
	Identity         identityProvider
	Feed             changeSubscriber
	Metrics          *MetricsService
	Logger           *zap.Logger
	CourseFetchLimit int
}

// ScreenFactory creates one synchronizer per screen instance. Screens never
// share view state; only the repositories, session and change feed are shared.
type ScreenFactory struct {
	deps ScreenDependencies
}

// NewScreenFactory constructs a ScreenFactory.
func NewScreenFactory(deps ScreenDependencies) *ScreenFactory {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &ScreenFactory{deps: deps}
}

// CourseListing opens a course listing screen.
func (f *ScreenFactory) CourseListing() *CourseListingSync {
	return NewCourseListingSync(CourseListingParams{
		Courses:  f.deps.Courses,
		Likes:    f.deps.Likes,
		Identity: f.deps.Identity,
		Feed:     f.deps.Feed,
		Metrics:  f.deps.Metrics,
		Logger:   f.deps.Logger,
	})
}

// Dashboard opens a dashboard screen.
func (f *ScreenFactory) Dashboard() *DashboardSync {
	return NewDashboardSync(DashboardParams{
		Students:         f.deps.Students,
		Enrollments:      f.deps.Enrollments,
		Courses:          f.deps.CourseRecords,
		Metrics:          f.deps.Metrics,
		Logger:           f.deps.Logger,
		CourseFetchLimit: f.deps.CourseFetchLimit,
	})
}

// CourseDetail opens a course detail screen.
func (f *ScreenFactory) CourseDetail() *CourseDetailSync {
	return NewCourseDetailSync(f.deps.CourseRecords, f.deps.Metrics, f.deps.Logger)
}
