package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-catalog-api/internal/dto"
	"github.com/noah-isme/course-catalog-api/internal/models"
	appErrors "github.com/noah-isme/course-catalog-api/pkg/errors"
)

type fakeDashboardScreen struct {
	hidden    []string
	loadErr   error
	markErr   error
	loadedFor string
	marked    []string
	view      dto.DashboardView
}

func (f *fakeDashboardScreen) Load(_ context.Context, studentID string) error {
	f.loadedFor = studentID
	return f.loadErr
}

func (f *fakeDashboardScreen) MarkCompleted(_ context.Context, enrollmentID string) error {
	f.marked = append(f.marked, enrollmentID)
	if f.markErr != nil {
		return f.markErr
	}
	for i := range f.view.Enrollments {
		if f.view.Enrollments[i].ID == enrollmentID {
			f.view.Enrollments[i].Completed = true
		}
	}
	return nil
}

func (f *fakeDashboardScreen) Owns(enrollmentID string) bool {
	for _, enrollment := range f.view.Enrollments {
		if enrollment.ID == enrollmentID {
			return true
		}
	}
	for _, id := range f.hidden {
		if id == enrollmentID {
			return true
		}
	}
	return false
}

func (f *fakeDashboardScreen) View() dto.DashboardView {
	return f.view
}

func newDashboardRouter(screen *fakeDashboardScreen) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewDashboardHandler(func() DashboardScreen { return screen })
	r := gin.New()
	r.GET("/dashboard/:studentId", h.Get)
	r.POST("/dashboard/:studentId/enrollments/:enrollmentId/complete", h.Complete)
	return r
}

func dashboardView() dto.DashboardView {
	return dto.DashboardView{
		Student: &models.Student{ID: "stu-1", Name: "Ada"},
		Enrollments: []models.EnrollmentWithCourse{{
			Enrollment: models.Enrollment{ID: "enr-1", StudentID: "stu-1", CourseID: "course-1", Progress: 40},
			Course:     models.Course{ID: "course-1", Name: "Algorithms"},
		}},
	}
}

func TestDashboardHandlerGet(t *testing.T) {
	screen := &fakeDashboardScreen{view: dashboardView()}
	r := newDashboardRouter(screen)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/stu-1", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "stu-1", screen.loadedFor)
	envelope := decodeEnvelope(t, rec)
	enrollments := envelope.Data["enrollments"].([]interface{})
	require.Len(t, enrollments, 1)
	course := enrollments[0].(map[string]interface{})["course"].(map[string]interface{})
	assert.Equal(t, "Algorithms", course["name"])
}

func TestDashboardHandlerStudentNotFound(t *testing.T) {
	screen := &fakeDashboardScreen{
		loadErr: appErrors.Clone(appErrors.ErrNotFound, "student not found"),
		view:    dto.DashboardView{NotFound: true, Message: dto.MessageStudentNotFound, Enrollments: []models.EnrollmentWithCourse{}},
	}
	r := newDashboardRouter(screen)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/stu-404", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, dto.MessageStudentNotFound, envelope.Data["message"])
	assert.NotContains(t, envelope.Meta, "stale")
}

func TestDashboardHandlerComplete(t *testing.T) {
	screen := &fakeDashboardScreen{view: dashboardView()}
	r := newDashboardRouter(screen)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/dashboard/stu-1/enrollments/enr-1/complete", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"enr-1"}, screen.marked)
	envelope := decodeEnvelope(t, rec)
	enrollment := envelope.Data["enrollments"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, true, enrollment["completed"])
}

func TestDashboardHandlerCompleteRejectsForeignEnrollment(t *testing.T) {
	screen := &fakeDashboardScreen{view: dashboardView()}
	r := newDashboardRouter(screen)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/dashboard/stu-1/enrollments/enr-9/complete", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, screen.marked)
}

func TestDashboardHandlerCompleteEnrollmentWithoutCourse(t *testing.T) {
	screen := &fakeDashboardScreen{view: dashboardView(), hidden: []string{"enr-2"}}
	r := newDashboardRouter(screen)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/dashboard/stu-1/enrollments/enr-2/complete", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"enr-2"}, screen.marked)
}

func TestDashboardHandlerCompleteFailure(t *testing.T) {
	screen := &fakeDashboardScreen{
		view:    dashboardView(),
		markErr: appErrors.Clone(appErrors.ErrUpstream, "failed to mark enrollment completed"),
	}
	r := newDashboardRouter(screen)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/dashboard/stu-1/enrollments/enr-1/complete", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope.Meta["stale"])
	enrollment := envelope.Data["enrollments"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, false, enrollment["completed"])
}
