package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-catalog-api/internal/dto"
	"github.com/noah-isme/course-catalog-api/internal/middleware"
	appErrors "github.com/noah-isme/course-catalog-api/pkg/errors"
	"github.com/noah-isme/course-catalog-api/pkg/response"
)

// CourseListingScreen is a single course listing screen instance.
type CourseListingScreen interface {
	Load(ctx context.Context) error
	ToggleLike(ctx context.Context, courseID string) error
	View() dto.CourseListingView
}

// CourseDetailScreen is a single course detail screen instance.
type CourseDetailScreen interface {
	Load(ctx context.Context, courseID string) error
	View() dto.CourseDetailView
}

// CourseHandler serves the course listing and course detail screens. Every
// request opens its own screen.
type CourseHandler struct {
	openListing func() CourseListingScreen
	openDetail  func() CourseDetailScreen
}

// NewCourseHandler constructs the handler from screen constructors.
func NewCourseHandler(openListing func() CourseListingScreen, openDetail func() CourseDetailScreen) *CourseHandler {
	return &CourseHandler{openListing: openListing, openDetail: openDetail}
}

// List godoc
// @Summary Course listing for the active student
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	screen := h.openListing()
	if err := loadListing(c.Request.Context(), screen); err != nil {
		h.listingFailure(c, screen, err)
		return
	}
	response.JSON(c, http.StatusOK, screen.View(), middleware.ExtractMeta(c))
}

// ToggleLike godoc
// @Summary Like or unlike a course as the active student
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /courses/{id}/like [post]
func (h *CourseHandler) ToggleLike(c *gin.Context) {
	courseID := strings.TrimSpace(c.Param("id"))
	if courseID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "course id is required"))
		return
	}
	screen := h.openListing()
	if err := loadListing(c.Request.Context(), screen); err != nil {
		h.listingFailure(c, screen, err)
		return
	}
	if err := screen.ToggleLike(c.Request.Context(), courseID); err != nil {
		h.listingFailure(c, screen, err)
		return
	}
	response.JSON(c, http.StatusOK, screen.View(), middleware.ExtractMeta(c))
}

// Detail godoc
// @Summary Course detail including syllabus
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Detail(c *gin.Context) {
	courseID := strings.TrimSpace(c.Param("id"))
	screen := h.openDetail()
	if err := screen.Load(c.Request.Context(), courseID); err != nil {
		response.ErrorWithData(c, err, screen.View())
		return
	}
	response.JSON(c, http.StatusOK, screen.View(), middleware.ExtractMeta(c))
}

// loadListing loads once more for the new student when a switch lands mid-request.
func loadListing(ctx context.Context, screen CourseListingScreen) error {
	err := screen.Load(ctx)
	if errors.Is(err, appErrors.ErrSuperseded) {
		err = screen.Load(ctx)
	}
	return err
}

func (h *CourseHandler) listingFailure(c *gin.Context, screen CourseListingScreen, err error) {
	if errors.Is(err, appErrors.ErrNoActiveIdentity) || errors.Is(err, appErrors.ErrSuperseded) {
		response.Error(c, err)
		return
	}
	middleware.SetStale(c, true)
	response.ErrorWithData(c, err, screen.View(), middleware.ExtractMeta(c))
}
