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

// DashboardScreen is a single dashboard screen instance.
type DashboardScreen interface {
	Load(ctx context.Context, studentID string) error
	MarkCompleted(ctx context.Context, enrollmentID string) error
	Owns(enrollmentID string) bool
	View() dto.DashboardView
}

// DashboardHandler wires dashboard screens to HTTP endpoints.
type DashboardHandler struct {
	openDashboard func() DashboardScreen
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(openDashboard func() DashboardScreen) *DashboardHandler {
	return &DashboardHandler{openDashboard: openDashboard}
}

// Get godoc
// @Summary Student dashboard with enrolled courses
// @Tags Dashboard
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /dashboard/{studentId} [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	studentID := strings.TrimSpace(c.Param("studentId"))
	if studentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "studentId is required"))
		return
	}
	screen := h.openDashboard()
	if err := screen.Load(c.Request.Context(), studentID); err != nil {
		h.failure(c, screen, err)
		return
	}
	response.JSON(c, http.StatusOK, screen.View(), middleware.ExtractMeta(c))
}

// Complete godoc
// @Summary Mark an enrollment as completed
// @Tags Dashboard
// @Produce json
// @Param studentId path string true "Student ID"
// @Param enrollmentId path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /dashboard/{studentId}/enrollments/{enrollmentId}/complete [post]
func (h *DashboardHandler) Complete(c *gin.Context) {
	studentID := strings.TrimSpace(c.Param("studentId"))
	enrollmentID := strings.TrimSpace(c.Param("enrollmentId"))
	if studentID == "" || enrollmentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "studentId and enrollmentId are required"))
		return
	}
	screen := h.openDashboard()
	if err := screen.Load(c.Request.Context(), studentID); err != nil {
		h.failure(c, screen, err)
		return
	}
	if !screen.Owns(enrollmentID) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found"))
		return
	}
	if err := screen.MarkCompleted(c.Request.Context(), enrollmentID); err != nil {
		h.failure(c, screen, err)
		return
	}
	response.JSON(c, http.StatusOK, screen.View(), middleware.ExtractMeta(c))
}

func (h *DashboardHandler) failure(c *gin.Context, screen DashboardScreen, err error) {
	if !errors.Is(err, appErrors.ErrNotFound) {
		middleware.SetStale(c, true)
	}
	response.ErrorWithData(c, err, screen.View(), middleware.ExtractMeta(c))
}
