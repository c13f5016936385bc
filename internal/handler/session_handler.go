package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-catalog-api/internal/dto"
	appErrors "github.com/noah-isme/course-catalog-api/pkg/errors"
	"github.com/noah-isme/course-catalog-api/pkg/response"
)

type sessionService interface {
	View(ctx context.Context) *dto.SessionView
	Switch(ctx context.Context, req dto.SwitchStudentRequest) (*dto.SessionView, error)
}

// SessionHandler serves the identity selector.
type SessionHandler struct {
	service sessionService
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(service sessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

// Get godoc
// @Summary Active student and roster
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /session [get]
func (h *SessionHandler) Get(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.View(c.Request.Context()))
}

// Switch godoc
// @Summary Switch the active student
// @Tags Session
// @Accept json
// @Produce json
// @Param payload body dto.SwitchStudentRequest true "Student to activate"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /session/current [put]
func (h *SessionHandler) Switch(c *gin.Context) {
	var req dto.SwitchStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	view, err := h.service.Switch(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}
