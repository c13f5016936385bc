package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-catalog-api/internal/dto"
	"github.com/noah-isme/course-catalog-api/internal/models"
	appErrors "github.com/noah-isme/course-catalog-api/pkg/errors"
)

type identitySwitcher interface {
	Current() *models.Student
	Students() []models.Student
	Switch(id string) bool
}

// SessionService exposes the identity selector over the API.
type SessionService struct {
	session   identitySwitcher
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSessionService constructs the service.
func NewSessionService(session identitySwitcher, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{session: session, validator: validate, logger: logger}
}

// View returns the active student and the roster.
func (s *SessionService) View(context.Context) *dto.SessionView {
	students := s.session.Students()
	if students == nil {
		students = []models.Student{}
	}
	return &dto.SessionView{Current: s.session.Current(), Students: students}
}

// Switch makes the requested student active.
func (s *SessionService) Switch(ctx context.Context, req dto.SwitchStudentRequest) (*dto.SessionView, error) {
	req.StudentID = strings.TrimSpace(req.StudentID)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if !s.session.Switch(req.StudentID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return s.View(ctx), nil
}
