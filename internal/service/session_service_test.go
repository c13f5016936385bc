package service

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/course-catalog-api/internal/dto"
	appErrors "github.com/noah-isme/course-catalog-api/pkg/errors"
)

func TestSessionServiceSwitch(t *testing.T) {
	svc := NewSessionService(newTestSession(t, "stu-1", "stu-2"), validator.New(), zap.NewNop())

	view := svc.View(context.Background())
	require.NotNil(t, view.Current)
	assert.Equal(t, "stu-1", view.Current.ID)
	assert.Len(t, view.Students, 2)

	view, err := svc.Switch(context.Background(), dto.SwitchStudentRequest{StudentID: " stu-2 "})
	require.NoError(t, err)
	assert.Equal(t, "stu-2", view.Current.ID)
}

func TestSessionServiceSwitchRejectsInvalid(t *testing.T) {
	sess := newTestSession(t, "stu-1")
	svc := NewSessionService(sess, nil, nil)

	_, err := svc.Switch(context.Background(), dto.SwitchStudentRequest{})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Switch(context.Background(), dto.SwitchStudentRequest{StudentID: "stu-404"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Equal(t, "stu-1", sess.Current().ID)
}

func TestSessionServiceEmptyRoster(t *testing.T) {
	svc := NewSessionService(newTestSession(t), nil, nil)

	view := svc.View(context.Background())
	assert.Nil(t, view.Current)
	assert.NotNil(t, view.Students)
	assert.Empty(t, view.Students)
}
