package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-catalog-api/internal/models"
)

type fakeRoster struct {
	students []models.Student
	err      error
}

func (f *fakeRoster) List(context.Context) ([]models.Student, error) {
	return f.students, f.err
}

func roster() *fakeRoster {
	return &fakeRoster{students: []models.Student{
		{ID: "stu-1", Name: "Ada"},
		{ID: "stu-2", Name: "Linus"},
	}}
}

func TestSessionInitSelectsFirstStudent(t *testing.T) {
	s := New(roster(), nil)
	assert.Nil(t, s.Current())

	require.NoError(t, s.Init(context.Background()))

	require.NotNil(t, s.Current())
	assert.Equal(t, "stu-1", s.Current().ID)
	assert.Len(t, s.Students(), 2)
	assert.Equal(t, uint64(1), s.Generation())
}

func TestSessionInitEmptyRoster(t *testing.T) {
	s := New(&fakeRoster{}, nil)

	require.NoError(t, s.Init(context.Background()))
	assert.Nil(t, s.Current())
}

func TestSessionInitFailureKeepsEmpty(t *testing.T) {
	s := New(&fakeRoster{err: errors.New("db down")}, nil)

	assert.Error(t, s.Init(context.Background()))
	assert.Nil(t, s.Current())
	assert.Empty(t, s.Students())
}

func TestSessionSwitch(t *testing.T) {
	s := New(roster(), nil)
	require.NoError(t, s.Init(context.Background()))

	var seen []string
	cancel := s.Watch(func(current *models.Student, _ uint64) {
		seen = append(seen, current.ID)
	})

	assert.False(t, s.Switch("unknown"))
	assert.Equal(t, "stu-1", s.Current().ID)

	assert.True(t, s.Switch("stu-2"))
	assert.Equal(t, "stu-2", s.Current().ID)
	assert.Equal(t, uint64(2), s.Generation())

	assert.True(t, s.Switch("stu-2"))
	assert.Equal(t, uint64(2), s.Generation())

	cancel()
	assert.True(t, s.Switch("stu-1"))
	assert.Equal(t, []string{"stu-2"}, seen)
}

func TestSessionCurrentIsCopy(t *testing.T) {
	s := New(roster(), nil)
	require.NoError(t, s.Init(context.Background()))

	current := s.Current()
	current.Name = "mutated"

	assert.Equal(t, "Ada", s.Current().Name)
}
