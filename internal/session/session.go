// Package session holds the process-wide acting student identity.
package session

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/course-catalog-api/internal/models"
)

type rosterReader interface {
	List(ctx context.Context) ([]models.Student, error)
}

// Listener is notified with the new identity (nil when cleared) and its generation.
type Listener func(current *models.Student, generation uint64)

// Session owns the active identity. It is initialised once from the roster and
// then switched explicitly; consumers receive it by injection.
type Session struct {
	roster rosterReader
	logger *zap.Logger

	mu         sync.RWMutex
	students   []models.Student
	current    *models.Student
	generation uint64
	listeners  map[int]Listener
	nextID     int
}

// New constructs an empty session.
func New(roster rosterReader, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{roster: roster, logger: logger, listeners: make(map[int]Listener)}
}

// Init loads the roster and activates the first student. On failure the
// session is left untouched.
func (s *Session) Init(ctx context.Context) error {
	students, err := s.roster.List(ctx)
	if err != nil {
		s.logger.Error("failed to load student roster", zap.Error(err))
		return fmt.Errorf("load roster: %w", err)
	}

	s.mu.Lock()
	s.students = students
	var first *models.Student
	if len(students) > 0 {
		selected := students[0]
		first = &selected
	}
	s.current = first
	s.generation++
	gen := s.generation
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	s.logger.Info("student roster loaded", zap.Int("students", len(students)))
	notify(listeners, first, gen)
	return nil
}

// Current returns a copy of the active identity, or nil before Init or when the roster is empty.
func (s *Session) Current() *models.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	current := *s.current
	return &current
}

// Students returns the roster.
func (s *Session) Students() []models.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Student(nil), s.students...)
}

// Generation increases on every identity change; loads tag themselves with it.
func (s *Session) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Switch activates the student with the given id. Unknown ids are a no-op and return false.
func (s *Session) Switch(id string) bool {
	s.mu.Lock()
	var selected *models.Student
	for i := range s.students {
		if s.students[i].ID == id {
			student := s.students[i]
			selected = &student
			break
		}
	}
	if selected == nil {
		s.mu.Unlock()
		return false
	}
	if s.current != nil && s.current.ID == selected.ID {
		s.mu.Unlock()
		return true
	}
	s.current = selected
	s.generation++
	gen := s.generation
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	s.logger.Info("active student switched", zap.String("student_id", id))
	notify(listeners, selected, gen)
	return true
}

// Watch registers fn for identity changes and returns its cancel func.
func (s *Session) Watch(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Session) snapshotListeners() []Listener {
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	return listeners
}

func notify(listeners []Listener, current *models.Student, gen uint64) {
	for _, l := range listeners {
		if current == nil {
			l(nil, gen)
			continue
		}
		copied := *current
		l(&copied, gen)
	}
}
