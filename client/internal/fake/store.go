package fake

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/taskboard/domain"
)

// Store is an in-memory record store applying the owner policy by session user id.
type Store struct {
	mu    sync.Mutex
	rows  map[string]domain.Task
	clock time.Time
	calls map[string]int

	SelectErr error
	InsertErr error
	UpdateErr error
	DeleteErr error

	// Hold, when set, is received from before a call returns so tests can keep it in flight.
	Hold chan struct{}
}

func NewStore() *Store {
	return &Store{
		rows:  make(map[string]domain.Task),
		clock: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
		calls: make(map[string]int),
	}
}

// Calls reports how many times the named method ran.
func (s *Store) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// SetErr replaces an injected failure while calls may be running.
func (s *Store) SetErr(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch method {
	case "Select":
		s.SelectErr = err
	case "Insert":
		s.InsertErr = err
	case "Update":
		s.UpdateErr = err
	case "Delete":
		s.DeleteErr = err
	}
}

// SetHold installs (or with nil removes) the channel calls wait on.
func (s *Store) SetHold(hold chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Hold = hold
}

// Rows returns every stored row regardless of owner, newest first.
func (s *Store) Rows() []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(domain.Task) bool { return true })
}

func (s *Store) Select(_ context.Context, sess *domain.Session) ([]domain.Task, error) {
	s.wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["Select"]++
	if s.SelectErr != nil {
		return nil, s.SelectErr
	}
	return s.sorted(func(t domain.Task) bool { return t.UserID == sess.UserID }), nil
}

func (s *Store) Insert(_ context.Context, sess *domain.Session, row domain.NewTask) (*domain.Task, error) {
	s.wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["Insert"]++
	if s.InsertErr != nil {
		return nil, s.InsertErr
	}
	s.clock = s.clock.Add(time.Second)
	task := domain.Task{
		ID:          uuid.NewString(),
		UserID:      sess.UserID,
		Title:       row.Title,
		Description: row.Description,
		Completed:   row.Completed,
		CreatedAt:   s.clock,
	}
	s.rows[task.ID] = task
	return &task, nil
}

func (s *Store) Update(_ context.Context, sess *domain.Session, id string, patch domain.TaskPatch) error {
	s.wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["Update"]++
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	task, ok := s.rows[id]
	if !ok || task.UserID != sess.UserID {
		return domain.ErrTaskNotFound
	}
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}
	s.rows[id] = task
	return nil
}

func (s *Store) Delete(_ context.Context, sess *domain.Session, id string) error {
	s.wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["Delete"]++
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	task, ok := s.rows[id]
	if !ok || task.UserID != sess.UserID {
		return domain.ErrTaskNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *Store) wait() {
	s.mu.Lock()
	hold := s.Hold
	s.mu.Unlock()
	if hold != nil {
		<-hold
	}
}

func (s *Store) sorted(keep func(domain.Task) bool) []domain.Task {
	out := make([]domain.Task, 0, len(s.rows))
	for _, task := range s.rows {
		if keep(task) {
			out = append(out, task)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
