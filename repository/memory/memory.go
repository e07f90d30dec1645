// Package memory holds process-local repositories used by tests and by the
// server when no database is configured.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type userRepository struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string
}

func NewUserRepository() repository.UserRepository {
	return &userRepository{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *userRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user := r.byID[id]
	return &user, nil
}

func (r *userRepository) Create(_ context.Context, user *domain.User) error {
	if user == nil || user.Email == "" {
		return domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(user.Email)
	if _, taken := r.byEmail[key]; taken {
		return domain.ErrEmailTaken
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	r.byID[user.ID] = *user
	r.byEmail[key] = user.ID
	return nil
}

type taskRepository struct {
	mu    sync.RWMutex
	rows  map[string]domain.Task
	order []string
	now   func() time.Time
}

// NewTaskRepository returns an owner-scoped in-memory task store. Creation
// times are strictly increasing so newest-first ordering is deterministic.
func NewTaskRepository() repository.TaskRepository {
	return &taskRepository{
		rows: make(map[string]domain.Task),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (r *taskRepository) GetByID(_ context.Context, userID, id string) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	task, ok := r.rows[id]
	if !ok || task.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	return &task, nil
}

func (r *taskRepository) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	if filter.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := []domain.Task{}
	for i := len(r.order) - 1; i >= 0; i-- {
		task, ok := r.rows[r.order[i]]
		if !ok || task.UserID != filter.UserID {
			continue
		}
		if filter.Completed != nil && task.Completed != *filter.Completed {
			continue
		}
		tasks = append(tasks, task)
	}
	domain.SortNewestFirst(tasks)

	if filter.Offset > 0 {
		if filter.Offset >= len(tasks) {
			return []domain.Task{}, nil
		}
		tasks = tasks[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(tasks) {
		tasks = tasks[:filter.Limit]
	}
	return tasks, nil
}

func (r *taskRepository) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil || task.UserID == "" {
		return nil, domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	created := r.now()
	if n := len(r.order); n > 0 {
		if last := r.rows[r.order[n-1]].CreatedAt; !created.After(last) {
			created = last.Add(time.Microsecond)
		}
	}
	task.CreatedAt = created
	r.rows[task.ID] = *task
	r.order = append(r.order, task.ID)
	return task, nil
}

func (r *taskRepository) Update(_ context.Context, userID, id string, patch domain.TaskPatch) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.rows[id]
	if !ok || task.UserID != userID {
		return nil, domain.ErrTaskNotFound
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
	r.rows[id] = task
	return &task, nil
}

func (r *taskRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.rows[id]
	if !ok || task.UserID != userID {
		return domain.ErrTaskNotFound
	}
	delete(r.rows, id)
	for i, key := range r.order {
		if key == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

type sessionRepository struct {
	mu   sync.Mutex
	rows map[string]domain.Session
	ttl  time.Duration
}

func NewSessionRepository(ttl time.Duration) repository.SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &sessionRepository{rows: make(map[string]domain.Session), ttl: ttl}
}

func (r *sessionRepository) Get(_ context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if session.IsExpired(time.Now()) {
		delete(r.rows, id)
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

func (r *sessionRepository) Save(_ context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" || session.UserID == "" {
		return domain.ErrInvalidPayload
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	if !session.ExpiresAt.After(session.CreatedAt) {
		session.ExpiresAt = session.CreatedAt.Add(r.ttl)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *session
	stored.AccessToken = ""
	r.rows[session.ID] = stored
	return nil
}

func (r *sessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}
