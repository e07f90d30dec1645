package domain

import (
	"sort"
	"strings"
	"time"
)

// Task represents a user-owned to-do item. UserID is display-only on the client:
// ownership is enforced by the record store.
type Task struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewTask is the insert payload. The owner is filled from the acting session.
type NewTask struct {
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// TaskPatch carries the mutable fields of an update; nil fields are left untouched.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// ValidateTitle trims the title and rejects an empty result.
func ValidateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrTitleRequired
	}
	return title, nil
}

// CreatedLabel renders the creation date the way the dashboard shows it.
func (t Task) CreatedLabel() string {
	if t.CreatedAt.IsZero() {
		return ""
	}
	return "Created " + t.CreatedAt.Local().Format("2006-01-02")
}

// SortNewestFirst orders tasks by creation time, newest first. Ties keep their input order.
func SortNewestFirst(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
}
