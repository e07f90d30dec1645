package repository

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

// SessionRepository stores issued sessions. Deleting a session revokes every
// token that names it; Get reports domain.ErrSessionNotFound once it is gone or expired.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
}
