package remote

import (
	"context"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
)

const tasksPath = "/rest/v1/tasks"

// Records is the record store client for the tasks collection. The store scopes
// every request to the owner of the bearer token.
type Records struct {
	client *Client
	logger *zap.Logger
}

func NewRecords(client *Client, logger *zap.Logger) *Records {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Records{client: client, logger: logger}
}

func (r *Records) Select(ctx context.Context, sess *domain.Session) ([]domain.Task, error) {
	query := url.Values{"order": []string{"created_at.desc"}}
	var rows []domain.Task
	if err := r.client.call(ctx, http.MethodGet, tasksPath, query, sess.AccessToken, nil, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.Task{}
	}
	return rows, nil
}

func (r *Records) Insert(ctx context.Context, sess *domain.Session, row domain.NewTask) (*domain.Task, error) {
	var created domain.Task
	if err := r.client.call(ctx, http.MethodPost, tasksPath, nil, sess.AccessToken, row, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *Records) Update(ctx context.Context, sess *domain.Session, id string, patch domain.TaskPatch) error {
	return r.client.call(ctx, http.MethodPatch, tasksPath, byID(id), sess.AccessToken, patch, nil)
}

func (r *Records) Delete(ctx context.Context, sess *domain.Session, id string) error {
	return r.client.call(ctx, http.MethodDelete, tasksPath, byID(id), sess.AccessToken, nil, nil)
}

func byID(id string) url.Values {
	return url.Values{"id": []string{"eq." + id}}
}
