package postgres

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

const tasksTable = "tasks"

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func taskColumns() []interface{} {
	return []interface{}{asText("id"), asText("user_id"), "title", "description", "completed", "created_at"}
}

func (r *taskRepository) GetByID(ctx context.Context, userID, id string) (*domain.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrTaskNotFound
	}
	query, args, err := dialect.From(tasksTable).
		Select(taskColumns()...).
		Where(goqu.Ex{"id": id, "user_id": userID}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}
	return scanTask(r.pool.QueryRow(ctx, query, args...))
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	if filter.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	where := goqu.Ex{"user_id": filter.UserID}
	if filter.Completed != nil {
		where["completed"] = *filter.Completed
	}

	query, args, err := dialect.From(tasksTable).
		Select(taskColumns()...).
		Where(where).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Asc()).
		Limit(uint(clampLimit(filter.Limit))).
		Offset(uint(max(filter.Offset, 0))).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil || task.UserID == "" {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	query, args, err := dialect.Insert(tasksTable).
		Rows(goqu.Record{
			"id":          task.ID,
			"user_id":     task.UserID,
			"title":       task.Title,
			"description": task.Description,
			"completed":   task.Completed,
		}).
		Returning("created_at").
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&task.CreatedAt); err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, userID, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrTaskNotFound
	}

	record := goqu.Record{}
	if patch.Title != nil {
		record["title"] = *patch.Title
	}
	if patch.Description != nil {
		record["description"] = *patch.Description
	}
	if patch.Completed != nil {
		record["completed"] = *patch.Completed
	}
	if len(record) == 0 {
		return r.GetByID(ctx, userID, id)
	}
	record["updated_at"] = goqu.L("NOW()")

	query, args, err := dialect.Update(tasksTable).
		Set(record).
		Where(goqu.Ex{"id": id, "user_id": userID}).
		Returning(taskColumns()...).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}
	return scanTask(r.pool.QueryRow(ctx, query, args...))
}

func (r *taskRepository) Delete(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrTaskNotFound
	}
	query, args, err := dialect.Delete(tasksTable).
		Where(goqu.Ex{"id": id, "user_id": userID}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.Completed,
		&task.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}
