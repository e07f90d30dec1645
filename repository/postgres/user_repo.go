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

const usersTable = "users"

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates a Postgres-backed user repository.
func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.getOne(ctx, goqu.Ex{"id": id})
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, goqu.Ex{"email": email})
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil || user.Email == "" {
		return domain.ErrInvalidPayload
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	query, args, err := dialect.Insert(usersTable).
		Rows(goqu.Record{
			"id":            user.ID,
			"email":         user.Email,
			"password_hash": user.PasswordHash,
			"salt":          user.Salt,
		}).
		Returning("created_at", "updated_at").
		Prepared(true).
		ToSQL()
	if err != nil {
		return err
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		if hasCode(err, pgUniqueViolation) {
			return domain.ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *userRepository) getOne(ctx context.Context, where goqu.Ex) (*domain.User, error) {
	query, args, err := dialect.From(usersTable).
		Select(asText("id"), "email", "password_hash", "salt", "created_at", "updated_at").
		Where(where).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var user domain.User
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Salt,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		if hasCode(err, pgInvalidTextForType) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
