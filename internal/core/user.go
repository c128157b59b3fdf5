package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/edvin/stream/internal/model"
	"github.com/edvin/stream/internal/platform"
)

// UserService reads and creates user accounts.
type UserService struct {
	db DB
}

// NewUserService creates a new UserService.
func NewUserService(db DB) *UserService {
	return &UserService{db: db}
}

// GetByID retrieves a user by ID. Returns ErrNoUser if no such user exists.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := s.db.QueryRow(ctx,
		`SELECT id, login, display_name, roles, super_admin, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Login, &u.DisplayName, &u.Roles, &u.SuperAdmin, &u.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrNoUser
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return &u, nil
}

// Create inserts a new user. Used by the seed-user admin command.
func (s *UserService) Create(ctx context.Context, login, displayName string, roles []string, superAdmin bool) (*model.User, error) {
	id := platform.NewID()

	if roles == nil {
		roles = []string{}
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO users (id, login, display_name, roles, super_admin, created_at) VALUES ($1, $2, $3, $4, $5, now())`,
		id, login, displayName, roles, superAdmin,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	u := &model.User{
		ID:          id,
		Login:       login,
		DisplayName: displayName,
		Roles:       roles,
		SuperAdmin:  superAdmin,
	}
	err = s.db.QueryRow(ctx, `SELECT created_at FROM users WHERE id = $1`, id).Scan(&u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get user created_at: %w", err)
	}

	return u, nil
}
