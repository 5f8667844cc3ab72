package ports

import (
	"context"

	"github.com/lcalzada-xor/wbrute/internal/core/domain"
)

// AuthService defines the business logic for authentication.
type AuthService interface {
	// Login validates credentials and returns a session token.
	Login(ctx context.Context, creds domain.Credentials) (string, error)
	// ValidateToken checks if a token is valid and returns the associated user.
	ValidateToken(ctx context.Context, token string) (*domain.User, error)
	// Logout invalidates a session token.
	Logout(ctx context.Context, token string) error
	// CreateUser registers a new user (admin only).
	CreateUser(ctx context.Context, user domain.User, password string) error
	// ListUsers returns accounts, optionally filtered by role.
	ListUsers(ctx context.Context, role domain.Role) ([]domain.User, error)
}

// UserRepository defines the persistence layer for users.
type UserRepository interface {
	Save(ctx context.Context, user domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// List filters by role unless role is empty.
	List(ctx context.Context, role domain.Role) ([]domain.User, error)
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
}
