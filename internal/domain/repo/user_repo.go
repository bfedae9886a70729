package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/linkfolio/backend/internal/domain/model"
)

type UserRepo interface {
	CreateUser(ctx context.Context, u model.User) (uuid.UUID, error)

	GetUserByEmail(ctx context.Context, email string) (model.User, error)

	GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error)

	// GetUserByRefreshToken resolves the single user whose stored refresh
	// token equals the presented value. The stored value is authoritative:
	// a cleared field revokes the token before its cryptographic expiry.
	GetUserByRefreshToken(ctx context.Context, token string) (model.User, error)

	GetUserByResetToken(ctx context.Context, tokenHash string) (model.User, error)

	UpdateUser(ctx context.Context, u model.User) error

	// SetRefreshToken overwrites the refresh-token column for one user.
	// An empty value logs the session out.
	SetRefreshToken(ctx context.Context, id uuid.UUID, token string) error

	DeleteUser(ctx context.Context, id uuid.UUID) error
}
