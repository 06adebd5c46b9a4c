package repository

import (
	"context"

	"github.com/vidtube/auth-service/internal/domain"
)

// UserRepository defines the credential store operations the auth flows need.
// All operations are atomic at single-record granularity.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetProfileByID loads a user without the password hash and refresh
	// token columns. Used by the authentication gate.
	GetProfileByID(ctx context.Context, id string) (*domain.User, error)
	// GetByUsernameOrEmail matches on either identity field.
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error)
	// SetRefreshToken unconditionally overwrites the stored refresh token,
	// invalidating any previously issued one.
	SetRefreshToken(ctx context.Context, userID, token string) error
	// RotateRefreshToken replaces the stored refresh token only if it still
	// equals old. Returns ErrTokenMismatch when a concurrent rotation or a
	// logout got there first.
	RotateRefreshToken(ctx context.Context, userID, old, new string) error
	// ClearRefreshToken unsets the stored refresh token (logout).
	ClearRefreshToken(ctx context.Context, userID string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	UpdateAccount(ctx context.Context, userID, fullName, email string) error
	UpdateAvatarURL(ctx context.Context, userID, url string) error
	UpdateCoverImageURL(ctx context.Context, userID, url string) error
	UpdateLastLogin(ctx context.Context, userID string) error
}
