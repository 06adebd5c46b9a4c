package service

import (
	"context"
	"io"

	"github.com/vidtube/auth-service/internal/domain"
	"github.com/vidtube/auth-service/internal/dto"
)

// AuthService defines the session and account operations of the platform
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	Logout(ctx context.Context, userID string) error

	// Authenticate verifies an access token and re-fetches the persisted
	// identity, so a deleted account is caught even with a valid signature.
	Authenticate(ctx context.Context, accessToken string) (*domain.User, error)

	CurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error
	UpdateAccount(ctx context.Context, userID string, req *dto.UpdateAccountRequest) (*dto.UserResponse, error)
	UpdateAvatar(ctx context.Context, userID, contentType string, body io.Reader) (*dto.UserResponse, error)
	UpdateCoverImage(ctx context.Context, userID, contentType string, body io.Reader) (*dto.UserResponse, error)
}

// ImageUpdateFunc is the shape shared by UpdateAvatar and UpdateCoverImage
type ImageUpdateFunc func(ctx context.Context, userID, contentType string, body io.Reader) (*dto.UserResponse, error)
