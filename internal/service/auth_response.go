package service

import (
	"context"
	"fmt"
	"time"

	"github.com/vidtube/auth-service/internal/domain"
	"github.com/vidtube/auth-service/internal/dto"
)

// AuthResult carries a freshly issued token pair and the safe user projection
type AuthResult struct {
	AccessToken      string
	RefreshToken     string
	TokenType        string
	AccessExpiresIn  int // seconds
	RefreshExpiresIn int // seconds
	User             dto.UserResponse
}

// issueSession generates a token pair and persists the refresh token,
// overwriting whatever was stored before.
func (s *authService) issueSession(ctx context.Context, user *domain.User) (*AuthResult, error) {
	accessToken, err := s.tokenManager.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.tokenManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	if err := s.userRepo.SetRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return s.buildAuthResult(user, accessToken, refreshToken), nil
}

func (s *authService) buildAuthResult(user *domain.User, accessToken, refreshToken string) *AuthResult {
	return &AuthResult{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		TokenType:        "Bearer",
		AccessExpiresIn:  s.tokenManager.GetAccessTokenExpiry(),
		RefreshExpiresIn: s.tokenManager.GetRefreshTokenExpiry(),
		User:             toUserResponse(user),
	}
}

func toUserResponse(user *domain.User) dto.UserResponse {
	history := user.WatchHistory
	if history == nil {
		history = []string{}
	}

	return dto.UserResponse{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.Email,
		FullName:      user.FullName,
		AvatarURL:     user.AvatarURL,
		CoverImageURL: user.CoverImageURL,
		WatchHistory:  history,
		CreatedAt:     user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     user.UpdatedAt.Format(time.RFC3339),
	}
}
