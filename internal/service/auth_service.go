package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"

	"github.com/vidtube/auth-service/internal/domain"
	"github.com/vidtube/auth-service/internal/dto"
	"github.com/vidtube/auth-service/internal/media"
	"github.com/vidtube/auth-service/internal/repository"
	"github.com/vidtube/auth-service/internal/utils"
	"go.uber.org/zap"
)

// authService implements AuthService interface
type authService struct {
	userRepo     repository.UserRepository
	tokenManager *utils.TokenManager
	mediaStore   media.Store
	logger       *zap.Logger
	bcryptCost   int
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	tokenManager *utils.TokenManager,
	mediaStore media.Store,
	logger *zap.Logger,
	bcryptCost int,
) AuthService {
	return &authService{
		userRepo:     userRepo,
		tokenManager: tokenManager,
		mediaStore:   mediaStore,
		logger:       logger,
		bcryptCost:   bcryptCost,
	}
}

// Register registers a new user
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	if req.FullName == "" || req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("all fields are required: %w", ErrInvalidInput)
	}

	username := utils.NormalizeIdentifier(req.Username)
	email := utils.NormalizeIdentifier(req.Email)

	if !utils.ValidateEmail(email) {
		return nil, fmt.Errorf("invalid email format: %w", ErrInvalidInput)
	}
	if !utils.ValidateUsername(username) {
		return nil, fmt.Errorf("username must be 3-32 lowercase letters, digits, '_', '.' or '-': %w", ErrInvalidInput)
	}
	if !utils.ValidatePassword(req.Password) {
		return nil, fmt.Errorf("password must be at least 8 characters long and contain uppercase, lowercase, and number: %w", ErrInvalidInput)
	}

	passwordHash, err := utils.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		FullName:     req.FullName,
		PasswordHash: passwordHash,
	}

	// The store's unique constraint is authoritative for duplicate detection;
	// a pre-check would race with concurrent registrations.
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
	)

	resp := toUserResponse(user)
	return &resp, nil
}

// Login authenticates a user and starts a session. Persisting the new refresh
// token overwrites any prior one: a single active session per user.
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*AuthResult, error) {
	if req.Username == "" && req.Email == "" {
		return nil, fmt.Errorf("username or email is required: %w", ErrInvalidInput)
	}
	if req.Password == "" {
		return nil, fmt.Errorf("password is required: %w", ErrInvalidInput)
	}

	username := utils.NormalizeIdentifier(req.Username)
	email := utils.NormalizeIdentifier(req.Email)

	user, err := s.userRepo.GetByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Indistinguishable from a wrong password, so usernames
			// cannot be enumerated through the login endpoint.
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	result, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to update last login", zap.String("user_id", user.ID), zap.Error(err))
	}

	return result, nil
}

// Refresh validates a presented refresh token and rotates the pair.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, ErrTokenInvalid
	}

	userID, err := s.tokenManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// Signature validity alone is not enough: the token must still be the
	// one persisted on the record. A token rotated away or cleared by
	// logout is a replay.
	if user.RefreshToken == nil ||
		subtle.ConstantTimeCompare([]byte(refreshToken), []byte(*user.RefreshToken)) != 1 {
		s.logger.Warn("refresh token reuse detected", zap.String("user_id", user.ID))
		return nil, ErrTokenReused
	}

	accessToken, err := s.tokenManager.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	newRefreshToken, err := s.tokenManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	// Conditional write: only the request that still holds the current
	// stored value wins the rotation. The loser of a concurrent race sees
	// the already-rotated value and fails as a reuse.
	if err := s.userRepo.RotateRefreshToken(ctx, user.ID, refreshToken, newRefreshToken); err != nil {
		if errors.Is(err, repository.ErrTokenMismatch) {
			s.logger.Warn("concurrent refresh lost rotation race", zap.String("user_id", user.ID))
			return nil, ErrTokenReused
		}
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	return s.buildAuthResult(user, accessToken, newRefreshToken), nil
}

// Logout revokes the current session by unsetting the persisted refresh
// token. The access token stays valid until its own expiry; that staleness
// window is bounded by the access token TTL.
func (s *authService) Logout(ctx context.Context, userID string) error {
	if err := s.userRepo.ClearRefreshToken(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	return nil
}

// Authenticate verifies an access token and loads the persisted identity
// behind it, without the secret columns.
func (s *authService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.tokenManager.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	user, err := s.userRepo.GetProfileByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, fmt.Errorf("failed to load identity: %w", err)
	}

	return user, nil
}

// CurrentUser gets the profile of the authenticated user
func (s *authService) CurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetProfileByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// ChangePassword verifies the old password and stores a new hash
func (s *authService) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if !utils.CheckPasswordHash(req.OldPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	if !utils.ValidatePassword(req.NewPassword) {
		return fmt.Errorf("password must be at least 8 characters long and contain uppercase, lowercase, and number: %w", ErrInvalidInput)
	}

	passwordHash, err := utils.HashPassword(req.NewPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// UpdateAccount updates full name and/or email of the authenticated user
func (s *authService) UpdateAccount(ctx context.Context, userID string, req *dto.UpdateAccountRequest) (*dto.UserResponse, error) {
	if req.FullName == "" && req.Email == "" {
		return nil, fmt.Errorf("nothing to update: %w", ErrInvalidInput)
	}

	user, err := s.userRepo.GetProfileByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	fullName := user.FullName
	if req.FullName != "" {
		fullName = req.FullName
	}

	email := user.Email
	if req.Email != "" {
		email = utils.NormalizeIdentifier(req.Email)
		if !utils.ValidateEmail(email) {
			return nil, fmt.Errorf("invalid email format: %w", ErrInvalidInput)
		}
	}

	if err := s.userRepo.UpdateAccount(ctx, userID, fullName, email); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	return s.CurrentUser(ctx, userID)
}

// UpdateAvatar uploads a new avatar to the media store and saves its URL
func (s *authService) UpdateAvatar(ctx context.Context, userID, contentType string, body io.Reader) (*dto.UserResponse, error) {
	return s.updateImage(ctx, userID, "avatars", contentType, body, s.userRepo.UpdateAvatarURL)
}

// UpdateCoverImage uploads a new cover image to the media store and saves its URL
func (s *authService) UpdateCoverImage(ctx context.Context, userID, contentType string, body io.Reader) (*dto.UserResponse, error) {
	return s.updateImage(ctx, userID, "covers", contentType, body, s.userRepo.UpdateCoverImageURL)
}

func (s *authService) updateImage(
	ctx context.Context,
	userID, folder, contentType string,
	body io.Reader,
	save func(ctx context.Context, userID, url string) error,
) (*dto.UserResponse, error) {
	url, err := s.mediaStore.Upload(ctx, folder, contentType, body)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	if err := save(ctx, userID, url); err != nil {
		return nil, fmt.Errorf("failed to save image url: %w", err)
	}

	s.logger.Info("user image updated",
		zap.String("user_id", userID),
		zap.String("folder", folder),
	)

	return s.CurrentUser(ctx, userID)
}
