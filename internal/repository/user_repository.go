package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/vidtube/auth-service/internal/domain"
	"github.com/vidtube/auth-service/pkg/database"
)

// userRepository implements UserRepository on PostgreSQL
type userRepository struct {
	db *database.Postgres
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Postgres) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, username, email, full_name, avatar_url, cover_image_url, password_hash, watch_history, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}
	if user.WatchHistory == nil {
		user.WatchHistory = []string{}
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.FullName,
		user.AvatarURL,
		user.CoverImageURL,
		user.PasswordHash,
		pq.Array(user.WatchHistory),
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation on username or email
				return fmt.Errorf("user %s/%s already exists: %w", user.Username, user.Email, ErrDuplicateUser)
			}
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

const userColumns = `id, username, email, full_name, avatar_url, cover_image_url, password_hash, refresh_token, watch_history, created_at, updated_at, last_login_at`

func scanUser(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}
	var refreshToken sql.NullString
	var lastLoginAt sql.NullTime
	var watchHistory pq.StringArray

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.AvatarURL,
		&user.CoverImageURL,
		&user.PasswordHash,
		&refreshToken,
		&watchHistory,
		&user.CreatedAt,
		&user.UpdatedAt,
		&lastLoginAt,
	)
	if err != nil {
		return nil, err
	}

	if refreshToken.Valid {
		user.RefreshToken = &refreshToken.String
	}
	if lastLoginAt.Valid {
		user.LastLoginAt = &lastLoginAt.Time
	}
	user.WatchHistory = watchHistory

	return user, nil
}

// GetByID retrieves a user by ID, secrets included
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)

	user, err := scanUser(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// GetProfileByID retrieves a user by ID without the password hash and refresh
// token columns, so callers cannot accidentally leak them downstream.
func (r *userRepository) GetProfileByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, username, email, full_name, avatar_url, cover_image_url, watch_history, created_at, updated_at, last_login_at
		FROM users
		WHERE id = $1
	`

	user := &domain.User{}
	var lastLoginAt sql.NullTime
	var watchHistory pq.StringArray

	err := r.db.DB.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.AvatarURL,
		&user.CoverImageURL,
		&watchHistory,
		&user.CreatedAt,
		&user.UpdatedAt,
		&lastLoginAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}

	if lastLoginAt.Valid {
		user.LastLoginAt = &lastLoginAt.Time
	}
	user.WatchHistory = watchHistory

	return user, nil
}

// GetByUsernameOrEmail retrieves a user matching either identity field
func (r *userRepository) GetByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1 OR email = $2`, userColumns)

	user, err := scanUser(r.db.DB.QueryRowContext(ctx, query, username, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s/%s not found: %w", username, email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by username or email: %w", err)
	}

	return user, nil
}

// SetRefreshToken unconditionally overwrites the stored refresh token
func (r *userRepository) SetRefreshToken(ctx context.Context, userID, token string) error {
	query := `
		UPDATE users
		SET refresh_token = $2, updated_at = $3
		WHERE id = $1
	`

	return r.execExpectingRow(ctx, userID, query, userID, token, time.Now())
}

// RotateRefreshToken performs the compare-and-swap rotation: the new token is
// written only where the stored value still equals the presented one. Zero
// rows means the token was already rotated away or revoked; of two concurrent
// refresh attempts with the same token at most one passes this update.
func (r *userRepository) RotateRefreshToken(ctx context.Context, userID, old, new string) error {
	query := `
		UPDATE users
		SET refresh_token = $3, updated_at = $4
		WHERE id = $1 AND refresh_token = $2
	`

	result, err := r.db.DB.ExecContext(ctx, query, userID, old, new, time.Now())
	if err != nil {
		return fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("refresh token for user %s already rotated: %w", userID, ErrTokenMismatch)
	}

	return nil
}

// ClearRefreshToken unsets the stored refresh token
func (r *userRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	query := `
		UPDATE users
		SET refresh_token = NULL, updated_at = $2
		WHERE id = $1
	`

	return r.execExpectingRow(ctx, userID, query, userID, time.Now())
}

// UpdatePassword replaces the stored password hash
func (r *userRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = $3
		WHERE id = $1
	`

	return r.execExpectingRow(ctx, userID, query, userID, passwordHash, time.Now())
}

// UpdateAccount updates mutable account details
func (r *userRepository) UpdateAccount(ctx context.Context, userID, fullName, email string) error {
	query := `
		UPDATE users
		SET full_name = $2, email = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := r.db.DB.ExecContext(ctx, query, userID, fullName, email, time.Now())
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" {
				return fmt.Errorf("email %s already taken: %w", email, ErrDuplicateUser)
			}
		}
		return fmt.Errorf("failed to update account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user with id %s not found: %w", userID, ErrNotFound)
	}

	return nil
}

// UpdateAvatarURL replaces the avatar reference
func (r *userRepository) UpdateAvatarURL(ctx context.Context, userID, url string) error {
	query := `UPDATE users SET avatar_url = $2, updated_at = $3 WHERE id = $1`
	return r.execExpectingRow(ctx, userID, query, userID, url, time.Now())
}

// UpdateCoverImageURL replaces the cover image reference
func (r *userRepository) UpdateCoverImageURL(ctx context.Context, userID, url string) error {
	query := `UPDATE users SET cover_image_url = $2, updated_at = $3 WHERE id = $1`
	return r.execExpectingRow(ctx, userID, query, userID, url, time.Now())
}

// UpdateLastLogin updates the last login timestamp for a user
func (r *userRepository) UpdateLastLogin(ctx context.Context, userID string) error {
	query := `UPDATE users SET last_login_at = $2 WHERE id = $1`
	return r.execExpectingRow(ctx, userID, query, userID, time.Now())
}

func (r *userRepository) execExpectingRow(ctx context.Context, userID, query string, args ...interface{}) error {
	result, err := r.db.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user with id %s not found: %w", userID, ErrNotFound)
	}

	return nil
}
