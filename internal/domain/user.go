package domain

import "time"

// User is the authoritative identity record of the platform.
//
// RefreshToken holds the single currently valid refresh token for the user,
// or nil when no session is active. Issuing a new one invalidates the prior
// one; only the auth service mutates it. PasswordHash never holds a plaintext
// password once the record leaves the registration path.
type User struct {
	ID            string     `json:"id" db:"id"`
	Username      string     `json:"username" db:"username"`
	Email         string     `json:"email" db:"email"`
	FullName      string     `json:"full_name" db:"full_name"`
	AvatarURL     string     `json:"avatar_url" db:"avatar_url"`
	CoverImageURL string     `json:"cover_image_url" db:"cover_image_url"`
	PasswordHash  string     `json:"-" db:"password_hash"`
	RefreshToken  *string    `json:"-" db:"refresh_token"`
	WatchHistory  []string   `json:"watch_history" db:"watch_history"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
	LastLoginAt   *time.Time `json:"last_login_at" db:"last_login_at"`
}
