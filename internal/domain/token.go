package domain

import "time"

// AccessTokenClaims is the identity payload carried by an access token.
// Verified statelessly; no store lookup is needed beyond signature and expiry.
type AccessTokenClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Exp      int64  `json:"exp"`
	Iat      int64  `json:"iat"`
}

// IsExpired checks if the token is expired
func (c AccessTokenClaims) IsExpired() bool {
	return time.Now().Unix() > c.Exp
}
