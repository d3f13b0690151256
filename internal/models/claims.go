package models

import "github.com/golang-jwt/jwt/v5"

// UserClaims is the authenticated identity carried by issued tokens. The
// wallet engines trust the UserID resolved from it as-is.
type UserClaims struct {
	jwt.RegisteredClaims
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	TokenVersion int    `json:"token_version"`
}

// IsAdmin reports whether the claims belong to an operator account.
func (c *UserClaims) IsAdmin() bool {
	return c.Role == "admin"
}
