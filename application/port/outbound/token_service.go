package outbound

import "time"

type TokenClaims struct {
	SessionID string    `json:"session_id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

type TokenService interface {
	GenerateAccessToken(claims TokenClaims) (string, time.Time, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
}
