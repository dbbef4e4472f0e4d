package valueobject

import "time"

type SessionToken struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func NewSessionToken(accessToken string, expiresAt time.Time) *SessionToken {
	return &SessionToken{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}
}
