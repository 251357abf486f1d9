package domain

import "time"

// TokenPair is the credential pair returned by the provider's token endpoint.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// ExternalProfile is the provider account snapshot fetched once per request.
type ExternalProfile struct {
	ExternalID  string
	DisplayName string
	AvatarURL   string
}

// StoredTokens is the latest token pair persisted for a user.
// It is always written as a whole.
type StoredTokens struct {
	UserID       string    `json:"user_id" db:"user_id"`
	AccessToken  string    `json:"access_token" db:"access_token"`
	RefreshToken string    `json:"refresh_token" db:"refresh_token"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
