package domain

import "time"

// AuthProvider represents an OAuth provider.
type AuthProvider string

const (
	AuthProviderStrava AuthProvider = "strava"
)

// InternalUserID maps an external account id onto the internal user id.
// The provider prefix keeps ids from different providers apart.
func InternalUserID(provider AuthProvider, externalID string) string {
	return string(provider) + ":" + externalID
}

// User represents a provisioned user record.
type User struct {
	ID          string    `json:"id" db:"id"`
	DisplayName string    `json:"display_name" db:"display_name"`
	AvatarURL   *string   `json:"avatar_url,omitempty" db:"avatar_url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// UserProfile holds the user fields mirrored from the external profile.
type UserProfile struct {
	DisplayName string
	AvatarURL   string
}
