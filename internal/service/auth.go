package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/sumire/strava-bridge/internal/domain"
)

// TokenExchanger performs the provider's refresh-token grant.
type TokenExchanger interface {
	RefreshToken(ctx context.Context, refreshToken string) (domain.TokenPair, error)
}

// ProfileFetcher reads the provider account profile with an access token.
type ProfileFetcher interface {
	FetchAthlete(ctx context.Context, accessToken string) (domain.ExternalProfile, error)
}

// TokenStore persists the latest provider token pair per user.
type TokenStore interface {
	SaveTokens(ctx context.Context, tokens domain.StoredTokens) error
}

// UserDirectory defines the user data access interface consumed by AuthService.
// UpdateUser must return domain.ErrNotFound when the user does not exist.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, profile domain.UserProfile) error
	CreateUser(ctx context.Context, id string, profile domain.UserProfile) error
}

// CustomTokenIssuer mints and verifies custom tokens for internal user ids.
type CustomTokenIssuer interface {
	CreateCustomToken(ctx context.Context, uid string) (string, error)
	ValidateToken(token string) (string, error)
}

// AuthService exchanges Strava refresh tokens for custom tokens.
type AuthService struct {
	strava  TokenExchanger
	profile ProfileFetcher
	tokens  TokenStore
	users   UserDirectory
	issuer  CustomTokenIssuer
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	strava TokenExchanger,
	profile ProfileFetcher,
	tokens TokenStore,
	users UserDirectory,
	issuer CustomTokenIssuer,
) *AuthService {
	return &AuthService{
		strava:  strava,
		profile: profile,
		tokens:  tokens,
		users:   users,
		issuer:  issuer,
	}
}

// ExchangeStravaToken refreshes the Strava credential, provisions the
// matching internal user and returns a custom token for it.
func (s *AuthService) ExchangeStravaToken(ctx context.Context, refreshToken string) (string, error) {
	pair, err := s.strava.RefreshToken(ctx, refreshToken)
	if err != nil {
		return "", fmt.Errorf("strava token exchange: %w", err)
	}

	profile, err := s.profile.FetchAthlete(ctx, pair.AccessToken)
	if err != nil {
		return "", fmt.Errorf("fetch strava athlete: %w", err)
	}

	userID := domain.InternalUserID(domain.AuthProviderStrava, profile.ExternalID)

	if err := s.provision(ctx, userID, profile, pair); err != nil {
		return "", err
	}

	token, err := s.issuer.CreateCustomToken(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("issue custom token for %s: %w", userID, err)
	}
	return token, nil
}

// provision stores the token pair and upserts the user record concurrently.
// Both writes always run to completion; the first error is returned.
func (s *AuthService) provision(ctx context.Context, userID string, profile domain.ExternalProfile, pair domain.TokenPair) error {
	var g errgroup.Group

	g.Go(func() error {
		err := s.tokens.SaveTokens(ctx, domain.StoredTokens{
			UserID:       userID,
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
		})
		if err != nil {
			return fmt.Errorf("persist strava tokens: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := s.upsertUser(ctx, userID, profile); err != nil {
			return fmt.Errorf("provision user: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// upsertUser updates the user and falls back to creating it only when the
// update reports that the user does not exist.
func (s *AuthService) upsertUser(ctx context.Context, userID string, profile domain.ExternalProfile) error {
	fields := domain.UserProfile{
		DisplayName: profile.DisplayName,
		AvatarURL:   profile.AvatarURL,
	}

	err := s.users.UpdateUser(ctx, userID, fields)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return s.users.CreateUser(ctx, userID, fields)
}

// ValidateToken verifies a custom token and returns the user id.
func (s *AuthService) ValidateToken(token string) (string, error) {
	return s.issuer.ValidateToken(token)
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}
