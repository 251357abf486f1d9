package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"

	"github.com/sumire/strava-bridge/internal/domain"
)

// StravaConfig holds the Strava client credentials and endpoints.
type StravaConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	APIURL       string
}

// StravaClient performs the refresh-token grant and reads the athlete profile.
// Each call makes exactly one outbound request and never retries.
type StravaClient struct {
	oauth      *oauth2.Config
	apiURL     string
	httpClient *http.Client
}

// NewStravaClient creates a new StravaClient. A nil httpClient falls back to
// http.DefaultClient.
func NewStravaClient(cfg StravaConfig, httpClient *http.Client) *StravaClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &StravaClient{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		apiURL:     cfg.APIURL,
		httpClient: httpClient,
	}
}

// RefreshToken exchanges a refresh token for a fresh token pair. The returned
// refresh token is authoritative: it is the rotated one when the provider
// issued a new token, the input otherwise.
func (c *StravaClient) RefreshToken(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	token, err := c.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("%w: strava token refresh: %v", domain.ErrUpstream, err)
	}

	return domain.TokenPair{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}, nil
}

type stravaAthlete struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Profile   string `json:"profile"`
}

// FetchAthlete reads the authenticated athlete's profile.
func (c *StravaClient) FetchAthlete(ctx context.Context, accessToken string) (domain.ExternalProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/athlete", nil)
	if err != nil {
		return domain.ExternalProfile{}, fmt.Errorf("%w: create athlete request: %v", domain.ErrUpstream, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.ExternalProfile{}, fmt.Errorf("%w: fetch athlete: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.ExternalProfile{}, fmt.Errorf("%w: strava athlete returned status %d", domain.ErrUpstream, resp.StatusCode)
	}

	var athlete stravaAthlete
	if err := json.NewDecoder(resp.Body).Decode(&athlete); err != nil {
		return domain.ExternalProfile{}, fmt.Errorf("%w: decode athlete: %v", domain.ErrUpstream, err)
	}
	if athlete.ID == 0 {
		return domain.ExternalProfile{}, fmt.Errorf("%w: athlete response has no id", domain.ErrUpstream)
	}

	return domain.ExternalProfile{
		ExternalID:  strconv.FormatInt(athlete.ID, 10),
		DisplayName: athlete.Firstname,
		AvatarURL:   athlete.Profile,
	}, nil
}
