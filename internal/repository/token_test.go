package repository

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumire/strava-bridge/internal/domain"
)

func TestTokenRepository_SaveTokens(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTokenRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO strava_tokens")).
		WithArgs("strava:42", "access-1", "refresh-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SaveTokens(context.Background(), domain.StoredTokens{
		UserID:       "strava:42",
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisTokenStore_Key(t *testing.T) {
	s := NewRedisTokenStore(nil)
	assert.Equal(t, "strava_tokens:strava:42", s.key("strava:42"))
}

func TestRedisTokenStore_SaveTokens_MissingUserID(t *testing.T) {
	s := NewRedisTokenStore(nil)
	err := s.SaveTokens(context.Background(), domain.StoredTokens{AccessToken: "a"})
	assert.Error(t, err)
}

func TestRedisTokenStore_SaveTokens(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	s := NewRedisTokenStore(client)
	ctx := context.Background()

	require.NoError(t, s.SaveTokens(ctx, domain.StoredTokens{
		UserID:       "strava:42",
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
	}))
	require.NoError(t, s.SaveTokens(ctx, domain.StoredTokens{
		UserID:       "strava:42",
		AccessToken:  "access-2",
		RefreshToken: "refresh-2",
	}))

	assert.Equal(t, []string{"strava_tokens:strava:42"}, mr.Keys())
	assert.Zero(t, mr.TTL("strava_tokens:strava:42"), "tokens must not expire")

	raw, err := mr.Get("strava_tokens:strava:42")
	require.NoError(t, err)

	var stored domain.StoredTokens
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, "strava:42", stored.UserID)
	assert.Equal(t, "access-2", stored.AccessToken)
	assert.Equal(t, "refresh-2", stored.RefreshToken)
	assert.False(t, stored.UpdatedAt.IsZero())
}

func TestRedisTokenStore_SaveTokens_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	mr.Close()

	err := NewRedisTokenStore(client).SaveTokens(context.Background(), domain.StoredTokens{
		UserID:      "strava:42",
		AccessToken: "access-1",
	})
	assert.Error(t, err)
}
