package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidtube/backend/internal/auth"
)

type testConfig struct {
	accessSecret  string
	refreshSecret string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
}

func (c testConfig) GetAccessTokenSecret() string      { return c.accessSecret }
func (c testConfig) GetRefreshTokenSecret() string     { return c.refreshSecret }
func (c testConfig) GetAccessTokenTTL() time.Duration  { return c.accessTTL }
func (c testConfig) GetRefreshTokenTTL() time.Duration { return c.refreshTTL }
func (c testConfig) GetIssuer() string                 { return c.issuer }

func newTestConfig() testConfig {
	return testConfig{
		accessSecret:  "access-secret-for-tests",
		refreshSecret: "refresh-secret-for-tests",
		accessTTL:     15 * time.Minute,
		refreshTTL:    7 * 24 * time.Hour,
		issuer:        "vidtube-test",
	}
}

func testPrincipal() *auth.Principal {
	return &auth.Principal{
		ID:          uuid.New(),
		Username:    "alice",
		Email:       "alice@example.com",
		DisplayName: "Alice",
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	ts := auth.NewTokenService(newTestConfig())
	principal := testPrincipal()

	token, err := ts.IssueAccessToken(principal)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ts.ValidateAccessToken(token)
	require.NoError(t, err)

	id, err := claims.PrincipalID()
	require.NoError(t, err)
	assert.Equal(t, principal.ID, id)
	assert.Equal(t, principal.Username, claims.Username)
	assert.Equal(t, principal.Email, claims.Email)
	assert.Equal(t, principal.DisplayName, claims.DisplayName)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	ts := auth.NewTokenService(newTestConfig())
	id := uuid.New()

	token, err := ts.IssueRefreshToken(id)
	require.NoError(t, err)

	claims, err := ts.ValidateRefreshToken(token)
	require.NoError(t, err)

	got, err := claims.PrincipalID()
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestRefreshTokenCarriesNoProfile(t *testing.T) {
	ts := auth.NewTokenService(newTestConfig())

	token, err := ts.IssueRefreshToken(uuid.New())
	require.NoError(t, err)

	// A refresh token must not validate as an access token: different secret.
	_, err = ts.ValidateAccessToken(token)
	assert.Error(t, err)
	assert.True(t, auth.IsTokenMalformed(err))
}

func TestValidateExpiredToken(t *testing.T) {
	cfg := newTestConfig()
	cfg.accessTTL = -1 * time.Minute
	cfg.refreshTTL = -1 * time.Minute
	ts := auth.NewTokenService(cfg)

	access, err := ts.IssueAccessToken(testPrincipal())
	require.NoError(t, err)

	_, err = ts.ValidateAccessToken(access)
	assert.True(t, auth.IsTokenExpired(err), "expected expired, got %v", err)
	assert.False(t, auth.IsTokenMalformed(err))

	refresh, err := ts.IssueRefreshToken(uuid.New())
	require.NoError(t, err)

	_, err = ts.ValidateRefreshToken(refresh)
	assert.True(t, auth.IsTokenExpired(err), "expected expired, got %v", err)
}

func TestValidateMalformedToken(t *testing.T) {
	ts := auth.NewTokenService(newTestConfig())

	tests := []struct {
		name string
		raw  string
	}{
		{name: "Garbage", raw: "not-a-token"},
		{name: "Empty", raw: ""},
		{name: "Truncated", raw: "eyJhbGciOiJIUzI1NiJ9.e30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.ValidateAccessToken(tt.raw)
			assert.True(t, auth.IsTokenMalformed(err), "expected malformed, got %v", err)
			assert.False(t, auth.IsTokenExpired(err))
		})
	}
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	ts := auth.NewTokenService(newTestConfig())

	other := newTestConfig()
	other.accessSecret = "a-completely-different-secret"
	foreign := auth.NewTokenService(other)

	token, err := foreign.IssueAccessToken(testPrincipal())
	require.NoError(t, err)

	_, err = ts.ValidateAccessToken(token)
	assert.True(t, auth.IsTokenMalformed(err))
}

func TestValidateRejectsWrongIssuer(t *testing.T) {
	cfg := newTestConfig()
	cfg.issuer = "someone-else"
	foreign := auth.NewTokenService(cfg)

	token, err := foreign.IssueAccessToken(testPrincipal())
	require.NoError(t, err)

	ts := auth.NewTokenService(newTestConfig())
	_, err = ts.ValidateAccessToken(token)
	assert.Error(t, err)
}
