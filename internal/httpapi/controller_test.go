package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/httpapi"
	"github.com/vidtube/backend/internal/store"
)

type mockSessions struct {
	mock.Mock
}

func (m *mockSessions) Login(ctx context.Context, identifier, password string) (*auth.SessionResult, error) {
	args := m.Called(ctx, identifier, password)
	if result, ok := args.Get(0).(*auth.SessionResult); ok {
		return result, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessions) Refresh(ctx context.Context, incoming string) (*auth.SessionResult, error) {
	args := m.Called(ctx, incoming)
	if result, ok := args.Get(0).(*auth.SessionResult); ok {
		return result, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessions) Logout(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) GetByLogin(ctx context.Context, identifier string) (*store.User, error) {
	args := m.Called(ctx, identifier)
	if user, ok := args.Get(0).(*store.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUsers) GetByID(ctx context.Context, id uuid.UUID, criteria ...repository.SelectCriteria) (*store.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*store.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUsers) Create(ctx context.Context, record *store.User, criteria ...repository.InsertCriteria) (*store.User, error) {
	args := m.Called(ctx, record)
	if user, ok := args.Get(0).(*store.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUsers) SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *mockUsers) UpdateProfile(ctx context.Context, id uuid.UUID, patch store.ProfilePatch) (*store.User, error) {
	args := m.Called(ctx, id, patch)
	if user, ok := args.Get(0).(*store.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUsers) UpdateAsset(ctx context.Context, id uuid.UUID, slot store.AssetSlot, key, url string) error {
	args := m.Called(ctx, id, slot, key, url)
	return args.Error(0)
}

type testApp struct {
	app        *fiber.App
	sessions   *mockSessions
	users      *mockUsers
	principals *mockPrincipals
	tokens     *auth.TokenService
}

func newTestApp() *testApp {
	sessions := new(mockSessions)
	users := new(mockUsers)
	principals := new(mockPrincipals)
	tokens := newTokenService()

	app := httpapi.NewApp(httpapi.ServerDeps{
		Sessions:   sessions,
		Users:      users,
		Tokens:     tokens,
		Principals: principals,
		Cookies:    httpapi.CookieConfig{Secure: true},
		Logger:     testLogger{},
	})

	return &testApp{
		app:        app,
		sessions:   sessions,
		users:      users,
		principals: principals,
		tokens:     tokens,
	}
}

// authorize issues a real access token for the principal and teaches the
// principal loader about it.
func (ta *testApp) authorize(t *testing.T, principal *auth.Principal) string {
	t.Helper()

	token, err := ta.tokens.IssueAccessToken(principal)
	require.NoError(t, err)

	ta.principals.On("FindByID", mock.Anything, principal.ID).Return(principal, nil)
	return token
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func cookieValue(resp *http.Response, name string) (*http.Cookie, bool) {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == name {
			return cookie, true
		}
	}
	return nil, false
}

func sessionResult() *auth.SessionResult {
	return &auth.SessionResult{
		User: &auth.Principal{ID: uuid.New(), Username: "alice", Email: "alice@example.com"},
		Tokens: auth.TokenPair{
			AccessToken:  "minted-access-token",
			RefreshToken: "minted-refresh-token",
		},
	}
}

func TestLoginRoute(t *testing.T) {
	ta := newTestApp()
	result := sessionResult()

	ta.sessions.On("Login", mock.Anything, "alice", "password123").Return(result, nil)

	req := jsonRequest(t, http.MethodPost, "/api/v1/users/login", fiber.Map{
		"username": "alice",
		"password": "password123",
	})

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	access, ok := cookieValue(resp, httpapi.AccessTokenCookie)
	require.True(t, ok, "access cookie must be set")
	assert.Equal(t, "minted-access-token", access.Value)
	assert.True(t, access.HttpOnly)
	assert.True(t, access.Secure)

	refresh, ok := cookieValue(resp, httpapi.RefreshTokenCookie)
	require.True(t, ok, "refresh cookie must be set")
	assert.Equal(t, "minted-refresh-token", refresh.Value)

	env := decodeEnvelope(t, resp)
	assert.Equal(t, "User logged in successfully", env.Message)
	assert.True(t, env.Success)

	var data struct {
		AccessToken  string          `json:"accessToken"`
		RefreshToken string          `json:"refreshToken"`
		User         *auth.Principal `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "minted-access-token", data.AccessToken)
	assert.Equal(t, "minted-refresh-token", data.RefreshToken)
	assert.Equal(t, "alice", data.User.Username)
}

func TestLoginRouteByEmail(t *testing.T) {
	ta := newTestApp()

	ta.sessions.On("Login", mock.Anything, "alice@example.com", "password123").Return(sessionResult(), nil)

	req := jsonRequest(t, http.MethodPost, "/api/v1/users/login", fiber.Map{
		"email":    "alice@example.com",
		"password": "password123",
	})

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestLoginRouteMissingIdentifier(t *testing.T) {
	ta := newTestApp()

	req := jsonRequest(t, http.MethodPost, "/api/v1/users/login", fiber.Map{
		"password": "password123",
	})

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	ta.sessions.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

func TestLoginRouteInvalidCredentials(t *testing.T) {
	ta := newTestApp()

	ta.sessions.On("Login", mock.Anything, "alice", "wrong").Return(nil, auth.ErrInvalidCredentials)

	req := jsonRequest(t, http.MethodPost, "/api/v1/users/login", fiber.Map{
		"username": "alice",
		"password": "wrong",
	})

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	env := decodeEnvelope(t, resp)
	assert.Equal(t, "Invalid credentials", env.Message)
	assert.False(t, env.Success)
}

func TestRefreshRouteCookie(t *testing.T) {
	ta := newTestApp()

	ta.sessions.On("Refresh", mock.Anything, "cookie-token").Return(sessionResult(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: httpapi.RefreshTokenCookie, Value: "cookie-token"})

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Rotation: both cookies are replaced with the new pair.
	refresh, ok := cookieValue(resp, httpapi.RefreshTokenCookie)
	require.True(t, ok)
	assert.Equal(t, "minted-refresh-token", refresh.Value)
}

func TestRefreshRouteBodyFallback(t *testing.T) {
	ta := newTestApp()

	ta.sessions.On("Refresh", mock.Anything, "body-token").Return(sessionResult(), nil)

	req := jsonRequest(t, http.MethodPost, "/api/v1/users/refresh-token", fiber.Map{
		"refreshToken": "body-token",
	})

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRefreshRouteMissingToken(t *testing.T) {
	ta := newTestApp()

	ta.sessions.On("Refresh", mock.Anything, "").Return(nil, auth.ErrTokenMissing)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	env := decodeEnvelope(t, resp)
	assert.Equal(t, "Access token missing", env.Message)
}

func TestRefreshRouteSupersededToken(t *testing.T) {
	ta := newTestApp()

	ta.sessions.On("Refresh", mock.Anything, "stale-token").Return(nil, auth.ErrTokenMismatch)

	req := jsonRequest(t, http.MethodPost, "/api/v1/users/refresh-token", fiber.Map{
		"refreshToken": "stale-token",
	})

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutRoute(t *testing.T) {
	ta := newTestApp()
	principal := &auth.Principal{ID: uuid.New(), Username: "alice"}
	token := ta.authorize(t, principal)

	ta.sessions.On("Logout", mock.Anything, principal.ID).Return(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/logout", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	ta.sessions.AssertCalled(t, "Logout", mock.Anything, principal.ID)

	// Both cookies are dropped.
	access, ok := cookieValue(resp, httpapi.AccessTokenCookie)
	require.True(t, ok)
	assert.Empty(t, access.Value)

	refresh, ok := cookieValue(resp, httpapi.RefreshTokenCookie)
	require.True(t, ok)
	assert.Empty(t, refresh.Value)
}

func TestLogoutRouteRequiresAuth(t *testing.T) {
	ta := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/logout", nil)

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	ta.sessions.AssertNotCalled(t, "Logout", mock.Anything, mock.Anything)
}

func TestCurrentUserRoute(t *testing.T) {
	ta := newTestApp()
	principal := &auth.Principal{ID: uuid.New(), Username: "alice", Email: "alice@example.com"}
	token := ta.authorize(t, principal)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	var got auth.Principal
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, principal.ID, got.ID)
	assert.Equal(t, "alice", got.Username)
}

func TestRegisterRoute(t *testing.T) {
	ta := newTestApp()

	ta.users.On("GetByLogin", mock.Anything, "alice").Return(nil, repository.NewRecordNotFound())
	ta.users.On("GetByLogin", mock.Anything, "alice@example.com").Return(nil, repository.NewRecordNotFound())
	ta.users.On("Create", mock.Anything, mock.AnythingOfType("*store.User")).Return(&store.User{
		ID:          uuid.New(),
		Username:    "alice",
		Email:       "alice@example.com",
		DisplayName: "Alice",
	}, nil)

	req := jsonRequest(t, http.MethodPost, "/api/v1/users/register", fiber.Map{
		"display_name": "Alice",
		"username":     "alice",
		"email":        "alice@example.com",
		"password":     "password123",
	})

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	env := decodeEnvelope(t, resp)
	assert.Equal(t, "User created successfully", env.Message)

	// The stored record carries a digest, never the plaintext.
	created := ta.users.Calls[len(ta.users.Calls)-1].Arguments.Get(1).(*store.User)
	assert.NotEmpty(t, created.PasswordHash)
	assert.NotEqual(t, "password123", created.PasswordHash)
	assert.NoError(t, auth.ComparePasswordAndHash("password123", created.PasswordHash))
}

func TestRegisterRouteDuplicate(t *testing.T) {
	ta := newTestApp()

	ta.users.On("GetByLogin", mock.Anything, "alice").Return(&store.User{Username: "alice"}, nil)

	req := jsonRequest(t, http.MethodPost, "/api/v1/users/register", fiber.Map{
		"display_name": "Alice",
		"username":     "alice",
		"email":        "alice@example.com",
		"password":     "password123",
	})

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	ta.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegisterRouteValidation(t *testing.T) {
	ta := newTestApp()

	tests := []struct {
		name    string
		payload fiber.Map
	}{
		{
			name: "Missing password",
			payload: fiber.Map{
				"display_name": "Alice",
				"username":     "alice",
				"email":        "alice@example.com",
			},
		},
		{
			name: "Short password",
			payload: fiber.Map{
				"display_name": "Alice",
				"username":     "alice",
				"email":        "alice@example.com",
				"password":     "short",
			},
		},
		{
			name: "Bad email",
			payload: fiber.Map{
				"display_name": "Alice",
				"username":     "alice",
				"email":        "not-an-email",
				"password":     "password123",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := jsonRequest(t, http.MethodPost, "/api/v1/users/register", tt.payload)

			resp, err := ta.app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}

	ta.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestChangePasswordRoute(t *testing.T) {
	ta := newTestApp()
	principal := &auth.Principal{ID: uuid.New(), Username: "alice"}
	token := ta.authorize(t, principal)

	oldHash, err := auth.HashPassword("old-password")
	require.NoError(t, err)

	ta.users.On("GetByID", mock.Anything, principal.ID).Return(&store.User{
		ID:           principal.ID,
		Username:     "alice",
		PasswordHash: oldHash,
	}, nil)
	ta.users.On("SetPassword", mock.Anything, principal.ID, mock.AnythingOfType("string")).Return(nil)

	req := jsonRequest(t, http.MethodPatch, "/api/v1/users/change-password", fiber.Map{
		"oldPassword": "old-password",
		"newPassword": "new-password-123",
	})
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	ta.users.AssertCalled(t, "SetPassword", mock.Anything, principal.ID, mock.AnythingOfType("string"))
}

func TestChangePasswordRouteWrongOldPassword(t *testing.T) {
	ta := newTestApp()
	principal := &auth.Principal{ID: uuid.New(), Username: "alice"}
	token := ta.authorize(t, principal)

	oldHash, err := auth.HashPassword("old-password")
	require.NoError(t, err)

	ta.users.On("GetByID", mock.Anything, principal.ID).Return(&store.User{
		ID:           principal.ID,
		PasswordHash: oldHash,
	}, nil)

	req := jsonRequest(t, http.MethodPatch, "/api/v1/users/change-password", fiber.Map{
		"oldPassword": "not-the-password",
		"newPassword": "new-password-123",
	})
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	ta.users.AssertNotCalled(t, "SetPassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateAccountRoute(t *testing.T) {
	ta := newTestApp()
	principal := &auth.Principal{ID: uuid.New(), Username: "alice"}
	token := ta.authorize(t, principal)

	ta.users.On("UpdateProfile", mock.Anything, principal.ID, mock.AnythingOfType("store.ProfilePatch")).
		Return(&store.User{ID: principal.ID, Username: "alice", DisplayName: "Alice Liddell"}, nil)

	req := jsonRequest(t, http.MethodPatch, "/api/v1/users/update-account-details", fiber.Map{
		"display_name": "Alice Liddell",
	})
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	var got auth.Principal
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "Alice Liddell", got.DisplayName)
}

func TestUpdateAccountRouteEmptyPatch(t *testing.T) {
	ta := newTestApp()
	principal := &auth.Principal{ID: uuid.New(), Username: "alice"}
	token := ta.authorize(t, principal)

	req := jsonRequest(t, http.MethodPatch, "/api/v1/users/update-account-details", fiber.Map{})
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	ta.users.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything, mock.Anything)
}
