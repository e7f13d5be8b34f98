package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Logger takes a message plus alternating key/value pairs, matching the
// log/slog calling convention.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config holds the signing configuration for the token issuer. Values are
// loaded once at process start and are read-only afterwards.
type Config interface {
	GetAccessTokenSecret() string
	GetRefreshTokenSecret() string
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
	GetIssuer() string
}

// Principal is the sanitized account snapshot handed to handlers. It never
// carries the password hash or the refresh token.
type Principal struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Bio         string    `json:"bio,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	CoverURL    string    `json:"cover_image_url,omitempty"`
}

// Credential is the slice of the account record the session lifecycle needs:
// the principal plus its secrets.
type Credential struct {
	Principal
	PasswordHash string
	RefreshToken string
}

// CredentialStore persists the password hash and the single refresh-token
// slot of a principal.
type CredentialStore interface {
	// FindByIdentifier resolves a username or email, case-insensitive, and
	// returns the credential including secrets.
	FindByIdentifier(ctx context.Context, identifier string) (*Credential, error)
	// FindByID returns the sanitized principal.
	FindByID(ctx context.Context, id uuid.UUID) (*Principal, error)
	// UpdateRefreshToken overwrites the refresh-token slot. An empty token
	// clears it.
	UpdateRefreshToken(ctx context.Context, id uuid.UUID, token string) error
	// SwapRefreshToken replaces the slot only if it still holds old. It
	// returns ErrTokenMismatch when the stored value differs.
	SwapRefreshToken(ctx context.Context, id uuid.UUID, old, next string) error
}

// TokenPair is an access/refresh pair minted together.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type defLogger struct{}

func (d defLogger) Error(msg string, args ...any) { d.print("ERR", msg, args) }
func (d defLogger) Warn(msg string, args ...any)  { d.print("WRN", msg, args) }
func (d defLogger) Info(msg string, args ...any)  { d.print("INF", msg, args) }
func (d defLogger) Debug(msg string, args ...any) { d.print("DBG", msg, args) }

func (defLogger) print(level, msg string, args []any) {
	if len(args) == 0 {
		fmt.Printf("[%s] AUTH %s\n", level, msg)
		return
	}
	fmt.Printf("[%s] AUTH %s %v\n", level, msg, args)
}
