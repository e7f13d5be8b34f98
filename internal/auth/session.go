package auth

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// SessionResult is what a successful login or refresh hands back: the
// sanitized principal plus a freshly minted token pair.
type SessionResult struct {
	User   *Principal `json:"user"`
	Tokens TokenPair  `json:"-"`
}

// Auther drives the session lifecycle: login, refresh rotation, and logout.
// Per principal there is at most one live refresh token; rotating or
// clearing the slot invalidates every previously issued refresh token.
type Auther struct {
	store  CredentialStore
	tokens *TokenService
	logger Logger
}

// NewAuther returns a session lifecycle manager on top of the given
// credential store and token service.
func NewAuther(store CredentialStore, tokens *TokenService) *Auther {
	return &Auther{
		store:  store,
		tokens: tokens,
		logger: defLogger{},
	}
}

func (a *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// TokenService exposes the issuer, mainly so the HTTP layer can validate
// access tokens with the same configuration.
func (a *Auther) TokenService() *TokenService {
	return a.tokens
}

// Login verifies the identifier/password pair and starts a fresh session.
// Unknown identifiers and wrong passwords are indistinguishable to the
// caller.
func (a *Auther) Login(ctx context.Context, identifier, password string) (*SessionResult, error) {
	cred, err := a.store.FindByIdentifier(ctx, identifier)
	if err != nil {
		if isNotFound(err) {
			a.logger.Debug("login: unknown identifier")
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load credential")
	}

	if err := ComparePasswordAndHash(password, cred.PasswordHash); err != nil {
		if IsInvalidCredentials(err) {
			a.logger.Debug("login: password mismatch", "user_id", cred.ID)
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to verify password")
	}

	pair, err := a.mintPair(&cred.Principal)
	if err != nil {
		a.logger.Error("login: token minting failed", "error", err)
		return nil, err
	}

	// Login overwrites the slot unconditionally: a new session supersedes
	// whatever refresh token was live before.
	if err := a.store.UpdateRefreshToken(ctx, cred.ID, pair.RefreshToken); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to persist refresh token")
	}

	principal := cred.Principal
	return &SessionResult{User: &principal, Tokens: pair}, nil
}

// Refresh validates the incoming refresh token, rotates the stored slot, and
// mints a new pair. The swap is a compare-and-swap keyed on the incoming
// token value, so two concurrent refreshes of the same token admit at most
// one winner.
func (a *Auther) Refresh(ctx context.Context, incoming string) (*SessionResult, error) {
	if incoming == "" {
		return nil, ErrTokenMissing
	}

	claims, err := a.tokens.ValidateRefreshToken(incoming)
	if err != nil {
		a.logger.Debug("refresh: token validation failed", "error", err)
		return nil, err
	}

	id, err := claims.PrincipalID()
	if err != nil {
		return nil, err
	}

	principal, err := a.store.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			a.logger.Debug("refresh: principal no longer exists", "user_id", id)
			return nil, ErrIdentityNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load principal")
	}

	pair, err := a.mintPair(principal)
	if err != nil {
		a.logger.Error("refresh: token minting failed", "error", err)
		return nil, err
	}

	if err := a.store.SwapRefreshToken(ctx, id, incoming, pair.RefreshToken); err != nil {
		if IsTokenMismatch(err) {
			a.logger.Debug("refresh: superseded token rejected", "user_id", id)
			return nil, ErrTokenMismatch
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to rotate refresh token")
	}

	return &SessionResult{User: principal, Tokens: pair}, nil
}

// Logout clears the refresh-token slot so every previously issued refresh
// token becomes permanently unusable. Outstanding access tokens stay valid
// until they expire.
func (a *Auther) Logout(ctx context.Context, id uuid.UUID) error {
	if err := a.store.UpdateRefreshToken(ctx, id, ""); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to clear refresh token")
	}
	return nil
}

func (a *Auther) mintPair(principal *Principal) (TokenPair, error) {
	access, err := a.tokens.IssueAccessToken(principal)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := a.tokens.IssueRefreshToken(principal.ID)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func isNotFound(err error) bool {
	return errors.IsNotFound(err) || IsIdentityNotFound(err)
}
