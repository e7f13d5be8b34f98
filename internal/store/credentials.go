package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/auth"
)

// credentialStore adapts the Users repository to the narrow persistence
// surface the session lifecycle needs.
type credentialStore struct {
	users Users
}

var _ auth.CredentialStore = (*credentialStore)(nil)

// NewCredentialStore exposes the users repository as an auth.CredentialStore.
func NewCredentialStore(users Users) auth.CredentialStore {
	return &credentialStore{users: users}
}

func (s *credentialStore) FindByIdentifier(ctx context.Context, identifier string) (*auth.Credential, error) {
	user, err := s.users.GetByLogin(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return user.Credential(), nil
}

func (s *credentialStore) FindByID(ctx context.Context, id uuid.UUID) (*auth.Principal, error) {
	user, err := s.users.GetByID(ctx, id, ExcludeSecrets)
	if err != nil {
		return nil, err
	}
	return user.Principal(), nil
}

func (s *credentialStore) UpdateRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	return s.users.UpdateRefreshToken(ctx, id, token)
}

func (s *credentialStore) SwapRefreshToken(ctx context.Context, id uuid.UUID, old, next string) error {
	return s.users.SwapRefreshToken(ctx, id, old, next)
}
