package auth_test

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidtube/backend/internal/auth"
)

func TestPrincipalID(t *testing.T) {
	id := uuid.New()

	access := &auth.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: id.String()},
	}
	got, err := access.PrincipalID()
	require.NoError(t, err)
	assert.Equal(t, id, got)

	refresh := &auth.RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: id.String()},
	}
	got, err = refresh.PrincipalID()
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestPrincipalIDInvalidSubject(t *testing.T) {
	tests := []struct {
		name    string
		subject string
	}{
		{name: "Empty subject", subject: ""},
		{name: "Not a uuid", subject: "alice"},
		{name: "Truncated uuid", subject: "123e4567-e89b-12d3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := &auth.AccessClaims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: tt.subject},
			}

			_, err := claims.PrincipalID()
			assert.True(t, auth.IsInvalidPayload(err), "expected invalid payload, got %v", err)
		})
	}
}
