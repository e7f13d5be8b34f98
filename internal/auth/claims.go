package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessClaims is the payload of an access token: the principal id in the
// subject plus a profile snapshot for downstream handlers.
type AccessClaims struct {
	jwt.RegisteredClaims
	Email       string `json:"email,omitempty"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// RefreshClaims is the payload of a refresh token: the principal id only.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// PrincipalID parses the subject claim as the principal identifier.
func (c *AccessClaims) PrincipalID() (uuid.UUID, error) {
	return parseSubject(c.Subject)
}

// PrincipalID parses the subject claim as the principal identifier.
func (c *RefreshClaims) PrincipalID() (uuid.UUID, error) {
	return parseSubject(c.Subject)
}

func parseSubject(subject string) (uuid.UUID, error) {
	if subject == "" {
		return uuid.Nil, ErrInvalidPayload
	}

	id, err := uuid.Parse(subject)
	if err != nil {
		return uuid.Nil, ErrInvalidPayload
	}

	return id, nil
}
