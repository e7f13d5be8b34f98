package auth

import (
	"github.com/goliatone/go-errors"
)

// The wire protocol collapses almost every auth failure to a 401, but the
// text codes keep the causes distinguishable for logs and tests.
var (
	// ErrInvalidCredentials covers both an unknown identifier and a wrong
	// password so login failures carry no enumeration signal.
	ErrInvalidCredentials = errors.New("Invalid credentials", errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized).
				WithTextCode("INVALID_CREDENTIALS")

	// ErrTokenMissing means no bearer credential was presented at all.
	ErrTokenMissing = errors.New("Access token missing", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode("TOKEN_MISSING")

	// ErrTokenExpired is a structurally valid token past its expiry.
	ErrTokenExpired = errors.New("Token expired", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode("TOKEN_EXPIRED")

	// ErrTokenMalformed is a token that fails signature or structural checks.
	ErrTokenMalformed = errors.New("Invalid token", errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized).
				WithTextCode("TOKEN_INVALID")

	// ErrTokenMismatch is a valid refresh token that no longer matches the
	// stored slot: it was superseded by rotation or cleared by logout.
	ErrTokenMismatch = errors.New("Refresh token superseded", errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized).
				WithTextCode("TOKEN_MISMATCH")

	// ErrInvalidPayload is a verified token whose claims lack a usable
	// principal id.
	ErrInvalidPayload = errors.New("Invalid token payload", errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized).
				WithTextCode("INVALID_PAYLOAD")

	// ErrIdentityNotFound means the principal behind a token no longer
	// exists. Still a 401 on the wire.
	ErrIdentityNotFound = errors.New("User not found", errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized).
				WithTextCode("NOT_FOUND")

	// ErrNoEmptyString rejects hashing an empty password.
	ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryBadInput).
				WithCode(errors.CodeBadRequest).
				WithTextCode("EMPTY_VALUE")
)

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var rich *errors.Error
	if !errors.As(err, &rich) {
		return false
	}
	return rich.TextCode == code
}

// IsInvalidCredentials reports whether err is the shared login failure.
func IsInvalidCredentials(err error) bool {
	return hasTextCode(err, "INVALID_CREDENTIALS")
}

// IsTokenExpired reports whether err is an expired-token failure.
func IsTokenExpired(err error) bool {
	return hasTextCode(err, "TOKEN_EXPIRED")
}

// IsTokenMalformed reports whether err is a tampered or garbage token.
func IsTokenMalformed(err error) bool {
	return hasTextCode(err, "TOKEN_INVALID")
}

// IsTokenMismatch reports whether err is a superseded refresh token.
func IsTokenMismatch(err error) bool {
	return hasTextCode(err, "TOKEN_MISMATCH")
}

// IsTokenMissing reports whether err is an absent bearer credential.
func IsTokenMissing(err error) bool {
	return hasTextCode(err, "TOKEN_MISSING")
}

// IsInvalidPayload reports whether err is a token without a usable subject.
func IsInvalidPayload(err error) bool {
	return hasTextCode(err, "INVALID_PAYLOAD")
}

// IsIdentityNotFound reports whether err is a missing principal.
func IsIdentityNotFound(err error) bool {
	return hasTextCode(err, "NOT_FOUND")
}
