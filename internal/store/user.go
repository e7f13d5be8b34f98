package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/vidtube/backend/internal/auth"
)

// User is the account model. The password hash and the refresh-token slot
// are never serialized to JSON; reads that leave this package strip them via
// ExcludeSecrets unless the caller explicitly needs them.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username      string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	DisplayName   string     `bun:"display_name,notnull" json:"display_name,omitempty"`
	Bio           string     `bun:"bio" json:"bio,omitempty"`
	AvatarKey     string     `bun:"avatar_key" json:"avatar_key,omitempty"`
	AvatarURL     string     `bun:"avatar_url" json:"avatar_url,omitempty"`
	CoverKey      string     `bun:"cover_key" json:"cover_key,omitempty"`
	CoverURL      string     `bun:"cover_url" json:"cover_image_url,omitempty"`
	PasswordHash  string     `bun:"password_hash" json:"-"`
	RefreshToken  string     `bun:"refresh_token" json:"-"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Principal returns the sanitized snapshot of the record.
func (u *User) Principal() *auth.Principal {
	if u == nil {
		return nil
	}
	return &auth.Principal{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Bio:         u.Bio,
		AvatarURL:   u.AvatarURL,
		CoverURL:    u.CoverURL,
	}
}

// Credential returns the auth slice of the record, secrets included.
func (u *User) Credential() *auth.Credential {
	if u == nil {
		return nil
	}
	return &auth.Credential{
		Principal:    *u.Principal(),
		PasswordHash: u.PasswordHash,
		RefreshToken: u.RefreshToken,
	}
}
