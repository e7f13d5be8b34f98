package httpapi

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
)

// LoginRequest accepts either a username or an email plus the password.
type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Identifier returns whichever login handle was provided.
func (r LoginRequest) Identifier() string {
	if r.Username != "" {
		return r.Username
	}
	return r.Email
}

func (r LoginRequest) Validate() error {
	if r.Username == "" && r.Email == "" {
		return errors.New("username or email is required to login", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}

	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required),
	)
}

// RefreshRequest is the body fallback when the refresh cookie is absent.
type RefreshRequest struct {
	RefreshToken string `form:"refreshToken" json:"refreshToken"`
}

// RegisterRequest creates a new account.
type RegisterRequest struct {
	DisplayName string `form:"display_name" json:"display_name"`
	Username    string `form:"username" json:"username"`
	Email       string `form:"email" json:"email"`
	Password    string `form:"password" json:"password"`
	Bio         string `form:"bio" json:"bio"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DisplayName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Username, validation.Required, validation.Length(3, 50)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(&r.Bio, validation.Length(0, 500)),
	)
}

// ChangePasswordRequest swaps the account password after re-verification.
type ChangePasswordRequest struct {
	OldPassword string `form:"oldPassword" json:"oldPassword"`
	NewPassword string `form:"newPassword" json:"newPassword"`
}

func (r ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OldPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(8, 100)),
	)
}

// UpdateAccountRequest patches profile fields; at least one must be present.
type UpdateAccountRequest struct {
	DisplayName *string `form:"display_name" json:"display_name"`
	Bio         *string `form:"bio" json:"bio"`
	Email       *string `form:"email" json:"email"`
}

func (r UpdateAccountRequest) Validate() error {
	if r.DisplayName == nil && r.Bio == nil && r.Email == nil {
		return errors.New("at least one field is required", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}

	if r.Email != nil {
		return validation.Validate(*r.Email, validation.Required, is.Email)
	}

	return nil
}
