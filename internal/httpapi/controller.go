package httpapi

import (
	"context"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/store"
)

// SessionManager is the session lifecycle as the HTTP layer consumes it;
// satisfied by auth.Auther.
type SessionManager interface {
	Login(ctx context.Context, identifier, password string) (*auth.SessionResult, error)
	Refresh(ctx context.Context, incoming string) (*auth.SessionResult, error)
	Logout(ctx context.Context, id uuid.UUID) error
}

// UserStore is the account persistence surface the controller needs;
// satisfied by store.Users.
type UserStore interface {
	GetByLogin(ctx context.Context, identifier string) (*store.User, error)
	GetByID(ctx context.Context, id uuid.UUID, criteria ...repository.SelectCriteria) (*store.User, error)
	Create(ctx context.Context, record *store.User, criteria ...repository.InsertCriteria) (*store.User, error)
	SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateProfile(ctx context.Context, id uuid.UUID, patch store.ProfilePatch) (*store.User, error)
	UpdateAsset(ctx context.Context, id uuid.UUID, slot store.AssetSlot, key, url string) error
}

// Controller owns the user-facing auth and account routes.
type Controller struct {
	sessions SessionManager
	users    UserStore
	storage  media.Storage
	cookies  CookieConfig
	logger   auth.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger auth.Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithStorage(storage media.Storage) ControllerOption {
	return func(c *Controller) {
		c.storage = storage
	}
}

func NewController(sessions SessionManager, users UserStore, cookies CookieConfig, opts ...ControllerOption) *Controller {
	c := &Controller{
		sessions: sessions,
		users:    users,
		cookies:  cookies,
		logger:   noopLogger{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Login verifies credentials and opens a session: both cookies are set and
// the pair is echoed in the body for non-browser clients.
func (ctl *Controller) Login(c *fiber.Ctx) error {
	payload := new(LoginRequest)
	if err := c.BodyParser(payload); err != nil {
		return badInput(err, "failed to parse login payload")
	}

	if err := payload.Validate(); err != nil {
		return badInput(err, err.Error())
	}

	result, err := ctl.sessions.Login(c.UserContext(), payload.Identifier(), payload.Password)
	if err != nil {
		return err
	}

	setAuthCookies(c, ctl.cookies, result.Tokens)

	return respond(c, fiber.StatusOK, "User logged in successfully", fiber.Map{
		"user":         result.User,
		"accessToken":  result.Tokens.AccessToken,
		"refreshToken": result.Tokens.RefreshToken,
	})
}

// Refresh rotates the session: cookie first, body field as fallback.
func (ctl *Controller) Refresh(c *fiber.Ctx) error {
	incoming := c.Cookies(RefreshTokenCookie)
	if incoming == "" {
		payload := new(RefreshRequest)
		// The body is optional; a parse failure is the same as an absent token.
		if err := c.BodyParser(payload); err == nil {
			incoming = payload.RefreshToken
		}
	}

	result, err := ctl.sessions.Refresh(c.UserContext(), incoming)
	if err != nil {
		return err
	}

	setAuthCookies(c, ctl.cookies, result.Tokens)

	return respond(c, fiber.StatusOK, "Session refreshed successfully", fiber.Map{
		"user":         result.User,
		"accessToken":  result.Tokens.AccessToken,
		"refreshToken": result.Tokens.RefreshToken,
	})
}

// Logout clears the refresh-token slot and drops both cookies.
func (ctl *Controller) Logout(c *fiber.Ctx) error {
	principal, ok := PrincipalFrom(c)
	if !ok {
		return auth.ErrTokenMissing
	}

	if err := ctl.sessions.Logout(c.UserContext(), principal.ID); err != nil {
		return err
	}

	clearAuthCookies(c, ctl.cookies)

	return respond(c, fiber.StatusOK, "User logged out successfully", nil)
}

// Register creates an account. The password is hashed here, exactly once;
// the store receives only the digest.
func (ctl *Controller) Register(c *fiber.Ctx) error {
	payload := new(RegisterRequest)
	if err := c.BodyParser(payload); err != nil {
		return badInput(err, "failed to parse registration payload")
	}

	if err := payload.Validate(); err != nil {
		return badInput(err, err.Error())
	}

	ctx := c.UserContext()
	for _, identifier := range []string{payload.Username, payload.Email} {
		if _, err := ctl.users.GetByLogin(ctx, identifier); err == nil {
			return errors.New("user with this email or username already exists", errors.CategoryConflict).
				WithCode(errors.CodeConflict).
				WithTextCode("ALREADY_EXISTS")
		} else if !errors.IsNotFound(err) {
			return errors.Wrap(err, errors.CategoryInternal, "failed to check existing user")
		}
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		return err
	}

	record := &store.User{
		DisplayName:  payload.DisplayName,
		Username:     payload.Username,
		Email:        payload.Email,
		Bio:          payload.Bio,
		PasswordHash: hash,
	}

	if err := ctl.attachUpload(c, record, "avatar"); err != nil {
		return err
	}
	if err := ctl.attachUpload(c, record, "coverImage"); err != nil {
		return err
	}

	created, err := ctl.users.Create(ctx, record)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "user creation failed")
	}

	return respond(c, fiber.StatusCreated, "User created successfully", created.Principal())
}

// CurrentUser returns the principal the middleware resolved.
func (ctl *Controller) CurrentUser(c *fiber.Ctx) error {
	principal, ok := PrincipalFrom(c)
	if !ok {
		return auth.ErrTokenMissing
	}

	return respond(c, fiber.StatusOK, "User fetched successfully", principal)
}

// ChangePassword re-verifies the old password, hashes the new one once, and
// persists it through the dedicated password write.
func (ctl *Controller) ChangePassword(c *fiber.Ctx) error {
	principal, ok := PrincipalFrom(c)
	if !ok {
		return auth.ErrTokenMissing
	}

	payload := new(ChangePasswordRequest)
	if err := c.BodyParser(payload); err != nil {
		return badInput(err, "failed to parse payload")
	}

	if err := payload.Validate(); err != nil {
		return badInput(err, err.Error())
	}

	ctx := c.UserContext()
	user, err := ctl.users.GetByID(ctx, principal.ID)
	if err != nil {
		if errors.IsNotFound(err) {
			return auth.ErrIdentityNotFound
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to load user")
	}

	if err := auth.ComparePasswordAndHash(payload.OldPassword, user.PasswordHash); err != nil {
		return err
	}

	hash, err := auth.HashPassword(payload.NewPassword)
	if err != nil {
		return err
	}

	if err := ctl.users.SetPassword(ctx, principal.ID, hash); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to update password")
	}

	return respond(c, fiber.StatusOK, "Password changed successfully", nil)
}

// UpdateAccount patches profile fields. The write path never touches the
// password hash or the refresh-token slot.
func (ctl *Controller) UpdateAccount(c *fiber.Ctx) error {
	principal, ok := PrincipalFrom(c)
	if !ok {
		return auth.ErrTokenMissing
	}

	payload := new(UpdateAccountRequest)
	if err := c.BodyParser(payload); err != nil {
		return badInput(err, "failed to parse payload")
	}

	if err := payload.Validate(); err != nil {
		return badInput(err, err.Error())
	}

	user, err := ctl.users.UpdateProfile(c.UserContext(), principal.ID, store.ProfilePatch{
		DisplayName: payload.DisplayName,
		Bio:         payload.Bio,
		Email:       payload.Email,
	})
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to update account")
	}

	return respond(c, fiber.StatusOK, "User updated successfully", user.Principal())
}

// UpdateAvatar replaces the avatar asset and deletes the superseded one.
func (ctl *Controller) UpdateAvatar(c *fiber.Ctx) error {
	return ctl.updateAsset(c, "avatar", store.AssetAvatar, "Avatar updated successfully")
}

// UpdateCoverImage replaces the cover asset and deletes the superseded one.
func (ctl *Controller) UpdateCoverImage(c *fiber.Ctx) error {
	return ctl.updateAsset(c, "coverImage", store.AssetCover, "Cover image updated successfully")
}

func (ctl *Controller) updateAsset(c *fiber.Ctx, field string, slot store.AssetSlot, message string) error {
	principal, ok := PrincipalFrom(c)
	if !ok {
		return auth.ErrTokenMissing
	}

	if ctl.storage == nil {
		return errors.New("media storage is not configured", errors.CategoryInternal)
	}

	file, err := c.FormFile(field)
	if err != nil {
		return badInput(err, field+" file is required")
	}

	ctx := c.UserContext()
	user, err := ctl.users.GetByID(ctx, principal.ID)
	if err != nil {
		if errors.IsNotFound(err) {
			return auth.ErrIdentityNotFound
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to load user")
	}

	oldKey := user.AvatarKey
	if slot == store.AssetCover {
		oldKey = user.CoverKey
	}

	key, url, err := ctl.uploadFile(ctx, file, string(slot)+"s")
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to upload "+field)
	}

	if err := ctl.users.UpdateAsset(ctx, principal.ID, slot, key, url); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to persist "+field)
	}

	if oldKey != "" {
		// Best effort; a dangling asset is preferable to a failed update.
		if err := ctl.storage.Delete(ctx, oldKey); err != nil {
			ctl.logger.Warn("failed to delete superseded asset", "key", oldKey, "error", err)
		}
	}

	return respond(c, fiber.StatusOK, message, fiber.Map{"url": url})
}

func (ctl *Controller) attachUpload(c *fiber.Ctx, record *store.User, field string) error {
	file, err := c.FormFile(field)
	if err != nil {
		// Optional on registration.
		return nil
	}

	if ctl.storage == nil {
		return errors.New("media storage is not configured", errors.CategoryInternal)
	}

	kind := "avatars"
	if field == "coverImage" {
		kind = "covers"
	}

	key, url, err := ctl.uploadFile(c.UserContext(), file, kind)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to upload "+field)
	}

	switch field {
	case "avatar":
		record.AvatarKey, record.AvatarURL = key, url
	case "coverImage":
		record.CoverKey, record.CoverURL = key, url
	}

	return nil
}

func (ctl *Controller) uploadFile(ctx context.Context, file *multipart.FileHeader, kind string) (string, string, error) {
	src, err := file.Open()
	if err != nil {
		return "", "", err
	}
	defer src.Close()

	key := media.NewAssetKey(kind)
	url, err := ctl.storage.Upload(ctx, key, src, file.Header.Get("Content-Type"))
	if err != nil {
		return "", "", err
	}

	return key, url, nil
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
