package store

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/vidtube/backend/internal/auth"
)

var setUserPasswordSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?,
	"updated_at" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

// ExcludeSecrets is the default read projection: it hides the password hash
// and the refresh-token slot.
func ExcludeSecrets(q *bun.SelectQuery) *bun.SelectQuery {
	return q.ExcludeColumn("password_hash", "refresh_token")
}

// ProfilePatch carries the optional account fields an update may change. Nil
// fields are left untouched; the password hash is never writable through it.
type ProfilePatch struct {
	DisplayName *string
	Bio         *string
	Email       *string
}

type Users interface {
	// GetByLogin resolves a username or email, case-insensitive, returning
	// the full record including secrets.
	GetByLogin(ctx context.Context, identifier string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID, criteria ...repository.SelectCriteria) (*User, error)
	Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error)

	// UpdateRefreshToken overwrites the refresh-token slot; empty clears it.
	UpdateRefreshToken(ctx context.Context, id uuid.UUID, token string) error
	// SwapRefreshToken is the rotation write: it succeeds only while the slot
	// still holds old, so concurrent rotations of the same token admit one
	// winner.
	SwapRefreshToken(ctx context.Context, id uuid.UUID, old, next string) error

	// SetPassword is the only write path that touches password_hash. Callers
	// hash exactly once before calling; no other update rewrites the column.
	SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	UpdateProfile(ctx context.Context, id uuid.UUID, patch ProfilePatch) (*User, error)
	UpdateAsset(ctx context.Context, id uuid.UUID, slot AssetSlot, key, url string) error
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var _ Users = (*users)(nil)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "username"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) GetByLogin(ctx context.Context, identifier string) (*User, error) {
	ident := strings.ToLower(strings.TrimSpace(identifier))
	if ident == "" {
		return nil, repository.NewRecordNotFound()
	}

	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("lower(?TableAlias.username) = ?", ident).
				WhereOr("lower(?TableAlias.email) = ?", ident)
		}).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"identifier": identifier,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) GetByID(ctx context.Context, id uuid.UUID, criteria ...repository.SelectCriteria) (*User, error) {
	record := &User{}
	q := a.db.NewSelect().Model(record)

	for _, c := range criteria {
		q.Apply(c)
	}

	err := q.
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"id": id.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	prepareUserDefaults(record)
	return a.Repository.CreateTx(ctx, a.db, record, criteria...)
}

func (a *users) UpdateRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	_, err := a.db.NewRaw(`
		UPDATE "users" AS "usr"
		SET
			"refresh_token" = ?,
			"updated_at" = ?
		WHERE
			("usr"."id" = ?)
			AND "usr"."deleted_at" IS NULL;
	`, token, time.Now(), id).Exec(ctx)

	return err
}

func (a *users) SwapRefreshToken(ctx context.Context, id uuid.UUID, old, next string) error {
	res, err := a.db.NewRaw(`
		UPDATE "users" AS "usr"
		SET
			"refresh_token" = ?,
			"updated_at" = ?
		WHERE
			("usr"."id" = ?)
			AND "usr"."refresh_token" = ?
			AND "usr"."deleted_at" IS NULL;
	`, next, time.Now(), id, old).Exec(ctx)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return auth.ErrTokenMismatch
	}

	return nil
}

func (a *users) SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	res, err := a.Repository.RawTx(ctx, a.db, setUserPasswordSQL, passwordHash, time.Now(), id.String())
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

func (a *users) UpdateProfile(ctx context.Context, id uuid.UUID, patch ProfilePatch) (*User, error) {
	record := &User{ID: id}
	columns := []string{"updated_at"}

	if patch.DisplayName != nil {
		record.DisplayName = strings.TrimSpace(*patch.DisplayName)
		columns = append(columns, "display_name")
	}
	if patch.Bio != nil {
		record.Bio = strings.TrimSpace(*patch.Bio)
		columns = append(columns, "bio")
	}
	if patch.Email != nil {
		record.Email = strings.ToLower(strings.TrimSpace(*patch.Email))
		columns = append(columns, "email")
	}

	now := time.Now()
	record.UpdatedAt = &now

	_, err := a.db.NewUpdate().
		Model(record).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	return a.GetByID(ctx, id, ExcludeSecrets)
}

// AssetSlot names which media attachment of the account an update targets.
type AssetSlot string

const (
	AssetAvatar AssetSlot = "avatar"
	AssetCover  AssetSlot = "cover"
)

func (a *users) UpdateAsset(ctx context.Context, id uuid.UUID, slot AssetSlot, key, url string) error {
	record := &User{ID: id}
	now := time.Now()
	record.UpdatedAt = &now

	var columns []string
	switch slot {
	case AssetAvatar:
		record.AvatarKey = key
		record.AvatarURL = url
		columns = []string{"avatar_key", "avatar_url", "updated_at"}
	case AssetCover:
		record.CoverKey = key
		record.CoverURL = url
		columns = []string{"cover_key", "cover_url", "updated_at"}
	default:
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"slot": string(slot)})
	}

	_, err := a.db.NewUpdate().
		Model(record).
		Column(columns...).
		WherePK().
		Exec(ctx)

	return err
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	record.Username = strings.ToLower(strings.TrimSpace(record.Username))
	record.Email = strings.ToLower(strings.TrimSpace(record.Email))
	record.DisplayName = strings.TrimSpace(record.DisplayName)

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
