package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/irshadhq/irshad/core/auth"
	localauth "github.com/irshadhq/irshad/services/auth/local"
)

type authUserRow struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash []byte    `db:"password_hash"`
	Metadata     []byte    `db:"metadata"`
	ConfirmedAt  null.Time `db:"confirmed_at"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r authUserRow) toCore() (localauth.User, error) {
	meta := make(auth.Metadata)
	if len(r.Metadata) > 0 {
		if err := json.Unmarshal(r.Metadata, &meta); err != nil {
			return localauth.User{}, errors.Wrap(err, "decoding user metadata")
		}
	}
	usr := localauth.User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Metadata:     meta,
		CreatedAt:    r.CreatedAt,
	}
	if r.ConfirmedAt.Valid {
		usr.ConfirmedAt = r.ConfirmedAt.Time
	}
	return usr, nil
}

const authUserCols = `id, email, password_hash, metadata, confirmed_at, created_at`

type authUserStore struct {
	db *sqlx.DB
}

var _ localauth.Store = (*authUserStore)(nil)

func NewAuthUserStore(db *sqlx.DB) *authUserStore {
	return &authUserStore{db: db}
}

func (s *authUserStore) GetUserByEmail(ctx context.Context, email string) (localauth.User, error) {
	return s.get(ctx, `SELECT `+authUserCols+` FROM auth_users WHERE email = $1`, email)
}

func (s *authUserStore) GetUserByID(ctx context.Context, id string) (localauth.User, error) {
	return s.get(ctx, `SELECT `+authUserCols+` FROM auth_users WHERE id = $1`, id)
}

func (s *authUserStore) CreateUser(ctx context.Context, usr localauth.User) (localauth.User, error) {
	meta, err := json.Marshal(usr.Metadata)
	if err != nil {
		return localauth.User{}, errors.Wrap(err, "encoding user metadata")
	}

	const q = `INSERT INTO auth_users (email, password_hash, metadata, confirmed_at, created_at)
	VALUES ($1, $2, $3, $4, $5) RETURNING id`

	var confirmedAt null.Time
	if !usr.ConfirmedAt.IsZero() {
		confirmedAt = null.TimeFrom(usr.ConfirmedAt)
	}
	var id string
	err = s.db.QueryRowxContext(ctx, q, usr.Email, usr.PasswordHash, meta, confirmedAt, usr.CreatedAt).Scan(&id)
	if err != nil {
		return localauth.User{}, wrapDup(errors.Wrap(err, "inserting user"), localauth.ErrEmailTaken)
	}
	usr.ID = id
	return usr, nil
}

func (s *authUserStore) UpdateUserPassword(ctx context.Context, id string, hash []byte) error {
	res, err := s.db.ExecContext(ctx, `UPDATE auth_users SET password_hash = $2 WHERE id = $1`, id, hash)
	if err != nil {
		return errors.Wrap(err, "updating password")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return localauth.ErrUserNotFound
	}
	return nil
}

func (s *authUserStore) get(ctx context.Context, q string, arg interface{}) (localauth.User, error) {
	var row authUserRow
	if err := s.db.GetContext(ctx, &row, q, arg); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return localauth.User{}, localauth.ErrUserNotFound
		}
		return localauth.User{}, errors.Wrap(err, "getting user")
	}
	return row.toCore()
}
