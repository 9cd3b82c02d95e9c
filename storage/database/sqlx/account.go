package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/irshadhq/irshad/core/account"
)

type profileRow struct {
	ID        string      `db:"id"`
	UserID    string      `db:"user_id"`
	FullName  string      `db:"full_name"`
	Phone     null.String `db:"phone"`
	AvatarURL null.String `db:"avatar_url"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

func (r profileRow) toCore() account.Profile {
	return account.Profile{
		ID:        r.ID,
		UserID:    r.UserID,
		FullName:  r.FullName,
		Phone:     r.Phone,
		AvatarURL: r.AvatarURL,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type profileRepository struct {
	db *sqlx.DB
}

var _ account.ProfileRepository = (*profileRepository)(nil)

func NewProfileRepository(db *sqlx.DB) *profileRepository {
	return &profileRepository{db: db}
}

func (repo *profileRepository) GetProfileByUserID(ctx context.Context, userID string) (account.Profile, error) {
	const q = `SELECT id, user_id, full_name, phone, avatar_url, created_at, updated_at
	FROM profiles WHERE user_id = $1`

	var row profileRow
	if err := repo.db.GetContext(ctx, &row, q, userID); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return account.Profile{}, account.ErrProfileNotFound
		}
		return account.Profile{}, errors.Wrap(err, "getting profile")
	}
	return row.toCore(), nil
}

func (repo *profileRepository) CreateProfile(ctx context.Context, p account.Profile) (account.Profile, error) {
	const q = `INSERT INTO profiles (user_id, full_name, phone, avatar_url, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id`

	var id string
	err := repo.db.QueryRowxContext(ctx, q, p.UserID, p.FullName, p.Phone, p.AvatarURL, p.CreatedAt, p.UpdatedAt).Scan(&id)
	if err != nil {
		return account.Profile{}, wrapDup(errors.Wrap(err, "inserting profile"), account.ErrAlreadyExists)
	}
	p.ID = id
	return p, nil
}

func (repo *profileRepository) UpdateProfile(ctx context.Context, userID string, up account.UpdateProfile) (account.Profile, error) {
	const q = `UPDATE profiles
	SET full_name = COALESCE(NULLIF($2, ''), full_name),
	    phone = COALESCE($3, phone),
	    avatar_url = COALESCE($4, avatar_url),
	    updated_at = $5
	WHERE user_id = $1
	RETURNING id, user_id, full_name, phone, avatar_url, created_at, updated_at`

	var row profileRow
	err := repo.db.GetContext(ctx, &row, q, userID, up.FullName, up.Phone, up.AvatarURL, time.Now().UTC())
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return account.Profile{}, account.ErrProfileNotFound
		}
		return account.Profile{}, errors.Wrap(err, "updating profile")
	}
	return row.toCore(), nil
}

func (repo *profileRepository) QueryAllProfiles(ctx context.Context) ([]account.Profile, error) {
	const q = `SELECT id, user_id, full_name, phone, avatar_url, created_at, updated_at
	FROM profiles ORDER BY full_name`

	var rows []profileRow
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying profiles")
	}
	profiles := make([]account.Profile, 0, len(rows))
	for _, r := range rows {
		profiles = append(profiles, r.toCore())
	}
	return profiles, nil
}

type roleRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
}

func (r roleRow) toCore() account.RoleAssignment {
	return account.RoleAssignment{ID: r.ID, UserID: r.UserID, Role: account.Role(r.Role), CreatedAt: r.CreatedAt}
}

type roleRepository struct {
	db *sqlx.DB
}

var _ account.RoleRepository = (*roleRepository)(nil)

func NewRoleRepository(db *sqlx.DB) *roleRepository {
	return &roleRepository{db: db}
}

func (repo *roleRepository) GetRoleByUserID(ctx context.Context, userID string) (account.RoleAssignment, error) {
	const q = `SELECT id, user_id, role, created_at FROM user_roles
	WHERE user_id = $1 ORDER BY created_at LIMIT 1`

	var row roleRow
	if err := repo.db.GetContext(ctx, &row, q, userID); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return account.RoleAssignment{}, account.ErrRoleNotFound
		}
		return account.RoleAssignment{}, errors.Wrap(err, "getting role")
	}
	return row.toCore(), nil
}

func (repo *roleRepository) CreateRole(ctx context.Context, userID string, role account.Role) (account.RoleAssignment, error) {
	const q = `INSERT INTO user_roles (user_id, role) VALUES ($1, $2)
	RETURNING id, user_id, role, created_at`

	var row roleRow
	if err := repo.db.GetContext(ctx, &row, q, userID, string(role)); err != nil {
		return account.RoleAssignment{}, wrapDup(errors.Wrap(err, "inserting role"), account.ErrAlreadyExists)
	}
	return row.toCore(), nil
}

func (repo *roleRepository) UpsertRole(ctx context.Context, userID string, role account.Role) (account.RoleAssignment, error) {
	const q = `INSERT INTO user_roles (user_id, role) VALUES ($1, $2)
	ON CONFLICT (user_id) DO UPDATE SET role = EXCLUDED.role
	RETURNING id, user_id, role, created_at`

	var row roleRow
	if err := repo.db.GetContext(ctx, &row, q, userID, string(role)); err != nil {
		return account.RoleAssignment{}, errors.Wrap(err, "upserting role")
	}
	return row.toCore(), nil
}

func (repo *roleRepository) QueryAllRoles(ctx context.Context) ([]account.RoleAssignment, error) {
	const q = `SELECT id, user_id, role, created_at FROM user_roles ORDER BY created_at`

	var rows []roleRow
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying roles")
	}
	ras := make([]account.RoleAssignment, 0, len(rows))
	for _, r := range rows {
		ras = append(ras, r.toCore())
	}
	return ras, nil
}

func (repo *roleRepository) QueryUserIDsByRole(ctx context.Context, role account.Role) ([]string, error) {
	const q = `SELECT user_id FROM user_roles WHERE role = $1`

	ids := make([]string, 0)
	if err := repo.db.SelectContext(ctx, &ids, q, string(role)); err != nil {
		return nil, errors.Wrap(err, "querying user ids by role")
	}
	return ids, nil
}
