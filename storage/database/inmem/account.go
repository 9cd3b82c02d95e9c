package inmemdb

import (
	"context"
	"time"

	"github.com/irshadhq/irshad/core/account"
)

type profileRepository struct {
	db *DB
}

var _ account.ProfileRepository = (*profileRepository)(nil)

func NewProfileRepository(db *DB) *profileRepository {
	return &profileRepository{db: db}
}

func (repo *profileRepository) GetProfileByUserID(ctx context.Context, userID string) (account.Profile, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, p := range repo.db.profiles {
		if p.UserID == userID {
			return *p, nil
		}
	}
	return account.Profile{}, account.ErrProfileNotFound
}

func (repo *profileRepository) CreateProfile(ctx context.Context, p account.Profile) (account.Profile, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.profiles {
		if existing.UserID == p.UserID {
			return account.Profile{}, account.ErrAlreadyExists
		}
	}
	p.ID = newPK()
	repo.db.profiles[p.ID] = &p
	return p, nil
}

func (repo *profileRepository) UpdateProfile(ctx context.Context, userID string, up account.UpdateProfile) (account.Profile, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, p := range repo.db.profiles {
		if p.UserID == userID {
			if up.FullName != "" {
				p.FullName = up.FullName
			}
			if up.Phone.Valid {
				p.Phone = up.Phone
			}
			if up.AvatarURL.Valid {
				p.AvatarURL = up.AvatarURL
			}
			p.UpdatedAt = time.Now().UTC()
			return *p, nil
		}
	}
	return account.Profile{}, account.ErrProfileNotFound
}

func (repo *profileRepository) QueryAllProfiles(ctx context.Context) ([]account.Profile, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	profiles := make([]account.Profile, 0, len(repo.db.profiles))
	for _, p := range repo.db.profiles {
		profiles = append(profiles, *p)
	}
	return profiles, nil
}

type roleRepository struct {
	db *DB
}

var _ account.RoleRepository = (*roleRepository)(nil)

func NewRoleRepository(db *DB) *roleRepository {
	return &roleRepository{db: db}
}

func (repo *roleRepository) GetRoleByUserID(ctx context.Context, userID string) (account.RoleAssignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, ra := range repo.db.roles {
		if ra.UserID == userID {
			return *ra, nil
		}
	}
	return account.RoleAssignment{}, account.ErrRoleNotFound
}

func (repo *roleRepository) CreateRole(ctx context.Context, userID string, role account.Role) (account.RoleAssignment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, ra := range repo.db.roles {
		if ra.UserID == userID {
			return account.RoleAssignment{}, account.ErrAlreadyExists
		}
	}
	ra := account.RoleAssignment{ID: newPK(), UserID: userID, Role: role, CreatedAt: time.Now().UTC()}
	repo.db.roles[ra.ID] = &ra
	return ra, nil
}

func (repo *roleRepository) UpsertRole(ctx context.Context, userID string, role account.Role) (account.RoleAssignment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, ra := range repo.db.roles {
		if ra.UserID == userID {
			ra.Role = role
			return *ra, nil
		}
	}
	ra := account.RoleAssignment{ID: newPK(), UserID: userID, Role: role, CreatedAt: time.Now().UTC()}
	repo.db.roles[ra.ID] = &ra
	return ra, nil
}

func (repo *roleRepository) QueryAllRoles(ctx context.Context) ([]account.RoleAssignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	ras := make([]account.RoleAssignment, 0, len(repo.db.roles))
	for _, ra := range repo.db.roles {
		ras = append(ras, *ra)
	}
	return ras, nil
}

func (repo *roleRepository) QueryUserIDsByRole(ctx context.Context, role account.Role) ([]string, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	ids := make([]string, 0)
	for _, ra := range repo.db.roles {
		if ra.Role == role {
			ids = append(ids, ra.UserID)
		}
	}
	return ids, nil
}
