package account

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/irshadhq/irshad/core"
	"github.com/irshadhq/irshad/core/auth"
)

type (
	ProfileRepository interface {
		// GetProfileByUserID does a point read; ErrProfileNotFound when absent.
		GetProfileByUserID(ctx context.Context, userID string) (Profile, error)
		// CreateProfile inserts; ErrAlreadyExists on a duplicate user_id.
		CreateProfile(ctx context.Context, p Profile) (Profile, error)
		UpdateProfile(ctx context.Context, userID string, up UpdateProfile) (Profile, error)
		QueryAllProfiles(ctx context.Context) ([]Profile, error)
	}

	RoleRepository interface {
		// GetRoleByUserID reads the first matching assignment;
		// ErrRoleNotFound when absent.
		GetRoleByUserID(ctx context.Context, userID string) (RoleAssignment, error)
		// CreateRole inserts; ErrAlreadyExists on a duplicate user_id.
		CreateRole(ctx context.Context, userID string, role Role) (RoleAssignment, error)
		// UpsertRole inserts or replaces the assignment (admin role change).
		UpsertRole(ctx context.Context, userID string, role Role) (RoleAssignment, error)
		QueryAllRoles(ctx context.Context) ([]RoleAssignment, error)
		QueryUserIDsByRole(ctx context.Context, role Role) ([]string, error)
	}

	// Service is the sole writer of first-login Profile and RoleAssignment
	// rows, and the admin surface over both tables.
	Service struct {
		profiles ProfileRepository
		roles    RoleRepository
		logger   core.Logger
	}
)

func NewService(profiles ProfileRepository, roles RoleRepository, logger core.Logger) *Service {
	return &Service{profiles: profiles, roles: roles, logger: logger}
}

// Bootstrap lazily provisions the identity's Profile and RoleAssignment and
// resolves the role. Idempotent: once the rows exist it performs two reads and
// no writes. Profile failures are logged and swallowed so a data-layer hiccup
// never blocks an otherwise-authenticated sign-in; a role failure leaves the
// role unresolved and is returned for the caller to log.
func (svc *Service) Bootstrap(ctx context.Context, ident auth.Identity) (Role, error) {
	if err := svc.ensureProfile(ctx, ident); err != nil {
		svc.logger.Error("bootstrap: ensuring profile for "+ident.ID, err)
	}
	return svc.ensureRole(ctx, ident.ID)
}

func (svc *Service) ensureProfile(ctx context.Context, ident auth.Identity) error {
	_, err := svc.profiles.GetProfileByUserID(ctx, ident.ID)
	if err == nil {
		return nil
	}
	if errors.Cause(err) != ErrProfileNotFound {
		return errors.Wrap(err, "reading profile")
	}

	now := time.Now().UTC()
	_, err = svc.profiles.CreateProfile(ctx, Profile{
		UserID:    ident.ID,
		FullName:  DefaultFullName(ident),
		Phone:     DefaultPhone(ident),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if errors.Cause(err) == ErrAlreadyExists {
		// lost a race with a concurrent bootstrap; the row is there
		return nil
	}
	return errors.Wrap(err, "creating profile")
}

func (svc *Service) ensureRole(ctx context.Context, userID string) (Role, error) {
	ra, err := svc.roles.GetRoleByUserID(ctx, userID)
	if err == nil {
		role, perr := ParseRole(string(ra.Role))
		if perr != nil {
			// authoritative but unusable; leave the role unresolved rather
			// than silently granting a default
			return "", errors.Wrapf(perr, "role row for %s holds %q", userID, ra.Role)
		}
		return role, nil
	}
	if errors.Cause(err) != ErrRoleNotFound {
		return "", errors.Wrap(err, "reading role")
	}

	if _, err = svc.roles.CreateRole(ctx, userID, RoleStudent); err != nil {
		if errors.Cause(err) == ErrAlreadyExists {
			// concurrent bootstrap won; fall through to a read
			if ra, err = svc.roles.GetRoleByUserID(ctx, userID); err == nil {
				return ParseRole(string(ra.Role))
			}
		}
		return "", errors.Wrap(err, "creating default role")
	}
	// freshly created: the role is known without an extra round trip
	return RoleStudent, nil
}

// SetRole is the admin-driven role change; upserts so it also repairs a
// missing assignment row.
func (svc *Service) SetRole(ctx context.Context, userID string, role Role) (RoleAssignment, error) {
	if !role.Valid() {
		return RoleAssignment{}, core.NewValidationError(ErrUnknownRole, core.FieldError{Field: "role", Error: ErrUnknownRole.Error()})
	}
	ra, err := svc.roles.UpsertRole(ctx, userID, role)
	return ra, errors.Wrap(err, "upserting role")
}

func (svc *Service) GetProfile(ctx context.Context, userID string) (Profile, error) {
	return svc.profiles.GetProfileByUserID(ctx, userID)
}

func (svc *Service) UpdateProfile(ctx context.Context, userID string, up UpdateProfile) (Profile, error) {
	up.FullName = core.CleanString(up.FullName)
	return svc.profiles.UpdateProfile(ctx, userID, up)
}

// Directory joins all profiles with their role assignments for the admin
// users screen. Profiles with no role row show as students, mirroring the
// bootstrap default.
func (svc *Service) Directory(ctx context.Context) ([]Member, error) {
	profiles, err := svc.profiles.QueryAllProfiles(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying profiles")
	}
	assignments, err := svc.roles.QueryAllRoles(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying roles")
	}

	byUser := make(map[string]RoleAssignment, len(assignments))
	for _, ra := range assignments {
		if _, ok := byUser[ra.UserID]; !ok { // first match wins
			byUser[ra.UserID] = ra
		}
	}

	members := make([]Member, 0, len(profiles))
	for _, p := range profiles {
		m := Member{Profile: p, Role: RoleStudent}
		if ra, ok := byUser[p.UserID]; ok {
			if role, err := ParseRole(string(ra.Role)); err == nil {
				m.Role = role
			}
			m.RoleID = ra.ID
		}
		members = append(members, m)
	}
	return members, nil
}

// NamesByUserID builds an id→name lookup for the given user IDs, for screens
// joining domain rows with display names.
func (svc *Service) NamesByUserID(ctx context.Context, userIDs []string) (map[string]string, error) {
	profiles, err := svc.profiles.QueryAllProfiles(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying profiles")
	}
	wanted := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}
	names := make(map[string]string, len(userIDs))
	for _, p := range profiles {
		if wanted[p.UserID] {
			names[p.UserID] = p.FullName
		}
	}
	return names, nil
}

// TeacherOptions lists teachers for course assignment dropdowns.
func (svc *Service) TeacherOptions(ctx context.Context) ([]Member, error) {
	ids, err := svc.roles.QueryUserIDsByRole(ctx, RoleTeacher)
	if err != nil {
		return nil, errors.Wrap(err, "querying teacher ids")
	}
	if len(ids) == 0 {
		return []Member{}, nil
	}
	names, err := svc.NamesByUserID(ctx, ids)
	if err != nil {
		return nil, err
	}
	opts := make([]Member, 0, len(ids))
	for _, id := range ids {
		if name, ok := names[id]; ok {
			opts = append(opts, Member{Profile: Profile{UserID: id, FullName: name}, Role: RoleTeacher})
		}
	}
	return opts, nil
}
