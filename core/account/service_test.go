package account_test

import (
	"context"
	"testing"

	"github.com/irshadhq/irshad/core"
	"github.com/irshadhq/irshad/core/account"
	"github.com/irshadhq/irshad/core/auth"
	inmemdb "github.com/irshadhq/irshad/storage/database/inmem"
)

// countingProfileRepo tracks writes so tests can assert bootstrap idempotence.
type countingProfileRepo struct {
	account.ProfileRepository
	creates int
}

func (r *countingProfileRepo) CreateProfile(ctx context.Context, p account.Profile) (account.Profile, error) {
	r.creates++
	return r.ProfileRepository.CreateProfile(ctx, p)
}

type countingRoleRepo struct {
	account.RoleRepository
	creates int
	upserts int
}

func (r *countingRoleRepo) CreateRole(ctx context.Context, userID string, role account.Role) (account.RoleAssignment, error) {
	r.creates++
	return r.RoleRepository.CreateRole(ctx, userID, role)
}

func (r *countingRoleRepo) UpsertRole(ctx context.Context, userID string, role account.Role) (account.RoleAssignment, error) {
	r.upserts++
	return r.RoleRepository.UpsertRole(ctx, userID, role)
}

func setup(t *testing.T) (*account.Service, *countingProfileRepo, *countingRoleRepo) {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	profiles := &countingProfileRepo{ProfileRepository: inmemdb.NewProfileRepository(db)}
	roles := &countingRoleRepo{RoleRepository: inmemdb.NewRoleRepository(db)}
	return account.NewService(profiles, roles, core.NopLogger{}), profiles, roles
}

func TestService_Bootstrap(t *testing.T) {
	ctx := context.Background()
	ident := auth.Identity{
		ID:    "u1",
		Email: "jane@example.com",
		Metadata: auth.Metadata{
			auth.MetaFullName: "Jane Doe",
			auth.MetaPhone:    "+243 999 000",
		},
	}

	t.Run("first login provisions profile and default role", func(t *testing.T) {
		svc, profiles, roles := setup(t)

		role, err := svc.Bootstrap(ctx, ident)
		if err != nil {
			t.Fatalf("Bootstrap() failed: %v", err)
		}
		if role != account.RoleStudent {
			t.Errorf("role = %v, want default %v", role, account.RoleStudent)
		}
		if profiles.creates != 1 || roles.creates != 1 {
			t.Errorf("creates = (%d, %d), want (1, 1)", profiles.creates, roles.creates)
		}

		p, err := svc.GetProfile(ctx, ident.ID)
		if err != nil {
			t.Fatalf("GetProfile() failed: %v", err)
		}
		if p.FullName != "Jane Doe" {
			t.Errorf("FullName = %q, want metadata name", p.FullName)
		}
		if !p.Phone.Valid || p.Phone.String != "+243 999 000" {
			t.Errorf("Phone = %+v, want metadata phone", p.Phone)
		}
	})

	t.Run("second login performs no writes", func(t *testing.T) {
		svc, profiles, roles := setup(t)

		if _, err := svc.Bootstrap(ctx, ident); err != nil {
			t.Fatalf("Bootstrap() failed: %v", err)
		}
		role, err := svc.Bootstrap(ctx, ident)
		if err != nil {
			t.Fatalf("Bootstrap() failed: %v", err)
		}
		if role != account.RoleStudent {
			t.Errorf("role = %v, want %v", role, account.RoleStudent)
		}
		if profiles.creates != 1 || roles.creates != 1 {
			t.Errorf("creates = (%d, %d), want (1, 1) after two bootstraps", profiles.creates, roles.creates)
		}
	})

	t.Run("missing name falls back to email local part", func(t *testing.T) {
		svc, _, _ := setup(t)

		bare := auth.Identity{ID: "u2", Email: "jane@example.com"}
		if _, err := svc.Bootstrap(ctx, bare); err != nil {
			t.Fatalf("Bootstrap() failed: %v", err)
		}
		p, err := svc.GetProfile(ctx, bare.ID)
		if err != nil {
			t.Fatalf("GetProfile() failed: %v", err)
		}
		if p.FullName != "jane" {
			t.Errorf("FullName = %q, want %q", p.FullName, "jane")
		}
		if p.Phone.Valid {
			t.Errorf("Phone = %+v, want null", p.Phone)
		}
	})

	t.Run("bootstrap does not demote an assigned role", func(t *testing.T) {
		svc, _, roles := setup(t)

		if _, err := svc.Bootstrap(ctx, ident); err != nil {
			t.Fatalf("Bootstrap() failed: %v", err)
		}
		if _, err := svc.SetRole(ctx, ident.ID, account.RoleTeacher); err != nil {
			t.Fatalf("SetRole() failed: %v", err)
		}

		role, err := svc.Bootstrap(ctx, ident)
		if err != nil {
			t.Fatalf("Bootstrap() failed: %v", err)
		}
		if role != account.RoleTeacher {
			t.Errorf("role = %v, want assigned %v", role, account.RoleTeacher)
		}
		if roles.creates != 1 {
			t.Errorf("role creates = %d, want 1", roles.creates)
		}
	})

	t.Run("corrupt role row leaves role unresolved", func(t *testing.T) {
		svc, _, roles := setup(t)

		// write a role value the domain does not know
		if _, err := roles.RoleRepository.CreateRole(ctx, ident.ID, account.Role("superuser")); err != nil {
			t.Fatalf("CreateRole() failed: %v", err)
		}

		role, err := svc.Bootstrap(ctx, ident)
		if err == nil {
			t.Fatal("Bootstrap() expected error for unknown role value")
		}
		if role != "" {
			t.Errorf("role = %v, want unresolved", role)
		}
	})
}

func TestService_SetRole(t *testing.T) {
	ctx := context.Background()
	svc, _, roles := setup(t)

	if _, err := svc.SetRole(ctx, "u1", account.Role("boss")); err == nil {
		t.Error("SetRole() expected validation error for unknown role")
	}

	// upsert repairs a missing assignment row
	ra, err := svc.SetRole(ctx, "u1", account.RoleAdmin)
	if err != nil {
		t.Fatalf("SetRole() failed: %v", err)
	}
	if ra.Role != account.RoleAdmin {
		t.Errorf("role = %v, want %v", ra.Role, account.RoleAdmin)
	}

	ra, err = svc.SetRole(ctx, "u1", account.RoleTeacher)
	if err != nil {
		t.Fatalf("SetRole() failed: %v", err)
	}
	if ra.Role != account.RoleTeacher {
		t.Errorf("role = %v, want %v", ra.Role, account.RoleTeacher)
	}
	if roles.upserts != 2 {
		t.Errorf("upserts = %d, want 2", roles.upserts)
	}
}

func TestService_Directory(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setup(t)

	for _, id := range []string{"u1", "u2", "u3"} {
		if _, err := svc.Bootstrap(ctx, auth.Identity{ID: id, Email: id + "@test.cd"}); err != nil {
			t.Fatalf("Bootstrap(%s) failed: %v", id, err)
		}
	}
	if _, err := svc.SetRole(ctx, "u2", account.RoleTeacher); err != nil {
		t.Fatalf("SetRole() failed: %v", err)
	}

	members, err := svc.Directory(ctx)
	if err != nil {
		t.Fatalf("Directory() failed: %v", err)
	}
	if len(members) != 3 {
		t.Fatalf("len(members) = %d, want 3", len(members))
	}
	byUser := make(map[string]account.Role)
	for _, m := range members {
		byUser[m.UserID] = m.Role
	}
	if byUser["u1"] != account.RoleStudent || byUser["u2"] != account.RoleTeacher || byUser["u3"] != account.RoleStudent {
		t.Errorf("directory roles = %v", byUser)
	}

	opts, err := svc.TeacherOptions(ctx)
	if err != nil {
		t.Fatalf("TeacherOptions() failed: %v", err)
	}
	if len(opts) != 1 || opts[0].UserID != "u2" {
		t.Errorf("TeacherOptions() = %+v, want just u2", opts)
	}
}
