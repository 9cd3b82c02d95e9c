package main

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/irshadhq/irshad/core"
	"github.com/irshadhq/irshad/core/account"
	"github.com/irshadhq/irshad/core/auth"
	localauth "github.com/irshadhq/irshad/services/auth/local"
)

// addUser creates a credential record plus its profile and role rows.
func (cli *commandLine) addUser(email, name, pwd, role string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)
	name = core.CleanString(name)

	parsed, err := account.ParseRole(role)
	if err != nil {
		return err
	}
	if err := localauth.CheckPassword(pwd, email, name); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	usr, err := cli.store.CreateUser(ctx, localauth.User{
		Email:        email,
		PasswordHash: hash,
		Metadata:     auth.Metadata{auth.MetaFullName: name},
		ConfirmedAt:  now,
		CreatedAt:    now,
	})
	if err != nil {
		return err
	}

	if _, err := cli.accountSvc.Bootstrap(ctx, auth.Identity{
		ID:       usr.ID,
		Email:    usr.Email,
		Metadata: usr.Metadata,
	}); err != nil {
		return err
	}
	if parsed != account.RoleStudent {
		if _, err := cli.accountSvc.SetRole(ctx, usr.ID, parsed); err != nil {
			return err
		}
	}
	return nil
}
