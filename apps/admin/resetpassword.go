package main

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/irshadhq/irshad/core"
	"github.com/irshadhq/irshad/core/auth"
	localauth "github.com/irshadhq/irshad/services/auth/local"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()

	usr, err := cli.store.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	if err := localauth.CheckPassword(pwd, usr.Email, usr.Metadata[auth.MetaFullName]); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return cli.store.UpdateUserPassword(ctx, usr.ID, hash)
}
