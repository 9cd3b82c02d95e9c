package main

import (
	"context"

	"github.com/irshadhq/irshad/core"
	"github.com/irshadhq/irshad/core/account"
)

func (cli *commandLine) setRole(email, role string) error {
	ctx := context.Background()

	parsed, err := account.ParseRole(role)
	if err != nil {
		return err
	}
	usr, err := cli.store.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	_, err = cli.accountSvc.SetRole(ctx, usr.ID, parsed)
	return err
}
