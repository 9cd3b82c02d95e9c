package main

import (
	"github.com/irshadhq/irshad/storage/database"
)

var runMigrationFunc = database.RunMigration // mockable

func (cli *commandLine) migrate(args []string) error {
	command := "up"
	var rest []string
	if len(args) > 0 {
		command = args[0]
		rest = args[1:]
	}
	return runMigrationFunc(command, cli.db, rest...)
}
