package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/irshadhq/irshad/core"
	"github.com/irshadhq/irshad/core/account"
	"github.com/irshadhq/irshad/core/auth"
	localauth "github.com/irshadhq/irshad/services/auth/local"
	inmemdb "github.com/irshadhq/irshad/storage/database/inmem"
)

func setup(t *testing.T) *commandLine {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed, %v", err)
	}
	return &commandLine{
		conf:  core.NewConfig(),
		store: localauth.NewMemStore(),
		accountSvc: account.NewService(
			inmemdb.NewProfileRepository(db), inmemdb.NewRoleRepository(db), core.NopLogger{}),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	pwd        string
	wantErr    error
	wantErrStr string
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	runMigrationFunc = func(command string, db *sql.DB, args ...string) error {
		switch command {
		case "up", "down", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s requires a VERSION argument", command)
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand defaults to up", args: []string{"migrate"}},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to requires a VERSION argument"},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error = %q, want %q", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"adduser", "-email", "awe@test.cd", "-name", "Awe"}, wantErr: errHelp},
		{name: "weak password", args: []string{"adduser", "-email", "awe@test.cd", "-name", "Awe"}, pwd: "123", wantErrStr: "password must contain at least 8 characters"},
		{name: "bad role", args: []string{"adduser", "-email", "awe@test.cd", "-name", "Awe", "-role", "boss"}, pwd: "Tr0ub4dor&3", wantErr: account.ErrUnknownRole},
		{name: "default role", args: []string{"adduser", "-email", "awe@test.cd", "-name", "Awe"}, pwd: "Tr0ub4dor&3"},
		{name: "teacher role", args: []string{"adduser", "-email", "ms@test.cd", "-name", "Ms Teacher", "-role", "teacher"}, pwd: "Tr0ub4dor&3"},
		{name: "duplicate email", args: []string{"adduser", "-email", "awe@test.cd", "-name", "Awe"}, pwd: "Tr0ub4dor&3", wantErr: localauth.ErrEmailTaken},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if tt.wantErrStr != "" {
				if err == nil || err.Error() != tt.wantErrStr {
					t.Errorf("cli.run() error = %v, want %q", err, tt.wantErrStr)
				}
				return
			}
			if err != nil {
				t.Fatalf("cli.run() unexpected error = %v", err)
			}
		})
	}

	// default role lands on student, explicit role sticks
	usr, err := cli.store.GetUserByEmail(ctx, "ms@test.cd")
	if err != nil {
		t.Fatalf("GetUserByEmail() failed, %v", err)
	}
	role, err := cli.accountSvc.Bootstrap(ctx, auth.Identity{ID: usr.ID, Email: usr.Email, Metadata: usr.Metadata})
	if err != nil {
		t.Fatalf("Bootstrap() failed, %v", err)
	}
	if role != account.RoleTeacher {
		t.Errorf("role = %v, want %v", role, account.RoleTeacher)
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("Tr0ub4dor&3"), nil }
	if err := cli.run([]string{"admin", "adduser", "-email", "awe@test.cd", "-name", "Awe"}); err != nil {
		t.Fatalf("adduser failed, %v", err)
	}
	usr, err := cli.store.GetUserByEmail(ctx, "awe@test.cd")
	if err != nil {
		t.Fatalf("GetUserByEmail() failed, %v", err)
	}

	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "awe@test.cd"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@test.cd"}, pwd: "B4ttery$taple", wantErr: localauth.ErrUserNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", "awe@test.cd"}, pwd: "B4ttery$taple"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshed, err := cli.store.GetUserByID(ctx, usr.ID)
				if err != nil {
					t.Fatalf("GetUserByID() failed, %v", err)
				}
				if bytes.Equal(refreshed.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
