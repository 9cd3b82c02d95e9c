// Command client is the interactive dev console for the sign-in pipeline. It
// drives the same session manager and route guard the UI clients use, against
// the real database, so the whole bootstrap flow can be exercised without a
// frontend.
package main

import (
	"context"
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/irshadhq/irshad/core"
	"github.com/irshadhq/irshad/core/account"
	"github.com/irshadhq/irshad/core/session"
	localauth "github.com/irshadhq/irshad/services/auth/local"
	emailsvc "github.com/irshadhq/irshad/services/email"
	"github.com/irshadhq/irshad/storage/database"
	sqlxrepos "github.com/irshadhq/irshad/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "CLIENT : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())
	sdb := sqlx.NewDb(db, conf.Database.Engine)

	core.ParseEmailTemplates(core.NopLogger{})
	provider := localauth.NewProvider(
		sqlxrepos.NewAuthUserStore(sdb), conf, emailsvc.NewConsoleService(conf), core.NopLogger{})
	accountSvc := account.NewService(
		sqlxrepos.NewProfileRepository(sdb), sqlxrepos.NewRoleRepository(sdb), core.NopLogger{})

	mgr := session.NewManager(provider, accountSvc, core.NopLogger{})
	defer mgr.Close()

	ctx := context.Background()
	if err := mgr.Initialize(ctx); err != nil {
		logger.Printf("initializing session: %s", err)
	}

	c := newConsole(mgr, os.Stdout)
	if err := c.run(ctx, os.Stdin); err != nil {
		logger.Fatal(err)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
