package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/irshadhq/irshad/core/account"
	"github.com/irshadhq/irshad/core/session"
)

// routeRoles is the client-side route table: protected paths and the roles
// allowed to see them. Paths absent from both tables are protected views open
// to any authenticated user.
var routeRoles = map[string][]account.Role{
	"/dashboard/admin":   {account.RoleAdmin},
	"/dashboard/teacher": {account.RoleTeacher, account.RoleAdmin},
	"/dashboard/student": {account.RoleStudent},
}

// publicPaths are the auth screens; a signed-in user gets bounced to their
// own landing area instead.
var publicPaths = map[string]bool{
	session.LoginPath: true,
	"/register":       true,
}

// console drives the session manager from a line-based command stream. One
// command per line; errors are reported and the loop continues.
type console struct {
	mgr *session.Manager
	out io.Writer

	// how long to wait for bootstrap to settle after a sign-in
	settleTimeout time.Duration
}

func newConsole(mgr *session.Manager, out io.Writer) *console {
	return &console{mgr: mgr, out: out, settleTimeout: 5 * time.Second}
}

func (c *console) run(ctx context.Context, in io.Reader) error {
	c.printf("commands: login <email> <password> | register <email> <password> <name> | logout | whoami | open <path> | quit")

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]
		if cmd == "quit" || cmd == "exit" {
			break
		}
		if err := c.dispatch(ctx, cmd, args); err != nil {
			c.printf("error: %s", err)
		}
	}
	return sc.Err()
}

func (c *console) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		if len(args) != 2 {
			return fmt.Errorf("usage: login <email> <password>")
		}
		if err := c.mgr.SignIn(ctx, args[0], args[1]); err != nil {
			return err
		}
		c.afterSignIn()
	case "register":
		if len(args) < 3 {
			return fmt.Errorf("usage: register <email> <password> <full name>")
		}
		if err := c.mgr.SignUp(ctx, args[0], args[1], strings.Join(args[2:], " "), ""); err != nil {
			return err
		}
		c.afterSignIn()
	case "logout":
		if err := c.mgr.SignOut(ctx); err != nil {
			return err
		}
		c.printf("signed out")
	case "whoami":
		c.printWhoami()
	case "open":
		if len(args) != 1 {
			return fmt.Errorf("usage: open <path>")
		}
		c.printDecision(args[0])
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

// afterSignIn waits until bootstrap settles, then announces the landing area
// the guard would send the user to.
func (c *console) afterSignIn() {
	snap := c.awaitReady()
	if !snap.Authenticated() {
		c.printf("signed out")
		return
	}
	c.printf("signed in as %s (role %s)", snap.Identity.Email, roleLabel(snap.Role))
	if snap.RoleKnown() {
		c.printf("-> %s", session.LandingPath(snap.Role))
	}
}

// awaitReady blocks until the snapshot is stable for guard decisions, or the
// settle timeout expires. Subscription is registered before the first check so
// a transition between check and wait cannot be missed.
func (c *console) awaitReady() session.Snapshot {
	ch, unsub := c.mgr.Subscribe()
	defer unsub()

	if snap := c.mgr.Snapshot(); snap.Ready() {
		return snap
	}
	deadline := time.After(c.settleTimeout)
	for {
		select {
		case snap := <-ch:
			if snap.Ready() {
				return snap
			}
		case <-deadline:
			c.printf("still resolving role; showing current state")
			return c.mgr.Snapshot()
		}
	}
}

func (c *console) printWhoami() {
	snap := c.mgr.Snapshot()
	switch {
	case snap.Loading:
		c.printf("resolving session...")
	case !snap.Authenticated():
		c.printf("anonymous")
	default:
		c.printf("%s (role %s)", snap.Identity.Email, roleLabel(snap.Role))
	}
}

// printDecision runs the route guard for a path and reports what a client
// would do with it.
func (c *console) printDecision(path string) {
	snap := c.mgr.Snapshot()

	var d session.Decision
	if publicPaths[path] {
		d = session.DecidePublic(snap)
	} else {
		d = session.Decide(snap, routeRoles[path]...)
	}

	switch d.Kind {
	case session.DecisionPending:
		c.printf("%s: pending", path)
	case session.DecisionRender:
		c.printf("%s: render", path)
	case session.DecisionRedirectLogin:
		c.printf("%s: redirect -> %s", path, d.Redirect)
	case session.DecisionRedirectHome:
		c.printf("%s: redirect -> %s", path, d.Redirect)
	}
}

func (c *console) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

func roleLabel(role account.Role) string {
	if role == "" {
		return "unknown"
	}
	return string(role)
}
