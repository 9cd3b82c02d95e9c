package localauth_test

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/irshadhq/irshad/core"
	"github.com/irshadhq/irshad/core/auth"
	localauth "github.com/irshadhq/irshad/services/auth/local"
	emailsvc "github.com/irshadhq/irshad/services/email"
)

func newTestConfig() *core.Config {
	return &core.Config{
		AppName:                   "Irshad",
		SecretKey:                 "secret",
		FrontendBaseURL:           "http://localhost:5173",
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		Server: core.ServerConfig{
			JWTExpirationDelta: time.Hour,
		},
	}
}

func setup(t *testing.T) (*localauth.Provider, *core.Config) {
	t.Helper()

	conf := newTestConfig()
	core.ParseEmailTemplates(core.NopLogger{})
	mailer := emailsvc.NewConsoleServiceMock(conf)
	return localauth.NewProvider(localauth.NewMemStore(), conf, mailer, core.NopLogger{}), conf
}

func signUp(t *testing.T, p *localauth.Provider, email, pwd, name string) {
	t.Helper()
	err := p.SignUp(context.Background(), email, pwd, auth.Metadata{auth.MetaFullName: name})
	if err != nil {
		t.Fatalf("SignUp() failed: %v", err)
	}
}

func TestProvider_SignInWithPassword(t *testing.T) {
	ctx := context.Background()
	p, conf := setup(t)
	signUp(t, p, "awe@test.cd", "Tr0ub4dor&3", "Awe")

	var events []*auth.Session
	unsub := p.OnSessionChange(func(sess *auth.Session) { events = append(events, sess) })
	defer unsub()

	t.Run("unknown email", func(t *testing.T) {
		err := p.SignInWithPassword(ctx, "lol@test.cd", "Tr0ub4dor&3")
		if auth.KindOf(err) != auth.KindInvalidCredentials {
			t.Errorf("KindOf(err) = %v, want %v", auth.KindOf(err), auth.KindInvalidCredentials)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		err := p.SignInWithPassword(ctx, "awe@test.cd", "nope")
		if auth.KindOf(err) != auth.KindInvalidCredentials {
			t.Errorf("KindOf(err) = %v, want %v", auth.KindOf(err), auth.KindInvalidCredentials)
		}
	})

	t.Run("success issues a session and broadcasts", func(t *testing.T) {
		if err := p.SignInWithPassword(ctx, "awe@test.cd", "Tr0ub4dor&3"); err != nil {
			t.Fatalf("SignInWithPassword() failed: %v", err)
		}
		if len(events) != 1 || events[0] == nil {
			t.Fatalf("events = %v, want one session event", events)
		}

		sess, err := p.CurrentSession(ctx)
		if err != nil {
			t.Fatalf("CurrentSession() failed: %v", err)
		}
		if sess == nil || sess.Identity.Email != "awe@test.cd" {
			t.Fatalf("session = %+v, want awe@test.cd", sess)
		}

		claims, err := localauth.ParseToken(conf, sess.Token)
		if err != nil {
			t.Fatalf("ParseToken() failed: %v", err)
		}
		if claims.Subject != sess.Identity.ID || claims.Email != "awe@test.cd" {
			t.Errorf("claims = %+v, want matching identity", claims)
		}
		if claims.Metadata[auth.MetaFullName] != "Awe" {
			t.Errorf("metadata name = %q, want Awe", claims.Metadata[auth.MetaFullName])
		}
	})

	t.Run("sign out clears and broadcasts nil", func(t *testing.T) {
		if err := p.SignOut(ctx); err != nil {
			t.Fatalf("SignOut() failed: %v", err)
		}
		if events[len(events)-1] != nil {
			t.Error("last event != nil, want sign-out broadcast")
		}
		sess, err := p.CurrentSession(ctx)
		if err != nil {
			t.Fatalf("CurrentSession() failed: %v", err)
		}
		if sess != nil {
			t.Errorf("session = %+v, want nil after sign-out", sess)
		}
	})
}

func TestProvider_SignUp(t *testing.T) {
	ctx := context.Background()
	p, _ := setup(t)

	t.Run("weak password", func(t *testing.T) {
		err := p.SignUp(ctx, "awe@test.cd", "123", nil)
		if auth.KindOf(err) != auth.KindWeakCredential {
			t.Errorf("KindOf(err) = %v, want %v", auth.KindOf(err), auth.KindWeakCredential)
		}
	})

	t.Run("creates a pre-confirmed account", func(t *testing.T) {
		signUp(t, p, "awe@test.cd", "Tr0ub4dor&3", "Awe")
		// sign-in works immediately, no confirmation step
		if err := p.SignInWithPassword(ctx, "awe@test.cd", "Tr0ub4dor&3"); err != nil {
			t.Fatalf("SignInWithPassword() failed: %v", err)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		err := p.SignUp(ctx, "awe@test.cd", "Tr0ub4dor&3", nil)
		if auth.KindOf(err) != auth.KindAlreadyRegistered {
			t.Errorf("KindOf(err) = %v, want %v", auth.KindOf(err), auth.KindAlreadyRegistered)
		}
	})
}

func TestProvider_IssueSession(t *testing.T) {
	ctx := context.Background()
	p, _ := setup(t)
	signUp(t, p, "alice@test.cd", "Tr0ub4dor&3", "Alice")
	signUp(t, p, "bob@test.cd", "Tr0ub4dor&3", "Bob")

	t.Run("bad credentials", func(t *testing.T) {
		_, err := p.IssueSession(ctx, "alice@test.cd", "nope")
		if auth.KindOf(err) != auth.KindInvalidCredentials {
			t.Errorf("KindOf(err) = %v, want %v", auth.KindOf(err), auth.KindInvalidCredentials)
		}
	})

	t.Run("issuing never touches the shared current session", func(t *testing.T) {
		// bob is the provider's current session, as if another caller had
		// just signed in
		if err := p.SignInWithPassword(ctx, "bob@test.cd", "Tr0ub4dor&3"); err != nil {
			t.Fatalf("SignInWithPassword() failed: %v", err)
		}

		var events []*auth.Session
		unsub := p.OnSessionChange(func(sess *auth.Session) { events = append(events, sess) })
		defer unsub()

		sess, err := p.IssueSession(ctx, "alice@test.cd", "Tr0ub4dor&3")
		if err != nil {
			t.Fatalf("IssueSession() failed: %v", err)
		}
		if sess.Identity.Email != "alice@test.cd" {
			t.Fatalf("issued identity = %q, want alice@test.cd", sess.Identity.Email)
		}
		if len(events) != 0 {
			t.Errorf("events = %v, want none", events)
		}

		cur, err := p.CurrentSession(ctx)
		if err != nil {
			t.Fatalf("CurrentSession() failed: %v", err)
		}
		if cur == nil || cur.Identity.Email != "bob@test.cd" {
			t.Errorf("current session = %+v, want bob's untouched", cur)
		}
	})

	t.Run("issued token verifies back to the same identity", func(t *testing.T) {
		sess, err := p.IssueSession(ctx, "alice@test.cd", "Tr0ub4dor&3")
		if err != nil {
			t.Fatalf("IssueSession() failed: %v", err)
		}

		got, err := p.VerifySession(ctx, sess.Token)
		if err != nil {
			t.Fatalf("VerifySession() failed: %v", err)
		}
		if got.Identity.ID != sess.Identity.ID || got.Identity.Email != "alice@test.cd" {
			t.Errorf("verified identity = %+v, want issued one", got.Identity)
		}
		if got.Identity.Metadata[auth.MetaFullName] != "Alice" {
			t.Errorf("metadata = %v, want full name carried", got.Identity.Metadata)
		}
	})
}

func TestProvider_VerifySession(t *testing.T) {
	ctx := context.Background()
	p, _ := setup(t)
	signUp(t, p, "awe@test.cd", "Tr0ub4dor&3", "Awe")

	t.Run("garbage token", func(t *testing.T) {
		_, err := p.VerifySession(ctx, "lol.not.jwt")
		if auth.KindOf(err) != auth.KindInvalidCredentials {
			t.Errorf("KindOf(err) = %v, want %v", auth.KindOf(err), auth.KindInvalidCredentials)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		// issue a token in the past so it is already stale
		localauth.NowFunc = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		sess, err := p.IssueSession(ctx, "awe@test.cd", "Tr0ub4dor&3")
		localauth.NowFunc = time.Now
		if err != nil {
			t.Fatalf("IssueSession() failed: %v", err)
		}

		if _, err := p.VerifySession(ctx, sess.Token); err == nil {
			t.Error("VerifySession() expected error for an expired token")
		}
	})
}

func TestProvider_CurrentSession_expiry(t *testing.T) {
	ctx := context.Background()
	p, _ := setup(t)
	signUp(t, p, "awe@test.cd", "Tr0ub4dor&3", "Awe")
	if err := p.SignInWithPassword(ctx, "awe@test.cd", "Tr0ub4dor&3"); err != nil {
		t.Fatalf("SignInWithPassword() failed: %v", err)
	}

	localauth.NowFunc = func() time.Time { return time.Now().Add(2 * time.Hour) }
	defer func() { localauth.NowFunc = time.Now }()

	sess, err := p.CurrentSession(ctx)
	if err != nil {
		t.Fatalf("CurrentSession() failed: %v", err)
	}
	if sess != nil {
		t.Errorf("session = %+v, want nil once expired", sess)
	}
}

func TestProvider_PasswordReset(t *testing.T) {
	ctx := context.Background()
	p, _ := setup(t)
	signUp(t, p, "awe@test.cd", "Tr0ub4dor&3", "Awe")

	t.Run("unknown email succeeds silently", func(t *testing.T) {
		before := len(emailsvc.SentMessages)
		if err := p.RequestPasswordReset(ctx, "lol@test.cd", "/reset-password"); err != nil {
			t.Fatalf("RequestPasswordReset() failed: %v", err)
		}
		if len(emailsvc.SentMessages) != before {
			t.Error("no email expected for an unknown address")
		}
	})

	t.Run("known email gets a working link", func(t *testing.T) {
		before := len(emailsvc.SentMessages)
		if err := p.RequestPasswordReset(ctx, "awe@test.cd", "/reset-password"); err != nil {
			t.Fatalf("RequestPasswordReset() failed: %v", err)
		}
		if len(emailsvc.SentMessages) != before+1 {
			t.Fatalf("len(SentMessages) = %d, want %d", len(emailsvc.SentMessages), before+1)
		}
		msg := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]
		if msg.To[0].Address != "awe@test.cd" {
			t.Errorf("To = %v, want awe@test.cd", msg.To)
		}

		uid, token := extractResetParams(t, msg.TextContent)

		if err := p.ConfirmPasswordReset(ctx, uid, token, "B4ttery$taple"); err != nil {
			t.Fatalf("ConfirmPasswordReset() failed: %v", err)
		}
		if err := p.SignInWithPassword(ctx, "awe@test.cd", "B4ttery$taple"); err != nil {
			t.Errorf("SignInWithPassword() with new password failed: %v", err)
		}

		// the old link is dead once the password changed
		err := p.ConfirmPasswordReset(ctx, uid, token, "An0ther&Pwd1")
		if auth.KindOf(err) != auth.KindInvalidCredentials {
			t.Errorf("KindOf(err) = %v, want %v", auth.KindOf(err), auth.KindInvalidCredentials)
		}
	})

	t.Run("tampered link", func(t *testing.T) {
		err := p.ConfirmPasswordReset(ctx, "bm90LWEtdXNlcg", "HE4TS-sigsig-sig", "B4ttery$taple")
		if auth.KindOf(err) != auth.KindInvalidCredentials {
			t.Errorf("KindOf(err) = %v, want %v", auth.KindOf(err), auth.KindInvalidCredentials)
		}
	})
}

func TestProvider_UpdatePassword(t *testing.T) {
	ctx := context.Background()
	p, _ := setup(t)
	signUp(t, p, "awe@test.cd", "Tr0ub4dor&3", "Awe")

	t.Run("requires an active session", func(t *testing.T) {
		if err := p.UpdatePassword(ctx, "B4ttery$taple"); err == nil {
			t.Error("UpdatePassword() expected error without a session")
		}
	})

	t.Run("changes the signed-in user's password", func(t *testing.T) {
		if err := p.SignInWithPassword(ctx, "awe@test.cd", "Tr0ub4dor&3"); err != nil {
			t.Fatalf("SignInWithPassword() failed: %v", err)
		}
		if err := p.UpdatePassword(ctx, "B4ttery$taple"); err != nil {
			t.Fatalf("UpdatePassword() failed: %v", err)
		}
		if err := p.SignInWithPassword(ctx, "awe@test.cd", "B4ttery$taple"); err != nil {
			t.Errorf("SignInWithPassword() with new password failed: %v", err)
		}
	})
}

// extractResetParams pulls uid and token out of the reset URL in the mail body.
func extractResetParams(t *testing.T, body string) (uid, token string) {
	t.Helper()

	idx := strings.Index(body, "http")
	if idx == -1 {
		t.Fatalf("no reset URL in body: %q", body)
	}
	raw := body[idx:]
	if end := strings.IndexAny(raw, " \r\n\t"); end != -1 {
		raw = raw[:end]
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parsing reset URL %q: %v", raw, err)
	}
	q := u.Query()
	if q.Get("uid") == "" || q.Get("token") == "" {
		t.Fatalf("reset URL %q missing uid/token", raw)
	}
	return q.Get("uid"), q.Get("token")
}
