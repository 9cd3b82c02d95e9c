package gotrueauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/irshadhq/irshad/core"
	"github.com/irshadhq/irshad/core/auth"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	conf := &core.Config{
		Auth: core.AuthConfig{GoTrueURL: srv.URL, GoTrueKey: "test-key"},
	}
	return NewProvider(conf, core.NopLogger{})
}

// writeJSON sets the content type before the status line so clients
// unmarshal the body.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestProvider_SignInWithPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("success establishes a session", func(t *testing.T) {
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/token" || r.URL.Query().Get("grant_type") != "password" {
				t.Errorf("unexpected request: %s %s", r.Method, r.URL)
			}
			if r.Header.Get("apikey") != "test-key" {
				t.Error("apikey header not set")
			}
			writeJSON(w, http.StatusOK, tokenResponse{
				AccessToken: "jwt-token",
				TokenType:   "bearer",
				ExpiresIn:   3600,
				User: userBody{
					ID:           "u1",
					Email:        "awe@test.cd",
					UserMetadata: map[string]string{auth.MetaFullName: "Awe"},
				},
			})
		})

		var events []*auth.Session
		unsub := p.OnSessionChange(func(sess *auth.Session) { events = append(events, sess) })
		defer unsub()

		if err := p.SignInWithPassword(ctx, "awe@test.cd", "pwd"); err != nil {
			t.Fatalf("SignInWithPassword() failed: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("len(events) = %d, want 1", len(events))
		}

		sess, err := p.CurrentSession(ctx)
		if err != nil {
			t.Fatalf("CurrentSession() failed: %v", err)
		}
		if sess == nil || sess.Token != "jwt-token" || sess.Identity.ID != "u1" {
			t.Fatalf("session = %+v", sess)
		}
		if sess.Identity.Metadata[auth.MetaFullName] != "Awe" {
			t.Errorf("metadata = %v, want full name mapped", sess.Identity.Metadata)
		}
	})

	t.Run("bad credentials classified", func(t *testing.T) {
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Msg: "Invalid login credentials"})
		})

		err := p.SignInWithPassword(ctx, "awe@test.cd", "nope")
		if auth.KindOf(err) != auth.KindInvalidCredentials {
			t.Errorf("KindOf(err) = %v, want %v", auth.KindOf(err), auth.KindInvalidCredentials)
		}
		if sess, _ := p.CurrentSession(ctx); sess != nil {
			t.Errorf("session = %+v, want nil after failed sign-in", sess)
		}
	})
}

func TestProvider_IssueSession(t *testing.T) {
	ctx := context.Background()

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, tokenResponse{
			AccessToken: "jwt-token",
			ExpiresIn:   3600,
			User:        userBody{ID: "u1", Email: "awe@test.cd"},
		})
	})

	var events []*auth.Session
	unsub := p.OnSessionChange(func(sess *auth.Session) { events = append(events, sess) })
	defer unsub()

	sess, err := p.IssueSession(ctx, "awe@test.cd", "pwd")
	if err != nil {
		t.Fatalf("IssueSession() failed: %v", err)
	}
	if sess == nil || sess.Token != "jwt-token" || sess.Identity.ID != "u1" {
		t.Fatalf("session = %+v", sess)
	}

	// issuing is side-effect free: no broadcast, no current session
	if len(events) != 0 {
		t.Errorf("events = %v, want none", events)
	}
	if cur, _ := p.CurrentSession(ctx); cur != nil {
		t.Errorf("CurrentSession() = %+v, want nil", cur)
	}
}

func TestProvider_VerifySession(t *testing.T) {
	ctx := context.Background()

	t.Run("valid token", func(t *testing.T) {
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/user" || r.Method != http.MethodGet {
				t.Errorf("unexpected request: %s %s", r.Method, r.URL)
			}
			if r.Header.Get("Authorization") != "Bearer jwt-token" {
				t.Errorf("Authorization = %q, want bearer token", r.Header.Get("Authorization"))
			}
			writeJSON(w, http.StatusOK, userBody{
				ID:           "u1",
				Email:        "awe@test.cd",
				UserMetadata: map[string]string{auth.MetaFullName: "Awe"},
			})
		})

		sess, err := p.VerifySession(ctx, "jwt-token")
		if err != nil {
			t.Fatalf("VerifySession() failed: %v", err)
		}
		if sess.Identity.ID != "u1" || sess.Identity.Email != "awe@test.cd" {
			t.Fatalf("identity = %+v", sess.Identity)
		}
		if sess.Identity.Metadata[auth.MetaFullName] != "Awe" {
			t.Errorf("metadata = %v, want user_metadata mapped", sess.Identity.Metadata)
		}
	})

	t.Run("rejected token", func(t *testing.T) {
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Msg: "invalid JWT"})
		})

		_, err := p.VerifySession(ctx, "expired")
		if auth.KindOf(err) != auth.KindInvalidCredentials {
			t.Errorf("KindOf(err) = %v, want %v", auth.KindOf(err), auth.KindInvalidCredentials)
		}
	})
}

func TestProvider_SignUp(t *testing.T) {
	ctx := context.Background()

	t.Run("sends metadata as data", func(t *testing.T) {
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				Email string            `json:"email"`
				Data  map[string]string `json:"data"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body.Data[auth.MetaFullName] != "Awe" {
				t.Errorf("data = %v, want full_name", body.Data)
			}
			writeJSON(w, http.StatusOK, userBody{ID: "u1", Email: body.Email})
		})

		err := p.SignUp(ctx, "awe@test.cd", "pwd", auth.Metadata{auth.MetaFullName: "Awe"})
		if err != nil {
			t.Fatalf("SignUp() failed: %v", err)
		}
		// sign-up alone never establishes a session
		if sess, _ := p.CurrentSession(ctx); sess != nil {
			t.Errorf("session = %+v, want nil", sess)
		}
	})

	t.Run("duplicate classified", func(t *testing.T) {
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Msg: "A user with this email address has already been registered"})
		})

		err := p.SignUp(ctx, "awe@test.cd", "pwd", nil)
		if auth.KindOf(err) != auth.KindAlreadyRegistered {
			t.Errorf("KindOf(err) = %v, want %v", auth.KindOf(err), auth.KindAlreadyRegistered)
		}
	})
}

func TestProvider_SignOut(t *testing.T) {
	ctx := context.Background()
	logoutCalled := false

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			writeJSON(w, http.StatusOK, tokenResponse{AccessToken: "jwt-token", ExpiresIn: 3600, User: userBody{ID: "u1"}})
		case "/logout":
			logoutCalled = true
			if r.Header.Get("Authorization") != "Bearer jwt-token" {
				t.Errorf("Authorization = %q, want bearer token", r.Header.Get("Authorization"))
			}
			w.WriteHeader(http.StatusNoContent)
		}
	})

	if err := p.SignInWithPassword(ctx, "awe@test.cd", "pwd"); err != nil {
		t.Fatalf("SignInWithPassword() failed: %v", err)
	}

	var events []*auth.Session
	unsub := p.OnSessionChange(func(sess *auth.Session) { events = append(events, sess) })
	defer unsub()

	if err := p.SignOut(ctx); err != nil {
		t.Fatalf("SignOut() failed: %v", err)
	}
	if !logoutCalled {
		t.Error("remote logout not called")
	}
	if len(events) != 1 || events[0] != nil {
		t.Errorf("events = %v, want one nil event", events)
	}
	if sess, _ := p.CurrentSession(ctx); sess != nil {
		t.Errorf("session = %+v, want nil", sess)
	}
}

func TestProvider_SignOut_remoteFailureStillClears(t *testing.T) {
	ctx := context.Background()

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			writeJSON(w, http.StatusOK, tokenResponse{AccessToken: "jwt-token", ExpiresIn: 3600, User: userBody{ID: "u1"}})
		case "/logout":
			w.WriteHeader(http.StatusInternalServerError)
		}
	})

	if err := p.SignInWithPassword(ctx, "awe@test.cd", "pwd"); err != nil {
		t.Fatalf("SignInWithPassword() failed: %v", err)
	}
	if err := p.SignOut(ctx); err != nil {
		t.Fatalf("SignOut() failed: %v", err)
	}
	if sess, _ := p.CurrentSession(ctx); sess != nil {
		t.Errorf("session = %+v, want nil even when remote logout fails", sess)
	}
}

func TestProvider_RequestPasswordReset(t *testing.T) {
	ctx := context.Background()

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/recover" {
			t.Errorf("path = %s, want /recover", r.URL.Path)
		}
		if r.URL.Query().Get("redirect_to") != "/reset-password" {
			t.Errorf("redirect_to = %q", r.URL.Query().Get("redirect_to"))
		}
		writeJSON(w, http.StatusOK, map[string]string{})
	})

	if err := p.RequestPasswordReset(ctx, "awe@test.cd", "/reset-password"); err != nil {
		t.Fatalf("RequestPasswordReset() failed: %v", err)
	}
}

func TestProvider_UpdatePassword(t *testing.T) {
	ctx := context.Background()

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			writeJSON(w, http.StatusOK, tokenResponse{AccessToken: "jwt-token", ExpiresIn: 3600, User: userBody{ID: "u1"}})
		case "/user":
			if r.Method != http.MethodPut {
				t.Errorf("method = %s, want PUT", r.Method)
			}
			writeJSON(w, http.StatusOK, map[string]string{})
		}
	})

	if err := p.UpdatePassword(ctx, "newpwd"); auth.KindOf(err) != auth.KindOther {
		t.Errorf("UpdatePassword() without session: KindOf = %v, want %v", auth.KindOf(err), auth.KindOther)
	}

	if err := p.SignInWithPassword(ctx, "awe@test.cd", "pwd"); err != nil {
		t.Fatalf("SignInWithPassword() failed: %v", err)
	}
	if err := p.UpdatePassword(ctx, "newpwd"); err != nil {
		t.Fatalf("UpdatePassword() failed: %v", err)
	}
}
