// Package localauth is the in-process auth.Provider used by dev servers, the
// admin CLI and tests. Sessions are HS256 JWTs; emails are confirmed at
// sign-up so sign-in works immediately.
package localauth

import (
	"context"
	"net/mail"
	"net/url"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/irshadhq/irshad/core"
	"github.com/irshadhq/irshad/core/auth"
)

// Claims represents the session claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Email    string        `json:"email,omitempty"`
	Metadata auth.Metadata `json:"metadata,omitempty"`
}

type Provider struct {
	store  Store
	conf   *core.Config
	mailer core.EmailService
	logger core.Logger

	mu      sync.Mutex
	cur     *auth.Session
	subs    map[int]func(*auth.Session)
	nextSub int
}

var (
	_ auth.Provider       = (*Provider)(nil)
	_ auth.ResetConfirmer = (*Provider)(nil)
	_ auth.SessionIssuer  = (*Provider)(nil)
	_ auth.TokenVerifier  = (*Provider)(nil)
)

func NewProvider(store Store, conf *core.Config, mailer core.EmailService, logger core.Logger) *Provider {
	return &Provider{
		store:  store,
		conf:   conf,
		mailer: mailer,
		logger: logger,
		subs:   make(map[int]func(*auth.Session)),
	}
}

func (p *Provider) SignInWithPassword(ctx context.Context, email, password string) error {
	sess, err := p.IssueSession(ctx, email, password)
	if err != nil {
		return err
	}
	p.setSession(sess)
	return nil
}

// IssueSession verifies credentials and returns a fresh session. It never
// reads or writes the provider's current session; request handlers serving
// many users at once rely on that.
func (p *Provider) IssueSession(ctx context.Context, email, password string) (*auth.Session, error) {
	usr, err := p.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == ErrUserNotFound {
			return nil, auth.NewError(auth.KindInvalidCredentials, "invalid email or password")
		}
		return nil, errors.Wrap(err, "finding user by email")
	}
	if err = bcrypt.CompareHashAndPassword(usr.PasswordHash, []byte(password)); err != nil {
		return nil, auth.NewError(auth.KindInvalidCredentials, "invalid email or password")
	}
	if usr.ConfirmedAt.IsZero() {
		return nil, auth.NewError(auth.KindEmailUnconfirmed, "email not confirmed")
	}
	return p.issueSession(usr)
}

// VerifySession validates a bearer token and reconstructs its session.
func (p *Provider) VerifySession(ctx context.Context, token string) (*auth.Session, error) {
	claims, err := ParseToken(p.conf, token)
	if err != nil {
		return nil, err
	}
	return &auth.Session{
		Token:     token,
		ExpiresAt: time.Unix(claims.ExpiresAt, 0),
		Identity: auth.Identity{
			ID:       claims.Subject,
			Email:    claims.Email,
			Metadata: claims.Metadata,
		},
	}, nil
}

func (p *Provider) SignUp(ctx context.Context, email, password string, meta auth.Metadata) error {
	if err := CheckPassword(password, email, meta[auth.MetaFullName]); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hashing password")
	}

	now := NowFunc().UTC()
	_, err = p.store.CreateUser(ctx, User{
		Email:        email,
		PasswordHash: hash,
		Metadata:     meta,
		ConfirmedAt:  now, // pre-confirmed
		CreatedAt:    now,
	})
	if err != nil {
		if errors.Cause(err) == ErrEmailTaken {
			return auth.NewError(auth.KindAlreadyRegistered, "email already registered")
		}
		return errors.Wrap(err, "creating user")
	}
	return nil
}

func (p *Provider) SignOut(ctx context.Context) error {
	p.setSession(nil)
	return nil
}

func (p *Provider) CurrentSession(ctx context.Context) (*auth.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cur == nil {
		return nil, nil
	}
	if NowFunc().After(p.cur.ExpiresAt) {
		p.cur = nil
		return nil, nil
	}
	sess := *p.cur
	return &sess, nil
}

func (p *Provider) OnSessionChange(fn func(*auth.Session)) auth.Unsubscribe {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

func (p *Provider) RequestPasswordReset(ctx context.Context, email, redirectTarget string) error {
	usr, err := p.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == ErrUserNotFound {
			// do not leak account existence
			return nil
		}
		return errors.Wrap(err, "finding user by email")
	}

	token, err := MakeToken(p.conf, usr)
	if err != nil {
		return errors.Wrap(err, "making reset token")
	}

	q := make(url.Values)
	q.Set("uid", EncodeUID(usr))
	q.Set("token", token)
	resetURL := p.conf.FrontendBaseURL + redirectTarget + "?" + q.Encode()

	p.mailer.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Metadata[auth.MetaFullName], Address: usr.Email}},
		Subject:      "Password Reset",
		TemplateName: "password-reset",
		TemplateData: struct{ ResetURL string }{resetURL},
	})
	return nil
}

func (p *Provider) UpdatePassword(ctx context.Context, newPassword string) error {
	p.mu.Lock()
	cur := p.cur
	p.mu.Unlock()
	if cur == nil {
		return auth.NewError(auth.KindOther, "no active session")
	}

	usr, err := p.store.GetUserByID(ctx, cur.Identity.ID)
	if err != nil {
		return errors.Wrap(err, "finding user by id")
	}
	return p.changePassword(ctx, usr, newPassword)
}

func (p *Provider) ConfirmPasswordReset(ctx context.Context, uid, token, newPassword string) error {
	id, err := decodeUID(uid)
	if err != nil {
		return auth.NewError(auth.KindInvalidCredentials, "invalid reset link")
	}
	usr, err := p.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrUserNotFound {
			return auth.NewError(auth.KindInvalidCredentials, "invalid reset link")
		}
		return errors.Wrap(err, "finding user by id")
	}
	if err = verifyToken(p.conf, usr, token); err != nil {
		return auth.NewError(auth.KindInvalidCredentials, err.Error())
	}
	return p.changePassword(ctx, usr, newPassword)
}

func (p *Provider) changePassword(ctx context.Context, usr User, newPassword string) error {
	if err := CheckPassword(newPassword, usr.Email, usr.Metadata[auth.MetaFullName]); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hashing password")
	}
	return errors.Wrap(p.store.UpdateUserPassword(ctx, usr.ID, hash), "updating password")
}

func (p *Provider) issueSession(usr User) (*auth.Session, error) {
	now := NowFunc()
	expiresAt := now.Add(p.conf.Server.JWTExpirationDelta)

	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    p.conf.AppName,
			Subject:   usr.ID,
			ExpiresAt: expiresAt.Unix(),
			IssuedAt:  now.Unix(),
		},
		Email:    usr.Email,
		Metadata: usr.Metadata,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(p.conf.SecretKey))
	if err != nil {
		return nil, errors.Wrap(err, "signing token")
	}

	return &auth.Session{
		Token:     ss,
		ExpiresAt: expiresAt,
		Identity: auth.Identity{
			ID:       usr.ID,
			Email:    usr.Email,
			Metadata: usr.Metadata,
		},
	}, nil
}

func (p *Provider) setSession(sess *auth.Session) {
	p.mu.Lock()
	p.cur = sess
	subs := make([]func(*auth.Session), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	// callbacks run outside the lock; they must not call back into the
	// provider synchronously
	for _, fn := range subs {
		fn(sess)
	}
}

// ParseToken validates a signed session token and returns its claims.
func ParseToken(conf *core.Config, tokenStr string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(conf.SecretKey), nil
	})
	if err != nil || !token.Valid {
		return nil, auth.NewError(auth.KindInvalidCredentials, "invalid session token")
	}
	return claims, nil
}
