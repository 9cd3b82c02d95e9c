// Package gotrueauth adapts a hosted GoTrue-compatible identity service to
// auth.Provider. All wire-error interpretation lives in classify; nothing
// outside this package may match on provider message strings.
package gotrueauth

import (
	"context"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/irshadhq/irshad/core"
	"github.com/irshadhq/irshad/core/auth"
)

type (
	tokenResponse struct {
		AccessToken string   `json:"access_token"`
		TokenType   string   `json:"token_type"`
		ExpiresIn   int      `json:"expires_in"`
		User        userBody `json:"user"`
	}

	userBody struct {
		ID           string            `json:"id"`
		Email        string            `json:"email"`
		UserMetadata map[string]string `json:"user_metadata"`
	}

	errorResponse struct {
		Code             int    `json:"code"`
		Msg              string `json:"msg"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
)

type Provider struct {
	client *resty.Client
	logger core.Logger

	mu      sync.Mutex
	cur     *auth.Session
	subs    map[int]func(*auth.Session)
	nextSub int
}

var (
	_ auth.Provider       = (*Provider)(nil)
	_ auth.SessionIssuer  = (*Provider)(nil)
	_ auth.TokenVerifier  = (*Provider)(nil)
	_ auth.SessionRevoker = (*Provider)(nil)
)

func NewProvider(conf *core.Config, logger core.Logger) *Provider {
	client := resty.New().
		SetBaseURL(conf.Auth.GoTrueURL).
		SetHeader("apikey", conf.Auth.GoTrueKey).
		SetTimeout(10 * time.Second)
	return &Provider{
		client: client,
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

// IssueSession performs the password grant and returns the issued session
// without touching the provider's current-session state.
func (p *Provider) IssueSession(ctx context.Context, email, password string) (*auth.Session, error) {
	var tok tokenResponse
	var apiErr errorResponse
	res, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "password").
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&tok).
		SetError(&apiErr).
		Post("/token")
	if err != nil {
		return nil, errors.Wrap(err, "posting token request")
	}
	if res.IsError() {
		return nil, classify(res.StatusCode(), apiErr)
	}
	return sessionOf(tok), nil
}

// VerifySession introspects a bearer token against the identity service,
// keeping the user_metadata claim shape intact. GoTrue does not report the
// token's expiry here, so ExpiresAt stays zero.
func (p *Provider) VerifySession(ctx context.Context, token string) (*auth.Session, error) {
	var usr userBody
	var apiErr errorResponse
	res, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&usr).
		SetError(&apiErr).
		Get("/user")
	if err != nil {
		return nil, errors.Wrap(err, "getting user")
	}
	if res.IsError() {
		return nil, auth.NewError(auth.KindInvalidCredentials, "invalid session token")
	}

	meta := make(auth.Metadata, len(usr.UserMetadata))
	for k, v := range usr.UserMetadata {
		meta[k] = v
	}
	return &auth.Session{
		Token: token,
		Identity: auth.Identity{
			ID:       usr.ID,
			Email:    usr.Email,
			Metadata: meta,
		},
	}, nil
}

// RevokeSession invalidates one bearer token remotely.
func (p *Provider) RevokeSession(ctx context.Context, token string) error {
	res, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		Post("/logout")
	if err != nil {
		return errors.Wrap(err, "posting logout request")
	}
	if res.IsError() {
		// the remote session may outlive us
		p.logger.Warn("gotrue: logout did not complete cleanly")
	}
	return nil
}

func (p *Provider) SignUp(ctx context.Context, email, password string, meta auth.Metadata) error {
	var apiErr errorResponse
	res, err := p.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{"email": email, "password": password, "data": meta}).
		SetError(&apiErr).
		Post("/signup")
	if err != nil {
		return errors.Wrap(err, "posting signup request")
	}
	if res.IsError() {
		return classify(res.StatusCode(), apiErr)
	}
	return nil
}

func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	cur := p.cur
	p.mu.Unlock()

	if cur != nil {
		if err := p.RevokeSession(ctx, cur.Token); err != nil {
			// clear locally regardless
			p.logger.Warn("gotrue: logout did not complete cleanly")
		}
	}
	p.setSession(nil)
	return nil
}

func (p *Provider) CurrentSession(ctx context.Context) (*auth.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cur == nil {
		return nil, nil
	}
	if time.Now().After(p.cur.ExpiresAt) {
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
	var apiErr errorResponse
	res, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("redirect_to", redirectTarget).
		SetBody(map[string]string{"email": email}).
		SetError(&apiErr).
		Post("/recover")
	if err != nil {
		return errors.Wrap(err, "posting recover request")
	}
	if res.IsError() {
		return classify(res.StatusCode(), apiErr)
	}
	return nil
}

func (p *Provider) UpdatePassword(ctx context.Context, newPassword string) error {
	p.mu.Lock()
	cur := p.cur
	p.mu.Unlock()
	if cur == nil {
		return auth.NewError(auth.KindOther, "no active session")
	}

	var apiErr errorResponse
	res, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(cur.Token).
		SetBody(map[string]string{"password": newPassword}).
		SetError(&apiErr).
		Put("/user")
	if err != nil {
		return errors.Wrap(err, "putting user update")
	}
	if res.IsError() {
		return classify(res.StatusCode(), apiErr)
	}
	return nil
}

func sessionOf(tok tokenResponse) *auth.Session {
	meta := make(auth.Metadata, len(tok.User.UserMetadata))
	for k, v := range tok.User.UserMetadata {
		meta[k] = v
	}
	return &auth.Session{
		Token:     tok.AccessToken,
		ExpiresAt: time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second),
		Identity: auth.Identity{
			ID:       tok.User.ID,
			Email:    tok.User.Email,
			Metadata: meta,
		},
	}
}

func (p *Provider) setSession(sess *auth.Session) {
	p.mu.Lock()
	p.cur = sess
	subs := make([]func(*auth.Session), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(sess)
	}
}
