package session

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/irshadhq/irshad/core"
	"github.com/irshadhq/irshad/core/account"
	"github.com/irshadhq/irshad/core/auth"
)

// Bootstrapper provisions first-login rows and resolves the role for an
// identity. Satisfied by account.Service.
type Bootstrapper interface {
	Bootstrap(ctx context.Context, ident auth.Identity) (account.Role, error)
}

// Manager is the single authority for "who is signed in and what can they
// do". It is the sole writer of the Snapshot; everything else observes.
type Manager struct {
	provider auth.Provider
	boot     Bootstrapper
	logger   core.Logger

	mu    sync.Mutex
	snap  Snapshot
	epoch uint64 // bumped on every observed session change
	subs  map[chan Snapshot]struct{}
	unsub auth.Unsubscribe

	// base context for bootstrap I/O spawned off provider callbacks
	ctx    context.Context
	cancel context.CancelFunc
}

func NewManager(provider auth.Provider, boot Bootstrapper, logger core.Logger) *Manager {
	return &Manager{
		provider: provider,
		boot:     boot,
		logger:   logger,
		snap:     Snapshot{Loading: true}, // loading until the initial session check completes
		subs:     make(map[chan Snapshot]struct{}),
	}
}

// Initialize subscribes to the provider's session-change stream, then checks
// for an already-active session (the stream only fires on future transitions,
// so a persisted session at startup must be fetched explicitly). Both paths
// funnel into the same observe handler.
func (m *Manager) Initialize(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(context.Background())

	m.unsub = m.provider.OnSessionChange(m.observe)

	sess, err := m.provider.CurrentSession(ctx)
	if err != nil {
		// treat as anonymous; the stream will correct us on the next event
		m.logger.Error("checking current session", err)
		m.observe(nil)
		return errors.Wrap(err, "checking current session")
	}
	m.observe(sess)
	return nil
}

// Close unsubscribes from the provider and cancels in-flight bootstraps.
func (m *Manager) Close() {
	if m.unsub != nil {
		m.unsub()
	}
	if m.cancel != nil {
		m.cancel()
	}
}

// observe applies the identity/session synchronously, then defers role
// resolution to its own goroutine: the provider forbids provider-originated
// calls from within its own event callback, and consumers must be able to see
// "signed in, role unknown yet" without delay.
func (m *Manager) observe(sess *auth.Session) {
	m.mu.Lock()
	m.epoch++
	epoch := m.epoch

	if sess == nil {
		m.snap = Snapshot{}
		m.notifyLocked()
		m.mu.Unlock()
		return
	}

	ident := sess.Identity
	sameIdentity := m.snap.Identity != nil && m.snap.Identity.ID == ident.ID
	m.snap.Session = sess
	m.snap.Identity = &ident
	if !sameIdentity {
		// a different principal: any previously resolved role is stale
		m.snap.Role = ""
	}
	m.snap.Loading = m.snap.Role == ""
	m.notifyLocked()
	m.mu.Unlock()

	go m.resolveRole(epoch, ident)
}

// resolveRole runs the bootstrap procedure and commits the result unless the
// observed identity has been superseded in the meantime. There is no explicit
// cancellation; staleness is decided by comparing epochs before committing.
func (m *Manager) resolveRole(epoch uint64, ident auth.Identity) {
	role, err := m.boot.Bootstrap(m.ctx, ident)

	m.mu.Lock()
	defer m.mu.Unlock()
	if epoch != m.epoch {
		// superseded by a newer session event; discard
		return
	}
	if err != nil {
		// bootstrap must not block an authenticated user; the guard keeps a
		// role-unknown snapshot on a pending screen
		m.logger.Error("bootstrapping "+ident.ID, err)
	} else {
		m.snap.Role = role
	}
	m.snap.Loading = false
	m.notifyLocked()
}

// SignIn delegates credential verification to the provider. On success the
// session-change subscription drives all snapshot updates; SignIn itself
// never touches the snapshot.
func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	email = core.CleanString(email, true /* lower */)
	return m.provider.SignInWithPassword(ctx, email, password)
}

// SignUp creates the account with the name/phone stashed as identity metadata
// for later bootstrap use, then signs in with the same credentials: the
// deployment treats all emails as pre-confirmed, so a usable session should
// exist without a separate confirmation step.
func (m *Manager) SignUp(ctx context.Context, email, password, fullName, phone string) error {
	email = core.CleanString(email, true /* lower */)
	meta := auth.Metadata{
		auth.MetaFullName: core.CleanString(fullName),
		auth.MetaPhone:    core.CleanString(phone),
	}
	if err := m.provider.SignUp(ctx, email, password, meta); err != nil {
		return err
	}
	return m.provider.SignInWithPassword(ctx, email, password)
}

// SignOut delegates to the provider and clears the role locally.
// Identity/session clearing is driven by the resulting session-change event
// to keep a single source of truth.
func (m *Manager) SignOut(ctx context.Context) error {
	err := m.provider.SignOut(ctx)
	m.mu.Lock()
	m.snap.Role = ""
	m.notifyLocked()
	m.mu.Unlock()
	return err
}

func (m *Manager) RequestPasswordReset(ctx context.Context, email, redirectTarget string) error {
	return m.provider.RequestPasswordReset(ctx, core.CleanString(email, true), redirectTarget)
}

func (m *Manager) UpdatePassword(ctx context.Context, newPassword string) error {
	return m.provider.UpdatePassword(ctx, newPassword)
}

// Snapshot returns a copy of the current snapshot.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

// Subscribe registers an observer notified on every snapshot change. The
// channel is buffered; a slow observer misses intermediate states, never the
// latest (poll Snapshot after draining). Call the returned func to detach.
func (m *Manager) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 16)
	m.mu.Lock()
	m.subs[ch] = struct{}{}
	m.mu.Unlock()

	return ch, func() {
		m.mu.Lock()
		delete(m.subs, ch)
		m.mu.Unlock()
	}
}

func (m *Manager) notifyLocked() {
	for ch := range m.subs {
		select {
		case ch <- m.snap:
		default:
		}
	}
}
