package services

import (
	"chat-shell/auth"
	"chat-shell/contract"
	"chat-shell/domain"
	"chat-shell/errors"
	"chat-shell/infrastructure/http/client"
	"chat-shell/repositories"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/lo"
)

type Option func(*SessionManager)

// WithClock replaces the time source used to check token expiry.
func WithClock(now func() time.Time) Option {
	return func(m *SessionManager) { m.now = now }
}

// SessionManager is the single writer of the Session.
//
// At most one of Hydrate, Login or Register runs at a time; a second one is
// rejected with ErrOperationInProgress instead of queuing. Every operation
// captures the generation counter when it starts and applies its result only
// if the counter has not moved, so a Logout always wins over a slower
// response that arrives after it.
type SessionManager struct {
	log      *slog.Logger
	gateway  client.IAuthGateway
	tokens   repositories.ITokenRepository
	messages contract.IMessageStore
	registry contract.IRegistry
	now      func() time.Time

	// mu guards session, generation and inFlight. It is never held across
	// a network call.
	mu         sync.Mutex
	session    domain.Session
	generation uint64
	// inFlight is the generation of the running auth operation, 0 if none.
	inFlight uint64

	// pending holds transitions not yet delivered; delivering is set while
	// one goroutine drains it. Both are guarded by mu.
	pending    []domain.Session
	delivering bool
	current    atomic.Pointer[domain.Session]
}

func NewSessionManager(log *slog.Logger, gateway client.IAuthGateway,
	tokens repositories.ITokenRepository, messages contract.IMessageStore,
	registry contract.IRegistry, opts ...Option) *SessionManager {
	m := &SessionManager{
		log:      log,
		gateway:  gateway,
		tokens:   tokens,
		messages: messages,
		registry: registry,
		now:      time.Now,
		session:  domain.Idle(),
	}
	for _, opt := range opts {
		opt(m)
	}
	idle := m.session
	m.current.Store(&idle)
	return m
}

// Snapshot returns the last published session. It never blocks, so it is
// safe to call from an observer.
func (m *SessionManager) Snapshot() domain.Session {
	return m.current.Load().Clone()
}

// Subscribe registers observer for every future transition and returns
// the function that removes it.
func (m *SessionManager) Subscribe(observer contract.SessionObserver) func() {
	id := m.registry.Subscribe(observer)
	return func() { m.registry.Unsubscribe(id) }
}

// Hydrate rebuilds the session from the stored token at startup.
//
// A missing or unreadable token ends Unauthenticated without error. A token
// that fails the identity check is cleared from the store and the cause is
// returned once the session has settled Unauthenticated.
//
// Hydrate restores a session, it never re-validates one: it is rejected
// with ErrAlreadyHydrated while the session is authenticated.
func (m *SessionManager) Hydrate(ctx context.Context) error {
	gen, err := m.begin("hydrate", domain.StatusIdle, domain.StatusUnauthenticated)
	if err != nil {
		return err
	}

	token, err := m.tokens.Get(ctx)
	if err != nil {
		m.log.Warn("Token store unreadable, starting unauthenticated", "error", err)
		token = nil
	}
	if token == nil {
		m.mu.Lock()
		if !m.isCurrentLocked(gen) {
			m.mu.Unlock()
			return errors.ErrSuperseded
		}
		m.endLocked(gen)
		m.commit(domain.Unauthenticated(""))
		return nil
	}

	if auth.IsExpired(*token, m.now()) {
		return m.fail(gen, errors.New(errors.KindAuth, "session expired"))
	}

	user, err := m.gateway.GetProfile(ctx, *token)
	if err != nil {
		return m.fail(gen, err)
	}

	m.mu.Lock()
	if !m.isCurrentLocked(gen) {
		m.mu.Unlock()
		m.log.Info("Discarding stale hydrate result")
		return errors.ErrSuperseded
	}
	m.endLocked(gen)
	m.commit(domain.Authenticated(*token, user))
	return nil
}

func (m *SessionManager) Login(ctx context.Context, email, password string) error {
	gen, err := m.begin("login")
	if err != nil {
		return err
	}
	return m.login(ctx, gen, auth.LoginRequest{Email: email, Password: password})
}

// Register creates the account then logs in with the same credentials.
// Both steps run under one generation, so either failure surfaces as a
// single error and no session is created.
func (m *SessionManager) Register(ctx context.Context, name, email, password string) error {
	gen, err := m.begin("register")
	if err != nil {
		return err
	}
	created, err := m.gateway.Register(ctx, auth.RegisterRequest{Name: name, Email: email, Password: password})
	if err != nil {
		return m.fail(gen, err)
	}
	m.log.Debug("Account created", "user_id", created.UserID)
	return m.login(ctx, gen, auth.LoginRequest{Email: email, Password: password})
}

func (m *SessionManager) login(ctx context.Context, gen uint64, req auth.LoginRequest) error {
	resp, err := m.gateway.Login(ctx, req)
	if err != nil {
		return m.fail(gen, err)
	}

	user := resp.User
	if user == nil {
		profile, err := m.gateway.GetProfile(ctx, resp.Token)
		if err != nil {
			return m.fail(gen, err)
		}
		user = &profile
	}

	m.mu.Lock()
	if !m.isCurrentLocked(gen) {
		m.mu.Unlock()
		m.log.Info("Discarding stale login response")
		return errors.ErrSuperseded
	}
	// Persisting under mu orders this write against Logout's clear.
	if err := m.tokens.Set(ctx, resp.Token); err != nil {
		return m.failLocked(gen, err)
	}
	m.endLocked(gen)
	m.commit(domain.Authenticated(resp.Token, *user))
	return nil
}

// Logout always succeeds. It supersedes any operation in flight.
func (m *SessionManager) Logout() {
	m.mu.Lock()
	m.generation++
	m.inFlight = 0
	if err := m.tokens.Clear(context.Background()); err != nil {
		m.log.Warn("Token clear failed on logout", "error", err)
	}
	m.commit(domain.Unauthenticated(""))
}

// UpdateProfile sends only the fields that differ from the current user.
// An empty delta returns the current user without any request. A failed
// update leaves the user untouched, except a rejected token which ends the
// session the same way Logout does.
func (m *SessionManager) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (domain.UserProfile, error) {
	m.mu.Lock()
	if !m.session.IsAuthenticated() {
		m.mu.Unlock()
		return domain.UserProfile{}, errors.ErrNotAuthenticated
	}
	current := *m.session.User
	token := m.session.Token
	gen := m.generation
	m.mu.Unlock()

	req := profileDelta(current, update)
	if req.IsEmpty() {
		return current, nil
	}

	user, err := m.gateway.UpdateProfile(ctx, token, req)

	m.mu.Lock()
	if !m.isCurrentLocked(gen) {
		m.mu.Unlock()
		if err != nil {
			return domain.UserProfile{}, fmt.Errorf("%w: %w", errors.ErrSuperseded, err)
		}
		return domain.UserProfile{}, errors.ErrSuperseded
	}
	if err != nil {
		if errors.IsUnauthorized(err) {
			m.log.Info("Token rejected, ending session", "error", err)
			m.invalidateLocked(errors.MessageOf(err))
			return domain.UserProfile{}, err
		}
		m.mu.Unlock()
		return domain.UserProfile{}, err
	}
	m.commit(domain.Authenticated(token, user))
	return user, nil
}

func profileDelta(current domain.UserProfile, update domain.ProfileUpdate) auth.ProfileUpdateRequest {
	var req auth.ProfileUpdateRequest
	if update.Name != nil && *update.Name != current.Name {
		req.Name = lo.ToPtr(*update.Name)
	}
	if update.Password != nil && *update.Password != "" {
		req.Password = lo.ToPtr(*update.Password)
	}
	return req
}

// begin claims the in-flight slot and publishes Loading. When from is
// given, the operation only starts from one of those statuses.
func (m *SessionManager) begin(operation string, from ...domain.Status) (uint64, error) {
	m.mu.Lock()
	if m.inFlight != 0 {
		m.mu.Unlock()
		m.log.Debug("Operation rejected, another one is running", "operation", operation)
		return 0, errors.ErrOperationInProgress
	}
	if len(from) > 0 && !lo.Contains(from, m.session.Status) {
		status := m.session.Status
		m.mu.Unlock()
		m.log.Debug("Operation rejected in current state", "operation", operation, "status", status)
		return 0, errors.ErrAlreadyHydrated
	}
	m.generation++
	gen := m.generation
	m.inFlight = gen
	m.log.Debug("Operation started", "operation", operation, "generation", gen)
	m.commit(domain.Loading())
	return gen, nil
}

func (m *SessionManager) isCurrentLocked(gen uint64) bool {
	return gen == m.generation
}

func (m *SessionManager) endLocked(gen uint64) {
	if m.inFlight == gen {
		m.inFlight = 0
	}
}

// fail settles a failed auth operation, or drops it if it went stale.
func (m *SessionManager) fail(gen uint64, cause error) error {
	m.mu.Lock()
	if !m.isCurrentLocked(gen) {
		m.mu.Unlock()
		m.log.Info("Discarding stale failure", "error", cause)
		return fmt.Errorf("%w: %w", errors.ErrSuperseded, cause)
	}
	return m.failLocked(gen, cause)
}

// failLocked publishes Error then settles Unauthenticated with the stored
// token cleared. Called with mu held; releases it.
func (m *SessionManager) failLocked(gen uint64, cause error) error {
	m.endLocked(gen)
	if err := m.tokens.Clear(context.Background()); err != nil {
		m.log.Warn("Token clear failed", "error", err)
	}
	message := errors.MessageOf(cause)
	m.log.Debug("Operation failed", "generation", gen, "kind", errors.KindOf(cause), "error", cause)
	m.commit(domain.Failed(message), domain.Unauthenticated(message))
	return cause
}

// invalidateLocked is the implicit logout on a rejected token.
// Called with mu held; releases it.
func (m *SessionManager) invalidateLocked(message string) {
	m.generation++
	m.inFlight = 0
	if err := m.tokens.Clear(context.Background()); err != nil {
		m.log.Warn("Token clear failed", "error", err)
	}
	m.commit(domain.Failed(message), domain.Unauthenticated(message))
}

// commit applies states in order, the last one becoming the session, and
// queues each of them for delivery. Called with mu held; releases it.
//
// Only one goroutine delivers at a time. A commit made while another
// delivery runs, including one made from an observer callback, is queued
// and delivered by that goroutine after the current callback returns.
func (m *SessionManager) commit(states ...domain.Session) {
	from := m.session.Status
	final := states[len(states)-1]
	m.session = final
	if !final.IsAuthenticated() && m.messages != nil {
		m.messages.Clear()
	}
	published := final.Clone()
	m.current.Store(&published)
	for _, state := range states {
		m.log.Debug("Session transition", "from", from, "to", state.Status)
		from = state.Status
		m.pending = append(m.pending, state.Clone())
	}

	if m.delivering {
		m.mu.Unlock()
		return
	}
	m.delivering = true
	m.mu.Unlock()
	m.deliver()
}

// deliver drains the pending queue outside every lock.
func (m *SessionManager) deliver() {
	drained := false
	defer func() {
		if !drained {
			// An observer panicked; let the next commit deliver again.
			m.mu.Lock()
			m.pending = nil
			m.delivering = false
			m.mu.Unlock()
		}
	}()

	for {
		m.mu.Lock()
		batch := m.pending
		m.pending = nil
		if len(batch) == 0 {
			m.delivering = false
			m.mu.Unlock()
			drained = true
			return
		}
		m.mu.Unlock()

		observers := m.registry.Observers()
		for _, state := range batch {
			for _, observer := range observers {
				observer.OnSession(state.Clone())
			}
		}
	}
}
