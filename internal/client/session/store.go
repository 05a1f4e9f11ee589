// Package session owns the authentication state of the client: whether a
// user is signed in, the token used for outbound calls, and the last login
// failure. The token is persisted so a restart resumes the session.
package session

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/userdesk/internal/client/client"
	"github.com/dmitrijs2005/userdesk/internal/client/models"
	"github.com/dmitrijs2005/userdesk/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/userdesk/internal/common"
	"github.com/dmitrijs2005/userdesk/internal/logging"
)

const (
	MsgLoginFailed = "Failed to login"
	MsgSaveFailed  = "Failed to save session"
)

// ErrEmptyToken rejects a login the service accepted without issuing a token.
var ErrEmptyToken = errors.New("login response carries no token")

type Status int

const (
	StatusAnonymous Status = iota
	StatusAuthenticating
	StatusAuthenticated
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusAnonymous:
		return "anonymous"
	case StatusAuthenticating:
		return "authenticating"
	case StatusAuthenticated:
		return "authenticated"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is a snapshot of the session. Token is non-empty only while
// Status is StatusAuthenticated.
type State struct {
	Status      Status
	Token       string
	Email       string
	LastError   string
	Initialized bool
}

// Store is the single session of the process. Dependents receive it
// explicitly; there is no package-level instance.
type Store struct {
	log  logging.Logger
	auth client.AuthCapability
	repo metadata.Repository
	nav  models.Navigator

	// persist orders writes and removals of the stored token. It is taken
	// before mu and never held across a service call.
	persist sync.Mutex

	mu        sync.Mutex
	state     State
	attempt   uint64
	listeners []func(State)
}

func NewStore(log logging.Logger, auth client.AuthCapability, repo metadata.Repository, nav models.Navigator) *Store {
	if nav == nil {
		nav = models.NavigatorFunc(func(models.Intent) {})
	}
	return &Store{log: log.With("component", "session"), auth: auth, repo: repo, nav: nav}
}

// Subscribe registers fn to receive every state change. Listeners run on the
// goroutine that caused the change, after the store's lock is released.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Token returns the current bearer token or "". It has the shape of a
// transport token source.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Token
}

// Initialize restores a persisted session. It never calls the service; a
// stored token is trusted until a request is rejected.
func (s *Store) Initialize(ctx context.Context) {
	token, ok, err := s.repo.Get(ctx, common.TokenStorageKey)
	if err != nil {
		s.log.Error(ctx, "read stored token", "error", err)
		ok = false
	}

	next := State{Status: StatusAnonymous, Initialized: true}
	if ok && token != "" {
		email, _, err := s.repo.Get(ctx, common.EmailStorageKey)
		if err != nil {
			s.log.Warn(ctx, "read stored email", "error", err)
		}
		next = State{Status: StatusAuthenticated, Token: token, Email: email, Initialized: true}
	}

	s.log.Info(ctx, "session initialized", "status", next.Status)
	s.set(func(st *State) { *st = next })
}

// Login exchanges credentials for a token. On success the token is
// persisted and a navigation to the list view is emitted. Only the most
// recent attempt may settle the state.
func (s *Store) Login(ctx context.Context, email string, password []byte) error {
	email = strings.TrimSpace(email)

	s.mu.Lock()
	s.attempt++
	attempt := s.attempt
	s.mu.Unlock()

	s.set(func(st *State) {
		st.Status = StatusAuthenticating
		st.LastError = ""
	})

	token, err := s.auth.Login(ctx, email, password)
	if err == nil && token == "" {
		err = ErrEmptyToken
	}
	if err != nil {
		msg := client.MessageOf(err)
		if msg == "" {
			msg = MsgLoginFailed
		}
		s.log.Warn(ctx, "login failed", "email", email, "error", err)
		s.settle(attempt, State{Status: StatusFailed, LastError: msg, Initialized: true})
		return err
	}

	s.persist.Lock()
	if !s.latest(attempt) {
		s.persist.Unlock()
		s.log.Debug(ctx, "dropping superseded login", "email", email)
		return nil
	}

	if err := s.repo.SetAll(ctx, map[string]string{
		common.TokenStorageKey: token,
		common.EmailStorageKey: email,
	}); err != nil {
		s.persist.Unlock()
		s.log.Error(ctx, "persist token", "error", err)
		s.settle(attempt, State{Status: StatusFailed, LastError: MsgSaveFailed, Initialized: true})
		return err
	}

	st, ls, ok := s.apply(attempt, State{Status: StatusAuthenticated, Token: token, Email: email, Initialized: true})
	if !ok {
		// Superseded while writing: whoever superseded us has not persisted yet.
		if err := s.repo.Remove(ctx, common.TokenStorageKey, common.EmailStorageKey); err != nil {
			s.log.Error(ctx, "remove superseded token", "error", err)
		}
	}
	s.persist.Unlock()

	if !ok {
		s.log.Debug(ctx, "dropping superseded login", "email", email)
		return nil
	}
	notify(ls, st)
	s.log.Info(ctx, "logged in", "email", email)
	s.nav.Navigate(models.Intent{Target: models.RouteList})
	return nil
}

// Logout drops the token locally and in storage and emits a navigation to
// the login view. It is safe to call repeatedly and always emits.
func (s *Store) Logout(ctx context.Context) {
	s.persist.Lock()
	s.mu.Lock()
	// Supersede any login still in flight.
	s.attempt++
	s.state = State{Status: StatusAnonymous, Initialized: true}
	st, ls := s.state, slices.Clone(s.listeners)
	s.mu.Unlock()

	if err := s.repo.Remove(ctx, common.TokenStorageKey, common.EmailStorageKey); err != nil {
		s.log.Error(ctx, "remove stored token", "error", err)
	}
	s.persist.Unlock()

	notify(ls, st)
	s.log.Info(ctx, "logged out")
	s.nav.Navigate(models.Intent{Target: models.RouteLogin})
}

// HandleError logs out when err is classified unauthorized and reports
// whether it did. Callers skip their own error reporting when it returns true.
func (s *Store) HandleError(ctx context.Context, err error) bool {
	if err == nil || !client.IsUnauthorized(err) {
		return false
	}
	s.log.Warn(ctx, "request rejected, ending session", "error", err)
	s.Logout(ctx)
	return true
}

func (s *Store) latest(attempt uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return attempt == s.attempt
}

// settle applies next if attempt is still the latest login attempt.
func (s *Store) settle(attempt uint64, next State) bool {
	st, ls, ok := s.apply(attempt, next)
	if ok {
		notify(ls, st)
	}
	return ok
}

// apply is settle without notifying; the caller notifies the returned
// listeners once its own locks are released.
func (s *Store) apply(attempt uint64, next State) (State, []func(State), bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if attempt != s.attempt {
		return State{}, nil, false
	}
	s.state = next
	return s.state, slices.Clone(s.listeners), true
}

func (s *Store) set(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	st, ls := s.state, slices.Clone(s.listeners)
	s.mu.Unlock()

	notify(ls, st)
}

func notify(ls []func(State), st State) {
	for _, fn := range ls {
		fn(st)
	}
}
