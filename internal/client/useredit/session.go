// Package useredit drives the edit form of a single user: the draft, its
// field errors and the submit lifecycle.
package useredit

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/dmitrijs2005/userdesk/internal/client/client"
	"github.com/dmitrijs2005/userdesk/internal/client/models"
	"github.com/dmitrijs2005/userdesk/internal/client/notify"
	"github.com/dmitrijs2005/userdesk/internal/logging"
)

const (
	MsgUpdated      = "User updated successfully!"
	MsgUpdateFailed = "Failed to update user"
	MsgFetchFailed  = "Failed to fetch user data"

	// DefaultRedirectDelay leaves the success message readable before the
	// list view comes back.
	DefaultRedirectDelay = 2 * time.Second
)

var (
	ErrUnknownField = errors.New("unknown field")
	ErrBusy         = errors.New("submit already in progress")
)

type Phase int

const (
	Pristine Phase = iota
	Loading
	Editing
	Validating
	Submitting
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Pristine:
		return "pristine"
	case Loading:
		return "loading"
	case Editing:
		return "editing"
	case Validating:
		return "validating"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// SessionGuard ends the session on unauthorized errors and reports whether
// it did. Implemented by *session.Store.
type SessionGuard interface {
	HandleError(ctx context.Context, err error) bool
}

// State is a snapshot of the edit session.
type State struct {
	ID          models.ID
	Draft       models.User
	FieldErrors map[string]string
	Phase       Phase
}

// Loading reports whether a fetch or submit is outstanding.
func (s State) Loading() bool { return s.Phase == Loading || s.Phase == Submitting }

type Session struct {
	log           logging.Logger
	users         client.UserCapability
	session       SessionGuard
	notes         *notify.Timer
	nav           models.Navigator
	redirectDelay time.Duration

	mu    sync.Mutex
	state State
}

func New(log logging.Logger, users client.UserCapability, session SessionGuard, notes *notify.Timer, nav models.Navigator, redirectDelay time.Duration) *Session {
	if redirectDelay <= 0 {
		redirectDelay = DefaultRedirectDelay
	}
	if nav == nil {
		nav = models.NavigatorFunc(func(models.Intent) {})
	}
	return &Session{
		log:           log.With("component", "useredit"),
		users:         users,
		session:       session,
		notes:         notes,
		nav:           nav,
		redirectDelay: redirectDelay,
	}
}

// Notifications is the session's own notification surface.
func (s *Session) Notifications() *notify.Timer { return s.notes }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.FieldErrors = maps.Clone(s.state.FieldErrors)
	return st
}

// Initialize starts editing id. A seed copies the caller's record without a
// request. Without a seed the record is fetched when the service can do
// that; otherwise the draft stays empty and submit still targets id.
func (s *Session) Initialize(ctx context.Context, id models.ID, seed *models.User) error {
	if seed != nil {
		draft := *seed
		draft.ID = id
		s.mu.Lock()
		s.state = State{ID: id, Draft: draft, Phase: Pristine}
		s.mu.Unlock()
		return nil
	}

	s.mu.Lock()
	s.state = State{ID: id, Draft: models.User{ID: id}, Phase: Loading}
	s.mu.Unlock()

	draft, err := s.fetch(ctx, id)

	s.mu.Lock()
	if s.state.ID == id && s.state.Phase == Loading {
		s.state.Phase = Pristine
		if draft != nil {
			s.state.Draft = *draft
			s.state.Draft.ID = id
		}
	}
	s.mu.Unlock()
	return err
}

func (s *Session) fetch(ctx context.Context, id models.ID) (*models.User, error) {
	f, ok := s.users.(client.UserFetcher)
	if !ok {
		s.log.Debug(ctx, "service cannot fetch single users, starting empty", "id", id)
		return nil, nil
	}

	u, err := f.GetUser(ctx, id)
	switch {
	case err == nil:
		return u, nil
	case errors.Is(err, client.ErrNotSupported), errors.Is(err, client.ErrNotFound):
		s.log.Debug(ctx, "user not available, starting empty", "id", id, "error", err)
		return nil, nil
	case s.session.HandleError(ctx, err):
		return nil, err
	default:
		s.log.Warn(ctx, "fetch user failed", "id", id, "error", err)
		s.notes.Show(MsgFetchFailed, models.SeverityError)
		return nil, err
	}
}

// SetField updates one draft field by its wire name.
func (s *Session) SetField(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch name {
	case FieldFirstName:
		s.state.Draft.FirstName = value
	case FieldLastName:
		s.state.Draft.LastName = value
	case FieldEmail:
		s.state.Draft.Email = value
	case FieldAvatar:
		s.state.Draft.Avatar = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}

	switch s.state.Phase {
	case Pristine, Editing, Failed, Succeeded:
		s.state.Phase = Editing
	}
	return nil
}

// Validate recomputes the field errors of the draft and reports whether it
// may be submitted.
func (s *Session) Validate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validateLocked()
}

func (s *Session) validateLocked() bool {
	s.state.FieldErrors = Validate(s.state.Draft)
	return len(s.state.FieldErrors) == 0
}

// Submit validates the draft and sends it. An invalid draft yields a
// *ValidationError and no request. On success a delayed navigation back to
// the list is emitted.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.state.Phase == Submitting {
		s.mu.Unlock()
		return ErrBusy
	}
	prev := s.state.Phase
	s.state.Phase = Validating
	if !s.validateLocked() {
		s.state.Phase = prev
		if prev == Pristine {
			s.state.Phase = Editing
		}
		verr := &ValidationError{Fields: maps.Clone(s.state.FieldErrors)}
		s.mu.Unlock()
		return verr
	}
	s.state.Phase = Submitting
	id, draft := s.state.ID, s.state.Draft
	s.mu.Unlock()

	err := s.users.UpdateUser(ctx, id, models.UserUpdate{
		FirstName: draft.FirstName,
		LastName:  draft.LastName,
		Email:     draft.Email,
		Avatar:    draft.Avatar,
	})
	if err != nil {
		s.setPhase(Failed)
		s.log.Warn(ctx, "update user failed", "id", id, "error", err)
		if !s.session.HandleError(ctx, err) {
			s.notes.Show(MsgUpdateFailed, models.SeverityError)
		}
		return err
	}

	s.setPhase(Succeeded)
	s.log.Info(ctx, "user updated", "id", id)
	s.notes.Show(MsgUpdated, models.SeveritySuccess)
	s.nav.Navigate(models.Intent{Target: models.RouteList, Delay: s.redirectDelay})
	return nil
}

// Cancel discards the draft and returns to the list, whatever the phase.
func (s *Session) Cancel() {
	s.mu.Lock()
	s.state = State{}
	s.mu.Unlock()

	s.nav.Navigate(models.Intent{Target: models.RouteList})
}

func (s *Session) setPhase(p Phase) {
	s.mu.Lock()
	s.state.Phase = p
	s.mu.Unlock()
}
