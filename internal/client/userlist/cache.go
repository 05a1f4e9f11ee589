// Package userlist keeps the current page of users fetched from the service,
// a local text filter over it, and the load/delete lifecycle around them.
package userlist

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/userdesk/internal/client/client"
	"github.com/dmitrijs2005/userdesk/internal/client/models"
	"github.com/dmitrijs2005/userdesk/internal/client/notify"
	"github.com/dmitrijs2005/userdesk/internal/logging"
)

const (
	MsgFetchFailed  = "Failed to fetch users"
	MsgDeleted      = "User deleted successfully"
	MsgDeleteFailed = "Failed to delete user"
)

var ErrInvalidPage = errors.New("page must be >= 1")

// SessionGuard ends the session on unauthorized errors and reports whether
// it did. Implemented by *session.Store.
type SessionGuard interface {
	HandleError(ctx context.Context, err error) bool
}

// State is a snapshot of the cache.
type State struct {
	Items      []models.User
	Page       int
	TotalPages int
	Filter     string
	Loading    bool
	Err        string
}

type Cache struct {
	log     logging.Logger
	users   client.UserCapability
	session SessionGuard
	notes   *notify.Timer

	mu    sync.Mutex
	state State
	seq   uint64
}

func New(log logging.Logger, users client.UserCapability, session SessionGuard, notes *notify.Timer) *Cache {
	return &Cache{
		log:     log.With("component", "userlist"),
		users:   users,
		session: session,
		notes:   notes,
		state:   State{Page: 1},
	}
}

// Notifications is the cache's own notification surface.
func (c *Cache) Notifications() *notify.Timer { return c.notes }

func (c *Cache) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.state
	st.Items = append([]models.User(nil), c.state.Items...)
	return st
}

// Load fetches page and replaces the cached items with it. When several
// loads overlap only the most recently issued one is applied.
func (c *Cache) Load(ctx context.Context, page int) error {
	if page < 1 {
		return ErrInvalidPage
	}

	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.state.Loading = true
	c.mu.Unlock()

	res, err := c.users.ListUsers(ctx, page)

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		c.log.Debug(ctx, "dropping stale page", "page", page, "seq", seq)
		return nil
	}
	c.state.Loading = false
	if err != nil {
		c.state.Err = MsgFetchFailed
		c.mu.Unlock()

		c.log.Warn(ctx, "list users failed", "page", page, "error", err)
		if !c.session.HandleError(ctx, err) {
			c.notes.Show(MsgFetchFailed, models.SeverityError)
		}
		return err
	}
	c.state.Items = append([]models.User(nil), res.Data...)
	c.state.Page = page
	c.state.TotalPages = res.TotalPages
	c.state.Err = ""
	n := len(c.state.Items)
	c.mu.Unlock()

	c.log.Debug(ctx, "page loaded", "page", page, "items", n, "total_pages", res.TotalPages)
	return nil
}

// ChangePage is Load under the name list views use for pagination.
func (c *Cache) ChangePage(ctx context.Context, page int) error {
	return c.Load(ctx, page)
}

// SetFilter changes the local filter. No request is made.
func (c *Cache) SetFilter(text string) {
	c.mu.Lock()
	c.state.Filter = text
	c.mu.Unlock()
}

// Visible returns the cached items matching the filter, in cache order.
func (c *Cache) Visible() []models.User {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.User, 0, len(c.state.Items))
	for _, u := range c.state.Items {
		if u.Matches(c.state.Filter) {
			out = append(out, u)
		}
	}
	return out
}

// Find returns a copy of the cached user with id.
func (c *Cache) Find(id models.ID) (models.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, u := range c.state.Items {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

// Remove deletes id remotely and, once the service confirms, drops it from
// the cache. Page counters are left alone; the page is not refetched.
func (c *Cache) Remove(ctx context.Context, id models.ID) error {
	if err := c.users.DeleteUser(ctx, id); err != nil {
		c.log.Warn(ctx, "delete user failed", "id", id, "error", err)
		if !c.session.HandleError(ctx, err) {
			c.notes.Show(MsgDeleteFailed, models.SeverityError)
		}
		return err
	}

	c.mu.Lock()
	for i, u := range c.state.Items {
		if u.ID == id {
			c.state.Items = append(c.state.Items[:i:i], c.state.Items[i+1:]...)
			break
		}
	}
	c.mu.Unlock()

	c.log.Info(ctx, "user deleted", "id", id)
	c.notes.Show(MsgDeleted, models.SeveritySuccess)
	return nil
}
