package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/userdesk/internal/client/client"
	"github.com/dmitrijs2005/userdesk/internal/client/config"
	"github.com/dmitrijs2005/userdesk/internal/client/gate"
	"github.com/dmitrijs2005/userdesk/internal/client/models"
	"github.com/dmitrijs2005/userdesk/internal/client/notify"
	"github.com/dmitrijs2005/userdesk/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/userdesk/internal/client/session"
	"github.com/dmitrijs2005/userdesk/internal/client/useredit"
	"github.com/dmitrijs2005/userdesk/internal/client/userlist"
	"github.com/dmitrijs2005/userdesk/internal/logging"
)

type App struct {
	config  *config.Config
	log     logging.Logger
	api     client.Client
	session *session.Store
	users   *userlist.Cache
	edit    *useredit.Session
	reader  *bufio.Reader
	out     io.Writer

	mu      sync.Mutex
	view    models.Route
	pending *time.Timer
	leaving bool
}

// NewApp builds the client against the configured service, persisting the
// session in db.
func NewApp(c *config.Config, log logging.Logger, db *sql.DB) (*App, error) {
	a := &App{}

	api, err := client.NewHTTPClient(c.BaseURL,
		client.WithAPIKey(c.APIKey),
		client.WithTimeout(c.RequestTimeout),
		client.WithTokenSource(func() string { return a.session.Token() }),
	)
	if err != nil {
		return nil, err
	}

	a.wire(c, log, api, metadata.NewSQLiteRepository(db))
	return a, nil
}

func (a *App) wire(c *config.Config, log logging.Logger, api client.Client, repo metadata.Repository) {
	a.config = c
	a.log = log
	a.api = api
	a.reader = bufio.NewReader(os.Stdin)
	a.out = os.Stdout
	a.view = models.RouteLogin

	a.session = session.NewStore(log, api, repo, a)
	a.session.Subscribe(a.onSessionChange)

	listNotes := notify.New(c.NotificationDuration)
	listNotes.OnChange(a.printNotification)
	a.users = userlist.New(log, api, a.session, listNotes)

	editNotes := notify.New(c.NotificationDuration)
	editNotes.OnChange(a.printNotification)
	a.edit = useredit.New(log, api, a.session, editNotes, a, c.RedirectDelay)
}

// Run restores the stored session and serves the REPL until the user exits
// or stdin closes.
func (a *App) Run(ctx context.Context) {
	a.session.Initialize(ctx)

	printlnFn("Welcome to userdesk (type 'help' for commands)")
	if a.decision() == gate.Allow {
		a.setView(models.RouteList)
		_ = a.List(ctx, 1)
	} else {
		printlnFn("Please log in.")
	}

	runREPL(ctx, a, a.status, a.reader)
	a.stopPending()
}

// Navigate switches the current view. Delayed intents replace any intent
// still waiting.
func (a *App) Navigate(i models.Intent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pending != nil {
		a.pending.Stop()
		a.pending = nil
	}
	if i.Delay <= 0 {
		a.view = i.Target
		return
	}
	a.pending = time.AfterFunc(i.Delay, func() { a.arrive(i.Target) })
}

// arrive completes a delayed navigation. Arriving at the list refetches the
// current page so an edit made meanwhile shows up.
func (a *App) arrive(r models.Route) {
	a.setView(r)
	if r != models.RouteList || a.decision() != gate.Allow {
		return
	}
	ctx := context.Background()
	if err := a.List(ctx, 0); err != nil {
		a.log.Warn(ctx, "refresh after navigation", "error", err)
	}
}

func (a *App) stopPending() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pending != nil {
		a.pending.Stop()
		a.pending = nil
	}
}

func (a *App) setView(r models.Route) {
	a.mu.Lock()
	a.view = r
	a.mu.Unlock()
}

func (a *App) currentView() models.Route {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.view
}

func (a *App) decision() gate.Decision {
	return gate.Decide(a.session.State())
}

func (a *App) status() string {
	st := a.session.State()
	if st.Email == "" {
		return string(a.currentView())
	}
	return fmt.Sprintf("%s %s", st.Email, a.currentView())
}

func (a *App) printNotification(n models.Notification) {
	if !n.Visible {
		return
	}
	printlnFn(fmt.Sprintf("[%s] %s", n.Severity, n.Message))
}

// onSessionChange reports a session that ended without the user asking.
func (a *App) onSessionChange(st session.State) {
	a.mu.Lock()
	forced := st.Status == session.StatusAnonymous && a.view != models.RouteLogin && !a.leaving
	a.mu.Unlock()

	if forced {
		printlnFn("Session ended, please log in again.")
	}
}
