package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/userdesk/internal/client/config"
	"github.com/dmitrijs2005/userdesk/internal/client/models"
	"github.com/dmitrijs2005/userdesk/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/userdesk/internal/common"
	"github.com/dmitrijs2005/userdesk/internal/logging"
)

// ---- fake API ----

type fakeAPI struct {
	mu sync.Mutex

	Token    string
	LoginErr error

	Pages   map[int]*models.UserPage
	ListErr error

	UpdateErr  error
	LastID     models.ID
	LastUpdate models.UserUpdate
	Updates    int

	DeleteErr  error
	LastDelete models.ID

	LogoutErr   error
	LogoutCalls int

	LastEmail string
}

func (f *fakeAPI) Login(_ context.Context, email string, _ []byte) (string, error) {
	f.LastEmail = email
	return f.Token, f.LoginErr
}

func (f *fakeAPI) Logout(context.Context) error {
	f.LogoutCalls++
	return f.LogoutErr
}

func (f *fakeAPI) ListUsers(_ context.Context, page int) (*models.UserPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	if p, ok := f.Pages[page]; ok {
		cp := *p
		cp.Data = slices.Clone(p.Data)
		return &cp, nil
	}
	return &models.UserPage{Page: page, TotalPages: len(f.Pages)}, nil
}

// UpdateUser records the call and, when it succeeds, applies the update to
// the served pages.
func (f *fakeAPI) UpdateUser(_ context.Context, id models.ID, u models.UserUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Updates++
	f.LastID, f.LastUpdate = id, u
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	for _, p := range f.Pages {
		data := slices.Clone(p.Data)
		for i := range data {
			if data[i].ID == id {
				data[i].FirstName, data[i].LastName, data[i].Email = u.FirstName, u.LastName, u.Email
			}
		}
		p.Data = data
	}
	return nil
}

func (f *fakeAPI) DeleteUser(_ context.Context, id models.ID) error {
	f.LastDelete = id
	return f.DeleteErr
}

var (
	george = models.User{ID: "1", Email: "george.bluth@reqres.in", FirstName: "George", LastName: "Bluth"}
	janet  = models.User{ID: "2", Email: "janet.weaver@reqres.in", FirstName: "Janet", LastName: "Weaver"}
	mike   = models.User{ID: "7", Email: "michael.lawson@reqres.in", FirstName: "Michael", LastName: "Lawson"}
)

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		Token: "QpwL5tke4Pnpja7X4",
		Pages: map[int]*models.UserPage{
			1: {Page: 1, PerPage: 2, Total: 3, TotalPages: 2, Data: []models.User{george, janet}},
			2: {Page: 2, PerPage: 2, Total: 3, TotalPages: 2, Data: []models.User{mike}},
		},
	}
}

// ---- app + output capture ----

type output struct {
	mu    sync.Mutex
	lines []string
}

func (o *output) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return strings.Join(o.lines, "\n")
}

func capturePrint(t *testing.T) *output {
	t.Helper()
	out := &output{}
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		out.mu.Lock()
		out.lines = append(out.lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		out.mu.Unlock()
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return out
}

// stubInputs answers getSimpleText prompts from answers in order and
// getPassword with password.
func stubInputs(t *testing.T, password []byte, answers ...string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	i := 0
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if i >= len(answers) {
			return "", io.EOF
		}
		i++
		return answers[i-1], nil
	}
	getPassword = func(_ io.Writer) ([]byte, error) { return append([]byte(nil), password...), nil }
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

func newTestApp(t *testing.T, api *fakeAPI, opts ...func(*config.Config)) *App {
	t.Helper()
	return newTestAppWithRepo(t, api, metadata.NewMemoryRepository(), opts...)
}

func newTestAppWithRepo(t *testing.T, api *fakeAPI, repo metadata.Repository, opts ...func(*config.Config)) *App {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	for _, o := range opts {
		o(cfg)
	}

	a := &App{}
	a.wire(cfg, logging.NewNop(), api, repo)
	a.out = io.Discard
	a.session.Initialize(context.Background())
	t.Cleanup(a.stopPending)
	return a
}

func loggedInApp(t *testing.T, api *fakeAPI, opts ...func(*config.Config)) *App {
	t.Helper()
	return loggedInAppWithRepo(t, api, metadata.NewMemoryRepository(), opts...)
}

func loggedInAppWithRepo(t *testing.T, api *fakeAPI, repo metadata.Repository, opts ...func(*config.Config)) *App {
	t.Helper()
	a := newTestAppWithRepo(t, api, repo, opts...)
	if err := a.session.Login(context.Background(), "eve.holt@reqres.in", []byte("cityslicka")); err != nil {
		t.Fatalf("login: %v", err)
	}
	return a
}

// requireNoStoredToken fails when repo still holds a session token.
func requireNoStoredToken(t *testing.T, repo metadata.Repository) {
	t.Helper()
	token, ok, err := repo.Get(context.Background(), common.TokenStorageKey)
	if err != nil {
		t.Fatalf("read token: %v", err)
	}
	if ok {
		t.Fatalf("token %q still stored", token)
	}
}
