package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/userdesk/internal/client/client"
	"github.com/dmitrijs2005/userdesk/internal/client/models"
	"github.com/dmitrijs2005/userdesk/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/userdesk/internal/common"
	"github.com/dmitrijs2005/userdesk/internal/logging"
)

// ---- fakes ----

type fakeAuth struct {
	mu sync.Mutex

	Token string
	Err   error

	// block, when set, holds Login until a value is received.
	block chan struct{}

	LastEmail    string
	LastPassword []byte
	Calls        int
}

func (f *fakeAuth) Login(ctx context.Context, email string, password []byte) (string, error) {
	f.mu.Lock()
	f.LastEmail, f.LastPassword = email, append([]byte(nil), password...)
	f.Calls++
	block, token, err := f.block, f.Token, f.Err
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	return token, err
}

type failingRepo struct {
	metadata.Repository
	GetErr    error
	SetAllErr error
	RemoveErr error
}

func (r *failingRepo) Get(ctx context.Context, key string) (string, bool, error) {
	if r.GetErr != nil {
		return "", false, r.GetErr
	}
	return r.Repository.Get(ctx, key)
}

func (r *failingRepo) SetAll(ctx context.Context, v map[string]string) error {
	if r.SetAllErr != nil {
		return r.SetAllErr
	}
	return r.Repository.SetAll(ctx, v)
}

func (r *failingRepo) Remove(ctx context.Context, keys ...string) error {
	if r.RemoveErr != nil {
		return r.RemoveErr
	}
	return r.Repository.Remove(ctx, keys...)
}

// slowRepo holds SetAll until release is closed.
type slowRepo struct {
	metadata.Repository
	entered chan struct{}
	release chan struct{}
}

func newSlowRepo() *slowRepo {
	return &slowRepo{
		Repository: metadata.NewMemoryRepository(),
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
}

func (r *slowRepo) SetAll(ctx context.Context, v map[string]string) error {
	close(r.entered)
	<-r.release
	return r.Repository.SetAll(ctx, v)
}

type navRecorder struct {
	mu      sync.Mutex
	intents []models.Intent
}

func (n *navRecorder) Navigate(i models.Intent) {
	n.mu.Lock()
	n.intents = append(n.intents, i)
	n.mu.Unlock()
}

func (n *navRecorder) All() []models.Intent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.Intent(nil), n.intents...)
}

func newStore(t *testing.T, auth *fakeAuth, repo metadata.Repository) (*Store, *navRecorder) {
	t.Helper()
	nav := &navRecorder{}
	return NewStore(logging.NewNop(), auth, repo, nav), nav
}

// ---- tests ----

func TestInitialize_RehydratesStoredToken(t *testing.T) {
	ctx := context.Background()
	repo := metadata.NewMemoryRepository()
	require.NoError(t, repo.SetAll(ctx, map[string]string{
		common.TokenStorageKey: "QpwL5tke4Pnpja7X4",
		common.EmailStorageKey: "eve.holt@reqres.in",
	}))
	auth := &fakeAuth{}
	s, nav := newStore(t, auth, repo)

	assert.False(t, s.State().Initialized)
	s.Initialize(ctx)

	want := State{Status: StatusAuthenticated, Token: "QpwL5tke4Pnpja7X4", Email: "eve.holt@reqres.in", Initialized: true}
	if diff := cmp.Diff(want, s.State()); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 0, auth.Calls, "no network call on initialize")
	assert.Empty(t, nav.All())
}

func TestInitialize_EmptyStorageIsAnonymous(t *testing.T) {
	s, _ := newStore(t, &fakeAuth{}, metadata.NewMemoryRepository())
	s.Initialize(context.Background())

	assert.Equal(t, State{Status: StatusAnonymous, Initialized: true}, s.State())
}

func TestInitialize_StorageErrorIsAnonymous(t *testing.T) {
	repo := &failingRepo{Repository: metadata.NewMemoryRepository(), GetErr: errors.New("disk gone")}
	s, _ := newStore(t, &fakeAuth{}, repo)
	s.Initialize(context.Background())

	assert.Equal(t, State{Status: StatusAnonymous, Initialized: true}, s.State())
}

func TestLogin_SuccessPersistsAndNavigates(t *testing.T) {
	ctx := context.Background()
	repo := metadata.NewMemoryRepository()
	auth := &fakeAuth{Token: "QpwL5tke4Pnpja7X4"}
	s, nav := newStore(t, auth, repo)
	s.Initialize(ctx)

	var seen []Status
	s.Subscribe(func(st State) { seen = append(seen, st.Status) })

	require.NoError(t, s.Login(ctx, " eve.holt@reqres.in ", []byte("cityslicka")))

	assert.Equal(t, "eve.holt@reqres.in", auth.LastEmail)
	assert.Equal(t, []byte("cityslicka"), auth.LastPassword)
	assert.Equal(t, StatusAuthenticated, s.State().Status)
	assert.Equal(t, "QpwL5tke4Pnpja7X4", s.Token())
	assert.Equal(t, []Status{StatusAuthenticating, StatusAuthenticated}, seen)
	assert.Equal(t, []models.Intent{{Target: models.RouteList}}, nav.All())

	stored, ok, err := repo.Get(ctx, common.TokenStorageKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "QpwL5tke4Pnpja7X4", stored)

	// A fresh store over the same storage resumes the session.
	again, _ := newStore(t, &fakeAuth{}, repo)
	again.Initialize(ctx)
	assert.Equal(t, "QpwL5tke4Pnpja7X4", again.Token())
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name    string
		auth    *fakeAuth
		repoErr error
		wantErr error
		wantMsg string
	}{
		{
			name:    "service message",
			auth:    &fakeAuth{Err: &client.APIError{StatusCode: 400, Message: "Missing password"}},
			wantMsg: "Missing password",
		},
		{
			name:    "generic message",
			auth:    &fakeAuth{Err: client.ErrUnavailable},
			wantMsg: MsgLoginFailed,
		},
		{
			name:    "empty token",
			auth:    &fakeAuth{Token: ""},
			wantErr: ErrEmptyToken,
			wantMsg: MsgLoginFailed,
		},
		{
			name:    "persist failure",
			auth:    &fakeAuth{Token: "T"},
			repoErr: errors.New("readonly"),
			wantMsg: MsgSaveFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			mem := metadata.NewMemoryRepository()
			repo := &failingRepo{Repository: mem, SetAllErr: tt.repoErr}
			s, nav := newStore(t, tt.auth, repo)
			s.Initialize(ctx)

			err := s.Login(ctx, "peter@klaven", []byte("x"))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.False(t, client.IsUnauthorized(err), "a rejected login is not a revoked session")
			assert.False(t, s.HandleError(ctx, err))

			st := s.State()
			assert.Equal(t, StatusFailed, st.Status)
			assert.Equal(t, tt.wantMsg, st.LastError)
			assert.Empty(t, st.Token)
			assert.Empty(t, nav.All())

			all, err := mem.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, all, "nothing persisted")
		})
	}
}

func TestLogin_RetryClearsLastError(t *testing.T) {
	ctx := context.Background()
	auth := &fakeAuth{Err: &client.APIError{StatusCode: 400, Message: "user not found"}}
	s, _ := newStore(t, auth, metadata.NewMemoryRepository())
	s.Initialize(ctx)

	require.Error(t, s.Login(ctx, "a@b.c", nil))
	assert.Equal(t, "user not found", s.State().LastError)

	auth.Err, auth.Token = nil, "T"
	require.NoError(t, s.Login(ctx, "a@b.c", []byte("p")))
	assert.Empty(t, s.State().LastError)
}

func TestLogin_StaleResponseDoesNotOverwriteNewerAttempt(t *testing.T) {
	ctx := context.Background()
	slow := &fakeAuth{Token: "OLD", block: make(chan struct{})}
	repo := metadata.NewMemoryRepository()
	s, nav := newStore(t, slow, repo)
	s.Initialize(ctx)

	done := make(chan error)
	go func() { done <- s.Login(ctx, "first@x.io", []byte("p")) }()
	require.Eventually(t, func() bool {
		slow.mu.Lock()
		defer slow.mu.Unlock()
		return slow.Calls == 1
	}, time.Second, time.Millisecond)

	// The second attempt goes through another capability instance.
	s.auth = &fakeAuth{Token: "NEW"}
	require.NoError(t, s.Login(ctx, "second@x.io", []byte("p")))

	close(slow.block)
	require.NoError(t, <-done)

	assert.Equal(t, "NEW", s.Token())
	assert.Equal(t, "second@x.io", s.State().Email)
	assert.Equal(t, []models.Intent{{Target: models.RouteList}}, nav.All())

	stored, _, _ := repo.Get(ctx, common.TokenStorageKey)
	assert.Equal(t, "NEW", stored)
}

func TestLogout_DuringTokenWriteLeavesNothingStored(t *testing.T) {
	ctx := context.Background()
	repo := newSlowRepo()
	s, _ := newStore(t, &fakeAuth{Token: "T"}, repo)
	s.Initialize(ctx)

	loginDone := make(chan error)
	go func() { loginDone <- s.Login(ctx, "a@b.c", []byte("p")) }()
	<-repo.entered

	logoutDone := make(chan struct{})
	go func() {
		s.Logout(ctx)
		close(logoutDone)
	}()
	time.Sleep(10 * time.Millisecond)
	close(repo.release)

	require.NoError(t, <-loginDone)
	<-logoutDone

	assert.Equal(t, State{Status: StatusAnonymous, Initialized: true}, s.State())
	_, ok, err := repo.Get(ctx, common.TokenStorageKey)
	require.NoError(t, err)
	assert.False(t, ok, "logout must leave no stored token")

	again, _ := newStore(t, &fakeAuth{}, repo)
	again.Initialize(ctx)
	assert.Equal(t, StatusAnonymous, again.State().Status)
	assert.Empty(t, again.Token())
}

func TestLogin_SupersededDuringTokenWriteRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := newSlowRepo()
	s, nav := newStore(t, &fakeAuth{Token: "OLD"}, repo)
	s.Initialize(ctx)

	done := make(chan error)
	go func() { done <- s.Login(ctx, "first@x.io", []byte("p")) }()
	<-repo.entered

	s.auth = &fakeAuth{Err: &client.APIError{StatusCode: 400, Message: "user not found"}}
	require.Error(t, s.Login(ctx, "second@x.io", []byte("p")))

	close(repo.release)
	require.NoError(t, <-done)

	st := s.State()
	assert.Equal(t, StatusFailed, st.Status)
	assert.Equal(t, "user not found", st.LastError)
	assert.Empty(t, nav.All())

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestLogout_IdempotentAndAlwaysNavigates(t *testing.T) {
	ctx := context.Background()
	repo := metadata.NewMemoryRepository()
	s, nav := newStore(t, &fakeAuth{Token: "T"}, repo)
	s.Initialize(ctx)
	require.NoError(t, s.Login(ctx, "a@b.c", []byte("p")))

	s.Logout(ctx)
	s.Logout(ctx)

	assert.Equal(t, State{Status: StatusAnonymous, Initialized: true}, s.State())
	assert.Equal(t, []models.Intent{
		{Target: models.RouteList},
		{Target: models.RouteLogin},
		{Target: models.RouteLogin},
	}, nav.All())

	_, ok, err := repo.Get(ctx, common.TokenStorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLogout_StorageErrorStillClearsState(t *testing.T) {
	ctx := context.Background()
	mem := metadata.NewMemoryRepository()
	require.NoError(t, mem.Set(ctx, common.TokenStorageKey, "T"))
	repo := &failingRepo{Repository: mem, RemoveErr: errors.New("locked")}
	s, nav := newStore(t, &fakeAuth{}, repo)
	s.Initialize(ctx)

	s.Logout(ctx)

	assert.Equal(t, StatusAnonymous, s.State().Status)
	assert.Empty(t, s.Token())
	assert.Equal(t, []models.Intent{{Target: models.RouteLogin}}, nav.All())
}

func TestHandleError(t *testing.T) {
	ctx := context.Background()
	s, nav := newStore(t, &fakeAuth{Token: "T"}, metadata.NewMemoryRepository())
	s.Initialize(ctx)
	require.NoError(t, s.Login(ctx, "a@b.c", []byte("p")))

	assert.False(t, s.HandleError(ctx, nil))
	assert.False(t, s.HandleError(ctx, client.ErrUnavailable))
	assert.Equal(t, StatusAuthenticated, s.State().Status)

	wrapped := &client.APIError{StatusCode: 401, Err: client.ErrUnauthorized}
	assert.True(t, s.HandleError(ctx, wrapped))
	assert.Equal(t, StatusAnonymous, s.State().Status)
	assert.Equal(t, models.Intent{Target: models.RouteLogin}, nav.All()[len(nav.All())-1])
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "anonymous", StatusAnonymous.String())
	assert.Equal(t, "authenticating", StatusAuthenticating.String())
	assert.Equal(t, "authenticated", StatusAuthenticated.String())
	assert.Equal(t, "failed", StatusFailed.String())
	assert.Equal(t, "unknown", Status(42).String())
}
