package devserver

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestServer(t *testing.T) (*httptest.Server, *Tokens) {
	t.Helper()
	users, err := NewUserStore(DefaultPassword, bcrypt.MinCost)
	require.NoError(t, err)
	tokens := NewTokens([]byte("test-secret"), time.Hour)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	srv := httptest.NewServer(NewServer(log, users, tokens, 0).Router())
	t.Cleanup(srv.Close)
	return srv, tokens
}
