package cli

import (
	"context"

	"github.com/dmitrijs2005/userdesk/internal/client/gate"
	"github.com/dmitrijs2005/userdesk/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and signs in. On success the first page of
// users is shown. The password is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.Login(ctx, email, password); err != nil {
		printlnFn("Login failed:", a.session.State().LastError)
		return err
	}
	if a.decision() != gate.Allow {
		return nil
	}

	printlnFn("Logged in as", a.session.State().Email)
	return a.List(ctx, 1)
}

// Logout tells the service to drop the token, then ends the local session.
// The remote call is best effort; the local session always ends.
func (a *App) Logout(ctx context.Context) error {
	if err := a.api.Logout(ctx); err != nil {
		a.log.Warn(ctx, "remote logout failed", "error", err)
	}

	a.mu.Lock()
	a.leaving = true
	a.mu.Unlock()

	a.session.Logout(ctx)

	a.mu.Lock()
	a.leaving = false
	a.mu.Unlock()

	printlnFn("Logged out.")
	return nil
}
