package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// readCredentials prompts for an email and a password. The caller wipes the
// returned password.
func (a *App) readCredentials() (string, []byte, error) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", nil, err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return email, password, nil
}

// Register creates an account; the new user is signed in right away.
func (a *App) Register(ctx context.Context) error {
	return a.authenticate(ctx, "register", a.login.Register)
}

// Login signs the user in and remembers it in the session database.
func (a *App) Login(ctx context.Context) error {
	return a.authenticate(ctx, "login", a.login.Login)
}

func (a *App) authenticate(ctx context.Context, op string, call func(ctx context.Context, email, password string) (models.User, error)) error {
	email, password, err := a.readCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := call(ctx, email, string(password))
	if err != nil {
		a.log.Info(ctx, op+" unsuccessful", "email", email, "error", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := a.session.SetLoggedIn(ctx, true); err != nil {
		a.log.Warn(ctx, "saving session flag failed", "error", err)
	}
	a.setUserName(user.Email)
	a.setMode(ModeOnline)
	a.resetProducts()

	fmt.Fprintf(a.out, "Signed in as %s\n", user.Email)
	return nil
}

// Logout drops the server session and the saved flag, empties the list and
// stops the shared product streams.
func (a *App) Logout(ctx context.Context) error {
	a.auth.Logout()
	a.setUserName("")
	a.home.LoadProducts()
	a.resetProducts()

	if err := a.session.ClearSession(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

// checkSession reports whether the saved flag claims a signed-in user the
// gateway does not have. The two are not reconciled; the user is told and
// asked to log in again.
func (a *App) checkSession(ctx context.Context) bool {
	flag, err := a.session.IsLoggedIn(ctx)
	if err != nil {
		a.log.Warn(ctx, "reading session flag failed", "error", err)
		return false
	}
	if flag && !a.login.IsUserLoggedIn() {
		fmt.Fprintln(a.out, "Saved session found, but the server session has expired. Please log in again.")
		return true
	}
	return false
}
