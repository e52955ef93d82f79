package cli

import (
	"context"
	"fmt"
)

// Root greets the user, resolves the saved session, starts the
// connectivity watcher and runs the REPL until exit.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to the inventory CLI (type 'help' for commands)")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.checkOnline(ctx)

	if a.checkSession(ctx) {
		report(a.Login(ctx))
	} else if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not signed in: use 'login' or 'register'")
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}
