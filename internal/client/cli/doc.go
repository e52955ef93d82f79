// Package cli provides the interactive inventory command-line client.
//
// It wires configuration, the local session database, the gRPC gateway and
// the screen controllers behind a small REPL. Typical flow: check the saved
// session flag, ask for credentials when needed, start a background
// connectivity watcher and execute user commands.
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
package cli
