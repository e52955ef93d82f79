package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context) error
	Watch(ctx context.Context) error
	Total(ctx context.Context) error
	Show(ctx context.Context, id string) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Remove(ctx context.Context) error
	Find(ctx context.Context, id string) error
	Export(ctx context.Context, name string) error
}

// runREPL reads commands line by line from r and dispatches them to a.
//
//	Not logged in:
//	  help, register, login, list, exit | quit
//
//	Logged in:
//	  help
//	  list             print the product list
//	  watch            print every list update until Enter
//	  total            print the total inventory value
//	  show <id>        show one product; it becomes the "remove" target
//	  remove           delete the product last shown
//	  find <id>        look a product up in the shared list
//	  add              add a product
//	  edit <id>        edit a product
//	  delete <id>      delete a product
//	  export [file]    print a snapshot URL, optionally saving the file
//	  logout
//	  exit | quit
//
// Command errors are printed and the loop goes on. It returns on EOF or
// exit/quit.
func runREPL(ctx context.Context, a execIface, statusFn func() string, r *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("inv %s> ", statusFn()))

		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist, watch, total, show <id>, remove, find <id>, add, edit <id>, delete <id>, export [file], logout, exit")
			} else {
				printlnFn("Available commands: register, login, list, exit")
			}

		case "register":
			report(a.Register(ctx))

		case "login":
			report(a.Login(ctx))

		case "logout":
			report(a.Logout(ctx))

		case "l", "list":
			report(a.List(ctx))

		case "watch":
			report(a.Watch(ctx))

		case "total":
			report(a.Total(ctx))

		case "add":
			report(a.Add(ctx))

		case "remove":
			report(a.Remove(ctx))

		case "export":
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			report(a.Export(ctx, name))

		case "show", "find", "edit", "delete":
			if len(args) == 0 {
				printlnFn(fmt.Sprintf("Usage: %s <id>", cmd))
				continue
			}
			report(withID(ctx, a, cmd, args[0]))

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func withID(ctx context.Context, a execIface, cmd, id string) error {
	switch cmd {
	case "show":
		return a.Show(ctx, id)
	case "find":
		return a.Find(ctx, id)
	case "edit":
		return a.Edit(ctx, id)
	default:
		return a.Delete(ctx, id)
	}
}

func report(err error) {
	if err != nil {
		printlnFn("Error:", err)
	}
}
