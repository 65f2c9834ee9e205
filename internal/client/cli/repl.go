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
	isAdmin() bool
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context) error

	Companies(ctx context.Context) error
	Show(ctx context.Context, args []string) error
	Check(ctx context.Context, args []string, checked bool) error
	Premium(ctx context.Context, args []string) error
	Summary(ctx context.Context) error
	Send(ctx context.Context, args []string) error
	Confirm(ctx context.Context, args []string) error
	Cancel(ctx context.Context) error

	Ledger(ctx context.Context) error
	Export(ctx context.Context, args []string) error
	Archive(ctx context.Context, args []string) error
	Import(ctx context.Context, args []string) error
	Dump(ctx context.Context, args []string) error
	Overview(ctx context.Context) error
	Merge(ctx context.Context, args []string) error
}

const (
	helpAnonymous = "Available commands: login [token], exit"
	helpBroker    = "Available commands: companies, show <company>, check <plate>, uncheck <plate>, premium <plate> <amount>, summary, send <plate> [amount], confirm <amount>, cancel, logout, exit"
	helpAdmin     = "Admin commands: ledger, export [file], archive [file], import [file], dump [file], overview, merge <company> <file>"
)

var adminCommands = map[string]bool{
	"ledger": true, "export": true, "archive": true, "import": true,
	"dump": true, "overview": true, "merge": true,
}

// runREPL starts a simple read–eval–print loop for the premiumkeeper CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Every command except help, login and exit
// requires a signed-in user; admin commands also require the admin role.
// These checks only shape the menu; the server enforces access.
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("pk%s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch {
		case cmd == "exit" || cmd == "quit":
			printlnFn("Bye!")
			return
		case cmd == "help":
			switch {
			case !a.isLoggedIn():
				printlnFn(helpAnonymous)
			case a.isAdmin():
				printlnFn(helpBroker)
				printlnFn(helpAdmin)
			default:
				printlnFn(helpBroker)
			}
			continue
		case cmd == "login":
			_ = a.Login(ctx, args)
			continue
		case !a.isLoggedIn():
			printlnFn("Please log in first")
			continue
		case adminCommands[cmd] && !a.isAdmin():
			printlnFn("Du har ikke adgang til denne side.")
			continue
		}

		switch cmd {
		case "logout":
			_ = a.Logout(ctx)
		case "companies":
			_ = a.Companies(ctx)
		case "show":
			_ = a.Show(ctx, args)
		case "check":
			_ = a.Check(ctx, args, true)
		case "uncheck":
			_ = a.Check(ctx, args, false)
		case "premium":
			_ = a.Premium(ctx, args)
		case "summary":
			_ = a.Summary(ctx)
		case "send":
			_ = a.Send(ctx, args)
		case "confirm":
			_ = a.Confirm(ctx, args)
		case "cancel":
			_ = a.Cancel(ctx)
		case "ledger":
			_ = a.Ledger(ctx)
		case "export":
			_ = a.Export(ctx, args)
		case "archive":
			_ = a.Archive(ctx, args)
		case "import":
			_ = a.Import(ctx, args)
		case "dump":
			_ = a.Dump(ctx, args)
		case "overview":
			_ = a.Overview(ctx)
		case "merge":
			_ = a.Merge(ctx, args)
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
