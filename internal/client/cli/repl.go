package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Verify(ctx context.Context) error
	Available(ctx context.Context) error
	Login(ctx context.Context) error
	Me(ctx context.Context) error
	Renew(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	Delete(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL reads a line from reader, parses the first token as the command
// and dispatches to a. Commands that need a session are refused until
// login succeeds. The loop exits on EOF or on "exit"/"quit".
//
// Errors returned by command handlers are ignored here; handlers report
// their own errors. The same reader is shared with the handlers' prompts.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("gophauth %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: me, renew, passwd, delete, logout, exit")
			} else {
				printlnFn("Available commands: register, verify, available, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "verify":
			_ = a.Verify(ctx)

		case "available":
			_ = a.Available(ctx)

		case "login":
			_ = a.Login(ctx)

		case "me", "renew", "passwd", "delete", "logout":
			if !a.isLoggedIn() {
				printlnFn("Please login first")
				continue
			}
			switch cmd {
			case "me":
				_ = a.Me(ctx)
			case "renew":
				_ = a.Renew(ctx)
			case "passwd":
				_ = a.ChangePassword(ctx)
			case "delete":
				_ = a.Delete(ctx)
			case "logout":
				_ = a.Logout(ctx)
			}

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
