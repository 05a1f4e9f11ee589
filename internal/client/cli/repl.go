package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/userdesk/internal/client/gate"
	"github.com/dmitrijs2005/userdesk/internal/client/models"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	decision() gate.Decision
	Login(ctx context.Context) error
	List(ctx context.Context, page int) error
	Page(ctx context.Context, page int) error
	Search(text string)
	ClearFilter()
	Delete(ctx context.Context, id models.ID) error
	Edit(ctx context.Context, id models.ID) error
	Logout(ctx context.Context) error
}

const (
	helpDenied  = "Available commands: login, exit"
	helpAllowed = "Available commands: (l)ist [page], page <n>, search <text>, clear, delete <id>, edit <id>, logout, exit"
)

// runREPL starts a simple read–eval–print loop for the userdesk CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Which commands exist depends on the access
// gate:
//
//	Not logged in:
//	  - help              - show available commands
//	  - login             - authenticate
//	  - exit | quit       - leave the program
//
//	Logged in:
//	  - help              - show available commands
//	  - list | l [page]   - show a page of users (current page by default)
//	  - page <n>          - switch to page n
//	  - search <text>     - filter the current page
//	  - clear             - drop the filter
//	  - delete <id>       - delete a user
//	  - edit <id>         - edit a user
//	  - logout            - log out
//	  - exit | quit       - leave the program
//
// Errors returned by command handlers are ignored here; handlers report
// their own errors. The loop exits on EOF or exit/quit.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("ud (%s)> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}

		switch a.decision() {
		case gate.Allow:
			dispatchAllowed(ctx, a, cmd, args)
		case gate.Deny:
			dispatchDenied(ctx, a, cmd)
		default:
			printlnFn("Loading, try again.")
		}
	}
}

func dispatchDenied(ctx context.Context, a execIface, cmd string) {
	switch cmd {
	case "help":
		printlnFn(helpDenied)
	case "login":
		_ = a.Login(ctx)
	default:
		printlnFn("Unknown command:", cmd)
	}
}

func dispatchAllowed(ctx context.Context, a execIface, cmd string, args []string) {
	switch cmd {
	case "help":
		printlnFn(helpAllowed)

	case "l", "list":
		page := 0
		if len(args) > 0 {
			n, ok := parsePage(args[0])
			if !ok {
				return
			}
			page = n
		}
		_ = a.List(ctx, page)

	case "page":
		if len(args) == 0 {
			printlnFn("Usage: page <n>")
			return
		}
		if n, ok := parsePage(args[0]); ok {
			_ = a.Page(ctx, n)
		}

	case "search":
		if len(args) == 0 {
			printlnFn("Usage: search <text>")
			return
		}
		a.Search(strings.Join(args, " "))

	case "clear":
		a.ClearFilter()

	case "delete":
		if len(args) == 0 {
			printlnFn("Usage: delete <id>")
			return
		}
		_ = a.Delete(ctx, models.ID(args[0]))

	case "edit":
		if len(args) == 0 {
			printlnFn("Usage: edit <id>")
			return
		}
		_ = a.Edit(ctx, models.ID(args[0]))

	case "logout":
		_ = a.Logout(ctx)

	default:
		printlnFn("Unknown command:", cmd)
	}
}

func parsePage(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		printlnFn("Page must be a positive number:", s)
		return 0, false
	}
	return n, true
}
