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

// execIface defines the command surface the REPL needs. The real App
// satisfies it; tests provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Add(ctx context.Context, args []string) error
	Fav(ctx context.Context, args []string) error
	Favorites(ctx context.Context, args []string) error
	Guest(ctx context.Context, args []string) error
	Drafts(ctx context.Context, args []string) error
	Map(ctx context.Context, args []string) error
	Sync(ctx context.Context, args []string) error
	Status(ctx context.Context, args []string) error
	Subscribe(ctx context.Context, args []string) error
	Unsubscribe(ctx context.Context, args []string) error
}

const (
	helpGuest    = "Available commands: register, login, (l)ist, show <id>, add, fav <id>, favorites, guest [rm <id>|clear], map, status, exit"
	helpLoggedIn = "Available commands: (l)ist [page] [size], show <id>, add, fav <id>, favorites, guest [rm <id>|clear], drafts, map, sync, status, subscribe, unsubscribe, logout, exit"
)

// runREPL reads one command per line from reader and dispatches it to a.
// The loop exits on EOF, on "exit"/"quit" or when ctx is done.
//
// Errors returned by command handlers are ignored here; handlers print
// their own messages so the loop stays focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	type handler func(context.Context, []string) error
	commands := map[string]handler{
		"register":    a.Register,
		"login":       a.Login,
		"logout":      a.Logout,
		"l":           a.List,
		"list":        a.List,
		"show":        a.Show,
		"add":         a.Add,
		"fav":         a.Fav,
		"favorites":   a.Favorites,
		"guest":       a.Guest,
		"drafts":      a.Drafts,
		"map":         a.Map,
		"sync":        a.Sync,
		"status":      a.Status,
		"subscribe":   a.Subscribe,
		"unsubscribe": a.Unsubscribe,
	}

	for ctx.Err() == nil {
		printlnFn(fmt.Sprintf("sk %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
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
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpGuest)
			}
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			h, ok := commands[cmd]
			if !ok {
				printlnFn("Unknown command:", cmd)
				continue
			}
			_ = h(ctx, args)
		}
	}
}
