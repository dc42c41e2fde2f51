package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  map[string][]string
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	if f.args == nil {
		f.args = map[string][]string{}
	}
	f.args[name] = args
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context, a []string) error {
	return f.record("register", a)
}
func (f *fakeExec) Login(ctx context.Context, a []string) error {
	f.loggedIn = true
	return f.record("login", a)
}
func (f *fakeExec) Logout(ctx context.Context, a []string) error {
	f.loggedIn = false
	return f.record("logout", a)
}
func (f *fakeExec) List(ctx context.Context, a []string) error      { return f.record("list", a) }
func (f *fakeExec) Show(ctx context.Context, a []string) error      { return f.record("show", a) }
func (f *fakeExec) Add(ctx context.Context, a []string) error       { return f.record("add", a) }
func (f *fakeExec) Fav(ctx context.Context, a []string) error       { return f.record("fav", a) }
func (f *fakeExec) Favorites(ctx context.Context, a []string) error { return f.record("favorites", a) }
func (f *fakeExec) Guest(ctx context.Context, a []string) error     { return f.record("guest", a) }
func (f *fakeExec) Drafts(ctx context.Context, a []string) error    { return f.record("drafts", a) }
func (f *fakeExec) Map(ctx context.Context, a []string) error       { return f.record("map", a) }
func (f *fakeExec) Sync(ctx context.Context, a []string) error      { return f.record("sync", a) }
func (f *fakeExec) Status(ctx context.Context, a []string) error    { return f.record("status", a) }
func (f *fakeExec) Subscribe(ctx context.Context, a []string) error {
	return f.record("subscribe", a)
}
func (f *fakeExec) Unsubscribe(ctx context.Context, a []string) error {
	return f.record("unsubscribe", a)
}

func capturePrint(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	origPrint := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSpace(fmt.Sprintln(a...)))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = origPrint })
	return &lines
}

func TestRunREPL_DispatchesCommandsWithArgs(t *testing.T) {
	capturePrint(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"l 2 5",
		"show s1",
		"add",
		"fav s1",
		"favorites",
		"guest rm guest_1_a",
		"drafts",
		"map",
		"sync",
		"status",
		"subscribe https://push e k",
		"unsubscribe https://push",
		"",
		"logout",
		"register",
		"exit",
		"list",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewReader(input))

	assert.Equal(t, []string{
		"login", "list", "show", "add", "fav", "favorites", "guest", "drafts",
		"map", "sync", "status", "subscribe", "unsubscribe", "logout", "register",
	}, exec.calls, "nothing runs after exit")
	assert.Equal(t, []string{"2", "5"}, exec.args["list"])
	assert.Equal(t, []string{"rm", "guest_1_a"}, exec.args["guest"])
	assert.Equal(t, []string{"https://push", "e", "k"}, exec.args["subscribe"])
}

func TestRunREPL_HelpDependsOnLogin(t *testing.T) {
	lines := capturePrint(t)

	input := strings.NewReader("help\nlogin\nhelp\n")
	runREPL(context.Background(), &fakeExec{}, func() string { return "s" }, bufio.NewReader(input))

	require.Contains(t, *lines, helpGuest)
	require.Contains(t, *lines, helpLoggedIn)
}

func TestRunREPL_UnknownAndEOF(t *testing.T) {
	lines := capturePrint(t)

	input := strings.NewReader("get 42\nstatus")
	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewReader(input))

	assert.Contains(t, *lines, "Unknown command: get")
	assert.Equal(t, []string{"status"}, exec.calls, "last line without newline still runs")
}

func TestRunREPL_StopsWhenContextDone(t *testing.T) {
	capturePrint(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExec{}
	runREPL(ctx, exec, func() string { return "s" }, bufio.NewReader(strings.NewReader("list\n")))
	assert.Empty(t, exec.calls)
}
