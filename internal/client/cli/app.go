package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/storykeeper/internal/client/client"
	"github.com/dmitrijs2005/storykeeper/internal/client/config"
	"github.com/dmitrijs2005/storykeeper/internal/client/connectivity"
	"github.com/dmitrijs2005/storykeeper/internal/client/events"
	"github.com/dmitrijs2005/storykeeper/internal/client/guest"
	"github.com/dmitrijs2005/storykeeper/internal/client/services"
	"github.com/dmitrijs2005/storykeeper/internal/client/session"
	"github.com/dmitrijs2005/storykeeper/internal/client/store"
	"github.com/dmitrijs2005/storykeeper/internal/filex"
	"github.com/dmitrijs2005/storykeeper/internal/logging"
)

// kvStore is what both the SQLite and the in-memory key-value stores offer.
type kvStore interface {
	guest.KV
	session.KV
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	engine  *services.Engine
	api     client.Client
	store   *store.Store
	signal  *connectivity.Signal
	closers []io.Closer

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens local storage under cfg.DataDir and wires the services.
//
// Storage failures are not fatal: the durable store stays lazy and retries
// on use, and the key-value store falls back to memory so the session and
// guest stories last for this run only.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	dir, err := filex.EnsureDir(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	cfg.DataDir = dir

	a := &App{
		config: cfg,
		logger: logger,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}

	a.store = store.New(cfg.StorePath(), logger)
	if err := a.store.Initialize(ctx); err != nil {
		logger.Warn(ctx, "durable store unavailable, caching disabled for now", "error", err)
	}
	a.closers = append(a.closers, a.store)

	var kv kvStore
	skv, err := guest.OpenKV(ctx, cfg.GuestPath())
	if err != nil {
		logger.Warn(ctx, "key-value store unavailable, falling back to memory", "error", err)
		kv = guest.NewMemoryKV()
	} else {
		kv = skv
		a.closers = append(a.closers, skv)
	}

	sess := session.New(kv)
	if err := sess.Load(ctx); err != nil {
		logger.Warn(ctx, "failed to load session", "error", err)
	}
	if sess.Expired() {
		logger.Info(ctx, "stored session expired, logging out")
		_ = sess.Clear(ctx)
	}

	a.api = client.NewHTTPClient(cfg.APIBaseURL, sess, cfg.RequestTimeout)
	a.closers = append(a.closers, a.api)

	a.signal = connectivity.NewSignal(false)
	a.engine = services.NewEngine(services.Deps{
		Client:  a.api,
		Store:   a.store,
		Guest:   guest.New(kv, logger),
		Session: sess,
		Events:  &events.Bus{},
		Logger:  logger,
	}, a.signal)

	return a, nil
}

// Run starts the connectivity watcher and blocks in the REPL until the user
// exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	defer a.subscribe()()

	go connectivity.Watch(ctx, a.signal, a.api, a.config.OnlineCheckInterval, a.logger)

	fmt.Fprintln(a.out, "Welcome to storykeeper (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader)
}

// subscribe attaches the terminal notifications and returns a func that
// detaches them.
func (a *App) subscribe() func() {
	offs := []func(){
		a.engine.Events.StorySubmitted.Subscribe(func(e events.StorySubmitted) {
			desc := ""
			if e.Story != nil {
				desc = e.Story.Description
			}
			fmt.Fprintf(a.out, "\n[notification] Story created: %s\n", desc)
		}),
		a.engine.Events.SyncCompleted.Subscribe(func(e events.SyncCompleted) {
			if e.ReplayedActions > 0 || e.SyncedDrafts > 0 {
				fmt.Fprintf(a.out, "\n[sync] %d favorite change(s) applied, %d draft(s) published\n", e.ReplayedActions, e.SyncedDrafts)
			}
		}),
	}
	a.signal.OnBecameOffline(func(context.Context) {
		fmt.Fprintln(a.out, "\n[offline] changes will be kept on this device")
	})
	return func() {
		for _, off := range offs {
			off()
		}
	}
}

func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}

func (a *App) isLoggedIn() bool {
	return a.engine.Auth.IsLoggedIn()
}

func (a *App) status() string {
	s := "guest"
	if a.isLoggedIn() {
		s = a.engine.Auth.Whoami().Name
	}
	mode := "offline"
	if a.engine.IsOnline() {
		mode = "online"
	}
	return fmt.Sprintf("(%s %s)", s, mode)
}
