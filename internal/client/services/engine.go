package services

import (
	"context"

	"github.com/dmitrijs2005/storykeeper/internal/client/connectivity"
	"github.com/dmitrijs2005/storykeeper/internal/client/events"
)

// Engine bundles the services and reacts to connectivity transitions.
type Engine struct {
	Auth      AuthService
	Stories   StoryService
	Favorites FavoriteService
	Events    *events.Bus

	deps   Deps
	signal *connectivity.Signal
}

// NewEngine builds the services around deps and subscribes to the signal:
// every transition to online runs Sync.
func NewEngine(deps Deps, signal *connectivity.Signal) *Engine {
	deps.Online = signal
	deps = deps.withDefaults()

	e := &Engine{
		Auth:      NewAuthService(deps),
		Stories:   NewStoryService(deps),
		Favorites: NewFavoriteService(deps),
		Events:    deps.Events,
		deps:      deps,
		signal:    signal,
	}

	signal.OnBecameOnline(func(ctx context.Context) {
		e.deps.Logger.Info(ctx, "back online, syncing")
		e.Sync(ctx)
	})
	signal.OnBecameOffline(func(ctx context.Context) {
		e.deps.Logger.Info(ctx, "offline, changes will be queued")
	})
	return e
}

// Sync replays queued favorite actions, then submits offline drafts, and
// emits SyncCompleted with both counts.
func (e *Engine) Sync(ctx context.Context) events.SyncCompleted {
	done := events.SyncCompleted{
		ReplayedActions: e.Favorites.ReplayPending(ctx),
		SyncedDrafts:    e.Stories.SyncOfflineStories(ctx),
	}
	e.deps.Logger.Info(ctx, "sync completed", "replayed", done.ReplayedActions, "drafts", done.SyncedDrafts)
	e.Events.SyncCompleted.Emit(done)
	return done
}

// Resume is the opportunistic trigger used when a view is entered: it
// replays queued favorite actions if the API is reachable.
func (e *Engine) Resume(ctx context.Context) int {
	if !e.signal.IsOnline() {
		return 0
	}
	return e.Favorites.ReplayPending(ctx)
}

func (e *Engine) IsOnline() bool {
	return e.signal.IsOnline()
}
