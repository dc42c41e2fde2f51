package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/storykeeper/internal/client/events"
	"github.com/dmitrijs2005/storykeeper/internal/client/models"
)

// FavoriteResult is the outcome of a favorite mutation.
//
// Favorite is the state after the call. Offline means the change was queued
// and will be applied by the next replay; Busy means a toggle for the same
// story was still in flight and this one was ignored.
type FavoriteResult struct {
	Success  bool
	Error    string
	Favorite bool
	Offline  bool
	Busy     bool
}

type FavoriteService interface {
	Add(ctx context.Context, story models.Story) FavoriteResult
	Remove(ctx context.Context, id string) FavoriteResult
	IsFavorite(ctx context.Context, id string) bool
	List(ctx context.Context) []models.Favorite
	Toggle(ctx context.Context, story models.Story) FavoriteResult
	ReplayPending(ctx context.Context) int
	Pending(ctx context.Context) []models.PendingFavoriteAction
}

type favoriteService struct {
	deps Deps

	replay singleflight.Group

	mu       sync.Mutex
	inFlight map[string]uint64
	seq      uint64
}

func NewFavoriteService(deps Deps) FavoriteService {
	return &favoriteService{deps: deps.withDefaults(), inFlight: map[string]uint64{}}
}

func (f *favoriteService) Add(ctx context.Context, story models.Story) FavoriteResult {
	return f.put(ctx, story, f.deps.Now().UTC())
}

func (f *favoriteService) put(ctx context.Context, story models.Story, addedAt time.Time) FavoriteResult {
	fav := &models.Favorite{Story: story, AddedAt: addedAt}

	_, err := withTimeout(ctx, f.deps.Timeouts.Favorite, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, f.deps.Store.PutFavorite(ctx, fav)
	})
	if err != nil {
		f.deps.Logger.Error(ctx, "error adding to favorites", "id", story.ID, "error", err)
		return FavoriteResult{Success: false, Error: err.Error()}
	}
	return FavoriteResult{Success: true, Favorite: true}
}

func (f *favoriteService) Remove(ctx context.Context, id string) FavoriteResult {
	_, err := withTimeout(ctx, f.deps.Timeouts.Favorite, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, f.deps.Store.DeleteFavorite(ctx, id)
	})
	if err != nil {
		f.deps.Logger.Error(ctx, "error removing from favorites", "id", id, "error", err)
		return FavoriteResult{Success: false, Error: err.Error(), Favorite: true}
	}
	return FavoriteResult{Success: true, Favorite: false}
}

// IsFavorite reports false on any failure, including a timeout.
func (f *favoriteService) IsFavorite(ctx context.Context, id string) bool {
	fav, err := withTimeout(ctx, f.deps.Timeouts.Favorite, func(ctx context.Context) (*models.Favorite, error) {
		return f.deps.Store.GetFavorite(ctx, id)
	})
	if err != nil {
		f.deps.Logger.Error(ctx, "error checking favorite status", "id", id, "error", err)
		return false
	}
	return fav != nil
}

// List returns favorites newest first, or an empty list on failure.
func (f *favoriteService) List(ctx context.Context) []models.Favorite {
	favs, err := withTimeout(ctx, f.deps.Timeouts.FavoriteList, func(ctx context.Context) ([]models.Favorite, error) {
		return f.deps.Store.ListFavorites(ctx)
	})
	if err != nil {
		f.deps.Logger.Error(ctx, "error getting favorites", "error", err)
		return []models.Favorite{}
	}
	models.SortFavoritesNewestFirst(favs)
	return favs
}

// Toggle flips the favorite state of story. Toggles are serialized per story:
// while one is in flight another for the same id returns Busy. The in-flight
// mark is force-released after the failsafe timeout even if the store never
// answers.
func (f *favoriteService) Toggle(ctx context.Context, story models.Story) FavoriteResult {
	release, ok := f.acquire(ctx, story.ID)
	if !ok {
		return FavoriteResult{Busy: true, Error: "toggle already in progress"}
	}
	defer release()

	current := f.effectiveState(ctx, story.ID)

	var res FavoriteResult
	if f.deps.Online.IsOnline() {
		if current {
			res = f.Remove(ctx, story.ID)
		} else {
			res = f.Add(ctx, story)
		}
	} else {
		res = f.enqueue(ctx, story, !current)
	}

	if res.Success {
		f.deps.Events.FavoriteToggled.Emit(events.FavoriteToggled{StoryID: story.ID, Favorite: res.Favorite, Offline: res.Offline})
	}
	return res
}

func (f *favoriteService) acquire(ctx context.Context, id string) (release func(), ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, busy := f.inFlight[id]; busy {
		return nil, false
	}
	f.seq++
	token := f.seq
	f.inFlight[id] = token

	drop := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.inFlight[id] == token {
			delete(f.inFlight, id)
		}
	}

	failsafe := time.AfterFunc(f.deps.Timeouts.ToggleFailsafe, func() {
		f.deps.Logger.Warn(ctx, "favorite toggle still running, releasing it", "id", id)
		drop()
	})

	return func() {
		failsafe.Stop()
		drop()
	}, true
}

// effectiveState is the stored favorite state with any queued action for
// the story applied on top, so repeated offline toggles alternate.
func (f *favoriteService) effectiveState(ctx context.Context, id string) bool {
	if !f.deps.Online.IsOnline() {
		queue, err := f.deps.Guest.ListPendingActions(ctx)
		if err == nil {
			for i := len(queue) - 1; i >= 0; i-- {
				if queue[i].StoryID == id {
					return queue[i].Action == models.FavoriteAdd
				}
			}
		}
	}
	return f.IsFavorite(ctx, id)
}

func (f *favoriteService) enqueue(ctx context.Context, story models.Story, favorite bool) FavoriteResult {
	action := models.PendingFavoriteAction{Action: models.FavoriteRemove, StoryID: story.ID, Timestamp: f.deps.Now().UTC()}
	if favorite {
		snapshot := story
		action.Action = models.FavoriteAdd
		action.Story = &snapshot
	}

	if _, err := f.deps.Guest.EnqueuePendingAction(ctx, action); err != nil {
		f.deps.Logger.Error(ctx, "failed to queue favorite action", "id", story.ID, "error", err)
		return FavoriteResult{Success: false, Error: err.Error(), Favorite: !favorite}
	}
	return FavoriteResult{Success: true, Favorite: favorite, Offline: true}
}

// ReplayPending applies queued favorite actions in order and keeps the ones
// that failed. Concurrent calls share a single pass. It returns the number of
// actions applied.
func (f *favoriteService) ReplayPending(ctx context.Context) int {
	v, _, _ := f.replay.Do("replay", func() (any, error) {
		return f.replayPending(ctx), nil
	})
	return v.(int)
}

func (f *favoriteService) replayPending(ctx context.Context) int {
	queue, err := f.deps.Guest.ListPendingActions(ctx)
	if err != nil {
		f.deps.Logger.Warn(ctx, "failed to read pending favorite actions", "error", err)
		return 0
	}
	if len(queue) == 0 {
		return 0
	}

	f.deps.Logger.Info(ctx, "syncing pending favorite actions", "count", len(queue))

	// Only handled actions are removed; a toggle queued while this pass runs
	// stays for the next one.
	var done []int64
	replayed := 0
	failed := 0
	for _, a := range queue {
		var res FavoriteResult
		switch {
		case a.Action == models.FavoriteAdd && a.Story != nil:
			// addedAt comes from the action so replaying twice stores the same row.
			res = f.put(ctx, *a.Story, a.Timestamp)
		case a.Action == models.FavoriteRemove:
			res = f.Remove(ctx, a.StoryID)
		default:
			f.deps.Logger.Warn(ctx, "dropping unreplayable favorite action", "id", a.StoryID, "action", a.Action)
			done = append(done, a.ID)
			continue
		}

		if res.Success {
			replayed++
			done = append(done, a.ID)
		} else {
			failed++
		}
	}

	if err := f.deps.Guest.RemovePendingActions(ctx, done); err != nil {
		f.deps.Logger.Error(ctx, "failed to persist pending favorite actions", "error", err)
	}
	if failed > 0 {
		f.deps.Logger.Warn(ctx, "favorite actions kept for retry", "count", failed)
	}
	return replayed
}

func (f *favoriteService) Pending(ctx context.Context) []models.PendingFavoriteAction {
	queue, err := f.deps.Guest.ListPendingActions(ctx)
	if err != nil {
		f.deps.Logger.Warn(ctx, "failed to read pending favorite actions", "error", err)
		return []models.PendingFavoriteAction{}
	}
	return queue
}
