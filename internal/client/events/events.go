// Package events is a small typed publish/subscribe used for cross-component
// notifications (new story, favorite toggled, login, sync finished).
package events

import (
	"sync"

	"github.com/dmitrijs2005/storykeeper/internal/client/models"
)

// Feed delivers values of one type to its subscribers, synchronously and in
// subscription order.
type Feed[T any] struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscription[T]
}

type subscription[T any] struct {
	id int
	fn func(T)
}

// Subscribe registers fn and returns a function that removes it.
func (f *Feed[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++
	f.subs = append(f.subs, subscription[T]{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			for i, s := range f.subs {
				if s.id == id {
					f.subs = append(f.subs[:i:i], f.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Emit calls every current subscriber with v.
func (f *Feed[T]) Emit(v T) {
	f.mu.RLock()
	subs := append([]subscription[T]{}, f.subs...)
	f.mu.RUnlock()

	for _, s := range subs {
		s.fn(v)
	}
}

type StorySubmitted struct {
	Story   *models.Story
	Message string
}

type FavoriteToggled struct {
	StoryID  string
	Favorite bool
	Offline  bool
}

type LoginSucceeded struct {
	UserID string
	Name   string
}

type SyncCompleted struct {
	ReplayedActions int
	SyncedDrafts    int
}

// Bus groups the feeds owned by the sync engine.
type Bus struct {
	StorySubmitted  Feed[StorySubmitted]
	FavoriteToggled Feed[FavoriteToggled]
	LoginSucceeded  Feed[LoginSucceeded]
	SyncCompleted   Feed[SyncCompleted]
}
