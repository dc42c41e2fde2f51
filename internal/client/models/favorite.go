package models

import "time"

// Favorite is a local bookmark: a snapshot of the story at the time it was
// favorited plus the moment it was added.
type Favorite struct {
	Story
	AddedAt time.Time `json:"addedAt"`
}

// SortFavoritesNewestFirst orders favorites by AddedAt descending.
func SortFavoritesNewestFirst(favs []Favorite) {
	sortByTime(favs, func(f Favorite) time.Time { return f.AddedAt }, func(f Favorite) string { return f.ID })
}

// FavoriteAction is the kind of a queued favorite mutation.
type FavoriteAction string

const (
	FavoriteAdd    FavoriteAction = "add"
	FavoriteRemove FavoriteAction = "remove"
)

// PendingFavoriteAction is a favorite mutation queued while offline.
// ID is a strictly increasing unix-millis stamp assigned at enqueue time.
type PendingFavoriteAction struct {
	ID        int64          `json:"id"`
	Action    FavoriteAction `json:"action"`
	StoryID   string         `json:"storyId"`
	Story     *Story         `json:"storyData"`
	Timestamp time.Time      `json:"timestamp"`
}
