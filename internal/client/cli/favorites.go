package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/storykeeper/internal/client/models"
)

// Fav toggles the favorite state of a story: fav <id>.
func (a *App) Fav(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: fav <id>")
		return errCommandFailed
	}

	story, msg := a.resolveFavorite(ctx, args[0])
	if story == nil {
		fmt.Fprintln(a.out, msg)
		return errCommandFailed
	}

	res := a.engine.Favorites.Toggle(ctx, *story)
	switch {
	case res.Busy:
		fmt.Fprintln(a.out, "Still working on the previous change, try again")
		return errCommandFailed
	case !res.Success:
		fmt.Fprintln(a.out, "Failed to update favorites:", res.Error)
		return errCommandFailed
	}

	msg = "Removed from favorites"
	if res.Favorite {
		msg = "Added to favorites"
	}
	if res.Offline {
		msg += " (offline, will sync)"
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

// resolveFavorite looks the story up and falls back to the snapshot kept
// with the favorite, so a favorite that is no longer cached can still be
// removed offline.
func (a *App) resolveFavorite(ctx context.Context, id string) (*models.Story, string) {
	detail := a.engine.Stories.Detail(ctx, id)
	if !detail.Error {
		return detail.Story, ""
	}

	ref := models.ParseStoryID(id)
	for _, f := range a.engine.Favorites.List(ctx) {
		if f.Story.ID == ref.Value {
			story := f.Story
			return &story, ""
		}
	}
	return nil, detail.Message
}

// Favorites lists favorite stories, newest first.
func (a *App) Favorites(ctx context.Context, _ []string) error {
	a.engine.Resume(ctx)

	favs := a.engine.Favorites.List(ctx)
	if len(favs) == 0 {
		fmt.Fprintln(a.out, "No favorites")
		return nil
	}
	for _, f := range favs {
		fmt.Fprintln(a.out, formatStory(f.Story))
	}
	return nil
}
