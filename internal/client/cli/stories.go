package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/storykeeper/internal/client/client"
	"github.com/dmitrijs2005/storykeeper/internal/client/models"
	"github.com/dmitrijs2005/storykeeper/internal/filex"
)

// maxPhotoFile bounds what is read from disk; the photo is downscaled before
// upload so it may exceed the API limit here.
const maxPhotoFile = 20 << 20

var getMultiline = GetMultiline
var getOptionalFloat = GetOptionalFloat

// List prints a page of stories: list [page] [size].
func (a *App) List(ctx context.Context, args []string) error {
	opts := client.ListOptions{}
	if len(args) > 0 {
		opts.Page, _ = strconv.Atoi(args[0])
	}
	if len(args) > 1 {
		opts.Size, _ = strconv.Atoi(args[1])
	}

	res := a.engine.Stories.List(ctx, opts)
	if res.Error {
		fmt.Fprintln(a.out, res.Message)
		return errCommandFailed
	}
	a.printStories(res.Stories)
	return nil
}

// Map prints stories that carry coordinates.
func (a *App) Map(ctx context.Context, _ []string) error {
	res := a.engine.Stories.MapStories(ctx)
	if res.Error {
		fmt.Fprintln(a.out, res.Message)
		return errCommandFailed
	}
	a.printStories(res.Stories)
	return nil
}

// Show prints one story: show <id>.
func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: show <id>")
		return errCommandFailed
	}

	res := a.engine.Stories.Detail(ctx, args[0])
	if res.Error {
		fmt.Fprintln(a.out, res.Message)
		return errCommandFailed
	}

	s := res.Story
	fmt.Fprintln(a.out, formatStory(*s))
	fmt.Fprintf(a.out, "    photo: %s\n", photoRef(s.PhotoURL))
	if a.engine.Favorites.IsFavorite(ctx, s.ID) {
		fmt.Fprintln(a.out, "    ★ favorite")
	}
	if res.Message != "" {
		fmt.Fprintf(a.out, "(%s)\n", res.Message)
	}
	return nil
}

// Add prompts for a description, a photo file and optional coordinates and
// submits the story.
func (a *App) Add(ctx context.Context, _ []string) error {
	desc, err := getMultiline(a.reader, "Enter description", a.out)
	if err != nil {
		return err
	}
	path, err := getSimpleText(a.reader, "Photo file", a.out)
	if err != nil {
		return err
	}

	in := models.StoryInput{Description: desc}
	if path != "" {
		in.PhotoName = filepath.Base(path)
		in.Photo, err = filex.ReadPhoto(path, maxPhotoFile)
		if err != nil {
			fmt.Fprintln(a.out, "Cannot read photo:", err)
			return err
		}
	}

	if in.Lat, err = getOptionalFloat(a.reader, "Latitude", a.out); err != nil {
		fmt.Fprintln(a.out, err)
		return err
	}
	if in.Lat != nil {
		if in.Lon, err = getOptionalFloat(a.reader, "Longitude", a.out); err != nil {
			fmt.Fprintln(a.out, err)
			return err
		}
	}

	res := a.engine.Stories.Submit(ctx, in)
	fmt.Fprintln(a.out, res.Message)
	if res.Error {
		return errCommandFailed
	}
	return nil
}

// Drafts prints stories waiting to be published.
func (a *App) Drafts(ctx context.Context, _ []string) error {
	drafts := a.engine.Stories.Drafts(ctx)
	if len(drafts) == 0 {
		fmt.Fprintln(a.out, "No offline drafts")
		return nil
	}
	for _, d := range drafts {
		fmt.Fprintf(a.out, "%s  %s  %s\n    %s\n", d.TempID, d.CreatedAt.UTC().Format(time.DateTime), d.UserName, d.Description)
	}
	return nil
}

// Guest lists, removes or clears guest stories:
// guest | guest rm <id> | guest clear.
func (a *App) Guest(ctx context.Context, args []string) error {
	if len(args) == 0 {
		stories := a.engine.Stories.GuestStories(ctx)
		if len(stories) == 0 {
			fmt.Fprintln(a.out, "No guest stories")
			return nil
		}
		a.printStories(stories)
		return nil
	}

	switch args[0] {
	case "rm":
		if len(args) < 2 {
			fmt.Fprintln(a.out, "Usage: guest rm <id>")
			return errCommandFailed
		}
		if !a.engine.Stories.DeleteGuestStory(ctx, args[1]) {
			fmt.Fprintln(a.out, "Failed to delete guest story")
			return errCommandFailed
		}
		fmt.Fprintln(a.out, "Deleted")
	case "clear":
		if !a.engine.Stories.ClearGuestStories(ctx) {
			fmt.Fprintln(a.out, "Failed to clear guest stories")
			return errCommandFailed
		}
		fmt.Fprintln(a.out, "Cleared")
	default:
		fmt.Fprintln(a.out, "Usage: guest [rm <id> | clear]")
		return errCommandFailed
	}
	return nil
}

// Sync replays queued favorite changes and publishes drafts now.
func (a *App) Sync(ctx context.Context, _ []string) error {
	if !a.engine.IsOnline() {
		fmt.Fprintln(a.out, "Offline: changes will sync when the API is reachable")
		return nil
	}
	done := a.engine.Sync(ctx)
	fmt.Fprintf(a.out, "Synced: %d favorite change(s), %d draft(s)\n", done.ReplayedActions, done.SyncedDrafts)
	return nil
}

func (a *App) printStories(stories []models.Story) {
	if len(stories) == 0 {
		fmt.Fprintln(a.out, "No stories")
		return
	}
	for _, s := range stories {
		fmt.Fprintln(a.out, formatStory(s))
	}
}

func formatStory(s models.Story) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  %s", s.ID, s.CreatedAt.UTC().Format(time.DateTime), s.Name)
	if s.IsGuest() {
		b.WriteString(" [guest]")
	}
	if s.HasLocation() {
		fmt.Fprintf(&b, " @ %.5f,%.5f", *s.Lat, *s.Lon)
	}
	fmt.Fprintf(&b, "\n    %s", s.Description)
	return b.String()
}

// photoRef keeps inline data URLs out of the terminal.
func photoRef(u string) string {
	if strings.HasPrefix(u, "data:") {
		return fmt.Sprintf("inline image, %d bytes", len(u))
	}
	return u
}
