package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/storykeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errCommandFailed = errors.New("command failed")

// Register prompts for name, email and password and creates an account.
// The password buffer is wiped before returning.
func (a *App) Register(ctx context.Context, _ []string) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res := a.engine.Auth.Register(ctx, name, email, string(password))
	fmt.Fprintln(a.out, res.Message)
	if res.Error {
		return errCommandFailed
	}
	return nil
}

// Login prompts for credentials and stores the session on success.
func (a *App) Login(ctx context.Context, _ []string) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res := a.engine.Auth.Login(ctx, email, string(password))
	if res.Error {
		fmt.Fprintln(a.out, "Login failed:", res.Message)
		return errCommandFailed
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", a.engine.Auth.Whoami().Name)

	if a.engine.IsOnline() {
		a.engine.Sync(ctx)
	}
	return nil
}

// Logout forgets the session. Cached stories and queued changes stay.
func (a *App) Logout(ctx context.Context, _ []string) error {
	if err := a.engine.Auth.Logout(ctx); err != nil {
		fmt.Fprintln(a.out, "Logout incomplete:", err)
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// Status prints identity, connectivity and what is waiting to be synced.
func (a *App) Status(ctx context.Context, _ []string) error {
	who := a.engine.Auth.Whoami()
	if a.isLoggedIn() {
		fmt.Fprintf(a.out, "User:        %s (%s)\n", who.Name, who.UserID)
	} else {
		fmt.Fprintln(a.out, "User:        guest")
	}
	if a.engine.IsOnline() {
		fmt.Fprintln(a.out, "Connection:  online")
	} else {
		fmt.Fprintln(a.out, "Connection:  offline")
	}
	fmt.Fprintf(a.out, "API:         %s\n", a.config.APIBaseURL)
	fmt.Fprintf(a.out, "Pending:     %d favorite change(s)\n", len(a.engine.Favorites.Pending(ctx)))
	fmt.Fprintf(a.out, "Guest:       %d story(ies)\n", len(a.engine.Stories.GuestStories(ctx)))

	stats, err := a.store.Stats(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Cache:       unavailable")
		return nil
	}
	fmt.Fprintf(a.out, "Cache:       %d stories, %d favorites, %d drafts\n", stats.Stories, stats.Favorites, stats.Drafts)
	return nil
}
