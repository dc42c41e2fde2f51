package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/storykeeper/internal/client/client"
)

// Subscribe registers a web-push endpoint:
// subscribe <endpoint> <p256dh> <auth>.
func (a *App) Subscribe(ctx context.Context, args []string) error {
	if len(args) < 3 {
		fmt.Fprintln(a.out, "Usage: subscribe <endpoint> <p256dh> <auth>")
		return errCommandFailed
	}
	if !a.canPush() {
		return errCommandFailed
	}

	sub := client.PushSubscription{
		Endpoint: args[0],
		Keys:     client.PushKeys{P256dh: args[1], Auth: args[2]},
	}
	res, err := a.api.SubscribePush(ctx, sub)
	return a.pushResult(res, err)
}

// Unsubscribe removes a web-push endpoint: unsubscribe <endpoint>.
func (a *App) Unsubscribe(ctx context.Context, args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(a.out, "Usage: unsubscribe <endpoint>")
		return errCommandFailed
	}
	if !a.canPush() {
		return errCommandFailed
	}

	res, err := a.api.UnsubscribePush(ctx, args[0])
	return a.pushResult(res, err)
}

func (a *App) canPush() bool {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Login required")
		return false
	}
	if !a.engine.IsOnline() {
		fmt.Fprintln(a.out, "Offline: push subscriptions need the API")
		return false
	}
	return true
}

func (a *App) pushResult(res client.Result, err error) error {
	if err != nil {
		fmt.Fprintln(a.out, "Network error:", err)
		return err
	}
	fmt.Fprintln(a.out, res.Message)
	if res.Error {
		return errCommandFailed
	}
	return nil
}
