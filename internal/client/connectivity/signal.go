// Package connectivity tracks whether the API is reachable and tells
// subscribers when that changes.
package connectivity

import (
	"context"
	"sync"
)

// Handler reacts to a connectivity transition. Handlers must not call Set.
type Handler func(ctx context.Context)

// Signal is the process-wide online flag.
//
// Handlers run once per transition, in the order they were registered, and
// never concurrently with each other: Set holds a dispatch lock while they
// run, so a second transition waits until the first one is fully handled.
type Signal struct {
	mu     sync.RWMutex
	online bool

	dispatch  sync.Mutex
	onOnline  []Handler
	onOffline []Handler
}

func NewSignal(online bool) *Signal {
	return &Signal{online: online}
}

func (s *Signal) IsOnline() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.online
}

func (s *Signal) OnBecameOnline(h Handler) {
	s.dispatch.Lock()
	defer s.dispatch.Unlock()
	s.onOnline = append(s.onOnline, h)
}

func (s *Signal) OnBecameOffline(h Handler) {
	s.dispatch.Lock()
	defer s.dispatch.Unlock()
	s.onOffline = append(s.onOffline, h)
}

// Set updates the flag and runs the matching handlers when the value
// changed. It reports whether a transition happened.
func (s *Signal) Set(ctx context.Context, online bool) bool {
	s.dispatch.Lock()
	defer s.dispatch.Unlock()

	s.mu.Lock()
	changed := s.online != online
	s.online = online
	s.mu.Unlock()

	if !changed {
		return false
	}

	handlers := s.onOffline
	if online {
		handlers = s.onOnline
	}
	for _, h := range handlers {
		h(ctx)
	}
	return true
}
