package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/storykeeper/internal/client/client"
	"github.com/dmitrijs2005/storykeeper/internal/client/events"
	"github.com/dmitrijs2005/storykeeper/internal/client/models"
	"github.com/dmitrijs2005/storykeeper/internal/client/session"
	"github.com/dmitrijs2005/storykeeper/internal/logging"
)

// DurableStore is the cache of stories, favorites and offline drafts.
// Get methods return (nil, nil) for missing rows.
type DurableStore interface {
	PutStory(ctx context.Context, s *models.Story) error
	GetStory(ctx context.Context, id string) (*models.Story, error)
	ListStories(ctx context.Context) ([]models.Story, error)
	DeleteStory(ctx context.Context, id string) error

	PutFavorite(ctx context.Context, f *models.Favorite) error
	GetFavorite(ctx context.Context, id string) (*models.Favorite, error)
	ListFavorites(ctx context.Context) ([]models.Favorite, error)
	DeleteFavorite(ctx context.Context, id string) error

	PutOfflineDraft(ctx context.Context, d *models.OfflineDraft) (*models.OfflineDraft, error)
	ListOfflineDrafts(ctx context.Context) ([]models.OfflineDraft, error)
	DeleteOfflineDraft(ctx context.Context, tempID string) error
}

// GuestStore holds guest stories and the pending favorite action queue.
type GuestStore interface {
	AppendGuestStory(ctx context.Context, s models.Story) error
	ListGuestStories(ctx context.Context) ([]models.Story, error)
	FindGuestStory(ctx context.Context, id string) (*models.Story, error)
	RemoveGuestStory(ctx context.Context, id string) error
	ClearGuestStories(ctx context.Context) error

	EnqueuePendingAction(ctx context.Context, a models.PendingFavoriteAction) (models.PendingFavoriteAction, error)
	ListPendingActions(ctx context.Context) ([]models.PendingFavoriteAction, error)
	RemovePendingActions(ctx context.Context, ids []int64) error
}

// Connectivity reports whether the API is believed reachable.
type Connectivity interface {
	IsOnline() bool
}

// Timeouts bound the favorite store calls and the toggle failsafe.
type Timeouts struct {
	Favorite       time.Duration
	FavoriteList   time.Duration
	ToggleFailsafe time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		Favorite:       3 * time.Second,
		FavoriteList:   5 * time.Second,
		ToggleFailsafe: 5 * time.Second,
	}
}

// Deps are the collaborators shared by all services.
type Deps struct {
	Client   client.Client
	Store    DurableStore
	Guest    GuestStore
	Session  *session.Session
	Online   Connectivity
	Events   *events.Bus
	Logger   logging.Logger
	Timeouts Timeouts
	Now      func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Events == nil {
		d.Events = &events.Bus{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	def := DefaultTimeouts()
	if d.Timeouts.Favorite <= 0 {
		d.Timeouts.Favorite = def.Favorite
	}
	if d.Timeouts.FavoriteList <= 0 {
		d.Timeouts.FavoriteList = def.FavoriteList
	}
	if d.Timeouts.ToggleFailsafe <= 0 {
		d.Timeouts.ToggleFailsafe = def.ToggleFailsafe
	}
	return d
}
