package client

import (
	"context"

	"github.com/dmitrijs2005/storykeeper/internal/client/models"
)

type Client interface {
	Close() error
	Register(ctx context.Context, name, email, password string) (Result, error)
	Login(ctx context.Context, email, password string) (LoginResponse, error)
	ListStories(ctx context.Context, opts ListOptions) (StoriesResponse, error)
	GetStory(ctx context.Context, id string) (StoryResponse, error)
	CreateStory(ctx context.Context, in models.StoryInput) (StoryResponse, error)
	SubscribePush(ctx context.Context, sub PushSubscription) (Result, error)
	UnsubscribePush(ctx context.Context, endpoint string) (Result, error)
	Ping(ctx context.Context) error
}

// TokenSource yields the current bearer token; empty means anonymous.
type TokenSource interface {
	Token() string
}

// Result is the envelope every API response carries.
type Result struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type LoginResult struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Token  string `json:"token"`
}

type LoginResponse struct {
	Result
	LoginResult *LoginResult `json:"loginResult,omitempty"`
}

type StoriesResponse struct {
	Result
	ListStory []models.Story `json:"listStory"`
}

// StoryResponse is returned by detail and create. Create responses may omit
// the story.
type StoryResponse struct {
	Result
	Story *models.Story `json:"story,omitempty"`
}

type ListOptions struct {
	Page     int
	Size     int
	Location bool
}

type PushKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

type PushSubscription struct {
	Endpoint string   `json:"endpoint"`
	Keys     PushKeys `json:"keys"`
}
