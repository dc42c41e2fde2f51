// Package api exposes the story services over HTTP with JSON and multipart
// bodies in the {error, message, ...} envelope the client expects.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/storykeeper/internal/logging"
	"github.com/dmitrijs2005/storykeeper/internal/server/models"
	"github.com/dmitrijs2005/storykeeper/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

type userSvc interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
}

type storySvc interface {
	Create(ctx context.Context, userID string, in services.CreateStoryInput) (*services.StoryView, error)
	Get(ctx context.Context, id string) (*services.StoryView, error)
	List(ctx context.Context, in services.ListStoriesInput) ([]*services.StoryView, error)
}

type pushSvc interface {
	Subscribe(ctx context.Context, userID, endpoint, p256dh, auth string) error
	Unsubscribe(ctx context.Context, userID, endpoint string) error
}

type Server struct {
	address        string
	users          userSvc
	stories        storySvc
	push           pushSvc
	logger         logging.Logger
	jwtSecret      []byte
	allowedOrigins []string
}

func NewServer(a string, l logging.Logger, us userSvc, ss storySvc, ps pushSvc, secretKey string, origins []string) *Server {
	return &Server{
		address:        a,
		logger:         l.With("module", "http_server"),
		users:          us,
		stories:        ss,
		push:           ps,
		jwtSecret:      []byte(secretKey),
		allowedOrigins: origins,
	}
}

// Handler returns the routed API wrapped in request logging and CORS.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /stories", s.requireAuth(s.handleListStories))
	mux.HandleFunc("GET /stories/{id}", s.requireAuth(s.handleGetStory))
	mux.HandleFunc("POST /stories", s.requireAuth(s.handleCreateStory))
	mux.HandleFunc("POST /notifications/subscribe", s.requireAuth(s.handleSubscribe))
	mux.HandleFunc("DELETE /notifications/subscribe", s.requireAuth(s.handleUnsubscribe))

	c := cors.New(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})
	return c.Handler(s.logRequests(mux))
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shCtx)
	})

	return g.Wait()
}
