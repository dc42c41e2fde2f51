package services

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/storykeeper/internal/client/client"
	"github.com/dmitrijs2005/storykeeper/internal/client/events"
	"github.com/dmitrijs2005/storykeeper/internal/client/guest"
	"github.com/dmitrijs2005/storykeeper/internal/client/models"
	"github.com/dmitrijs2005/storykeeper/internal/client/session"
	"github.com/dmitrijs2005/storykeeper/internal/client/store"
	"github.com/dmitrijs2005/storykeeper/internal/logging"
)

// ---- fake client ----

type fakeClient struct {
	mu    sync.Mutex
	calls map[string]int

	registerRes client.Result
	registerErr error

	loginRes client.LoginResponse
	loginErr error

	listRes client.StoriesResponse
	listErr error

	getRes client.StoryResponse
	getErr error

	createRes   client.StoryResponse
	createErr   error
	createDelay time.Duration
	created     []models.StoryInput

	pingErr error
}

func newFakeClient() *fakeClient {
	return &fakeClient{calls: map[string]int{}}
}

func (f *fakeClient) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeClient) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) Register(ctx context.Context, name, email, password string) (client.Result, error) {
	f.hit("register")
	return f.registerRes, f.registerErr
}

func (f *fakeClient) Login(ctx context.Context, email, password string) (client.LoginResponse, error) {
	f.hit("login")
	return f.loginRes, f.loginErr
}

func (f *fakeClient) ListStories(ctx context.Context, opts client.ListOptions) (client.StoriesResponse, error) {
	f.hit("list")
	return f.listRes, f.listErr
}

func (f *fakeClient) GetStory(ctx context.Context, id string) (client.StoryResponse, error) {
	f.hit("get")
	return f.getRes, f.getErr
}

func (f *fakeClient) CreateStory(ctx context.Context, in models.StoryInput) (client.StoryResponse, error) {
	f.hit("create")
	if f.createDelay > 0 {
		time.Sleep(f.createDelay)
	}
	f.mu.Lock()
	f.created = append(f.created, in)
	f.mu.Unlock()
	return f.createRes, f.createErr
}

func (f *fakeClient) SubscribePush(ctx context.Context, sub client.PushSubscription) (client.Result, error) {
	f.hit("subscribe")
	return client.Result{}, nil
}

func (f *fakeClient) UnsubscribePush(ctx context.Context, endpoint string) (client.Result, error) {
	f.hit("unsubscribe")
	return client.Result{}, nil
}

func (f *fakeClient) Ping(ctx context.Context) error { return f.pingErr }

// ---- connectivity flag ----

type onlineFlag struct{ v atomic.Bool }

func (o *onlineFlag) IsOnline() bool { return o.v.Load() }
func (o *onlineFlag) set(v bool)     { o.v.Store(v) }

// ---- fixture ----

type fixture struct {
	client  *fakeClient
	store   *store.Store
	guest   *guest.Store
	kv      *guest.MemoryKV
	session *session.Session
	online  *onlineFlag
	bus     *events.Bus
	deps    Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	kv := guest.NewMemoryKV()
	st := store.New(filepath.Join(t.TempDir(), "store.db"), logging.NewDiscard())
	t.Cleanup(func() { _ = st.Close() })

	fx := &fixture{
		client:  newFakeClient(),
		store:   st,
		guest:   guest.New(kv, logging.NewDiscard()),
		kv:      kv,
		session: session.New(kv),
		online:  &onlineFlag{},
		bus:     &events.Bus{},
	}
	fx.deps = Deps{
		Client:  fx.client,
		Store:   fx.store,
		Guest:   fx.guest,
		Session: fx.session,
		Online:  fx.online,
		Events:  fx.bus,
		Logger:  logging.NewDiscard(),
	}
	return fx
}

func (fx *fixture) login(t *testing.T) {
	t.Helper()
	require.NoError(t, fx.session.Set(context.Background(), session.Info{Token: "t", UserID: "1", Name: "Bob"}))
}

// jpegish is a non-image payload; photo preparation passes it through.
var jpegish = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}
