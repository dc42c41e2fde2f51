package services

import (
	"context"
	"database/sql"
	"sync"

	"github.com/dmitrijs2005/storykeeper/internal/common"
	"github.com/dmitrijs2005/storykeeper/internal/dbx"
	"github.com/dmitrijs2005/storykeeper/internal/server/models"
	"github.com/dmitrijs2005/storykeeper/internal/server/repositories/stories"
	"github.com/dmitrijs2005/storykeeper/internal/server/repositories/subscriptions"
	"github.com/dmitrijs2005/storykeeper/internal/server/repositories/users"
)

type fakeRM struct {
	users   *fakeUsers
	stories *fakeStories
	subs    *fakeSubs
}

func newFakeRM() *fakeRM {
	return &fakeRM{
		users:   &fakeUsers{byEmail: map[string]*models.User{}},
		stories: &fakeStories{byID: map[string]*models.Story{}},
		subs:    &fakeSubs{byEndpoint: map[string]*models.PushSubscription{}},
	}
}

func (f *fakeRM) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (f *fakeRM) Users(dbx.DBTX) users.Repository                 { return f.users }
func (f *fakeRM) Stories(dbx.DBTX) stories.Repository             { return f.stories }
func (f *fakeRM) Subscriptions(dbx.DBTX) subscriptions.Repository { return f.subs }

type fakeUsers struct {
	byEmail   map[string]*models.User
	createErr error
	getErr    error
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, common.ErrEmailTaken
	}
	c := *u
	c.ID = "user-" + u.Email
	f.byEmail[u.Email] = &c
	return &c, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

type fakeStories struct {
	byID     map[string]*models.Story
	filters  []stories.ListFilter
	listOut  []*models.Story
	listErr  error
	authorFn func(userID string) string
}

func (f *fakeStories) Create(_ context.Context, s *models.Story) error {
	c := *s
	if f.authorFn != nil {
		c.Name = f.authorFn(s.UserID)
	}
	f.byID[s.ID] = &c
	return nil
}

func (f *fakeStories) GetByID(_ context.Context, id string) (*models.Story, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return s, nil
}

func (f *fakeStories) List(_ context.Context, lf stories.ListFilter) ([]*models.Story, error) {
	f.filters = append(f.filters, lf)
	return f.listOut, f.listErr
}

type fakeSubs struct {
	byEndpoint map[string]*models.PushSubscription
}

func (f *fakeSubs) Upsert(_ context.Context, s *models.PushSubscription) error {
	c := *s
	f.byEndpoint[s.Endpoint] = &c
	return nil
}

func (f *fakeSubs) Delete(_ context.Context, userID, endpoint string) error {
	s, ok := f.byEndpoint[endpoint]
	if !ok || s.UserID != userID {
		return common.ErrorNotFound
	}
	delete(f.byEndpoint, endpoint)
	return nil
}

type fakePhotos struct {
	mu     sync.Mutex
	data   map[string][]byte
	types  map[string]string
	putErr error
	urlErr error
}

func newFakePhotos() *fakePhotos {
	return &fakePhotos{data: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakePhotos) Put(_ context.Context, key string, data []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.data[key] = data
	f.types[key] = contentType
	return nil
}

func (f *fakePhotos) URL(_ context.Context, key string) (string, error) {
	if f.urlErr != nil {
		return "", f.urlErr
	}
	return "https://photos.test/" + key, nil
}
