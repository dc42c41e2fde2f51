// Package guest is the flat key-value side of client persistence: stories
// written without a session and the queue of favorite mutations made while
// offline. Both collections are stored as JSON arrays under fixed keys and
// rewritten as a whole on every change.
//
// Writes are serialized by a mutex, which is enough inside one process. Two
// processes sharing one data directory can still lose an update; that case
// is not handled.
package guest

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/storykeeper/internal/client/models"
	"github.com/dmitrijs2005/storykeeper/internal/logging"
)

const (
	KeyGuestStories   = "guestStories"
	KeyPendingActions = "pending_favorite_actions"
)

type Store struct {
	kv     KV
	logger logging.Logger
	now    func() time.Time

	mu     sync.Mutex
	lastID int64
}

func New(kv KV, logger logging.Logger) *Store {
	return &Store{kv: kv, logger: logger, now: time.Now}
}

// AppendGuestStory adds a story to the end of the guest list.
func (s *Store) AppendGuestStory(ctx context.Context, story models.Story) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := readList[models.Story](ctx, s, KeyGuestStories)
	if err != nil {
		return err
	}
	list = append(list, story)
	return s.writeList(ctx, KeyGuestStories, list)
}

// ListGuestStories returns guest stories in insertion order.
func (s *Store) ListGuestStories(ctx context.Context) ([]models.Story, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return readList[models.Story](ctx, s, KeyGuestStories)
}

// FindGuestStory returns (nil, nil) when no guest story has the id.
func (s *Store) FindGuestStory(ctx context.Context, id string) (*models.Story, error) {
	list, err := s.ListGuestStories(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, nil
}

func (s *Store) RemoveGuestStory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := readList[models.Story](ctx, s, KeyGuestStories)
	if err != nil {
		return err
	}
	list = slices.DeleteFunc(list, func(st models.Story) bool { return st.ID == id })
	return s.writeList(ctx, KeyGuestStories, list)
}

func (s *Store) ClearGuestStories(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.kv.Delete(ctx, KeyGuestStories)
}

// EnqueuePendingAction appends a favorite mutation to the queue. Any earlier
// action for the same story is dropped first, so the queue holds at most one
// action per story and the newest one wins. The returned action carries the
// assigned id, which is a unix-millis stamp strictly greater than every id
// handed out before.
func (s *Store) EnqueuePendingAction(ctx context.Context, a models.PendingFavoriteAction) (models.PendingFavoriteAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue, err := readList[models.PendingFavoriteAction](ctx, s, KeyPendingActions)
	if err != nil {
		return a, err
	}

	for _, q := range queue {
		s.lastID = max(s.lastID, q.ID)
	}
	now := s.now()
	a.ID = max(now.UnixMilli(), s.lastID+1)
	s.lastID = a.ID
	if a.Timestamp.IsZero() {
		a.Timestamp = now.UTC()
	}

	queue = slices.DeleteFunc(queue, func(q models.PendingFavoriteAction) bool { return q.StoryID == a.StoryID })
	queue = append(queue, a)

	if err := s.writeList(ctx, KeyPendingActions, queue); err != nil {
		return a, err
	}
	return a, nil
}

// ListPendingActions returns the queue in insertion order.
func (s *Store) ListPendingActions(ctx context.Context) ([]models.PendingFavoriteAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return readList[models.PendingFavoriteAction](ctx, s, KeyPendingActions)
}

// ReplacePendingActions overwrites the queue. An empty queue removes the key.
func (s *Store) ReplacePendingActions(ctx context.Context, actions []models.PendingFavoriteAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(actions) == 0 {
		return s.kv.Delete(ctx, KeyPendingActions)
	}
	return s.writeList(ctx, KeyPendingActions, actions)
}

// RemovePendingActions deletes the actions with the given ids and keeps
// everything else, including actions enqueued after the caller read the
// queue. An empty result removes the key.
func (s *Store) RemovePendingActions(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	queue, err := readList[models.PendingFavoriteAction](ctx, s, KeyPendingActions)
	if err != nil {
		return err
	}
	queue = slices.DeleteFunc(queue, func(q models.PendingFavoriteAction) bool {
		return slices.Contains(ids, q.ID)
	})

	if len(queue) == 0 {
		return s.kv.Delete(ctx, KeyPendingActions)
	}
	return s.writeList(ctx, KeyPendingActions, queue)
}

func (s *Store) ClearPendingActions(ctx context.Context) error {
	return s.ReplacePendingActions(ctx, nil)
}

// readList decodes the JSON array under key. A missing key is an empty list;
// an undecodable value is logged and treated as empty so one corrupt entry
// does not block the app.
func readList[T any](ctx context.Context, s *Store, key string) ([]T, error) {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if len(raw) == 0 {
		return []T{}, nil
	}

	var list []T
	if err := json.Unmarshal(raw, &list); err != nil {
		s.logger.Warn(ctx, "discarding undecodable guest data", "key", key, "error", err)
		return []T{}, nil
	}
	if list == nil {
		list = []T{}
	}
	return list, nil
}

func (s *Store) writeList(ctx context.Context, key string, list any) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
