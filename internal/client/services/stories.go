package services

import (
	"context"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/storykeeper/internal/client/client"
	"github.com/dmitrijs2005/storykeeper/internal/client/events"
	"github.com/dmitrijs2005/storykeeper/internal/client/models"
	"github.com/dmitrijs2005/storykeeper/internal/client/photo"
	"github.com/dmitrijs2005/storykeeper/internal/common"
)

// SubmitResult is the outcome of a story submission. Guest and Offline tell
// where the story ended up when it did not reach the API.
type SubmitResult struct {
	Error   bool
	Message string
	Story   *models.Story
	Guest   bool
	Offline bool
}

type StoriesResult struct {
	Error   bool
	Message string
	Stories []models.Story
}

type StoryResult struct {
	Error   bool
	Message string
	Story   *models.Story
}

type StoryService interface {
	Submit(ctx context.Context, in models.StoryInput) SubmitResult
	List(ctx context.Context, opts client.ListOptions) StoriesResult
	Detail(ctx context.Context, id string) StoryResult
	MapStories(ctx context.Context) StoriesResult
	SyncOfflineStories(ctx context.Context) int

	Drafts(ctx context.Context) []models.OfflineDraft
	GuestStories(ctx context.Context) []models.Story
	DeleteGuestStory(ctx context.Context, id string) bool
	ClearGuestStories(ctx context.Context) bool
}

// DefaultPageSize is used when the caller does not ask for a page size.
const DefaultPageSize = 10

type storyService struct {
	deps Deps
	sync singleflight.Group
}

func NewStoryService(deps Deps) StoryService {
	return &storyService{deps: deps.withDefaults()}
}

func (s *storyService) Submit(ctx context.Context, in models.StoryInput) SubmitResult {
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" {
		return SubmitResult{Error: true, Message: "Description is required"}
	}
	if len(in.Photo) > 0 {
		in.Photo = photo.Prepare(in.Photo)
		if len(in.Photo) > common.MaxPhotoSize {
			return SubmitResult{Error: true, Message: "Photo must be 1MB or smaller"}
		}
	}

	// Guest stories stay local, so the photo is optional there.
	if !s.deps.Session.IsLoggedIn() {
		return s.saveGuestStory(ctx, in)
	}
	if len(in.Photo) == 0 {
		return SubmitResult{Error: true, Message: "Photo is required"}
	}

	if !s.deps.Online.IsOnline() {
		return s.saveDraft(ctx, in, "Story saved offline. Will sync when online.")
	}

	res, err := s.deps.Client.CreateStory(ctx, in)
	if err != nil {
		s.deps.Logger.Warn(ctx, "story upload failed, keeping it as a draft", "error", err)
		return s.saveDraft(ctx, in, "Story saved offline due to network error. Will sync when online.")
	}
	if res.Error {
		return SubmitResult{Error: true, Message: res.Message}
	}

	s.created(ctx, res)
	return SubmitResult{Error: false, Message: res.Message, Story: res.Story}
}

// created write-through caches a story accepted by the API and announces it.
func (s *storyService) created(ctx context.Context, res client.StoryResponse) {
	if res.Story != nil {
		if err := s.deps.Store.PutStory(ctx, res.Story); err != nil {
			s.deps.Logger.Warn(ctx, "failed to cache created story", "id", res.Story.ID, "error", err)
		}
	}
	s.deps.Events.StorySubmitted.Emit(events.StorySubmitted{Story: res.Story, Message: res.Message})
}

func (s *storyService) saveGuestStory(ctx context.Context, in models.StoryInput) SubmitResult {
	now := s.deps.Now().UTC()
	id, err := models.NewGuestID(now)
	if err != nil {
		s.deps.Logger.Error(ctx, "failed to create guest id", "error", err)
		return SubmitResult{Error: true, Message: "Failed to save story locally."}
	}

	var photoURL string
	if len(in.Photo) > 0 {
		photoURL = photo.DataURL(in.Photo, photo.ThumbSide)
	}

	story := models.Story{
		ID:          id.Value,
		Name:        models.GuestAuthorName,
		Description: in.Description,
		PhotoURL:    photoURL,
		Lat:         in.Lat,
		Lon:         in.Lon,
		CreatedAt:   now,
		Origin:      id.Origin,
	}

	if err := s.deps.Guest.AppendGuestStory(ctx, story); err != nil {
		s.deps.Logger.Error(ctx, "failed to save guest story", "error", err)
		return SubmitResult{Error: true, Message: "Failed to save story locally."}
	}
	if err := s.deps.Store.PutStory(ctx, &story); err != nil {
		s.deps.Logger.Warn(ctx, "failed to mirror guest story", "id", story.ID, "error", err)
	}

	return SubmitResult{Error: false, Message: "Story saved locally as guest user.", Story: &story, Guest: true}
}

func (s *storyService) saveDraft(ctx context.Context, in models.StoryInput, message string) SubmitResult {
	info := s.deps.Session.Info()
	draft := &models.OfflineDraft{
		Description: in.Description,
		Photo:       in.Photo,
		PhotoName:   in.PhotoName,
		Lat:         in.Lat,
		Lon:         in.Lon,
		CreatedAt:   s.deps.Now().UTC(),
		UserID:      info.UserID,
		UserName:    info.Name,
	}

	if _, err := s.deps.Store.PutOfflineDraft(ctx, draft); err != nil {
		s.deps.Logger.Error(ctx, "failed to save offline draft", "error", err)
		return SubmitResult{Error: true, Message: "Failed to save story offline."}
	}
	return SubmitResult{Error: false, Message: message, Offline: true}
}

func (s *storyService) List(ctx context.Context, opts client.ListOptions) StoriesResult {
	guest := s.GuestStories(ctx)

	if !s.deps.Online.IsOnline() {
		stories := append(guest, s.cachedServerStories(ctx)...)
		models.SortNewestFirst(stories)
		return StoriesResult{Message: "Stories retrieved from cache and local storage", Stories: stories}
	}

	if !s.deps.Session.IsLoggedIn() {
		models.SortNewestFirst(guest)
		return StoriesResult{Message: "Stories retrieved successfully", Stories: guest}
	}

	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.Size <= 0 {
		opts.Size = DefaultPageSize
	}

	res, err := s.deps.Client.ListStories(ctx, opts)
	if err != nil || res.Error {
		reason := res.Message
		if err != nil {
			reason = err.Error()
		}
		s.deps.Logger.Warn(ctx, "fetching stories failed, using local data", "reason", reason)

		stories := append(guest, s.cachedServerStories(ctx)...)
		if len(stories) == 0 {
			return StoriesResult{Error: true, Message: "Failed to fetch stories: " + reason, Stories: []models.Story{}}
		}
		models.SortNewestFirst(stories)
		return StoriesResult{Message: "Stories retrieved from cache and local storage (network error)", Stories: stories}
	}

	for i := range res.ListStory {
		if err := s.deps.Store.PutStory(ctx, &res.ListStory[i]); err != nil {
			s.deps.Logger.Warn(ctx, "failed to cache story", "id", res.ListStory[i].ID, "error", err)
		}
	}

	stories := append(guest, res.ListStory...)
	models.SortNewestFirst(stories)
	return StoriesResult{Message: "Stories retrieved successfully", Stories: stories}
}

// cachedServerStories returns durable-store stories except guest mirrors,
// which are already part of the guest list.
func (s *storyService) cachedServerStories(ctx context.Context) []models.Story {
	cached, err := s.deps.Store.ListStories(ctx)
	if err != nil {
		s.deps.Logger.Warn(ctx, "failed to read cached stories", "error", err)
		return nil
	}
	out := make([]models.Story, 0, len(cached))
	for _, st := range cached {
		if !st.IsGuest() {
			out = append(out, st)
		}
	}
	return out
}

func (s *storyService) Detail(ctx context.Context, id string) StoryResult {
	ref := models.ParseStoryID(id)

	if ref.IsGuest() {
		if st := s.findGuest(ctx, ref.Value); st != nil {
			return StoryResult{Message: "Guest story retrieved from local storage", Story: st}
		}
		return StoryResult{Error: true, Message: "Story not found"}
	}

	if !s.deps.Online.IsOnline() {
		if st := s.findCached(ctx, ref.Value); st != nil {
			return StoryResult{Message: "Story retrieved from cache", Story: st}
		}
		return StoryResult{Error: true, Message: "Story not available offline"}
	}

	if !s.deps.Session.IsLoggedIn() {
		if st := s.findCached(ctx, ref.Value); st != nil {
			return StoryResult{Message: "Story retrieved from cache", Story: st}
		}
		return StoryResult{Error: true, Message: "Story not found"}
	}

	res, err := s.deps.Client.GetStory(ctx, ref.Value)
	if err != nil {
		s.deps.Logger.Warn(ctx, "fetching story failed, using local data", "id", ref.Value, "error", err)
		if st := s.findCached(ctx, ref.Value); st != nil {
			return StoryResult{Message: "Story retrieved from cache (network error)", Story: st}
		}
		if st := s.findGuest(ctx, ref.Value); st != nil {
			return StoryResult{Message: "Guest story retrieved from local storage", Story: st}
		}
		return StoryResult{Error: true, Message: "Failed to fetch story detail: " + err.Error()}
	}
	if res.Error || res.Story == nil {
		return StoryResult{Error: true, Message: res.Message}
	}

	if err := s.deps.Store.PutStory(ctx, res.Story); err != nil {
		s.deps.Logger.Warn(ctx, "failed to cache story", "id", res.Story.ID, "error", err)
	}
	return StoryResult{Message: res.Message, Story: res.Story}
}

func (s *storyService) findCached(ctx context.Context, id string) *models.Story {
	st, err := s.deps.Store.GetStory(ctx, id)
	if err != nil {
		s.deps.Logger.Warn(ctx, "failed to read cached story", "id", id, "error", err)
		return nil
	}
	return st
}

func (s *storyService) findGuest(ctx context.Context, id string) *models.Story {
	st, err := s.deps.Guest.FindGuestStory(ctx, id)
	if err != nil {
		s.deps.Logger.Warn(ctx, "failed to read guest story", "id", id, "error", err)
		return nil
	}
	return st
}

// MapStories lists stories with coordinates, for the map view.
func (s *storyService) MapStories(ctx context.Context) StoriesResult {
	res := s.List(ctx, client.ListOptions{Page: 1, Size: DefaultPageSize, Location: true})
	res.Stories = models.WithLocation(res.Stories)
	return res
}

// SyncOfflineStories submits every offline draft and deletes the accepted
// ones. It returns how many were accepted; nothing happens while offline or
// without a session. Concurrent calls share a single pass so a draft is
// uploaded once.
func (s *storyService) SyncOfflineStories(ctx context.Context) int {
	v, _, _ := s.sync.Do("drafts", func() (any, error) {
		return s.syncOfflineStories(ctx), nil
	})
	return v.(int)
}

func (s *storyService) syncOfflineStories(ctx context.Context) int {
	if !s.deps.Online.IsOnline() || !s.deps.Session.IsLoggedIn() {
		return 0
	}

	drafts, err := s.deps.Store.ListOfflineDrafts(ctx)
	if err != nil {
		s.deps.Logger.Warn(ctx, "failed to list offline drafts", "error", err)
		return 0
	}

	synced := 0
	for _, d := range drafts {
		res, err := s.deps.Client.CreateStory(ctx, d.Input())
		if err != nil || res.Error {
			s.deps.Logger.Warn(ctx, "draft not synced", "tempId", d.TempID, "error", err, "message", res.Message)
			continue
		}

		if err := s.deps.Store.DeleteOfflineDraft(ctx, d.TempID); err != nil {
			s.deps.Logger.Error(ctx, "synced draft not deleted", "tempId", d.TempID, "error", err)
		}
		s.created(ctx, res)
		synced++
	}

	if synced > 0 {
		s.deps.Logger.Info(ctx, "offline stories synced", "count", synced)
	}
	return synced
}

func (s *storyService) Drafts(ctx context.Context) []models.OfflineDraft {
	drafts, err := s.deps.Store.ListOfflineDrafts(ctx)
	if err != nil {
		s.deps.Logger.Warn(ctx, "failed to list offline drafts", "error", err)
		return []models.OfflineDraft{}
	}
	return drafts
}

func (s *storyService) GuestStories(ctx context.Context) []models.Story {
	list, err := s.deps.Guest.ListGuestStories(ctx)
	if err != nil {
		s.deps.Logger.Warn(ctx, "failed to read guest stories", "error", err)
		return []models.Story{}
	}
	return list
}

func (s *storyService) DeleteGuestStory(ctx context.Context, id string) bool {
	if err := s.deps.Guest.RemoveGuestStory(ctx, id); err != nil {
		s.deps.Logger.Warn(ctx, "failed to delete guest story", "id", id, "error", err)
		return false
	}
	if err := s.deps.Store.DeleteStory(ctx, id); err != nil {
		s.deps.Logger.Warn(ctx, "failed to delete guest mirror", "id", id, "error", err)
	}
	return true
}

func (s *storyService) ClearGuestStories(ctx context.Context) bool {
	guests := s.GuestStories(ctx)
	if err := s.deps.Guest.ClearGuestStories(ctx); err != nil {
		s.deps.Logger.Warn(ctx, "failed to clear guest stories", "error", err)
		return false
	}
	for _, g := range guests {
		if err := s.deps.Store.DeleteStory(ctx, g.ID); err != nil {
			s.deps.Logger.Warn(ctx, "failed to delete guest mirror", "id", g.ID, "error", err)
		}
	}
	return true
}
