package services

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/storykeeper/internal/common"
	"github.com/dmitrijs2005/storykeeper/internal/server/models"
	"github.com/dmitrijs2005/storykeeper/internal/server/photos"
	"github.com/dmitrijs2005/storykeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/storykeeper/internal/server/repositories/stories"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// StoryView is a story as the API returns it, with a resolved photo URL.
type StoryView struct {
	ID          string
	Name        string
	Description string
	PhotoURL    string
	Lat         *float64
	Lon         *float64
	CreatedAt   time.Time
}

type CreateStoryInput struct {
	Description string
	Photo       []byte
	Lat         *float64
	Lon         *float64
}

type ListStoriesInput struct {
	Page     int
	Size     int
	Location bool
}

type StoryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	photos      photos.Storage
	now         func() time.Time
}

func NewStoryService(db *sql.DB, m repomanager.RepositoryManager, p photos.Storage) *StoryService {
	return &StoryService{db: db, repomanager: m, photos: p, now: time.Now}
}

// Create uploads the photo and stores the story. The photo goes first so a
// stored row always points at an existing object.
func (s *StoryService) Create(ctx context.Context, userID string, in CreateStoryInput) (*StoryView, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", common.ErrValidation)
	}
	if len(in.Photo) == 0 {
		return nil, fmt.Errorf("%w: photo is required", common.ErrValidation)
	}
	if len(in.Photo) > common.MaxPhotoSize {
		return nil, fmt.Errorf("%w: photo exceeds %d bytes", common.ErrValidation, common.MaxPhotoSize)
	}
	contentType := http.DetectContentType(in.Photo)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: photo must be an image", common.ErrValidation)
	}
	if err := validateLocation(in.Lat, in.Lon); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	key := photos.NewKey(now)
	if err := s.photos.Put(ctx, key, in.Photo, contentType); err != nil {
		return nil, fmt.Errorf("error storing photo: %w", err)
	}

	story := &models.Story{
		ID:          "story-" + uuid.NewString(),
		UserID:      userID,
		Description: description,
		PhotoKey:    key,
		Lat:         in.Lat,
		Lon:         in.Lon,
		CreatedAt:   now,
	}
	if err := s.repomanager.Stories(s.db).Create(ctx, story); err != nil {
		return nil, fmt.Errorf("error creating story: %w", err)
	}

	return s.Get(ctx, story.ID)
}

func (s *StoryService) Get(ctx context.Context, id string) (*StoryView, error) {
	story, err := s.repomanager.Stories(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, story)
}

// List returns one page of stories, newest first. Page numbers start at 1.
func (s *StoryService) List(ctx context.Context, in ListStoriesInput) ([]*StoryView, error) {
	page, size := in.Page, in.Size
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	list, err := s.repomanager.Stories(s.db).List(ctx, stories.ListFilter{
		Limit:        size,
		Offset:       (page - 1) * size,
		WithLocation: in.Location,
	})
	if err != nil {
		return nil, err
	}

	out := make([]*StoryView, 0, len(list))
	for _, st := range list {
		v, err := s.view(ctx, st)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *StoryService) view(ctx context.Context, st *models.Story) (*StoryView, error) {
	url, err := s.photos.URL(ctx, st.PhotoKey)
	if err != nil {
		return nil, fmt.Errorf("error resolving photo url: %w", err)
	}
	return &StoryView{
		ID:          st.ID,
		Name:        st.Name,
		Description: st.Description,
		PhotoURL:    url,
		Lat:         st.Lat,
		Lon:         st.Lon,
		CreatedAt:   st.CreatedAt,
	}, nil
}

func validateLocation(lat, lon *float64) error {
	if (lat == nil) != (lon == nil) {
		return fmt.Errorf("%w: lat and lon must be given together", common.ErrValidation)
	}
	if lat == nil {
		return nil
	}
	if *lat < -90 || *lat > 90 {
		return fmt.Errorf("%w: lat out of range", common.ErrValidation)
	}
	if *lon < -180 || *lon > 180 {
		return fmt.Errorf("%w: lon out of range", common.ErrValidation)
	}
	return nil
}
