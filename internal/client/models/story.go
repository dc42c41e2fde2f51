// Package models defines client-side data models of the storykeeper core:
// stories, favorites, offline drafts, pending favorite actions and the
// submission bundle handed over by the capture UI.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/storykeeper/internal/common"
)

// Origin tags where a story came from. All guest/server dispatch is done on
// this tag; the id prefix is only parsed by ParseStoryID.
type Origin string

const (
	OriginServer Origin = "server"
	OriginGuest  Origin = "guest"
)

// GuestIDPrefix is the wire prefix of locally generated guest story ids.
const GuestIDPrefix = "guest_"

// GuestAuthorName is shown as the author of stories written without a session.
const GuestAuthorName = "Guest User"

// StoryID is an identifier together with its origin tag.
type StoryID struct {
	Value  string
	Origin Origin
}

func (id StoryID) String() string { return id.Value }

// IsGuest reports whether the id belongs to a locally authored guest story.
func (id StoryID) IsGuest() bool { return id.Origin == OriginGuest }

// ParseStoryID turns a raw id (from the UI or from storage) into a tagged
// StoryID. This is the single place where the guest prefix is inspected.
func ParseStoryID(raw string) StoryID {
	if strings.HasPrefix(raw, GuestIDPrefix) {
		return StoryID{Value: raw, Origin: OriginGuest}
	}
	return StoryID{Value: raw, Origin: OriginServer}
}

// NewGuestID builds "guest_<unixmillis>_<random>".
func NewGuestID(now time.Time) (StoryID, error) {
	suffix, err := common.MakeRandHexString(5)
	if err != nil {
		return StoryID{}, fmt.Errorf("guest id: %w", err)
	}
	return StoryID{
		Value:  fmt.Sprintf("%s%d_%s", GuestIDPrefix, now.UnixMilli(), suffix),
		Origin: OriginGuest,
	}, nil
}

// Story is a published (server) or locally authored (guest) story.
type Story struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PhotoURL    string    `json:"photoUrl"`
	Lat         *float64  `json:"lat"`
	Lon         *float64  `json:"lon"`
	CreatedAt   time.Time `json:"createdAt"`
	UserID      string    `json:"userId,omitempty"`
	Origin      Origin    `json:"origin"`
}

// Ref returns the tagged identifier of the story.
func (s Story) Ref() StoryID {
	return StoryID{Value: s.ID, Origin: s.Origin}
}

// IsGuest reports whether the story exists only on this device.
func (s Story) IsGuest() bool { return s.Origin == OriginGuest }

// HasLocation reports whether both coordinates are set.
func (s Story) HasLocation() bool { return s.Lat != nil && s.Lon != nil }

// SortNewestFirst orders stories by CreatedAt descending, ties by id so the
// order is stable across calls.
func SortNewestFirst(stories []Story) {
	sortByTime(stories, func(s Story) time.Time { return s.CreatedAt }, func(s Story) string { return s.ID })
}

// WithLocation keeps only stories that carry both coordinates.
func WithLocation(stories []Story) []Story {
	out := make([]Story, 0, len(stories))
	for _, s := range stories {
		if s.HasLocation() {
			out = append(out, s)
		}
	}
	return out
}

// Float returns a pointer to v, for optional coordinates.
func Float(v float64) *float64 { return &v }
