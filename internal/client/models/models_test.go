package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStoryID(t *testing.T) {
	assert.Equal(t, StoryID{Value: "guest_1_ab", Origin: OriginGuest}, ParseStoryID("guest_1_ab"))
	assert.Equal(t, StoryID{Value: "story-FvU4u0Vp2S3PMsFg", Origin: OriginServer}, ParseStoryID("story-FvU4u0Vp2S3PMsFg"))
	assert.False(t, ParseStoryID("myguest_1").IsGuest())
}

func TestNewGuestID_FormatAndRoundTrip(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	id, err := NewGuestID(now)
	require.NoError(t, err)
	require.True(t, id.IsGuest())
	require.True(t, strings.HasPrefix(id.Value, "guest_1700000000123_"))

	parts := strings.Split(id.Value, "_")
	require.Len(t, parts, 3)
	assert.Len(t, parts[2], 10)

	assert.Equal(t, id, ParseStoryID(id.Value))

	other, err := NewGuestID(now)
	require.NoError(t, err)
	assert.NotEqual(t, id.Value, other.Value)
}

func TestSortNewestFirst(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	stories := []Story{
		{ID: "b", CreatedAt: base},
		{ID: "c", CreatedAt: base.Add(time.Hour)},
		{ID: "a", CreatedAt: base},
	}
	SortNewestFirst(stories)
	assert.Equal(t, []string{"c", "a", "b"}, []string{stories[0].ID, stories[1].ID, stories[2].ID})
}

func TestSortFavoritesNewestFirst(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	favs := []Favorite{
		{Story: Story{ID: "old"}, AddedAt: base},
		{Story: Story{ID: "new"}, AddedAt: base.Add(time.Minute)},
	}
	SortFavoritesNewestFirst(favs)
	assert.Equal(t, "new", favs[0].ID)
}

func TestWithLocation(t *testing.T) {
	stories := []Story{
		{ID: "both", Lat: Float(-6.2), Lon: Float(106.8)},
		{ID: "lat-only", Lat: Float(1)},
		{ID: "none"},
	}
	got := WithLocation(stories)
	require.Len(t, got, 1)
	assert.Equal(t, "both", got[0].ID)
}

func TestFavorite_JSONFlattensStory(t *testing.T) {
	f := Favorite{
		Story:   Story{ID: "s1", Name: "Bob", Origin: OriginServer},
		AddedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	b, err := json.Marshal(f)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, "s1", raw["id"])
	assert.Equal(t, "server", raw["origin"])
	assert.Equal(t, "2024-01-02T03:04:05Z", raw["addedAt"])
}

func TestOfflineDraft_Input(t *testing.T) {
	d := OfflineDraft{TempID: "t", Description: "Test", Photo: []byte{1}, PhotoName: "p.jpg", Lat: Float(1), Lon: Float(2)}
	in := d.Input()
	assert.Equal(t, "Test", in.Description)
	assert.Equal(t, []byte{1}, in.Photo)
	assert.Equal(t, "p.jpg", in.PhotoName)
	assert.Equal(t, 1.0, *in.Lat)
	assert.Equal(t, 2.0, *in.Lon)
}
