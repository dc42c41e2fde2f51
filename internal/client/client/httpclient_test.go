package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/storykeeper/internal/client/models"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, token string, h http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewHTTPClient(srv.URL+"/v1/", staticToken(token), 2*time.Second)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLogin_SendsCredentialsAndDecodesResult(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"email": "a@b.c", "password": "secret123"}, body)

		writeJSON(w, http.StatusOK, map[string]any{
			"error":       false,
			"message":     "success",
			"loginResult": map[string]string{"userId": "user-1", "name": "Dimas", "token": "tok"},
		})
	})

	res, err := c.Login(context.Background(), "a@b.c", "secret123")
	require.NoError(t, err)
	assert.False(t, res.Error)
	require.NotNil(t, res.LoginResult)
	assert.Equal(t, LoginResult{UserID: "user-1", Name: "Dimas", Token: "tok"}, *res.LoginResult)
}

func TestLogin_APIErrorIsResultNotError(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": true, "message": "Invalid password"})
	})

	res, err := c.Login(context.Background(), "a@b.c", "wrongpass")
	require.NoError(t, err)
	assert.True(t, res.Error)
	assert.Equal(t, "Invalid password", res.Message)
}

func TestLogin_MissingResultIsMalformed(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"error": false})
	})

	_, err := c.Login(context.Background(), "a@b.c", "secret123")
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestRegister(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/register", r.URL.Path)
		writeJSON(w, http.StatusCreated, map[string]any{"error": false, "message": "User Created"})
	})

	res, err := c.Register(context.Background(), "Dimas", "a@b.c", "secret123")
	require.NoError(t, err)
	assert.Equal(t, Result{Error: false, Message: "User Created"}, res)
}

func TestListStories_BearerAndQuery(t *testing.T) {
	c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "/v1/stories", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("size"))
		assert.Equal(t, "1", r.URL.Query().Get("location"))

		writeJSON(w, http.StatusOK, map[string]any{
			"error": false,
			"listStory": []map[string]any{
				{"id": "story-1", "name": "A", "description": "d", "photoUrl": "u", "createdAt": "2024-01-02T03:04:05Z", "lat": 1.5, "lon": 2.5},
				{"id": "story-2", "name": "B", "createdAt": "2024-01-01T00:00:00Z", "lat": nil, "lon": nil},
			},
		})
	})

	res, err := c.ListStories(context.Background(), ListOptions{Page: 2, Size: 10, Location: true})
	require.NoError(t, err)
	require.Len(t, res.ListStory, 2)
	assert.Equal(t, models.OriginServer, res.ListStory[0].Origin)
	assert.True(t, res.ListStory[0].HasLocation())
	assert.False(t, res.ListStory[1].HasLocation())
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), res.ListStory[0].CreatedAt)
}

func TestGetStory_EscapesID(t *testing.T) {
	c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/stories/story-abc", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{"error": false, "story": map[string]any{"id": "story-abc"}})
	})

	res, err := c.GetStory(context.Background(), "story-abc")
	require.NoError(t, err)
	require.NotNil(t, res.Story)
	assert.Equal(t, models.OriginServer, res.Story.Origin)
}

func TestCreateStory_Multipart(t *testing.T) {
	c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "hello", r.FormValue("description"))
		assert.Equal(t, "-6.2", r.FormValue("lat"))
		assert.Equal(t, "106.8", r.FormValue("lon"))

		f, hdr, err := r.FormFile("photo")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "cat.jpg", hdr.Filename)
		data, _ := io.ReadAll(f)
		assert.Equal(t, []byte{1, 2, 3}, data)

		writeJSON(w, http.StatusCreated, map[string]any{"error": false, "message": "Story created successfully"})
	})

	res, err := c.CreateStory(context.Background(), models.StoryInput{
		Description: "hello",
		Photo:       []byte{1, 2, 3},
		PhotoName:   "cat.jpg",
		Lat:         models.Float(-6.2),
		Lon:         models.Float(106.8),
	})
	require.NoError(t, err)
	assert.False(t, res.Error)
	assert.Nil(t, res.Story)
}

func TestCreateStory_OmitsMissingCoordinates(t *testing.T) {
	c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, hasLat := r.MultipartForm.Value["lat"]
		assert.False(t, hasLat)
		writeJSON(w, http.StatusCreated, map[string]any{"error": false})
	})

	_, err := c.CreateStory(context.Background(), models.StoryInput{Description: "x", Photo: []byte{1}})
	require.NoError(t, err)
}

func TestServerError_IsUnavailable(t *testing.T) {
	c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.ListStories(context.Background(), ListOptions{})
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestUndecodableBody_IsMalformed(t *testing.T) {
	c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>oops</html>"))
	})

	_, err := c.GetStory(context.Background(), "x")
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestTransportFailure_IsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := NewHTTPClient(base, nil, time.Second)
	_, err := c.ListStories(context.Background(), ListOptions{})
	require.ErrorIs(t, err, ErrUnavailable)
	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestCanceledContext_NotMappedToUnavailable(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"error": false})
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Register(ctx, "a", "b", "c")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.Is(err, ErrUnavailable))
}

func TestPing_AnyStatusIsReachable(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusNotFound)
	})

	require.NoError(t, c.Ping(context.Background()))
}

func TestPushSubscription(t *testing.T) {
	var methods []string
	c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		assert.Equal(t, "/v1/notifications/subscribe", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://push.example/1", body["endpoint"])
		writeJSON(w, http.StatusOK, map[string]any{"error": false})
	})
	ctx := context.Background()

	res, err := c.SubscribePush(ctx, PushSubscription{Endpoint: "https://push.example/1", Keys: PushKeys{P256dh: "p", Auth: "a"}})
	require.NoError(t, err)
	assert.False(t, res.Error)

	res, err = c.UnsubscribePush(ctx, "https://push.example/1")
	require.NoError(t, err)
	assert.False(t, res.Error)

	assert.Equal(t, []string{http.MethodPost, http.MethodDelete}, methods)
}
