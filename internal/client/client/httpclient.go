package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/storykeeper/internal/client/models"
	"github.com/dmitrijs2005/storykeeper/internal/common"
)

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// bearerTransport injects the Authorization header from a TokenSource.
type bearerTransport struct {
	base   http.RoundTripper
	tokens TokenSource
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := ""
	if t.tokens != nil {
		token = t.tokens.Token()
	}
	if token == "" {
		return t.base.RoundTrip(req)
	}

	r := req.Clone(req.Context())
	r.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	return t.base.RoundTrip(r)
}

// NewHTTPClient returns a client for the API rooted at baseURL
// (e.g. https://story-api.dicoding.dev/v1).
func NewHTTPClient(baseURL string, tokens TokenSource, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: &bearerTransport{base: http.DefaultTransport, tokens: tokens},
		},
	}
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) Register(ctx context.Context, name, email, password string) (Result, error) {
	body := map[string]string{"name": name, "email": email, "password": password}

	var res Result
	err := c.doJSON(ctx, http.MethodPost, "/register", body, &res)
	return res, err
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	body := map[string]string{"email": email, "password": password}

	var res LoginResponse
	err := c.doJSON(ctx, http.MethodPost, "/login", body, &res)
	if err == nil && !res.Error && res.LoginResult == nil {
		return res, fmt.Errorf("%w: login result missing", ErrMalformedResponse)
	}
	return res, err
}

func (c *HTTPClient) ListStories(ctx context.Context, opts ListOptions) (StoriesResponse, error) {
	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Size > 0 {
		q.Set("size", strconv.Itoa(opts.Size))
	}
	if opts.Location {
		q.Set("location", "1")
	} else {
		q.Set("location", "0")
	}

	var res StoriesResponse
	if err := c.do(ctx, http.MethodGet, "/stories?"+q.Encode(), "", nil, &res); err != nil {
		return res, err
	}
	for i := range res.ListStory {
		res.ListStory[i].Origin = models.OriginServer
	}
	return res, nil
}

func (c *HTTPClient) GetStory(ctx context.Context, id string) (StoryResponse, error) {
	var res StoryResponse
	if err := c.do(ctx, http.MethodGet, "/stories/"+url.PathEscape(id), "", nil, &res); err != nil {
		return res, err
	}
	if res.Story != nil {
		res.Story.Origin = models.OriginServer
	}
	return res, nil
}

// CreateStory uploads a story as multipart/form-data with the fields
// description, photo and the optional lat and lon.
func (c *HTTPClient) CreateStory(ctx context.Context, in models.StoryInput) (StoryResponse, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("description", in.Description); err != nil {
		return StoryResponse{}, err
	}

	name := in.PhotoName
	if name == "" {
		name = "photo.jpg"
	}
	part, err := w.CreateFormFile("photo", name)
	if err != nil {
		return StoryResponse{}, err
	}
	if _, err := part.Write(in.Photo); err != nil {
		return StoryResponse{}, err
	}

	if in.Lat != nil {
		_ = w.WriteField("lat", strconv.FormatFloat(*in.Lat, 'f', -1, 64))
	}
	if in.Lon != nil {
		_ = w.WriteField("lon", strconv.FormatFloat(*in.Lon, 'f', -1, 64))
	}
	if err := w.Close(); err != nil {
		return StoryResponse{}, err
	}

	var res StoryResponse
	if err := c.do(ctx, http.MethodPost, "/stories", w.FormDataContentType(), &buf, &res); err != nil {
		return res, err
	}
	if res.Story != nil {
		res.Story.Origin = models.OriginServer
	}
	return res, nil
}

func (c *HTTPClient) SubscribePush(ctx context.Context, sub PushSubscription) (Result, error) {
	var res Result
	err := c.doJSON(ctx, http.MethodPost, "/notifications/subscribe", sub, &res)
	return res, err
}

func (c *HTTPClient) UnsubscribePush(ctx context.Context, endpoint string) (Result, error) {
	var res Result
	err := c.doJSON(ctx, http.MethodDelete, "/notifications/subscribe", map[string]string{"endpoint": endpoint}, &res)
	return res, err
}

// Ping checks that the API host answers at all. Any HTTP status counts as
// reachable; only transport failures report ErrUnavailable.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return c.mapError(err)
	}
	_ = resp.Body.Close()
	return nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, in, out any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return c.do(ctx, method, path, "application/json", bytes.NewReader(raw), out)
}

func (c *HTTPClient) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return c.mapError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrMalformedResponse, method, path, err)
	}
	return nil
}

func (c *HTTPClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
