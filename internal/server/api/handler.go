package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/storykeeper/internal/common"
	"github.com/dmitrijs2005/storykeeper/internal/server/services"
)

// multipartOverhead covers the form fields and boundaries around the photo.
const multipartOverhead = 64 << 10

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, false, "storykeeper api")
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := s.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	s.logger.Info(r.Context(), "Registered", "user_id", u.ID)
	writeMessage(w, http.StatusCreated, false, "User created")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		result:      result{Message: "success"},
		LoginResult: loginResultJSON{UserID: res.UserID, Name: res.Name, Token: res.Token},
	})
}

func (s *Server) handleListStories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := optionalInt(q.Get("page"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, true, "page must be a number")
		return
	}
	size, err := optionalInt(q.Get("size"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, true, "size must be a number")
		return
	}
	location := q.Get("location") == "1" || q.Get("location") == "true"

	list, err := s.stories.List(r.Context(), services.ListStoriesInput{Page: page, Size: size, Location: location})
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	out := make([]storyJSON, 0, len(list))
	for _, v := range list {
		out = append(out, toStoryJSON(v))
	}
	writeJSON(w, http.StatusOK, storiesResponse{
		result:    result{Message: "Stories fetched successfully"},
		ListStory: out,
	})
}

func (s *Server) handleGetStory(w http.ResponseWriter, r *http.Request) {
	v, err := s.stories.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, storyResponse{
		result: result{Message: "Story fetched successfully"},
		Story:  toStoryJSON(v),
	})
}

func (s *Server) handleCreateStory(w http.ResponseWriter, r *http.Request) {
	const limit = common.MaxPhotoSize + multipartOverhead
	if r.ContentLength > limit {
		writeTooLarge(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(common.MaxPhotoSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeTooLarge(w)
			return
		}
		writeMessage(w, http.StatusBadRequest, true, "invalid multipart body")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	in := services.CreateStoryInput{Description: r.FormValue("description")}

	var err error
	if in.Lat, err = optionalFloat(r.FormValue("lat")); err != nil {
		writeMessage(w, http.StatusBadRequest, true, "lat must be a number")
		return
	}
	if in.Lon, err = optionalFloat(r.FormValue("lon")); err != nil {
		writeMessage(w, http.StatusBadRequest, true, "lon must be a number")
		return
	}

	if f, _, err := r.FormFile("photo"); err == nil {
		in.Photo, err = io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			writeMessage(w, http.StatusBadRequest, true, "unreadable photo")
			return
		}
	}

	v, err := s.stories.Create(r.Context(), userIDFrom(r.Context()), in)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	s.logger.Info(r.Context(), "Story created", "story_id", v.ID)
	writeJSON(w, http.StatusCreated, storyResponse{
		result: result{Message: "Story created successfully"},
		Story:  toStoryJSON(v),
	})
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Endpoint string `json:"endpoint"`
		Keys     struct {
			P256dh string `json:"p256dh"`
			Auth   string `json:"auth"`
		} `json:"keys"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	err := s.push.Subscribe(r.Context(), userIDFrom(r.Context()), req.Endpoint, req.Keys.P256dh, req.Keys.Auth)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeMessage(w, http.StatusOK, false, "Success to subscribe web push notification.")
}

func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Endpoint string `json:"endpoint"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.push.Unsubscribe(r.Context(), userIDFrom(r.Context()), req.Endpoint); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeMessage(w, http.StatusOK, false, "Success to unsubscribe web push notification.")
}

func writeTooLarge(w http.ResponseWriter) {
	writeMessage(w, http.StatusRequestEntityTooLarge, true,
		fmt.Sprintf("Payload content length greater than maximum allowed: %d", common.MaxPhotoSize))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, true, "invalid JSON body")
		return false
	}
	return true
}

func optionalInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func optionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
