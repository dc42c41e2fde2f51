package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/storykeeper/internal/common"
	"github.com/dmitrijs2005/storykeeper/internal/server/services"
)

type result struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type storyJSON struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PhotoURL    string    `json:"photoUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	Lat         *float64  `json:"lat"`
	Lon         *float64  `json:"lon"`
}

type loginResultJSON struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Token  string `json:"token"`
}

type loginResponse struct {
	result
	LoginResult loginResultJSON `json:"loginResult"`
}

type storiesResponse struct {
	result
	ListStory []storyJSON `json:"listStory"`
}

type storyResponse struct {
	result
	Story storyJSON `json:"story"`
}

func toStoryJSON(v *services.StoryView) storyJSON {
	return storyJSON{
		ID:          v.ID,
		Name:        v.Name,
		Description: v.Description,
		PhotoURL:    v.PhotoURL,
		CreatedAt:   v.CreatedAt,
		Lat:         v.Lat,
		Lon:         v.Lon,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, isErr bool, msg string) {
	writeJSON(w, status, result{Error: isErr, Message: msg})
}

// writeError maps service errors onto HTTP statuses. Unknown errors are
// logged and reported without detail.
func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrEmailTaken):
		writeMessage(w, http.StatusBadRequest, true, err.Error())
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		writeMessage(w, http.StatusUnauthorized, true, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		writeMessage(w, http.StatusNotFound, true, err.Error())
	default:
		s.logger.Error(ctx, "request failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, true, common.ErrorInternal.Error())
	}
}
