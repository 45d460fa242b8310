// Sound catalog HTTP handlers.
//
// This file exposes the public API endpoints:
//   - POST /inline              (answer an inline query, records history)
//   - GET  /sounds              (read-only catalog search/listing)
//   - GET  /users/{id}/recent   (per-user recency ranking)
//   - GET  /stats               (aggregate store counters)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dmcelectrico/SoundsTable/internal/domain"
	"github.com/dmcelectrico/SoundsTable/internal/http/middleware"
	"github.com/dmcelectrico/SoundsTable/internal/repo"
	"github.com/dmcelectrico/SoundsTable/internal/services"
	"github.com/dmcelectrico/SoundsTable/internal/utils"
)

//
// Service contracts (context-aware)
//

// SoundService defines the catalog operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type SoundService interface {
	// Query answers an inline query for user and records the offered results.
	Query(ctx context.Context, user domain.User, raw string) ([]domain.Sound, error)
	// Browse searches the catalog without recording history.
	Browse(ctx context.Context, raw string) []domain.Sound
	// Recent returns the user's most recently offered sounds, newest first.
	Recent(ctx context.Context, userID int64, limit int) ([]domain.Sound, error)
	// Stats returns aggregate store counters.
	Stats(ctx context.Context) (repo.CatalogStats, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for the sound catalog. It depends on an
// abstract service interface to keep transport concerns separate from
// business logic. BucketURL is prefixed to filenames to produce the public
// resource URL of each result.
type Handlers struct {
	svc       SoundService
	bucketURL string
}

// New constructs a Handlers instance bound to the given service.
func New(svc SoundService, bucketURL string) *Handlers {
	return &Handlers{svc: svc, bucketURL: bucketURL}
}

//
// DTOs
//

// InlineFrom identifies the user behind an inline query. Optional fields are
// pointers so "not supplied" stays distinct from an empty string.
type InlineFrom struct {
	ID           int64   `json:"id" binding:"required"`
	IsBot        bool    `json:"is_bot"`
	FirstName    string  `json:"first_name"`
	LastName     *string `json:"last_name,omitempty"`
	Username     *string `json:"username,omitempty"`
	LanguageCode *string `json:"language_code,omitempty"`
}

// InlineQueryRequest is the JSON payload for answering an inline query.
type InlineQueryRequest struct {
	Query string     `json:"query"`
	From  InlineFrom `json:"from" binding:"required"`
}

// VoiceResult is one playable result offered in response to a query.
type VoiceResult struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Title    string `json:"title"`
	URL      string `json:"url"`
}

// InlineQueryResponse wraps the ordered results of an inline query.
type InlineQueryResponse struct {
	Results []VoiceResult `json:"results"`
}

// ListSoundsResponse wraps a read-only catalog search.
type ListSoundsResponse struct {
	Sounds []domain.Sound `json:"sounds"`
	Count  int            `json:"count"`
}

// RecentResponse wraps a user's recency ranking.
type RecentResponse struct {
	Sounds []domain.Sound `json:"sounds"`
	Count  int            `json:"count"`
}

// toUser converts the transport payload into the persistence model.
func (f InlineFrom) toUser() domain.User {
	return domain.User{
		ID:           f.ID,
		IsBot:        f.IsBot,
		FirstName:    f.FirstName,
		LastName:     f.LastName,
		Username:     f.Username,
		LanguageCode: f.LanguageCode,
	}
}

// toVoiceResults maps sounds into transport results, prefixing bucketURL to
// each filename.
func toVoiceResults(sounds []domain.Sound, bucketURL string) []VoiceResult {
	out := make([]VoiceResult, 0, len(sounds))
	for _, s := range sounds {
		out = append(out, VoiceResult{
			ID:       s.ID,
			Filename: s.Filename,
			Title:    s.Text,
			URL:      bucketURL + s.Filename,
		})
	}
	return out
}

//
// Handlers
//

// InlineQuery answers an inline query: it searches the catalog for the raw
// query text and records the querying user plus every offered result in the
// history log. Results are returned in catalog insertion order, already
// capped by the engine.
func (h *Handlers) InlineQuery(c *gin.Context) {
	var req InlineQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if req.From.ID == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "query payload requires a user")
		return
	}

	sounds, err := h.svc.Query(c.Request.Context(), req.From.toUser(), req.Query)
	if err != nil {
		if errors.Is(err, services.ErrInvalidUser) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "query payload requires a user")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeQueryFailed, err.Error())
		return
	}

	middleware.ObserveQueryResults(len(sounds))
	ok(c, http.StatusOK, InlineQueryResponse{Results: toVoiceResults(sounds, h.bucketURL)})
}

// ListSounds performs a read-only catalog search. An empty or missing q
// returns the capped listing in insertion order; no history is recorded.
func (h *Handlers) ListSounds(c *gin.Context) {
	sounds := h.svc.Browse(c.Request.Context(), c.Query("q"))
	ok(c, http.StatusOK, ListSoundsResponse{Sounds: sounds, Count: len(sounds)})
}

// RecentSounds returns the calling user's most recently offered sounds,
// newest first and deduplicated. The optional limit query parameter bounds
// the result; unknown users get an empty list.
func (h *Handlers) RecentSounds(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user id must be a non-zero integer")
		return
	}
	limit := utils.AtoiDefault(c.Query("limit"), 0)

	sounds, err := h.svc.Recent(c.Request.Context(), userID, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeRecentFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, RecentResponse{Sounds: sounds, Count: len(sounds)})
}

// CatalogStats exposes aggregate store counters.
func (h *Handlers) CatalogStats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeStatsFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, stats)
}
