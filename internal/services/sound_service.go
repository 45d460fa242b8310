// Package services – SoundService
//
// This file implements SoundService, the application-level component serving
// inline sound queries. It runs the search engine over the reconciled catalog
// snapshot, upserts the querying user, and appends the query/result history
// events that feed the recency ranking.
//
// History recording is a best-effort side effect of the read path: a failed
// write is logged and never propagated, so a user always gets their search
// results even when the history log is unavailable.
//
// Observability: public methods are OpenTelemetry-instrumented; spans include
// user identifiers and result counts.
package services

import (
	"context"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/dmcelectrico/SoundsTable/internal/domain"
	"github.com/dmcelectrico/SoundsTable/internal/repo"
	"github.com/dmcelectrico/SoundsTable/internal/search"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// defaultRecentLimit caps the recency lookup when the caller does not
// specify a limit.
const defaultRecentLimit = 3

// SoundService coordinates catalog search, user upserts, and history
// recording.
type SoundService struct {
	DB     *gorm.DB
	Engine *search.Engine

	// RecentLimit caps Recent() when the caller passes limit <= 0.
	RecentLimit int
}

// NewSoundService constructs a SoundService with the default recency limit.
func NewSoundService(db *gorm.DB, engine *search.Engine) *SoundService {
	return &SoundService{DB: db, Engine: engine, RecentLimit: defaultRecentLimit}
}

// Query answers an inline query: it matches raw against the catalog snapshot
// and records the user, the query, and every offered result in the history
// log. The returned slice is ordered and already capped by the engine.
//
// The history writes never fail the query: errors there are logged and the
// results returned regardless.
func (s *SoundService) Query(ctx context.Context, user domain.User, raw string) ([]domain.Sound, error) {
	tr := otel.Tracer("services/SoundService")
	ctx, span := tr.Start(ctx, "Query",
		trace.WithAttributes(attribute.Int64("user.id", user.ID)),
	)
	defer span.End()

	if user.ID == 0 {
		return nil, ErrInvalidUser
	}

	results := s.Engine.Search(raw)
	span.SetAttributes(attribute.Int("results", len(results)))

	s.recordHistory(ctx, user, raw, results)
	return results, nil
}

// recordHistory performs the best-effort history side effects of a served
// query. Each failure is logged and the remaining writes still attempted
// where they can succeed.
func (s *SoundService) recordHistory(ctx context.Context, user domain.User, raw string, results []domain.Sound) {
	if err := repo.UpsertUser(ctx, s.DB, user); err != nil {
		log.Warn().Err(err).Int64("user_id", user.ID).Msg("user upsert failed; skipping history")
		return
	}
	if err := repo.RecordQuery(ctx, s.DB, user.ID, raw); err != nil {
		log.Warn().Err(err).Int64("user_id", user.ID).Msg("query history write failed")
	}
	for _, snd := range results {
		if err := repo.RecordResult(ctx, s.DB, user.ID, snd.ID); err != nil {
			log.Warn().Err(err).Int64("user_id", user.ID).Str("sound_id", snd.ID).
				Msg("result history write failed")
		}
	}
}

// Browse matches raw against the catalog snapshot without touching the
// history log. It backs the read-only listing endpoint; an empty raw query
// returns the capped catalog listing in insertion order.
func (s *SoundService) Browse(ctx context.Context, raw string) []domain.Sound {
	tr := otel.Tracer("services/SoundService")
	_, span := tr.Start(ctx, "Browse")
	defer span.End()

	results := s.Engine.Search(raw)
	span.SetAttributes(attribute.Int("results", len(results)))
	return results
}

// Recent returns the user's most recently offered sounds, newest first,
// deduplicated, excluding disabled sounds. Unknown users get an empty slice.
func (s *SoundService) Recent(ctx context.Context, userID int64, limit int) ([]domain.Sound, error) {
	tr := otel.Tracer("services/SoundService")
	ctx, span := tr.Start(ctx, "Recent",
		trace.WithAttributes(
			attribute.Int64("user.id", userID),
			attribute.Int("limit", limit),
		),
	)
	defer span.End()

	if limit <= 0 {
		limit = s.RecentLimit
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return repo.LatestResultsForUser(ctx, s.DB, userID, limit)
}

// Stats exposes the store's aggregate counters for the stats endpoint.
func (s *SoundService) Stats(ctx context.Context) (repo.CatalogStats, error) {
	tr := otel.Tracer("services/SoundService")
	ctx, span := tr.Start(ctx, "Stats")
	defer span.End()

	return repo.Stats(ctx, s.DB)
}
