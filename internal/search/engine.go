package search

import (
	"strings"

	"github.com/dmcelectrico/SoundsTable/internal/domain"
)

// TransportResultLimit is the hard result-count ceiling enforced by the chat
// transport per answered query. The engine's own cap must stay at or below
// it so the core never relies on adapter-side truncation.
const TransportResultLimit = 50

// DefaultMaxResults is the engine cap applied when none is configured.
const DefaultMaxResults = 48

// Engine matches free-text queries against a catalog snapshot taken at
// reconciliation time. The snapshot and its precomputed normalized tag keys
// are immutable after construction, so one Engine may serve concurrent
// queries without locking.
type Engine struct {
	sounds     []domain.Sound
	keys       []string // Normalize(sound.Tags), parallel to sounds
	maxResults int
}

// NewEngine builds an Engine over the given active-catalog snapshot,
// precomputing the normalized tag key for every sound. maxResults values
// outside (0, TransportResultLimit] are coerced to DefaultMaxResults.
func NewEngine(catalog []domain.Sound, maxResults int) *Engine {
	if maxResults <= 0 || maxResults > TransportResultLimit {
		maxResults = DefaultMaxResults
	}
	keys := make([]string, len(catalog))
	for i, s := range catalog {
		keys[i] = Normalize(s.Tags)
	}
	return &Engine{sounds: catalog, keys: keys, maxResults: maxResults}
}

// Len returns the number of sounds in the snapshot.
func (e *Engine) Len() int { return len(e.sounds) }

// MaxResults returns the effective result cap.
func (e *Engine) MaxResults() int { return e.maxResults }

// Search returns the ordered, capped matches for a raw query.
//
// Two modes, keyed on the raw (not normalized) query:
//   - empty raw query: listing mode, the catalog in store order up to the cap;
//   - non-empty raw query: normalized substring matching. A query whose
//     normalization is empty (pure punctuation or whitespace) matches
//     nothing.
//
// The scan stops as soon as the cap is reached rather than truncating
// afterwards, bounding latency on large catalogs. An empty catalog or a
// query matching nothing yields an empty result, never an error.
func (e *Engine) Search(raw string) []domain.Sound {
	if raw == "" {
		n := min(e.maxResults, len(e.sounds))
		out := make([]domain.Sound, n)
		copy(out, e.sounds[:n])
		return out
	}

	key := Normalize(raw)
	if key == "" {
		return nil
	}

	var out []domain.Sound
	for i, k := range e.keys {
		if strings.Contains(k, key) {
			out = append(out, e.sounds[i])
			if len(out) == e.maxResults {
				break
			}
		}
	}
	return out
}
