// Package catalog implements the startup reconciliation that brings the
// store's sound set into agreement with the manifest. The sync is one-way
// (manifest to store): the store never writes back into the manifest.
package catalog

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/dmcelectrico/SoundsTable/internal/domain"
	"github.com/dmcelectrico/SoundsTable/internal/manifest"
	"github.com/dmcelectrico/SoundsTable/internal/repo"
)

// maxIDAttempts bounds the collision-retry loop for fresh identifiers. The
// 8-digit ID space makes collisions negligible on realistic catalog sizes.
const maxIDAttempts = 100

// Reconciler synchronizes the manifest into the catalog store, assigning
// identifiers to new sounds, re-enabling disabled sounds whose filenames
// return, and applying the disable-vs-delete policy to sounds that left the
// manifest. It runs once, at startup, before any query
// traffic is served.
type Reconciler struct {
	DB *gorm.DB

	// NewID generates candidate sound identifiers. Overridable in tests;
	// defaults to 8 random decimal digits.
	NewID func() (string, error)
}

// NewReconciler constructs a Reconciler with the default ID generator.
func NewReconciler(db *gorm.DB) *Reconciler {
	return &Reconciler{DB: db, NewID: RandomID}
}

// Run reconciles the manifest against the store and returns the resulting
// active-sound set, which becomes the catalog served for the remainder of
// the process lifetime.
//
// Per-entry problems (missing fields, duplicate rows for one filename) are
// logged and skipped; the surviving entries still reconcile. Store failures
// propagate: the process cannot serve without a reconciled catalog.
func (r *Reconciler) Run(ctx context.Context, m *manifest.Manifest) ([]domain.Sound, error) {
	wanted := make(map[string]struct{}, len(m.Sounds))

	for i, entry := range m.Sounds {
		if err := entry.Validate(); err != nil {
			log.Warn().Err(err).Int("entry", i).Msg("skipping malformed manifest entry")
			continue
		}
		wanted[entry.Filename] = struct{}{}

		n, err := repo.CountSoundsByFilename(ctx, r.DB, entry.Filename)
		if err != nil {
			return nil, fmt.Errorf("probe %s: %w", entry.Filename, err)
		}
		switch {
		case n > 1:
			// Integrity anomaly: surface it, do not attempt automatic repair.
			log.Warn().Str("filename", entry.Filename).Int64("rows", n).
				Msg("duplicate sound rows for filename; leaving store untouched")
			continue
		case n == 1:
			// Manifest fields are authoritative at creation time only, but a
			// filename returning to the manifest lifts an earlier disable.
			s, err := repo.GetSound(ctx, r.DB, "", entry.Filename)
			if err != nil {
				return nil, fmt.Errorf("lookup %s: %w", entry.Filename, err)
			}
			if s.Disabled {
				if err := repo.SetSoundDisabled(ctx, r.DB, s.ID, false); err != nil {
					return nil, fmt.Errorf("re-enable %s: %w", entry.Filename, err)
				}
				log.Info().Str("id", s.ID).Str("filename", s.Filename).Msg("re-enabled sound")
			}
			continue
		}

		id, err := r.freshID(ctx)
		if err != nil {
			return nil, err
		}
		if _, err := repo.CreateSound(ctx, r.DB, id, entry.Filename, entry.Text, entry.Tags); err != nil {
			if errors.Is(err, repo.ErrDuplicateFilename) {
				// Lost a race with a concurrent add; the post-state is what
				// the manifest wanted anyway.
				log.Warn().Str("filename", entry.Filename).Msg("sound appeared concurrently; skipping add")
				continue
			}
			return nil, fmt.Errorf("add %s: %w", entry.Filename, err)
		}
		log.Info().Str("id", id).Str("filename", entry.Filename).Msg("added sound")
	}

	// Sounds that left the manifest: hard-delete when unused, disable when
	// referenced by result history.
	stored, err := repo.ListActiveSounds(ctx, r.DB)
	if err != nil {
		return nil, err
	}
	for _, s := range stored {
		if _, ok := wanted[s.Filename]; ok {
			continue
		}
		if err := repo.DeleteSound(ctx, r.DB, s.Filename); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("delete %s: %w", s.Filename, err)
		}
		log.Info().Str("filename", s.Filename).Msg("removed sound no longer in manifest")
	}

	return repo.ListActiveSounds(ctx, r.DB)
}

// freshID draws candidate identifiers until one is unused, erroring out only
// when the retry budget is exhausted.
func (r *Reconciler) freshID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := r.NewID()
		if err != nil {
			return "", err
		}
		taken, err := repo.SoundIDExists(ctx, r.DB, id)
		if err != nil {
			return "", err
		}
		if !taken {
			return id, nil
		}
		log.Debug().Str("id", id).Msg("sound id collision; regenerating")
	}
	return "", errors.New("exhausted sound id attempts")
}

// RandomID returns 8 random decimal digits drawn from crypto/rand.
func RandomID() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(100_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%08d", n), nil
}
