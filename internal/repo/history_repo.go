// Package repo implements the data persistence layer for the sound catalog,
// backed by GORM. This file provides the append-only history log and the
// per-user recency query built on top of it.
//
// History rows are never mutated or deleted; their auto-incrementing primary
// keys give the total insertion order the recency query sorts by.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/dmcelectrico/SoundsTable/internal/domain"
)

// RecordQuery appends one query-history event for the given user. A write
// referencing a user that does not exist fails with ErrForeignKey.
func RecordQuery(ctx context.Context, db *gorm.DB, userID int64, text string) error {
	ev := domain.QueryHistory{
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(&ev).Error; err != nil {
		if isForeignKeyViolation(err) {
			return ErrForeignKey
		}
		return err
	}
	return nil
}

// RecordResult appends one result-history event for the given user and
// sound. A write referencing a missing user or sound fails with
// ErrForeignKey.
func RecordResult(ctx context.Context, db *gorm.DB, userID int64, soundID string) error {
	ev := domain.ResultHistory{
		UserID:    userID,
		SoundID:   soundID,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(&ev).Error; err != nil {
		if isForeignKeyViolation(err) {
			return ErrForeignKey
		}
		return err
	}
	return nil
}

// LatestResultsForUser returns the user's most recently offered sounds,
// newest first, excluding disabled sounds and deduplicated by sound so that
// a sound used five times appears once at its most recent position. The
// result holds at most limit entries.
//
// An unknown user has no history: the result is an empty slice, not an
// error.
func LatestResultsForUser(ctx context.Context, db *gorm.DB, userID int64, limit int) ([]domain.Sound, error) {
	if limit <= 0 {
		limit = 3
	}

	if _, err := GetUser(ctx, db, userID, ""); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []domain.Sound{}, nil
		}
		return nil, err
	}

	var out []domain.Sound
	err := db.WithContext(ctx).Raw(`
		SELECT sounds.*
		FROM sounds
		JOIN result_history ON result_history.sound_id = sounds.id
		WHERE result_history.user_id = ? AND sounds.disabled = ?
		GROUP BY sounds.id
		ORDER BY MAX(result_history.id) DESC
		LIMIT ?`, userID, false, limit).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Sound{}
	}
	return out, nil
}
