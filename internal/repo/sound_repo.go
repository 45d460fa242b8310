// Package repo implements the data persistence layer for the sound catalog,
// backed by GORM. This file provides repository functions for the Sound model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a sound is not found, functions return ErrNotFound.
//   - CreateSound maps unique-constraint failures to ErrDuplicateFilename.
//   - On other DB errors the raw gorm error is propagated.
//
// Functions:
//
//   - ListActiveSounds(ctx, db) -> []domain.Sound, error
//     Returns all enabled sounds in insertion order.
//
//   - GetSound(ctx, db, id, filename) -> *domain.Sound, error
//     Fetches a sound by id, filename, or both; ErrNotFound if missing.
//
//   - CreateSound(ctx, db, id, filename, text, tags) -> *domain.Sound, error
//     Inserts a new enabled sound row.
//
//   - CountSoundsByFilename(ctx, db, filename) -> (int64, error)
//     Duplicate-row probe used for integrity-anomaly detection.
//
//   - SoundIDExists(ctx, db, id) -> (bool, error)
//     Collision probe for freshly generated identifiers.
//
//   - SetSoundDisabled(ctx, db, id, disabled) -> error
//     Flips the disabled flag; ErrNotFound if missing.
//
//   - DeleteSound(ctx, db, filename) -> error
//     Removes an unused sound or flags a used one as disabled.
//
// This repository is designed to be wrapped by higher-level components
// (see catalog.Reconciler and services.SoundService) which enforce the
// reconciliation and query-path business rules.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/dmcelectrico/SoundsTable/internal/domain"
)

// ListActiveSounds returns every sound with disabled = false, ordered by
// insertion (rowid). The order is stable across calls but is not guaranteed
// to reflect manifest order.
func ListActiveSounds(ctx context.Context, db *gorm.DB) ([]domain.Sound, error) {
	var out []domain.Sound
	err := db.WithContext(ctx).
		Where("disabled = ?", false).
		Order("rowid").
		Find(&out).Error
	return out, err
}

// GetSound fetches a single sound by id, filename, or both. At least one key
// must be supplied (ErrMissingLookup otherwise); when both are supplied the
// result satisfies both. Disabled sounds are still resolvable here.
func GetSound(ctx context.Context, db *gorm.DB, id, filename string) (*domain.Sound, error) {
	if id == "" && filename == "" {
		return nil, ErrMissingLookup
	}
	q := db.WithContext(ctx)
	if id != "" {
		q = q.Where("id = ?", id)
	}
	if filename != "" {
		q = q.Where("filename = ?", filename)
	}
	var s domain.Sound
	if err := q.First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSound inserts a new sound row with the given identifier and manifest
// fields. New sounds are always enabled. A unique-constraint failure on
// filename is returned as ErrDuplicateFilename.
func CreateSound(ctx context.Context, db *gorm.DB, id, filename, text, tags string) (*domain.Sound, error) {
	s := &domain.Sound{
		ID:        id,
		Filename:  filename,
		Text:      text,
		Tags:      tags,
		Disabled:  false,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateFilename
		}
		return nil, err
	}
	return s, nil
}

// CountSoundsByFilename returns how many rows carry the given filename.
// Anything above one is an integrity anomaly surfaced by the reconciler.
func CountSoundsByFilename(ctx context.Context, db *gorm.DB, filename string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Sound{}).
		Where("filename = ?", filename).
		Count(&n).Error
	return n, err
}

// SoundIDExists reports whether any sound row carries the given identifier.
func SoundIDExists(ctx context.Context, db *gorm.DB, id string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Sound{}).
		Where("id = ?", id).
		Count(&n).Error
	return n > 0, err
}

// SetSoundDisabled flips the disabled flag on the sound with the given id.
// Returns ErrNotFound when no such sound exists.
func SetSoundDisabled(ctx context.Context, db *gorm.DB, id string, disabled bool) error {
	res := db.WithContext(ctx).Model(&domain.Sound{}).
		Where("id = ?", id).
		Update("disabled", disabled)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSound removes the sound with the given filename, choosing between a
// physical delete and a disable flag based on usage: a sound with recorded
// result-history rows is flagged disabled so historical references never
// dangle; an unused sound is removed outright. The lookup, the usage count,
// and the mutation commit as one transaction.
//
// Returns ErrNotFound when no sound with that filename exists.
func DeleteSound(ctx context.Context, db *gorm.DB, filename string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s domain.Sound
		if err := tx.Where("filename = ?", filename).First(&s).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var uses int64
		if err := tx.Model(&domain.ResultHistory{}).
			Where("sound_id = ?", s.ID).
			Count(&uses).Error; err != nil {
			return err
		}

		if uses == 0 {
			return tx.Delete(&domain.Sound{}, "id = ?", s.ID).Error
		}
		return tx.Model(&domain.Sound{}).
			Where("id = ?", s.ID).
			Update("disabled", true).Error
	})
}
