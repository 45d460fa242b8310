// Package repo implements the data persistence layer for the sound catalog,
// backed by GORM. This file provides small aggregate queries used for the
// stats endpoint and the startup catalog log line. Each function is
// context-aware and safe to call from services or handlers.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/dmcelectrico/SoundsTable/internal/domain"
)

// CatalogStats aggregates row counts across the catalog tables.
type CatalogStats struct {
	ActiveSounds   int64 `json:"active_sounds"`
	DisabledSounds int64 `json:"disabled_sounds"`
	Users          int64 `json:"users"`
	Queries        int64 `json:"queries"`
	Results        int64 `json:"results"`
}

// Stats returns aggregate metadata for the whole catalog: active and
// disabled sound counts, known users, and the sizes of both history logs.
// It executes five lightweight COUNT queries; on the first failure the
// error is returned and the partial result discarded.
func Stats(ctx context.Context, db *gorm.DB) (CatalogStats, error) {
	var s CatalogStats

	if err := db.WithContext(ctx).Model(&domain.Sound{}).
		Where("disabled = ?", false).Count(&s.ActiveSounds).Error; err != nil {
		return CatalogStats{}, err
	}
	if err := db.WithContext(ctx).Model(&domain.Sound{}).
		Where("disabled = ?", true).Count(&s.DisabledSounds).Error; err != nil {
		return CatalogStats{}, err
	}
	if err := db.WithContext(ctx).Model(&domain.User{}).Count(&s.Users).Error; err != nil {
		return CatalogStats{}, err
	}
	if err := db.WithContext(ctx).Model(&domain.QueryHistory{}).Count(&s.Queries).Error; err != nil {
		return CatalogStats{}, err
	}
	if err := db.WithContext(ctx).Model(&domain.ResultHistory{}).Count(&s.Results).Error; err != nil {
		return CatalogStats{}, err
	}
	return s, nil
}
