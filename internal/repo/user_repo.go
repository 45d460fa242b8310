// Package repo implements the data persistence layer for the sound catalog,
// backed by GORM. This file provides repository functions for the User model.
//
// Error semantics:
//   - GetUser returns ErrNotFound when no matching row exists.
//   - UpsertUser never fails for well-formed input; DB errors propagate raw.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/dmcelectrico/SoundsTable/internal/domain"
)

// UpsertUser inserts the user on first sight and otherwise applies a
// field-by-field diff against the stored row. Optional fields (last name,
// username, language code) are only written when the incoming record
// supplies a value; a nil incoming optional never clears a stored one.
// An incoming record identical to the stored one is a no-op.
//
// The read-compare-write executes inside a transaction so concurrent
// upserts for the same user resolve to one consistent row.
func UpsertUser(ctx context.Context, db *gorm.DB, in domain.User) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stored domain.User
		err := tx.Where("id = ?", in.ID).First(&stored).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&in).Error
		}
		if err != nil {
			return err
		}

		changes := diffUser(stored, in)
		if len(changes) == 0 {
			return nil
		}
		return tx.Model(&domain.User{}).Where("id = ?", in.ID).Updates(changes).Error
	})
}

// diffUser computes the column updates needed to bring stored in line with
// the incoming record. Required fields are authoritative on every sight;
// optional fields only when supplied.
func diffUser(stored, in domain.User) map[string]any {
	changes := map[string]any{}
	if stored.IsBot != in.IsBot {
		changes["is_bot"] = in.IsBot
	}
	if stored.FirstName != in.FirstName {
		changes["first_name"] = in.FirstName
	}
	if in.LastName != nil && !equalPtr(stored.LastName, in.LastName) {
		changes["last_name"] = *in.LastName
	}
	if in.Username != nil && !equalPtr(stored.Username, in.Username) {
		changes["username"] = *in.Username
	}
	if in.LanguageCode != nil && !equalPtr(stored.LanguageCode, in.LanguageCode) {
		changes["language_code"] = *in.LanguageCode
	}
	return changes
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// GetUser fetches a user by id, username, or both. At least one key must be
// supplied (ErrMissingLookup otherwise). Returns ErrNotFound when no row
// matches.
func GetUser(ctx context.Context, db *gorm.DB, id int64, username string) (*domain.User, error) {
	if id == 0 && username == "" {
		return nil, ErrMissingLookup
	}
	q := db.WithContext(ctx)
	if id != 0 {
		q = q.Where("id = ?", id)
	}
	if username != "" {
		q = q.Where("username = ?", username)
	}
	var u domain.User
	if err := q.First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}
