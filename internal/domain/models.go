// Package domain defines the persistence models for the sound catalog:
// sounds, users, and the append-only query/result history. These types are
// mapped with GORM and form the core data layer of the application.
package domain

import "time"

// Sound represents a single catalog entry backed by an audio clip.
//
// Fields:
//   - ID: stable 8-digit identifier assigned at reconciliation time;
//     immutable once assigned and never reused.
//   - Filename: relative resource path; the natural key used to match
//     manifest entries against stored rows (unique across all sounds,
//     disabled or not).
//   - Text: human-readable label shown to the end user.
//   - Tags: free-text blob matched against normalized queries.
//   - Disabled: excludes the sound from search and listing while keeping
//     the row so historical result references never dangle.
type Sound struct {
	ID        string    `json:"id"       gorm:"type:char(8);primaryKey"`
	Filename  string    `json:"filename" gorm:"type:varchar(255);not null;uniqueIndex:ux_sounds_filename"`
	Text      string    `json:"text"     gorm:"type:text;not null"`
	Tags      string    `json:"tags"     gorm:"type:text;not null"`
	Disabled  bool      `json:"disabled" gorm:"not null;default:false;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Sound.
func (Sound) TableName() string { return "sounds" }

// User represents a chat participant as supplied by the transport.
// Optional fields are pointers: nil means the transport never supplied a
// value, which is distinct from an empty string.
type User struct {
	ID           int64     `json:"id"            gorm:"primaryKey"`
	IsBot        bool      `json:"is_bot"        gorm:"not null"`
	FirstName    string    `json:"first_name"    gorm:"type:varchar(255);not null"`
	LastName     *string   `json:"last_name,omitempty"     gorm:"type:varchar(255)"`
	Username     *string   `json:"username,omitempty"      gorm:"type:varchar(255);index"`
	LanguageCode *string   `json:"language_code,omitempty" gorm:"type:varchar(16)"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// QueryHistory is an append-only record of a raw inline query as received.
// Rows are never mutated or deleted.
type QueryHistory struct {
	ID        uint      `json:"id"      gorm:"primaryKey;autoIncrement"`
	UserID    int64     `json:"user_id" gorm:"not null;index"`
	Text      string    `json:"text"    gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the database table name for QueryHistory.
func (QueryHistory) TableName() string { return "query_history" }

// ResultHistory is an append-only record of a sound offered to a user.
// It is the sole input of the recency ranking and the sole determinant of
// whether a sound may be hard-deleted during reconciliation. The
// auto-incrementing ID provides the total insertion order used for
// newest-first scans; no wall-clock ordering is relied upon.
type ResultHistory struct {
	ID        uint      `json:"id"       gorm:"primaryKey;autoIncrement"`
	UserID    int64     `json:"user_id"  gorm:"not null;index"`
	SoundID   string    `json:"sound_id" gorm:"type:char(8);not null;index"`
	CreatedAt time.Time `json:"created_at"`

	User  User  `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Sound Sound `json:"-" gorm:"foreignKey:SoundID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the database table name for ResultHistory.
func (ResultHistory) TableName() string { return "result_history" }
