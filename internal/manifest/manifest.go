// Package manifest loads the human-edited source-of-truth catalog file.
// The manifest is an ordered JSON document listing one descriptor per audio
// clip; catalog membership is reconciled against it at startup.
//
// The package does no logging: parse failures are returned to the caller
// (they are configuration errors and fatal at bootstrap), while per-entry
// validation problems are reported by Entry.Validate so the reconciler can
// skip and log them individually.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Entry describes one clip in the manifest.
type Entry struct {
	Filename string `json:"filename"`
	Text     string `json:"text"`
	Tags     string `json:"tags"`
}

// Manifest is the parsed manifest document. Entry order is preserved.
type Manifest struct {
	Sounds []Entry `json:"sounds"`
}

var (
	// ErrMissingFilename marks an entry without its natural key.
	ErrMissingFilename = errors.New("manifest entry missing filename")
	// ErrMissingText marks an entry without a display label.
	ErrMissingText = errors.New("manifest entry missing text")
	// ErrMissingTags marks an entry without searchable tags.
	ErrMissingTags = errors.New("manifest entry missing tags")
)

// Validate reports whether the entry carries every required field.
func (e Entry) Validate() error {
	switch {
	case e.Filename == "":
		return ErrMissingFilename
	case e.Text == "":
		return ErrMissingText
	case e.Tags == "":
		return ErrMissingTags
	}
	return nil
}

// Parse decodes a manifest document from raw bytes.
func Parse(b []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// Load reads and parses the manifest at path. An unreadable or unparseable
// manifest is a configuration error; the caller is expected to treat it as
// fatal.
func Load(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(b)
}
