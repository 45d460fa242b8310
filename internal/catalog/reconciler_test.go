package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dmcelectrico/SoundsTable/internal/domain"
	"github.com/dmcelectrico/SoundsTable/internal/manifest"
	"github.com/dmcelectrico/SoundsTable/internal/repo"
)

func newCatalogDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("catalog_test_%d.db", time.Now().UnixNano())) +
		"?_pragma=foreign_keys(1)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestRandomID_Format(t *testing.T) {
	re := regexp.MustCompile(`^\d{8}$`)
	for i := 0; i < 50; i++ {
		id, err := RandomID()
		if err != nil {
			t.Fatalf("RandomID: %v", err)
		}
		if !re.MatchString(id) {
			t.Fatalf("RandomID() = %q; want 8 decimal digits", id)
		}
	}
}

func TestRun_EmptyStore_AssignsFreshIDs(t *testing.T) {
	db := newCatalogDB(t)
	r := NewReconciler(db)

	m := &manifest.Manifest{Sounds: []manifest.Entry{
		{Filename: "a.ogg", Text: "A", Tags: "hola mundo"},
	}}
	active, err := r.Run(context.Background(), m)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(active) != 1 || active[0].Filename != "a.ogg" || active[0].Disabled {
		t.Fatalf("unexpected catalog: %#v", active)
	}
	if len(active[0].ID) != 8 {
		t.Fatalf("expected generated 8-digit id, got %q", active[0].ID)
	}
}

func TestRun_Idempotent(t *testing.T) {
	db := newCatalogDB(t)
	r := NewReconciler(db)
	m := &manifest.Manifest{Sounds: []manifest.Entry{
		{Filename: "a.ogg", Text: "A", Tags: "a"},
		{Filename: "b.ogg", Text: "B", Tags: "b"},
	}}

	first, err := r.Run(context.Background(), m)
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	second, err := r.Run(context.Background(), m)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("second run changed the catalog: %d -> %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID || !first[i].UpdatedAt.Equal(second[i].UpdatedAt) {
			t.Fatalf("second run mutated sound %s: %+v -> %+v", first[i].Filename, first[i], second[i])
		}
	}
}

func TestRun_HardDeletesUnusedAbsentee(t *testing.T) {
	db := newCatalogDB(t)
	r := NewReconciler(db)

	if _, err := repo.CreateSound(context.Background(), db, "00000001", "b.ogg", "B", "b"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := r.Run(context.Background(), &manifest.Manifest{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := repo.GetSound(context.Background(), db, "", "b.ogg"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected b.ogg hard-deleted, got %v", err)
	}
}

func TestRun_DisablesUsedAbsentee(t *testing.T) {
	db := newCatalogDB(t)
	r := NewReconciler(db)

	if _, err := repo.CreateSound(context.Background(), db, "00000001", "c.ogg", "C", "c"); err != nil {
		t.Fatalf("seed sound: %v", err)
	}
	if err := repo.UpsertUser(context.Background(), db, domain.User{ID: 1, FirstName: "U"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := repo.RecordResult(context.Background(), db, 1, "00000001"); err != nil {
		t.Fatalf("seed result: %v", err)
	}

	active, err := r.Run(context.Background(), &manifest.Manifest{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("used absentee leaked into active set: %#v", active)
	}
	got, err := repo.GetSound(context.Background(), db, "", "c.ogg")
	if err != nil {
		t.Fatalf("used sound must stay resolvable: %v", err)
	}
	if !got.Disabled {
		t.Fatalf("expected disabled flag, got %+v", got)
	}
}

func TestRun_ReenablesReturningFilename(t *testing.T) {
	db := newCatalogDB(t)
	r := NewReconciler(db)

	if _, err := repo.CreateSound(context.Background(), db, "00000001", "c.ogg", "C", "c"); err != nil {
		t.Fatalf("seed sound: %v", err)
	}
	if err := repo.UpsertUser(context.Background(), db, domain.User{ID: 1, FirstName: "U"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := repo.RecordResult(context.Background(), db, 1, "00000001"); err != nil {
		t.Fatalf("seed result: %v", err)
	}

	// Filename leaves the manifest: the used sound gets disabled.
	if _, err := r.Run(context.Background(), &manifest.Manifest{}); err != nil {
		t.Fatalf("absentee Run: %v", err)
	}

	// Filename returns: the sound comes back under its original id.
	m := &manifest.Manifest{Sounds: []manifest.Entry{
		{Filename: "c.ogg", Text: "C", Tags: "c"},
	}}
	active, err := r.Run(context.Background(), m)
	if err != nil {
		t.Fatalf("return Run: %v", err)
	}
	if len(active) != 1 || active[0].ID != "00000001" || active[0].Disabled {
		t.Fatalf("expected c.ogg re-enabled with original id, got %#v", active)
	}
}

func TestRun_SkipsMalformedEntries(t *testing.T) {
	db := newCatalogDB(t)
	r := NewReconciler(db)

	m := &manifest.Manifest{Sounds: []manifest.Entry{
		{Filename: "", Text: "broken", Tags: "x"},
		{Filename: "ok.ogg", Text: "OK", Tags: "ok"},
	}}
	active, err := r.Run(context.Background(), m)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(active) != 1 || active[0].Filename != "ok.ogg" {
		t.Fatalf("expected only the valid entry, got %#v", active)
	}
}

func TestRun_RetriesOnIDCollision(t *testing.T) {
	db := newCatalogDB(t)

	if _, err := repo.CreateSound(context.Background(), db, "00000001", "seed.ogg", "S", "s"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	r := NewReconciler(db)
	calls := 0
	r.NewID = func() (string, error) {
		calls++
		if calls == 1 {
			return "00000001", nil // taken by seed.ogg
		}
		return "00000002", nil
	}

	m := &manifest.Manifest{Sounds: []manifest.Entry{
		{Filename: "seed.ogg", Text: "S", Tags: "s"},
		{Filename: "new.ogg", Text: "N", Tags: "n"},
	}}
	active, err := r.Run(context.Background(), m)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected one retry after collision, got %d calls", calls)
	}
	if len(active) != 2 {
		t.Fatalf("unexpected catalog: %#v", active)
	}
	got, err := repo.GetSound(context.Background(), db, "", "new.ogg")
	if err != nil || got.ID != "00000002" {
		t.Fatalf("expected regenerated id, got %+v %v", got, err)
	}
}

func TestRun_IDGeneratorExhaustion(t *testing.T) {
	db := newCatalogDB(t)
	if _, err := repo.CreateSound(context.Background(), db, "00000001", "seed.ogg", "S", "s"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	r := NewReconciler(db)
	r.NewID = func() (string, error) { return "00000001", nil } // always collides

	m := &manifest.Manifest{Sounds: []manifest.Entry{
		{Filename: "seed.ogg", Text: "S", Tags: "s"},
		{Filename: "new.ogg", Text: "N", Tags: "n"},
	}}
	if _, err := r.Run(context.Background(), m); err == nil {
		t.Fatalf("expected exhaustion error")
	}
}
