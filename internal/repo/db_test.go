package repo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmcelectrico/SoundsTable/internal/domain"
)

func TestOpenSQLite_MissingParentDir(t *testing.T) {
	if _, err := OpenSQLite(filepath.Join(t.TempDir(), "nope", "app.db")); err == nil {
		t.Fatalf("expected error for missing parent directory")
	}
}

func TestOpenSQLite_CreatesAndMigrates(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	// Schema is usable end to end.
	if _, err := CreateSound(context.Background(), db, "00000001", "a.ogg", "A", "a"); err != nil {
		t.Fatalf("CreateSound after migrate: %v", err)
	}

	// FKs are enforced on pooled connections via the DSN pragma.
	if err := RecordQuery(context.Background(), db, 999, "x"); err != ErrForeignKey {
		t.Fatalf("expected ErrForeignKey for unknown user, got %v", err)
	}
}

func TestAutoMigrate_Idempotent(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	for i := 0; i < 2; i++ {
		if err := AutoMigrate(db); err != nil {
			t.Fatalf("AutoMigrate run %d: %v", i+1, err)
		}
	}
	if !db.Migrator().HasTable(&domain.Sound{}) {
		t.Fatalf("expected sounds table after repeated migration")
	}
}
