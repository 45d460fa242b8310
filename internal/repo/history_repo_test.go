package repo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dmcelectrico/SoundsTable/internal/domain"
)

func newHistoryRepoDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("history_repo_test_%d.db", time.Now().UnixNano())) +
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
	if err := db.AutoMigrate(&domain.Sound{}, &domain.User{}, &domain.QueryHistory{}, &domain.ResultHistory{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedHistoryFixtures(t *testing.T, db *gorm.DB) {
	t.Helper()
	if err := UpsertUser(context.Background(), db, domain.User{ID: 1, FirstName: "U"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	for i, f := range []string{"a.ogg", "b.ogg", "c.ogg"} {
		if _, err := CreateSound(context.Background(), db, fmt.Sprintf("0000000%d", i+1), f, "t", "tags"); err != nil {
			t.Fatalf("seed sound %s: %v", f, err)
		}
	}
}

func TestRecordQuery_And_ForeignKey(t *testing.T) {
	db := newHistoryRepoDB(t)
	seedHistoryFixtures(t, db)

	if err := RecordQuery(context.Background(), db, 1, "hola"); err != nil {
		t.Fatalf("RecordQuery: %v", err)
	}
	if err := RecordQuery(context.Background(), db, 99, "hola"); !errors.Is(err, ErrForeignKey) {
		t.Fatalf("expected ErrForeignKey for unknown user, got %v", err)
	}

	var n int64
	if err := db.Model(&domain.QueryHistory{}).Count(&n).Error; err != nil || n != 1 {
		t.Fatalf("expected exactly one event, got %d %v", n, err)
	}
}

func TestRecordResult_ForeignKeys(t *testing.T) {
	db := newHistoryRepoDB(t)
	seedHistoryFixtures(t, db)

	if err := RecordResult(context.Background(), db, 1, "00000001"); err != nil {
		t.Fatalf("RecordResult: %v", err)
	}
	if err := RecordResult(context.Background(), db, 1, "99999999"); !errors.Is(err, ErrForeignKey) {
		t.Fatalf("expected ErrForeignKey for unknown sound, got %v", err)
	}
	if err := RecordResult(context.Background(), db, 99, "00000001"); !errors.Is(err, ErrForeignKey) {
		t.Fatalf("expected ErrForeignKey for unknown user, got %v", err)
	}
}

func TestLatestResultsForUser_DedupNewestFirst(t *testing.T) {
	db := newHistoryRepoDB(t)
	seedHistoryFixtures(t, db)

	// A (oldest), B, A (newest): A must appear once, at its latest position.
	for _, id := range []string{"00000001", "00000002", "00000001"} {
		if err := RecordResult(context.Background(), db, 1, id); err != nil {
			t.Fatalf("record %s: %v", id, err)
		}
	}

	got, err := LatestResultsForUser(context.Background(), db, 1, 3)
	if err != nil {
		t.Fatalf("LatestResultsForUser: %v", err)
	}
	if len(got) != 2 || got[0].ID != "00000001" || got[1].ID != "00000002" {
		t.Fatalf("expected [A B], got %#v", got)
	}
}

func TestLatestResultsForUser_ExcludesDisabled(t *testing.T) {
	db := newHistoryRepoDB(t)
	seedHistoryFixtures(t, db)

	for _, id := range []string{"00000001", "00000002"} {
		if err := RecordResult(context.Background(), db, 1, id); err != nil {
			t.Fatalf("record %s: %v", id, err)
		}
	}
	if err := db.Model(&domain.Sound{}).Where("id = ?", "00000002").Update("disabled", true).Error; err != nil {
		t.Fatalf("disable: %v", err)
	}

	got, err := LatestResultsForUser(context.Background(), db, 1, 3)
	if err != nil {
		t.Fatalf("LatestResultsForUser: %v", err)
	}
	if len(got) != 1 || got[0].ID != "00000001" {
		t.Fatalf("disabled sound leaked into recency: %#v", got)
	}
}

func TestLatestResultsForUser_LimitAndDefault(t *testing.T) {
	db := newHistoryRepoDB(t)
	seedHistoryFixtures(t, db)

	if err := UpsertUser(context.Background(), db, domain.User{ID: 2, FirstName: "V"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if _, err := CreateSound(context.Background(), db, "00000004", "d.ogg", "t", "tags"); err != nil {
		t.Fatalf("seed sound: %v", err)
	}
	for _, id := range []string{"00000001", "00000002", "00000003", "00000004"} {
		if err := RecordResult(context.Background(), db, 2, id); err != nil {
			t.Fatalf("record %s: %v", id, err)
		}
	}

	got, err := LatestResultsForUser(context.Background(), db, 2, 0) // 0 -> default 3
	if err != nil {
		t.Fatalf("LatestResultsForUser: %v", err)
	}
	if len(got) != 3 || got[0].ID != "00000004" || got[1].ID != "00000003" || got[2].ID != "00000002" {
		t.Fatalf("expected newest three, got %#v", got)
	}
}

func TestLatestResultsForUser_UnknownUser(t *testing.T) {
	db := newHistoryRepoDB(t)

	got, err := LatestResultsForUser(context.Background(), db, 12345, 3)
	if err != nil {
		t.Fatalf("unknown user must not be an error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty slice, got %#v", got)
	}
}
