package server

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/petal-labs/anther/tool"
)

func TestSQLiteHistoryRoundTrip(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "history.db")
	history, err := NewSQLiteHistory(SQLiteHistoryConfig{DSN: dsn})
	if err != nil {
		t.Fatalf("NewSQLiteHistory() error = %v", err)
	}
	defer history.Close()

	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	history.Record(ctx, tool.InvocationRecord{
		ID: "a", Tool: "read_file", OK: true, DurationMS: 3, CreatedAt: base,
	})
	history.Record(ctx, tool.InvocationRecord{
		ID: "b", Tool: "read_file", OK: false, ErrorKind: tool.KindNotFound,
		DurationMS: 1, CreatedAt: base.Add(time.Second),
	})

	records, err := history.List(ctx, 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0].ID != "b" || records[1].ID != "a" {
		t.Fatalf("order = [%s %s], want newest first", records[0].ID, records[1].ID)
	}
	if records[0].OK || records[0].ErrorKind != tool.KindNotFound {
		t.Fatalf("records[0] = %+v, want failed NOT_FOUND record", records[0])
	}
	if !records[1].OK || records[1].ErrorKind != "" {
		t.Fatalf("records[1] = %+v, want successful record", records[1])
	}
}

func TestSQLiteHistoryLimit(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "history.db")
	history, err := NewSQLiteHistory(SQLiteHistoryConfig{DSN: dsn})
	if err != nil {
		t.Fatalf("NewSQLiteHistory() error = %v", err)
	}
	defer history.Close()

	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		history.Record(ctx, tool.InvocationRecord{
			ID: string(rune('a' + i)), Tool: "list_files", OK: true,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}

	records, err := history.List(ctx, 2)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0].ID != "e" {
		t.Fatalf("records[0].ID = %s, want e", records[0].ID)
	}
}

func TestSQLiteHistoryRecordIsIdempotent(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "history.db")
	history, err := NewSQLiteHistory(SQLiteHistoryConfig{DSN: dsn})
	if err != nil {
		t.Fatalf("NewSQLiteHistory() error = %v", err)
	}
	defer history.Close()

	ctx := context.Background()
	rec := tool.InvocationRecord{ID: "same", Tool: "get_weather", OK: true, CreatedAt: time.Now().UTC()}
	history.Record(ctx, rec)
	history.Record(ctx, rec)

	records, err := history.List(ctx, 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
}
