package audit_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-eufy/internal/audit"
	"github.com/nerrad567/gray-logic-eufy/internal/infrastructure/database"
	_ "github.com/nerrad567/gray-logic-eufy/migrations"
)

func newRepo(t *testing.T) *audit.SQLiteRepository {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Config{Path: filepath.Join(t.TempDir(), "audit.db"), BusyTimeout: 5})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // test cleanup

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return audit.NewSQLiteRepository(db.DB)
}

func TestRecordFillsIDAndTime(t *testing.T) {
	repo := newRepo(t)
	e := &audit.Entry{Command: "status_led", Serial: "T8400P1", Source: audit.SourceMQTT, Result: audit.ResultAccepted}

	if err := repo.Record(context.Background(), e); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(e.ID) != len("aud-")+8 || e.ID[:4] != "aud-" {
		t.Errorf("ID = %q", e.ID)
	}
	if e.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestRecordRejectsInvalid(t *testing.T) {
	repo := newRepo(t)
	tests := []struct {
		name  string
		entry audit.Entry
	}{
		{"no command", audit.Entry{Serial: "T1", Result: audit.ResultAccepted}},
		{"no serial", audit.Entry{Command: "refresh", Result: audit.ResultAccepted}},
		{"bad result", audit.Entry{Command: "refresh", Serial: "T1", Result: "maybe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.entry
			if err := repo.Record(context.Background(), &e); !errors.Is(err, audit.ErrInvalidEntry) {
				t.Errorf("Record() = %v, want ErrInvalidEntry", err)
			}
		})
	}
}

func TestListRoundTripAndOrder(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	entries := []audit.Entry{
		{Command: "power", Serial: "T1", Source: audit.SourceMQTT, Result: audit.ResultAccepted, CreatedAt: base},
		{Command: "snooze", Serial: "T1", Source: audit.SourceAPI, Actor: "user-7", Result: audit.ResultFailed,
			Error: "cloud: 502", Params: map[string]any{"seconds": 600.0}, DurationMS: 42, CreatedAt: base.Add(time.Second)},
		{Command: "power", Serial: "T2", Source: audit.SourceMQTT, Result: audit.ResultAccepted, CreatedAt: base.Add(2 * time.Second)},
	}
	for i := range entries {
		if err := repo.Record(ctx, &entries[i]); err != nil {
			t.Fatal(err)
		}
	}

	res, err := repo.List(ctx, audit.Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if res.Total != 3 || len(res.Entries) != 3 || res.Limit != 50 {
		t.Fatalf("List() total=%d len=%d limit=%d", res.Total, len(res.Entries), res.Limit)
	}
	if res.Entries[0].Serial != "T2" || res.Entries[2].Command != "power" {
		t.Errorf("not newest first: %+v", res.Entries)
	}

	got := res.Entries[1]
	if got.Actor != "user-7" || got.Error != "cloud: 502" || got.DurationMS != 42 ||
		got.Params["seconds"] != 600.0 || !got.CreatedAt.Equal(base.Add(time.Second)) {
		t.Errorf("round trip = %+v", got)
	}
}

func TestListFilters(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	for i, row := range []struct{ cmd, serial, result string }{
		{"power", "T1", audit.ResultAccepted},
		{"power", "T2", audit.ResultFailed},
		{"refresh", "T1", audit.ResultAccepted},
		{"refresh", "T1", audit.ResultFailed},
	} {
		e := audit.Entry{Command: row.cmd, Serial: row.serial, Source: audit.SourceMQTT,
			Result: row.result, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := repo.Record(ctx, &e); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name   string
		filter audit.Filter
		want   int
	}{
		{"serial", audit.Filter{Serial: "T1"}, 3},
		{"command", audit.Filter{Command: "power"}, 2},
		{"result", audit.Filter{Result: audit.ResultFailed}, 2},
		{"combined", audit.Filter{Serial: "T1", Command: "refresh", Result: audit.ResultFailed}, 1},
		{"since", audit.Filter{Since: base.Add(2 * time.Minute)}, 2},
		{"no match", audit.Filter{Serial: "T9"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if res.Total != tt.want || len(res.Entries) != tt.want {
				t.Errorf("total=%d len=%d, want %d", res.Total, len(res.Entries), tt.want)
			}
		})
	}
}

func TestListPagination(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		e := audit.Entry{Command: "refresh", Serial: "T1", Source: audit.SourceMQTT, Result: audit.ResultAccepted,
			CreatedAt: time.Date(2026, 5, 1, 10, i, 0, 0, time.UTC)}
		if err := repo.Record(ctx, &e); err != nil {
			t.Fatal(err)
		}
	}

	res, err := repo.List(ctx, audit.Filter{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 5 || len(res.Entries) != 1 || res.Offset != 4 {
		t.Errorf("page = total %d len %d offset %d", res.Total, len(res.Entries), res.Offset)
	}

	res, err = repo.List(ctx, audit.Filter{Limit: 10000, Offset: -3})
	if err != nil {
		t.Fatal(err)
	}
	if res.Limit != 200 || res.Offset != 0 {
		t.Errorf("clamped limit=%d offset=%d", res.Limit, res.Offset)
	}
}

func TestListEmptyIsNotNil(t *testing.T) {
	res, err := newRepo(t).List(context.Background(), audit.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Entries == nil {
		t.Error("Entries is nil, want empty slice")
	}
}
