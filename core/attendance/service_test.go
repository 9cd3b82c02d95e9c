package attendance_test

import (
	"context"
	"testing"

	"github.com/irshadhq/irshad/core/attendance"
	inmemdb "github.com/irshadhq/irshad/storage/database/inmem"
)

func setup(t *testing.T) *attendance.Service {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	return attendance.NewService(inmemdb.NewAttendanceRepository(db))
}

func TestService_BulkRecord(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	t.Run("bad date", func(t *testing.T) {
		_, err := svc.BulkRecord(ctx, "c1", "30-08-2026", map[string]attendance.Status{"s1": attendance.StatusPresent})
		if err == nil {
			t.Error("BulkRecord() expected error for non ISO date")
		}
	})

	t.Run("records a sheet", func(t *testing.T) {
		records, err := svc.BulkRecord(ctx, "c1", "2026-08-30", map[string]attendance.Status{
			"s1": attendance.StatusPresent,
			"s2": attendance.StatusAbsent,
			"s3": attendance.StatusLate,
		})
		if err != nil {
			t.Fatalf("BulkRecord() failed: %v", err)
		}
		if len(records) != 3 {
			t.Errorf("len(records) = %d, want 3", len(records))
		}

		sheet, err := svc.Sheet(ctx, "c1", "2026-08-30")
		if err != nil {
			t.Fatalf("Sheet() failed: %v", err)
		}
		if len(sheet) != 3 {
			t.Errorf("len(sheet) = %d, want 3", len(sheet))
		}
	})

	t.Run("resubmitting a day replaces rows", func(t *testing.T) {
		if _, err := svc.BulkRecord(ctx, "c1", "2026-08-30", map[string]attendance.Status{
			"s2": attendance.StatusExcused,
		}); err != nil {
			t.Fatalf("BulkRecord() failed: %v", err)
		}

		sheet, err := svc.Sheet(ctx, "c1", "2026-08-30")
		if err != nil {
			t.Fatalf("Sheet() failed: %v", err)
		}
		if len(sheet) != 3 {
			t.Fatalf("len(sheet) = %d, want 3 (upsert, not insert)", len(sheet))
		}
		for _, r := range sheet {
			if r.StudentID == "s2" && r.Status != attendance.StatusExcused {
				t.Errorf("s2 status = %v, want %v", r.Status, attendance.StatusExcused)
			}
		}
	})
}

func TestAggregate(t *testing.T) {
	rec := func(status attendance.Status) attendance.Record {
		return attendance.Record{Status: status}
	}

	tests := []struct {
		name    string
		records []attendance.Record
		want    attendance.Stats
	}{
		{name: "empty", records: nil, want: attendance.Stats{}},
		{
			name:    "all present",
			records: []attendance.Record{rec(attendance.StatusPresent), rec(attendance.StatusPresent)},
			want:    attendance.Stats{Total: 2, Present: 2, Rate: 100},
		},
		{
			name: "mixed",
			records: []attendance.Record{
				rec(attendance.StatusPresent), rec(attendance.StatusPresent),
				rec(attendance.StatusLate), rec(attendance.StatusAbsent), rec(attendance.StatusExcused),
			},
			want: attendance.Stats{Total: 5, Present: 2, Late: 1, Absent: 1, Excused: 1, Rate: 40},
		},
		{
			name:    "rate rounds to nearest",
			records: []attendance.Record{rec(attendance.StatusPresent), rec(attendance.StatusAbsent), rec(attendance.StatusAbsent)},
			want:    attendance.Stats{Total: 3, Present: 1, Absent: 2, Rate: 33},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := attendance.Aggregate(tt.records); got != tt.want {
				t.Errorf("Aggregate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestService_StudentStats(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	days := map[string]attendance.Status{
		"2026-08-24": attendance.StatusPresent,
		"2026-08-25": attendance.StatusPresent,
		"2026-08-26": attendance.StatusLate,
		"2026-08-27": attendance.StatusAbsent,
	}
	for date, status := range days {
		if _, err := svc.BulkRecord(ctx, "c1", date, map[string]attendance.Status{"s1": status}); err != nil {
			t.Fatalf("BulkRecord() failed: %v", err)
		}
	}

	records, stats, err := svc.StudentStats(ctx, "s1")
	if err != nil {
		t.Fatalf("StudentStats() failed: %v", err)
	}
	if len(records) != 4 {
		t.Errorf("len(records) = %d, want 4", len(records))
	}
	want := attendance.Stats{Total: 4, Present: 2, Late: 1, Absent: 1, Rate: 50}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}
