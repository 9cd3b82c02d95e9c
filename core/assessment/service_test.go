package assessment_test

import (
	"context"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/irshadhq/irshad/core/assessment"
	inmemdb "github.com/irshadhq/irshad/storage/database/inmem"
)

func setup(t *testing.T) *assessment.Service {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	return assessment.NewService(inmemdb.NewTestRepository(db), inmemdb.NewResultRepository(db))
}

func TestService_Upcoming(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	schedule := func(title, courseID string, at time.Time) {
		t.Helper()
		_, err := svc.Schedule(ctx, assessment.NewTest{
			Title:       title,
			MaxScore:    100,
			CourseID:    null.StringFrom(courseID),
			ScheduledAt: null.TimeFrom(at),
		})
		if err != nil {
			t.Fatalf("Schedule(%s) failed: %v", title, err)
		}
	}

	now := time.Now().UTC()
	schedule("past quiz", "c1", now.Add(-24*time.Hour))
	schedule("tomorrow quiz", "c1", now.Add(24*time.Hour))
	schedule("next week exam", "c1", now.Add(7*24*time.Hour))
	schedule("other course quiz", "c2", now.Add(24*time.Hour))

	t.Run("no enrollments yields empty, not nil", func(t *testing.T) {
		tests, err := svc.Upcoming(ctx, nil)
		if err != nil {
			t.Fatalf("Upcoming() failed: %v", err)
		}
		if tests == nil || len(tests) != 0 {
			t.Errorf("Upcoming() = %v, want empty slice", tests)
		}
	})

	t.Run("filters by course and time, soonest first", func(t *testing.T) {
		tests, err := svc.Upcoming(ctx, []string{"c1"})
		if err != nil {
			t.Fatalf("Upcoming() failed: %v", err)
		}
		if len(tests) != 2 {
			t.Fatalf("len(tests) = %d, want 2", len(tests))
		}
		if tests[0].Title != "tomorrow quiz" || tests[1].Title != "next week exam" {
			t.Errorf("order = [%s, %s], want soonest first", tests[0].Title, tests[1].Title)
		}
	})
}

func TestService_StudentStats(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	record := func(testID string, score null.Int) {
		t.Helper()
		_, err := svc.RecordResult(ctx, assessment.NewResult{
			TestID:    testID,
			StudentID: "s1",
			Score:     score,
		})
		if err != nil {
			t.Fatalf("RecordResult() failed: %v", err)
		}
	}

	t.Run("no results", func(t *testing.T) {
		_, stats, err := svc.StudentStats(ctx, "s1")
		if err != nil {
			t.Fatalf("StudentStats() failed: %v", err)
		}
		if stats != (assessment.Stats{}) {
			t.Errorf("stats = %+v, want zero", stats)
		}
	})

	record("t1", null.IntFrom(80))
	record("t2", null.IntFrom(71))
	record("t3", null.Int{}) // attended, not yet scored

	t.Run("averages scored results only", func(t *testing.T) {
		results, stats, err := svc.StudentStats(ctx, "s1")
		if err != nil {
			t.Fatalf("StudentStats() failed: %v", err)
		}
		if len(results) != 3 {
			t.Errorf("len(results) = %d, want 3", len(results))
		}
		want := assessment.Stats{TestsTaken: 3, AvgScore: 76} // round(151/2)
		if stats != want {
			t.Errorf("stats = %+v, want %+v", stats, want)
		}
	})
}

func TestService_QueryByTeacher(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	for _, tc := range []struct{ title, teacher string }{
		{"quiz 1", "t1"},
		{"quiz 2", "t1"},
		{"quiz 3", "t2"},
	} {
		nt := assessment.NewTest{Title: tc.title, MaxScore: 20, TeacherID: null.StringFrom(tc.teacher)}
		if _, err := svc.Schedule(ctx, nt); err != nil {
			t.Fatalf("Schedule() failed: %v", err)
		}
	}

	tests, err := svc.QueryByTeacher(ctx, "t1")
	if err != nil {
		t.Fatalf("QueryByTeacher() failed: %v", err)
	}
	if len(tests) != 2 {
		t.Errorf("len(tests) = %d, want 2", len(tests))
	}
}
