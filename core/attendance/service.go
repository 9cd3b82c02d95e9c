package attendance

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"
)

type (
	Repository interface {
		// UpsertRecord inserts or replaces the row for
		// (student_id, date, course_id).
		UpsertRecord(ctx context.Context, r Record) (Record, error)
		QueryRecordsByStudent(ctx context.Context, studentID string) ([]Record, error)
		QueryRecordsByCourseDate(ctx context.Context, courseID, date string) ([]Record, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// BulkRecord saves a teacher's attendance sheet for one course day.
// Existing rows for the same (student, date, course) are replaced.
func (svc *Service) BulkRecord(ctx context.Context, courseID, date string, statuses map[string]Status) ([]Record, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, errors.Wrap(err, "parsing attendance date")
	}

	now := time.Now().UTC()
	records := make([]Record, 0, len(statuses))
	for studentID, status := range statuses {
		if !statusValid(status) {
			return nil, errors.Wrapf(ErrUnknownStatus, "student %s", studentID)
		}
		r, err := svc.repo.UpsertRecord(ctx, Record{
			StudentID: studentID,
			CourseID:  courseID,
			Date:      date,
			Status:    status,
			CreatedAt: now,
		})
		if err != nil {
			return nil, errors.Wrap(err, "upserting attendance record")
		}
		records = append(records, r)
	}
	return records, nil
}

func (svc *Service) Sheet(ctx context.Context, courseID, date string) ([]Record, error) {
	return svc.repo.QueryRecordsByCourseDate(ctx, courseID, date)
}

func (svc *Service) ByStudent(ctx context.Context, studentID string) ([]Record, error) {
	return svc.repo.QueryRecordsByStudent(ctx, studentID)
}

// StudentStats aggregates a student's records into counts and a rate.
func (svc *Service) StudentStats(ctx context.Context, studentID string) ([]Record, Stats, error) {
	records, err := svc.repo.QueryRecordsByStudent(ctx, studentID)
	if err != nil {
		return nil, Stats{}, errors.Wrap(err, "querying attendance by student")
	}
	return records, Aggregate(records), nil
}

// Aggregate computes counts and the attendance rate over records.
func Aggregate(records []Record) Stats {
	stats := Stats{Total: len(records)}
	for _, r := range records {
		switch r.Status {
		case StatusPresent:
			stats.Present++
		case StatusLate:
			stats.Late++
		case StatusAbsent:
			stats.Absent++
		case StatusExcused:
			stats.Excused++
		}
	}
	if stats.Total > 0 {
		stats.Rate = int(math.Round(float64(stats.Present) / float64(stats.Total) * 100))
	}
	return stats
}

func statusValid(s Status) bool {
	_, err := ParseStatus(string(s))
	return err == nil
}
