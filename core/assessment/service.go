package assessment

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"
)

type (
	Repository interface {
		CreateTest(ctx context.Context, t Test) (Test, error)
		GetTestByID(ctx context.Context, id string) (Test, error)
		QueryAllTests(ctx context.Context) ([]Test, error)
		QueryTestsByTeacher(ctx context.Context, teacherID string) ([]Test, error)
		// QueryUpcomingTests returns tests for the given courses scheduled at
		// or after `after`, soonest first.
		QueryUpcomingTests(ctx context.Context, courseIDs []string, after time.Time) ([]Test, error)
		UpdateTest(ctx context.Context, t Test) (Test, error)
		DeleteTest(ctx context.Context, id string) error
	}

	ResultRepository interface {
		CreateResult(ctx context.Context, r Result) (Result, error)
		QueryResultsByTest(ctx context.Context, testID string) ([]Result, error)
		QueryResultsByStudent(ctx context.Context, studentID string) ([]Result, error)
	}

	Service struct {
		repo    Repository
		results ResultRepository
	}
)

func NewService(repo Repository, results ResultRepository) *Service {
	return &Service{repo: repo, results: results}
}

func (svc *Service) Schedule(ctx context.Context, nt NewTest) (Test, error) {
	t := Test{
		Title:       nt.Title,
		Description: nt.Description,
		ScheduledAt: nt.ScheduledAt,
		MaxScore:    nt.MaxScore,
		CourseID:    nt.CourseID,
		TeacherID:   nt.TeacherID,
		CreatedAt:   time.Now().UTC(),
	}
	t, err := svc.repo.CreateTest(ctx, t)
	return t, errors.Wrap(err, "creating test")
}

func (svc *Service) GetByID(ctx context.Context, id string) (Test, error) {
	return svc.repo.GetTestByID(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Test, error) {
	return svc.repo.QueryAllTests(ctx)
}

func (svc *Service) QueryByTeacher(ctx context.Context, teacherID string) ([]Test, error) {
	return svc.repo.QueryTestsByTeacher(ctx, teacherID)
}

func (svc *Service) Update(ctx context.Context, t Test) (Test, error) {
	return svc.repo.UpdateTest(ctx, t)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteTest(ctx, id)
}

// RecordResult grades a student's attempt.
func (svc *Service) RecordResult(ctx context.Context, nr NewResult) (Result, error) {
	r := Result{
		TestID:    nr.TestID,
		StudentID: nr.StudentID,
		Score:     nr.Score,
		Grade:     nr.Grade,
		Feedback:  nr.Feedback,
		CreatedAt: time.Now().UTC(),
	}
	r, err := svc.results.CreateResult(ctx, r)
	return r, errors.Wrap(err, "creating result")
}

func (svc *Service) ResultsByTest(ctx context.Context, testID string) ([]Result, error) {
	return svc.results.QueryResultsByTest(ctx, testID)
}

// Upcoming lists tests scheduled from now on for the student's courses.
func (svc *Service) Upcoming(ctx context.Context, courseIDs []string) ([]Test, error) {
	if len(courseIDs) == 0 {
		return []Test{}, nil
	}
	return svc.repo.QueryUpcomingTests(ctx, courseIDs, time.Now().UTC())
}

// StudentStats returns a student's past results with the tests-taken count
// and rounded average over the scored ones.
func (svc *Service) StudentStats(ctx context.Context, studentID string) ([]Result, Stats, error) {
	results, err := svc.results.QueryResultsByStudent(ctx, studentID)
	if err != nil {
		return nil, Stats{}, errors.Wrap(err, "querying results by student")
	}

	stats := Stats{TestsTaken: len(results)}
	var sum, scored int
	for _, r := range results {
		if r.Score.Valid {
			sum += r.Score.Int
			scored++
		}
	}
	if scored > 0 {
		stats.AvgScore = int(math.Round(float64(sum) / float64(scored)))
	}
	return results, stats, nil
}
