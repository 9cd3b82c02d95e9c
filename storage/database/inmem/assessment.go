package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/irshadhq/irshad/core/assessment"
)

type testRepository struct {
	db *DB
}

var _ assessment.Repository = (*testRepository)(nil)

func NewTestRepository(db *DB) *testRepository {
	return &testRepository{db: db}
}

func (repo *testRepository) CreateTest(ctx context.Context, t assessment.Test) (assessment.Test, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	t.ID = newPK()
	repo.db.tests[t.ID] = &t
	return t, nil
}

func (repo *testRepository) GetTestByID(ctx context.Context, id string) (assessment.Test, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if t, ok := repo.db.tests[id]; ok {
		return *t, nil
	}
	return assessment.Test{}, assessment.ErrNotFound
}

func (repo *testRepository) QueryAllTests(ctx context.Context) ([]assessment.Test, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	tests := make([]assessment.Test, 0, len(repo.db.tests))
	for _, t := range repo.db.tests {
		tests = append(tests, *t)
	}
	sort.Slice(tests, func(i, j int) bool { return tests[i].CreatedAt.Before(tests[j].CreatedAt) })
	return tests, nil
}

func (repo *testRepository) QueryTestsByTeacher(ctx context.Context, teacherID string) ([]assessment.Test, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	tests := make([]assessment.Test, 0)
	for _, t := range repo.db.tests {
		if t.TeacherID.Valid && t.TeacherID.String == teacherID {
			tests = append(tests, *t)
		}
	}
	sort.Slice(tests, func(i, j int) bool { return tests[i].CreatedAt.Before(tests[j].CreatedAt) })
	return tests, nil
}

func (repo *testRepository) QueryUpcomingTests(ctx context.Context, courseIDs []string, after time.Time) ([]assessment.Test, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	wanted := make(map[string]bool, len(courseIDs))
	for _, id := range courseIDs {
		wanted[id] = true
	}

	tests := make([]assessment.Test, 0)
	for _, t := range repo.db.tests {
		if t.CourseID.Valid && wanted[t.CourseID.String] && t.ScheduledAt.Valid && !t.ScheduledAt.Time.Before(after) {
			tests = append(tests, *t)
		}
	}
	sort.Slice(tests, func(i, j int) bool { return tests[i].ScheduledAt.Time.Before(tests[j].ScheduledAt.Time) })
	return tests, nil
}

func (repo *testRepository) UpdateTest(ctx context.Context, t assessment.Test) (assessment.Test, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.tests[t.ID]; !ok {
		return assessment.Test{}, assessment.ErrNotFound
	}
	repo.db.tests[t.ID] = &t
	return t, nil
}

func (repo *testRepository) DeleteTest(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.tests, id)
	return nil
}

type resultRepository struct {
	db *DB
}

var _ assessment.ResultRepository = (*resultRepository)(nil)

func NewResultRepository(db *DB) *resultRepository {
	return &resultRepository{db: db}
}

func (repo *resultRepository) CreateResult(ctx context.Context, r assessment.Result) (assessment.Result, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	r.ID = newPK()
	repo.db.results[r.ID] = &r
	return r, nil
}

func (repo *resultRepository) QueryResultsByTest(ctx context.Context, testID string) ([]assessment.Result, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	results := make([]assessment.Result, 0)
	for _, r := range repo.db.results {
		if r.TestID == testID {
			results = append(results, *r)
		}
	}
	return results, nil
}

func (repo *resultRepository) QueryResultsByStudent(ctx context.Context, studentID string) ([]assessment.Result, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	results := make([]assessment.Result, 0)
	for _, r := range repo.db.results {
		if r.StudentID == studentID {
			results = append(results, *r)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].CreatedAt.Before(results[j].CreatedAt) })
	return results, nil
}
