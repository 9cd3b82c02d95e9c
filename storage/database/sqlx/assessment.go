package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/irshadhq/irshad/core/assessment"
)

type testRow struct {
	ID          string      `db:"id"`
	Title       string      `db:"title"`
	Description null.String `db:"description"`
	ScheduledAt null.Time   `db:"scheduled_at"`
	MaxScore    int         `db:"max_score"`
	CourseID    null.String `db:"course_id"`
	TeacherID   null.String `db:"teacher_id"`
	CreatedAt   time.Time   `db:"created_at"`
}

func (r testRow) toCore() assessment.Test {
	return assessment.Test{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		ScheduledAt: r.ScheduledAt,
		MaxScore:    r.MaxScore,
		CourseID:    r.CourseID,
		TeacherID:   r.TeacherID,
		CreatedAt:   r.CreatedAt,
	}
}

const testCols = `id, title, description, scheduled_at, max_score, course_id, teacher_id, created_at`

type testRepository struct {
	db *sqlx.DB
}

var _ assessment.Repository = (*testRepository)(nil)

func NewTestRepository(db *sqlx.DB) *testRepository {
	return &testRepository{db: db}
}

func (repo *testRepository) CreateTest(ctx context.Context, t assessment.Test) (assessment.Test, error) {
	const q = `INSERT INTO tests (title, description, scheduled_at, max_score, course_id, teacher_id, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	var id string
	err := repo.db.QueryRowxContext(ctx, q,
		t.Title, t.Description, t.ScheduledAt, t.MaxScore, t.CourseID, t.TeacherID, t.CreatedAt).Scan(&id)
	if err != nil {
		return assessment.Test{}, errors.Wrap(err, "inserting test")
	}
	t.ID = id
	return t, nil
}

func (repo *testRepository) GetTestByID(ctx context.Context, id string) (assessment.Test, error) {
	var row testRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+testCols+` FROM tests WHERE id = $1`, id)
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return assessment.Test{}, assessment.ErrNotFound
		}
		return assessment.Test{}, errors.Wrap(err, "getting test")
	}
	return row.toCore(), nil
}

func (repo *testRepository) QueryAllTests(ctx context.Context) ([]assessment.Test, error) {
	return repo.query(ctx, `SELECT `+testCols+` FROM tests ORDER BY created_at`)
}

func (repo *testRepository) QueryTestsByTeacher(ctx context.Context, teacherID string) ([]assessment.Test, error) {
	return repo.query(ctx,
		`SELECT `+testCols+` FROM tests WHERE teacher_id = $1 ORDER BY created_at`, teacherID)
}

func (repo *testRepository) QueryUpcomingTests(ctx context.Context, courseIDs []string, after time.Time) ([]assessment.Test, error) {
	q, args, err := sqlx.In(
		`SELECT `+testCols+` FROM tests
		WHERE course_id IN (?) AND scheduled_at >= ? ORDER BY scheduled_at`, courseIDs, after)
	if err != nil {
		return nil, errors.Wrap(err, "building upcoming tests query")
	}
	return repo.query(ctx, repo.db.Rebind(q), args...)
}

func (repo *testRepository) UpdateTest(ctx context.Context, t assessment.Test) (assessment.Test, error) {
	const q = `UPDATE tests SET title = $2, description = $3, scheduled_at = $4, max_score = $5,
	course_id = $6, teacher_id = $7 WHERE id = $1`

	res, err := repo.db.ExecContext(ctx, q,
		t.ID, t.Title, t.Description, t.ScheduledAt, t.MaxScore, t.CourseID, t.TeacherID)
	if err != nil {
		return assessment.Test{}, errors.Wrap(err, "updating test")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return assessment.Test{}, assessment.ErrNotFound
	}
	return t, nil
}

func (repo *testRepository) DeleteTest(ctx context.Context, id string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM tests WHERE id = $1`, id)
	return errors.Wrap(err, "deleting test")
}

func (repo *testRepository) query(ctx context.Context, q string, args ...interface{}) ([]assessment.Test, error) {
	var rows []testRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying tests")
	}
	tests := make([]assessment.Test, 0, len(rows))
	for _, r := range rows {
		tests = append(tests, r.toCore())
	}
	return tests, nil
}

type resultRow struct {
	ID        string      `db:"id"`
	TestID    string      `db:"test_id"`
	StudentID string      `db:"student_id"`
	Score     null.Int    `db:"score"`
	Grade     null.String `db:"grade"`
	Feedback  null.String `db:"feedback"`
	CreatedAt time.Time   `db:"created_at"`
}

func (r resultRow) toCore() assessment.Result {
	return assessment.Result{
		ID:        r.ID,
		TestID:    r.TestID,
		StudentID: r.StudentID,
		Score:     r.Score,
		Grade:     r.Grade,
		Feedback:  r.Feedback,
		CreatedAt: r.CreatedAt,
	}
}

type resultRepository struct {
	db *sqlx.DB
}

var _ assessment.ResultRepository = (*resultRepository)(nil)

func NewResultRepository(db *sqlx.DB) *resultRepository {
	return &resultRepository{db: db}
}

func (repo *resultRepository) CreateResult(ctx context.Context, r assessment.Result) (assessment.Result, error) {
	const q = `INSERT INTO test_results (test_id, student_id, score, grade, feedback, created_at)
	VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	var id string
	err := repo.db.QueryRowxContext(ctx, q,
		r.TestID, r.StudentID, r.Score, r.Grade, r.Feedback, r.CreatedAt).Scan(&id)
	if err != nil {
		return assessment.Result{}, errors.Wrap(err, "inserting result")
	}
	r.ID = id
	return r, nil
}

func (repo *resultRepository) QueryResultsByTest(ctx context.Context, testID string) ([]assessment.Result, error) {
	return repo.query(ctx,
		`SELECT id, test_id, student_id, score, grade, feedback, created_at
		FROM test_results WHERE test_id = $1 ORDER BY created_at`, testID)
}

func (repo *resultRepository) QueryResultsByStudent(ctx context.Context, studentID string) ([]assessment.Result, error) {
	return repo.query(ctx,
		`SELECT id, test_id, student_id, score, grade, feedback, created_at
		FROM test_results WHERE student_id = $1 ORDER BY created_at`, studentID)
}

func (repo *resultRepository) query(ctx context.Context, q string, args ...interface{}) ([]assessment.Result, error) {
	var rows []resultRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying results")
	}
	results := make([]assessment.Result, 0, len(rows))
	for _, r := range rows {
		results = append(results, r.toCore())
	}
	return results, nil
}
