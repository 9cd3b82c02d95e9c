package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/irshadhq/irshad/core/course"
)

type courseRow struct {
	ID          string      `db:"id"`
	Name        string      `db:"name"`
	Description null.String `db:"description"`
	Schedule    null.String `db:"schedule"`
	TeacherID   null.String `db:"teacher_id"`
	CreatedAt   time.Time   `db:"created_at"`
}

func (r courseRow) toCore() course.Course {
	return course.Course{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Schedule:    r.Schedule,
		TeacherID:   r.TeacherID,
		CreatedAt:   r.CreatedAt,
	}
}

const courseCols = `id, name, description, schedule, teacher_id, created_at`

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	const q = `INSERT INTO courses (name, description, schedule, teacher_id, created_at)
	VALUES ($1, $2, $3, $4, $5) RETURNING id`

	var id string
	err := repo.db.QueryRowxContext(ctx, q, c.Name, c.Description, c.Schedule, c.TeacherID, c.CreatedAt).Scan(&id)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	c.ID = id
	return c, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	var row courseRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+courseCols+` FROM courses WHERE id = $1`, id)
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "getting course")
	}
	return row.toCore(), nil
}

func (repo *courseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	var rows []courseRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT `+courseCols+` FROM courses ORDER BY created_at`)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	return coursesToCore(rows), nil
}

func (repo *courseRepository) QueryCoursesByTeacher(ctx context.Context, teacherID string) ([]course.Course, error) {
	var rows []courseRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT `+courseCols+` FROM courses WHERE teacher_id = $1 ORDER BY created_at`, teacherID)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses by teacher")
	}
	return coursesToCore(rows), nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	const q = `UPDATE courses SET name = $2, description = $3, schedule = $4, teacher_id = $5
	WHERE id = $1`

	res, err := repo.db.ExecContext(ctx, q, c.ID, c.Name, c.Description, c.Schedule, c.TeacherID)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return c, nil
}

func (repo *courseRepository) DeleteCourse(ctx context.Context, id string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	return errors.Wrap(err, "deleting course")
}

func coursesToCore(rows []courseRow) []course.Course {
	courses := make([]course.Course, 0, len(rows))
	for _, r := range rows {
		courses = append(courses, r.toCore())
	}
	return courses
}

type enrollmentRow struct {
	ID         string    `db:"id"`
	StudentID  string    `db:"student_id"`
	CourseID   string    `db:"course_id"`
	EnrolledAt time.Time `db:"enrolled_at"`
}

func (r enrollmentRow) toCore() course.Enrollment {
	return course.Enrollment{ID: r.ID, StudentID: r.StudentID, CourseID: r.CourseID, EnrolledAt: r.EnrolledAt}
}

type enrollmentRepository struct {
	db *sqlx.DB
}

var _ course.EnrollmentRepository = (*enrollmentRepository)(nil)

func NewEnrollmentRepository(db *sqlx.DB) *enrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (repo *enrollmentRepository) UpsertEnrollment(ctx context.Context, e course.Enrollment) (course.Enrollment, error) {
	const q = `INSERT INTO enrollments (student_id, course_id, enrolled_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (student_id, course_id) DO UPDATE SET student_id = EXCLUDED.student_id
	RETURNING id, student_id, course_id, enrolled_at`

	var row enrollmentRow
	if err := repo.db.GetContext(ctx, &row, q, e.StudentID, e.CourseID, e.EnrolledAt); err != nil {
		return course.Enrollment{}, errors.Wrap(err, "upserting enrollment")
	}
	return row.toCore(), nil
}

func (repo *enrollmentRepository) QueryAllEnrollments(ctx context.Context) ([]course.Enrollment, error) {
	return repo.query(ctx, `SELECT id, student_id, course_id, enrolled_at FROM enrollments`)
}

func (repo *enrollmentRepository) QueryEnrollmentsByCourse(ctx context.Context, courseID string) ([]course.Enrollment, error) {
	return repo.query(ctx,
		`SELECT id, student_id, course_id, enrolled_at FROM enrollments WHERE course_id = $1`, courseID)
}

func (repo *enrollmentRepository) QueryEnrollmentsByStudent(ctx context.Context, studentID string) ([]course.Enrollment, error) {
	return repo.query(ctx,
		`SELECT id, student_id, course_id, enrolled_at FROM enrollments WHERE student_id = $1`, studentID)
}

func (repo *enrollmentRepository) DeleteEnrollment(ctx context.Context, id string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM enrollments WHERE id = $1`, id)
	return errors.Wrap(err, "deleting enrollment")
}

func (repo *enrollmentRepository) query(ctx context.Context, q string, args ...interface{}) ([]course.Enrollment, error) {
	var rows []enrollmentRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	es := make([]course.Enrollment, 0, len(rows))
	for _, r := range rows {
		es = append(es, r.toCore())
	}
	return es, nil
}
