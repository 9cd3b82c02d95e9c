package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/irshadhq/irshad/core/attendance"
)

type attendanceRow struct {
	ID        string    `db:"id"`
	StudentID string    `db:"student_id"`
	CourseID  string    `db:"course_id"`
	Date      time.Time `db:"date"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

func (r attendanceRow) toCore() attendance.Record {
	return attendance.Record{
		ID:        r.ID,
		StudentID: r.StudentID,
		CourseID:  r.CourseID,
		Date:      r.Date.Format("2006-01-02"),
		Status:    attendance.Status(r.Status),
		CreatedAt: r.CreatedAt,
	}
}

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) UpsertRecord(ctx context.Context, r attendance.Record) (attendance.Record, error) {
	const q = `INSERT INTO attendance (student_id, course_id, date, status, created_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (student_id, date, course_id) DO UPDATE SET status = EXCLUDED.status
	RETURNING id, student_id, course_id, date, status, created_at`

	var row attendanceRow
	err := repo.db.GetContext(ctx, &row, q, r.StudentID, r.CourseID, r.Date, string(r.Status), r.CreatedAt)
	if err != nil {
		return attendance.Record{}, errors.Wrap(err, "upserting attendance record")
	}
	return row.toCore(), nil
}

func (repo *attendanceRepository) QueryRecordsByStudent(ctx context.Context, studentID string) ([]attendance.Record, error) {
	return repo.query(ctx,
		`SELECT id, student_id, course_id, date, status, created_at
		FROM attendance WHERE student_id = $1 ORDER BY date`, studentID)
}

func (repo *attendanceRepository) QueryRecordsByCourseDate(ctx context.Context, courseID, date string) ([]attendance.Record, error) {
	return repo.query(ctx,
		`SELECT id, student_id, course_id, date, status, created_at
		FROM attendance WHERE course_id = $1 AND date = $2`, courseID, date)
}

func (repo *attendanceRepository) query(ctx context.Context, q string, args ...interface{}) ([]attendance.Record, error) {
	var rows []attendanceRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying attendance")
	}
	records := make([]attendance.Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.toCore())
	}
	return records, nil
}
