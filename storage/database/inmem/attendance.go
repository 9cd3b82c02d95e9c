package inmemdb

import (
	"context"
	"sort"

	"github.com/irshadhq/irshad/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) UpsertRecord(ctx context.Context, r attendance.Record) (attendance.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.attendance {
		if existing.StudentID == r.StudentID && existing.Date == r.Date && existing.CourseID == r.CourseID {
			existing.Status = r.Status
			return *existing, nil
		}
	}
	r.ID = newPK()
	repo.db.attendance[r.ID] = &r
	return r, nil
}

func (repo *attendanceRepository) QueryRecordsByStudent(ctx context.Context, studentID string) ([]attendance.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	records := make([]attendance.Record, 0)
	for _, r := range repo.db.attendance {
		if r.StudentID == studentID {
			records = append(records, *r)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date < records[j].Date })
	return records, nil
}

func (repo *attendanceRepository) QueryRecordsByCourseDate(ctx context.Context, courseID, date string) ([]attendance.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	records := make([]attendance.Record, 0)
	for _, r := range repo.db.attendance {
		if r.CourseID == courseID && r.Date == date {
			records = append(records, *r)
		}
	}
	return records, nil
}
