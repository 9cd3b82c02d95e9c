package attendance

import (
	"errors"
	"strings"
	"time"
)

var (
	// errors
	ErrNotFound      = errors.New("attendance record not found")
	ErrAlreadyExists = errors.New("row already exists")
	ErrUnknownStatus = errors.New("unknown attendance status")
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusExcused Status = "excused"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcused:
		return st, nil
	}
	return "", ErrUnknownStatus
}

// Record is one student's attendance on one course day.
// Unique per (student_id, date, course_id); re-recording upserts.
type Record struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	CourseID  string    `json:"course_id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// Stats summarizes a set of records. Rate is round(present/total*100),
// 0 when there are no records.
type Stats struct {
	Total   int `json:"total"`
	Present int `json:"present"`
	Late    int `json:"late"`
	Absent  int `json:"absent"`
	Excused int `json:"excused"`
	Rate    int `json:"rate"`
}
