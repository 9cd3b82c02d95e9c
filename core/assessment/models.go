package assessment

import (
	"errors"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/irshadhq/irshad/core"
)

var (
	// errors
	ErrNotFound      = errors.New("test not found")
	ErrAlreadyExists = errors.New("row already exists")
)

// Test is a scheduled assessment, optionally attached to a course and its
// teacher. Unattached tests are school-wide.
type Test struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description null.String `json:"description"`
	ScheduledAt null.Time   `json:"scheduled_at"`
	MaxScore    int         `json:"max_score"`
	CourseID    null.String `json:"course_id"`
	TeacherID   null.String `json:"teacher_id"`
	CreatedAt   time.Time   `json:"created_at"` // UTC
}

// Result is a graded attempt by a student.
type Result struct {
	ID        string      `json:"id"`
	TestID    string      `json:"test_id"`
	StudentID string      `json:"student_id"`
	Score     null.Int    `json:"score"`
	Grade     null.String `json:"grade"`
	Feedback  null.String `json:"feedback"`
	CreatedAt time.Time   `json:"created_at"` // UTC
}

// Stats summarizes a student's past results. AvgScore averages the non-null
// scores, rounded to the nearest integer; 0 when no scored results exist.
type Stats struct {
	TestsTaken int `json:"tests_taken"`
	AvgScore   int `json:"avg_score"`
}

type NewTest struct {
	Title       string      `json:"title" validate:"required"`
	Description null.String `json:"description"`
	ScheduledAt null.Time   `json:"scheduled_at"`
	MaxScore    int         `json:"max_score" validate:"required,gt=0"`
	CourseID    null.String `json:"course_id"`
	TeacherID   null.String `json:"teacher_id"`
}

func (nt *NewTest) Validate(validate *validator.Validate, translator ut.Translator) error {
	nt.Title = core.CleanString(nt.Title)
	return validate.Struct(nt)
}

type NewResult struct {
	TestID    string      `json:"test_id" validate:"required"`
	StudentID string      `json:"student_id" validate:"required"`
	Score     null.Int    `json:"score"`
	Grade     null.String `json:"grade"`
	Feedback  null.String `json:"feedback"`
}

func (nr *NewResult) Validate(validate *validator.Validate, translator ut.Translator) error {
	return validate.Struct(nr)
}
