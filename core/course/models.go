package course

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
	ErrNotFound      = errors.New("course not found")
	ErrAlreadyExists = errors.New("row already exists")
)

// Course is a memorization program: a named class with an optional weekly
// schedule, optionally assigned to a teacher.
type Course struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description null.String `json:"description"`
	Schedule    null.String `json:"schedule"`
	TeacherID   null.String `json:"teacher_id"`
	CreatedAt   time.Time   `json:"created_at"` // UTC
}

// Enrollment links a student to a course. Unique per (student_id, course_id);
// enrolling twice is an idempotent upsert.
type Enrollment struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"student_id"`
	CourseID   string    `json:"course_id"`
	EnrolledAt time.Time `json:"enrolled_at"` // UTC
}

// NewCourse contains information needed to create a Course.
type NewCourse struct {
	Name        string      `json:"name" validate:"required"`
	Description null.String `json:"description"`
	Schedule    null.String `json:"schedule"`
	TeacherID   null.String `json:"teacher_id"`
}

func (nc *NewCourse) Validate(validate *validator.Validate, translator ut.Translator) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify a Course.
// Empty Name keeps the original.
type UpdateCourse struct {
	Name        string      `json:"name"`
	Description null.String `json:"description"`
	Schedule    null.String `json:"schedule"`
	TeacherID   null.String `json:"teacher_id"`
}

func (uc *UpdateCourse) Validate(orig Course) error {
	name := core.CleanString(uc.Name)
	if name == "" {
		uc.Name = orig.Name
	} else {
		uc.Name = name
	}
	return nil
}
