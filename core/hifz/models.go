// Package hifz tracks Qur'an memorization progress per student, one entry per
// contiguous ayah range of a surah.
package hifz

import (
	"errors"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/irshadhq/irshad/core"
)

var (
	// errors
	ErrNotFound      = errors.New("progress entry not found")
	ErrAlreadyExists = errors.New("row already exists")
	ErrUnknownStatus = errors.New("unknown progress status")
)

// The Qur'an has 114 surahs.
const MaxSurah = 114

type Status string

const (
	StatusMemorized  Status = "memorized"
	StatusReviewing  Status = "reviewing"
	StatusInProgress Status = "in_progress"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusMemorized, StatusReviewing, StatusInProgress:
		return st, nil
	}
	return "", ErrUnknownStatus
}

// Entry records a student's progress on surah ayahs [AyahFrom, AyahTo].
type Entry struct {
	ID          string      `json:"id"`
	StudentID   string      `json:"student_id"`
	SurahNumber int         `json:"surah_number"`
	AyahFrom    int         `json:"ayah_from"`
	AyahTo      int         `json:"ayah_to"`
	Status      Status      `json:"status"`
	Grade       null.String `json:"grade"`
	Notes       null.String `json:"notes"`
	CreatedAt   time.Time   `json:"created_at"` // UTC
}

// Summary counts a student's entries by status.
type Summary struct {
	Memorized  int `json:"memorized"`
	Reviewing  int `json:"reviewing"`
	InProgress int `json:"in_progress"`
}

type NewEntry struct {
	StudentID   string      `json:"student_id" validate:"required"`
	SurahNumber int         `json:"surah_number" validate:"required,min=1,max=114"`
	AyahFrom    int         `json:"ayah_from" validate:"required,min=1"`
	AyahTo      int         `json:"ayah_to" validate:"required,gtefield=AyahFrom"`
	Status      string      `json:"status" validate:"required"`
	Grade       null.String `json:"grade"`
	Notes       null.String `json:"notes"`
}

func (ne *NewEntry) Validate(validate *validator.Validate, translator ut.Translator) error {
	ne.Status = core.CleanString(ne.Status, true /* lower */)
	if err := validate.Struct(ne); err != nil {
		return err
	}
	if _, err := ParseStatus(ne.Status); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "status", Error: err.Error()})
	}
	return nil
}
