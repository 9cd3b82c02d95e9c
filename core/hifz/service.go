package hifz

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

type (
	Repository interface {
		CreateEntry(ctx context.Context, e Entry) (Entry, error)
		GetEntryByID(ctx context.Context, id string) (Entry, error)
		QueryEntriesByStudent(ctx context.Context, studentID string) ([]Entry, error)
		UpdateEntry(ctx context.Context, e Entry) (Entry, error)
		DeleteEntry(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Record(ctx context.Context, ne NewEntry) (Entry, error) {
	status, err := ParseStatus(ne.Status)
	if err != nil {
		return Entry{}, err
	}
	e := Entry{
		StudentID:   ne.StudentID,
		SurahNumber: ne.SurahNumber,
		AyahFrom:    ne.AyahFrom,
		AyahTo:      ne.AyahTo,
		Status:      status,
		Grade:       ne.Grade,
		Notes:       ne.Notes,
		CreatedAt:   time.Now().UTC(),
	}
	e, err = svc.repo.CreateEntry(ctx, e)
	return e, errors.Wrap(err, "creating progress entry")
}

func (svc *Service) GetByID(ctx context.Context, id string) (Entry, error) {
	return svc.repo.GetEntryByID(ctx, id)
}

func (svc *Service) ByStudent(ctx context.Context, studentID string) ([]Entry, error) {
	return svc.repo.QueryEntriesByStudent(ctx, studentID)
}

func (svc *Service) Update(ctx context.Context, e Entry) (Entry, error) {
	return svc.repo.UpdateEntry(ctx, e)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteEntry(ctx, id)
}

// StudentSummary returns a student's entries with counts by status.
func (svc *Service) StudentSummary(ctx context.Context, studentID string) ([]Entry, Summary, error) {
	entries, err := svc.repo.QueryEntriesByStudent(ctx, studentID)
	if err != nil {
		return nil, Summary{}, errors.Wrap(err, "querying entries by student")
	}

	var sum Summary
	for _, e := range entries {
		switch e.Status {
		case StatusMemorized:
			sum.Memorized++
		case StatusReviewing:
			sum.Reviewing++
		case StatusInProgress:
			sum.InProgress++
		}
	}
	return entries, sum, nil
}
