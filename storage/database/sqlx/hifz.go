package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/irshadhq/irshad/core/hifz"
)

type entryRow struct {
	ID          string      `db:"id"`
	StudentID   string      `db:"student_id"`
	SurahNumber int         `db:"surah_number"`
	AyahFrom    int         `db:"ayah_from"`
	AyahTo      int         `db:"ayah_to"`
	Status      string      `db:"status"`
	Grade       null.String `db:"grade"`
	Notes       null.String `db:"notes"`
	CreatedAt   time.Time   `db:"created_at"`
}

func (r entryRow) toCore() hifz.Entry {
	return hifz.Entry{
		ID:          r.ID,
		StudentID:   r.StudentID,
		SurahNumber: r.SurahNumber,
		AyahFrom:    r.AyahFrom,
		AyahTo:      r.AyahTo,
		Status:      hifz.Status(r.Status),
		Grade:       r.Grade,
		Notes:       r.Notes,
		CreatedAt:   r.CreatedAt,
	}
}

const entryCols = `id, student_id, surah_number, ayah_from, ayah_to, status, grade, notes, created_at`

type hifzRepository struct {
	db *sqlx.DB
}

var _ hifz.Repository = (*hifzRepository)(nil)

func NewHifzRepository(db *sqlx.DB) *hifzRepository {
	return &hifzRepository{db: db}
}

func (repo *hifzRepository) CreateEntry(ctx context.Context, e hifz.Entry) (hifz.Entry, error) {
	const q = `INSERT INTO memorization_progress
	(student_id, surah_number, ayah_from, ayah_to, status, grade, notes, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

	var id string
	err := repo.db.QueryRowxContext(ctx, q,
		e.StudentID, e.SurahNumber, e.AyahFrom, e.AyahTo, string(e.Status), e.Grade, e.Notes, e.CreatedAt).Scan(&id)
	if err != nil {
		return hifz.Entry{}, errors.Wrap(err, "inserting progress entry")
	}
	e.ID = id
	return e, nil
}

func (repo *hifzRepository) GetEntryByID(ctx context.Context, id string) (hifz.Entry, error) {
	var row entryRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+entryCols+` FROM memorization_progress WHERE id = $1`, id)
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return hifz.Entry{}, hifz.ErrNotFound
		}
		return hifz.Entry{}, errors.Wrap(err, "getting progress entry")
	}
	return row.toCore(), nil
}

func (repo *hifzRepository) QueryEntriesByStudent(ctx context.Context, studentID string) ([]hifz.Entry, error) {
	var rows []entryRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT `+entryCols+` FROM memorization_progress WHERE student_id = $1 ORDER BY surah_number, ayah_from`,
		studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying progress entries")
	}
	entries := make([]hifz.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.toCore())
	}
	return entries, nil
}

func (repo *hifzRepository) UpdateEntry(ctx context.Context, e hifz.Entry) (hifz.Entry, error) {
	const q = `UPDATE memorization_progress
	SET surah_number = $2, ayah_from = $3, ayah_to = $4, status = $5, grade = $6, notes = $7
	WHERE id = $1`

	res, err := repo.db.ExecContext(ctx, q,
		e.ID, e.SurahNumber, e.AyahFrom, e.AyahTo, string(e.Status), e.Grade, e.Notes)
	if err != nil {
		return hifz.Entry{}, errors.Wrap(err, "updating progress entry")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return hifz.Entry{}, hifz.ErrNotFound
	}
	return e, nil
}

func (repo *hifzRepository) DeleteEntry(ctx context.Context, id string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM memorization_progress WHERE id = $1`, id)
	return errors.Wrap(err, "deleting progress entry")
}
