package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/irshadhq/irshad/core/library"
)

type resourceRow struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	Category  string    `db:"category"`
	URL       string    `db:"url"`
	CreatedAt time.Time `db:"created_at"`
}

type libraryRepository struct {
	db *sqlx.DB
}

var _ library.Repository = (*libraryRepository)(nil)

func NewLibraryRepository(db *sqlx.DB) *libraryRepository {
	return &libraryRepository{db: db}
}

func (repo *libraryRepository) CreateResource(ctx context.Context, r library.Resource) (library.Resource, error) {
	const q = `INSERT INTO library_resources (title, category, url, created_at)
	VALUES ($1, $2, $3, $4) RETURNING id`

	var id string
	err := repo.db.QueryRowxContext(ctx, q, r.Title, r.Category, r.URL, r.CreatedAt).Scan(&id)
	if err != nil {
		return library.Resource{}, errors.Wrap(err, "inserting library resource")
	}
	r.ID = id
	return r, nil
}

func (repo *libraryRepository) QueryAllResources(ctx context.Context) ([]library.Resource, error) {
	const q = `SELECT id, title, category, url, created_at FROM library_resources ORDER BY created_at`

	var rows []resourceRow
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying library resources")
	}
	rs := make([]library.Resource, 0, len(rows))
	for _, r := range rows {
		rs = append(rs, library.Resource{ID: r.ID, Title: r.Title, Category: r.Category, URL: r.URL, CreatedAt: r.CreatedAt})
	}
	return rs, nil
}

func (repo *libraryRepository) DeleteResource(ctx context.Context, id string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM library_resources WHERE id = $1`, id)
	return errors.Wrap(err, "deleting library resource")
}
