package inmemdb

import (
	"context"
	"sort"

	"github.com/irshadhq/irshad/core/hifz"
)

type hifzRepository struct {
	db *DB
}

var _ hifz.Repository = (*hifzRepository)(nil)

func NewHifzRepository(db *DB) *hifzRepository {
	return &hifzRepository{db: db}
}

func (repo *hifzRepository) CreateEntry(ctx context.Context, e hifz.Entry) (hifz.Entry, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	e.ID = newPK()
	repo.db.progress[e.ID] = &e
	return e, nil
}

func (repo *hifzRepository) GetEntryByID(ctx context.Context, id string) (hifz.Entry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if e, ok := repo.db.progress[id]; ok {
		return *e, nil
	}
	return hifz.Entry{}, hifz.ErrNotFound
}

func (repo *hifzRepository) QueryEntriesByStudent(ctx context.Context, studentID string) ([]hifz.Entry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	entries := make([]hifz.Entry, 0)
	for _, e := range repo.db.progress {
		if e.StudentID == studentID {
			entries = append(entries, *e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].SurahNumber < entries[j].SurahNumber })
	return entries, nil
}

func (repo *hifzRepository) UpdateEntry(ctx context.Context, e hifz.Entry) (hifz.Entry, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.progress[e.ID]; !ok {
		return hifz.Entry{}, hifz.ErrNotFound
	}
	repo.db.progress[e.ID] = &e
	return e, nil
}

func (repo *hifzRepository) DeleteEntry(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.progress, id)
	return nil
}
