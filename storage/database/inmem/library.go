package inmemdb

import (
	"context"
	"sort"

	"github.com/irshadhq/irshad/core/library"
)

type libraryRepository struct {
	db *DB
}

var _ library.Repository = (*libraryRepository)(nil)

func NewLibraryRepository(db *DB) *libraryRepository {
	return &libraryRepository{db: db}
}

func (repo *libraryRepository) CreateResource(ctx context.Context, r library.Resource) (library.Resource, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	r.ID = newPK()
	repo.db.resources[r.ID] = &r
	return r, nil
}

func (repo *libraryRepository) QueryAllResources(ctx context.Context) ([]library.Resource, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	rs := make([]library.Resource, 0, len(repo.db.resources))
	for _, r := range repo.db.resources {
		rs = append(rs, *r)
	}
	sort.Slice(rs, func(i, j int) bool { return rs[i].CreatedAt.Before(rs[j].CreatedAt) })
	return rs, nil
}

func (repo *libraryRepository) DeleteResource(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.resources, id)
	return nil
}
