package library

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

type (
	Repository interface {
		CreateResource(ctx context.Context, r Resource) (Resource, error)
		QueryAllResources(ctx context.Context) ([]Resource, error)
		DeleteResource(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Add(ctx context.Context, nr NewResource) (Resource, error) {
	r := Resource{
		Title:     nr.Title,
		Category:  nr.Category,
		URL:       nr.URL,
		CreatedAt: time.Now().UTC(),
	}
	r, err := svc.repo.CreateResource(ctx, r)
	return r, errors.Wrap(err, "creating library resource")
}

func (svc *Service) List(ctx context.Context) ([]Resource, error) {
	return svc.repo.QueryAllResources(ctx)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteResource(ctx, id)
}
