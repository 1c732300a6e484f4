package catalog

import (
	"context"
)

// Repository is the read side of the catalog the HTTP layer needs.
type Repository interface {
	Get(ctx context.Context, id string) (Row, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id string) (Row, error) {
	return s.repo.Get(ctx, id)
}
