package articles

import (
	"context"

	"github.com/avoronins/inkpost/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, article *models.Article) (*models.Article, error)
	GetBySlug(ctx context.Context, slug string) (*models.Article, error)
	List(ctx context.Context, limit, offset int) ([]*models.Article, error)
	Update(ctx context.Context, article *models.Article) (*models.Article, error)
	Delete(ctx context.Context, id string) error
}
