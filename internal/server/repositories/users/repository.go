package users

import (
	"context"

	"github.com/avoronins/inkpost/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUserName(ctx context.Context, userName string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)

	// IncrementTokenVersion atomically bumps the user's revocation counter.
	// Every token issued with the previous value becomes invalid at once.
	IncrementTokenVersion(ctx context.Context, id string) (int, error)
}
