package repository

import (
	"context"

	"aiContentStudio/models"
)

// UserRepositoryI defines operations on User entities.
type UserRepositoryI interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, p ListUsersParams) ([]models.User, int64, error)
	SetCredits(ctx context.Context, id, credits int64) (bool, error)
	SetRole(ctx context.Context, id int64, role string) (bool, error)
	DebitOne(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// TemplateRepositoryI defines operations on Template entities.
type TemplateRepositoryI interface {
	Create(ctx context.Context, t *models.Template) (*models.Template, error)
	GetByID(ctx context.Context, id int64) (*models.Template, error)
	GetActive(ctx context.Context, id int64) (*models.Template, error)
	ListActive(ctx context.Context, contentType string) ([]models.Template, error)
	Update(ctx context.Context, t *models.Template) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// GenerationRepositoryI defines operations on Generation entities.
type GenerationRepositoryI interface {
	Create(ctx context.Context, g *models.Generation) (int64, error)
	GetForUser(ctx context.Context, id, userID int64) (*models.Generation, error)
	ListByUser(ctx context.Context, userID int64, f models.GenerationFilter, limit, offset int) ([]models.Generation, int64, error)
	ToggleFavorite(ctx context.Context, id, userID int64) (bool, bool, error)
	DeleteForUser(ctx context.Context, id, userID int64) (bool, error)
}

var (
	_ UserRepositoryI       = (*UserRepository)(nil)
	_ TemplateRepositoryI   = (*TemplateRepository)(nil)
	_ GenerationRepositoryI = (*GenerationRepository)(nil)
)
