package service

import (
	"context"
	"strings"

	"aiContentStudio/internal/apperr"
	"aiContentStudio/internal/db"
	"aiContentStudio/models"
	"aiContentStudio/repository"
)

// TemplateService exposes the active template catalog to users.
type TemplateService struct {
	templates *repository.TemplateRepository
}

func NewTemplateService(store *db.Store) *TemplateService {
	return &TemplateService{templates: repository.NewTemplateRepository(store)}
}

// List returns active templates, optionally of one content type.
func (s *TemplateService) List(ctx context.Context, contentType string) ([]models.Template, error) {
	return s.templates.ListActive(ctx, strings.TrimSpace(contentType))
}

// Get returns an active template.
func (s *TemplateService) Get(ctx context.Context, id int64) (*models.Template, error) {
	t, err := s.templates.GetActive(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.NotFound("Template not found")
	}
	return t, nil
}
