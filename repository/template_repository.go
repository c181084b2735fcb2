package repository

import (
	"context"
	"fmt"
	"time"

	"aiContentStudio/internal/db"
	"aiContentStudio/models"
)

const templateColumns = `id, name, description, content_type, prompt_template, icon, is_active, created_at`

type TemplateRepository struct {
	db db.Preparer
}

func NewTemplateRepository(p db.Preparer) *TemplateRepository {
	return &TemplateRepository{db: p}
}

// WithTx returns a repository whose statements run inside tx.
func (r *TemplateRepository) WithTx(tx *db.Tx) *TemplateRepository {
	return &TemplateRepository{db: tx}
}

// Create inserts a template. Icon defaults to file-text.
func (r *TemplateRepository) Create(ctx context.Context, t *models.Template) (*models.Template, error) {
	if t == nil {
		return nil, fmt.Errorf("template is nil")
	}
	if t.Icon == "" {
		t.Icon = "file-text"
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.Prepare(`INSERT INTO templates (name, description, content_type, prompt_template, icon, is_active)
VALUES (?, ?, ?, ?, ?, ?)`).Run(ctx, t.Name, t.Description, t.ContentType, t.PromptTemplate, t.Icon, boolInt(t.IsActive))
	if err != nil {
		return nil, err
	}
	created, err := r.GetByID(ctx, res.LastInsertID)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("created template not found: id=%d", res.LastInsertID)
	}
	return created, nil
}

// GetByID fetches a template whether or not it is active.
func (r *TemplateRepository) GetByID(ctx context.Context, id int64) (*models.Template, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	row, err := r.db.Prepare(`SELECT `+templateColumns+` FROM templates WHERE id = ?`).Get(ctx, id)
	if err != nil || row == nil {
		return nil, err
	}
	return scanTemplate(row), nil
}

// GetActive fetches a template only while it is active.
func (r *TemplateRepository) GetActive(ctx context.Context, id int64) (*models.Template, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	row, err := r.db.Prepare(`SELECT `+templateColumns+` FROM templates WHERE id = ? AND is_active = 1`).Get(ctx, id)
	if err != nil || row == nil {
		return nil, err
	}
	return scanTemplate(row), nil
}

// ListActive returns active templates ordered by name, optionally only
// those of one content type.
func (r *TemplateRepository) ListActive(ctx context.Context, contentType string) ([]models.Template, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var (
		rows []db.Row
		err  error
	)
	if contentType != "" {
		rows, err = r.db.Prepare(`SELECT `+templateColumns+` FROM templates WHERE is_active = 1 AND content_type = ? ORDER BY name`).All(ctx, contentType)
	} else {
		rows, err = r.db.Prepare(`SELECT ` + templateColumns + ` FROM templates WHERE is_active = 1 ORDER BY name`).All(ctx)
	}
	if err != nil {
		return nil, err
	}
	return scanTemplates(rows), nil
}

// ListAll returns every template, newest first.
func (r *TemplateRepository) ListAll(ctx context.Context) ([]models.Template, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.Prepare(`SELECT ` + templateColumns + ` FROM templates ORDER BY created_at DESC, id DESC`).All(ctx)
	if err != nil {
		return nil, err
	}
	return scanTemplates(rows), nil
}

// Update overwrites every mutable field. It reports whether the template existed.
func (r *TemplateRepository) Update(ctx context.Context, t *models.Template) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.Prepare(`UPDATE templates
SET name = ?, description = ?, content_type = ?, prompt_template = ?, icon = ?, is_active = ?
WHERE id = ?`).Run(ctx, t.Name, t.Description, t.ContentType, t.PromptTemplate, t.Icon, boolInt(t.IsActive), t.ID)
	if err != nil {
		return false, err
	}
	return res.RowsAffected > 0, nil
}

func (r *TemplateRepository) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.Prepare(`DELETE FROM templates WHERE id = ?`).Run(ctx, id)
	if err != nil {
		return false, err
	}
	return res.RowsAffected > 0, nil
}

func (r *TemplateRepository) CountActive(ctx context.Context) (int64, error) {
	return count(ctx, r.db, `SELECT COUNT(*) AS count FROM templates WHERE is_active = 1`)
}

func scanTemplates(rows []db.Row) []models.Template {
	out := make([]models.Template, 0, len(rows))
	for _, row := range rows {
		out = append(out, *scanTemplate(row))
	}
	return out
}

func scanTemplate(row db.Row) *models.Template {
	return &models.Template{
		ID:             row.Int64("id"),
		Name:           row.String("name"),
		Description:    row.String("description"),
		ContentType:    row.String("content_type"),
		PromptTemplate: row.String("prompt_template"),
		Icon:           row.String("icon"),
		IsActive:       row.Bool("is_active"),
		CreatedAt:      row.Time("created_at"),
	}
}
