package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aiContentStudio/internal/db"
	"aiContentStudio/models"
)

const generationSelect = `SELECT g.id, g.user_id, g.template_id, g.content_type, g.prompt, g.generated_content,
       g.is_favorite, g.created_at, t.name AS template_name
FROM generations g
LEFT JOIN templates t ON g.template_id = t.id`

type GenerationRepository struct {
	db db.Preparer
}

func NewGenerationRepository(p db.Preparer) *GenerationRepository {
	return &GenerationRepository{db: p}
}

// WithTx returns a repository whose statements run inside tx.
func (r *GenerationRepository) WithTx(tx *db.Tx) *GenerationRepository {
	return &GenerationRepository{db: tx}
}

// Create inserts the record and returns its id.
func (r *GenerationRepository) Create(ctx context.Context, g *models.Generation) (int64, error) {
	if g == nil {
		return 0, fmt.Errorf("generation is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var templateID any
	if g.TemplateID != nil {
		templateID = *g.TemplateID
	}
	res, err := r.db.Prepare(`INSERT INTO generations (user_id, template_id, content_type, prompt, generated_content)
VALUES (?, ?, ?, ?, ?)`).Run(ctx, g.UserID, templateID, g.ContentType, g.Prompt, g.GeneratedContent)
	if err != nil {
		return 0, err
	}
	return res.LastInsertID, nil
}

// GetByID fetches a generation regardless of owner.
func (r *GenerationRepository) GetByID(ctx context.Context, id int64) (*models.Generation, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	row, err := r.db.Prepare(generationSelect+` WHERE g.id = ?`).Get(ctx, id)
	if err != nil || row == nil {
		return nil, err
	}
	return scanGeneration(row), nil
}

// GetForUser fetches a generation only if userID owns it.
func (r *GenerationRepository) GetForUser(ctx context.Context, id, userID int64) (*models.Generation, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	row, err := r.db.Prepare(generationSelect+` WHERE g.id = ? AND g.user_id = ?`).Get(ctx, id, userID)
	if err != nil || row == nil {
		return nil, err
	}
	return scanGeneration(row), nil
}

// ListByUser returns one page of a user's generations, newest first, and
// the total matching the filter.
func (r *GenerationRepository) ListByUser(ctx context.Context, userID int64, f models.GenerationFilter, limit, offset int) ([]models.Generation, int64, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	where := []string{"g.user_id = ?"}
	args := []any{userID}
	if f.ContentType != "" {
		where = append(where, "g.content_type = ?")
		args = append(args, f.ContentType)
	}
	if f.Favorite != nil {
		where = append(where, "g.is_favorite = ?")
		args = append(args, boolInt(*f.Favorite))
	}
	cond := " WHERE " + strings.Join(where, " AND ")

	pageArgs := append(append([]any{}, args...), limit, offset)
	rows, err := r.db.Prepare(generationSelect+cond+` ORDER BY g.created_at DESC, g.id DESC LIMIT ? OFFSET ?`).All(ctx, pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	total, err := count(ctx, r.db, `SELECT COUNT(*) AS count FROM generations g`+cond, args...)
	if err != nil {
		return nil, 0, err
	}
	out := make([]models.Generation, 0, len(rows))
	for _, row := range rows {
		out = append(out, *scanGeneration(row))
	}
	return out, total, nil
}

// ToggleFavorite flips the favorite flag of a generation owned by userID and
// returns the new value. found is false when no such generation exists.
func (r *GenerationRepository) ToggleFavorite(ctx context.Context, id, userID int64) (fav bool, found bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.Prepare(`UPDATE generations SET is_favorite = 1 - is_favorite WHERE id = ? AND user_id = ?`).Run(ctx, id, userID)
	if err != nil || res.RowsAffected == 0 {
		return false, false, err
	}
	row, err := r.db.Prepare(`SELECT is_favorite FROM generations WHERE id = ?`).Get(ctx, id)
	if err != nil || row == nil {
		return false, false, err
	}
	return row.Bool("is_favorite"), true, nil
}

// DeleteForUser removes a generation owned by userID.
func (r *GenerationRepository) DeleteForUser(ctx context.Context, id, userID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.Prepare(`DELETE FROM generations WHERE id = ? AND user_id = ?`).Run(ctx, id, userID)
	if err != nil {
		return false, err
	}
	return res.RowsAffected > 0, nil
}

// Delete removes any generation. Intended for administrative flows.
func (r *GenerationRepository) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.Prepare(`DELETE FROM generations WHERE id = ?`).Run(ctx, id)
	if err != nil {
		return false, err
	}
	return res.RowsAffected > 0, nil
}

func (r *GenerationRepository) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.db, `SELECT COUNT(*) AS count FROM generations`)
}

// CountForUser returns how many generations a user owns.
func (r *GenerationRepository) CountForUser(ctx context.Context, userID int64) (int64, error) {
	return count(ctx, r.db, `SELECT COUNT(*) AS count FROM generations WHERE user_id = ?`, userID)
}

// CountByContentType groups all generations by content type, largest first.
func (r *GenerationRepository) CountByContentType(ctx context.Context) ([]models.TypeCount, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.Prepare(`SELECT content_type, COUNT(*) AS count FROM generations GROUP BY content_type ORDER BY count DESC, content_type ASC`).All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.TypeCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.TypeCount{ContentType: row.String("content_type"), Count: row.Int64("count")})
	}
	return out, nil
}

// Recent returns the latest generations across all users.
func (r *GenerationRepository) Recent(ctx context.Context, limit int) ([]models.RecentGeneration, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.Prepare(`
SELECT g.id, g.content_type, g.created_at, u.name AS user_name, u.email
FROM generations g
JOIN users u ON g.user_id = u.id
ORDER BY g.created_at DESC, g.id DESC
LIMIT ?`).All(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]models.RecentGeneration, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.RecentGeneration{
			ID:          row.Int64("id"),
			ContentType: row.String("content_type"),
			CreatedAt:   row.Time("created_at"),
			UserName:    row.String("user_name"),
			Email:       row.String("email"),
		})
	}
	return out, nil
}

func scanGeneration(row db.Row) *models.Generation {
	return &models.Generation{
		ID:               row.Int64("id"),
		UserID:           row.Int64("user_id"),
		TemplateID:       row.NullInt64("template_id"),
		TemplateName:     row.String("template_name"),
		ContentType:      row.String("content_type"),
		Prompt:           row.String("prompt"),
		GeneratedContent: row.String("generated_content"),
		IsFavorite:       row.Bool("is_favorite"),
		CreatedAt:        row.Time("created_at"),
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
