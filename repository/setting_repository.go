package repository

import (
	"context"
	"time"

	"aiContentStudio/internal/db"
	"aiContentStudio/models"
)

type SettingRepository struct {
	db db.Preparer
}

func NewSettingRepository(p db.Preparer) *SettingRepository {
	return &SettingRepository{db: p}
}

// List returns every setting ordered by key.
func (r *SettingRepository) List(ctx context.Context) ([]models.Setting, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.db.Prepare(`SELECT key, value FROM settings ORDER BY key`).All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Setting, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.Setting{Key: row.String("key"), Value: row.String("value")})
	}
	return out, nil
}

// Get returns nil when key is unset.
func (r *SettingRepository) Get(ctx context.Context, key string) (*models.Setting, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	row, err := r.db.Prepare(`SELECT key, value FROM settings WHERE key = ?`).Get(ctx, key)
	if err != nil || row == nil {
		return nil, err
	}
	return &models.Setting{Key: row.String("key"), Value: row.String("value")}, nil
}

// Set inserts or replaces the value for key.
func (r *SettingRepository) Set(ctx context.Context, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.Prepare(`INSERT INTO settings (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`).Run(ctx, key, value)
	return err
}
