package models

import "time"

// Template is an admin-authored prompt pattern with {{name}} placeholders.
type Template struct {
	ID             int64     `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Description    string    `db:"description" json:"description"`
	ContentType    string    `db:"content_type" json:"content_type"`
	PromptTemplate string    `db:"prompt_template" json:"prompt_template"`
	Icon           string    `db:"icon" json:"icon"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
