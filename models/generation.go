package models

import "time"

// ContentTypeCustom tags generations made from a free-form prompt.
const ContentTypeCustom = "custom"

// Generation is the audit record of one successful generation call.
// GeneratedContent is immutable once written; only IsFavorite changes.
type Generation struct {
	ID               int64     `db:"id" json:"id"`
	UserID           int64     `db:"user_id" json:"user_id"`
	TemplateID       *int64    `db:"template_id" json:"template_id"`
	TemplateName     string    `db:"template_name" json:"template_name,omitempty"`
	ContentType      string    `db:"content_type" json:"content_type"`
	Prompt           string    `db:"prompt" json:"prompt"`
	GeneratedContent string    `db:"generated_content" json:"generated_content"`
	IsFavorite       bool      `db:"is_favorite" json:"is_favorite"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// GenerationFilter narrows a history listing.
type GenerationFilter struct {
	ContentType string
	Favorite    *bool
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// NewPagination computes the page count for total rows.
func NewPagination(page, limit int, total int64) Pagination {
	p := Pagination{Page: page, Limit: limit, Total: total}
	if limit > 0 {
		p.Pages = (total + int64(limit) - 1) / int64(limit)
	}
	return p
}
