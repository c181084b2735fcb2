package bootstrap

import (
	"context"

	"aiContentStudio/internal/db"
)

// DefaultTemplate is one entry of the built-in template catalog.
type DefaultTemplate struct {
	Name           string
	Description    string
	ContentType    string
	PromptTemplate string
	Icon           string
}

// DefaultTemplates is the catalog inserted into an empty templates table.
var DefaultTemplates = []DefaultTemplate{
	{
		Name:           "Blog Post",
		Description:    "Generate engaging blog posts on any topic",
		ContentType:    "blog",
		PromptTemplate: "Write a comprehensive blog post about: {{topic}}. Include an engaging introduction, main points with examples, and a conclusion. Tone: {{tone}}. Length: approximately {{length}} words.",
		Icon:           "file-text",
	},
	{
		Name:           "Social Media Post",
		Description:    "Create viral social media content",
		ContentType:    "social",
		PromptTemplate: "Create a {{platform}} post about: {{topic}}. Make it engaging and include relevant hashtags. Tone: {{tone}}.",
		Icon:           "share-2",
	},
	{
		Name:           "Email Copy",
		Description:    "Write professional email content",
		ContentType:    "email",
		PromptTemplate: "Write a {{email_type}} email about: {{topic}}. Purpose: {{purpose}}. Tone: {{tone}}. Include a compelling subject line.",
		Icon:           "mail",
	},
	{
		Name:           "Product Description",
		Description:    "Create compelling product descriptions",
		ContentType:    "product",
		PromptTemplate: "Write a compelling product description for: {{product_name}}. Features: {{features}}. Target audience: {{audience}}. Highlight benefits and include a call to action.",
		Icon:           "shopping-bag",
	},
	{
		Name:           "Ad Copy",
		Description:    "Generate high-converting ad copy",
		ContentType:    "ad",
		PromptTemplate: "Create {{ad_type}} ad copy for: {{product_or_service}}. Target audience: {{audience}}. Key benefit: {{benefit}}. Include a strong call to action.",
		Icon:           "megaphone",
	},
	{
		Name:           "SEO Meta Description",
		Description:    "Write SEO-optimized meta descriptions",
		ContentType:    "seo",
		PromptTemplate: "Write an SEO-optimized meta description for a page about: {{topic}}. Target keyword: {{keyword}}. Keep it under 160 characters and make it compelling.",
		Icon:           "search",
	},
	{
		Name:           "YouTube Script",
		Description:    "Create engaging video scripts",
		ContentType:    "video",
		PromptTemplate: "Write a YouTube video script about: {{topic}}. Video length: {{duration}} minutes. Include a hook, main content sections, and a call to action. Tone: {{tone}}.",
		Icon:           "video",
	},
	{
		Name:           "Newsletter",
		Description:    "Craft engaging newsletter content",
		ContentType:    "newsletter",
		PromptTemplate: "Write a newsletter about: {{topic}}. Include a catchy headline, introduction, main content, and a call to action. Tone: {{tone}}.",
		Icon:           "newspaper",
	},
}

// SeedDefaultTemplates inserts DefaultTemplates when the templates table is
// empty and returns how many rows it inserted. The emptiness check and the
// inserts run as one unit under the writer lock, so racing callers seed at
// most once.
func SeedDefaultTemplates(ctx context.Context, s *db.Store) (int, error) {
	inserted := 0
	err := s.Tx(ctx, func(tx *db.Tx) error {
		row, err := tx.Prepare(`SELECT COUNT(*) AS count FROM templates`).Get(ctx)
		if err != nil {
			return err
		}
		if row.Int64("count") > 0 {
			return nil
		}
		ins := tx.Prepare(`INSERT INTO templates (name, description, content_type, prompt_template, icon)
            VALUES (?, ?, ?, ?, ?)`)
		for _, t := range DefaultTemplates {
			if _, err := ins.Run(ctx, t.Name, t.Description, t.ContentType, t.PromptTemplate, t.Icon); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
