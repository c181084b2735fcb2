package bootstrap

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"aiContentStudio/internal/db"
)

// Demo account credentials. Both accounts share DemoPassword.
const (
	DemoAdminEmail = "demo@admin.com"
	DemoUserEmail  = "demo@user.com"
	DemoPassword   = "demo123"
)

type demoAccount struct {
	email, name, role string
	credits           int64
}

var demoAccounts = []demoAccount{
	{email: DemoAdminEmail, name: "Demo Admin", role: "admin", credits: 9999},
	{email: DemoUserEmail, name: "Demo User", role: "user", credits: 500},
}

type demoGeneration struct {
	contentType, prompt, content string
}

var demoGenerations = []demoGeneration{
	{
		contentType: "blog",
		prompt:      "Write a blog post about AI in content marketing",
		content: `# The Future of AI in Content Marketing

Artificial Intelligence is changing how businesses create and distribute content.

## Why AI Matters for Content Marketing

- **Generate ideas faster**: AI can analyze trends and suggest topics
- **Write drafts quickly**: first drafts in seconds, not hours
- **Optimize for SEO**: built-in keyword optimization
- **Personalize at scale**: tailor content for different audiences

Use AI as an assistant, not a replacement, and always review generated content before publishing.`,
	},
	{
		contentType: "social",
		prompt:      "Create a LinkedIn post about productivity tips",
		content: `5 Productivity Hacks That Changed My Work Life

1. Time blocking: schedule everything, including breaks
2. Two-minute rule: if it takes less than 2 minutes, do it now
3. Single-tasking: multitasking is a myth
4. Morning routine: win the morning, win the day
5. Weekly review: reflect and plan every Sunday

What's your #1 productivity tip?

#Productivity #WorkLife #CareerGrowth`,
	},
	{
		contentType: "email",
		prompt:      "Write a welcome email for new SaaS subscribers",
		content: `Subject: Welcome to the family! Here's how to get started

Hi there,

Welcome aboard! Here's how to make the most of your first week:

Day 1: Complete your profile setup
Day 2: Watch our 5-minute quick start video
Day 3: Create your first project
Day 4: Invite your team members
Day 5: Explore advanced features

Cheers,
The Team`,
	},
	{
		contentType: "product",
		prompt:      "Write a product description for wireless earbuds",
		content: `SoundPro X1 Wireless Earbuds

- 40-hour total battery life with charging case
- Active Noise Cancellation
- Crystal-clear calls with 4 microphones
- IPX5 water resistance

Bluetooth 5.3 keeps a stable connection up to 30 feet.

30-day money-back guarantee, 1-year warranty.`,
	},
	{
		contentType: "ad",
		prompt:      "Create Facebook ad copy for an online course",
		content: `Stop Watching. Start Doing.

Our hands-on course teaches you real skills in just 30 days:
- Project-based learning
- Expert mentorship
- Certificate included
- Lifetime access

FLASH SALE: 60% OFF (ends Sunday). Click "Learn More" to claim your spot.`,
	},
}

// DemoResult reports what SeedDemo changed.
type DemoResult struct {
	Created     []string
	Updated     []string
	Generations int
}

// SeedDemo creates or resets the demo accounts and adds sample generations to
// the demo user. Existing accounts get their password, name, role and
// credits reset.
func SeedDemo(ctx context.Context, s *db.Store) (*DemoResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	res := &DemoResult{}
	err = s.Tx(ctx, func(tx *db.Tx) error {
		find := tx.Prepare(`SELECT id FROM users WHERE email = ?`)
		for _, acc := range demoAccounts {
			row, err := find.Get(ctx, acc.email)
			if err != nil {
				return err
			}
			if row != nil {
				_, err = tx.Prepare(`UPDATE users SET password = ?, name = ?, role = ?, credits = ?, updated_at = CURRENT_TIMESTAMP WHERE email = ?`).
					Run(ctx, string(hash), acc.name, acc.role, acc.credits, acc.email)
				if err != nil {
					return err
				}
				res.Updated = append(res.Updated, acc.email)
				continue
			}
			_, err = tx.Prepare(`INSERT INTO users (email, password, name, role, credits) VALUES (?, ?, ?, ?, ?)`).
				Run(ctx, acc.email, string(hash), acc.name, acc.role, acc.credits)
			if err != nil {
				return err
			}
			res.Created = append(res.Created, acc.email)
		}

		user, err := find.Get(ctx, DemoUserEmail)
		if err != nil {
			return err
		}
		ins := tx.Prepare(`INSERT INTO generations (user_id, content_type, prompt, generated_content) VALUES (?, ?, ?, ?)`)
		for _, g := range demoGenerations {
			if _, err := ins.Run(ctx, user.Int64("id"), g.contentType, g.prompt, g.content); err != nil {
				return err
			}
			res.Generations++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("demo data seeded", "component", "bootstrap",
		"created", len(res.Created), "updated", len(res.Updated), "generations", res.Generations)
	return res, nil
}
