package models

import "time"

// TypeCount is the number of generations of one content type.
type TypeCount struct {
	ContentType string `json:"content_type"`
	Count       int64  `json:"count"`
}

// RecentGeneration is a generation summary joined with its owner.
type RecentGeneration struct {
	ID          int64     `json:"id"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
	UserName    string    `json:"user_name"`
	Email       string    `json:"email"`
}

// UserActivity is a user with their generation count.
type UserActivity struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	GenerationCount int64  `json:"generation_count"`
}

// Stats is the admin dashboard summary.
type Stats struct {
	TotalUsers        int64              `json:"totalUsers"`
	TotalGenerations  int64              `json:"totalGenerations"`
	TotalTemplates    int64              `json:"totalTemplates"`
	GenerationsByType []TypeCount        `json:"generationsByType"`
	RecentGenerations []RecentGeneration `json:"recentGenerations"`
	TopUsers          []UserActivity     `json:"topUsers"`
}
