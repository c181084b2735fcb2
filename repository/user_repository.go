package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aiContentStudio/internal/db"
	"aiContentStudio/models"
)

const userColumns = `id, email, password, name, credits, role, created_at, updated_at`

type UserRepository struct {
	db db.Preparer
}

func NewUserRepository(p db.Preparer) *UserRepository {
	return &UserRepository{db: p}
}

// WithTx returns a repository whose statements run inside tx.
func (r *UserRepository) WithTx(tx *db.Tx) *UserRepository {
	return &UserRepository{db: tx}
}

// Create inserts a new user and returns it as stored.
func (r *UserRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if u.Role == "" {
		u.Role = models.RoleUser
	}
	res, err := r.db.Prepare(`INSERT INTO users (email, password, name, credits, role) VALUES (?, ?, ?, ?, ?)`).
		Run(ctx, u.Email, u.PasswordHash, u.Name, u.Credits, u.Role)
	if err != nil {
		return nil, err
	}
	created, err := r.GetByID(ctx, res.LastInsertID)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("created user not found: id=%d", res.LastInsertID)
	}
	return created, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	row, err := r.db.Prepare(`SELECT ` + userColumns + ` FROM users WHERE id = ?`).Get(ctx, id)
	if err != nil || row == nil {
		return nil, err
	}
	return scanUser(row), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	row, err := r.db.Prepare(`SELECT ` + userColumns + ` FROM users WHERE email = ?`).Get(ctx, email)
	if err != nil || row == nil {
		return nil, err
	}
	return scanUser(row), nil
}

// Count returns the number of registered users.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.db, `SELECT COUNT(*) AS count FROM users`)
}

// CountByRole returns the number of users holding role.
func (r *UserRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	return count(ctx, r.db, `SELECT COUNT(*) AS count FROM users WHERE role = ?`, role)
}

// ListUsersParams filters and paginates List.
type ListUsersParams struct {
	Search string // substring of email or name
	Limit  int
	Offset int
}

// List returns one page of users, newest first, and the total matching.
func (r *UserRepository) List(ctx context.Context, p ListUsersParams) ([]models.User, int64, error) {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var where []string
	var args []any
	if s := strings.TrimSpace(p.Search); s != "" {
		where = append(where, "(email LIKE ? OR name LIKE ?)")
		args = append(args, "%"+s+"%", "%"+s+"%")
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	rows, err := r.db.Prepare(`SELECT `+userColumns+` FROM users`+cond+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`).
		All(ctx, append(args, p.Limit, p.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	total, err := count(ctx, r.db, `SELECT COUNT(*) AS count FROM users`+cond, args...)
	if err != nil {
		return nil, 0, err
	}
	out := make([]models.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, *scanUser(row))
	}
	return out, total, nil
}

// UpdateName reports whether a user with id existed.
func (r *UserRepository) UpdateName(ctx context.Context, id int64, name string) (bool, error) {
	return r.update(ctx, `UPDATE users SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, name, id)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, hash string) (bool, error) {
	return r.update(ctx, `UPDATE users SET password = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, hash, id)
}

// SetCredits overwrites the balance. Intended for administrative flows.
func (r *UserRepository) SetCredits(ctx context.Context, id, credits int64) (bool, error) {
	return r.update(ctx, `UPDATE users SET credits = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, credits, id)
}

func (r *UserRepository) SetRole(ctx context.Context, id int64, role string) (bool, error) {
	return r.update(ctx, `UPDATE users SET role = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, role, id)
}

// DebitOne takes one credit from the user. It reports false, changing
// nothing, when the balance is already zero or the user is gone.
func (r *UserRepository) DebitOne(ctx context.Context, id int64) (bool, error) {
	return r.update(ctx, `UPDATE users SET credits = credits - 1, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND credits > 0`, id)
}

// Delete removes the user; their generations go with them.
func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return r.update(ctx, `DELETE FROM users WHERE id = ?`, id)
}

// TopByGenerations returns the users with the most generations.
func (r *UserRepository) TopByGenerations(ctx context.Context, limit int) ([]models.UserActivity, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Prepare(`
SELECT u.id, u.name, u.email, COUNT(g.id) AS generation_count
FROM users u
LEFT JOIN generations g ON u.id = g.user_id
GROUP BY u.id
ORDER BY generation_count DESC, u.id ASC
LIMIT ?`).All(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserActivity, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.UserActivity{
			ID:              row.Int64("id"),
			Name:            row.String("name"),
			Email:           row.String("email"),
			GenerationCount: row.Int64("generation_count"),
		})
	}
	return out, nil
}

func (r *UserRepository) update(ctx context.Context, text string, args ...any) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.Prepare(text).Run(ctx, args...)
	if err != nil {
		return false, err
	}
	return res.RowsAffected > 0, nil
}

func scanUser(row db.Row) *models.User {
	return &models.User{
		ID:           row.Int64("id"),
		Email:        row.String("email"),
		PasswordHash: row.String("password"),
		Name:         row.String("name"),
		Credits:      row.Int64("credits"),
		Role:         row.String("role"),
		CreatedAt:    row.Time("created_at"),
		UpdatedAt:    row.Time("updated_at"),
	}
}

// count runs a single-column COUNT query aliased as count.
func count(ctx context.Context, p db.Preparer, text string, args ...any) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	row, err := p.Prepare(text).Get(ctx, args...)
	if err != nil {
		return 0, err
	}
	return row.Int64("count"), nil
}
