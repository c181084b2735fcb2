package service

import (
	"context"
	"log/slog"
	"strings"

	"aiContentStudio/internal/apperr"
	"aiContentStudio/internal/auth"
	"aiContentStudio/internal/db"
	"aiContentStudio/models"
	"aiContentStudio/repository"
)

// DefaultStartingCredits is the balance granted at registration.
const DefaultStartingCredits = 100

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// RegisterInput is a registration request.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// ProfileInput changes the caller's own profile. Empty fields are left alone.
type ProfileInput struct {
	Name            string
	CurrentPassword string
	NewPassword     string
}

// AccountService registers users and authenticates them by password.
type AccountService struct {
	store           *db.Store
	users           *repository.UserRepository
	issuer          *auth.Issuer
	startingCredits int64
	logger          *slog.Logger
}

func NewAccountService(store *db.Store, issuer *auth.Issuer, startingCredits int64) *AccountService {
	if startingCredits < 0 {
		startingCredits = DefaultStartingCredits
	}
	return &AccountService{
		store:           store,
		users:           repository.NewUserRepository(store),
		issuer:          issuer,
		startingCredits: startingCredits,
		logger:          slog.Default().With("component", "account"),
	}
}

// Register creates an account. The first account ever created is an admin.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" || in.Password == "" || name == "" {
		return nil, apperr.Validation("All fields are required")
	}
	if len(in.Password) < auth.MinPasswordLength {
		return nil, apperr.Validation("Password must be at least %d characters", auth.MinPasswordLength)
	}
	// Hash before taking the writer lock; bcrypt is deliberately slow.
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	var created *models.User
	err = s.store.Tx(ctx, func(tx *db.Tx) error {
		users := s.users.WithTx(tx)
		existing, err := users.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperr.Conflict("Email already registered")
		}
		n, err := users.Count(ctx)
		if err != nil {
			return err
		}
		role := models.RoleUser
		if n == 0 {
			role = models.RoleAdmin
		}
		created, err = users.Create(ctx, &models.User{
			Email:        email,
			PasswordHash: hash,
			Name:         name,
			Credits:      s.startingCredits,
			Role:         role,
		})
		if db.IsUniqueViolation(err) {
			return apperr.Conflict("Email already registered")
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	token, err := s.issuer.Issue(created.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	s.logger.Info("user registered", "user_id", created.ID, "role", created.Role)
	return &AuthResult{Token: token, User: created}, nil
}

// Login verifies a password and issues a fresh token.
func (s *AccountService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Validation("Email and password are required")
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil || !auth.CheckPassword(u.PasswordHash, password) {
		return nil, apperr.Unauthenticated("Invalid credentials")
	}
	token, err := s.issuer.Issue(u.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &AuthResult{Token: token, User: u}, nil
}

// UpdateProfile changes the caller's name and/or password. A password change
// needs both the current and the new password; supplying only one is an error.
func (s *AccountService) UpdateProfile(ctx context.Context, userID int64, in ProfileInput) (*models.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound("User not found")
	}

	if (in.CurrentPassword == "") != (in.NewPassword == "") {
		return nil, apperr.Validation("Current and new password are both required to change password")
	}
	var newHash string
	if in.CurrentPassword != "" {
		if !auth.CheckPassword(u.PasswordHash, in.CurrentPassword) {
			return nil, apperr.Validation("Current password is incorrect")
		}
		if len(in.NewPassword) < auth.MinPasswordLength {
			return nil, apperr.Validation("New password must be at least %d characters", auth.MinPasswordLength)
		}
		if newHash, err = auth.HashPassword(in.NewPassword); err != nil {
			return nil, apperr.Internal(err)
		}
	}

	name := strings.TrimSpace(in.Name)
	err = s.store.Tx(ctx, func(tx *db.Tx) error {
		users := s.users.WithTx(tx)
		if name != "" {
			if _, err := users.UpdateName(ctx, userID, name); err != nil {
				return err
			}
		}
		if newHash != "" {
			if _, err := users.UpdatePassword(ctx, userID, newHash); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
