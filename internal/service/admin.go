package service

import (
	"context"
	"log/slog"
	"strings"

	"aiContentStudio/internal/apperr"
	"aiContentStudio/internal/db"
	"aiContentStudio/models"
	"aiContentStudio/repository"
)

// AdminService backs the admin-only operations. Callers are expected to
// have verified the admin role on this request.
type AdminService struct {
	store       *db.Store
	users       *repository.UserRepository
	templates   *repository.TemplateRepository
	generations *repository.GenerationRepository
	settings    *repository.SettingRepository
	logger      *slog.Logger
}

func NewAdminService(store *db.Store) *AdminService {
	return &AdminService{
		store:       store,
		users:       repository.NewUserRepository(store),
		templates:   repository.NewTemplateRepository(store),
		generations: repository.NewGenerationRepository(store),
		settings:    repository.NewSettingRepository(store),
		logger:      slog.Default().With("component", "admin"),
	}
}

// Stats summarizes the whole system for the dashboard.
func (s *AdminService) Stats(ctx context.Context) (*models.Stats, error) {
	var (
		st  models.Stats
		err error
	)
	if st.TotalUsers, err = s.users.Count(ctx); err != nil {
		return nil, err
	}
	if st.TotalGenerations, err = s.generations.Count(ctx); err != nil {
		return nil, err
	}
	if st.TotalTemplates, err = s.templates.CountActive(ctx); err != nil {
		return nil, err
	}
	if st.GenerationsByType, err = s.generations.CountByContentType(ctx); err != nil {
		return nil, err
	}
	if st.RecentGenerations, err = s.generations.Recent(ctx, 10); err != nil {
		return nil, err
	}
	if st.TopUsers, err = s.users.TopByGenerations(ctx, 5); err != nil {
		return nil, err
	}
	return &st, nil
}

// UserPage is one page of the user listing.
type UserPage struct {
	Users      []models.User     `json:"users"`
	Pagination models.Pagination `json:"pagination"`
}

// ListUsers pages through users, optionally filtered by email or name.
func (s *AdminService) ListUsers(ctx context.Context, page, limit int, search string) (*UserPage, error) {
	page, limit = normalizePage(page, limit, 20)
	users, total, err := s.users.List(ctx, repository.ListUsersParams{
		Search: search,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}
	return &UserPage{Users: users, Pagination: models.NewPagination(page, limit, total)}, nil
}

// SetCredits overwrites a user's balance.
func (s *AdminService) SetCredits(ctx context.Context, userID, credits int64) (*models.User, error) {
	if credits < 0 {
		return nil, apperr.Validation("Invalid credits value")
	}
	ok, err := s.users.SetCredits(ctx, userID, credits)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	s.logger.Info("credits updated", "user_id", userID, "credits", credits)
	return s.users.GetByID(ctx, userID)
}

// SetRole changes a user's role. Demoting the only admin is rejected.
func (s *AdminService) SetRole(ctx context.Context, userID int64, role string) (*models.User, error) {
	if !models.ValidRole(role) {
		return nil, apperr.Validation("Invalid role")
	}
	var updated *models.User
	err := s.store.Tx(ctx, func(tx *db.Tx) error {
		users := s.users.WithTx(tx)
		target, err := users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if target == nil {
			return apperr.NotFound("User not found")
		}
		if role == models.RoleUser && target.IsAdmin() {
			if err := ensureAnotherAdmin(ctx, users, "Cannot remove the last admin"); err != nil {
				return err
			}
		}
		if _, err := users.SetRole(ctx, userID, role); err != nil {
			return err
		}
		updated, err = users.GetByID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("role updated", "user_id", userID, "role", role)
	return updated, nil
}

// DeleteUser removes a user and their generations. Admins cannot delete
// themselves here, and the only admin can never be deleted.
func (s *AdminService) DeleteUser(ctx context.Context, actorID, userID int64) error {
	if actorID == userID {
		return apperr.Validation("Cannot delete your own account")
	}
	err := s.store.Tx(ctx, func(tx *db.Tx) error {
		users := s.users.WithTx(tx)
		target, err := users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if target == nil {
			return apperr.NotFound("User not found")
		}
		if target.IsAdmin() {
			if err := ensureAnotherAdmin(ctx, users, "Cannot delete the last admin"); err != nil {
				return err
			}
		}
		_, err = users.Delete(ctx, userID)
		return err
	})
	if err != nil {
		return err
	}
	s.logger.Info("user deleted", "user_id", userID, "by", actorID)
	return nil
}

func ensureAnotherAdmin(ctx context.Context, users *repository.UserRepository, msg string) error {
	n, err := users.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return err
	}
	if n <= 1 {
		return apperr.Conflict("%s", msg)
	}
	return nil
}

// TemplateInput creates or replaces a template.
type TemplateInput struct {
	Name           string
	Description    string
	ContentType    string
	PromptTemplate string
	Icon           string
	IsActive       *bool // nil means active
}

func (in TemplateInput) validate() error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.ContentType) == "" || strings.TrimSpace(in.PromptTemplate) == "" {
		return apperr.Validation("Name, content type, and prompt template are required")
	}
	return nil
}

func (in TemplateInput) model() *models.Template {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	icon := strings.TrimSpace(in.Icon)
	if icon == "" {
		icon = "file-text"
	}
	return &models.Template{
		Name:           strings.TrimSpace(in.Name),
		Description:    in.Description,
		ContentType:    strings.TrimSpace(in.ContentType),
		PromptTemplate: in.PromptTemplate,
		Icon:           icon,
		IsActive:       active,
	}
}

// ListTemplates returns every template including inactive ones.
func (s *AdminService) ListTemplates(ctx context.Context) ([]models.Template, error) {
	return s.templates.ListAll(ctx)
}

func (s *AdminService) CreateTemplate(ctx context.Context, in TemplateInput) (*models.Template, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	return s.templates.Create(ctx, in.model())
}

// UpdateTemplate replaces every field of a template.
func (s *AdminService) UpdateTemplate(ctx context.Context, id int64, in TemplateInput) (*models.Template, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	t := in.model()
	t.ID = id
	ok, err := s.templates.Update(ctx, t)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("Template not found")
	}
	return s.templates.GetByID(ctx, id)
}

func (s *AdminService) DeleteTemplate(ctx context.Context, id int64) error {
	ok, err := s.templates.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("Template not found")
	}
	return nil
}

// DeleteGeneration removes any user's generation.
func (s *AdminService) DeleteGeneration(ctx context.Context, id int64) error {
	ok, err := s.generations.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("Generation not found")
	}
	return nil
}

func (s *AdminService) ListSettings(ctx context.Context) ([]models.Setting, error) {
	return s.settings.List(ctx)
}

// SetSetting stores value under key, replacing any previous value.
func (s *AdminService) SetSetting(ctx context.Context, key, value string) (*models.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, apperr.Validation("Setting key is required")
	}
	if err := s.settings.Set(ctx, key, value); err != nil {
		return nil, err
	}
	return &models.Setting{Key: key, Value: value}, nil
}
