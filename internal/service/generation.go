package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"aiContentStudio/internal/apperr"
	"aiContentStudio/internal/db"
	"aiContentStudio/internal/generator"
	"aiContentStudio/models"
	"aiContentStudio/repository"
)

// DefaultGeneratorTimeout bounds a single external generation call.
const DefaultGeneratorTimeout = 60 * time.Second

const msgGenerationFailed = "Failed to generate content. Please try again."

// GenerateRequest is one generation attempt.
type GenerateRequest struct {
	TemplateID  *int64
	Prompt      string
	ContentType string
	Parameters  map[string]string
}

// GenerateResult is returned after a successful, charged generation.
type GenerateResult struct {
	ID               int64  `json:"id"`
	Content          string `json:"content"`
	CreditsRemaining int64  `json:"creditsRemaining"`
}

// GenerationService meters generations against user credits and keeps the
// generation history.
type GenerationService struct {
	store       *db.Store
	users       *repository.UserRepository
	templates   *repository.TemplateRepository
	generations *repository.GenerationRepository
	gen         generator.Generator
	timeout     time.Duration
	logger      *slog.Logger
}

func NewGenerationService(store *db.Store, gen generator.Generator, timeout time.Duration) *GenerationService {
	if timeout <= 0 {
		timeout = DefaultGeneratorTimeout
	}
	return &GenerationService{
		store:       store,
		users:       repository.NewUserRepository(store),
		templates:   repository.NewTemplateRepository(store),
		generations: repository.NewGenerationRepository(store),
		gen:         gen,
		timeout:     timeout,
		logger:      slog.Default().With("component", "generation"),
	}
}

// Generate runs one attempt for userID. A result is returned only when the
// record and the one-credit debit were committed together; on any failure
// neither happened.
func (s *GenerationService) Generate(ctx context.Context, userID int64, req GenerateRequest) (*GenerateResult, error) {
	// CheckCredits
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.Unauthenticated("User not found")
	}
	if user.Credits <= 0 {
		return nil, apperr.InsufficientCredits()
	}

	// ResolvePrompt
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, apperr.Validation("Prompt is required")
	}
	resolved := req.Prompt
	contentType := strings.TrimSpace(req.ContentType)
	var templateID *int64
	if req.TemplateID != nil {
		tpl, err := s.templates.GetActive(ctx, *req.TemplateID)
		if err != nil {
			return nil, err
		}
		if tpl == nil {
			return nil, apperr.NotFound("Template not found")
		}
		var missing []string
		resolved, missing = ResolvePrompt(tpl.PromptTemplate, req.Parameters)
		if len(missing) > 0 {
			return nil, apperr.Validation("Missing template parameters: %s", missingList(missing))
		}
		if contentType == "" {
			contentType = tpl.ContentType
		}
		id := tpl.ID
		templateID = &id
	}
	if contentType == "" {
		contentType = models.ContentTypeCustom
	}

	// CallGenerator, outside the writer lock.
	text, err := s.call(ctx, resolved)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		s.logger.Info("caller went away; discarding generated text", "user_id", userID)
		return nil, apperr.Upstream("Generation cancelled", err)
	}

	// PersistAndDebit as one unit. The balance is re-derived under the lock,
	// so two racing attempts cannot both spend the last credit.
	var res GenerateResult
	err = s.store.Tx(ctx, func(tx *db.Tx) error {
		users := s.users.WithTx(tx)
		ok, err := users.DebitOne(ctx, userID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.InsufficientCredits()
		}
		id, err := s.generations.WithTx(tx).Create(ctx, &models.Generation{
			UserID:           userID,
			TemplateID:       templateID,
			ContentType:      contentType,
			Prompt:           req.Prompt,
			GeneratedContent: text,
		})
		if err != nil {
			return err
		}
		after, err := users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if after == nil {
			return apperr.Unauthenticated("User not found")
		}
		res = GenerateResult{ID: id, Content: text, CreditsRemaining: after.Credits}
		return nil
	})
	if err != nil {
		var pe *db.PersistenceError
		if errors.As(err, &pe) {
			s.logger.Error("persist generation failed; nothing charged", "user_id", userID, "error", err)
			return nil, apperr.Persistence(msgGenerationFailed, err)
		}
		return nil, err
	}
	s.logger.Info("generation recorded", "user_id", userID, "generation_id", res.ID,
		"content_type", contentType, "credits_remaining", res.CreditsRemaining)
	return &res, nil
}

func (s *GenerationService) call(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := s.gen.Generate(callCtx, prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = generator.ErrEmptyResponse
	}
	if err == nil {
		s.logger.Debug("generator returned", "elapsed", time.Since(start))
		return text, nil
	}

	s.logger.Warn("generator failed", "elapsed", time.Since(start), "error", err)
	switch {
	case errors.Is(err, generator.ErrInvalidCredentials):
		return "", apperr.Upstream("Invalid OpenAI API key. Please check your configuration.", err)
	case ctx.Err() != nil:
		return "", apperr.Upstream("Generation cancelled", err)
	case errors.Is(callCtx.Err(), context.DeadlineExceeded):
		return "", apperr.Upstream("Generation timed out. Please try again.", err)
	default:
		return "", apperr.Upstream(msgGenerationFailed, err)
	}
}

// HistoryQuery filters and paginates History.
type HistoryQuery struct {
	Page        int
	Limit       int
	ContentType string
	Favorite    *bool
}

// HistoryPage is one page of a user's generations.
type HistoryPage struct {
	Generations []models.Generation `json:"generations"`
	Pagination  models.Pagination   `json:"pagination"`
}

// History lists the caller's own generations, newest first.
func (s *GenerationService) History(ctx context.Context, userID int64, q HistoryQuery) (*HistoryPage, error) {
	page, limit := normalizePage(q.Page, q.Limit, 10)
	rows, total, err := s.generations.ListByUser(ctx, userID,
		models.GenerationFilter{ContentType: q.ContentType, Favorite: q.Favorite}, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	return &HistoryPage{Generations: rows, Pagination: models.NewPagination(page, limit, total)}, nil
}

// Get returns one of the caller's own generations.
func (s *GenerationService) Get(ctx context.Context, userID, id int64) (*models.Generation, error) {
	g, err := s.generations.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, apperr.NotFound("Generation not found")
	}
	return g, nil
}

// ToggleFavorite flips the favorite flag of one of the caller's generations
// and returns the new value.
func (s *GenerationService) ToggleFavorite(ctx context.Context, userID, id int64) (bool, error) {
	var fav bool
	err := s.store.Tx(ctx, func(tx *db.Tx) error {
		v, found, err := s.generations.WithTx(tx).ToggleFavorite(ctx, id, userID)
		if err != nil {
			return err
		}
		if !found {
			return apperr.NotFound("Generation not found")
		}
		fav = v
		return nil
	})
	return fav, err
}

// Delete removes one of the caller's generations.
func (s *GenerationService) Delete(ctx context.Context, userID, id int64) error {
	ok, err := s.generations.DeleteForUser(ctx, id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("Generation not found")
	}
	return nil
}

func normalizePage(page, limit, defaultLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
