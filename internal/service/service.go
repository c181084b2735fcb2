// Package service implements the credit-metered generation workflow and the
// account, template and admin operations around it.
package service

import (
	"time"

	"aiContentStudio/internal/auth"
	"aiContentStudio/internal/db"
	"aiContentStudio/internal/generator"
)

// Options configures New.
type Options struct {
	Generator        generator.Generator
	GeneratorTimeout time.Duration
	StartingCredits  int64
}

// Services bundles every service over one store handle.
type Services struct {
	Accounts    *AccountService
	Generations *GenerationService
	Templates   *TemplateService
	Admin       *AdminService
}

// New wires the services to store and issuer.
func New(store *db.Store, issuer *auth.Issuer, opts Options) *Services {
	return &Services{
		Accounts:    NewAccountService(store, issuer, opts.StartingCredits),
		Generations: NewGenerationService(store, opts.Generator, opts.GeneratorTimeout),
		Templates:   NewTemplateService(store),
		Admin:       NewAdminService(store),
	}
}
