package handler

import (
	"gorm.io/gorm"

	"github.com/dailyroutine/internal/config"
	"github.com/dailyroutine/internal/service"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db        *gorm.DB
	auth      *service.AuthService
	students  *service.StudentService
	routines  *service.RoutineService
	summaries *service.SummaryService
}

// NewAPI constructs a handler set with shared services.
func NewAPI(db *gorm.DB, cfg config.AppConfig) *API {
	return &API{
		db:        db,
		auth:      service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL),
		students:  service.NewStudentService(db),
		routines:  service.NewRoutineService(db),
		summaries: service.NewSummaryService(db),
	}
}

// DB exposes the underlying gorm instance for tests and scripts.
func (a *API) DB() *gorm.DB {
	return a.db
}

// Auth exposes the auth service so seeds and tests can mint tokens.
func (a *API) Auth() *service.AuthService {
	return a.auth
}
