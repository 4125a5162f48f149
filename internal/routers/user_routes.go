package routers

import (
	"kvr/userdb/internal/config"
	"kvr/userdb/internal/handlers"
	"kvr/userdb/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UserRoutes mounts the public, API-key-protected user endpoints.
func UserRoutes(r *chi.Mux, userHandler *handlers.UserHandler, cfg *config.Config, logger *zap.Logger) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.APIKey(cfg, logger))

		r.Post("/users", userHandler.CreateUserHandler)
		r.Get("/users/{username}", userHandler.GetUserByUsernameHandler)
		r.Get("/users/pin/{pin}", userHandler.GetUserByPinHandler)
		r.Patch("/users/{username}", userHandler.UpdateUserHandler)
		r.Delete("/users/{username}", userHandler.DeleteUserHandler)
		r.Get("/leaderboard/chess", userHandler.LeaderboardHandler)
	})
}
