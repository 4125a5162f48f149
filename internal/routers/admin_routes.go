package routers

import (
	"kvr/userdb/internal/handlers"
	"kvr/userdb/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AdminRoutes mounts the admin console API. Status and set stay outside the
// basic-auth group: status drives the console's setup-vs-login choice, and
// set enforces auth itself because the bootstrap call is unauthenticated.
func AdminRoutes(r *chi.Mux, adminHandler *handlers.AdminHandler, checker middleware.CredentialChecker, logger *zap.Logger) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/admin/status", adminHandler.StatusHandler)
		r.Post("/admin/set", adminHandler.SetPasswordHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(checker, logger))

			r.Get("/fields", adminHandler.FieldsHandler)
			r.Get("/users", adminHandler.ListUsersHandler)
			r.Post("/users", adminHandler.CreateUserHandler)
			r.Patch("/users/{username}", adminHandler.UpdateUserHandler)
			r.Delete("/users/{username}", adminHandler.DeleteUserHandler)
		})
	})
}
