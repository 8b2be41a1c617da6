package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/resource-directory/internal/auth"
	"github.com/frahmantamala/resource-directory/internal/importer"
	"github.com/frahmantamala/resource-directory/internal/lookup"
	"github.com/frahmantamala/resource-directory/internal/resource"
	"github.com/frahmantamala/resource-directory/internal/transport/middleware"
	"github.com/frahmantamala/resource-directory/internal/transport/swagger"
	"github.com/frahmantamala/resource-directory/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, authHandler *auth.Handler, userHandler *user.Handler, resourceHandler *resource.Handler, lookupHandler *lookup.Handler, importHandler *importer.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)
	rbac := auth.NewRBACAuthorization(logger)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		if authHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", authHandler.Login)
				sr.Post("/signup", authHandler.Signup)
				sr.Post("/refresh", authHandler.RefreshToken)
				sr.Post("/logout", authHandler.Logout)
			})
		}

		if authHandler == nil {
			return
		}

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			// Current user
			if userHandler != nil {
				pr.Get("/users/me", userHandler.GetCurrentUser)
			}

			// Any directory permission grants read access
			canRead := middleware.RequirePermissions(
				auth.PermViewResources, auth.PermManageResources, auth.PermBulkImport)

			// Dropdown and role lookups for the grid UI
			if lookupHandler != nil {
				pr.Route("/lookups", func(lr chi.Router) {
					lr.Use(canRead)
					lr.Get("/dropdowns", lookupHandler.GetDropdowns)
					lr.Get("/roles", lookupHandler.GetRoleOptions)
				})
			}

			// Resource directory routes
			if resourceHandler != nil {
				pr.Route("/resources", func(er chi.Router) {
					// Read routes
					er.Group(func(rr chi.Router) {
						rr.Use(canRead)
						rr.Get("/", resourceHandler.GetAllResources)              // GET /resources
						rr.Post("/query", resourceHandler.QueryResources)         // POST /resources/query
						rr.Get("/statistics", resourceHandler.GetStatistics)      // GET /resources/statistics
						rr.Get("/email-exists", resourceHandler.CheckEmailExists) // GET /resources/email-exists?email=
						rr.Get("/{id}", resourceHandler.GetResource)              // GET /resources/:id
					})

					// Write routes with permission protection
					er.Group(func(mr chi.Router) {
						mr.Use(rbac.RequireManageResources())
						mr.Post("/", resourceHandler.CreateResource)       // POST /resources
						mr.Put("/{id}", resourceHandler.UpdateResource)    // PUT /resources/:id
						mr.Delete("/{id}", resourceHandler.DeleteResource) // DELETE /resources/:id
						mr.Delete("/", resourceHandler.DeleteResources)    // DELETE /resources?ids=1,2
					})

					// Bulk routes
					er.Group(func(mr chi.Router) {
						mr.Use(rbac.RequireBulkImport())
						mr.Post("/bulk", resourceHandler.BulkCreateResources)  // POST /resources/bulk
						mr.Patch("/bulk", resourceHandler.BulkUpdateResources) // PATCH /resources/bulk

						if importHandler != nil {
							mr.Post("/bulk/async", importHandler.SubmitImport)          // POST /resources/bulk/async
							mr.Get("/bulk/jobs/{jobID}", importHandler.GetImportStatus) // GET /resources/bulk/jobs/:jobID
						}
					})
				})
			}
		})
	})
}
