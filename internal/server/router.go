package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rangerisrael/pet-portal-sub000/internal/config"
	"github.com/rangerisrael/pet-portal-sub000/internal/domain"
	"github.com/rangerisrael/pet-portal-sub000/internal/handler"
)

// NewRouter wires HTTP routes and middleware.
func NewRouter(cfg config.Config,
	logger *slog.Logger,
	health handler.HealthHandler,
	auth handler.AuthHandler,
	profile handler.ProfileHandler,
	branches handler.BranchHandler,
	staff handler.StaffHandler,
	pets handler.PetHandler,
	appointments handler.AppointmentHandler,
	records handler.MedicalRecordHandler,
	inventory handler.InventoryHandler,
	stockRequests handler.StockRequestHandler,
	invoices handler.InvoiceHandler,
	notifications handler.NotificationHandler,
	preferences handler.PreferencesHandler,
	dashboard handler.DashboardHandler,
	auditLogs handler.AuditLogHandler,
	exports handler.ExportHandler,
	docs handler.DocsHandler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(200, 1*time.Minute))

	health.RegisterRoutes(r)
	auth.RegisterRoutes(r)
	docs.RegisterRoutes(r)
	r.Method("GET", "/metrics", promhttp.Handler())

	fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir)))
	r.Get("/uploads/*", fileServer.ServeHTTP)

	r.Group(func(pr chi.Router) {
		pr.Use(AuthMiddleware(cfg.JWTSecret))

		// any authenticated user
		auth.RegisterProtectedRoutes(pr)
		profile.RegisterRoutes(pr)
		branches.RegisterRoutes(pr)
		pets.RegisterRoutes(pr)
		appointments.RegisterRoutes(pr)
		records.RegisterRoutes(pr)
		invoices.RegisterRoutes(pr)
		notifications.RegisterRoutes(pr)
		preferences.RegisterRoutes(pr)
		dashboard.RegisterRoutes(pr)

		// clinic staff and the owner
		pr.Group(func(sr chi.Router) {
			sr.Use(RequireRole(domain.RoleVetOwner, domain.RoleMainBranch, domain.RoleSubBranch))
			appointments.RegisterStaffRoutes(sr)
			records.RegisterStaffRoutes(sr)
			inventory.RegisterStaffRoutes(sr)
			stockRequests.RegisterStaffRoutes(sr)
			invoices.RegisterStaffRoutes(sr)
			exports.RegisterStaffRoutes(sr)
		})

		// clinic owner only
		pr.Group(func(or chi.Router) {
			or.Use(RequireRole(domain.RoleVetOwner))
			branches.RegisterOwnerRoutes(or)
			staff.RegisterOwnerRoutes(or)
			inventory.RegisterOwnerRoutes(or)
			auditLogs.RegisterOwnerRoutes(or)
			exports.RegisterOwnerRoutes(or)
		})
	})

	return r
}
