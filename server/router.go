package server

import (
	"net/http"

	"overtime-tracker/config"
	"overtime-tracker/handlers"
	"overtime-tracker/middleware"
	"overtime-tracker/models"
	"overtime-tracker/services"
	"overtime-tracker/templates"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"
)

// NewRouter wires services, handlers and middleware over db.
func NewRouter(cfg *config.Config, db *gorm.DB) (*chi.Mux, error) {
	pages, err := templates.Load()
	if err != nil {
		return nil, err
	}

	users := services.NewUserService(db)
	records := services.NewRecordService(db, cfg)
	exports := services.NewExportService(db, cfg)
	auth := middleware.NewAuth(cfg.SecretKey, cfg.SessionTTL, users)

	authHandler := handlers.NewAuthHandler(cfg, pages, auth, users)
	overtimeHandler := handlers.NewOvertimeHandler(cfg, pages, records)
	exportHandler := handlers.NewExportHandler(records, exports)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.EchoRequestID)
	router.Use(middleware.AccessLog)
	router.Use(chimiddleware.Recoverer)

	// Public routes
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	})
	router.Get("/login", authHandler.LoginPage)
	router.Post("/login", authHandler.Login)

	// Protected routes
	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Get("/logout", authHandler.Logout)
		r.Get("/change_password", authHandler.ChangePasswordPage)
		r.Post("/change_password", authHandler.ChangePassword)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePasswordChange)

			r.Get("/dashboard", overtimeHandler.Dashboard)
			r.Get("/records", overtimeHandler.Records)
			r.Get("/view_records", overtimeHandler.ViewRecords)
			r.Get("/download_filtered", exportHandler.DownloadFiltered)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireCapability(models.CapCreateRecord, "/dashboard"))
				r.Get("/add", overtimeHandler.NewRecordPage)
				r.Post("/add", overtimeHandler.CreateRecord)
			})

			// Supervisor and manager routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireCapability(models.CapEditRecord, "/records"))
				r.Get("/edit/{id}", overtimeHandler.EditRecordPage)
				r.Post("/edit/{id}", overtimeHandler.UpdateRecord)
			})
			r.With(middleware.RequireCapability(models.CapDeleteRecord, "/records")).
				Post("/delete/{id}", overtimeHandler.DeleteRecord)
			r.With(middleware.RequireCapability(models.CapExportMonthly, "/dashboard")).
				Get("/download_File", exportHandler.DownloadMonthly)
		})
	})

	return router, nil
}
