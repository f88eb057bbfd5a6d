package main

import (
	"context"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"github.com/Cavel-Dev/Hurly-sub000/app/config"
	"github.com/Cavel-Dev/Hurly-sub000/app/database"
	"github.com/Cavel-Dev/Hurly-sub000/app/mailer"
	"github.com/Cavel-Dev/Hurly-sub000/app/routes/attendance"
	"github.com/Cavel-Dev/Hurly-sub000/app/routes/auth"
	"github.com/Cavel-Dev/Hurly-sub000/app/routes/dashboard"
	"github.com/Cavel-Dev/Hurly-sub000/app/routes/employees"
	"github.com/Cavel-Dev/Hurly-sub000/app/routes/mfasetup"
	"github.com/Cavel-Dev/Hurly-sub000/app/routes/notify"
	"github.com/Cavel-Dev/Hurly-sub000/app/routes/payroll"
	"github.com/Cavel-Dev/Hurly-sub000/app/routes/reports"
	"github.com/Cavel-Dev/Hurly-sub000/app/routes/settings"
	"github.com/Cavel-Dev/Hurly-sub000/app/routes/sites"
	"github.com/Cavel-Dev/Hurly-sub000/app/services"
	"github.com/Cavel-Dev/Hurly-sub000/app/store"
)

func apiErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
		"code":    code,
	})
}

func main() {
	config.Init()
	db := config.GetDB()
	defer db.Close()

	// Schema setup is best-effort at boot: the store layer tolerates an
	// unreachable database and serves the local cache instead.
	if err := db.Ping(); err != nil {
		log.Printf("Database unreachable at startup, continuing offline: %v", err)
	} else if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	local, err := store.NewLocalStore(config.AppConfig.DataDir)
	if err != nil {
		log.Fatal("Failed to open local store:", err)
	}
	svc := store.NewService(context.Background(), store.Options{
		Local:  local,
		Remote: store.NewRemoteStore(db),
	})

	mail := mailer.NewClient(
		config.AppConfig.Email.ResendAPIKey,
		config.AppConfig.Email.ResendFrom,
		config.AppConfig.Email.TemplateID,
	)
	notifier := services.NewNotifier(mail, config.AppConfig.Notify)

	services.NewScheduler(svc, local, notifier).Start()

	app := fiber.New(fiber.Config{
		ErrorHandler: apiErrorHandler,
	})

	app.Use(logger.New())
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"remote":    svc.Healthy(),
			"demo_mode": svc.DemoMode(),
		})
	})

	auth.SetupAuthRoutes(app, svc)
	sites.SetupSitesRoutes(app, svc)
	employees.SetupEmployeesRoutes(app, svc)
	attendance.SetupAttendanceRoutes(app, svc, notifier)
	payroll.SetupPayrollRoutes(app, svc, notifier)
	settings.SetupSettingsRoutes(app, svc)
	dashboard.SetupDashboardRoutes(app, svc)
	reports.SetupReportsRoutes(app, svc, notifier)

	notify.SetupNotifyRoutes(app, &notify.Handler{
		Notifier:       notifier,
		AllowedOrigins: config.AppConfig.Notify.AllowedOrigins,
	})
	mfasetup.SetupMFARoutes(app, &mfasetup.Handler{
		Store:          mfasetup.NewSQLStore(db),
		Mail:           mail,
		AdminCodeHash:  config.AppConfig.MFA.AdminSetupCodeHash,
		Issuer:         config.AppConfig.MFA.Issuer,
		AllowedOrigins: config.AppConfig.Notify.AllowedOrigins,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server starting on port %s", port)
	log.Fatal(app.Listen(":" + port))
}
