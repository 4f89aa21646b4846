package app

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/prodyhq/prody/internal/activity"
	"github.com/prodyhq/prody/internal/cache"
	"github.com/prodyhq/prody/internal/config"
	"github.com/prodyhq/prody/internal/env"
	"github.com/prodyhq/prody/internal/errHandler"
	"github.com/prodyhq/prody/internal/file"
	"github.com/prodyhq/prody/internal/google"
	"github.com/prodyhq/prody/internal/helper"
	"github.com/prodyhq/prody/internal/realtime"
	"github.com/prodyhq/prody/internal/repository"
	"github.com/prodyhq/prody/internal/smtp"
	"github.com/prodyhq/prody/internal/stream"
	"github.com/prodyhq/prody/internal/token"

	"github.com/joho/godotenv"
)

// Essential services and resources are exposed to the application
// this makes it possible for methods to have access to these items when they need them
type Application struct {
	Config       config.Config
	DB           repository.Database
	Logger       *slog.Logger
	Mailer       *smtp.Mailer
	WG           sync.WaitGroup
	ErrorHandler *errHandler.ErrorHandler
	Helper       *helper.HelperRepository
	Cache        cache.Store
	Tokens       *token.Issuer
	Google       google.Verifier
	Kafka        *stream.KafkaStream
	FileUploader *file.FileUploader
	Hub          *realtime.Hub
	Activity     *activity.Recorder
}

func NewApplication(logger *slog.Logger) (*Application, error) {
	if err := godotenv.Load(); err != nil {
		logger.Error("Error loading .env file", "error", err)
	}

	var cfg config.Config

	// config values are loaded from the .env file
	// Default values are provided for these items and these should strictly be values for development mode only
	// make sure no production-level value is exposed as default value here
	cfg.BaseURL = env.GetString("BASE_URL", "http://localhost:4444")
	cfg.FrontendURL = env.GetString("FRONTEND_URL", "http://localhost:3000")
	cfg.HttpPort = env.GetInt("HTTP_PORT", 4444)

	cfg.Db.Dsn = env.GetString("DB_DSN", "user:pass@localhost:5432/db")
	cfg.Db.Automigrate = env.GetBool("DB_AUTOMIGRATE", true)

	cfg.Jwt.SecretKey = env.GetString("JWT_SECRET_KEY", "ajf5nx3qmp6zquevllxocxqvyz42ypuo")

	cfg.Google.ClientID = env.GetString("GOOGLE_CLIENT_ID", "")

	// server errors won't be sent via email if the NOTIFICATIONS_EMAIL wasn't set in the .env file
	cfg.Notifications.Email = env.GetString("NOTIFICATIONS_EMAIL", "")

	cfg.Smtp.Host = env.GetString("SMTP_HOST", "example.smtp.host")
	cfg.Smtp.Port = env.GetInt("SMTP_PORT", 25)
	cfg.Smtp.Username = env.GetString("SMTP_USERNAME", "example_username")
	cfg.Smtp.Password = env.GetString("SMTP_PASSWORD", "pa55word")
	cfg.Smtp.From = env.GetString("SMTP_FROM", "Prody <no_reply@prody.dev>")

	cfg.RedisServer = env.GetString("REDIS_SERVER", "localhost:6379")
	cfg.KafkaServers = env.GetString("KAFKA_SERVERS", "localhost:9092")

	cfg.FileUploader.ApiKey = env.GetString("CLOUDINARY_API_KEY", "")
	cfg.FileUploader.CloudName = env.GetString("CLOUDINARY_CLOUD_NAME", "")
	cfg.FileUploader.ApiSecret = env.GetString("CLOUDINARY_API_SECRET", "")

	db, err := repository.New(cfg.Db.Dsn, cfg.Db.Automigrate)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	mailer, err := smtp.NewMailer(cfg.Smtp.Host, cfg.Smtp.Port, cfg.Smtp.Username, cfg.Smtp.Password, cfg.Smtp.From)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}

	app := &Application{
		Config: cfg,
		DB:     db,
		Logger: logger,
		Mailer: mailer,
	}

	app.ErrorHandler = errHandler.New(cfg.Notifications.Email, cfg.BaseURL, mailer, logger)
	app.Helper = helper.New(cfg.BaseURL, cfg.FrontendURL, &app.WG, app.ErrorHandler)
	app.Cache = cache.New(cfg.RedisServer, 0)
	app.Tokens = token.NewIssuer(cfg.Jwt.SecretKey, cfg.BaseURL)
	app.Google = google.NewVerifier(cfg.Google.ClientID)
	app.Kafka = stream.New(cfg.KafkaServers, logger)
	app.FileUploader = file.New(cfg.FileUploader.CloudName, cfg.FileUploader.ApiKey, cfg.FileUploader.ApiSecret)
	app.Hub = realtime.NewHub(logger)

	app.Activity = activity.NewRecorder(db.Activity(), app.Kafka, &app.WG, func(err error) {
		app.ErrorHandler.ReportServerError(nil, err)
	})

	return app, nil
}

// Close releases the long-lived resources the application holds.
func (app *Application) Close() {
	if err := app.Cache.Close(); err != nil {
		app.Logger.Error("failed to close redis connection", "error", err)
	}
	if err := app.DB.Close(); err != nil {
		app.Logger.Error("failed to close database connection", "error", err)
	}
}
