// Package bootstrap wires the application together: configuration, logging,
// database, repositories, services, controllers and the notification
// dispatcher.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/lsa-mis/student-visit-api/docs" // generated swagger docs
	appControllers "github.com/lsa-mis/student-visit-api/internal/app/controllers"
	appMigrations "github.com/lsa-mis/student-visit-api/internal/app/migrations"
	appRepos "github.com/lsa-mis/student-visit-api/internal/app/repositories"
	appRoutes "github.com/lsa-mis/student-visit-api/internal/app/routes"
	appServices "github.com/lsa-mis/student-visit-api/internal/app/services"
	"github.com/lsa-mis/student-visit-api/internal/config"
	"github.com/lsa-mis/student-visit-api/internal/db"
	appMiddleware "github.com/lsa-mis/student-visit-api/internal/middleware"
	"github.com/lsa-mis/student-visit-api/internal/notify"
	pkgAuth "github.com/lsa-mis/student-visit-api/internal/pkg/auth"
	"github.com/lsa-mis/student-visit-api/internal/pkg/email"
	"github.com/lsa-mis/student-visit-api/internal/pkg/errtrack"
	"github.com/lsa-mis/student-visit-api/internal/pkg/helpers"
	"github.com/lsa-mis/student-visit-api/internal/pkg/logger"
	"github.com/lsa-mis/student-visit-api/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos    *appRepos.Repositories
	Services *appServices.Services

	AuthController          *appControllers.AuthController
	AppointmentController   *appControllers.AppointmentController
	DepartmentController    *appControllers.DepartmentController
	ProgramController       *appControllers.ProgramController
	VIPController           *appControllers.VIPController
	QuestionnaireController *appControllers.QuestionnaireController
	EventController         *appControllers.EventController
	ReportController        *appControllers.ReportController

	AuthMiddleware *appMiddleware.AuthMiddleware
	JWTService     *pkgAuth.JWTService
	Dispatcher     *notify.Dispatcher
	Publisher      notify.Publisher
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes logging and
// error tracking.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	errtrack.Configure(cfg.Rollbar.Token, cfg.Rollbar.Environment, "")

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds default data.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	if err := seed.CreateDefaultData(context.Background(), dbPool, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes repositories, services, controllers and the
// notification dispatcher.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	refreshExp := helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour)
	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: refreshExp,
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.Services = appServices.NewServices(deps.Repos, deps.JWTService, refreshExp)

	var mailer email.Service = email.NewSMTPService(email.Config{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
	})
	if cfg.SMTP.Host == "" {
		lgr.Warn().Msg("No SMTP host configured, appointment emails will be logged only")
		mailer = email.LogService{}
	}

	if cfg.Notify.AMQPURL != "" {
		publisher, err := notify.NewAMQPPublisher(cfg.Notify.AMQPURL, cfg.Notify.QueueName)
		if err != nil {
			// The outbox keeps events durable; email delivery still works
			lgr.Error().Err(err).Msg("Failed to connect to RabbitMQ, continuing without queue publishing")
		} else {
			deps.Publisher = publisher
		}
	}

	deps.Dispatcher = notify.NewDispatcher(
		deps.Repos.OutboxRepository,
		deps.Repos.AppointmentRepository,
		mailer,
		deps.Publisher,
		helpers.ParseDuration(cfg.Notify.SweepInterval, 15*time.Second),
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.AuthController = appControllers.NewAuthController(deps.Services.AuthService)
	deps.AppointmentController = appControllers.NewAppointmentController(deps.Services.BookingService)
	deps.DepartmentController = appControllers.NewDepartmentController(deps.Services.DepartmentService)
	deps.ProgramController = appControllers.NewProgramController(deps.Services.ProgramService)
	deps.VIPController = appControllers.NewVIPController(deps.Services.VIPService)
	deps.QuestionnaireController = appControllers.NewQuestionnaireController(deps.Services.QuestionnaireService)
	deps.EventController = appControllers.NewEventController(deps.Services.EventService)
	deps.ReportController = appControllers.NewReportController(deps.Services.ReportService)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger())
	router.Use(appMiddleware.Metrics())

	// Swagger and operational endpoints
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json"), ginSwagger.DefaultModelsExpandDepth(1)))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.AppointmentController,
		deps.DepartmentController,
		deps.ProgramController,
		deps.VIPController,
		deps.QuestionnaireController,
		deps.EventController,
		deps.ReportController,
		deps.AuthMiddleware,
	)

	return router
}
