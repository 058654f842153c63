// Package server assembles the HTTP application from its collaborators.
package server

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/uptrace/bun"

	auth "github.com/goliatone/go-task-auth"
	"github.com/goliatone/go-task-auth/internal/config"
	"github.com/goliatone/go-task-auth/internal/observability"
	"github.com/goliatone/go-task-auth/notify"
	"github.com/goliatone/go-task-auth/storage"
	"github.com/goliatone/go-task-auth/tasks"
)

// Deps are the collaborators the application is built from
type Deps struct {
	Config   config.Config
	Logger   *slog.Logger
	DB       *bun.DB
	Objects  storage.Store
	Notifier notify.Notifier
	// Metrics is optional
	Metrics *observability.Metrics
}

// Server is the assembled application
type Server struct {
	App    *fiber.App
	Auther *auth.Auther
	Tasks  *tasks.Controller
	Users  *auth.UserController
}

// New wires repositories, the session lifecycle, the authentication gate and
// the routes into a fiber application
func New(deps Deps) *Server {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	objects := deps.Objects
	if objects == nil {
		objects = storage.NewMemoryStore()
	}

	auth.SetPasswordHashCost(cfg.BcryptCost)

	repo := auth.NewRepositoryManager(deps.DB)
	repo.MustValidate()

	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.TokenTTL, cfg.TokenIssuer, logger)

	sinks := auth.MultiActivitySink{auditSink(logger)}
	if deps.Metrics != nil {
		sinks = append(sinks, deps.Metrics.ActivitySink())
	}

	auther := auth.NewAuthenticator(repo, tokens).
		WithLogger(logger).
		WithActivitySink(sinks).
		WithNotifier(deps.Notifier).
		WithObjectStore(objects).
		WithMaxUploadBytes(cfg.UploadMaxBytes)

	app := fiber.New(fiber.Config{
		AppName:               "taskd",
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return auth.WriteError(c, logger, err)
		},
	})

	app.Use(recover.New())
	app.Use(requestid.New())

	var gateOpts []auth.GateOption
	if deps.Metrics != nil {
		app.Use(deps.Metrics.Middleware())
		gateOpts = append(gateOpts, auth.WithRejectHook(deps.Metrics.RejectHook()))
		if cfg.MetricsEnabled {
			app.Get("/metrics", deps.Metrics.Handler())
		}
	}

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	gate := auther.ProtectedRoute(gateOpts...)

	users := auth.RegisterUserRoutes(app, auther,
		auth.WithControllerGate(gate),
		auth.WithControllerLogger(logger),
		auth.WithControllerMaxUpload(cfg.UploadMaxBytes),
	)

	taskController := tasks.NewController(tasks.NewRepository(deps.DB), objects, logger)
	taskController.MaxUpload = cfg.UploadMaxBytes
	tasks.RegisterRoutes(app, gate, taskController)

	return &Server{
		App:    app,
		Auther: auther,
		Tasks:  taskController,
		Users:  users,
	}
}
