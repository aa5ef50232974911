// Package web hosts the HTTP application: routing, templates, static
// assets and the session-backed authentication middleware.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/template/html/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/lostandfound-admin/lostandfound-admin/internal/activity"
	"github.com/lostandfound-admin/lostandfound-admin/internal/auth"
	"github.com/lostandfound-admin/lostandfound-admin/internal/config"
	"github.com/lostandfound-admin/lostandfound-admin/internal/dirsync"
	accesslog "github.com/lostandfound-admin/lostandfound-admin/internal/logger/adapter/fiber"
	"github.com/lostandfound-admin/lostandfound-admin/internal/web/handler/admin/adgroup"
	"github.com/lostandfound-admin/lostandfound-admin/internal/web/handler/admin/masterdata"
	adminuser "github.com/lostandfound-admin/lostandfound-admin/internal/web/handler/admin/user"
	"github.com/lostandfound-admin/lostandfound-admin/internal/web/handler/announcement"
	"github.com/lostandfound-admin/lostandfound-admin/internal/web/handler/dashboard"
	"github.com/lostandfound-admin/lostandfound-admin/internal/web/handler/item"
	"github.com/lostandfound-admin/lostandfound-admin/internal/web/handler/login"
	"github.com/lostandfound-admin/lostandfound-admin/internal/web/handler/logout"
	"github.com/lostandfound-admin/lostandfound-admin/internal/web/handler/logs"
	"github.com/lostandfound-admin/lostandfound-admin/internal/web/handler/password"
	authmiddleware "github.com/lostandfound-admin/lostandfound-admin/internal/web/middleware/auth"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of the web service.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates a new web service with the given configuration and wires
// every handler. reconciler may be nil when directory integration is
// disabled.
func New(
	cfg *config.Config,
	db *gorm.DB,
	authService *auth.Service,
	audit *activity.Service,
	reconciler *dirsync.Reconciler,
) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	httpFS := http.FS(templateEmbedFS{embeddedTemplates})
	templateEngine := html.NewFileSystem(httpFS, ".gohtml")

	// in dev mode, use local filesystem for templates
	if cfg.DevMode {
		templateEngine = html.New("./internal/web/templates", ".gohtml")
		templateEngine.ShouldReload = true

		log.Warn().Msg("dev mode enabled: using local filesystem for templates")
	}

	templateEngine.AddFunc("add", func(a, b int) int {
		return a + b
	})
	templateEngine.AddFunc("sub", func(a, b int) int {
		return a - b
	})

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			Views:          templateEngine,
		},
	)

	service := &Service{
		cfg: cfg,
		App: app,
		db:  db,
	}
	service.alive.Store(true)

	// access log middleware
	app.Use(accesslog.New(accesslog.Config{
		Config:        cfg.Log,
		CheckAliveURI: "/checkalive",
	}))

	// liveness endpoint for load balancers
	app.Get("/checkalive", func(c *fiber.Ctx) error {
		if !service.alive.Load() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendString("OK")
	})

	// serve embedded static files
	app.Use("/static",
		filesystem.New(
			filesystem.Config{
				Root:       http.FS(embeddedStaticFiles),
				PathPrefix: "static",
				Browse:     false,
			},
		),
	)

	// session auth middleware
	app.Use(authmiddleware.Middleware)

	// init handlers (they register their own routes with role checks)
	if err := login.Handler.Init(app, cfg, authService, audit); err != nil {
		log.Fatal().Err(err).Msg("failed to init login handler")
	}

	logout.Handler.Init(app, cfg, audit)
	password.Handler.Init(app, cfg, authService, audit)
	dashboard.Handler.Init(app, cfg, db)
	item.Handler.Init(app, cfg, db, audit)
	announcement.Handler.Init(app, cfg, db, audit)
	logs.Handler.Init(app, cfg, audit)
	adminuser.Handler.Init(app, cfg, db, authService, audit)
	adgroup.Handler.Init(app, cfg, db, reconciler, audit)
	masterdata.Handler.Init(app, cfg, db, audit)

	// redirect root to dashboard
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/dashboard")
	})

	return service
}
