// Package daemon assembles the application: database, session storage,
// directory synchronization and the web service.
package daemon

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/storage"
	sessionmemory "github.com/gofiber/storage/memory/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/lostandfound-admin/lostandfound-admin/internal/activity"
	"github.com/lostandfound-admin/lostandfound-admin/internal/auth"
	"github.com/lostandfound-admin/lostandfound-admin/internal/config"
	"github.com/lostandfound-admin/lostandfound-admin/internal/db/controller/setting"
	"github.com/lostandfound-admin/lostandfound-admin/internal/db/dsn"
	"github.com/lostandfound-admin/lostandfound-admin/internal/db/models"
	"github.com/lostandfound-admin/lostandfound-admin/internal/directory"
	"github.com/lostandfound-admin/lostandfound-admin/internal/dirsync"
	"github.com/lostandfound-admin/lostandfound-admin/internal/web"
	"github.com/lostandfound-admin/lostandfound-admin/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
	scheduler  *dirsync.Scheduler
}

// Start runs the sync scheduler and the web service until shutdown.
func (d *Daemon) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if d.scheduler != nil {
		go d.scheduler.Run(ctx)
	}

	go d.webService.WaitShutdown()

	return d.webService.Start(":" + strconv.Itoa(d.cfg.Webserver.Port))
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	db, err := openDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
		return nil
	}

	if err = migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
		return nil
	}

	seed(cfg, db)

	session.Init(sessionStorage(cfg))

	audit := activity.NewService(db)

	provider, reconciler := buildSync(cfg, db)

	var validator directory.CredentialValidator
	if provider != nil {
		validator = provider
	}

	authService := auth.NewService(db, validator)

	var scheduler *dirsync.Scheduler
	if reconciler != nil {
		scheduler = dirsync.NewScheduler(reconciler, audit, cfg.Directory.DailySyncHourUTC,
			syncRecorder(db, "System (Scheduled)"))
	}

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db, authService, audit, reconciler),
		scheduler:  scheduler,
	}
}

// RunSyncOnce opens the database, runs a single synchronization pass and
// returns its result. Used by the sync CLI command.
func RunSyncOnce(cfg *config.Config) (*dirsync.Result, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	if err = migrate(db); err != nil {
		return nil, errors.Wrap(err, "failed to migrate database")
	}

	_, reconciler := buildSync(cfg, db)
	if reconciler == nil {
		reconciler = dirsync.NewReconciler(false, nil, nil, nil, nil)
	}

	result := reconciler.Run()

	status := models.ActivityStatusSuccess
	if !result.Success {
		status = models.ActivityStatusFailed
	}

	activity.NewService(db).Log("Manual AD Sync", result.Summary(), "System (CLI)",
		models.ActivityCategoryADSync, "", status)

	syncRecorder(db, "System (CLI)")(result)

	return result, nil
}

// syncRecorder persists a run outcome so the dashboard can show the last
// sync status.
func syncRecorder(db *gorm.DB, actor string) func(*dirsync.Result) {
	return func(result *dirsync.Result) {
		err := setting.SetLastSync(db, setting.SyncStatus{
			At:      time.Now().UTC(),
			Success: result.Success,
			Summary: result.Summary(),
			Actor:   actor,
		})
		if err != nil {
			log.Error().Err(err).Msg("failed to record sync outcome")
		}
	}
}

// openDatabase connects gorm using the configured engine.
func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.DB.Engine {
	case config.EnginePostgres:
		dialector = gormpostgres.Open(dsn.Create(cfg))
	case config.EngineSQLite:
		dialector = sqlite.Open(dsn.Create(cfg))
	default:
		dialector = gormmysql.Open(dsn.Create(cfg))
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.DB.Engine, err)
	}

	return db, nil
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.ADGroupMapping{},
		&models.ItemCategory{},
		&models.Route{},
		&models.Vehicle{},
		&models.StorageLocation{},
		&models.ItemStatus{},
		&models.FoundBySource{},
		&models.FoundItem{},
		&models.ActivityLog{},
		&models.Announcement{},
		&models.AnnouncementRead{},
		&models.Setting{},
	)
}

// sessionStorage picks the fiber session backend matching the DB engine.
// SQLite deployments keep sessions in memory.
func sessionStorage(cfg *config.Config) storage.Storage {
	switch cfg.DB.Engine {
	case config.EngineMySQL:
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         "sessions",
		})
	case config.EnginePostgres:
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: "postgres://" + cfg.DB.User + ":" + cfg.DB.Password + "@" +
				cfg.DB.Host + ":" + strconv.Itoa(cfg.DB.Port) + "/" + cfg.DB.Name,
			Table: "sessions",
		})
	default:
		return sessionmemory.New()
	}
}

// buildSync creates the directory provider and reconciler. Both are nil
// when directory integration is disabled.
func buildSync(cfg *config.Config, db *gorm.DB) (*directory.LDAPProvider, *dirsync.Reconciler) {
	if !cfg.Directory.Enabled {
		log.Info().Msg("Active Directory integration is disabled")
		return nil, nil
	}

	dirCfg := &directory.Config{
		Enabled:      cfg.Directory.Enabled,
		Host:         cfg.Directory.Host,
		Port:         cfg.Directory.Port,
		Domain:       cfg.Directory.Domain,
		UseSSL:       cfg.Directory.UseSSL,
		UseTLS:       cfg.Directory.UseTLS,
		SkipVerify:   cfg.Directory.SkipVerify,
		BindDN:       cfg.Directory.BindDN,
		BindPassword: cfg.Directory.BindPassword,
		BaseDN:       cfg.Directory.BaseDN,
		Timeout:      cfg.Directory.Timeout,
	}

	provider, err := directory.NewLDAPProvider(dirCfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to create directory provider, AD sync disabled")
		return nil, nil
	}

	store := dirsync.NewGormStore(db)
	reconciler := dirsync.NewReconciler(true, provider, store, store, dirCfg.FallbackEmail)

	return provider, reconciler
}
