package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"photostudio/config"
	"photostudio/internal/admin"
	"photostudio/internal/auth"
	"photostudio/internal/authctx"
	"photostudio/internal/backend"
	"photostudio/internal/content"
	"photostudio/internal/httpserver"
	"photostudio/internal/repository"
	"photostudio/internal/repository/memory"
	"photostudio/internal/storage"
	"photostudio/pkg/circuitbreaker"
	pkgconfig "photostudio/pkg/config"
	"photostudio/pkg/db"
	"photostudio/pkg/logger"
	"photostudio/pkg/mq"
	pkgotel "photostudio/pkg/otel"
	pkgredis "photostudio/pkg/redis"
)

var version = "dev"

type tables struct {
	projects backend.ProjectTable
	packages backend.PackageTable
	settings backend.SettingsTable
	users    backend.UserTable
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "photostudio:", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config; missing required values stop the process here
	env := pkgconfig.GetEnv("APP_ENV", "local")
	cfg, err := config.Load(env, pkgconfig.GetEnv("CONFIG_DIR", "config"))
	if err != nil {
		return err
	}

	log := logger.NewLogger(cfg.Log.Level)
	defer log.Sync()
	log.Info("Starting photostudio", zap.String("env", env), zap.String("version", version))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Tracing
	shutdownTracing, err := pkgotel.Init(ctx, cfg.OTel, version, log)
	if err != nil {
		return err
	}
	defer shutdownTracing()

	// 3. Backend tables
	var (
		t      tables
		pinger httpserver.Pinger
	)
	switch cfg.DB.Driver {
	case "postgres":
		pool, err := db.NewConnection(ctx, cfg.DB, log)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := repository.Migrate(ctx, pool, log); err != nil {
			return err
		}
		t = tables{
			projects: repository.NewProjectRepository(pool, log),
			packages: repository.NewPackageRepository(pool, log),
			settings: repository.NewSettingsRepository(pool),
			users:    repository.NewUserRepository(pool),
		}
		pinger = pool
	default:
		log.Warn("Using in-memory tables, content is lost on restart")
		t = tables{
			projects: memory.NewProjectTable(nil),
			packages: memory.NewPackageTable(nil),
			settings: memory.NewSettingsTable(nil),
			users:    memory.NewUserTable(),
		}
	}

	// 4. Redis backed cache and revocations, with in-process fallbacks
	var (
		cache   content.Cache        = content.NewMemoryCache(nil)
		revoked auth.RevocationStore = auth.NewMemoryRevocations(nil)
	)
	if cfg.Redis.Addr != "" {
		rdb, err := pkgredis.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, using in-process cache", zap.Error(err))
		} else {
			defer rdb.Close()
			cache = content.NewRedisCache(rdb)
			revoked = auth.NewRedisRevocations(rdb)
		}
	}

	// 5. Auth
	authSvc := auth.NewService(t.users, revoked, cfg.JWT.Secret, cfg.JWT.TTL, log)
	if err := authSvc.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return err
	}
	tracker := authctx.NewTracker()
	defer tracker.Attach(authSvc)()

	// 6. Shared content store
	store := content.NewStore(t.projects, t.packages, t.settings, cache,
		circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig()), cfg.Site.CacheTTL, log)

	var consumer *mq.Consumer
	if cfg.MQ.URL != "" {
		publisher, err := mq.NewPublisher(cfg.MQ.URL)
		if err != nil {
			return fmt.Errorf("init MQ publisher: %w", err)
		}
		defer publisher.Close()
		store.SetPublisher(publisher)

		consumer, err = mq.NewConsumer(cfg.MQ.URL, "content.*", log)
		if err != nil {
			return fmt.Errorf("init MQ consumer: %w", err)
		}
		defer consumer.Close()
		consumer.SetHandler(store.HandleEvent)

		go func() {
			if err := consumer.StartConsuming(ctx); err != nil {
				log.Error("Content consumer stopped", zap.Error(err))
			}
		}()
	}

	// 7. Object storage
	objects, err := storage.NewLocalStore(cfg.Storage.Root, cfg.Storage.Bucket, cfg.Server.PublicBaseURL)
	if err != nil {
		return err
	}

	// 8. Router
	router, err := httpserver.NewRouter(httpserver.Deps{
		Auth:     authSvc,
		Store:    store,
		Projects: admin.NewManager(t.projects, admin.ProjectResource(nil), log),
		Packages: admin.NewManager(t.packages, admin.PackageResource(), log),
		Settings: admin.NewSettingsManager(t.settings, log),
		Uploader: admin.NewUploader(objects, cfg.Storage.MaxBatch, cfg.Storage.MaxFileBytes, log),
		JWTTTL:   cfg.JWT.TTL,
		Site: httpserver.SiteOptions{
			SplashMin:      cfg.Site.SplashMin,
			WhatsAppNumber: cfg.Site.WhatsAppNumber,
			SecureCookies:  cfg.Server.SecureCookies,
		},
		TypewriterInterval: cfg.Site.TypewriterInterval,
		StorageRoute:       "/storage/" + objects.Bucket(),
		StorageDir:         objects.BucketDir(),
		DB:                 pinger,
		Ready: func() error {
			if consumer != nil && !consumer.IsConnected() {
				return errors.New("mq_not_ready")
			}
			return nil
		},
		Logger: log,
	})
	if err != nil {
		return err
	}

	// 9. Serve until signalled
	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down", zap.Int("active_admin_sessions", tracker.Active()))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
