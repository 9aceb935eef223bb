package main

//	@title						Brandkit API
//	@version					0.1.0
//	@description				Branding and theme configuration API.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: "Bearer {token}"

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "github.com/HerbHall/brandkit/api/swagger"
	"github.com/HerbHall/brandkit/internal/autosave"
	"github.com/HerbHall/brandkit/internal/config"
	"github.com/HerbHall/brandkit/internal/event"
	"github.com/HerbHall/brandkit/internal/persist"
	"github.com/HerbHall/brandkit/internal/remote"
	"github.com/HerbHall/brandkit/internal/server"
	"github.com/HerbHall/brandkit/internal/settings"
	"github.com/HerbHall/brandkit/internal/store"
	"github.com/HerbHall/brandkit/internal/style"
	"github.com/HerbHall/brandkit/internal/version"
	"github.com/HerbHall/brandkit/internal/ws"
	"github.com/HerbHall/brandkit/pkg/models"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Println(version.Info())
		return
	}

	configPath := flag.String("config", "", "path to configuration file")
	envFile := flag.String("env-file", ".env", "optional dotenv file loaded before configuration")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	if err := config.LoadDotEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load env file: %v\n", err)
		os.Exit(1)
	}

	// Load configuration (before logger, so log level/format can be configured).
	viperCfg, err := server.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(viperCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("brandkit daemon starting", zap.String("version", version.Short()))

	if f := viperCfg.ConfigFileUsed(); f != "" {
		logger.Info("configuration loaded",
			zap.String("component", "config"),
			zap.String("source", f),
		)
	} else {
		logger.Warn("no configuration file found, using defaults",
			zap.String("component", "config"),
		)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open the local cache database.
	if dir := filepath.Dir(cfg.Database.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			logger.Fatal("failed to create database directory", zap.Error(err))
		}
	}
	db, err := store.New(cfg.Database.Path)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := db.CheckVersion(ctx, version.Short()); err != nil {
		logger.Fatal("database version check failed", zap.Error(err))
	}
	cache, err := store.NewCache(ctx, db)
	if err != nil {
		logger.Fatal("failed to initialize settings cache", zap.Error(err))
	}
	logger.Info("database initialized",
		zap.String("component", "database"),
		zap.String("path", cfg.Database.Path),
	)

	// Remote config service client.
	client := remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.Timeout,
		remote.WithTokenSource(tokenSource(cfg.Remote, logger)),
		remote.WithRateLimit(cfg.Remote.RateLimitRPS, 1),
		remote.WithLogger(logger.Named("remote")),
	)
	logger.Info("config service client configured",
		zap.String("component", "remote"),
		zap.String("base_url", cfg.Remote.BaseURL),
	)

	bus := event.NewBus(logger.Named("event"))

	doc := style.NewDocument()
	writer := style.NewWriter(doc, logger.Named("style"), style.WithPublisher(bus))

	gateway := persist.NewGateway(client, cache, logger.Named("persist"))
	provider := settings.NewProvider(gateway, writer, logger.Named("settings"),
		settings.WithPublisher(bus),
		settings.WithUploader(client),
	)

	ctl := autosave.New(provider,
		autosave.WithQuietPeriod(cfg.Autosave.QuietPeriod),
		autosave.WithLogger(logger.Named("autosave")),
		autosave.WithFailureNotice(func(colors models.ColorSet, err error) {
			logger.Warn("unable to save colors, changes kept locally",
				zap.String("component", "autosave"),
				zap.String("primary", colors.Primary),
				zap.Bool("degraded", persist.IsDegraded(err)),
				zap.Error(err),
			)
		}),
	)
	unsubscribe := ctl.Subscribe(bus)
	provider.SetAutosave(ctl)

	initial, tier := provider.Init(ctx)
	logger.Info("branding loaded",
		zap.String("component", "settings"),
		zap.String("tier", string(tier)),
		zap.String("app_name", initial.AppName),
	)

	settingsHandler := settings.NewHandler(provider, doc, cfg.Uploads.MaxBytes, logger.Named("settings"))
	wsHandler := ws.NewHandler(bus, doc, cfg.Server.AllowedOrigins, logger.Named("ws"))

	addr := cfg.Server.Addr()
	readyCheck := server.ReadinessChecker(db.Ping)
	srv := server.New(addr, logger, readyCheck, server.Options{
		DevMode:        cfg.Server.DevMode,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
	}, settingsHandler, wsHandler)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("brandkit daemon ready", zap.String("addr", addr))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	unsubscribe()
	ctl.Stop()
	wsHandler.Close()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("brandkit daemon stopped")
}

// tokenSource picks the bearer token strategy for the config service. A JWT
// secret wins over a static token.
func tokenSource(c config.RemoteConfig, logger *zap.Logger) remote.TokenSource {
	switch {
	case c.JWTSecret != "":
		logger.Info("signing config service requests with short-lived JWTs",
			zap.String("component", "remote"),
			zap.Duration("ttl", c.JWTTTL),
		)
		return remote.NewJWTSigner([]byte(c.JWTSecret), "brandkit", c.JWTTTL)
	case c.Token != "":
		return remote.StaticToken(c.Token)
	default:
		logger.Warn("no config service credentials configured, requests are unauthenticated",
			zap.String("component", "remote"),
		)
		return nil
	}
}
