// Command identity-server serves sign-in, sign-up and sign-out over HTTP on
// top of a goIdentity Engine backed by PostgreSQL and Redis.
//
// Usage:
//
//	identity-server -config identity.yaml -addr :8080
//
// Every config key can be overridden with IDENTITY_* environment variables,
// e.g. IDENTITY_DATABASE_URL or IDENTITY_TOKEN_ENABLE_MULTI_END.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	goIdentity "github.com/MrEthical07/goIdentity"
	"github.com/MrEthical07/goIdentity/association/postgres"
	"github.com/MrEthical07/goIdentity/internal/database/migrate"
	"github.com/MrEthical07/goIdentity/internal/userdir"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config file")
		addr       = flag.String("addr", "", "listen address; overrides server.address")
	)
	flag.Parse()

	if err := run(*configPath, *addr); err != nil {
		fmt.Fprintf(os.Stderr, "identity-server: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, addr string) error {
	cfg, err := goIdentity.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Address = addr
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:       "identity-server",
		Level:      hclog.LevelFromString(cfg.Server.LogLevel),
		JSONFormat: cfg.Server.LogJSON,
	})

	if cfg.Database.URL == "" {
		return errors.New("database url is required")
	}
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if cfg.Database.RunMigrations {
		if err := migrate.Run(db, logger.Named("migrate")); err != nil {
			return err
		}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	defer rdb.Close()

	var sink goIdentity.AuditSink
	if cfg.Audit.Enabled {
		sink = goIdentity.NewJSONWriterSink(os.Stdout)
	}

	engine, err := goIdentity.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithAssociationStore(postgres.New(db, postgres.Config{})).
		WithUserProvider(userdir.New(db)).
		WithAuditSink(sink).
		WithLogger(logger).
		Build()
	if err != nil {
		return fmt.Errorf("building engine: %w", err)
	}
	defer engine.Close()

	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: newServer(engine, logger).routes(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "address", cfg.Server.Address, "multi_end", cfg.Token.EnableMultiEnd)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
