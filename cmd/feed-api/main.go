package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/edvin/stream/internal/api"
	"github.com/edvin/stream/internal/config"
	"github.com/edvin/stream/internal/core"
	"github.com/edvin/stream/internal/db"
	"github.com/edvin/stream/internal/logging"
)

func main() {
	if len(os.Args) >= 2 && os.Args[1] == "seed-user" {
		seedUser(os.Args[2:])
		return
	}

	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	migrateDirFlag := flag.String("migrate-dir", "migrations", "Migration files directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	if *migrateFlag {
		logger.Info().Str("dir", *migrateDirFlag).Msg("running database migrations")
		if err := db.RunMigrations(cfg.DatabaseURL, *migrateDirFlag); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	services := core.NewServices(pool, cfg)
	srv := api.NewServer(logger, services, cfg)

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPListenAddr).Msg("starting feed API server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
}

func seedUser(args []string) {
	fs := flag.NewFlagSet("seed-user", flag.ExitOnError)
	login := fs.String("login", "", "Login for the new user (required)")
	name := fs.String("name", "", "Display name")
	roles := fs.String("roles", "administrator", "Comma-separated role list")
	superAdmin := fs.Bool("super-admin", false, "Grant the super-administrator capability")
	fs.Parse(args)

	if *login == "" {
		fmt.Fprintln(os.Stderr, "error: --login is required")
		fmt.Fprintln(os.Stderr, "usage: feed-api seed-user --login <login> [--name <name>] [--roles <r1,r2>] [--super-admin]")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	var roleList []string
	for _, role := range strings.Split(*roles, ",") {
		if role = strings.TrimSpace(role); role != "" {
			roleList = append(roleList, role)
		}
	}

	users := core.NewUserService(pool)
	user, err := users.Create(ctx, *login, *name, roleList, *superAdmin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to create user: %v\n", err)
		os.Exit(1)
	}

	keys := core.NewFeedKeyService(pool)
	key, err := keys.Ensure(ctx, user.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to generate feed key: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("User created successfully.\n\n")
	fmt.Printf("  Login:    %s\n", user.Login)
	fmt.Printf("  ID:       %s\n", user.ID)
	fmt.Printf("  Roles:    %s\n", strings.Join(user.Roles, ", "))
	fmt.Printf("  Feed key: %s\n", key)
}
