// Package main provisions administrator accounts out of band.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"birdfinder/internal/config"
	"birdfinder/internal/repository/sqlite"
	"birdfinder/internal/service"
)

func main() {
	var username string
	var password string
	var dbPath string

	flag.StringVar(&username, "username", "", "username of the admin account to create")
	flag.StringVar(&password, "password", "", "password of the admin account (default: BIRDFINDER_ADMIN_PASSWORD)")
	flag.StringVar(&dbPath, "db-path", "", "path to sqlite database (default: database.path from config)")
	flag.Parse()

	if password == "" {
		password = os.Getenv("BIRDFINDER_ADMIN_PASSWORD")
	}
	if dbPath == "" {
		cfg, err := config.Load()
		if err != nil {
			fail("load config: %v", err)
		}
		dbPath = cfg.Database.Path
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	id, err := createAdmin(ctx, dbPath, username, password)
	if err != nil {
		fail("%v", err)
	}
	fmt.Printf("created admin %q (id %d)\n", username, id)
}

func createAdmin(ctx context.Context, dbPath, username, password string) (int64, error) {
	db, err := sqlite.Open(dbPath)
	if err != nil {
		return 0, fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	repos, err := sqlite.NewRepositories(ctx, db)
	if err != nil {
		return 0, err
	}

	id, err := service.NewUserService(repos.Users).CreateAdmin(ctx, username, password)
	switch {
	case errors.Is(err, service.ErrDuplicateUsername):
		return 0, fmt.Errorf("username %q is already taken", username)
	case errors.Is(err, service.ErrUsernameRequired), errors.Is(err, service.ErrPasswordRequired),
		errors.Is(err, service.ErrPasswordTooLong):
		return 0, fmt.Errorf("%w (see -h)", err)
	case err != nil:
		return 0, fmt.Errorf("create admin: %w", err)
	}
	return id, nil
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "admin: "+format+"\n", args...)
	os.Exit(1)
}
