package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/router"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/user"
	userrepo "github.com/ovaphlow/pitchfork/service-account-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	// this is best-effort: if no .env exists, continue (use defaults or real env)
	_ = godotenv.Load()

	// init logger
	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting service-account-go")

	authCfg, err := auth.ConfigFromEnv()
	if err != nil {
		sugar.Fatalf("auth config: %v", err)
	}
	tokens, err := auth.NewTokenService(authCfg, sugar.Named("token"))
	if err != nil {
		sugar.Fatalf("token service: %v", err)
	}

	// init db
	dbCfg := database.ConfigFromEnv()
	db, err := database.Connect(dbCfg)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	repo := userrepo.NewUserRepo(db)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := repo.EnsureTable(ctx)
		cancel()
		if err != nil {
			sugar.Fatalf("ensure users table: %v", err)
		}
	}

	hasher := user.NewBcryptHasher(int(authCfg.SaltRounds))
	deps := router.Deps{
		DB:             db,
		Auth:           auth.NewService(repo, hasher, tokens, sugar.Named("auth")),
		Tokens:         tokens,
		Users:          user.NewUserService(repo, hasher, sugar.Named("user")),
		AllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router.RegisterRoutes(sugar, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// run server in background
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()
	sugar.Infow("service is running; press Ctrl+C to stop", "addr", srv.Addr, "driver", dbCfg.Driver)

	<-ctx.Done()

	sugar.Info("shutting down")

	// give a short grace period for cleanup
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
