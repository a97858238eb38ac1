// Command permguard-demo serves a small orders API guarded by a policy file.
// Policies come from an in-memory store seeded from the file, or from
// Postgres or Redis when configured.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/chr1sbest/permguard"
	"github.com/chr1sbest/permguard/autopolicy"
	"github.com/chr1sbest/permguard/internal/config"
	"github.com/chr1sbest/permguard/policyfile"
	"github.com/chr1sbest/permguard/stores/jwtclaims"
	"github.com/chr1sbest/permguard/stores/memory"
	"github.com/chr1sbest/permguard/stores/postgres"
	"github.com/chr1sbest/permguard/stores/redisstore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config failed", "error", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("permguard demo failed", "error", err)
		os.Exit(1)
	}
}

// run serves until ctx is done. Stores opened here are closed before it
// returns.
func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	file, err := policyfile.Load(cfg.PolicyFile)
	if err != nil {
		return err
	}

	handler, closeStore, err := openStore(ctx, cfg, file, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	a, err := newApp(cfg, file, handler, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           a.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("permguard demo listening", "addr", cfg.Addr, "policies", len(file.Policies))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openStore picks the policy backend: Postgres, else Redis, else an in-memory
// store seeded from file. The returned func releases it.
func openStore(ctx context.Context, cfg config.Config, file *policyfile.File, logger *slog.Logger) (permguard.PolicyHandler, func(), error) {
	switch {
	case cfg.DatabaseURL != "":
		pg, err := postgres.Open(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.Migrate(ctx); err != nil {
			_ = pg.Close()
			return nil, nil, fmt.Errorf("migrate postgres policy store: %w", err)
		}
		logger.Info("using postgres policy store")
		return pg, func() { _ = pg.Close() }, nil
	case cfg.RedisAddr != "":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		logger.Info("using redis policy store", "addr", cfg.RedisAddr)
		return redisstore.New(rdb, redisstore.WithLogger(logger)), func() { _ = rdb.Close() }, nil
	default:
		users := memory.NewStore()
		file.Seed(users)
		logger.Info("using in-memory policy store", "users", len(file.Users))
		return users, func() {}, nil
	}
}

type app struct {
	file     *policyfile.File
	handler  permguard.PolicyHandler
	guard    *permguard.Guard
	authz    *autopolicy.Authorizer
	issuer   *jwtclaims.Issuer
	verifier *jwtclaims.Verifier
}

func newApp(cfg config.Config, file *policyfile.File, handler permguard.PolicyHandler, logger *slog.Logger) (*app, error) {
	b := autopolicy.NewBuilder(handler).
		MapAuthorizationPolicies().
		AutomaticallyCheckPermissions()
	file.Register(b.Registry())
	authz, err := b.Build(autopolicy.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("build authorizer: %w", err)
	}

	return &app{
		file:     file,
		handler:  handler,
		guard:    b.Guard(),
		authz:    authz,
		issuer:   jwtclaims.NewIssuer([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.TokenTTL),
		verifier: jwtclaims.NewVerifier([]byte(cfg.JWTSecret), cfg.JWTIssuer, logger),
	}, nil
}

func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(a.verifier.Middleware)
	r.Use(a.authz.Routes(a.file.RouteTable()))

	// Demo login: issues a token for any user listed in the policy file.
	r.Post("/token/{subject}", a.issueToken)
	r.Get("/me", a.me)

	r.With(a.authz.Require("orders.read")).Get("/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"id": chi.URLParam(r, "id")})
	})
	r.Post("/orders/{id}/cancel", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Post("/orders/{id}/refund", a.refund)
	return r
}

func (a *app) issueToken(w http.ResponseWriter, r *http.Request) {
	subject := chi.URLParam(r, "subject")
	if _, ok := a.file.Users[subject]; !ok {
		http.NotFound(w, r)
		return
	}
	tok, err := a.issuer.Issue(subject, nil, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": tok})
}

func (a *app) me(w http.ResponseWriter, r *http.Request) {
	policy, err := a.handler.GetUserPolicy(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	subject, _ := permguard.SubjectFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"subject":     subject,
		"roles":       policy.Roles(),
		"permissions": policy.Permissions(),
	})
}

func (a *app) refund(w http.ResponseWriter, r *http.Request) {
	if err := a.guard.MustHavePermission(r.Context(), "orders.refund", permguard.Forbidden); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, permguard.ErrForbidden) {
			status = http.StatusForbidden
		}
		http.Error(w, err.Error(), status)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
