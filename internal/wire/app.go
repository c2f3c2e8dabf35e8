package wire

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	jwtauth "github.com/alanyang/prompt-vault/internal/adapter/jwt"
	"github.com/alanyang/prompt-vault/internal/adapter/memory"
	pgdb "github.com/alanyang/prompt-vault/internal/adapter/postgres"
	pgeventbus "github.com/alanyang/prompt-vault/internal/adapter/postgres/eventbus"
	pgidem "github.com/alanyang/prompt-vault/internal/adapter/postgres/idempotency"
	pgmessage "github.com/alanyang/prompt-vault/internal/adapter/postgres/message"
	pgpersona "github.com/alanyang/prompt-vault/internal/adapter/postgres/persona"
	pguser "github.com/alanyang/prompt-vault/internal/adapter/postgres/user"
	rediscache "github.com/alanyang/prompt-vault/internal/adapter/redis"
	"github.com/alanyang/prompt-vault/internal/config"
	portcache "github.com/alanyang/prompt-vault/internal/port/cache"

	authsvc "github.com/alanyang/prompt-vault/internal/service/auth"
	messagesvc "github.com/alanyang/prompt-vault/internal/service/message"
	personasvc "github.com/alanyang/prompt-vault/internal/service/persona"

	"github.com/alanyang/prompt-vault/internal/transport"
	mcptransport "github.com/alanyang/prompt-vault/internal/transport/mcp"
)

// App holds the top-level resources needed to run and gracefully stop the server.
type App struct {
	Pool   *pgxpool.Pool
	Server *http.Server

	closers []func()
}

// Close releases everything Build acquired, in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// Build is the composition root: the only place concrete types are wired to their
// interface dependencies.
func Build(ctx context.Context, cfg *config.Config, version string) (*App, error) {
	app := &App{}
	fail := func(err error) (*App, error) {
		app.Close()
		return nil, err
	}

	// ── Database ─────────────────────────────────────────────────────────────
	pool, err := pgdb.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	app.Pool = pool
	app.closers = append(app.closers, pool.Close)

	// ── Adapters ─────────────────────────────────────────────────────────────
	messageRepo := pgmessage.New(pool)
	personaRepo := pgpersona.New(pool, pgmessage.DetachPersona)
	userRepo := pguser.New(pool)
	idemRepo := pgidem.New(pool, cfg.IdempotencyTTL)
	eventBus := pgeventbus.New(pool)
	app.closers = append(app.closers, eventBus.Close)

	verifier, err := jwtauth.New(cfg.JWT.Secret, cfg.JWT.Audience, cfg.JWT.Issuer)
	if err != nil {
		return fail(fmt.Errorf("configuring token verification: %w", err))
	}

	var cache portcache.UserCache
	if cfg.Redis.Addr != "" {
		rc, err := rediscache.Connect(ctx, rediscache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return fail(fmt.Errorf("connecting to redis: %w", err))
		}
		app.closers = append(app.closers, func() {
			if err := rc.Close(); err != nil {
				slog.Warn("closing redis", "error", err)
			}
		})
		cache = rc
	} else {
		cache = memory.NewUserCache()
	}

	// ── Services ─────────────────────────────────────────────────────────────
	personaSvc := personasvc.NewService(personaRepo, eventBus)
	messageSvc := messagesvc.NewService(messageRepo, eventBus)
	authSvc := authsvc.NewService(verifier, userRepo, cache, cfg.UserCacheTTL)

	mcpServer := mcptransport.New(personaSvc, messageSvc, version)

	// ── Transport ─────────────────────────────────────────────────────────────
	router := transport.NewRouter(ctx, transport.Deps{
		PersonaSvc:  personaSvc,
		MessageSvc:  messageSvc,
		Guard:       authSvc,
		Idempotency: idemRepo,
		EventBus:    eventBus,
		MCP:         mcpServer.Handler(),
		Health:      pool.Ping,
		CORSOrigins: cfg.CORSOrigins,
	})

	app.Server = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ── Idempotency key reaper ────────────────────────────────────────────────
	if cfg.IdempotencyTTL > 0 {
		startReaper(ctx, idemRepo, reapInterval(cfg.IdempotencyTTL))
	}

	slog.Info("application wired", "addr", app.Server.Addr, "redis", cfg.Redis.Addr != "")
	return app, nil
}
