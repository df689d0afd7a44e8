// Newsroom discovers trending topics, drafts articles for them with an LLM,
// and routes the drafts through a reviewed publish queue.
//
// One process runs everything: the generation worker, the queue processor,
// and the admin API for operators.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/jmoiron/sqlx"
	"github.com/sethvargo/go-envconfig"
	_ "golang.org/x/crypto/x509roots/fallback"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"

	"github.com/mchasew/newsroom/internal/admin"
	"github.com/mchasew/newsroom/internal/generate"
	"github.com/mchasew/newsroom/internal/migrations"
	"github.com/mchasew/newsroom/internal/models"
	nrsqlite "github.com/mchasew/newsroom/internal/sqlite"
	"github.com/mchasew/newsroom/internal/topics"
	"github.com/mchasew/newsroom/internal/validate"
	"github.com/mchasew/newsroom/internal/worker"
	"github.com/mchasew/newsroom/logger"
)

type config struct {
	Database string `env:"DATABASE, required"`
	Port     int    `env:"PORT, default=4444"`

	// Which format to use for logging: either text or json
	LoggerFormat string `env:"LOGGER_FORMAT, default=text"`

	// Generation backend. An empty key defers to the SDK's own env lookup.
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	NewsAPIKey      string `env:"NEWS_API_KEY"`

	WorkerInterval    time.Duration `env:"WORKER_INTERVAL, default=6h"`
	ProcessorInterval time.Duration `env:"PROCESSOR_INTERVAL, default=1m"`

	// Author attributed to generated posts
	SystemAuthorID string `env:"SYSTEM_AUTHOR_ID, default=system"`

	HTTPSCookies       bool   `env:"HTTPS_COOKIES, default=false"`
	GithubClientID     string `env:"GITHUB_CLIENT_ID"`
	GithubClientSecret string `env:"GITHUB_CLIENT_SECRET"`
	CookieHashKey      string `env:"COOKIE_HASH_KEY"`
	CookieBlockKey     string `env:"COOKIE_BLOCK_KEY"`
	CorsHeader         string `env:"CORS_HEADER, default=*"`
	SSORedirectURL     string `env:"SSO_REDIRECT_URL"`
	DebugEndpoints     bool   `env:"DEBUG_ENDPOINTS, default=false"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Parse the config
	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		log.Fatalf("error parsing config: %s", err)
	}

	// Determine which logger format to use
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, nil)
	if cfg.LoggerFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, nil)
	}
	l := slog.New(logger.NewContextHandler(handler))
	slog.SetDefault(l)

	// Start the application
	if err := run(ctx, cfg); err != nil {
		slog.Error("error running", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config) error {
	// Connect to the sqlite db
	dbx, err := sqlx.Open("sqlite", fmt.Sprintf("%s?_txlock=immediate&_journal_mode=WAL&_busy_timeout=5000", cfg.Database))
	if err != nil {
		return fmt.Errorf("error opening database: %s", err)
	}
	defer dbx.Close()

	// Migrate, always
	if err := migrations.Run(dbx); err != nil {
		return fmt.Errorf("error running migrations: %s", err)
	}

	repo := nrsqlite.New(dbx)

	// The generation pipeline
	var opts []option.RequestOption
	if cfg.AnthropicAPIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.AnthropicAPIKey))
	}
	claude := anthropic.NewClient(opts...)
	completer := generate.NewClaudeCompleter(&claude)

	var (
		selector  = models.NewSelector(completer, repo, nil)
		gen       = generate.NewGenerator(completer, repo)
		source    = topics.NewSource(cfg.NewsAPIKey)
		validator = validate.NewValidator()
		publisher = worker.NewPublisher(repo, cfg.SystemAuthorID)
		wrkr      = worker.New(repo, source, selector, gen, generate.SearchURLResolver{}, cfg.WorkerInterval)
		processor = worker.NewProcessor(repo, validator, publisher, cfg.ProcessorInterval)
	)

	s := admin.NewServer(admin.ServerConfig{
		Port:               cfg.Port,
		CookieHashKey:      []byte(cfg.CookieHashKey),
		CookieBlockKey:     []byte(cfg.CookieBlockKey),
		HttpsCookies:       cfg.HTTPSCookies,
		GithubClientID:     cfg.GithubClientID,
		GithubClientSecret: cfg.GithubClientSecret,
		CorsHeader:         cfg.CorsHeader,
		SSORedirectURL:     cfg.SSORedirectURL,
		DebugEndpoints:     cfg.DebugEndpoints,
	}, repo, publisher, validator, selector)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Start the admin server
		slog.Info("admin server listening", "port", cfg.Port)
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error listening: %s", err)
		}

		return nil
	})
	g.Go(func() error {
		// Block from shutting down until the group is canceled
		<-gCtx.Done()

		downCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(downCtx); err != nil {
			slog.Error("error shutting down server", "error", err)
		}

		return nil
	})

	g.Go(func() error {
		// The lock-guarded generation cycles
		if err := wrkr.Run(gCtx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("error running worker: %s", err)
		}

		return nil
	})
	g.Go(func() error {
		// Resolves whatever the worker queued
		if err := processor.Run(gCtx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("error running processor: %s", err)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("error running: %s", err)
	}

	return nil
}
