package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/closai/internal/advisor"
	"github.com/spigell/closai/internal/ai"
	"github.com/spigell/closai/internal/ai/gemini"
	"github.com/spigell/closai/internal/catalog"
	"github.com/spigell/closai/internal/logger"
	"github.com/spigell/closai/internal/secrets"
	"github.com/spigell/closai/internal/wardrobe"
)

// env is what every command starts from.
type env struct {
	ctx     context.Context
	config  *Config
	logger  *zap.Logger
	closers []func() error
}

func newEnv(ctx context.Context) *env {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Debug("starting", zap.String("version", version), zap.Any("config", redacted(config)))

	return &env{ctx: ctx, config: config, logger: logger}
}

func (e *env) close() {
	for _, c := range e.closers {
		if err := c(); err != nil {
			e.logger.Warn("closing resources", zap.Error(err))
		}
	}
	_ = e.logger.Sync()
}

// store opens the configured wardrobe backend.
func (e *env) store() *wardrobe.Store {
	cfg := e.config.Store
	log := e.logger.Named("wardrobe")

	var backend wardrobe.Backend
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "file":
		backend = wardrobe.NewFileBackend(cfg.Path, cfg.LegacyPath, log)
	case "postgres":
		pg := cfg.Postgres
		if pg == nil {
			pg = &PostgresConfig{}
		}
		dsn, err := secrets.Load(secrets.Source{
			Name:  "postgres dsn",
			Value: pg.DSN,
			File:  pg.DSNFile,
		})
		if err != nil {
			e.logger.Fatal("loading postgres dsn", zap.Error(err),
				zap.String("hint", "set CLOSAI_DATABASE_URL or store.postgres.dsn-file"),
			)
		}
		pb, err := wardrobe.OpenPostgres(e.ctx, dsn, pg.Profile, pg.LegacyProfile, log)
		if err != nil {
			e.logger.Fatal("opening postgres wardrobe", zap.Error(err))
		}
		e.closers = append(e.closers, pb.Close)
		backend = pb
	default:
		e.logger.Fatal("unsupported store backend", zap.String("backend", cfg.Backend))
	}

	return wardrobe.NewStore(backend, log)
}

func (e *env) catalog() *catalog.Client {
	return catalog.New(e.config.Catalog, e.logger.Named("catalog"))
}

// assistants builds the narrative and summary providers. AI is optional:
// when it is disabled or misconfigured both are nil and callers degrade.
func (e *env) assistants() (ai.Narrator, ai.Summarizer) {
	cfg := e.config.AI
	if !cfg.Enabled {
		e.logger.Debug("ai is disabled")
		return nil, nil
	}

	generator, err := newGenerator(e.ctx, cfg, e.logger)
	if err != nil {
		e.logger.Warn("continuing without ai", zap.Error(err))
		return nil, nil
	}

	log := e.logger.Named("ai")
	return gemini.NewNarrator(generator, log, cfg.Gemini.MaxLogLength),
		gemini.NewSummarizer(generator, log, cfg.Gemini.MaxLogLength)
}

func (e *env) advisor(store *wardrobe.Store, narrator ai.Narrator, summarizer ai.Summarizer) *advisor.Advisor {
	adv, err := advisor.New(advisor.Deps{
		Catalog:    e.catalog(),
		Wardrobe:   store,
		Narrator:   narrator,
		Summarizer: summarizer,
		Logger:     e.logger.Named("advisor"),
	}, advisor.Config{AITimeout: e.config.AI.Timeout})
	if err != nil {
		e.logger.Fatal("creating the advisor", zap.Error(err))
	}
	return adv
}

func newGenerator(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (*gemini.Generator, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (or ai.gemini.api-key-file / GEMINI_API_KEY_FILE)", err)
	}

	genLogger := logger.With(zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries))

	return gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
}

// redacted returns a copy of config that is safe to log.
func redacted(config *Config) Config {
	c := *config
	if c.Store != nil && c.Store.Postgres != nil && c.Store.Postgres.DSN != "" {
		store := *c.Store
		pg := *store.Postgres
		pg.DSN = "***"
		store.Postgres = &pg
		c.Store = &store
	}
	if c.AI != nil && c.AI.Gemini != nil && c.AI.Gemini.APIKey != "" {
		aiCfg := *c.AI
		g := *aiCfg.Gemini
		g.APIKey = "***"
		aiCfg.Gemini = &g
		c.AI = &aiCfg
	}
	return c
}
