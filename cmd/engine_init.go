package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/classify"
	"github.com/sells-group/enrich-cli/internal/cost"
	"github.com/sells-group/enrich-cli/internal/icp"
	"github.com/sells-group/enrich-cli/internal/pipeline"
	"github.com/sells-group/enrich-cli/internal/store"
	anthropicpkg "github.com/sells-group/enrich-cli/pkg/anthropic"
	"github.com/sells-group/enrich-cli/pkg/reader"
	"github.com/sells-group/enrich-cli/pkg/search"
)

// engineEnv holds the initialized store, clients, and pipeline engine
// shared by the enrich and batch commands.
type engineEnv struct {
	Store  store.Store
	Engine *pipeline.Engine
}

// Close releases resources held by the environment.
func (e *engineEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "enrich.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: int32(cfg.Store.MaxConns),
			MinConns: int32(cfg.Store.MinConns),
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// targetCodeSource is the slice of the store the criteria loader needs.
type targetCodeSource interface {
	ListTargetCodes(ctx context.Context) ([]string, error)
}

// loadCriteria builds the ICP criteria for the run. Target codes seeded
// into the store take precedence; the configured list is the fallback
// when the table is empty or unreadable.
func loadCriteria(ctx context.Context, src targetCodeSource, fallback icp.Criteria) icp.Criteria {
	codes, err := src.ListTargetCodes(ctx)
	if err != nil {
		zap.L().Warn("cmd: reading target codes from store failed, using configured list",
			zap.Error(err),
		)
		return fallback
	}
	if len(codes) == 0 {
		return fallback
	}
	criteria := fallback
	criteria.TargetCodes = make(map[string]bool, len(codes))
	for _, code := range codes {
		criteria.TargetCodes[code] = true
	}
	return criteria
}

// initEngine sets up the store and API clients and builds the pipeline
// engine. Callers should defer env.Close().
func initEngine(ctx context.Context) (*engineEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	searchClient := search.NewClient(
		search.StaticToken(cfg.Search.Key),
		search.WithBaseURL(cfg.Search.BaseURL),
		search.WithModel(cfg.Search.Model),
	)
	readerClient := reader.NewClient(cfg.Reader.Key,
		reader.WithBaseURL(cfg.Reader.BaseURL),
		reader.WithRateLimit(cfg.Reader.RateLimit),
	)
	aiClient := anthropicpkg.NewClient(cfg.Anthropic.Key)

	loader := classify.NewLoader(st, time.Duration(cfg.Taxonomy.TTLHours)*time.Hour)
	classifier := classify.NewClassifier(aiClient, cfg.Anthropic.HaikuModel, loader)

	calc := cost.NewCalculator(cost.RatesWithDefaults(cfg.Pricing))
	criteria := loadCriteria(ctx, st, cfg.ICP.Criteria())

	engine := pipeline.New(
		st, searchClient, readerClient, aiClient, classifier, calc,
		criteria,
		cfg.Anthropic.SonnetModel, cfg.Anthropic.HaikuModel,
	)

	return &engineEnv{Store: st, Engine: engine}, nil
}
