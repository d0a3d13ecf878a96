package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/tender-bid/internal/ai"
	"github.com/spigell/tender-bid/internal/ai/gemini"
	"github.com/spigell/tender-bid/internal/catalog"
	"github.com/spigell/tender-bid/internal/discovery"
	"github.com/spigell/tender-bid/internal/matching"
	"github.com/spigell/tender-bid/internal/pipeline"
	"github.com/spigell/tender-bid/internal/policy"
	"github.com/spigell/tender-bid/internal/pricing"
	"github.com/spigell/tender-bid/internal/qualifier"
	"github.com/spigell/tender-bid/internal/report"
	"github.com/spigell/tender-bid/internal/secrets"
	"github.com/spigell/tender-bid/internal/state"
)

// application holds everything a command needs to evaluate tenders.
type application struct {
	coordinator *pipeline.Coordinator
	catalog     *catalog.Catalog
	policy      *policy.Policy
	exporter    *report.Exporter
	narrator    ai.Narrator

	closers []func()
}

func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func buildApplication(ctx context.Context, config *Config, ignoreRotation bool, logger *zap.Logger) (*application, error) {
	a := &application{}

	a.policy = policy.Load(config.Policy.File, logger)
	experience := policy.LoadExperience(config.Policy.ExperienceFile, logger)

	store, closeStore, err := openStore(ctx, config.State)
	if err != nil {
		return nil, err
	}
	if closeStore != nil {
		a.closers = append(a.closers, closeStore)
	}

	a.catalog = catalog.Load(catalog.Options{
		DatasheetsDir: config.Catalog.DatasheetsDir,
		File:          config.Catalog.File,
		MergeBuiltin:  config.Catalog.MergeBuiltin,
	}, logger)

	tables := pricing.LoadTables(config.Pricing.Dir, config.Pricing.MarketCostsFile, logger)
	engine := pricing.New(tables, a.policy, pricing.Options{
		OptimizeMargin: pricing.EnabledFlag(config.Pricing.MarginOptimizer),
		ListPrices:     a.catalog.ListPrices(),
	}, logger)

	a.coordinator = pipeline.New(pipeline.Deps{
		Qualifier: qualifier.New(a.policy, experience, store, qualifier.Options{IgnoreRotation: ignoreRotation}, logger),
		Matcher:   matching.New(a.catalog, logger),
		Pricing:   engine,
		Policy:    a.policy,
		Requests:  report.NewRequestWriter(config.Output.RequestsDir),
	}, logger)

	a.exporter = report.NewExporter(config.Output.Dir, logger)

	if config.AI != nil && config.AI.Enabled {
		narrator, err := newNarrator(ctx, config.AI, logger)
		if err != nil {
			logger.Warn("bid brief is disabled", zap.Error(err))
		} else {
			a.narrator = narrator
		}
	}

	return a, nil
}

func openStore(ctx context.Context, config *StateConfig) (state.Store, func(), error) {
	switch strings.ToLower(strings.TrimSpace(config.Backend)) {
	case "", "file":
		return state.NewFile(config.RotationFile, config.AuditFile), nil, nil
	case "sqlite":
		db, err := state.OpenSQLite(ctx, config.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open state database: %w", err)
		}
		return db, func() { db.Close() }, nil
	case "memory":
		return state.NewMemory(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported state backend: %s", config.Backend)
	}
}

// tenderSource opens the configured discovery source. The returned close
// function is never nil.
func tenderSource(ctx context.Context, config *TendersConfig, logger *zap.Logger) (discovery.Source, func(), error) {
	noop := func() {}

	switch strings.ToLower(strings.TrimSpace(config.Source)) {
	case "", discovery.KindFile:
		return discovery.NewFile(config.File), noop, nil

	case discovery.KindPostgres:
		pg := config.Postgres
		if pg == nil {
			pg = &PostgresConfig{}
		}
		dsn, err := secrets.Load(secrets.Source{
			Name:  "postgres dsn",
			Value: pg.DSN,
			File:  pg.DSNFile,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("%w (set tenders.postgres.dsn-file or TENDER_BID_DATABASE_URL_FILE)", err)
		}
		source, err := discovery.OpenPostgres(ctx, dsn, logger)
		if err != nil {
			return nil, noop, err
		}
		return source, source.Close, nil

	case discovery.KindPortal:
		portal := config.Portal
		if portal == nil || portal.BaseURL == "" {
			return nil, noop, fmt.Errorf("tenders.portal.base-url is required for the portal source")
		}
		var token string
		if portal.TokenFile != "" {
			t, err := secrets.Load(secrets.Source{Name: "portal token", File: portal.TokenFile})
			if err != nil {
				return nil, noop, err
			}
			token = t
		}
		source := discovery.NewPortal(portal.BaseURL, portal.Path, token, logger)
		if portal.UserAgent != "" {
			source.UserAgent = portal.UserAgent
		}
		for k, v := range portal.Query {
			source.Query.Set(k, v)
		}
		return source, noop, nil

	case discovery.KindSample:
		count, seed := 5, int64(42)
		if config.Sample != nil {
			if config.Sample.Count > 0 {
				count = config.Sample.Count
			}
			seed = config.Sample.Seed
		}
		return discovery.NewSample(count, seed, time.Now), noop, nil

	default:
		return nil, noop, fmt.Errorf("unsupported tenders source: %s", config.Source)
	}
}

func newNarrator(ctx context.Context, config *AIConfig, logger *zap.Logger) (ai.Narrator, error) {
	provider := strings.TrimSpace(strings.ToLower(config.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", config.Provider)
	}
	if config.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required when ai is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: config.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	genLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", config.Gemini.Model),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, config.Gemini.Model, genLogger)
	if err != nil {
		return nil, err
	}

	return gemini.NewNarrator(generator, genLogger, config.Gemini.MaxLogLength), nil
}
