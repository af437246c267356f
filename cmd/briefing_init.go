package main

import (
	"context"
	"time"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/briefing-cli/internal/briefing"
	"github.com/sells-group/briefing-cli/internal/intel"
	"github.com/sells-group/briefing-cli/internal/leadstore"
	"github.com/sells-group/briefing-cli/internal/pipeline"
	"github.com/sells-group/briefing-cli/internal/registry"
	"github.com/sells-group/briefing-cli/internal/scrape"
	"github.com/sells-group/briefing-cli/internal/store"
	anthropicpkg "github.com/sells-group/briefing-cli/pkg/anthropic"
	"github.com/sells-group/briefing-cli/pkg/newsapi"
	"github.com/sells-group/briefing-cli/pkg/notion"
	sfpkg "github.com/sells-group/briefing-cli/pkg/salesforce"
)

// briefingEnv holds the initialized stores, registry, and pipeline shared by
// the run/serve/batch/leads commands.
type briefingEnv struct {
	Pipeline *pipeline.Pipeline
	Runs     store.Store
	Leads    leadstore.Store
	Registry *registry.Registry
}

// Close releases resources held by the environment.
func (be *briefingEnv) Close() {
	if be.Runs != nil {
		_ = be.Runs.Close()
	}
}

// initBriefing sets up the run store, lead store, context registry, and
// intelligence/synthesis clients, and builds the Pipeline. Callers should
// defer env.Close(). Missing API credentials are a supported degraded mode
// and never fail initialization; only broken storage does.
func initBriefing(ctx context.Context) (*briefingEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	leads, err := initLeadStore()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	reg := initRegistry(ctx)

	scraper := scrape.NewSiteScraper(scrape.Options{
		Timeout:   time.Duration(cfg.Scrape.TimeoutSecs) * time.Second,
		MaxChars:  cfg.Scrape.MaxChars,
		UserAgent: cfg.Scrape.UserAgent,
	})

	var newsClient newsapi.Client
	if cfg.News.IsConfigured() {
		newsClient = newsapi.NewClient(cfg.News.APIKey,
			newsapi.WithBaseURL(cfg.News.BaseURL),
			newsapi.WithPageSize(cfg.News.PageSize),
		)
	} else {
		zap.L().Warn("BRIEFING_NEWS_API_KEY not set, headlines degrade to a placeholder")
	}
	gatherer := intel.NewAggregator(scraper, intel.NewNewsFetcher(newsClient))

	var anthropicClient anthropicpkg.Client
	if cfg.Anthropic.IsConfigured() {
		anthropicClient = anthropicpkg.NewClient(cfg.Anthropic.APIKey)
	} else {
		zap.L().Warn("BRIEFING_ANTHROPIC_API_KEY not set, briefings degrade to the fallback document")
	}
	synth := briefing.NewSynthesizer(anthropicClient, cfg.Anthropic)

	p := pipeline.New(gatherer, reg, synth, leads, st)

	return &briefingEnv{
		Pipeline: p,
		Runs:     st,
		Leads:    leads,
		Registry: reg,
	}, nil
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DSN
		if dsn == "" {
			dsn = "briefing.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DSN, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initLeadStore() (leadstore.Store, error) {
	switch cfg.Leads.Backend {
	case "local":
		return leadstore.NewLocal(cfg.Leads.LocalPath), nil
	case "salesforce":
		sfClient, err := initSalesforce()
		if err != nil {
			return nil, err
		}
		return leadstore.NewSalesforceStore(sfClient, cfg.Leads), nil
	default:
		return nil, eris.Errorf("unsupported leads backend: %s", cfg.Leads.Backend)
	}
}

func initSalesforce() (sfpkg.Client, error) {
	if !cfg.Salesforce.IsConfigured() {
		return nil, eris.New("salesforce credentials incomplete (needs username, password, security token, and connected app key/secret)")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		Password:       cfg.Salesforce.Password,
		SecurityToken:  cfg.Salesforce.SecurityToken,
		ConsumerKey:    cfg.Salesforce.ConsumerKey,
		ConsumerSecret: cfg.Salesforce.ConsumerSecret,
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	// Keep webhook bursts inside the org's REST API allocation.
	return sfpkg.NewClient(sf, sfpkg.WithRateLimit(5)), nil
}

// initRegistry loads the campaign-context collection once at startup. A load
// failure is never fatal: lookups against an empty registry miss, and misses
// do not abort briefing runs.
func initRegistry(ctx context.Context) *registry.Registry {
	if cfg.Registry.NotionConfigured() {
		notionClient := notion.NewClient(cfg.Registry.NotionToken)
		records, err := registry.LoadContextsFromNotion(ctx, notionClient, cfg.Registry.NotionDatabaseID)
		if err == nil {
			zap.L().Info("context registry loaded from notion", zap.Int("records", len(records)))
			return registry.NewRegistry(records)
		}
		zap.L().Warn("notion registry load failed, falling back to file",
			zap.String("path", cfg.Registry.Path),
			zap.Error(err),
		)
	}

	records, err := registry.LoadContextsFromFile(cfg.Registry.Path)
	if err != nil {
		zap.L().Warn("context registry unavailable, all lookups will miss",
			zap.String("path", cfg.Registry.Path),
			zap.Error(err),
		)
		return registry.NewRegistry(nil)
	}

	zap.L().Info("context registry loaded",
		zap.String("path", cfg.Registry.Path),
		zap.Int("records", len(records)),
	)
	return registry.NewRegistry(records)
}
