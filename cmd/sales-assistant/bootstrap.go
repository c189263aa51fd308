package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"sales-assistant/internal/classifier"
	"sales-assistant/internal/common/config"
	"sales-assistant/internal/common/database"
	"sales-assistant/internal/common/logger"
	"sales-assistant/internal/common/observability"
	"sales-assistant/internal/conversation"
	"sales-assistant/internal/dataset"
	draftoutreach "sales-assistant/internal/workers/communication/draft-outreach"
	analyzeprospect "sales-assistant/internal/workers/insights/analyze-prospect"
	findprospects "sales-assistant/internal/workers/prospecting/find-prospects"
	routerequest "sales-assistant/internal/workers/routing/route-request"
	"sales-assistant/internal/workflow"
	"sales-assistant/pkg/registry"
)

// app holds everything one process needs, built once per command.
type app struct {
	cfg      *config.Config
	zap      *zap.Logger
	log      logger.Logger
	obs      *observability.Observability
	store    *dataset.Store
	port     classifier.Port
	registry *registry.ActivityRegistry
	handlers *handlerSet
	engine   *workflow.Engine
	closers  []func() error
}

type handlerSet struct {
	router        *routerequest.Handler
	prospecting   *findprospects.Handler
	insights      *analyzeprospect.Handler
	communication *draftoutreach.Handler
}

type appOptions struct {
	configPath string
	logLevel   string
	// logOutput overrides logging.output; the MCP server needs stdout for the protocol.
	logOutput string
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func newApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.logOutput != "" {
		cfg.Logging.Output = opts.logOutput
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	a := &app{
		cfg: cfg,
		zap: zapLog,
		log: logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{"service": cfg.App.Name}),
		obs: observability.New(cfg.Observability.ServiceName, cfg.Observability.JaegerEndpoint),
	}

	if err := a.init(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) init(ctx context.Context) error {
	store, err := a.loadDataset(ctx)
	if err != nil {
		return err
	}
	a.store = store

	a.port, err = classifier.New(ctx, a.cfg.Classifier, a.redisForCache(ctx), a.log)
	if err != nil {
		return fmt.Errorf("init classifier: %w", err)
	}

	if reg, err := registry.LoadRegistry(a.cfg.RegistryPath); err != nil {
		a.log.Warn("task registry unavailable, job inputs will not be schema-checked", map[string]interface{}{
			"path":  a.cfg.RegistryPath,
			"error": err.Error(),
		})
	} else {
		a.registry = reg
	}

	a.handlers = newHandlers(a.cfg, a.port, a.store, a.log)
	if a.registry != nil {
		a.handlers.router.WithRegistry(a.registry)
		a.handlers.prospecting.WithRegistry(a.registry)
		a.handlers.insights.WithRegistry(a.registry)
		a.handlers.communication.WithRegistry(a.registry)
	}

	a.engine = workflow.NewEngine(workflow.Config{
		MaxIterations: a.cfg.Budget.MaxIterations,
		Timeout:       config.GetDuration(a.cfg.Budget.Timeout),
		HistoryWindow: a.cfg.Conversation.HistoryWindow,
		Classifier:    a.cfg.Classifier.Provider,
	}, workflow.Deps{
		Router:        a.handlers.router,
		Prospecting:   a.handlers.prospecting,
		Insights:      a.handlers.insights,
		Communication: a.handlers.communication,
		Conversation:  conversation.New(a.cfg.Conversation.MaxEntries),
		Store:         a.store,
		Observability: a.obs,
	}, a.log)

	a.log.Info("sales assistant ready", map[string]interface{}{
		"classifier": a.cfg.Classifier.Provider,
		"records":    a.store.Len(),
		"source":     a.cfg.Dataset.Source,
	})
	return nil
}

// newHandlers applies config overrides on top of each handler's defaults.
func newHandlers(cfg *config.Config, port classifier.Port, store *dataset.Store, log logger.Logger) *handlerSet {
	timeout := config.GetDuration(cfg.Budget.Timeout)

	routeCfg := routerequest.LoadConfig()
	routeCfg.HistoryWindow = cfg.Conversation.HistoryWindow
	routeCfg.MaxIterations, routeCfg.Timeout = cfg.Budget.MaxIterations, timeout
	if cfg.Prompts.Router != "" {
		routeCfg.Prompt = cfg.Prompts.Router
	}

	findCfg := findprospects.LoadConfig()
	findCfg.MaxIterations, findCfg.Timeout = cfg.Budget.MaxIterations, timeout
	if cfg.Prompts.FilterExtraction != "" {
		findCfg.Prompt = cfg.Prompts.FilterExtraction
	}

	analyzeCfg := analyzeprospect.LoadConfig()
	analyzeCfg.MaxIterations, analyzeCfg.Timeout = cfg.Budget.MaxIterations, timeout
	if cfg.Prompts.NameExtraction != "" {
		analyzeCfg.NamePrompt = cfg.Prompts.NameExtraction
	}

	draftCfg := draftoutreach.LoadConfig()
	draftCfg.MaxIterations, draftCfg.Timeout = cfg.Budget.MaxIterations, timeout
	draftCfg.SenderName, draftCfg.SignOff = cfg.Outreach.SenderName, cfg.Outreach.SignOff
	if cfg.Prompts.NameExtraction != "" {
		draftCfg.NamePrompt = cfg.Prompts.NameExtraction
	}

	return &handlerSet{
		router:        routerequest.NewHandler(routeCfg, port, log),
		prospecting:   findprospects.NewHandler(findCfg, port, store, log),
		insights:      analyzeprospect.NewHandler(analyzeCfg, port, store, log),
		communication: draftoutreach.NewHandler(draftCfg, port, store, log),
	}
}

func (a *app) loadDataset(ctx context.Context) (*dataset.Store, error) {
	var src dataset.Sources

	switch a.cfg.Dataset.Source {
	case "postgres":
		var pg *database.PostgresClient
		err := retryWithBackoff(func() error {
			var err error
			if pg, err = database.NewPostgres(a.cfg.Database.Postgres); err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 5, time.Second, a.log, "PostgreSQL connection")
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pg.Close)
		src.Postgres = pg

	case "elasticsearch":
		var es *database.ElasticsearchClient
		err := retryWithBackoff(func() error {
			var err error
			if es, err = database.NewElasticsearch(a.cfg.Database.Elasticsearch); err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 5, time.Second, a.log, "Elasticsearch connection")
		if err != nil {
			return nil, err
		}
		src.Elasticsearch = es
	}

	loader, err := dataset.NewLoader(a.cfg.Dataset, src, a.log)
	if err != nil {
		return nil, err
	}
	store, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return store, nil
}

// redisForCache connects the extraction cache. A missing or unreachable Redis disables caching.
func (a *app) redisForCache(ctx context.Context) *redis.Client {
	if a.cfg.Classifier.CacheTTL <= 0 || a.cfg.Database.Redis.Address == "" {
		return nil
	}
	rc := database.NewRedis(a.cfg.Database.Redis)
	if err := rc.Ping(ctx); err != nil {
		a.log.Warn("redis unavailable, extraction cache disabled", map[string]interface{}{
			"address": a.cfg.Database.Redis.Address,
			"error":   err.Error(),
		})
		_ = rc.Close()
		return nil
	}
	a.closers = append(a.closers, rc.Close)
	return rc.Client
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close failed", map[string]interface{}{"error": err.Error()})
		}
	}
	a.obs.Shutdown()
	_ = a.zap.Sync()
}

// retryWithBackoff attempts operation up to maxRetries times, doubling the delay after each failure.
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		if err = operation(); err == nil {
			return nil
		}
		if i < maxRetries-1 {
			log.Warn(operationName+" failed, retrying", map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}
