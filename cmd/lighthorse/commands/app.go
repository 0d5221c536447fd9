package commands

import (
	"fmt"
	"io"

	"github.com/wonny/lighthorse/backend/internal/cache"
	"github.com/wonny/lighthorse/backend/internal/catalog"
	"github.com/wonny/lighthorse/backend/internal/dashboard"
	"github.com/wonny/lighthorse/backend/internal/external/lighthorse"
	"github.com/wonny/lighthorse/backend/pkg/config"
	"github.com/wonny/lighthorse/backend/pkg/httputil"
	"github.com/wonny/lighthorse/backend/pkg/logger"
	"github.com/wonny/lighthorse/backend/pkg/metrics"
	"github.com/wonny/lighthorse/backend/pkg/redis"
)

// app holds the wired components shared by commands
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.Recorder
	redis   *redis.Client
	client  *lighthorse.Client
	cache   *cache.ResponseCache
	catalog *catalog.Catalog
	service *dashboard.Service
}

// loadConfig applies the global flags on top of the environment
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if env != "" {
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if catalogFile != "" {
		cfg.CatalogPath = catalogFile
	}

	return cfg, nil
}

// newApp wires config → logger → clients → cache → service.
// logOut receives log lines so stdout stays free for command output.
func newApp(logOut io.Writer) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log := logger.NewWithWriter(cfg, logOut)

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	var rec *metrics.Recorder
	if cfg.MetricsEnabled {
		rec = metrics.New()
	}

	rdb, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	client := lighthorse.NewClient(httputil.New(cfg, log), log, rec, cfg.Lighthorse.BaseURL).
		WithSharedLimit(redis.NewRateLimiter(rdb, "lighthorse"), redis.UpstreamRateLimit(cfg.Lighthorse.RateLimit))
	rc := cache.New(cfg.Lighthorse.CacheTTL, redis.NewCache(rdb, "lighthorse"), rec, log)

	return &app{
		cfg:     cfg,
		log:     log,
		metrics: rec,
		redis:   rdb,
		client:  client,
		cache:   rc,
		catalog: cat,
		service: dashboard.NewService(cat, client, rc, rec, log),
	}, nil
}

// Close releases external connections
func (a *app) Close() error {
	return a.redis.Close()
}
