package di

import (
	"context"
	"fmt"
	"time"

	"RateSim/internal/domain/repository"
	"RateSim/internal/handler/api"
	internalrepo "RateSim/internal/repository"
	"RateSim/internal/service/curvecache"
	"RateSim/internal/service/treasury"
	"RateSim/internal/services/curve"
	"RateSim/internal/usecase"
	pkgcache "RateSim/pkg/cache"
	pkgch "RateSim/pkg/clickhouse"
	"RateSim/pkg/config"
	xhttp "RateSim/pkg/http"
	pkgkafka "RateSim/pkg/kafka"
	applogger "RateSim/pkg/logger"
	"RateSim/pkg/metrics"
	"RateSim/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	lc := &applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if lc.Level == "" {
		lc.Level = "info"
	}
	if lc.Format == "" {
		lc.Format = "console"
	}
	if lc.Output == "" {
		lc.Output = "stdout"
	}
	return applogger.New(lc)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideFeedSources creates one feed client per configured source.
func ProvideFeedSources(cfg *config.Config) []repository.FeedSource {
	timeout := cfg.Feed.FetchTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	sources := make([]repository.FeedSource, 0, len(cfg.Feed.Sources))
	for _, s := range cfg.Feed.Sources {
		url := s.URL
		if url == "" {
			url = treasury.DefaultURLTemplate
		}
		sources = append(sources, treasury.New(s.ID, url, cfg.Feed.UserAgent, timeout))
	}
	return sources
}

// ProvideL2Cache creates the optional Redis-backed snapshot store. Returns
// nil when Redis is disabled; the curve cache runs memory-only then.
func ProvideL2Cache(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Cache.Redis.Enabled {
		return nil, nil
	}

	opts := []pkgcache.RedisOption{
		pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
	}
	if cfg.Cache.Redis.Host != "" {
		opts = append(opts, pkgcache.WithRedisHost(cfg.Cache.Redis.Host))
	}
	if cfg.Cache.Redis.Port != 0 {
		opts = append(opts, pkgcache.WithRedisPort(cfg.Cache.Redis.Port))
	}
	if cfg.Cache.Redis.Password != "" {
		opts = append(opts, pkgcache.WithRedisPassword(cfg.Cache.Redis.Password))
	}

	rc, err := pkgcache.NewRedisCache(opts...)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return pkgcache.NewLayeredCache(rc), nil
}

// ProvideCurveCache creates the per-source curve cache.
func ProvideCurveCache(
	cfg *config.Config,
	sources []repository.FeedSource,
	log *applogger.Logger,
	m repository.Metrics,
	l2 pkgcache.Service,
) *curvecache.Cache {
	opts := []curvecache.Option{
		curvecache.WithLogger(log),
		curvecache.WithMetrics(m),
	}
	if cfg.Cache.MaxAge > 0 {
		opts = append(opts, curvecache.WithMaxAge(cfg.Cache.MaxAge))
	}
	if cfg.Feed.FetchTimeout > 0 {
		opts = append(opts, curvecache.WithFetchTimeout(cfg.Feed.FetchTimeout))
	}
	if cfg.Cache.Interpolation != "" {
		opts = append(opts, curvecache.WithInterpolation(curve.Interpolation(cfg.Cache.Interpolation)))
	}
	if l2 != nil {
		ttl := cfg.Cache.Redis.TTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		opts = append(opts, curvecache.WithPersistence(l2, ttl))
	}
	return curvecache.New(sources, opts...)
}

// ProvideClickHouseClient creates a ClickHouse client when the sink needs one.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Sink.Type != "clickhouse" {
		return nil, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.Sink.ClickHouse.Host),
		pkgch.WithPort(cfg.Sink.ClickHouse.Port),
		pkgch.WithDatabase(cfg.Sink.ClickHouse.Database),
		pkgch.WithCredentials(cfg.Sink.ClickHouse.User, cfg.Sink.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.Sink.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.Sink.ClickHouse.AsyncInsert, cfg.Sink.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.Sink.ClickHouse.DialTimeout, cfg.Sink.ClickHouse.ReadTimeout, cfg.Sink.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.Sink.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + cfg.Sink.ClickHouse.Database,
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer when the sink needs one.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if cfg.Sink.Type != "kafka" {
		return nil, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Sink.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Sink.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Sink.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Sink.Kafka.Producer.BatchSize, cfg.Sink.Kafka.Producer.BatchBytes, cfg.Sink.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Sink.Kafka.Producer.WriteTimeout, cfg.Sink.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Sink.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Sink.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideSnapshotStorage creates ClickHouse snapshot storage.
func ProvideSnapshotStorage(chClient *pkgch.Client, cfg *config.Config) (repository.Storage, error) {
	if chClient == nil {
		return nil, nil
	}

	store := internalrepo.NewClickHouseSnapshotStore(chClient.DB(), cfg.Sink.ClickHouse.Database+".curve_snapshots")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideSnapshotPublisher creates Kafka snapshot publisher.
func ProvideSnapshotPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaSnapshotPublisher(producer, cfg.Sink.Kafka.Topic)
}

// ProvideSnapshotProcessor creates the snapshot sink use case.
func ProvideSnapshotProcessor(
	pub repository.Publisher,
	store repository.Storage,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.SnapshotProcessor {
	return usecase.NewSnapshotProcessor(pub, store, m, cfg.Sink.Type)
}

// ProvideRefresher creates the background refresher.
func ProvideRefresher(
	cache *curvecache.Cache,
	proc *usecase.SnapshotProcessor,
	m repository.Metrics,
	log *applogger.Logger,
	cfg *config.Config,
) *usecase.Refresher {
	return usecase.NewRefresher(cache, proc, m, log, cfg.Feed.RefreshInterval)
}

// ProvideAnalyzer creates the curve analysis use case.
func ProvideAnalyzer(cache *curvecache.Cache, log *applogger.Logger) *usecase.Analyzer {
	return usecase.NewAnalyzer(cache, log)
}

// ProvideHTTPHandler creates the combined REST and websocket handler.
func ProvideHTTPHandler(log *applogger.Logger, an *usecase.Analyzer, cache *curvecache.Cache) xhttp.Handler {
	rest := api.NewCurvesEchoHandler(log, an, cache)
	ws := api.NewCurvesWSHandler(log, cache)
	return api.NewRouter(rest, ws)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	refresher *usecase.Refresher,
	proc *usecase.SnapshotProcessor,
	chClient *pkgch.Client,
	handler xhttp.Handler,
	log *applogger.Logger,
) *server.App {
	return server.New(cfg, refresher, proc, chClient, handler, log)
}
