package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"codecrafter-quiz/internal/analytics"
	"codecrafter-quiz/internal/app"
	"codecrafter-quiz/internal/catalog"
	"codecrafter-quiz/internal/config"
	"codecrafter-quiz/internal/infra/memory"
	mongostore "codecrafter-quiz/internal/infra/mongo"
	pgstore "codecrafter-quiz/internal/infra/postgres"
	redisstore "codecrafter-quiz/internal/infra/redis"
	sqlitestore "codecrafter-quiz/internal/infra/sqlite"
	"codecrafter-quiz/internal/logger"
	transport "codecrafter-quiz/internal/transport/http"
	"codecrafter-quiz/internal/visits"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// cleanup releases resources in reverse order of acquisition.
type cleanup []func()

func (c *cleanup) add(f func()) { *c = append(*c, f) }

func (c cleanup) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func loadConfig(path string) (config.Config, zerolog.Logger, error) {
	return loadConfigTo(path, os.Stdout)
}

func loadConfigTo(path string, out io.Writer) (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, logger.New(out, "info", "pretty"), err
	}
	log := logger.New(out, cfg.Log.Level, cfg.Log.Format)
	for _, w := range cfg.Warnings {
		log.Warn().Msg(w)
	}
	return cfg, log, nil
}

func newRedisClient(cfg config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// fetchTimeout bounds each catalog call of a session by catalog.timeout.
func fetchTimeout(cfg config.Config) app.RuntimeOption {
	return app.WithFetchTimeout(config.TTLDuration(cfg.Catalog.Timeout, 5*time.Second))
}

func runtimeOptions(cfg config.Config, log zerolog.Logger) []app.RuntimeOption {
	return []app.RuntimeOption{app.WithLogger(log), fetchTimeout(cfg)}
}

func newPlayHandler(
	cfg config.Config,
	repo catalog.Repository,
	store transport.SessionRegistry,
	visitSvc *visits.Service,
	trackers transport.TrackerFactory,
	log zerolog.Logger,
) *transport.PlayHandler {
	return transport.NewPlayHandler(catalog.NewLocal(repo), store,
		transport.WithVisits(visitSvc),
		transport.WithTrackers(trackers),
		transport.WithInitialToken(cfg.Services.InitialSessionToken),
		transport.WithLogger(log),
		transport.WithRuntimeOptions(fetchTimeout(cfg)),
	)
}

// buildQuizLoader picks the quiz source: Postgres, then SQLite, then the
// bundled sample catalog.
func buildQuizLoader(ctx context.Context, cfg config.Config, log zerolog.Logger, c *cleanup) (memory.QuizLoader, error) {
	switch {
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		c.add(pool.Close)
		log.Info().Msg("quiz content from postgres")
		return pgstore.NewQuizLoader(pool), nil

	case cfg.Catalog.SQLitePath != "":
		store, err := sqlitestore.NewQuizStore(cfg.Catalog.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		c.add(func() { _ = store.Close() })
		log.Info().Str("path", cfg.Catalog.SQLitePath).Msg("quiz content from sqlite")
		return store, nil

	default:
		log.Info().Msg("quiz content from bundled sample")
		return memory.NewStaticQuizLoader(catalog.Sample()), nil
	}
}

func buildQuizRepository(loader memory.QuizLoader, redisClient *redis.Client, cfg config.Config) catalog.Repository {
	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	if redisClient != nil {
		return redisstore.NewQuizRepository(redisClient, loader, quizTTL)
	}
	return memory.NewQuizRepository(loader, quizTTL)
}

// buildVisits picks the visit ledger: MongoDB, then Redis, then memory.
func buildVisits(ctx context.Context, cfg config.Config, redisClient *redis.Client, log zerolog.Logger, c *cleanup) (*visits.Service, error) {
	var ledger visits.Ledger
	switch {
	case cfg.Mongo.URI != "":
		client, err := mongostore.Connect(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		c.add(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(ctx)
		})
		mongoLedger := mongostore.NewVisitLedger(client.Database(cfg.Mongo.Database))
		if err := mongoLedger.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("ensure visit indexes failed")
		}
		ledger = mongoLedger
	case redisClient != nil:
		ledger = redisstore.NewVisitLedger(redisClient)
	default:
		ledger = memory.NewVisitLedger()
	}

	return visits.NewService(ledger, cfg.Services.AppNamespace,
		visits.WithLogger(log),
		visits.WithPollInterval(config.TTLDuration(cfg.Mongo.PollInterval, 2*time.Second)),
	), nil
}

// buildAnalytics fans hits out to the log, to Prometheus when reg is set, to
// GA4 when credentials exist and to RabbitMQ when an AMQP url is set.
func buildAnalytics(cfg config.Config, log zerolog.Logger, reg prometheus.Registerer, c *cleanup) *analytics.Dispatcher {
	sinks := []analytics.Sink{analytics.NewLogSink(log)}
	if reg != nil {
		sinks = append(sinks, analytics.NewMetricsSink(reg))
	}
	if cfg.Analytics.MeasurementID != "" && cfg.Analytics.APISecret != "" {
		sinks = append(sinks, analytics.NewGA4Sink(
			cfg.Analytics.Endpoint,
			cfg.Analytics.MeasurementID,
			cfg.Analytics.APISecret,
			&http.Client{Timeout: 5 * time.Second},
		))
	} else {
		log.Info().Msg("analytics credentials missing, ga4 disabled")
	}
	if cfg.Analytics.AMQPURL != "" {
		sink, err := analytics.DialAMQP(cfg.Analytics.AMQPURL, cfg.Analytics.Exchange)
		if err != nil {
			log.Warn().Err(err).Msg("amqp analytics disabled")
		} else {
			c.add(func() { _ = sink.Close() })
			sinks = append(sinks, sink)
		}
	}

	d := analytics.NewDispatcher(cfg.Analytics.QueueSize, sinks, analytics.WithLogger(log))
	// registered last so it runs first and drains before sinks close
	c.add(d.Close)
	return d
}
