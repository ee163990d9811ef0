package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/bescout/fantasy-events/internal/config"
	"github.com/bescout/fantasy-events/internal/domain/event"
	"github.com/bescout/fantasy-events/internal/domain/holding"
	"github.com/bescout/fantasy-events/internal/domain/lineup"
	"github.com/bescout/fantasy-events/internal/domain/reputation"
	"github.com/bescout/fantasy-events/internal/domain/wallet"
	"github.com/bescout/fantasy-events/internal/infrastructure/account/introspect"
	"github.com/bescout/fantasy-events/internal/infrastructure/holdings/oracleclient"
	"github.com/bescout/fantasy-events/internal/infrastructure/jobqueue"
	"github.com/bescout/fantasy-events/internal/infrastructure/leaderboard/redisboard"
	cacherepo "github.com/bescout/fantasy-events/internal/infrastructure/repository/cache"
	"github.com/bescout/fantasy-events/internal/infrastructure/repository/memory"
	"github.com/bescout/fantasy-events/internal/infrastructure/repository/postgres"
	"github.com/bescout/fantasy-events/internal/infrastructure/resultsfeed"
	"github.com/bescout/fantasy-events/internal/infrastructure/wallet/railclient"
	"github.com/bescout/fantasy-events/internal/interfaces/httpapi"
	"github.com/bescout/fantasy-events/internal/platform/cache"
	idgen "github.com/bescout/fantasy-events/internal/platform/id"
	"github.com/bescout/fantasy-events/internal/platform/resilience"
	"github.com/bescout/fantasy-events/internal/usecase"
)

// NewHTTPServer wires the whole engine from configuration. The returned
// cleanup closes storage and broker connections and must run after the
// server shuts down.
func NewHTTPServer(cfg config.Config, logger *slog.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var cleanups []func() error
	cleanup := func() error {
		var firstErr error
		for i := len(cleanups) - 1; i >= 0; i-- {
			if err := cleanups[i](); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}
	fail := func(err error) (*http.Server, func() error, error) {
		_ = cleanup()
		return nil, nil, err
	}

	seedCards := memory.SeedCards()

	var (
		eventRepo    event.Repository
		lineupRepo   lineup.Repository
		payoutRepo   wallet.PayoutRepository
		reputations  reputation.Ledger
		gameweekRepo event.GameweekRepository
	)

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := otelsqlx.Open("postgres",
			normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
			otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
			otelsql.WithQueryFormatter(formatDBQueryForTrace),
		)
		if err != nil {
			return fail(fmt.Errorf("open postgres: %w", err))
		}
		cleanups = append(cleanups, db.Close)
		if err := db.Ping(); err != nil {
			return fail(fmt.Errorf("ping postgres: %w", err))
		}

		eventRepo = postgres.NewEventRepository(db)
		lineupRepo = postgres.NewLineupRepository(db)
		payoutRepo = postgres.NewPayoutRepository(db)
		reputations = postgres.NewReputationLedger(db)
		gameweekRepo = postgres.NewGameweekRepository(db)
		logger.Info("storage ready", "driver", config.StoragePostgres)

	case config.StorageMemory:
		memEvents := memory.NewEventRepository()
		for _, evt := range memory.SeedEvents(cfg.GameweekStart) {
			if err := memEvents.Create(context.Background(), evt); err != nil {
				return fail(fmt.Errorf("seed event %s: %w", evt.ID, err))
			}
		}
		eventRepo = memEvents
		lineupRepo = memory.NewLineupRepository()
		payoutRepo = memory.NewPayoutRepository()
		reputations = memory.NewReputationLedger()
		gameweekRepo = memory.NewGameweekRepository(cfg.GameweekStart)
		logger.Info("storage ready", "driver", config.StorageMemory)

	default:
		return fail(fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver))
	}

	if cfg.CacheEnabled {
		eventRepo = cacherepo.NewEventRepository(eventRepo, cache.NewStore(cfg.CacheTTL))
		lineupRepo = cacherepo.NewLineupRepository(lineupRepo, cache.NewStore(cfg.CacheTTL))
	}

	var oracle holding.Oracle
	if cfg.OracleEnabled {
		client, err := oracleclient.NewClient(oracleclient.Config{
			BaseURL:    cfg.OracleBaseURL,
			APIKey:     cfg.OracleAPIKey,
			Timeout:    cfg.OracleTimeout,
			CatalogTTL: cfg.OracleCatalogTTL,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.OracleCircuitEnabled,
				FailureThreshold: cfg.OracleCircuitFailureCount,
				OpenTimeout:      cfg.OracleCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.OracleCircuitHalfOpenReq,
			},
		}, logger)
		if err != nil {
			return fail(fmt.Errorf("build holdings oracle client: %w", err))
		}
		oracle = client
	} else {
		memOracle := memory.NewOracle()
		for _, c := range seedCards {
			memOracle.AddCard(c)
		}
		memory.SeedDemoUsers(memOracle, seedCards)
		oracle = memOracle
		logger.Info("holdings oracle running in-memory", "cards", len(seedCards))
	}

	var rail wallet.Rail
	if cfg.RailEnabled {
		client, err := railclient.NewClient(railclient.Config{
			BaseURL: cfg.RailBaseURL,
			Token:   cfg.RailToken,
			Timeout: cfg.RailTimeout,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.RailCircuitEnabled,
				FailureThreshold: cfg.RailCircuitFailureCount,
				OpenTimeout:      cfg.RailCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.RailCircuitHalfOpenReq,
			},
		}, logger)
		if err != nil {
			return fail(fmt.Errorf("build payment rail client: %w", err))
		}
		rail = client
	} else {
		rail = memory.NewRail()
		logger.Info("payment rail running in-memory")
	}

	feed := resultsfeed.NewSimulatedFeed(seedCards, cfg.ResultsSeed)

	eventSvc := usecase.NewEventService(eventRepo, idgen.NewUUIDGenerator())
	lineupSvc := usecase.NewLineupService(eventRepo, lineupRepo, oracle)
	rewardSvc := usecase.NewRewardService(payoutRepo, rail, reputations, logger)
	rewardSvc.SetMalusFraction(cfg.ArenaMalusFraction)
	scoringSvc := usecase.NewScoringService(eventRepo, lineupRepo, feed, oracle, nil, rewardSvc, logger)
	resetSvc := usecase.NewResetService(eventRepo, lineupRepo, payoutRepo, logger)
	gameweekSvc := usecase.NewGameweekService(gameweekRepo, eventRepo, eventSvc, scoringSvc, feed, logger)
	gameweekSvc.SetWorkerCount(cfg.GameweekWorkers)

	if cfg.RedisEnabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		cleanups = append(cleanups, redisClient.Close)

		mirror := redisboard.NewMirror(redisClient)
		scoringSvc.SetLeaderboardMirror(mirror)
		resetSvc.SetLeaderboardMirror(mirror)
		logger.Info("leaderboard mirror enabled", "addr", cfg.RedisAddr)
	}

	if cfg.QStashEnabled {
		publisher := jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			BaseURL:          cfg.QStashBaseURL,
			Token:            cfg.QStashToken,
			TargetBaseURL:    cfg.QStashTargetBaseURL,
			Retries:          cfg.QStashRetries,
			InternalJobToken: cfg.InternalJobToken,
		}, logger)
		gameweekSvc.SetScheduler(publisher, cfg.QStashNextRunDelay)
		logger.Info("gameweek self-scheduling enabled", "delay", cfg.QStashNextRunDelay)
	}

	var verifier httpapi.TokenVerifier
	if cfg.DevAuthEnabled {
		verifier = devTokenVerifier{oracle: oracle}
		logger.Warn("dev auth enabled: bearer tokens are treated as user IDs")
	} else {
		verifier = introspect.NewClient(
			&http.Client{Timeout: cfg.OracleTimeout},
			cfg.OracleBaseURL,
			"/v1/auth/introspect",
			cfg.OracleAPIKey,
			resilience.CircuitBreakerConfig{
				Enabled:          cfg.OracleCircuitEnabled,
				FailureThreshold: cfg.OracleCircuitFailureCount,
				OpenTimeout:      cfg.OracleCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.OracleCircuitHalfOpenReq,
			},
			logger,
		)
	}

	handler := httpapi.NewHandler(eventSvc, lineupSvc, scoringSvc, resetSvc, gameweekSvc, logger)
	router := httpapi.NewRouter(handler, verifier, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	if cfg.HTTPAddr == "" {
		return fail(fmt.Errorf("http server addr cannot be empty"))
	}

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return server, cleanup, nil
}
