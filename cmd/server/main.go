package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	adminHandler "patrolfund/internal/admin/handler"
	"patrolfund/internal/chain"
	"patrolfund/internal/chain/ledger"
	"patrolfund/internal/chain/sequencer"
	"patrolfund/internal/events"
	kafkasink "patrolfund/internal/events/sink/kafka"
	"patrolfund/internal/events/sink/redisstream"
	eventsmemory "patrolfund/internal/events/store/memory"
	eventspostgres "patrolfund/internal/events/store/postgres"
	"patrolfund/internal/events/publisher"
	escrowHandler "patrolfund/internal/escrow/handler"
	escrowService "patrolfund/internal/escrow/service"
	escrowStore "patrolfund/internal/escrow/store"
	"patrolfund/internal/identity"
	"patrolfund/internal/platform/config"
	"patrolfund/internal/platform/httpserver"
	"patrolfund/internal/platform/logger"
	"patrolfund/internal/platform/metrics"
	platformredis "patrolfund/internal/platform/redis"
	poolHandler "patrolfund/internal/pool/handler"
	poolService "patrolfund/internal/pool/service"
	poolStore "patrolfund/internal/pool/store"
	proposalHandler "patrolfund/internal/proposal/handler"
	proposalService "patrolfund/internal/proposal/service"
	proposalStore "patrolfund/internal/proposal/store"
	httptransport "patrolfund/internal/transport/http"
	verificationHandler "patrolfund/internal/verification/handler"
	verificationService "patrolfund/internal/verification/service"
	verificationStore "patrolfund/internal/verification/store"
	votingHandler "patrolfund/internal/voting/handler"
	votingService "patrolfund/internal/voting/service"
	votingStore "patrolfund/internal/voting/store"
)

// main wires stores, services, the event pipeline, and the HTTP router, then
// runs the server until a shutdown signal arrives. Business rules live in the
// internal service packages.
func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	clock := chain.NewHeightClock(0)
	seq := sequencer.New()
	tokens := ledger.New()

	pub, cleanup, err := buildPublisher(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	pools, err := poolService.New(
		poolStore.New(cfg.CreationFee, cfg.MaxPools), tokens, clock, seq,
		poolService.WithLogger(log),
		poolService.WithEmitter(pub),
		poolService.WithMetrics(m),
	)
	if err != nil {
		return fmt.Errorf("build pool service: %w", err)
	}

	tallies := votingStore.New()
	proposals, err := proposalService.New(
		proposalStore.New(), clock, seq,
		proposalService.WithLogger(log),
		proposalService.WithEmitter(pub),
		proposalService.WithMetrics(m),
		proposalService.WithVoteChecker(tallies),
	)
	if err != nil {
		return fmt.Errorf("build proposal service: %w", err)
	}

	votes, err := votingService.New(
		tallies, proposals, tokens, clock, seq, cfg.VotingPeriod,
		votingService.WithLogger(log),
		votingService.WithEmitter(pub),
		votingService.WithMetrics(m),
	)
	if err != nil {
		return fmt.Errorf("build voting service: %w", err)
	}

	verifications, err := verificationService.New(
		verificationStore.New(), proposals, clock, seq, cfg.RequiredSignatures, cfg.MaxSigners,
		verificationService.WithLogger(log),
		verificationService.WithEmitter(pub),
		verificationService.WithMetrics(m),
	)
	if err != nil {
		return fmt.Errorf("build verification service: %w", err)
	}

	escrows, err := escrowService.New(
		escrowStore.New(), verifications, proposals, tokens, clock, seq,
		escrowService.WithLogger(log),
		escrowService.WithEmitter(pub),
		escrowService.WithMetrics(m),
	)
	if err != nil {
		return fmt.Errorf("build escrow service: %w", err)
	}

	jwtService := identity.NewJWTService(cfg.JWTSigningKey)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Logger:        log,
		Metrics:       m,
		Validator:     jwtService,
		Pools:         poolHandler.New(pools, log),
		Proposals:     proposalHandler.New(proposals, log),
		Votes:         votingHandler.New(votes, log),
		Escrows:       escrowHandler.New(escrows, log),
		Verifications: verificationHandler.New(verifications, log),
		Admin:         adminHandler.New(pools, clock, pub, tokens, log),
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// buildPublisher selects the event store and sinks from configuration. With
// no Postgres DSN the event trail stays in memory, which suits single-node
// deployments and local development.
func buildPublisher(ctx context.Context, cfg config.Config, log *slog.Logger) (*publisher.Publisher, func(), error) {
	var (
		store    events.Store
		closers  []func()
		sinkOpts []publisher.Option
	)

	if cfg.PostgresDSN != "" {
		db, err := sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		pg := eventspostgres.New(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("ensure event schema: %w", err)
		}
		store = pg
		closers = append(closers, func() { db.Close() })
	} else {
		store = eventsmemory.NewInMemoryStore()
	}

	if len(cfg.KafkaBrokers) > 0 {
		sink, err := kafkasink.New(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			runClosers(closers)
			return nil, nil, fmt.Errorf("build kafka sink: %w", err)
		}
		sinkOpts = append(sinkOpts, publisher.WithSink(sink))
		closers = append(closers, sink.Close)
	}

	if cfg.RedisURL != "" {
		rdb, err := platformredis.New(ctx, cfg.RedisURL)
		if err != nil {
			runClosers(closers)
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		sinkOpts = append(sinkOpts, publisher.WithSink(redisstream.New(rdb.Client, 10_000)))
		closers = append(closers, func() { rdb.Close() })
	}

	opts := append(sinkOpts,
		publisher.WithLogger(log),
		publisher.WithAsyncBuffer(256),
	)
	pub := publisher.NewPublisher(store, opts...)
	closers = append([]func(){pub.Close}, closers...)

	return pub, func() { runClosers(closers) }, nil
}

func runClosers(closers []func()) {
	for _, c := range closers {
		c()
	}
}
