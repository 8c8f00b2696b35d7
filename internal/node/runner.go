// internal/node/runner.go
package node

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/genesis-launchpad/internal/api"
	"github.com/rovshanmuradov/genesis-launchpad/internal/config"
	"github.com/rovshanmuradov/genesis-launchpad/internal/events"
	"github.com/rovshanmuradov/genesis-launchpad/internal/events/sink"
	"github.com/rovshanmuradov/genesis-launchpad/internal/keeper"
	"github.com/rovshanmuradov/genesis-launchpad/internal/ledger"
	"github.com/rovshanmuradov/genesis-launchpad/internal/platform"
	"github.com/rovshanmuradov/genesis-launchpad/internal/storage"
	"github.com/rovshanmuradov/genesis-launchpad/internal/storage/postgres"
	"github.com/rovshanmuradov/genesis-launchpad/internal/utils/logger"
	"github.com/rovshanmuradov/genesis-launchpad/internal/utils/metrics"
)

const (
	shutdownTimeout = 30 * time.Second
	amqpDialTries   = 5
	keeperTimeout   = 2 * time.Minute
)

// Runner assembles the node: ledgers, event bus and sinks, archive, HTTP API
// and keepers.
type Runner struct {
	cfg    *config.Config
	log    *logger.Logger
	logger *zap.Logger
	clock  ledger.Clock

	bus       *events.Bus
	platform  *platform.Platform
	metrics   *metrics.Collector
	server    *api.Server
	scheduler *keeper.Scheduler
	jobs      []keeper.Job
	shutdown  *ShutdownHandler
}

func NewRunner(cfg *config.Config, log *logger.Logger) *Runner {
	return &Runner{
		cfg:      cfg,
		log:      log,
		logger:   log.Component("node"),
		clock:    ledger.SystemClock{},
		shutdown: NewShutdownHandler(log.Logger),
	}
}

// Initialize wires every component. Components are registered for shutdown
// as they come up, so a failed Initialize can still be cleaned up by Close.
func (r *Runner) Initialize(ctx context.Context) (err error) {
	end := r.log.Timed("initialize")
	defer func() {
		if err != nil && r.bus != nil {
			_ = r.bus.Shutdown(context.Background())
		}
		end(err)
	}()

	r.bus = events.NewBus(r.log.Logger, r.cfg.Events.BufferSize)
	r.metrics = metrics.NewCollector()
	r.bus.SubscribeAll(r.metrics)
	r.platform = platform.New(r.clock, r.bus, r.log.Logger)

	if err := r.initSinks(ctx); err != nil {
		return err
	}
	archive, err := r.initArchive()
	if err != nil {
		return err
	}

	r.server = api.NewServer(r.platform, r.metrics, r.cfg, api.DefaultOptions(), r.log.Logger)
	if archive != nil {
		r.server.SetArchive(archive)
	}

	if err := r.initKeepers(); err != nil {
		return err
	}

	// Registered last so it is drained before the sinks close.
	r.shutdown.AddFunc("event bus", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return r.bus.Shutdown(ctx)
	})

	r.logger.Info("Node initialized",
		zap.Bool("kafka", r.cfg.Events.Kafka.Enabled()),
		zap.Bool("amqp", r.cfg.Events.AMQP.Enabled()),
		zap.Bool("archive", archive != nil),
		zap.Bool("keepers", r.scheduler != nil),
		zap.Bool("faucet", r.cfg.Faucet.Enabled))
	return nil
}

func (r *Runner) initSinks(ctx context.Context) error {
	if k := r.cfg.Events.Kafka; k.Enabled() {
		ks := sink.NewKafkaSink(k.Brokers, k.Topic, r.log.Component("sink"))
		r.bus.SubscribeAll(ks)
		r.shutdown.Add("kafka sink", ks)
		r.logger.Info("Kafka sink enabled", zap.Strings("brokers", k.Brokers), zap.String("topic", k.Topic))
	}
	if a := r.cfg.Events.AMQP; a.Enabled() {
		as, err := sink.DialAMQP(ctx, a.URL, a.Queue, amqpDialTries, r.log.Component("sink"))
		if err != nil {
			return fmt.Errorf("amqp sink: %w", err)
		}
		r.bus.SubscribeAll(as)
		r.shutdown.Add("amqp sink", as)
		r.logger.Info("AMQP sink enabled", zap.String("queue", a.Queue))
	}
	return nil
}

func (r *Runner) initArchive() (storage.Storage, error) {
	if !r.cfg.Storage.Enabled {
		return nil, nil
	}
	archiveLog := r.log.Component("archive")
	st, err := postgres.NewStorage(r.cfg.Storage.DSN, archiveLog)
	if err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}
	r.shutdown.Add("archive", st)

	if err := st.RunMigrations(); err != nil {
		if !errors.Is(err, postgres.ErrMigrationInProgress) {
			return nil, fmt.Errorf("archive migrations: %w", err)
		}
		r.logger.Warn("Another node is migrating the archive; continuing")
	}
	storage.NewArchiver(st, archiveLog).Subscribe(r.bus)
	return st, nil
}

func (r *Runner) initKeepers() error {
	kc := r.cfg.Keeper
	keeperLog := r.log.Component("keeper")
	retry := keeper.DefaultRetryPolicy()
	if kc.MaxRetries > 0 {
		retry.MaxTries = kc.MaxRetries
	}

	var priceJob *keeper.PriceKeeper
	if len(kc.Pools) > 0 {
		authority, err := solana.PublicKeyFromBase58(kc.OracleAuthority)
		if err != nil {
			return fmt.Errorf("keeper oracle authority: %w", err)
		}
		pairs := make([]keeper.Pair, 0, len(kc.Pools))
		prices := make(map[keeper.Pair]uint64, len(kc.Pools))
		for _, p := range kc.Pools {
			pair, err := parsePair(p)
			if err != nil {
				return err
			}
			pairs = append(pairs, pair)
			prices[pair] = p.Price
		}
		priceJob = keeper.NewPriceKeeper(r.platform.Pools, keeper.NewStaticPriceAdvisor(prices), keeper.PriceKeeperConfig{
			Authority: authority,
			Pools:     pairs,
			Retry:     retry,
			Clock:     r.clock,
			Metrics:   r.metrics,
		}, keeperLog)
		r.jobs = append(r.jobs, priceJob)
	}

	var rateJob *keeper.RateOptimizer
	if len(kc.Affiliates) > 0 {
		affiliates := make([]solana.PublicKey, 0, len(kc.Affiliates))
		for _, a := range kc.Affiliates {
			key, err := solana.PublicKeyFromBase58(a)
			if err != nil {
				return fmt.Errorf("keeper affiliate %q: %w", a, err)
			}
			affiliates = append(affiliates, key)
		}
		rateJob = keeper.NewRateOptimizer(r.platform.Affiliates, keeper.TierRateAdvisor{}, keeper.RateOptimizerConfig{
			Affiliates: affiliates,
			Retry:      retry,
			Metrics:    r.metrics,
		}, keeperLog)
		r.jobs = append(r.jobs, rateJob)
	}

	for _, job := range r.jobs {
		r.server.RegisterJob(job)
	}
	if !kc.Enabled {
		return nil
	}

	r.scheduler = keeper.NewScheduler(keeperTimeout, keeperLog)
	if priceJob != nil {
		if err := r.scheduler.Add(kc.PriceSchedule, priceJob); err != nil {
			return err
		}
	}
	if rateJob != nil {
		if err := r.scheduler.Add(kc.RateSchedule, rateJob); err != nil {
			return err
		}
	}
	return nil
}

func parsePair(p config.ManagedPool) (keeper.Pair, error) {
	a, err := solana.PublicKeyFromBase58(p.MintA)
	if err != nil {
		return keeper.Pair{}, fmt.Errorf("keeper pool mint_a %q: %w", p.MintA, err)
	}
	b, err := solana.PublicKeyFromBase58(p.MintB)
	if err != nil {
		return keeper.Pair{}, fmt.Errorf("keeper pool mint_b %q: %w", p.MintB, err)
	}
	return keeper.Pair{MintA: a, MintB: b}, nil
}

// Run serves the API and runs the keepers until ctx is cancelled or one of
// them fails, then shuts everything down.
func (r *Runner) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.server.Run(gCtx)
	})
	if r.scheduler != nil {
		g.Go(func() error {
			return r.scheduler.Run(gCtx)
		})
	}

	err := g.Wait()
	if err != nil {
		r.logger.Error("Node stopped with error", zap.Error(err))
	}
	return errors.Join(err, r.Close())
}

// Close releases sinks, the archive and the bus.
func (r *Runner) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return r.shutdown.Shutdown(ctx)
}

func (r *Runner) Platform() *platform.Platform { return r.platform }

func (r *Runner) Handler() http.Handler { return r.server.Handler() }

// Jobs returns the configured keeper jobs.
func (r *Runner) Jobs() []keeper.Job { return r.jobs }
