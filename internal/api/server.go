// internal/api/server.go
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/genesis-launchpad/internal/config"
	"github.com/rovshanmuradov/genesis-launchpad/internal/export"
	"github.com/rovshanmuradov/genesis-launchpad/internal/keeper"
	"github.com/rovshanmuradov/genesis-launchpad/internal/platform"
	"github.com/rovshanmuradov/genesis-launchpad/internal/utils/metrics"
)

const shutdownTimeout = 10 * time.Second

// Server exposes the ledgers over HTTP for local use. Signatures are not
// verified here; the signer named in SignerHeader is trusted.
type Server struct {
	platform *platform.Platform
	metrics  *metrics.Collector
	faucet   config.FaucetConfig
	logger   *zap.Logger

	mu       sync.RWMutex
	jobs     map[string]keeper.Job
	archive  ArchiveReader
	exporter *export.Exporter

	engine *gin.Engine
	srv    *http.Server
}

// Options tune the write-route rate limiters. Zero values disable them.
type Options struct {
	WriteLimit  RateLimit
	FaucetLimit RateLimit
}

// DefaultOptions allow bursts of local scripting while keeping the faucet slow.
func DefaultOptions() Options {
	return Options{
		WriteLimit:  RateLimit{PerSecond: 50, Burst: 100},
		FaucetLimit: RateLimit{PerSecond: 0.2, Burst: 3},
	}
}

func NewServer(p *platform.Platform, collector *metrics.Collector, cfg *config.Config, opts Options, logger *zap.Logger) *Server {
	gin.SetMode(cfg.API.Mode)

	s := &Server{
		platform: p,
		metrics:  collector,
		faucet:   cfg.Faucet,
		logger:   logger.Named("api"),
		jobs:     make(map[string]keeper.Job),
	}
	s.exporter = export.NewExporter(s.logger)

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger))
	s.routes(r, opts)
	s.engine = r
	s.srv = &http.Server{
		Addr:              cfg.API.Listen,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// RegisterJob makes a keeper job runnable on demand.
func (s *Server) RegisterJob(job keeper.Job) {
	s.mu.Lock()
	s.jobs[job.Name()] = job
	s.mu.Unlock()
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP API listening", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("Shutting down HTTP API")
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

func (s *Server) routes(r *gin.Engine, opts Options) {
	r.GET("/healthz", s.health)
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/api/v1")
	v1.GET("/stats", s.stats)

	writes := v1.Group("")
	if opts.WriteLimit.enabled() {
		writes.Use(rateLimiter(opts.WriteLimit))
	}
	signed := writes.Group("", requireSigner())

	// Tokens and wallets.
	v1.GET("/wallets/:owner", s.getWallet)
	signed.POST("/tokens", s.createToken)
	signed.POST("/tokens/transfer", s.transfer)
	if s.faucet.Enabled {
		faucet := writes.Group("")
		if opts.FaucetLimit.enabled() {
			faucet.Use(rateLimiter(opts.FaucetLimit))
		}
		faucet.POST("/faucet", s.airdrop)
	}

	// Launches.
	v1.GET("/launches", s.listLaunches)
	v1.GET("/launches/:authority/:mint", s.getLaunch)
	v1.GET("/launches/:authority/:mint/quote", s.quotePurchase)
	v1.GET("/launches/:authority/:mint/vesting/:beneficiary", s.getVesting)
	signed.POST("/launches", s.createLaunch)
	signed.PATCH("/launches/:authority/:mint", s.updateLaunch)
	signed.POST("/launches/:authority/:mint/buy", s.buyTokens)
	signed.POST("/launches/:authority/:mint/withdraw", s.withdrawSol)
	signed.POST("/launches/:authority/:mint/claim", s.claimVested)

	// Affiliates. Mutations act on the signer's own record.
	v1.GET("/affiliates", s.listAffiliates)
	v1.GET("/affiliates/:affiliate", s.getAffiliate)
	v1.GET("/affiliates/:affiliate/analytics", s.getAnalytics)
	v1.GET("/affiliates/:affiliate/suggestion", s.getSuggestion)
	signed.POST("/affiliate", s.registerAffiliate)
	signed.PUT("/affiliate/rate", s.setCommissionRate)
	signed.PUT("/affiliate/rate/advisory", s.updateCommissionRateAI)
	signed.POST("/affiliate/analytics", s.updateAnalytics)

	// Pools.
	v1.GET("/pools", s.listPools)
	v1.GET("/pools/:mintA/:mintB", s.getPool)
	v1.GET("/pools/:mintA/:mintB/quote", s.quoteSwap)
	signed.POST("/pools", s.createPool)
	signed.POST("/pools/:mintA/:mintB/swap", s.swap)
	signed.POST("/pools/:mintA/:mintB/liquidity", s.addLiquidity)
	signed.POST("/pools/:mintA/:mintB/oracle", s.updateOraclePrice)
	signed.POST("/pools/:mintA/:mintB/oracle/legacy", s.updateOraclePriceLegacy)
	signed.PUT("/pools/:mintA/:mintB/config", s.updatePoolConfig)
	signed.POST("/pools/:mintA/:mintB/pause", s.emergencyPause)

	// Archive.
	v1.GET("/archive/purchases", s.listArchivedPurchases)
	v1.GET("/archive/swaps", s.listArchivedSwaps)

	// Keepers.
	v1.GET("/keepers", s.listJobs)
	writes.POST("/keepers/:name/run", s.runJob)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"store": s.platform.Stats()})
}

// record counts one ledger operation when metrics are enabled.
func (s *Server) record(ledgerName, op string, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.RecordOperation(ledgerName, op, time.Since(start), err)
	}
}
