// internal/api/exchange.go
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"

	"github.com/rovshanmuradov/genesis-launchpad/internal/exchange"
)

type swapRequest struct {
	SourceMint   solana.PublicKey `json:"source_mint"`
	AmountIn     uint64           `json:"amount_in"`
	MinAmountOut uint64           `json:"min_amount_out"`
}

type liquidityRequest struct {
	AmountA uint64 `json:"amount_a"`
	AmountB uint64 `json:"amount_b"`
}

type legacyPriceRequest struct {
	Price uint64 `json:"price"`
}

type pauseRequest struct {
	Paused bool `json:"paused"`
}

func poolKeys(c *gin.Context) (mintA, mintB solana.PublicKey, ok bool) {
	if mintA, ok = keyParam(c, "mintA"); !ok {
		return
	}
	mintB, ok = keyParam(c, "mintB")
	return
}

func (s *Server) listPools(c *gin.Context) {
	pools, err := s.platform.Pools.ListPools(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]PoolView, 0, len(pools))
	for i := range pools {
		out = append(out, poolView(&pools[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getPool(c *gin.Context) {
	mintA, mintB, ok := poolKeys(c)
	if !ok {
		return
	}
	st, err := s.platform.Pools.GetPool(c.Request.Context(), mintA, mintB)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, poolView(st))
}

func (s *Server) quoteSwap(c *gin.Context) {
	mintA, mintB, ok := poolKeys(c)
	if !ok {
		return
	}
	source, ok := keyQuery(c, "source")
	if !ok {
		return
	}
	amountIn, err := strconv.ParseUint(c.Query("amount"), 10, 64)
	if err != nil {
		badRequest(c, err)
		return
	}
	q, err := s.platform.Pools.QuoteSwap(c.Request.Context(), exchange.SwapRequest{
		MintA:      mintA,
		MintB:      mintB,
		SourceMint: source,
		AmountIn:   amountIn,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (s *Server) createPool(c *gin.Context) {
	var cfg exchange.PoolConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		badRequest(c, err)
		return
	}
	start := time.Now()
	rec, err := s.platform.Pools.CreatePool(c.Request.Context(), signerFrom(c), cfg)
	s.record("exchange", "create_pool", start, err)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (s *Server) swap(c *gin.Context) {
	mintA, mintB, ok := poolKeys(c)
	if !ok {
		return
	}
	var req swapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	start := time.Now()
	receipt, err := s.platform.Pools.Swap(c.Request.Context(), signerFrom(c), exchange.SwapRequest{
		MintA:        mintA,
		MintB:        mintB,
		SourceMint:   req.SourceMint,
		AmountIn:     req.AmountIn,
		MinAmountOut: req.MinAmountOut,
	})
	s.record("exchange", "swap", start, err)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, swapView(receipt))
}

func (s *Server) addLiquidity(c *gin.Context) {
	mintA, mintB, ok := poolKeys(c)
	if !ok {
		return
	}
	var req liquidityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	start := time.Now()
	rec, err := s.platform.Pools.AddLiquidity(c.Request.Context(), signerFrom(c), mintA, mintB, req.AmountA, req.AmountB)
	s.record("exchange", "add_liquidity", start, err)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) updateOraclePrice(c *gin.Context) {
	mintA, mintB, ok := poolKeys(c)
	if !ok {
		return
	}
	var src exchange.PriceSources
	if err := c.ShouldBindJSON(&src); err != nil {
		badRequest(c, err)
		return
	}
	start := time.Now()
	rec, err := s.platform.Pools.UpdateOraclePrice(c.Request.Context(), signerFrom(c), mintA, mintB, src)
	s.record("exchange", "update_oracle_price", start, err)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) updateOraclePriceLegacy(c *gin.Context) {
	mintA, mintB, ok := poolKeys(c)
	if !ok {
		return
	}
	var req legacyPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	start := time.Now()
	rec, err := s.platform.Pools.UpdateOraclePriceLegacy(c.Request.Context(), signerFrom(c), mintA, mintB, req.Price)
	s.record("exchange", "update_oracle_price_legacy", start, err)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) updatePoolConfig(c *gin.Context) {
	mintA, mintB, ok := poolKeys(c)
	if !ok {
		return
	}
	var upd exchange.PoolConfigUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, err)
		return
	}
	start := time.Now()
	rec, err := s.platform.Pools.UpdatePoolConfig(c.Request.Context(), signerFrom(c), mintA, mintB, upd)
	s.record("exchange", "update_pool_config", start, err)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) emergencyPause(c *gin.Context) {
	mintA, mintB, ok := poolKeys(c)
	if !ok {
		return
	}
	var req pauseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	start := time.Now()
	err := s.platform.Pools.EmergencyPause(c.Request.Context(), signerFrom(c), mintA, mintB, req.Paused)
	s.record("exchange", "emergency_pause", start, err)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"paused": req.Paused})
}
