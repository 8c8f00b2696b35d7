// internal/api/launch.go
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"

	"github.com/rovshanmuradov/genesis-launchpad/internal/launch"
)

type buyRequest struct {
	SolAmount uint64           `json:"sol_amount"`
	Affiliate solana.PublicKey `json:"affiliate"`
	Vesting   bool             `json:"vesting"`
}

func (s *Server) now() int64 { return s.platform.Store.Clock().Now() }

func launchKeys(c *gin.Context) (authority, mint solana.PublicKey, ok bool) {
	if authority, ok = keyParam(c, "authority"); !ok {
		return
	}
	mint, ok = keyParam(c, "mint")
	return
}

func (s *Server) listLaunches(c *gin.Context) {
	recs, err := s.platform.Launches.ListLaunches(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	now := s.now()
	out := make([]LaunchView, 0, len(recs))
	for i := range recs {
		out = append(out, launchView(&recs[i], now))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getLaunch(c *gin.Context) {
	authority, mint, ok := launchKeys(c)
	if !ok {
		return
	}
	rec, err := s.platform.Launches.GetLaunch(c.Request.Context(), authority, mint)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, launchView(rec, s.now()))
}

func (s *Server) quotePurchase(c *gin.Context) {
	authority, mint, ok := launchKeys(c)
	if !ok {
		return
	}
	sol, err := strconv.ParseUint(c.Query("sol"), 10, 64)
	if err != nil {
		badRequest(c, err)
		return
	}
	withAffiliate := c.Query("affiliate") == "true"

	q, err := s.platform.Launches.QuotePurchase(c.Request.Context(), authority, mint, sol, withAffiliate)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, quoteView(q))
}

func (s *Server) getVesting(c *gin.Context) {
	authority, mint, ok := launchKeys(c)
	if !ok {
		return
	}
	beneficiary, ok := keyParam(c, "beneficiary")
	if !ok {
		return
	}
	st, err := s.platform.Launches.GetVesting(c.Request.Context(), authority, mint, beneficiary)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) createLaunch(c *gin.Context) {
	var cfg launch.LaunchConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		badRequest(c, err)
		return
	}
	start := time.Now()
	rec, err := s.platform.Launches.CreateLaunch(c.Request.Context(), signerFrom(c), cfg)
	s.record("launch", "create_launch", start, err)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, launchView(rec, s.now()))
}

func (s *Server) updateLaunch(c *gin.Context) {
	authority, mint, ok := launchKeys(c)
	if !ok {
		return
	}
	var upd launch.LaunchUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, err)
		return
	}
	start := time.Now()
	rec, err := s.platform.Launches.UpdateLaunch(c.Request.Context(), signerFrom(c), authority, mint, upd)
	s.record("launch", "update_launch", start, err)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, launchView(rec, s.now()))
}

func (s *Server) buyTokens(c *gin.Context) {
	authority, mint, ok := launchKeys(c)
	if !ok {
		return
	}
	var req buyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	start := time.Now()
	receipt, err := s.platform.Launches.BuyTokens(c.Request.Context(), signerFrom(c), launch.PurchaseRequest{
		Authority: authority,
		Mint:      mint,
		SolAmount: req.SolAmount,
		Affiliate: req.Affiliate,
		Vesting:   req.Vesting,
	})
	s.record("launch", "buy_tokens", start, err)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, purchaseView(receipt))
}

func (s *Server) withdrawSol(c *gin.Context) {
	authority, mint, ok := launchKeys(c)
	if !ok {
		return
	}
	start := time.Now()
	withdrawn, err := s.platform.Launches.WithdrawSol(c.Request.Context(), signerFrom(c), authority, mint)
	s.record("launch", "withdraw_sol", start, err)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawn": withdrawn})
}

func (s *Server) claimVested(c *gin.Context) {
	authority, mint, ok := launchKeys(c)
	if !ok {
		return
	}
	start := time.Now()
	claimed, err := s.platform.Launches.ClaimVestedTokens(c.Request.Context(), signerFrom(c), authority, mint)
	s.record("launch", "claim_vested_tokens", start, err)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"claimed": claimed})
}
