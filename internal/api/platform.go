// internal/api/platform.go
package api

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"

	"github.com/rovshanmuradov/genesis-launchpad/internal/utils/amount"
)

type faucetRequest struct {
	Owner solana.PublicKey `json:"owner"`
	// SOL is a whole-unit decimal string, e.g. "1.5".
	SOL string `json:"sol"`
}

type createTokenRequest struct {
	Mint   solana.PublicKey `json:"mint"`
	Supply uint64           `json:"supply"`
}

type transferRequest struct {
	Mint   solana.PublicKey `json:"mint"`
	To     solana.PublicKey `json:"to"`
	Amount uint64           `json:"amount"`
}

var errFaucetLimit = errors.New("faucet limit exceeded")

func (s *Server) getWallet(c *gin.Context) {
	owner, ok := keyParam(c, "owner")
	if !ok {
		return
	}
	mint, ok := keyQuery(c, "mint")
	if !ok {
		return
	}
	w, err := s.platform.Balance(c.Request.Context(), owner, mint)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, walletView(w))
}

func (s *Server) airdrop(c *gin.Context) {
	var req faucetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	lamports, err := amount.ParseTokens(req.SOL)
	if err != nil {
		badRequest(c, fmt.Errorf("sol: %w", err))
		return
	}
	if req.Owner.IsZero() || lamports == 0 {
		badRequest(c, errors.New("owner and a positive sol amount are required"))
		return
	}
	if s.faucet.MaxLamports > 0 && lamports > s.faucet.MaxLamports {
		abort(c, http.StatusBadRequest, "faucet_limit",
			fmt.Sprintf("%s: at most %s SOL per request", errFaucetLimit, amount.Tokens(s.faucet.MaxLamports)))
		return
	}

	start := time.Now()
	balance, err := s.platform.Airdrop(c.Request.Context(), req.Owner, lamports)
	s.record("token", "airdrop", start, err)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lamports": balance, "sol": amount.Tokens(balance)})
}

func (s *Server) createToken(c *gin.Context) {
	var req createTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	start := time.Now()
	err := s.platform.CreateToken(c.Request.Context(), req.Mint, signerFrom(c), req.Supply)
	s.record("token", "create_mint", start, err)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"mint": req.Mint, "supply": req.Supply})
}

func (s *Server) transfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	start := time.Now()
	err := s.platform.Transfer(c.Request.Context(), signerFrom(c), req.Mint, req.To, req.Amount)
	s.record("token", "transfer", start, err)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"amount": req.Amount})
}

func (s *Server) listJobs(c *gin.Context) {
	s.mu.RLock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	s.mu.RUnlock()
	sort.Strings(names)
	c.JSON(http.StatusOK, gin.H{"jobs": names})
}

func (s *Server) runJob(c *gin.Context) {
	s.mu.RLock()
	job, ok := s.jobs[c.Param("name")]
	s.mu.RUnlock()
	if !ok {
		abort(c, http.StatusNotFound, "not_found", "unknown keeper job "+c.Param("name"))
		return
	}
	report, err := job.RunOnce(c.Request.Context())
	resp := gin.H{"job": job.Name(), "report": report}
	if err != nil {
		resp["error"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}
