// internal/api/affiliate.go
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rovshanmuradov/genesis-launchpad/internal/affiliate"
)

type rateRequest struct {
	RateBps uint16 `json:"rate_bps"`
}

type advisoryRateRequest struct {
	RateBps   uint16 `json:"rate_bps"`
	Suggested bool   `json:"suggested"`
}

type analyticsRequest struct {
	Volume uint64 `json:"volume"`
	Clicks uint32 `json:"clicks"`
}

func (s *Server) listAffiliates(c *gin.Context) {
	recs, err := s.platform.Affiliates.ListAffiliates(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]AffiliateView, 0, len(recs))
	for i := range recs {
		out = append(out, affiliateView(&recs[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getAffiliate(c *gin.Context) {
	who, ok := keyParam(c, "affiliate")
	if !ok {
		return
	}
	rec, err := s.platform.Affiliates.GetAffiliate(c.Request.Context(), who)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, affiliateView(rec))
}

func (s *Server) getAnalytics(c *gin.Context) {
	who, ok := keyParam(c, "affiliate")
	if !ok {
		return
	}
	summary, err := s.platform.Affiliates.GetAnalytics(c.Request.Context(), who)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) getSuggestion(c *gin.Context) {
	who, ok := keyParam(c, "affiliate")
	if !ok {
		return
	}
	sug, err := s.platform.Affiliates.GetAISuggestedRate(c.Request.Context(), who)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sug)
}

func (s *Server) registerAffiliate(c *gin.Context) {
	var reg affiliate.Registration
	if err := c.ShouldBindJSON(&reg); err != nil {
		badRequest(c, err)
		return
	}
	start := time.Now()
	rec, err := s.platform.Affiliates.RegisterAffiliate(c.Request.Context(), signerFrom(c), reg)
	s.record("affiliate", "register_affiliate", start, err)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, affiliateView(rec))
}

func (s *Server) setCommissionRate(c *gin.Context) {
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	start := time.Now()
	rec, err := s.platform.Affiliates.SetCommissionRate(c.Request.Context(), signerFrom(c), req.RateBps)
	s.record("affiliate", "set_commission_rate", start, err)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, affiliateView(rec))
}

func (s *Server) updateCommissionRateAI(c *gin.Context) {
	var req advisoryRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	start := time.Now()
	rec, err := s.platform.Affiliates.UpdateCommissionRateAI(c.Request.Context(), signerFrom(c), req.RateBps, req.Suggested)
	s.record("affiliate", "update_commission_rate_ai", start, err)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, affiliateView(rec))
}

func (s *Server) updateAnalytics(c *gin.Context) {
	var req analyticsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	start := time.Now()
	rec, err := s.platform.Affiliates.UpdateAnalytics(c.Request.Context(), signerFrom(c), req.Volume, req.Clicks)
	s.record("affiliate", "update_analytics", start, err)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, affiliateView(rec))
}
