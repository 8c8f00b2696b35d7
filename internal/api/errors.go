// internal/api/errors.go
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/genesis-launchpad/internal/exchange"
	"github.com/rovshanmuradov/genesis-launchpad/internal/ledger"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code    string `json:"code"`
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// classify maps a ledger error to an HTTP status and a stable code.
func classify(err error) (int, string) {
	var slippage *exchange.SlippageExceededError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout, "cancelled"
	case errors.As(err, &slippage):
		return http.StatusUnprocessableEntity, "slippage_exceeded"
	case errors.Is(err, ledger.ErrAlreadyExists):
		return http.StatusConflict, "already_exists"
	case errors.Is(err, ledger.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, ledger.ErrRetryLater):
		return http.StatusTooManyRequests, "retry_later"
	case errors.Is(err, ledger.ErrUnauthorized):
		return http.StatusForbidden, "unauthorized"
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case ledger.IsArithmetic(err):
		return http.StatusUnprocessableEntity, "arithmetic"
	case errors.Is(err, ledger.ErrSchemaMismatch), errors.Is(err, ledger.ErrReadOnly):
		return http.StatusInternalServerError, "internal"
	default:
		return http.StatusBadRequest, "rejected"
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status, code := classify(err)
	resp := ErrorResponse{Code: code, Error: err.Error()}
	var slippage *exchange.SlippageExceededError
	if errors.As(err, &slippage) {
		resp.Details = gin.H{"expected": slippage.Expected, "minimum": slippage.Minimum}
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("Operation failed", zap.String("path", c.FullPath()), zap.Error(err))
	} else {
		s.logger.Debug("Operation rejected", zap.String("path", c.FullPath()), zap.String("code", code), zap.Error(err))
	}
	c.JSON(status, resp)
}

func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Code: code, Error: msg})
}

func badRequest(c *gin.Context, err error) {
	abort(c, http.StatusBadRequest, "bad_request", err.Error())
}

// keyParam parses a base58 path parameter.
func keyParam(c *gin.Context, name string) (solana.PublicKey, bool) {
	key, err := solana.PublicKeyFromBase58(c.Param(name))
	if err != nil {
		abort(c, http.StatusBadRequest, "invalid_key", name+": "+err.Error())
		return solana.PublicKey{}, false
	}
	return key, true
}

// keyQuery parses an optional base58 query parameter.
func keyQuery(c *gin.Context, name string) (solana.PublicKey, bool) {
	raw := c.Query(name)
	if raw == "" {
		return solana.PublicKey{}, true
	}
	key, err := solana.PublicKeyFromBase58(raw)
	if err != nil {
		abort(c, http.StatusBadRequest, "invalid_key", name+": "+err.Error())
		return solana.PublicKey{}, false
	}
	return key, true
}
