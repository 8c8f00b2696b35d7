// internal/api/archive.go
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/genesis-launchpad/internal/export"
	"github.com/rovshanmuradov/genesis-launchpad/internal/storage/models"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// ArchiveReader is the read side of the event archive.
type ArchiveReader interface {
	ListPurchases(ctx context.Context, launch string, limit, offset int) ([]*models.Purchase, error)
	ListSwaps(ctx context.Context, pool string, limit, offset int) ([]*models.Swap, error)
}

// SetArchive enables the archive routes.
func (s *Server) SetArchive(a ArchiveReader) {
	s.mu.Lock()
	s.archive = a
	s.mu.Unlock()
}

func (s *Server) archiveReader(c *gin.Context) (ArchiveReader, bool) {
	s.mu.RLock()
	a := s.archive
	s.mu.RUnlock()
	if a == nil {
		abort(c, http.StatusServiceUnavailable, "archive_disabled", "event archive is not configured")
		return nil, false
	}
	return a, true
}

func page(c *gin.Context) (limit, offset int, ok bool) {
	limit, offset = defaultPageSize, 0
	var err error
	if v := c.Query("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit <= 0 {
			abort(c, http.StatusBadRequest, "bad_request", "limit must be a positive integer")
			return 0, 0, false
		}
	}
	if v := c.Query("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil || offset < 0 {
			abort(c, http.StatusBadRequest, "bad_request", "offset must be a non-negative integer")
			return 0, 0, false
		}
	}
	return min(limit, maxPageSize), offset, true
}

func (s *Server) listArchivedPurchases(c *gin.Context) {
	a, ok := s.archiveReader(c)
	if !ok {
		return
	}
	limit, offset, ok := page(c)
	if !ok {
		return
	}
	opts, exporting, ok := exportOptions(c)
	if !ok {
		return
	}
	rows, err := a.ListPurchases(c.Request.Context(), c.Query("launch"), limit, offset)
	if err != nil {
		abort(c, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	if !exporting {
		c.JSON(http.StatusOK, rows)
		return
	}
	s.startExport(c, "purchases", opts.Format)
	if _, err := s.exporter.Purchases(c.Writer, rows, opts); err != nil {
		s.logger.Error("Purchase export failed", zap.Error(err))
	}
}

func (s *Server) listArchivedSwaps(c *gin.Context) {
	a, ok := s.archiveReader(c)
	if !ok {
		return
	}
	limit, offset, ok := page(c)
	if !ok {
		return
	}
	opts, exporting, ok := exportOptions(c)
	if !ok {
		return
	}
	rows, err := a.ListSwaps(c.Request.Context(), c.Query("pool"), limit, offset)
	if err != nil {
		abort(c, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	if !exporting {
		c.JSON(http.StatusOK, rows)
		return
	}
	s.startExport(c, "swaps", opts.Format)
	if _, err := s.exporter.Swaps(c.Writer, rows, opts); err != nil {
		s.logger.Error("Swap export failed", zap.Error(err))
	}
}

// exportOptions reads format, from and to. Without a format query the plain
// row list is served.
func exportOptions(c *gin.Context) (export.Options, bool, bool) {
	raw, exporting := c.GetQuery("format")
	if !exporting {
		return export.Options{}, false, true
	}
	format, err := export.ParseFormat(raw)
	if err != nil {
		abort(c, http.StatusBadRequest, "bad_request", err.Error())
		return export.Options{}, false, false
	}
	opts := export.Options{Format: format}
	for param, dst := range map[string]*time.Time{"from": &opts.Start, "to": &opts.End} {
		v := c.Query(param)
		if v == "" {
			continue
		}
		if *dst, err = time.Parse(time.RFC3339, v); err != nil {
			abort(c, http.StatusBadRequest, "bad_request", param+" must be an RFC3339 timestamp")
			return export.Options{}, false, false
		}
	}
	return opts, true, true
}

func (s *Server) startExport(c *gin.Context, kind string, f export.Format) {
	contentType := "application/json"
	if f == export.FormatCSV {
		contentType = "text/csv"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", `attachment; filename="`+s.exporter.Filename(kind, f)+`"`)
	c.Status(http.StatusOK)
}
