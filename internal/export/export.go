// internal/export/export.go
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/genesis-launchpad/internal/storage/models"
)

// Format is the export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts "csv" or "json"; empty means json.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// Options select which archived rows are exported.
type Options struct {
	Format Format
	Start  time.Time // inclusive, zero means unbounded
	End    time.Time // exclusive, zero means unbounded
}

func (o Options) includes(at time.Time) bool {
	if !o.Start.IsZero() && at.Before(o.Start) {
		return false
	}
	if !o.End.IsZero() && !at.Before(o.End) {
		return false
	}
	return true
}

// Exporter renders archived purchases and swaps.
type Exporter struct {
	logger *zap.Logger
	now    func() time.Time
}

func NewExporter(logger *zap.Logger) *Exporter {
	return &Exporter{logger: logger.Named("export"), now: time.Now}
}

// Filename names an export of kind written now, e.g. purchases_20240102_150405.csv.
func (e *Exporter) Filename(kind string, f Format) string {
	return fmt.Sprintf("%s_%s.%s", kind, e.now().UTC().Format("20060102_150405"), f)
}

// PurchaseSummary aggregates an exported purchase set.
type PurchaseSummary struct {
	Count             int             `json:"count"`
	UniqueBuyers      int             `json:"unique_buyers"`
	AffiliatedCount   int             `json:"affiliated_count"`
	VestedCount       int             `json:"vested_count"`
	TotalSol          decimal.Decimal `json:"total_sol"`
	TotalTokens       decimal.Decimal `json:"total_tokens"`
	TotalPlatformFee  decimal.Decimal `json:"total_platform_fee"`
	TotalAffiliateFee decimal.Decimal `json:"total_affiliate_fee"`
	StartDate         time.Time       `json:"start_date"`
	EndDate           time.Time       `json:"end_date"`
}

// SwapSummary aggregates an exported swap set.
type SwapSummary struct {
	Count       int             `json:"count"`
	UniqueUsers int             `json:"unique_users"`
	TotalIn     decimal.Decimal `json:"total_in"`
	TotalOut    decimal.Decimal `json:"total_out"`
	TotalFees   decimal.Decimal `json:"total_fees"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
}

var purchaseHeaders = []string{
	"event_id", "event_time", "launch", "mint", "buyer", "affiliate",
	"sol_amount", "price", "tokens_minted", "platform_fee", "affiliate_fee", "vested",
}

var swapHeaders = []string{
	"event_id", "event_time", "pool", "user", "source_mint",
	"amount_in", "amount_out", "fee_amount", "fee_bps", "price",
}

// Purchases writes the rows matching opts to w and returns how many were written.
func (e *Exporter) Purchases(w io.Writer, rows []*models.Purchase, opts Options) (int, error) {
	rows = filter(rows, func(p *models.Purchase) time.Time { return p.EventTime }, opts)

	var err error
	switch opts.Format {
	case FormatCSV:
		err = writeCSV(w, purchaseHeaders, rows, purchaseRecord)
	case FormatJSON:
		err = e.writeJSON(w, rows, SummarizePurchases(rows))
	default:
		err = fmt.Errorf("unsupported export format %q", opts.Format)
	}
	if err != nil {
		return 0, err
	}
	e.logger.Debug("Purchases exported", zap.Int("count", len(rows)), zap.String("format", string(opts.Format)))
	return len(rows), nil
}

// Swaps writes the rows matching opts to w and returns how many were written.
func (e *Exporter) Swaps(w io.Writer, rows []*models.Swap, opts Options) (int, error) {
	rows = filter(rows, func(s *models.Swap) time.Time { return s.EventTime }, opts)

	var err error
	switch opts.Format {
	case FormatCSV:
		err = writeCSV(w, swapHeaders, rows, swapRecord)
	case FormatJSON:
		err = e.writeJSON(w, rows, SummarizeSwaps(rows))
	default:
		err = fmt.Errorf("unsupported export format %q", opts.Format)
	}
	if err != nil {
		return 0, err
	}
	e.logger.Debug("Swaps exported", zap.Int("count", len(rows)), zap.String("format", string(opts.Format)))
	return len(rows), nil
}

// filter keeps rows inside the window, oldest first.
func filter[T any](rows []T, at func(T) time.Time, opts Options) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if opts.includes(at(r)) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return at(out[i]).Before(at(out[j])) })
	return out
}

func writeCSV[T any](w io.Writer, headers []string, rows []T, record func(T) []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(record(r)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func (e *Exporter) writeJSON(w io.Writer, rows any, summary any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		ExportTime time.Time `json:"export_time"`
		Summary    any       `json:"summary"`
		Rows       any       `json:"rows"`
	}{
		ExportTime: e.now().UTC(),
		Summary:    summary,
		Rows:       rows,
	})
}

func purchaseRecord(p *models.Purchase) []string {
	return []string{
		p.EventID,
		p.EventTime.UTC().Format(time.RFC3339),
		p.Launch,
		p.Mint,
		p.Buyer,
		p.Affiliate,
		p.SolAmount.String(),
		p.Price.String(),
		p.TokensMinted.String(),
		p.PlatformFee.String(),
		p.AffiliateFee.String(),
		strconv.FormatBool(p.Vested),
	}
}

func swapRecord(s *models.Swap) []string {
	return []string{
		s.EventID,
		s.EventTime.UTC().Format(time.RFC3339),
		s.Pool,
		s.User,
		s.SourceMint,
		s.AmountIn.String(),
		s.AmountOut.String(),
		s.FeeAmount.String(),
		strconv.FormatUint(uint64(s.FeeBps), 10),
		s.Price.String(),
	}
}

// SummarizePurchases expects rows ordered oldest first.
func SummarizePurchases(rows []*models.Purchase) PurchaseSummary {
	s := PurchaseSummary{Count: len(rows)}
	if len(rows) == 0 {
		return s
	}
	s.StartDate = rows[0].EventTime
	s.EndDate = rows[len(rows)-1].EventTime

	buyers := make(map[string]struct{})
	for _, p := range rows {
		buyers[p.Buyer] = struct{}{}
		if p.Affiliate != "" {
			s.AffiliatedCount++
		}
		if p.Vested {
			s.VestedCount++
		}
		s.TotalSol = s.TotalSol.Add(p.SolAmount)
		s.TotalTokens = s.TotalTokens.Add(p.TokensMinted)
		s.TotalPlatformFee = s.TotalPlatformFee.Add(p.PlatformFee)
		s.TotalAffiliateFee = s.TotalAffiliateFee.Add(p.AffiliateFee)
	}
	s.UniqueBuyers = len(buyers)
	return s
}

// SummarizeSwaps expects rows ordered oldest first.
func SummarizeSwaps(rows []*models.Swap) SwapSummary {
	s := SwapSummary{Count: len(rows)}
	if len(rows) == 0 {
		return s
	}
	s.StartDate = rows[0].EventTime
	s.EndDate = rows[len(rows)-1].EventTime

	users := make(map[string]struct{})
	for _, sw := range rows {
		users[sw.User] = struct{}{}
		s.TotalIn = s.TotalIn.Add(sw.AmountIn)
		s.TotalOut = s.TotalOut.Add(sw.AmountOut)
		s.TotalFees = s.TotalFees.Add(sw.FeeAmount)
	}
	s.UniqueUsers = len(users)
	return s
}
