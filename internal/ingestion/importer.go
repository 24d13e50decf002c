// Package ingestion runs the CSV import pipeline: parse an upload,
// stamp owner identity, replace the owner's stored records, and
// recompute monthly summaries.
package ingestion

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"copytrade-dashboard/internal/domain"
	"copytrade-dashboard/internal/idhash"
	"copytrade-dashboard/internal/metrics"
	"copytrade-dashboard/internal/observability"
	"copytrade-dashboard/internal/parse"
	"copytrade-dashboard/internal/storage"
)

// Importer wires the parser to storage. Each import replaces the
// owner's record set wholesale, so re-uploading a corrected export is
// always safe.
type Importer struct {
	tradeStore   storage.TradeStore
	fundingStore storage.FundingStore
	aggregator   *metrics.Aggregator
	logger       *log.Logger
}

// NewImporter creates a new Importer.
func NewImporter(trades storage.TradeStore, funding storage.FundingStore, aggregator *metrics.Aggregator) *Importer {
	return &Importer{
		tradeStore:   trades,
		fundingStore: funding,
		aggregator:   aggregator,
		logger:       log.New(os.Stdout, "[importer] ", log.LstdFlags|log.Lshortfile),
	}
}

// ImportTrades parses a trade history upload and replaces the owner's
// stored trades with the result. Returns the number of imported records.
// Zero parsed records is not an error; the upload may simply hold no
// recognizable rows.
func (im *Importer) ImportTrades(ctx context.Context, ownerID, filename, text string) (int, error) {
	if err := checkFormat(filename); err != nil {
		observability.RecordImportError("trades", "unsupported_format")
		return 0, err
	}

	start := time.Now()
	batchID := uuid.NewString()

	trades := parse.Trades(text)
	for _, t := range trades {
		t.OwnerID = ownerID
		t.ID = idhash.TradeID(ownerID, t.Pair, t.OpenTime, t.Quantity, t.EntryPrice)
		if t.TransactionID == "" {
			t.TransactionID = batchID
		}
	}
	trades = dedupeTrades(trades)

	if err := im.tradeStore.ReplaceAll(ctx, ownerID, trades); err != nil {
		observability.RecordImportError("trades", "storage")
		return 0, fmt.Errorf("replace trades: %w", err)
	}

	if _, err := im.aggregator.ComputeAndStore(ctx, ownerID); err != nil {
		observability.RecordImportError("trades", "aggregate")
		return 0, fmt.Errorf("recompute monthly summaries: %w", err)
	}

	observability.RecordImport("trades", len(trades), len(trades), time.Since(start).Seconds())
	im.logger.Printf("imported %d trades for owner %s (batch %s, file %q)",
		len(trades), ownerID, batchID, filename)
	return len(trades), nil
}

// ImportFunding parses a funding fee upload and replaces the owner's
// stored funding records with the result.
func (im *Importer) ImportFunding(ctx context.Context, ownerID, filename, text string) (int, error) {
	if err := checkFormat(filename); err != nil {
		observability.RecordImportError("funding", "unsupported_format")
		return 0, err
	}

	start := time.Now()

	records := parse.Funding(text)
	for _, f := range records {
		f.OwnerID = ownerID
		f.ID = idhash.FundingID(ownerID, f.Date, f.Asset, f.Amount)
	}
	records = dedupeFunding(records)

	if err := im.fundingStore.ReplaceAll(ctx, ownerID, records); err != nil {
		observability.RecordImportError("funding", "storage")
		return 0, fmt.Errorf("replace funding records: %w", err)
	}

	if _, err := im.aggregator.ComputeAndStore(ctx, ownerID); err != nil {
		observability.RecordImportError("funding", "aggregate")
		return 0, fmt.Errorf("recompute monthly summaries: %w", err)
	}

	observability.RecordImport("funding", len(records), len(records), time.Since(start).Seconds())
	im.logger.Printf("imported %d funding records for owner %s (file %q)",
		len(records), ownerID, filename)
	return len(records), nil
}

// checkFormat rejects binary spreadsheet uploads by extension. Everything
// else is treated as CSV text.
func checkFormat(filename string) error {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls":
		return ErrUnsupportedFormat
	}
	return nil
}

// dedupeTrades drops records whose stable id already appeared in the
// batch. Identical rows in one export describe the same trade.
func dedupeTrades(trades []*domain.TradeRecord) []*domain.TradeRecord {
	seen := make(map[string]struct{}, len(trades))
	result := trades[:0]
	for _, t := range trades {
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		result = append(result, t)
	}
	return result
}

func dedupeFunding(records []*domain.FundingRecord) []*domain.FundingRecord {
	seen := make(map[string]struct{}, len(records))
	result := records[:0]
	for _, f := range records {
		if _, dup := seen[f.ID]; dup {
			continue
		}
		seen[f.ID] = struct{}{}
		result = append(result, f)
	}
	return result
}
