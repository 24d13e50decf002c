// Package api exposes the dashboard's HTTP surface: CSV import, record
// listings with computed metrics, monthly summaries, and exports.
package api

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"copytrade-dashboard/internal/auth"
	"copytrade-dashboard/internal/ingestion"
	"copytrade-dashboard/internal/observability"
	"copytrade-dashboard/internal/storage"
)

// Options configures a Server.
type Options struct {
	Importer     *ingestion.Importer
	TradeStore   storage.TradeStore
	FundingStore storage.FundingStore
	SummaryStore storage.MonthlySummaryStore
	Verifier     auth.Verifier
	Logger       *log.Logger
}

// Server routes HTTP requests to the import pipeline and stores.
type Server struct {
	importer     *ingestion.Importer
	tradeStore   storage.TradeStore
	fundingStore storage.FundingStore
	summaryStore storage.MonthlySummaryStore
	verifier     auth.Verifier
	logger       *log.Logger
	started      time.Time
}

// NewServer creates a new API server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "[api] ", log.LstdFlags|log.Lshortfile)
	}

	return &Server{
		importer:     opts.Importer,
		tradeStore:   opts.TradeStore,
		fundingStore: opts.FundingStore,
		summaryStore: opts.SummaryStore,
		verifier:     opts.Verifier,
		logger:       logger,
		started:      time.Now(),
	}
}

// Handler builds the route mux. Data routes sit behind the auth
// middleware; health, metrics, and status do not.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/status", s.handleStatus)

	authed := auth.Middleware(s.verifier)
	mux.Handle("/import/trades", authed(s.instrument("/import/trades", s.handleImportTrades)))
	mux.Handle("/import/funding", authed(s.instrument("/import/funding", s.handleImportFunding)))
	mux.Handle("/trades", authed(s.instrument("/trades", s.handleTrades)))
	mux.Handle("/funding", authed(s.instrument("/funding", s.handleFunding)))
	mux.Handle("/summary/monthly", authed(s.instrument("/summary/monthly", s.handleMonthlySummary)))
	mux.Handle("/export/trades.csv", authed(s.instrument("/export/trades.csv", s.handleExportTradesCSV)))

	return mux
}

// instrument wraps a handler with request metrics.
func (s *Server) instrument(route string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		observability.RecordHTTPRequest(route, strconv.Itoa(rec.status), time.Since(start).Seconds())
	})
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
