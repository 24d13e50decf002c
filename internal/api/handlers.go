package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"copytrade-dashboard/internal/auth"
	"copytrade-dashboard/internal/domain"
	"copytrade-dashboard/internal/ingestion"
	"copytrade-dashboard/internal/metrics"
)

// maxUploadBytes bounds how much CSV we read from one request.
const maxUploadBytes = 32 << 20 // 32 MiB

// TradeView is a trade record with its computed metrics.
type TradeView struct {
	*domain.TradeRecord
	PnL       float64 `json:"pnl"`
	Margin    float64 `json:"margin"`
	NetProfit float64 `json:"net_profit"`
	ROE       float64 `json:"roe"`
}

// ImportResponse reports the outcome of an import request.
type ImportResponse struct {
	Imported int `json:"imported"`
}

func (s *Server) handleImportTrades(w http.ResponseWriter, r *http.Request) {
	s.handleImport(w, r, s.importer.ImportTrades)
}

func (s *Server) handleImportFunding(w http.ResponseWriter, r *http.Request) {
	s.handleImport(w, r, s.importer.ImportFunding)
}

type importFunc func(ctx context.Context, ownerID, filename, text string) (int, error)

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request, run importFunc) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	filename, text, err := readUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	count, err := run(r.Context(), claims.OwnerID, filename, text)
	if err != nil {
		if errors.Is(err, ingestion.ErrUnsupportedFormat) {
			writeError(w, http.StatusUnsupportedMediaType, err.Error())
			return
		}
		s.logger.Printf("import failed for owner %s: %v", claims.OwnerID, err)
		writeError(w, http.StatusInternalServerError, "import failed")
		return
	}

	writeJSON(w, http.StatusOK, ImportResponse{Imported: count})
}

// readUpload extracts the filename and CSV text from either a multipart
// form ("file" field) or a raw body with an X-Filename header.
func readUpload(r *http.Request) (filename, text string, err error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			return "", "", errors.New("missing multipart field \"file\"")
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return "", "", errors.New("read upload")
		}
		return header.Filename, string(data), nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return "", "", errors.New("read request body")
	}
	return r.Header.Get("X-Filename"), string(data), nil
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	var (
		trades []*domain.TradeRecord
		err    error
	)
	if month := r.URL.Query().Get("month"); month != "" {
		trades, err = s.tradeStore.GetByOwnerMonth(r.Context(), claims.OwnerID, month)
	} else {
		trades, err = s.tradeStore.GetByOwner(r.Context(), claims.OwnerID)
	}
	if err != nil {
		s.logger.Printf("list trades for owner %s: %v", claims.OwnerID, err)
		writeError(w, http.StatusInternalServerError, "list trades")
		return
	}

	views := make([]TradeView, 0, len(trades))
	for _, t := range trades {
		result := metrics.Compute(t)
		views = append(views, TradeView{
			TradeRecord: t,
			PnL:         result.PnL,
			Margin:      result.Margin,
			NetProfit:   result.NetProfit,
			ROE:         result.ROE,
		})
	}

	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleFunding(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	var (
		records []*domain.FundingRecord
		err     error
	)
	if month := r.URL.Query().Get("month"); month != "" {
		records, err = s.fundingStore.GetByOwnerMonth(r.Context(), claims.OwnerID, month)
	} else {
		records, err = s.fundingStore.GetByOwner(r.Context(), claims.OwnerID)
	}
	if err != nil {
		s.logger.Printf("list funding for owner %s: %v", claims.OwnerID, err)
		writeError(w, http.StatusInternalServerError, "list funding records")
		return
	}

	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	summaries, err := s.summaryStore.GetByOwner(r.Context(), claims.OwnerID)
	if err != nil {
		s.logger.Printf("list summaries for owner %s: %v", claims.OwnerID, err)
		writeError(w, http.StatusInternalServerError, "list monthly summaries")
		return
	}

	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// StatusResponse is the JSON response for the /status endpoint.
type StatusResponse struct {
	Status  string    `json:"status"`
	Uptime  string    `json:"uptime"`
	Started time.Time `json:"started"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:  "running",
		Uptime:  time.Since(s.started).String(),
		Started: s.started,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
