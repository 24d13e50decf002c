package api

import (
	"net/http"

	"copytrade-dashboard/internal/auth"
	"copytrade-dashboard/internal/reporting"
)

func (s *Server) handleExportTradesCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	trades, err := s.tradeStore.GetByOwner(r.Context(), claims.OwnerID)
	if err != nil {
		s.logger.Printf("export trades for owner %s: %v", claims.OwnerID, err)
		writeError(w, http.StatusInternalServerError, "export trades")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="trades.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(reporting.RenderTradesCSV(trades)))
}
