package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"copytrade-dashboard/internal/auth"
	"copytrade-dashboard/internal/domain"
	"copytrade-dashboard/internal/ingestion"
	"copytrade-dashboard/internal/metrics"
	"copytrade-dashboard/internal/storage/memory"
)

var testJWT = auth.JWT{Secret: []byte("api-test-secret"), TokenTTL: time.Hour}

type testEnv struct {
	server  *Server
	handler http.Handler
	trades  *memory.TradeStore
	funding *memory.FundingStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	trades := memory.NewTradeStore()
	funding := memory.NewFundingStore()
	summaries := memory.NewMonthlySummaryStore()
	agg := metrics.NewAggregator(trades, funding, summaries)
	importer := ingestion.NewImporter(trades, funding, agg)

	server := NewServer(Options{
		Importer:     importer,
		TradeStore:   trades,
		FundingStore: funding,
		SummaryStore: summaries,
		Verifier:     auth.Verifier{JWT: testJWT},
	})

	return &testEnv{
		server:  server,
		handler: server.Handler(),
		trades:  trades,
		funding: funding,
	}
}

func authHeader(t *testing.T, ownerID string) string {
	t.Helper()
	token, _, err := testJWT.Sign(auth.Claims{
		OwnerID:          ownerID,
		RegisteredClaims: jwt.RegisteredClaims{},
	})
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + token
}

func (e *testEnv) do(t *testing.T, method, path, owner, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if owner != "" {
		req.Header.Set("Authorization", authHeader(t, owner))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

const tradesCSV = `Time,Pair,Side,Leverage,Entry,Exit,Quantity,Fee,Extra,Status
2024-01-10 08:00:00,BTC/USDT,Long,10,100,110,2,1.0,,Closed
2024-02-01 09:30:00,ethusdt,Short,5,3000,0,1.2,1.0,,
`

func TestServer_ImportAndListTrades(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/import/trades", "user-1", tradesCSV,
		map[string]string{"X-Filename": "trades.csv"})
	if rec.Code != http.StatusOK {
		t.Fatalf("import: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var imported ImportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &imported); err != nil {
		t.Fatalf("decode import response: %v", err)
	}
	if imported.Imported != 2 {
		t.Fatalf("expected 2 imported, got %d", imported.Imported)
	}

	rec = env.do(t, http.MethodGet, "/trades", "user-1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}

	var views []TradeView
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode trades: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(views))
	}
	// Newest first; BTC trade is older
	if views[1].Pair != "BTC/USDT" {
		t.Errorf("unexpected ordering, got %s first", views[0].Pair)
	}
	// Computed metrics present: (110-100)*2 - 1 = 19 net
	var btc TradeView
	for _, v := range views {
		if v.Pair == "BTC/USDT" {
			btc = v
		}
	}
	if btc.NetProfit != 19 {
		t.Errorf("expected net profit 19, got %v", btc.NetProfit)
	}
}

func TestServer_TradesMonthFilter(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/import/trades", "user-1", tradesCSV,
		map[string]string{"X-Filename": "trades.csv"})

	rec := env.do(t, http.MethodGet, "/trades?month=2024-01", "user-1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var views []TradeView
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode trades: %v", err)
	}
	if len(views) != 1 || views[0].MonthKey != "2024-01" {
		t.Fatalf("expected single 2024-01 trade, got %+v", views)
	}
}

func TestServer_OwnerIsolation(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/import/trades", "user-1", tradesCSV,
		map[string]string{"X-Filename": "trades.csv"})

	rec := env.do(t, http.MethodGet, "/trades", "user-2", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var views []TradeView
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode trades: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("expected no trades for other owner, got %d", len(views))
	}
}

func TestServer_ImportRejectsSpreadsheet(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/import/trades", "user-1", "binary-blob",
		map[string]string{"X-Filename": "trades.xlsx"})
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rec.Code)
	}
}

func TestServer_AuthRequired(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/trades", "/funding", "/summary/monthly", "/export/trades.csv"} {
		rec := env.do(t, http.MethodGet, path, "", "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401 without token, got %d", path, rec.Code)
		}
	}

	rec := env.do(t, http.MethodPost, "/import/trades", "", tradesCSV, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("import: expected 401 without token, got %d", rec.Code)
	}
}

func TestServer_MonthlySummary(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/import/trades", "user-1", tradesCSV,
		map[string]string{"X-Filename": "trades.csv"})

	rec := env.do(t, http.MethodGet, "/summary/monthly", "user-1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var summaries []*domain.MonthlySummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summaries); err != nil {
		t.Fatalf("decode summaries: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].MonthKey != "2024-01" {
		t.Errorf("expected 2024-01 first, got %s", summaries[0].MonthKey)
	}
}

func TestServer_ExportTradesCSV(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/import/trades", "user-1", tradesCSV,
		map[string]string{"X-Filename": "trades.csv"})

	rec := env.do(t, http.MethodGet, "/export/trades.csv", "user-1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("expected text/csv, got %q", ct)
	}

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if !strings.Contains(lines[0], "net_profit") {
		t.Errorf("expected metrics columns in header: %s", lines[0])
	}
}

func TestServer_ImportFunding(t *testing.T) {
	env := newTestEnv(t)

	fundingCSV := `Date,Asset,Amount,Type
2024-03-15 04:00:00,USDT,-0.52,Funding Fee
`
	rec := env.do(t, http.MethodPost, "/import/funding", "user-1", fundingCSV,
		map[string]string{"X-Filename": "funding.csv"})
	if rec.Code != http.StatusOK {
		t.Fatalf("import: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/funding", "user-1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}

	var records []*domain.FundingRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("decode funding: %v", err)
	}
	if len(records) != 1 || records[0].Amount != -0.52 {
		t.Fatalf("unexpected funding records: %+v", records)
	}
}

func TestServer_HealthAndStatus(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", "", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("health: got %d %q", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/status", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: expected 200, got %d", rec.Code)
	}
	var status StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Status != "running" {
		t.Errorf("expected running, got %q", status.Status)
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/import/trades", "user-1", "", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/trades", "user-1", "", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}
