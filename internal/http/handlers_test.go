package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"monetra/internal/core"
	"monetra/internal/ledger/memory"
	"monetra/internal/receipts"
	"monetra/internal/services"
)

type stubScanner struct {
	payload string
	err     error
}

func (s *stubScanner) ScanQR(_ context.Context, _ io.Reader, _ string) (string, error) {
	return s.payload, s.err
}

func newTestServer(t *testing.T, scanner *stubScanner) *Server {
	t.Helper()
	store := memory.New()
	receiptStore, err := receipts.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("receipt store: %v", err)
	}
	txSvc := services.NewTransactionService(store, nil)
	dashSvc := services.NewDashboardService(store)
	txSvc.OnWrite(dashSvc.Invalidate)

	deps := Deps{
		Transactions: txSvc,
		Dashboards:   dashSvc,
		Receipts:     receiptStore,
	}
	if scanner != nil {
		deps.Scanner = scanner
	}
	srv := NewServer(":0", deps)
	t.Cleanup(func() {
		srv.limiter.Stop()
		dashSvc.Stop()
	})
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func createTransaction(t *testing.T, srv *Server, body map[string]any) string {
	t.Helper()
	rec := doJSON(t, srv, "POST", "/transactions", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status %d: %s", rec.Code, rec.Body.String())
	}
	return decodeBody[map[string]string](t, rec)["id"]
}

func TestCreateAndGetTransaction(t *testing.T) {
	srv := newTestServer(t, nil)
	id := createTransaction(t, srv, map[string]any{
		"type": "expense", "label": "Groceries", "amount": "45,50",
		"date": "2025-01-15", "category": "Food",
	})

	rec := doJSON(t, srv, "GET", "/transactions/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status %d", rec.Code)
	}
	got := decodeBody[core.Transaction](t, rec)
	if got.Label != "Groceries" || got.Amount.Cents != 4550 {
		t.Fatalf("got %+v", got)
	}

	if rec := doJSON(t, srv, "GET", "/transactions/unknown", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("missing id status %d", rec.Code)
	}
}

func TestCreateCoercesBadAmountToZero(t *testing.T) {
	srv := newTestServer(t, nil)
	id := createTransaction(t, srv, map[string]any{
		"type": "expense", "label": "Typo", "amount": "abc", "date": "2025-01-15",
	})

	rec := doJSON(t, srv, "GET", "/transactions/"+id, nil)
	got := decodeBody[core.Transaction](t, rec)
	if got.Amount.Cents != 0 {
		t.Fatalf("amount = %d, want coerced 0", got.Amount.Cents)
	}
}

func TestCreateValidation(t *testing.T) {
	srv := newTestServer(t, nil)
	cases := []struct {
		name string
		body map[string]any
		want int
	}{
		{"bad type", map[string]any{"type": "loan", "label": "x", "date": "2025-01-01"}, http.StatusUnprocessableEntity},
		{"empty label", map[string]any{"type": "expense", "label": " ", "date": "2025-01-01"}, http.StatusUnprocessableEntity},
		{"bad date", map[string]any{"type": "expense", "label": "x", "date": "01.02.2025"}, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if rec := doJSON(t, srv, "POST", "/transactions", tc.body); rec.Code != tc.want {
				t.Fatalf("status %d, want %d: %s", rec.Code, tc.want, rec.Body.String())
			}
		})
	}

	req := httptest.NewRequest("POST", "/transactions", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body status %d", rec.Code)
	}
}

func TestRecurringCreateExpands(t *testing.T) {
	srv := newTestServer(t, nil)
	createTransaction(t, srv, map[string]any{
		"type": "scheduled-payment", "label": "Rent", "amount": 1500.00,
		"date": "2024-01-15", "recurring": true,
	})

	rec := doJSON(t, srv, "GET", "/transactions", nil)
	list := decodeBody[map[string]any](t, rec)
	if int(list["count"].(float64)) != core.SeriesLength {
		t.Fatalf("count = %v, want %d", list["count"], core.SeriesLength)
	}

	// Month filter narrows to a single occurrence.
	rec = doJSON(t, srv, "GET", "/transactions?month=2024-07", nil)
	list = decodeBody[map[string]any](t, rec)
	if int(list["count"].(float64)) != 1 {
		t.Fatalf("july count = %v", list["count"])
	}

	if rec := doJSON(t, srv, "GET", "/transactions?month=2024-13", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad month status %d", rec.Code)
	}
	if rec := doJSON(t, srv, "GET", "/transactions?recurring=maybe", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad recurring status %d", rec.Code)
	}
}

func TestUpdateFutureScopeCutsOver(t *testing.T) {
	srv := newTestServer(t, nil)
	createTransaction(t, srv, map[string]any{
		"type": "scheduled-payment", "label": "Rent", "amount": "1000",
		"date": "2024-01-15", "recurring": true,
	})

	rec := doJSON(t, srv, "GET", "/transactions?month=2024-06", nil)
	june := decodeBody[struct {
		Transactions []core.Transaction `json:"transactions"`
	}](t, rec)
	if len(june.Transactions) != 1 {
		t.Fatalf("june: %d", len(june.Transactions))
	}

	rec = doJSON(t, srv, "PUT", "/transactions/"+june.Transactions[0].ID+"?future=1", map[string]any{
		"type": "scheduled-payment", "label": "Rent", "amount": "1200",
		"date": "2024-06-15", "recurring": true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("cutover status %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, "GET", "/transactions", nil)
	all := decodeBody[struct {
		Transactions []core.Transaction `json:"transactions"`
	}](t, rec)
	if len(all.Transactions) != 5+core.SeriesLength {
		t.Fatalf("total %d, want %d", len(all.Transactions), 5+core.SeriesLength)
	}
}

func TestDeleteSingleAndFuture(t *testing.T) {
	srv := newTestServer(t, nil)
	anchor := createTransaction(t, srv, map[string]any{
		"type": "scheduled-payment", "label": "Gym", "amount": "50",
		"date": "2024-01-10", "recurring": true,
	})

	if rec := doJSON(t, srv, "DELETE", "/transactions/"+anchor, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status %d", rec.Code)
	}

	rec := doJSON(t, srv, "GET", "/transactions?month=2024-03", nil)
	march := decodeBody[struct {
		Transactions []core.Transaction `json:"transactions"`
	}](t, rec)
	if rec := doJSON(t, srv, "DELETE", "/transactions/"+march.Transactions[0].ID+"?future=1", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("series delete status %d", rec.Code)
	}

	rec = doJSON(t, srv, "GET", "/transactions", nil)
	left := decodeBody[map[string]any](t, rec)
	if int(left["count"].(float64)) != 1 {
		t.Fatalf("left = %v, want 1", left["count"])
	}

	if rec := doJSON(t, srv, "DELETE", "/transactions/unknown", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("missing delete status %d", rec.Code)
	}
}

func TestDashboardEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)
	today := core.Today()

	createTransaction(t, srv, map[string]any{
		"type": "income", "label": "Salary", "amount": "100", "date": today.String(),
	})
	createTransaction(t, srv, map[string]any{
		"type": "expense", "label": "Groceries", "amount": "30", "date": today.String(),
	})
	future := core.AddMonths(today, 1)
	createTransaction(t, srv, map[string]any{
		"type": "scheduled-payment", "label": "Insurance", "amount": "25", "date": future.String(),
	})

	rec := doJSON(t, srv, "GET", "/dashboard/balance", nil)
	balance := decodeBody[map[string]float64](t, rec)
	if balance["available"] != 70 {
		t.Fatalf("available = %v, want 70", balance["available"])
	}

	rec = doJSON(t, srv, "GET", "/dashboard/upcoming", nil)
	upcoming := decodeBody[core.UpcomingSummary](t, rec)
	if len(upcoming.Payments) != 1 || upcoming.Total.Cents != 2500 {
		t.Fatalf("upcoming: %+v", upcoming)
	}

	monthParam := fmt.Sprintf("%04d-%02d", today.Year(), today.Month())
	rec = doJSON(t, srv, "GET", "/dashboard/report?month="+monthParam, nil)
	report := decodeBody[core.MonthlyReport](t, rec)
	if report.Income.Cents != 10000 || report.Expenses.Cents != 3000 {
		t.Fatalf("report: %+v", report)
	}
	if report.Categories[core.DefaultCategory].Cents != 13000 {
		t.Fatalf("categories: %+v", report.Categories)
	}

	if rec := doJSON(t, srv, "GET", "/dashboard/report?month=bogus", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad month status %d", rec.Code)
	}
}

func TestResetClearsEverything(t *testing.T) {
	srv := newTestServer(t, nil)
	createTransaction(t, srv, map[string]any{
		"type": "expense", "label": "x", "amount": "1", "date": "2025-01-01",
	})

	if rec := doJSON(t, srv, "POST", "/reset", nil); rec.Code != http.StatusOK {
		t.Fatalf("reset status %d", rec.Code)
	}
	rec := doJSON(t, srv, "GET", "/transactions", nil)
	list := decodeBody[map[string]any](t, rec)
	if int(list["count"].(float64)) != 0 {
		t.Fatalf("count after reset = %v", list["count"])
	}
}

func uploadReceipt(t *testing.T, srv *Server, filename, content string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	req := httptest.NewRequest("POST", "/receipts", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func TestReceiptUploadDownloadDelete(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := uploadReceipt(t, srv, "invoice.pdf", "pdf-bytes", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status %d: %s", rec.Code, rec.Body.String())
	}
	up := decodeBody[uploadResponse](t, rec)
	if up.ReceiptID == "" || up.QRFound {
		t.Fatalf("upload response: %+v", up)
	}

	getRec := doJSON(t, srv, "GET", "/receipts/"+up.ReceiptID, nil)
	if getRec.Code != http.StatusOK || getRec.Body.String() != "pdf-bytes" {
		t.Fatalf("download: %d %q", getRec.Code, getRec.Body.String())
	}

	if rec := doJSON(t, srv, "DELETE", "/receipts/"+up.ReceiptID, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status %d", rec.Code)
	}
	if rec := doJSON(t, srv, "GET", "/receipts/"+up.ReceiptID, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("after delete status %d", rec.Code)
	}
}

func TestReceiptUploadWithScanAndAttach(t *testing.T) {
	scanner := &stubScanner{payload: "Muster AG\nCH9300762011623852957\nCHF\n49.90"}
	srv := newTestServer(t, scanner)

	txID := createTransaction(t, srv, map[string]any{
		"type": "expense", "label": "Invoice", "amount": "49.90", "date": "2025-01-15",
	})

	rec := uploadReceipt(t, srv, "bill.png", "png-bytes", map[string]string{"transaction_id": txID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status %d: %s", rec.Code, rec.Body.String())
	}
	up := decodeBody[uploadResponse](t, rec)
	if !up.QRFound || up.Suggestion == nil || up.Suggestion.Label != "Muster AG" {
		t.Fatalf("scan result: %+v", up)
	}
	if up.QRInfo.IBAN != "CH9300762011623852957" || up.Suggestion.Amount.Cents != 4990 {
		t.Fatalf("qr info: %+v suggestion: %+v", up.QRInfo, up.Suggestion)
	}

	// The transaction now references the stored receipt.
	getRec := doJSON(t, srv, "GET", "/transactions/"+txID, nil)
	tx := decodeBody[core.Transaction](t, getRec)
	if tx.ReceiptID != up.ReceiptID {
		t.Fatalf("receipt not attached: %+v", tx)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)
	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		if rec := doJSON(t, srv, "GET", path, nil); rec.Code != http.StatusOK {
			t.Fatalf("%s status %d", path, rec.Code)
		}
	}
}
