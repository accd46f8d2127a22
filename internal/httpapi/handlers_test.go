package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mobimaster/backend/internal/cache"
	"mobimaster/backend/internal/domain"
	"mobimaster/backend/internal/export"
	"mobimaster/backend/internal/service"
	"mobimaster/backend/internal/store/memory"
)

// newTestAPI builds a full API with an in-memory store, real AuthManager and
// real Service so handler tests exercise the complete request path.
func newTestAPI(t *testing.T) *API {
	t.Helper()

	repo := memory.New()
	svc := service.New(repo, cache.NoopBalanceCache{}, 0)
	auth := NewAuthManager("test-secret-key", time.Hour, repo)
	shop := export.ShopInfo{Name: "Test Shop", Address: "Main Bazaar", Phone: "0300-0000000"}

	return New(svc, auth, shop, "*")
}

// loginToken logs in with the bootstrap defaults and returns a bearer token.
func loginToken(t *testing.T, handler http.Handler) string {
	t.Helper()

	payload, _ := json.Marshal(map[string]string{
		"username": "bond007",
		"password": "bond007",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}

	var resp domain.LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatalf("expected access token, got %+v", resp)
	}
	return resp.AccessToken
}

// authedJSON issues a request carrying both the bearer token and a CSRF token.
func authedJSON(t *testing.T, api *API, handler http.Handler, token, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-CSRF-Token", api.generateCSRFToken())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func mobileSaleBody(phone string) map[string]any {
	return map[string]any{
		"type":          "Sale",
		"category":      "Mobile",
		"brand":         "Samsung",
		"model":         "A15",
		"color":         "Black",
		"storage":       "128GB",
		"quantity":      1,
		"selling_price": 40000,
		"cost_price":    30000,
		"paid_amount":   40000,
		"customer_name": "Ali Raza",
		"phone":         phone,
	}
}

func TestHandleHealth(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	payload, _ := json.Marshal(map[string]string{
		"username": "bond007",
		"password": "wrongpassword",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestHandleLogin_RateLimit(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	// The loginLimiter allows 5 attempts per minute.
	// Fire 6 requests from the same "IP".
	payload, _ := json.Marshal(map[string]string{
		"username": "bond007",
		"password": "badpass",
	})

	var lastCode int
	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		lastCode = rec.Code
	}

	if lastCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after 6 attempts, got %d", lastCode)
	}
}

func TestHandleTransactions_RequiresAuth(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandleTransactions_CreateAndList(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginToken(t, handler)

	rec := authedJSON(t, api, handler, token, http.MethodPost, "/api/v1/transactions", mobileSaleBody("03001234567"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var created domain.TransactionResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.Transaction.TransactionID != "TXN-00001" {
		t.Fatalf("expected TXN-00001, got %q", created.Transaction.TransactionID)
	}
	if created.Transaction.Item != "Samsung A15 (Black, 128GB)" {
		t.Fatalf("unexpected item: %q", created.Transaction.Item)
	}

	listRec := authedJSON(t, api, handler, token, http.MethodGet, "/api/v1/transactions?search=ali", nil)
	if listRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", listRec.Code, listRec.Body.String())
	}
	var list domain.TransactionListResponse
	if err := json.NewDecoder(listRec.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Total != 1 {
		t.Fatalf("expected 1 matching transaction, got %d", list.Total)
	}
}

func TestHandleTransactions_ValidationErrorIs400(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginToken(t, handler)

	body := mobileSaleBody("12345") // invalid phone
	rec := authedJSON(t, api, handler, token, http.MethodPost, "/api/v1/transactions", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid phone, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestHandleTransactionReceipt(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginToken(t, handler)

	rec := authedJSON(t, api, handler, token, http.MethodPost, "/api/v1/transactions", mobileSaleBody("03001234567"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", rec.Code, rec.Body.String())
	}

	receiptRec := authedJSON(t, api, handler, token, http.MethodGet, "/api/v1/transactions/TXN-00001/receipt", nil)
	if receiptRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", receiptRec.Code, receiptRec.Body.String())
	}
	if ct := receiptRec.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Fatalf("expected html content type, got %q", ct)
	}
	if !strings.Contains(receiptRec.Body.String(), "TXN-00001") {
		t.Fatalf("receipt missing transaction id: %s", receiptRec.Body.String())
	}

	missingRec := authedJSON(t, api, handler, token, http.MethodGet, "/api/v1/transactions/TXN-99999/receipt", nil)
	if missingRec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown transaction, got %d", missingRec.Code)
	}
}

func TestHandleExpenditures_CreateAndList(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginToken(t, handler)

	rec := authedJSON(t, api, handler, token, http.MethodPost, "/api/v1/expenditures", map[string]any{
		"description": "Shop rent",
		"amount":      25000,
		"category":    "Rent",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	listRec := authedJSON(t, api, handler, token, http.MethodGet, "/api/v1/expenditures", nil)
	if listRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", listRec.Code)
	}
	var list domain.ExpenditureListResponse
	if err := json.NewDecoder(listRec.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Total != 1 {
		t.Fatalf("expected 1 expenditure, got %d", list.Total)
	}

	receiptRec := authedJSON(t, api, handler, token, http.MethodGet, "/api/v1/expenditures/1/receipt", nil)
	if receiptRec.Code != http.StatusOK {
		t.Fatalf("expected 200 for receipt, got %d", receiptRec.Code)
	}
	if !strings.Contains(receiptRec.Body.String(), "Shop rent") {
		t.Fatalf("expenditure receipt missing description")
	}

	missingRec := authedJSON(t, api, handler, token, http.MethodGet, "/api/v1/expenditures/2/receipt", nil)
	if missingRec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for entry past end, got %d", missingRec.Code)
	}
}

func TestHandlePayments_AgainstTransaction(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginToken(t, handler)

	sale := mobileSaleBody("03001234567")
	sale["paid_amount"] = 10000
	rec := authedJSON(t, api, handler, token, http.MethodPost, "/api/v1/transactions", sale)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", rec.Code, rec.Body.String())
	}

	payRec := authedJSON(t, api, handler, token, http.MethodPost, "/api/v1/payments", map[string]any{
		"customer_name":  "Ali Raza",
		"phone":          "03001234567",
		"amount":         5000,
		"transaction_id": "TXN-00001",
		"payment_type":   "Cash",
	})
	if payRec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", payRec.Code, payRec.Body.String())
	}

	receiptRec := authedJSON(t, api, handler, token, http.MethodGet, "/api/v1/payments/1/receipt", nil)
	if receiptRec.Code != http.StatusOK {
		t.Fatalf("expected 200 for payment receipt, got %d", receiptRec.Code)
	}
	if !strings.Contains(receiptRec.Body.String(), "Ali Raza") {
		t.Fatalf("payment receipt missing customer name")
	}

	badRec := authedJSON(t, api, handler, token, http.MethodPost, "/api/v1/payments", map[string]any{
		"customer_name":  "Ali Raza",
		"phone":          "03001234567",
		"amount":         5000,
		"transaction_id": "TXN-99999",
		"payment_type":   "Cash",
	})
	if badRec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown transaction, got %d", badRec.Code)
	}
}

func TestHandleCustomerBalance(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginToken(t, handler)

	sale := mobileSaleBody("03001234567")
	sale["paid_amount"] = 15000
	rec := authedJSON(t, api, handler, token, http.MethodPost, "/api/v1/transactions", sale)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", rec.Code, rec.Body.String())
	}

	balRec := authedJSON(t, api, handler, token, http.MethodGet, "/api/v1/customers/balance?q=03001234567", nil)
	if balRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", balRec.Code, balRec.Body.String())
	}
	var balance domain.CustomerBalance
	if err := json.NewDecoder(balRec.Body).Decode(&balance); err != nil {
		t.Fatalf("decode balance: %v", err)
	}
	if balance.TotalLeft != 25000 {
		t.Fatalf("expected 25000 outstanding, got %d", balance.TotalLeft)
	}

	emptyRec := authedJSON(t, api, handler, token, http.MethodGet, "/api/v1/customers/balance", nil)
	if emptyRec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing q, got %d", emptyRec.Code)
	}
}

func TestHandleBusinessReport_Formats(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginToken(t, handler)

	rec := authedJSON(t, api, handler, token, http.MethodPost, "/api/v1/transactions", mobileSaleBody("03001234567"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", rec.Code, rec.Body.String())
	}

	jsonRec := authedJSON(t, api, handler, token, http.MethodGet, "/api/v1/reports/business?period=daily", nil)
	if jsonRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", jsonRec.Code, jsonRec.Body.String())
	}
	var report domain.BusinessReport
	if err := json.NewDecoder(jsonRec.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.PeriodSales != 40000 {
		t.Fatalf("expected period sales 40000, got %d", report.PeriodSales)
	}

	csvRec := authedJSON(t, api, handler, token, http.MethodGet, "/api/v1/reports/business?period=daily&format=csv", nil)
	if csvRec.Code != http.StatusOK {
		t.Fatalf("expected 200 for csv, got %d", csvRec.Code)
	}
	if !strings.HasPrefix(csvRec.Body.String(), "section,key,value") {
		t.Fatalf("unexpected csv header: %s", csvRec.Body.String())
	}

	htmlRec := authedJSON(t, api, handler, token, http.MethodGet, "/api/v1/reports/business?period=daily&format=html", nil)
	if htmlRec.Code != http.StatusOK {
		t.Fatalf("expected 200 for html, got %d", htmlRec.Code)
	}
	if !strings.Contains(htmlRec.Body.String(), "Test Shop") {
		t.Fatalf("report html missing shop name")
	}

	xlsxRec := authedJSON(t, api, handler, token, http.MethodGet, "/api/v1/reports/business?period=daily&format=xlsx", nil)
	if xlsxRec.Code != http.StatusOK {
		t.Fatalf("expected 200 for xlsx, got %d", xlsxRec.Code)
	}
	if ct := xlsxRec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("unexpected xlsx content type: %q", ct)
	}

	badRec := authedJSON(t, api, handler, token, http.MethodGet, "/api/v1/reports/business?period=hourly", nil)
	if badRec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad period, got %d", badRec.Code)
	}
}

func TestHandleExports(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginToken(t, handler)

	rec := authedJSON(t, api, handler, token, http.MethodPost, "/api/v1/transactions", mobileSaleBody("03001234567"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", rec.Code, rec.Body.String())
	}

	csvRec := authedJSON(t, api, handler, token, http.MethodGet, "/api/v1/exports/transactions.csv", nil)
	if csvRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", csvRec.Code)
	}
	if cd := csvRec.Header().Get("Content-Disposition"); !strings.Contains(cd, "transactions.csv") {
		t.Fatalf("unexpected content disposition: %q", cd)
	}
	if !strings.Contains(csvRec.Body.String(), "TXN-00001") {
		t.Fatalf("export missing transaction row")
	}

	zipRec := authedJSON(t, api, handler, token, http.MethodGet, "/api/v1/exports/receipts.zip", nil)
	if zipRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", zipRec.Code)
	}
	if ct := zipRec.Header().Get("Content-Type"); ct != "application/zip" {
		t.Fatalf("unexpected zip content type: %q", ct)
	}
}
