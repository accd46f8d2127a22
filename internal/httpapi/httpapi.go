package httpapi

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"mobimaster/backend/internal/domain"
	"mobimaster/backend/internal/export"
	"mobimaster/backend/internal/service"
	"mobimaster/backend/internal/store"
)

type API struct {
	service       *service.Service
	auth          *AuthManager
	shop          export.ShopInfo
	allowedOrigin string
	loginLimiter  *attemptLimiter
	resetLimiter  *attemptLimiter
	csrfSecret    []byte
}

func New(svc *service.Service, auth *AuthManager, shop export.ShopInfo, allowedOrigin string) *API {
	csrfSecret := make([]byte, 32)
	if _, err := rand.Read(csrfSecret); err != nil {
		// Fall back to a deterministic secret if crypto/rand fails (should not happen in practice).
		csrfSecret = []byte("csrf-fallback-secret-change-me!!")
	}
	return &API{
		service:       svc,
		auth:          auth,
		shop:          shop,
		allowedOrigin: allowedOrigin,
		loginLimiter:  newAttemptLimiter(5, time.Minute),
		resetLimiter:  newAttemptLimiter(3, time.Minute),
		csrfSecret:    csrfSecret,
	}
}

// csrfTokenForHour computes an HMAC-SHA256 token for the given hour bucket
// (expressed as Unix time truncated to the hour). The token is hex-encoded.
func (a *API) csrfTokenForHour(hourBucket int64) string {
	h := hmac.New(sha256.New, a.csrfSecret)
	fmt.Fprintf(h, "%d", hourBucket)
	return hex.EncodeToString(h.Sum(nil))
}

// generateCSRFToken returns a token valid for the current hour bucket.
func (a *API) generateCSRFToken() string {
	now := time.Now().UTC()
	bucket := now.Truncate(time.Hour).Unix()
	return a.csrfTokenForHour(bucket)
}

// validateCSRFToken checks whether the provided token matches the current or
// previous hour bucket, giving a 2-hour validity window.
func (a *API) validateCSRFToken(token string) bool {
	if token == "" {
		return false
	}
	now := time.Now().UTC()
	currentBucket := now.Truncate(time.Hour).Unix()
	prevBucket := currentBucket - 3600

	expected1 := a.csrfTokenForHour(currentBucket)
	expected2 := a.csrfTokenForHour(prevBucket)

	return hmac.Equal([]byte(token), []byte(expected1)) ||
		hmac.Equal([]byte(token), []byte(expected2))
}

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.entries[key]
	kept := make([]time.Time, 0, len(history)+1)
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	kept = append(kept, now)
	l.entries[key] = kept
	return true
}

func clientKey(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddrPort(host); err == nil {
		return addr.Addr().String()
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", a.handleHealth)
	mux.HandleFunc("/api/v1/auth/login", a.handleLogin)
	mux.HandleFunc("/api/v1/auth/reset", a.handlePasswordReset)
	mux.HandleFunc("/api/v1/auth/csrf-token", a.handleCSRFToken)

	mux.HandleFunc("/api/v1/transactions", a.requireAuth(a.handleTransactions))
	mux.HandleFunc("/api/v1/transactions/", a.requireAuth(a.handleTransactionActions))
	mux.HandleFunc("/api/v1/expenditures", a.requireAuth(a.handleExpenditures))
	mux.HandleFunc("/api/v1/expenditures/", a.requireAuth(a.handleExpenditureReceipt))
	mux.HandleFunc("/api/v1/payments", a.requireAuth(a.handlePayments))
	mux.HandleFunc("/api/v1/payments/", a.requireAuth(a.handlePaymentReceipt))
	mux.HandleFunc("/api/v1/advances", a.requireAuth(a.handleAdvances))
	mux.HandleFunc("/api/v1/customers/balance", a.requireAuth(a.handleCustomerBalance))
	mux.HandleFunc("/api/v1/reports/business", a.requireAuth(a.handleBusinessReport))

	mux.HandleFunc("/api/v1/exports/transactions.csv", a.requireAuth(a.handleExportTransactions))
	mux.HandleFunc("/api/v1/exports/expenditures.csv", a.requireAuth(a.handleExportExpenditures))
	mux.HandleFunc("/api/v1/exports/payments.csv", a.requireAuth(a.handleExportPayments))
	mux.HandleFunc("/api/v1/exports/advances.csv", a.requireAuth(a.handleExportAdvances))
	mux.HandleFunc("/api/v1/exports/receipts.zip", a.requireAuth(a.handleExportReceipts))

	return a.withMiddleware(mux)
}

func (a *API) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authorization := strings.TrimSpace(r.Header.Get("Authorization"))
		if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
			writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}

		token := strings.TrimSpace(authorization[len("Bearer "):])
		actor, err := a.auth.ParseToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err)
			return
		}

		next(w, r.WithContext(service.WithActor(r.Context(), actor)))
	}
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	if !a.loginLimiter.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many login attempts"))
		return
	}

	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := a.auth.Login(req)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handlePasswordReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	if !a.resetLimiter.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many reset attempts"))
		return
	}

	var req domain.PasswordResetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := a.auth.ResetPassword(r.Context(), req); err != nil {
		writeError(w, statusForAuthError(err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"reset": true})
}

// handleCSRFToken returns a stateless CSRF token valid for the current hour bucket.
// Clients must include this token in the X-CSRF-Token header for all mutating requests.
func (a *API) handleCSRFToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"csrf_token": a.generateCSRFToken(),
	})
}

// csrfExemptPaths lists paths that are exempt from CSRF validation.
// Login and reset are excluded because they are called without a prior CSRF token fetch.
var csrfExemptPaths = []string{
	"/api/v1/auth/login",
	"/api/v1/auth/reset",
}

// checkCSRF enforces CSRF token validation for state-changing methods (POST/PUT/PATCH).
// Returns false and writes an error response if validation fails.
func (a *API) checkCSRF(w http.ResponseWriter, r *http.Request) bool {
	method := r.Method
	if method != http.MethodPost && method != http.MethodPut && method != http.MethodPatch {
		return true
	}
	for _, exempt := range csrfExemptPaths {
		if r.URL.Path == exempt {
			return true
		}
	}
	token := strings.TrimSpace(r.Header.Get("X-CSRF-Token"))
	if !a.validateCSRFToken(token) {
		writeError(w, http.StatusForbidden, errors.New("missing or invalid CSRF token"))
		return false
	}
	return true
}

func (a *API) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		query := r.URL.Query()
		transactions, err := a.service.ListTransactions(r.Context(), query.Get("search"), query.Get("type"))
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, domain.TransactionListResponse{
			Transactions: transactions,
			Total:        len(transactions),
		})
	case http.MethodPost:
		var req domain.TransactionCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		resp, err := a.service.RecordTransaction(r.Context(), req)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleTransactionActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	prefix := "/api/v1/transactions/"
	tail := strings.TrimSpace(strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/"))
	if tail == "" {
		writeError(w, http.StatusBadRequest, errors.New("transaction id required"))
		return
	}

	if id, ok := strings.CutSuffix(tail, "/receipt"); ok {
		id = strings.Trim(id, "/")
		if id == "" {
			writeError(w, http.StatusBadRequest, errors.New("transaction id required"))
			return
		}
		tx, err := a.service.GetTransaction(r.Context(), id)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeHTML(w, export.ReceiptHTML(a.shop, tx))
		return
	}

	tx, err := a.service.GetTransaction(r.Context(), tail)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transaction": tx})
}

func (a *API) handleExpenditures(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		expenditures, err := a.service.ListExpenditures(r.Context())
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, domain.ExpenditureListResponse{
			Expenditures: expenditures,
			Total:        len(expenditures),
		})
	case http.MethodPost:
		var req domain.ExpenditureCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		exp, err := a.service.RecordExpenditure(r.Context(), req)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"expenditure": exp})
	default:
		writeMethodNotAllowed(w)
	}
}

// Expenditures and payments have no natural identifier, so their printable
// documents are addressed by 1-based ledger position.
func receiptIndex(path, prefix string) (int, bool) {
	tail := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	raw, ok := strings.CutSuffix(tail, "/receipt")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.Trim(raw, "/"))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func (a *API) handleExpenditureReceipt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	n, ok := receiptIndex(r.URL.Path, "/api/v1/expenditures/")
	if !ok {
		writeError(w, http.StatusBadRequest, errors.New("expenditure entry number required"))
		return
	}

	expenditures, err := a.service.ListExpenditures(r.Context())
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	if n > len(expenditures) {
		writeError(w, http.StatusNotFound, errors.New("no such expenditure entry"))
		return
	}
	writeHTML(w, export.ExpenditureHTML(a.shop, expenditures[n-1]))
}

func (a *API) handlePaymentReceipt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	n, ok := receiptIndex(r.URL.Path, "/api/v1/payments/")
	if !ok {
		writeError(w, http.StatusBadRequest, errors.New("payment entry number required"))
		return
	}

	payments, err := a.service.ListPayments(r.Context())
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	if n > len(payments) {
		writeError(w, http.StatusNotFound, errors.New("no such payment entry"))
		return
	}
	writeHTML(w, export.PaymentHTML(a.shop, payments[n-1]))
}

func (a *API) handlePayments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		payments, err := a.service.ListPayments(r.Context())
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, domain.PaymentListResponse{
			Payments: payments,
			Total:    len(payments),
		})
	case http.MethodPost:
		var req domain.PaymentCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		payment, err := a.service.RecordPayment(r.Context(), req)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"payment": payment})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleAdvances(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	advances, err := a.service.ListAdvances(r.Context())
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, domain.AdvanceListResponse{
		Advances: advances,
		Total:    len(advances),
	})
}

func (a *API) handleCustomerBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	identifier := strings.TrimSpace(r.URL.Query().Get("q"))
	if identifier == "" {
		writeError(w, http.StatusBadRequest, errors.New("query parameter q required"))
		return
	}

	balance, err := a.service.GetCustomerBalance(r.Context(), identifier)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

func (a *API) handleBusinessReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	query := r.URL.Query()
	period := strings.TrimSpace(query.Get("period"))
	if period == "" {
		period = domain.PeriodDaily
	}

	report, err := a.service.BuildReport(r.Context(), period)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}

	switch strings.ToLower(strings.TrimSpace(query.Get("format"))) {
	case "", "json":
		writeJSON(w, http.StatusOK, report)
	case "csv":
		writeAttachment(w, "text/csv; charset=utf-8", fmt.Sprintf("business_report_%s.csv", report.Period), []byte(businessReportToCSV(report)))
	case "html":
		writeHTML(w, export.ReportHTML(a.shop, report))
	case "xlsx":
		transactions, err := a.service.ListTransactions(r.Context(), "", "")
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		payload, err := export.ReportXLSX(a.shop, report, transactions)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeAttachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", fmt.Sprintf("business_report_%s.xlsx", report.Period), payload)
	default:
		writeError(w, http.StatusBadRequest, errors.New("unsupported report format"))
	}
}

func (a *API) handleExportTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	transactions, err := a.service.ListTransactions(r.Context(), "", "")
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	payload, err := export.TransactionsCSV(transactions)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeAttachment(w, "text/csv; charset=utf-8", "transactions.csv", payload)
}

func (a *API) handleExportExpenditures(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	expenditures, err := a.service.ListExpenditures(r.Context())
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	payload, err := export.ExpendituresCSV(expenditures)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeAttachment(w, "text/csv; charset=utf-8", "expenditures.csv", payload)
}

func (a *API) handleExportPayments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	payments, err := a.service.ListPayments(r.Context())
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	payload, err := export.PaymentsCSV(payments)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeAttachment(w, "text/csv; charset=utf-8", "payments.csv", payload)
}

func (a *API) handleExportAdvances(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	advances, err := a.service.ListAdvances(r.Context())
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	payload, err := export.AdvancesCSV(advances)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeAttachment(w, "text/csv; charset=utf-8", "advances.csv", payload)
}

func (a *API) handleExportReceipts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	transactions, err := a.service.ListTransactions(r.Context(), "", "")
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	payload, err := export.ReceiptsZIP(a.shop, transactions)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeAttachment(w, "application/zip", "receipts.zip", payload)
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-CSRF-Token")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if (r.Method == http.MethodPost || r.Method == http.MethodPatch || r.Method == http.MethodPut) && strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		// Enforce CSRF protection for all state-changing requests.
		if !a.checkCSRF(w, r) {
			return
		}

		startedAt := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(startedAt))
	})
}

// businessReportToCSV flattens the report into section,key,value rows so it can
// be pasted straight into a spreadsheet without a custom importer.
func businessReportToCSV(report domain.BusinessReport) string {
	lines := []string{
		"section,key,value",
		fmt.Sprintf("summary,period,%s", report.Period),
		fmt.Sprintf("summary,start_date,%s", report.StartDate),
		fmt.Sprintf("summary,end_date,%s", report.EndDate),
		fmt.Sprintf("summary,period_sales,%d", report.PeriodSales),
		fmt.Sprintf("summary,period_profit,%d", report.PeriodProfit),
		fmt.Sprintf("summary,period_expenditure,%d", report.PeriodExpenditure),
		fmt.Sprintf("summary,period_net,%d", report.PeriodNet),
		fmt.Sprintf("summary,total_sales,%d", report.TotalSales),
		fmt.Sprintf("summary,total_profit,%d", report.TotalProfit),
		fmt.Sprintf("summary,total_expenditure,%d", report.TotalExpenditure),
		fmt.Sprintf("summary,total_pending,%d", report.TotalPending),
		fmt.Sprintf("summary,transaction_count,%d", report.TransactionCount),
		fmt.Sprintf("summary,expenditure_entries,%d", report.ExpenditureEntries),
	}
	for _, category := range []string{domain.CategoryMobile, domain.CategoryAccessories, domain.CategoryRepair} {
		lines = append(lines, fmt.Sprintf("category,%s,%d", category, report.CategoryBreakdown[category]))
	}
	return strings.Join(lines, "\n") + "\n"
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, store.ErrInvalidRecord):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func statusForAuthError(err error) int {
	if strings.Contains(strings.ToLower(err.Error()), "reset code") {
		return http.StatusUnauthorized
	}
	return http.StatusBadRequest
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	return nil
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, payload []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func writeHTML(w http.ResponseWriter, markup string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(markup))
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func writeError(w http.ResponseWriter, status int, err error) {
	// For 5xx responses, return a generic message to avoid leaking internal
	// implementation details (stack traces, SQL errors, file paths, etc.).
	// 4xx responses are user-facing so we return the original error message.
	msg := err.Error()
	if status >= 500 {
		log.Printf("internal error (status %d): %v", status, err)
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
