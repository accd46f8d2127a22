package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"mobimaster/backend/internal/cache"
	"mobimaster/backend/internal/domain"
	"mobimaster/backend/internal/ledger"
	"mobimaster/backend/internal/store"
	"mobimaster/backend/internal/xid"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

// ValidationError carries a field-level rejection. It matches
// store.ErrInvalidRecord under errors.Is so the API layer maps it to 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == store.ErrInvalidRecord
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

var phonePattern = regexp.MustCompile(`^(\+92|0)[0-9]{10}$`)

type Service struct {
	repo       store.Repository
	balances   cache.BalanceCache
	balanceTTL time.Duration
	now        func() time.Time
}

func New(repo store.Repository, balances cache.BalanceCache, balanceTTL time.Duration) *Service {
	if balances == nil {
		balances = cache.NoopBalanceCache{}
	}
	if balanceTTL <= 0 {
		balanceTTL = 30 * time.Second
	}

	return &Service{
		repo:       repo,
		balances:   balances,
		balanceTTL: balanceTTL,
		now:        func() time.Time { return time.Now() },
	}
}

// NormalizeCNIC returns the canonical AAAAA-BBBBBBB-C grouping when the
// input contains exactly 13 digits; otherwise it returns the cleaned
// digits unchanged. It never rejects. Normalization is idempotent.
func NormalizeCNIC(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	clean := digits.String()
	if len(clean) == 13 {
		return clean[:5] + "-" + clean[5:12] + "-" + clean[12:]
	}
	return clean
}

func validPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// nextTransactionID scans the existing identifiers for the highest
// TXN-NNNNN and returns the next one, zero padded to five digits.
// TXN-00001 when the ledger is empty; a random fallback when nothing
// parses.
func nextTransactionID(transactions []domain.Transaction) string {
	highest := 0
	seen := false
	for _, tx := range transactions {
		rest, ok := strings.CutPrefix(tx.TransactionID, "TXN-")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil {
			continue
		}
		seen = true
		if n > highest {
			highest = n
		}
	}
	if !seen && len(transactions) > 0 {
		return xid.New("TXN")
	}
	return fmt.Sprintf("TXN-%05d", highest+1)
}

func (s *Service) RecordTransaction(ctx context.Context, req domain.TransactionCreateRequest) (domain.TransactionResponse, error) {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Item = strings.TrimSpace(req.Item)
	req.Brand = strings.TrimSpace(req.Brand)
	req.Model = strings.TrimSpace(req.Model)

	if req.Type != domain.TxTypeSale && req.Type != domain.TxTypeService {
		return domain.TransactionResponse{}, invalid("type", "must be Sale or Service")
	}
	if req.Category != domain.CategoryMobile && req.Category != domain.CategoryAccessories && req.Category != domain.CategoryRepair {
		return domain.TransactionResponse{}, invalid("category", "must be Mobile, Accessories or Repair")
	}
	if req.CustomerName == "" {
		return domain.TransactionResponse{}, invalid("customer_name", "required")
	}
	if req.Phone == "" {
		return domain.TransactionResponse{}, invalid("phone", "required")
	}
	if !validPhone(req.Phone) {
		return domain.TransactionResponse{}, invalid("phone", "must match +92 or 0 followed by 10 digits")
	}
	if req.SellingPrice <= 0 {
		return domain.TransactionResponse{}, invalid("selling_price", "must be greater than zero")
	}
	if req.CostPrice < 0 {
		return domain.TransactionResponse{}, invalid("cost_price", "must not be negative")
	}
	if req.PaidAmount < 0 {
		return domain.TransactionResponse{}, invalid("paid_amount", "must not be negative")
	}

	switch req.Category {
	case domain.CategoryMobile:
		if req.Type == domain.TxTypeSale {
			if req.Brand == "" || req.Model == "" {
				return domain.TransactionResponse{}, invalid("brand", "brand and model required for mobile sales")
			}
			if strings.TrimSpace(req.Color) == "" || strings.TrimSpace(req.Storage) == "" {
				return domain.TransactionResponse{}, invalid("color", "color and storage required for mobile sales")
			}
		}
	case domain.CategoryAccessories:
		if req.Item == "" {
			return domain.TransactionResponse{}, invalid("item", "item name required for accessory sales")
		}
	case domain.CategoryRepair:
		if req.Brand == "" || req.Model == "" {
			return domain.TransactionResponse{}, invalid("brand", "brand and model required for repairs")
		}
		if req.Item == "" {
			return domain.TransactionResponse{}, invalid("item", "service description required for repairs")
		}
	}

	quantity := req.Quantity
	if req.Type == domain.TxTypeService && quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return domain.TransactionResponse{}, invalid("quantity", "must be at least 1")
	}

	total := req.SellingPrice * int64(quantity)
	if req.PaidAmount > total {
		return domain.TransactionResponse{}, invalid("paid_amount", "cannot exceed total selling price")
	}

	item := req.Item
	if req.Category == domain.CategoryMobile && req.Type == domain.TxTypeSale {
		item = fmt.Sprintf("%s %s (%s, %s)", req.Brand, req.Model, req.Color, req.Storage)
	}

	existing, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return domain.TransactionResponse{}, err
	}

	now := s.now()
	tx := domain.Transaction{
		Date:           now.Format("2006-01-02"),
		Time:           now.Format("15:04:05"),
		Type:           req.Type,
		Category:       req.Category,
		Item:           item,
		Brand:          req.Brand,
		Model:          req.Model,
		Color:          strings.TrimSpace(req.Color),
		Storage:        strings.TrimSpace(req.Storage),
		Quantity:       quantity,
		SellingPrice:   total,
		CostPrice:      req.CostPrice,
		Profit:         total - req.CostPrice*int64(quantity),
		PaidAmount:     req.PaidAmount,
		LeftAmount:     total - req.PaidAmount,
		CustomerName:   req.CustomerName,
		Phone:          req.Phone,
		CNIC:           NormalizeCNIC(req.CNIC),
		Address:        strings.TrimSpace(req.Address),
		Warranty:       strings.TrimSpace(req.Warranty),
		CompatibleWith: strings.TrimSpace(req.CompatibleWith),
		TransactionID:  nextTransactionID(existing),
		IMEI:           strings.TrimSpace(req.IMEI),
	}

	// Apply any advance credit the customer holds. The balance engine
	// reports the advance remaining after notional netting against prior
	// outstanding amounts, so only that remainder is offered to the new
	// transaction.
	var advanceApplied int64
	if tx.LeftAmount > 0 {
		balance, err := s.customerBalance(ctx, tx.Phone)
		if err != nil {
			return domain.TransactionResponse{}, err
		}
		if balance.AdvanceBalance > 0 {
			applied, leftAfter, _ := ledger.NetAdvance(tx.LeftAmount, balance.AdvanceBalance)
			if applied > 0 {
				tx.LeftAmount = leftAfter
				tx.PaidAmount += applied
				advanceApplied = applied
				if _, err := s.repo.AdjustAdvance(ctx, tx.CustomerName, tx.Phone, tx.CNIC, -applied); err != nil {
					return domain.TransactionResponse{}, err
				}
			}
		}
	}

	if tx.LeftAmount == 0 {
		tx.Status = domain.StatusCompleted
	} else {
		tx.Status = domain.StatusPending
	}

	created, err := s.repo.AppendTransaction(ctx, tx)
	if err != nil {
		// The advance was already decremented; give it back so a failed
		// append does not consume customer credit.
		if advanceApplied > 0 {
			if _, restoreErr := s.repo.AdjustAdvance(ctx, tx.CustomerName, tx.Phone, tx.CNIC, advanceApplied); restoreErr != nil {
				log.Printf("[service] WARN: could not restore advance %d for %q after failed append: %v", advanceApplied, tx.Phone, restoreErr)
			}
		}
		return domain.TransactionResponse{}, err
	}
	s.invalidateBalances(ctx)

	return domain.TransactionResponse{
		Transaction:    *created,
		AdvanceApplied: advanceApplied,
	}, nil
}

func (s *Service) RecordExpenditure(ctx context.Context, req domain.ExpenditureCreateRequest) (domain.Expenditure, error) {
	req.Category = strings.TrimSpace(req.Category)
	req.Description = strings.TrimSpace(req.Description)

	if req.Category == "" {
		return domain.Expenditure{}, invalid("category", "required")
	}
	if req.Amount <= 0 {
		return domain.Expenditure{}, invalid("amount", "must be greater than zero")
	}
	if req.Description == "" {
		return domain.Expenditure{}, invalid("description", "required")
	}

	now := s.now()
	exp := domain.Expenditure{
		Date:        now.Format("2006-01-02"),
		Time:        now.Format("15:04:05"),
		Category:    req.Category,
		Amount:      req.Amount,
		Description: req.Description,
	}

	created, err := s.repo.AppendExpenditure(ctx, exp)
	if err != nil {
		return domain.Expenditure{}, err
	}
	return *created, nil
}

func (s *Service) RecordPayment(ctx context.Context, req domain.PaymentCreateRequest) (domain.Payment, error) {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.Phone = strings.TrimSpace(req.Phone)

	if req.CustomerName == "" {
		return domain.Payment{}, invalid("customer_name", "required")
	}
	if req.Phone == "" {
		return domain.Payment{}, invalid("phone", "required")
	}
	if !validPhone(req.Phone) {
		return domain.Payment{}, invalid("phone", "must match +92 or 0 followed by 10 digits")
	}
	if req.Amount <= 0 {
		return domain.Payment{}, invalid("amount", "must be greater than zero")
	}
	switch req.PaymentType {
	case domain.PaymentTypeCash, domain.PaymentTypeBank, domain.PaymentTypeOnline:
	default:
		return domain.Payment{}, invalid("payment_type", "unknown payment method")
	}
	if req.TransactionID != "" {
		if _, err := s.repo.FindTransactionByID(ctx, req.TransactionID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.Payment{}, invalid("transaction_id", "no such transaction")
			}
			return domain.Payment{}, err
		}
	}

	cnic := NormalizeCNIC(req.CNIC)
	now := s.now()

	if req.IsAdvance {
		// An advance deposit becomes customer credit rather than a
		// payment row against an outstanding amount.
		if _, err := s.repo.AdjustAdvance(ctx, req.CustomerName, req.Phone, cnic, req.Amount); err != nil {
			return domain.Payment{}, err
		}
		s.invalidateBalances(ctx)
		return domain.Payment{
			Date:         now.Format("2006-01-02"),
			Time:         now.Format("15:04:05"),
			CustomerName: req.CustomerName,
			Phone:        req.Phone,
			CNIC:         cnic,
			Amount:       req.Amount,
			PaymentType:  req.PaymentType,
			Notes:        strings.TrimSpace(req.Notes),
			IsAdvance:    true,
		}, nil
	}

	payment := domain.Payment{
		Date:          now.Format("2006-01-02"),
		Time:          now.Format("15:04:05"),
		CustomerName:  req.CustomerName,
		Phone:         req.Phone,
		CNIC:          cnic,
		Amount:        req.Amount,
		TransactionID: req.TransactionID,
		PaymentType:   req.PaymentType,
		Notes:         strings.TrimSpace(req.Notes),
	}

	created, err := s.repo.AppendPayment(ctx, payment)
	if err != nil {
		return domain.Payment{}, err
	}
	s.invalidateBalances(ctx)
	return *created, nil
}

func (s *Service) GetCustomerBalance(ctx context.Context, identifier string) (domain.CustomerBalance, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return domain.CustomerBalance{}, invalid("identifier", "required")
	}

	if cached, ok, err := s.balances.Get(ctx, identifier); err == nil && ok {
		return *cached, nil
	}

	balance, err := s.customerBalance(ctx, identifier)
	if err != nil {
		return domain.CustomerBalance{}, err
	}

	if err := s.balances.Set(ctx, identifier, &balance, s.balanceTTL); err != nil {
		log.Printf("[service] WARN: failed to cache balance for %q: %v", identifier, err)
	}
	return balance, nil
}

func (s *Service) customerBalance(ctx context.Context, identifier string) (domain.CustomerBalance, error) {
	records, err := s.repo.CustomerRecords(ctx, identifier)
	if err != nil {
		return domain.CustomerBalance{}, err
	}
	return ledger.CustomerBalance(*records), nil
}

func (s *Service) invalidateBalances(ctx context.Context) {
	if err := s.balances.InvalidateAll(ctx); err != nil {
		log.Printf("[service] WARN: failed to invalidate balance cache: %v", err)
	}
}

func (s *Service) BuildReport(ctx context.Context, period string) (domain.BusinessReport, error) {
	switch period {
	case domain.PeriodDaily, domain.PeriodWeekly, domain.PeriodMonthly, domain.PeriodYearly, domain.PeriodAllTime:
	default:
		return domain.BusinessReport{}, invalid("period", "must be daily, weekly, monthly, yearly or all_time")
	}

	transactions, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return domain.BusinessReport{}, err
	}
	expenditures, err := s.repo.ListExpenditures(ctx)
	if err != nil {
		return domain.BusinessReport{}, err
	}

	return ledger.BuildReport(transactions, expenditures, period, s.now()), nil
}

// ListTransactions returns the ledger filtered by an optional free-text
// search over customer fields and item, and an optional type filter.
func (s *Service) ListTransactions(ctx context.Context, search, txType string) ([]domain.Transaction, error) {
	transactions, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}

	search = strings.ToLower(strings.TrimSpace(search))
	txType = strings.TrimSpace(txType)
	if search == "" && txType == "" {
		return transactions, nil
	}

	result := make([]domain.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if txType != "" && tx.Type != txType {
			continue
		}
		if search != "" && !transactionMatchesSearch(tx, search) {
			continue
		}
		result = append(result, tx)
	}
	return result, nil
}

func transactionMatchesSearch(tx domain.Transaction, search string) bool {
	for _, field := range []string{tx.CustomerName, tx.Phone, tx.CNIC, tx.Item, tx.TransactionID, tx.Brand, tx.Model, tx.IMEI} {
		if field != "" && strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

func (s *Service) GetTransaction(ctx context.Context, id string) (domain.Transaction, error) {
	tx, err := s.repo.FindTransactionByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.Transaction{}, err
	}
	return *tx, nil
}

func (s *Service) ListExpenditures(ctx context.Context) ([]domain.Expenditure, error) {
	return s.repo.ListExpenditures(ctx)
}

func (s *Service) ListPayments(ctx context.Context) ([]domain.Payment, error) {
	return s.repo.ListPayments(ctx)
}

func (s *Service) ListAdvances(ctx context.Context) ([]domain.CustomerAdvance, error) {
	return s.repo.ListAdvances(ctx)
}
