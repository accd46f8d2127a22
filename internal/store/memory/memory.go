package memory

import (
	"context"
	"strings"
	"sync"

	"mobimaster/backend/internal/domain"
	"mobimaster/backend/internal/store"
)

type Store struct {
	mu           sync.RWMutex
	transactions []domain.Transaction
	expenditures []domain.Expenditure
	payments     []domain.Payment
	advances     []domain.CustomerAdvance
	credentials  *domain.Credentials
}

func New() *Store {
	return &Store{
		transactions: make([]domain.Transaction, 0, 64),
		expenditures: make([]domain.Expenditure, 0, 32),
		payments:     make([]domain.Payment, 0, 32),
		advances:     make([]domain.CustomerAdvance, 0, 8),
	}
}

// NewSeeded returns a store pre-filled with a small ledger for dev/demo mode.
func NewSeeded() *Store {
	s := New()
	s.transactions = append(s.transactions,
		domain.Transaction{
			Date: "2026-08-01", Time: "11:05:00", Type: domain.TxTypeSale,
			Category: domain.CategoryMobile, Item: "Samsung A15 (Black, 128GB)",
			Brand: "Samsung", Model: "A15", Color: "Black", Storage: "128GB",
			Quantity: 1, SellingPrice: 52000, CostPrice: 47000, Profit: 5000,
			PaidAmount: 40000, LeftAmount: 12000,
			CustomerName: "Ali Raza", Phone: "03001234567",
			CNIC: "35202-1234567-1", TransactionID: "TXN-00001",
			Status: domain.StatusPending, IMEI: "356789104563217",
		},
		domain.Transaction{
			Date: "2026-08-02", Time: "16:40:00", Type: domain.TxTypeSale,
			Category: domain.CategoryAccessories, Item: "Tempered Glass",
			Quantity: 2, SellingPrice: 600, CostPrice: 150, Profit: 300,
			PaidAmount: 600, LeftAmount: 0,
			CustomerName: "Walk-in", Phone: "03219876543",
			TransactionID: "TXN-00002", Status: domain.StatusCompleted,
		},
	)
	s.expenditures = append(s.expenditures, domain.Expenditure{
		Date: "2026-08-01", Time: "09:10:00", Category: "Shop Rent",
		Amount: 25000, Description: "August rent",
	})
	return s
}

func (s *Store) ListTransactions(_ context.Context) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTransactions(s.transactions), nil
}

func (s *Store) AppendTransaction(_ context.Context, tx domain.Transaction) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tx.TransactionID == "" {
		return nil, store.ErrInvalidRecord
	}
	s.transactions = append(s.transactions, tx)
	created := tx
	return &created, nil
}

func (s *Store) FindTransactionByID(_ context.Context, id string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, tx := range s.transactions {
		if tx.TransactionID == id {
			found := tx
			return &found, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListExpenditures(_ context.Context) ([]domain.Expenditure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Expenditure, len(s.expenditures))
	copy(result, s.expenditures)
	return result, nil
}

func (s *Store) AppendExpenditure(_ context.Context, exp domain.Expenditure) (*domain.Expenditure, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if exp.Amount <= 0 {
		return nil, store.ErrInvalidRecord
	}
	s.expenditures = append(s.expenditures, exp)
	created := exp
	return &created, nil
}

func (s *Store) ListPayments(_ context.Context) ([]domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Payment, len(s.payments))
	copy(result, s.payments)
	return result, nil
}

func (s *Store) AppendPayment(_ context.Context, payment domain.Payment) (*domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if payment.Amount <= 0 {
		return nil, store.ErrInvalidRecord
	}
	s.payments = append(s.payments, payment)
	created := payment
	return &created, nil
}

func (s *Store) ListAdvances(_ context.Context) ([]domain.CustomerAdvance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.CustomerAdvance, len(s.advances))
	copy(result, s.advances)
	return result, nil
}

func (s *Store) AdjustAdvance(_ context.Context, name, phone, cnic string, delta int64) (*domain.CustomerAdvance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.advances {
		if advanceMatches(s.advances[i], name, phone, cnic) {
			s.advances[i].AdvanceBalance += delta
			updated := s.advances[i]
			return &updated, nil
		}
	}

	created := domain.CustomerAdvance{
		CustomerName:   name,
		Phone:          phone,
		CNIC:           cnic,
		AdvanceBalance: delta,
	}
	s.advances = append(s.advances, created)
	return &created, nil
}

func (s *Store) CustomerRecords(_ context.Context, identifier string) (*domain.CustomerRecords, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := &domain.CustomerRecords{
		Transactions: make([]domain.Transaction, 0, 4),
		Payments:     make([]domain.Payment, 0, 4),
		Advances:     make([]domain.CustomerAdvance, 0, 1),
	}
	for _, tx := range s.transactions {
		if identityMatches(identifier, tx.CustomerName, tx.Phone, tx.CNIC) {
			records.Transactions = append(records.Transactions, tx)
		}
	}
	for _, p := range s.payments {
		if identityMatches(identifier, p.CustomerName, p.Phone, p.CNIC) {
			records.Payments = append(records.Payments, p)
		}
	}
	for _, adv := range s.advances {
		if identityMatches(identifier, adv.CustomerName, adv.Phone, adv.CNIC) {
			records.Advances = append(records.Advances, adv)
		}
	}
	return records, nil
}

func (s *Store) LoadCredentials(_ context.Context) (*domain.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.credentials == nil {
		return nil, store.ErrNotFound
	}
	creds := *s.credentials
	return &creds, nil
}

func (s *Store) SaveCredentials(_ context.Context, creds domain.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(creds.Username) == "" || creds.PasswordHash == "" {
		return store.ErrInvalidRecord
	}
	s.credentials = &creds
	return nil
}

// identityMatches reports whether a lookup identifier equals any of the
// record's name, phone or CNIC. Comparison is exact and case sensitive;
// blank record fields never match.
func identityMatches(identifier, name, phone, cnic string) bool {
	if identifier == "" {
		return false
	}
	return (name != "" && identifier == name) ||
		(phone != "" && identifier == phone) ||
		(cnic != "" && identifier == cnic)
}

func advanceMatches(adv domain.CustomerAdvance, name, phone, cnic string) bool {
	return (name != "" && adv.CustomerName == name) ||
		(phone != "" && adv.Phone == phone) ||
		(cnic != "" && adv.CNIC == cnic)
}

func cloneTransactions(src []domain.Transaction) []domain.Transaction {
	result := make([]domain.Transaction, len(src))
	copy(result, src)
	return result
}
