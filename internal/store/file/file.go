// Package file persists the whole ledger as a single JSON snapshot that is
// rewritten after every mutation. Reads are served from memory; a crash
// between mutation and flush loses the unflushed change only.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"mobimaster/backend/internal/domain"
	"mobimaster/backend/internal/store"
)

type snapshot struct {
	Transactions []domain.Transaction     `json:"transactions"`
	Expenditures []domain.Expenditure     `json:"expenditures"`
	Payments     []domain.Payment         `json:"payments"`
	Advances     []domain.CustomerAdvance `json:"advances"`
}

type Store struct {
	mu       sync.RWMutex
	dataPath string
	authPath string
	data     snapshot
	creds    *domain.Credentials
}

// Open loads the snapshot at dataPath, starting empty when the file does
// not exist. A snapshot that fails to decode is treated as corrupt and
// moved aside rather than silently overwritten.
func Open(dataPath, authPath string) (*Store, error) {
	s := &Store{
		dataPath: dataPath,
		authPath: authPath,
		data: snapshot{
			Transactions: []domain.Transaction{},
			Expenditures: []domain.Expenditure{},
			Payments:     []domain.Payment{},
			Advances:     []domain.CustomerAdvance{},
		},
	}

	raw, err := os.ReadFile(dataPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Printf("[file-store] no snapshot at %s, starting empty", dataPath)
	case err != nil:
		return nil, fmt.Errorf("read snapshot: %w", err)
	default:
		if err := json.Unmarshal(raw, &s.data); err != nil {
			backup := dataPath + ".corrupt"
			if renameErr := os.Rename(dataPath, backup); renameErr != nil {
				return nil, fmt.Errorf("decode snapshot: %w", err)
			}
			log.Printf("[file-store] WARN: snapshot unreadable (%v), moved to %s, starting empty", err, backup)
			s.data = snapshot{
				Transactions: []domain.Transaction{},
				Expenditures: []domain.Expenditure{},
				Payments:     []domain.Payment{},
				Advances:     []domain.CustomerAdvance{},
			}
		}
	}

	if authPath != "" {
		rawAuth, err := os.ReadFile(authPath)
		if err == nil {
			var creds domain.Credentials
			if err := json.Unmarshal(rawAuth, &creds); err == nil && creds.Username != "" {
				s.creds = &creds
			} else {
				log.Printf("[file-store] WARN: credential file unreadable, it will be regenerated")
			}
		}
	}

	return s, nil
}

// flush rewrites the whole snapshot. Callers hold the write lock.
func (s *Store) flush() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	tmp := s.dataPath + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.dataPath), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.dataPath); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

func (s *Store) ListTransactions(_ context.Context) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Transaction, len(s.data.Transactions))
	copy(result, s.data.Transactions)
	return result, nil
}

func (s *Store) AppendTransaction(_ context.Context, tx domain.Transaction) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tx.TransactionID == "" {
		return nil, store.ErrInvalidRecord
	}
	s.data.Transactions = append(s.data.Transactions, tx)
	if err := s.flush(); err != nil {
		s.data.Transactions = s.data.Transactions[:len(s.data.Transactions)-1]
		return nil, err
	}
	created := tx
	return &created, nil
}

func (s *Store) FindTransactionByID(_ context.Context, id string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, tx := range s.data.Transactions {
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

	result := make([]domain.Expenditure, len(s.data.Expenditures))
	copy(result, s.data.Expenditures)
	return result, nil
}

func (s *Store) AppendExpenditure(_ context.Context, exp domain.Expenditure) (*domain.Expenditure, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if exp.Amount <= 0 {
		return nil, store.ErrInvalidRecord
	}
	s.data.Expenditures = append(s.data.Expenditures, exp)
	if err := s.flush(); err != nil {
		s.data.Expenditures = s.data.Expenditures[:len(s.data.Expenditures)-1]
		return nil, err
	}
	created := exp
	return &created, nil
}

func (s *Store) ListPayments(_ context.Context) ([]domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Payment, len(s.data.Payments))
	copy(result, s.data.Payments)
	return result, nil
}

func (s *Store) AppendPayment(_ context.Context, payment domain.Payment) (*domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if payment.Amount <= 0 {
		return nil, store.ErrInvalidRecord
	}
	s.data.Payments = append(s.data.Payments, payment)
	if err := s.flush(); err != nil {
		s.data.Payments = s.data.Payments[:len(s.data.Payments)-1]
		return nil, err
	}
	created := payment
	return &created, nil
}

func (s *Store) ListAdvances(_ context.Context) ([]domain.CustomerAdvance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.CustomerAdvance, len(s.data.Advances))
	copy(result, s.data.Advances)
	return result, nil
}

func (s *Store) AdjustAdvance(_ context.Context, name, phone, cnic string, delta int64) (*domain.CustomerAdvance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.data.Advances {
		adv := &s.data.Advances[i]
		if (name != "" && adv.CustomerName == name) ||
			(phone != "" && adv.Phone == phone) ||
			(cnic != "" && adv.CNIC == cnic) {
			prev := adv.AdvanceBalance
			adv.AdvanceBalance += delta
			if err := s.flush(); err != nil {
				adv.AdvanceBalance = prev
				return nil, err
			}
			updated := *adv
			return &updated, nil
		}
	}

	created := domain.CustomerAdvance{
		CustomerName:   name,
		Phone:          phone,
		CNIC:           cnic,
		AdvanceBalance: delta,
	}
	s.data.Advances = append(s.data.Advances, created)
	if err := s.flush(); err != nil {
		s.data.Advances = s.data.Advances[:len(s.data.Advances)-1]
		return nil, err
	}
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
	for _, tx := range s.data.Transactions {
		if matches(identifier, tx.CustomerName, tx.Phone, tx.CNIC) {
			records.Transactions = append(records.Transactions, tx)
		}
	}
	for _, p := range s.data.Payments {
		if matches(identifier, p.CustomerName, p.Phone, p.CNIC) {
			records.Payments = append(records.Payments, p)
		}
	}
	for _, adv := range s.data.Advances {
		if matches(identifier, adv.CustomerName, adv.Phone, adv.CNIC) {
			records.Advances = append(records.Advances, adv)
		}
	}
	return records, nil
}

func (s *Store) LoadCredentials(_ context.Context) (*domain.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.creds == nil {
		return nil, store.ErrNotFound
	}
	creds := *s.creds
	return &creds, nil
}

func (s *Store) SaveCredentials(_ context.Context, creds domain.Credentials) error {
	if strings.TrimSpace(creds.Username) == "" || creds.PasswordHash == "" {
		return store.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.authPath), 0o755); err != nil {
		return fmt.Errorf("create auth dir: %w", err)
	}
	tmp := s.authPath + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := os.Rename(tmp, s.authPath); err != nil {
		return fmt.Errorf("replace credentials: %w", err)
	}
	s.creds = &creds
	return nil
}

func matches(identifier, name, phone, cnic string) bool {
	if identifier == "" {
		return false
	}
	return (name != "" && identifier == name) ||
		(phone != "" && identifier == phone) ||
		(cnic != "" && identifier == cnic)
}
