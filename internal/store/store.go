package store

import (
	"context"
	"errors"

	"mobimaster/backend/internal/domain"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidRecord = errors.New("invalid record")
)

type Repository interface {
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)
	AppendTransaction(ctx context.Context, tx domain.Transaction) (*domain.Transaction, error)
	FindTransactionByID(ctx context.Context, id string) (*domain.Transaction, error)
	ListExpenditures(ctx context.Context) ([]domain.Expenditure, error)
	AppendExpenditure(ctx context.Context, exp domain.Expenditure) (*domain.Expenditure, error)
	ListPayments(ctx context.Context) ([]domain.Payment, error)
	AppendPayment(ctx context.Context, payment domain.Payment) (*domain.Payment, error)
	ListAdvances(ctx context.Context) ([]domain.CustomerAdvance, error)
	// AdjustAdvance adds delta to the first advance record whose name,
	// phone or CNIC matches, creating the record when none matches.
	AdjustAdvance(ctx context.Context, name, phone, cnic string, delta int64) (*domain.CustomerAdvance, error)
	// CustomerRecords returns the transactions, payments and advances
	// where the identifier exactly matches name, phone or CNIC.
	CustomerRecords(ctx context.Context, identifier string) (*domain.CustomerRecords, error)
	LoadCredentials(ctx context.Context) (*domain.Credentials, error)
	SaveCredentials(ctx context.Context, creds domain.Credentials) error
}
