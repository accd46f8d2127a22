// Package postgres backs the shop ledger with PostgreSQL for deployments
// that outgrow the JSON snapshot file. Rows keep their insertion order via
// a bigserial key so exports and balance runs see the ledger the same way
// the file store does.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"mobimaster/backend/internal/domain"
	"mobimaster/backend/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ensureSchema creates the ledger tables on first run. A single-shop
// deployment has no migration tooling, so the store owns its schema the
// same way the snapshot file store owns its file.
func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS transactions (
			seq             bigserial PRIMARY KEY,
			transaction_id  text NOT NULL UNIQUE,
			entry_date      text NOT NULL,
			entry_time      text NOT NULL,
			tx_type         text NOT NULL,
			category        text NOT NULL,
			item            text NOT NULL DEFAULT '',
			brand           text NOT NULL DEFAULT '',
			model           text NOT NULL DEFAULT '',
			color           text NOT NULL DEFAULT '',
			storage         text NOT NULL DEFAULT '',
			quantity        integer NOT NULL DEFAULT 1,
			selling_price   bigint NOT NULL DEFAULT 0,
			cost_price      bigint NOT NULL DEFAULT 0,
			profit          bigint NOT NULL DEFAULT 0,
			paid_amount     bigint NOT NULL DEFAULT 0,
			left_amount     bigint NOT NULL DEFAULT 0,
			customer_name   text NOT NULL DEFAULT '',
			phone           text NOT NULL DEFAULT '',
			cnic            text NOT NULL DEFAULT '',
			address         text NOT NULL DEFAULT '',
			warranty        text NOT NULL DEFAULT '',
			compatible_with text NOT NULL DEFAULT '',
			status          text NOT NULL DEFAULT '',
			imei            text NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS expenditures (
			seq         bigserial PRIMARY KEY,
			entry_date  text NOT NULL,
			entry_time  text NOT NULL,
			category    text NOT NULL,
			amount      bigint NOT NULL,
			description text NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS payments (
			seq            bigserial PRIMARY KEY,
			entry_date     text NOT NULL,
			entry_time     text NOT NULL,
			customer_name  text NOT NULL DEFAULT '',
			phone          text NOT NULL DEFAULT '',
			cnic           text NOT NULL DEFAULT '',
			amount         bigint NOT NULL,
			transaction_id text NOT NULL DEFAULT '',
			payment_type   text NOT NULL DEFAULT '',
			notes          text NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS customer_advances (
			seq             bigserial PRIMARY KEY,
			customer_name   text NOT NULL DEFAULT '',
			phone           text NOT NULL DEFAULT '',
			cnic            text NOT NULL DEFAULT '',
			advance_balance bigint NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS operator_credentials (
			id              integer PRIMARY KEY CHECK (id = 1),
			username        text NOT NULL,
			password_hash   text NOT NULL,
			reset_code_hash text NOT NULL
		);
	`)
	return err
}

const transactionColumns = `
	entry_date, entry_time, tx_type, category, item, brand, model, color, storage,
	quantity, selling_price, cost_price, profit, paid_amount, left_amount,
	customer_name, phone, cnic, address, warranty, compatible_with,
	transaction_id, status, imei`

func scanTransaction(rows interface{ Scan(...any) error }) (domain.Transaction, error) {
	var tx domain.Transaction
	err := rows.Scan(
		&tx.Date, &tx.Time, &tx.Type, &tx.Category, &tx.Item, &tx.Brand, &tx.Model,
		&tx.Color, &tx.Storage, &tx.Quantity, &tx.SellingPrice, &tx.CostPrice,
		&tx.Profit, &tx.PaidAmount, &tx.LeftAmount, &tx.CustomerName, &tx.Phone,
		&tx.CNIC, &tx.Address, &tx.Warranty, &tx.CompatibleWith,
		&tx.TransactionID, &tx.Status, &tx.IMEI)
	return tx, err
}

func (s *Store) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		ORDER BY seq
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]domain.Transaction, 0, 128)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return transactions, nil
}

func (s *Store) AppendTransaction(ctx context.Context, tx domain.Transaction) (*domain.Transaction, error) {
	if tx.TransactionID == "" {
		return nil, store.ErrInvalidRecord
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)
	`, tx.Date, tx.Time, tx.Type, tx.Category, tx.Item, tx.Brand, tx.Model,
		tx.Color, tx.Storage, tx.Quantity, tx.SellingPrice, tx.CostPrice,
		tx.Profit, tx.PaidAmount, tx.LeftAmount, tx.CustomerName, tx.Phone,
		tx.CNIC, tx.Address, tx.Warranty, tx.CompatibleWith,
		tx.TransactionID, tx.Status, tx.IMEI)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidRecord
		}
		return nil, err
	}

	created := tx
	return &created, nil
}

func (s *Store) FindTransactionByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE transaction_id = $1
	`, id)
	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

func (s *Store) ListExpenditures(ctx context.Context) ([]domain.Expenditure, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT entry_date, entry_time, category, amount, description
		FROM expenditures
		ORDER BY seq
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenditures := make([]domain.Expenditure, 0, 64)
	for rows.Next() {
		var exp domain.Expenditure
		if err := rows.Scan(&exp.Date, &exp.Time, &exp.Category, &exp.Amount, &exp.Description); err != nil {
			return nil, err
		}
		expenditures = append(expenditures, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return expenditures, nil
}

func (s *Store) AppendExpenditure(ctx context.Context, exp domain.Expenditure) (*domain.Expenditure, error) {
	if exp.Amount <= 0 {
		return nil, store.ErrInvalidRecord
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO expenditures (entry_date, entry_time, category, amount, description)
		VALUES ($1,$2,$3,$4,$5)
	`, exp.Date, exp.Time, exp.Category, exp.Amount, exp.Description)
	if err != nil {
		return nil, err
	}

	created := exp
	return &created, nil
}

func (s *Store) ListPayments(ctx context.Context) ([]domain.Payment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT entry_date, entry_time, customer_name, phone, cnic, amount, transaction_id, payment_type, notes
		FROM payments
		ORDER BY seq
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0, 64)
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.Date, &p.Time, &p.CustomerName, &p.Phone, &p.CNIC,
			&p.Amount, &p.TransactionID, &p.PaymentType, &p.Notes); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return payments, nil
}

func (s *Store) AppendPayment(ctx context.Context, payment domain.Payment) (*domain.Payment, error) {
	if payment.Amount <= 0 {
		return nil, store.ErrInvalidRecord
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (entry_date, entry_time, customer_name, phone, cnic, amount, transaction_id, payment_type, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, payment.Date, payment.Time, payment.CustomerName, payment.Phone, payment.CNIC,
		payment.Amount, payment.TransactionID, payment.PaymentType, payment.Notes)
	if err != nil {
		return nil, err
	}

	created := payment
	return &created, nil
}

func (s *Store) ListAdvances(ctx context.Context) ([]domain.CustomerAdvance, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT customer_name, phone, cnic, advance_balance
		FROM customer_advances
		ORDER BY seq
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	advances := make([]domain.CustomerAdvance, 0, 32)
	for rows.Next() {
		var adv domain.CustomerAdvance
		if err := rows.Scan(&adv.CustomerName, &adv.Phone, &adv.CNIC, &adv.AdvanceBalance); err != nil {
			return nil, err
		}
		advances = append(advances, adv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return advances, nil
}

// identityPredicate matches a row when any of its non-blank identity
// columns equals the corresponding argument. Blank columns never match.
const identityPredicate = `
	(customer_name <> '' AND customer_name = $1)
	OR (phone <> '' AND phone = $2)
	OR (cnic <> '' AND cnic = $3)`

func (s *Store) AdjustAdvance(ctx context.Context, name, phone, cnic string, delta int64) (*domain.CustomerAdvance, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = dbTx.Rollback() }()

	var adv domain.CustomerAdvance
	var seq int64
	err = dbTx.QueryRowContext(ctx, `
		SELECT seq, customer_name, phone, cnic, advance_balance
		FROM customer_advances
		WHERE `+identityPredicate+`
		ORDER BY seq
		LIMIT 1
		FOR UPDATE
	`, name, phone, cnic).Scan(&seq, &adv.CustomerName, &adv.Phone, &adv.CNIC, &adv.AdvanceBalance)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		adv = domain.CustomerAdvance{CustomerName: name, Phone: phone, CNIC: cnic, AdvanceBalance: delta}
		if _, err := dbTx.ExecContext(ctx, `
			INSERT INTO customer_advances (customer_name, phone, cnic, advance_balance)
			VALUES ($1,$2,$3,$4)
		`, adv.CustomerName, adv.Phone, adv.CNIC, adv.AdvanceBalance); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		adv.AdvanceBalance += delta
		if _, err := dbTx.ExecContext(ctx, `
			UPDATE customer_advances SET advance_balance = $2 WHERE seq = $1
		`, seq, adv.AdvanceBalance); err != nil {
			return nil, err
		}
	}

	if err := dbTx.Commit(); err != nil {
		return nil, err
	}
	return &adv, nil
}

func (s *Store) CustomerRecords(ctx context.Context, identifier string) (*domain.CustomerRecords, error) {
	records := &domain.CustomerRecords{}
	if identifier == "" {
		return records, nil
	}

	txRows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE `+identityPredicate+`
		ORDER BY seq
	`, identifier, identifier, identifier)
	if err != nil {
		return nil, err
	}
	defer txRows.Close()
	for txRows.Next() {
		tx, err := scanTransaction(txRows)
		if err != nil {
			return nil, err
		}
		records.Transactions = append(records.Transactions, tx)
	}
	if err := txRows.Err(); err != nil {
		return nil, err
	}

	payRows, err := s.db.QueryContext(ctx, `
		SELECT entry_date, entry_time, customer_name, phone, cnic, amount, transaction_id, payment_type, notes
		FROM payments
		WHERE `+identityPredicate+`
		ORDER BY seq
	`, identifier, identifier, identifier)
	if err != nil {
		return nil, err
	}
	defer payRows.Close()
	for payRows.Next() {
		var p domain.Payment
		if err := payRows.Scan(&p.Date, &p.Time, &p.CustomerName, &p.Phone, &p.CNIC,
			&p.Amount, &p.TransactionID, &p.PaymentType, &p.Notes); err != nil {
			return nil, err
		}
		records.Payments = append(records.Payments, p)
	}
	if err := payRows.Err(); err != nil {
		return nil, err
	}

	advRows, err := s.db.QueryContext(ctx, `
		SELECT customer_name, phone, cnic, advance_balance
		FROM customer_advances
		WHERE `+identityPredicate+`
		ORDER BY seq
	`, identifier, identifier, identifier)
	if err != nil {
		return nil, err
	}
	defer advRows.Close()
	for advRows.Next() {
		var adv domain.CustomerAdvance
		if err := advRows.Scan(&adv.CustomerName, &adv.Phone, &adv.CNIC, &adv.AdvanceBalance); err != nil {
			return nil, err
		}
		records.Advances = append(records.Advances, adv)
	}
	if err := advRows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func (s *Store) LoadCredentials(ctx context.Context) (*domain.Credentials, error) {
	var creds domain.Credentials
	err := s.db.QueryRowContext(ctx, `
		SELECT username, password_hash, reset_code_hash
		FROM operator_credentials
		WHERE id = 1
	`).Scan(&creds.Username, &creds.PasswordHash, &creds.ResetCodeHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &creds, nil
}

func (s *Store) SaveCredentials(ctx context.Context, creds domain.Credentials) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO operator_credentials (id, username, password_hash, reset_code_hash)
		VALUES (1,$1,$2,$3)
		ON CONFLICT (id) DO UPDATE
		SET username = EXCLUDED.username,
		    password_hash = EXCLUDED.password_hash,
		    reset_code_hash = EXCLUDED.reset_code_hash
	`, creds.Username, creds.PasswordHash, creds.ResetCodeHash)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
