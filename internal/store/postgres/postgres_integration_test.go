package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"mobimaster/backend/internal/domain"
)

func TestAdvanceAndBalanceRecords(t *testing.T) {
	databaseURL := os.Getenv("MOBIMASTER_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set MOBIMASTER_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	stamp := time.Now().UnixNano()
	phone := fmt.Sprintf("0300%07d", stamp%10000000)
	txID := fmt.Sprintf("TXN-IT-%d", stamp)
	name := fmt.Sprintf("Integration Customer %d", stamp)

	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM transactions WHERE transaction_id = $1`, txID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM payments WHERE phone = $1`, phone)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM customer_advances WHERE phone = $1`, phone)
	})

	if _, err := s.AppendTransaction(ctx, domain.Transaction{
		Date:          "2026-08-26",
		Time:          "14:30:00",
		Type:          domain.TxTypeSale,
		Category:      domain.CategoryMobile,
		Item:          "Samsung A15 (Black, 128GB)",
		Quantity:      1,
		SellingPrice:  40000,
		CostPrice:     30000,
		Profit:        10000,
		PaidAmount:    15000,
		LeftAmount:    25000,
		CustomerName:  name,
		Phone:         phone,
		TransactionID: txID,
		Status:        domain.StatusPending,
	}); err != nil {
		t.Fatalf("append transaction: %v", err)
	}

	// Duplicate transaction ids are rejected.
	if _, err := s.AppendTransaction(ctx, domain.Transaction{TransactionID: txID, Quantity: 1}); err == nil {
		t.Fatalf("expected duplicate transaction id to be rejected")
	}

	if _, err := s.AppendPayment(ctx, domain.Payment{
		Date:          "2026-08-26",
		Time:          "15:00:00",
		CustomerName:  name,
		Phone:         phone,
		Amount:        5000,
		TransactionID: txID,
		PaymentType:   domain.PaymentTypeCash,
	}); err != nil {
		t.Fatalf("append payment: %v", err)
	}

	adv, err := s.AdjustAdvance(ctx, name, phone, "", 3000)
	if err != nil {
		t.Fatalf("adjust advance (create): %v", err)
	}
	if adv.AdvanceBalance != 3000 {
		t.Fatalf("expected advance 3000, got %d", adv.AdvanceBalance)
	}

	adv, err = s.AdjustAdvance(ctx, "", phone, "", -1000)
	if err != nil {
		t.Fatalf("adjust advance (decrement): %v", err)
	}
	if adv.AdvanceBalance != 2000 {
		t.Fatalf("expected advance 2000 after decrement, got %d", adv.AdvanceBalance)
	}

	records, err := s.CustomerRecords(ctx, phone)
	if err != nil {
		t.Fatalf("customer records: %v", err)
	}
	if len(records.Transactions) != 1 || len(records.Payments) != 1 || len(records.Advances) != 1 {
		t.Fatalf("unexpected record counts: %d/%d/%d",
			len(records.Transactions), len(records.Payments), len(records.Advances))
	}

	found, err := s.FindTransactionByID(ctx, txID)
	if err != nil {
		t.Fatalf("find transaction: %v", err)
	}
	if found.LeftAmount != 25000 {
		t.Fatalf("expected left amount 25000, got %d", found.LeftAmount)
	}
}
