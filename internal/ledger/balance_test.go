package ledger

import (
	"testing"

	"mobimaster/backend/internal/domain"
)

func TestCustomerBalanceNoRecords(t *testing.T) {
	balance := CustomerBalance(domain.CustomerRecords{})

	if balance.TotalAmount != 0 || balance.TotalPaid != 0 || balance.TotalLeft != 0 || balance.AdvanceBalance != 0 {
		t.Fatalf("expected all-zero balance, got %+v", balance)
	}
	if len(balance.Transactions) != 0 {
		t.Fatalf("expected empty transaction set")
	}
}

func TestCustomerBalanceAdvanceOnly(t *testing.T) {
	balance := CustomerBalance(domain.CustomerRecords{
		Advances: []domain.CustomerAdvance{
			{CustomerName: "Ali Raza", Phone: "03001234567", AdvanceBalance: 3500},
		},
	})

	if balance.AdvanceBalance != 3500 {
		t.Fatalf("expected advance 3500, got %d", balance.AdvanceBalance)
	}
	if balance.TotalAmount != 0 || balance.TotalLeft != 0 {
		t.Fatalf("expected zero transaction totals, got %+v", balance)
	}
}

func TestCustomerBalanceAdvanceCoversOutstanding(t *testing.T) {
	balance := CustomerBalance(domain.CustomerRecords{
		Transactions: []domain.Transaction{
			{Phone: "03001234567", SellingPrice: 10000, PaidAmount: 4000, LeftAmount: 6000},
		},
		Advances: []domain.CustomerAdvance{
			{Phone: "03001234567", AdvanceBalance: 6000},
		},
	})

	if balance.TotalLeft != 0 {
		t.Fatalf("expected total left 0, got %d", balance.TotalLeft)
	}
	if balance.TotalPaid != 10000 {
		t.Fatalf("expected total paid 10000, got %d", balance.TotalPaid)
	}
	if balance.AdvanceBalance != 0 {
		t.Fatalf("expected advance consumed, got %d", balance.AdvanceBalance)
	}
}

func TestCustomerBalancePartialAdvance(t *testing.T) {
	balance := CustomerBalance(domain.CustomerRecords{
		Transactions: []domain.Transaction{
			{Phone: "03001234567", SellingPrice: 8000, PaidAmount: 3000, LeftAmount: 5000},
		},
		Advances: []domain.CustomerAdvance{
			{Phone: "03001234567", AdvanceBalance: 2000},
		},
	})

	if balance.TotalLeft != 3000 {
		t.Fatalf("expected total left 3000, got %d", balance.TotalLeft)
	}
	if balance.TotalPaid != 5000 {
		t.Fatalf("expected total paid 5000, got %d", balance.TotalPaid)
	}
	if balance.AdvanceBalance != 0 {
		t.Fatalf("expected advance fully consumed, got %d", balance.AdvanceBalance)
	}
}

func TestCustomerBalanceFoldsStandalonePayments(t *testing.T) {
	balance := CustomerBalance(domain.CustomerRecords{
		Transactions: []domain.Transaction{
			{Phone: "03001234567", SellingPrice: 12000, PaidAmount: 2000, LeftAmount: 10000},
		},
		Payments: []domain.Payment{
			{Phone: "03001234567", Amount: 4000},
			{Phone: "03001234567", Amount: 1000},
		},
	})

	if balance.TotalPaid != 7000 {
		t.Fatalf("expected total paid 7000, got %d", balance.TotalPaid)
	}
	if balance.TotalLeft != 5000 {
		t.Fatalf("expected total left 5000, got %d", balance.TotalLeft)
	}
}

func TestCustomerBalanceOverpaymentFloorsAtZero(t *testing.T) {
	balance := CustomerBalance(domain.CustomerRecords{
		Transactions: []domain.Transaction{
			{Phone: "03001234567", SellingPrice: 5000, PaidAmount: 5000, LeftAmount: 0},
		},
		Payments: []domain.Payment{
			{Phone: "03001234567", Amount: 2000},
		},
	})

	if balance.TotalLeft != 0 {
		t.Fatalf("expected total left floored at 0, got %d", balance.TotalLeft)
	}
}

func TestNetAdvance(t *testing.T) {
	cases := []struct {
		name                             string
		outstanding, advance             int64
		applied, leftAfter, advanceAfter int64
	}{
		{"advance covers all", 6000, 6000, 6000, 0, 0},
		{"advance exceeds", 4000, 9000, 4000, 0, 5000},
		{"advance partial", 5000, 2000, 2000, 3000, 0},
		{"no advance", 5000, 0, 0, 5000, 0},
		{"nothing outstanding", 0, 3000, 0, 0, 3000},
	}

	for _, tc := range cases {
		applied, left, advance := NetAdvance(tc.outstanding, tc.advance)
		if applied != tc.applied || left != tc.leftAfter || advance != tc.advanceAfter {
			t.Fatalf("%s: got applied=%d left=%d advance=%d, want %d/%d/%d",
				tc.name, applied, left, advance, tc.applied, tc.leftAfter, tc.advanceAfter)
		}
		if left < 0 || advance < 0 {
			t.Fatalf("%s: netting produced a negative balance", tc.name)
		}
	}
}
