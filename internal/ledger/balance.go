// Package ledger holds the pure bookkeeping computations: customer balance
// netting and period report aggregation. Nothing here touches storage.
package ledger

import (
	"mobimaster/backend/internal/domain"
)

// CustomerBalance folds a customer's transactions, standalone payments and
// advance credit into one settled view. The records are assumed to already
// be filtered to a single identifier; the fold is deterministic:
//
//  1. Sum selling, paid and outstanding over the transactions.
//  2. Sum the advance records.
//  3. Fold standalone payments into paid, reducing outstanding.
//  4. Net the advance against whatever is still outstanding.
//
// The returned outstanding figure is never negative, and the returned
// advance is the post-netting remainder. Read only.
func CustomerBalance(records domain.CustomerRecords) domain.CustomerBalance {
	balance := domain.CustomerBalance{
		Transactions: records.Transactions,
	}
	if balance.Transactions == nil {
		balance.Transactions = []domain.Transaction{}
	}

	for _, tx := range records.Transactions {
		balance.TotalAmount += tx.SellingPrice
		balance.TotalPaid += tx.PaidAmount
		balance.TotalLeft += tx.LeftAmount
	}
	for _, adv := range records.Advances {
		balance.AdvanceBalance += adv.AdvanceBalance
	}

	var additional int64
	for _, p := range records.Payments {
		additional += p.Amount
	}
	balance.TotalPaid += additional
	balance.TotalLeft -= additional

	if balance.AdvanceBalance > 0 && balance.TotalLeft > 0 {
		if balance.AdvanceBalance >= balance.TotalLeft {
			balance.AdvanceBalance -= balance.TotalLeft
			balance.TotalLeft = 0
			balance.TotalPaid = balance.TotalAmount
		} else {
			balance.TotalLeft -= balance.AdvanceBalance
			balance.TotalPaid += balance.AdvanceBalance
			balance.AdvanceBalance = 0
		}
	}

	if balance.TotalLeft < 0 {
		balance.TotalLeft = 0
	}
	return balance
}

// NetAdvance applies available advance credit against an outstanding amount
// once, consuming at most the full advance or the full outstanding figure.
// It returns the applied amount plus the remaining outstanding and advance.
func NetAdvance(outstanding, advance int64) (applied, leftAfter, advanceAfter int64) {
	if advance <= 0 || outstanding <= 0 {
		return 0, outstanding, advance
	}
	if advance >= outstanding {
		return outstanding, 0, advance - outstanding
	}
	return advance, outstanding - advance, 0
}
