// Package export renders ledger records into the downloadable formats the
// dashboard offers: CSV dumps, printable HTML documents, a receipts ZIP
// bundle and an XLSX business report.
package export

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"mobimaster/backend/internal/domain"
)

// Column orders are frozen: existing spreadsheets built on prior exports
// depend on them. Advance_Balance on transactions is a legacy column that
// is always zero. Is_Advance is false on every payment row this system
// writes (advance deposits live in the advances collection) but legacy
// snapshot rows may still carry true.
var transactionColumns = []string{
	"Date", "Time", "Type", "Category", "Model", "Brand", "Item",
	"Color", "Storage", "Quantity", "Selling_Price", "Cost_Price",
	"Profit", "Paid_Amount", "Left_Amount", "Customer_Name",
	"Phone", "CNIC", "Address", "Warranty", "Compatible_With",
	"Transaction_ID", "Status", "Advance_Balance", "IMEI",
}

var expenditureColumns = []string{"Date", "Time", "Category", "Amount", "Description"}

var paymentColumns = []string{
	"Date", "Time", "Customer_Name", "Phone", "CNIC",
	"Amount", "Transaction_ID", "Payment_Type", "Notes", "Is_Advance",
}

var advanceColumns = []string{"Customer_Name", "Phone", "CNIC", "Advance_Balance"}

func TransactionsCSV(transactions []domain.Transaction) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(transactionColumns); err != nil {
		return nil, err
	}
	for _, tx := range transactions {
		row := []string{
			tx.Date, tx.Time, tx.Type, tx.Category, tx.Model, tx.Brand, tx.Item,
			tx.Color, tx.Storage, strconv.Itoa(tx.Quantity),
			strconv.FormatInt(tx.SellingPrice, 10), strconv.FormatInt(tx.CostPrice, 10),
			strconv.FormatInt(tx.Profit, 10), strconv.FormatInt(tx.PaidAmount, 10),
			strconv.FormatInt(tx.LeftAmount, 10), tx.CustomerName,
			tx.Phone, tx.CNIC, tx.Address, tx.Warranty, tx.CompatibleWith,
			tx.TransactionID, tx.Status, "0", tx.IMEI,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func ExpendituresCSV(expenditures []domain.Expenditure) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(expenditureColumns); err != nil {
		return nil, err
	}
	for _, exp := range expenditures {
		row := []string{exp.Date, exp.Time, exp.Category, strconv.FormatInt(exp.Amount, 10), exp.Description}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func PaymentsCSV(payments []domain.Payment) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(paymentColumns); err != nil {
		return nil, err
	}
	for _, p := range payments {
		row := []string{
			p.Date, p.Time, p.CustomerName, p.Phone, p.CNIC,
			strconv.FormatInt(p.Amount, 10), p.TransactionID, p.PaymentType, p.Notes,
			strconv.FormatBool(p.IsAdvance),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func AdvancesCSV(advances []domain.CustomerAdvance) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(advanceColumns); err != nil {
		return nil, err
	}
	for _, adv := range advances {
		row := []string{adv.CustomerName, adv.Phone, adv.CNIC, strconv.FormatInt(adv.AdvanceBalance, 10)}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
