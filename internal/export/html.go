package export

import (
	"bytes"
	"html/template"

	"mobimaster/backend/internal/domain"
)

// ShopInfo is the letterhead printed on every document.
type ShopInfo struct {
	Name    string
	Address string
	Phone   string
}

// All user-controlled fields are auto-escaped by html/template.
var receiptTmpl = template.Must(template.New("receipt").Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Receipt {{.Tx.TransactionID}}</title>
  <style>
    body { font-family: sans-serif; margin: 24px; max-width: 480px; }
    .head { text-align: center; border-bottom: 2px solid #333; padding-bottom: 8px; }
    table { width: 100%; border-collapse: collapse; margin-top: 12px; }
    td { padding: 4px 2px; font-size: 13px; }
    td.amount { text-align: right; }
    .totals td { border-top: 1px solid #333; font-weight: bold; }
    .footer { margin-top: 16px; font-size: 12px; text-align: center; color: #444; }
  </style>
</head>
<body>
  <div class="head">
    <h2>{{.Shop.Name}}</h2>
    <p>{{.Shop.Address}}<br/>{{.Shop.Phone}}</p>
  </div>
  <p>Receipt: {{.Tx.TransactionID}}<br/>Date: {{.Tx.Date}} {{.Tx.Time}}</p>
  <p>Customer: {{.Tx.CustomerName}}<br/>Phone: {{.Tx.Phone}}{{if .Tx.CNIC}}<br/>CNIC: {{.Tx.CNIC}}{{end}}</p>
  <table>
    <tr><td>Item</td><td class="amount">{{.Tx.Item}}</td></tr>
    {{if .Tx.Brand}}<tr><td>Brand / Model</td><td class="amount">{{.Tx.Brand}} {{.Tx.Model}}</td></tr>{{end}}
    {{if .Tx.Color}}<tr><td>Color / Storage</td><td class="amount">{{.Tx.Color}} / {{.Tx.Storage}}</td></tr>{{end}}
    {{if .Tx.IMEI}}<tr><td>IMEI</td><td class="amount">{{.Tx.IMEI}}</td></tr>{{end}}
    <tr><td>Quantity</td><td class="amount">{{.Tx.Quantity}}</td></tr>
    <tr><td>Unit Price</td><td class="amount">{{.UnitPrice}} PKR</td></tr>
    <tr class="totals"><td>Total</td><td class="amount">{{.Tx.SellingPrice}} PKR</td></tr>
    <tr><td>Paid</td><td class="amount">{{.Tx.PaidAmount}} PKR</td></tr>
    <tr><td>Balance Due</td><td class="amount">{{.Tx.LeftAmount}} PKR</td></tr>
    <tr><td>Status</td><td class="amount">{{.Tx.Status}}</td></tr>
  </table>
  {{if .Tx.Warranty}}<div class="footer">Warranty: {{.Tx.Warranty}}</div>{{end}}
  <div class="footer">Thank you for your business.</div>
</body>
</html>
`))

var expenditureTmpl = template.Must(template.New("expenditure").Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Expenditure Record</title>
  <style>
    body { font-family: sans-serif; margin: 24px; max-width: 480px; }
    .head { text-align: center; border-bottom: 2px solid #333; padding-bottom: 8px; }
    table { width: 100%; border-collapse: collapse; margin-top: 12px; }
    td { padding: 4px 2px; font-size: 13px; }
  </style>
</head>
<body>
  <div class="head"><h2>{{.Shop.Name}}</h2><p>Expenditure Record</p></div>
  <table>
    <tr><td>Date</td><td>{{.Exp.Date}} {{.Exp.Time}}</td></tr>
    <tr><td>Category</td><td>{{.Exp.Category}}</td></tr>
    <tr><td>Amount</td><td>{{.Exp.Amount}} PKR</td></tr>
    <tr><td>Description</td><td>{{.Exp.Description}}</td></tr>
  </table>
</body>
</html>
`))

var paymentTmpl = template.Must(template.New("payment").Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Payment Record</title>
  <style>
    body { font-family: sans-serif; margin: 24px; max-width: 480px; }
    .head { text-align: center; border-bottom: 2px solid #333; padding-bottom: 8px; }
    table { width: 100%; border-collapse: collapse; margin-top: 12px; }
    td { padding: 4px 2px; font-size: 13px; }
  </style>
</head>
<body>
  <div class="head"><h2>{{.Shop.Name}}</h2><p>Payment Record</p></div>
  <table>
    <tr><td>Date</td><td>{{.Payment.Date}} {{.Payment.Time}}</td></tr>
    <tr><td>Customer</td><td>{{.Payment.CustomerName}}</td></tr>
    <tr><td>Phone</td><td>{{.Payment.Phone}}</td></tr>
    <tr><td>Amount</td><td>{{.Payment.Amount}} PKR</td></tr>
    <tr><td>Method</td><td>{{.Payment.PaymentType}}</td></tr>
    {{if .Payment.TransactionID}}<tr><td>Against</td><td>{{.Payment.TransactionID}}</td></tr>{{end}}
    {{if .Payment.Notes}}<tr><td>Notes</td><td>{{.Payment.Notes}}</td></tr>{{end}}
  </table>
</body>
</html>
`))

var reportTmpl = template.Must(template.New("report").Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Business Report ({{.Report.Period}})</title>
  <style>
    body { font-family: sans-serif; margin: 24px; }
    table { width: 100%; border-collapse: collapse; margin-top: 8px; }
    th, td { border: 1px solid #ddd; padding: 6px; font-size: 13px; }
    h2, h3 { margin-bottom: 4px; }
  </style>
</head>
<body>
  <h2>{{.Shop.Name}} — Business Report</h2>
  <p>Period: {{.Report.Period}}{{if .Report.StartDate}} ({{.Report.StartDate}} to {{.Report.EndDate}}){{end}}</p>

  <h3>Period Totals</h3>
  <table>
    <tr><td>Sales</td><td style="text-align:right;">{{.Report.PeriodSales}} PKR</td></tr>
    <tr><td>Profit</td><td style="text-align:right;">{{.Report.PeriodProfit}} PKR</td></tr>
    <tr><td>Expenditure</td><td style="text-align:right;">{{.Report.PeriodExpenditure}} PKR</td></tr>
    <tr><td>Net</td><td style="text-align:right;">{{.Report.PeriodNet}} PKR</td></tr>
  </table>

  <h3>Lifetime Totals</h3>
  <table>
    <tr><td>Sales</td><td style="text-align:right;">{{.Report.TotalSales}} PKR</td></tr>
    <tr><td>Profit</td><td style="text-align:right;">{{.Report.TotalProfit}} PKR</td></tr>
    <tr><td>Expenditure</td><td style="text-align:right;">{{.Report.TotalExpenditure}} PKR</td></tr>
    <tr><td>Pending Balances</td><td style="text-align:right;">{{.Report.TotalPending}} PKR</td></tr>
  </table>

  <h3>Category Breakdown</h3>
  <table>
    <thead><tr><th>Category</th><th>Sales</th></tr></thead>
    <tbody>{{range $cat, $amount := .Report.CategoryBreakdown}}<tr><td>{{$cat}}</td><td style="text-align:right;">{{$amount}} PKR</td></tr>{{end}}</tbody>
  </table>
</body>
</html>
`))

func ReceiptHTML(shop ShopInfo, tx domain.Transaction) string {
	unit := tx.SellingPrice
	if tx.Quantity > 1 {
		unit = tx.SellingPrice / int64(tx.Quantity)
	}
	return render(receiptTmpl, struct {
		Shop      ShopInfo
		Tx        domain.Transaction
		UnitPrice int64
	}{shop, tx, unit})
}

func ExpenditureHTML(shop ShopInfo, exp domain.Expenditure) string {
	return render(expenditureTmpl, struct {
		Shop ShopInfo
		Exp  domain.Expenditure
	}{shop, exp})
}

func PaymentHTML(shop ShopInfo, payment domain.Payment) string {
	return render(paymentTmpl, struct {
		Shop    ShopInfo
		Payment domain.Payment
	}{shop, payment})
}

func ReportHTML(shop ShopInfo, report domain.BusinessReport) string {
	return render(reportTmpl, struct {
		Shop   ShopInfo
		Report domain.BusinessReport
	}{shop, report})
}

func render(tmpl *template.Template, data any) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "<!doctype html><html><body><p>Document rendering error.</p></body></html>"
	}
	return buf.String()
}
