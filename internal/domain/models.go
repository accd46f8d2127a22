package domain

// Transaction is one sale or service entry. Dates and times are stored as
// the operator entered them: date "2006-01-02", time "15:04:05". Amounts
// are whole rupees.
type Transaction struct {
	Date           string `json:"date"`
	Time           string `json:"time"`
	Type           string `json:"type"`
	Category       string `json:"category"`
	Item           string `json:"item"`
	Brand          string `json:"brand"`
	Model          string `json:"model"`
	Color          string `json:"color"`
	Storage        string `json:"storage"`
	Quantity       int    `json:"quantity"`
	SellingPrice   int64  `json:"selling_price"`
	CostPrice      int64  `json:"cost_price"`
	Profit         int64  `json:"profit"`
	PaidAmount     int64  `json:"paid_amount"`
	LeftAmount     int64  `json:"left_amount"`
	CustomerName   string `json:"customer_name"`
	Phone          string `json:"phone"`
	CNIC           string `json:"cnic"`
	Address        string `json:"address"`
	Warranty       string `json:"warranty"`
	CompatibleWith string `json:"compatible_with"`
	TransactionID  string `json:"transaction_id"`
	Status         string `json:"status"`
	IMEI           string `json:"imei"`
}

type Expenditure struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	Category    string `json:"category"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

// Payment carries the legacy is_advance flag so old snapshots round-trip;
// new advance deposits go to the advances collection instead and never
// append a payment row.
type Payment struct {
	Date          string `json:"date"`
	Time          string `json:"time"`
	CustomerName  string `json:"customer_name"`
	Phone         string `json:"phone"`
	CNIC          string `json:"cnic"`
	Amount        int64  `json:"amount"`
	TransactionID string `json:"transaction_id"`
	PaymentType   string `json:"payment_type"`
	Notes         string `json:"notes"`
	IsAdvance     bool   `json:"is_advance"`
}

type CustomerAdvance struct {
	CustomerName   string `json:"customer_name"`
	Phone          string `json:"phone"`
	CNIC           string `json:"cnic"`
	AdvanceBalance int64  `json:"advance_balance"`
}

// CustomerBalance is the result of the balance engine for one identifier.
type CustomerBalance struct {
	TotalAmount    int64         `json:"total_amount"`
	TotalPaid      int64         `json:"total_paid"`
	TotalLeft      int64         `json:"total_left"`
	AdvanceBalance int64         `json:"advance_balance"`
	Transactions   []Transaction `json:"transactions"`
}

// CustomerRecords is the raw per-customer slice of the three collections
// the balance engine consumes.
type CustomerRecords struct {
	Transactions []Transaction
	Payments     []Payment
	Advances     []CustomerAdvance
}

type TransactionCreateRequest struct {
	Type           string `json:"type"`
	Category       string `json:"category"`
	Item           string `json:"item"`
	Brand          string `json:"brand"`
	Model          string `json:"model"`
	Color          string `json:"color"`
	Storage        string `json:"storage"`
	Quantity       int    `json:"quantity"`
	SellingPrice   int64  `json:"selling_price"`
	CostPrice      int64  `json:"cost_price"`
	PaidAmount     int64  `json:"paid_amount"`
	CustomerName   string `json:"customer_name"`
	Phone          string `json:"phone"`
	CNIC           string `json:"cnic"`
	Address        string `json:"address"`
	Warranty       string `json:"warranty"`
	CompatibleWith string `json:"compatible_with"`
	IMEI           string `json:"imei"`
}

type ExpenditureCreateRequest struct {
	Category    string `json:"category"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

type PaymentCreateRequest struct {
	CustomerName  string `json:"customer_name"`
	Phone         string `json:"phone"`
	CNIC          string `json:"cnic"`
	Amount        int64  `json:"amount"`
	TransactionID string `json:"transaction_id"`
	PaymentType   string `json:"payment_type"`
	Notes         string `json:"notes"`
	IsAdvance     bool   `json:"is_advance"`
}

type TransactionResponse struct {
	Transaction    Transaction `json:"transaction"`
	AdvanceApplied int64       `json:"advance_applied"`
}

type TransactionListResponse struct {
	Transactions []Transaction `json:"transactions"`
	Total        int           `json:"total"`
}

type ExpenditureListResponse struct {
	Expenditures []Expenditure `json:"expenditures"`
	Total        int           `json:"total"`
}

type PaymentListResponse struct {
	Payments []Payment `json:"payments"`
	Total    int       `json:"total"`
}

type AdvanceListResponse struct {
	Advances []CustomerAdvance `json:"advances"`
	Total    int               `json:"total"`
}

// BusinessReport is the dashboard aggregate for one period window.
type BusinessReport struct {
	Period             string           `json:"period"`
	StartDate          string           `json:"start_date"`
	EndDate            string           `json:"end_date"`
	PeriodSales        int64            `json:"period_sales"`
	PeriodProfit       int64            `json:"period_profit"`
	PeriodExpenditure  int64            `json:"period_expenditure"`
	PeriodNet          int64            `json:"period_net"`
	TotalSales         int64            `json:"total_sales"`
	TotalProfit        int64            `json:"total_profit"`
	TotalExpenditure   int64            `json:"total_expenditure"`
	TotalPending       int64            `json:"total_pending"`
	CategoryBreakdown  map[string]int64 `json:"category_breakdown"`
	TransactionCount   int              `json:"transaction_count"`
	ExpenditureEntries int              `json:"expenditure_entries"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Username    string `json:"username"`
	ExpiresAt   string `json:"expires_at"`
}

type PasswordResetRequest struct {
	ResetCode   string `json:"reset_code"`
	NewPassword string `json:"new_password"`
}

type Actor struct {
	Username string
}

// Credentials is the persisted single-operator credential blob. Hashes are
// base64 PBKDF2-SHA256 digests.
type Credentials struct {
	Username      string `json:"username"`
	PasswordHash  string `json:"password_hash"`
	ResetCodeHash string `json:"reset_code_hash"`
}

const (
	TxTypeSale    = "Sale"
	TxTypeService = "Service"
)

const (
	CategoryMobile      = "Mobile"
	CategoryAccessories = "Accessories"
	CategoryRepair      = "Repair"
)

const (
	StatusCompleted = "Completed"
	StatusPending   = "Pending"
)

const (
	PaymentTypeCash   = "Cash"
	PaymentTypeBank   = "Bank Transfer"
	PaymentTypeOnline = "Online Payment"
)

const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
	PeriodAllTime = "all_time"
)
