package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType distinguishes money in from money out.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// Candidate is one AI-extracted, not-yet-persisted transaction.
// Amount is a positive magnitude; direction is decided by the pipeline,
// never by the model.
type Candidate struct {
	Date        time.Time
	Merchant    string
	Description string
	Amount      float64
	Currency    string
}

// Transaction is a persisted ledger row. AmountMinor is in minor units
// (cents/centimos): negative for expenses, positive for income.
type Transaction struct {
	ID          string
	UserID      string
	StatementID string // empty for manually entered transactions
	CardID      string
	CategoryID  string // empty means uncategorized
	Merchant    string
	Description string
	AmountMinor int64
	Currency    string
	Type        TransactionType
	Date        time.Time
	CreatedAt   time.Time
}

// MinorUnits converts a decimal currency amount to integer minor units,
// rounding to 2 decimals first so 195.50 becomes 19550 exactly.
func MinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Round(2).Shift(2).IntPart()
}

// ExpenseAmountMinor converts a positive magnitude into the signed minor-unit
// amount of an expense row. A magnitude that already carries a sign is forced
// negative either way.
func ExpenseAmountMinor(magnitude float64) int64 {
	m := MinorUnits(magnitude)
	if m > 0 {
		m = -m
	}
	return m
}
