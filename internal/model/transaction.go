package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionBuy  TransactionType = "buy"
	TransactionSell TransactionType = "sell"
)

// Transaction is a single executed trade. Edits replace the record wholesale,
// derived portfolio state is always recomputed from the full list afterwards.
type Transaction struct {
	ID          int64
	PortfolioID int64
	Type        TransactionType
	Date        time.Time
	Price       decimal.Decimal
	Quantity    decimal.Decimal
}

func (t Transaction) Amount() decimal.Decimal {
	return t.Price.Mul(t.Quantity)
}
