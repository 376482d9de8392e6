package model

import "github.com/shopspring/decimal"

type SessionState int

const (
	DefaultState SessionState = iota
	ExpectingPortfolioName
	ExpectingTotalInvestment
	ExpectingInstallments
	ExpectingBuyInput
	ExpectingSellInput
	ExpectingEditInput
)

// PortfolioDraft accumulates answers of the portfolio creation dialog.
type PortfolioDraft struct {
	Name            string
	TotalInvestment decimal.Decimal
}

type Session struct {
	State             SessionState
	PortfolioID       int64
	Draft             *PortfolioDraft
	EditTransactionID int64
}
