package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PortfolioStatus string

const (
	StatusOngoing   PortfolioStatus = "ongoing"
	StatusCompleted PortfolioStatus = "completed"
)

// Portfolio is one investment round: a fixed budget split into installments,
// traded until the position liquidates to zero shares.
//
// Status, IsQuarterLossCut, QuarterBuyCount, EvaluationResult and the dates are
// caches re-derived from Transactions on every mutation and on every load.
type Portfolio struct {
	ID               int64
	Name             string
	TotalInvestment  decimal.Decimal
	Installments     int
	Transactions     []Transaction
	Status           PortfolioStatus
	IsQuarterLossCut bool
	QuarterBuyCount  int
	EvaluationResult *EvaluationResult
	StartDate        *time.Time
	EndDate          *time.Time
}

// PortfolioStats is derived from the transaction list, never stored.
type PortfolioStats struct {
	SharesHeld decimal.Decimal
	AvgPrice   decimal.Decimal
	TotalPaid  decimal.Decimal
	TotalSold  decimal.Decimal
}

// ModeState is the replayed quarter loss-cut state of a portfolio.
type ModeState struct {
	IsQuarterLossCut bool
	QuarterBuyCount  int
}

// EvaluationResult is frozen at the totals present when a portfolio completes.
type EvaluationResult struct {
	TotalPaid decimal.Decimal
	TotalSold decimal.Decimal
}

func (e EvaluationResult) NetProfit() decimal.Decimal {
	return e.TotalSold.Sub(e.TotalPaid)
}

func (e EvaluationResult) ROIPercent() decimal.Decimal {
	if !e.TotalPaid.IsPositive() {
		return decimal.Zero
	}
	return e.NetProfit().Div(e.TotalPaid).Mul(decimal.NewFromInt(100))
}

// PortfolioDetails is the full view served to the bot: persisted portfolio plus
// everything derived from it. Cached in Redis, invalidated on every mutation.
type PortfolioDetails struct {
	Portfolio      Portfolio
	Stats          PortfolioStats
	Recommendation Recommendation
}

type PortfolioPage struct {
	Portfolios  []Portfolio
	CurPage     int
	HasNextPage bool
}
