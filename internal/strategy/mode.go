package strategy

import (
	"github.com/jaehyuk-lee/infinite_buying_bot/internal/model"
	"github.com/shopspring/decimal"
)

var (
	ten        = decimal.NewFromInt(10)
	thirtyNine = decimal.NewFromInt(39)

	// buySplit is the per-installment divisor. The strategy script fixes it at
	// 40 regardless of the configured installment count.
	buySplit = decimal.NewFromInt(40)
)

// maxQuarterBuys is the number of discounted buys allowed inside quarter
// loss-cut mode before the forced quarter sell.
const maxQuarterBuys = 10

// ceilTenth rounds up to one decimal place. Rounding up is deliberate: the
// strategy treats a partially consumed installment as fully consumed.
func ceilTenth(v decimal.Decimal) decimal.Decimal {
	return v.Mul(ten).Ceil().Div(ten)
}

// accumulationRatio is T: total paid measured in one-time buy amounts.
func accumulationRatio(totalPaid, oneTimeBuyAmount decimal.Decimal) decimal.Decimal {
	return ceilTenth(totalPaid.Div(oneTimeBuyAmount))
}

// modeBefore derives the recommendation mode a portfolio was in ahead of a
// transaction, given the statistics accumulated up to that point.
func modeBefore(stats model.PortfolioStats, totalInvestment decimal.Decimal, inQuarterMode bool) model.RecommendationMode {
	if !stats.SharesHeld.IsPositive() || !totalInvestment.IsPositive() {
		return model.ModeNoAction
	}

	oneTimeBuyAmount := totalInvestment.Div(buySplit)
	if !oneTimeBuyAmount.IsPositive() {
		return model.ModeNoAction
	}

	t := accumulationRatio(stats.TotalPaid, oneTimeBuyAmount)
	switch {
	case t.GreaterThan(thirtyNine) && t.LessThanOrEqual(buySplit) && !inQuarterMode:
		return model.ModeTransitionToLossCut
	case inQuarterMode:
		return model.ModeQuarterLossCut
	}
	return model.ModeNoAction
}

// ReplayMode reconstructs the quarter loss-cut state by simulating the entire
// history. Mode transitions depend on the statistics at each point in time, so
// the stored flags are only a cache; this is the single source of truth and
// must be re-run after every add, edit or delete, including edits to past
// transactions.
func ReplayMode(txs []model.Transaction, totalInvestment decimal.Decimal) model.ModeState {
	var st model.ModeState

	processed := make([]model.Transaction, 0, len(txs))
	for _, tx := range txs {
		mode := modeBefore(ComputeStats(processed), totalInvestment, st.IsQuarterLossCut)

		switch {
		case mode == model.ModeTransitionToLossCut && tx.Type == model.TransactionSell:
			st.IsQuarterLossCut = true
			st.QuarterBuyCount = 0
		case st.IsQuarterLossCut:
			if tx.Type == model.TransactionBuy {
				st.QuarterBuyCount++
			} else {
				if st.QuarterBuyCount < maxQuarterBuys {
					st.IsQuarterLossCut = false
				}
				st.QuarterBuyCount = 0
			}
		}

		processed = append(processed, tx)
	}

	return st
}
