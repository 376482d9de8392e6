// Package strategy implements the infinite-buying trading strategy: portfolio
// statistics, quarter loss-cut mode replay and next-order recommendation.
// Every function is pure; callers own ordering and input validation.
package strategy

import (
	"github.com/jaehyuk-lee/infinite_buying_bot/internal/model"
	"github.com/shopspring/decimal"
)

// sharesEpsilon absorbs drift left over from repeated buy/sell arithmetic:
// anything below it counts as a fully liquidated position.
var sharesEpsilon = decimal.New(1, -4)

// ComputeStats folds the transaction list into position statistics. The caller
// guarantees chronological order. Sells remove a proportional slice of the cost
// basis; selling more than held is not prevented here (rejected at the service
// boundary), the epsilon clamp zeroes whatever remains.
func ComputeStats(txs []model.Transaction) model.PortfolioStats {
	var shares, costBasis, paid, sold decimal.Decimal

	for _, tx := range txs {
		amount := tx.Amount()
		if tx.Type == model.TransactionBuy {
			costBasis = costBasis.Add(amount)
			paid = paid.Add(amount)
			shares = shares.Add(tx.Quantity)
		} else {
			sold = sold.Add(amount)
			if shares.IsPositive() {
				costBasis = costBasis.Sub(costBasis.Div(shares).Mul(tx.Quantity))
			}
			shares = shares.Sub(tx.Quantity)
		}
	}

	avgPrice := decimal.Zero
	if shares.IsPositive() {
		avgPrice = costBasis.Div(shares)
	}

	if shares.LessThan(sharesEpsilon) {
		shares = decimal.Zero
	}

	return model.PortfolioStats{
		SharesHeld: shares,
		AvgPrice:   avgPrice,
		TotalPaid:  paid,
		TotalSold:  sold,
	}
}
