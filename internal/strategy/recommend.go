package strategy

import (
	"github.com/jaehyuk-lee/infinite_buying_bot/internal/model"
	"github.com/shopspring/decimal"
)

var (
	two          = decimal.NewFromInt(2)
	four         = decimal.NewFromInt(4)
	centi        = decimal.New(1, -2)  // 0.01
	tickOffset   = decimal.New(1, -2)  // shaved off LOC prices to undercut the round level
	discount     = decimal.New(9, -1)  // 0.9
	premium      = decimal.New(11, -1) // 1.1
	threeQuarter = decimal.New(75, -2) // 0.75
	twenty       = decimal.NewFromInt(20)
)

// floorQty sizes an order as whole shares for a budget at a price. Degenerate
// inputs (non-positive price, exhausted budget) yield zero instead of failing.
func floorQty(budget, price decimal.Decimal) int64 {
	if !price.IsPositive() {
		return 0
	}
	qty := budget.Div(price).IntPart()
	if qty < 0 {
		return 0
	}
	return qty
}

func quarterOf(shares decimal.Decimal) int64 {
	return shares.Div(four).IntPart()
}

func threeQuartersOf(shares decimal.Decimal) int64 {
	return shares.Mul(threeQuarter).IntPart()
}

// Recommend computes the next buy/sell order plan from current statistics and
// portfolio configuration. Deterministic and read-only: it never mutates the
// portfolio and never errors, degrading to NoAction or zero-quantity orders on
// degenerate numeric state.
func Recommend(p model.Portfolio, stats model.PortfolioStats) model.Recommendation {
	if !stats.SharesHeld.IsPositive() || p.Installments <= 0 || !p.TotalInvestment.IsPositive() || !stats.AvgPrice.IsPositive() {
		return model.Recommendation{Mode: model.ModeNoAction}
	}

	oneTimeBuyAmount := p.TotalInvestment.Div(buySplit)
	t := accumulationRatio(stats.TotalPaid, oneTimeBuyAmount)

	if t.GreaterThan(thirtyNine) && t.LessThanOrEqual(buySplit) && !p.IsQuarterLossCut {
		return model.Recommendation{
			Mode: model.ModeTransitionToLossCut,
			T:    t,
			SellOrders: []model.Order{{
				Type:        model.TransactionSell,
				OrderType:   model.OrderMOC,
				Quantity:    quarterOf(stats.SharesHeld),
				Portion:     "1/4",
				Description: "enter quarter loss-cut: sell 1/4 at close",
			}},
		}
	}

	if p.IsQuarterLossCut {
		return recommendQuarterLossCut(p, stats, t)
	}

	return recommendNormal(stats, t, oneTimeBuyAmount)
}

func recommendQuarterLossCut(p model.Portfolio, stats model.PortfolioStats, t decimal.Decimal) model.Recommendation {
	// The remaining budget for this mode is what the position has not yet
	// consumed, spread over ten discounted buys.
	netInvestment := stats.TotalPaid.Sub(stats.TotalSold)
	quarterModeBudget := p.TotalInvestment.Sub(netInvestment)
	quarterModeOneTimeBuyAmount := quarterModeBudget.Div(ten)

	var sellOrders []model.Order
	if p.QuarterBuyCount >= maxQuarterBuys {
		sellOrders = []model.Order{{
			Type:        model.TransactionSell,
			OrderType:   model.OrderMOC,
			Quantity:    quarterOf(stats.SharesHeld),
			Portion:     "1/4",
			Description: "ten buys done: cut 1/4 at close",
		}}
	} else {
		sellOrders = []model.Order{
			{
				Type:        model.TransactionSell,
				OrderType:   model.OrderLOC,
				Price:       stats.AvgPrice.Mul(discount).Sub(tickOffset),
				Quantity:    quarterOf(stats.SharesHeld),
				Portion:     "1/4",
				Description: "loss-cut LOC sell",
			},
			{
				Type:        model.TransactionSell,
				OrderType:   model.OrderLimit,
				Price:       stats.AvgPrice.Mul(premium),
				Quantity:    threeQuartersOf(stats.SharesHeld),
				Portion:     "3/4",
				Description: "loss-cut limit sell",
			},
		}
	}

	buyPrice := stats.AvgPrice.Mul(discount)
	return model.Recommendation{
		Mode:            model.ModeQuarterLossCut,
		T:               t,
		QuarterBuyCount: p.QuarterBuyCount,
		BuyOrders: []model.Order{{
			Type:        model.TransactionBuy,
			OrderType:   model.OrderLOC,
			Price:       buyPrice,
			Quantity:    floorQty(quarterModeOneTimeBuyAmount, buyPrice),
			Description: "avg -10% LOC buy",
		}},
		SellOrders: sellOrders,
	}
}

func recommendNormal(stats model.PortfolioStats, t, oneTimeBuyAmount decimal.Decimal) model.Recommendation {
	// SP shrinks as installments accumulate: (10 - T/2) percent.
	sp := ten.Sub(t.Div(two)).Mul(centi)

	var buyOrders []model.Order
	if t.LessThan(twenty) {
		halfAmount := oneTimeBuyAmount.Div(two)
		price1 := stats.AvgPrice
		price2 := stats.AvgPrice.Mul(decimal.NewFromInt(1).Add(sp)).Sub(tickOffset)
		buyOrders = []model.Order{
			{
				Type:        model.TransactionBuy,
				OrderType:   model.OrderLOC,
				Price:       price1,
				Quantity:    floorQty(halfAmount, price1),
				Portion:     "1/2",
				Description: "avg price LOC buy",
			},
			{
				Type:        model.TransactionBuy,
				OrderType:   model.OrderLOC,
				Price:       price2,
				Quantity:    floorQty(halfAmount, price2),
				Portion:     "1/2",
				Description: "avg +SP LOC buy",
			},
		}
	} else {
		price := stats.AvgPrice.Mul(decimal.NewFromInt(1).Add(sp)).Sub(tickOffset)
		buyOrders = []model.Order{{
			Type:        model.TransactionBuy,
			OrderType:   model.OrderLOC,
			Price:       price,
			Quantity:    floorQty(oneTimeBuyAmount, price),
			Description: "avg +SP LOC buy",
		}}
	}

	return model.Recommendation{
		Mode:             model.ModeNormal,
		T:                t,
		SPPercentage:     sp,
		OneTimeBuyAmount: oneTimeBuyAmount,
		BuyOrders:        buyOrders,
		SellOrders: []model.Order{
			{
				Type:        model.TransactionSell,
				OrderType:   model.OrderLOC,
				Price:       stats.AvgPrice.Mul(decimal.NewFromInt(1).Add(sp)),
				Quantity:    quarterOf(stats.SharesHeld),
				Portion:     "1/4",
				Description: "avg +SP LOC sell",
			},
			{
				Type:        model.TransactionSell,
				OrderType:   model.OrderLimit,
				Price:       stats.AvgPrice.Mul(premium),
				Quantity:    threeQuartersOf(stats.SharesHeld),
				Portion:     "3/4",
				Description: "avg +10% limit sell",
			},
		},
	}
}
