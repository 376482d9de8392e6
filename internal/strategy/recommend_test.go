package strategy

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaehyuk-lee/infinite_buying_bot/internal/model"
)

func testPortfolio() model.Portfolio {
	return model.Portfolio{
		ID:              1,
		Name:            "TQQQ round 1",
		TotalInvestment: decimal.NewFromInt(100000),
		Installments:    40,
	}
}

func statsOf(shares, avg, paid, sold string) model.PortfolioStats {
	return model.PortfolioStats{
		SharesHeld: decimal.RequireFromString(shares),
		AvgPrice:   decimal.RequireFromString(avg),
		TotalPaid:  decimal.RequireFromString(paid),
		TotalSold:  decimal.RequireFromString(sold),
	}
}

func TestRecommendNoActionOnEmptyPosition(t *testing.T) {
	rec := Recommend(testPortfolio(), model.PortfolioStats{})

	assert.Equal(t, model.ModeNoAction, rec.Mode)
	assert.Empty(t, rec.BuyOrders)
	assert.Empty(t, rec.SellOrders)
}

func TestRecommendNoActionOnDegenerateConfig(t *testing.T) {
	stats := statsOf("1000", "10", "10000", "0")

	p := testPortfolio()
	p.Installments = 0
	assert.Equal(t, model.ModeNoAction, Recommend(p, stats).Mode)

	p = testPortfolio()
	p.TotalInvestment = decimal.Zero
	assert.Equal(t, model.ModeNoAction, Recommend(p, stats).Mode)

	p = testPortfolio()
	zeroAvg := stats
	zeroAvg.AvgPrice = decimal.Zero
	assert.Equal(t, model.ModeNoAction, Recommend(p, zeroAvg).Mode)
}

func TestRecommendNormalEarlyPhase(t *testing.T) {
	// One buy of 1000 shares at $10: T=4.0, SP=8%, split buy below T=20.
	rec := Recommend(testPortfolio(), statsOf("1000", "10", "10000", "0"))

	assert.Equal(t, model.ModeNormal, rec.Mode)
	requireDecimal(t, "4", rec.T)
	requireDecimal(t, "0.08", rec.SPPercentage)
	requireDecimal(t, "2500", rec.OneTimeBuyAmount)

	require.Len(t, rec.BuyOrders, 2)
	assert.Equal(t, model.OrderLOC, rec.BuyOrders[0].OrderType)
	requireDecimal(t, "10", rec.BuyOrders[0].Price)
	assert.EqualValues(t, 125, rec.BuyOrders[0].Quantity)
	requireDecimal(t, "10.79", rec.BuyOrders[1].Price)
	assert.EqualValues(t, 115, rec.BuyOrders[1].Quantity)

	require.Len(t, rec.SellOrders, 2)
	assert.Equal(t, model.OrderLOC, rec.SellOrders[0].OrderType)
	requireDecimal(t, "10.8", rec.SellOrders[0].Price)
	assert.EqualValues(t, 250, rec.SellOrders[0].Quantity)
	assert.Equal(t, "1/4", rec.SellOrders[0].Portion)
	assert.Equal(t, model.OrderLimit, rec.SellOrders[1].OrderType)
	requireDecimal(t, "11", rec.SellOrders[1].Price)
	assert.EqualValues(t, 750, rec.SellOrders[1].Quantity)
	assert.Equal(t, "3/4", rec.SellOrders[1].Portion)
}

func TestRecommendNormalLatePhaseSingleBuy(t *testing.T) {
	// T=24: single buy order, SP has gone negative ((10-12)*0.01).
	rec := Recommend(testPortfolio(), statsOf("6000", "10", "60000", "0"))

	assert.Equal(t, model.ModeNormal, rec.Mode)
	requireDecimal(t, "24", rec.T)
	requireDecimal(t, "-0.02", rec.SPPercentage)

	require.Len(t, rec.BuyOrders, 1)
	requireDecimal(t, "9.79", rec.BuyOrders[0].Price)
	assert.EqualValues(t, 255, rec.BuyOrders[0].Quantity)

	require.Len(t, rec.SellOrders, 2)
	requireDecimal(t, "9.8", rec.SellOrders[0].Price)
	assert.EqualValues(t, 1500, rec.SellOrders[0].Quantity)
}

func TestRecommendTransitionToLossCut(t *testing.T) {
	// T=39.2: no buys, one market-on-close sell of a quarter of the position.
	rec := Recommend(testPortfolio(), statsOf("9800", "10", "98000", "0"))

	assert.Equal(t, model.ModeTransitionToLossCut, rec.Mode)
	requireDecimal(t, "39.2", rec.T)
	assert.Empty(t, rec.BuyOrders)

	require.Len(t, rec.SellOrders, 1)
	assert.Equal(t, model.OrderMOC, rec.SellOrders[0].OrderType)
	assert.EqualValues(t, 2450, rec.SellOrders[0].Quantity)
	assert.Equal(t, "1/4", rec.SellOrders[0].Portion)
}

func TestRecommendQuarterLossCut(t *testing.T) {
	p := testPortfolio()
	p.IsQuarterLossCut = true
	p.QuarterBuyCount = 3

	// Net investment 73500, so 26500 remains, spread over ten buys.
	rec := Recommend(p, statsOf("7350", "10", "98000", "24500"))

	assert.Equal(t, model.ModeQuarterLossCut, rec.Mode)
	assert.Equal(t, 3, rec.QuarterBuyCount)

	require.Len(t, rec.BuyOrders, 1)
	requireDecimal(t, "9", rec.BuyOrders[0].Price)
	assert.EqualValues(t, 294, rec.BuyOrders[0].Quantity)

	require.Len(t, rec.SellOrders, 2)
	assert.Equal(t, model.OrderLOC, rec.SellOrders[0].OrderType)
	requireDecimal(t, "8.99", rec.SellOrders[0].Price)
	assert.EqualValues(t, 1837, rec.SellOrders[0].Quantity)
	assert.Equal(t, model.OrderLimit, rec.SellOrders[1].OrderType)
	requireDecimal(t, "11", rec.SellOrders[1].Price)
	assert.EqualValues(t, 5512, rec.SellOrders[1].Quantity)
}

func TestRecommendQuarterLossCutForcedSellAfterTenBuys(t *testing.T) {
	p := testPortfolio()
	p.IsQuarterLossCut = true
	p.QuarterBuyCount = 10

	rec := Recommend(p, statsOf("7350", "10", "98000", "24500"))

	assert.Equal(t, model.ModeQuarterLossCut, rec.Mode)
	require.Len(t, rec.SellOrders, 1)
	assert.Equal(t, model.OrderMOC, rec.SellOrders[0].OrderType)
	assert.EqualValues(t, 1837, rec.SellOrders[0].Quantity)
	require.Len(t, rec.BuyOrders, 1)
}

func TestRecommendQuarterLossCutExhaustedBudget(t *testing.T) {
	p := testPortfolio()
	p.IsQuarterLossCut = true

	// Net investment above the total budget: the buy degrades to zero shares
	// instead of going negative.
	rec := Recommend(p, statsOf("11000", "10", "110000", "0"))

	require.Len(t, rec.BuyOrders, 1)
	assert.EqualValues(t, 0, rec.BuyOrders[0].Quantity)
}
