package telebotConverter

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaehyuk-lee/infinite_buying_bot/internal/model"
)

func sampleDetails() model.PortfolioDetails {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	return model.PortfolioDetails{
		Portfolio: model.Portfolio{
			ID:              10,
			Name:            "TQQQ",
			TotalInvestment: decimal.NewFromInt(100000),
			Installments:    40,
			Status:          model.StatusOngoing,
			StartDate:       &start,
			Transactions: []model.Transaction{
				{
					ID:       1,
					Type:     model.TransactionBuy,
					Date:     start,
					Price:    decimal.NewFromInt(10),
					Quantity: decimal.NewFromInt(100),
				},
			},
		},
		Stats: model.PortfolioStats{
			SharesHeld: decimal.NewFromInt(100),
			AvgPrice:   decimal.NewFromInt(10),
			TotalPaid:  decimal.NewFromInt(1000),
		},
		Recommendation: model.Recommendation{
			Mode:             model.ModeNormal,
			T:                decimal.RequireFromString("0.4"),
			SPPercentage:     decimal.RequireFromString("0.098"),
			OneTimeBuyAmount: decimal.NewFromInt(2500),
			BuyOrders: []model.Order{
				{Type: model.TransactionBuy, OrderType: model.OrderLOC, Price: decimal.NewFromInt(10), Quantity: 125},
			},
			SellOrders: []model.Order{
				{Type: model.TransactionSell, OrderType: model.OrderLimit, Price: decimal.NewFromInt(11), Quantity: 750, Portion: "3/4"},
			},
		},
	}
}

func TestPortfolioDetailsResponse(t *testing.T) {
	text, markup := PortfolioDetailsResponse(sampleDetails())

	assert.Contains(t, text, "TQQQ")
	assert.Contains(t, text, "100000.00")
	assert.Contains(t, text, "Shares held: 100")
	assert.NotContains(t, text, "loss-cut")
	require.NotEmpty(t, markup.InlineKeyboard)
}

func TestPortfolioDetailsResponseQuarterMode(t *testing.T) {
	details := sampleDetails()
	details.Portfolio.IsQuarterLossCut = true
	details.Portfolio.QuarterBuyCount = 3

	text, _ := PortfolioDetailsResponse(details)
	assert.Contains(t, text, "Quarter loss-cut mode (buys: 3/10)")
}

func TestRecommendationResponse(t *testing.T) {
	text := RecommendationResponse(sampleDetails())

	assert.Contains(t, text, "T: 0.4")
	assert.Contains(t, text, "Sell premium: 9.8%")
	assert.Contains(t, text, "LOC @ 10.00 × 125")
	assert.Contains(t, text, "Limit @ 11.00 × 750 (3/4)")
}

func TestRecommendationResponseMOCHasNoPrice(t *testing.T) {
	details := sampleDetails()
	details.Recommendation = model.Recommendation{
		Mode:       model.ModeTransitionToLossCut,
		SellOrders: []model.Order{{Type: model.TransactionSell, OrderType: model.OrderMOC, Quantity: 2450, Portion: "1/4"}},
	}

	text := RecommendationResponse(details)
	assert.Contains(t, text, "MOC × 2450 (1/4)")
	assert.NotContains(t, text, "@")
}

func TestTransactionsResponseButtonsPerRow(t *testing.T) {
	text, markup := TransactionsResponse(sampleDetails())

	assert.Contains(t, text, "#1 2026-01-05")
	require.Len(t, markup.InlineKeyboard, 1)
	assert.Len(t, markup.InlineKeyboard[0], 2)
}

func TestEvaluationResponse(t *testing.T) {
	details := sampleDetails()
	end := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	details.Portfolio.Status = model.StatusCompleted
	details.Portfolio.EndDate = &end
	details.Portfolio.EvaluationResult = &model.EvaluationResult{
		TotalPaid: decimal.NewFromInt(1000),
		TotalSold: decimal.NewFromInt(1200),
	}

	text, markup := EvaluationResponse(details)
	assert.Contains(t, text, "Net profit: 200.00")
	assert.Contains(t, text, "ROI: 20.00%")
	assert.Contains(t, text, "Finished: 2026-02-10")
	require.NotEmpty(t, markup.InlineKeyboard)
}
