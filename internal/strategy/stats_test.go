package strategy

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaehyuk-lee/infinite_buying_bot/internal/model"
)

func tx(id int64, typ model.TransactionType, date, price, quantity string) model.Transaction {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return model.Transaction{
		ID:       id,
		Type:     typ,
		Date:     d,
		Price:    decimal.RequireFromString(price),
		Quantity: decimal.RequireFromString(quantity),
	}
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, got.Equal(decimal.RequireFromString(want)), "want %s, got %s", want, got)
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil)

	assert.True(t, stats.SharesHeld.IsZero())
	assert.True(t, stats.AvgPrice.IsZero())
	assert.True(t, stats.TotalPaid.IsZero())
	assert.True(t, stats.TotalSold.IsZero())
}

func TestComputeStatsSingleBuy(t *testing.T) {
	stats := ComputeStats([]model.Transaction{
		tx(1, model.TransactionBuy, "2024-01-02", "10", "1000"),
	})

	requireDecimal(t, "1000", stats.SharesHeld)
	requireDecimal(t, "10", stats.AvgPrice)
	requireDecimal(t, "10000", stats.TotalPaid)
	requireDecimal(t, "0", stats.TotalSold)
}

func TestComputeStatsSellRemovesProportionalCostBasis(t *testing.T) {
	stats := ComputeStats([]model.Transaction{
		tx(1, model.TransactionBuy, "2024-01-02", "10", "100"),
		tx(2, model.TransactionBuy, "2024-01-03", "20", "100"),
		tx(3, model.TransactionSell, "2024-01-04", "18", "50"),
	})

	// avg stays at 15: the sell removed 50 shares worth of basis at cost.
	requireDecimal(t, "150", stats.SharesHeld)
	requireDecimal(t, "15", stats.AvgPrice)
	requireDecimal(t, "3000", stats.TotalPaid)
	requireDecimal(t, "900", stats.TotalSold)
}

func TestComputeStatsFullLiquidation(t *testing.T) {
	stats := ComputeStats([]model.Transaction{
		tx(1, model.TransactionBuy, "2024-01-02", "12.5", "80"),
		tx(2, model.TransactionSell, "2024-01-03", "12.5", "80"),
	})

	assert.True(t, stats.SharesHeld.IsZero())
	assert.True(t, stats.AvgPrice.IsZero())
	requireDecimal(t, "1000", stats.TotalPaid)
	requireDecimal(t, "1000", stats.TotalSold)
}

func TestComputeStatsOversellClampsToZero(t *testing.T) {
	stats := ComputeStats([]model.Transaction{
		tx(1, model.TransactionBuy, "2024-01-02", "10", "10"),
		tx(2, model.TransactionSell, "2024-01-03", "10", "20"),
	})

	assert.True(t, stats.SharesHeld.IsZero())
	assert.False(t, stats.SharesHeld.IsNegative())
	requireDecimal(t, "200", stats.TotalSold)
}

func TestComputeStatsEpsilonClamp(t *testing.T) {
	stats := ComputeStats([]model.Transaction{
		tx(1, model.TransactionBuy, "2024-01-02", "10", "100"),
		tx(2, model.TransactionSell, "2024-01-03", "10", "99.99995"),
	})

	// Residual 0.00005 shares is floating dust, not a position.
	assert.True(t, stats.SharesHeld.IsZero())
}
