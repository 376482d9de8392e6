package strategy

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jaehyuk-lee/infinite_buying_bot/internal/model"
)

var totalInvestment = decimal.NewFromInt(100000)

func TestCeilTenthRoundsUp(t *testing.T) {
	requireDecimal(t, "4", ceilTenth(decimal.RequireFromString("4")))
	requireDecimal(t, "39.1", ceilTenth(decimal.RequireFromString("39.0004")))
	requireDecimal(t, "39.1", ceilTenth(decimal.RequireFromString("39.1")))
	requireDecimal(t, "0.1", ceilTenth(decimal.RequireFromString("0.01")))
}

func TestReplayModeNoTransitionBelowThreshold(t *testing.T) {
	// T stays at 39.0, which is not strictly above 39: no transition armed,
	// the sell is just an ordinary sell.
	st := ReplayMode([]model.Transaction{
		tx(1, model.TransactionBuy, "2024-01-02", "10", "9750"),
		tx(2, model.TransactionSell, "2024-01-03", "11", "100"),
	}, totalInvestment)

	assert.False(t, st.IsQuarterLossCut)
	assert.Equal(t, 0, st.QuarterBuyCount)
}

func TestReplayModeEntersOnSellAfterTransition(t *testing.T) {
	// Paid 98000 of 100000: T=39.2 arms the transition, the next sell enters
	// quarter loss-cut mode with the buy counter reset.
	st := ReplayMode([]model.Transaction{
		tx(1, model.TransactionBuy, "2024-01-02", "10", "9800"),
		tx(2, model.TransactionSell, "2024-01-03", "10", "2450"),
	}, totalInvestment)

	assert.True(t, st.IsQuarterLossCut)
	assert.Equal(t, 0, st.QuarterBuyCount)
}

func TestReplayModeBuyAfterTransitionDoesNotEnter(t *testing.T) {
	st := ReplayMode([]model.Transaction{
		tx(1, model.TransactionBuy, "2024-01-02", "10", "9800"),
		tx(2, model.TransactionBuy, "2024-01-03", "10", "1"),
	}, totalInvestment)

	assert.False(t, st.IsQuarterLossCut)
}

func TestReplayModeCountsBuysInsideMode(t *testing.T) {
	txs := []model.Transaction{
		tx(1, model.TransactionBuy, "2024-01-02", "10", "9800"),
		tx(2, model.TransactionSell, "2024-01-03", "10", "2450"),
		tx(3, model.TransactionBuy, "2024-01-04", "9", "294"),
		tx(4, model.TransactionBuy, "2024-01-05", "8.1", "300"),
	}

	st := ReplayMode(txs, totalInvestment)
	assert.True(t, st.IsQuarterLossCut)
	assert.Equal(t, 2, st.QuarterBuyCount)
}

func TestReplayModeExitsOnSellBeforeTenBuys(t *testing.T) {
	txs := []model.Transaction{
		tx(1, model.TransactionBuy, "2024-01-02", "10", "9800"),
		tx(2, model.TransactionSell, "2024-01-03", "10", "2450"),
		tx(3, model.TransactionBuy, "2024-01-04", "9", "294"),
		tx(4, model.TransactionSell, "2024-01-05", "11", "100"),
	}

	st := ReplayMode(txs, totalInvestment)
	assert.False(t, st.IsQuarterLossCut)
	assert.Equal(t, 0, st.QuarterBuyCount)
}

func TestReplayModeStaysInModeAfterTenBuys(t *testing.T) {
	txs := []model.Transaction{
		tx(1, model.TransactionBuy, "2024-01-02", "10", "9800"),
		tx(2, model.TransactionSell, "2024-01-03", "10", "2450"),
	}
	for i := range 10 {
		txs = append(txs, tx(int64(3+i), model.TransactionBuy, "2024-02-01", "9", "10"))
	}

	st := ReplayMode(txs, totalInvestment)
	assert.True(t, st.IsQuarterLossCut)
	assert.Equal(t, 10, st.QuarterBuyCount)

	// A sell after the tenth buy resets the counter but does not leave the mode.
	txs = append(txs, tx(20, model.TransactionSell, "2024-02-02", "9", "1837"))
	st = ReplayMode(txs, totalInvestment)
	assert.True(t, st.IsQuarterLossCut)
	assert.Equal(t, 0, st.QuarterBuyCount)
}

func TestReplayModeIsPureOverHistoryEdits(t *testing.T) {
	txs := []model.Transaction{
		tx(1, model.TransactionBuy, "2024-01-02", "10", "9800"),
		tx(2, model.TransactionSell, "2024-01-03", "10", "2450"),
	}
	assert.True(t, ReplayMode(txs, totalInvestment).IsQuarterLossCut)

	// Shrinking the first buy retroactively keeps T below the threshold: the
	// whole excursion disappears on replay.
	txs[0] = tx(1, model.TransactionBuy, "2024-01-02", "10", "9000")
	assert.False(t, ReplayMode(txs, totalInvestment).IsQuarterLossCut)
}
