package strategy

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaehyuk-lee/infinite_buying_bot/internal/model"
)

func TestRecalculateEmptyResetsDerivedState(t *testing.T) {
	endDate := tx(1, model.TransactionBuy, "2024-01-02", "1", "1").Date
	p := model.Portfolio{
		ID:               1,
		TotalInvestment:  decimal.NewFromInt(100000),
		Installments:     40,
		Status:           model.StatusCompleted,
		IsQuarterLossCut: true,
		QuarterBuyCount:  5,
		EvaluationResult: &model.EvaluationResult{},
		StartDate:        &endDate,
		EndDate:          &endDate,
	}

	p = Recalculate(p)

	assert.Equal(t, model.StatusOngoing, p.Status)
	assert.False(t, p.IsQuarterLossCut)
	assert.Equal(t, 0, p.QuarterBuyCount)
	assert.Nil(t, p.EvaluationResult)
	assert.Nil(t, p.StartDate)
	assert.Nil(t, p.EndDate)
}

func TestRecalculateOngoing(t *testing.T) {
	p := model.Portfolio{
		TotalInvestment: decimal.NewFromInt(100000),
		Installments:    40,
		Transactions: []model.Transaction{
			tx(1, model.TransactionBuy, "2024-01-02", "10", "100"),
		},
	}

	p = Recalculate(p)

	assert.Equal(t, model.StatusOngoing, p.Status)
	assert.Nil(t, p.EvaluationResult)
	require.NotNil(t, p.StartDate)
	assert.Equal(t, p.Transactions[0].Date, *p.StartDate)
	assert.Nil(t, p.EndDate)
}

func TestRecalculateCompletionFreezesEvaluation(t *testing.T) {
	p := model.Portfolio{
		TotalInvestment: decimal.NewFromInt(100000),
		Installments:    40,
		Transactions: []model.Transaction{
			tx(1, model.TransactionBuy, "2024-01-02", "10", "100"),
			tx(2, model.TransactionSell, "2024-01-05", "10", "100"),
		},
	}

	p = Recalculate(p)

	assert.Equal(t, model.StatusCompleted, p.Status)
	require.NotNil(t, p.EvaluationResult)
	requireDecimal(t, "1000", p.EvaluationResult.TotalPaid)
	requireDecimal(t, "1000", p.EvaluationResult.TotalSold)
	assert.True(t, p.EvaluationResult.NetProfit().IsZero())
	assert.True(t, p.EvaluationResult.ROIPercent().IsZero())
	require.NotNil(t, p.EndDate)
	assert.Equal(t, p.Transactions[1].Date, *p.EndDate)
}

func TestRecalculateReopensOnNewTransaction(t *testing.T) {
	p := model.Portfolio{
		TotalInvestment: decimal.NewFromInt(100000),
		Installments:    40,
		Transactions: []model.Transaction{
			tx(1, model.TransactionBuy, "2024-01-02", "10", "100"),
			tx(2, model.TransactionSell, "2024-01-05", "10", "100"),
		},
	}
	p = Recalculate(p)
	require.Equal(t, model.StatusCompleted, p.Status)

	p.Transactions = append(p.Transactions, tx(3, model.TransactionBuy, "2024-01-08", "9", "50"))
	p = Recalculate(p)

	assert.Equal(t, model.StatusOngoing, p.Status)
	assert.Nil(t, p.EvaluationResult)
	assert.Nil(t, p.EndDate)
}

func TestRecalculateSortsByDateThenID(t *testing.T) {
	p := model.Portfolio{
		TotalInvestment: decimal.NewFromInt(100000),
		Installments:    40,
		Transactions: []model.Transaction{
			tx(3, model.TransactionBuy, "2024-01-05", "9", "10"),
			tx(2, model.TransactionSell, "2024-01-05", "11", "10"),
			tx(1, model.TransactionBuy, "2024-01-02", "10", "100"),
		},
	}

	p = Recalculate(p)

	ids := []int64{p.Transactions[0].ID, p.Transactions[1].ID, p.Transactions[2].ID}
	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestRecalculateIdempotent(t *testing.T) {
	p := model.Portfolio{
		ID:              7,
		Name:            "SOXL round 2",
		TotalInvestment: decimal.NewFromInt(100000),
		Installments:    40,
		Transactions: []model.Transaction{
			tx(1, model.TransactionBuy, "2024-01-02", "10", "9800"),
			tx(2, model.TransactionSell, "2024-01-03", "10", "2450"),
			tx(3, model.TransactionBuy, "2024-01-04", "9", "294"),
		},
	}

	once := Recalculate(p)
	twice := Recalculate(once)

	require.Equal(t, once, twice)
	assert.True(t, once.IsQuarterLossCut)
	assert.Equal(t, 1, once.QuarterBuyCount)
}
