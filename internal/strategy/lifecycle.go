package strategy

import (
	"cmp"
	"slices"

	"github.com/jaehyuk-lee/infinite_buying_bot/internal/model"
)

// SortTransactions orders chronologically, breaking same-date ties by ID so a
// replay over the same history is always deterministic (IDs are assigned in
// insertion order).
func SortTransactions(txs []model.Transaction) []model.Transaction {
	sorted := slices.Clone(txs)
	slices.SortStableFunc(sorted, func(a, b model.Transaction) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return sorted
}

// Recalculate re-derives every cached portfolio field from the transaction
// list: mode state, statistics, status, dates and the frozen evaluation
// result. It is run after every transaction mutation and after every load from
// storage, and is idempotent: nothing is accumulated across calls, even edits
// to past transactions are absorbed by the full replay.
func Recalculate(p model.Portfolio) model.Portfolio {
	p.Transactions = SortTransactions(p.Transactions)

	if len(p.Transactions) == 0 {
		p.Status = model.StatusOngoing
		p.IsQuarterLossCut = false
		p.QuarterBuyCount = 0
		p.EvaluationResult = nil
		p.StartDate = nil
		p.EndDate = nil
		return p
	}

	mode := ReplayMode(p.Transactions, p.TotalInvestment)
	p.IsQuarterLossCut = mode.IsQuarterLossCut
	p.QuarterBuyCount = mode.QuarterBuyCount

	stats := ComputeStats(p.Transactions)

	startDate := p.Transactions[0].Date
	p.StartDate = &startDate

	if stats.SharesHeld.IsZero() {
		p.Status = model.StatusCompleted
		p.EvaluationResult = &model.EvaluationResult{
			TotalPaid: stats.TotalPaid,
			TotalSold: stats.TotalSold,
		}
		endDate := p.Transactions[len(p.Transactions)-1].Date
		p.EndDate = &endDate
	} else {
		p.Status = model.StatusOngoing
		p.EvaluationResult = nil
		p.EndDate = nil
	}

	return p
}
