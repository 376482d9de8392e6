package dbConverter

import (
	"github.com/jaehyuk-lee/infinite_buying_bot/internal/model"
	"github.com/jaehyuk-lee/infinite_buying_bot/internal/model/dbModel"
)

func ConvertPortfolio(dbPortfolio dbModel.Portfolio) model.Portfolio {
	p := model.Portfolio{
		ID:               dbPortfolio.PortfolioID,
		Name:             dbPortfolio.Name,
		TotalInvestment:  dbPortfolio.TotalInvestment,
		Installments:     dbPortfolio.Installments,
		Status:           model.PortfolioStatus(dbPortfolio.Status),
		IsQuarterLossCut: dbPortfolio.IsQuarterLossCut,
		QuarterBuyCount:  dbPortfolio.QuarterBuyCount,
	}

	if dbPortfolio.EvalTotalPaid.Valid && dbPortfolio.EvalTotalSold.Valid {
		p.EvaluationResult = &model.EvaluationResult{
			TotalPaid: dbPortfolio.EvalTotalPaid.Decimal,
			TotalSold: dbPortfolio.EvalTotalSold.Decimal,
		}
	}

	if dbPortfolio.StartDate.Valid {
		startDate := dbPortfolio.StartDate.Time
		p.StartDate = &startDate
	}

	if dbPortfolio.EndDate.Valid {
		endDate := dbPortfolio.EndDate.Time
		p.EndDate = &endDate
	}

	return p
}

func ConvertTransaction(dbTx dbModel.Transaction) model.Transaction {
	return model.Transaction{
		ID:          dbTx.TransactionID,
		PortfolioID: dbTx.PortfolioID,
		Type:        model.TransactionType(dbTx.Type),
		Date:        dbTx.Date,
		Price:       dbTx.Price,
		Quantity:    dbTx.Quantity,
	}
}
