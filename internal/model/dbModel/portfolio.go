package dbModel

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type Portfolio struct {
	PortfolioID      int64               `db:"portfolio_id"`
	Name             string              `db:"name"`
	TotalInvestment  decimal.Decimal     `db:"total_investment"`
	Installments     int                 `db:"installments"`
	Status           string              `db:"status"`
	IsQuarterLossCut bool                `db:"is_quarter_loss_cut"`
	QuarterBuyCount  int                 `db:"quarter_buy_count"`
	EvalTotalPaid    decimal.NullDecimal `db:"eval_total_paid"`
	EvalTotalSold    decimal.NullDecimal `db:"eval_total_sold"`
	StartDate        sql.NullTime        `db:"start_date"`
	EndDate          sql.NullTime        `db:"end_date"`
}

type Transaction struct {
	TransactionID int64           `db:"transaction_id"`
	PortfolioID   int64           `db:"portfolio_id"`
	Type          string          `db:"tx_type"`
	Date          time.Time       `db:"tx_date"`
	Price         decimal.Decimal `db:"price"`
	Quantity      decimal.Decimal `db:"quantity"`
}
