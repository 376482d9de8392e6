package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/jaehyuk-lee/infinite_buying_bot/data/repository"
	"github.com/jaehyuk-lee/infinite_buying_bot/internal/converter/dbConverter"
	"github.com/jaehyuk-lee/infinite_buying_bot/internal/model"
	"github.com/jaehyuk-lee/infinite_buying_bot/internal/model/dbModel"
	"github.com/jaehyuk-lee/infinite_buying_bot/utils"
)

func (r *Postgres) RegUser(ctx context.Context, chatID int64) (userID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `INSERT INTO users(chat_id) VALUES($1) RETURNING user_id`

	slog.Debug("RegUser start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("RegUser failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("RegUser completed", slog.String("rqID", rqID))
		}
	}()

	err = r.txOrDb(ctx).QueryRowContext(ctx, query, chatID).Scan(&userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return 0, repository.ErrAlreadyExists
			}
		}
		return 0, err
	}

	return userID, nil
}

func (r *Postgres) GetUserID(ctx context.Context, chatID int64) (userID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `SELECT user_id FROM users WHERE chat_id = $1`

	slog.Debug("GetUserID start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetUserID failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetUserID completed", slog.String("rqID", rqID))
		}
	}()

	err = r.txOrDb(ctx).QueryRowContext(ctx, query, chatID).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, repository.ErrNotFound
		}
		return 0, err
	}

	return userID, nil
}

func (r *Postgres) CreatePortfolio(ctx context.Context, userID int64, name string, totalInvestment decimal.Decimal, installments int) (portfolioID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO portfolios(user_id, name, total_investment, installments)
		VALUES($1, $2, $3, $4)
		RETURNING portfolio_id
		`

	slog.Debug("CreatePortfolio start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("CreatePortfolio failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("CreatePortfolio completed", slog.String("rqID", rqID))
		}
	}()

	err = r.txOrDb(ctx).QueryRowContext(ctx, query, userID, name, totalInvestment, installments).Scan(&portfolioID)
	if err != nil {
		return 0, err
	}

	return portfolioID, nil
}

func (r *Postgres) GetPortfolio(ctx context.Context, portfolioID int64) (portfolio model.Portfolio, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetPortfolio"
	query := `
		SELECT portfolio_id, name, total_investment, installments, status,
			is_quarter_loss_cut, quarter_buy_count,
			eval_total_paid, eval_total_sold, start_date, end_date
		FROM portfolios
		WHERE portfolio_id = $1
		`

	slog.Debug("GetPortfolio start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetPortfolio failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetPortfolio completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	dbPortfolio := dbModel.Portfolio{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, portfolioID).StructScan(&dbPortfolio)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Portfolio{}, repository.ErrNotFound
		}
		return model.Portfolio{}, err
	}

	return dbConverter.ConvertPortfolio(dbPortfolio), nil
}

// UpdatePortfolioState persists the re-derived cache fields after a
// recalculation: status, mode state, frozen evaluation totals and dates.
func (r *Postgres) UpdatePortfolioState(ctx context.Context, p model.Portfolio) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.UpdatePortfolioState"
	query := `
		UPDATE portfolios
		SET
			status = $1,
			is_quarter_loss_cut = $2,
			quarter_buy_count = $3,
			eval_total_paid = $4,
			eval_total_sold = $5,
			start_date = $6,
			end_date = $7
		WHERE portfolio_id = $8
		`

	slog.Debug("UpdatePortfolioState start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query), slog.Int64("portfolioID", p.ID))
	defer func() {
		if err != nil {
			slog.Error("UpdatePortfolioState failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpdatePortfolioState completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	var evalPaid, evalSold *decimal.Decimal
	if p.EvaluationResult != nil {
		evalPaid = &p.EvaluationResult.TotalPaid
		evalSold = &p.EvaluationResult.TotalSold
	}

	res, err := r.txOrDb(ctx).ExecContext(
		ctx,
		query,
		string(p.Status),
		p.IsQuarterLossCut,
		p.QuarterBuyCount,
		evalPaid,
		evalSold,
		p.StartDate,
		p.EndDate,
		p.ID,
	)
	if err != nil {
		return err
	}

	if affected, raErr := res.RowsAffected(); raErr == nil && affected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *Postgres) GetPortfoliosPage(ctx context.Context, chatID int64, status model.PortfolioStatus, limit, offset int) (portfolios []model.Portfolio, hasNextPage bool, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetPortfoliosPage"
	params := map[string]any{
		"chatID": chatID,
		"status": status,
		"limit":  limit,
		"offset": offset,
	}
	query := `
		SELECT p.portfolio_id, p.name, p.total_investment, p.installments, p.status,
			p.is_quarter_loss_cut, p.quarter_buy_count,
			p.eval_total_paid, p.eval_total_sold, p.start_date, p.end_date
		FROM portfolios p
		JOIN users u USING(user_id)
		WHERE u.chat_id = $1 AND p.status = $2
		ORDER BY p.portfolio_id
		LIMIT $3
		OFFSET $4
		`

	slog.Debug("GetPortfoliosPage start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query), slog.Any("params", params))
	defer func() {
		if err != nil {
			slog.Error("GetPortfoliosPage failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetPortfoliosPage completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	// select one extra row to know whether a next page exists
	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, chatID, string(status), limit+1, offset)
	if err != nil {
		return nil, false, err
	}

	defer rows.Close()

	i := 0
	portfolios = make([]model.Portfolio, 0, limit)
	for rows.Next() {
		i++
		var dbPortfolio dbModel.Portfolio
		err = rows.StructScan(&dbPortfolio)
		if err != nil {
			return nil, false, err
		}

		if i > limit {
			hasNextPage = true
			break
		}
		portfolios = append(portfolios, dbConverter.ConvertPortfolio(dbPortfolio))
	}

	return portfolios, hasNextPage, nil
}

func (r *Postgres) GetOngoingPortfolioIDs(ctx context.Context) (portfolioIDs []int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetOngoingPortfolioIDs"
	query := `SELECT portfolio_id FROM portfolios WHERE status = $1 ORDER BY portfolio_id`

	slog.Debug("GetOngoingPortfolioIDs start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetOngoingPortfolioIDs failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetOngoingPortfolioIDs completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	err = r.txOrDb(ctx).SelectContext(ctx, &portfolioIDs, query, string(model.StatusOngoing))
	if err != nil {
		return nil, err
	}

	return portfolioIDs, nil
}

func (r *Postgres) DeletePortfolio(ctx context.Context, portfolioID int64) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.DeletePortfolio"
	query := `DELETE FROM portfolios WHERE portfolio_id = $1`

	slog.Debug("DeletePortfolio start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query), slog.Int64("portfolioID", portfolioID))
	defer func() {
		if err != nil {
			slog.Error("DeletePortfolio failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("DeletePortfolio completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, portfolioID)
	if err != nil {
		return err
	}

	return nil
}
