package telegram

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v4"

	"github.com/jaehyuk-lee/infinite_buying_bot/data/session"
	"github.com/jaehyuk-lee/infinite_buying_bot/internal/converter/telebotConverter"
	"github.com/jaehyuk-lee/infinite_buying_bot/internal/model"
	"github.com/jaehyuk-lee/infinite_buying_bot/internal/model/tg/tgCallback"
	"github.com/jaehyuk-lee/infinite_buying_bot/internal/service"
	"github.com/jaehyuk-lee/infinite_buying_bot/utils"
)

const (
	internalErrMsg    = "something went wrong, try again later..."
	txInputFormatMsg  = "enter the trade as: YYYY-MM-DD price quantity\nexample: 2026-01-05 52.3 47"
	editInputFormat   = "enter the replacement as: buy|sell YYYY-MM-DD price quantity\nexample: sell 2026-01-05 57.5 12"
	noPortfolioChosen = "pick a portfolio first (/portfolios)"
)

type PortfolioService interface {
	RegUser(ctx context.Context, chatID int64) error
	CreatePortfolio(ctx context.Context, chatID int64, name string, totalInvestment decimal.Decimal, installments int) (portfolioID int64, err error)
	GetPortfolioDetails(ctx context.Context, portfolioID int64) (model.PortfolioDetails, error)
	AddTransaction(ctx context.Context, portfolioID int64, tx model.Transaction) (model.PortfolioDetails, error)
	EditTransaction(ctx context.Context, portfolioID int64, tx model.Transaction) (model.PortfolioDetails, error)
	DeleteTransaction(ctx context.Context, portfolioID, transactionID int64) (model.PortfolioDetails, error)
	GetPortfoliosPage(ctx context.Context, chatID int64, status model.PortfolioStatus, page int) (model.PortfolioPage, error)
	DeletePortfolio(ctx context.Context, portfolioID int64) error
	GetEvaluation(ctx context.Context, portfolioID int64) (model.PortfolioDetails, error)
	GenerateEvaluationReport(ctx context.Context, portfolioID int64) (downloadLink string, err error)
}

type Session interface {
	GetSession(ctx context.Context, key string) (model.Session, error)
	SetSession(ctx context.Context, key string, session model.Session) error
}

type Controller struct {
	portfolioService PortfolioService
	session          Session
}

func NewController(portfolioService PortfolioService, session Session) *Controller {
	return &Controller{
		portfolioService: portfolioService,
		session:          session,
	}
}

func callbackData(c tele.Context) string {
	return strings.TrimPrefix(c.Callback().Data, "\f")
}

func (ctrl *Controller) Start(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	_ = ctrl.portfolioService.RegUser(ctx, c.Chat().ID)

	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data("➕ New portfolio", tgCallback.NewPortfolio)),
		markup.Row(
			markup.Data("📂 Ongoing", tgCallback.ListOngoing),
			markup.Data("✅ Completed", tgCallback.ListCompleted),
		),
	)

	return c.Send("Hello! I track infinite buying portfolios: log your trades and I compute the next orders.", markup)
}

func (ctrl *Controller) getSessionFromTeleCtxOrStorage(ctx context.Context, c tele.Context) (model.Session, error) {
	chatSession, ok := c.Get("session").(model.Session)
	if ok {
		return chatSession, nil
	}

	rqID := utils.GetRequestIDFromCtx(ctx)
	chatSession, err := ctrl.session.GetSession(ctx, strconv.FormatInt(c.Chat().ID, 10))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return model.Session{}, nil
		}
		slog.Error("got error from session.GetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return model.Session{}, err
	}
	return chatSession, nil
}

func (ctrl *Controller) saveSession(ctx context.Context, c tele.Context, chatSession model.Session) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	err := ctrl.session.SetSession(ctx, strconv.FormatInt(c.Chat().ID, 10), chatSession)
	if err != nil {
		slog.Error("got error from session.SetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
	}
	return err
}

func (ctrl *Controller) InitPortfolioCreation(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	chatSession.State = model.ExpectingPortfolioName
	chatSession.Draft = &model.PortfolioDraft{}
	if err = ctrl.saveSession(ctx, c, chatSession); err != nil {
		return c.Send(internalErrMsg)
	}

	return c.Send("Enter the portfolio name (usually the ticker):")
}

func (ctrl *Controller) ProcessPortfolioName(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	name := strings.TrimSpace(c.Message().Text)
	if name == "" {
		return c.Send("name can't be empty, try again:")
	}

	if chatSession.Draft == nil {
		chatSession.Draft = &model.PortfolioDraft{}
	}
	chatSession.Draft.Name = name
	chatSession.State = model.ExpectingTotalInvestment
	if err = ctrl.saveSession(ctx, c, chatSession); err != nil {
		return c.Send(internalErrMsg)
	}

	return c.Send("Enter the total investment amount:")
}

func (ctrl *Controller) ProcessTotalInvestment(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(c.Message().Text))
	if err != nil || !amount.IsPositive() {
		return c.Send("enter a positive number, e.g. 10000:")
	}

	if chatSession.Draft == nil {
		chatSession.Draft = &model.PortfolioDraft{}
	}
	chatSession.Draft.TotalInvestment = amount
	chatSession.State = model.ExpectingInstallments
	if err = ctrl.saveSession(ctx, c, chatSession); err != nil {
		return c.Send(internalErrMsg)
	}

	return c.Send("Enter the number of installments (40 is the usual split):")
}

func (ctrl *Controller) ProcessInstallments(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	installments, err := strconv.Atoi(strings.TrimSpace(c.Message().Text))
	if err != nil || installments <= 0 {
		return c.Send("enter a positive whole number, e.g. 40:")
	}

	if chatSession.Draft == nil {
		chatSession.State = model.DefaultState
		_ = ctrl.saveSession(ctx, c, chatSession)
		return c.Send(internalErrMsg)
	}

	portfolioID, err := ctrl.portfolioService.CreatePortfolio(ctx, c.Chat().ID, chatSession.Draft.Name, chatSession.Draft.TotalInvestment, installments)
	if err != nil {
		slog.Error("got error from portfolioService.CreatePortfolio", slog.String("rqID", rqID), slog.String("err", err.Error()))
		if errors.Is(err, service.ErrInvalidInput) {
			return c.Send("invalid portfolio parameters, start over with /new_portfolio")
		}
		return c.Send(internalErrMsg)
	}

	chatSession.State = model.DefaultState
	chatSession.PortfolioID = portfolioID
	chatSession.Draft = nil
	_ = ctrl.saveSession(ctx, c, chatSession)

	return ctrl.sendPortfolioDetails(ctx, c, portfolioID)
}

func (ctrl *Controller) sendPortfolioDetails(ctx context.Context, c tele.Context, portfolioID int64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	details, err := ctrl.portfolioService.GetPortfolioDetails(ctx, portfolioID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Send("portfolio not found")
		}
		slog.Error("got error from portfolioService.GetPortfolioDetails", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	text, markup := telebotConverter.PortfolioDetailsResponse(details)
	return c.Send(text, markup)
}

func (ctrl *Controller) ShowPortfolio(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	portfolioID, err := strconv.ParseInt(strings.TrimPrefix(callbackData(c), tgCallback.PortfolioPrefix), 10, 64)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}
	chatSession.PortfolioID = portfolioID
	chatSession.State = model.DefaultState
	_ = ctrl.saveSession(ctx, c, chatSession)

	return ctrl.sendPortfolioDetails(ctx, c, portfolioID)
}

func (ctrl *Controller) ShowCurrentPortfolio(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}
	if chatSession.PortfolioID == 0 {
		return c.Send(noPortfolioChosen)
	}

	return ctrl.sendPortfolioDetails(ctx, c, chatSession.PortfolioID)
}

func (ctrl *Controller) ShowPlan(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}
	if chatSession.PortfolioID == 0 {
		return c.Send(noPortfolioChosen)
	}

	details, err := ctrl.portfolioService.GetPortfolioDetails(ctx, chatSession.PortfolioID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Send("portfolio not found")
		}
		slog.Error("got error from portfolioService.GetPortfolioDetails", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	return c.Send(telebotConverter.RecommendationResponse(details))
}

func (ctrl *Controller) InitBuyInput(c tele.Context) error {
	return ctrl.initTxInput(c, model.ExpectingBuyInput)
}

func (ctrl *Controller) InitSellInput(c tele.Context) error {
	return ctrl.initTxInput(c, model.ExpectingSellInput)
}

func (ctrl *Controller) initTxInput(c tele.Context, state model.SessionState) error {
	ctx := utils.CreateCtxWithRqID(c)

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}
	if chatSession.PortfolioID == 0 {
		return c.Send(noPortfolioChosen)
	}

	chatSession.State = state
	if err = ctrl.saveSession(ctx, c, chatSession); err != nil {
		return c.Send(internalErrMsg)
	}

	return c.Send(txInputFormatMsg)
}

// parseTxInput parses "YYYY-MM-DD price quantity".
func parseTxInput(text string) (model.Transaction, error) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) != 3 {
		return model.Transaction{}, service.ErrInvalidInput
	}

	date, err := time.Parse("2006-01-02", fields[0])
	if err != nil {
		return model.Transaction{}, service.ErrInvalidInput
	}

	price, err := decimal.NewFromString(fields[1])
	if err != nil {
		return model.Transaction{}, service.ErrInvalidInput
	}

	quantity, err := decimal.NewFromString(fields[2])
	if err != nil {
		return model.Transaction{}, service.ErrInvalidInput
	}

	return model.Transaction{Date: date, Price: price, Quantity: quantity}, nil
}

func (ctrl *Controller) ProcessBuyInput(c tele.Context) error {
	return ctrl.processTxInput(c, model.TransactionBuy)
}

func (ctrl *Controller) ProcessSellInput(c tele.Context) error {
	return ctrl.processTxInput(c, model.TransactionSell)
}

func (ctrl *Controller) processTxInput(c tele.Context, txType model.TransactionType) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}
	if chatSession.PortfolioID == 0 {
		return c.Send(noPortfolioChosen)
	}

	tx, err := parseTxInput(c.Message().Text)
	if err != nil {
		return c.Send(txInputFormatMsg)
	}
	tx.Type = txType

	details, err := ctrl.portfolioService.AddTransaction(ctx, chatSession.PortfolioID, tx)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSellExceedsHoldings):
			return c.Send("sell quantity exceeds current holdings")
		case errors.Is(err, service.ErrInvalidInput):
			return c.Send(txInputFormatMsg)
		case errors.Is(err, service.ErrNotFound):
			return c.Send("portfolio not found")
		}
		slog.Error("got error from portfolioService.AddTransaction", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	chatSession.State = model.DefaultState
	_ = ctrl.saveSession(ctx, c, chatSession)

	text, markup := telebotConverter.PortfolioDetailsResponse(details)
	return c.Send(text, markup)
}

func (ctrl *Controller) ShowTransactions(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	portfolioID, err := strconv.ParseInt(strings.TrimPrefix(callbackData(c), tgCallback.TxLogPrefix), 10, 64)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	details, err := ctrl.portfolioService.GetPortfolioDetails(ctx, portfolioID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Send("portfolio not found")
		}
		slog.Error("got error from portfolioService.GetPortfolioDetails", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	text, markup := telebotConverter.TransactionsResponse(details)
	return c.Send(text, markup)
}

func (ctrl *Controller) InitEditTransaction(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	transactionID, err := strconv.ParseInt(strings.TrimPrefix(callbackData(c), tgCallback.EditTxPrefix), 10, 64)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}
	if chatSession.PortfolioID == 0 {
		return c.Send(noPortfolioChosen)
	}

	chatSession.State = model.ExpectingEditInput
	chatSession.EditTransactionID = transactionID
	if err = ctrl.saveSession(ctx, c, chatSession); err != nil {
		return c.Send(internalErrMsg)
	}

	return c.Send(editInputFormat)
}

func (ctrl *Controller) ProcessEditInput(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}
	if chatSession.PortfolioID == 0 || chatSession.EditTransactionID == 0 {
		return c.Send(noPortfolioChosen)
	}

	fields := strings.Fields(strings.TrimSpace(c.Message().Text))
	if len(fields) != 4 {
		return c.Send(editInputFormat)
	}

	var txType model.TransactionType
	switch strings.ToLower(fields[0]) {
	case "buy":
		txType = model.TransactionBuy
	case "sell":
		txType = model.TransactionSell
	default:
		return c.Send(editInputFormat)
	}

	tx, err := parseTxInput(strings.Join(fields[1:], " "))
	if err != nil {
		return c.Send(editInputFormat)
	}
	tx.Type = txType
	tx.ID = chatSession.EditTransactionID

	details, err := ctrl.portfolioService.EditTransaction(ctx, chatSession.PortfolioID, tx)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			return c.Send(editInputFormat)
		case errors.Is(err, service.ErrNotFound):
			return c.Send("transaction not found")
		}
		slog.Error("got error from portfolioService.EditTransaction", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	chatSession.State = model.DefaultState
	chatSession.EditTransactionID = 0
	_ = ctrl.saveSession(ctx, c, chatSession)

	text, markup := telebotConverter.TransactionsResponse(details)
	return c.Send(text, markup)
}

func (ctrl *Controller) DeleteTransaction(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	transactionID, err := strconv.ParseInt(strings.TrimPrefix(callbackData(c), tgCallback.DeleteTxPrefix), 10, 64)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}
	if chatSession.PortfolioID == 0 {
		return c.Send(noPortfolioChosen)
	}

	details, err := ctrl.portfolioService.DeleteTransaction(ctx, chatSession.PortfolioID, transactionID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Send("transaction not found")
		}
		slog.Error("got error from portfolioService.DeleteTransaction", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	text, markup := telebotConverter.TransactionsResponse(details)
	return c.Send(text, markup)
}

func (ctrl *Controller) DeletePortfolio(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}
	if chatSession.PortfolioID == 0 {
		return c.Send(noPortfolioChosen)
	}

	if err = ctrl.portfolioService.DeletePortfolio(ctx, chatSession.PortfolioID); err != nil {
		slog.Error("got error from portfolioService.DeletePortfolio", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	chatSession.PortfolioID = 0
	chatSession.State = model.DefaultState
	_ = ctrl.saveSession(ctx, c, chatSession)

	return c.Send("portfolio deleted")
}

func (ctrl *Controller) ListOngoing(c tele.Context) error {
	return ctrl.listPortfolios(c, model.StatusOngoing, 1)
}

func (ctrl *Controller) ListCompleted(c tele.Context) error {
	return ctrl.listPortfolios(c, model.StatusCompleted, 1)
}

// ListPage handles prev_page/next_page callbacks carrying "status:page".
func (ctrl *Controller) ListPage(c tele.Context) error {
	data := callbackData(c)
	data = strings.TrimPrefix(data, tgCallback.PrevPagePrefix)
	data = strings.TrimPrefix(data, tgCallback.NextPagePrefix)

	parts := strings.SplitN(data, ":", 2)
	if len(parts) != 2 {
		return c.Send(internalErrMsg)
	}

	page, err := strconv.Atoi(parts[1])
	if err != nil {
		return c.Send(internalErrMsg)
	}

	return ctrl.listPortfolios(c, model.PortfolioStatus(parts[0]), page)
}

func (ctrl *Controller) listPortfolios(c tele.Context, status model.PortfolioStatus, page int) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	portfolioPage, err := ctrl.portfolioService.GetPortfoliosPage(ctx, c.Chat().ID, status, page)
	if err != nil {
		slog.Error("got error from portfolioService.GetPortfoliosPage", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	title := "📂 Ongoing portfolios"
	if status == model.StatusCompleted {
		title = "✅ Completed portfolios"
	}

	text, markup := telebotConverter.PortfolioListResponse(portfolioPage, status, title)
	return c.Send(text, markup)
}

func (ctrl *Controller) ShowEvaluation(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	portfolioID, err := strconv.ParseInt(strings.TrimPrefix(callbackData(c), tgCallback.EvaluationPrefix), 10, 64)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}
	chatSession.PortfolioID = portfolioID
	_ = ctrl.saveSession(ctx, c, chatSession)

	details, err := ctrl.portfolioService.GetEvaluation(ctx, portfolioID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotCompleted):
			return c.Send("portfolio is not completed yet")
		case errors.Is(err, service.ErrNotFound):
			return c.Send("portfolio not found")
		}
		slog.Error("got error from portfolioService.GetEvaluation", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	text, markup := telebotConverter.EvaluationResponse(details)
	return c.Send(text, markup)
}

func (ctrl *Controller) GenerateReport(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}
	if chatSession.PortfolioID == 0 {
		return c.Send(noPortfolioChosen)
	}

	if err = c.Send("building the report..."); err != nil {
		slog.Error("can't send message", slog.String("rqID", rqID), slog.String("err", err.Error()))
	}

	link, err := ctrl.portfolioService.GenerateEvaluationReport(ctx, chatSession.PortfolioID)
	if err != nil {
		if errors.Is(err, service.ErrNotCompleted) {
			return c.Send("portfolio is not completed yet")
		}
		slog.Error("got error from portfolioService.GenerateEvaluationReport", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	return c.Send("report is ready: " + link)
}
