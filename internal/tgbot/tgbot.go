package tgbot

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
	"gopkg.in/telebot.v4/middleware"

	"github.com/jaehyuk-lee/infinite_buying_bot/config"
	"github.com/jaehyuk-lee/infinite_buying_bot/data/session"
	"github.com/jaehyuk-lee/infinite_buying_bot/internal/model"
	"github.com/jaehyuk-lee/infinite_buying_bot/internal/model/tg/tgCallback"
	"github.com/jaehyuk-lee/infinite_buying_bot/internal/transport/telegram"
	customMW "github.com/jaehyuk-lee/infinite_buying_bot/internal/transport/telegram/middleware"
	"github.com/jaehyuk-lee/infinite_buying_bot/utils"
)

type Session interface {
	GetSession(ctx context.Context, key string) (model.Session, error)
	SetSession(ctx context.Context, key string, session model.Session) error
}

type TGBot struct {
	bot     *tele.Bot
	ctrl    *telegram.Controller
	session Session
}

func New(cfg *config.Config, ctrl *telegram.Controller, session Session) *TGBot {
	settings := tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &tele.LongPoller{Timeout: cfg.Telegram.UpdTimeout},
	}

	b, err := tele.NewBot(settings)
	if err != nil {
		slog.Error("error while tele.NewBot", slog.String("err", err.Error()))
		panic(err)
	}

	return &TGBot{bot: b, ctrl: ctrl, session: session}
}

func (b *TGBot) Start() {
	b.bot.Use(middleware.Recover(), customMW.Logger())

	b.setupRoutes()

	go b.bot.Start()
	slog.Info("tgbot started!")
}

func (b *TGBot) Stop() {
	slog.Info("start stopping tgbot")
	b.bot.Stop()
	slog.Info("tgbot stopped")
}

func (b *TGBot) setupRoutes() {
	// free-text routing depends on the dialog step stored in the session
	b.bot.Handle(tele.OnText, func(c tele.Context) error {
		ctx := utils.CreateCtxWithRqID(c)
		rqID := utils.GetRequestIDFromCtx(ctx)

		chatSession, err := b.session.GetSession(ctx, strconv.FormatInt(c.Chat().ID, 10))
		if err != nil && !errors.Is(err, session.ErrNotFound) {
			slog.Error("got error from session.GetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
			return c.Send("something went wrong, try again later...")
		}

		c.Set("session", chatSession)

		switch chatSession.State {
		case model.ExpectingPortfolioName:
			return b.ctrl.ProcessPortfolioName(c)
		case model.ExpectingTotalInvestment:
			return b.ctrl.ProcessTotalInvestment(c)
		case model.ExpectingInstallments:
			return b.ctrl.ProcessInstallments(c)
		case model.ExpectingBuyInput:
			return b.ctrl.ProcessBuyInput(c)
		case model.ExpectingSellInput:
			return b.ctrl.ProcessSellInput(c)
		case model.ExpectingEditInput:
			return b.ctrl.ProcessEditInput(c)
		default:
			return c.Send("start with one of the commands: /start /new_portfolio /portfolios")
		}
	})

	b.bot.Handle("/start", b.ctrl.Start)
	b.bot.Handle("/new_portfolio", b.ctrl.InitPortfolioCreation)
	b.bot.Handle("/portfolios", b.ctrl.ListOngoing)
	b.bot.Handle("/completed", b.ctrl.ListCompleted)
	b.bot.Handle("/portfolio", b.ctrl.ShowCurrentPortfolio)
	b.bot.Handle("/plan", b.ctrl.ShowPlan)

	b.bot.Handle(tele.OnCallback, func(c tele.Context) error {
		// raw unmatched callbacks keep the \f marker prepended by telebot
		data := strings.TrimPrefix(c.Callback().Data, "\f")

		switch data {
		case tgCallback.NewPortfolio:
			return b.ctrl.InitPortfolioCreation(c)
		case tgCallback.ListOngoing:
			return b.ctrl.ListOngoing(c)
		case tgCallback.ListCompleted:
			return b.ctrl.ListCompleted(c)
		case tgCallback.BuyInput:
			return b.ctrl.InitBuyInput(c)
		case tgCallback.SellInput:
			return b.ctrl.InitSellInput(c)
		case tgCallback.ShowPlan:
			return b.ctrl.ShowPlan(c)
		case tgCallback.GenerateReport:
			return b.ctrl.GenerateReport(c)
		case tgCallback.DeletePortfolio:
			return b.ctrl.DeletePortfolio(c)
		}

		switch {
		case strings.HasPrefix(data, tgCallback.PortfolioPrefix):
			return b.ctrl.ShowPortfolio(c)
		case strings.HasPrefix(data, tgCallback.TxLogPrefix):
			return b.ctrl.ShowTransactions(c)
		case strings.HasPrefix(data, tgCallback.EditTxPrefix):
			return b.ctrl.InitEditTransaction(c)
		case strings.HasPrefix(data, tgCallback.DeleteTxPrefix):
			return b.ctrl.DeleteTransaction(c)
		case strings.HasPrefix(data, tgCallback.EvaluationPrefix):
			return b.ctrl.ShowEvaluation(c)
		case strings.HasPrefix(data, tgCallback.PrevPagePrefix), strings.HasPrefix(data, tgCallback.NextPagePrefix):
			return b.ctrl.ListPage(c)
		}

		slog.Warn("unknown callback", slog.String("data", data))
		return nil
	})
}
