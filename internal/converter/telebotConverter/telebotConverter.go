package telebotConverter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v4"

	"github.com/jaehyuk-lee/infinite_buying_bot/internal/model"
	"github.com/jaehyuk-lee/infinite_buying_bot/internal/model/tg/tgCallback"
)

var hundred = decimal.NewFromInt(100)

func PortfolioDetailsResponse(details model.PortfolioDetails) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	var sb strings.Builder

	p := details.Portfolio

	sb.WriteString(fmt.Sprintf("📊 Portfolio: %s\n", p.Name))
	sb.WriteString(fmt.Sprintf("💰 Total investment: %s\n", p.TotalInvestment.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("📆 Installments: %d\n\n", p.Installments))

	sb.WriteString(fmt.Sprintf("▸ Shares held: %s\n", details.Stats.SharesHeld.String()))
	sb.WriteString(fmt.Sprintf("▸ Average price: %s\n", details.Stats.AvgPrice.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("▸ Total paid: %s\n", details.Stats.TotalPaid.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("▸ Total sold: %s\n", details.Stats.TotalSold.StringFixed(2)))

	if p.IsQuarterLossCut {
		sb.WriteString(fmt.Sprintf("\n⚠️ Quarter loss-cut mode (buys: %d/10)\n", p.QuarterBuyCount))
	}

	if p.Status == model.StatusCompleted {
		sb.WriteString("\n✅ Completed")
		if p.EvaluationResult != nil {
			sb.WriteString(fmt.Sprintf(" | net profit: %s (%s%%)", p.EvaluationResult.NetProfit().StringFixed(2), p.EvaluationResult.ROIPercent().StringFixed(2)))
		}
		sb.WriteString("\n")

		markup.Inline(
			markup.Row(markup.Data("📈 Evaluation", tgCallback.EvaluationPrefix+strconv.FormatInt(p.ID, 10))),
			markup.Row(markup.Data("📋 Transactions", tgCallback.TxLogPrefix+strconv.FormatInt(p.ID, 10))),
			markup.Row(markup.Data("🗑 Delete portfolio", tgCallback.DeletePortfolio)),
		)
		return sb.String(), markup
	}

	markup.Inline(
		markup.Row(
			markup.Data("🟢 Buy", tgCallback.BuyInput),
			markup.Data("🔴 Sell", tgCallback.SellInput),
		),
		markup.Row(markup.Data("🎯 Trading plan", tgCallback.ShowPlan)),
		markup.Row(markup.Data("📋 Transactions", tgCallback.TxLogPrefix+strconv.FormatInt(p.ID, 10))),
		markup.Row(markup.Data("🗑 Delete portfolio", tgCallback.DeletePortfolio)),
	)

	return sb.String(), markup
}

func RecommendationResponse(details model.PortfolioDetails) string {
	var sb strings.Builder

	rec := details.Recommendation

	switch rec.Mode {
	case model.ModeNoAction:
		sb.WriteString("🎯 No orders today.\n")
		sb.WriteString("Add a buy first, or the portfolio is already closed out.\n")
		return sb.String()
	case model.ModeTransitionToLossCut:
		sb.WriteString("🚨 Budget exhausted: switching to quarter loss-cut.\n\n")
	case model.ModeQuarterLossCut:
		sb.WriteString(fmt.Sprintf("⚠️ Quarter loss-cut mode (buys: %d/10)\n\n", rec.QuarterBuyCount))
	default:
		sb.WriteString("🎯 Trading plan\n")
		sb.WriteString(fmt.Sprintf("▸ T: %s\n", rec.T.String()))
		sb.WriteString(fmt.Sprintf("▸ Sell premium: %s%%\n", rec.SPPercentage.Mul(hundred).StringFixed(1)))
		sb.WriteString(fmt.Sprintf("▸ One-time buy amount: %s\n\n", rec.OneTimeBuyAmount.StringFixed(2)))
	}

	if len(rec.BuyOrders) > 0 {
		sb.WriteString("🟢 Buy orders:\n")
		for _, order := range rec.BuyOrders {
			sb.WriteString(formatOrder(order))
		}
		sb.WriteString("\n")
	}

	if len(rec.SellOrders) > 0 {
		sb.WriteString("🔴 Sell orders:\n")
		for _, order := range rec.SellOrders {
			sb.WriteString(formatOrder(order))
		}
	}

	return sb.String()
}

func formatOrder(order model.Order) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("▸ %s", order.OrderType))
	if order.OrderType != model.OrderMOC {
		sb.WriteString(fmt.Sprintf(" @ %s", order.Price.StringFixed(2)))
	}
	sb.WriteString(fmt.Sprintf(" × %d", order.Quantity))
	if order.Portion != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", order.Portion))
	}
	if order.Description != "" {
		sb.WriteString(" - " + order.Description)
	}
	sb.WriteString("\n")

	return sb.String()
}

func TransactionsResponse(details model.PortfolioDetails) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("📋 Transactions: %s\n\n", details.Portfolio.Name))

	if len(details.Portfolio.Transactions) == 0 {
		sb.WriteString("no transactions yet")
		return sb.String(), markup
	}

	rows := make([]tele.Row, 0, len(details.Portfolio.Transactions))
	for _, tx := range details.Portfolio.Transactions {
		emoji := "🟢"
		if tx.Type == model.TransactionSell {
			emoji = "🔴"
		}
		sb.WriteString(fmt.Sprintf(
			"%s #%d %s | %s × %s = %s\n",
			emoji,
			tx.ID,
			tx.Date.Format("2006-01-02"),
			tx.Price.StringFixed(2),
			tx.Quantity.String(),
			tx.Amount().StringFixed(2),
		))

		txID := strconv.FormatInt(tx.ID, 10)
		rows = append(rows, markup.Row(
			markup.Data(fmt.Sprintf("✏️ #%d", tx.ID), tgCallback.EditTxPrefix+txID),
			markup.Data(fmt.Sprintf("🗑 #%d", tx.ID), tgCallback.DeleteTxPrefix+txID),
		))
	}

	markup.Inline(rows...)

	return sb.String(), markup
}

func PortfolioListResponse(page model.PortfolioPage, status model.PortfolioStatus, title string) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	var sb strings.Builder

	sb.WriteString(title + "\n\n")

	if len(page.Portfolios) == 0 {
		sb.WriteString("nothing here yet")
		return sb.String(), markup
	}

	rows := make([]tele.Row, 0, len(page.Portfolios)+1)
	for _, p := range page.Portfolios {
		label := p.Name
		if p.Status == model.StatusCompleted && p.EvaluationResult != nil {
			label = fmt.Sprintf("%s | %s (%s%%)", p.Name, p.EvaluationResult.NetProfit().StringFixed(2), p.EvaluationResult.ROIPercent().StringFixed(2))
		}
		rows = append(rows, markup.Row(markup.Data(label, tgCallback.PortfolioPrefix+strconv.FormatInt(p.ID, 10))))
	}

	paginationBtns := make([]tele.Btn, 0, 2)
	if page.CurPage > 1 {
		paginationBtns = append(paginationBtns, markup.Data("⬅️ prev", tgCallback.PrevPagePrefix+string(status)+":"+strconv.Itoa(page.CurPage-1)))
	}
	if page.HasNextPage {
		paginationBtns = append(paginationBtns, markup.Data("next ➡️", tgCallback.NextPagePrefix+string(status)+":"+strconv.Itoa(page.CurPage+1)))
	}
	if len(paginationBtns) > 0 {
		rows = append(rows, markup.Row(paginationBtns...))
	}

	markup.Inline(rows...)

	return sb.String(), markup
}

func EvaluationResponse(details model.PortfolioDetails) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	var sb strings.Builder

	p := details.Portfolio

	sb.WriteString(fmt.Sprintf("📈 Result: %s\n\n", p.Name))

	if p.EvaluationResult == nil {
		sb.WriteString("portfolio is not completed yet")
		return sb.String(), markup
	}

	sb.WriteString(fmt.Sprintf("▸ Total paid: %s\n", p.EvaluationResult.TotalPaid.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("▸ Total sold: %s\n", p.EvaluationResult.TotalSold.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("▸ Net profit: %s\n", p.EvaluationResult.NetProfit().StringFixed(2)))
	sb.WriteString(fmt.Sprintf("▸ ROI: %s%%\n", p.EvaluationResult.ROIPercent().StringFixed(2)))

	if p.StartDate != nil {
		sb.WriteString(fmt.Sprintf("▸ Started: %s\n", p.StartDate.Format("2006-01-02")))
	}
	if p.EndDate != nil {
		sb.WriteString(fmt.Sprintf("▸ Finished: %s\n", p.EndDate.Format("2006-01-02")))
	}

	markup.Inline(markup.Row(markup.Data("📄 Excel report", tgCallback.GenerateReport)))

	return sb.String(), markup
}
