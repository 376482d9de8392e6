package tgCallback

// Callback button prefixes
const (
	NewPortfolio    string = "new_portfolio"
	ListOngoing     string = "list_ongoing"
	ListCompleted   string = "list_completed"
	BuyInput        string = "buy_input"
	SellInput       string = "sell_input"
	ShowPlan        string = "show_plan"
	GenerateReport  string = "generate_report"
	DeletePortfolio string = "delete_portfolio"

	PortfolioPrefix  string = "portfolio:"
	TxLogPrefix      string = "tx_log:"
	EditTxPrefix     string = "edit_tx:"
	DeleteTxPrefix   string = "delete_tx:"
	EvaluationPrefix string = "evaluation:"
	PrevPagePrefix   string = "prev_page:"
	NextPagePrefix   string = "next_page:"
)
