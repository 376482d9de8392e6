package model

import "github.com/shopspring/decimal"

type RecommendationMode string

const (
	ModeNormal              RecommendationMode = "normal"
	ModeTransitionToLossCut RecommendationMode = "transition-to-loss-cut"
	ModeQuarterLossCut      RecommendationMode = "quarter-loss-cut"
	ModeNoAction            RecommendationMode = "no-action"
)

type OrderType string

const (
	OrderLOC   OrderType = "LOC"
	OrderLimit OrderType = "Limit"
	OrderMOC   OrderType = "MOC"
)

// Order is a single recommended order. Price is meaningless for MOC orders
// (market-on-close has no limit price).
type Order struct {
	Type        TransactionType
	OrderType   OrderType
	Price       decimal.Decimal
	Quantity    int64
	Portion     string
	Description string
}

// Recommendation is the next-trade plan computed from current portfolio state.
// Ephemeral: recomputed on demand, never persisted.
type Recommendation struct {
	Mode             RecommendationMode
	BuyOrders        []Order
	SellOrders       []Order
	T                decimal.Decimal
	SPPercentage     decimal.Decimal
	OneTimeBuyAmount decimal.Decimal
	QuarterBuyCount  int
}
