package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Action is the normalized verb carried by an inbound signal.
type Action string

const (
	ActionBuy     Action = "BUY"
	ActionSell    Action = "SELL"
	ActionUnknown Action = "UNKNOWN"
)

// ParseAction maps free-form sender input onto an Action. Anything other than
// BUY or SELL (case-insensitive) is ActionUnknown.
func ParseAction(raw string) Action {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "BUY":
		return ActionBuy
	case "SELL":
		return ActionSell
	default:
		return ActionUnknown
	}
}

// NormalizeSymbol trims and upper-cases a ticker.
func NormalizeSymbol(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

type Signal struct {
	Symbol string `json:"symbol"`
	Action Action `json:"action"`
}

// TradingConfig holds the parameters in effect for one symbol.
type TradingConfig struct {
	Symbol       string          `json:"symbol"`
	OrderSize    decimal.Decimal `json:"order_size"`
	MinProfitPct decimal.Decimal `json:"min_profit_pct"`
}

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

type Quote struct {
	Last decimal.Decimal `json:"last"`
	Bid  decimal.Decimal `json:"bid"`
	Ask  decimal.Decimal `json:"ask"`
}

type Position struct {
	Symbol      string          `json:"symbol"`
	Quantity    int64           `json:"quantity"`
	AverageCost decimal.Decimal `json:"average_cost"`
	MarketPrice decimal.Decimal `json:"market_price"`
}

// OrderIntent is a resting limit order the engine wants submitted.
type OrderIntent struct {
	Symbol     string          `json:"symbol"`
	Side       Side            `json:"side"`
	Quantity   int64           `json:"quantity"`
	LimitPrice decimal.Decimal `json:"limit_price"`
	Tag        string          `json:"tag,omitempty"`
}

type OrderResp struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// OutcomeStatus separates real failures from decisions not to trade.
type OutcomeStatus string

const (
	OutcomeSubmitted OutcomeStatus = "SUBMITTED"
	OutcomeSkipped   OutcomeStatus = "SKIPPED"
	OutcomeFailed    OutcomeStatus = "FAILED"
)

const (
	ReasonNoConfig          = "NO_CONFIG"
	ReasonInsufficientFunds = "INSUFFICIENT_FUNDS"
	ReasonNoPrice           = "NO_PRICE"
	ReasonZeroQuantity      = "ZERO_QUANTITY"
	ReasonNoPosition        = "NO_POSITION"
	ReasonNoCostBasis       = "NO_COST_BASIS"
	ReasonBelowThreshold    = "BELOW_THRESHOLD"
	ReasonUnknownAction     = "UNKNOWN_ACTION"
	ReasonMissingSymbol     = "MISSING_SYMBOL"
	ReasonBrokerError       = "BROKER_ERROR"
	ReasonOrderSubmitted    = "ORDER_SUBMITTED"
)

// Outcome is the result of evaluating one signal.
type Outcome struct {
	Symbol string        `json:"symbol"`
	Action Action        `json:"action"`
	Status OutcomeStatus `json:"status"`
	Reason string        `json:"reason"`
	Order  *OrderIntent  `json:"order,omitempty"`
	Resp   *OrderResp    `json:"resp,omitempty"`
	Error  string        `json:"error,omitempty"`
}

func (o *Outcome) Submitted() bool { return o != nil && o.Status == OutcomeSubmitted }

// Ack is the fixed reply handed back to a signal transport.
type Ack struct {
	Status string `json:"status"`
}

var Processed = Ack{Status: "processed"}
