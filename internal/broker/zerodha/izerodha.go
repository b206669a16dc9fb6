package zerodha

import (
	kiteconnect "github.com/zerodha/gokiteconnect/v4"
)

// kiteClient is the subset of the Kite Connect REST client the gateway uses.
type kiteClient interface {
	// GetUserMargins returns equity and commodity margins for the account
	GetUserMargins() (kiteconnect.AllMargins, error)

	// GetPositions returns net and day positions
	GetPositions() (kiteconnect.Positions, error)

	// GetQuote returns full quotes keyed by "EXCHANGE:SYMBOL"
	GetQuote(instruments ...string) (kiteconnect.Quote, error)

	// PlaceOrder places an order of the given variety
	PlaceOrder(variety string, orderParams kiteconnect.OrderParams) (kiteconnect.OrderResponse, error)
}

var _ kiteClient = (*kiteconnect.Client)(nil)
