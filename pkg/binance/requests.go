package binance

import (
	"net/url"

	"github.com/cockroachdb/apd/v3"

	"venuelink/pkg/core"
)

// venueFlavor selects the parameter dialect. Spot and futures disagree on the
// stop-limit order type and on quote-amount market orders.
type venueFlavor int

const (
	flavorSpot venueFlavor = iota
	flavorFutures
)

func (f venueFlavor) stopLimitType() string {
	if f == flavorFutures {
		return "STOP"
	}
	return "STOP_LOSS_LIMIT"
}

// ExchangeOrder is an order intent. The concrete variants are MarketOrder,
// LimitOrder and StopLimitOrder; each validates its inputs and renders the
// venue parameters when submitted through an account facade.
type ExchangeOrder interface {
	orderParams(flavor venueFlavor) (url.Values, error)
}

// baseParams renders the fields shared by every order variant.
func baseParams(operation core.OrderOperation, symbol, orderType, clientOrderID string) url.Values {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("side", operation.String())
	params.Set("type", orderType)
	if clientOrderID != "" {
		params.Set("newClientOrderId", clientOrderID)
	}
	return params
}

// applyExtras forwards extra venue parameters verbatim, overriding rendered
// ones on collision.
func applyExtras(params, extra url.Values) url.Values {
	for key, values := range extra {
		for _, value := range values {
			params.Set(key, value)
		}
	}
	return params
}

// MarketOrder executes immediately at the best available price. Either Amount
// (base units) or QuoteAmount (quote units) must be set, but not both.
// QuoteAmount is spot only.
type MarketOrder struct {
	Operation core.OrderOperation
	// Symbol is the venue symbol (e.g. "BTCUSDT").
	Symbol string
	// Amount is the order size in base units.
	Amount *apd.Decimal
	// QuoteAmount is the order size in quote units.
	QuoteAmount *apd.Decimal
	// ClientOrderID is forwarded unmodified when set.
	ClientOrderID string
	// ExtraParams are forwarded to the venue verbatim.
	ExtraParams url.Values
}

func (o *MarketOrder) orderParams(flavor venueFlavor) (url.Values, error) {
	if o.Amount == nil && o.QuoteAmount == nil {
		return nil, core.NewConfigurationError("either amount or quote amount must be set")
	}
	if o.Amount != nil && o.QuoteAmount != nil {
		return nil, core.NewConfigurationError("amount and quote amount are mutually exclusive")
	}
	if o.QuoteAmount != nil && flavor == flavorFutures {
		return nil, core.NewConfigurationError("quote amount market orders are not supported on futures")
	}
	params := baseParams(o.Operation, o.Symbol, "MARKET", o.ClientOrderID)
	if o.Amount != nil {
		params.Set("quantity", formatDecimal(o.Amount))
	} else {
		params.Set("quoteOrderQty", formatDecimal(o.QuoteAmount))
	}
	return applyExtras(params, o.ExtraParams), nil
}

// LimitOrder rests on the book at LimitPrice. TimeInForce defaults to GTC.
type LimitOrder struct {
	Operation     core.OrderOperation
	Symbol        string
	Amount        *apd.Decimal
	LimitPrice    *apd.Decimal
	TimeInForce   core.TimeInForce
	ClientOrderID string
	ExtraParams   url.Values
}

func (o *LimitOrder) orderParams(venueFlavor) (url.Values, error) {
	if o.Amount == nil {
		return nil, core.NewConfigurationError("amount must be set")
	}
	if o.LimitPrice == nil {
		return nil, core.NewConfigurationError("limit price must be set")
	}
	tif := o.TimeInForce
	if tif == "" {
		tif = core.GTC
	}
	params := baseParams(o.Operation, o.Symbol, "LIMIT", o.ClientOrderID)
	params.Set("quantity", formatDecimal(o.Amount))
	params.Set("price", formatDecimal(o.LimitPrice))
	params.Set("timeInForce", string(tif))
	return applyExtras(params, o.ExtraParams), nil
}

// StopLimitOrder places a limit order at LimitPrice once StopPrice trades.
// TimeInForce defaults to GTC.
type StopLimitOrder struct {
	Operation     core.OrderOperation
	Symbol        string
	Amount        *apd.Decimal
	StopPrice     *apd.Decimal
	LimitPrice    *apd.Decimal
	TimeInForce   core.TimeInForce
	ClientOrderID string
	ExtraParams   url.Values
}

func (o *StopLimitOrder) orderParams(flavor venueFlavor) (url.Values, error) {
	if o.Amount == nil {
		return nil, core.NewConfigurationError("amount must be set")
	}
	if o.StopPrice == nil {
		return nil, core.NewConfigurationError("stop price must be set")
	}
	if o.LimitPrice == nil {
		return nil, core.NewConfigurationError("limit price must be set")
	}
	tif := o.TimeInForce
	if tif == "" {
		tif = core.GTC
	}
	params := baseParams(o.Operation, o.Symbol, flavor.stopLimitType(), o.ClientOrderID)
	params.Set("quantity", formatDecimal(o.Amount))
	params.Set("stopPrice", formatDecimal(o.StopPrice))
	params.Set("price", formatDecimal(o.LimitPrice))
	params.Set("timeInForce", string(tif))
	return applyExtras(params, o.ExtraParams), nil
}

// orderRef validates the order id / client order id pair used by order
// queries and cancels: exactly one must be set.
func orderRef(params url.Values, orderID, clientOrderID string) error {
	if orderID == "" && clientOrderID == "" {
		return core.NewConfigurationError("either order id or client order id must be set")
	}
	if orderID != "" && clientOrderID != "" {
		return core.NewConfigurationError("order id and client order id are mutually exclusive")
	}
	if orderID != "" {
		params.Set("orderId", orderID)
	} else {
		params.Set("origClientOrderId", clientOrderID)
	}
	return nil
}
