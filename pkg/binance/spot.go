package binance

import (
	"context"
	"net/url"

	"github.com/cockroachdb/apd/v3"
	"github.com/rs/zerolog"

	"venuelink/internal/circuitbreaker"
	"venuelink/internal/ratelimit"
	"venuelink/internal/transport"
	"venuelink/pkg/core"
	"venuelink/pkg/dispatch"
)

const (
	spotAPIURL           = "https://api.binance.com"
	spotTestnetAPIURL    = "https://testnet.binance.vision"
	spotStreamURL        = "wss://stream.binance.com:9443/stream"
	spotTestnetStreamURL = "wss://stream.testnet.binance.vision/stream"
)

// SpotExchange is the spot venue facade: market data subscriptions, pair
// metadata and the spot account.
type SpotExchange struct {
	exec    *executor
	mux     *multiplexer
	account *SpotAccount
	logger  zerolog.Logger
}

// NewSpotExchange creates a spot facade from the config. Collaborators not
// overridden through options are built from the config: a token-bucket
// limiter, a signed REST transport (with circuit breaker when enabled) and a
// reconnecting combined-stream websocket.
func NewSpotExchange(cfg *core.Config, opts ...Option) (*SpotExchange, error) {
	if cfg == nil {
		cfg = core.DefaultConfig()
	}
	if !cfg.AccountType.IsSpotOrMargin() {
		return nil, core.NewConfigurationError("invalid account type for spot exchange: %s", cfg.AccountType)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.limiter == nil {
		o.limiter = ratelimit.New(cfg.RateLimitRequests, cfg.RateLimitPeriod)
	}
	if o.dispatcher == nil {
		o.dispatcher = dispatch.NewDispatcher()
	}
	if o.rest == nil {
		var breaker *circuitbreaker.Breaker
		if cfg.CircuitBreakerEnabled {
			breaker = circuitbreaker.New(circuitbreaker.Config{
				FailThreshold:    cfg.CircuitBreakerFailThreshold,
				SuccessThreshold: cfg.CircuitBreakerSuccessThreshold,
				Timeout:          cfg.CircuitBreakerTimeout,
			})
		}
		baseURL := spotAPIURL
		if cfg.Testnet {
			baseURL = spotTestnetAPIURL
		}
		o.rest = transport.NewRestClient(cfg, baseURL, breaker, o.logger)
	}
	if o.stream == nil {
		streamURL := spotStreamURL
		if cfg.Testnet {
			streamURL = spotTestnetStreamURL
		}
		o.stream = transport.NewStreamClient(transport.StreamConfig{
			URL:              streamURL,
			ReconnectEnabled: true,
		}, o.logger)
	}

	exec := newExecutor(o.rest, o.limiter, o.logger)
	return &SpotExchange{
		exec:    exec,
		mux:     newMultiplexer(o.stream, o.dispatcher, o.logger),
		account: &SpotAccount{exec: exec},
		logger:  o.logger,
	}, nil
}

// SubscribeToBarEvents registers a handler for closed bars of the pair.
// barDuration accepts a core.Interval, the venue token ("1m") or the legacy
// duration in seconds (60); unknown values fail synchronously.
func (e *SpotExchange) SubscribeToBarEvents(ctx context.Context, pair core.Pair, barDuration any, handler BarEventHandler) error {
	interval, err := core.ResolveInterval(barDuration)
	if err != nil {
		return err
	}
	channel := barChannel(pair.Symbol(), interval)
	decode := func(frame []byte) (any, error) {
		event, err := decodeBarEvent(pair, frame)
		if err != nil || event == nil {
			return nil, err
		}
		return event, nil
	}
	return e.mux.subscribe(ctx, channel, decode, func(event any) {
		handler(event.(*BarEvent))
	})
}

// SubscribeToOrderBookEvents registers a handler for the top levels of the
// book. Valid depths are 5, 10 and 20.
func (e *SpotExchange) SubscribeToOrderBookEvents(ctx context.Context, pair core.Pair, depth int, handler OrderBookEventHandler) error {
	channel, err := orderBookChannel(pair.Symbol(), depth)
	if err != nil {
		return err
	}
	decode := func(frame []byte) (any, error) {
		event, err := decodeOrderBookEvent(pair, frame)
		if err != nil {
			return nil, err
		}
		return event, nil
	}
	return e.mux.subscribe(ctx, channel, decode, func(event any) {
		handler(event.(*OrderBookEvent))
	})
}

// SubscribeToTradeEvents registers a handler for every public trade of the
// pair.
func (e *SpotExchange) SubscribeToTradeEvents(ctx context.Context, pair core.Pair, handler TradeEventHandler) error {
	channel := tradeChannel(pair.Symbol())
	decode := func(frame []byte) (any, error) {
		event, err := decodeTradeEvent(pair, frame)
		if err != nil {
			return nil, err
		}
		return event, nil
	}
	return e.mux.subscribe(ctx, channel, decode, func(event any) {
		handler(event.(*TradeEvent))
	})
}

// GetPairInfo returns precision metadata for the pair. The first call per
// pair hits the venue; the result is cached for the facade's lifetime.
func (e *SpotExchange) GetPairInfo(ctx context.Context, pair core.Pair) (*core.PairInfoEx, error) {
	return e.exec.spotPairInfo(ctx, pair, "/api/v3/exchangeInfo")
}

// GetBidAsk returns the current best bid and ask price.
func (e *SpotExchange) GetBidAsk(ctx context.Context, pair core.Pair) (*apd.Decimal, *apd.Decimal, error) {
	return e.exec.bidAsk(ctx, pair.Symbol(), "/api/v3/depth")
}

// Account returns the spot account facade.
func (e *SpotExchange) Account() *SpotAccount {
	return e.account
}

// Close shuts down the websocket connection and the REST transport.
func (e *SpotExchange) Close() error {
	muxErr := e.mux.close()
	restErr := e.exec.rest.Close()
	if muxErr != nil {
		return muxErr
	}
	return restErr
}

// SpotAccount exposes the trading operations of a spot account. All calls are
// signed.
type SpotAccount struct {
	exec *executor
}

// GetBalances returns all asset balances keyed by asset symbol.
func (a *SpotAccount) GetBalances(ctx context.Context) (map[string]*Balance, error) {
	var account accountInfoWire
	if err := a.exec.callInto(ctx, "GET", "/api/v3/account", nil, true, &account); err != nil {
		return nil, err
	}
	balances := make(map[string]*Balance, len(account.Balances))
	for _, bw := range account.Balances {
		balance, err := newBalance(bw)
		if err != nil {
			return nil, err
		}
		balances[bw.Asset] = balance
	}
	return balances, nil
}

// CreateOrder submits an order intent and returns the creation view.
func (a *SpotAccount) CreateOrder(ctx context.Context, order ExchangeOrder) (*CreatedOrder, error) {
	params, err := order.orderParams(flavorSpot)
	if err != nil {
		return nil, err
	}
	var w orderWire
	if err := a.exec.callInto(ctx, "POST", "/api/v3/order", params, true, &w); err != nil {
		return nil, err
	}
	return newCreatedOrder(&w)
}

// CreateMarketOrder creates a market order for an amount in base units.
func (a *SpotAccount) CreateMarketOrder(ctx context.Context, operation core.OrderOperation, pair core.Pair, amount *apd.Decimal) (*CreatedOrder, error) {
	return a.CreateOrder(ctx, &MarketOrder{
		Operation: operation,
		Symbol:    pair.Symbol(),
		Amount:    amount,
	})
}

// CreateLimitOrder creates a GTC limit order.
func (a *SpotAccount) CreateLimitOrder(ctx context.Context, operation core.OrderOperation, pair core.Pair, amount, limitPrice *apd.Decimal) (*CreatedOrder, error) {
	return a.CreateOrder(ctx, &LimitOrder{
		Operation:  operation,
		Symbol:     pair.Symbol(),
		Amount:     amount,
		LimitPrice: limitPrice,
	})
}

// CreateStopLimitOrder creates a GTC stop limit order.
func (a *SpotAccount) CreateStopLimitOrder(ctx context.Context, operation core.OrderOperation, pair core.Pair, amount, stopPrice, limitPrice *apd.Decimal) (*CreatedOrder, error) {
	return a.CreateOrder(ctx, &StopLimitOrder{
		Operation:  operation,
		Symbol:     pair.Symbol(),
		Amount:     amount,
		StopPrice:  stopPrice,
		LimitPrice: limitPrice,
	})
}

// GetOrderInfo returns the order and its executions. Exactly one of orderID
// and clientOrderID must be set. Fetching trades costs one extra request.
func (a *SpotAccount) GetOrderInfo(ctx context.Context, pair core.Pair, orderID, clientOrderID string) (*OrderInfo, error) {
	params := url.Values{"symbol": {pair.Symbol()}}
	if err := orderRef(params, orderID, clientOrderID); err != nil {
		return nil, err
	}
	var w orderWire
	if err := a.exec.callInto(ctx, "GET", "/api/v3/order", params, true, &w); err != nil {
		return nil, err
	}

	tradeParams := url.Values{
		"symbol":  {pair.Symbol()},
		"orderId": {orderIDString(&w)},
	}
	var tradeWires []tradeWire
	if err := a.exec.callInto(ctx, "GET", "/api/v3/myTrades", tradeParams, true, &tradeWires); err != nil {
		return nil, err
	}
	trades := make([]*Trade, 0, len(tradeWires))
	for _, tw := range tradeWires {
		trade, err := newTrade(tw)
		if err != nil {
			return nil, err
		}
		trades = append(trades, trade)
	}
	return newOrderInfo(&w, trades)
}

// GetOpenOrders returns open orders, optionally restricted to one pair.
func (a *SpotAccount) GetOpenOrders(ctx context.Context, pair *core.Pair) ([]*OpenOrder, error) {
	params := url.Values{}
	if pair != nil {
		params.Set("symbol", pair.Symbol())
	}
	var wires []orderWire
	if err := a.exec.callInto(ctx, "GET", "/api/v3/openOrders", params, true, &wires); err != nil {
		return nil, err
	}
	orders := make([]*OpenOrder, 0, len(wires))
	for i := range wires {
		order, err := newOpenOrder(&wires[i])
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// CancelOrder cancels an order. Exactly one of orderID and clientOrderID must
// be set.
func (a *SpotAccount) CancelOrder(ctx context.Context, pair core.Pair, orderID, clientOrderID string) (*CanceledOrder, error) {
	params := url.Values{"symbol": {pair.Symbol()}}
	if err := orderRef(params, orderID, clientOrderID); err != nil {
		return nil, err
	}
	var w orderWire
	if err := a.exec.callInto(ctx, "DELETE", "/api/v3/order", params, true, &w); err != nil {
		return nil, err
	}
	return newCanceledOrder(&w)
}

// OCOOrderRequest describes an OCO (one-cancels-the-other) order: a limit
// leg at LimitPrice paired with a stop loss leg at StopPrice. A stop limit
// leg is used instead when StopLimitPrice is set.
type OCOOrderRequest struct {
	Operation core.OrderOperation
	Pair      core.Pair
	Amount    *apd.Decimal
	// LimitPrice is the price of the limit leg.
	LimitPrice *apd.Decimal
	// StopPrice triggers the stop loss leg.
	StopPrice *apd.Decimal
	// StopLimitPrice, when set, turns the stop leg into a stop limit leg.
	StopLimitPrice *apd.Decimal
	// StopLimitTimeInForce applies to the stop limit leg. Defaults to GTC.
	StopLimitTimeInForce core.TimeInForce
	// ClientOrderListID is forwarded unmodified when set.
	ClientOrderListID string
	// ExtraParams are forwarded to the venue verbatim.
	ExtraParams url.Values
}

func (r *OCOOrderRequest) params() (url.Values, error) {
	if r.Amount == nil {
		return nil, core.NewConfigurationError("amount must be set")
	}
	if r.LimitPrice == nil {
		return nil, core.NewConfigurationError("limit price must be set")
	}
	if r.StopPrice == nil {
		return nil, core.NewConfigurationError("stop price must be set")
	}
	params := url.Values{}
	params.Set("symbol", r.Pair.Symbol())
	params.Set("side", r.Operation.String())
	params.Set("quantity", formatDecimal(r.Amount))
	params.Set("price", formatDecimal(r.LimitPrice))
	params.Set("stopPrice", formatDecimal(r.StopPrice))
	if r.StopLimitPrice != nil {
		tif := r.StopLimitTimeInForce
		if tif == "" {
			tif = core.GTC
		}
		params.Set("stopLimitPrice", formatDecimal(r.StopLimitPrice))
		params.Set("stopLimitTimeInForce", string(tif))
	}
	if r.ClientOrderListID != "" {
		params.Set("listClientOrderId", r.ClientOrderListID)
	}
	for key, values := range r.ExtraParams {
		for _, value := range values {
			params.Set(key, value)
		}
	}
	return params, nil
}

// CreateOCOOrder submits an OCO order list.
func (a *SpotAccount) CreateOCOOrder(ctx context.Context, request *OCOOrderRequest) (*OCOOrder, error) {
	params, err := request.params()
	if err != nil {
		return nil, err
	}
	var w ocoOrderWire
	if err := a.exec.callInto(ctx, "POST", "/api/v3/order/oco", params, true, &w); err != nil {
		return nil, err
	}
	return newOCOOrder(&w)
}

// GetOCOOrderInfo returns an order list. Exactly one of orderListID and
// clientOrderListID must be set. Query responses carry no leg reports, so leg
// lookups on the result fail.
func (a *SpotAccount) GetOCOOrderInfo(ctx context.Context, orderListID, clientOrderListID string) (*OCOOrder, error) {
	params := url.Values{}
	if orderListID == "" && clientOrderListID == "" {
		return nil, core.NewConfigurationError("either order list id or client order list id must be set")
	}
	if orderListID != "" && clientOrderListID != "" {
		return nil, core.NewConfigurationError("order list id and client order list id are mutually exclusive")
	}
	if orderListID != "" {
		params.Set("orderListId", orderListID)
	} else {
		params.Set("origClientOrderId", clientOrderListID)
	}
	var w ocoOrderWire
	if err := a.exec.callInto(ctx, "GET", "/api/v3/orderList", params, true, &w); err != nil {
		return nil, err
	}
	return newOCOOrder(&w)
}

// CancelOCOOrder cancels an entire order list. Exactly one of orderListID and
// clientOrderListID must be set.
func (a *SpotAccount) CancelOCOOrder(ctx context.Context, pair core.Pair, orderListID, clientOrderListID string) (*OCOOrder, error) {
	params := url.Values{"symbol": {pair.Symbol()}}
	if orderListID == "" && clientOrderListID == "" {
		return nil, core.NewConfigurationError("either order list id or client order list id must be set")
	}
	if orderListID != "" && clientOrderListID != "" {
		return nil, core.NewConfigurationError("order list id and client order list id are mutually exclusive")
	}
	if orderListID != "" {
		params.Set("orderListId", orderListID)
	} else {
		params.Set("listClientOrderId", clientOrderListID)
	}
	var w ocoOrderWire
	if err := a.exec.callInto(ctx, "DELETE", "/api/v3/orderList", params, true, &w); err != nil {
		return nil, err
	}
	return newOCOOrder(&w)
}
