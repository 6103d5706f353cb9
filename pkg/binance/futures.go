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
	futuresAPIURL           = "https://fapi.binance.com"
	futuresTestnetAPIURL    = "https://testnet.binancefuture.com"
	futuresStreamURL        = "wss://fstream.binance.com/stream"
	futuresTestnetStreamURL = "wss://stream.binancefuture.com/stream"
)

// FuturesExchange is the USDT-futures venue facade: market data
// subscriptions, instrument resolution, pair metadata and the futures
// account.
type FuturesExchange struct {
	exec    *executor
	mux     *multiplexer
	account *FuturesAccount
	logger  zerolog.Logger
}

// NewFuturesExchange creates a futures facade from the config. Collaborators
// not overridden through options are built from the config, the same way
// NewSpotExchange does.
func NewFuturesExchange(cfg *core.Config, opts ...Option) (*FuturesExchange, error) {
	if cfg == nil {
		cfg = core.DefaultConfig()
		cfg.AccountType = core.AccountUSDTFuture
	}
	if cfg.AccountType != core.AccountUSDTFuture {
		return nil, core.NewConfigurationError("invalid account type for futures exchange: %s", cfg.AccountType)
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
		baseURL := futuresAPIURL
		if cfg.Testnet {
			baseURL = futuresTestnetAPIURL
		}
		o.rest = transport.NewRestClient(cfg, baseURL, breaker, o.logger)
	}
	if o.stream == nil {
		streamURL := futuresStreamURL
		if cfg.Testnet {
			streamURL = futuresTestnetStreamURL
		}
		o.stream = transport.NewStreamClient(transport.StreamConfig{
			URL:              streamURL,
			ReconnectEnabled: true,
		}, o.logger)
	}

	exec := newExecutor(o.rest, o.limiter, o.logger)
	return &FuturesExchange{
		exec:    exec,
		mux:     newMultiplexer(o.stream, o.dispatcher, o.logger),
		account: &FuturesAccount{exec: exec},
		logger:  o.logger,
	}, nil
}

// SubscribeToBarEvents registers a handler for closed bars of the contract.
// barDuration accepts a core.Interval, the venue token or the legacy duration
// in seconds.
func (e *FuturesExchange) SubscribeToBarEvents(ctx context.Context, pair core.FuturesPair, barDuration any, handler BarEventHandler) error {
	interval, err := core.ResolveInterval(barDuration)
	if err != nil {
		return err
	}
	eventPair := core.NewPair(pair.BaseSymbol, pair.QuoteSymbol)
	channel := barChannel(pair.Symbol(), interval)
	decode := func(frame []byte) (any, error) {
		event, err := decodeBarEvent(eventPair, frame)
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
func (e *FuturesExchange) SubscribeToOrderBookEvents(ctx context.Context, pair core.FuturesPair, depth int, handler OrderBookEventHandler) error {
	channel, err := orderBookChannel(pair.Symbol(), depth)
	if err != nil {
		return err
	}
	eventPair := core.NewPair(pair.BaseSymbol, pair.QuoteSymbol)
	decode := func(frame []byte) (any, error) {
		event, err := decodeOrderBookEvent(eventPair, frame)
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
// contract.
func (e *FuturesExchange) SubscribeToTradeEvents(ctx context.Context, pair core.FuturesPair, handler TradeEventHandler) error {
	eventPair := core.NewPair(pair.BaseSymbol, pair.QuoteSymbol)
	channel := tradeChannel(pair.Symbol())
	decode := func(frame []byte) (any, error) {
		event, err := decodeTradeEvent(eventPair, frame)
		if err != nil {
			return nil, err
		}
		return event, nil
	}
	return e.mux.subscribe(ctx, channel, decode, func(event any) {
		handler(event.(*TradeEvent))
	})
}

// GetPair resolves a single instrument from the venue catalog. The filter
// predicates must select exactly one instrument.
func (e *FuturesExchange) GetPair(ctx context.Context, filter PairFilter) (core.FuturesPair, error) {
	return e.exec.resolveFuturesPair(ctx, filter, "/fapi/v1/exchangeInfo")
}

// GetPairInfo returns precision and contract metadata for the instrument.
// The first call per instrument hits the venue; the result is cached for the
// facade's lifetime.
func (e *FuturesExchange) GetPairInfo(ctx context.Context, pair core.FuturesPair) (*core.FuturesPairInfoEx, error) {
	return e.exec.futuresPairInfo(ctx, pair, "/fapi/v1/exchangeInfo")
}

// GetBidAsk returns the current best bid and ask price.
func (e *FuturesExchange) GetBidAsk(ctx context.Context, pair core.FuturesPair) (*apd.Decimal, *apd.Decimal, error) {
	return e.exec.bidAsk(ctx, pair.Symbol(), "/fapi/v1/depth")
}

// Account returns the futures account facade.
func (e *FuturesExchange) Account() *FuturesAccount {
	return e.account
}

// Close shuts down the websocket connection and the REST transport.
func (e *FuturesExchange) Close() error {
	muxErr := e.mux.close()
	restErr := e.exec.rest.Close()
	if muxErr != nil {
		return muxErr
	}
	return restErr
}

// FuturesAccount exposes the trading operations of a USDT-futures account.
// All calls are signed.
type FuturesAccount struct {
	exec *executor
}

// GetBalances returns the account snapshot: aggregates, per-asset entries and
// per-symbol positions.
func (a *FuturesAccount) GetBalances(ctx context.Context) (*FuturesBalances, error) {
	var w futuresAccountWire
	if err := a.exec.callInto(ctx, "GET", "/fapi/v2/account", nil, true, &w); err != nil {
		return nil, err
	}
	return newFuturesBalances(&w)
}

// CreateOrder submits an order intent and returns the creation view.
func (a *FuturesAccount) CreateOrder(ctx context.Context, order ExchangeOrder) (*CreatedOrder, error) {
	params, err := order.orderParams(flavorFutures)
	if err != nil {
		return nil, err
	}
	var w orderWire
	if err := a.exec.callInto(ctx, "POST", "/fapi/v1/order", params, true, &w); err != nil {
		return nil, err
	}
	return newCreatedOrder(&w)
}

// CreateMarketOrder creates a market order for an amount in base units.
func (a *FuturesAccount) CreateMarketOrder(ctx context.Context, operation core.OrderOperation, pair core.FuturesPair, amount *apd.Decimal) (*CreatedOrder, error) {
	return a.CreateOrder(ctx, &MarketOrder{
		Operation: operation,
		Symbol:    pair.Symbol(),
		Amount:    amount,
	})
}

// CreateLimitOrder creates a GTC limit order.
func (a *FuturesAccount) CreateLimitOrder(ctx context.Context, operation core.OrderOperation, pair core.FuturesPair, amount, limitPrice *apd.Decimal) (*CreatedOrder, error) {
	return a.CreateOrder(ctx, &LimitOrder{
		Operation:  operation,
		Symbol:     pair.Symbol(),
		Amount:     amount,
		LimitPrice: limitPrice,
	})
}

// CreateStopLimitOrder creates a GTC stop limit order.
func (a *FuturesAccount) CreateStopLimitOrder(ctx context.Context, operation core.OrderOperation, pair core.FuturesPair, amount, stopPrice, limitPrice *apd.Decimal) (*CreatedOrder, error) {
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
func (a *FuturesAccount) GetOrderInfo(ctx context.Context, pair core.FuturesPair, orderID, clientOrderID string) (*OrderInfo, error) {
	params := url.Values{"symbol": {pair.Symbol()}}
	if err := orderRef(params, orderID, clientOrderID); err != nil {
		return nil, err
	}
	var w orderWire
	if err := a.exec.callInto(ctx, "GET", "/fapi/v1/order", params, true, &w); err != nil {
		return nil, err
	}

	tradeParams := url.Values{
		"symbol":  {pair.Symbol()},
		"orderId": {orderIDString(&w)},
	}
	var tradeWires []tradeWire
	if err := a.exec.callInto(ctx, "GET", "/fapi/v1/userTrades", tradeParams, true, &tradeWires); err != nil {
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

// GetOpenOrders returns open orders, optionally restricted to one instrument.
func (a *FuturesAccount) GetOpenOrders(ctx context.Context, pair *core.FuturesPair) ([]*OpenOrder, error) {
	params := url.Values{}
	if pair != nil {
		params.Set("symbol", pair.Symbol())
	}
	var wires []orderWire
	if err := a.exec.callInto(ctx, "GET", "/fapi/v1/openOrders", params, true, &wires); err != nil {
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
func (a *FuturesAccount) CancelOrder(ctx context.Context, pair core.FuturesPair, orderID, clientOrderID string) (*CanceledOrder, error) {
	params := url.Values{"symbol": {pair.Symbol()}}
	if err := orderRef(params, orderID, clientOrderID); err != nil {
		return nil, err
	}
	var w orderWire
	if err := a.exec.callInto(ctx, "DELETE", "/fapi/v1/order", params, true, &w); err != nil {
		return nil, err
	}
	return newCanceledOrder(&w)
}
