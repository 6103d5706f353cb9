package binance

import (
	"context"
	"net/url"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/apd/v3"
	"github.com/rs/zerolog"

	"venuelink/pkg/core"
)

// executor runs every REST call a facade issues: limiter acquire first, then
// the transport. It also owns the pair metadata caches, which are lazy,
// append-only and never refreshed; a cache hit does no I/O at all.
type executor struct {
	rest    RestTransport
	limiter Limiter
	logger  zerolog.Logger

	mu          sync.Mutex
	pairInfo    map[core.Pair]*core.PairInfoEx
	futuresInfo map[core.FuturesPair]*core.FuturesPairInfoEx
}

func newExecutor(rest RestTransport, limiter Limiter, logger zerolog.Logger) *executor {
	return &executor{
		rest:        rest,
		limiter:     limiter,
		logger:      logger,
		pairInfo:    make(map[core.Pair]*core.PairInfoEx),
		futuresInfo: make(map[core.FuturesPair]*core.FuturesPairInfoEx),
	}
}

// call acquires the limiter and executes one transport call.
func (e *executor) call(ctx context.Context, method, path string, params url.Values, signed bool) ([]byte, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, core.NewTransportError(method+" "+path, err)
	}
	return e.rest.Call(ctx, method, path, params, signed)
}

// callInto executes a call and decodes the response body into out.
func (e *executor) callInto(ctx context.Context, method, path string, params url.Values, signed bool, out any) error {
	body, err := e.call(ctx, method, path, params, signed)
	if err != nil {
		return err
	}
	if err := sonic.Unmarshal(body, out); err != nil {
		return core.NewDecodingError(path, "malformed response: "+err.Error())
	}
	return nil
}

func symbolFilter(info *symbolInfoWire, filterType string) *filterWire {
	for i := range info.Filters {
		if info.Filters[i].FilterType == filterType {
			return &info.Filters[i]
		}
	}
	return nil
}

// pairInfoFromSymbol derives precisions from the venue step sizes.
func pairInfoFromSymbol(info *symbolInfoWire) (core.PairInfoEx, error) {
	lotSize := symbolFilter(info, "LOT_SIZE")
	if lotSize == nil {
		return core.PairInfoEx{}, core.NewDecodingError("filters", "LOT_SIZE not found for "+info.Symbol)
	}
	priceFilter := symbolFilter(info, "PRICE_FILTER")
	if priceFilter == nil {
		return core.PairInfoEx{}, core.NewDecodingError("filters", "PRICE_FILTER not found for "+info.Symbol)
	}
	basePrecision, err := precisionFromStepSize("stepSize", lotSize.StepSize)
	if err != nil {
		return core.PairInfoEx{}, err
	}
	quotePrecision, err := precisionFromStepSize("tickSize", priceFilter.TickSize)
	if err != nil {
		return core.PairInfoEx{}, err
	}
	return core.PairInfoEx{
		PairInfo: core.PairInfo{
			BasePrecision:  basePrecision,
			QuotePrecision: quotePrecision,
		},
		Permissions: info.Permissions,
	}, nil
}

// spotPairInfo returns cached pair metadata, fetching it at most once per
// pair. The lock is held across the fetch so concurrent first callers
// collapse into a single venue request.
func (e *executor) spotPairInfo(ctx context.Context, pair core.Pair, exchangeInfoPath string) (*core.PairInfoEx, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if info, ok := e.pairInfo[pair]; ok {
		return info, nil
	}

	params := url.Values{"symbol": {pair.Symbol()}}
	var exchangeInfo exchangeInfoWire
	if err := e.callInto(ctx, "GET", exchangeInfoPath, params, false, &exchangeInfo); err != nil {
		return nil, err
	}
	if len(exchangeInfo.Symbols) != 1 {
		return nil, core.NewDecodingError("symbols", "expected exactly one symbol for "+pair.Symbol())
	}

	info, err := pairInfoFromSymbol(&exchangeInfo.Symbols[0])
	if err != nil {
		return nil, err
	}
	e.pairInfo[pair] = &info
	return &info, nil
}

// futuresPairInfo returns cached futures pair metadata, fetching the
// exchange catalog at most once per pair.
func (e *executor) futuresPairInfo(ctx context.Context, pair core.FuturesPair, exchangeInfoPath string) (*core.FuturesPairInfoEx, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if info, ok := e.futuresInfo[pair]; ok {
		return info, nil
	}

	var exchangeInfo exchangeInfoWire
	if err := e.callInto(ctx, "GET", exchangeInfoPath, nil, false, &exchangeInfo); err != nil {
		return nil, err
	}

	var matches []*symbolInfoWire
	for i := range exchangeInfo.Symbols {
		s := &exchangeInfo.Symbols[i]
		if s.Symbol == pair.Symbol() && s.ContractType == pair.ContractType.String() {
			matches = append(matches, s)
		}
	}
	if len(matches) == 0 {
		return nil, core.NewConfigurationError("symbol not found: %s", pair)
	}
	if len(matches) > 1 {
		return nil, core.NewConfigurationError("more than one symbol found: %s", pair)
	}

	base, err := pairInfoFromSymbol(matches[0])
	if err != nil {
		return nil, err
	}
	contractType, err := core.ParseContractType(matches[0].ContractType)
	if err != nil {
		return nil, err
	}
	info := core.FuturesPairInfoEx{
		FuturesPairInfo: core.FuturesPairInfo{
			PairInfo:     base.PairInfo,
			ContractType: contractType,
			DeliveryDate: matches[0].DeliveryDate,
		},
		Permissions: base.Permissions,
	}
	e.futuresInfo[pair] = &info
	return &info, nil
}

// PairFilter narrows the futures instrument catalog. Empty fields match
// everything; the remaining predicates must select exactly one instrument.
type PairFilter struct {
	// Symbol matches the venue symbol (e.g. "BTCUSDT_240628").
	Symbol string
	// Pair matches the venue pair tag (e.g. "BTCUSDT").
	Pair string
	// ContractType matches the contract flavor.
	ContractType *core.ContractType
}

func (f PairFilter) matches(s *symbolInfoWire) bool {
	if f.Symbol != "" && s.Symbol != f.Symbol {
		return false
	}
	if f.Pair != "" && s.Pair != f.Pair {
		return false
	}
	if f.ContractType != nil && s.ContractType != f.ContractType.String() {
		return false
	}
	return true
}

// resolveFuturesPair finds the single instrument matching the filter.
func (e *executor) resolveFuturesPair(ctx context.Context, filter PairFilter, exchangeInfoPath string) (core.FuturesPair, error) {
	var exchangeInfo exchangeInfoWire
	if err := e.callInto(ctx, "GET", exchangeInfoPath, nil, false, &exchangeInfo); err != nil {
		return core.FuturesPair{}, err
	}

	var matches []*symbolInfoWire
	for i := range exchangeInfo.Symbols {
		if filter.matches(&exchangeInfo.Symbols[i]) {
			matches = append(matches, &exchangeInfo.Symbols[i])
		}
	}
	if len(matches) == 0 {
		return core.FuturesPair{}, core.NewConfigurationError("no instrument matches the filter")
	}
	if len(matches) > 1 {
		return core.FuturesPair{}, core.NewConfigurationError("more than one instrument matches the filter")
	}

	s := matches[0]
	contractType, err := core.ParseContractType(s.ContractType)
	if err != nil {
		return core.FuturesPair{}, err
	}
	return core.FuturesPair{
		BaseSymbol:   s.BaseAsset,
		QuoteSymbol:  s.QuoteAsset,
		VenueSymbol:  s.Symbol,
		ContractType: contractType,
		DeliveryDate: s.DeliveryDate,
	}, nil
}

// bidAsk returns the current best bid and ask from a depth-1 query.
func (e *executor) bidAsk(ctx context.Context, symbol, depthPath string) (*apd.Decimal, *apd.Decimal, error) {
	params := url.Values{"symbol": {symbol}, "limit": {"1"}}
	var depth depthWire
	if err := e.callInto(ctx, "GET", depthPath, params, false, &depth); err != nil {
		return nil, nil, err
	}
	if len(depth.Bids) == 0 || len(depth.Bids[0]) == 0 {
		return nil, nil, core.NewDecodingError("bids", "empty order book side")
	}
	if len(depth.Asks) == 0 || len(depth.Asks[0]) == 0 {
		return nil, nil, core.NewDecodingError("asks", "empty order book side")
	}
	bid, err := requireDecimal("bids", depth.Bids[0][0])
	if err != nil {
		return nil, nil, err
	}
	ask, err := requireDecimal("asks", depth.Asks[0][0])
	if err != nil {
		return nil, nil, err
	}
	return bid, ask, nil
}
