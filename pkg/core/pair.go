package core

import "fmt"

// Pair identifies a traded instrument by its base and quote symbols.
// Pairs are comparable value types and are used as cache keys.
type Pair struct {
	// BaseSymbol is the asset being bought or sold (e.g., "BTC").
	BaseSymbol string
	// QuoteSymbol is the asset the price is expressed in (e.g., "USDT").
	QuoteSymbol string
}

// NewPair creates a Pair from base and quote symbols.
func NewPair(base, quote string) Pair {
	return Pair{BaseSymbol: base, QuoteSymbol: quote}
}

// String returns the pair in "BASE/QUOTE" form.
func (p Pair) String() string {
	return p.BaseSymbol + "/" + p.QuoteSymbol
}

// Symbol returns the venue symbol for the pair (base and quote concatenated).
func (p Pair) Symbol() string {
	return p.BaseSymbol + p.QuoteSymbol
}

// FuturesPair identifies a futures instrument. In addition to the base and
// quote symbols it carries the venue symbol, the contract type and the
// delivery timestamp, since a single base/quote pair may list multiple
// contracts.
type FuturesPair struct {
	// BaseSymbol is the asset being bought or sold.
	BaseSymbol string
	// QuoteSymbol is the asset the price is expressed in.
	QuoteSymbol string
	// VenueSymbol is the venue-assigned symbol (e.g., "BTCUSDT_240628").
	VenueSymbol string
	// ContractType is the contract flavor (perpetual, quarterly, ...).
	ContractType ContractType
	// DeliveryDate is the delivery timestamp in milliseconds, zero for
	// perpetual contracts.
	DeliveryDate int64
}

// String returns the venue symbol together with the contract type.
func (p FuturesPair) String() string {
	return fmt.Sprintf("%s (%s)", p.VenueSymbol, p.ContractType)
}

// Symbol returns the venue symbol for the contract.
func (p FuturesPair) Symbol() string {
	return p.VenueSymbol
}

// PairInfo holds venue-reported precision for a trading pair, expressed as
// decimal-place counts derived from the venue step sizes.
type PairInfo struct {
	// BasePrecision is the number of decimal places for amounts in base units.
	BasePrecision int
	// QuotePrecision is the number of decimal places for prices.
	QuotePrecision int
}

// PairInfoEx extends PairInfo with the account and pair permission tags
// reported by the venue.
type PairInfoEx struct {
	PairInfo
	// Permissions lists the venue permission tags for the pair (e.g., "SPOT").
	Permissions []string
}

// FuturesPairInfo holds precision and contract details for a futures pair.
type FuturesPairInfo struct {
	PairInfo
	// ContractType is the contract flavor.
	ContractType ContractType
	// DeliveryDate is the delivery timestamp in milliseconds.
	DeliveryDate int64
}

// FuturesPairInfoEx extends FuturesPairInfo with permission tags.
type FuturesPairInfoEx struct {
	FuturesPairInfo
	// Permissions lists the venue permission tags for the pair.
	Permissions []string
}
