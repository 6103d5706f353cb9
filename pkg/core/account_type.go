package core

// AccountType represents a venue account type.
type AccountType int

// Account type constants mirror the venue account vocabulary.
const (
	// AccountSpot is a plain spot account.
	AccountSpot AccountType = iota
	// AccountMargin is a cross margin account.
	AccountMargin
	// AccountIsolatedMargin is an isolated margin account.
	AccountIsolatedMargin
	// AccountUSDTFuture is a USDT-margined futures account.
	AccountUSDTFuture
	// AccountCoinFuture is a coin-margined futures account.
	AccountCoinFuture
)

// String returns the venue string for the account type.
func (t AccountType) String() string {
	return [...]string{"SPOT", "MARGIN", "ISOLATED_MARGIN", "USDT_FUTURE", "COIN_FUTURE"}[t]
}

// IsSpot returns true for plain spot accounts.
func (t AccountType) IsSpot() bool {
	return t == AccountSpot
}

// IsMargin returns true for cross and isolated margin accounts.
func (t AccountType) IsMargin() bool {
	return t == AccountMargin || t == AccountIsolatedMargin
}

// IsSpotOrMargin returns true for spot, cross margin and isolated margin
// accounts.
func (t AccountType) IsSpotOrMargin() bool {
	return t.IsSpot() || t.IsMargin()
}

// IsFutures returns true for USDT and coin margined futures accounts.
func (t AccountType) IsFutures() bool {
	return t == AccountUSDTFuture || t == AccountCoinFuture
}
