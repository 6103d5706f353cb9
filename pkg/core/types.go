package core

// OrderOperation represents the direction of an order (buy or sell).
type OrderOperation int

// Order operation constants define the direction of a trade.
const (
	// OperationBuy indicates an order to purchase the base asset.
	OperationBuy OrderOperation = iota
	// OperationSell indicates an order to sell the base asset.
	OperationSell
)

// String returns the venue side string ("BUY" or "SELL").
func (o OrderOperation) String() string {
	return [...]string{"BUY", "SELL"}[o]
}

// ParseOrderOperation maps a venue side string to an OrderOperation.
func ParseOrderOperation(s string) (OrderOperation, error) {
	switch s {
	case "BUY":
		return OperationBuy, nil
	case "SELL":
		return OperationSell, nil
	}
	return 0, NewDecodingError("side", "unknown order side: "+s)
}

// TimeInForce defines how long an unfilled order remains active.
type TimeInForce string

// Time in force constants define order lifetime behavior.
const (
	// GTC (Good Till Canceled) keeps the order active until filled or canceled.
	GTC TimeInForce = "GTC"
	// IOC (Immediate Or Cancel) cancels the unfilled portion immediately.
	IOC TimeInForce = "IOC"
	// FOK (Fill Or Kill) requires complete immediate execution.
	FOK TimeInForce = "FOK"
	// GTX (Good Till Crossing) rejects orders that would take liquidity.
	GTX TimeInForce = "GTX"
)

// OrderStatus is a venue order status string. The open/closed split is a
// fixed table applied identically wherever a plain order status appears.
type OrderStatus string

// Venue order statuses.
const (
	StatusNew             OrderStatus = "NEW"
	StatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	StatusPendingNew      OrderStatus = "PENDING_NEW"
	StatusPendingCancel   OrderStatus = "PENDING_CANCEL"
	StatusFilled          OrderStatus = "FILLED"
	StatusCanceled        OrderStatus = "CANCELED"
	StatusRejected        OrderStatus = "REJECTED"
	StatusExpired         OrderStatus = "EXPIRED"
	StatusExpiredInMatch  OrderStatus = "EXPIRED_IN_MATCH"
)

var openOrderStatuses = map[OrderStatus]bool{
	StatusNew:             true,
	StatusPartiallyFilled: true,
	StatusPendingNew:      true,
	StatusPendingCancel:   true,
}

// IsOpen returns true while the order can still trade.
func (s OrderStatus) IsOpen() bool {
	return openOrderStatuses[s]
}

// ListStatus is a venue order-list status string. Order lists use a different
// status vocabulary than plain orders.
type ListStatus string

// Venue order-list statuses.
const (
	ListStatusExecuting ListStatus = "EXECUTING"
	ListStatusAllDone   ListStatus = "ALL_DONE"
	ListStatusReject    ListStatus = "REJECT"
)

// IsOpen returns true while any leg of the order list can still trade.
func (s ListStatus) IsOpen() bool {
	return s == ListStatusExecuting
}
