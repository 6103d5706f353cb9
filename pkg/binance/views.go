package binance

import (
	"strconv"
	"time"

	"github.com/cockroachdb/apd/v3"

	"venuelink/pkg/core"
)

func msToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func orderIDString(w *orderWire) string {
	return strconv.FormatInt(w.OrderID, 10)
}

// orderListID maps the venue sentinel (-1 or absent) to the empty string.
func orderListID(id *int64) string {
	if id == nil || *id == -1 {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

// Balance is one asset balance in a spot account.
type Balance struct {
	// Available is the balance free for trading.
	Available *apd.Decimal
	// Locked is the balance locked in open orders.
	Locked *apd.Decimal
}

// Total returns available plus locked.
func (b *Balance) Total() *apd.Decimal {
	var total apd.Decimal
	_, _ = decCtx.Add(&total, b.Available, b.Locked)
	return &total
}

func newBalance(w balanceWire) (*Balance, error) {
	available, err := requireDecimal("free", w.Free)
	if err != nil {
		return nil, err
	}
	locked, err := requireDecimal("locked", w.Locked)
	if err != nil {
		return nil, err
	}
	return &Balance{Available: available, Locked: locked}, nil
}

// Trade is one execution belonging to an order.
type Trade struct {
	ID      string
	OrderID string
	// OrderListID is empty when the trade does not belong to an order list.
	OrderListID     string
	Price           *apd.Decimal
	Amount          *apd.Decimal
	QuoteAmount     *apd.Decimal
	Commission      *apd.Decimal
	CommissionAsset string
	Time            time.Time
	IsBuyer         bool
	IsMaker         bool
	IsBestMatch     bool
}

func newTrade(w tradeWire) (*Trade, error) {
	if w.ID == 0 {
		return nil, core.NewDecodingError("id", "missing required field")
	}
	price, err := requireDecimal("price", w.Price)
	if err != nil {
		return nil, err
	}
	amount, err := requireDecimal("qty", w.Qty)
	if err != nil {
		return nil, err
	}
	quoteAmount, err := requireDecimal("quoteQty", w.QuoteQty)
	if err != nil {
		return nil, err
	}
	commission, err := requireDecimal("commission", w.Commission)
	if err != nil {
		return nil, err
	}
	return &Trade{
		ID:              strconv.FormatInt(w.ID, 10),
		OrderID:         strconv.FormatInt(w.OrderID, 10),
		OrderListID:     orderListID(w.OrderListID),
		Price:           price,
		Amount:          amount,
		QuoteAmount:     quoteAmount,
		Commission:      commission,
		CommissionAsset: w.CommissionAsset,
		Time:            msToTime(w.Time),
		IsBuyer:         w.IsBuyer,
		IsMaker:         w.IsMaker,
		IsBestMatch:     w.IsBestMatch,
	}, nil
}

// Fill is one execution reported inline in a FULL order-create response.
type Fill struct {
	Price           *apd.Decimal
	Amount          *apd.Decimal
	Commission      *apd.Decimal
	CommissionAsset string
	// TradeID is empty when the venue did not report it.
	TradeID string
}

func newFill(w fillWire) (*Fill, error) {
	price, err := requireDecimal("price", w.Price)
	if err != nil {
		return nil, err
	}
	amount, err := requireDecimal("qty", w.Qty)
	if err != nil {
		return nil, err
	}
	commission, err := requireDecimal("commission", w.Commission)
	if err != nil {
		return nil, err
	}
	tradeID := ""
	if w.TradeID != 0 {
		tradeID = strconv.FormatInt(w.TradeID, 10)
	}
	return &Fill{
		Price:           price,
		Amount:          amount,
		Commission:      commission,
		CommissionAsset: w.CommissionAsset,
		TradeID:         tradeID,
	}, nil
}

// Order holds the fields shared by every order view.
type Order struct {
	ID            string
	ClientOrderID string
	// OrderListID is empty when the order does not belong to an order list.
	OrderListID       string
	Status            core.OrderStatus
	Amount            *apd.Decimal
	AmountFilled      *apd.Decimal
	QuoteAmountFilled *apd.Decimal
	// LimitPrice is nil for orders without a limit price. The venue reports
	// zero for "not set".
	LimitPrice *apd.Decimal
	// StopPrice is nil for orders without a stop price.
	StopPrice *apd.Decimal
	// TimeInForce is empty when the venue did not report it.
	TimeInForce core.TimeInForce
}

// IsOpen returns true while the order can still trade.
func (o *Order) IsOpen() bool {
	return o.Status.IsOpen()
}

func newOrder(w *orderWire) (Order, error) {
	if w.OrderID == 0 {
		return Order{}, core.NewDecodingError("orderId", "missing required field")
	}
	if w.Status == "" {
		return Order{}, core.NewDecodingError("status", "missing required field")
	}
	amount, err := requireDecimal("origQty", w.OrigQty)
	if err != nil {
		return Order{}, err
	}
	amountFilled, err := requireDecimal("executedQty", w.ExecutedQty)
	if err != nil {
		return Order{}, err
	}
	quoteFilled, err := requireDecimal("cummulativeQuoteQty", w.CummulativeQuoteQty)
	if err != nil {
		return Order{}, err
	}
	limitPrice, err := optionalDecimal("price", w.Price, true)
	if err != nil {
		return Order{}, err
	}
	stopPrice, err := optionalDecimal("stopPrice", w.StopPrice, true)
	if err != nil {
		return Order{}, err
	}
	return Order{
		ID:                strconv.FormatInt(w.OrderID, 10),
		ClientOrderID:     w.ClientOrderID,
		OrderListID:       orderListID(w.OrderListID),
		Status:            core.OrderStatus(w.Status),
		Amount:            amount,
		AmountFilled:      amountFilled,
		QuoteAmountFilled: quoteFilled,
		LimitPrice:        limitPrice,
		StopPrice:         stopPrice,
		TimeInForce:       core.TimeInForce(w.TimeInForce),
	}, nil
}

// OpenOrder is an order returned by the open-orders query.
type OpenOrder struct {
	Order
	CreatedAt time.Time
	Operation core.OrderOperation
	// Type is the venue order type (LIMIT, MARKET, STOP_LOSS_LIMIT, ...).
	Type string
	// QuoteAmount is the order amount in quote units when the order was
	// placed by quote amount, nil otherwise.
	QuoteAmount *apd.Decimal
}

func newOpenOrder(w *orderWire) (*OpenOrder, error) {
	order, err := newOrder(w)
	if err != nil {
		return nil, err
	}
	operation, err := core.ParseOrderOperation(w.Side)
	if err != nil {
		return nil, err
	}
	quoteAmount, err := optionalDecimal("origQuoteOrderQty", w.OrigQuoteOrderQty, true)
	if err != nil {
		return nil, err
	}
	return &OpenOrder{
		Order:       order,
		CreatedAt:   msToTime(w.Time),
		Operation:   operation,
		Type:        w.Type,
		QuoteAmount: quoteAmount,
	}, nil
}

// CanceledOrder is the view returned by a cancel request.
type CanceledOrder struct {
	Order
	Operation core.OrderOperation
	// Type is the venue order type.
	Type string
}

func newCanceledOrder(w *orderWire) (*CanceledOrder, error) {
	order, err := newOrder(w)
	if err != nil {
		return nil, err
	}
	operation, err := core.ParseOrderOperation(w.Side)
	if err != nil {
		return nil, err
	}
	return &CanceledOrder{Order: order, Operation: operation, Type: w.Type}, nil
}

// OrderInfo is the full order view including its executions. Fees, fill
// price and remaining amount are derived once at construction.
type OrderInfo struct {
	Order
	Trades []*Trade

	fees map[string]*apd.Decimal
}

func newOrderInfo(w *orderWire, trades []*Trade) (*OrderInfo, error) {
	order, err := newOrder(w)
	if err != nil {
		return nil, err
	}
	fees := make(map[string]*apd.Decimal)
	for _, trade := range trades {
		if trade.Commission.IsZero() {
			continue
		}
		total, ok := fees[trade.CommissionAsset]
		if !ok {
			total = apd.New(0, 0)
			fees[trade.CommissionAsset] = total
		}
		_, _ = decCtx.Add(total, total, trade.Commission)
	}
	return &OrderInfo{Order: order, Trades: trades, fees: fees}, nil
}

// AmountRemaining returns the amount still to be filled.
func (o *OrderInfo) AmountRemaining() *apd.Decimal {
	var remaining apd.Decimal
	_, _ = decCtx.Sub(&remaining, o.Amount, o.AmountFilled)
	return &remaining
}

// FillPrice returns the volume-weighted fill price, or nil when nothing
// filled yet.
func (o *OrderInfo) FillPrice() *apd.Decimal {
	if o.AmountFilled.IsZero() {
		return nil
	}
	var price apd.Decimal
	_, _ = decCtx.Quo(&price, o.QuoteAmountFilled, o.AmountFilled)
	return &price
}

// Fees returns the accumulated commissions keyed by commission asset. Assets
// with zero commission are absent. Map iteration order is unspecified.
func (o *OrderInfo) Fees() map[string]*apd.Decimal {
	return o.fees
}

// CreatedOrder is the view returned by an order-create request. Fields beyond
// the identity are only present for RESULT and FULL response types.
type CreatedOrder struct {
	ID            string
	ClientOrderID string
	// OrderListID is empty when the order does not belong to an order list.
	OrderListID string
	CreatedAt   time.Time
	// Status is empty for ACK responses.
	Status            core.OrderStatus
	Amount            *apd.Decimal
	AmountFilled      *apd.Decimal
	QuoteAmountFilled *apd.Decimal
	LimitPrice        *apd.Decimal
	TimeInForce       core.TimeInForce
	// Fills holds the inline executions of a FULL response.
	Fills []*Fill
}

// IsOpen returns true while the order can still trade. Only meaningful when
// Status is set.
func (o *CreatedOrder) IsOpen() bool {
	return o.Status.IsOpen()
}

func newCreatedOrder(w *orderWire) (*CreatedOrder, error) {
	if w.OrderID == 0 {
		return nil, core.NewDecodingError("orderId", "missing required field")
	}
	if w.TransactTime == 0 {
		return nil, core.NewDecodingError("transactTime", "missing required field")
	}
	amount, err := optionalDecimal("origQty", w.OrigQty, false)
	if err != nil {
		return nil, err
	}
	amountFilled, err := optionalDecimal("executedQty", w.ExecutedQty, false)
	if err != nil {
		return nil, err
	}
	quoteFilled, err := optionalDecimal("cummulativeQuoteQty", w.CummulativeQuoteQty, false)
	if err != nil {
		return nil, err
	}
	limitPrice, err := optionalDecimal("price", w.Price, true)
	if err != nil {
		return nil, err
	}
	fills := make([]*Fill, 0, len(w.Fills))
	for _, fw := range w.Fills {
		fill, err := newFill(fw)
		if err != nil {
			return nil, err
		}
		fills = append(fills, fill)
	}
	return &CreatedOrder{
		ID:                strconv.FormatInt(w.OrderID, 10),
		ClientOrderID:     w.ClientOrderID,
		OrderListID:       orderListID(w.OrderListID),
		CreatedAt:         msToTime(w.TransactTime),
		Status:            core.OrderStatus(w.Status),
		Amount:            amount,
		AmountFilled:      amountFilled,
		QuoteAmountFilled: quoteFilled,
		LimitPrice:        limitPrice,
		TimeInForce:       core.TimeInForce(w.TimeInForce),
		Fills:             fills,
	}, nil
}

// OCOOrderLeg is one order inside an order list, as reported by the venue.
type OCOOrderLeg struct {
	ID string
	// Type is the venue order type of the leg.
	Type   string
	Status core.OrderStatus
}

// OCOOrder is an order list view (create, query and cancel responses share
// the shape).
type OCOOrder struct {
	OrderListID       string
	ClientOrderListID string
	CreatedAt         time.Time
	Status            core.ListStatus
	// Legs holds the leg reports. Query responses without reports leave it
	// empty, in which case leg lookups fail.
	Legs []OCOOrderLeg
}

// IsOpen returns true while any leg of the order list can still trade.
func (o *OCOOrder) IsOpen() bool {
	return o.Status.IsOpen()
}

// LimitOrderID returns the id of the limit leg (LIMIT or LIMIT_MAKER).
func (o *OCOOrder) LimitOrderID() (string, error) {
	return o.legByTypes("LIMIT", "LIMIT_MAKER")
}

// StopLossOrderID returns the id of the stop loss leg (STOP_LOSS or
// STOP_LOSS_LIMIT).
func (o *OCOOrder) StopLossOrderID() (string, error) {
	return o.legByTypes("STOP_LOSS", "STOP_LOSS_LIMIT")
}

func (o *OCOOrder) legByTypes(types ...string) (string, error) {
	for _, leg := range o.Legs {
		for _, t := range types {
			if leg.Type == t {
				return leg.ID, nil
			}
		}
	}
	return "", core.NewDecodingError("orderReports", "no leg with type "+types[0])
}

func newOCOOrder(w *ocoOrderWire) (*OCOOrder, error) {
	if w.OrderListID == 0 {
		return nil, core.NewDecodingError("orderListId", "missing required field")
	}
	if w.ListOrderStatus == "" {
		return nil, core.NewDecodingError("listOrderStatus", "missing required field")
	}
	legs := make([]OCOOrderLeg, 0, len(w.OrderReports))
	for _, report := range w.OrderReports {
		legs = append(legs, OCOOrderLeg{
			ID:     strconv.FormatInt(report.OrderID, 10),
			Type:   report.Type,
			Status: core.OrderStatus(report.Status),
		})
	}
	return &OCOOrder{
		OrderListID:       strconv.FormatInt(w.OrderListID, 10),
		ClientOrderListID: w.ListClientOrderID,
		CreatedAt:         msToTime(w.TransactionTime),
		Status:            core.ListStatus(w.ListOrderStatus),
		Legs:              legs,
	}, nil
}

// Position is a futures position snapshot.
type Position struct {
	Symbol                 string
	InitialMargin          *apd.Decimal
	MaintMargin            *apd.Decimal
	UnrealizedProfit       *apd.Decimal
	PositionInitialMargin  *apd.Decimal
	OpenOrderInitialMargin *apd.Decimal
	Leverage               *apd.Decimal
	Isolated               bool
	EntryPrice             *apd.Decimal
	BreakEvenPrice         *apd.Decimal
	MaxNotional            *apd.Decimal
	PositionSide           string
	// Amount is the signed position size; negative for short positions.
	Amount         *apd.Decimal
	Notional       *apd.Decimal
	IsolatedWallet *apd.Decimal
	BidNotional    *apd.Decimal
	AskNotional    *apd.Decimal
	UpdatedAt      time.Time
}

func newPosition(w positionWire) (*Position, error) {
	if w.Symbol == "" {
		return nil, core.NewDecodingError("symbol", "missing required field")
	}
	p := &Position{
		Symbol:       w.Symbol,
		Isolated:     w.Isolated,
		PositionSide: w.PositionSide,
		UpdatedAt:    msToTime(w.UpdateTime),
	}
	fields := []struct {
		key   string
		value string
		dst   **apd.Decimal
	}{
		{"initialMargin", w.InitialMargin, &p.InitialMargin},
		{"maintMargin", w.MaintMargin, &p.MaintMargin},
		{"unrealizedProfit", w.UnrealizedProfit, &p.UnrealizedProfit},
		{"positionInitialMargin", w.PositionInitialMargin, &p.PositionInitialMargin},
		{"openOrderInitialMargin", w.OpenOrderInitialMargin, &p.OpenOrderInitialMargin},
		{"leverage", w.Leverage, &p.Leverage},
		{"entryPrice", w.EntryPrice, &p.EntryPrice},
		{"breakEvenPrice", w.BreakEvenPrice, &p.BreakEvenPrice},
		{"maxNotional", w.MaxNotional, &p.MaxNotional},
		{"positionAmt", w.PositionAmt, &p.Amount},
		{"notional", w.Notional, &p.Notional},
		{"isolatedWallet", w.IsolatedWallet, &p.IsolatedWallet},
		{"bidNotional", w.BidNotional, &p.BidNotional},
		{"askNotional", w.AskNotional, &p.AskNotional},
	}
	for _, f := range fields {
		d, err := requireDecimal(f.key, f.value)
		if err != nil {
			return nil, err
		}
		*f.dst = d
	}
	return p, nil
}

// FuturesAsset is one asset entry in a futures account snapshot.
type FuturesAsset struct {
	Asset                  string
	WalletBalance          *apd.Decimal
	UnrealizedProfit       *apd.Decimal
	MarginBalance          *apd.Decimal
	MaintMargin            *apd.Decimal
	InitialMargin          *apd.Decimal
	PositionInitialMargin  *apd.Decimal
	OpenOrderInitialMargin *apd.Decimal
	MaxWithdrawAmount      *apd.Decimal
	CrossWalletBalance     *apd.Decimal
	CrossUnPnl             *apd.Decimal
	AvailableBalance       *apd.Decimal
	MarginAvailable        bool
	UpdatedAt              time.Time
}

func newFuturesAsset(w futuresAssetWire) (*FuturesAsset, error) {
	if w.Asset == "" {
		return nil, core.NewDecodingError("asset", "missing required field")
	}
	a := &FuturesAsset{
		Asset:           w.Asset,
		MarginAvailable: w.MarginAvailable,
		UpdatedAt:       msToTime(w.UpdateTime),
	}
	fields := []struct {
		key   string
		value string
		dst   **apd.Decimal
	}{
		{"walletBalance", w.WalletBalance, &a.WalletBalance},
		{"unrealizedProfit", w.UnrealizedProfit, &a.UnrealizedProfit},
		{"marginBalance", w.MarginBalance, &a.MarginBalance},
		{"maintMargin", w.MaintMargin, &a.MaintMargin},
		{"initialMargin", w.InitialMargin, &a.InitialMargin},
		{"positionInitialMargin", w.PositionInitialMargin, &a.PositionInitialMargin},
		{"openOrderInitialMargin", w.OpenOrderInitialMargin, &a.OpenOrderInitialMargin},
		{"maxWithdrawAmount", w.MaxWithdrawAmount, &a.MaxWithdrawAmount},
		{"crossWalletBalance", w.CrossWalletBalance, &a.CrossWalletBalance},
		{"crossUnPnl", w.CrossUnPnl, &a.CrossUnPnl},
		{"availableBalance", w.AvailableBalance, &a.AvailableBalance},
	}
	for _, f := range fields {
		d, err := requireDecimal(f.key, f.value)
		if err != nil {
			return nil, err
		}
		*f.dst = d
	}
	return a, nil
}

// FuturesBalances is a futures account snapshot: account-level aggregates
// plus per-asset entries and per-symbol positions.
type FuturesBalances struct {
	FeeTier           int
	CanTrade          bool
	CanDeposit        bool
	CanWithdraw       bool
	TradeGroupID      int64
	MultiAssetsMargin bool

	TotalInitialMargin          *apd.Decimal
	TotalMaintMargin            *apd.Decimal
	TotalWalletBalance          *apd.Decimal
	TotalUnrealizedProfit       *apd.Decimal
	TotalMarginBalance          *apd.Decimal
	TotalPositionInitialMargin  *apd.Decimal
	TotalOpenOrderInitialMargin *apd.Decimal
	TotalCrossWalletBalance     *apd.Decimal
	TotalCrossUnPnl             *apd.Decimal
	AvailableBalance            *apd.Decimal
	MaxWithdrawAmount           *apd.Decimal
	UpdatedAt                   time.Time

	// Assets is keyed by asset symbol.
	Assets map[string]*FuturesAsset
	// Positions is keyed by venue symbol.
	Positions map[string]*Position
}

func newFuturesBalances(w *futuresAccountWire) (*FuturesBalances, error) {
	b := &FuturesBalances{
		FeeTier:           w.FeeTier,
		CanTrade:          w.CanTrade,
		CanDeposit:        w.CanDeposit,
		CanWithdraw:       w.CanWithdraw,
		TradeGroupID:      w.TradeGroupID,
		MultiAssetsMargin: w.MultiAssetsMargin,
		UpdatedAt:         msToTime(w.UpdateTime),
		Assets:            make(map[string]*FuturesAsset, len(w.Assets)),
		Positions:         make(map[string]*Position, len(w.Positions)),
	}
	fields := []struct {
		key   string
		value string
		dst   **apd.Decimal
	}{
		{"totalInitialMargin", w.TotalInitialMargin, &b.TotalInitialMargin},
		{"totalMaintMargin", w.TotalMaintMargin, &b.TotalMaintMargin},
		{"totalWalletBalance", w.TotalWalletBalance, &b.TotalWalletBalance},
		{"totalUnrealizedProfit", w.TotalUnrealizedProfit, &b.TotalUnrealizedProfit},
		{"totalMarginBalance", w.TotalMarginBalance, &b.TotalMarginBalance},
		{"totalPositionInitialMargin", w.TotalPositionInitialMargin, &b.TotalPositionInitialMargin},
		{"totalOpenOrderInitialMargin", w.TotalOpenOrderInitialMargin, &b.TotalOpenOrderInitialMargin},
		{"totalCrossWalletBalance", w.TotalCrossWalletBalance, &b.TotalCrossWalletBalance},
		{"totalCrossUnPnl", w.TotalCrossUnPnl, &b.TotalCrossUnPnl},
		{"availableBalance", w.AvailableBalance, &b.AvailableBalance},
		{"maxWithdrawAmount", w.MaxWithdrawAmount, &b.MaxWithdrawAmount},
	}
	for _, f := range fields {
		d, err := requireDecimal(f.key, f.value)
		if err != nil {
			return nil, err
		}
		*f.dst = d
	}
	for _, aw := range w.Assets {
		asset, err := newFuturesAsset(aw)
		if err != nil {
			return nil, err
		}
		b.Assets[asset.Asset] = asset
	}
	for _, pw := range w.Positions {
		position, err := newPosition(pw)
		if err != nil {
			return nil, err
		}
		b.Positions[position.Symbol] = position
	}
	return b, nil
}
