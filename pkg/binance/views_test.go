package binance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuelink/pkg/core"
)

func int64Ptr(v int64) *int64 { return &v }

func TestBalanceTotal(t *testing.T) {
	b, err := newBalance(balanceWire{Asset: "BTC", Free: "1.5", Locked: "0.25"})
	require.NoError(t, err)
	decEqual(t, "1.5", b.Available)
	decEqual(t, "0.25", b.Locked)
	decEqual(t, "1.75", b.Total())
}

func TestBalanceMissingField(t *testing.T) {
	_, err := newBalance(balanceWire{Asset: "BTC", Free: "1.5"})
	var decErr *core.DecodingError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, "locked", decErr.Key)
}

func TestOrderInfoDerivedFields(t *testing.T) {
	w := &orderWire{
		OrderID:             9,
		ClientOrderID:       "client-1",
		Status:              "PARTIALLY_FILLED",
		OrigQty:             "10",
		ExecutedQty:         "2",
		CummulativeQuoteQty: "9",
	}
	trades := []*Trade{
		mustTrade(t, tradeWire{
			ID: 1, OrderID: 9, Price: "4.5", Qty: "1", QuoteQty: "4.5",
			Commission: "0.001", CommissionAsset: "BTC",
		}),
		mustTrade(t, tradeWire{
			ID: 2, OrderID: 9, Price: "4.5", Qty: "1", QuoteQty: "4.5",
			Commission: "0.002", CommissionAsset: "BTC",
		}),
		mustTrade(t, tradeWire{
			ID: 3, OrderID: 9, Price: "4.5", Qty: "0", QuoteQty: "0",
			Commission: "0.5", CommissionAsset: "BNB",
		}),
	}
	info, err := newOrderInfo(w, trades)
	require.NoError(t, err)

	// 2 base units filled for 9 quote units.
	decEqual(t, "4.5", info.FillPrice())
	decEqual(t, "8", info.AmountRemaining())

	fees := info.Fees()
	require.Len(t, fees, 2)
	decEqual(t, "0.003", fees["BTC"])
	decEqual(t, "0.5", fees["BNB"])

	assert.True(t, info.IsOpen())
}

func TestOrderInfoFillPriceNilAtZeroFill(t *testing.T) {
	w := &orderWire{
		OrderID:             10,
		Status:              "NEW",
		OrigQty:             "10",
		ExecutedQty:         "0",
		CummulativeQuoteQty: "0",
	}
	info, err := newOrderInfo(w, nil)
	require.NoError(t, err)

	assert.Nil(t, info.FillPrice())
	decEqual(t, "10", info.AmountRemaining())
	assert.Empty(t, info.Fees())
}

func TestOrderInfoZeroCommissionExcluded(t *testing.T) {
	w := &orderWire{
		OrderID: 11, Status: "FILLED",
		OrigQty: "1", ExecutedQty: "1", CummulativeQuoteQty: "100",
	}
	trades := []*Trade{
		mustTrade(t, tradeWire{
			ID: 1, OrderID: 11, Price: "100", Qty: "1", QuoteQty: "100",
			Commission: "0", CommissionAsset: "BTC",
		}),
	}
	info, err := newOrderInfo(w, trades)
	require.NoError(t, err)
	assert.Empty(t, info.Fees())
	assert.False(t, info.IsOpen())
}

func mustTrade(t *testing.T, w tradeWire) *Trade {
	t.Helper()
	trade, err := newTrade(w)
	require.NoError(t, err)
	return trade
}

func TestOrderStatusPredicates(t *testing.T) {
	open := &Order{Status: core.StatusPartiallyFilled}
	assert.True(t, open.IsOpen())

	closed := &Order{Status: core.StatusFilled}
	assert.False(t, closed.IsOpen())
}

func TestOrderListIDSentinel(t *testing.T) {
	assert.Equal(t, "", orderListID(nil))
	assert.Equal(t, "", orderListID(int64Ptr(-1)))
	assert.Equal(t, "42", orderListID(int64Ptr(42)))
}

func TestNewOrderMissingRequiredFields(t *testing.T) {
	var decErr *core.DecodingError

	_, err := newOrder(&orderWire{Status: "NEW", OrigQty: "1", ExecutedQty: "0", CummulativeQuoteQty: "0"})
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, "orderId", decErr.Key)

	_, err = newOrder(&orderWire{OrderID: 1, Status: "NEW", ExecutedQty: "0", CummulativeQuoteQty: "0"})
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, "origQty", decErr.Key)

	_, err = newOrder(&orderWire{OrderID: 1, Status: "NEW", OrigQty: "x", ExecutedQty: "0", CummulativeQuoteQty: "0"})
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, "origQty", decErr.Key)
}

func TestNewOrderOptionalPrices(t *testing.T) {
	w := &orderWire{
		OrderID: 1, Status: "NEW",
		OrigQty: "1", ExecutedQty: "0", CummulativeQuoteQty: "0",
		Price: "0.00000000", StopPrice: "105.5",
	}
	order, err := newOrder(w)
	require.NoError(t, err)

	// Zero prices mean "not set" on the wire.
	assert.Nil(t, order.LimitPrice)
	decEqual(t, "105.5", order.StopPrice)
}

func TestCreatedOrderAckResponse(t *testing.T) {
	w := &orderWire{
		OrderID:       28,
		ClientOrderID: "my-order",
		TransactTime:  1507725176595,
	}
	created, err := newCreatedOrder(w)
	require.NoError(t, err)

	assert.Equal(t, "28", created.ID)
	assert.Equal(t, "my-order", created.ClientOrderID)
	assert.Equal(t, "", created.OrderListID)
	assert.Nil(t, created.Amount)
	assert.Empty(t, created.Status)
	assert.Equal(t, int64(1507725176595), created.CreatedAt.UnixMilli())
}

func TestCreatedOrderFullResponse(t *testing.T) {
	w := &orderWire{
		OrderID: 28, ClientOrderID: "my-order", TransactTime: 1507725176595,
		Status: "FILLED", OrigQty: "10", ExecutedQty: "10", CummulativeQuoteQty: "100",
		Fills: []fillWire{
			{Price: "10", Qty: "10", Commission: "0.01", CommissionAsset: "BNB", TradeID: 56},
		},
	}
	created, err := newCreatedOrder(w)
	require.NoError(t, err)

	decEqual(t, "10", created.Amount)
	assert.False(t, created.IsOpen())
	require.Len(t, created.Fills, 1)
	decEqual(t, "0.01", created.Fills[0].Commission)
	assert.Equal(t, "56", created.Fills[0].TradeID)
}

func TestOpenOrderView(t *testing.T) {
	w := &orderWire{
		OrderID: 5, ClientOrderID: "c5", Status: "NEW", Side: "SELL",
		Type: "LIMIT", OrigQty: "1", ExecutedQty: "0", CummulativeQuoteQty: "0",
		Price: "50000", Time: 1700000000000, TimeInForce: "GTC",
	}
	order, err := newOpenOrder(w)
	require.NoError(t, err)

	assert.Equal(t, core.OperationSell, order.Operation)
	assert.Equal(t, "LIMIT", order.Type)
	assert.Equal(t, core.GTC, order.TimeInForce)
	assert.True(t, order.IsOpen())
}

func TestOCOOrderLegLookup(t *testing.T) {
	w := &ocoOrderWire{
		OrderListID:       77,
		ListClientOrderID: "list-1",
		ListOrderStatus:   "EXECUTING",
		TransactionTime:   1700000000000,
		OrderReports: []orderWire{
			{OrderID: 100, Type: "STOP_LOSS_LIMIT", Status: "NEW"},
			{OrderID: 101, Type: "LIMIT_MAKER", Status: "NEW"},
		},
	}
	oco, err := newOCOOrder(w)
	require.NoError(t, err)

	assert.Equal(t, "77", oco.OrderListID)
	assert.True(t, oco.IsOpen())

	limitID, err := oco.LimitOrderID()
	require.NoError(t, err)
	assert.Equal(t, "101", limitID)

	stopID, err := oco.StopLossOrderID()
	require.NoError(t, err)
	assert.Equal(t, "100", stopID)
}

func TestOCOOrderLegLookupWithoutReports(t *testing.T) {
	w := &ocoOrderWire{
		OrderListID:     77,
		ListOrderStatus: "ALL_DONE",
	}
	oco, err := newOCOOrder(w)
	require.NoError(t, err)

	assert.False(t, oco.IsOpen())

	_, err = oco.LimitOrderID()
	var decErr *core.DecodingError
	assert.ErrorAs(t, err, &decErr)
}

func TestFuturesBalancesView(t *testing.T) {
	w := &futuresAccountWire{
		FeeTier:                     2,
		CanTrade:                    true,
		TotalInitialMargin:          "10",
		TotalMaintMargin:            "5",
		TotalWalletBalance:          "1000",
		TotalUnrealizedProfit:       "-3.5",
		TotalMarginBalance:          "996.5",
		TotalPositionInitialMargin:  "8",
		TotalOpenOrderInitialMargin: "2",
		TotalCrossWalletBalance:     "1000",
		TotalCrossUnPnl:             "-3.5",
		AvailableBalance:            "986.5",
		MaxWithdrawAmount:           "986.5",
		Assets: []futuresAssetWire{{
			Asset: "USDT", WalletBalance: "1000", UnrealizedProfit: "-3.5",
			MarginBalance: "996.5", MaintMargin: "5", InitialMargin: "10",
			PositionInitialMargin: "8", OpenOrderInitialMargin: "2",
			MaxWithdrawAmount: "986.5", CrossWalletBalance: "1000",
			CrossUnPnl: "-3.5", AvailableBalance: "986.5", MarginAvailable: true,
		}},
		Positions: []positionWire{{
			Symbol: "BTCUSDT", InitialMargin: "8", MaintMargin: "5",
			UnrealizedProfit: "-3.5", PositionInitialMargin: "8",
			OpenOrderInitialMargin: "0", Leverage: "20", Isolated: false,
			EntryPrice: "50000", BreakEvenPrice: "50025", MaxNotional: "25000",
			PositionSide: "LONG", PositionAmt: "0.01", Notional: "500",
			IsolatedWallet: "0", BidNotional: "0", AskNotional: "0",
		}},
	}
	balances, err := newFuturesBalances(w)
	require.NoError(t, err)

	assert.Equal(t, 2, balances.FeeTier)
	assert.True(t, balances.CanTrade)
	decEqual(t, "996.5", balances.TotalMarginBalance)

	asset, ok := balances.Assets["USDT"]
	require.True(t, ok)
	decEqual(t, "986.5", asset.AvailableBalance)

	position, ok := balances.Positions["BTCUSDT"]
	require.True(t, ok)
	decEqual(t, "0.01", position.Amount)
	assert.Equal(t, "LONG", position.PositionSide)
	decEqual(t, "20", position.Leverage)
}

func TestPrecisionFromStepSize(t *testing.T) {
	cases := []struct {
		step string
		want int
	}{
		{"0.00100000", 3},
		{"0.00000100", 6},
		{"1.00000000", 0},
		{"0.1", 1},
	}
	for _, c := range cases {
		got, err := precisionFromStepSize("stepSize", c.step)
		require.NoError(t, err, "step %s", c.step)
		assert.Equal(t, c.want, got, "step %s", c.step)
	}

	_, err := precisionFromStepSize("stepSize", "0")
	assert.Error(t, err)
}
