package binance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuelink/pkg/core"
)

func TestDecodeBarEventClosedKline(t *testing.T) {
	pair := core.NewPair("BTC", "USDT")
	frame := `{"e":"kline","E":1700000060000,"s":"BTCUSDT","k":{
		"t":1700000000000,"T":1700000059999,"i":"1m",
		"o":"105","h":"112","l":"104","c":"111","v":"12","x":true}}`

	event, err := decodeBarEvent(pair, []byte(frame))
	require.NoError(t, err)
	require.NotNil(t, event)

	assert.Equal(t, pair, event.Pair)
	assert.Equal(t, int64(1700000060000), event.When.UnixMilli())
	assert.Equal(t, core.Interval1m, event.Bar.Interval)
	assert.Equal(t, int64(1700000000000), event.Bar.Start.UnixMilli())
	decEqual(t, "105", event.Bar.Open)
	decEqual(t, "112", event.Bar.High)
	decEqual(t, "104", event.Bar.Low)
	decEqual(t, "111", event.Bar.Close)
	decEqual(t, "12", event.Bar.Volume)
}

func TestDecodeBarEventOpenKlineFiltered(t *testing.T) {
	frame := `{"e":"kline","E":1700000030000,"s":"BTCUSDT","k":{
		"t":1700000000000,"T":1700000059999,"i":"1m",
		"o":"105","h":"112","l":"104","c":"108","v":"6","x":false}}`

	event, err := decodeBarEvent(core.NewPair("BTC", "USDT"), []byte(frame))
	require.NoError(t, err)
	assert.Nil(t, event)
}

func TestDecodeBarEventMalformed(t *testing.T) {
	_, err := decodeBarEvent(core.NewPair("BTC", "USDT"), []byte(`{not json`))
	var decErr *core.DecodingError
	require.ErrorAs(t, err, &decErr)

	// Closed kline with an unparsable price.
	frame := `{"e":"kline","E":1,"s":"BTCUSDT","k":{"t":1,"T":2,"i":"1m","o":"x","h":"1","l":"1","c":"1","v":"1","x":true}}`
	_, err = decodeBarEvent(core.NewPair("BTC", "USDT"), []byte(frame))
	require.ErrorAs(t, err, &decErr)
}

func TestDecodeOrderBookEvent(t *testing.T) {
	pair := core.NewPair("BTC", "USDT")
	frame := `{"lastUpdateId":160,"bids":[["64999.50","1.2"],["64999.00","3"]],"asks":[["65000.10","0.8"]]}`

	before := time.Now().UTC()
	event, err := decodeOrderBookEvent(pair, []byte(frame))
	require.NoError(t, err)

	assert.Equal(t, pair, event.Pair)
	assert.False(t, event.When.Before(before))
	require.Len(t, event.Bids, 2)
	require.Len(t, event.Asks, 1)
	decEqual(t, "64999.50", event.Bids[0].Price)
	decEqual(t, "3", event.Bids[1].Amount)
	decEqual(t, "65000.10", event.Asks[0].Price)
}

func TestDecodeOrderBookEventMalformedLevel(t *testing.T) {
	frame := `{"lastUpdateId":160,"bids":[["64999.50"]],"asks":[]}`
	_, err := decodeOrderBookEvent(core.NewPair("BTC", "USDT"), []byte(frame))
	var decErr *core.DecodingError
	require.ErrorAs(t, err, &decErr)
}

func TestDecodeTradeEvent(t *testing.T) {
	pair := core.NewPair("BTC", "USDT")
	frame := `{"e":"trade","E":1700000000000,"s":"BTCUSDT","t":12345,
		"p":"65000.10","q":"0.5","b":88,"a":99,"T":1700000000001,"m":true}`

	event, err := decodeTradeEvent(pair, []byte(frame))
	require.NoError(t, err)

	assert.Equal(t, pair, event.Pair)
	assert.Equal(t, "12345", event.ID)
	decEqual(t, "65000.10", event.Price)
	decEqual(t, "0.5", event.Amount)
	assert.Equal(t, "88", event.BuyOrderID)
	assert.Equal(t, "99", event.SellOrderID)
	assert.True(t, event.IsBuyerMaker)
	assert.Equal(t, int64(1700000000001), event.TradeTime.UnixMilli())
}

func TestDecodeTradeEventMissingID(t *testing.T) {
	frame := `{"e":"trade","E":1700000000000,"s":"BTCUSDT","p":"65000.10","q":"0.5"}`
	_, err := decodeTradeEvent(core.NewPair("BTC", "USDT"), []byte(frame))
	var decErr *core.DecodingError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, "t", decErr.Key)
}
