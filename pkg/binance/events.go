package binance

import (
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/apd/v3"

	"venuelink/pkg/core"
)

// Bar is one closed kline.
type Bar struct {
	Start    time.Time
	End      time.Time
	Interval core.Interval
	Open     *apd.Decimal
	High     *apd.Decimal
	Low      *apd.Decimal
	Close    *apd.Decimal
	Volume   *apd.Decimal
}

// BarEvent reports a closed bar for a pair.
type BarEvent struct {
	Pair core.Pair
	When time.Time
	Bar  *Bar
}

// BarEventHandler receives bar events.
type BarEventHandler func(event *BarEvent)

// decodeBarEvent parses a kline stream payload. Open klines yield a nil
// event; only closed bars are reported.
func decodeBarEvent(pair core.Pair, frame []byte) (*BarEvent, error) {
	var w klineEventWire
	if err := sonic.Unmarshal(frame, &w); err != nil {
		return nil, core.NewDecodingError("k", "malformed kline payload: "+err.Error())
	}
	if !w.Kline.Closed {
		return nil, nil
	}
	open, err := requireDecimal("o", w.Kline.Open)
	if err != nil {
		return nil, err
	}
	high, err := requireDecimal("h", w.Kline.High)
	if err != nil {
		return nil, err
	}
	low, err := requireDecimal("l", w.Kline.Low)
	if err != nil {
		return nil, err
	}
	closePrice, err := requireDecimal("c", w.Kline.Close)
	if err != nil {
		return nil, err
	}
	volume, err := requireDecimal("v", w.Kline.Volume)
	if err != nil {
		return nil, err
	}
	return &BarEvent{
		Pair: pair,
		When: msToTime(w.EventTime),
		Bar: &Bar{
			Start:    msToTime(w.Kline.OpenTime),
			End:      msToTime(w.Kline.CloseTime),
			Interval: core.Interval(w.Kline.Interval),
			Open:     open,
			High:     high,
			Low:      low,
			Close:    closePrice,
			Volume:   volume,
		},
	}, nil
}

// OrderBookEntry is one price level.
type OrderBookEntry struct {
	Price  *apd.Decimal
	Amount *apd.Decimal
}

// OrderBookEvent reports the top levels of the book for a pair.
type OrderBookEvent struct {
	Pair core.Pair
	When time.Time
	Bids []OrderBookEntry
	Asks []OrderBookEntry
}

// OrderBookEventHandler receives order book events.
type OrderBookEventHandler func(event *OrderBookEvent)

func decodeBookSide(key string, levels [][]string) ([]OrderBookEntry, error) {
	entries := make([]OrderBookEntry, 0, len(levels))
	for _, level := range levels {
		if len(level) < 2 {
			return nil, core.NewDecodingError(key, "malformed price level")
		}
		price, err := requireDecimal(key, level[0])
		if err != nil {
			return nil, err
		}
		amount, err := requireDecimal(key, level[1])
		if err != nil {
			return nil, err
		}
		entries = append(entries, OrderBookEntry{Price: price, Amount: amount})
	}
	return entries, nil
}

// decodeOrderBookEvent parses a partial book depth payload. The stream does
// not carry an event time, so the receive time is used.
func decodeOrderBookEvent(pair core.Pair, frame []byte) (*OrderBookEvent, error) {
	var w depthWire
	if err := sonic.Unmarshal(frame, &w); err != nil {
		return nil, core.NewDecodingError("bids", "malformed depth payload: "+err.Error())
	}
	bids, err := decodeBookSide("bids", w.Bids)
	if err != nil {
		return nil, err
	}
	asks, err := decodeBookSide("asks", w.Asks)
	if err != nil {
		return nil, err
	}
	return &OrderBookEvent{
		Pair: pair,
		When: time.Now().UTC(),
		Bids: bids,
		Asks: asks,
	}, nil
}

// TradeEvent reports one public trade for a pair.
type TradeEvent struct {
	Pair core.Pair
	When time.Time
	// ID is the venue trade id.
	ID          string
	Price       *apd.Decimal
	Amount      *apd.Decimal
	BuyOrderID  string
	SellOrderID string
	// IsBuyerMaker is true when the buyer was the resting side.
	IsBuyerMaker bool
	TradeTime    time.Time
}

// TradeEventHandler receives trade events.
type TradeEventHandler func(event *TradeEvent)

func decodeTradeEvent(pair core.Pair, frame []byte) (*TradeEvent, error) {
	var w tradeEventWire
	if err := sonic.Unmarshal(frame, &w); err != nil {
		return nil, core.NewDecodingError("t", "malformed trade payload: "+err.Error())
	}
	if w.TradeID == 0 {
		return nil, core.NewDecodingError("t", "missing required field")
	}
	price, err := requireDecimal("p", w.Price)
	if err != nil {
		return nil, err
	}
	amount, err := requireDecimal("q", w.Quantity)
	if err != nil {
		return nil, err
	}
	return &TradeEvent{
		Pair:         pair,
		When:         msToTime(w.EventTime),
		ID:           strconv.FormatInt(w.TradeID, 10),
		Price:        price,
		Amount:       amount,
		BuyOrderID:   strconv.FormatInt(w.BuyOrderID, 10),
		SellOrderID:  strconv.FormatInt(w.SellOrderID, 10),
		IsBuyerMaker: w.BuyerMaker,
		TradeTime:    msToTime(w.TradeTime),
	}, nil
}
