package binance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuelink/pkg/core"
)

func TestChannelNames(t *testing.T) {
	assert.Equal(t, "btcusdt@kline_1m", barChannel("BTCUSDT", core.Interval1m))
	assert.Equal(t, "btcusdt_240628@trade", tradeChannel("BTCUSDT_240628"))

	channel, err := orderBookChannel("ETHUSDT", 10)
	require.NoError(t, err)
	assert.Equal(t, "ethusdt@depth10", channel)
}

func TestOrderBookChannelRejectsUnsupportedDepth(t *testing.T) {
	for _, depth := range []int{0, 1, 15, 100} {
		_, err := orderBookChannel("BTCUSDT", depth)
		var confErr *core.ConfigurationError
		assert.ErrorAs(t, err, &confErr, "depth %d", depth)
	}
}
