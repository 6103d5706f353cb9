package binance

import (
	"fmt"
	"strings"

	"venuelink/pkg/core"
)

// Channel names follow the venue convention: lowercase symbol, "@", stream
// kind and parameters. Identical (kind, symbol, params) always render the
// same name, which is what makes channel sharing work.

func barChannel(symbol string, interval core.Interval) string {
	return strings.ToLower(symbol) + "@kline_" + string(interval)
}

// validDepths are the depth levels the venue's partial book stream supports.
var validDepths = map[int]bool{5: true, 10: true, 20: true}

func orderBookChannel(symbol string, depth int) (string, error) {
	if !validDepths[depth] {
		return "", core.NewConfigurationError("invalid order book depth: %d (valid: 5, 10, 20)", depth)
	}
	return fmt.Sprintf("%s@depth%d", strings.ToLower(symbol), depth), nil
}

func tradeChannel(symbol string) string {
	return strings.ToLower(symbol) + "@trade"
}
