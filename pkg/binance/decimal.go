package binance

import (
	"github.com/cockroachdb/apd/v3"

	"venuelink/pkg/core"
)

// decCtx is the arithmetic context for derived values. 32 digits comfortably
// covers venue price and amount scales.
var decCtx = apd.BaseContext.WithPrecision(32)

// requireDecimal parses a mandatory decimal field. Missing or malformed
// values fail with a DecodingError naming the key.
func requireDecimal(key, value string) (*apd.Decimal, error) {
	if value == "" {
		return nil, core.NewDecodingError(key, "missing required field")
	}
	d, _, err := apd.NewFromString(value)
	if err != nil {
		return nil, core.NewDecodingError(key, "malformed decimal: "+value)
	}
	return d, nil
}

// optionalDecimal parses an optional decimal field. Absent values map to nil;
// with skipZero, a zero value also maps to nil since the venue uses zero as
// "not set" for prices.
func optionalDecimal(key, value string, skipZero bool) (*apd.Decimal, error) {
	if value == "" {
		return nil, nil
	}
	d, _, err := apd.NewFromString(value)
	if err != nil {
		return nil, core.NewDecodingError(key, "malformed decimal: "+value)
	}
	if skipZero && d.IsZero() {
		return nil, nil
	}
	return d, nil
}

// precisionFromStepSize derives a decimal-place count from a venue step size,
// e.g. "0.00100000" yields 3 and "1.00000000" yields 0.
func precisionFromStepSize(key, stepSize string) (int, error) {
	d, err := requireDecimal(key, stepSize)
	if err != nil {
		return 0, err
	}
	if d.IsZero() {
		return 0, core.NewDecodingError(key, "step size is zero")
	}
	var reduced apd.Decimal
	reduced.Reduce(d)
	precision := int(-reduced.Exponent)
	if precision < 0 {
		precision = 0
	}
	return precision, nil
}

// formatDecimal renders a decimal for a request parameter in plain notation.
func formatDecimal(d *apd.Decimal) string {
	return d.Text('f')
}
