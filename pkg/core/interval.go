package core

// Interval is a bar (kline) duration in the venue token form.
type Interval string

// Bar intervals supported by the venue.
const (
	Interval1s  Interval = "1s"
	Interval1m  Interval = "1m"
	Interval3m  Interval = "3m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval1h  Interval = "1h"
	Interval2h  Interval = "2h"
	Interval4h  Interval = "4h"
	Interval6h  Interval = "6h"
	Interval8h  Interval = "8h"
	Interval12h Interval = "12h"
	Interval1d  Interval = "1d"
	Interval3d  Interval = "3d"
	Interval1w  Interval = "1w"
	Interval1M  Interval = "1M"
)

// Legacy numeric durations, in seconds, still accepted by bar subscriptions.
var secondsToInterval = map[int]Interval{
	1:          Interval1s,
	60:         Interval1m,
	3 * 60:     Interval3m,
	5 * 60:     Interval5m,
	15 * 60:    Interval15m,
	30 * 60:    Interval30m,
	3600:       Interval1h,
	2 * 3600:   Interval2h,
	4 * 3600:   Interval4h,
	6 * 3600:   Interval6h,
	8 * 3600:   Interval8h,
	12 * 3600:  Interval12h,
	86400:      Interval1d,
	3 * 86400:  Interval3d,
	7 * 86400:  Interval1w,
	31 * 86400: Interval1M,
}

var validIntervals = func() map[Interval]bool {
	m := make(map[Interval]bool, len(secondsToInterval))
	for _, iv := range secondsToInterval {
		m[iv] = true
	}
	return m
}()

// ResolveInterval normalizes a bar duration to an Interval. Both the legacy
// numeric form (duration in seconds) and the symbolic token form are
// accepted; both resolve to the same interval identity. Unrecognized values
// fail with a ConfigurationError.
func ResolveInterval(barDuration any) (Interval, error) {
	switch v := barDuration.(type) {
	case Interval:
		if validIntervals[v] {
			return v, nil
		}
	case string:
		if validIntervals[Interval(v)] {
			return Interval(v), nil
		}
	case int:
		if iv, ok := secondsToInterval[v]; ok {
			return iv, nil
		}
	case int64:
		if iv, ok := secondsToInterval[int(v)]; ok {
			return iv, nil
		}
	}
	return "", NewConfigurationError("invalid bar duration: %v", barDuration)
}
