package nse

import (
	"fmt"
	"time"
)

// Timeframe is a supported candle resolution. Native timeframes map to a
// provider resolution directly; derived ones are aggregated client-side
// from the nearest smaller native resolution.
type Timeframe string

const (
	Timeframe1Min    Timeframe = "1m"
	Timeframe3Min    Timeframe = "3m"
	Timeframe5Min    Timeframe = "5m"
	Timeframe10Min   Timeframe = "10m"
	Timeframe15Min   Timeframe = "15m"
	Timeframe30Min   Timeframe = "30m"
	Timeframe1Hour   Timeframe = "1h"
	TimeframeDaily   Timeframe = "1d"
	TimeframeWeekly  Timeframe = "1w"
	TimeframeMonthly Timeframe = "1M"
)

// TimeframeMeta holds the provider request values and range limits for a
// timeframe.
type TimeframeMeta struct {
	Key         Timeframe
	APIInterval string        // timeInterval request value; empty for derived timeframes
	ChartPeriod string        // I (intraday), D, W or M; empty for derived timeframes
	Duration    time.Duration // bucket width (calendar approximation for 1w/1M)
	Base        Timeframe     // native resolution actually fetched; equals Key when native
	MaxSpan     time.Duration // provider cap on one request's range, set on native timeframes
}

// Native reports whether the provider serves this timeframe directly.
func (m TimeframeMeta) Native() bool { return m.Base == m.Key }

// Max spans per resolution class. The provider silently truncates overlong
// ranges, so these are hard limits discovered empirically, not documented.
const (
	maxSpanIntraday = 15 * 24 * time.Hour
	maxSpanDaily    = 365 * 24 * time.Hour
	maxSpanLong     = 10 * 365 * 24 * time.Hour
)

var validTimeframes = map[Timeframe]TimeframeMeta{
	Timeframe1Min:    {Key: Timeframe1Min, APIInterval: "1", ChartPeriod: "I", Duration: time.Minute, Base: Timeframe1Min, MaxSpan: maxSpanIntraday},
	Timeframe3Min:    {Key: Timeframe3Min, Duration: 3 * time.Minute, Base: Timeframe1Min},
	Timeframe5Min:    {Key: Timeframe5Min, APIInterval: "5", ChartPeriod: "I", Duration: 5 * time.Minute, Base: Timeframe5Min, MaxSpan: maxSpanIntraday},
	Timeframe10Min:   {Key: Timeframe10Min, Duration: 10 * time.Minute, Base: Timeframe5Min},
	Timeframe15Min:   {Key: Timeframe15Min, APIInterval: "15", ChartPeriod: "I", Duration: 15 * time.Minute, Base: Timeframe15Min, MaxSpan: maxSpanIntraday},
	Timeframe30Min:   {Key: Timeframe30Min, APIInterval: "30", ChartPeriod: "I", Duration: 30 * time.Minute, Base: Timeframe30Min, MaxSpan: maxSpanIntraday},
	Timeframe1Hour:   {Key: Timeframe1Hour, APIInterval: "60", ChartPeriod: "I", Duration: time.Hour, Base: Timeframe1Hour, MaxSpan: maxSpanIntraday},
	TimeframeDaily:   {Key: TimeframeDaily, APIInterval: "1", ChartPeriod: "D", Duration: 24 * time.Hour, Base: TimeframeDaily, MaxSpan: maxSpanDaily},
	TimeframeWeekly:  {Key: TimeframeWeekly, APIInterval: "1", ChartPeriod: "W", Duration: 7 * 24 * time.Hour, Base: TimeframeWeekly, MaxSpan: maxSpanLong},
	TimeframeMonthly: {Key: TimeframeMonthly, APIInterval: "1", ChartPeriod: "M", Duration: 30 * 24 * time.Hour, Base: TimeframeMonthly, MaxSpan: maxSpanLong},
}

// timeframeOrder lists all timeframes in ascending bucket width.
var timeframeOrder = []Timeframe{
	Timeframe1Min, Timeframe3Min, Timeframe5Min, Timeframe10Min,
	Timeframe15Min, Timeframe30Min, Timeframe1Hour,
	TimeframeDaily, TimeframeWeekly, TimeframeMonthly,
}

// IsValid checks if the Timeframe is a valid predefined timeframe.
func (t Timeframe) IsValid() bool {
	_, ok := validTimeframes[t]
	return ok
}

// Meta returns the metadata for a valid timeframe.
func (t Timeframe) Meta() (TimeframeMeta, error) {
	meta, ok := validTimeframes[t]
	if !ok {
		return TimeframeMeta{}, fmt.Errorf("invalid timeframe: %s", t)
	}
	return meta, nil
}

// ParseTimeframe parses a string into a valid Timeframe. The match is
// case-sensitive: "1m" is one minute, "1M" one month.
func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(s)
	if !tf.IsValid() {
		return "", fmt.Errorf("invalid timeframe: %s", s)
	}
	return tf, nil
}

// Timeframes returns the supported timeframe keys in ascending bucket width.
func Timeframes() []string {
	out := make([]string, len(timeframeOrder))
	for i, tf := range timeframeOrder {
		out[i] = string(tf)
	}
	return out
}
