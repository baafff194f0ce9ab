package series

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnsupportedTimeframe is returned when a target bucket width is not an
// integer multiple of the series' base resolution.
var ErrUnsupportedTimeframe = errors.New("unsupported timeframe")

// sessionOpen is the exchange session open as an offset from local midnight.
// Intraday buckets align to it, not to midnight: the first 3m bucket of a
// day starts at 09:15, not 09:00.
const sessionOpen = 9*time.Hour + 15*time.Minute

// Resample aggregates base-resolution candles into fixed-width buckets.
// Input must already be sorted by timestamp. For each bucket: open is the
// first candle's open, close the last candle's close, high/low the
// extremes, volume the sum. Buckets with no constituent candles are
// omitted rather than zero-filled.
func Resample(in []Candle, base, target time.Duration) ([]Candle, error) {
	if base <= 0 || target <= 0 || target%base != 0 {
		return nil, fmt.Errorf("%w: target %s is not a multiple of base %s", ErrUnsupportedTimeframe, target, base)
	}
	if target == base {
		out := make([]Candle, len(in))
		copy(out, in)
		return out, nil
	}

	var out []Candle
	var cur Candle
	var curSet bool

	flush := func() {
		if curSet {
			out = append(out, cur)
			curSet = false
		}
	}

	for _, c := range in {
		start := bucketStart(c.Timestamp, target)
		if !curSet || !start.Equal(cur.Timestamp) {
			flush()
			cur = c
			cur.Timestamp = start
			curSet = true
			continue
		}
		if c.High > cur.High {
			cur.High = c.High
		}
		if c.Low < cur.Low {
			cur.Low = c.Low
		}
		cur.Close = c.Close
		cur.Volume += c.Volume
	}
	flush()

	return out, nil
}

// bucketStart aligns a timestamp down to its bucket's open, anchored at the
// session open of the timestamp's trading day.
func bucketStart(t time.Time, width time.Duration) time.Time {
	anchor := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).Add(sessionOpen)
	rem := t.Sub(anchor) % width
	if rem < 0 {
		rem += width
	}
	return t.Add(-rem)
}
