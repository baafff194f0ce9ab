package series

import (
	"fmt"
	"time"
)

// Candle is one OHLCV bar. Timestamp is the bar-open instant in
// exchange-local time. Volume is zero for index instruments.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// Merge concatenates chronologically ordered chunks into one series,
// dropping duplicate timestamps at chunk boundaries (adjacent sub-range
// requests may share an edge bar).
func Merge(chunks [][]Candle) []Candle {
	total := 0
	for _, ch := range chunks {
		total += len(ch)
	}

	out := make([]Candle, 0, total)
	for _, ch := range chunks {
		for _, c := range ch {
			if n := len(out); n > 0 && !c.Timestamp.After(out[n-1].Timestamp) {
				continue
			}
			out = append(out, c)
		}
	}
	return out
}

// Clip returns the candles whose timestamps lie within [start, end].
func Clip(in []Candle, start, end time.Time) []Candle {
	out := make([]Candle, 0, len(in))
	for _, c := range in {
		if c.Timestamp.Before(start) || c.Timestamp.After(end) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Validate checks strict timestamp monotonicity and OHLC bounds.
func Validate(in []Candle) error {
	for i, c := range in {
		if i > 0 && !c.Timestamp.After(in[i-1].Timestamp) {
			return fmt.Errorf("timestamps not strictly increasing at index %d (%s)", i, c.Timestamp)
		}
		if c.Low > c.Open || c.Low > c.Close || c.High < c.Open || c.High < c.Close {
			return fmt.Errorf("OHLC bounds violated at index %d (%s)", i, c.Timestamp)
		}
	}
	return nil
}
