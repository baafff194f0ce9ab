package nse

import (
	"fmt"
	"time"

	"nsedata/internal/nse/series"
)

// candles converts the column arrays of a chart payload into bars.
// All required arrays must be present and of equal length; the volume
// array may be absent (index instruments trade no volume).
func (r *chartResponse) candles() ([]series.Candle, error) {
	if r.Time == nil || r.Open == nil || r.High == nil || r.Low == nil || r.Close == nil {
		return nil, fmt.Errorf("chart payload missing a required column")
	}

	n := len(r.Time)
	if len(r.Open) != n || len(r.High) != n || len(r.Low) != n || len(r.Close) != n {
		return nil, fmt.Errorf("chart payload column lengths differ (t=%d o=%d h=%d l=%d c=%d)",
			n, len(r.Open), len(r.High), len(r.Low), len(r.Close))
	}
	if r.Volume != nil && len(r.Volume) != n {
		return nil, fmt.Errorf("chart payload volume length %d differs from %d", len(r.Volume), n)
	}

	out := make([]series.Candle, 0, n)
	for i := 0; i < n; i++ {
		c := series.Candle{
			Timestamp: time.Unix(r.Time[i], 0).In(MarketLocation),
			Open:      r.Open[i],
			High:      r.High[i],
			Low:       r.Low[i],
			Close:     r.Close[i],
		}
		if r.Volume != nil {
			c.Volume = int64(r.Volume[i])
		}
		out = append(out, c)
	}
	return out, nil
}
