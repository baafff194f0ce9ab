package nse

import (
	"time"

	"nsedata/internal/nse/catalog"
)

// MarketLocation is the exchange-local time zone. All candle timestamps
// and expiry dates use it.
var MarketLocation = marketLocation()

func marketLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// zoneinfo-less environments; IST has no DST so a fixed offset is exact
		return time.FixedZone("IST", 5*3600+30*60)
	}
	return loc
}

// HistoricalRequest describes one ranged candle request at a native
// resolution.
type HistoricalRequest struct {
	Record    catalog.InstrumentRecord
	Start     time.Time
	End       time.Time
	Timeframe Timeframe
}

// historicalPayload mirrors the chart endpoint's request schema.
// Dates are epoch seconds.
type historicalPayload struct {
	Exch         string `json:"exch"`
	InstrType    string `json:"instrType"`
	ScripCode    int64  `json:"scripCode"`
	ULToken      int64  `json:"ulToken"`
	FromDate     int64  `json:"fromDate"`
	ToDate       int64  `json:"toDate"`
	TimeInterval string `json:"timeInterval"`
	ChartPeriod  string `json:"chartPeriod"`
	ChartStart   int    `json:"chartStart"`
}

// chartResponse mirrors the chart endpoint's column-array payload.
// Unknown extra fields are ignored; a missing required array is a parse
// failure, not an empty series.
type chartResponse struct {
	Status string    `json:"s"` // "Ok", "no_data", or an error marker
	Time   []int64   `json:"t"` // epoch seconds, bar open
	Open   []float64 `json:"o"`
	High   []float64 `json:"h"`
	Low    []float64 `json:"l"`
	Close  []float64 `json:"c"`
	Volume []float64 `json:"v"` // absent for indices
}
