package indices

import (
	"context"
	"fmt"
	"strconv"

	"nsedata/pkg/nse"

	"go.uber.org/zap"
)

// IndexQuote is one live marketwatch row.
type IndexQuote struct {
	Symbol    string
	Open      float64
	High      float64
	Low       float64
	PrevClose float64
	Last      float64
	ChangePct float64
}

// Snapshot is a point-in-time view of one marketwatch listing.
type Snapshot struct {
	AsOf   string
	Quotes []IndexQuote
}

// Service exposes the live index endpoints on top of the provider client.
type Service struct {
	client *nse.Client
	log    *zap.Logger
}

func NewService(client *nse.Client, log *zap.Logger) *Service {
	return &Service{client: client, log: log}
}

// EquityIndex returns the constituents of one index group, e.g. "NIFTY 50".
// Row layout: Symbol, Open, High, Low, PrevClose, LTP, IndicativeClose,
// Chng, %Chng, Volume, ...
func (s *Service) EquityIndex(ctx context.Context, group string) (Snapshot, error) {
	raw, err := s.client.GetEquityIndexCSV(ctx, group)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{AsOf: raw.AsOf}
	for _, row := range raw.Rows {
		if len(row) < 9 {
			continue
		}
		snap.Quotes = append(snap.Quotes, IndexQuote{
			Symbol:    row[0],
			Open:      parseNum(row[1]),
			High:      parseNum(row[2]),
			Low:       parseNum(row[3]),
			PrevClose: parseNum(row[4]),
			Last:      parseNum(row[5]),
			ChangePct: parseNum(row[8]),
		})
	}
	if len(snap.Quotes) == 0 {
		return Snapshot{}, fmt.Errorf("no quotes in index payload for %q", group)
	}

	s.log.Debug("equity index snapshot fetched",
		zap.String("group", group), zap.Int("quotes", len(snap.Quotes)))
	return snap, nil
}

// AllIndices returns the full marketwatch index list.
// Row layout: Index, Current, %Change, Open, High, Low, IndicativeClose,
// PrevClose, ...
func (s *Service) AllIndices(ctx context.Context) (Snapshot, error) {
	raw, err := s.client.GetAllIndicesCSV(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{AsOf: raw.AsOf}
	for _, row := range raw.Rows {
		if len(row) < 8 {
			continue
		}
		snap.Quotes = append(snap.Quotes, IndexQuote{
			Symbol:    row[0],
			Last:      parseNum(row[1]),
			ChangePct: parseNum(row[2]),
			Open:      parseNum(row[3]),
			High:      parseNum(row[4]),
			Low:       parseNum(row[5]),
			PrevClose: parseNum(row[7]),
		})
	}
	if len(snap.Quotes) == 0 {
		return Snapshot{}, fmt.Errorf("no quotes in all-indices payload")
	}
	return snap, nil
}

// parseNum tolerates the provider's "-" placeholder for absent values.
func parseNum(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
