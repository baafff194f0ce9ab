package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"nsedata/internal/nse/catalog"
	"nsedata/internal/nse/history"
	"nsedata/internal/nse/series"
	"nsedata/pkg/nse"

	"go.uber.org/zap"
)

// fakeMasters serves canned per-segment listings.
type fakeMasters struct {
	records map[catalog.Segment][]catalog.InstrumentRecord
	err     error
}

func (m *fakeMasters) GetMasters(ctx context.Context, seg catalog.Segment) ([]catalog.InstrumentRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.records[seg], nil
}

// fakeProvider serves one synthetic daily bar per day in the request range.
type fakeProvider struct{}

func (fakeProvider) GetHistorical(ctx context.Context, req nse.HistoricalRequest) ([]series.Candle, error) {
	var out []series.Candle
	for t := req.Start; !t.After(req.End); t = t.Add(24 * time.Hour) {
		out = append(out, series.Candle{Timestamp: t, Open: 100, High: 102, Low: 99, Close: 101, Volume: 5})
	}
	return out, nil
}

func newTestEngine(masters MasterSource) *Engine {
	log := zap.NewNop()
	return &Engine{
		log:     log,
		masters: masters,
		catalog: catalog.New(),
		fetcher: history.NewFetcher(fakeProvider{}, 2, log),
	}
}

func testMasters() *fakeMasters {
	return &fakeMasters{records: map[catalog.Segment][]catalog.InstrumentRecord{
		catalog.SegmentNSE: {
			{ScripCode: 2885, Symbol: "RELIANCE", Name: "Reliance Industries", Type: catalog.TypeEquity, Segment: catalog.SegmentNSE},
			{ScripCode: 26000, Symbol: "Nifty 50", Name: "Nifty 50", Type: catalog.TypeIndex, Segment: catalog.SegmentNSE},
		},
		catalog.SegmentNFO: {
			{ScripCode: 51234, Symbol: "NIFTY24OCTFUT", Type: catalog.TypeFuture, Segment: catalog.SegmentNFO},
			{ScripCode: 51235, Symbol: "NIFTY24OCT24800CE", Type: catalog.TypeOptionCall, Segment: catalog.SegmentNFO},
		},
	}}
}

// go test -v --run TestSearchRequiresDownload
func TestSearchRequiresDownload(t *testing.T) {
	e := newTestEngine(testMasters())

	if _, err := e.Search("RELIANCE", catalog.SegmentNSE, false); !errors.Is(err, catalog.ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded before download, got %v", err)
	}

	if err := e.Download(context.Background()); err != nil {
		t.Fatalf("download failed: %v", err)
	}
	got, err := e.Search("reliance", catalog.SegmentNSE, true)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(got) != 1 || got[0].ScripCode != 2885 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

// go test -v --run TestDownloadFailureKeepsCatalog
func TestDownloadFailureKeepsCatalog(t *testing.T) {
	masters := testMasters()
	e := newTestEngine(masters)
	if err := e.Download(context.Background()); err != nil {
		t.Fatalf("download failed: %v", err)
	}

	masters.err = nse.ErrCatalogFetch
	if err := e.Download(context.Background()); !errors.Is(err, nse.ErrCatalogFetch) {
		t.Fatalf("expected fetch error, got %v", err)
	}

	// previous catalog keeps serving
	got, err := e.Search("NIFTY", catalog.SegmentNFO, false)
	if err != nil || len(got) != 2 {
		t.Fatalf("catalog lost after failed refresh: %v, %d records", err, len(got))
	}
}

// go test -v --run TestResolve
func TestResolve(t *testing.T) {
	e := newTestEngine(testMasters())
	if err := e.Download(context.Background()); err != nil {
		t.Fatalf("download failed: %v", err)
	}

	// first substring match in listing order
	rec, err := e.Resolve("NIFTY", catalog.SegmentNFO)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if rec.ScripCode != 51234 {
		t.Errorf("expected first listed match, got %+v", rec)
	}

	// fully qualified token pins the contract
	rec, err = e.Resolve("NIFTY24OCT24800CE", catalog.SegmentNFO)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if rec.ScripCode != 51235 {
		t.Errorf("expected the option contract, got %+v", rec)
	}

	if _, err := e.Resolve("NOSUCH", catalog.SegmentNSE); !errors.Is(err, ErrSymbolNotFound) {
		t.Errorf("expected ErrSymbolNotFound, got %v", err)
	}
}

// go test -v --run TestHistorical
func TestHistorical(t *testing.T) {
	e := newTestEngine(testMasters())
	if err := e.Download(context.Background()); err != nil {
		t.Fatalf("download failed: %v", err)
	}

	start := time.Date(2024, 10, 1, 0, 0, 0, 0, nse.MarketLocation)
	end := start.Add(9 * 24 * time.Hour)

	got, err := e.Historical(context.Background(), "RELIANCE", catalog.SegmentNSE, start, end, "1d")
	if err != nil {
		t.Fatalf("historical failed: %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("expected 10 daily bars, got %d", len(got))
	}
	if err := series.Validate(got); err != nil {
		t.Errorf("series invalid: %v", err)
	}

	if _, err := e.Historical(context.Background(), "RELIANCE", catalog.SegmentNSE, start, end, "2m"); !errors.Is(err, series.ErrUnsupportedTimeframe) {
		t.Errorf("expected ErrUnsupportedTimeframe for 2m, got %v", err)
	}
	if _, err := e.Historical(context.Background(), "NOSUCH", catalog.SegmentNSE, start, end, "1d"); !errors.Is(err, ErrSymbolNotFound) {
		t.Errorf("expected ErrSymbolNotFound, got %v", err)
	}
}

// go test -v --run TestTimeframes
func TestTimeframes(t *testing.T) {
	e := newTestEngine(testMasters())
	keys := e.Timeframes()
	if len(keys) != 10 {
		t.Fatalf("expected 10 interval keys, got %d", len(keys))
	}
	if keys[0] != "1m" || keys[len(keys)-1] != "1M" {
		t.Errorf("unexpected ordering: %v", keys)
	}
}
