package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nsedata/config"
	"nsedata/internal/nse/catalog"
	"nsedata/internal/nse/history"
	"nsedata/internal/nse/series"
	"nsedata/pkg/nse"
	"nsedata/pkg/storage/sqlite"

	"go.uber.org/zap"
)

// ErrSymbolNotFound means a query matched no catalog record. Expected for
// bad user input, unlike the fetch-class errors.
var ErrSymbolNotFound = errors.New("symbol not found")

// MasterSource fetches the instrument list for one segment.
type MasterSource interface {
	GetMasters(ctx context.Context, seg catalog.Segment) ([]catalog.InstrumentRecord, error)
}

var segments = []catalog.Segment{catalog.SegmentNSE, catalog.SegmentNFO}

// Engine wires the session-scoped provider client, the instrument catalog
// and the ranged fetcher into the caller-facing surface.
type Engine struct {
	log     *zap.Logger
	masters MasterSource
	catalog *catalog.Catalog
	fetcher *history.Fetcher
	cache   *sqlite.Client // nil when the cache is disabled
}

// New builds an engine from configuration. The sqlite catalog cache is a
// purely optional collaborator; disabling it changes nothing but warm-up
// cost.
func New(cfg *config.Config, log *zap.Logger) (*Engine, error) {
	client := nse.NewClient(cfg.NSE.ChartingBaseURL, cfg.NSE.SiteBaseURL,
		cfg.NSE.Timeout, cfg.NSE.SessionMaxAge, log)

	var cache *sqlite.Client
	if cfg.Cache.Enabled {
		c, err := sqlite.InitializeAndMigrate(cfg.Cache.Path)
		if err != nil {
			return nil, fmt.Errorf("opening catalog cache: %w", err)
		}
		cache = c
	}

	return &Engine{
		log:     log,
		masters: client,
		catalog: catalog.New(),
		fetcher: history.NewFetcher(client, cfg.NSE.FetchConcurrency, log),
		cache:   cache,
	}, nil
}

// Download fetches and indexes the master data for both segments. Each
// segment replaces atomically on success; a failure leaves any previously
// downloaded catalog intact.
func (e *Engine) Download(ctx context.Context) error {
	for _, seg := range segments {
		records, err := e.masters.GetMasters(ctx, seg)
		if err != nil {
			return err
		}
		e.catalog.Replace(seg, records)

		if e.cache != nil {
			if err := e.cache.ReplaceSegment(ctx, seg, records); err != nil {
				// the cache is best-effort; the in-memory catalog is authoritative
				e.log.Warn("catalog cache write failed",
					zap.String("segment", string(seg)), zap.Error(err))
			}
		}
	}
	return nil
}

// LoadCached hydrates the catalog from the on-disk cache, skipping
// segments with no cached rows. Useful to serve searches before the first
// Download completes.
func (e *Engine) LoadCached(ctx context.Context) error {
	if e.cache == nil {
		return fmt.Errorf("catalog cache is disabled")
	}
	for _, seg := range segments {
		records, err := e.cache.LoadSegment(ctx, seg)
		if err != nil {
			return fmt.Errorf("loading cached catalog for %s: %w", seg, err)
		}
		if len(records) == 0 {
			continue
		}
		e.catalog.Replace(seg, records)
		e.log.Info("catalog loaded from cache",
			zap.String("segment", string(seg)), zap.Int("instruments", len(records)))
	}
	return nil
}

// Search returns the catalog records matching symbol in a segment, in the
// provider's listing order.
func (e *Engine) Search(symbol string, segment catalog.Segment, exact bool) ([]catalog.InstrumentRecord, error) {
	return e.catalog.Search(segment, symbol, exact)
}

// Resolve maps a symbol to a single instrument: the first substring match
// in the provider's own listing order. An ambiguous query resolves to
// whichever record the provider lists first; callers wanting a specific
// derivative contract must pass the fully qualified token.
func (e *Engine) Resolve(symbol string, segment catalog.Segment) (catalog.InstrumentRecord, error) {
	matches, err := e.catalog.Search(segment, symbol, false)
	if err != nil {
		return catalog.InstrumentRecord{}, err
	}
	if len(matches) == 0 {
		return catalog.InstrumentRecord{}, fmt.Errorf("%w: %q in %s", ErrSymbolNotFound, symbol, segment)
	}
	return matches[0], nil
}

// Historical resolves a symbol and fetches its candle series for
// [start, end] at the requested interval.
func (e *Engine) Historical(ctx context.Context, symbol string, segment catalog.Segment,
	start, end time.Time, interval string) ([]series.Candle, error) {

	tf, err := nse.ParseTimeframe(interval)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", series.ErrUnsupportedTimeframe, err)
	}
	record, err := e.Resolve(symbol, segment)
	if err != nil {
		return nil, err
	}
	return e.fetcher.Fetch(ctx, record, start, end, tf)
}

// Timeframes returns the supported interval keys in ascending bucket width.
func (e *Engine) Timeframes() []string {
	return nse.Timeframes()
}

// Close releases the cache handle, if any.
func (e *Engine) Close() error {
	if e.cache == nil {
		return nil
	}
	return e.cache.Close()
}
