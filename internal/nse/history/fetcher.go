package history

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"nsedata/internal/nse/catalog"
	"nsedata/internal/nse/series"
	"nsedata/pkg/nse"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrInvalidRange marks a caller-supplied range with start >= end.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrHistoricalFetch marks a sub-range fetch that failed after its
	// retries. No partial series is ever returned alongside it.
	ErrHistoricalFetch = errors.New("historical fetch failed")
)

const defaultConcurrency = 4

// Provider issues a single ranged candle request at a native resolution.
type Provider interface {
	GetHistorical(ctx context.Context, req nse.HistoricalRequest) ([]series.Candle, error)
}

// Fetcher assembles a candle series across an arbitrary date range,
// splitting it into sub-ranges the provider will accept and merging the
// results back in chronological order.
type Fetcher struct {
	provider    Provider
	concurrency int
	log         *zap.Logger
}

func NewFetcher(provider Provider, concurrency int, log *zap.Logger) *Fetcher {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Fetcher{
		provider:    provider,
		concurrency: concurrency,
		log:         log,
	}
}

// Fetch returns the candle series for [start, end] at the requested
// timeframe. Sub-ranges are fetched concurrently but reassembled by range
// index, so the output is identical to a sequential fetch. Every returned
// timestamp lies within [start, end], strictly increasing.
func (f *Fetcher) Fetch(ctx context.Context, record catalog.InstrumentRecord,
	start, end time.Time, tf nse.Timeframe) ([]series.Candle, error) {

	if start.IsZero() || end.IsZero() || !start.Before(end) {
		return nil, fmt.Errorf("%w: start %s, end %s", ErrInvalidRange, start, end)
	}

	meta, err := tf.Meta()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", series.ErrUnsupportedTimeframe, err)
	}
	baseMeta, err := meta.Base.Meta()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", series.ErrUnsupportedTimeframe, err)
	}

	spans := partition(start, end, baseMeta.MaxSpan)
	chunks := make([][]series.Candle, len(spans))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, sp := range spans {
		i, sp := i, sp
		g.Go(func() error {
			candles, err := f.getWithRetry(gctx, nse.HistoricalRequest{
				Record:    record,
				Start:     sp.start,
				End:       sp.end,
				Timeframe: meta.Base,
			})
			if err != nil {
				return fmt.Errorf("%w: %s range %s..%s: %w",
					ErrHistoricalFetch, record.Symbol, sp.start, sp.end, err)
			}
			chunks[i] = candles
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := series.Clip(series.Merge(chunks), start, end)
	if len(spans) > 1 {
		f.log.Debug("sub-ranges reassembled",
			zap.String("symbol", record.Symbol),
			zap.Int("ranges", len(spans)),
			zap.Int("candles", len(merged)))
	}

	if meta.Native() {
		return merged, nil
	}
	return series.Resample(merged, baseMeta.Duration, meta.Duration)
}

// getWithRetry retries a timed-out sub-range once. Rejections are not
// retried here: the provider client already renews the session and repeats
// the request internally, so a rejection surfacing means both attempts
// failed and the whole call must fail.
func (f *Fetcher) getWithRetry(ctx context.Context, req nse.HistoricalRequest) ([]series.Candle, error) {
	candles, err := f.provider.GetHistorical(ctx, req)
	if err == nil || !isTimeout(err) {
		return candles, err
	}
	f.log.Warn("sub-range fetch timed out, retrying",
		zap.String("symbol", req.Record.Symbol),
		zap.Time("start", req.Start),
		zap.Time("end", req.End))
	return f.provider.GetHistorical(ctx, req)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

type span struct {
	start, end time.Time
}

// partition splits [start, end] into consecutive spans no wider than
// maxSpan. Adjacent spans share an edge instant; the shared boundary
// candle is deduplicated during the merge.
func partition(start, end time.Time, maxSpan time.Duration) []span {
	if maxSpan <= 0 || end.Sub(start) <= maxSpan {
		return []span{{start, end}}
	}
	var out []span
	for cur := start; cur.Before(end); cur = cur.Add(maxSpan) {
		stop := cur.Add(maxSpan)
		if stop.After(end) {
			stop = end
		}
		out = append(out, span{cur, stop})
	}
	return out
}
