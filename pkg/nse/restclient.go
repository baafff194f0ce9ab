package nse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"nsedata/internal/nse/catalog"
	"nsedata/internal/nse/series"

	"go.uber.org/zap"
)

const historicalPath = "/Charts/symbolhistoricaldata/"

// Client issues provider requests with session cookies attached. Every
// request goes through the session manager; a rejected request renews the
// session and is retried exactly once.
type Client struct {
	chartingBaseURL string
	siteBaseURL     string
	httpClient      *http.Client
	sessions        *SessionManager
	log             *zap.Logger
}

// NewClient constructs a provider client. siteBaseURL is the host serving
// the cookie handshake; chartingBaseURL serves masters and candle data.
func NewClient(chartingBaseURL, siteBaseURL string, timeout, sessionMaxAge time.Duration, log *zap.Logger) *Client {
	return &Client{
		chartingBaseURL: strings.TrimRight(chartingBaseURL, "/"),
		siteBaseURL:     strings.TrimRight(siteBaseURL, "/"),
		httpClient:      &http.Client{Timeout: timeout},
		sessions:        NewSessionManager(siteBaseURL, timeout, sessionMaxAge, log),
		log:             log,
	}
}

// Sessions exposes the session manager, shared by all requests.
func (c *Client) Sessions() *SessionManager {
	return c.sessions
}

// withSession runs one provider round trip under a valid session. When the
// attempt reports a rejection the session is invalidated, renewed, and the
// attempt repeated once; a second rejection surfaces ErrRejected.
func (c *Client) withSession(ctx context.Context, attempt func(*Session) (rejected bool, err error)) error {
	sess, err := c.sessions.Ensure(ctx)
	if err != nil {
		return err
	}

	rejected, err := attempt(sess)
	if err != nil || !rejected {
		return err
	}

	c.log.Warn("provider rejected request, renewing session")
	c.sessions.Invalidate(sess)
	sess, err = c.sessions.Ensure(ctx)
	if err != nil {
		return err
	}

	rejected, err = attempt(sess)
	if err != nil {
		return err
	}
	if rejected {
		return fmt.Errorf("%w after session renewal", ErrRejected)
	}
	return nil
}

// get issues a session-scoped GET and classifies the response:
// authentication-class statuses and HTML bodies where data is expected are
// rejections, other non-200 statuses are plain errors.
func (c *Client) get(ctx context.Context, sess *Session, url string) (body []byte, rejected bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("creating request: %w", err)
	}
	sess.apply(req)
	return c.do(req)
}

func (c *Client) do(req *http.Request) (body []byte, rejected bool, err error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, true, nil
	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("provider status %d", resp.StatusCode)
	case looksBlocked(body):
		// block pages arrive as HTTP 200 HTML
		return nil, true, nil
	}
	return body, false, nil
}

// looksBlocked reports whether a 200 payload is a block page instead of data.
func looksBlocked(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) == 0 || trimmed[0] == '<'
}

// GetMasters downloads and parses the full instrument list for a segment.
// Any failure, including a rejection that survives a session renewal,
// wraps ErrCatalogFetch.
func (c *Client) GetMasters(ctx context.Context, seg catalog.Segment) ([]catalog.InstrumentRecord, error) {
	endpoint := c.chartingBaseURL + seg.MastersPath()

	var records []catalog.InstrumentRecord
	err := c.withSession(ctx, func(sess *Session) (bool, error) {
		body, rejected, err := c.get(ctx, sess, endpoint)
		if err != nil || rejected {
			return rejected, err
		}
		recs, err := parseMasters(seg, body, c.log)
		if err != nil {
			return false, err
		}
		records = recs
		return false, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCatalogFetch, seg, err)
	}

	c.log.Info("master data downloaded",
		zap.String("segment", string(seg)), zap.Int("instruments", len(records)))
	return records, nil
}

// GetHistorical fetches one sub-range of candles at a native resolution.
// A "no_data" response is an empty series; any other non-ok status is
// treated as a block response and triggers the session retry.
func (c *Client) GetHistorical(ctx context.Context, req HistoricalRequest) ([]series.Candle, error) {
	meta, err := req.Timeframe.Meta()
	if err != nil {
		return nil, err
	}
	if !meta.Native() {
		return nil, fmt.Errorf("timeframe %s is not a native provider resolution", req.Timeframe)
	}

	payload, err := json.Marshal(historicalPayload{
		Exch:         req.Record.Segment.ExchCode(),
		InstrType:    req.Record.Segment.InstrTypeCode(),
		ScripCode:    req.Record.ScripCode,
		ULToken:      req.Record.ScripCode,
		FromDate:     req.Start.Unix(),
		ToDate:       req.End.Unix(),
		TimeInterval: meta.APIInterval,
		ChartPeriod:  meta.ChartPeriod,
		ChartStart:   0,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}

	var candles []series.Candle
	err = c.withSession(ctx, func(sess *Session) (bool, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.chartingBaseURL+historicalPath, bytes.NewReader(payload))
		if err != nil {
			return false, fmt.Errorf("creating request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		sess.apply(httpReq)

		body, rejected, err := c.do(httpReq)
		if err != nil || rejected {
			return rejected, err
		}

		var chart chartResponse
		if err := json.Unmarshal(body, &chart); err != nil {
			return false, fmt.Errorf("decode chart response: %w", err)
		}

		switch strings.ToLower(chart.Status) {
		case "ok":
			out, err := chart.candles()
			if err != nil {
				return false, fmt.Errorf("parse chart response: %w", err)
			}
			candles = out
			return false, nil
		case "no_data":
			candles = nil
			return false, nil
		default:
			// unknown status markers come from the anti-bot layer, not
			// from an empty range
			return true, nil
		}
	})
	if err != nil {
		return nil, err
	}

	c.log.Debug("historical sub-range fetched",
		zap.String("symbol", req.Record.Symbol),
		zap.String("timeframe", string(req.Timeframe)),
		zap.Time("start", req.Start),
		zap.Time("end", req.End),
		zap.Int("candles", len(candles)))
	return candles, nil
}
