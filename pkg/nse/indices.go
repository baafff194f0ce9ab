package nse

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	equityIndexPath = "/api/equity-stockIndices"
	allIndicesPath  = "/api/allIndices"
)

// IndexCSV is the raw result of a marketwatch CSV endpoint: the as-of
// date line plus the data rows, with thousand separators inside quoted
// numbers removed.
type IndexCSV struct {
	AsOf string
	Rows [][]string
}

// GetEquityIndexCSV fetches the live equity marketwatch rows for one index
// group (e.g. "NIFTY 50").
func (c *Client) GetEquityIndexCSV(ctx context.Context, group string) (IndexCSV, error) {
	endpoint := fmt.Sprintf("%s%s?csv=true&index=%s&selectValFormat=crores",
		c.siteBaseURL, equityIndexPath, url.QueryEscape(group))
	// The CSV carries a 16-line preamble; the report date sits on its last line.
	return c.getIndexCSV(ctx, endpoint, 15, 16)
}

// GetAllIndicesCSV fetches the full marketwatch index list.
func (c *Client) GetAllIndicesCSV(ctx context.Context) (IndexCSV, error) {
	out, err := c.getIndexCSV(ctx, c.siteBaseURL+allIndicesPath+"?csv=true", 12, 17)
	if err != nil {
		return IndexCSV{}, err
	}
	// This variant's date line trails extra columns.
	if i := strings.Index(out.AsOf, ","); i >= 0 {
		out.AsOf = out.AsOf[:i]
	}
	return out, nil
}

func (c *Client) getIndexCSV(ctx context.Context, endpoint string, dateLine, dataStart int) (IndexCSV, error) {
	var out IndexCSV
	err := c.withSession(ctx, func(sess *Session) (bool, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return false, fmt.Errorf("creating request: %w", err)
		}
		sess.apply(req)
		req.Header.Set("Accept", "*/*")
		req.Header.Set("Referer", c.siteBaseURL+"/market-data/live-equity-market")
		req.Header.Set("X-Requested-With", "XMLHttpRequest")

		body, rejected, err := c.do(req)
		if err != nil || rejected {
			return rejected, err
		}

		lines := strings.Split(strings.ReplaceAll(string(body), "\r\n", "\n"), "\n")
		if len(lines) <= dataStart {
			return false, fmt.Errorf("unexpectedly short index payload (%d lines)", len(lines))
		}

		asOf := strings.TrimSpace(strings.ReplaceAll(lines[dateLine], `"`, ""))
		var rows [][]string
		for _, line := range lines[dataStart:] {
			if strings.TrimSpace(line) == "" {
				continue
			}
			rec, err := csv.NewReader(strings.NewReader(line)).Read()
			if err != nil {
				return false, fmt.Errorf("parse index row %q: %w", line, err)
			}
			for i := range rec {
				// quoted numbers carry thousand separators, e.g. "24,378.15"
				rec[i] = strings.ReplaceAll(strings.TrimSpace(rec[i]), ",", "")
			}
			rows = append(rows, rec)
		}
		out = IndexCSV{AsOf: asOf, Rows: rows}
		return false, nil
	})
	if err != nil {
		return IndexCSV{}, err
	}
	return out, nil
}
