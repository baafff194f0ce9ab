package nse

import (
	"fmt"
	"strconv"
	"strings"

	"nsedata/internal/nse/catalog"

	"go.uber.org/zap"
)

// mastersMinRows guards against block pages masquerading as master data:
// a genuine segment list has thousands of rows, a block page a handful.
const mastersMinRows = 50

// mastersColumns locates the pipe-delimited fields. The provider has
// shuffled column order before, so a header row, when present, wins over
// the default layout.
type mastersColumns struct {
	scrip, symbol, name, typ int
}

var defaultMastersColumns = mastersColumns{scrip: 0, symbol: 1, name: 2, typ: 3}

// parseMasters converts a pipe-delimited master payload into instrument
// records. NFO symbols are decomposed via the contract grammar; rows whose
// token does not parse are dropped and counted, and an excessive drop
// ratio fails the whole parse since it signals a format change rather
// than a few odd instruments.
func parseMasters(seg catalog.Segment, body []byte, log *zap.Logger) ([]catalog.InstrumentRecord, error) {
	var lines []string
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < mastersMinRows {
		return nil, fmt.Errorf("unexpectedly small master payload (%d rows)", len(lines))
	}

	cols := defaultMastersColumns
	if c, ok := headerColumns(lines[0]); ok {
		cols = c
		lines = lines[1:]
	}

	maxCol := cols.scrip
	for _, c := range []int{cols.symbol, cols.name, cols.typ} {
		if c > maxCol {
			maxCol = c
		}
	}

	out := make([]catalog.InstrumentRecord, 0, len(lines))
	dropped := 0
	for _, line := range lines {
		fields := strings.Split(line, "|")
		if len(fields) <= maxCol {
			dropped++
			continue
		}

		scrip, err := strconv.ParseInt(strings.TrimSpace(fields[cols.scrip]), 10, 64)
		if err != nil {
			dropped++
			continue
		}

		rec := catalog.InstrumentRecord{
			ScripCode: scrip,
			Symbol:    strings.TrimSpace(fields[cols.symbol]),
			Name:      strings.TrimSpace(fields[cols.name]),
			Type:      parseInstrumentType(fields[cols.typ]),
			Segment:   seg,
		}

		if seg == catalog.SegmentNFO {
			ct, err := ParseContract(rec.Symbol)
			if err != nil {
				log.Debug("dropping undecomposable contract token",
					zap.String("symbol", rec.Symbol), zap.Error(err))
				dropped++
				continue
			}
			rec.Expiry = ct.Expiry
			rec.Strike = ct.Strike
			rec.Right = ct.Right
			switch {
			case ct.Future:
				rec.Type = catalog.TypeFuture
			case ct.Right == catalog.RightCall:
				rec.Type = catalog.TypeOptionCall
			case ct.Right == catalog.RightPut:
				rec.Type = catalog.TypeOptionPut
			}
		}

		out = append(out, rec)
	}

	if len(out) == 0 || dropped > len(out) {
		return nil, fmt.Errorf("master payload mostly unparseable (%d kept, %d dropped)", len(out), dropped)
	}
	if dropped > 0 {
		log.Warn("dropped unparseable master rows",
			zap.String("segment", string(seg)), zap.Int("dropped", dropped))
	}
	return out, nil
}

// headerColumns detects an optional header row and maps column positions
// by name, case-insensitively.
func headerColumns(line string) (mastersColumns, bool) {
	fields := strings.Split(line, "|")
	cols := mastersColumns{scrip: -1, symbol: -1, name: -1, typ: -1}
	for i, f := range fields {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "scripcode":
			cols.scrip = i
		case "symbol":
			cols.symbol = i
		case "name":
			cols.name = i
		case "type":
			cols.typ = i
		}
	}
	if cols.scrip < 0 || cols.symbol < 0 || cols.name < 0 || cols.typ < 0 {
		return mastersColumns{}, false
	}
	return cols, true
}

func parseInstrumentType(s string) catalog.InstrumentType {
	switch t := strings.ToUpper(strings.TrimSpace(s)); {
	case t == "EQ" || t == "EQUITY":
		return catalog.TypeEquity
	case strings.HasPrefix(t, "IND") || t == "IDX" || t == "INDEX":
		return catalog.TypeIndex
	default:
		return catalog.TypeOther
	}
}
