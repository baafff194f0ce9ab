package catalog

import (
	"fmt"
	"strings"
	"time"
)

// Segment identifies one exchange segment with its own instrument catalog.
type Segment string

const (
	SegmentNSE Segment = "NSE" // cash equities and indices
	SegmentNFO Segment = "NFO" // futures and options
)

// ParseSegment parses a segment name case-insensitively.
func ParseSegment(s string) (Segment, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NSE":
		return SegmentNSE, nil
	case "NFO":
		return SegmentNFO, nil
	default:
		return "", fmt.Errorf("invalid segment %q (want NSE or NFO)", s)
	}
}

// ExchCode is the provider's exchange code used in chart requests.
func (s Segment) ExchCode() string {
	if s == SegmentNFO {
		return "D"
	}
	return "N"
}

// InstrTypeCode is the provider's instrument-class code used in chart requests.
func (s Segment) InstrTypeCode() string {
	if s == SegmentNFO {
		return "D"
	}
	return "C"
}

// MastersPath is the request path serving this segment's instrument list.
func (s Segment) MastersPath() string {
	if s == SegmentNFO {
		return "/Charts/GetFOMasters"
	}
	return "/Charts/GetEQMasters"
}

// InstrumentType classifies a catalog entry.
type InstrumentType string

const (
	TypeEquity     InstrumentType = "equity"
	TypeIndex      InstrumentType = "index"
	TypeFuture     InstrumentType = "future"
	TypeOptionCall InstrumentType = "option-call"
	TypeOptionPut  InstrumentType = "option-put"
	TypeOther      InstrumentType = "other"
)

// OptionRight is the option side suffix used by the provider.
type OptionRight string

const (
	RightCall OptionRight = "CE"
	RightPut  OptionRight = "PE"
)

// InstrumentRecord is one row of master data.
// ScripCode is unique within a segment; Symbol may repeat across
// expiries and strikes for derivatives.
type InstrumentRecord struct {
	ScripCode int64
	Symbol    string
	Name      string
	Type      InstrumentType
	Segment   Segment

	// Derivative attributes; zero values for cash instruments.
	Expiry time.Time
	Strike float64
	Right  OptionRight
}
