package nse

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"nsedata/internal/nse/catalog"
)

// Contract is the decomposition of a concatenated derivative token.
//
// Grammar, read from the end of the token:
//
//	token  := root expiry ( "FUT" | strike right )
//	expiry := YY ( MON | MCODE DD )
//	strike := digits [ "." digits ]
//	right  := "CE" | "PE"
//
// MON is a three-letter month (JAN..DEC) for monthly contracts; MCODE is
// the single-character month code 1..9, O, N or D used by weekly
// contracts, followed by a two-digit day. Examples:
//
//	BANKNIFTY24OCTFUT    monthly future
//	NIFTY24OCT24800CE    monthly call
//	NIFTY24N2124800CE    weekly call expiring 21 Nov 2024
type Contract struct {
	Root   string
	Expiry time.Time
	Future bool
	Strike float64
	Right  catalog.OptionRight
}

var monthCodes = map[byte]time.Month{
	'1': time.January, '2': time.February, '3': time.March,
	'4': time.April, '5': time.May, '6': time.June,
	'7': time.July, '8': time.August, '9': time.September,
	'O': time.October, 'N': time.November, 'D': time.December,
}

var monthNames = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// ParseContract decomposes a derivative token into its structured parts.
// Malformed tokens fail with ErrContract; there is no best-effort fallback.
func ParseContract(token string) (Contract, error) {
	up := strings.ToUpper(strings.TrimSpace(token))

	switch {
	case strings.HasSuffix(up, "FUT"):
		rest := strings.TrimSuffix(up, "FUT")
		root, expiry, ok := splitExpiry(rest)
		if !ok {
			return Contract{}, fmt.Errorf("%w: %q", ErrContract, token)
		}
		return Contract{Root: root, Expiry: expiry, Future: true}, nil

	case strings.HasSuffix(up, "CE"), strings.HasSuffix(up, "PE"):
		right := catalog.OptionRight(up[len(up)-2:])
		rest := up[:len(up)-2]

		// The expiry code and the strike can both be all digits, so scan
		// for the leftmost position where a valid expiry is followed by a
		// parseable strike.
		for i := 1; i+5 <= len(rest); i++ {
			expiry, ok := parseExpiry(rest[i : i+5])
			if !ok {
				continue
			}
			strike, err := parseStrike(rest[i+5:])
			if err != nil {
				continue
			}
			return Contract{
				Root:   rest[:i],
				Expiry: expiry,
				Strike: strike,
				Right:  right,
			}, nil
		}
		return Contract{}, fmt.Errorf("%w: %q", ErrContract, token)

	default:
		return Contract{}, fmt.Errorf("%w: %q has neither FUT nor CE/PE suffix", ErrContract, token)
	}
}

// splitExpiry takes the trailing five characters of s as the expiry code.
// Futures carry no strike, so the code position is fixed.
func splitExpiry(s string) (root string, expiry time.Time, ok bool) {
	if len(s) < 6 {
		return "", time.Time{}, false
	}
	expiry, ok = parseExpiry(s[len(s)-5:])
	if !ok {
		return "", time.Time{}, false
	}
	return s[:len(s)-5], expiry, true
}

// parseExpiry parses a five-character expiry code: YY followed by either a
// three-letter month (monthly, resolved to the month's last Thursday) or a
// month code plus two-digit day (weekly).
func parseExpiry(code string) (time.Time, bool) {
	if len(code) != 5 {
		return time.Time{}, false
	}
	yy, err := strconv.Atoi(code[:2])
	if err != nil {
		return time.Time{}, false
	}
	year := 2000 + yy

	if month, ok := monthNames[code[2:5]]; ok {
		return lastThursday(year, month), true
	}

	month, ok := monthCodes[code[2]]
	if !ok {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(code[3:5])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, month, day, 0, 0, 0, 0, MarketLocation), true
}

func parseStrike(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty strike")
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return 0, fmt.Errorf("non-numeric strike %q", s)
		}
	}
	return strconv.ParseFloat(s, 64)
}

// lastThursday is the expiry convention for monthly contracts.
func lastThursday(year int, month time.Month) time.Time {
	// Day 0 of the next month is the last day of this one.
	d := time.Date(year, month+1, 0, 0, 0, 0, 0, MarketLocation)
	for d.Weekday() != time.Thursday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}
