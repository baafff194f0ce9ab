package nse

import (
	"fmt"
	"strings"
	"testing"

	"nsedata/internal/nse/catalog"

	"go.uber.org/zap"
)

func equityMasterLines(n int) []string {
	lines := make([]string, 0, n+1)
	lines = append(lines, "2885|RELIANCE|Reliance Industries|EQ")
	for i := 0; i < n; i++ {
		lines = append(lines, fmt.Sprintf("%d|SYM%03d|Test Company %03d|EQ", 1000+i, i, i))
	}
	return lines
}

// go test -v --run TestParseMastersEquity
func TestParseMastersEquity(t *testing.T) {
	body := strings.Join(equityMasterLines(80), "\n")

	records, err := parseMasters(catalog.SegmentNSE, []byte(body), zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 81 {
		t.Fatalf("expected 81 records, got %d", len(records))
	}

	first := records[0]
	if first.ScripCode != 2885 || first.Symbol != "RELIANCE" || first.Type != catalog.TypeEquity {
		t.Errorf("unexpected first record: %+v", first)
	}
	if first.Segment != catalog.SegmentNSE {
		t.Errorf("segment = %s, want NSE", first.Segment)
	}
	if !first.Expiry.IsZero() || first.Strike != 0 || first.Right != "" {
		t.Errorf("cash record carries derivative fields: %+v", first)
	}
}

// go test -v --run TestParseMastersHeaderReorder
func TestParseMastersHeaderReorder(t *testing.T) {
	lines := []string{"Symbol|ScripCode|Type|Name"}
	for i := 0; i < 60; i++ {
		lines = append(lines, fmt.Sprintf("SYM%03d|%d|EQ|Test Company %03d", i, 1000+i, i))
	}

	records, err := parseMasters(catalog.SegmentNSE, []byte(strings.Join(lines, "\n")), zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 60 {
		t.Fatalf("expected 60 records, got %d", len(records))
	}
	if records[0].ScripCode != 1000 || records[0].Symbol != "SYM000" || records[0].Name != "Test Company 000" {
		t.Errorf("header reordering not honored: %+v", records[0])
	}
}

// go test -v --run TestParseMastersDerivatives
func TestParseMastersDerivatives(t *testing.T) {
	lines := []string{
		"53001|BANKNIFTY24OCTFUT|BANKNIFTY|FUTIDX",
		"53002|NIFTY24OCT24800CE|NIFTY|OPTIDX",
		"53003|NIFTY24OCT24800PE|NIFTY|OPTIDX",
	}
	for i := 0; i < 60; i++ {
		lines = append(lines, fmt.Sprintf("%d|NIFTY24N21%dCE|NIFTY|OPTIDX", 60000+i, 24000+50*i))
	}

	records, err := parseMasters(catalog.SegmentNFO, []byte(strings.Join(lines, "\n")), zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 63 {
		t.Fatalf("expected 63 records, got %d", len(records))
	}

	fut := records[0]
	if fut.Type != catalog.TypeFuture || fut.Expiry.IsZero() || fut.Strike != 0 {
		t.Errorf("unexpected future record: %+v", fut)
	}
	call := records[1]
	if call.Type != catalog.TypeOptionCall || call.Strike != 24800 || call.Right != catalog.RightCall {
		t.Errorf("unexpected call record: %+v", call)
	}
	put := records[2]
	if put.Type != catalog.TypeOptionPut || put.Right != catalog.RightPut {
		t.Errorf("unexpected put record: %+v", put)
	}
}

// go test -v --run TestParseMastersSmallPayload
func TestParseMastersSmallPayload(t *testing.T) {
	body := strings.Join(equityMasterLines(5), "\n")
	if _, err := parseMasters(catalog.SegmentNSE, []byte(body), zap.NewNop()); err == nil {
		t.Fatal("expected error for suspiciously small payload")
	}
}

// go test -v --run TestParseMastersMostlyUnparseable
func TestParseMastersMostlyUnparseable(t *testing.T) {
	var lines []string
	for i := 0; i < 80; i++ {
		lines = append(lines, fmt.Sprintf("%d|NOTACONTRACT%d|Junk|X", i, i))
	}
	if _, err := parseMasters(catalog.SegmentNFO, []byte(strings.Join(lines, "\n")), zap.NewNop()); err == nil {
		t.Fatal("expected error when most NFO rows fail decomposition")
	}
}
