package indices

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nsedata/pkg/nse"

	"go.uber.org/zap"
)

func marketwatchServer(t *testing.T, equityRows, allRows string) *httptest.Server {
	t.Helper()
	preamble := func(n int) string {
		var b strings.Builder
		for i := 0; i < n; i++ {
			fmt.Fprintf(&b, "preamble %d\n", i)
		}
		return b.String()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "nseappid", Value: "tok"})
	})
	mux.HandleFunc("/api/equity-stockIndices", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, preamble(15)+"\"19-Aug-2026\"\n"+equityRows)
	})
	mux.HandleFunc("/api/allIndices", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, preamble(12)+"\"19-Aug-2026\",\"\"\n"+preamble(4)+allRows)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// go test -v --run TestEquityIndex
func TestEquityIndex(t *testing.T) {
	rows := "\"RELIANCE\",\"2,950.00\",\"2,991.40\",\"2,944.10\",\"2,960.75\",\"2,987.65\",\"-\",\"26.90\",\"0.91\",\"75,21,034\"\n" +
		"short,row\n" // malformed rows are skipped, not fatal
	srv := marketwatchServer(t, rows, "")

	svc := NewService(nse.NewClient(srv.URL, srv.URL, 5*time.Second, 0, zap.NewNop()), zap.NewNop())
	snap, err := svc.EquityIndex(context.Background(), "NIFTY 50")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.AsOf != "19-Aug-2026" {
		t.Errorf("unexpected as-of %q", snap.AsOf)
	}
	if len(snap.Quotes) != 1 {
		t.Fatalf("expected 1 quote, got %d", len(snap.Quotes))
	}
	q := snap.Quotes[0]
	if q.Symbol != "RELIANCE" || q.Open != 2950 || q.Last != 2987.65 || q.ChangePct != 0.91 {
		t.Errorf("unexpected quote: %+v", q)
	}
}

// go test -v --run TestAllIndices
func TestAllIndices(t *testing.T) {
	rows := "\"NIFTY BANK\",\"51,120.45\",\"-0.12\",\"51,300.00\",\"51,410.20\",\"51,050.80\",\"-\",\"51,180.60\"\n"
	srv := marketwatchServer(t, "", rows)

	svc := NewService(nse.NewClient(srv.URL, srv.URL, 5*time.Second, 0, zap.NewNop()), zap.NewNop())
	snap, err := svc.AllIndices(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Quotes) != 1 {
		t.Fatalf("expected 1 quote, got %d", len(snap.Quotes))
	}
	q := snap.Quotes[0]
	if q.Symbol != "NIFTY BANK" || q.Last != 51120.45 || q.ChangePct != -0.12 || q.PrevClose != 51180.60 {
		t.Errorf("unexpected quote: %+v", q)
	}
}

// go test -v --run TestEquityIndexEmpty
func TestEquityIndexEmpty(t *testing.T) {
	srv := marketwatchServer(t, "", "")
	svc := NewService(nse.NewClient(srv.URL, srv.URL, 5*time.Second, 0, zap.NewNop()), zap.NewNop())
	if _, err := svc.EquityIndex(context.Background(), "NIFTY 50"); err == nil {
		t.Fatal("expected error when no quotes parse")
	}
}
