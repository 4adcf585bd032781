package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/receiptia/receiptia/internal/analysis"
	"github.com/receiptia/receiptia/internal/model"

	"github.com/shopspring/decimal"
)

var cet = time.FixedZone("CET", 3600)

// fakeLedger serves a mutable expense list to the service.
type fakeLedger struct {
	mu       sync.Mutex
	expenses []model.Expense
	err      error
}

func (f *fakeLedger) load(context.Context) ([]model.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.Expense(nil), f.expenses...), nil
}

func (f *fakeLedger) add(e model.Expense) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expenses = append(f.expenses, e)
}

func expense(amount string, c model.Category, ts time.Time) model.Expense {
	return model.Expense{Amount: decimal.RequireFromString(amount), Category: c, Timestamp: ts}
}

func newTestService(t *testing.T, ledger *fakeLedger) *Service {
	t.Helper()
	now := time.Date(2025, 6, 20, 12, 0, 0, 0, cet)
	return New(Config{
		Range:    analysis.Last24h,
		Location: cet,
		Load:     ledger.load,
		Now:      func() time.Time { return now },
	})
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{Expenses: 3, AmountWindow: decimal.RequireFromString("40.50"), InsightCount: 1}
	curr := Snapshot{Expenses: 5, AmountWindow: decimal.RequireFromString("52.25"), InsightCount: 3}

	delta := diffSnapshots(prev, curr)
	if delta.Expenses != 2 {
		t.Fatalf("Expenses delta = %d, want 2", delta.Expenses)
	}
	if !delta.AmountWindow.Equal(decimal.RequireFromString("11.75")) {
		t.Fatalf("Amount delta = %s, want 11.75", delta.AmountWindow)
	}
	if delta.InsightCount != 2 {
		t.Fatalf("InsightCount delta = %d, want 2", delta.InsightCount)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSnapshots(curr, curr).isZero() {
		t.Fatal("identical snapshots should diff to zero")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{
		DataDir:      ".",
		EventsBuffer: 2,
	})

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestPollEmitsEventsOnlyOnChange(t *testing.T) {
	ledger := &fakeLedger{expenses: []model.Expense{
		expense("20", model.CategoryFood, time.Date(2025, 6, 20, 9, 0, 0, 0, cet)),
	}}
	s := newTestService(t, ledger)
	ctx := context.Background()

	s.pollOnce(ctx)
	s.pollOnce(ctx) // unchanged

	ledger.add(expense("15", model.CategoryShopping, time.Date(2025, 6, 20, 1, 0, 0, 0, cet)))
	s.pollOnce(ctx)

	s.mu.RLock()
	events := append([]Event(nil), s.events...)
	pollCount := s.pollCount
	s.mu.RUnlock()

	if pollCount != 3 {
		t.Errorf("pollCount = %d, want 3", pollCount)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Type != "snapshot" || events[1].Type != "spending_delta" {
		t.Errorf("event types = %s, %s", events[0].Type, events[1].Type)
	}
	d := events[1].Delta
	if d.Expenses != 1 || !d.AmountWindow.Equal(decimal.NewFromInt(15)) {
		t.Errorf("delta = %+v, want 1 expense / 15", d)
	}
	if d.InsightCount == 0 {
		t.Error("a night shopping purchase should add insights")
	}
}

func TestPollErrorIsRecorded(t *testing.T) {
	ledger := &fakeLedger{err: errors.New("disk on fire")}
	s := newTestService(t, ledger)

	s.pollOnce(context.Background())

	st := s.snapshotStatus()
	if st.LastError != "disk on fire" {
		t.Errorf("LastError = %q", st.LastError)
	}
	if st.PollCount != 1 || st.EventCount != 0 {
		t.Errorf("PollCount/EventCount = %d/%d, want 1/0", st.PollCount, st.EventCount)
	}
}

func TestHTTPEndpoints(t *testing.T) {
	ledger := &fakeLedger{expenses: []model.Expense{
		expense("20", model.CategoryShopping, time.Date(2025, 6, 19, 23, 0, 0, 0, cet)),
		expense("30", model.CategoryFood, time.Date(2025, 6, 20, 10, 0, 0, 0, cet)),
	}}
	s := newTestService(t, ledger)

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	// Before the first poll there is no report.
	resp, err := http.Get(srv.URL + "/v1/report")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("/v1/report before poll = %d, want 503", resp.StatusCode)
	}

	s.pollOnce(context.Background())

	var st Status
	getJSON(t, srv.URL+"/v1/status", &st)
	if st.Summary.Expenses != 2 {
		t.Errorf("status expenses = %d, want 2", st.Summary.Expenses)
	}
	if !st.Summary.AmountWindow.Equal(decimal.NewFromInt(50)) {
		t.Errorf("status amount = %s, want 50", st.Summary.AmountWindow)
	}
	if !strings.Contains(st.Summary.StatusMessage, st.Summary.HighlightedWord) {
		t.Errorf("highlight %q not in %q", st.Summary.HighlightedWord, st.Summary.StatusMessage)
	}

	var report analysis.Report
	getJSON(t, srv.URL+"/v1/report", &report)
	if len(report.Insights) == 0 {
		t.Error("report should carry insights")
	}
	if len(report.Weekly.Days) != 7 {
		t.Errorf("weekly days = %d, want 7", len(report.Weekly.Days))
	}

	var events []Event
	getJSON(t, srv.URL+"/v1/events", &events)
	if len(events) != 1 {
		t.Errorf("events = %d, want 1", len(events))
	}

	body := getBody(t, srv.URL+"/metrics")
	for _, want := range []string{
		"receiptia_window_spend 50",
		"receiptia_polls_total 1",
		`receiptia_insights{type="night_purchase"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("/metrics missing %q", want)
		}
	}

	if got := getBody(t, srv.URL+"/healthz"); got != "ok\n" {
		t.Errorf("/healthz = %q", got)
	}
}

func TestRunRejectsInvalidSchedule(t *testing.T) {
	s := New(Config{Schedule: "every tuesday", Addr: "127.0.0.1:0", Load: (&fakeLedger{}).load})
	err := s.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "invalid schedule") {
		t.Fatalf("Run error = %v, want invalid schedule", err)
	}
}

func getJSON(t *testing.T, url string, v any) {
	t.Helper()
	resp, err := http.Get(url) //nolint:noctx // test helper
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s = %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decoding %s: %v", url, err)
	}
}

func getBody(t *testing.T, url string) string {
	t.Helper()
	resp, err := http.Get(url) //nolint:noctx // test helper
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}
