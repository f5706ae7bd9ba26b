package service

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spec-kit/ticket-insights/internal/config"
	"github.com/spec-kit/ticket-insights/internal/domain"
	"github.com/spec-kit/ticket-insights/internal/events"
	"github.com/spec-kit/ticket-insights/internal/ingest"
	"github.com/spec-kit/ticket-insights/internal/observability"
	"github.com/spec-kit/ticket-insights/pkg/util"
)

var testNow = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		App:    config.AppConfig{Name: "ticket-insights", Env: "test"},
		Logger: config.LoggerConfig{Level: "error"},
		Report: config.ReportConfig{TrendWindowDays: 30, BreakdownLimit: 20, OutputDir: "."},
	}
}

func newTestService(dispatcher events.Dispatcher) *AnalysisService {
	s := NewAnalysisService(testConfig(), Dependencies{
		Dispatcher: dispatcher,
		Metrics:    observability.NewMetrics(),
	})
	s.now = func() time.Time { return testNow }
	return s
}

func fixtureCSV(t *testing.T, rows ...map[string]string) string {
	t.Helper()
	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write(ingest.RequiredColumns); err != nil {
		t.Fatalf("write header: %v", err)
	}
	for _, overrides := range rows {
		record := make([]string, len(ingest.RequiredColumns))
		for i, col := range ingest.RequiredColumns {
			record[i] = overrides[col]
		}
		if err := w.Write(record); err != nil {
			t.Fatalf("write row: %v", err)
		}
	}
	w.Flush()
	return b.String()
}

func loadFixture(t *testing.T, s *AnalysisService) *LoadResult {
	t.Helper()
	data := fixtureCSV(t,
		map[string]string{
			"Request ID": "T1", "Status.Name": "Open",
			"Created Date": "2024-03-01", "Last Updated Time": "2024-03-02",
		},
		map[string]string{
			"Request ID": "T2", "Status.Name": "Closed",
			"Created Date": "2024-02-20", "Completed Time": "2024-03-05",
			"Last Updated Time": "2024-03-05",
		},
		map[string]string{
			"Request ID": "T3", "Status.Name": "Resolved",
			"Created Date": "2024-03-10", "Last Updated Time": "2024-03-11",
		},
	)
	result, err := s.LoadCSV(context.Background(), strings.NewReader(data))
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	return result
}

func TestLoadCSVStartsSession(t *testing.T) {
	s := newTestService(nil)
	result := loadFixture(t, s)
	if result.Rows != 3 {
		t.Fatalf("expected 3 rows, got %d", result.Rows)
	}
	if result.SessionID == "" || s.SessionID() != result.SessionID {
		t.Fatalf("expected session id to be set")
	}

	tickets, err := s.Tickets()
	if err != nil {
		t.Fatalf("tickets: %v", err)
	}
	if len(tickets) != 3 {
		t.Fatalf("expected 3 tickets, got %d", len(tickets))
	}
}

func TestLoadCSVReplacesSessionWholesale(t *testing.T) {
	s := newTestService(nil)
	first := loadFixture(t, s)
	second := loadFixture(t, s)
	if first.SessionID == second.SessionID {
		t.Fatalf("reload must produce a fresh session")
	}
}

func TestLoadCSVMissingColumns(t *testing.T) {
	s := newTestService(nil)
	_, err := s.LoadCSV(context.Background(), strings.NewReader("Request ID,Subject\nT1,hello\n"))
	if err == nil {
		t.Fatalf("expected validation error")
	}
	domainErr := util.ToDomainError(err)
	if domainErr.Code != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED, got %s", domainErr.Code)
	}
	missing, ok := domainErr.Details["missing_columns"].([]string)
	if !ok || len(missing) != len(ingest.RequiredColumns)-2 {
		t.Fatalf("expected %d missing columns, got %v", len(ingest.RequiredColumns)-2, missing)
	}
	// The failed load must not create a session.
	if s.SessionID() != "" {
		t.Fatalf("rejected file must not start a session")
	}
}

func TestLoadCSVMalformedKeepsPreviousSession(t *testing.T) {
	s := newTestService(nil)
	result := loadFixture(t, s)

	_, err := s.LoadCSV(context.Background(), strings.NewReader("a,b\n\"broken\n"))
	if err == nil {
		t.Fatalf("expected malformed-input error")
	}
	if s.SessionID() != result.SessionID {
		t.Fatalf("failed load must leave the previous session intact")
	}
	if _, err := s.Tickets(); err != nil {
		t.Fatalf("previous table must stay queryable: %v", err)
	}
}

func TestOperationsBeforeLoad(t *testing.T) {
	s := newTestService(nil)
	if _, err := s.Tickets(); util.ToDomainError(err).Code != "NO_DATA" {
		t.Fatalf("expected NO_DATA, got %v", err)
	}
	if _, err := s.Trend(7); util.ToDomainError(err).Code != "NO_DATA" {
		t.Fatalf("expected NO_DATA from Trend, got %v", err)
	}
	if _, err := s.Summary(context.Background(), testNow, testNow); util.ToDomainError(err).Code != "NO_DATA" {
		t.Fatalf("expected NO_DATA from Summary, got %v", err)
	}
}

func TestPeriodViewMemoization(t *testing.T) {
	s := newTestService(nil)
	loadFixture(t, s)

	a := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)

	first, err := s.PeriodView(a, b, domain.ScopeCreatedInPeriod)
	if err != nil {
		t.Fatalf("period view: %v", err)
	}
	second, err := s.PeriodView(a, b, domain.ScopeCreatedInPeriod)
	if err != nil {
		t.Fatalf("period view: %v", err)
	}
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected T1 and T3 in period, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i].RequestID != second[i].RequestID {
			t.Fatalf("memoized view diverged at %d", i)
		}
	}
}

func TestPeriodViewDropsStaleStoreAfterReload(t *testing.T) {
	s := newTestService(nil)
	loadFixture(t, s)
	staleSession := s.SessionID()

	a := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
	key := periodKey{
		start: domain.DateOf(a).Unix(),
		end:   domain.DateOf(b).Unix(),
		scope: domain.ScopeCreatedInPeriod,
	}

	// A reader captured the first session's table and is still
	// computing when a reload swaps the session out from under it.
	loadFixture(t, s)

	staleView := []domain.Ticket{{RequestID: "from-replaced-session"}}
	s.storePeriodView(staleSession, key, staleView)

	view, err := s.PeriodView(a, b, domain.ScopeCreatedInPeriod)
	if err != nil {
		t.Fatalf("period view: %v", err)
	}
	for _, ticket := range view {
		if ticket.RequestID == "from-replaced-session" {
			t.Fatalf("view computed from a replaced table leaked into the new session's cache")
		}
	}
	if len(view) != 2 {
		t.Fatalf("expected T1 and T3 from the current session, got %d tickets", len(view))
	}

	// A store tagged with the live session must still land.
	s.storePeriodView(s.SessionID(), key, view)
	again, err := s.PeriodView(a, b, domain.ScopeCreatedInPeriod)
	if err != nil {
		t.Fatalf("period view: %v", err)
	}
	if len(again) != 2 {
		t.Fatalf("expected cached current-session view, got %d tickets", len(again))
	}
}

func TestTrendUsesConfiguredDefaultWindow(t *testing.T) {
	s := newTestService(nil)
	loadFixture(t, s)
	points, err := s.Trend(0)
	if err != nil {
		t.Fatalf("trend: %v", err)
	}
	if len(points) != 30 {
		t.Fatalf("expected configured default of 30 entries, got %d", len(points))
	}
}

func TestDateBounds(t *testing.T) {
	s := newTestService(nil)
	loadFixture(t, s)
	min, max, err := s.DateBounds()
	if err != nil {
		t.Fatalf("date bounds: %v", err)
	}
	if min == nil || !min.Equal(time.Date(2024, time.February, 20, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected min bound %v", min)
	}
	if max == nil || !max.Equal(time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected max bound %v", max)
	}
}

func TestDateBoundsNilWhenNoDateParses(t *testing.T) {
	s := newTestService(nil)
	data := fixtureCSV(t,
		map[string]string{
			"Request ID": "T1", "Status.Name": "Open",
			"Created Date": "not a date", "Last Updated Time": "???",
		},
	)
	// Per-cell date failures never reject the file.
	if _, err := s.LoadCSV(context.Background(), strings.NewReader(data)); err != nil {
		t.Fatalf("load with unparseable dates: %v", err)
	}
	min, max, err := s.DateBounds()
	if err != nil {
		t.Fatalf("date bounds: %v", err)
	}
	if min != nil || max != nil {
		t.Fatalf("expected nil bounds, got %v and %v", min, max)
	}
}

func TestWriteSummaryArtifacts(t *testing.T) {
	s := newTestService(nil)
	loadFixture(t, s)

	dir := t.TempDir()
	a := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	paths, err := s.WriteSummary(context.Background(), a, testNow, dir, true)
	if err != nil {
		t.Fatalf("write summary: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected txt and html artifacts, got %v", paths)
	}
	if filepath.Base(paths[0]) != "ticket_summary_20240315_100000.txt" {
		t.Fatalf("unexpected artifact name %q", paths[0])
	}
	content, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if !strings.Contains(string(content), "TICKET SYSTEM SUMMARY") {
		t.Fatalf("artifact missing summary header")
	}
}

func TestEventsPublishedOnLifecycle(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	var seen []events.EventType
	for _, et := range []events.EventType{events.EventFileLoaded, events.EventFileRejected, events.EventSummaryGenerated} {
		eventType := et
		dispatcher.Subscribe(eventType, func(_ context.Context, e events.Event) {
			seen = append(seen, e.Type)
		})
	}

	s := newTestService(dispatcher)
	loadFixture(t, s)
	if _, err := s.LoadCSV(context.Background(), strings.NewReader("a,b\nonly,two\n")); err == nil {
		t.Fatalf("expected rejection")
	}
	if _, err := s.Summary(context.Background(), testNow, testNow); err != nil {
		t.Fatalf("summary: %v", err)
	}

	want := []events.EventType{events.EventFileLoaded, events.EventFileRejected, events.EventSummaryGenerated}
	if len(seen) != len(want) {
		t.Fatalf("expected events %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("expected events %v, got %v", want, seen)
		}
	}
}
