package service

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-insights/internal/config"
	"github.com/spec-kit/ticket-insights/internal/domain"
	"github.com/spec-kit/ticket-insights/internal/events"
	"github.com/spec-kit/ticket-insights/internal/ingest"
	"github.com/spec-kit/ticket-insights/internal/normalize"
	"github.com/spec-kit/ticket-insights/internal/observability"
	"github.com/spec-kit/ticket-insights/internal/query"
	"github.com/spec-kit/ticket-insights/internal/report"
	"github.com/spec-kit/ticket-insights/internal/stats"
	"github.com/spec-kit/ticket-insights/pkg/util"
)

// AnalysisService owns one loaded ticket table and serves every derived
// view over it. The normalized table is immutable for the lifetime of a
// session; loading a new file replaces the session wholesale.
type AnalysisService struct {
	cfg        *config.Config
	logger     *zap.Logger
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	now        func() time.Time

	mu          sync.RWMutex
	sessionID   string
	tickets     []domain.Ticket
	periodCache map[periodKey][]domain.Ticket
}

// Dependencies bundles collaborators for the analysis service.
type Dependencies struct {
	Logger     *zap.Logger
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
}

// periodCache keys are day-granular, matching query semantics.
type periodKey struct {
	start int64
	end   int64
	scope domain.Scope
}

// LoadResult describes a successful file load.
type LoadResult struct {
	SessionID         string
	Rows              int
	DateParseFailures map[string]int
}

// NewAnalysisService constructs the service.
func NewAnalysisService(cfg *config.Config, deps Dependencies) *AnalysisService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisService{
		cfg:        cfg,
		logger:     logger,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		now:        time.Now,
	}
}

// LoadCSV parses, validates and normalizes an uploaded CSV export. Any
// failure leaves the previous session intact and the service ready for
// another upload.
func (s *AnalysisService) LoadCSV(ctx context.Context, r io.Reader) (*LoadResult, error) {
	raw, err := ingest.ReadCSV(r)
	if err != nil {
		s.logger.Warn("csv parse failed", zap.Error(err))
		s.publishRejection(ctx, err)
		return nil, err
	}

	if err := ingest.Validate(raw); err != nil {
		s.logger.Warn("csv schema invalid", zap.Error(err))
		s.publishRejection(ctx, err)
		return nil, err
	}

	tickets, nstats := normalize.Table(raw)

	s.mu.Lock()
	s.sessionID = uuid.NewString()
	s.tickets = tickets
	s.periodCache = make(map[periodKey][]domain.Ticket)
	sessionID := s.sessionID
	s.mu.Unlock()

	s.metrics.RecordLoad(nstats.Rows)
	for column, count := range nstats.DateParseFailures {
		s.metrics.RecordDateParseFailures(column, count)
	}

	s.logger.Info("file loaded",
		zap.String("session_id", sessionID),
		zap.Int("rows", nstats.Rows),
		zap.Any("date_parse_failures", nstats.DateParseFailures),
	)
	s.publish(ctx, events.Event{
		Type:      events.EventFileLoaded,
		SessionID: sessionID,
		Payload: events.FileLoadedPayload{
			Rows:              nstats.Rows,
			DateParseFailures: nstats.DateParseFailures,
		},
	})

	return &LoadResult{
		SessionID:         sessionID,
		Rows:              nstats.Rows,
		DateParseFailures: nstats.DateParseFailures,
	}, nil
}

// SessionID returns the current session identifier, empty before the
// first successful load.
func (s *AnalysisService) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

// Tickets returns the normalized table. Callers must treat the slice as
// read-only.
func (s *AnalysisService) Tickets() ([]domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tickets == nil {
		return nil, util.NewNoData("no ticket file loaded")
	}
	return s.tickets, nil
}

// PeriodView returns the scope's tickets for the inclusive [start, end]
// window. Results are memoized per session as a pure optimization; all
// queries are deterministic functions of the normalized table.
func (s *AnalysisService) PeriodView(start, end time.Time, scope domain.Scope) ([]domain.Ticket, error) {
	key := periodKey{
		start: domain.DateOf(start).Unix(),
		end:   domain.DateOf(end).Unix(),
		scope: scope,
	}

	s.mu.RLock()
	cached, ok := s.periodCache[key]
	tickets := s.tickets
	sessionID := s.sessionID
	s.mu.RUnlock()

	if tickets == nil {
		return nil, util.NewNoData("no ticket file loaded")
	}
	s.metrics.RecordQuery("period_view")
	if ok {
		return cached, nil
	}

	view := query.InPeriod(tickets, start, end, scope)
	s.storePeriodView(sessionID, key, view)
	return view, nil
}

// storePeriodView inserts a computed view into the cache unless a load
// swapped the session between the caller's read of the table and now;
// a view derived from a replaced table must not outlive its session.
func (s *AnalysisService) storePeriodView(sessionID string, key periodKey, view []domain.Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessionID != sessionID || s.periodCache == nil {
		return
	}
	s.periodCache[key] = view
}

// Breakdown groups and counts a view by a breakdown column.
func (s *AnalysisService) Breakdown(view []domain.Ticket, column domain.Column) []query.GroupCount {
	s.metrics.RecordQuery("breakdown")
	return query.CountByColumn(view, column)
}

// DevOpsView filters a view down to tickets with a real DevOps
// reference.
func (s *AnalysisService) DevOpsView(view []domain.Ticket) []domain.Ticket {
	s.metrics.RecordQuery("devops_view")
	return query.WithDevOpsRef(view)
}

// Trend computes the daily opened/closed series. A non-positive window
// falls back to the configured default.
func (s *AnalysisService) Trend(days int) ([]stats.TrendPoint, error) {
	tickets, err := s.Tickets()
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = s.cfg.Report.TrendWindowDays
	}
	s.metrics.RecordQuery("daily_trend")
	return stats.DailyTrend(tickets, s.now(), days), nil
}

// YearRollup computes the current calendar year metrics, evaluated at
// call time.
func (s *AnalysisService) YearRollup() (stats.YearRollup, error) {
	tickets, err := s.Tickets()
	if err != nil {
		return stats.YearRollup{}, err
	}
	s.metrics.RecordQuery("year_rollup")
	return stats.CurrentYearRollup(tickets, s.now()), nil
}

// Abandonment computes the staleness buckets over a view.
func (s *AnalysisService) Abandonment(view []domain.Ticket) stats.AbandonmentBuckets {
	s.metrics.RecordQuery("abandonment")
	return stats.Abandonment(view, s.now())
}

// DateBounds returns the min and max over CreatedDate and ClosedAt
// across the table, for date-picker limits. Both are nil when no row
// carries a date.
func (s *AnalysisService) DateBounds() (min, max *time.Time, err error) {
	tickets, tErr := s.Tickets()
	if tErr != nil {
		return nil, nil, tErr
	}
	consider := func(d *time.Time) {
		if d == nil {
			return
		}
		if min == nil || d.Before(*min) {
			min = d
		}
		if max == nil || d.After(*max) {
			max = d
		}
	}
	for i := range tickets {
		consider(tickets[i].CreatedDate)
		consider(tickets[i].ClosedAt)
	}
	return min, max, nil
}

// Summary renders the plain-text report for a comparison date pair.
func (s *AnalysisService) Summary(ctx context.Context, dateA, dateB time.Time) (string, error) {
	tickets, err := s.Tickets()
	if err != nil {
		return "", err
	}
	text := report.Summary{
		Tickets: tickets,
		DateA:   dateA,
		DateB:   dateB,
		Now:     s.now(),
	}.RenderText()

	s.metrics.RecordQuery("summary_text")
	s.publishSummary(ctx, dateA, dateB, len(text), false)
	return text, nil
}

// SummaryHTML renders the HTML report variant.
func (s *AnalysisService) SummaryHTML(ctx context.Context, dateA, dateB time.Time) (string, error) {
	tickets, err := s.Tickets()
	if err != nil {
		return "", err
	}
	html, err := report.Summary{
		Tickets: tickets,
		DateA:   dateA,
		DateB:   dateB,
		Now:     s.now(),
	}.RenderHTML()
	if err != nil {
		return "", util.NewInternalError(err)
	}

	s.metrics.RecordQuery("summary_html")
	s.publishSummary(ctx, dateA, dateB, len(html), true)
	return html, nil
}

// WriteSummary writes the timestamped summary artifact(s) to dir and
// returns the written paths.
func (s *AnalysisService) WriteSummary(ctx context.Context, dateA, dateB time.Time, dir string, withHTML bool) ([]string, error) {
	if dir == "" {
		dir = s.cfg.Report.OutputDir
	}

	text, err := s.Summary(ctx, dateA, dateB)
	if err != nil {
		return nil, err
	}

	now := s.now()
	textPath := filepath.Join(dir, report.ArtifactName(now, "txt"))
	if err := os.WriteFile(textPath, []byte(text), 0o644); err != nil {
		return nil, util.NewInternalError(err)
	}
	paths := []string{textPath}

	if withHTML {
		html, err := s.SummaryHTML(ctx, dateA, dateB)
		if err != nil {
			return paths, err
		}
		htmlPath := filepath.Join(dir, report.ArtifactName(now, "html"))
		if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
			return paths, util.NewInternalError(err)
		}
		paths = append(paths, htmlPath)
	}

	s.logger.Info("summary written", zap.Strings("paths", paths))
	return paths, nil
}

func (s *AnalysisService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	s.dispatcher.Publish(ctx, event)
}

func (s *AnalysisService) publishRejection(ctx context.Context, err error) {
	domainErr := util.ToDomainError(err)
	payload := events.FileRejectedPayload{Code: domainErr.Code}
	if missing, ok := domainErr.Details["missing_columns"].([]string); ok {
		payload.MissingColumns = missing
	}
	s.publish(ctx, events.Event{
		Type:      events.EventFileRejected,
		SessionID: s.SessionID(),
		Payload:   payload,
	})
}

func (s *AnalysisService) publishSummary(ctx context.Context, dateA, dateB time.Time, size int, html bool) {
	s.publish(ctx, events.Event{
		Type:      events.EventSummaryGenerated,
		SessionID: s.SessionID(),
		Payload: events.SummaryGeneratedPayload{
			DateA: dateA.Format("2006-01-02"),
			DateB: dateB.Format("2006-01-02"),
			Bytes: size,
			HTML:  html,
		},
	})
}
