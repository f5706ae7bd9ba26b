package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-insights/internal/config"
	"github.com/spec-kit/ticket-insights/internal/domain"
	"github.com/spec-kit/ticket-insights/internal/events"
	"github.com/spec-kit/ticket-insights/internal/observability"
	"github.com/spec-kit/ticket-insights/internal/service"
	"github.com/spec-kit/ticket-insights/pkg/util"
)

func main() {
	var (
		filePath   string
		dateAStr   string
		dateBStr   string
		scopeStr   string
		days       int
		outDir     string
		withHTML   bool
		breakdown  string
		onlyDevOps bool
	)

	pflag.StringVar(&filePath, "file", "", "path to the ticket CSV export (required)")
	pflag.StringVar(&dateAStr, "date-a", "", "comparison date A (YYYY-MM-DD, default: newest date in data)")
	pflag.StringVar(&dateBStr, "date-b", "", "comparison date B (YYYY-MM-DD, default: newest date in data)")
	pflag.StringVar(&scopeStr, "scope", "open", "breakdown scope: open|all|createdInPeriod|closedInPeriod")
	pflag.IntVar(&days, "days", 0, "trend window in days (default from config)")
	pflag.StringVar(&outDir, "out", "", "output directory for the summary artifact")
	pflag.BoolVar(&withHTML, "html", false, "also write the HTML summary variant")
	pflag.StringVar(&breakdown, "breakdown", "", "print a count table for a column, e.g. 'Group.Name'")
	pflag.BoolVar(&onlyDevOps, "only-devops", false, "restrict the breakdown to tickets with a real DevOpsRef")
	pflag.Parse()

	if filePath == "" {
		pflag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	dispatcher := events.NewInMemoryDispatcher()
	subscribeLogging(dispatcher, logger)

	metrics := observability.NewMetrics()
	analysis := service.NewAnalysisService(cfg, service.Dependencies{
		Logger:     logger,
		Dispatcher: dispatcher,
		Metrics:    metrics,
	})

	file, err := os.Open(filePath)
	if err != nil {
		logger.Fatal("unable to open file", zap.String("path", filePath), zap.Error(err))
	}
	defer file.Close()

	if _, err := analysis.LoadCSV(ctx, file); err != nil {
		exitWithDomainError(logger, err)
	}

	minDate, maxDate, err := analysis.DateBounds()
	if err != nil {
		exitWithDomainError(logger, err)
	}
	if maxDate == nil {
		logger.Warn("no parseable dates in the file, comparison dates default to today")
	} else {
		logger.Info("date bounds",
			zap.String("min", domain.FormatDisplay(minDate)),
			zap.String("max", domain.FormatDisplay(maxDate)),
		)
	}
	fallback := defaultComparisonDate(maxDate, time.Now())

	dateA := resolveDate(logger, "date-a", dateAStr, fallback)
	dateB := resolveDate(logger, "date-b", dateBStr, fallback)

	if breakdown != "" {
		printBreakdown(analysis, dateA, dateB, domain.ParseScope(scopeStr), domain.Column(breakdown), onlyDevOps, cfg.Report.BreakdownLimit, logger)
	}

	if days > 0 {
		points, err := analysis.Trend(days)
		if err != nil {
			exitWithDomainError(logger, err)
		}
		fmt.Printf("Daily Trend (last %d days):\n", days)
		for _, p := range points {
			fmt.Printf("%s  opened=%d closed=%d\n", p.Date.Format("02/01/2006"), p.Opened, p.Closed)
		}
	}

	paths, err := analysis.WriteSummary(ctx, dateA, dateB, outDir, withHTML)
	if err != nil {
		exitWithDomainError(logger, err)
	}
	for _, p := range paths {
		fmt.Println(p)
	}

	filesLoaded, rows, parseFailures, queries := metrics.Snapshot()
	logger.Debug("engine counters",
		zap.Int64("files_loaded", filesLoaded),
		zap.Int64("rows_normalized", rows),
		zap.Any("date_parse_failures", parseFailures),
		zap.Any("queries", queries),
	)
}

// defaultComparisonDate picks the newest date in the data, or today
// when every date cell in a schema-valid file failed to parse.
func defaultComparisonDate(maxDate *time.Time, now time.Time) time.Time {
	if maxDate != nil {
		return *maxDate
	}
	return domain.DateOf(now)
}

func resolveDate(logger *zap.Logger, flag, value string, fallback time.Time) time.Time {
	if value == "" {
		return fallback
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		logger.Fatal("invalid date flag", zap.String("flag", flag), zap.String("value", value))
	}
	return parsed
}

func printBreakdown(analysis *service.AnalysisService, dateA, dateB time.Time, scope domain.Scope, column domain.Column, onlyDevOps bool, limit int, logger *zap.Logger) {
	view, err := analysis.PeriodView(dateA, dateB, scope)
	if err != nil {
		exitWithDomainError(logger, err)
	}
	if onlyDevOps {
		view = analysis.DevOpsView(view)
	}
	counts := analysis.Breakdown(view, column)
	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	for _, gc := range counts {
		fmt.Printf("%s: %d\n", gc.Value, gc.Count)
	}
}

func subscribeLogging(dispatcher events.Dispatcher, logger *zap.Logger) {
	dispatcher.Subscribe(events.EventFileLoaded, func(_ context.Context, e events.Event) {
		logger.Debug("event", zap.String("type", string(e.Type)), zap.String("session_id", e.SessionID))
	})
	dispatcher.Subscribe(events.EventFileRejected, func(_ context.Context, e events.Event) {
		logger.Debug("event", zap.String("type", string(e.Type)))
	})
	dispatcher.Subscribe(events.EventSummaryGenerated, func(_ context.Context, e events.Event) {
		logger.Debug("event", zap.String("type", string(e.Type)), zap.Any("payload", e.Payload))
	})
}

func exitWithDomainError(logger *zap.Logger, err error) {
	domainErr := util.ToDomainError(err)
	if missing, ok := domainErr.Details["missing_columns"].([]string); ok {
		fmt.Fprintf(os.Stderr, "missing required columns: %v\n", missing)
	}
	logger.Error("processing failed", zap.String("code", domainErr.Code), zap.Error(err))
	logger.Sync() //nolint:errcheck
	os.Exit(1)
}
