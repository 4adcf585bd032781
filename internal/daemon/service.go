// Package daemon provides the long-running background spending monitor service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/receiptia/receiptia/internal/analysis"
	"github.com/receiptia/receiptia/internal/model"
	"github.com/receiptia/receiptia/internal/pipeline"
	"github.com/receiptia/receiptia/internal/store"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultSchedule re-runs the analysis every five minutes.
const DefaultSchedule = "@every 5m"

// LoadFunc returns the full expense set for one analysis run.
type LoadFunc func(ctx context.Context) ([]model.Expense, error)

// Config controls the daemon runtime behavior.
type Config struct {
	DataDir      string
	Range        analysis.Range
	Category     model.Category
	Merchant     string
	UseCache     bool
	Schedule     string // cron expression, e.g. "*/5 * * * *" or "@every 1m"
	Addr         string
	EventsBuffer int
	Currency     string
	Location     *time.Location

	Logger *zap.Logger
	Load   LoadFunc         // defaults to the ledger pipeline
	Now    func() time.Time // defaults to time.Now in Location
}

// Snapshot is a compact spending state for status/event payloads.
type Snapshot struct {
	At                  time.Time       `json:"at"`
	Range               string          `json:"range"`
	Expenses            int             `json:"expenses"`
	AmountWindow        decimal.Decimal `json:"amount_window"`
	ComparisonYesterday decimal.Decimal `json:"comparison_yesterday"`
	StatusMessage       string          `json:"status_message"`
	HighlightedWord     string          `json:"highlighted_word"`
	InsightCount        int             `json:"insight_count"`
	PotentialSavings    decimal.Decimal `json:"potential_savings"`
	WeeklyTotal         decimal.Decimal `json:"weekly_total"`
	Percentile          int             `json:"percentile"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	Expenses     int             `json:"expenses"`
	AmountWindow decimal.Decimal `json:"amount_window"`
	InsightCount int             `json:"insight_count"`
}

func (d Delta) isZero() bool {
	return d.Expenses == 0 &&
		d.AmountWindow.IsZero() &&
		d.InsightCount == 0
}

// Event is emitted whenever the spending snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	Schedule        string    `json:"schedule"`
	PollCount       int64     `json:"poll_count"`
	DataDir         string    `json:"data_dir"`
	Range           string    `json:"range"`
	Category        string    `json:"category,omitempty"`
	Merchant        string    `json:"merchant,omitempty"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg     Config
	log     *zap.Logger
	metrics *metrics

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	report      analysis.Report
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.Range == "" {
		cfg.Range = analysis.Last24h
	}
	if cfg.Currency == "" {
		cfg.Currency = analysis.DefaultCurrency
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		loc := cfg.Location
		cfg.Now = func() time.Time { return time.Now().In(loc) }
	}

	s := &Service{
		cfg:       cfg,
		log:       cfg.Logger.Named("daemon"),
		startedAt: cfg.Now(),
		subs:      make(map[int]chan Event),
	}
	if s.cfg.Load == nil {
		s.cfg.Load = s.loadExpenses
	}
	s.metrics = newMetrics(func() float64 {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return float64(len(s.subs))
	})
	return s
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/report", s.handleReport)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)
	mux.Handle("/metrics", s.metrics.handler())
	return mux
}

// Run starts HTTP endpoints and scheduled analysis until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(s.cfg.Schedule, func() { s.pollOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.cfg.Schedule, err)
	}

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	scheduler.Start()
	s.log.Info("daemon started",
		zap.String("addr", s.cfg.Addr),
		zap.String("schedule", s.cfg.Schedule),
		zap.String("data_dir", s.cfg.DataDir))

	defer func() {
		<-scheduler.Stop().Done()
		s.log.Info("daemon stopped")
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("daemon http server: %w", err)
	}
}

func (s *Service) pollOnce(ctx context.Context) {
	start := time.Now()
	s.metrics.polls.Inc()

	expenses, err := s.cfg.Load(ctx)
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = s.cfg.Now()
		s.pollCount++
		s.mu.Unlock()
		s.metrics.pollErrors.Inc()
		s.log.Error("poll failed", zap.Error(err))
		return
	}

	now := s.cfg.Now()
	expenses = pipeline.FilterByCategory(expenses, s.cfg.Category)
	expenses = pipeline.FilterByMerchant(expenses, s.cfg.Merchant)

	w := analysis.SelectWindow(s.cfg.Range, now)
	report := analysis.Analyzer{Currency: s.cfg.Currency}.Analyze(expenses, w, now)
	windowed := len(w.Filter(expenses))
	snap := snapshotFromReport(report, s.cfg.Range, windowed)

	s.metrics.observe(report, windowed)
	s.metrics.pollDuration.Observe(time.Since(start).Seconds())

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.report = report
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      "snapshot",
			Timestamp: now,
			Snapshot:  snap,
		}
		publish = true
	} else {
		delta := diffSnapshots(prev, snap)
		if !delta.isZero() {
			s.nextEventID++
			ev = Event{
				ID:        s.nextEventID,
				Type:      "spending_delta",
				Timestamp: now,
				Snapshot:  snap,
				Delta:     delta,
			}
			publish = true
		}
	}
	s.mu.Unlock()

	s.log.Debug("poll complete",
		zap.Int("expenses", windowed),
		zap.String("amount", snap.AmountWindow.String()),
		zap.Int("insights", snap.InsightCount),
		zap.Duration("took", time.Since(start)))

	if publish {
		s.publishEvent(ev)
	}
}

func (s *Service) loadExpenses(_ context.Context) ([]model.Expense, error) {
	opts := pipeline.LoadOptions{
		DataDir:  s.cfg.DataDir,
		Location: s.cfg.Location,
		Logger:   s.log,
	}

	if s.cfg.UseCache {
		cache, err := store.Open(pipeline.CachePath())
		if err == nil {
			defer func() { _ = cache.Close() }()
			cr, loadErr := pipeline.LoadWithCache(opts, cache)
			if loadErr == nil {
				return cr.Expenses, nil
			}
			s.log.Warn("cached load failed, falling back to full parse", zap.Error(loadErr))
		} else {
			s.log.Warn("opening cache", zap.Error(err))
		}
	}

	result, err := pipeline.Load(opts)
	if err != nil {
		return nil, err
	}
	return result.Expenses, nil
}

func snapshotFromReport(r analysis.Report, rng analysis.Range, expenses int) Snapshot {
	return Snapshot{
		At:                  r.Now,
		Range:               string(rng),
		Expenses:            expenses,
		AmountWindow:        r.Status.AmountLast24h,
		ComparisonYesterday: r.Status.ComparisonYesterday,
		StatusMessage:       r.Status.StatusMessage,
		HighlightedWord:     r.Status.HighlightedWord,
		InsightCount:        len(r.Insights),
		PotentialSavings:    r.Insights.PotentialSavings(),
		WeeklyTotal:         r.Weekly.Total(),
		Percentile:          r.Comparison.Percentile,
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Expenses:     curr.Expenses - prev.Expenses,
		AmountWindow: curr.AmountWindow.Sub(prev.AmountWindow),
		InsightCount: curr.InsightCount - prev.InsightCount,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		Schedule:        s.cfg.Schedule,
		PollCount:       s.pollCount,
		DataDir:         s.cfg.DataDir,
		Range:           string(s.cfg.Range),
		Category:        string(s.cfg.Category),
		Merchant:        s.cfg.Merchant,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.snapshotStatus())
}

func (s *Service) handleReport(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	report, ok := s.report, s.hasSnapshot
	s.mu.RUnlock()

	if !ok {
		http.Error(w, "no analysis yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(report)
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      "snapshot",
		Timestamp: s.cfg.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
