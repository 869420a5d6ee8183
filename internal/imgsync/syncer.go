// Package imgsync copies the images referenced by character greetings into
// per-character storage folders, skipping files that are already stored.
//
// A run is strictly sequential: characters are processed in source order and
// each link is fetched and stored before the next one starts. Failures are
// recorded per link and never stop the run.
package imgsync

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/starford/imgbackup/internal/apperr"
	"github.com/starford/imgbackup/internal/models"
	"github.com/starford/imgbackup/internal/parser"
	"github.com/starford/imgbackup/internal/storage"
)

// Source lists the known characters.
type Source interface {
	Characters(ctx context.Context) ([]models.Character, error)
}

// Observer receives run events as they happen.
type Observer interface {
	OnEvent(models.Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(models.Event)

// OnEvent calls f(ev).
func (f ObserverFunc) OnEvent(ev models.Event) { f(ev) }

// Option configures a Syncer.
type Option func(*Syncer)

// WithFetcher replaces the default HTTP fetcher.
func WithFetcher(f Fetcher) Option {
	return func(s *Syncer) { s.fetcher = f }
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Syncer) { s.logger = l }
}

// WithObserver registers an event observer.
func WithObserver(o Observer) Option {
	return func(s *Syncer) { s.observers = append(s.observers, o) }
}

// Syncer drives extraction, inventory checks and transfers.
type Syncer struct {
	source    Source
	store     storage.Transport
	fetcher   Fetcher
	logger    *slog.Logger
	observers []Observer
	running   atomic.Bool
}

// New creates a Syncer reading characters from source and writing to store.
func New(source Source, store storage.Transport, opts ...Option) *Syncer {
	s := &Syncer{
		source: source,
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fetcher == nil {
		s.fetcher = NewHTTPFetcher(0, 0, "")
	}
	return s
}

// Running reports whether a run is in progress.
func (s *Syncer) Running() bool {
	return s.running.Load()
}

// Run performs one sync pass over the selected characters and returns its
// report. Only one run may be active at a time; a concurrent call returns
// apperr.ErrBusy. Once started, a run is not cancelled by ctx.
func (s *Syncer) Run(ctx context.Context, sel models.Selection) (*models.Report, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, apperr.ErrBusy
	}
	defer s.running.Store(false)

	ctx = context.WithoutCancel(ctx)
	report := &models.Report{
		RunID:      uuid.NewString(),
		State:      models.StateIdle,
		StartedAt:  time.Now().UTC(),
		Characters: []string{},
		Outcomes:   []models.Outcome{},
	}

	if sel.Empty() {
		report.State = models.StateDone
		report.Status = models.StatusNoSelection
		report.FinishedAt = time.Now().UTC()
		s.emit(models.Event{Type: models.EventRunFinished, RunID: report.RunID, Status: report.Status})
		return report, nil
	}

	report.State = models.StateRunning
	report.Status = models.StatusRunning
	s.emit(models.Event{Type: models.EventRunStarted, RunID: report.RunID, Status: report.Status})

	characters, err := s.source.Characters(ctx)
	if err != nil {
		s.logger.Error("failed to load characters", slog.String("error", err.Error()))
	}
	for _, c := range characters {
		name := c.DisplayName()
		if !sel.Includes(name) {
			continue
		}
		report.Characters = append(report.Characters, name)
		s.processCharacter(ctx, report, name, c.Data.FirstMes)
	}

	report.State = models.StateDone
	report.Status = models.StatusDone
	report.FinishedAt = time.Now().UTC()
	s.logger.Info("sync finished",
		slog.String("run_id", report.RunID),
		slog.Int("characters", len(report.Characters)),
		slog.Int("uploaded", report.Count(models.OutcomeUploaded)),
		slog.Int("skipped", report.Count(models.OutcomeSkipped)),
		slog.Int("failed", report.Count(models.OutcomeFailed)))
	s.emit(models.Event{Type: models.EventRunFinished, RunID: report.RunID, Status: report.Status})
	return report, nil
}

func (s *Syncer) processCharacter(ctx context.Context, report *models.Report, name string, messages []string) {
	links := parser.ExtractAll(messages)
	s.logger.Info("found links", slog.String("character", name), slog.Any("links", links))

	existing := s.Inventory(ctx, name)

	for _, link := range links {
		filename := parser.Filename(link)
		outcome := models.Outcome{Character: name, URL: link, Filename: filename}

		if _, ok := existing[strings.ToLower(filename)]; ok {
			s.logger.Info("skipping duplicate",
				slog.String("character", name),
				slog.String("filename", filename))
			outcome.Status = models.OutcomeSkipped
		} else if err := s.Transfer(ctx, name, link, filename); err != nil {
			outcome.Status = models.OutcomeFailed
			outcome.Error = err.Error()
		} else {
			outcome.Status = models.OutcomeUploaded
		}

		report.Outcomes = append(report.Outcomes, outcome)
		s.emit(models.Event{Type: models.EventOutcome, RunID: report.RunID, Outcome: &outcome})
	}
}

func (s *Syncer) emit(ev models.Event) {
	for _, o := range s.observers {
		o.OnEvent(ev)
	}
}
