// Package parse is the HTTP-facing application layer around the note
// parsing engine: it owns the shared parser instance, enriches the
// header vocabulary from the optional database-backed store, and
// attaches safety screening and telemetry to each parse.
package parse

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/notecore/notecore/internal/domain/safety"
	"github.com/notecore/notecore/internal/note"
	"github.com/notecore/notecore/internal/platform/telemetry"
	"github.com/notecore/notecore/internal/platform/vocab"
)

// Result is the full response for one parse request.
type Result struct {
	ID           string                 `json:"id"`
	Result       note.ParseResult       `json:"result"`
	SafetyIssues []safety.Issue         `json:"safety_issues,omitempty"`
	DurationMS   float64                `json:"duration_ms"`
}

// Service parses notes and records what happened.
type Service struct {
	mu      sync.RWMutex
	parser  *note.Parser
	headers *note.HeaderConfig
	store   *vocab.Store
	tp      *telemetry.TelemetryProvider
	logger  zerolog.Logger
}

// NewService builds a Service. store and tp may be nil; the service
// then runs with the built-in vocabulary and without metrics.
func NewService(cfg *note.HeaderConfig, store *vocab.Store, tp *telemetry.TelemetryProvider, logger zerolog.Logger) *Service {
	if cfg == nil {
		cfg = note.DefaultHeaderConfig()
	}
	return &Service{
		parser:  note.NewParser(cfg),
		headers: cfg,
		store:   store,
		tp:      tp,
		logger:  logger,
	}
}

// LoadVocabulary merges stored header aliases into a fresh config and
// swaps the parser to it. Called at startup and by the vocab sync
// command; a service without a store is a no-op. Safe to call on a
// live service: in-flight parses keep the config they started with.
func (s *Service) LoadVocabulary(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, nil
	}
	cfg := note.NewHeaderConfig()
	n, err := s.store.MergeIntoConfig(ctx, cfg)
	if err != nil {
		return 0, err
	}
	s.setVocabulary(cfg)
	if s.tp != nil {
		s.tp.HealthMetrics().SetVocabAliasesTotal(int64(n))
	}
	return n, nil
}

func (s *Service) setVocabulary(cfg *note.HeaderConfig) {
	s.mu.Lock()
	s.parser = note.NewParser(cfg)
	s.headers = cfg
	s.mu.Unlock()
}

// vocabulary returns the current parser and the config backing it. The
// pair is immutable once published, so callers may use it lock-free.
func (s *Service) vocabulary() (*note.Parser, *note.HeaderConfig) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.parser, s.headers
}

// Parse runs the engine on raw note text. It never returns an error:
// malformed input degrades to warnings and a low confidence score.
func (s *Service) Parse(ctx context.Context, text string) Result {
	start := time.Now()

	parser, _ := s.vocabulary()
	result := parser.Parse(text)
	issues := safety.Check(result.Data)

	elapsed := time.Since(start)
	id := uuid.NewString()

	noteType := "general"
	if result.Data.Sections[note.SectionReasonForConsult] != "" {
		noteType = "consult"
	}

	if s.tp != nil {
		s.tp.ParseCounter(noteType, outcomeOf(result))
		s.tp.RecordParse(elapsed, len(text), result.Confidence)
	}

	s.logger.Info().
		Str("parse_id", id).
		Str("note_type", noteType).
		Int("note_bytes", len(text)).
		Float64("confidence", result.Confidence).
		Int("warnings", len(result.Warnings)).
		Int("safety_issues", len(issues)).
		Dur("duration", elapsed).
		Msg("note parsed")

	return Result{
		ID:           id,
		Result:       result,
		SafetyIssues: issues,
		DurationMS:   float64(elapsed.Microseconds()) / 1000.0,
	}
}

// Learn scans the given note text for unknown header spellings that
// fuzzy-match the current vocabulary and persists them. Learning runs
// against the merged vocabulary so aliases already stored are not
// proposed again. Returns the aliases saved.
func (s *Service) Learn(ctx context.Context, text string) (map[string]string, error) {
	_, headers := s.vocabulary()
	lines := strings.Split(note.Normalize(text), "\n")
	learned := headers.Learn(lines)

	if s.store != nil && len(learned) > 0 {
		if _, err := s.store.SaveAll(ctx, learned); err != nil {
			return nil, err
		}
	}
	return learned, nil
}

func outcomeOf(r note.ParseResult) string {
	for _, w := range r.Warnings {
		if w == "note exceeded maximum length and was truncated" {
			return "truncated"
		}
		if w == "empty note" {
			return "empty"
		}
	}
	return "ok"
}
