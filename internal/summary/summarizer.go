package summary

import (
	"context"
	"log/slog"
	"time"

	"github.com/starford/leadsync/internal/apperr"
)

// Source tells where a summary came from.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// DefaultTimeout covers a cold model load on the first request.
const DefaultTimeout = 60 * time.Second

// Summary is the text returned for a note.
type Summary struct {
	Text   string
	Source Source
}

// Pinger is implemented by generators that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Summarizer asks a Generator for a summary and normalizes the answer.
// It never fails: generation problems degrade to Fallback.
type Summarizer struct {
	gen     Generator
	timeout time.Duration
	logger  *slog.Logger
}

// NewSummarizer creates a Summarizer. gen may be nil, in which case every
// summary uses the fallback path.
func NewSummarizer(gen Generator, timeout time.Duration, logger *slog.Logger) *Summarizer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{gen: gen, timeout: timeout, logger: logger}
}

// Prompt is the instruction sent to the generator for note.
func Prompt(note string) string {
	return "Summarize in max 20 words: " + note
}

// Summarize returns a summary of note of at most MaxWords words.
func (s *Summarizer) Summarize(ctx context.Context, note string) Summary {
	o := s.generate(ctx, note)
	text, src := normalize(o, note)

	switch {
	case o.Err() != nil:
		s.logger.Warn("summary: generation failed, using fallback", slog.String("error", o.Err().Error()))
	case src == SourceFallback:
		s.logger.Warn("summary: generated text rejected, using fallback")
	default:
		s.logger.Debug("summary: generated", slog.Int("words", wordCount(text)))
	}
	return Summary{Text: text, Source: src}
}

// Ping reports whether the generator is reachable. Generators without a
// health check are assumed reachable.
func (s *Summarizer) Ping(ctx context.Context) error {
	if s.gen == nil {
		return apperr.ErrGenerationUnavailable
	}
	p, ok := s.gen.(Pinger)
	if !ok {
		return nil
	}
	return p.Ping(ctx)
}

// generate runs the backend call detached from the caller's cancellation,
// bounded only by the summarizer's own timeout.
func (s *Summarizer) generate(ctx context.Context, note string) Outcome {
	if s.gen == nil {
		return Failed(apperr.ErrGenerationUnavailable)
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	text, err := s.gen.Generate(ctx, Prompt(note))
	if err != nil {
		return Failed(err)
	}
	return Text(text)
}
