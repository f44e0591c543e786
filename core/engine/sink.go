package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/BasmaFrajElhadi/unirag/model"
)

// Sink receives completed answer traces. Recording is fire-and-forget:
// sink errors are swallowed and logged, never propagated into the pipeline.
type Sink interface {
	Record(trace *model.AnswerTrace)
}

// emitTrace hands the finished trace to all sinks. A panicking sink must
// not take the pipeline down with it.
func (e *Engine) emitTrace(trace *model.AnswerTrace) {
	for _, sink := range e.sinks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					e.log.Warn("trace sink panicked", slog.Any("panic", r))
				}
			}()
			sink.Record(trace)
		}()
	}
}

// SlogSink logs a one-line trace summary
type SlogSink struct {
	Logger *slog.Logger
}

// Record logs the trace summary
func (s *SlogSink) Record(trace *model.AnswerTrace) {
	if s.Logger == nil {
		return
	}
	s.Logger.Info("answered query",
		slog.String("query_id", trace.QueryID.String()),
		slog.String("provenance", string(trace.Provenance)),
		slog.Bool("fallback_used", trace.FallbackUsed),
		slog.Int("stages", len(trace.Stages)),
		slog.Duration("took", trace.FinishedAt.Sub(trace.StartedAt)),
	)
}

// TraceWriter is the persistence boundary of the database trace sink
type TraceWriter interface {
	InsertTrace(ctx context.Context, trace *model.AnswerTrace) error
}

// DBSink persists traces through a TraceWriter
type DBSink struct {
	Writer TraceWriter
	Logger *slog.Logger
}

// Record persists the trace with a bounded timeout; failures are logged
func (s *DBSink) Record(trace *model.AnswerTrace) {
	if s.Writer == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Writer.InsertTrace(ctx, trace); err != nil && s.Logger != nil {
		s.Logger.Warn("persisting trace failed",
			slog.String("query_id", trace.QueryID.String()), slog.Any("error", err))
	}
}
