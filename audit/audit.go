// Package audit records one append-only entry per request: requestId,
// tenant/user, per-stage durations, the guardrail decision, result counts,
// and any terminal error code. No query text or document content is
// persisted unless a tenant explicitly opts in. A sink is write-only and
// fire-and-forget — its unavailability is logged but never fails a request.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/ragforge/queryengine/domain"
)

// Entry is a single audit record. OptedInQueryText is empty unless the
// tenant explicitly enabled content retention.
type Entry struct {
	RequestID        string
	TenantID         string
	UserID           string
	Timestamp        time.Time
	StageDurations    map[string]time.Duration
	GuardrailDecision *domain.GuardrailDecision
	RetrievedCount    int
	RerankedCount     int
	CitationCount     int
	ReasonCode        domain.ReasonCode
	ErrorCode         string
	RerankerBypassed  bool
	VectorDegraded    bool
	LexicalDegraded   bool
	OptedInQueryText  string
}

// Sink is implemented once per destination (structured logs, a buffered
// channel feeding an async writer, ...). Append must never block the
// request path long enough to matter and must never return an error that
// would fail the request — failures are the sink's own problem to log.
type Sink interface {
	Append(ctx context.Context, entry Entry)
}

// LogSink writes each entry as a single structured log line. This is the
// default sink: every deployment gets an audit trail even with no
// downstream store configured.
type LogSink struct {
	Logger *slog.Logger
}

// NewLogSink builds a LogSink. A nil logger falls back to slog.Default().
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{Logger: logger}
}

func (s *LogSink) Append(_ context.Context, entry Entry) {
	attrs := []any{
		"requestId", entry.RequestID,
		"tenantId", entry.TenantID,
		"userId", entry.UserID,
		"retrievedCount", entry.RetrievedCount,
		"rerankedCount", entry.RerankedCount,
		"citationCount", entry.CitationCount,
	}
	if entry.GuardrailDecision != nil {
		attrs = append(attrs,
			"answerable", entry.GuardrailDecision.IsAnswerable,
			"guardrailConfidence", entry.GuardrailDecision.Confidence,
		)
	}
	if entry.ReasonCode != "" {
		attrs = append(attrs, "reasonCode", entry.ReasonCode)
	}
	if entry.RerankerBypassed {
		attrs = append(attrs, "rerankerBypassed", true)
	}
	if entry.VectorDegraded {
		attrs = append(attrs, "vectorDegraded", true)
	}
	if entry.LexicalDegraded {
		attrs = append(attrs, "lexicalDegraded", true)
	}
	for stage, d := range entry.StageDurations {
		attrs = append(attrs, "duration_"+stage+"_ms", d.Milliseconds())
	}

	if entry.ErrorCode != "" {
		s.Logger.Error("audit", append(attrs, "errorCode", entry.ErrorCode)...)
		return
	}
	s.Logger.Info("audit", attrs...)
}

// ChannelSink buffers entries onto a channel for a downstream async writer
// (e.g. batched inserts into a warehouse). Sends never block: a full
// buffer drops the entry and logs a warning rather than stalling the
// request that produced it.
type ChannelSink struct {
	entries chan Entry
	logger  *slog.Logger
}

// NewChannelSink builds a ChannelSink with the given buffer size. Entries
// are available on C() for a consumer goroutine to drain.
func NewChannelSink(bufferSize int, logger *slog.Logger) *ChannelSink {
	if logger == nil {
		logger = slog.Default()
	}
	if bufferSize <= 0 {
		bufferSize = 512
	}
	return &ChannelSink{entries: make(chan Entry, bufferSize), logger: logger}
}

// C returns the channel a downstream consumer drains entries from.
func (s *ChannelSink) C() <-chan Entry { return s.entries }

func (s *ChannelSink) Append(_ context.Context, entry Entry) {
	select {
	case s.entries <- entry:
	default:
		s.logger.Warn("audit channel sink full, dropping entry", "requestId", entry.RequestID)
	}
}

// Close closes the underlying channel. Callers must ensure no further
// Append calls occur afterward.
func (s *ChannelSink) Close() { close(s.entries) }

// MultiSink fans an entry out to every wrapped sink, for example a LogSink
// always kept alongside an optional ChannelSink feeding a warehouse.
type MultiSink struct {
	Sinks []Sink
}

func (s MultiSink) Append(ctx context.Context, entry Entry) {
	for _, sink := range s.Sinks {
		if sink != nil {
			sink.Append(ctx, entry)
		}
	}
}
