// Package observability provides the bot's tracing and metrics:
// lightweight in-process spans around update handling plus Prometheus
// metrics for traffic, completions and the credit ledger.
package observability

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Trace Spans ────────────────────────────────────────────────────────────

// SpanKind classifies a span.
type SpanKind int

const (
	SpanInternal SpanKind = iota
	SpanServer
	SpanClient
)

// Span represents one unit of work: handling an update, running a
// completion, applying a ledger operation.
type Span struct {
	TraceID   string            `json:"trace_id"`
	SpanID    string            `json:"span_id"`
	ParentID  string            `json:"parent_id,omitempty"`
	Operation string            `json:"operation"`
	Kind      SpanKind          `json:"kind"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
	Duration  time.Duration     `json:"duration,omitempty"`
	Status    SpanStatus        `json:"status"`
	Attrs     map[string]string `json:"attrs,omitempty"`
}

// SpanStatus indicates success/failure.
type SpanStatus int

const (
	SpanOK SpanStatus = iota
	SpanError
)

// ─── Tracer ─────────────────────────────────────────────────────────────────

// Tracer records spans in a bounded in-memory ring for inspection over the
// ops API. No external tracing backend is required.
type Tracer struct {
	mu       sync.Mutex
	spans    []Span
	maxSpans int
	enabled  bool
}

// TracerConfig configures the tracer.
type TracerConfig struct {
	Enabled  bool
	MaxSpans int // ring buffer size (default 10_000)
}

// DefaultTracerConfig returns production defaults.
func DefaultTracerConfig() TracerConfig {
	return TracerConfig{
		Enabled:  true,
		MaxSpans: 10_000,
	}
}

// NewTracer creates a new tracer.
func NewTracer(cfg TracerConfig) *Tracer {
	return &Tracer{
		spans:    make([]Span, 0, cfg.MaxSpans),
		maxSpans: cfg.MaxSpans,
		enabled:  cfg.Enabled,
	}
}

// StartSpan begins a new span with the given operation name.
// Returns the span (caller must call EndSpan when done).
func (t *Tracer) StartSpan(ctx context.Context, operation string, attrs map[string]string) *Span {
	if !t.enabled {
		return &Span{Operation: operation}
	}

	span := &Span{
		TraceID:   traceIDFromContext(ctx),
		SpanID:    generateID(),
		ParentID:  spanIDFromContext(ctx),
		Operation: operation,
		Kind:      SpanInternal,
		StartTime: time.Now(),
		Status:    SpanOK,
		Attrs:     attrs,
	}

	return span
}

// EndSpan completes a span and records it.
func (t *Tracer) EndSpan(span *Span, err error) {
	if !t.enabled || span == nil {
		return
	}

	span.EndTime = time.Now()
	span.Duration = span.EndTime.Sub(span.StartTime)
	if err != nil {
		span.Status = SpanError
		if span.Attrs == nil {
			span.Attrs = make(map[string]string)
		}
		span.Attrs["error"] = err.Error()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Ring buffer: overwrite oldest if at capacity
	if len(t.spans) >= t.maxSpans {
		t.spans = t.spans[1:]
	}
	t.spans = append(t.spans, *span)
}

// Spans returns a copy of the recent spans.
func (t *Tracer) Spans(limit int) []Span {
	t.mu.Lock()
	defer t.mu.Unlock()

	if limit <= 0 || limit > len(t.spans) {
		limit = len(t.spans)
	}

	// Return most recent spans
	start := len(t.spans) - limit
	out := make([]Span, limit)
	copy(out, t.spans[start:])
	return out
}

// SpanCount returns the number of recorded spans.
func (t *Tracer) SpanCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.spans)
}

// Reset clears all recorded spans.
func (t *Tracer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.spans = t.spans[:0]
}

// ─── Context Helpers ────────────────────────────────────────────────────────

type contextKey string

const (
	traceIDKey contextKey = "bot-trace-id"
	spanIDKey  contextKey = "bot-span-id"
)

// WithTraceID returns a context with the given trace ID.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// WithSpanID returns a context with the given span ID.
func WithSpanID(ctx context.Context, spanID string) context.Context {
	return context.WithValue(ctx, spanIDKey, spanID)
}

func traceIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(traceIDKey).(string); ok {
		return v
	}
	return generateID()
}

func spanIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(spanIDKey).(string); ok {
		return v
	}
	return ""
}

// generateID creates a short unique ID (not cryptographically secure — fine for tracing).
var spanCounter atomic.Int64

func generateID() string {
	n := spanCounter.Add(1)
	return fmt.Sprintf("%s-%d", time.Now().Format("20060102150405"), n)
}

// ─── Traffic Metrics ────────────────────────────────────────────────────────

// UpdatesReceived counts incoming updates by kind.
var UpdatesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "bot",
	Subsystem: "telegram",
	Name:      "updates_total",
	Help:      "Total updates received by kind (message, callback, edited).",
}, []string{"kind"})

// CommandsHandled counts slash commands by name.
var CommandsHandled = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "bot",
	Subsystem: "telegram",
	Name:      "commands_total",
	Help:      "Total slash commands handled by command name.",
}, []string{"command"})

// HandlerDuration tracks end-to-end update handling latency.
var HandlerDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "bot",
	Subsystem: "telegram",
	Name:      "handler_seconds",
	Help:      "End-to-end update handling latency in seconds.",
	Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
})

// ─── Completion Metrics ─────────────────────────────────────────────────────

// CompletionsTotal counts provider calls by model and outcome.
var CompletionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "bot",
	Subsystem: "llm",
	Name:      "completions_total",
	Help:      "Total completion requests by model and outcome (ok, error).",
}, []string{"model", "outcome"})

// CompletionDuration tracks provider latency by model.
var CompletionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "bot",
	Subsystem: "llm",
	Name:      "completion_seconds",
	Help:      "Completion latency in seconds by model.",
	Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 45, 90},
}, []string{"model"})

// ImagesGenerated counts image generations by outcome.
var ImagesGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "bot",
	Subsystem: "llm",
	Name:      "images_total",
	Help:      "Total image generations by outcome (ok, error).",
}, []string{"outcome"})

// ─── Ledger Metrics ─────────────────────────────────────────────────────────

// CreditsDebited accumulates debited credits by usage category.
var CreditsDebited = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "bot",
	Subsystem: "credits",
	Name:      "debited_total",
	Help:      "Total credits debited by usage category.",
}, []string{"category"})

// CreditsGranted accumulates granted credits by kind.
var CreditsGranted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "bot",
	Subsystem: "credits",
	Name:      "granted_total",
	Help:      "Total credits granted by transaction kind (grant, purchase).",
}, []string{"kind"})

// DebitsRefused counts debits refused for insufficient balance.
var DebitsRefused = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "bot",
	Subsystem: "credits",
	Name:      "debits_refused_total",
	Help:      "Total debits refused because the balance did not cover the cost.",
})

// PurchasesTotal counts completed purchases by method.
var PurchasesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "bot",
	Subsystem: "credits",
	Name:      "purchases_total",
	Help:      "Total completed purchases by method (package, stars).",
}, []string{"method"})

// ─── Reminder Metrics ───────────────────────────────────────────────────────

// RemindersSent counts delivered reminders.
var RemindersSent = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "bot",
	Subsystem: "reminders",
	Name:      "sent_total",
	Help:      "Total reminders delivered.",
})
