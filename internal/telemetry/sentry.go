// Package telemetry wraps sentry-go tracing and error reporting. Every helper
// is safe to call when Sentry was never initialized.
package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/cloo-solutions/lunchpick/internal/domain"
	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

const serverName = "lunchpick"

type Config struct {
	DSN              string
	Environment      string
	Release          string
	TracesSampleRate float64
	Debug            bool
	Logger           logrus.FieldLogger
}

// Init starts the Sentry client and returns a flush func for shutdown. An
// empty DSN or a failed init leaves tracing off and returns a no-op.
func Init(cfg Config) (func(), error) {
	noop := func() {}
	if cfg.DSN == "" {
		return noop, nil
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.TracesSampleRate <= 0 {
		cfg.TracesSampleRate = 1.0
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		ServerName:       serverName,
		Debug:            cfg.Debug,
		EnableTracing:    true,
		TracesSampleRate: cfg.TracesSampleRate,
		TracesSampler: sentry.TracesSampler(func(ctx sentry.SamplingContext) float64 {
			return sampleRate(ctx.Span, cfg.TracesSampleRate)
		}),
	})
	if err != nil {
		cfg.Logger.WithError(err).Warn("sentry init failed, tracing disabled")
		return noop, nil
	}

	cfg.Logger.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"sample_rate": cfg.TracesSampleRate,
	}).Info("sentry tracing enabled")

	return func() { sentry.Flush(5 * time.Second) }, nil
}

// sampleRate skips health probes and keeps child spans with their parent.
func sampleRate(span *sentry.Span, rate float64) float64 {
	if span == nil {
		return rate
	}
	if span.Name == "GET /health" {
		return 0
	}
	var root sentry.SpanID
	if span.ParentSpanID != root {
		if span.Sampled.Bool() {
			return 1
		}
		return 0
	}
	return rate
}

// SpanAttributes are recorded as span data when non-zero.
type SpanAttributes struct {
	Query        string
	RadiusMeters int
	ResultCount  int
	Operation    string
}

func (a SpanAttributes) apply(span *sentry.Span) {
	if a.Query != "" {
		span.SetData("query", a.Query)
	}
	if a.RadiusMeters > 0 {
		span.SetData("radius_m", a.RadiusMeters)
	}
	if a.ResultCount > 0 {
		span.SetData("result_count", a.ResultCount)
	}
	if a.Operation != "" {
		span.SetData("operation", a.Operation)
	}
}

// Span is a nil-safe handle on a sentry span.
type Span struct {
	inner *sentry.Span
}

func (s *Span) End() {
	if s.inner != nil {
		s.inner.Finish()
	}
}

func (s *Span) SetResultCount(n int) {
	if s.inner != nil {
		s.inner.SetData("result_count", n)
	}
}

// SetError records err on the span. Only upstream and internal failures are
// reported as Sentry events; user input and location errors are expected.
func (s *Span) SetError(err error) {
	if s.inner == nil || err == nil {
		return
	}
	s.inner.Status = spanStatus(err)
	if reportable(err) {
		CaptureError(s.inner.Context(), err)
	}
}

func (s *Span) Context() context.Context {
	if s.inner != nil {
		return s.inner.Context()
	}
	return context.Background()
}

// StartSpan opens a child of the span in ctx, or a new transaction when
// there is none.
func StartSpan(ctx context.Context, name string, attrs SpanAttributes) (context.Context, *Span) {
	var span *sentry.Span
	if parent := sentry.SpanFromContext(ctx); parent != nil {
		span = parent.StartChild(name)
	} else {
		span = sentry.StartSpan(ctx, name, sentry.WithTransactionName(name))
	}
	attrs.apply(span)
	return span.Context(), &Span{inner: span}
}

// StartTransaction creates a root span for work that runs outside a request,
// such as a map redraw.
func StartTransaction(ctx context.Context, name, op string) (context.Context, *Span) {
	options := []sentry.SpanOption{sentry.WithTransactionName(name)}
	if op != "" {
		options = append(options, sentry.WithOpName(op))
	}
	span := sentry.StartSpan(ctx, op, options...)
	return span.Context(), &Span{inner: span}
}

// CaptureError reports err on the hub in ctx. Cancellations are dropped.
func CaptureError(ctx context.Context, err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	sentry.CaptureException(err)
}

// AddBreadcrumb records an info breadcrumb on the hub in ctx.
func AddBreadcrumb(ctx context.Context, category, message string) {
	crumb := &sentry.Breadcrumb{
		Type:      "default",
		Category:  category,
		Message:   message,
		Level:     sentry.LevelInfo,
		Timestamp: time.Now(),
	}
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.AddBreadcrumb(crumb, nil)
		return
	}
	sentry.AddBreadcrumb(crumb)
}

func spanStatus(err error) sentry.SpanStatus {
	switch {
	case errors.Is(err, context.Canceled):
		return sentry.SpanStatusCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return sentry.SpanStatusDeadlineExceeded
	}

	switch domain.CodeOf(err) {
	case domain.ErrCodeValidation:
		return sentry.SpanStatusInvalidArgument
	case domain.ErrCodeNotFound:
		return sentry.SpanStatusNotFound
	case domain.ErrCodeExternalService, domain.ErrCodePlatformCapability:
		return sentry.SpanStatusUnavailable
	default:
		return sentry.SpanStatusInternalError
	}
}

func reportable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	switch domain.CodeOf(err) {
	case domain.ErrCodeValidation, domain.ErrCodeNotFound, domain.ErrCodePlatformCapability:
		return false
	default:
		return true
	}
}
