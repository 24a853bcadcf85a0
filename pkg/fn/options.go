package fn

import (
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"flywheel/pkg/fn/metrics"
)

// ShadowPolicy decides what a layer that owns a record for the point, but has no
// match for the call, does to the layers behind it.
type ShadowPolicy int

const (
	// ShadowSoft continues to outer layers on an empty match. An inner scope can
	// override some argument shapes and still inherit the rest.
	ShadowSoft ShadowPolicy = iota
	// ShadowHard stops at the first layer owning a record, match or not.
	ShadowHard
)

func (p ShadowPolicy) String() string {
	switch p {
	case ShadowSoft:
		return "soft"
	case ShadowHard:
		return "hard"
	default:
		return fmt.Sprintf("ShadowPolicy(%d)", int(p))
	}
}

// ParseShadowPolicy accepts "soft" or "hard" (case-insensitive); empty means soft.
func ParseShadowPolicy(raw string) (ShadowPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "soft":
		return ShadowSoft, nil
	case "hard":
		return ShadowHard, nil
	default:
		return ShadowSoft, fmt.Errorf("unknown shadow policy %q", raw)
	}
}

type settings struct {
	fallback any
	shadow   ShadowPolicy
	strict   bool
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

type Option func(s *settings)

// WithFallback sets the implementation used when the whole chain has no match.
// Its argument and result types must match the point's.
func WithFallback[A, R any](f Func[A, R]) Option {
	return func(s *settings) {
		s.fallback = f
	}
}

func WithShadow(policy ShadowPolicy) Option {
	return func(s *settings) {
		s.shadow = policy
	}
}

// WithStrictAmbiguity makes resolution fail when several candidates tie at the
// best rank, instead of picking the most recently registered one.
func WithStrictAmbiguity() Option {
	return func(s *settings) {
		s.strict = true
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *settings) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *settings) {
		s.tracer = tracer
	}
}
