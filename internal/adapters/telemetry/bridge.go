package telemetry

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/devd/internal/core/ports"
)

var _ sdktrace.SpanProcessor = (*Bridge)(nil)

// Bridge is a span processor that writes each finished span to the logger
// at debug level.
type Bridge struct {
	logger ports.Logger
}

// NewBridge returns a new Bridge.
func NewBridge(logger ports.Logger) *Bridge {
	return &Bridge{logger: logger}
}

// OnStart does nothing; spans are reported when they end.
func (b *Bridge) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

// OnEnd logs the finished span.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if b.logger == nil || !s.SpanContext().IsValid() {
		return
	}
	b.logger.Debug(describeSpan(s))
}

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *Bridge) Shutdown(context.Context) error {
	return nil
}

// describeSpan renders "name (duration) key=value ..." with a failure suffix.
func describeSpan(s sdktrace.ReadOnlySpan) string {
	var sb strings.Builder
	sb.WriteString(s.Name())
	sb.WriteString(" (")
	sb.WriteString(s.EndTime().Sub(s.StartTime()).Round(time.Millisecond).String())
	sb.WriteString(")")

	for _, attr := range s.Attributes() {
		sb.WriteString(" ")
		sb.WriteString(string(attr.Key))
		sb.WriteString("=")
		sb.WriteString(attr.Value.Emit())
	}

	if status := s.Status(); status.Code == codes.Error {
		sb.WriteString(" failed: ")
		sb.WriteString(status.Description)
	}
	return sb.String()
}
