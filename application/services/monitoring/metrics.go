package monitoring

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "invigil.io/monitoring"

type Metrics struct {
	framesProcessed  metric.Int64Counter
	alertsRaised     metric.Int64Counter
	alertsSuppressed metric.Int64Counter
	failures         metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = otel.Meter(meterName)
	}
	frames, err := meter.Int64Counter("invigil_frames_processed_total", metric.WithDescription("Frames run through the monitoring engine."))
	if err != nil {
		return nil, fmt.Errorf("create frames counter: %w", err)
	}
	raised, err := meter.Int64Counter("invigil_alerts_raised_total", metric.WithDescription("Alerts persisted, by type."))
	if err != nil {
		return nil, fmt.Errorf("create alerts counter: %w", err)
	}
	suppressed, err := meter.Int64Counter("invigil_alerts_suppressed_total", metric.WithDescription("Violations suppressed by the cooldown, by type."))
	if err != nil {
		return nil, fmt.Errorf("create suppressed counter: %w", err)
	}
	failures, err := meter.Int64Counter("invigil_collaborator_failures_total", metric.WithDescription("Failed calls to vision collaborators, by kind."))
	if err != nil {
		return nil, fmt.Errorf("create failures counter: %w", err)
	}
	return &Metrics{
		framesProcessed:  frames,
		alertsRaised:     raised,
		alertsSuppressed: suppressed,
		failures:         failures,
	}, nil
}

func (m *Metrics) frameProcessed(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.framesProcessed.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func (m *Metrics) alertRaised(ctx context.Context, alertType string) {
	if m == nil {
		return
	}
	m.alertsRaised.Add(ctx, 1, metric.WithAttributes(attribute.String("type", alertType)))
}

func (m *Metrics) alertSuppressed(ctx context.Context, alertType string) {
	if m == nil {
		return
	}
	m.alertsSuppressed.Add(ctx, 1, metric.WithAttributes(attribute.String("type", alertType)))
}

func (m *Metrics) collaboratorFailed(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
