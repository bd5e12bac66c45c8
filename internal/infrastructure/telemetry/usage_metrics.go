package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when metrics are constructed without a meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Metric attribute keys.
var (
	AttrOutcome       = attribute.Key("outcome")
	AttrPaymentStatus = attribute.Key("payment_status")
	AttrSubStatus     = attribute.Key("subscription_status")
)

// UsageMetrics tracks metering and payment activity.
type UsageMetrics struct {
	unitsRecorded  *Counter
	recordAttempts *Counter
	recordDuration *Histogram
	payments       *Counter
	renewals       *Counter
}

// NewUsageMetrics registers the metering instruments on meter.
func NewUsageMetrics(meter metric.Meter) (*UsageMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &UsageMetrics{}
	var err error

	if m.unitsRecorded, err = NewCounter(meter,
		"meter_units_recorded_total", "Units deducted from subscriptions", "{units}"); err != nil {
		return nil, err
	}
	if m.recordAttempts, err = NewCounter(meter,
		"meter_usage_records_total", "Usage record attempts by outcome", "{records}"); err != nil {
		return nil, err
	}
	if m.recordDuration, err = NewHistogram(meter,
		"meter_usage_record_duration_seconds", "Duration of the record transaction", "s",
		DBDurationBuckets...); err != nil {
		return nil, err
	}
	if m.payments, err = NewCounter(meter,
		"meter_payments_total", "Payment callbacks by final status", "{payments}"); err != nil {
		return nil, err
	}
	if m.renewals, err = NewCounter(meter,
		"meter_subscription_renewals_total", "Subscription renewals", "{renewals}"); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordUsage records a successful deduction.
func (m *UsageMetrics) RecordUsage(ctx context.Context, units int64, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.unitsRecorded.Add(ctx, units, AttrSubStatus.String(status))
	m.recordAttempts.Inc(ctx, AttrOutcome.String("recorded"))
	m.recordDuration.RecordDuration(ctx, d, AttrOutcome.String("recorded"))
}

// RecordRejection records a failed usage attempt, labelled by error code.
func (m *UsageMetrics) RecordRejection(ctx context.Context, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.recordAttempts.Inc(ctx, AttrOutcome.String(code))
	m.recordDuration.RecordDuration(ctx, d, AttrOutcome.String(code))
}

// RecordPayment records a processed payment callback.
func (m *UsageMetrics) RecordPayment(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.payments.Inc(ctx, AttrPaymentStatus.String(status))
}

// RecordRenewal records a subscription renewal.
func (m *UsageMetrics) RecordRenewal(ctx context.Context) {
	if m == nil {
		return
	}
	m.renewals.Inc(ctx)
}
