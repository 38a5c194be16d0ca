// AngelaMos | 2026
// metrics.go

package wallet

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

type metrics struct {
	requested metric.Int64Counter
	processed metric.Int64Counter
	credited  metric.Int64Counter
	debited   metric.Int64Counter
}

func newMetrics(meter metric.Meter) *metrics {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("wallet")
	}

	// Instrument creation only fails on invalid names; the noop fallback
	// keeps the service usable regardless.
	requested, err := meter.Int64Counter(
		"wallet.transactions.requested",
		metric.WithDescription("Transactions created, by type."),
	)
	if err != nil {
		requested, _ = noop.Meter{}.Int64Counter("requested")
	}
	processed, err := meter.Int64Counter(
		"wallet.transactions.processed",
		metric.WithDescription("Admin decisions on pending transactions, by type and outcome."),
	)
	if err != nil {
		processed, _ = noop.Meter{}.Int64Counter("processed")
	}
	credited, err := meter.Int64Counter(
		"wallet.balance.credited",
		metric.WithDescription("Minor units credited to wallets."),
	)
	if err != nil {
		credited, _ = noop.Meter{}.Int64Counter("credited")
	}
	debited, err := meter.Int64Counter(
		"wallet.balance.debited",
		metric.WithDescription("Minor units debited from wallets."),
	)
	if err != nil {
		debited, _ = noop.Meter{}.Int64Counter("debited")
	}

	return &metrics{
		requested: requested,
		processed: processed,
		credited:  credited,
		debited:   debited,
	}
}

func (m *metrics) recordRequested(ctx context.Context, txType string) {
	m.requested.Add(ctx, 1, metric.WithAttributes(attribute.String("type", txType)))
}

func (m *metrics) recordProcessed(ctx context.Context, txType, status string) {
	m.processed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", txType),
		attribute.String("status", status),
	))
}
