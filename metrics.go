package main

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "planet-artillery-server"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Metrics holds the game instruments. They report to the global provider,
// which is a no-op unless one is installed.
type Metrics struct {
	ticks        metric.Int64Counter
	tickDuration metric.Float64Histogram
	bulletsFired metric.Int64Counter
	explosions   metric.Int64Counter
	activeRooms  metric.Int64ObservableGauge
}

// NewMetrics creates the instruments. roomCount feeds the active rooms gauge.
func NewMetrics(roomCount func() int) (*Metrics, error) {
	m := meter()
	mt := &Metrics{}

	var err error
	mt.ticks, err = m.Int64Counter(
		"game.ticks",
		metric.WithDescription("Simulation steps run across all rooms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ticks counter: %w", err)
	}

	mt.tickDuration, err = m.Float64Histogram(
		"game.tick.duration",
		metric.WithDescription("Wall time of one simulation step"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tick duration histogram: %w", err)
	}

	mt.bulletsFired, err = m.Int64Counter(
		"game.bullets.fired",
		metric.WithDescription("Bullets fired by tanks"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating bullets counter: %w", err)
	}

	mt.explosions, err = m.Int64Counter(
		"game.explosions",
		metric.WithDescription("Bullet explosions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating explosions counter: %w", err)
	}

	mt.activeRooms, err = m.Int64ObservableGauge(
		"rooms.active",
		metric.WithDescription("Rooms currently running"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rooms gauge: %w", err)
	}

	if roomCount != nil {
		_, err = m.RegisterCallback(
			func(ctx context.Context, o metric.Observer) error {
				o.ObserveInt64(mt.activeRooms, int64(roomCount()))
				return nil
			},
			mt.activeRooms,
		)
		if err != nil {
			return nil, fmt.Errorf("registering rooms callback: %w", err)
		}
	}
	return mt, nil
}

// RecordTick records one world step of a room
func (mt *Metrics) RecordTick(roomID string, took time.Duration, fired, exploded int) {
	if mt == nil {
		return
	}
	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String("room", roomID))
	mt.ticks.Add(ctx, 1, attrs)
	mt.tickDuration.Record(ctx, float64(took.Microseconds())/1000, attrs)
	if fired > 0 {
		mt.bulletsFired.Add(ctx, int64(fired), attrs)
	}
	if exploded > 0 {
		mt.explosions.Add(ctx, int64(exploded), attrs)
	}
}
