package camera

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/wachiwi/viewfinder/pkg/camera"

var (
	tracer = otel.Tracer(instrumentationName)

	acquisitionsCounter metric.Int64Counter
	attemptsCounter     metric.Int64Counter
	switchesCounter     metric.Int64Counter
)

func init() {
	var err error
	meter := otel.Meter(instrumentationName)
	acquisitionsCounter, err = meter.Int64Counter("camera.acquisitions",
		metric.WithDescription("Camera acquisitions by outcome"),
		metric.WithUnit("{acquisitions}"),
	)
	if err != nil {
		slog.Error("Failed to create acquisition metrics", "error", err)
	}
	attemptsCounter, err = meter.Int64Counter("camera.ladder.attempts",
		metric.WithDescription("Constraint ladder attempts by rung and outcome"),
		metric.WithUnit("{attempts}"),
	)
	if err != nil {
		slog.Error("Failed to create ladder metrics", "error", err)
	}
	switchesCounter, err = meter.Int64Counter("camera.switches",
		metric.WithDescription("Camera switch requests by result"),
		metric.WithUnit("{switches}"),
	)
	if err != nil {
		slog.Error("Failed to create switch metrics", "error", err)
	}
}
