package viewfinder

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	capturesCounter metric.Int64Counter
	camerasGauge    metric.Int64Gauge
)

func init() {
	var err error
	meter := otel.Meter("github.com/wachiwi/viewfinder/pkg/viewfinder")
	capturesCounter, err = meter.Int64Counter("viewfinder.captures",
		metric.WithDescription("Photos captured by outcome"),
		metric.WithUnit("{photos}"),
	)
	if err != nil {
		slog.Error("Failed to create capture metrics", "error", err)
	}
	camerasGauge, err = meter.Int64Gauge("viewfinder.cameras",
		metric.WithDescription("Cameras found by the last enumeration"),
	)
	if err != nil {
		slog.Error("Failed to create camera gauge", "error", err)
	}
}
