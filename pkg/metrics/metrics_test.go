package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/Aleph-Alpha/serde/pkg/logger"
)

func TestNewMetricsServesMetricsEndpoint(t *testing.T) {
	m := NewMetrics(Config{
		Address:                 ":0",
		EnableDefaultCollectors: true,
		ServiceName:             "metrics-test",
	})

	recorder := httptest.NewRecorder()
	m.Server.Handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	if body := recorder.Body.String(); !strings.Contains(body, "go_goroutines") {
		t.Errorf("expected default collectors in scrape output, got:\n%s", body)
	}
}

func TestNewMetricsDefaultsAddress(t *testing.T) {
	m := NewMetrics(Config{})

	if m.Server.Addr != DefaultMetricsAddress {
		t.Errorf("expected address %q, got %q", DefaultMetricsAddress, m.Server.Addr)
	}
}

func TestRegistererDecoratesMetrics(t *testing.T) {
	m := NewMetrics(Config{
		Namespace:   "serde",
		ServiceName: "metrics-test",
	})

	counter := m.NewCounterVec("widgets_total", "Number of widgets.", []string{"kind"})
	counter.WithLabelValues("round").Inc()

	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	var found bool
	for _, family := range families {
		if family.GetName() != "serde_widgets_total" {
			continue
		}
		found = true

		for _, metric := range family.GetMetric() {
			labels := map[string]string{}
			for _, pair := range metric.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			if labels["service"] != "metrics-test" {
				t.Errorf("expected service label %q, got %q", "metrics-test", labels["service"])
			}
			if labels["kind"] != "round" {
				t.Errorf("expected kind label %q, got %q", "round", labels["kind"])
			}
		}
	}
	if !found {
		t.Fatal("expected family serde_widgets_total in gather output")
	}
}

func TestHelperConstructorsRegister(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "metrics-test"})

	m.NewHistogramVec("latency_seconds", "Operation latency.", []string{"op"}, nil).
		WithLabelValues("fetch").Observe(0.25)
	m.NewGaugeVec("in_flight", "Operations in flight.", []string{"op"}).
		WithLabelValues("fetch").Set(3)

	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	names := map[string]bool{}
	for _, family := range families {
		names[family.GetName()] = true
	}
	for _, want := range []string{"latency_seconds", "in_flight"} {
		if !names[want] {
			t.Errorf("expected %s to be registered", want)
		}
	}
}

func TestFXModuleServesAndStops(t *testing.T) {
	ctx := context.Background()

	var m *Metrics
	var registerer prometheus.Registerer
	app := fxtest.New(t,
		FXModule,
		fx.Provide(
			func() Config {
				return Config{Address: "127.0.0.1:0", ServiceName: "metrics-test"}
			},
			logger.NewNop,
		),
		fx.Populate(&m, &registerer),
	)

	require.NoError(t, app.Start(ctx))
	require.NotNil(t, m)
	require.NotNil(t, registerer)
	require.NoError(t, app.Stop(ctx))
}
