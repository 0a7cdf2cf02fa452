package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewWithoutRegistryDoesNotPanic(t *testing.T) {
	m := New(nil)
	m.ConnectionsAccepted.Inc()
	m.CommandsDispatched.WithLabelValues("PRIVMSG").Inc()
}

func TestCountersRegisterAndIncrement(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ConnectionsAccepted.Inc()
	m.ConnectionsAccepted.Inc()

	metricFamilies, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %s", err)
	}

	var found *dto.MetricFamily
	for _, mf := range metricFamilies {
		if mf.GetName() == "emberd_connections_accepted_total" {
			found = mf
		}
	}
	if found == nil {
		t.Fatalf("expected emberd_connections_accepted_total to be registered")
	}
	if got := found.GetMetric()[0].GetCounter().GetValue(); got != 2 {
		t.Fatalf("expected counter value 2, got %v", got)
	}
}
