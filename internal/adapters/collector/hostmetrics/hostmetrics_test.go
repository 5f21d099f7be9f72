package hostmetrics

import (
	"testing"
	"time"

	metrics "github.com/rcrowley/go-metrics"
)

func TestCollector_SampleRuntime(t *testing.T) {
	reg := metrics.NewRegistry()
	c := New(reg, nil)

	c.sampleRuntime()
	c.sampleRuntime()

	alloc, ok := reg.Get("Alloc").(metrics.Gauge)
	if !ok {
		t.Fatal("Alloc gauge not registered")
	}
	if alloc.Value() <= 0 {
		t.Errorf("Alloc: got %d, want > 0", alloc.Value())
	}

	polls, ok := reg.Get("PollCount").(metrics.Counter)
	if !ok {
		t.Fatal("PollCount counter not registered")
	}
	if polls.Count() != 2 {
		t.Errorf("PollCount: got %d, want 2", polls.Count())
	}

	if _, ok := reg.Get("GCCPUFraction").(metrics.GaugeFloat64); !ok {
		t.Error("GCCPUFraction gauge not registered")
	}
}

func TestCollector_StartStop(t *testing.T) {
	reg := metrics.NewRegistry()
	c := New(reg, nil)

	c.Start(5 * time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	c.Stop()
	c.Stop() // safe to call again

	if reg.Get("Alloc") == nil {
		t.Error("expected runtime gauges after sampling window")
	}
}
