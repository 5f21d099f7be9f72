// Package hostmetrics samples Go runtime stats and host CPU/RAM usage
// into a go-metrics registry.
package hostmetrics

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	metrics "github.com/rcrowley/go-metrics"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"
)

// Collector periodically updates gauges, counters, and a GC-pause
// histogram on the given registry.
type Collector struct {
	reg  metrics.Registry
	log  *zap.Logger
	stop chan struct{}
	wg   sync.WaitGroup
}

// New creates a Collector feeding the given registry.
func New(reg metrics.Registry, log *zap.Logger) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{
		reg:  reg,
		log:  log,
		stop: make(chan struct{}),
	}
}

// Start launches background goroutines that sample runtime and host
// metrics at the given interval until Stop is called.
func (c *Collector) Start(interval time.Duration) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-c.stop:
				return
			case <-t.C:
				c.sampleRuntime()
			}
		}
	}()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-c.stop:
				return
			case <-t.C:
				c.sampleHost()
			}
		}
	}()
}

// Stop signals every sampling goroutine to halt and waits for them.
func (c *Collector) Stop() {
	select {
	case <-c.stop:
	default:
		close(c.stop)
	}
	c.wg.Wait()
}

func (c *Collector) sampleRuntime() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	c.gauge("Alloc", ms.Alloc)
	c.gauge("BuckHashSys", ms.BuckHashSys)
	c.gauge("Frees", ms.Frees)
	c.gauge("GCSys", ms.GCSys)
	c.gauge("HeapAlloc", ms.HeapAlloc)
	c.gauge("HeapIdle", ms.HeapIdle)
	c.gauge("HeapInuse", ms.HeapInuse)
	c.gauge("HeapObjects", ms.HeapObjects)
	c.gauge("HeapReleased", ms.HeapReleased)
	c.gauge("HeapSys", ms.HeapSys)
	c.gauge("Mallocs", ms.Mallocs)
	c.gauge("NextGC", ms.NextGC)
	c.gauge("NumGC", uint64(ms.NumGC))
	c.gauge("PauseTotalNs", ms.PauseTotalNs)
	c.gauge("StackInuse", ms.StackInuse)
	c.gauge("StackSys", ms.StackSys)
	c.gauge("Sys", ms.Sys)
	c.gauge("TotalAlloc", ms.TotalAlloc)
	metrics.GetOrRegisterGaugeFloat64("GCCPUFraction", c.reg).Update(ms.GCCPUFraction)

	if ms.NumGC > 0 {
		last := ms.PauseNs[(ms.NumGC+255)%256]
		c.histogram("GCPauseNs").Update(int64(last))
	}

	metrics.GetOrRegisterCounter("PollCount", c.reg).Inc(1)
}

func (c *Collector) sampleHost() {
	if vm, err := mem.VirtualMemory(); err == nil && vm != nil {
		c.gauge("TotalMemory", vm.Total)
		c.gauge("FreeMemory", vm.Free)
	} else if err != nil {
		c.log.Debug("host memory sample failed", zap.Error(err))
	}
	if pct, err := cpu.Percent(0, true); err == nil {
		for i, p := range pct {
			metrics.GetOrRegisterGaugeFloat64(fmt.Sprintf("CPUutilization%d", i+1), c.reg).Update(p)
		}
	} else {
		c.log.Debug("host cpu sample failed", zap.Error(err))
	}
}

func (c *Collector) gauge(name string, v uint64) {
	metrics.GetOrRegisterGauge(name, c.reg).Update(int64(v))
}

func (c *Collector) histogram(name string) metrics.Histogram {
	return metrics.GetOrRegisterHistogram(name, c.reg, metrics.NewExpDecaySample(1028, 0.015))
}
