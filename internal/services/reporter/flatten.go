package reporter

import (
	"strings"

	metrics "github.com/rcrowley/go-metrics"
)

type valueKind int

const (
	kindUnsupported valueKind = iota
	kindInt
	kindFloat
)

// gaugeValue is the tagged result of reading a gauge at the registry
// boundary: a 64-bit integer, a 64-bit float, or unsupported.
type gaugeValue struct {
	kind valueKind
	i    int64
	f    float64
}

// coerceGauge is the single place a gauge value is turned into a number.
// Anything outside the supported set yields an unsupported value, which
// callers skip silently.
func coerceGauge(m any) gaugeValue {
	switch v := m.(type) {
	case metrics.Gauge:
		return gaugeValue{kind: kindInt, i: v.Snapshot().Value()}
	case metrics.GaugeFloat64:
		return gaugeValue{kind: kindFloat, f: v.Snapshot().Value()}
	case int:
		return gaugeValue{kind: kindInt, i: int64(v)}
	case int8:
		return gaugeValue{kind: kindInt, i: int64(v)}
	case int16:
		return gaugeValue{kind: kindInt, i: int64(v)}
	case int32:
		return gaugeValue{kind: kindInt, i: int64(v)}
	case int64:
		return gaugeValue{kind: kindInt, i: v}
	case float32:
		return gaugeValue{kind: kindFloat, f: float64(v)}
	case float64:
		return gaugeValue{kind: kindFloat, f: v}
	}
	return gaugeValue{kind: kindUnsupported}
}

func (g gaugeValue) ok() bool {
	return g.kind != kindUnsupported
}

func (g gaugeValue) float64() float64 {
	switch g.kind {
	case kindInt:
		return float64(g.i)
	case kindFloat:
		return g.f
	default:
		return 0
	}
}

// joinName composes [prefix.]metricName.fieldSuffix, skipping empty parts.
func joinName(parts ...string) string {
	nonEmpty := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ".")
}
