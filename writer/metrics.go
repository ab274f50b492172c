package writer

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Drop reasons reported in diagnostics and metrics.
const (
	DropDegenerate   = "degenerate"
	DropSinglePoint  = "single_point"
	DropTooManyPts   = "too_many_points"
	DropInvalidLayer = "invalid_layer"
	DropNoPortLayer  = "no_port_layer"
)

// Metrics counts writer activity. A nil *Metrics records nothing.
type Metrics struct {
	writes  *prometheus.CounterVec
	records *prometheus.CounterVec
	dropped *prometheus.CounterVec
	renamed prometheus.Counter
	bytes   prometheus.Counter
}

// NewMetrics creates the writer collectors and registers them with reg
// when it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gdsii_writes_total",
			Help: "GDSII library writes by result.",
		}, []string{"result"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gdsii_records_total",
			Help: "GDSII records written by record type.",
		}, []string{"type"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gdsii_shapes_dropped_total",
			Help: "Shapes and labels omitted from the stream by reason.",
		}, []string{"reason"}),
		renamed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gdsii_cells_renamed_total",
			Help: "Cells written under a name other than their own.",
		}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gdsii_bytes_written_total",
			Help: "Bytes written including block padding.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.writes, m.records, m.dropped, m.renamed, m.bytes)
	}
	return m
}

func (m *Metrics) drop(reason string) {
	if m == nil {
		return
	}
	m.dropped.WithLabelValues(reason).Inc()
}

func (m *Metrics) record(name string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.records.WithLabelValues(name).Add(float64(n))
}

func (m *Metrics) finish(res *Result, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.writes.WithLabelValues("error").Inc()
		return
	}
	m.writes.WithLabelValues("ok").Inc()
	m.renamed.Add(float64(res.Renamed))
	m.bytes.Add(float64(res.Bytes))
}
