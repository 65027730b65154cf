package sequence

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var allocationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "scheme_sequence_allocations_total",
	Help: "Running numbers handed out, by sequence kind and allocator",
}, []string{"kind", "allocator"})
