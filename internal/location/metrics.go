package location

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var writesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "scheme_location_writes_total",
	Help: "Location writes by operation and result kind",
}, []string{"op", "result"})
