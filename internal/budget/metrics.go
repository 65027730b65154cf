package budget

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var writesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "scheme_budget_writes_total",
	Help: "Budget head writes by operation and outcome",
}, []string{"op", "result"})
