package txn

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// retriesTotal counts retried units of work by operation and reason.
var retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "scheme_tx_retries_total",
	Help: "Transaction attempts retried, by operation and reason",
}, []string{"op", "reason"})
