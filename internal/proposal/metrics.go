package proposal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var pipelineTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "scheme_proposal_pipeline_total",
	Help: "Proposal writes by operation, final stage and error kind",
}, []string{"op", "stage", "result"})
