package services

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jacksonlee411/orgtree/modules/orgtree/presentation/renderer"
)

var (
	orgTreeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orgtree",
		Subsystem: "tree",
		Name:      "toggles_total",
		Help:      "Total number of expand/collapse toggles broken down by action.",
	}, []string{"action"})

	orgTreeSelections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orgtree",
		Subsystem: "tree",
		Name:      "selections_total",
		Help:      "Total number of node selections broken down by result.",
	}, []string{"result"})

	orgTreeRenderErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orgtree",
		Subsystem: "render",
		Name:      "errors_total",
		Help:      "Total number of tree render failures broken down by reason.",
	}, []string{"reason"})

	orgTreeRenderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "orgtree",
		Subsystem: "render",
		Name:      "duration_seconds",
		Help:      "Time spent rendering the visible tree.",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	})

	orgTreeCacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orgtree",
		Subsystem: "cache",
		Name:      "requests_total",
		Help:      "Total number of forest cache lookups broken down by hit/miss.",
	}, []string{"result"})
)

func recordCacheRequest(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	orgTreeCacheRequests.WithLabelValues(result).Inc()
}

func recordToggle(expanded bool) {
	action := "collapse"
	if expanded {
		action = "expand"
	}
	orgTreeToggles.WithLabelValues(action).Inc()
}

func recordSelection(err error) {
	result := "ok"
	if err != nil {
		result = "not_found"
	}
	orgTreeSelections.WithLabelValues(result).Inc()
}

func recordRender(start time.Time, err error) {
	orgTreeRenderDuration.Observe(time.Since(start).Seconds())
	if err == nil {
		return
	}
	reason := "other"
	switch {
	case errors.Is(err, renderer.ErrCycleDetected):
		reason = "cycle"
	case errors.Is(err, renderer.ErrDepthLimitExceeded):
		reason = "depth"
	}
	orgTreeRenderErrors.WithLabelValues(reason).Inc()
}
