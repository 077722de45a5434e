package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arch4u_parsing_seconds",
		Help:    "Time spent parsing a Java compilation unit.",
		Buckets: prometheus.DefBuckets,
	})

	UnitsParsedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arch4u_units_parsed_total",
		Help: "Total number of compilation units parsed.",
	})

	ParseErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arch4u_parse_errors_total",
		Help: "Total number of files that failed to parse.",
	})

	AnalysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arch4u_analysis_seconds",
		Help:    "Time spent running the rule engine over one unit.",
		Buckets: prometheus.DefBuckets,
	})

	ViolationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arch4u_violations_total",
		Help: "Total number of rule violations reported.",
	}, []string{"rule"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arch4u_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
