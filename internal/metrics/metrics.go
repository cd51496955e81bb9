package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "pvsim_"

	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	simulationsTotal   *prometheus.CounterVec
	simulationLatency  *prometheus.HistogramVec
	simulatedHours     prometheus.Counter
	sweepRunsTotal     prometheus.Counter
	datasetCacheLookup *prometheus.CounterVec
)

// Init registers the simulator metrics with the default registerer.
func Init() {
	InitWith(prometheus.DefaultRegisterer)
}

// InitWith registers the simulator metrics once with reg.
func InitWith(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		simulationsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "simulations_total",
				Help: "Total dispatch simulations by source and result",
			},
			[]string{"source", "result"},
		)
		simulationLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "simulation_duration_seconds",
				Help:    "Dispatch simulation wall time in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		)
		simulatedHours = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "simulated_hours_total",
			Help: "Hours of input series processed by the dispatch engine",
		})
		sweepRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "sweep_runs_total",
			Help: "Parameter combinations evaluated by sweeps",
		})
		datasetCacheLookup = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "dataset_cache_lookups_total",
				Help: "Dataset cache lookups by outcome",
			},
			[]string{"outcome"},
		)
		reg.MustRegister(simulationsTotal, simulationLatency, simulatedHours, sweepRunsTotal, datasetCacheLookup)
	})
}

// ObserveSimulation records one finished run. It is a no-op before Init.
func ObserveSimulation(source string, hours int, d time.Duration, err error) {
	if simulationsTotal == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	simulationsTotal.WithLabelValues(source, result).Inc()
	simulationLatency.WithLabelValues(source).Observe(d.Seconds())
	if err == nil {
		simulatedHours.Add(float64(hours))
	}
}

// ObserveSweepRun counts one evaluated sweep combination.
func ObserveSweepRun() {
	if sweepRunsTotal == nil {
		return
	}
	sweepRunsTotal.Inc()
}

// ObserveCacheLookup records a dataset cache hit or miss.
func ObserveCacheLookup(hit bool) {
	if datasetCacheLookup == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	datasetCacheLookup.WithLabelValues(outcome).Inc()
}
