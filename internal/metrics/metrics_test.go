package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveSimulation(t *testing.T) {
	InitWith(prometheus.NewRegistry())

	ObserveSimulation("test", 24, 10*time.Millisecond, nil)
	ObserveSimulation("test", 48, time.Millisecond, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(simulationsTotal.WithLabelValues("test", ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(simulationsTotal.WithLabelValues("test", ResultError)))
	assert.Equal(t, 24.0, testutil.ToFloat64(simulatedHours))

	ObserveCacheLookup(true)
	ObserveCacheLookup(false)
	ObserveCacheLookup(false)
	assert.Equal(t, 1.0, testutil.ToFloat64(datasetCacheLookup.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(datasetCacheLookup.WithLabelValues("miss")))

	before := testutil.ToFloat64(sweepRunsTotal)
	ObserveSweepRun()
	assert.Equal(t, before+1, testutil.ToFloat64(sweepRunsTotal))
}
