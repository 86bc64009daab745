package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueMetrics(t *testing.T) {
	t.Run("PacketsDispatched", func(t *testing.T) {
		before := testutil.ToFloat64(PacketsDispatched)
		PacketsDispatched.Inc()
		PacketsDispatched.Inc()
		assert.Equal(t, before+2, testutil.ToFloat64(PacketsDispatched))
	})

	t.Run("QueueSlotsReserved", func(t *testing.T) {
		before := testutil.ToFloat64(QueueSlotsReserved)
		QueueSlotsReserved.Add(4)
		assert.Equal(t, before+4, testutil.ToFloat64(QueueSlotsReserved))
	})

	t.Run("DoorbellRings", func(t *testing.T) {
		before := testutil.ToFloat64(DoorbellRings)
		DoorbellRings.Inc()
		assert.Equal(t, before+1, testutil.ToFloat64(DoorbellRings))
	})
}

func TestMemoryMetrics(t *testing.T) {
	t.Run("MemoryAllocatedBytes", func(t *testing.T) {
		before := testutil.ToFloat64(MemoryAllocatedBytes)
		MemoryAllocatedBytes.Add(4096)
		assert.Equal(t, before+4096, testutil.ToFloat64(MemoryAllocatedBytes))
		MemoryAllocatedBytes.Sub(4096)
		assert.Equal(t, before, testutil.ToFloat64(MemoryAllocatedBytes))
	})

	t.Run("MemoryAllocations", func(t *testing.T) {
		before := testutil.ToFloat64(MemoryAllocations.WithLabelValues("size"))
		MemoryAllocations.WithLabelValues("size").Inc()
		assert.Equal(t, before+1, testutil.ToFloat64(MemoryAllocations.WithLabelValues("size")))
	})
}

func TestSignalMetrics(t *testing.T) {
	assert.NotPanics(t, func() {
		SignalWaitDuration.WithLabelValues("eq").Observe(0.001)
	})
	before := testutil.ToFloat64(SignalWaitUnsatisfied.WithLabelValues("eq"))
	SignalWaitUnsatisfied.WithLabelValues("eq").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(SignalWaitUnsatisfied.WithLabelValues("eq")))
}

func TestMetricsRegistration(t *testing.T) {
	// Registering again must report AlreadyRegistered, proving promauto did it.
	metrics := []prometheus.Collector{
		PacketsDispatched,
		QueueSlotsReserved,
		DoorbellRings,
		QueueBackpressureWaits,
		SignalWaitDuration,
		SignalWaitUnsatisfied,
		MemoryAllocatedBytes,
		MemoryAllocations,
		SoftDevicePackets,
		SoftDeviceWorkgroups,
		SoftDeviceKernelDuration,
	}

	for _, metric := range metrics {
		err := prometheus.Register(metric)
		var already prometheus.AlreadyRegisteredError
		assert.ErrorAs(t, err, &already)
	}
}

func TestHandler(t *testing.T) {
	PacketsDispatched.Inc()
	before := testutil.ToFloat64(EndpointResponses.WithLabelValues("/metrics", "200"))

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "hsa_packets_dispatched_total"))
	assert.Equal(t, before+1, testutil.ToFloat64(EndpointResponses.WithLabelValues("/metrics", "200")))
}

func TestMiddlewareCapturesStatus(t *testing.T) {
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}), "/teapot")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teapot", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, float64(1), testutil.ToFloat64(EndpointResponses.WithLabelValues("/teapot", "418")))
}

func BenchmarkMetricsObservation(b *testing.B) {
	b.Run("ObserveWait", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			SignalWaitDuration.WithLabelValues("eq").Observe(float64(i%1000) / 1e6)
		}
	})

	b.Run("IncCounter", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			PacketsDispatched.Inc()
		}
	})
}
