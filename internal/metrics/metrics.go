package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EndpointResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hsa_endpoint_responses_total",
		Help: "The total number of exporter endpoint responses",
	}, []string{"endpoint", "status_code"})

	// Queue metrics
	PacketsDispatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hsa_packets_dispatched_total",
		Help: "Total number of kernel dispatch packets published",
	})

	QueueSlotsReserved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hsa_queue_slots_reserved_total",
		Help: "Total number of queue slots reserved through the write index",
	})

	DoorbellRings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hsa_doorbell_rings_total",
		Help: "Total number of doorbell signal stores",
	})

	QueueBackpressureWaits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hsa_queue_backpressure_waits_total",
		Help: "Number of dispatches that had to wait for the device to free a slot",
	})

	// Signal metrics
	SignalWaitDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hsa_signal_wait_duration_seconds",
		Help:    "Time spent blocked in signal waits",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 12), // 10us to ~40s
	}, []string{"condition"})

	SignalWaitUnsatisfied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hsa_signal_wait_unsatisfied_total",
		Help: "Signal waits that returned without the condition holding",
	}, []string{"condition"})

	// Memory metrics
	MemoryAllocatedBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hsa_memory_allocated_bytes",
		Help: "Bytes currently allocated from memory regions",
	})

	MemoryAllocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hsa_memory_allocations_total",
		Help: "Memory allocation attempts by result",
	}, []string{"result"})

	// Software device metrics
	SoftDevicePackets = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hsa_soft_device_packets_total",
		Help: "Packets processed by the software device by outcome",
	}, []string{"status"})

	SoftDeviceWorkgroups = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hsa_soft_device_workgroups_total",
		Help: "Workgroups executed by the software device",
	})

	SoftDeviceKernelDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hsa_soft_device_kernel_duration_ms",
		Help:    "Duration of software device kernel execution in milliseconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 20), // 10us to ~5s
	})
)
