package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	initOnce sync.Once

	submissionsCounter *prometheus.CounterVec
	sensorReadsCounter *prometheus.CounterVec
)

// Init registers metrics on the default Prometheus registry exactly once.
func Init() {
	initOnce.Do(func() {
		submissionsCounter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sample_submissions_total",
				Help: "Total number of data-entry submissions by outcome.",
			},
			[]string{"outcome"},
		)
		sensorReadsCounter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sensor_reads_total",
				Help: "Total number of sensor endpoint reads by source mode.",
			},
			[]string{"mode"},
		)
		prometheus.MustRegister(submissionsCounter, sensorReadsCounter)
	})
}

// ObserveSubmission counts one submission: accepted, rejected or failed.
func ObserveSubmission(outcome string) {
	Init()
	submissionsCounter.WithLabelValues(outcome).Inc()
}

// ObserveSensorRead counts one /api/sensor_data answer.
func ObserveSensorRead(mode string) {
	Init()
	sensorReadsCounter.WithLabelValues(mode).Inc()
}
