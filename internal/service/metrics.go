package service

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "github.com/vipioko/vaxdog-commerce/pkg/errors"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commerce_operations_total",
			Help: "Total number of commerce state operations",
		},
		[]string{"operation", "outcome"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "commerce_operation_duration_seconds",
			Help:    "Commerce state operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "commerce_active_sessions",
			Help: "Number of sessions currently held in memory",
		},
	)
)

// outcomeLabel maps an operation result to the metric outcome label.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, apperrors.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, apperrors.ErrStockExceeded):
		return "stock_exceeded"
	case errors.Is(err, apperrors.ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, apperrors.ErrPersistence):
		return "persistence_failure"
	default:
		return "error"
	}
}

func recordOperation(operation string, start time.Time, err error) {
	operationsTotal.WithLabelValues(operation, outcomeLabel(err)).Inc()
	operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
