package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "taskscheduler"

// Metrics holds all task scheduler metric instruments.
type Metrics struct {
	TasksCreated   metric.Int64Counter
	TasksCompleted metric.Int64Counter
	TasksDeleted   metric.Int64Counter
	PendingPolls   metric.Int64Counter
	PendingDue     metric.Int64Histogram
}

// NewMetrics creates all metric instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	return newMetrics(otel.Meter(meterName))
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.TasksCreated, err = meter.Int64Counter("taskscheduler.tasks.created",
		metric.WithDescription("Number of tasks created"))
	if err != nil {
		return nil, err
	}

	m.TasksCompleted, err = meter.Int64Counter("taskscheduler.tasks.completed",
		metric.WithDescription("Number of tasks marked completed"))
	if err != nil {
		return nil, err
	}

	m.TasksDeleted, err = meter.Int64Counter("taskscheduler.tasks.deleted",
		metric.WithDescription("Number of delete requests"))
	if err != nil {
		return nil, err
	}

	m.PendingPolls, err = meter.Int64Counter("taskscheduler.tasks.pending_polls",
		metric.WithDescription("Number of pending-task queries"))
	if err != nil {
		return nil, err
	}

	m.PendingDue, err = meter.Int64Histogram("taskscheduler.tasks.pending_due",
		metric.WithDescription("Pending tasks returned per query"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
