package schedule

import "github.com/glizzus/softtimer/internal/metrics"

// Names of metrics which are referenced here and in tests.
const (
	tasksScheduledTotal = "softtimer_tasks_scheduled_total"
	tasksExecutedTotal  = "softtimer_tasks_executed_total"
	tasksFailedTotal    = "softtimer_tasks_failed_total"
	queueLength         = "softtimer_queue_length"
	taskLatenessSeconds = "softtimer_task_lateness_seconds"
)

// Metrics contains metrics for a Scheduler.
type Metrics struct {
	TasksScheduledTotal metrics.Counter
	TasksExecutedTotal  metrics.Counter
	TasksFailedTotal    metrics.Counter
	QueueLength         metrics.Gauge
	TaskLatenessSeconds metrics.Gauge
}

// NewMetrics produces a Metrics structure which will register its metrics to
// the specified metrics.Interface. If m is nil, metrics are discarded.
func NewMetrics(m metrics.Interface) *Metrics {
	if m == nil {
		m = metrics.Discard()
	}

	return &Metrics{
		TasksScheduledTotal: m.Counter(
			tasksScheduledTotal,
			"The total number of tasks submitted to the scheduler.",
		),
		TasksExecutedTotal: m.Counter(
			tasksExecutedTotal,
			"The total number of tasks the scheduler has executed.",
		),
		TasksFailedTotal: m.Counter(
			tasksFailedTotal,
			"The total number of executed tasks which returned an error or panicked.",
			"reason",
		),
		QueueLength: m.Gauge(
			queueLength,
			"The number of tasks waiting to become due.",
		),
		TaskLatenessSeconds: m.Gauge(
			taskLatenessSeconds,
			"How long after its due time the most recent task started executing.",
		),
	}
}
