// Package schedule provides a delayed-task scheduler and cron expression helpers.
//
// A Scheduler runs submitted Work on a single background goroutine, no earlier
// than the requested delay. Tasks are kept in a min-heap ordered by due time;
// the worker sleeps until the earliest task is due and is woken early whenever
// a new task is submitted. Task bodies run one at a time, so a slow task delays
// every task behind it.
//
// Every and Cron build recurring Work which reschedules itself through the
// Scheduler it is handed. Cron functions parse and validate cron expressions
// and compute upcoming run times.
//
// The queue is unbounded and there is no backpressure on Schedule.
package schedule
