package worker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/glizzus/softtimer/internal/schedule"
)

// DueJob describes a scheduled task which has come due.
type DueJob struct {
	TaskID  string
	Name    string
	DueTime time.Time
	FiredAt time.Time
}

// Lateness reports how long after its due time the job fired.
func (j DueJob) Lateness() time.Duration {
	return j.FiredAt.Sub(j.DueTime)
}

type JobHandler interface {
	HandleJobs(ctx context.Context, jobs ...DueJob) error
}

// JobWork adapts h into schedule.Work which hands a DueJob named name to h
// each time the task runs.
func JobWork(h JobHandler, name string) schedule.Work {
	return func(ctx context.Context, s *schedule.Scheduler) error {
		job := DueJob{
			Name:    name,
			FiredAt: s.Now(),
		}
		if t, ok := schedule.TaskFromContext(ctx); ok {
			job.TaskID = t.ID()
			job.DueTime = t.Due()
		}

		if err := h.HandleJobs(ctx, job); err != nil {
			return fmt.Errorf("failed to handle job %s: %w", name, err)
		}
		return nil
	}
}

type PrintingJobHandler struct{}

func (h *PrintingJobHandler) HandleJobs(ctx context.Context, jobs ...DueJob) error {
	for _, job := range jobs {
		slog.InfoContext(
			ctx,
			"Handling due job",
			slog.String("taskID", job.TaskID),
			slog.String("jobName", job.Name),
			slog.String("dueAt", job.DueTime.Format("2006-01-02 15:04:05.000")),
			slog.Duration("lateness", job.Lateness()),
		)
	}
	return nil
}

// DefaultStream and DefaultGroup name the Redis stream due jobs are added to
// and the consumer group created for downstream readers.
const (
	DefaultStream = "timer_jobs"
	DefaultGroup  = "timer_consumers"
)

type RedisJobHandler struct {
	client *redis.Client
	stream string
}

// NewRedisJobHandler creates the stream and its consumer group if they do not
// exist yet. An empty stream name selects DefaultStream.
func NewRedisJobHandler(ctx context.Context, client *redis.Client, stream string) (*RedisJobHandler, error) {
	if stream == "" {
		stream = DefaultStream
	}

	err := client.XGroupCreateMkStream(ctx, stream, DefaultGroup, "$").Err()
	if err != nil && err != redis.Nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return nil, fmt.Errorf("failed to create stream %s: %w", stream, err)
	}

	return &RedisJobHandler{client: client, stream: stream}, nil
}

func (h *RedisJobHandler) HandleJobs(ctx context.Context, jobs ...DueJob) error {
	_, err := h.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, job := range jobs {
			pipe.XAdd(ctx, &redis.XAddArgs{
				Stream: h.stream,
				Values: map[string]any{
					"taskID":  job.TaskID,
					"jobName": job.Name,
					"dueAt":   job.DueTime.Format(time.RFC3339Nano),
					"firedAt": job.FiredAt.Format(time.RFC3339Nano),
				},
			})
		}
		return nil
	})
	return err
}

// MemoryJobHandler records every job it handles.
type MemoryJobHandler struct {
	mu   sync.Mutex
	jobs []DueJob
}

func NewMemoryJobHandler() *MemoryJobHandler {
	return &MemoryJobHandler{}
}

func (h *MemoryJobHandler) HandleJobs(ctx context.Context, jobs ...DueJob) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.jobs = append(h.jobs, jobs...)
	return nil
}

// Jobs returns a copy of the jobs handled so far.
func (h *MemoryJobHandler) Jobs() []DueJob {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]DueJob(nil), h.jobs...)
}

var (
	_ JobHandler = &PrintingJobHandler{}
	_ JobHandler = &RedisJobHandler{}
	_ JobHandler = &MemoryJobHandler{}
)
