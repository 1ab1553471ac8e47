package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/glizzus/softtimer/internal/config"
	"github.com/glizzus/softtimer/internal/generator"
	"github.com/glizzus/softtimer/internal/schedule"
	"github.com/glizzus/softtimer/internal/worker"
)

// runAfter schedules count one-shot jobs with delays step*count down to step,
// so that later submissions come due first, and waits for all of them.
func runAfter(ctx context.Context, step time.Duration, count int) ([]worker.DueJob, error) {
	h := worker.NewMemoryJobHandler()

	var wg sync.WaitGroup
	s := schedule.New(schedule.Config{
		Logger: slog.Default(),
		IDs:    &generator.SequenceGenerator{Prefix: "job"},
	})
	defer func() {
		if err := s.Stop(context.Background()); err != nil {
			slog.Error("failed to stop scheduler", slog.Any("error", err))
		}
	}()

	for i := range count {
		delay := time.Duration(count-i) * step
		work := worker.JobWork(h, fmt.Sprintf("after-%s", delay))

		wg.Add(1)
		_, err := s.Schedule(func(ctx context.Context, s *schedule.Scheduler) error {
			defer wg.Done()
			return work(ctx, s)
		}, delay)
		if err != nil {
			wg.Done()
			return nil, fmt.Errorf("failed to schedule job: %w", err)
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return h.Jobs(), nil
	case <-ctx.Done():
		return h.Jobs(), ctx.Err()
	}
}

func main() {
	if err := config.LoadEnv(); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to load .env file: %v", err)
	}

	app := &cli.App{
		Name:        "softtimer-cli",
		Description: "A development CLI tool for exercising the timer",
		Commands: []*cli.Command{
			{
				Name:  "next",
				Usage: "Print the upcoming run times of a cron expression",
				Action: func(c *cli.Context) error {
					times, err := schedule.NextRunTimes(c.String("cron"), c.Int("n"))
					if err != nil {
						return cli.Exit("Failed to compute run times: "+err.Error(), 1)
					}

					for _, t := range times {
						fmt.Println(t.Format(time.RFC3339))
					}
					return nil
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "cron",
						Usage:    "Cron expression to evaluate (e.g., '*/5 * * * *')",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "n",
						Usage: "Number of run times to print",
						Value: 5,
					},
				},
			},
			{
				Name:  "after",
				Usage: "Schedule jobs in reverse due order and report when they ran",
				Action: func(c *cli.Context) error {
					count := c.Int("count")
					if count <= 0 {
						return cli.Exit("Please provide a positive --count", 1)
					}

					jobs, err := runAfter(c.Context, c.Duration("step"), count)
					if err != nil {
						return cli.Exit("Failed to run jobs: "+err.Error(), 1)
					}

					for _, job := range jobs {
						log.Printf("%s (%s) ran %v late", job.Name, job.TaskID, job.Lateness())
					}
					return nil
				},
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "step",
						Usage: "Delay between consecutive due times",
						Value: 100 * time.Millisecond,
					},
					&cli.IntFlag{
						Name:  "count",
						Usage: "Number of jobs to schedule",
						Value: 5,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Error running CLI: %v", err)
	}
}
