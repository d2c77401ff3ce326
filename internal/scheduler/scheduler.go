// Package scheduler runs housekeeping jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Job is one named housekeeping task.
type Job struct {
	Name string
	// Spec is a cron expression or descriptor such as "@every 10m".
	Spec string
	Run  func()
}

// Run schedules jobs and blocks until ctx is done, then waits for running
// jobs to finish. An invalid Spec fails before anything is scheduled.
func Run(ctx context.Context, log *slog.Logger, jobs ...Job) error {
	c := cron.New()
	for _, j := range jobs {
		j := j
		if _, err := c.AddFunc(j.Spec, func() {
			log.Debug("scheduler: running job", "job", j.Name)
			j.Run()
		}); err != nil {
			return fmt.Errorf("scheduler: job %q: invalid spec %q: %w", j.Name, j.Spec, err)
		}
		log.Info("scheduler: added job", "job", j.Name, "spec", j.Spec)
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
