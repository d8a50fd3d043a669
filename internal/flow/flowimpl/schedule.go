package flowimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// ScheduleAutoCreate sets up the optional daily job that materializes a
// note-only entry for the current day. Disabled unless an auto-create hour
// is configured.
func (f *FlowImpl) ScheduleAutoCreate(ctx context.Context) error {
	hour := f.Config.Vault.AutoCreateHour
	minute := f.Config.Vault.AutoCreateMinute
	if hour < 0 {
		f.Logger.Info("Daily auto-create is disabled")
		return nil
	}

	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.Local))
	if err != nil {
		return fmt.Errorf("failed to create auto-create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DailyJob(
			1,
			gocron.NewAtTimes(gocron.NewAtTime(uint(hour), uint(minute), 0)),
		),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				f.Logger.Info("Context cancelled, stopping auto-create job")
				return
			}

			taskCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			defer cancel()

			if err := f.CreateToday(taskCtx); err != nil {
				f.Logger.Error("Auto-create run failed", "error", err)
				f.Telegram.SendMessageToUser("Could not create today's scrapbook entry: " + err.Error())
				return
			}
			f.Telegram.SendMessageToUser("Created today's scrapbook entry.")
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule auto-create: %w", err)
	}

	scheduler.Start()
	f.Logger.Info("Daily auto-create scheduled", "hour", hour, "minute", minute)

	go func() {
		<-ctx.Done()
		f.Logger.Info("Stopping auto-create scheduler")
		if err := scheduler.Shutdown(); err != nil {
			f.Logger.Error("Failed to shut down auto-create scheduler", "error", err)
		}
	}()

	return nil
}
