package services

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// ReminderSender is satisfied by CredentialService.
type ReminderSender interface {
	SendDueReminders(ctx context.Context) (int, error)
}

// StartReminderJob runs sender every interval until the returned scheduler
// is stopped. Runs never overlap.
func StartReminderJob(sender ReminderSender, interval time.Duration, log *zap.Logger) (*gocron.Scheduler, error) {
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()

	_, err := scheduler.Every(interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()

		log.Debug("running credential reminder check")
		if _, err := sender.SendDueReminders(ctx); err != nil {
			log.Error("credential reminder check failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, err
	}

	scheduler.StartAsync()
	log.Info("credential reminder job started", zap.Duration("interval", interval))
	return scheduler, nil
}
