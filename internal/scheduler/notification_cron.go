package cron

import (
	"context"

	"github.com/Bekarys04/CollabTask_Manager/internal/jobs"
	"github.com/Bekarys04/CollabTask_Manager/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartNotificationCronJobs schedules the deadline scan and notification
// cleanup.
func StartNotificationCronJobs(notifier *jobs.DeadlineNotifier, notificationService *services.NotificationService) {
	c := cron.New()

	// Task deadline reminders
	c.AddFunc("@hourly", func() {
		if err := notifier.RunScan(context.Background()); err != nil {
			logrus.WithError(err).Error("Deadline scan failed")
		}
	})

	// Purge expired notifications
	c.AddFunc("0 0 * * *", func() {
		if err := notificationService.DeleteExpiredNotifications(context.Background()); err != nil {
			logrus.WithError(err).Error("DeleteExpiredNotifications failed")
		}
	})

	c.Start()
}
