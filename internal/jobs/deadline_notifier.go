package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/Bekarys04/CollabTask_Manager/internal/services"
	"github.com/sirupsen/logrus"
)

// DeadlineNotifier records reminders for tasks whose deadline falls in the
// next 24 hours. It only writes notification records; clients pick them up
// by polling.
type DeadlineNotifier struct {
	TaskRepo            services.TaskRepository
	NotificationService *services.NotificationService
}

// NewDeadlineNotifier creates a new instance of DeadlineNotifier
func NewDeadlineNotifier(taskRepo services.TaskRepository, notifService *services.NotificationService) *DeadlineNotifier {
	return &DeadlineNotifier{
		TaskRepo:            taskRepo,
		NotificationService: notifService,
	}
}

// RunScan checks for tasks due in the next 24h and records reminders.
func (d *DeadlineNotifier) RunScan(ctx context.Context) error {
	now := time.Now()
	tomorrow := now.Add(24 * time.Hour)

	tasks, err := d.TaskRepo.GetTasksDueBetween(ctx, now, tomorrow)
	if err != nil {
		return fmt.Errorf("failed to fetch due tasks: %v", err)
	}

	for i := range tasks {
		if err := d.NotificationService.NotifyTaskDueSoon(ctx, &tasks[i]); err != nil {
			logrus.WithError(err).Warnf("Failed to notify for task %s", tasks[i].ID.Hex())
		}
	}

	logrus.WithField("count", len(tasks)).Info("Deadline scan completed")
	return nil
}
