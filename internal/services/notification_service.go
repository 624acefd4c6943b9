package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Bekarys04/CollabTask_Manager/internal/apperrors"
	"github.com/Bekarys04/CollabTask_Manager/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationService records and serves notifications. Delivery is pull
// only: clients poll GetUserNotifications, nothing is pushed.
type NotificationService struct {
	repo NotificationRepository
}

func NewNotificationService(repo NotificationRepository) *NotificationService {
	return &NotificationService{
		repo: repo,
	}
}

// CreateNotification logs a new notification for a user
func (s *NotificationService) CreateNotification(ctx context.Context, userID primitive.ObjectID, notifType, title, message string, targetID *primitive.ObjectID) error {
	notif := &models.Notification{
		UserID:   userID,
		Type:     notifType,
		Title:    title,
		Message:  message,
		Read:     false,
		TargetID: targetID,
	}
	return s.repo.CreateNotification(ctx, notif)
}

// GetUserNotifications returns all unexpired notifications for a user
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	return s.repo.GetUserNotifications(ctx, userID)
}

// MarkNotificationAsRead sets the "read" status of a notification to true
func (s *NotificationService) MarkNotificationAsRead(ctx context.Context, notifID primitive.ObjectID) error {
	return s.repo.MarkAsRead(ctx, notifID)
}

// NotifyTaskDueSoon records a deadline reminder for a task unless one was
// already recorded recently for the same task.
func (s *NotificationService) NotifyTaskDueSoon(ctx context.Context, task *models.Task) error {
	if task.Deadline == nil {
		return nil
	}

	// Create unique key per task (avoid spam)
	key := fmt.Sprintf("task_due_%s", task.ID.Hex())
	existing, err := s.repo.GetLatestNotificationByType(ctx, task.AssigneeID, key)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	if existing != nil && time.Since(existing.CreatedAt) < 12*time.Hour {
		return nil
	}

	message := fmt.Sprintf("Your task \"%s\" is due by %s.", task.Title, task.Deadline.Format("Jan 2"))
	if err := s.CreateNotification(ctx, task.AssigneeID, key, "Task Due Soon", message, &task.ID); err != nil {
		logrus.WithError(err).Warnf("Failed to send due soon notification for task %s", task.ID.Hex())
		return err
	}
	return nil
}

// DeleteExpiredNotifications purges notifications past their expiry.
// Called by cron.
func (s *NotificationService) DeleteExpiredNotifications(ctx context.Context) error {
	return s.repo.DeleteExpiredNotifications(ctx)
}
