package services

import (
	"context"
	"time"

	"github.com/Bekarys04/CollabTask_Manager/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The services talk to storage through these interfaces. The mongo-backed
// implementations live in internal/repository; tests substitute in-memory
// fakes.

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByVerifyToken(ctx context.Context, token string) (*models.User, error)
	GetUserByResetToken(ctx context.Context, token string) (*models.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) error
	SearchUsers(ctx context.Context, query string) ([]models.PublicUser, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	GetAllUsers(ctx context.Context) ([]models.User, error)
}

type CollaborationRepository interface {
	CreateRequest(ctx context.Context, req *models.CollaborationRequest) (*models.CollaborationRequest, error)
	GetRequestByID(ctx context.Context, id primitive.ObjectID) (*models.CollaborationRequest, error)
	AcceptPending(ctx context.Context, id primitive.ObjectID) (*models.CollaborationRequest, error)
	GetRequestsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.CollaborationRequest, error)
	GetAcceptedByUser(ctx context.Context, userID primitive.ObjectID) ([]models.CollaborationRequest, error)
	GetAcceptedByPair(ctx context.Context, a, b primitive.ObjectID) (*models.CollaborationRequest, error)
}

type TaskRepository interface {
	CreateTask(ctx context.Context, task *models.Task) (*models.Task, error)
	GetTaskByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	GetTasksByParticipant(ctx context.Context, userID primitive.ObjectID) ([]models.Task, error)
	GetTasksByAssignee(ctx context.Context, userID primitive.ObjectID) ([]models.Task, error)
	GetTasksDueBetween(ctx context.Context, from, to time.Time) ([]models.Task, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.TaskStatus, completedAt *time.Time) (*models.Task, error)
	DeleteTask(ctx context.Context, id primitive.ObjectID) error
}

type NotificationRepository interface {
	CreateNotification(ctx context.Context, notif *models.Notification) error
	GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id primitive.ObjectID) error
	GetLatestNotificationByType(ctx context.Context, userID primitive.ObjectID, notifType string) (*models.Notification, error)
	DeleteExpiredNotifications(ctx context.Context) error
}

// EmailSender delivers account emails. pkg/email provides the SMTP
// implementation.
type EmailSender interface {
	Send(to, subject, body string) error
}
