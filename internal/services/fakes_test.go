package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Bekarys04/CollabTask_Manager/internal/apperrors"
	"github.com/Bekarys04/CollabTask_Manager/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes. They mirror the mongo repositories' error
// behavior, including the unique pair index on live collaboration
// requests.

type fakeUserRepo struct {
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *fakeUserRepo) addUser(username, email string) *models.User {
	user := &models.User{
		ID:         primitive.NewObjectID(),
		Username:   username,
		Email:      email,
		Role:       "user",
		IsVerified: true,
	}
	r.users[user.ID] = user
	return user
}

func (r *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return nil, fmt.Errorf("%w: username already taken", apperrors.ErrConflict)
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, fmt.Errorf("%w: user", apperrors.ErrNotFound)
}

func (r *fakeUserRepo) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", apperrors.ErrNotFound, id.Hex())
	}
	return user, nil
}

func (r *fakeUserRepo) GetUserByVerifyToken(ctx context.Context, token string) (*models.User, error) {
	for _, user := range r.users {
		if user.VerifyToken == token && token != "" {
			return user, nil
		}
	}
	return nil, fmt.Errorf("%w: verification token", apperrors.ErrNotFound)
}

func (r *fakeUserRepo) GetUserByResetToken(ctx context.Context, token string) (*models.User, error) {
	for _, user := range r.users {
		if user.ResetToken == token && token != "" {
			return user, nil
		}
	}
	return nil, fmt.Errorf("%w: reset token", apperrors.ErrNotFound)
}

func (r *fakeUserRepo) UpdateUser(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) error {
	user, ok := r.users[id]
	if !ok {
		return fmt.Errorf("%w: user %s", apperrors.ErrNotFound, id.Hex())
	}
	if v, ok := update["is_verified"]; ok {
		user.IsVerified = v.(bool)
	}
	if v, ok := update["verify_token"]; ok {
		user.VerifyToken = v.(string)
	}
	if v, ok := update["reset_token"]; ok {
		user.ResetToken = v.(string)
	}
	if v, ok := update["reset_token_exp"]; ok {
		user.ResetTokenExp = v.(time.Time)
	}
	if v, ok := update["hashed_password"]; ok {
		user.HashedPassword = v.(string)
	}
	return nil
}

func (r *fakeUserRepo) SearchUsers(ctx context.Context, query string) ([]models.PublicUser, error) {
	results := make([]models.PublicUser, 0)
	for _, user := range r.users {
		if query == "" || containsFold(user.Username, query) {
			results = append(results, user.Public())
		}
	}
	return results, nil
}

func (r *fakeUserRepo) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	users := make([]models.User, 0)
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			users = append(users, *user)
		}
	}
	return users, nil
}

func (r *fakeUserRepo) GetAllUsers(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, *user)
	}
	return users, nil
}

type fakeCollabRepo struct {
	requests map[primitive.ObjectID]*models.CollaborationRequest
}

func newFakeCollabRepo() *fakeCollabRepo {
	return &fakeCollabRepo{requests: make(map[primitive.ObjectID]*models.CollaborationRequest)}
}

func (r *fakeCollabRepo) CreateRequest(ctx context.Context, req *models.CollaborationRequest) (*models.CollaborationRequest, error) {
	req.PairKey = models.PairKey(req.SenderID, req.ReceiverID)
	// Same rule the unique partial index enforces.
	for _, existing := range r.requests {
		if existing.PairKey == req.PairKey {
			return nil, fmt.Errorf("%w: request already exists", apperrors.ErrConflict)
		}
	}
	req.ID = primitive.NewObjectID()
	req.Status = models.RequestPending
	req.CreatedAt = time.Now()
	r.requests[req.ID] = req
	return req, nil
}

func (r *fakeCollabRepo) GetRequestByID(ctx context.Context, id primitive.ObjectID) (*models.CollaborationRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, fmt.Errorf("%w: request %s", apperrors.ErrNotFound, id.Hex())
	}
	return req, nil
}

func (r *fakeCollabRepo) AcceptPending(ctx context.Context, id primitive.ObjectID) (*models.CollaborationRequest, error) {
	req, ok := r.requests[id]
	if !ok || req.Status != models.RequestPending {
		return nil, fmt.Errorf("%w: pending request %s", apperrors.ErrNotFound, id.Hex())
	}
	req.Status = models.RequestAccepted
	return req, nil
}

func (r *fakeCollabRepo) GetRequestsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.CollaborationRequest, error) {
	results := make([]models.CollaborationRequest, 0)
	for _, req := range r.requests {
		if req.SenderID == userID || req.ReceiverID == userID {
			results = append(results, *req)
		}
	}
	return results, nil
}

func (r *fakeCollabRepo) GetAcceptedByUser(ctx context.Context, userID primitive.ObjectID) ([]models.CollaborationRequest, error) {
	results := make([]models.CollaborationRequest, 0)
	for _, req := range r.requests {
		if req.Status == models.RequestAccepted && (req.SenderID == userID || req.ReceiverID == userID) {
			results = append(results, *req)
		}
	}
	return results, nil
}

func (r *fakeCollabRepo) GetAcceptedByPair(ctx context.Context, a, b primitive.ObjectID) (*models.CollaborationRequest, error) {
	key := models.PairKey(a, b)
	for _, req := range r.requests {
		if req.PairKey == key && req.Status == models.RequestAccepted {
			return req, nil
		}
	}
	return nil, fmt.Errorf("%w: no accepted collaboration", apperrors.ErrNotFound)
}

type fakeTaskRepo struct {
	tasks map[primitive.ObjectID]*models.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[primitive.ObjectID]*models.Task)}
}

func (r *fakeTaskRepo) CreateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	task.ID = primitive.NewObjectID()
	task.CreatedAt = time.Now()
	task.UpdatedAt = time.Now()
	r.tasks[task.ID] = task
	return task, nil
}

func (r *fakeTaskRepo) GetTaskByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	task, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: task %s", apperrors.ErrNotFound, id.Hex())
	}
	copied := *task
	return &copied, nil
}

func (r *fakeTaskRepo) GetTasksByParticipant(ctx context.Context, userID primitive.ObjectID) ([]models.Task, error) {
	results := make([]models.Task, 0)
	for _, task := range r.tasks {
		if task.AssigneeID == userID || (task.AssignerID != nil && *task.AssignerID == userID) {
			results = append(results, *task)
		}
	}
	return results, nil
}

func (r *fakeTaskRepo) GetTasksByAssignee(ctx context.Context, userID primitive.ObjectID) ([]models.Task, error) {
	results := make([]models.Task, 0)
	for _, task := range r.tasks {
		if task.AssigneeID == userID {
			results = append(results, *task)
		}
	}
	return results, nil
}

func (r *fakeTaskRepo) GetTasksDueBetween(ctx context.Context, from, to time.Time) ([]models.Task, error) {
	results := make([]models.Task, 0)
	for _, task := range r.tasks {
		if task.Status == models.TaskCompleted || task.Deadline == nil {
			continue
		}
		if task.Deadline.After(from) && !task.Deadline.After(to) {
			results = append(results, *task)
		}
	}
	return results, nil
}

func (r *fakeTaskRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.TaskStatus, completedAt *time.Time) (*models.Task, error) {
	task, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: task %s", apperrors.ErrNotFound, id.Hex())
	}
	task.Status = status
	task.CompletedAt = completedAt
	task.UpdatedAt = time.Now()
	copied := *task
	return &copied, nil
}

func (r *fakeTaskRepo) DeleteTask(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.tasks[id]; !ok {
		return fmt.Errorf("%w: task %s", apperrors.ErrNotFound, id.Hex())
	}
	delete(r.tasks, id)
	return nil
}

type fakeNotificationRepo struct {
	notifications []*models.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (r *fakeNotificationRepo) CreateNotification(ctx context.Context, notif *models.Notification) error {
	notif.ID = primitive.NewObjectID()
	notif.CreatedAt = time.Now()
	notif.ExpiresAt = notif.CreatedAt.Add(7 * 24 * time.Hour)
	r.notifications = append(r.notifications, notif)
	return nil
}

func (r *fakeNotificationRepo) GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	results := make([]models.Notification, 0)
	for _, notif := range r.notifications {
		if notif.UserID == userID && notif.ExpiresAt.After(time.Now()) {
			results = append(results, *notif)
		}
	}
	return results, nil
}

func (r *fakeNotificationRepo) MarkAsRead(ctx context.Context, id primitive.ObjectID) error {
	for _, notif := range r.notifications {
		if notif.ID == id {
			notif.Read = true
			return nil
		}
	}
	return fmt.Errorf("%w: notification %s", apperrors.ErrNotFound, id.Hex())
}

func (r *fakeNotificationRepo) GetLatestNotificationByType(ctx context.Context, userID primitive.ObjectID, notifType string) (*models.Notification, error) {
	var latest *models.Notification
	for _, notif := range r.notifications {
		if notif.UserID == userID && notif.Type == notifType {
			if latest == nil || notif.CreatedAt.After(latest.CreatedAt) {
				latest = notif
			}
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("%w: notification", apperrors.ErrNotFound)
	}
	return latest, nil
}

func (r *fakeNotificationRepo) DeleteExpiredNotifications(ctx context.Context) error {
	kept := r.notifications[:0]
	for _, notif := range r.notifications {
		if notif.ExpiresAt.After(time.Now()) {
			kept = append(kept, notif)
		}
	}
	r.notifications = kept
	return nil
}

type fakeMailer struct {
	sent []string
}

func (m *fakeMailer) Send(to, subject, body string) error {
	m.sent = append(m.sent, to)
	return nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
