package handlers

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Bekarys04/CollabTask_Manager/internal/apperrors"
	"github.com/Bekarys04/CollabTask_Manager/internal/models"
	"github.com/Bekarys04/CollabTask_Manager/internal/services"
	jwtutil "github.com/Bekarys04/CollabTask_Manager/pkg/jwt"
	"github.com/Bekarys04/CollabTask_Manager/pkg/logger"
	"github.com/Bekarys04/CollabTask_Manager/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

// The handler tests run the real services over in-memory repositories and
// exercise the routes through a mux router with the real auth middleware.

type memUserRepo struct {
	users map[primitive.ObjectID]*models.User
}

func (r *memUserRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = primitive.NewObjectID()
	r.users[user.ID] = user
	return user, nil
}

func (r *memUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, fmt.Errorf("%w: user", apperrors.ErrNotFound)
}

func (r *memUserRepo) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", apperrors.ErrNotFound, id.Hex())
	}
	return user, nil
}

func (r *memUserRepo) GetUserByVerifyToken(ctx context.Context, token string) (*models.User, error) {
	return nil, fmt.Errorf("%w: verification token", apperrors.ErrNotFound)
}

func (r *memUserRepo) GetUserByResetToken(ctx context.Context, token string) (*models.User, error) {
	return nil, fmt.Errorf("%w: reset token", apperrors.ErrNotFound)
}

func (r *memUserRepo) UpdateUser(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) error {
	return nil
}

func (r *memUserRepo) SearchUsers(ctx context.Context, query string) ([]models.PublicUser, error) {
	results := make([]models.PublicUser, 0)
	for _, user := range r.users {
		if query == "" || strings.Contains(strings.ToLower(user.Username), strings.ToLower(query)) {
			results = append(results, user.Public())
		}
	}
	return results, nil
}

func (r *memUserRepo) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	users := make([]models.User, 0)
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			users = append(users, *user)
		}
	}
	return users, nil
}

func (r *memUserRepo) GetAllUsers(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	for _, user := range r.users {
		users = append(users, *user)
	}
	return users, nil
}

type memCollabRepo struct {
	requests map[primitive.ObjectID]*models.CollaborationRequest
}

func (r *memCollabRepo) CreateRequest(ctx context.Context, req *models.CollaborationRequest) (*models.CollaborationRequest, error) {
	req.PairKey = models.PairKey(req.SenderID, req.ReceiverID)
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

func (r *memCollabRepo) GetRequestByID(ctx context.Context, id primitive.ObjectID) (*models.CollaborationRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, fmt.Errorf("%w: request %s", apperrors.ErrNotFound, id.Hex())
	}
	return req, nil
}

func (r *memCollabRepo) AcceptPending(ctx context.Context, id primitive.ObjectID) (*models.CollaborationRequest, error) {
	req, ok := r.requests[id]
	if !ok || req.Status != models.RequestPending {
		return nil, fmt.Errorf("%w: pending request %s", apperrors.ErrNotFound, id.Hex())
	}
	req.Status = models.RequestAccepted
	return req, nil
}

func (r *memCollabRepo) GetRequestsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.CollaborationRequest, error) {
	results := make([]models.CollaborationRequest, 0)
	for _, req := range r.requests {
		if req.SenderID == userID || req.ReceiverID == userID {
			results = append(results, *req)
		}
	}
	return results, nil
}

func (r *memCollabRepo) GetAcceptedByUser(ctx context.Context, userID primitive.ObjectID) ([]models.CollaborationRequest, error) {
	results := make([]models.CollaborationRequest, 0)
	for _, req := range r.requests {
		if req.Status == models.RequestAccepted && (req.SenderID == userID || req.ReceiverID == userID) {
			results = append(results, *req)
		}
	}
	return results, nil
}

func (r *memCollabRepo) GetAcceptedByPair(ctx context.Context, a, b primitive.ObjectID) (*models.CollaborationRequest, error) {
	key := models.PairKey(a, b)
	for _, req := range r.requests {
		if req.PairKey == key && req.Status == models.RequestAccepted {
			return req, nil
		}
	}
	return nil, fmt.Errorf("%w: no accepted collaboration", apperrors.ErrNotFound)
}

type memTaskRepo struct {
	tasks map[primitive.ObjectID]*models.Task
}

func (r *memTaskRepo) CreateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	task.ID = primitive.NewObjectID()
	task.CreatedAt = time.Now()
	task.UpdatedAt = time.Now()
	r.tasks[task.ID] = task
	return task, nil
}

func (r *memTaskRepo) GetTaskByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	task, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: task %s", apperrors.ErrNotFound, id.Hex())
	}
	copied := *task
	return &copied, nil
}

func (r *memTaskRepo) GetTasksByParticipant(ctx context.Context, userID primitive.ObjectID) ([]models.Task, error) {
	results := make([]models.Task, 0)
	for _, task := range r.tasks {
		if task.AssigneeID == userID || (task.AssignerID != nil && *task.AssignerID == userID) {
			results = append(results, *task)
		}
	}
	return results, nil
}

func (r *memTaskRepo) GetTasksByAssignee(ctx context.Context, userID primitive.ObjectID) ([]models.Task, error) {
	results := make([]models.Task, 0)
	for _, task := range r.tasks {
		if task.AssigneeID == userID {
			results = append(results, *task)
		}
	}
	return results, nil
}

func (r *memTaskRepo) GetTasksDueBetween(ctx context.Context, from, to time.Time) ([]models.Task, error) {
	return nil, nil
}

func (r *memTaskRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.TaskStatus, completedAt *time.Time) (*models.Task, error) {
	task, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: task %s", apperrors.ErrNotFound, id.Hex())
	}
	task.Status = status
	task.CompletedAt = completedAt
	copied := *task
	return &copied, nil
}

func (r *memTaskRepo) DeleteTask(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.tasks[id]; !ok {
		return fmt.Errorf("%w: task %s", apperrors.ErrNotFound, id.Hex())
	}
	delete(r.tasks, id)
	return nil
}

type harness struct {
	router   *mux.Router
	userRepo *memUserRepo
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger.InitLogger("")

	userRepo := &memUserRepo{users: make(map[primitive.ObjectID]*models.User)}
	collabRepo := &memCollabRepo{requests: make(map[primitive.ObjectID]*models.CollaborationRequest)}
	taskRepo := &memTaskRepo{tasks: make(map[primitive.ObjectID]*models.Task)}

	userService := services.NewUserService(userRepo, nopMailer{}, "http://localhost:8080")
	collabService := services.NewCollaborationService(collabRepo, userRepo)
	taskService := services.NewTaskService(taskRepo, userRepo, collabService)

	collabHandler := NewCollaborationHandler(collabService, userService)
	taskHandler := NewTaskHandler(taskService)

	router := mux.NewRouter()
	collabRoutes := router.PathPrefix("/collab").Subrouter()
	collabRoutes.Use(middleware.AuthMiddleware(testSecret))
	collabRoutes.HandleFunc("/users", collabHandler.SearchUsersHandler).Methods("GET")
	collabRoutes.HandleFunc("/requests", collabHandler.SendRequestHandler).Methods("POST")
	collabRoutes.HandleFunc("/requests/{id}/accept", collabHandler.AcceptRequestHandler).Methods("PUT")
	collabRoutes.HandleFunc("/requests/{userId}", collabHandler.GetRequestsHandler).Methods("GET")
	collabRoutes.HandleFunc("/friends/{userId}", collabHandler.GetFriendsHandler).Methods("GET")
	collabRoutes.HandleFunc("/tasks", taskHandler.AssignTaskHandler).Methods("POST")
	collabRoutes.HandleFunc("/tasks/{userId}", taskHandler.GetTasksHandler).Methods("GET")
	collabRoutes.HandleFunc("/tasks/{id}/complete", taskHandler.CompleteTaskHandler).Methods("PUT")
	collabRoutes.HandleFunc("/tasks/{id}", taskHandler.DeleteTaskHandler).Methods("DELETE")

	taskRoutes := router.PathPrefix("/tasks").Subrouter()
	taskRoutes.Use(middleware.AuthMiddleware(testSecret))
	taskRoutes.HandleFunc("", taskHandler.CreateTaskHandler).Methods("POST")
	taskRoutes.HandleFunc("", taskHandler.GetOwnTasksHandler).Methods("GET")
	taskRoutes.HandleFunc("/{id}", taskHandler.UpdateTaskStatusHandler).Methods("PUT")

	return &harness{router: router, userRepo: userRepo}
}

type nopMailer struct{}

func (nopMailer) Send(to, subject, body string) error { return nil }

func (h *harness) addUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		ID:         primitive.NewObjectID(),
		Username:   username,
		Email:      username + "@example.com",
		Role:       "user",
		IsVerified: true,
	}
	h.userRepo.users[user.ID] = user
	return user
}

// do performs a request authenticated as the given user.
func (h *harness) do(t *testing.T, user *models.User, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	token, err := jwtutil.GenerateToken(user.ID.Hex(), user.Email, user.Role, testSecret, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	h.router.ServeHTTP(recorder, req)
	return recorder
}

// doWithToken performs a request carrying an arbitrary bearer token.
func (h *harness) doWithToken(t *testing.T, token, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	h.router.ServeHTTP(recorder, req)
	return recorder
}
