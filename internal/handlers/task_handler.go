package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Bekarys04/CollabTask_Manager/internal/apperrors"
	"github.com/Bekarys04/CollabTask_Manager/internal/models"
	"github.com/Bekarys04/CollabTask_Manager/internal/services"
	"github.com/Bekarys04/CollabTask_Manager/pkg/logger"
	"github.com/Bekarys04/CollabTask_Manager/pkg/middleware"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskHandler manages HTTP endpoints for tasks: assignment between
// collaborators plus the owner's own task management.
type TaskHandler struct {
	Service *services.TaskService
}

// NewTaskHandler initializes a new TaskHandler.
func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{Service: service}
}

// AssignTaskHandler creates a task for a collaborator on the caller's
// behalf.
func (h *TaskHandler) AssignTaskHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		logger.Log.Warn("Unauthorized attempt to assign task")
		return
	}

	var body struct {
		AssignerID  string `json:"assignerId"`
		AssigneeID  string `json:"assigneeId"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Priority    string `json:"priority"`
		Deadline    string `json:"deadline"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		logger.Log.WithError(err).Warn("Failed to decode assign task body")
		return
	}
	defer r.Body.Close()

	// The claimed assigner must be the authenticated user.
	if body.AssignerID != claims.UserID {
		logger.Log.WithFields(map[string]interface{}{
			"claimed_assigner": body.AssignerID,
			"authenticated":    claims.UserID,
		}).Warn("Assigner id does not match authenticated user")
		http.Error(w, "Forbidden: assigner does not match authenticated user", http.StatusForbidden)
		return
	}

	assignerID, err := primitive.ObjectIDFromHex(body.AssignerID)
	if err != nil {
		http.Error(w, "Invalid assigner ID", http.StatusBadRequest)
		return
	}
	assigneeID, err := primitive.ObjectIDFromHex(body.AssigneeID)
	if err != nil {
		http.Error(w, "Invalid assignee ID", http.StatusBadRequest)
		return
	}

	deadline, err := parseDeadline(body.Deadline)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	task, err := h.Service.AssignTask(r.Context(), assignerID, assigneeID, body.Title, body.Description, models.TaskPriority(body.Priority), deadline)
	if err != nil {
		writeError(w, err)
		return
	}

	logger.Log.Infof("User %s assigned task %s to %s", body.AssignerID, task.ID.Hex(), body.AssigneeID)
	writeJSON(w, http.StatusCreated, task)
}

// GetTasksHandler returns the union of tasks where the user is assignee or
// assigner.
func (h *TaskHandler) GetTasksHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := primitive.ObjectIDFromHex(mux.Vars(r)["userId"])
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	tasks, err := h.Service.GetTasks(r.Context(), userID)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to get tasks")
		http.Error(w, "Failed to get tasks", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

// CompleteTaskHandler marks a task as completed. Only the assignee may
// complete it.
func (h *TaskHandler) CompleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	taskID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid task ID", http.StatusBadRequest)
		return
	}

	if err := h.requireAssignee(r, taskID, claims.UserID); err != nil {
		writeError(w, err)
		return
	}

	task, err := h.Service.CompleteTask(r.Context(), taskID)
	if err != nil {
		writeError(w, err)
		return
	}

	logger.Log.WithField("task_id", taskID.Hex()).Info("Task marked completed")
	writeJSON(w, http.StatusOK, task)
}

// DeleteTaskHandler removes a completed task. Only the assignee may delete
// it.
func (h *TaskHandler) DeleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	taskID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid task ID", http.StatusBadRequest)
		return
	}

	if err := h.requireAssignee(r, taskID, claims.UserID); err != nil {
		writeError(w, err)
		return
	}

	if err := h.Service.DeleteTask(r.Context(), taskID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

// CreateTaskHandler creates a task the caller owns. This path has no
// collaboration precondition.
func (h *TaskHandler) CreateTaskHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Status      string `json:"status"`
		Priority    string `json:"priority"`
		Deadline    string `json:"deadline"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	ownerID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid token subject", http.StatusUnauthorized)
		return
	}

	deadline, err := parseDeadline(body.Deadline)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	task, err := h.Service.CreateTask(r.Context(), ownerID, body.Title, body.Description, models.TaskStatus(body.Status), models.TaskPriority(body.Priority), deadline)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

// GetOwnTasksHandler returns the tasks the caller owns.
func (h *TaskHandler) GetOwnTasksHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid token subject", http.StatusUnauthorized)
		return
	}

	tasks, err := h.Service.GetOwnTasks(r.Context(), userID)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to get own tasks")
		http.Error(w, "Failed to fetch tasks", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

// UpdateTaskStatusHandler moves a task along its status order. Only the
// assignee may update it.
func (h *TaskHandler) UpdateTaskStatusHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	taskID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid task ID", http.StatusBadRequest)
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := h.requireAssignee(r, taskID, claims.UserID); err != nil {
		writeError(w, err)
		return
	}

	task, err := h.Service.UpdateTaskStatus(r.Context(), taskID, models.TaskStatus(body.Status))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// requireAssignee checks that the authenticated user owns the task.
func (h *TaskHandler) requireAssignee(r *http.Request, taskID primitive.ObjectID, userID string) error {
	task, err := h.Service.GetTask(r.Context(), taskID)
	if err != nil {
		return err
	}
	if task.AssigneeID.Hex() != userID {
		return fmt.Errorf("%w: only the assignee can modify this task", apperrors.ErrForbidden)
	}
	return nil
}

// parseDeadline accepts RFC3339 or a bare date; an empty string means no
// deadline.
func parseDeadline(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("invalid deadline format")
	}
	return &t, nil
}
