package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Bekarys04/CollabTask_Manager/internal/apperrors"
	"github.com/Bekarys04/CollabTask_Manager/internal/models"
	"github.com/Bekarys04/CollabTask_Manager/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskService encapsulates the business logic for tasks, both self-created
// and handed out by collaborators.
type TaskService struct {
	taskRepo      TaskRepository
	userRepo      UserRepository
	collabService *CollaborationService
}

// NewTaskService creates a new instance of TaskService.
func NewTaskService(taskRepo TaskRepository, userRepo UserRepository, collabService *CollaborationService) *TaskService {
	return &TaskService{
		taskRepo:      taskRepo,
		userRepo:      userRepo,
		collabService: collabService,
	}
}

// AssignTask creates a task for assignee on behalf of assigner. The
// assigner must hold an accepted collaboration with the assignee; the
// relation is looked up fresh on every call, never cached.
func (s *TaskService) AssignTask(ctx context.Context, assignerID, assigneeID primitive.ObjectID, title, description string, priority models.TaskPriority, deadline *time.Time) (*models.Task, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrInvalidRequest)
	}

	ok, err := s.collabService.AreCollaborators(ctx, assignerID, assigneeID)
	if err != nil {
		return nil, fmt.Errorf("failed to check collaboration: %v", err)
	}
	if !ok {
		logger.Log.WithFields(map[string]interface{}{
			"assigner_id": assignerID.Hex(),
			"assignee_id": assigneeID.Hex(),
		}).Warn("Task assignment without accepted collaboration")
		return nil, fmt.Errorf("%w: you can only assign tasks to accepted collaborators", apperrors.ErrForbidden)
	}

	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidTaskPriority(priority) {
		return nil, fmt.Errorf("%w: unknown priority %q", apperrors.ErrInvalidRequest, priority)
	}

	task := &models.Task{
		Title:       title,
		Description: description,
		Status:      models.TaskPending,
		Priority:    priority,
		Deadline:    deadline,
		AssigneeID:  assigneeID,
		AssignerID:  &assignerID,
	}

	created, err := s.taskRepo.CreateTask(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to assign task: %v", err)
	}

	logger.Log.WithFields(map[string]interface{}{
		"task_id":     created.ID.Hex(),
		"assigner_id": assignerID.Hex(),
		"assignee_id": assigneeID.Hex(),
	}).Info("Task assigned")
	return created, nil
}

// CreateTask creates a task the owner manages for themself. No
// collaboration check applies on this path.
func (s *TaskService) CreateTask(ctx context.Context, ownerID primitive.ObjectID, title, description string, status models.TaskStatus, priority models.TaskPriority, deadline *time.Time) (*models.Task, error) {
	if title == "" || deadline == nil {
		return nil, fmt.Errorf("%w: title and deadline are required", apperrors.ErrInvalidRequest)
	}

	if status == "" {
		status = models.TaskPending
	}
	if !models.ValidTaskStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrInvalidRequest, status)
	}
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidTaskPriority(priority) {
		return nil, fmt.Errorf("%w: unknown priority %q", apperrors.ErrInvalidRequest, priority)
	}

	task := &models.Task{
		Title:       title,
		Description: description,
		Status:      status,
		Priority:    priority,
		Deadline:    deadline,
		AssigneeID:  ownerID,
	}

	created, err := s.taskRepo.CreateTask(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %v", err)
	}

	logger.Log.WithField("task_id", created.ID.Hex()).Info("Task created")
	return created, nil
}

// GetTasks returns the union of tasks where the user is assignee or
// assigner, each populated with the counterpart usernames for display.
func (s *TaskService) GetTasks(ctx context.Context, userID primitive.ObjectID) ([]models.TaskView, error) {
	tasks, err := s.taskRepo.GetTasksByParticipant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks: %v", err)
	}
	return s.populateUsernames(ctx, tasks)
}

// GetOwnTasks returns only the tasks the user owns.
func (s *TaskService) GetOwnTasks(ctx context.Context, userID primitive.ObjectID) ([]models.TaskView, error) {
	tasks, err := s.taskRepo.GetTasksByAssignee(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks: %v", err)
	}
	return s.populateUsernames(ctx, tasks)
}

// CompleteTask marks the task completed and stamps completedAt, whatever
// its current status. Re-completing refreshes the stamp; this leniency is
// intentional.
func (s *TaskService) CompleteTask(ctx context.Context, taskID primitive.ObjectID) (*models.Task, error) {
	if _, err := s.taskRepo.GetTaskByID(ctx, taskID); err != nil {
		return nil, err
	}

	now := time.Now()
	task, err := s.taskRepo.UpdateStatus(ctx, taskID, models.TaskCompleted, &now)
	if err != nil {
		return nil, err
	}

	logger.Log.WithField("task_id", taskID.Hex()).Info("Task completed")
	return task, nil
}

// UpdateTaskStatus moves a task along Pending -> InProgress -> Completed.
// Backwards moves are rejected; completion through this path stamps
// completedAt the same way CompleteTask does.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, taskID primitive.ObjectID, status models.TaskStatus) (*models.Task, error) {
	if !models.ValidTaskStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrInvalidRequest, status)
	}

	task, err := s.taskRepo.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if statusRank(status) < statusRank(task.Status) {
		return nil, fmt.Errorf("%w: cannot move task from %s back to %s", apperrors.ErrConflict, task.Status, status)
	}

	var completedAt *time.Time
	if status == models.TaskCompleted {
		now := time.Now()
		completedAt = &now
	}

	updated, err := s.taskRepo.UpdateStatus(ctx, taskID, status, completedAt)
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"task_id": taskID.Hex(),
		"status":  status,
	}).Info("Task status updated")
	return updated, nil
}

// DeleteTask removes a task permanently. Only completed tasks may be
// deleted.
func (s *TaskService) DeleteTask(ctx context.Context, taskID primitive.ObjectID) error {
	task, err := s.taskRepo.GetTaskByID(ctx, taskID)
	if err != nil {
		return err
	}

	if task.Status != models.TaskCompleted {
		return fmt.Errorf("%w: can only delete completed tasks", apperrors.ErrForbidden)
	}

	return s.taskRepo.DeleteTask(ctx, taskID)
}

// GetTask fetches a single task by id.
func (s *TaskService) GetTask(ctx context.Context, taskID primitive.ObjectID) (*models.Task, error) {
	return s.taskRepo.GetTaskByID(ctx, taskID)
}

func statusRank(s models.TaskStatus) int {
	switch s {
	case models.TaskPending:
		return 0
	case models.TaskInProgress:
		return 1
	case models.TaskCompleted:
		return 2
	}
	return -1
}

func (s *TaskService) populateUsernames(ctx context.Context, tasks []models.Task) ([]models.TaskView, error) {
	idSet := make(map[primitive.ObjectID]struct{})
	for _, task := range tasks {
		idSet[task.AssigneeID] = struct{}{}
		if task.AssignerID != nil {
			idSet[*task.AssignerID] = struct{}{}
		}
	}

	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	usernames := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) > 0 {
		users, err := s.userRepo.GetUsersByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to populate usernames: %v", err)
		}
		for _, user := range users {
			usernames[user.ID] = user.Username
		}
	}

	views := make([]models.TaskView, 0, len(tasks))
	for _, task := range tasks {
		view := models.TaskView{
			Task:             task,
			AssigneeUsername: usernames[task.AssigneeID],
		}
		if task.AssignerID != nil {
			view.AssignerUsername = usernames[*task.AssignerID]
		}
		views = append(views, view)
	}
	return views, nil
}
