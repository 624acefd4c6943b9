package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Bekarys04/CollabTask_Manager/internal/apperrors"
	"github.com/Bekarys04/CollabTask_Manager/internal/models"
	"github.com/Bekarys04/CollabTask_Manager/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TaskRepository struct handles database operations related to tasks
type TaskRepository struct {
	collection *mongo.Collection
}

// NewTaskRepository creates a new instance of TaskRepository
func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{
		collection: db.Collection("tasks"),
	}
}

// CreateTask creates a new task in the database
func (r *TaskRepository) CreateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	task.CreatedAt = time.Now()
	task.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, task)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert task")
		return nil, fmt.Errorf("failed to insert task: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logger.Log.Error("Failed to cast inserted ID")
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	task.ID = insertedID

	logger.Log.WithField("task_id", task.ID.Hex()).Info("Task created successfully")
	return task, nil
}

// GetTaskByID fetches a task by its ID
func (r *TaskRepository) GetTaskByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var task models.Task

	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: task %s", apperrors.ErrNotFound, id.Hex())
		}
		logger.Log.WithError(err).WithField("task_id", id.Hex()).Error("Failed to find task by ID")
		return nil, fmt.Errorf("failed to find task: %v", err)
	}

	return &task, nil
}

// GetTasksByParticipant fetches the union of tasks where the user is
// assignee or assigner.
func (r *TaskRepository) GetTasksByParticipant(ctx context.Context, userID primitive.ObjectID) ([]models.Task, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"assignee_id": userID},
			{"assigner_id": userID},
		},
	}
	return r.findTasks(ctx, filter)
}

// GetTasksByAssignee fetches the tasks owned by the user.
func (r *TaskRepository) GetTasksByAssignee(ctx context.Context, userID primitive.ObjectID) ([]models.Task, error) {
	return r.findTasks(ctx, bson.M{"assignee_id": userID})
}

// GetTasksDueBetween fetches uncompleted tasks whose deadline falls inside
// the window. Used by the deadline notifier.
func (r *TaskRepository) GetTasksDueBetween(ctx context.Context, from, to time.Time) ([]models.Task, error) {
	filter := bson.M{
		"status":   bson.M{"$ne": models.TaskCompleted},
		"deadline": bson.M{"$gt": from, "$lte": to},
	}
	return r.findTasks(ctx, filter)
}

// UpdateStatus sets the task's status and completion timestamp, returning
// the updated record.
func (r *TaskRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.TaskStatus, completedAt *time.Time) (*models.Task, error) {
	set := bson.M{
		"status":     status,
		"updated_at": time.Now(),
	}
	update := bson.M{"$set": set}
	if completedAt != nil {
		set["completed_at"] = *completedAt
	} else {
		// A non-terminal status never carries a completion stamp; clearing
		// it in the same update keeps the document consistent at all times.
		update["$unset"] = bson.M{"completed_at": ""}
	}

	var task models.Task
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: task %s", apperrors.ErrNotFound, id.Hex())
		}
		logger.Log.WithError(err).WithField("task_id", id.Hex()).Error("Failed to update task status")
		return nil, fmt.Errorf("failed to update task: %v", err)
	}

	return &task, nil
}

// DeleteTask deletes a task from the database by its ID
func (r *TaskRepository) DeleteTask(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logger.Log.WithError(err).WithField("task_id", id.Hex()).Error("Failed to delete task")
		return fmt.Errorf("failed to delete task: %v", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: task %s", apperrors.ErrNotFound, id.Hex())
	}

	logger.Log.WithField("task_id", id.Hex()).Info("Task deleted successfully")
	return nil
}

func (r *TaskRepository) findTasks(ctx context.Context, filter bson.M) ([]models.Task, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch tasks")
		return nil, fmt.Errorf("failed to fetch tasks: %v", err)
	}
	defer cursor.Close(ctx)

	tasks := make([]models.Task, 0)
	for cursor.Next(ctx) {
		var task models.Task
		if err := cursor.Decode(&task); err != nil {
			logger.Log.WithError(err).Error("Failed to decode task")
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, nil
}
