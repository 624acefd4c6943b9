package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	TaskPending    TaskStatus = "Pending"
	TaskInProgress TaskStatus = "InProgress"
	TaskCompleted  TaskStatus = "Completed"
)

// ValidTaskStatus reports whether s is one of the known task states.
func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
)

// ValidTaskPriority reports whether p is one of the known priorities.
func ValidTaskPriority(p TaskPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is an assignable work item. AssigneeID is the owner; AssignerID is
// set only when the task was handed out by a collaborator and is kept as
// provenance, not used for access control.
type Task struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description" json:"description"`
	Status      TaskStatus          `bson:"status" json:"status"`
	Priority    TaskPriority        `bson:"priority" json:"priority"`
	Deadline    *time.Time          `bson:"deadline,omitempty" json:"deadline,omitempty"`
	AssigneeID  primitive.ObjectID  `bson:"assignee_id" json:"assignee_id"`
	AssignerID  *primitive.ObjectID `bson:"assigner_id,omitempty" json:"assigner_id,omitempty"`
	CompletedAt *time.Time          `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updated_at"`
}

// SelfCreated reports whether the task was created by its owner rather
// than assigned by a collaborator.
func (t *Task) SelfCreated() bool {
	return t.AssignerID == nil
}

// TaskView is a task decorated with the counterpart usernames the client
// needs for display.
type TaskView struct {
	Task
	AssigneeUsername string `json:"assignee_username"`
	AssignerUsername string `json:"assigner_username,omitempty"`
}
