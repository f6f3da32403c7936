package ports

import (
	"context"

	"github.com/taskmaster/tasks/internal/domain/entities"
)

// TaskService interface for task management operations
type TaskService interface {
	CreateTask(ctx context.Context, req CreateTaskRequest) (*entities.Task, error)
	ListTasks(ctx context.Context) ([]*entities.Task, error)
	ReplaceTask(ctx context.Context, id string, req ReplaceTaskRequest) (*entities.Task, error)
	CompleteTask(ctx context.Context, id string) (*entities.Task, error)
	DeleteTask(ctx context.Context, id string) (*entities.Task, error)
	ImportTasks(ctx context.Context, rows []ImportTaskRow) ([]*entities.Task, error)
}

// Request DTOs for services

type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
}

type ReplaceTaskRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// ImportTaskRow is one data row of a CSV import. Line is the 1-based line
// number in the source document.
type ImportTaskRow struct {
	Line        int    `csv:"-"`
	Title       string `csv:"title" validate:"required"`
	Description string `csv:"description" validate:"required"`
}
