package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/taskmaster/tasks/internal/domain/entities"
	"github.com/taskmaster/tasks/internal/infrastructure/logger"
	"github.com/taskmaster/tasks/internal/ports"
)

// TaskService handles task-related operations
type TaskService struct {
	taskRepo ports.TaskRepository
	validate *validator.Validate
	logger   *logger.Logger
	now      func() time.Time
	newID    func() string
}

// Option customizes a TaskService.
type Option func(*TaskService)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *TaskService) { s.now = now }
}

// WithIDGenerator overrides the task id generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *TaskService) { s.newID = newID }
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo ports.TaskRepository, logger *logger.Logger, opts ...Option) *TaskService {
	s := &TaskService{
		taskRepo: taskRepo,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.TaskService = (*TaskService)(nil)

// CreateTask creates a new task
func (s *TaskService) CreateTask(ctx context.Context, req ports.CreateTaskRequest) (*entities.Task, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrInvalidTask, err)
	}

	task := entities.NewTask(s.newID(), req.Title, req.Description, s.now())

	createdTask, err := s.taskRepo.Create(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.LogTaskAction("create", createdTask.ID, map[string]interface{}{"title": createdTask.Title})

	return createdTask, nil
}

// ListTasks returns every task in insertion order
func (s *TaskService) ListTasks(ctx context.Context) ([]*entities.Task, error) {
	tasks, err := s.taskRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// ReplaceTask overwrites a task's title and description
func (s *TaskService) ReplaceTask(ctx context.Context, id string, req ports.ReplaceTaskRequest) (*entities.Task, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrInvalidTask, err)
	}

	existingTask, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("replace task %s: %w", id, err)
	}

	existingTask.Replace(req.Title, req.Description, s.now())

	updatedTask, err := s.save(ctx, existingTask)
	if err != nil {
		return nil, err
	}

	s.logger.LogTaskAction("replace", updatedTask.ID, map[string]interface{}{"title": updatedTask.Title})

	return updatedTask, nil
}

// CompleteTask marks a task as completed. Completing a completed task keeps
// the original completion time.
func (s *TaskService) CompleteTask(ctx context.Context, id string) (*entities.Task, error) {
	existingTask, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("complete task %s: %w", id, err)
	}

	if existingTask.IsCompleted() {
		return existingTask, nil
	}

	existingTask.Complete(s.now())

	updatedTask, err := s.save(ctx, existingTask)
	if err != nil {
		return nil, err
	}

	s.logger.LogTaskAction("complete", updatedTask.ID, nil)

	return updatedTask, nil
}

// save writes back a task that was just looked up. Losing it in between
// means a concurrent delete won the race.
func (s *TaskService) save(ctx context.Context, task *entities.Task) (*entities.Task, error) {
	updatedTask, err := s.taskRepo.Update(ctx, task)
	if errors.Is(err, entities.ErrTaskNotFound) {
		s.logger.Errorw("Task vanished during update", "task_id", task.ID)
		return nil, fmt.Errorf("update task %s: %w", task.ID, entities.ErrTaskUpdateFailed)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return updatedTask, nil
}

// DeleteTask deletes a task and returns it, or nil if it did not exist
func (s *TaskService) DeleteTask(ctx context.Context, id string) (*entities.Task, error) {
	deletedTask, err := s.taskRepo.Delete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete task: %w", err)
	}

	if deletedTask != nil {
		s.logger.LogTaskAction("delete", id, nil)
	}

	return deletedTask, nil
}

// ImportTasks validates every row, then creates one task per row. Nothing is
// inserted when any row is invalid.
func (s *TaskService) ImportTasks(ctx context.Context, rows []ports.ImportTaskRow) ([]*entities.Task, error) {
	for _, row := range rows {
		if err := s.validate.Struct(row); err != nil {
			return nil, fmt.Errorf("%w: line %d: title and description are required", entities.ErrInvalidCSV, row.Line)
		}
	}

	now := s.now()
	imported := make([]*entities.Task, 0, len(rows))
	for _, row := range rows {
		task, err := s.taskRepo.Create(ctx, entities.NewTask(s.newID(), row.Title, row.Description, now))
		if err != nil {
			return imported, fmt.Errorf("failed to import line %d: %w", row.Line, err)
		}
		imported = append(imported, task)
	}

	s.logger.Infow("Tasks imported", "count", len(imported))

	return imported, nil
}
