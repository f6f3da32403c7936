package repository

import (
	"context"
	"fmt"

	"github.com/taskmaster/tasks/internal/domain/entities"
	"github.com/taskmaster/tasks/internal/infrastructure/logger"
	"github.com/taskmaster/tasks/internal/ports"
)

// TaskRepositoryImpl implements the TaskRepository interface over the tasks
// table of a record store.
type TaskRepositoryImpl struct {
	store  ports.RecordStore
	logger *logger.Logger
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(store ports.RecordStore, logger *logger.Logger) ports.TaskRepository {
	return &TaskRepositoryImpl{store: store, logger: logger}
}

// List returns every task in table order. Rows that do not decode as a task
// are logged and left out.
func (r *TaskRepositoryImpl) List(ctx context.Context) ([]*entities.Task, error) {
	records := r.store.Select(entities.TasksTable)

	tasks := make([]*entities.Task, 0, len(records))
	for _, rec := range records {
		task, err := entities.TaskFromRecord(rec)
		if err != nil {
			r.logger.Warnw("Skipping malformed task record", "task_id", rec.ID(), "error", err)
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (r *TaskRepositoryImpl) GetByID(ctx context.Context, id string) (*entities.Task, error) {
	rec, ok := r.store.FindByID(entities.TasksTable, id)
	if !ok {
		return nil, entities.ErrTaskNotFound
	}

	task, err := entities.TaskFromRecord(rec)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *entities.Task) (*entities.Task, error) {
	rec := r.store.Insert(entities.TasksTable, task.ToRecord())

	created, err := entities.TaskFromRecord(rec)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return created, nil
}

// Update writes the complete task back. The store replaces the record, so
// every field must be present on task.
func (r *TaskRepositoryImpl) Update(ctx context.Context, task *entities.Task) (*entities.Task, error) {
	rec, ok := r.store.Update(entities.TasksTable, task.ID, task.ToRecord())
	if !ok {
		return nil, entities.ErrTaskNotFound
	}

	updated, err := entities.TaskFromRecord(rec)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return updated, nil
}

// Delete returns the removed task, or nil when nothing matched. A record that
// does not decode as a task is left in place.
func (r *TaskRepositoryImpl) Delete(ctx context.Context, id string) (*entities.Task, error) {
	existing, ok := r.store.FindByID(entities.TasksTable, id)
	if !ok {
		return nil, nil
	}
	if _, err := entities.TaskFromRecord(existing); err != nil {
		return nil, fmt.Errorf("delete task: %w", err)
	}

	rec, ok := r.store.Delete(entities.TasksTable, id)
	if !ok {
		return nil, nil
	}

	deleted, err := entities.TaskFromRecord(rec)
	if err != nil {
		return nil, fmt.Errorf("delete task: %w", err)
	}
	return deleted, nil
}
