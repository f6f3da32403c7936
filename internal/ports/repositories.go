package ports

import (
	"context"

	"github.com/taskmaster/tasks/internal/domain/entities"
)

// RecordStore defines table semantics over a flat record store.
// Lookups are linear scans on the record "id" field.
type RecordStore interface {
	Select(table string) []entities.Record
	FindByID(table, id string) (entities.Record, bool)
	Insert(table string, record entities.Record) entities.Record
	Update(table, id string, fields entities.Record) (entities.Record, bool)
	Delete(table, id string) (entities.Record, bool)
}

// TaskRepository defines the interface for task data operations
type TaskRepository interface {
	List(ctx context.Context) ([]*entities.Task, error)
	GetByID(ctx context.Context, id string) (*entities.Task, error)
	Create(ctx context.Context, task *entities.Task) (*entities.Task, error)
	Update(ctx context.Context, task *entities.Task) (*entities.Task, error)
	Delete(ctx context.Context, id string) (*entities.Task, error)
}
