package entities

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"time"
)

// Common errors
var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrInvalidTask      = errors.New("task title and description are required")
	ErrTaskUpdateFailed = errors.New("task update failed")
	ErrInvalidCSV       = errors.New("invalid csv")
)

// TasksTable is the store table holding tasks.
const TasksTable = "tasks"

// Record is one untyped row of a store table. By convention it carries a
// string "id" field unique within its table.
type Record map[string]any

// ID returns the record's id, or "" when it has none.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return maps.Clone(r)
}

// Task represents a task in the system.
// Timestamps are milliseconds since the Unix epoch.
type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CompletedAt *int64 `json:"completed_at"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   *int64 `json:"updated_at"`
}

// NewTask builds a pending task created at now.
func NewTask(id, title, description string, now time.Time) *Task {
	return &Task{
		ID:          id,
		Title:       title,
		Description: description,
		CreatedAt:   now.UnixMilli(),
	}
}

// IsCompleted reports whether the task has been marked complete.
func (t *Task) IsCompleted() bool {
	return t.CompletedAt != nil
}

// Complete stamps completed_at. A task is only ever completed once.
func (t *Task) Complete(now time.Time) {
	if t.IsCompleted() {
		return
	}
	ms := now.UnixMilli()
	t.CompletedAt = &ms
}

// Replace overwrites the editable fields and stamps updated_at.
func (t *Task) Replace(title, description string, now time.Time) {
	ms := now.UnixMilli()
	t.Title = title
	t.Description = description
	t.UpdatedAt = &ms
}

// ToRecord converts the task into its stored form.
func (t *Task) ToRecord() Record {
	r := Record{
		"id":           t.ID,
		"title":        t.Title,
		"description":  t.Description,
		"completed_at": nil,
		"created_at":   t.CreatedAt,
		"updated_at":   nil,
	}
	if t.CompletedAt != nil {
		r["completed_at"] = *t.CompletedAt
	}
	if t.UpdatedAt != nil {
		r["updated_at"] = *t.UpdatedAt
	}
	return r
}

// TaskFromRecord decodes a stored record. Records read back from disk hold
// float64 numbers, so the conversion goes through JSON.
func TaskFromRecord(r Record) (*Task, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	var task Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("decode task %q: %w", r.ID(), err)
	}
	return &task, nil
}
