package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	task := NewTask("id-1", "Buy milk", "2%", now)

	assert.Equal(t, "id-1", task.ID)
	assert.Equal(t, int64(1700000000123), task.CreatedAt)
	assert.Nil(t, task.CompletedAt)
	assert.Nil(t, task.UpdatedAt)
	assert.False(t, task.IsCompleted())
}

func TestTask_CompleteIsOneWay(t *testing.T) {
	task := NewTask("id-1", "t", "d", time.UnixMilli(1000))

	task.Complete(time.UnixMilli(2000))
	require.True(t, task.IsCompleted())
	assert.Equal(t, int64(2000), *task.CompletedAt)

	task.Complete(time.UnixMilli(3000))
	assert.Equal(t, int64(2000), *task.CompletedAt)
}

func TestTask_Replace(t *testing.T) {
	task := NewTask("id-1", "t", "d", time.UnixMilli(1000))
	task.Replace("t2", "d2", time.UnixMilli(5000))

	assert.Equal(t, "t2", task.Title)
	assert.Equal(t, "d2", task.Description)
	require.NotNil(t, task.UpdatedAt)
	assert.Equal(t, int64(5000), *task.UpdatedAt)
	assert.Equal(t, int64(1000), task.CreatedAt)
}

func TestTask_ToRecord(t *testing.T) {
	task := NewTask("id-1", "t", "d", time.UnixMilli(1000))

	assert.Equal(t, Record{
		"id":           "id-1",
		"title":        "t",
		"description":  "d",
		"completed_at": nil,
		"created_at":   int64(1000),
		"updated_at":   nil,
	}, task.ToRecord())

	task.Complete(time.UnixMilli(2000))
	assert.Equal(t, int64(2000), task.ToRecord()["completed_at"])
}

func TestTaskFromRecord(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   *Task
	}{
		{
			name: "numbers decoded from disk",
			record: Record{
				"id":           "a",
				"title":        "t",
				"description":  "d",
				"completed_at": float64(2000),
				"created_at":   float64(1000),
				"updated_at":   nil,
			},
			want: &Task{ID: "a", Title: "t", Description: "d", CompletedAt: ptr(2000), CreatedAt: 1000},
		},
		{
			name:   "round trip",
			record: NewTask("b", "t", "d", time.UnixMilli(7)).ToRecord(),
			want:   &Task{ID: "b", Title: "t", Description: "d", CreatedAt: 7},
		},
		{
			name:   "missing fields stay zero",
			record: Record{"id": "c", "title": "only"},
			want:   &Task{ID: "c", Title: "only"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TaskFromRecord(tt.record)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTaskFromRecord_WrongTypes(t *testing.T) {
	_, err := TaskFromRecord(Record{"id": "a", "created_at": "yesterday"})
	assert.Error(t, err)
}

func TestRecord_IDAndClone(t *testing.T) {
	r := Record{"id": "a", "n": 1}
	c := r.Clone()
	c["n"] = 2

	assert.Equal(t, "a", r.ID())
	assert.Equal(t, 1, r["n"])
	assert.Equal(t, "", Record{"id": 5}.ID())
	assert.Nil(t, Record(nil).Clone())
}

func ptr(v int64) *int64 { return &v }
