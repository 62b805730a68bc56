package memory

import (
	"fmt"
	"sync"

	"github.com/vsinha/shortfall/pkg/domain/entities"
	"github.com/vsinha/shortfall/pkg/domain/repositories"
)

// TaskRepository provides in-memory storage for the task schedule
type TaskRepository struct {
	mutex sync.RWMutex
	tasks []entities.TaskRecord
}

// NewTaskRepository creates a new, empty in-memory task repository
func NewTaskRepository() *TaskRepository {
	return &TaskRepository{
		tasks: []entities.TaskRecord{},
	}
}

// Verify interface compliance
var _ repositories.TaskRepository = (*TaskRepository)(nil)

// ReplaceTasks discards the current schedule and installs tasks
func (r *TaskRepository) ReplaceTasks(tasks []*entities.TaskRecord) error {
	table := make([]entities.TaskRecord, 0, len(tasks))
	for i, task := range tasks {
		if task == nil {
			return fmt.Errorf("task record %d is nil", i)
		}
		table = append(table, *task)
	}

	r.mutex.Lock()
	r.tasks = table
	r.mutex.Unlock()
	return nil
}

// GetAllTasks returns a copy of the schedule in load order
func (r *TaskRepository) GetAllTasks() ([]entities.TaskRecord, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	out := make([]entities.TaskRecord, len(r.tasks))
	copy(out, r.tasks)
	return out, nil
}

// Len returns the number of loaded tasks
func (r *TaskRepository) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.tasks)
}
