package repositories

import "github.com/vsinha/shortfall/pkg/domain/entities"

// TaskRepository provides access to the loaded task schedule
type TaskRepository interface {
	GetAllTasks() ([]entities.TaskRecord, error)
	ReplaceTasks(tasks []*entities.TaskRecord) error
	Len() int
}
