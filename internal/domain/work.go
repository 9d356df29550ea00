package domain

import "time"

// WorkArea представляет область работ внутри проекта
type WorkArea struct {
	ID        string     `json:"id"`
	ProjectID string     `json:"projectId"`
	Name      string     `json:"name"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// WorkTaskStatus представляет статус задачи
type WorkTaskStatus string

// Возможные статусы задачи
const (
	TaskTodo       WorkTaskStatus = "TODO"
	TaskInProgress WorkTaskStatus = "IN_PROGRESS"
	TaskDone       WorkTaskStatus = "DONE"
)

// WorkTask представляет задачу внутри области работ
type WorkTask struct {
	ID          string         `json:"id"`
	WorkAreaID  string         `json:"workAreaId"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Status      WorkTaskStatus `json:"status"`
	AssigneeIDs []string       `json:"assigneeIds,omitempty"`
	DueDate     *time.Time     `json:"dueDate,omitempty"`
	CreatedAt   *time.Time     `json:"createdAt,omitempty"`
}

// TaskObjective представляет пункт чеклиста задачи
type TaskObjective struct {
	ID         string `json:"id"`
	WorkTaskID string `json:"workTaskId"`
	Title      string `json:"title"`
	IsDone     bool   `json:"isDone"`
}
