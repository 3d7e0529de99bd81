package models

// Priority of a backlog task; P0 is most urgent.
type Priority string

const (
	PriorityP0 Priority = "P0"
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
	PriorityP3 Priority = "P3"
)

type TaskStatus string

const (
	TaskBacklog    TaskStatus = "BACKLOG"
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskDone       TaskStatus = "DONE"
)

type SprintStatus string

const (
	SprintPlanning  SprintStatus = "PLANNING"
	SprintActive    SprintStatus = "ACTIVE"
	SprintCompleted SprintStatus = "COMPLETED"
)

// Task is one unit of construction work. Tasks live inside BACKLOG documents.
type Task struct {
	ID       string     `json:"id" validate:"required"`
	Title    string     `json:"title" validate:"required"`
	Priority Priority   `json:"priority" validate:"required,oneof=P0 P1 P2 P3"`
	Phase    string     `json:"phase"`
	Status   TaskStatus `json:"status" validate:"required,oneof=BACKLOG TODO IN_PROGRESS DONE"`
}

// Sprint owns an ordered list of tasks.
type Sprint struct {
	ID     string       `json:"id" validate:"required"`
	Name   string       `json:"name" validate:"required"`
	Status SprintStatus `json:"status" validate:"required,oneof=PLANNING ACTIVE COMPLETED"`
	Tasks  []Task       `json:"tasks" validate:"dive"`
}

// Progress returns the share of DONE tasks in [0,1]. An empty sprint is 0.
func (s Sprint) Progress() float64 {
	if len(s.Tasks) == 0 {
		return 0
	}
	done := 0
	for _, t := range s.Tasks {
		if t.Status == TaskDone {
			done++
		}
	}
	return float64(done) / float64(len(s.Tasks))
}
