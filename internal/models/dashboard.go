package models

// DashboardSummary aggregates the caller's visible projects and tasks.
// It is computed in a single pass over the loaded entities and never
// mutates anything.
type DashboardSummary struct {
	TotalProjects   int
	ActiveProjects  int
	TotalTasks      int
	PendingTasks    int
	CompletedTasks  int
	OverdueTasks    int
	TasksByStatus   map[TaskStatus]int
	TasksByPriority map[Priority]int
}

// NewDashboardSummary returns a summary with every status and priority
// bucket present and zeroed, so consumers always see all buckets.
func NewDashboardSummary() *DashboardSummary {
	s := &DashboardSummary{
		TasksByStatus:   make(map[TaskStatus]int, len(TaskStatuses)),
		TasksByPriority: make(map[Priority]int, len(Priorities)),
	}
	for _, st := range TaskStatuses {
		s.TasksByStatus[st] = 0
	}
	for _, p := range Priorities {
		s.TasksByPriority[p] = 0
	}
	return s
}
