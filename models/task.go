package models

// Division predstavlja tim zadužen za zadatak.
type Division string

const (
	DivisionAccountManagement Division = "Account Management"
	DivisionDesign            Division = "Design"
	DivisionDevelopment       Division = "Development"
	DivisionMarketing         Division = "Marketing"
)

// Priority je rastući niz prioriteta zadatka.
type Priority string

const (
	PriorityLow     Priority = "Low"
	PriorityRegular Priority = "Regular"
	PriorityHigh    Priority = "High"
	PriorityUrgent  Priority = "Urgent"
)

// Rank vraća poziciju prioriteta u nizu; veći broj znači hitniji zadatak.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityRegular:
		return 1
	case PriorityHigh:
		return 2
	case PriorityUrgent:
		return 3
	}
	return 1
}

type Subtask struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	IsCompleted bool   `json:"isCompleted"`
	CompletedAt int64  `json:"completedAt,omitempty"`
}

// Task je zadatak u okviru projekta. Vremenske oznake su epoch milisekunde,
// TimeSpent su sekunde. TimerSessions mapira ID korisnika na početak sesije;
// korisnik je u ActiveUserIDs ako i samo ako ima zapis u TimerSessions.
type Task struct {
	ID                string           `json:"id"`
	Title             string           `json:"title"`
	ProjectID         string           `json:"projectId"`
	Division          Division         `json:"division"`
	AssigneeIDs       []string         `json:"assigneeIds"`
	IsCompleted       bool             `json:"isCompleted"`
	CompletedAt       int64            `json:"completedAt,omitempty"`
	TimeSpent         float64          `json:"timeSpent"`
	ActiveUserIDs     []string         `json:"activeUserIds"`
	TimerSessions     map[string]int64 `json:"timerSessions"`
	Deadline          int64            `json:"deadline"`
	Priority          Priority         `json:"priority"`
	CompletionPercent int              `json:"completionPercent"`
	LastProgressNote  string           `json:"lastProgressNote,omitempty"`
	Subtasks          []Subtask        `json:"subtasks"`
	CreatedAt         int64            `json:"createdAt"`
}

// Clone pravi duboku kopiju zadatka.
func (t *Task) Clone() *Task {
	c := *t
	c.AssigneeIDs = append([]string(nil), t.AssigneeIDs...)
	c.ActiveUserIDs = append([]string(nil), t.ActiveUserIDs...)
	c.Subtasks = append([]Subtask(nil), t.Subtasks...)
	if t.TimerSessions != nil {
		c.TimerSessions = make(map[string]int64, len(t.TimerSessions))
		for k, v := range t.TimerSessions {
			c.TimerSessions[k] = v
		}
	}
	return &c
}

// HasActiveTimers javlja da li neko trenutno meri vreme na zadatku.
func (t *Task) HasActiveTimers() bool {
	return len(t.ActiveUserIDs) > 0 || len(t.TimerSessions) > 0
}
