package models

// WorkflowStage je jedna faza fiksnog onboarding workflow-a. Svaka faza
// proizvodi tačno jedan zadatak po projektu; naziv zadatka se poredi samo na
// granici serijalizacije, interno se radi sa indeksom faze.
type WorkflowStage struct {
	TaskTitle       string       `json:"taskTitle"`
	StatusLabel     ClientStatus `json:"statusLabel"`
	Division        Division     `json:"division"`
	DefaultPriority Priority     `json:"defaultPriority"`
	DefaultSubtasks []string     `json:"defaultSubtasks"`
	DeadlineDays    int          `json:"deadlineDays"`
}

// DefaultStages je podrazumevani redosled faza, od prijema klijenta do
// predaje sajta. Rokovi se mogu preklopiti kroz AppSettings.DeadlineDays.
func DefaultStages() []WorkflowStage {
	return []WorkflowStage{
		{
			TaskTitle:       "Onboarding Form",
			StatusLabel:     "Onboarding",
			Division:        DivisionAccountManagement,
			DefaultPriority: PriorityHigh,
			DefaultSubtasks: []string{"Send welcome email", "Collect business details", "Schedule kickoff call"},
			DeadlineDays:    2,
		},
		{
			TaskTitle:       "Brand Assets",
			StatusLabel:     "Assets",
			Division:        DivisionDesign,
			DefaultPriority: PriorityRegular,
			DefaultSubtasks: []string{"Collect logo files", "Collect brand colors", "Collect copy and images"},
			DeadlineDays:    3,
		},
		{
			TaskTitle:       "Website Draft",
			StatusLabel:     "Draft",
			Division:        DivisionDevelopment,
			DefaultPriority: PriorityRegular,
			DefaultSubtasks: []string{"Set up hosting", "Build draft pages", "Internal QA pass"},
			DeadlineDays:    5,
		},
		{
			TaskTitle:       "Client Review",
			StatusLabel:     "Review",
			Division:        DivisionAccountManagement,
			DefaultPriority: PriorityRegular,
			DefaultSubtasks: []string{"Send preview link", "Collect feedback", "Apply revisions"},
			DeadlineDays:    3,
		},
		{
			TaskTitle:       "Launch",
			StatusLabel:     "Launch",
			Division:        DivisionDevelopment,
			DefaultPriority: PriorityHigh,
			DefaultSubtasks: []string{"Point domain", "Go-live checklist", "Handover credentials"},
			DeadlineDays:    2,
		},
	}
}

// StageIndexByTitle vraća indeks faze čiji zadatak nosi dati naziv, ili -1.
func StageIndexByTitle(stages []WorkflowStage, title string) int {
	for i, s := range stages {
		if s.TaskTitle == title {
			return i
		}
	}
	return -1
}
