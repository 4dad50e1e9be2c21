package models

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "Active"
	ProjectCompleted ProjectStatus = "Completed"
	ProjectOnHold    ProjectStatus = "On Hold"
	ProjectArchived  ProjectStatus = "Archived"
)

// Project pripada klijentu; bez ClientID u pitanju je interni projekat.
type Project struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	ClientID string        `json:"clientId,omitempty"`
	Status   ProjectStatus `json:"status"`
}
