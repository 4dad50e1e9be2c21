package models

// Snapshot je kompletno stanje koje GET_ALL vraća sa udaljenog skladišta.
type Snapshot struct {
	Clients  []*Client     `json:"clients"`
	Projects []*Project    `json:"projects"`
	Tasks    []*Task       `json:"tasks"`
	Team     []*TeamMember `json:"team"`
	Settings *AppSettings  `json:"settings,omitempty"`
}
