package models

// AppSettings su podešavanja instalacije. DeadlineDays preklapa podrazumevani
// broj dana za rok po nazivu zadatka faze.
type AppSettings struct {
	Theme            string         `json:"theme"`
	CompactView      bool           `json:"compactView"`
	SidebarCollapsed bool           `json:"sidebarCollapsed"`
	DeadlineDays     map[string]int `json:"deadlineDays"`
}

// Clone pravi kopiju podešavanja sa sopstvenom mapom.
func (s *AppSettings) Clone() *AppSettings {
	n := *s
	n.DeadlineDays = make(map[string]int, len(s.DeadlineDays))
	for k, v := range s.DeadlineDays {
		n.DeadlineDays[k] = v
	}
	return &n
}
