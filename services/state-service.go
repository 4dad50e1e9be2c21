package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/malika-ai/project-management-prototype/gateway"
	"github.com/malika-ai/project-management-prototype/logging"
	"github.com/malika-ai/project-management-prototype/models"
)

// ErrTaskBusy vraćaju operacije nad zadatkom čiji prethodni upis još nije
// legao na udaljeno skladište.
var ErrTaskBusy = errors.New("task has a pending write")

// Gateway je transport prema udaljenom skladištu; interfejs postoji da testovi
// mogu da kontrolišu trenutak završetka upisa.
type Gateway interface {
	Do(ctx context.Context, action string, payload any) (json.RawMessage, error)
}

// StateService drži jedino stablo stanja i sve operacije koje ga menjaju.
// Lokalna izmena je sinhrona i uvek uspeva; upareni upis na udaljeno skladište
// ide asinhrono i njegov neuspeh se samo loguje, nikad ne vraća lokalno stanje
// unazad. Mutex je jedina zaštita stabla; processing skup je savetodavna
// brava po zadatku.
type StateService struct {
	mu       sync.Mutex
	clients  []*models.Client
	projects []*models.Project
	tasks    []*models.Task
	team     []*models.TeamMember
	settings *models.AppSettings

	processing map[string]bool
	stages     []models.WorkflowStage

	gateway Gateway
	grace   time.Duration
	now     func() time.Time
}

func NewStateService(gw Gateway, stages []models.WorkflowStage, grace time.Duration) *StateService {
	return &StateService{
		settings:   &models.AppSettings{Theme: "dark", DeadlineDays: map[string]int{}},
		processing: make(map[string]bool),
		stages:     stages,
		gateway:    gw,
		grace:      grace,
		now:        time.Now,
	}
}

// ReplaceState učitava kompletan snimak preko trenutnog stanja (hladan start
// iz keša ili prvi GET_ALL).
func (s *StateService) ReplaceState(snap *models.Snapshot) {
	if snap == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients = snap.Clients
	s.projects = snap.Projects
	s.tasks = snap.Tasks
	s.team = snap.Team
	if snap.Settings != nil {
		merged := s.settings.Clone()
		merged.Theme = snap.Settings.Theme
		merged.CompactView = snap.Settings.CompactView
		merged.SidebarCollapsed = snap.Settings.SidebarCollapsed
		for k, v := range snap.Settings.DeadlineDays {
			merged.DeadlineDays[k] = v
		}
		s.settings = merged
	}
}

// SnapshotState vraća duboku kopiju stanja za keš i za čitanja iz handlera.
func (s *StateService) SnapshotState() *models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &models.Snapshot{Settings: s.settings.Clone()}
	for _, c := range s.clients {
		snap.Clients = append(snap.Clients, c.Clone())
	}
	for _, p := range s.projects {
		cp := *p
		snap.Projects = append(snap.Projects, &cp)
	}
	for _, t := range s.tasks {
		snap.Tasks = append(snap.Tasks, t.Clone())
	}
	for _, m := range s.team {
		cm := *m
		snap.Team = append(snap.Team, &cm)
	}
	return snap
}

// IsProcessing javlja da li zadatak ima upis u toku.
func (s *StateService) IsProcessing(taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing[taskID]
}

// findTask i srodni helperi se pozivaju pod zaključanim mutexom.
func (s *StateService) findTask(id string) *models.Task {
	for _, t := range s.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (s *StateService) findClient(id string) *models.Client {
	for _, c := range s.clients {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (s *StateService) findProject(id string) *models.Project {
	for _, p := range s.projects {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *StateService) clientForProject(projectID string) *models.Client {
	p := s.findProject(projectID)
	if p == nil || p.ClientID == "" {
		return nil
	}
	return s.findClient(p.ClientID)
}

// effectiveDeadlineDays vraća rok u danima za naziv zadatka faze:
// preklapanje iz podešavanja, pa podrazumevana vrednost faze, pa 3.
func (s *StateService) effectiveDeadlineDays(title string) int {
	if days, ok := s.settings.DeadlineDays[title]; ok && days > 0 {
		return days
	}
	if idx := models.StageIndexByTitle(s.stages, title); idx >= 0 {
		return s.stages[idx].DeadlineDays
	}
	return 3
}

// scheduleWrite šalje upis bez blokiranja pozivaoca; neuspeh se samo loguje.
func (s *StateService) scheduleWrite(action string, payload any) {
	go func() {
		if _, err := s.gateway.Do(context.Background(), action, payload); err != nil {
			logging.Logger.Warnf("Event ID: REMOTE_WRITE_FAILED, Description: Write %s failed: %v", action, err)
		}
	}()
}

// scheduleTaskWrite radi isto, ali po završetku (uspeh ili neuspeh) skida
// processing oznaku zadatka, posle opcione pauze koja pokriva i kaskadna
// kreiranja zadataka.
func (s *StateService) scheduleTaskWrite(action string, payload any, taskID string, grace time.Duration) {
	go func() {
		if _, err := s.gateway.Do(context.Background(), action, payload); err != nil {
			logging.Logger.Warnf("Event ID: REMOTE_WRITE_FAILED, Description: Write %s for task %s failed: %v", action, taskID, err)
		}
		if grace > 0 {
			time.Sleep(grace)
		}
		s.mu.Lock()
		delete(s.processing, taskID)
		s.mu.Unlock()
	}()
}

// CreateClient upisuje novog klijenta, otvara mu projekat i kreira zadatak
// prve faze workflow-a.
func (s *StateService) CreateClient(name, businessName, packageTier, email, phone string) (*models.Client, error) {
	if len(s.stages) == 0 {
		return nil, fmt.Errorf("no workflow stages configured")
	}

	s.mu.Lock()
	now := s.now()
	first := s.stages[0]

	client := &models.Client{
		ID:           uuid.New().String(),
		Name:         name,
		BusinessName: businessName,
		PackageTier:  packageTier,
		Email:        email,
		Phone:        phone,
		Status:       first.StatusLabel,
		JoinedAt:     now.UnixMilli(),
		Requirements: []string{},
		Addons:       []string{},
	}
	project := &models.Project{
		ID:       uuid.New().String(),
		Name:     businessName,
		ClientID: client.ID,
		Status:   models.ProjectActive,
	}
	task := s.newStageTask(project.ID, 0, nil, nil, now)

	s.clients = append(s.clients, client)
	s.projects = append(s.projects, project)
	s.tasks = append(s.tasks, task)

	clientCopy := client.Clone()
	projectCopy := *project
	taskCopy := task.Clone()
	s.mu.Unlock()

	s.scheduleWrite(gateway.ActionCreateClient, clientCopy)
	s.scheduleWrite(gateway.ActionCreateProject, &projectCopy)
	s.scheduleWrite(gateway.ActionCreateTask, taskCopy)

	return clientCopy, nil
}

// UpdateClient preklapa izmenjena polja klijenta; nepostojeći ID je no-op.
func (s *StateService) UpdateClient(updated *models.Client) *models.Client {
	s.mu.Lock()
	client := s.findClient(updated.ID)
	if client == nil {
		s.mu.Unlock()
		return nil
	}
	client.Name = updated.Name
	client.BusinessName = updated.BusinessName
	client.PackageTier = updated.PackageTier
	client.Email = updated.Email
	client.Phone = updated.Phone
	if updated.Status != "" {
		client.Status = updated.Status
	}
	copy := client.Clone()
	s.mu.Unlock()

	s.scheduleWrite(gateway.ActionUpdateClient, copy)
	return copy
}

func (s *StateService) CreateProject(name, clientID string) *models.Project {
	s.mu.Lock()
	project := &models.Project{
		ID:       uuid.New().String(),
		Name:     name,
		ClientID: clientID,
		Status:   models.ProjectActive,
	}
	s.projects = append(s.projects, project)
	copy := *project
	s.mu.Unlock()

	s.scheduleWrite(gateway.ActionCreateProject, &copy)
	return &copy
}

func (s *StateService) UpdateProject(updated *models.Project) *models.Project {
	s.mu.Lock()
	project := s.findProject(updated.ID)
	if project == nil {
		s.mu.Unlock()
		return nil
	}
	project.Name = updated.Name
	if updated.Status != "" {
		project.Status = updated.Status
	}
	copy := *project
	s.mu.Unlock()

	s.scheduleWrite(gateway.ActionUpdateProject, &copy)
	return &copy
}

// AddMember dodaje člana tima; email mora biti jedinstven bez obzira na
// velika i mala slova.
func (s *StateService) AddMember(name, email, password string, role models.Role, avatar string) (*models.TeamMember, error) {
	s.mu.Lock()
	for _, m := range s.team {
		if strings.EqualFold(m.Email, email) {
			s.mu.Unlock()
			return nil, fmt.Errorf("member with email already exists")
		}
	}
	member := &models.TeamMember{
		ID:       uuid.New().String(),
		Name:     name,
		Email:    email,
		Password: password,
		Role:     role,
		Avatar:   avatar,
	}
	s.team = append(s.team, member)
	copy := *member
	s.mu.Unlock()

	s.scheduleWrite(gateway.ActionCreateTeam, &copy)
	return &copy, nil
}

func (s *StateService) UpdateMember(updated *models.TeamMember) *models.TeamMember {
	s.mu.Lock()
	var member *models.TeamMember
	for _, m := range s.team {
		if m.ID == updated.ID {
			member = m
			break
		}
	}
	if member == nil {
		s.mu.Unlock()
		return nil
	}
	member.Name = updated.Name
	member.Email = updated.Email
	if updated.Password != "" {
		member.Password = updated.Password
	}
	if updated.Role != "" {
		member.Role = updated.Role
	}
	member.Avatar = updated.Avatar
	copy := *member
	s.mu.Unlock()

	s.scheduleWrite(gateway.ActionUpdateTeam, &copy)
	return &copy
}

// RemoveMember je jedina operacija brisanja u sistemu.
func (s *StateService) RemoveMember(id string) bool {
	s.mu.Lock()
	found := false
	for i, m := range s.team {
		if m.ID == id {
			s.team = append(s.team[:i], s.team[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()

	if found {
		s.scheduleWrite(gateway.ActionDeleteTeam, map[string]string{"id": id})
	}
	return found
}

func (s *StateService) UpdateSettings(updated *models.AppSettings) *models.AppSettings {
	s.mu.Lock()
	merged := updated.Clone()
	if merged.DeadlineDays == nil {
		merged.DeadlineDays = map[string]int{}
	}
	s.settings = merged
	copy := merged.Clone()
	s.mu.Unlock()

	s.scheduleWrite(gateway.ActionUpdateSettings, copy)
	return copy
}

// Settings vraća kopiju trenutnih podešavanja.
func (s *StateService) Settings() *models.AppSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.Clone()
}
