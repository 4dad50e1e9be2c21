package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/malika-ai/project-management-prototype/gateway"
	"github.com/malika-ai/project-management-prototype/models"
	"github.com/malika-ai/project-management-prototype/timetrack"
)

// CreateTask pravi proizvoljan zadatak (van workflow automatike).
func (s *StateService) CreateTask(title, projectID string, division models.Division, assigneeIDs []string, priority models.Priority, deadline int64, subtasks []string) *models.Task {
	s.mu.Lock()
	now := s.now()
	if priority == "" {
		priority = models.PriorityRegular
	}
	task := &models.Task{
		ID:          uuid.New().String(),
		Title:       title,
		ProjectID:   projectID,
		Division:    division,
		AssigneeIDs: append([]string(nil), assigneeIDs...),
		Deadline:    deadline,
		Priority:    priority,
		Subtasks:    subtasksFromTitles(subtasks),
		CreatedAt:   now.UnixMilli(),
	}
	s.tasks = append(s.tasks, task)
	cp := task.Clone()
	s.mu.Unlock()

	s.scheduleWrite(gateway.ActionCreateTask, cp)
	return cp
}

// UpdateTask preklapa polja zadatka koja uređuje korisnik. Vremenska polja se
// ovde ne diraju — njih menjaju isključivo timer operacije.
func (s *StateService) UpdateTask(updated *models.Task) *models.Task {
	s.mu.Lock()
	task := s.findTask(updated.ID)
	if task == nil {
		s.mu.Unlock()
		return nil
	}
	task.Title = updated.Title
	if updated.Division != "" {
		task.Division = updated.Division
	}
	if updated.Priority != "" {
		task.Priority = updated.Priority
	}
	if updated.Deadline > 0 {
		task.Deadline = updated.Deadline
	}
	if updated.Subtasks != nil {
		task.Subtasks = append([]models.Subtask(nil), updated.Subtasks...)
	}
	cp := task.Clone()
	s.mu.Unlock()

	s.scheduleWrite(gateway.ActionUpdateTask, cp)
	return cp
}

// AssignTask postavlja izvršioce zadatka.
func (s *StateService) AssignTask(taskID string, assigneeIDs []string) *models.Task {
	s.mu.Lock()
	task := s.findTask(taskID)
	if task == nil {
		s.mu.Unlock()
		return nil
	}
	task.AssigneeIDs = append([]string(nil), assigneeIDs...)
	cp := task.Clone()
	s.mu.Unlock()

	s.scheduleWrite(gateway.ActionUpdateTask, cp)
	return cp
}

// ToggleTaskTimer pali ili gasi štopericu korisnika na zadatku. Poziv nad
// zadatkom sa upisom u toku se odbija bez izmene stanja; nepostojeći zadatak
// je tihi no-op.
func (s *StateService) ToggleTaskTimer(taskID, userID string) (*models.Task, error) {
	s.mu.Lock()
	if s.processing[taskID] {
		s.mu.Unlock()
		return nil, ErrTaskBusy
	}
	task := s.findTask(taskID)
	if task == nil {
		s.mu.Unlock()
		return nil, nil
	}

	now := s.now()
	running := false
	for _, id := range task.ActiveUserIDs {
		if id == userID {
			running = true
			break
		}
	}

	var committed float64
	if running {
		before := task.TimeSpent
		timetrack.StopSession(task, userID, now)
		committed = task.TimeSpent - before
	} else {
		timetrack.StartSession(task, userID, now)
	}

	var clientCopy *models.Client
	if committed > 0 {
		if client := s.clientForProject(task.ProjectID); client != nil {
			client.TotalTimeSpent += committed
			clientCopy = client.Clone()
		}
	}

	s.processing[taskID] = true
	cp := task.Clone()
	s.mu.Unlock()

	s.scheduleTaskWrite(gateway.ActionUpdateTask, cp, taskID, 0)
	if clientCopy != nil {
		s.scheduleWrite(gateway.ActionUpdateClient, clientCopy)
	}
	return cp, nil
}

// LogTaskProgress beleži napredak na zadatku: gasi štopericu korisnika koji
// upisuje, pamti procenat i belešku, a na 100% pokreće workflow korak —
// kreiranje zadatka sledeće faze, addon zadataka i pomeranje statusa
// klijenta. Svi novi zadaci idu u jedan batch upis.
func (s *StateService) LogTaskProgress(taskID, userID string, percent int, note string, requirements, addons []string) (*models.Task, error) {
	s.mu.Lock()
	if s.processing[taskID] {
		s.mu.Unlock()
		return nil, ErrTaskBusy
	}
	task := s.findTask(taskID)
	if task == nil {
		s.mu.Unlock()
		return nil, nil
	}

	now := s.now()
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	// Upis napretka implicitno gasi štopericu samo korisniku koji upisuje.
	before := task.TimeSpent
	timetrack.StopSession(task, userID, now)
	committed := task.TimeSpent - before

	task.CompletionPercent = percent
	if note != "" {
		task.LastProgressNote = note
	}

	var created []*models.Task
	client := s.clientForProject(task.ProjectID)

	if percent == 100 && !task.IsCompleted {
		task.IsCompleted = true
		task.CompletedAt = now.UnixMilli()
		created = s.advanceWorkflow(task, client, requirements, addons, now)
	}

	var clientCopy *models.Client
	if client != nil {
		if committed > 0 {
			client.TotalTimeSpent += committed
		}
		clientCopy = client.Clone()
	}

	s.processing[taskID] = true
	cp := task.Clone()
	var createdCopies []*models.Task
	for _, c := range created {
		createdCopies = append(createdCopies, c.Clone())
	}
	s.mu.Unlock()

	s.scheduleTaskWrite(gateway.ActionUpdateTask, cp, taskID, s.grace)
	if len(createdCopies) > 0 {
		s.scheduleWrite(gateway.ActionBatchCreateTasks, createdCopies)
	}
	if clientCopy != nil {
		s.scheduleWrite(gateway.ActionUpdateClient, clientCopy)
	}
	return cp, nil
}

// advanceWorkflow sprovodi korak workflow-a posle kompletiranog zadatka;
// poziva se pod zaključanim mutexom. Vraća zadatke kreirane u ovom koraku.
func (s *StateService) advanceWorkflow(done *models.Task, client *models.Client, requirements, addons []string, now time.Time) []*models.Task {
	var created []*models.Task

	idx := models.StageIndexByTitle(s.stages, done.Title)
	if idx >= 0 {
		if idx+1 < len(s.stages) {
			next := s.stages[idx+1]
			existing := s.findStageTask(done.ProjectID, next.TaskTitle)
			if existing != nil {
				// Zadatak sledeće faze već postoji — samo dopuni podzadatke.
				appendRequirementSubtasks(existing, requirements)
			} else {
				task := s.newStageTask(done.ProjectID, idx+1, requirements, done.AssigneeIDs, now)
				s.tasks = append(s.tasks, task)
				created = append(created, task)
			}
			if client != nil {
				client.Status = next.StatusLabel
			}
		} else if client != nil {
			// Poslednja faza — klijent postaje aktivan.
			client.Status = models.ClientActive
		}
	}

	if client != nil {
		client.Requirements = append(client.Requirements, requirements...)
	}

	for _, addon := range addons {
		task := &models.Task{
			ID:          uuid.New().String(),
			Title:       "Addon: " + addon,
			ProjectID:   done.ProjectID,
			Division:    done.Division,
			AssigneeIDs: append([]string(nil), done.AssigneeIDs...),
			Deadline:    now.Add(2 * 24 * time.Hour).UnixMilli(),
			Priority:    models.PriorityHigh,
			Subtasks:    []models.Subtask{},
			CreatedAt:   now.UnixMilli(),
		}
		s.tasks = append(s.tasks, task)
		created = append(created, task)
		if client != nil {
			client.Addons = append(client.Addons, addon)
		}
	}

	return created
}

// findStageTask traži zadatak faze po (projekat, naziv) paru — to je ključ
// idempotentnosti koraka workflow-a.
func (s *StateService) findStageTask(projectID, title string) *models.Task {
	for _, t := range s.tasks {
		if t.ProjectID == projectID && t.Title == title {
			return t
		}
	}
	return nil
}

// newStageTask pravi zadatak date faze; podzadaci su prosleđeni zahtevi, a
// bez njih podrazumevani podzadaci faze. Izvršioci se nasleđuju od
// prethodnog zadatka.
func (s *StateService) newStageTask(projectID string, stageIdx int, requirements, assignees []string, now time.Time) *models.Task {
	stage := s.stages[stageIdx]
	days := s.effectiveDeadlineDays(stage.TaskTitle)

	titles := requirements
	if len(titles) == 0 {
		titles = stage.DefaultSubtasks
	}

	return &models.Task{
		ID:          uuid.New().String(),
		Title:       stage.TaskTitle,
		ProjectID:   projectID,
		Division:    stage.Division,
		AssigneeIDs: append([]string(nil), assignees...),
		Deadline:    now.Add(time.Duration(days) * 24 * time.Hour).UnixMilli(),
		Priority:    stage.DefaultPriority,
		Subtasks:    subtasksFromTitles(titles),
		CreatedAt:   now.UnixMilli(),
	}
}

func appendRequirementSubtasks(task *models.Task, requirements []string) {
	for _, req := range requirements {
		exists := false
		for _, st := range task.Subtasks {
			if st.Title == req {
				exists = true
				break
			}
		}
		if !exists {
			task.Subtasks = append(task.Subtasks, models.Subtask{
				ID:    uuid.New().String(),
				Title: req,
			})
		}
	}
}

func subtasksFromTitles(titles []string) []models.Subtask {
	subtasks := []models.Subtask{}
	for _, title := range titles {
		subtasks = append(subtasks, models.Subtask{
			ID:    uuid.New().String(),
			Title: title,
		})
	}
	return subtasks
}
