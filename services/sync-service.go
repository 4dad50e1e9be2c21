package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/malika-ai/project-management-prototype/gateway"
	"github.com/malika-ai/project-management-prototype/logging"
	"github.com/malika-ai/project-management-prototype/models"
)

// Poll povlači kompletan snimak sa udaljenog skladišta i stapa ga u lokalno
// stanje. Dok bilo koji zadatak ima upis u toku, ceo krug se preskače da se
// stapanje ne bi ukrstilo sa neupisanom lokalnom izmenom.
func (s *StateService) Poll(ctx context.Context) error {
	s.mu.Lock()
	busy := len(s.processing) > 0
	s.mu.Unlock()
	if busy {
		return nil
	}

	data, err := s.gateway.Do(ctx, gateway.ActionGetAll, nil)
	if err != nil {
		return fmt.Errorf("failed to fetch snapshot: %v", err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to decode snapshot: %v", err)
	}

	s.Reconcile(&snap)
	return nil
}

// Reconcile stapa serverski snimak u lokalno stanje bez gubljenja aktivnih
// štoperica:
//   - zadatak sa upisom u toku ostaje lokalan, netaknut;
//   - zadatak sa aktivnom štopericom zadržava lokalne sesije i izvedena
//     polja, ali preuzima serversko upisano vreme (server je autoritet za
//     upisano vreme, lokal za "neko trenutno meri");
//   - ostale zadatke serverska verzija u potpunosti zamenjuje;
//   - zadaci koje samo server zna se dodaju na kraj.
func (s *StateService) Reconcile(server *models.Snapshot) {
	if server == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.processing) > 0 {
		return
	}

	if server.Settings != nil {
		merged := s.settings.Clone()
		merged.Theme = server.Settings.Theme
		merged.CompactView = server.Settings.CompactView
		merged.SidebarCollapsed = server.Settings.SidebarCollapsed
		// Serverska vrednost pobeđuje po ključu, lokalne popunjavaju rupe.
		for k, v := range server.Settings.DeadlineDays {
			merged.DeadlineDays[k] = v
		}
		s.settings = merged
	}

	if server.Clients != nil {
		s.clients = mergeByID(server.Clients, s.clients, func(c *models.Client) string { return c.ID })
	}
	if server.Projects != nil {
		s.projects = mergeByID(server.Projects, s.projects, func(p *models.Project) string { return p.ID })
	}
	if server.Team != nil {
		s.team = server.Team
	}

	if server.Tasks == nil {
		return
	}

	local := make(map[string]*models.Task, len(s.tasks))
	for _, t := range s.tasks {
		local[t.ID] = t
	}

	merged := make([]*models.Task, 0, len(server.Tasks))
	seen := make(map[string]bool, len(server.Tasks))
	for _, remote := range server.Tasks {
		seen[remote.ID] = true
		cur, ok := local[remote.ID]
		if !ok {
			merged = append(merged, remote)
			continue
		}
		if cur.HasActiveTimers() {
			kept := cur.Clone()
			kept.TimeSpent = remote.TimeSpent
			merged = append(merged, kept)
			continue
		}
		merged = append(merged, remote)
	}

	// Zadaci sa aktivnom štopericom koje server još ne zna ostaju.
	for _, t := range s.tasks {
		if !seen[t.ID] && t.HasActiveTimers() {
			merged = append(merged, t)
		}
	}
	s.tasks = merged
}

// mergeByID zadržava serverski redosled, a dodaje lokalne zapise koje server
// još nema (npr. kreiranje čiji upis nije uspeo).
func mergeByID[T any](server, local []*T, id func(*T) string) []*T {
	seen := make(map[string]bool, len(server))
	out := make([]*T, 0, len(server))
	for _, v := range server {
		seen[id(v)] = true
		out = append(out, v)
	}
	for _, v := range local {
		if !seen[id(v)] {
			out = append(out, v)
		}
	}
	return out
}

// EscalatePriorities podiže prioritete nezavršenih zadataka prema isteklom
// delu roka: 100% prozora → Urgent, 70% → High. Prioritet se nikad ne
// spušta. Promenjeni zadaci se posle prolaza šalju kao UPDATE_TASK upisi.
func (s *StateService) EscalatePriorities() []*models.Task {
	s.mu.Lock()
	now := s.now()
	var changed []*models.Task
	for _, t := range s.tasks {
		if t.IsCompleted || t.CreatedAt <= 0 {
			continue
		}
		elapsedDays := float64(now.UnixMilli()-t.CreatedAt) / float64(24*time.Hour/time.Millisecond)
		if elapsedDays < 0 {
			continue
		}

		windowDays := 3.0
		if days, ok := s.settings.DeadlineDays[t.Title]; ok && days > 0 {
			windowDays = float64(days)
		}

		target := models.PriorityRegular
		if elapsedDays >= windowDays {
			target = models.PriorityUrgent
		} else if elapsedDays >= 0.7*windowDays {
			target = models.PriorityHigh
		}

		if target.Rank() > t.Priority.Rank() {
			t.Priority = target
			changed = append(changed, t.Clone())
		}
	}
	s.mu.Unlock()

	for _, t := range changed {
		s.scheduleWrite(gateway.ActionUpdateTask, t)
	}
	return changed
}

// RunBackground pokreće pozadinske petlje: poll-and-merge i eskalaciju
// prioriteta. Obe staju kad se ctx otkaže. onPolled (opciono) dobija svež
// snimak posle svakog uspešnog kruga, za upis u lokalni keš.
func (s *StateService) RunBackground(ctx context.Context, pollEvery, escalateEvery time.Duration, onPolled func(*models.Snapshot)) {
	go func() {
		ticker := time.NewTicker(pollEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.Poll(ctx); err != nil {
					logging.Logger.Warnf("Event ID: POLL_FAILED, Description: Background poll failed: %v", err)
					continue
				}
				if onPolled != nil {
					onPolled(s.SnapshotState())
				}
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(escalateEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.EscalatePriorities()
			}
		}
	}()
}
