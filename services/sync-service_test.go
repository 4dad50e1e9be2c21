package services

import (
	"testing"
	"time"

	"github.com/malika-ai/project-management-prototype/models"
)

func TestReconcileKeepsActiveTimers(t *testing.T) {
	gw := &fakeGateway{}
	s, now := newTestService(gw)

	start := now.UnixMilli()
	s.ReplaceState(&models.Snapshot{
		Tasks: []*models.Task{{
			ID:            "t1",
			Title:         "Website Draft",
			ProjectID:     "p1",
			TimeSpent:     100,
			ActiveUserIDs: []string{"u1"},
			TimerSessions: map[string]int64{"u1": start},
		}},
	})

	server := &models.Snapshot{
		Tasks: []*models.Task{{
			ID:        "t1",
			Title:     "Website Draft",
			ProjectID: "p1",
			TimeSpent: 250, // server je autoritet za upisano vreme
		}},
	}
	s.Reconcile(server)

	task := s.SnapshotState().Tasks[0]
	if task.TimeSpent != 250 {
		t.Errorf("expected server timeSpent adopted, got %f", task.TimeSpent)
	}
	if len(task.ActiveUserIDs) != 1 || task.ActiveUserIDs[0] != "u1" {
		t.Errorf("expected local active set kept, got %v", task.ActiveUserIDs)
	}
	if task.TimerSessions["u1"] != start {
		t.Errorf("expected local session kept, got %v", task.TimerSessions)
	}
}

func TestReconcileReplacesIdleTasksAndAppendsNew(t *testing.T) {
	gw := &fakeGateway{}
	s, _ := newTestService(gw)

	s.ReplaceState(&models.Snapshot{
		Tasks: []*models.Task{{ID: "t1", Title: "Old Title", ProjectID: "p1", CompletionPercent: 10}},
	})

	server := &models.Snapshot{
		Tasks: []*models.Task{
			{ID: "t1", Title: "New Title", ProjectID: "p1", CompletionPercent: 60},
			{ID: "t2", Title: "Server Only", ProjectID: "p1"},
		},
	}
	s.Reconcile(server)

	snap := s.SnapshotState()
	if len(snap.Tasks) != 2 {
		t.Fatalf("expected 2 tasks after merge, got %d", len(snap.Tasks))
	}
	if snap.Tasks[0].Title != "New Title" || snap.Tasks[0].CompletionPercent != 60 {
		t.Errorf("expected server version to replace idle local task, got %+v", snap.Tasks[0])
	}
	if snap.Tasks[1].ID != "t2" {
		t.Errorf("expected server-only task appended, got %+v", snap.Tasks[1])
	}
}

func TestReconcileSkippedWhileProcessing(t *testing.T) {
	gw := &fakeGateway{block: make(chan struct{})}
	s, _ := newTestService(gw)

	s.ReplaceState(&models.Snapshot{
		Tasks: []*models.Task{{ID: "t1", Title: "Website Draft", ProjectID: "p1"}},
	})

	if _, err := s.ToggleTaskTimer("t1", "u1"); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}

	// Dok je upis u toku, stapanje se u celini preskače.
	s.Reconcile(&models.Snapshot{
		Tasks: []*models.Task{{ID: "t1", Title: "Clobbered", ProjectID: "p1", TimeSpent: 999}},
	})

	task := s.SnapshotState().Tasks[0]
	if task.Title != "Website Draft" || task.TimeSpent != 0 {
		t.Errorf("expected local task untouched during processing, got %+v", task)
	}

	close(gw.block)
	waitNotProcessing(t, s, "t1")
}

func TestReconcileMergesSettingsServerWins(t *testing.T) {
	gw := &fakeGateway{}
	s, _ := newTestService(gw)

	s.UpdateSettings(&models.AppSettings{
		Theme:        "dark",
		DeadlineDays: map[string]int{"Website Draft": 7, "Client Review": 4},
	})

	s.Reconcile(&models.Snapshot{
		Settings: &models.AppSettings{
			Theme:        "light",
			DeadlineDays: map[string]int{"Website Draft": 10},
		},
	})

	got := s.Settings()
	if got.Theme != "light" {
		t.Errorf("expected server theme, got %q", got.Theme)
	}
	if got.DeadlineDays["Website Draft"] != 10 {
		t.Errorf("expected server override to win, got %d", got.DeadlineDays["Website Draft"])
	}
	if got.DeadlineDays["Client Review"] != 4 {
		t.Errorf("expected local value to fill the gap, got %d", got.DeadlineDays["Client Review"])
	}
}

func TestEscalatePriorities(t *testing.T) {
	gw := &fakeGateway{}
	s, now := newTestService(gw)

	day := int64(24 * time.Hour / time.Millisecond)
	s.ReplaceState(&models.Snapshot{
		Tasks: []*models.Task{
			{ID: "fresh", Title: "Website Draft", CreatedAt: now.UnixMilli(), Priority: models.PriorityRegular},
			{ID: "aging", Title: "Website Draft", CreatedAt: now.UnixMilli() - day*5/2, Priority: models.PriorityRegular},  // 2.5 od 3 dana
			{ID: "late", Title: "Website Draft", CreatedAt: now.UnixMilli() - day*4, Priority: models.PriorityRegular},     // preko roka
			{ID: "done", Title: "Website Draft", CreatedAt: now.UnixMilli() - day*9, Priority: models.PriorityLow, IsCompleted: true},
			{ID: "urgent-fresh", Title: "Website Draft", CreatedAt: now.UnixMilli(), Priority: models.PriorityUrgent},
			{ID: "no-created", Title: "Website Draft", Priority: models.PriorityRegular},
		},
	})

	before := map[string]int{}
	for _, task := range s.SnapshotState().Tasks {
		before[task.ID] = task.Priority.Rank()
	}

	changed := s.EscalatePriorities()

	want := map[string]models.Priority{
		"fresh":        models.PriorityRegular,
		"aging":        models.PriorityHigh,
		"late":         models.PriorityUrgent,
		"done":         models.PriorityLow,
		"urgent-fresh": models.PriorityUrgent,
		"no-created":   models.PriorityRegular,
	}
	for _, task := range s.SnapshotState().Tasks {
		if task.Priority != want[task.ID] {
			t.Errorf("task %s: expected %s, got %s", task.ID, want[task.ID], task.Priority)
		}
		if task.Priority.Rank() < before[task.ID] {
			t.Errorf("task %s was downgraded", task.ID)
		}
	}
	if len(changed) != 2 {
		t.Errorf("expected 2 escalated tasks queued for write, got %d", len(changed))
	}
}

func TestEscalateRespectsDeadlineOverride(t *testing.T) {
	gw := &fakeGateway{}
	s, now := newTestService(gw)

	day := int64(24 * time.Hour / time.Millisecond)
	s.UpdateSettings(&models.AppSettings{DeadlineDays: map[string]int{"Website Draft": 10}})
	s.ReplaceState(&models.Snapshot{
		Tasks: []*models.Task{
			// 4 dana je preko podrazumevana 3, ali ispod 70% od preklopljenih 10.
			{ID: "t1", Title: "Website Draft", CreatedAt: now.UnixMilli() - day*4, Priority: models.PriorityRegular},
		},
	})

	s.EscalatePriorities()

	if got := s.SnapshotState().Tasks[0].Priority; got != models.PriorityRegular {
		t.Errorf("expected Regular under the overridden window, got %s", got)
	}
}
