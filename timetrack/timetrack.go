// Package timetrack sadrži računanje vremena po zadatku: zbir upisanog
// vremena i otvorenih sesija, kao i start/stop prelaze sesija. Ovo su jedina
// tri mesta koja smeju da menjaju TimeSpent, TimerSessions i ActiveUserIDs.
package timetrack

import (
	"time"

	"github.com/malika-ai/project-management-prototype/models"
)

// TotalSeconds vraća upisano vreme plus trajanje svake otvorene sesije u
// odnosu na now. Sesija sa nevažećim ili budućim početkom ne doprinosi ništa.
func TotalSeconds(t *models.Task, now time.Time) float64 {
	total := t.TimeSpent
	nowMs := now.UnixMilli()
	for _, start := range t.TimerSessions {
		if start <= 0 || start > nowMs {
			continue
		}
		total += float64(nowMs-start) / 1000.0
	}
	return total
}

// StartSession otvara sesiju korisnika na zadatku. Ponovni poziv za već
// aktivnog korisnika prepisuje početak sesije (reset štoperice).
func StartSession(t *models.Task, userID string, now time.Time) {
	if t.TimerSessions == nil {
		t.TimerSessions = make(map[string]int64)
	}
	t.TimerSessions[userID] = now.UnixMilli()
	for _, id := range t.ActiveUserIDs {
		if id == userID {
			return
		}
	}
	t.ActiveUserIDs = append(t.ActiveUserIDs, userID)
}

// StopSession zatvara sesiju korisnika i dodaje proteklo vreme u TimeSpent.
// Bez važeće sesije poziv je no-op koji ipak uklanja korisnika iz aktivnih.
func StopSession(t *models.Task, userID string, now time.Time) {
	start, ok := t.TimerSessions[userID]
	if ok {
		nowMs := now.UnixMilli()
		if start > 0 && start <= nowMs {
			t.TimeSpent += float64(nowMs-start) / 1000.0
		}
		delete(t.TimerSessions, userID)
	}
	for i, id := range t.ActiveUserIDs {
		if id == userID {
			t.ActiveUserIDs = append(t.ActiveUserIDs[:i], t.ActiveUserIDs[i+1:]...)
			break
		}
	}
}
