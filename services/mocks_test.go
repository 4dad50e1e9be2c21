package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"
)

// fakeGateway beleži upise; preko block kanala test kontroliše trenutak
// "sletanja" upisa na udaljeno skladište.
type fakeGateway struct {
	mu    sync.Mutex
	calls []fakeCall
	block chan struct{}
}

type fakeCall struct {
	Action  string
	Payload json.RawMessage
}

func (g *fakeGateway) Do(ctx context.Context, action string, payload any) (json.RawMessage, error) {
	var raw json.RawMessage
	if payload != nil {
		raw, _ = json.Marshal(payload)
	}
	g.mu.Lock()
	block := g.block
	g.mu.Unlock()
	if block != nil {
		<-block
	}
	g.mu.Lock()
	g.calls = append(g.calls, fakeCall{Action: action, Payload: raw})
	g.mu.Unlock()
	return json.RawMessage(`{}`), nil
}

func (g *fakeGateway) actions() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, len(g.calls))
	for _, c := range g.calls {
		out = append(out, c.Action)
	}
	return out
}

func (g *fakeGateway) countAction(action string) int {
	n := 0
	for _, a := range g.actions() {
		if a == action {
			n++
		}
	}
	return n
}

// waitNotProcessing čeka da upis zadatka legne i oznaka spadne.
func waitNotProcessing(t *testing.T, s *StateService, taskID string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if !s.IsProcessing(taskID) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("task %s still processing", taskID)
}
