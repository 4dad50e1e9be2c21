package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
)

func testBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "test-cb",
		MaxRequests: 1,
		Timeout:     time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 100
		},
	})
}

func newTestClient(url string, attempts int) *Client {
	return NewClient(url, &http.Client{}, testBreaker(), Settings{
		Attempts:       attempts,
		BaseDelay:      time.Millisecond,
		RequestTimeout: time.Second,
		MaxPerAction:   2,
	})
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.Action != ActionUpdateTask {
			t.Errorf("expected action %s, got %s", ActionUpdateTask, req.Action)
		}
		json.NewEncoder(w).Encode(Response{Success: true, Data: json.RawMessage(`{"ok":true}`)})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 3)
	data, err := c.Do(context.Background(), ActionUpdateTask, map[string]string{"id": "t1"})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("unexpected data: %s", data)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestDoGivesUpAfterAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 2)
	_, err := c.Do(context.Background(), ActionGetAll, nil)
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}

func TestDoRejectsEnvelopeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Response{Success: false, Error: "sheet is locked"})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 1)
	_, err := c.Do(context.Background(), ActionCreateTask, map[string]string{"id": "t1"})
	if err == nil {
		t.Fatal("expected error from rejected envelope")
	}
}

func TestDoDeduplicatesIdenticalInflightCalls(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		<-release
		json.NewEncoder(w).Encode(Response{Success: true, Data: json.RawMessage(`"done"`)})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 1)

	var wg sync.WaitGroup
	results := make([]string, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			data, err := c.Do(context.Background(), ActionUpdateTask, map[string]string{"id": "same"})
			if err != nil {
				t.Errorf("call %d failed: %v", i, err)
				return
			}
			results[i] = string(data)
		}(i)
	}

	// Pustimo server tek kad se pozivi nagomilaju.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected a single network call, got %d", got)
	}
	for i, r := range results {
		if r != `"done"` {
			t.Errorf("call %d got %q", i, r)
		}
	}
}

func TestBackoffGrowsExponentially(t *testing.T) {
	base := 100 * time.Millisecond
	if Backoff(0, base) != base {
		t.Errorf("attempt 0: expected %v, got %v", base, Backoff(0, base))
	}
	if Backoff(1, base) != 2*base {
		t.Errorf("attempt 1: expected %v, got %v", 2*base, Backoff(1, base))
	}
	if Backoff(3, base) != 8*base {
		t.Errorf("attempt 3: expected %v, got %v", 8*base, Backoff(3, base))
	}
	if Backoff(-5, base) != base {
		t.Errorf("negative attempt should clamp to base")
	}
}
