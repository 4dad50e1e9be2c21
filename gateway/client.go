// Package gateway je transportni klijent prema udaljenom skladištu: jedan
// HTTP endpoint, zahtev nosi naziv akcije i JSON payload. Klijent dodaje
// timeout, retry sa eksponencijalnim backoff-om, deduplikaciju identičnih
// zahteva u letu i ograničen broj paralelnih poziva po akciji.
package gateway

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/exp/rand"

	"github.com/malika-ai/project-management-prototype/logging"
)

// Akcije koje udaljeno skladište razume.
const (
	ActionGetAll           = "GET_ALL"
	ActionCreateClient     = "CREATE_CLIENT"
	ActionUpdateClient     = "UPDATE_CLIENT"
	ActionCreateProject    = "CREATE_PROJECT"
	ActionUpdateProject    = "UPDATE_PROJECT"
	ActionCreateTask       = "CREATE_TASK"
	ActionUpdateTask       = "UPDATE_TASK"
	ActionBatchCreateTasks = "BATCH_CREATE_TASKS"
	ActionCreateTeam       = "CREATE_TEAM"
	ActionUpdateTeam       = "UPDATE_TEAM"
	ActionDeleteTeam       = "DELETE_TEAM"
	ActionUpdateSettings   = "UPDATE_SETTINGS"
)

type Request struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Settings su parametri ponašanja klijenta.
type Settings struct {
	Attempts       int
	BaseDelay      time.Duration
	RequestTimeout time.Duration
	MaxPerAction   int
}

type call struct {
	done chan struct{}
	data json.RawMessage
	err  error
}

type Client struct {
	url        string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	settings   Settings

	mu       sync.Mutex
	inflight map[string]*call
	sems     map[string]chan struct{}
}

// NewClient pravi klijenta; breaker se, kao i za ostale servise, konstruiše u
// main-u i prosleđuje ovde.
func NewClient(url string, httpClient *http.Client, breaker *gobreaker.CircuitBreaker, settings Settings) *Client {
	if settings.Attempts < 1 {
		settings.Attempts = 1
	}
	if settings.MaxPerAction < 1 {
		settings.MaxPerAction = 1
	}
	return &Client{
		url:        url,
		httpClient: httpClient,
		breaker:    breaker,
		settings:   settings,
		inflight:   make(map[string]*call),
		sems:       make(map[string]chan struct{}),
	}
}

// Backoff vraća pauzu pre ponovnog pokušaja sa datim rednim brojem; čista
// funkcija pokušaja, bez džitera.
func Backoff(attempt int, base time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 16 {
		attempt = 16
	}
	return base * (1 << uint(attempt))
}

// jitter dodaje slučajan pomeraj do polovine osnovne pauze da se pokušaji
// različitih pozivalaca ne poklope.
func jitter(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(base)/2 + 1))
}

// Do šalje akciju sa payload-om i vraća data deo odgovora. Identičan zahtev
// koji je već u letu ne šalje se ponovo — pozivalac dobija isti rezultat.
// Posle iscrpljenih pokušaja vraća grešku; nikada ne panici.
func (c *Client) Do(ctx context.Context, action string, payload any) (json.RawMessage, error) {
	var raw json.RawMessage
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload for %s: %v", action, err)
		}
		raw = body
	}

	key := fingerprint(action, raw)

	c.mu.Lock()
	if existing, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		<-existing.done
		return existing.data, existing.err
	}
	cl := &call{done: make(chan struct{})}
	c.inflight[key] = cl
	sem := c.sems[action]
	if sem == nil {
		sem = make(chan struct{}, c.settings.MaxPerAction)
		c.sems[action] = sem
	}
	c.mu.Unlock()

	sem <- struct{}{}
	cl.data, cl.err = c.execute(ctx, action, raw)
	<-sem

	c.mu.Lock()
	delete(c.inflight, key)
	c.mu.Unlock()
	close(cl.done)

	return cl.data, cl.err
}

func (c *Client) execute(ctx context.Context, action string, payload json.RawMessage) (json.RawMessage, error) {
	var lastErr error
	for attempt := 0; attempt < c.settings.Attempts; attempt++ {
		if attempt > 0 {
			delay := Backoff(attempt-1, c.settings.BaseDelay) + jitter(c.settings.BaseDelay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := c.breaker.Execute(func() (interface{}, error) {
			return c.post(ctx, action, payload)
		})
		if err == nil {
			return result.(json.RawMessage), nil
		}
		lastErr = err
		logging.Logger.Warnf("Event ID: GATEWAY_ATTEMPT_FAILED, Description: Action %s attempt %d failed: %v", action, attempt+1, err)
	}
	return nil, fmt.Errorf("action %s failed after %d attempts: %v", action, c.settings.Attempts, lastErr)
}

func (c *Client) post(ctx context.Context, action string, payload json.RawMessage) (json.RawMessage, error) {
	reqBody, err := json.Marshal(Request{Action: action, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %v", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.settings.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("error creating request to gateway: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request to gateway: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gateway error (%d): %s", resp.StatusCode, string(body))
	}

	var envelope Response
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %v", err)
	}
	if !envelope.Success {
		return nil, fmt.Errorf("gateway rejected %s: %s", action, envelope.Error)
	}
	return envelope.Data, nil
}

func fingerprint(action string, payload json.RawMessage) string {
	h := sha1.New()
	h.Write([]byte(action))
	h.Write([]byte{0})
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}
