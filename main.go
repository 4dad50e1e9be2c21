package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sony/gobreaker"

	"github.com/malika-ai/project-management-prototype/cache"
	"github.com/malika-ai/project-management-prototype/config"
	"github.com/malika-ai/project-management-prototype/gateway"
	"github.com/malika-ai/project-management-prototype/handlers"
	"github.com/malika-ai/project-management-prototype/logging"
	"github.com/malika-ai/project-management-prototype/models"
	"github.com/malika-ai/project-management-prototype/services"
)

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	logging.InitLogger()
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Agency Dashboard...")

	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_WARNING, Description: No .env file loaded: %v", err)
	}
	cfg := config.Load()

	gatewayBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GatewayCB",
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})

	gatewayClient := gateway.NewClient(cfg.GatewayURL, &http.Client{}, gatewayBreaker, gateway.Settings{
		Attempts:       cfg.RetryAttempts,
		BaseDelay:      cfg.RetryBaseDelay,
		RequestTimeout: cfg.RequestTimeout,
		MaxPerAction:   cfg.MaxPerAction,
	})

	snapshotCache, err := cache.Open(cfg.CachePath, cfg.CacheVersion, cfg.CacheValidity)
	if err != nil {
		logging.Logger.Fatalf("Event ID: CACHE_OPEN_FAILED, Description: Failed to open snapshot cache: %v", err)
	}
	defer snapshotCache.Close()

	stateService := services.NewStateService(gatewayClient, models.DefaultStages(), cfg.ProcessingGrace)
	authService := services.NewAuthService(stateService, cfg.JWTSecret)

	// Hladan start iz keša da prikaz ne krene od praznog stanja.
	if snap, err := snapshotCache.Load(time.Now()); err != nil {
		logging.Logger.Warnf("Event ID: CACHE_LOAD_FAILED, Description: Failed to load cached snapshot: %v", err)
	} else if snap != nil {
		stateService.ReplaceState(snap)
		logging.Logger.Info("Event ID: CACHE_LOADED, Description: State restored from local snapshot cache.")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Prvi GET_ALL odmah, pa pozadinske petlje.
	if err := stateService.Poll(ctx); err != nil {
		logging.Logger.Warnf("Event ID: INITIAL_POLL_FAILED, Description: Initial snapshot fetch failed: %v", err)
	}
	stateService.RunBackground(ctx, cfg.PollInterval, cfg.EscalateEvery, func(snap *models.Snapshot) {
		if err := snapshotCache.Save(snap, time.Now()); err != nil {
			logging.Logger.Warnf("Event ID: CACHE_SAVE_FAILED, Description: Failed to save snapshot cache: %v", err)
		}
	})

	loginHandler := handlers.NewLoginHandler(authService)
	clientHandler := handlers.NewClientHandler(stateService)
	taskHandler := handlers.NewTaskHandler(stateService)
	teamHandler := handlers.NewTeamHandler(stateService)

	// Kreiranje mux routera
	r := mux.NewRouter()
	r.HandleFunc("/api/login", loginHandler.Login).Methods(http.MethodPost)
	r.HandleFunc("/api/state", clientHandler.GetState).Methods(http.MethodGet)

	r.HandleFunc("/api/clients", clientHandler.CreateClient).Methods(http.MethodPost)
	r.HandleFunc("/api/clients/{clientID}", clientHandler.UpdateClient).Methods(http.MethodPut)
	r.HandleFunc("/api/projects", clientHandler.CreateProject).Methods(http.MethodPost)
	r.HandleFunc("/api/projects/{projectID}", clientHandler.UpdateProject).Methods(http.MethodPut)

	r.HandleFunc("/api/tasks", taskHandler.CreateTask).Methods(http.MethodPost)
	r.HandleFunc("/api/tasks/{taskID}", taskHandler.UpdateTask).Methods(http.MethodPut)
	r.HandleFunc("/api/tasks/{taskID}/assign", taskHandler.AssignTask).Methods(http.MethodPost)
	r.HandleFunc("/api/tasks/{taskID}/timer/toggle", taskHandler.ToggleTimer).Methods(http.MethodPost)
	r.HandleFunc("/api/tasks/{taskID}/progress", taskHandler.LogProgress).Methods(http.MethodPost)

	r.HandleFunc("/api/team", teamHandler.AddMember).Methods(http.MethodPost)
	r.HandleFunc("/api/team/{memberID}", teamHandler.UpdateMember).Methods(http.MethodPut)
	r.HandleFunc("/api/team/{memberID}", teamHandler.RemoveMember).Methods(http.MethodDelete)
	r.HandleFunc("/api/settings", teamHandler.UpdateSettings).Methods(http.MethodPut)

	corsRouter := enableCORS(r)

	// Pokretanje servera
	serverAddress := fmt.Sprintf(":%s", cfg.ServerPort)
	logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", serverAddress)

	if err := http.ListenAndServe(serverAddress, corsRouter); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
	}
}
