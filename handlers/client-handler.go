package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/malika-ai/project-management-prototype/models"
	"github.com/malika-ai/project-management-prototype/services"
)

type ClientHandler struct {
	StateService *services.StateService
}

func NewClientHandler(stateService *services.StateService) *ClientHandler {
	return &ClientHandler{StateService: stateService}
}

// GetState vraća kompletan snimak stanja za prikaz.
func (h *ClientHandler) GetState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.StateService.SnapshotState())
}

type createClientRequest struct {
	Name         string `json:"name"`
	BusinessName string `json:"businessName"`
	PackageTier  string `json:"packageTier"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
}

// CreateClient upisuje klijenta i pokreće mu workflow prve faze.
func (h *ClientHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	var errs []FieldError
	errs = requireString(errs, "name", req.Name)
	errs = requireString(errs, "businessName", req.BusinessName)
	errs = requireEmail(errs, "email", req.Email)
	if len(errs) > 0 {
		respondFieldErrors(w, errs)
		return
	}

	client, err := h.StateService.CreateClient(req.Name, req.BusinessName, req.PackageTier, req.Email, req.Phone)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, client)
}

func (h *ClientHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	var req models.Client
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	req.ID = mux.Vars(r)["clientID"]

	client := h.StateService.UpdateClient(&req)
	if client == nil {
		http.Error(w, "Client not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, client)
}

type createProjectRequest struct {
	Name     string `json:"name"`
	ClientID string `json:"clientId"`
}

func (h *ClientHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	var errs []FieldError
	errs = requireString(errs, "name", req.Name)
	if len(errs) > 0 {
		respondFieldErrors(w, errs)
		return
	}

	respondJSON(w, http.StatusCreated, h.StateService.CreateProject(req.Name, req.ClientID))
}

func (h *ClientHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var req models.Project
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	req.ID = mux.Vars(r)["projectID"]

	project := h.StateService.UpdateProject(&req)
	if project == nil {
		http.Error(w, "Project not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, project)
}
