package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/malika-ai/project-management-prototype/models"
	"github.com/malika-ai/project-management-prototype/services"
)

type TeamHandler struct {
	StateService *services.StateService
}

func NewTeamHandler(stateService *services.StateService) *TeamHandler {
	return &TeamHandler{StateService: stateService}
}

type memberRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Avatar   string `json:"avatar"`
}

func (h *TeamHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	var errs []FieldError
	errs = requireString(errs, "name", req.Name)
	errs = requireEmail(errs, "email", req.Email)
	errs = requireString(errs, "password", req.Password)
	if len(errs) > 0 {
		respondFieldErrors(w, errs)
		return
	}

	role := models.Role(req.Role)
	if role == "" {
		role = models.RoleMember
	}

	member, err := h.StateService.AddMember(req.Name, req.Email, req.Password, role, req.Avatar)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	respondJSON(w, http.StatusCreated, member)
}

func (h *TeamHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	var req models.TeamMember
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	req.ID = mux.Vars(r)["memberID"]

	member := h.StateService.UpdateMember(&req)
	if member == nil {
		http.Error(w, "Member not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, member)
}

func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	if !h.StateService.RemoveMember(mux.Vars(r)["memberID"]) {
		http.Error(w, "Member not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateSettings preklapa podešavanja instalacije.
func (h *TeamHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req models.AppSettings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusOK, h.StateService.UpdateSettings(&req))
}
