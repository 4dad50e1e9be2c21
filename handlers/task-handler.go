package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/malika-ai/project-management-prototype/models"
	"github.com/malika-ai/project-management-prototype/services"
)

type TaskHandler struct {
	StateService *services.StateService
}

func NewTaskHandler(stateService *services.StateService) *TaskHandler {
	return &TaskHandler{StateService: stateService}
}

type createTaskRequest struct {
	Title       string   `json:"title"`
	ProjectID   string   `json:"projectId"`
	Division    string   `json:"division"`
	AssigneeIDs []string `json:"assigneeIds"`
	Priority    string   `json:"priority"`
	Deadline    int64    `json:"deadline"`
	Subtasks    []string `json:"subtasks"`
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	var errs []FieldError
	errs = requireString(errs, "title", req.Title)
	errs = requireString(errs, "projectId", req.ProjectID)
	if len(errs) > 0 {
		respondFieldErrors(w, errs)
		return
	}

	task := h.StateService.CreateTask(req.Title, req.ProjectID, models.Division(req.Division), req.AssigneeIDs, models.Priority(req.Priority), req.Deadline, req.Subtasks)
	respondJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req models.Task
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	req.ID = mux.Vars(r)["taskID"]

	task := h.StateService.UpdateTask(&req)
	if task == nil {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) AssignTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AssigneeIDs []string `json:"assigneeIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	task := h.StateService.AssignTask(mux.Vars(r)["taskID"], req.AssigneeIDs)
	if task == nil {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// ToggleTimer pali/gasi štopericu; zadatak sa upisom u toku vraća 409.
func (h *TaskHandler) ToggleTimer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	var errs []FieldError
	errs = requireString(errs, "userId", req.UserID)
	if len(errs) > 0 {
		respondFieldErrors(w, errs)
		return
	}

	task, err := h.StateService.ToggleTaskTimer(mux.Vars(r)["taskID"], req.UserID)
	if errors.Is(err, services.ErrTaskBusy) {
		http.Error(w, "Task has a pending write", http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if task == nil {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

type logProgressRequest struct {
	UserID       string   `json:"userId"`
	Percent      int      `json:"percent"`
	Note         string   `json:"note"`
	Requirements []string `json:"requirements"`
	Addons       []string `json:"addons"`
}

// LogProgress upisuje napredak; na 100% okida workflow korak.
func (h *TaskHandler) LogProgress(w http.ResponseWriter, r *http.Request) {
	var req logProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	var errs []FieldError
	errs = requireString(errs, "userId", req.UserID)
	if req.Percent < 0 || req.Percent > 100 {
		errs = append(errs, FieldError{Field: "percent", Message: "percent must be between 0 and 100"})
	}
	if len(errs) > 0 {
		respondFieldErrors(w, errs)
		return
	}

	task, err := h.StateService.LogTaskProgress(mux.Vars(r)["taskID"], req.UserID, req.Percent, req.Note, req.Requirements, req.Addons)
	if errors.Is(err, services.ErrTaskBusy) {
		http.Error(w, "Task has a pending write", http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if task == nil {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, task)
}
