package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/malika-ai/project-management-prototype/services"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type LoginHandler struct {
	AuthService *services.AuthService
}

func NewLoginHandler(authService *services.AuthService) *LoginHandler {
	return &LoginHandler{AuthService: authService}
}

// Login prijavljuje korisnika; nad praznim rosterom kredencijali prave
// administratorski nalog.
func (h *LoginHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	var errs []FieldError
	errs = requireEmail(errs, "email", req.Email)
	errs = requireString(errs, "password", req.Password)
	if len(errs) > 0 {
		respondFieldErrors(w, errs)
		return
	}

	member, token, err := h.AuthService.LoginUser(req.Email, req.Password)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	respondJSON(w, http.StatusOK, LoginResponse{
		Token: token,
		ID:    member.ID,
		Name:  member.Name,
		Email: member.Email,
		Role:  string(member.Role),
	})
}
