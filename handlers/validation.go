package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

// FieldError je greška validacije vezana za konkretno polje zahteva.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// respondFieldErrors vraća listu grešaka validacije pre nego što se bilo šta
// upiše.
func respondFieldErrors(w http.ResponseWriter, errs []FieldError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string][]FieldError{"errors": errs})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func requireString(errs []FieldError, field, value string) []FieldError {
	if strings.TrimSpace(value) == "" {
		errs = append(errs, FieldError{Field: field, Message: field + " is required"})
	}
	return errs
}

func requireEmail(errs []FieldError, field, value string) []FieldError {
	if strings.TrimSpace(value) == "" {
		return append(errs, FieldError{Field: field, Message: field + " is required"})
	}
	at := strings.Index(value, "@")
	if at <= 0 || at == len(value)-1 {
		errs = append(errs, FieldError{Field: field, Message: field + " is not a valid email"})
	}
	return errs
}
