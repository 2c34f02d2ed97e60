package api

import (
	"net/http"

	"getconnected/internal/models"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := s.decodeAndValidate(w, r, &req); err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	user, err := s.store.CreateUser(r.Context(), req.Name, req.Email)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, message{ID: user.ID, Message: "User added successfully"})
}

func (s *Server) handleListPreferences(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if _, err := s.store.GetUser(r.Context(), userID); err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	prefs, err := s.store.ListUserPreferences(r.Context(), userID)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) handleUpsertPreference(w http.ResponseWriter, r *http.Request) {
	var req preferenceRequest
	if err := s.decodeAndValidate(w, r, &req); err != nil {
		s.errors.WriteError(w, r, err)
		return
	}

	pref := models.Preference{
		UserID:          chi.URLParam(r, "userID"),
		Platform:        req.Platform,
		PreferenceLevel: models.DefaultPreferenceLevel,
		HasAccount:      true,
		Notes:           req.Notes,
	}
	if req.PreferenceLevel != nil {
		pref.PreferenceLevel = *req.PreferenceLevel
	}
	if req.HasAccount != nil {
		pref.HasAccount = *req.HasAccount
	}

	saved, err := s.store.UpsertPreference(r.Context(), pref)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		Preference models.Preference `json:"preference"`
		Message    string            `json:"message"`
	}{saved, "Preference added successfully"})
}
