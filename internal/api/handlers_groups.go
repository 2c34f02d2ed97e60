package api

import (
	"net/http"

	"getconnected/internal/catalog"
	"getconnected/internal/models"

	"github.com/go-chi/chi/v5"
)

type groupView struct {
	models.Group
	Members []models.User `json:"members"`
}

type platformView struct {
	models.PlatformProfile
	QuickScore *float64 `json:"quickScore,omitempty"`
}

func (s *Server) handleListPlatforms(w http.ResponseWriter, r *http.Request) {
	features, err := parseFeatures(r.URL.Query().Get("features"))
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	platforms := s.catalog.All()
	out := make([]platformView, 0, len(platforms))
	for _, p := range platforms {
		view := platformView{PlatformProfile: p}
		if len(features) > 0 {
			score := catalog.QuickScore(p, features)
			view.QuickScore = &score
		}
		out = append(out, view)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListFeatures(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Availability())
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := s.decodeAndValidate(w, r, &req); err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	ctx := r.Context()
	for _, id := range req.UserIDs {
		if _, err := s.store.GetUser(ctx, id); err != nil {
			s.errors.WriteError(w, r, err)
			return
		}
	}
	group, err := s.store.CreateGroup(ctx, req.Name, req.Description)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	for _, id := range req.UserIDs {
		if err := s.store.AddGroupMember(ctx, group.ID, id); err != nil {
			s.errors.WriteError(w, r, err)
			return
		}
	}
	members, err := s.store.ListGroupMembers(ctx, group.ID)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, groupView{Group: group, Members: members})
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	group, err := s.store.GetGroup(r.Context(), groupID)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	members, err := s.store.ListGroupMembers(r.Context(), groupID)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, groupView{Group: group, Members: members})
}

func (s *Server) handleListDecisions(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	if _, err := s.store.GetGroup(r.Context(), groupID); err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	decisions, err := s.store.ListDecisions(r.Context(), groupID)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, decisions)
}
