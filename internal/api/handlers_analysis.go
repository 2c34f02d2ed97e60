package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"getconnected/internal/export"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleCommon(w http.ResponseWriter, r *http.Request) {
	res, err := s.analysis.FindCommon(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	features, err := parseFeatures(r.URL.Query().Get("features"))
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	res, err := s.analysis.Recommend(r.Context(), chi.URLParam(r, "groupID"), features)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	features, err := parseFeatures(r.URL.Query().Get("features"))
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	res, err := s.analysis.Compare(r.Context(), chi.URLParam(r, "groupID"), features)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := s.decodeAndValidate(w, r, &req); err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	res, err := s.analysis.AnalyzeUsers(r.Context(), req.UserIDs, req.RequiredFeatures)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := s.decodeAndValidate(w, r, &req); err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	format := strings.ToLower(req.Format)
	if format == "" {
		format = export.FormatJSON
	}

	rep, err := s.analysis.Report(r.Context(), req.UserIDs, req.RequiredFeatures)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}

	// Render first so a writer failure still produces a JSON error.
	var buf bytes.Buffer
	if err := export.Write(&buf, format, rep); err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType(format))
	if format != export.FormatJSON {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(format)))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
