package api

import (
	"net/http"
	"time"

	"getconnected/internal/models"
	"getconnected/internal/services/scheduler"

	"github.com/go-chi/chi/v5"
)

type scheduleResponse struct {
	ScheduleID  string          `json:"scheduleId"`
	MeetingLink string          `json:"meetingLink"`
	Message     string          `json:"message"`
	Schedule    models.Schedule `json:"schedule"`
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := s.decodeAndValidate(w, r, &req); err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	at, err := scheduler.ParseDateTime(req.Datetime)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	res, err := s.scheduler.Schedule(r.Context(), scheduler.Request{
		GroupID:         req.GroupID,
		Platform:        req.Platform,
		ScheduledAt:     at,
		DurationMinutes: req.Duration,
		Notes:           req.Notes,
		Source:          scheduler.SourceWeb,
	})
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, scheduleResponse{
		ScheduleID:  res.Schedule.ID,
		MeetingLink: res.MeetingLink,
		Message:     "Meeting scheduled successfully",
		Schedule:    res.Schedule,
	})
}

func (s *Server) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := s.scheduler.ListSchedules(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schedules)
}

func (s *Server) handleUpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var req updateScheduleRequest
	if err := s.decodeAndValidate(w, r, &req); err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	updated, err := s.scheduler.UpdateStatus(r.Context(), chi.URLParam(r, "scheduleID"), req.Status)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleSuggestTimes(w http.ResponseWriter, r *http.Request) {
	var req suggestTimesRequest
	if err := s.decodeAndValidate(w, r, &req); err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	candidates := make([]time.Time, 0, len(req.Datetimes))
	for _, raw := range req.Datetimes {
		t, err := scheduler.ParseDateTime(raw)
		if err != nil {
			s.errors.WriteError(w, r, err)
			return
		}
		candidates = append(candidates, t)
	}
	suggestions, err := s.scheduler.SuggestTimes(r.Context(), chi.URLParam(r, "groupID"), req.Platform, candidates, req.Duration)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestions)
}
