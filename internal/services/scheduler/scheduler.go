// Package scheduler books group meetings on a chosen platform and records
// the choice as a group decision.
package scheduler

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"time"

	"getconnected/internal/catalog"
	"getconnected/internal/common/errors"
	"getconnected/internal/common/logger"
	"getconnected/internal/models"
	"getconnected/internal/store"
)

const (
	SourceWeb = "web interface"
	SourceCLI = "CLI"
)

var whitespace = regexp.MustCompile(`\s+`)

// DateTimeLayouts are the accepted meeting time formats. Times without a zone
// are read as UTC.
var DateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ParseDateTime parses a meeting time in any of DateTimeLayouts.
func ParseDateTime(value string) (time.Time, error) {
	for _, layout := range DateTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.NewValidationError(fmt.Sprintf("datetime: %q is not in YYYY-MM-DD HH:MM or RFC 3339 form", value))
}

var meetingLinkTemplates = map[string]string{
	"discord":  "https://discord.gg/invite-for-%s",
	"zoom":     "https://zoom.us/j/meeting-for-%s",
	"teams":    "https://teams.microsoft.com/l/meetup-join/meeting-for-%s",
	"skype":    "https://join.skype.com/invite/meeting-for-%s",
	"whatsapp": "https://chat.whatsapp.com/invite-for-%s",
	"telegram": "https://t.me/joinchat/invite-for-%s",
}

// MeetingLink returns an invite URL for platforms with a known link format,
// and a plain description otherwise.
func MeetingLink(platform, groupName string) string {
	tmpl, ok := meetingLinkTemplates[platform]
	if !ok {
		return fmt.Sprintf("Meeting scheduled for %s on %s", groupName, platform)
	}
	return fmt.Sprintf(tmpl, whitespace.ReplaceAllString(groupName, "-"))
}

type Request struct {
	GroupID         string
	Platform        string
	ScheduledAt     time.Time
	DurationMinutes int
	Notes           string
	// Source ends up in the decision reason, e.g. "Scheduled via CLI".
	Source string
}

type Result struct {
	Schedule    models.Schedule `json:"schedule"`
	MeetingLink string          `json:"meetingLink"`
}

// Suggestion ranks one candidate start time by how many booked meetings of
// the group it overlaps.
type Suggestion struct {
	Datetime      time.Time `json:"datetime"`
	Platform      string    `json:"platform"`
	ConflictScore int       `json:"conflictScore"`
	MemberCount   int       `json:"memberCount"`
}

type Scheduler struct {
	store   store.Store
	catalog *catalog.Catalog
	logger  logger.Logger
}

func New(s store.Store, c *catalog.Catalog, log logger.Logger) *Scheduler {
	return &Scheduler{store: s, catalog: c, logger: log}
}

// Schedule books a meeting and records the platform as the group's decision.
// The two writes are not transactional: when the decision cannot be saved
// the new schedule is marked cancelled before the error is returned.
func (s *Scheduler) Schedule(ctx context.Context, req Request) (Result, error) {
	if !s.catalog.Has(req.Platform) {
		return Result{}, errors.NewUnknownPlatformError(req.Platform)
	}
	if req.ScheduledAt.IsZero() {
		return Result{}, errors.NewValidationError("datetime: is required")
	}
	if req.DurationMinutes < 0 {
		return Result{}, errors.NewValidationError("duration: must not be negative")
	}
	group, err := s.store.GetGroup(ctx, req.GroupID)
	if err != nil {
		return Result{}, err
	}

	sched, err := s.store.CreateSchedule(ctx, models.Schedule{
		GroupID:         group.ID,
		Platform:        req.Platform,
		ScheduledAt:     req.ScheduledAt.UTC(),
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
		Status:          models.ScheduleStatusScheduled,
	})
	if err != nil {
		return Result{}, err
	}

	source := req.Source
	if source == "" {
		source = SourceWeb
	}
	if _, err := s.store.SaveDecision(ctx, models.Decision{
		GroupID:        group.ID,
		ChosenPlatform: req.Platform,
		Reason:         "Scheduled via " + source,
	}); err != nil {
		s.cancelOrphan(ctx, sched, err)
		return Result{}, err
	}

	s.logger.Info("meeting scheduled", map[string]interface{}{
		"scheduleId": sched.ID,
		"groupId":    group.ID,
		"platform":   req.Platform,
		"at":         sched.ScheduledAt.Format(time.RFC3339),
	})
	return Result{Schedule: sched, MeetingLink: MeetingLink(req.Platform, group.Name)}, nil
}

func (s *Scheduler) cancelOrphan(ctx context.Context, sched models.Schedule, cause error) {
	log := s.logger.WithFields(map[string]interface{}{
		"scheduleId": sched.ID,
		"groupId":    sched.GroupID,
	})
	if _, err := s.store.UpdateScheduleStatus(context.WithoutCancel(ctx), sched.ID, models.ScheduleStatusCancelled); err != nil {
		log.WithError(err).Error("failed to cancel schedule without decision", nil)
		return
	}
	log.WithError(cause).Warn("decision not saved, schedule cancelled", nil)
}

func (s *Scheduler) ListSchedules(ctx context.Context, groupID string) ([]models.Schedule, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.ListSchedules(ctx, groupID)
}

func (s *Scheduler) UpdateStatus(ctx context.Context, scheduleID, status string) (models.Schedule, error) {
	if !models.IsValidScheduleStatus(status) {
		return models.Schedule{}, errors.NewValidationError(fmt.Sprintf("status: must be one of %s, %s, %s",
			models.ScheduleStatusScheduled, models.ScheduleStatusCompleted, models.ScheduleStatusCancelled))
	}
	return s.store.UpdateScheduleStatus(ctx, scheduleID, status)
}

// SuggestTimes scores each candidate start by the number of still-booked
// meetings of the group that would overlap it, fewest conflicts first.
// Candidates with equal scores keep their input order.
func (s *Scheduler) SuggestTimes(ctx context.Context, groupID, platform string, candidates []time.Time, durationMinutes int) ([]Suggestion, error) {
	if !s.catalog.Has(platform) {
		return nil, errors.NewUnknownPlatformError(platform)
	}
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	if durationMinutes <= 0 {
		durationMinutes = models.DefaultScheduleMinutes
	}
	members, err := s.store.CountGroupMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	booked, err := s.store.ListSchedules(ctx, groupID)
	if err != nil {
		return nil, err
	}

	out := make([]Suggestion, 0, len(candidates))
	for _, start := range candidates {
		end := start.Add(time.Duration(durationMinutes) * time.Minute)
		conflicts := 0
		for _, b := range booked {
			if b.Status != models.ScheduleStatusScheduled {
				continue
			}
			bEnd := b.ScheduledAt.Add(time.Duration(b.DurationMinutes) * time.Minute)
			if start.Before(bEnd) && b.ScheduledAt.Before(end) {
				conflicts++
			}
		}
		out = append(out, Suggestion{
			Datetime:      start.UTC(),
			Platform:      platform,
			ConflictScore: conflicts,
			MemberCount:   members,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ConflictScore < out[j].ConflictScore })
	return out, nil
}
