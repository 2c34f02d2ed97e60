// Package analysis loads a group's preference rows from the store and runs
// the recommendation engine over them.
package analysis

import (
	"context"
	"fmt"
	"time"

	"getconnected/internal/common/logger"
	"getconnected/internal/common/metrics"
	"getconnected/internal/common/observability"
	"getconnected/internal/export"
	"getconnected/internal/models"
	"getconnected/internal/recommendation"
	"getconnected/internal/store"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	tempGroupPrefix  = "temp_group_"
	tempExportPrefix = "temp_export_"
)

// GroupAnalysis is the combined result for an ad-hoc set of users.
type GroupAnalysis struct {
	GroupID         string                               `json:"groupId"`
	CommonPlatforms recommendation.CommonPlatformsResult `json:"commonPlatforms"`
	Recommendations recommendation.RecommendationResult  `json:"recommendations"`
}

type Service struct {
	store  store.Store
	engine *recommendation.Engine
	obs    *observability.Observability
	logger logger.Logger
	now    func() time.Time
}

func NewService(s store.Store, engine *recommendation.Engine, obs *observability.Observability, log logger.Logger) *Service {
	return &Service{
		store:  s,
		engine: engine,
		obs:    obs,
		logger: log,
		now:    time.Now,
	}
}

// FindCommon runs the common-platform finder for a stored group.
func (s *Service) FindCommon(ctx context.Context, groupID string) (res recommendation.CommonPlatformsResult, err error) {
	ctx, done := s.track(ctx, "find_common", groupID)
	defer func() { done(err) }()

	if _, err = s.store.GetGroup(ctx, groupID); err != nil {
		return res, err
	}
	return s.findCommon(ctx, groupID)
}

// Recommend ranks the group's common platforms against features.
func (s *Service) Recommend(ctx context.Context, groupID string, features []string) (res recommendation.RecommendationResult, err error) {
	ctx, done := s.track(ctx, "recommend", groupID)
	defer func() { done(err) }()

	if _, err = s.store.GetGroup(ctx, groupID); err != nil {
		return res, err
	}
	common, err := s.findCommon(ctx, groupID)
	if err != nil {
		return res, err
	}
	return s.recommend(common.CommonPlatforms, features), nil
}

// Compare shows which of features each common platform supports.
func (s *Service) Compare(ctx context.Context, groupID string, features []string) (res recommendation.FeatureComparison, err error) {
	ctx, done := s.track(ctx, "compare", groupID)
	defer func() { done(err) }()

	if _, err = s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	common, err := s.findCommon(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return s.engine.Compare(common.CommonPlatforms, features), nil
}

// AnalyzeUsers groups the given users into a fresh temporary group and runs
// both the finder and the scorer on it.
func (s *Service) AnalyzeUsers(ctx context.Context, userIDs, features []string) (res GroupAnalysis, err error) {
	ctx, done := s.track(ctx, "analyze", "")
	defer func() { done(err) }()

	group, err := s.tempGroup(ctx, tempGroupPrefix, userIDs)
	if err != nil {
		return res, err
	}
	common, err := s.findCommon(ctx, group.ID)
	if err != nil {
		return res, err
	}
	return GroupAnalysis{
		GroupID:         group.ID,
		CommonPlatforms: common,
		Recommendations: s.recommend(common.CommonPlatforms, features),
	}, nil
}

// Report builds an export report for the given users.
func (s *Service) Report(ctx context.Context, userIDs, features []string) (rep export.Report, err error) {
	ctx, done := s.track(ctx, "report", "")
	defer func() { done(err) }()

	group, err := s.tempGroup(ctx, tempExportPrefix, userIDs)
	if err != nil {
		return rep, err
	}
	return s.GroupReport(ctx, group.ID, features)
}

// GroupReport builds an export report for a stored group.
func (s *Service) GroupReport(ctx context.Context, groupID string, features []string) (export.Report, error) {
	members, err := s.store.ListGroupMembers(ctx, groupID)
	if err != nil {
		return export.Report{}, err
	}
	common, err := s.findCommon(ctx, groupID)
	if err != nil {
		return export.Report{}, err
	}
	recs := s.recommend(common.CommonPlatforms, features)

	reportMembers := make([]export.Member, 0, len(members))
	for _, m := range members {
		reportMembers = append(reportMembers, export.Member{Name: m.Name, Email: m.Email})
	}
	return export.Report{
		Timestamp:            s.now().UTC(),
		Group:                export.GroupInfo{ID: groupID, Members: reportMembers},
		Analysis:             common.Analysis,
		CommonPlatforms:      common.CommonPlatforms,
		RecommendedPlatforms: recs.Recommendations,
		RecommendationReason: recs.Reason,
	}, nil
}

// ResolveUsers looks users up by name, keeping the given order.
func (s *Service) ResolveUsers(ctx context.Context, names []string) ([]models.User, error) {
	out := make([]models.User, 0, len(names))
	for _, name := range names {
		u, err := s.store.GetUserByName(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func (s *Service) tempGroup(ctx context.Context, prefix string, userIDs []string) (models.Group, error) {
	for _, id := range userIDs {
		if _, err := s.store.GetUser(ctx, id); err != nil {
			return models.Group{}, err
		}
	}
	group, err := s.store.CreateGroup(ctx, fmt.Sprintf("%s%d", prefix, s.now().UnixMilli()), "")
	if err != nil {
		return models.Group{}, err
	}
	for _, id := range userIDs {
		if err := s.store.AddGroupMember(ctx, group.ID, id); err != nil {
			return models.Group{}, err
		}
	}
	return group, nil
}

func (s *Service) findCommon(ctx context.Context, groupID string) (recommendation.CommonPlatformsResult, error) {
	prefs, err := s.store.GetGroupPreferences(ctx, groupID)
	if err != nil {
		return recommendation.CommonPlatformsResult{}, err
	}
	count, err := s.store.CountGroupMembers(ctx, groupID)
	if err != nil {
		return recommendation.CommonPlatformsResult{}, err
	}
	return s.engine.FindCommonPlatforms(prefs, count), nil
}

func (s *Service) recommend(common []recommendation.CommonPlatform, features []string) recommendation.RecommendationResult {
	metrics.RecommendationCandidates.Observe(float64(len(common)))
	return s.engine.Recommend(common, features)
}

// track opens a span and returns a func that records the outcome.
func (s *Service) track(ctx context.Context, kind, groupID string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := s.obs.StartSpan(ctx, "analysis."+kind, attribute.String("group.id", groupID))
	return ctx, func(err error) {
		outcome := "success"
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.logger.WithFields(map[string]interface{}{
				"kind":    kind,
				"groupId": groupID,
			}).WithError(err).Warn("analysis failed", nil)
		}
		span.End()
		metrics.AnalysesTotal.WithLabelValues(kind, outcome).Inc()
		s.obs.RecordAnalysis(ctx, kind, outcome, time.Since(start))
	}
}
