package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"getconnected/internal/app"
	"getconnected/internal/catalog"
	"getconnected/internal/common/errors"
	"getconnected/internal/export"
	"getconnected/internal/models"
	"getconnected/internal/services/scheduler"
)

type cli struct {
	rt  *app.Runtime
	out io.Writer
}

func successMsg(format string, a ...interface{}) string { return "✓ " + fmt.Sprintf(format, a...) }
func errorMsg(format string, a ...interface{}) string { return "✗ " + fmt.Sprintf(format, a...) }
func warningMsg(format string, a ...interface{}) string { return "⚠ " + fmt.Sprintf(format, a...) }
func infoMsg(format string, a ...interface{}) string { return "ℹ " + fmt.Sprintf(format, a...) }

func (c *cli) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "add-user":
		return c.addUser(ctx, args)
	case "add-preference":
		return c.addPreference(ctx, args)
	case "list-users":
		return c.listUsers(ctx, args)
	case "list-platforms":
		return c.listPlatforms(args)
	case "list-features":
		c.println(infoMsg("Features by Category:"))
		c.println(export.FormatAvailability(c.rt.Catalog.Availability()))
		return nil
	case "find-common":
		return c.findCommon(ctx, args)
	case "recommend":
		return c.recommend(ctx, args)
	case "compare":
		return c.compare(ctx, args)
	case "schedule":
		return c.schedule(ctx, args)
	case "export":
		return c.export(ctx, args)
	default:
		help(c.out)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (c *cli) println(s string) {
	fmt.Fprintln(c.out, s)
}

func (c *cli) addUser(ctx context.Context, args []string) error {
	fs := newFlagSet("add-user")
	name := fs.String("name", "", "User name")
	email := fs.String("email", "", "Email address (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*name) == "" {
		return errors.NewValidationError("name: required field missing")
	}

	_, err := c.rt.Store.CreateUser(ctx, strings.TrimSpace(*name), *email)
	if errors.HasCode(err, errors.ErrCodeUserAlreadyExists) {
		c.println(warningMsg("User %q already exists", *name))
		return nil
	}
	if err != nil {
		return err
	}
	c.println(successMsg("User %q added successfully", *name))
	return nil
}

func (c *cli) addPreference(ctx context.Context, args []string) error {
	fs := newFlagSet("add-preference")
	userName := fs.String("user", "", "User name")
	platform := fs.String("platform", "", "Platform key")
	level := fs.Int("level", models.DefaultPreferenceLevel, "Preference 1-10")
	account := fs.Bool("account", true, "Has an account")
	notes := fs.String("notes", "", "Notes (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !c.rt.Catalog.Has(*platform) {
		return errors.NewUnknownPlatformError(*platform)
	}
	if *level < models.MinPreferenceLevel || *level > models.MaxPreferenceLevel {
		return errors.NewValidationError("level: must be between 1 and 10")
	}
	if len(*notes) > 500 {
		return errors.NewValidationError("notes: must be at most 500 characters")
	}

	users, err := c.rt.Analysis.ResolveUsers(ctx, []string{*userName})
	if err != nil {
		return err
	}
	_, err = c.rt.Store.UpsertPreference(ctx, models.Preference{
		UserID:          users[0].ID,
		Platform:        *platform,
		PreferenceLevel: *level,
		HasAccount:      *account,
		Notes:           *notes,
	})
	if err != nil {
		return err
	}
	c.println(successMsg("Preference for %s saved for %s", *platform, *userName))
	return nil
}

func (c *cli) listUsers(ctx context.Context, args []string) error {
	if err := newFlagSet("list-users").Parse(args); err != nil {
		return err
	}
	users, err := c.rt.Store.ListUsers(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		c.println(warningMsg("No users found"))
		return nil
	}
	c.println(infoMsg("Users:"))
	for _, u := range users {
		prefs, err := c.rt.Store.ListUserPreferences(ctx, u.ID)
		if err != nil {
			return err
		}
		header := "\n" + u.Name
		if u.Email != "" {
			header += fmt.Sprintf(" (%s)", u.Email)
		}
		c.println(header)
		c.println(export.FormatUserPreferences(prefs))
	}
	return nil
}

func (c *cli) listPlatforms(args []string) error {
	fs := newFlagSet("list-platforms")
	featureList := fs.String("features", "", "Comma-separated required features")
	if err := fs.Parse(args); err != nil {
		return err
	}
	features, err := parseFeatures(*featureList)
	if err != nil {
		return err
	}
	var scores map[string]float64
	if len(features) > 0 {
		scores = make(map[string]float64, c.rt.Catalog.Len())
		for _, p := range c.rt.Catalog.All() {
			scores[p.Key] = catalog.QuickScore(p, features)
		}
	}
	c.println(infoMsg("Available Messaging Platforms:"))
	c.println(export.FormatPlatforms(c.rt.Catalog.All(), scores))
	return nil
}

func (c *cli) findCommon(ctx context.Context, args []string) error {
	fs := newFlagSet("find-common")
	users := fs.String("users", "", "Comma-separated user names")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ids, err := c.userIDs(ctx, *users)
	if err != nil {
		return err
	}
	res, err := c.rt.Analysis.AnalyzeUsers(ctx, ids, nil)
	if err != nil {
		return err
	}
	c.println(infoMsg("Common Platforms Analysis:"))
	c.println(res.CommonPlatforms.Analysis)
	c.println("\n" + infoMsg("Common Platforms:"))
	c.println(export.FormatCommonPlatforms(res.CommonPlatforms.CommonPlatforms))
	return nil
}

func (c *cli) recommend(ctx context.Context, args []string) error {
	fs := newFlagSet("recommend")
	users := fs.String("users", "", "Comma-separated user names")
	featureList := fs.String("features", "", "Comma-separated required features")
	withCompare := fs.Bool("compare", false, "Also print a feature comparison")
	if err := fs.Parse(args); err != nil {
		return err
	}
	features, err := parseFeatures(*featureList)
	if err != nil {
		return err
	}
	ids, err := c.userIDs(ctx, *users)
	if err != nil {
		return err
	}
	res, err := c.rt.Analysis.AnalyzeUsers(ctx, ids, features)
	if err != nil {
		return err
	}
	c.println(infoMsg("Platform Recommendations:"))
	c.println(res.Recommendations.Reason)
	c.println("\n" + infoMsg("Recommended Platforms:"))
	c.println(export.FormatRecommendations(res.Recommendations.Recommendations))

	if *withCompare && len(features) > 0 {
		cmp, err := c.rt.Analysis.Compare(ctx, res.GroupID, features)
		if err != nil {
			return err
		}
		c.println("\n" + infoMsg("Feature Comparison:"))
		c.println(export.FormatFeatureComparison(cmp, c.rt.Catalog.Keys(), features))
	}
	return nil
}

func (c *cli) compare(ctx context.Context, args []string) error {
	fs := newFlagSet("compare")
	users := fs.String("users", "", "Comma-separated user names")
	featureList := fs.String("features", "", "Comma-separated features to compare")
	if err := fs.Parse(args); err != nil {
		return err
	}
	features, err := parseFeatures(*featureList)
	if err != nil {
		return err
	}
	if len(features) == 0 {
		features = models.AllFeatures
	}
	ids, err := c.userIDs(ctx, *users)
	if err != nil {
		return err
	}
	res, err := c.rt.Analysis.AnalyzeUsers(ctx, ids, nil)
	if err != nil {
		return err
	}
	cmp, err := c.rt.Analysis.Compare(ctx, res.GroupID, features)
	if err != nil {
		return err
	}
	c.println(infoMsg("Feature Comparison:"))
	c.println(export.FormatFeatureComparison(cmp, c.rt.Catalog.Keys(), features))
	return nil
}

func (c *cli) schedule(ctx context.Context, args []string) error {
	fs := newFlagSet("schedule")
	users := fs.String("users", "", "Comma-separated user names")
	platform := fs.String("platform", "", "Platform key (defaults to the top recommendation)")
	datetime := fs.String("datetime", "", `Meeting time, "YYYY-MM-DD HH:MM"`)
	minutes := fs.Int("minutes", models.DefaultScheduleMinutes, "Duration in minutes")
	notes := fs.String("notes", "", "Notes (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	at, err := scheduler.ParseDateTime(*datetime)
	if err != nil {
		return err
	}
	ids, err := c.userIDs(ctx, *users)
	if err != nil {
		return err
	}
	res, err := c.rt.Analysis.AnalyzeUsers(ctx, ids, nil)
	if err != nil {
		return err
	}

	chosen := *platform
	if chosen == "" {
		recs := res.Recommendations.Recommendations
		if len(recs) == 0 {
			return fmt.Errorf("no common platforms found for the group")
		}
		chosen = recs[0].Key
	}

	booked, err := c.rt.Scheduler.Schedule(ctx, scheduler.Request{
		GroupID:         res.GroupID,
		Platform:        chosen,
		ScheduledAt:     at,
		DurationMinutes: *minutes,
		Notes:           *notes,
		Source:          scheduler.SourceCLI,
	})
	if err != nil {
		return err
	}
	c.println(successMsg("Meeting scheduled successfully (ID: %s)", booked.Schedule.ID))
	c.println(infoMsg("Platform: %s", chosen))
	c.println(infoMsg("Date/Time: %s", booked.Schedule.ScheduledAt.Format("2006-01-02 15:04 MST")))
	c.println(infoMsg("Duration: %d minutes", booked.Schedule.DurationMinutes))
	c.println(infoMsg("Meeting link: %s", booked.MeetingLink))
	return nil
}

func (c *cli) export(ctx context.Context, args []string) error {
	fs := newFlagSet("export")
	users := fs.String("users", "", "Comma-separated user names")
	format := fs.String("format", export.FormatJSON, "Export format (json, csv, html, text)")
	featureList := fs.String("features", "", "Comma-separated required features")
	out := fs.String("out", "", "Output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	features, err := parseFeatures(*featureList)
	if err != nil {
		return err
	}
	ids, err := c.userIDs(ctx, *users)
	if err != nil {
		return err
	}
	rep, err := c.rt.Analysis.Report(ctx, ids, features)
	if err != nil {
		return err
	}

	if *out == "" {
		return export.Write(c.out, *format, rep)
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := export.Write(f, *format, rep); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	c.println(successMsg("Exported %s report to %s", *format, *out))
	return nil
}

// userIDs resolves a comma separated list of user names.
func (c *cli) userIDs(ctx context.Context, raw string) ([]string, error) {
	names := splitList(raw)
	if len(names) == 0 {
		return nil, errors.NewValidationError("users: at least one user name is required")
	}
	users, err := c.rt.Analysis.ResolveUsers(ctx, names)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids, nil
}

func parseFeatures(raw string) ([]string, error) {
	features := splitList(raw)
	var unknown []string
	for _, f := range features {
		if !models.IsKnownFeature(f) {
			unknown = append(unknown, f)
		}
	}
	if len(unknown) > 0 {
		return nil, errors.NewUnknownFeatureError(unknown)
	}
	return features, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
