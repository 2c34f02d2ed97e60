package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"getconnected/internal/app"
	"getconnected/internal/common/config"
	"getconnected/internal/common/database"
	"getconnected/internal/common/errors"
	"getconnected/internal/common/logger"
	"getconnected/internal/common/observability"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Helpers
// ==========================

func newTestCLI(t *testing.T) (*cli, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Name = "getconnected-cli-test"
	cfg.Storage.Driver = config.StorageMemory

	rt, err := app.New(context.Background(), cfg, logger.NewTestLogger(t), app.Options{
		Wait:          database.WaitPolicy{MaxAttempts: 1, InitialInterval: time.Millisecond},
		Observability: []observability.Option{observability.WithRegisterer(prometheus.NewRegistry())},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close(context.Background()) })

	var out bytes.Buffer
	return &cli{rt: rt, out: &out}, &out
}

func mustRun(t *testing.T, c *cli, args ...string) {
	t.Helper()
	require.NoError(t, c.dispatch(context.Background(), args[0], args[1:]))
}

// seedCLI adds alice and bob who share whatsapp and signal.
func seedCLI(t *testing.T, c *cli) {
	t.Helper()
	mustRun(t, c, "add-user", "-name", "alice", "-email", "alice@example.com")
	mustRun(t, c, "add-user", "-name", "bob")
	mustRun(t, c, "add-preference", "-user", "alice", "-platform", "whatsapp", "-level", "8")
	mustRun(t, c, "add-preference", "-user", "alice", "-platform", "signal", "-level", "9", "-notes", "privacy")
	mustRun(t, c, "add-preference", "-user", "bob", "-platform", "whatsapp", "-level", "10")
	mustRun(t, c, "add-preference", "-user", "bob", "-platform", "signal", "-level", "5")
	mustRun(t, c, "add-preference", "-user", "bob", "-platform", "telegram", "-account=false")
}

// ==========================
// Users and preferences
// ==========================

func TestAddUser(t *testing.T) {
	c, out := newTestCLI(t)

	mustRun(t, c, "add-user", "-name", "alice")
	mustRun(t, c, "add-user", "-name", "alice")
	assert.Equal(t, "✓ User \"alice\" added successfully\n⚠ User \"alice\" already exists\n", out.String())

	err := c.dispatch(context.Background(), "add-user", nil)
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidationFailed))
}

func TestAddPreference_Rejections(t *testing.T) {
	c, _ := newTestCLI(t)
	mustRun(t, c, "add-user", "-name", "alice")
	ctx := context.Background()

	err := c.dispatch(ctx, "add-preference", []string{"-user", "alice", "-platform", "myspace"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnknownPlatform))

	err = c.dispatch(ctx, "add-preference", []string{"-user", "alice", "-platform", "signal", "-level", "11"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidationFailed))

	err = c.dispatch(ctx, "add-preference", []string{"-user", "carol", "-platform", "signal"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeUserNotFound))
}

func TestListUsers(t *testing.T) {
	c, out := newTestCLI(t)
	mustRun(t, c, "list-users")
	assert.Equal(t, "⚠ No users found\n", out.String())

	seedCLI(t, c)
	out.Reset()
	mustRun(t, c, "list-users")
	assert.Contains(t, out.String(), "alice (alice@example.com)")
	assert.Contains(t, out.String(), "signal - Preference: 9/10 - Has Account: ✓ (privacy)")
	assert.Contains(t, out.String(), "telegram - Preference: 5/10 - Has Account: ✗")
}

func TestListPlatforms(t *testing.T) {
	c, out := newTestCLI(t)

	mustRun(t, c, "list-platforms", "-features", "endToEndEncryption")
	assert.Contains(t, out.String(), "1. WhatsApp (Score:")
	assert.Contains(t, out.String(), "8. Microsoft Teams")

	err := c.dispatch(context.Background(), "list-platforms", []string{"-features", "telepathy"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnknownFeature))
}

func TestListFeatures(t *testing.T) {
	c, out := newTestCLI(t)

	mustRun(t, c, "list-features")
	assert.Contains(t, out.String(), "Features by Category:")
	assert.Contains(t, out.String(), "Security\n  endToEndEncryption   whatsapp, telegram, signal, messenger, imessage\n")
	assert.Contains(t, out.String(), "  screenSharing        discord, slack, teams\n")
}

// ==========================
// Analysis
// ==========================

func TestFindCommon(t *testing.T) {
	c, out := newTestCLI(t)
	seedCLI(t, c)
	out.Reset()

	mustRun(t, c, "find-common", "-users", "alice, bob")
	assert.Contains(t, out.String(), "1. WhatsApp Avg Preference: 9.0/10")
	assert.Contains(t, out.String(), "2. Signal Avg Preference: 7.0/10")
	assert.NotContains(t, out.String(), "Telegram")
}

func TestRecommend_WithCompare(t *testing.T) {
	c, out := newTestCLI(t)
	seedCLI(t, c)
	out.Reset()

	mustRun(t, c, "recommend", "-users", "alice,bob", "-features", "endToEndEncryption,bots", "-compare")
	s := out.String()
	assert.Contains(t, s, "Missing: bots")
	assert.Contains(t, s, "Feature Comparison:")
	assert.Contains(t, s, "│ Feature            │ WhatsApp │ Signal │")
}

func TestCompare_DefaultsToAllFeatures(t *testing.T) {
	c, out := newTestCLI(t)
	seedCLI(t, c)
	out.Reset()

	mustRun(t, c, "compare", "-users", "alice,bob")
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	// info line, 3 header rows, 14 features, bottom border
	assert.Len(t, lines, 1+3+14+1)
}

func TestAnalysis_RequiresUsers(t *testing.T) {
	c, _ := newTestCLI(t)
	ctx := context.Background()

	err := c.dispatch(ctx, "find-common", nil)
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidationFailed))

	err = c.dispatch(ctx, "recommend", []string{"-users", "ghost"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeUserNotFound))
}

// ==========================
// Scheduling and export
// ==========================

func TestSchedule_DefaultsToTopRecommendation(t *testing.T) {
	c, out := newTestCLI(t)
	seedCLI(t, c)
	out.Reset()

	mustRun(t, c, "schedule", "-users", "alice,bob", "-datetime", "2025-06-01 18:30", "-minutes", "30")
	s := out.String()
	assert.Contains(t, s, "✓ Meeting scheduled successfully (ID: ")
	assert.Contains(t, s, "ℹ Platform: whatsapp")
	assert.Contains(t, s, "ℹ Date/Time: 2025-06-01 18:30 UTC")
	assert.Contains(t, s, "ℹ Duration: 30 minutes")
	assert.Contains(t, s, "ℹ Meeting link: https://chat.whatsapp.com/invite-for-temp_group_")
}

func TestSchedule_BadDatetime(t *testing.T) {
	c, _ := newTestCLI(t)
	seedCLI(t, c)

	err := c.dispatch(context.Background(), "schedule", []string{"-users", "alice", "-datetime", "soon"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidationFailed))
}

func TestExport(t *testing.T) {
	c, out := newTestCLI(t)
	seedCLI(t, c)
	out.Reset()

	mustRun(t, c, "export", "-users", "alice,bob", "-format", "csv")
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Platform,Score,Average Preference,Privacy Score,Popularity Score", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "WhatsApp,"))

	path := filepath.Join(t.TempDir(), "report.html")
	out.Reset()
	mustRun(t, c, "export", "-users", "alice,bob", "-format", "html", "-out", path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<!DOCTYPE html>")
	assert.Contains(t, out.String(), "Exported html report to")

	err = c.dispatch(context.Background(), "export", []string{"-users", "alice", "-format", "xml"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnsupportedFormat))
}

func TestDispatch_UnknownCommand(t *testing.T) {
	c, out := newTestCLI(t)
	err := c.dispatch(context.Background(), "frobnicate", nil)
	assert.Error(t, err)
	assert.Contains(t, out.String(), "Usage: getconnected")
}

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, run([]string{"help"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "add-preference")
	assert.Empty(t, stderr.String())
}
