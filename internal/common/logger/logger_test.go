package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"getconnected/internal/common/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapAdapter_FieldsAndError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core))

	log.WithFields(map[string]interface{}{"groupId": "g-1"}).
		WithError(errors.New("boom")).
		Warn("analysis failed", map[string]interface{}{"members": 3})

	entries := logs.All()
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "analysis failed", entry.Message)
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	ctx := entry.ContextMap()
	assert.Equal(t, "g-1", ctx["groupId"])
	assert.Equal(t, "boom", ctx["error"])
	assert.EqualValues(t, 3, ctx["members"])
}

func TestToZap_SortedKeysAndErrors(t *testing.T) {
	fields := toZap(map[string]interface{}{"b": 1, "a": "x", "cause": errors.New("down")})
	require.Len(t, fields, 3)
	assert.Equal(t, "a", fields[0].Key)
	assert.Equal(t, "b", fields[1].Key)
	assert.Equal(t, "cause", fields[2].Key)
	assert.Equal(t, zapcore.ErrorType, fields[2].Type)
	assert.Nil(t, toZap(nil))
}

func TestBuild_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := Build(config.LoggingConfig{Level: "info", Format: "json", Output: path}, "getconnected-test")
	require.NoError(t, err)

	log := NewZapAdapter(l)
	log.Debug("filtered", nil)
	log.Info("platform catalog loaded", map[string]interface{}{"platforms": 8})
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"msg":"platform catalog loaded"`)
	assert.Contains(t, out, `"service":"getconnected-test"`)
	assert.Contains(t, out, `"platforms":8`)
	assert.Contains(t, out, `"timestamp":`)
	assert.NotContains(t, out, "filtered")
}

func TestBuild_RejectsBadSettings(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LoggingConfig
		want string
	}{
		{name: "level", cfg: config.LoggingConfig{Level: "loud"}, want: "logging.level"},
		{name: "format", cfg: config.LoggingConfig{Format: "xml"}, want: "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.cfg, "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNoOpAndTestLoggers(t *testing.T) {
	NewNoOpLogger().Info("discarded", nil)
	NewTestLogger(t).Debug("visible in -v output", map[string]interface{}{"k": "v"})
}
