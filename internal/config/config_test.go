package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vaani.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.HealthPort)
	assert.True(t, cfg.Transports.HTTP.Enabled)
	assert.Equal(t, 25, cfg.Transports.HTTP.MaxAudioMB)
	assert.Equal(t, 50051, cfg.Transports.GRPC.Port)
	assert.Equal(t, "none", cfg.Interpreter.Backend)
	assert.Equal(t, "Asia/Kolkata", cfg.Executors.Clock.Timezone)
	assert.Equal(t, 30*time.Second, cfg.Executors.Scheduler.PollInterval)
	assert.Equal(t, "vaani/responses", cfg.Transports.MQTT.ResponsePrefix)
	assert.Equal(t, "vaani.db", cfg.Store.Path)
}

func TestLoad_FileAndEnvRefs(t *testing.T) {
	t.Setenv("TEST_VAANI_OPENAI_KEY", "sk-test")
	t.Setenv("TEST_VAANI_MUMMY_PHONE", "+919800000001")

	path := writeConfig(t, `
interpreter:
  backend: openai
  responder: true
  openai:
    api_key: ${TEST_VAANI_OPENAI_KEY}
executors:
  launcher:
    apps:
      chrome: ["google-chrome", "--new-window"]
  scheduler:
    poll_interval: 5s
contacts:
  - name: Mummy
    phone: ${TEST_VAANI_MUMMY_PHONE}
    variations: ["mummy", "maa"]
targets:
  hub:
    endpoint: http://hub.local/actions
    protocol: http
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.Interpreter.OpenAI.APIKey)
	assert.True(t, cfg.Interpreter.Responder)
	assert.Equal(t, []string{"google-chrome", "--new-window"}, cfg.Executors.Launcher.Apps["chrome"])
	assert.Equal(t, 5*time.Second, cfg.Executors.Scheduler.PollInterval)
	require.Len(t, cfg.Contacts, 1)
	assert.Equal(t, "+919800000001", cfg.Contacts[0].Phone)
	assert.Equal(t, []string{"mummy", "maa"}, cfg.Contacts[0].Variations)
	assert.Equal(t, "http", cfg.Targets["hub"].Protocol)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("VAANI_SERVER_HEALTH_PORT", "9999")
	t.Setenv("VAANI_EXECUTORS_CLOCK_TIMEZONE", "UTC")

	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.HealthPort)
	assert.Equal(t, "UTC", cfg.Executors.Clock.Timezone)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown backend", "interpreter:\n  backend: magic\n"},
		{"openai without key", "interpreter:\n  backend: openai\n"},
		{"responder without backend", "interpreter:\n  responder: true\n"},
		{"bad timezone", "executors:\n  clock:\n    timezone: Mars/Olympus\n"},
		{"contact without name", "contacts:\n  - phone: \"+91\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestSetupLogging_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vaani.log")
	closer := SetupLogging(LoggingConfig{Level: "debug", Format: "text", File: path, MaxSizeMB: 1})
	t.Cleanup(func() { SetupLogging(LoggingConfig{}) })

	slog.Info("hello from test")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from test")
}
