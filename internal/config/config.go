// Package config handles loading and validating the vaani configuration.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config is the root configuration for the vaani daemon.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Transports  TransportsConfig  `mapstructure:"transports"`
	Interpreter InterpreterConfig `mapstructure:"interpreter"`
	TTS         TTSConfig         `mapstructure:"tts"`
	Executors   ExecutorsConfig   `mapstructure:"executors"`
	Store       StoreConfig       `mapstructure:"store"`
	Contacts    []ContactConfig   `mapstructure:"contacts"`
	Targets     map[string]Target `mapstructure:"targets"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig holds the health check server settings.
type ServerConfig struct {
	HealthPort int `mapstructure:"health_port"`
}

// TransportsConfig holds the configuration for each transport layer.
type TransportsConfig struct {
	GRPC GRPCConfig `mapstructure:"grpc"`
	HTTP HTTPConfig `mapstructure:"http"`
	MQTT MQTTConfig `mapstructure:"mqtt"`
}

// GRPCConfig configures the gRPC transport.
type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// HTTPConfig configures the HTTP/WebSocket transport.
type HTTPConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	Port       int  `mapstructure:"port"`
	Swagger    bool `mapstructure:"swagger"`
	MaxAudioMB int  `mapstructure:"max_audio_mb"` // larger uploads get 413
}

// MQTTConfig configures the MQTT transport.
type MQTTConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Broker         string `mapstructure:"broker"`
	Topic          string `mapstructure:"topic"`           // request subscription, may contain wildcards
	ResponsePrefix string `mapstructure:"response_prefix"` // results go to <prefix>/<source>
	ClientID       string `mapstructure:"client_id"`       // random when empty
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	QoS            byte   `mapstructure:"qos"`
}

// InterpreterConfig selects the model backend used for speech-to-text and
// for answering unrecognised utterances. Command recognition itself is
// rule-based and needs no configuration.
type InterpreterConfig struct {
	Backend   string       `mapstructure:"backend"`   // "openai", "local" or "none"
	Responder bool         `mapstructure:"responder"` // answer unrecognised utterances with the backend
	OpenAI    OpenAIConfig `mapstructure:"openai"`
	Local     LocalConfig  `mapstructure:"local"`
}

// OpenAIConfig holds OpenAI API settings.
type OpenAIConfig struct {
	APIKey             string `mapstructure:"api_key"`
	TranscriptionModel string `mapstructure:"transcription_model"`
	CompletionModel    string `mapstructure:"completion_model"`
	BaseURL            string `mapstructure:"base_url"`
}

// LocalConfig holds self-hosted model settings.
type LocalConfig struct {
	WhisperEndpoint string `mapstructure:"whisper_endpoint"`
	WhisperType     string `mapstructure:"whisper_type"` // "openai" (default) or "asr" (ahmetoner/whisper-asr-webservice)
	LLMEndpoint     string `mapstructure:"llm_endpoint"`
	LLMModel        string `mapstructure:"llm_model"` // Ollama model name (e.g., "llama3.2:1b")
	VADFilter       bool   `mapstructure:"vad_filter"`
	Language        string `mapstructure:"language"` // ISO-639-1 default language (e.g., "hi")
}

// Target defines a named downstream service. Instructions may refer to it
// by service name alone.
type Target struct {
	Endpoint string `mapstructure:"endpoint"`
	Protocol string `mapstructure:"protocol"`
}

// TTSConfig selects and configures the text-to-speech backend.
type TTSConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	Backend string      `mapstructure:"backend"` // "piper"
	Piper   PiperConfig `mapstructure:"piper"`
}

// PiperConfig holds Piper TTS settings (Wyoming protocol).
//
// For a single Piper instance that serves all languages, set Endpoint.
// For per-language instances, set Endpoints which maps ISO-639-1 codes to
// individual Wyoming TCP endpoints. Endpoints takes precedence and Endpoint
// is the fallback.
type PiperConfig struct {
	Endpoint  string            `mapstructure:"endpoint"`
	Endpoints map[string]string `mapstructure:"endpoints"`
	Voices    map[string]string `mapstructure:"voices"`
}

// ExecutorsConfig configures the action executors.
type ExecutorsConfig struct {
	WhatsApp  WhatsAppConfig  `mapstructure:"whatsapp"`
	Launcher  LauncherConfig  `mapstructure:"launcher"`
	Clock     ClockConfig     `mapstructure:"clock"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// WhatsAppConfig configures the whatsmeow-backed sender.
type WhatsAppConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// SessionDSN is the sqlite DSN of the whatsmeow device store.
	SessionDSN string `mapstructure:"session_dsn"`
	// Breaker settings for the send path.
	MaxFailures  uint32        `mapstructure:"max_failures"`
	BreakerReset time.Duration `mapstructure:"breaker_reset"`
	SendTimeout  time.Duration `mapstructure:"send_timeout"`
}

// LauncherConfig maps canonical app names to the command line that opens
// them on this host.
type LauncherConfig struct {
	Enabled bool                `mapstructure:"enabled"`
	Apps    map[string][]string `mapstructure:"apps"`
}

// ClockConfig configures tell_time and tell_date.
type ClockConfig struct {
	Timezone string `mapstructure:"timezone"`
}

// SchedulerConfig configures schedule_task and the due-task worker.
type SchedulerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// RateLimitConfig bounds how fast actions are executed.
type RateLimitConfig struct {
	PerSecond float64 `mapstructure:"per_second"`
	Burst     int     `mapstructure:"burst"`
}

// StoreConfig configures the sqlite store for contacts and tasks.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// ContactConfig seeds the contact directory at startup.
type ContactConfig struct {
	Name       string   `mapstructure:"name"`
	Phone      string   `mapstructure:"phone"`
	Variations []string `mapstructure:"variations"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text

	// File enables a rotated log file next to stdout.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./vaani.yaml, ./configs/vaani.yaml, /etc/vaani/vaani.yaml.
// A .env file in the working directory is loaded first if present.
func Load(configFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("vaani")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/vaani")
	}

	// Environment variables: VAANI_SERVER_HEALTH_PORT, VAANI_INTERPRETER_BACKEND, etc.
	v.SetEnvPrefix("VAANI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The file is optional; env vars and defaults are sufficient.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${OPENAI_API_KEY}").
	cfg.Interpreter.OpenAI.APIKey = resolveEnvRef(cfg.Interpreter.OpenAI.APIKey)
	cfg.Transports.MQTT.Password = resolveEnvRef(cfg.Transports.MQTT.Password)
	for idx := range cfg.Contacts {
		cfg.Contacts[idx].Phone = resolveEnvRef(cfg.Contacts[idx].Phone)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("transports.grpc.enabled", true)
	v.SetDefault("transports.grpc.port", 50051)
	v.SetDefault("transports.http.enabled", true)
	v.SetDefault("transports.http.port", 8080)
	v.SetDefault("transports.http.swagger", true)
	v.SetDefault("transports.http.max_audio_mb", 25)
	v.SetDefault("transports.mqtt.enabled", false)
	v.SetDefault("transports.mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("transports.mqtt.topic", "vaani/requests/#")
	v.SetDefault("transports.mqtt.response_prefix", "vaani/responses")
	v.SetDefault("transports.mqtt.qos", 1)
	v.SetDefault("interpreter.backend", "none")
	v.SetDefault("interpreter.responder", false)
	v.SetDefault("interpreter.openai.transcription_model", "gpt-4o-transcribe")
	v.SetDefault("interpreter.openai.completion_model", "gpt-4o-mini")
	v.SetDefault("interpreter.openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("interpreter.local.whisper_endpoint", "http://localhost:8000/v1/audio/transcriptions")
	v.SetDefault("interpreter.local.whisper_type", "openai")
	v.SetDefault("interpreter.local.llm_endpoint", "http://localhost:11434/api/generate")
	v.SetDefault("interpreter.local.llm_model", "llama3")
	v.SetDefault("interpreter.local.vad_filter", false)
	v.SetDefault("interpreter.local.language", "")
	v.SetDefault("tts.enabled", false)
	v.SetDefault("tts.backend", "piper")
	v.SetDefault("tts.piper.endpoint", "localhost:10200")
	v.SetDefault("executors.whatsapp.enabled", false)
	v.SetDefault("executors.whatsapp.session_dsn", "file:whatsapp.db?_foreign_keys=on")
	v.SetDefault("executors.whatsapp.max_failures", 3)
	v.SetDefault("executors.whatsapp.breaker_reset", 30*time.Second)
	v.SetDefault("executors.whatsapp.send_timeout", 15*time.Second)
	v.SetDefault("executors.launcher.enabled", true)
	v.SetDefault("executors.clock.timezone", "Asia/Kolkata")
	v.SetDefault("executors.scheduler.enabled", true)
	v.SetDefault("executors.scheduler.poll_interval", 30*time.Second)
	v.SetDefault("executors.rate_limit.per_second", 2.0)
	v.SetDefault("executors.rate_limit.burst", 1)
	v.SetDefault("store.path", "vaani.db")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 7)
	v.SetDefault("logging.compress", true)
}

// Validate checks values that would otherwise fail late at startup.
func (c *Config) Validate() error {
	switch c.Interpreter.Backend {
	case "openai", "local", "none":
	default:
		return fmt.Errorf("unknown interpreter backend %q", c.Interpreter.Backend)
	}
	if c.Interpreter.Backend == "openai" && c.Interpreter.OpenAI.APIKey == "" {
		return fmt.Errorf("interpreter.openai.api_key is required for the openai backend")
	}
	if c.Interpreter.Responder && c.Interpreter.Backend == "none" {
		return fmt.Errorf("interpreter.responder needs a model backend")
	}
	if _, err := time.LoadLocation(c.Executors.Clock.Timezone); err != nil {
		return fmt.Errorf("executors.clock.timezone: %w", err)
	}
	if c.Executors.RateLimit.PerSecond < 0 || c.Executors.RateLimit.Burst < 0 {
		return fmt.Errorf("executors.rate_limit must not be negative")
	}
	for idx, ct := range c.Contacts {
		if strings.TrimSpace(ct.Name) == "" {
			return fmt.Errorf("contacts[%d]: name is required", idx)
		}
	}
	return nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		envKey := val[2 : len(val)-1]
		if envVal := os.Getenv(envKey); envVal != "" {
			return envVal
		}
	}
	return val
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// SetupLogging configures the global slog logger based on config. When a log
// file is configured, records go to both stdout and the rotated file; the
// returned Closer flushes and closes that file.
func SetupLogging(cfg LoggingConfig) io.Closer {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var out io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
			LocalTime:  true,
		}
		out = io.MultiWriter(os.Stdout, file)
		closer = file
	}

	slog.SetDefault(slog.New(newHandler(out, cfg.Format, opts)))
	return closer
}

func newHandler(w io.Writer, format string, opts *slog.HandlerOptions) slog.Handler {
	if strings.ToLower(format) == "text" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}
