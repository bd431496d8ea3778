// Vaani is a voice-first personal assistant daemon. It understands commands
// in English, Hindi and Gujarati (including romanised, code-mixed speech),
// executes them and replies in the speaker's language.
//
// Usage:
//
//	vaani [flags]
//	vaani --config /path/to/vaani.yaml
//
// @title       Vaani API
// @version     1.0
// @description Multi-language (English, Hindi, Gujarati) voice command daemon.
// @license.name MIT
// @BasePath    /
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	_ "github.com/nadzzz/vaani/docs"
	"github.com/nadzzz/vaani/internal/config"
	"github.com/nadzzz/vaani/internal/dispatch"
	"github.com/nadzzz/vaani/internal/executor"
	"github.com/nadzzz/vaani/internal/executor/clock"
	"github.com/nadzzz/vaani/internal/executor/launcher"
	"github.com/nadzzz/vaani/internal/executor/phone"
	"github.com/nadzzz/vaani/internal/executor/scheduler"
	"github.com/nadzzz/vaani/internal/executor/whatsapp"
	"github.com/nadzzz/vaani/internal/health"
	"github.com/nadzzz/vaani/internal/interpreter"
	localinterp "github.com/nadzzz/vaani/internal/interpreter/local"
	"github.com/nadzzz/vaani/internal/interpreter/multilang"
	openaiinterp "github.com/nadzzz/vaani/internal/interpreter/openai"
	"github.com/nadzzz/vaani/internal/message"
	"github.com/nadzzz/vaani/internal/store"
	"github.com/nadzzz/vaani/internal/transport"
	grpctransport "github.com/nadzzz/vaani/internal/transport/grpc"
	httptransport "github.com/nadzzz/vaani/internal/transport/http"
	mqtttransport "github.com/nadzzz/vaani/internal/transport/mqtt"
	"github.com/nadzzz/vaani/internal/tts"
	"github.com/nadzzz/vaani/internal/tts/piper"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configFile := flag.String("config", "", "path to config file (e.g. configs/vaani.local.yaml)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("vaani %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logCloser := config.SetupLogging(cfg.Logging)
	defer logCloser.Close()
	slog.Info("vaani starting", "version", version)

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		slog.Error("vaani failed", "error", err)
		logCloser.Close()
		os.Exit(1)
	}
	slog.Info("vaani stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	db, err := store.New(ctx, cfg.Store.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, c := range cfg.Contacts {
		if _, err := db.UpsertContact(ctx, c.Name, c.Phone, c.Variations); err != nil {
			return fmt.Errorf("seeding contact %q: %w", c.Name, err)
		}
	}

	interp, err := newInterpreter(ctx, db, cfg.Executors.Launcher)
	if err != nil {
		return err
	}

	loc, err := clock.LoadLocation(cfg.Executors.Clock.Timezone)
	if err != nil {
		return err
	}

	registry := executor.NewRegistry(
		phone.New(db),
		clock.NewTime(loc),
		clock.NewDate(loc),
	)

	if cfg.Executors.Launcher.Enabled {
		apps := launcher.NewApps(cfg.Executors.Launcher.Apps)
		registry.Register(launcher.New(launcher.ExecRunner{}, apps))
		registry.Register(launcher.NewYouTube(launcher.ExecRunner{}, apps))
	}

	if cfg.Executors.WhatsApp.Enabled {
		sender, err := whatsapp.NewClientSender(ctx, cfg.Executors.WhatsApp.SessionDSN)
		if err != nil {
			return err
		}
		defer sender.Close()
		go func() {
			if err := sender.Connect(ctx); err != nil {
				slog.Error("whatsapp connect failed", "error", err)
			}
		}()
		registry.Register(whatsapp.New(db, sender, whatsapp.Options{
			MaxFailures:  cfg.Executors.WhatsApp.MaxFailures,
			BreakerReset: cfg.Executors.WhatsApp.BreakerReset,
			SendTimeout:  cfg.Executors.WhatsApp.SendTimeout,
		}))
	}

	var wg sync.WaitGroup
	if cfg.Executors.Scheduler.Enabled {
		registry.Register(scheduler.New(db, loc))
		worker := scheduler.NewWorker(db, cfg.Executors.Scheduler.PollInterval, scheduler.LogNotifier)
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Run(ctx)
		}()
	}
	slog.Info("executors registered", "tools", registry.Tools())

	opts := []dispatch.Option{
		dispatch.WithRateLimit(cfg.Executors.RateLimit.PerSecond, cfg.Executors.RateLimit.Burst),
		dispatch.WithMetrics(dispatch.NewMetrics(prometheus.DefaultRegisterer)),
		dispatch.WithTargets(targets(cfg.Targets)),
	}

	backend, err := newBackend(cfg.Interpreter)
	if err != nil {
		return err
	}
	if backend != nil {
		defer backend.Close()
		opts = append(opts, dispatch.WithTranscriber(backend))
		if cfg.Interpreter.Responder {
			opts = append(opts, dispatch.WithResponder(backend))
		}
	}

	if cfg.TTS.Enabled {
		synth, err := newSynthesizer(cfg.TTS)
		if err != nil {
			return err
		}
		defer synth.Close()
		opts = append(opts, dispatch.WithSynthesizer(synth))
		slog.Info("tts enabled", "backend", cfg.TTS.Backend, "endpoint", cfg.TTS.Piper.Endpoint)
	}

	var transports []transport.Transport
	if cfg.Transports.GRPC.Enabled {
		transports = append(transports, grpctransport.New(cfg.Transports.GRPC.Port))
	}
	if cfg.Transports.HTTP.Enabled {
		transports = append(transports, httptransport.New(cfg.Transports.HTTP.Port,
			httptransport.WithInterpreter(interp.Interpret),
			httptransport.WithSwagger(cfg.Transports.HTTP.Swagger),
			httptransport.WithMaxAudioBytes(int64(cfg.Transports.HTTP.MaxAudioMB)<<20),
		))
	}
	if cfg.Transports.MQTT.Enabled {
		m := cfg.Transports.MQTT
		transports = append(transports, mqtttransport.New(mqtttransport.Options{
			Broker:         m.Broker,
			Topic:          m.Topic,
			ResponsePrefix: m.ResponsePrefix,
			ClientID:       m.ClientID,
			Username:       m.Username,
			Password:       m.Password,
			QoS:            m.QoS,
		}))
	}
	if len(transports) == 0 {
		return fmt.Errorf("no transports enabled, enable at least one in config")
	}
	opts = append(opts, dispatch.WithTransports(transports...))

	dispatcher := dispatch.New(interp, registry, opts...)

	healthServer := health.New(cfg.Server.HealthPort, nil)
	go func() {
		if err := healthServer.ListenAndServe(ctx); err != nil {
			slog.Error("health server failed", "error", err)
		}
	}()

	for _, t := range transports {
		wg.Add(1)
		go func(t transport.Transport) {
			defer wg.Done()
			slog.Info("starting transport", "name", t.Name())
			if err := t.Listen(ctx, dispatcher.Handle); err != nil {
				slog.Error("transport failed", "name", t.Name(), "error", err)
			}
		}(t)
	}

	healthServer.SetReady(true)
	slog.Info("vaani ready",
		"transports", len(transports),
		"health_port", cfg.Server.HealthPort)

	<-ctx.Done()
	slog.Info("shutdown signal received, draining...")
	healthServer.SetReady(false)

	for _, t := range transports {
		if err := t.Close(); err != nil {
			slog.Error("transport close error", "name", t.Name(), "error", err)
		}
	}

	wg.Wait()
	return nil
}

// newInterpreter builds the command interpreter. Stored contacts and
// configured apps extend the built-in registries so their names are
// recognised in utterances.
func newInterpreter(ctx context.Context, db *store.DB, apps config.LauncherConfig) (*multilang.Interpreter, error) {
	contacts, err := db.ListContacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading contacts: %w", err)
	}

	contactAliases := make([]multilang.Alias, 0, len(contacts))
	for _, c := range contacts {
		contactAliases = append(contactAliases, multilang.Alias{
			Name:       c.Name,
			Variations: append([]string{strings.ToLower(c.Name)}, c.Variations...),
		})
	}

	appList := appAliases(apps.Apps)

	slog.Info("interpreter ready", "contacts", len(contactAliases), "apps", len(appList))
	return multilang.New(
		multilang.WithContacts(contactAliases...),
		multilang.WithApps(appList...),
	), nil
}

// appAliases turns configured app names into registry entries, sorted by
// name. Matching is first-hit, so the order must not depend on map
// iteration. The browser entry only backs play_youtube.
func appAliases(apps map[string][]string) []multilang.Alias {
	names := make([]string, 0, len(apps))
	for name := range apps {
		if name = strings.ToLower(strings.TrimSpace(name)); name != "" && name != launcher.BrowserApp {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	aliases := make([]multilang.Alias, 0, len(names))
	for _, name := range names {
		aliases = append(aliases, multilang.Alias{Name: name, Variations: []string{name}})
	}
	return aliases
}

// newBackend returns the model backend, or nil when none is configured.
func newBackend(cfg config.InterpreterConfig) (interpreter.Backend, error) {
	switch cfg.Backend {
	case "openai":
		slog.Info("using OpenAI backend",
			"transcription_model", cfg.OpenAI.TranscriptionModel,
			"completion_model", cfg.OpenAI.CompletionModel)
		return openaiinterp.New(cfg.OpenAI), nil
	case "local":
		slog.Info("using local backend",
			"whisper", cfg.Local.WhisperEndpoint,
			"llm", cfg.Local.LLMEndpoint)
		return localinterp.New(cfg.Local), nil
	case "none":
		slog.Info("no model backend, audio input is disabled")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown interpreter backend %q", cfg.Backend)
	}
}

func newSynthesizer(cfg config.TTSConfig) (tts.Synthesizer, error) {
	switch cfg.Backend {
	case "piper":
		return piper.New(cfg.Piper), nil
	default:
		return nil, fmt.Errorf("unknown tts backend %q", cfg.Backend)
	}
}

func targets(in map[string]config.Target) map[string]message.Target {
	out := make(map[string]message.Target, len(in))
	for name, t := range in {
		out[name] = message.Target{ServiceName: name, Endpoint: t.Endpoint, Protocol: t.Protocol}
	}
	return out
}
