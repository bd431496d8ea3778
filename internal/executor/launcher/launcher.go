// Package launcher opens applications and YouTube searches on the host.
package launcher

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os/exec"
	"strings"

	"github.com/nadzzz/vaani/internal/executor"
	"github.com/nadzzz/vaani/internal/interpreter/multilang"
	"github.com/nadzzz/vaani/internal/message"
)

// BrowserApp is the apps key whose command line opens URLs.
const BrowserApp = "browser"

// Runner starts a command without waiting for it to exit.
type Runner interface {
	Start(ctx context.Context, name string, args ...string) error
}

// ExecRunner starts processes with os/exec. The child is reaped in the
// background so long-running apps do not block the caller.
type ExecRunner struct{}

// Start implements Runner.
func (ExecRunner) Start(_ context.Context, name string, args ...string) error {
	// Not CommandContext: the app must outlive the request.
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", name, err)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			slog.Debug("launched process exited", "command", name, "error", err)
		}
	}()
	return nil
}

// Apps maps lower-case app names to their command line.
type Apps map[string][]string

// NewApps copies a config map, lower-casing keys and dropping empty
// command lines.
func NewApps(in map[string][]string) Apps {
	apps := make(Apps, len(in))
	for name, argv := range in {
		if len(argv) == 0 || argv[0] == "" {
			continue
		}
		apps[strings.ToLower(strings.TrimSpace(name))] = append([]string(nil), argv...)
	}
	return apps
}

func (a Apps) lookup(name string) ([]string, bool) {
	argv, ok := a[strings.ToLower(strings.TrimSpace(name))]
	return argv, ok
}

// Launcher serves open_app.
type Launcher struct {
	runner Runner
	apps   Apps
}

// New creates the open_app executor.
func New(runner Runner, apps Apps) *Launcher {
	return &Launcher{runner: runner, apps: apps}
}

// Tool implements executor.Executor.
func (l *Launcher) Tool() string { return message.ToolOpenApp }

// Execute implements executor.Executor. An app without a configured command
// is not an error: the result carries launched=false.
func (l *Launcher) Execute(ctx context.Context, action message.Action) (*executor.Result, error) {
	app := action.Param("app_name")
	lang := multilang.ParseLanguage(action.Language)
	vars := map[string]string{"app": app}

	argv, ok := l.apps.lookup(app)
	if !ok {
		slog.Info("no launch command configured", "app", app)
		return &executor.Result{
			Message: notConfigured.Format(lang, vars),
			Data:    map[string]string{"app": app, "launched": "false"},
		}, nil
	}

	if err := l.runner.Start(ctx, argv[0], argv[1:]...); err != nil {
		return nil, executor.Fail(executor.ErrAutomationFailed, openFailed.Format(lang, vars), err)
	}
	return &executor.Result{
		Message: opened.Format(lang, vars),
		Data:    map[string]string{"app": app, "launched": "true"},
	}, nil
}

// YouTube serves play_youtube by opening a search page in the browser.
type YouTube struct {
	runner  Runner
	browser []string
}

// NewYouTube creates the play_youtube executor. The browser command line is
// the "browser" entry of apps; the URL is appended as the last argument.
func NewYouTube(runner Runner, apps Apps) *YouTube {
	browser, _ := apps.lookup(BrowserApp)
	return &YouTube{runner: runner, browser: browser}
}

// Tool implements executor.Executor.
func (y *YouTube) Tool() string { return message.ToolPlayYouTube }

// Execute implements executor.Executor.
func (y *YouTube) Execute(ctx context.Context, action message.Action) (*executor.Result, error) {
	query := action.Param("query")
	lang := multilang.ParseLanguage(action.Language)
	vars := map[string]string{"query": query}
	link := SearchURL(query)

	if len(y.browser) == 0 {
		return &executor.Result{
			Message: playing.Format(lang, vars),
			Data:    map[string]string{"url": link, "launched": "false"},
		}, nil
	}

	args := append(append([]string(nil), y.browser[1:]...), link)
	if err := y.runner.Start(ctx, y.browser[0], args...); err != nil {
		return nil, executor.Fail(executor.ErrAutomationFailed, openFailed.Format(lang, map[string]string{"app": "YouTube"}), err)
	}
	return &executor.Result{
		Message: playing.Format(lang, vars),
		Data:    map[string]string{"url": link, "launched": "true"},
	}, nil
}

// SearchURL returns the YouTube results page for query.
func SearchURL(query string) string {
	return "https://www.youtube.com/results?search_query=" + url.QueryEscape(query)
}

var (
	opened = multilang.Phrases{
		multilang.English:  "Opened {app}",
		multilang.Hindi:    "{app} khol diya",
		multilang.Gujarati: "{app} kholi didhu",
	}
	notConfigured = multilang.Phrases{
		multilang.English:  "{app} is not set up on this device",
		multilang.Hindi:    "{app} is device par set nahi hai",
		multilang.Gujarati: "{app} aa device par set nathi",
	}
	openFailed = multilang.Phrases{
		multilang.English:  "Could not open {app}",
		multilang.Hindi:    "{app} nahi khul paya",
		multilang.Gujarati: "{app} kholi na shakayu",
	}
	playing = multilang.Phrases{
		multilang.English:  "Playing {query} on YouTube",
		multilang.Hindi:    "YouTube par {query} chala raha hoon",
		multilang.Gujarati: "YouTube par {query} chalavu chu",
	}
)
