// Package executor runs the action descriptors produced by the interpreter.
//
// Each tool is served by one Executor. The Registry looks executors up by
// tool name, checks that required parameters are present, and turns the
// outcome into a message.ActionResult. Tools without a registered executor
// are reported as unhandled rather than failed.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/nadzzz/vaani/internal/interpreter/multilang"
	"github.com/nadzzz/vaani/internal/message"
)

// Sentinel errors. Executors wrap them so callers can use errors.Is.
var (
	ErrContactNotFound  = errors.New("contact not found")
	ErrInvalidPhone     = errors.New("invalid phone number")
	ErrAutomationFailed = errors.New("automation failed")
	ErrUnknownTool      = errors.New("unknown tool")
	ErrIncomplete       = errors.New("required parameters missing")
)

// Result is the outcome of a successful execution.
type Result struct {
	// Message is a localized, user-facing sentence.
	Message string
	Data    map[string]string
}

// Error is a failed execution that still carries a localized message for
// the user.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Fail builds an *Error from a sentinel and a localized message.
func Fail(sentinel error, msg string, cause error) error {
	err := sentinel
	if cause != nil {
		err = fmt.Errorf("%w: %v", sentinel, cause)
	}
	return &Error{Message: msg, Err: err}
}

// Executor performs one tool.
type Executor interface {
	Tool() string
	Execute(ctx context.Context, action message.Action) (*Result, error)
}

// Func adapts a function to the Executor interface.
type Func struct {
	Name string
	Fn   func(ctx context.Context, action message.Action) (*Result, error)
}

func (f Func) Tool() string { return f.Name }

func (f Func) Execute(ctx context.Context, action message.Action) (*Result, error) {
	return f.Fn(ctx, action)
}

// Registry maps tool names to executors. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	executors map[string]Executor
}

// NewRegistry creates a registry holding the built-in no_action executor
// plus execs.
func NewRegistry(execs ...Executor) *Registry {
	r := &Registry{executors: make(map[string]Executor)}
	r.Register(noAction{})
	for _, e := range execs {
		r.Register(e)
	}
	return r
}

// Register adds or replaces the executor for e.Tool().
func (r *Registry) Register(e Executor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executors[e.Tool()] = e
}

// Lookup returns the executor registered for tool.
func (r *Registry) Lookup(tool string) (Executor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.executors[tool]
	return e, ok
}

// Tools lists the registered tool names, sorted.
func (r *Registry) Tools() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tools := make([]string, 0, len(r.executors))
	for t := range r.executors {
		tools = append(tools, t)
	}
	sort.Strings(tools)
	return tools
}

// Execute runs one action and never returns an error: failures are encoded
// in the result's Status and Error.
func (r *Registry) Execute(ctx context.Context, action message.Action) message.ActionResult {
	res := message.ActionResult{Tool: action.Tool}
	lang := multilang.ParseLanguage(action.Language)

	if !message.IsKnownTool(action.Tool) {
		res.Status = message.StatusFailed
		res.Error = fmt.Errorf("%w: %q", ErrUnknownTool, action.Tool).Error()
		return res
	}
	if missing := Validate(action); len(missing) > 0 {
		res.Status = message.StatusFailed
		res.Message = Clarification(action.Tool, lang)
		res.Error = fmt.Errorf("%w: %v", ErrIncomplete, missing).Error()
		return res
	}

	e, ok := r.Lookup(action.Tool)
	if !ok {
		res.Status = message.StatusUnhandled
		return res
	}

	out, err := e.Execute(ctx, action)
	if err != nil {
		res.Status = message.StatusFailed
		res.Error = err.Error()
		var execErr *Error
		if errors.As(err, &execErr) {
			res.Message = execErr.Message
		} else {
			res.Message = genericFailure.For(lang)
		}
		slog.Warn("action failed", "tool", action.Tool, "error", err)
		return res
	}

	res.Status = message.StatusOK
	if out != nil {
		res.Message = out.Message
		res.Data = out.Data
	}
	return res
}

// ValidPhone reports whether phone is in international format: a leading
// "+" followed by digits only.
func ValidPhone(phone string) bool {
	if len(phone) < 2 || !strings.HasPrefix(phone, "+") {
		return false
	}
	for _, r := range phone[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var genericFailure = multilang.Phrases{
	multilang.English:  "I encountered an error while executing the action",
	multilang.Hindi:    "Action chalate waqt error aa gaya",
	multilang.Gujarati: "Action chalavta error aavi",
}

type noAction struct{}

func (noAction) Tool() string { return message.ToolNoAction }

func (noAction) Execute(context.Context, message.Action) (*Result, error) {
	return &Result{}, nil
}
