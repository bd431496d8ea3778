// Package scheduler stores reminders created by schedule_task and fires
// them when they fall due.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/nadzzz/vaani/internal/executor"
	"github.com/nadzzz/vaani/internal/interpreter/multilang"
	"github.com/nadzzz/vaani/internal/message"
	"github.com/nadzzz/vaani/internal/store"
)

// TaskStore persists tasks.
type TaskStore interface {
	CreateTask(ctx context.Context, task *store.Task) (*store.Task, error)
	ListDueTasks(ctx context.Context, now time.Time) ([]*store.Task, error)
	MarkTaskFired(ctx context.Context, id int64) error
}

// Scheduler serves schedule_task.
type Scheduler struct {
	tasks TaskStore
	loc   *time.Location
	now   func() time.Time
}

// New creates the schedule_task executor. Spoken times are read in loc.
func New(tasks TaskStore, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{tasks: tasks, loc: loc, now: time.Now}
}

// Tool implements executor.Executor.
func (s *Scheduler) Tool() string { return message.ToolScheduleTask }

// Execute implements executor.Executor. A time expression that cannot be
// resolved still stores the task, without a due time.
func (s *Scheduler) Execute(ctx context.Context, action message.Action) (*executor.Result, error) {
	desc := action.Param("task_description")
	expr := action.Param("time")
	lang := multilang.ParseLanguage(action.Language)

	task := &store.Task{Description: desc, TimeExpr: expr, Language: string(lang)}
	if due, ok := ResolveTime(expr, desc, s.now().In(s.loc)); ok {
		task.DueAt = &due
	}

	created, err := s.tasks.CreateTask(ctx, task)
	if err != nil {
		return nil, executor.Fail(executor.ErrAutomationFailed, saveFailed.For(lang), err)
	}

	data := map[string]string{"task_id": strconv.FormatInt(created.ID, 10)}
	vars := map[string]string{"task": desc, "time": expr}
	if created.DueAt == nil {
		return &executor.Result{Message: saved.Format(lang, vars), Data: data}, nil
	}
	data["due_at"] = created.DueAt.In(s.loc).Format(time.RFC3339)
	vars["time"] = created.DueAt.In(s.loc).Format("Mon 2 Jan 3:04 PM")
	return &executor.Result{Message: scheduled.Format(lang, vars), Data: data}, nil
}

// Notifier is called once for every task that falls due.
type Notifier func(ctx context.Context, task *store.Task)

// LogNotifier logs the fired task.
func LogNotifier(_ context.Context, task *store.Task) {
	slog.Info("reminder due",
		"task_id", task.ID,
		"description", task.Description,
		"time_expr", task.TimeExpr,
		"language", task.Language,
	)
}

// Worker polls the store for due tasks.
type Worker struct {
	tasks    TaskStore
	interval time.Duration
	notify   Notifier
	now      func() time.Time
}

// NewWorker creates a worker. A nil notify logs.
func NewWorker(tasks TaskStore, interval time.Duration, notify Notifier) *Worker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if notify == nil {
		notify = LogNotifier
	}
	return &Worker{tasks: tasks, interval: interval, notify: notify, now: time.Now}
}

// Run polls until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	slog.Info("task scheduler started", "interval", w.interval.String())
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if _, err := w.Poll(ctx); err != nil {
			slog.Error("polling due tasks", "error", err)
		}
		select {
		case <-ctx.Done():
			slog.Info("task scheduler stopped")
			return
		case <-ticker.C:
		}
	}
}

// Poll fires every task due at the current time and returns how many fired.
// A task already fired by someone else is skipped.
func (w *Worker) Poll(ctx context.Context) (int, error) {
	due, err := w.tasks.ListDueTasks(ctx, w.now())
	if err != nil {
		return 0, fmt.Errorf("listing due tasks: %w", err)
	}

	fired := 0
	for _, task := range due {
		if err := w.tasks.MarkTaskFired(ctx, task.ID); err != nil {
			if store.IsNotFound(err) {
				continue
			}
			return fired, fmt.Errorf("marking task %d fired: %w", task.ID, err)
		}
		fired++
		w.notify(ctx, task)
	}
	return fired, nil
}

var (
	scheduled = multilang.Phrases{
		multilang.English:  "Task scheduled: {task} at {time}",
		multilang.Hindi:    "Task set ho gaya: {task}, {time}",
		multilang.Gujarati: "Task set thai gayu: {task}, {time}",
	}
	saved = multilang.Phrases{
		multilang.English:  "Task saved: {task}",
		multilang.Hindi:    "Task save ho gaya: {task}",
		multilang.Gujarati: "Task save thai gayu: {task}",
	}
	saveFailed = multilang.Phrases{
		multilang.English:  "Could not save the task",
		multilang.Hindi:    "Task save nahi ho paya",
		multilang.Gujarati: "Task save na thayu",
	}
)
