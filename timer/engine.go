// Package timer implements the pomodoro countdown state machine.
//
// An Engine is not safe for concurrent use. Its owner must serialize Tick
// and every command onto one logical execution context.
package timer

import (
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

var (
	ErrNotConfigured = errors.New("timer settings not configured")
	ErrRunning       = errors.New("timer is running")
	ErrInvalidMode   = errors.New("invalid timer mode")
)

// TaskStore receives focus time and completion for tasks. Calls are fire-and-forget.
type TaskStore interface {
	AccumulateTime(taskID string, seconds int)
	MarkComplete(taskID string)
}

// FeedbackSink is notified after every phase change caused by expiry or skip.
type FeedbackSink interface {
	OnModeTransition(Transition)
}

type Clock interface {
	Now() time.Time
}

type Transition struct {
	From, To Mode
	Cause    Cause
	Snapshot Snapshot
}

type State struct {
	Mode             Mode      `json:"mode"`
	RemainingSeconds int       `json:"remainingSeconds"`
	CyclesCompleted  int       `json:"cyclesCompleted"`
	IsRunning        bool      `json:"isRunning"`
	LastTickAt       time.Time `json:"lastTickAt"`
}

// Snapshot is a read-only copy of the engine state.
type Snapshot struct {
	State
	TaskID             string `json:"taskID,omitempty"`
	AccumulatedSeconds int    `json:"accumulatedSeconds"`
	PhaseSeconds       int    `json:"phaseSeconds"`
}

func (s Snapshot) Remaining() time.Duration {
	return time.Duration(s.RemainingSeconds) * time.Second
}

type Engine struct {
	settings SettingsProvider
	store    TaskStore
	feedback FeedbackSink
	clock    Clock
	l        *log.Logger

	state       State
	taskID      string
	accumulated int
}

type Option func(*Engine)

func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		e.l = l
	}
}

// NewEngine returns a stopped engine at the start of the first work phase.
// store and feedback may be nil.
func NewEngine(settings SettingsProvider, store TaskStore, feedback FeedbackSink, opts ...Option) *Engine {
	if settings == nil {
		settings = StaticSettings{}
	}
	if store == nil {
		store = nopStore{}
	}
	if feedback == nil {
		feedback = nopFeedback{}
	}
	e := &Engine{
		settings: settings,
		store:    store,
		feedback: feedback,
		clock:    systemClock{},
		l:        log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.state = e.initialState()
	return e
}

func (e *Engine) initialState() State {
	return State{
		Mode:             Work,
		RemainingSeconds: e.settings.Settings().Seconds(Work),
		CyclesCompleted:  1,
	}
}

func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		State:              e.state,
		TaskID:             e.taskID,
		AccumulatedSeconds: e.accumulated,
		PhaseSeconds:       e.settings.Settings().Seconds(e.state.Mode),
	}
}

// Start fails with ErrNotConfigured unless every setting is positive.
func (e *Engine) Start() (Snapshot, error) {
	s := e.settings.Settings()
	if !s.Ready() {
		return e.Snapshot(), ErrNotConfigured
	}
	if e.state.IsRunning {
		return e.Snapshot(), nil
	}
	if e.state.RemainingSeconds == 0 {
		// created or reset before settings were ready
		e.state.RemainingSeconds = s.Seconds(e.state.Mode)
	}
	e.state.IsRunning = true
	e.state.LastTickAt = e.clock.Now()
	return e.Snapshot(), nil
}

func (e *Engine) Stop() Snapshot {
	e.state.IsRunning = false
	return e.Snapshot()
}

func (e *Engine) Reset() Snapshot {
	e.flush()
	e.state = e.initialState()
	return e.Snapshot()
}

func (e *Engine) Skip() Snapshot {
	e.advance(Skipped)
	return e.Snapshot()
}

// Tick advances the countdown by the whole seconds elapsed since the last
// tick. At most one phase transition happens per call.
func (e *Engine) Tick(now time.Time) Snapshot {
	if !e.state.IsRunning {
		return e.Snapshot()
	}
	elapsed := int(now.Sub(e.state.LastTickAt) / time.Second)
	if elapsed <= 0 {
		return e.Snapshot()
	}
	// keep the sub-second remainder for the next tick
	e.state.LastTickAt = e.state.LastTickAt.Add(time.Duration(elapsed) * time.Second)

	counted := min(elapsed, e.state.RemainingSeconds)
	if e.state.Mode == Work {
		e.accumulated += counted
	}
	e.state.RemainingSeconds -= counted
	if e.state.RemainingSeconds == 0 {
		e.advance(Expired)
	}
	return e.Snapshot()
}

// SelectTask flushes pending focus time to the previous task before switching.
func (e *Engine) SelectTask(taskID string) Snapshot {
	if taskID == e.taskID {
		return e.Snapshot()
	}
	e.flush()
	e.taskID = taskID
	return e.Snapshot()
}

// Complete marks the tracked task done, stops tracking it, and resets the timer.
func (e *Engine) Complete() Snapshot {
	taskID := e.taskID
	e.flush()
	if taskID != "" {
		e.store.MarkComplete(taskID)
		e.l.Debug("completed task", "taskID", taskID)
	}
	e.taskID = ""
	return e.Reset()
}

// ChangeMode jumps to the start of mode m. Cycle count is left alone.
func (e *Engine) ChangeMode(m Mode) (Snapshot, error) {
	if !m.Valid() {
		return e.Snapshot(), ErrInvalidMode
	}
	if e.state.IsRunning {
		return e.Snapshot(), ErrRunning
	}
	if e.state.Mode == Work && m != Work {
		e.flush()
	}
	e.state.Mode = m
	e.state.RemainingSeconds = e.settings.Settings().Seconds(m)
	return e.Snapshot(), nil
}

func (e *Engine) advance(cause Cause) {
	s := e.settings.Settings()
	from := e.state.Mode
	var to Mode
	if from == Work {
		e.flush()
		to = s.BreakAfter(e.state.CyclesCompleted)
	} else {
		to = Work
		e.state.CyclesCompleted++
	}
	e.state.Mode = to
	e.state.RemainingSeconds = s.Seconds(to)
	if e.state.RemainingSeconds == 0 {
		// settings were cleared mid-session; park instead of expiring every tick
		e.state.IsRunning = false
	}
	e.l.Debug("mode transition", "from", from, "to", to, "cause", cause, "cycles", e.state.CyclesCompleted)
	e.feedback.OnModeTransition(Transition{
		From:     from,
		To:       to,
		Cause:    cause,
		Snapshot: e.Snapshot(),
	})
}

func (e *Engine) flush() {
	if e.accumulated == 0 {
		return
	}
	if e.taskID != "" {
		e.store.AccumulateTime(e.taskID, e.accumulated)
	}
	e.accumulated = 0
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

type nopStore struct{}

func (nopStore) AccumulateTime(string, int) {}
func (nopStore) MarkComplete(string)        {}

type nopFeedback struct{}

func (nopFeedback) OnModeTransition(Transition) {}
