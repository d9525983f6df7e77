package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/benjamonnguyen/pomotodo"
	"github.com/benjamonnguyen/pomotodo/timer"
	"github.com/charmbracelet/log"
)

var (
	tickRate    = time.Second
	updateEvery = 20 * time.Second
)

var (
	ErrNoSession    = errors.New("no active session")
	ErrTaskNotFound = errors.New("task not found")
	ErrTaskComplete = errors.New("task already complete")
)

type startSessionRequest struct {
	userID             pomotodo.OwnerID
	guildID, channelID string
}

type SessionManager interface {
	HasSession(pomotodo.OwnerID) bool
	GetSession(pomotodo.OwnerID) (Session, error)
	// StartSession creates the user's session if needed and starts the timer.
	StartSession(context.Context, startSessionRequest) (Session, error)
	SetMessage(owner pomotodo.OwnerID, channelID, messageID string) (Session, error)
	EndSession(context.Context, pomotodo.OwnerID) (Session, error)

	Stop(pomotodo.OwnerID) (Session, error)
	Reset(pomotodo.OwnerID) (Session, error)
	Skip(pomotodo.OwnerID) (Session, error)
	Complete(pomotodo.OwnerID) (Session, error)
	ChangeMode(pomotodo.OwnerID, timer.Mode) (Session, error)
	SelectTask(context.Context, pomotodo.OwnerID, pomotodo.TaskID) (Session, error)
	// QueueSettings stores settings to apply on the next reset.
	QueueSettings(pomotodo.OwnerID, timer.Settings) (Session, error)

	OnSessionUpdate(func(context.Context, Session))
	OnModeTransition(func(context.Context, Session, timer.Transition))
	Shutdown() error
}

type sessionManager struct {
	tasks     pomotodo.TaskRepo
	settings  SettingsService
	store     timer.TaskStore
	cache     *sessionCache
	wg        sync.WaitGroup
	parentCtx context.Context
	tickRate  time.Duration

	onSessionUpdate  func(context.Context, Session)
	onModeTransition func(context.Context, Session, timer.Transition)
}

func NewSessionManager(ctx context.Context, tasks pomotodo.TaskRepo, settings SettingsService, store timer.TaskStore) *sessionManager {
	return &sessionManager{
		tasks:    tasks,
		settings: settings,
		store:    store,
		cache: &sessionCache{
			sessions:    make(map[pomotodo.OwnerID]*managedSession),
			locks:       make(map[pomotodo.OwnerID]*sync.Mutex),
			cancelFuncs: make(map[pomotodo.OwnerID]func()),
		},
		parentCtx: ctx,
		tickRate:  tickRate,
	}
}

// managedSession is only touched while holding its cache lock.
type managedSession struct {
	info          Session
	engine        *timer.Engine
	settings      *sessionSettings
	lastPublished time.Time
	// publishSeq orders views; guarded by the session lock
	publishSeq uint64

	publishMu sync.Mutex
	sentSeq   uint64
}

// nextView captures the current view with its publish sequence.
func (s *managedSession) nextView() (Session, uint64) {
	s.publishSeq++
	return s.view(), s.publishSeq
}

func (s *managedSession) view() Session {
	v := s.info
	v.Timer = s.engine.Snapshot()
	v.Settings = s.settings.active
	if s.settings.pending != nil {
		pending := *s.settings.pending
		v.PendingSettings = &pending
	}
	return v
}

type sessionSettings struct {
	active  timer.Settings
	pending *timer.Settings
}

func (s *sessionSettings) Settings() timer.Settings {
	return s.active
}

func (s *sessionSettings) applyPending() {
	if s.pending != nil {
		s.active = *s.pending
		s.pending = nil
	}
}

type feedbackFunc func(timer.Transition)

func (f feedbackFunc) OnModeTransition(t timer.Transition) {
	f(t)
}

func (m *sessionManager) OnSessionUpdate(handler func(context.Context, Session)) {
	m.onSessionUpdate = handler
}

func (m *sessionManager) OnModeTransition(handler func(context.Context, Session, timer.Transition)) {
	m.onModeTransition = handler
}

func (m *sessionManager) HasSession(owner pomotodo.OwnerID) bool {
	return m.cache.Has(owner)
}

func (m *sessionManager) GetSession(owner pomotodo.OwnerID) (Session, error) {
	s, unlock := m.cache.Get(owner)
	if s == nil {
		return Session{}, fmt.Errorf("%w for user %s", ErrNoSession, owner)
	}
	defer unlock()
	return s.view(), nil
}

func (m *sessionManager) newSession(ctx context.Context, req startSessionRequest) *managedSession {
	settings, err := m.settings.Get(ctx, req.userID)
	if err != nil {
		log.Error("failed to load settings - using defaults", "userID", req.userID, "err", err)
	}
	s := &managedSession{
		info: Session{
			UserID:    req.userID,
			GuildID:   req.guildID,
			ChannelID: req.channelID,
		},
		settings: &sessionSettings{active: settings},
	}
	s.engine = timer.NewEngine(
		s.settings,
		m.store,
		feedbackFunc(func(t timer.Transition) {
			// runs under the session lock; handler must not block it
			if m.onModeTransition == nil {
				return
			}
			v := s.info
			v.Timer = t.Snapshot
			v.Settings = s.settings.active
			m.wg.Go(func() { m.onModeTransition(m.parentCtx, v, t) })
		}),
		timer.WithLogger(log.Default().With("userID", req.userID)),
	)
	return s
}

func (m *sessionManager) StartSession(ctx context.Context, req startSessionRequest) (Session, error) {
	if req.userID == "" || req.channelID == "" {
		return Session{}, fmt.Errorf("startSessionRequest requires user and channel IDs")
	}

	if !m.cache.Has(req.userID) {
		s := m.newSession(ctx, req)
		// a concurrent start may win the race; use its session
		if sessionCtx, err := m.cache.Add(m.parentCtx, req.userID, s); err == nil {
			m.startTickLoop(sessionCtx, req.userID)
			log.Info("created session", "userID", req.userID, "channelID", req.channelID)
		}
	}

	return m.do(req.userID, func(s *managedSession) error {
		_, err := s.engine.Start()
		return err
	})
}

func (m *sessionManager) SetMessage(owner pomotodo.OwnerID, channelID, messageID string) (Session, error) {
	return m.do(owner, func(s *managedSession) error {
		s.info.ChannelID = channelID
		s.info.MessageID = messageID
		return nil
	})
}

func (m *sessionManager) Stop(owner pomotodo.OwnerID) (Session, error) {
	return m.do(owner, func(s *managedSession) error {
		s.engine.Stop()
		return nil
	})
}

func (m *sessionManager) Reset(owner pomotodo.OwnerID) (Session, error) {
	return m.do(owner, func(s *managedSession) error {
		s.settings.applyPending()
		s.engine.Reset()
		return nil
	})
}

func (m *sessionManager) Skip(owner pomotodo.OwnerID) (Session, error) {
	return m.do(owner, func(s *managedSession) error {
		s.engine.Skip()
		return nil
	})
}

func (m *sessionManager) Complete(owner pomotodo.OwnerID) (Session, error) {
	return m.do(owner, func(s *managedSession) error {
		if s.engine.Snapshot().TaskID == "" {
			return fmt.Errorf("%w: no task selected", ErrTaskNotFound)
		}
		s.settings.applyPending()
		s.engine.Complete()
		s.info.TaskTitle = ""
		return nil
	})
}

func (m *sessionManager) ChangeMode(owner pomotodo.OwnerID, mode timer.Mode) (Session, error) {
	return m.do(owner, func(s *managedSession) error {
		_, err := s.engine.ChangeMode(mode)
		return err
	})
}

func (m *sessionManager) SelectTask(ctx context.Context, owner pomotodo.OwnerID, id pomotodo.TaskID) (Session, error) {
	var title string
	if id != "" {
		task, err := m.tasks.GetTask(ctx, id)
		if err != nil || task.OwnerID != owner {
			if err != nil {
				log.Debug("failed to get task", "taskID", id, "err", err)
			}
			return Session{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		if task.Completed() {
			return Session{}, fmt.Errorf("%w: %s", ErrTaskComplete, id)
		}
		title = task.Title
	}

	return m.do(owner, func(s *managedSession) error {
		s.engine.SelectTask(string(id))
		s.info.TaskTitle = title
		return nil
	})
}

func (m *sessionManager) QueueSettings(owner pomotodo.OwnerID, settings timer.Settings) (Session, error) {
	return m.do(owner, func(s *managedSession) error {
		if settings == s.settings.active {
			s.settings.pending = nil
			return nil
		}
		s.settings.pending = &settings
		return nil
	})
}

func (m *sessionManager) EndSession(ctx context.Context, owner pomotodo.OwnerID) (Session, error) {
	s, unlock := m.cache.Get(owner)
	if s == nil {
		return Session{}, fmt.Errorf("%w for user %s", ErrNoSession, owner)
	}
	// final view keeps the cycle count for the end message
	view, seq := s.nextView()
	view.Ended = true
	s.engine.Reset() // flushes pending focus time
	unlock()

	m.cache.Remove(owner)
	if m.onSessionUpdate != nil && view.MessageID != "" {
		s.publishMu.Lock()
		m.deliver(ctx, s, seq, view)
		s.publishMu.Unlock()
	}
	log.Info("ended session", "userID", owner)
	return view, nil
}

// Shutdown ends every session so pending focus time is flushed and session
// messages show the end state.
func (m *sessionManager) Shutdown() error {
	var errs []error
	for _, owner := range m.cache.Keys() {
		if _, err := m.EndSession(context.Background(), owner); err != nil && !errors.Is(err, ErrNoSession) {
			errs = append(errs, err)
		}
	}

	// Wait for all timer and publish goroutines to exit
	m.wg.Wait()
	return errors.Join(errs...)
}

// do runs fn under the session lock and publishes the resulting view.
func (m *sessionManager) do(owner pomotodo.OwnerID, fn func(*managedSession) error) (Session, error) {
	s, unlock := m.cache.Get(owner)
	if s == nil {
		return Session{}, fmt.Errorf("%w for user %s", ErrNoSession, owner)
	}
	err := fn(s)
	view, seq := s.nextView()
	s.lastPublished = time.Now()
	unlock()
	if err != nil {
		return view, err
	}

	m.publish(s, seq, view, false)
	return view, nil
}

func (m *sessionManager) publish(s *managedSession, seq uint64, view Session, skipIfBusy bool) {
	if m.onSessionUpdate == nil || view.MessageID == "" {
		return
	}
	m.wg.Go(func() {
		if skipIfBusy {
			// a slow message edit is still running; the next tick catches up
			if !s.publishMu.TryLock() {
				return
			}
		} else {
			s.publishMu.Lock()
		}
		defer s.publishMu.Unlock()
		m.deliver(m.parentCtx, s, seq, view)
	})
}

// deliver sends view unless a newer one already went out. Caller holds publishMu.
func (m *sessionManager) deliver(ctx context.Context, s *managedSession, seq uint64, view Session) {
	if seq <= s.sentSeq {
		return
	}
	s.sentSeq = seq
	m.onSessionUpdate(ctx, view)
}

func (m *sessionManager) startTickLoop(ctx context.Context, owner pomotodo.OwnerID) {
	m.wg.Go(func() {
		ticker := time.NewTicker(m.tickRate)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if !m.tick(owner, now) {
					log.Info("ending tick loop - session not found", "userID", owner)
					return
				}
			}
		}
	})
}

// tick reports false once the session is gone.
func (m *sessionManager) tick(owner pomotodo.OwnerID, now time.Time) bool {
	s, unlock := m.cache.Get(owner)
	if s == nil {
		return false
	}
	before := s.engine.Snapshot()
	if !before.IsRunning {
		unlock()
		return true
	}
	after := s.engine.Tick(now)
	shouldPublish := after.Mode != before.Mode || !after.IsRunning || now.Sub(s.lastPublished) >= updateEvery
	if !shouldPublish {
		unlock()
		return true
	}
	s.lastPublished = now
	view, seq := s.nextView()
	unlock()

	m.publish(s, seq, view, true)
	return true
}

// Cache

type sessionCache struct {
	cacheMu     sync.RWMutex
	sessions    map[pomotodo.OwnerID]*managedSession
	locks       map[pomotodo.OwnerID]*sync.Mutex
	cancelFuncs map[pomotodo.OwnerID]func()
}

// Add returns a context cancelled when the session is removed.
func (c *sessionCache) Add(ctx context.Context, key pomotodo.OwnerID, s *managedSession) (context.Context, error) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	if _, exists := c.locks[key]; exists {
		return nil, fmt.Errorf("session already exists for user %s", key)
	}
	c.locks[key] = &sync.Mutex{}
	c.sessions[key] = s
	sessionCtx, cancel := context.WithCancel(ctx)
	c.cancelFuncs[key] = cancel
	return sessionCtx, nil
}

func (c *sessionCache) Remove(key pomotodo.OwnerID) {
	c.cacheMu.RLock()
	l, exists := c.locks[key]
	c.cacheMu.RUnlock()
	if !exists {
		log.Debug("session not found", "userID", key)
		return
	}

	// lock order is session lock, then cacheMu
	l.Lock()
	defer l.Unlock()
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	if c.locks[key] != l {
		return
	}
	c.cancelFuncs[key]()
	delete(c.cancelFuncs, key)
	delete(c.sessions, key)
	delete(c.locks, key)
}

func (c *sessionCache) Get(key pomotodo.OwnerID) (*managedSession, func()) {
	c.cacheMu.RLock()
	l, exists := c.locks[key]
	s := c.sessions[key]
	c.cacheMu.RUnlock()
	if !exists {
		return nil, nil
	}

	l.Lock()
	// removed while waiting
	c.cacheMu.RLock()
	current := c.sessions[key]
	c.cacheMu.RUnlock()
	if current != s {
		l.Unlock()
		return nil, nil
	}
	return s, l.Unlock
}

func (c *sessionCache) Has(key pomotodo.OwnerID) bool {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()

	_, exists := c.locks[key]
	return exists
}

func (c *sessionCache) Keys() []pomotodo.OwnerID {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()

	keys := make([]pomotodo.OwnerID, 0, len(c.sessions))
	for k := range c.sessions {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
