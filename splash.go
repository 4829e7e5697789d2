package main

import (
	"errors"
	"sync"
	"time"
)

// SplashPhase is the controller's lifecycle position. Showing covers the
// pre-fade delay wait and the fade-in; Hiding covers the hide delay and the
// fade-out.
type SplashPhase string

const (
	SplashHidden  SplashPhase = "hidden"
	SplashShowing SplashPhase = "showing"
	SplashVisible SplashPhase = "visible"
	SplashHiding  SplashPhase = "hiding"
)

// Hide triggers reported in the hidden lifecycle event.
const (
	HideByCall      = "hide"
	HideByTimer     = "autoHide"
	HideBySupersede = "superseded"
	HideOnShutdown  = "shutdown"
)

// SplashShownEvent and SplashHiddenEvent are the outbound lifecycle
// notifications.
type SplashShownEvent struct {
	Source string    `json:"source"`
	Launch bool      `json:"launch"`
	At     time.Time `json:"at"`
}

type SplashHiddenEvent struct {
	Source  string    `json:"source"`
	Trigger string    `json:"trigger"`
	At      time.Time `json:"at"`
}

// SplashListener carries the host's optional lifecycle callbacks. A nil
// listener, or a nil field, is a normal silent state. Presence is fixed when
// the controller is built.
type SplashListener struct {
	OnShown  func(ev SplashShownEvent)
	OnHidden func(ev SplashHiddenEvent)
}

// SplashSnapshot is a point-in-time report of controller state.
type SplashSnapshot struct {
	Phase        SplashPhase `json:"phase"`
	Source       string      `json:"source,omitempty"`
	IsVisible    bool        `json:"isVisible"`
	Animated     bool        `json:"animated"`
	AutoHide     bool        `json:"autoHide"`
	LaunchSplash bool        `json:"launchSplash"`
	Disabled     bool        `json:"disabled"`
	PendingStep  string      `json:"pendingStep,omitempty"`
}

type splashCmdKind int

const (
	cmdShow splashCmdKind = iota
	cmdHide
	cmdAnimate
	cmdState
)

type splashCmd struct {
	kind   splashCmdKind
	opts   *SplashOptions
	launch bool
	reply  chan error
	state  chan SplashSnapshot
}

// stepKind names the single pending timer step. At any instant the
// controller owns at most one timer: a sequencing step while Showing/Hiding,
// or the autoHide timer while Visible.
type stepKind int

const (
	stepNone stepKind = iota
	stepDelayIn
	stepFadeIn
	stepDelayOut
	stepFadeOut
	stepAutoHide
)

func (k stepKind) String() string {
	switch k {
	case stepDelayIn:
		return "delay-in"
	case stepFadeIn:
		return "fade-in"
	case stepDelayOut:
		return "delay-out"
	case stepFadeOut:
		return "fade-out"
	case stepAutoHide:
		return "auto-hide"
	}
	return ""
}

type stepEvent struct {
	gen  uint64
	kind stepKind
}

// SplashController owns the visibility state of one splash view. Calls may
// arrive from any goroutine; the run loop serializes them together with
// every timer callback onto one control flow, so the loop-owned state below
// needs no lock. Timer events are stamped with a generation counter and a
// superseding call bumps it, which both discards stale steps and guarantees
// at most one live fade or autoHide timer.
type SplashController struct {
	provider ViewProvider
	settings func() *SplashSettings
	listener *SplashListener
	disabled bool

	cmds  chan splashCmd
	steps chan stepEvent
	quit  chan struct{}
	done  chan struct{}
	stop  sync.Once

	// Loop-owned state. Only run() and its helpers touch these.
	phase        SplashPhase
	visible      bool
	cfg          SplashConfig
	view         SplashView
	spinner      Spinner
	gen          uint64
	timer        *time.Timer
	timerFor     stepKind
	waiters      []chan error
	hideTrigger  string
	shownEmitted bool
}

// NewSplashController starts the controller loop. When the persisted
// showDuration resolves to 0 the whole subsystem is disabled at load: the
// launch splash never runs and later show calls return without ever creating
// a view.
func NewSplashController(provider ViewProvider, settings func() *SplashSettings, listener *SplashListener) *SplashController {
	if settings == nil {
		settings = func() *SplashSettings { return nil }
	}
	c := &SplashController{
		provider: provider,
		settings: settings,
		listener: listener,
		cmds:     make(chan splashCmd),
		steps:    make(chan stepEvent, 8),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		phase:    SplashHidden,
	}
	if resolveSplashConfig(nil, settings()).ShowDuration == 0 {
		c.disabled = true
	}
	go c.run()
	return c
}

// Show displays a splash view with the merged configuration. It returns once
// the fade-in has completed, or earlier when a newer call supersedes this
// one. Safe to call from any goroutine.
func (c *SplashController) Show(opts *SplashOptions) error {
	return c.request(splashCmd{kind: cmdShow, opts: opts})
}

// ShowLaunch runs the automatic at-load display.
func (c *SplashController) ShowLaunch() error {
	return c.request(splashCmd{kind: cmdShow, launch: true})
}

// Hide dismisses the current splash. Only Delay and FadeOutDuration of opts
// are consumed. Yields a NoSplash failure when nothing is shown.
func (c *SplashController) Hide(opts *SplashOptions) error {
	return c.request(splashCmd{kind: cmdHide, opts: opts})
}

// Animate starts the looping animation using the animated flag frozen in at
// the most recent successful Show. With no view, or with animated off, it is
// a silent no-op.
func (c *SplashController) Animate() error {
	return c.request(splashCmd{kind: cmdAnimate})
}

// Disabled reports whether the subsystem was switched off at load time.
func (c *SplashController) Disabled() bool {
	return c.disabled
}

// State reports a snapshot of the controller.
func (c *SplashController) State() SplashSnapshot {
	cmd := splashCmd{kind: cmdState, state: make(chan SplashSnapshot, 1)}
	select {
	case c.cmds <- cmd:
	case <-c.done:
		return SplashSnapshot{Phase: SplashHidden, Disabled: c.disabled}
	}
	select {
	case s := <-cmd.state:
		return s
	case <-c.done:
		return SplashSnapshot{Phase: SplashHidden, Disabled: c.disabled}
	}
}

// Stop tears the controller down, releasing any live view, and waits for the
// loop to exit.
func (c *SplashController) Stop() {
	c.stop.Do(func() { close(c.quit) })
	<-c.done
}

func (c *SplashController) request(cmd splashCmd) error {
	cmd.reply = make(chan error, 1)
	select {
	case c.cmds <- cmd:
	case <-c.done:
		return nil
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-c.done:
		return nil
	}
}

func (c *SplashController) run() {
	defer close(c.done)
	for {
		select {
		case cmd := <-c.cmds:
			c.handle(cmd)
		case ev := <-c.steps:
			// Steps from a superseded generation are dead on arrival.
			if ev.gen == c.gen {
				c.advance(ev.kind)
			}
		case <-c.quit:
			c.shutdown()
			return
		}
	}
}

func (c *SplashController) handle(cmd splashCmd) {
	switch cmd.kind {
	case cmdShow:
		c.handleShow(cmd)
	case cmdHide:
		c.handleHide(cmd)
	case cmdAnimate:
		cmd.reply <- c.handleAnimate()
	case cmdState:
		cmd.state <- c.snapshot()
	}
}

func (c *SplashController) handleShow(cmd splashCmd) {
	if c.disabled {
		Log.Debug("splash disabled, show ignored", "launch", cmd.launch)
		cmd.reply <- nil
		return
	}

	cfg := resolveSplashConfig(cmd.opts, c.settings())
	cfg.IsLaunchSplash = cmd.launch

	// Resolve before touching anything so a failed show leaves all state,
	// including an in-flight fade, exactly as it was.
	view := c.view
	if view == nil || view.Source() != cfg.Source {
		resolved, err := c.provider.Resolve(cfg.Source)
		if err != nil {
			var serr *SplashError
			if !errors.As(err, &serr) {
				serr = &SplashError{Code: SplashCodeNotFound, Message: err.Error()}
			}
			Log.Info("splash source unresolved", "source", cfg.Source, "err", err)
			cmd.reply <- serr
			return
		}
		view = resolved
	}

	// The newest call wins: cancel whatever is in flight and resolve its
	// waiters, then swap the view if the source changed.
	c.supersede()
	if c.view != nil && c.view != view {
		c.releaseView(HideBySupersede)
	}

	c.view = view
	c.cfg = cfg
	c.visible = false
	c.phase = SplashShowing
	c.hideTrigger = ""
	c.waiters = append(c.waiters, cmd.reply)

	// A looping animation never outlives the show cycle that started it; a
	// reused view enters the new cycle still, and only a fresh Animate call
	// restarts it.
	view.StopAnimation()

	// Present is idempotent: a fresh view attaches at zero opacity, a
	// reused one keeps its opacity and refreshes the background.
	view.Present(cfg.BackgroundColor)

	if cfg.ShowSpinner && c.spinner == nil {
		c.spinner = view.AttachSpinner()
	} else if !cfg.ShowSpinner && c.spinner != nil {
		c.spinner.Remove()
		c.spinner = nil
	}

	Log.Info("splash show", "source", cfg.Source, "launch", cfg.IsLaunchSplash,
		"delay", cfg.Delay, "fadeIn", cfg.FadeInDuration, "autoHide", cfg.AutoHide)

	if cfg.Delay > 0 {
		c.schedule(stepDelayIn, cfg.Delay)
	} else {
		c.beginFadeIn()
	}
}

func (c *SplashController) handleHide(cmd splashCmd) {
	if c.view == nil {
		cmd.reply <- ErrNoSplash
		return
	}

	cfg := resolveSplashConfig(cmd.opts, c.settings())
	c.supersede()

	// Keep the show-time config (it carries the frozen animated flag) and
	// only adopt the hide call's own timing.
	c.cfg.Delay = cfg.Delay
	c.cfg.FadeOutDuration = cfg.FadeOutDuration

	c.phase = SplashHiding
	c.hideTrigger = HideByCall
	c.waiters = append(c.waiters, cmd.reply)

	Log.Info("splash hide", "source", c.cfg.Source, "delay", cfg.Delay, "fadeOut", cfg.FadeOutDuration)

	if cfg.Delay > 0 {
		c.schedule(stepDelayOut, cfg.Delay)
	} else {
		c.beginFadeOut()
	}
}

func (c *SplashController) handleAnimate() error {
	// Nothing shown, or the frozen show-time flag is off: silently ignore.
	// "Nothing to animate" is not a failure.
	if c.view == nil || !c.cfg.Animated {
		return nil
	}
	if err := c.view.StartAnimation(); err != nil {
		var serr *SplashError
		if !errors.As(err, &serr) {
			serr = &SplashError{Code: SplashCodeAnimateMethodMissing, Message: err.Error()}
		}
		Log.Info("splash animate unavailable", "source", c.cfg.Source, "err", serr)
		return serr
	}
	Log.Debug("splash animate", "source", c.cfg.Source)
	return nil
}

// advance runs one timer step. The generation check in run() already
// filtered stale events.
func (c *SplashController) advance(kind stepKind) {
	c.timer = nil
	c.timerFor = stepNone

	switch kind {
	case stepDelayIn:
		c.beginFadeIn()
	case stepFadeIn:
		c.phase = SplashVisible
		c.visible = true
		c.flushWaiters(nil)
		c.shownEmitted = true
		c.emitShown(SplashShownEvent{Source: c.cfg.Source, Launch: c.cfg.IsLaunchSplash, At: time.Now()})
		Log.Info("splash visible", "source", c.cfg.Source)
		if c.cfg.AutoHide {
			c.schedule(stepAutoHide, c.cfg.ShowDuration)
		}
	case stepAutoHide:
		c.phase = SplashHiding
		c.hideTrigger = HideByTimer
		c.beginFadeOut()
	case stepDelayOut:
		c.beginFadeOut()
	case stepFadeOut:
		c.releaseView(c.hideTrigger)
		c.phase = SplashHidden
		c.flushWaiters(nil)
	}
}

func (c *SplashController) beginFadeIn() {
	c.view.BeginFade(1, secondsToDuration(c.cfg.FadeInDuration))
	c.schedule(stepFadeIn, c.cfg.FadeInDuration)
}

// beginFadeOut clears isVisible: it is true from fade-in completion until
// the moment fade-out begins, so a pending hide delay still counts as
// visible.
func (c *SplashController) beginFadeOut() {
	c.visible = false
	c.view.BeginFade(0, secondsToDuration(c.cfg.FadeOutDuration))
	c.schedule(stepFadeOut, c.cfg.FadeOutDuration)
}

// supersede cancels the in-flight step and fade and resolves any waiting
// callers: a superseded call counts as settled, its outcome replaced by the
// newer call's.
func (c *SplashController) supersede() {
	c.gen++
	c.cancelTimer()
	if c.view != nil {
		c.view.CancelFade()
	}
	c.flushWaiters(nil)
}

// releaseView detaches and drops the view and spinner. It runs on every path
// that lands in Hidden, supersede included, so no view hierarchy entry ever
// leaks. The hidden notification fires only if this view had announced
// itself shown.
func (c *SplashController) releaseView(trigger string) {
	if c.spinner != nil {
		c.spinner.Remove()
		c.spinner = nil
	}
	if c.view != nil {
		c.view.Detach()
		c.view = nil
	}
	c.visible = false
	if c.shownEmitted {
		c.shownEmitted = false
		c.emitHidden(SplashHiddenEvent{Source: c.cfg.Source, Trigger: trigger, At: time.Now()})
		Log.Info("splash hidden", "source", c.cfg.Source, "trigger", trigger)
	}
}

func (c *SplashController) schedule(kind stepKind, seconds float64) {
	gen := c.gen
	c.timerFor = kind
	c.timer = time.AfterFunc(secondsToDuration(seconds), func() {
		select {
		case c.steps <- stepEvent{gen: gen, kind: kind}:
		case <-c.quit:
		}
	})
}

func (c *SplashController) cancelTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.timerFor = stepNone
}

func (c *SplashController) flushWaiters(err error) {
	for _, w := range c.waiters {
		w <- err
	}
	c.waiters = nil
}

func (c *SplashController) snapshot() SplashSnapshot {
	s := SplashSnapshot{
		Phase:       c.phase,
		IsVisible:   c.visible,
		Disabled:    c.disabled,
		PendingStep: c.timerFor.String(),
	}
	if c.view != nil {
		s.Source = c.cfg.Source
		s.Animated = c.cfg.Animated
		s.AutoHide = c.cfg.AutoHide
		s.LaunchSplash = c.cfg.IsLaunchSplash
	}
	return s
}

func (c *SplashController) shutdown() {
	c.gen++
	c.cancelTimer()
	c.releaseView(HideOnShutdown)
	c.phase = SplashHidden
	c.flushWaiters(nil)
}
