package main

import (
	"context"
	"errors"
	"sync"
	"time"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// SplashView is one attached splash surface.
type SplashView interface {
	Source() string
	// Present attaches or refreshes the view. A fresh view starts at zero
	// opacity; a re-presented one keeps whatever opacity it has.
	Present(backgroundColor string)
	// BeginFade starts an opacity transition toward target (0..1).
	// Completion is timed by the caller, which never runs two fades at once
	// on one view.
	BeginFade(target float64, d time.Duration)
	// CancelFade freezes an in-flight transition at its current opacity.
	CancelFade()
	// AttachSpinner overlays the activity indicator and returns its handle.
	AttachSpinner() Spinner
	// StartAnimation begins the view's looping animation, or reports
	// AnimateMethodNotFound when the view carries no animation description.
	StartAnimation() error
	StopAnimation()
	// Detach removes the view from display. The view is dead afterwards.
	Detach()
}

// Spinner is the activity indicator handle held by the splash controller.
type Spinner interface {
	Remove()
}

// ViewProvider resolves a named splash view. Implementations must not retain
// returned views; the controller is their sole owner.
type ViewProvider interface {
	Resolve(name string) (SplashView, error)
}

// errWebviewNotReady is returned for show calls arriving before startup has
// handed over the runtime context.
var errWebviewNotReady = errors.New("界面尚未就绪，无法显示启动画面")

// overlayViewProvider materializes splash views as DOM overlays in the
// frontend. The Go side keeps all timing authority; the shim in web/app.js
// only applies the CSS it is told to.
type overlayViewProvider struct {
	mu    sync.RWMutex
	ctx   context.Context
	views *ViewLibrary
}

func newOverlayViewProvider(views *ViewLibrary) *overlayViewProvider {
	return &overlayViewProvider{views: views}
}

// bind installs the runtime context once the webview exists.
func (p *overlayViewProvider) bind(ctx context.Context) {
	p.mu.Lock()
	p.ctx = ctx
	p.mu.Unlock()
}

func (p *overlayViewProvider) context() context.Context {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ctx
}

func (p *overlayViewProvider) Resolve(name string) (SplashView, error) {
	ctx := p.context()
	if ctx == nil {
		return nil, errWebviewNotReady
	}
	spec, err := p.views.Load(name)
	if err != nil {
		return nil, err
	}
	return &overlayView{ctx: ctx, spec: spec}, nil
}

type overlayView struct {
	ctx  context.Context
	spec *ViewSpec
}

func (v *overlayView) Source() string { return v.spec.Name }

func (v *overlayView) Present(backgroundColor string) {
	bg := backgroundColor
	if bg == "" {
		bg = v.spec.Background
	}
	payload := splashPresentPayload{Source: v.spec.Name, Background: bg}
	if v.spec.Image != "" {
		payload.ImageURL = "/splash/" + v.spec.Image
	}
	wailsRuntime.EventsEmit(v.ctx, EventSplashPresent, payload)
}

func (v *overlayView) BeginFade(target float64, d time.Duration) {
	wailsRuntime.EventsEmit(v.ctx, EventSplashFade, splashFadePayload{
		Target:     target,
		DurationMs: d.Milliseconds(),
	})
}

func (v *overlayView) CancelFade() {
	wailsRuntime.EventsEmit(v.ctx, EventSplashFade, splashFadePayload{Cancel: true})
}

func (v *overlayView) AttachSpinner() Spinner {
	payload := splashSpinnerPayload{Show: true, Style: "ring", Color: "#FFFFFF"}
	if v.spec.Spinner != nil {
		payload.Style = v.spec.Spinner.Style
		payload.Color = v.spec.Spinner.Color
	}
	wailsRuntime.EventsEmit(v.ctx, EventSplashSpinner, payload)
	return &overlaySpinner{ctx: v.ctx}
}

func (v *overlayView) StartAnimation() error {
	if v.spec.Animation == nil {
		return ErrAnimateMethodMissed
	}
	a := v.spec.Animation
	wailsRuntime.EventsEmit(v.ctx, EventSplashAnimate, splashAnimatePayload{
		Start:      true,
		Kind:       a.Kind,
		DurationMs: int64(a.Duration * 1000),
		Loop:       a.Loop,
	})
	return nil
}

func (v *overlayView) StopAnimation() {
	wailsRuntime.EventsEmit(v.ctx, EventSplashAnimate, splashAnimatePayload{})
}

func (v *overlayView) Detach() {
	wailsRuntime.EventsEmit(v.ctx, EventSplashRemove, splashRemovePayload{Source: v.spec.Name})
}

type overlaySpinner struct{ ctx context.Context }

func (s *overlaySpinner) Remove() {
	wailsRuntime.EventsEmit(s.ctx, EventSplashSpinner, splashSpinnerPayload{Show: false})
}
