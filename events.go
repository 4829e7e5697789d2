package main

// Event name constants for Wails runtime events
const (
	// Splash lifecycle, announced to the frontend.
	EventSplashShown  = "splash-shown"
	EventSplashHidden = "splash-hidden"

	// Splash overlay protocol, consumed by the shim in web/app.js.
	EventSplashPresent = "splash-present"
	EventSplashFade    = "splash-fade"
	EventSplashSpinner = "splash-spinner"
	EventSplashAnimate = "splash-animate"
	EventSplashRemove  = "splash-remove"

	EventUpdateAvailable = "update-available"
	EventUpdateCleared   = "update-cleared"
	EventUpdateProgress  = "update-progress"
	EventUpdateReady     = "update-ready"
	EventPreviewState    = "preview-state"
	EventPreviewPeers    = "preview-peers"
	EventViewsChanged    = "splash-views-changed"
)

// Safe notification helpers - check for nil before calling.
// Callbacks run in goroutines to avoid blocking the controller loop.
func (c *SplashController) emitShown(ev SplashShownEvent) {
	if c.listener != nil && c.listener.OnShown != nil {
		go c.listener.OnShown(ev)
	}
}

func (c *SplashController) emitHidden(ev SplashHiddenEvent) {
	if c.listener != nil && c.listener.OnHidden != nil {
		go c.listener.OnHidden(ev)
	}
}
