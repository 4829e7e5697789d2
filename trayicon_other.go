//go:build !windows

package main

// trayIcon returns the PNG icon bytes for the non-Windows systray. Channel
// badging is Windows-only; other platforms always use the product icon.
func trayIcon() []byte {
	return appIconPNG
}

// subclassSystray is Windows-only; elsewhere the systray library's default
// click handling stays in place.
func subclassSystray(dblClickFn func()) {}

// isAppWindowVisible always reports hidden off Windows, so a tray toggle
// falls through to showing the window.
func isAppWindowVisible() (visible bool, minimized bool) {
	return false, false
}
