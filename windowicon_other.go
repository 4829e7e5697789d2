//go:build !windows

package main

// setWindowIcon is a no-op off Windows; the window icon comes from the
// desktop environment's application entry there.
func setWindowIcon(channel string) {}
