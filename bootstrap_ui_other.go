//go:build !windows

package main

import "fmt"

// BootstrapSplash degrades to console output off Windows; those platforms
// never need a WebView2 bootstrap, so no native window is created.
type BootstrapSplash struct{}

func NewBootstrapSplash() *BootstrapSplash { return &BootstrapSplash{} }
func (s *BootstrapSplash) Show()           {}
func (s *BootstrapSplash) SetText(t string) { fmt.Println(t) }
func (s *BootstrapSplash) Close()          {}
func (s *BootstrapSplash) ShowError(msg string) {
	fmt.Println("错误:", msg)
}

// isWebView2SystemInstalled always reports false off Windows.
func isWebView2SystemInstalled() bool {
	return false
}
