package main

import "fmt"

// Splash call failure codes. The frontend branches on the "code: " prefix of
// the rejected promise message, so these strings must never change.
const (
	SplashCodeNotFound             = "NotFound"
	SplashCodeNoSplash             = "NoSplash"
	SplashCodeAnimateMethodMissing = "AnimateMethodNotFound"
)

// SplashError is a splash call failure carrying a machine code alongside the
// human-readable message. None of these are fatal to the process.
type SplashError struct {
	Code    string
	Message string
}

func (e *SplashError) Error() string {
	return e.Code + ": " + e.Message
}

// Is matches on code alone so errors.Is works against the sentinels below
// regardless of message wording.
func (e *SplashError) Is(target error) bool {
	t, ok := target.(*SplashError)
	return ok && t.Code == e.Code
}

var (
	ErrSplashNotFound      = &SplashError{Code: SplashCodeNotFound, Message: "启动画面资源不存在"}
	ErrNoSplash            = &SplashError{Code: SplashCodeNoSplash, Message: "当前没有显示中的启动画面"}
	ErrAnimateMethodMissed = &SplashError{Code: SplashCodeAnimateMethodMissing, Message: "当前画面没有循环动画定义"}
)

// splashNotFound builds a NotFound failure naming the missing source.
func splashNotFound(name string) *SplashError {
	return &SplashError{Code: SplashCodeNotFound, Message: fmt.Sprintf("启动画面 %q 不存在", name)}
}
