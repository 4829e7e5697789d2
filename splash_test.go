package main

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"
)

func TestMain(m *testing.M) {
	// 测试中不落日志文件
	Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	os.Exit(m.Run())
}

type fadeCall struct {
	target float64
	d      time.Duration
}

// fakeView记录控制器对画面的每一次调用，供断言使用
type fakeView struct {
	mu       sync.Mutex
	name     string
	presents []string
	fades    []fadeCall
	cancels  int
	detaches int
	anims    int
	stops    int
	animErr  error
	spinOn   int
	spinOff  int
}

func (v *fakeView) Source() string { return v.name }

func (v *fakeView) Present(backgroundColor string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.presents = append(v.presents, backgroundColor)
}

func (v *fakeView) BeginFade(target float64, d time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.fades = append(v.fades, fadeCall{target: target, d: d})
}

func (v *fakeView) CancelFade() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cancels++
}

func (v *fakeView) AttachSpinner() Spinner {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.spinOn++
	return &fakeSpinner{view: v}
}

func (v *fakeView) StartAnimation() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.anims++
	return v.animErr
}

func (v *fakeView) StopAnimation() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stops++
}

func (v *fakeView) stopCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stops
}

func (v *fakeView) Detach() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.detaches++
}

func (v *fakeView) fadeTargets() []float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]float64, len(v.fades))
	for i, f := range v.fades {
		out[i] = f.target
	}
	return out
}

func (v *fakeView) counts() (presents, cancels, detaches, anims int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.presents), v.cancels, v.detaches, v.anims
}

func (v *fakeView) spinnerCounts() (on, off int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.spinOn, v.spinOff
}

type fakeSpinner struct{ view *fakeView }

func (s *fakeSpinner) Remove() {
	s.view.mu.Lock()
	defer s.view.mu.Unlock()
	s.view.spinOff++
}

type fakeProvider struct {
	mu    sync.Mutex
	views map[string]*fakeView
	calls int
}

func newFakeProvider(names ...string) *fakeProvider {
	p := &fakeProvider{views: map[string]*fakeView{}}
	for _, n := range names {
		p.views[n] = &fakeView{name: n}
	}
	return p
}

func (p *fakeProvider) Resolve(name string) (SplashView, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if v, ok := p.views[name]; ok {
		return v, nil
	}
	return nil, splashNotFound(name)
}

func (p *fakeProvider) resolveCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// splashRecorder汇集生命周期回调
type splashRecorder struct {
	shown  chan SplashShownEvent
	hidden chan SplashHiddenEvent
}

func newSplashRecorder() *splashRecorder {
	return &splashRecorder{
		shown:  make(chan SplashShownEvent, 16),
		hidden: make(chan SplashHiddenEvent, 16),
	}
}

func (r *splashRecorder) listener() *SplashListener {
	return &SplashListener{
		OnShown:  func(ev SplashShownEvent) { r.shown <- ev },
		OnHidden: func(ev SplashHiddenEvent) { r.hidden <- ev },
	}
}

func (r *splashRecorder) waitShown(t *testing.T) SplashShownEvent {
	t.Helper()
	select {
	case ev := <-r.shown:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for shown event")
		return SplashShownEvent{}
	}
}

func (r *splashRecorder) waitHidden(t *testing.T) SplashHiddenEvent {
	t.Helper()
	select {
	case ev := <-r.hidden:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for hidden event")
		return SplashHiddenEvent{}
	}
}

func (r *splashRecorder) drainHidden() int {
	n := 0
	for {
		select {
		case <-r.hidden:
			n++
		default:
			return n
		}
	}
}

func newTestSplash(t *testing.T, p ViewProvider, saved *SplashSettings) (*SplashController, *splashRecorder) {
	t.Helper()
	rec := newSplashRecorder()
	c := NewSplashController(p, func() *SplashSettings { return saved }, rec.listener())
	t.Cleanup(c.Stop)
	return c, rec
}

// 测试用时长都用毫秒写法，归一化后落在几十毫秒量级

// TestSplashShowHideSequence 测试 显示→可见→隐藏→已隐藏 的完整周期
func TestSplashShowHideSequence(t *testing.T) {
	p := newFakeProvider("launch")
	c, rec := newTestSplash(t, p, nil)

	err := c.Show(&SplashOptions{FadeInDuration: fptr(20), AutoHide: bptr(false)})
	if err != nil {
		t.Fatalf("Show returned error: %v", err)
	}

	snap := c.State()
	if snap.Phase != SplashVisible {
		t.Fatalf("phase after Show = %q, want %q", snap.Phase, SplashVisible)
	}
	if !snap.IsVisible {
		t.Error("IsVisible = false after fade-in completed")
	}
	if snap.Source != "launch" {
		t.Errorf("Source = %q, want launch", snap.Source)
	}
	if snap.PendingStep != "" {
		t.Errorf("PendingStep = %q, want none (autoHide off)", snap.PendingStep)
	}

	shown := rec.waitShown(t)
	if shown.Source != "launch" || shown.Launch {
		t.Errorf("shown event = %+v, want source launch, launch=false", shown)
	}

	if err := c.Hide(&SplashOptions{FadeOutDuration: fptr(20)}); err != nil {
		t.Fatalf("Hide returned error: %v", err)
	}

	snap = c.State()
	if snap.Phase != SplashHidden {
		t.Fatalf("phase after Hide = %q, want %q", snap.Phase, SplashHidden)
	}
	if snap.IsVisible {
		t.Error("IsVisible = true after hide completed")
	}
	if snap.PendingStep != "" {
		t.Errorf("PendingStep = %q, want none after hide", snap.PendingStep)
	}

	hidden := rec.waitHidden(t)
	if hidden.Trigger != HideByCall {
		t.Errorf("hidden trigger = %q, want %q", hidden.Trigger, HideByCall)
	}

	view := p.views["launch"]
	targets := view.fadeTargets()
	if len(targets) != 2 || targets[0] != 1 || targets[1] != 0 {
		t.Errorf("fade targets = %v, want [1 0]", targets)
	}
	if _, _, detaches, _ := view.counts(); detaches != 1 {
		t.Errorf("detaches = %d, want 1", detaches)
	}
}

// TestSplashHideWhenHiddenNoSplash 测试无画面时调用隐藏返回 NoSplash
func TestSplashHideWhenHiddenNoSplash(t *testing.T) {
	c, _ := newTestSplash(t, newFakeProvider(), nil)

	err := c.Hide(nil)
	if !errors.Is(err, ErrNoSplash) {
		t.Fatalf("Hide on hidden controller = %v, want NoSplash", err)
	}

	var serr *SplashError
	if !errors.As(err, &serr) || serr.Code != SplashCodeNoSplash {
		t.Errorf("error code = %v, want %q", err, SplashCodeNoSplash)
	}
}

// TestSplashShowUnknownSource 测试未知画面名失败且不动现有状态
func TestSplashShowUnknownSource(t *testing.T) {
	p := newFakeProvider("launch")
	c, _ := newTestSplash(t, p, nil)

	if err := c.Show(&SplashOptions{FadeInDuration: fptr(20)}); err != nil {
		t.Fatalf("Show(launch) returned error: %v", err)
	}

	err := c.Show(&SplashOptions{Source: sptr("missing"), FadeInDuration: fptr(20)})
	var serr *SplashError
	if !errors.As(err, &serr) || serr.Code != SplashCodeNotFound {
		t.Fatalf("Show(missing) = %v, want NotFound", err)
	}

	// 失败的调用不得打断已显示的画面
	snap := c.State()
	if snap.Phase != SplashVisible || snap.Source != "launch" {
		t.Errorf("state after failed show = %q/%q, want visible launch", snap.Phase, snap.Source)
	}
	if _, cancels, detaches, _ := p.views["launch"].counts(); cancels != 0 || detaches != 0 {
		t.Errorf("existing view was touched: cancels=%d detaches=%d", cancels, detaches)
	}
}

// TestSplashSupersede 测试后到的显示调用接管先前的画面
func TestSplashSupersede(t *testing.T) {
	p := newFakeProvider("launch", "updating")
	c, rec := newTestSplash(t, p, nil)

	// 第一幅带自动隐藏
	err := c.Show(&SplashOptions{
		FadeInDuration: fptr(20),
		AutoHide:       bptr(true),
		ShowDuration:   fptr(120),
	})
	if err != nil {
		t.Fatalf("first Show returned error: %v", err)
	}
	rec.waitShown(t)

	// 在计时器触发前换成第二幅
	err = c.Show(&SplashOptions{
		Source:         sptr("updating"),
		FadeInDuration: fptr(20),
		AutoHide:       bptr(false),
	})
	if err != nil {
		t.Fatalf("second Show returned error: %v", err)
	}

	hidden := rec.waitHidden(t)
	if hidden.Trigger != HideBySupersede {
		t.Errorf("first view hidden trigger = %q, want %q", hidden.Trigger, HideBySupersede)
	}
	if _, _, detaches, _ := p.views["launch"].counts(); detaches != 1 {
		t.Errorf("first view detaches = %d, want 1", detaches)
	}

	// 第一幅的自动隐藏计时器已随接管取消
	time.Sleep(250 * time.Millisecond)
	snap := c.State()
	if snap.Phase != SplashVisible || snap.Source != "updating" {
		t.Fatalf("state after supersede = %q/%q, want visible updating", snap.Phase, snap.Source)
	}
	if snap.PendingStep != "" {
		t.Errorf("PendingStep = %q, want none", snap.PendingStep)
	}
	if got := rec.drainHidden(); got != 0 {
		t.Errorf("stale timer produced %d extra hidden events", got)
	}
}

// TestSplashSupersedeUnblocksEarlierShow 测试被接管的调用立即返回
func TestSplashSupersedeUnblocksEarlierShow(t *testing.T) {
	p := newFakeProvider("launch", "updating")
	c, rec := newTestSplash(t, p, nil)

	first := make(chan error, 1)
	go func() {
		first <- c.Show(&SplashOptions{
			Delay:          fptr(500),
			FadeInDuration: fptr(20),
		})
	}()

	// 等第一条命令进入延迟等待
	time.Sleep(50 * time.Millisecond)

	if err := c.Show(&SplashOptions{Source: sptr("updating"), FadeInDuration: fptr(20)}); err != nil {
		t.Fatalf("second Show returned error: %v", err)
	}

	select {
	case err := <-first:
		if err != nil {
			t.Errorf("superseded Show = %v, want nil", err)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("superseded Show still blocked after replacement completed")
	}

	// 第一幅在淡入前就被替换，不应产生已隐藏事件
	time.Sleep(50 * time.Millisecond)
	if got := rec.drainHidden(); got != 0 {
		t.Errorf("never-shown view produced %d hidden events", got)
	}
	if _, _, detaches, _ := p.views["launch"].counts(); detaches != 1 {
		t.Errorf("first view detaches = %d, want 1", detaches)
	}
	snap := c.State()
	if snap.Source != "updating" {
		t.Errorf("Source = %q, want updating", snap.Source)
	}
}

// TestSplashAutoHide 测试显示时长届满后自动隐藏
func TestSplashAutoHide(t *testing.T) {
	p := newFakeProvider("launch")
	c, rec := newTestSplash(t, p, nil)

	err := c.Show(&SplashOptions{
		FadeInDuration:  fptr(20),
		FadeOutDuration: fptr(20),
		AutoHide:        bptr(true),
		ShowDuration:    fptr(80),
	})
	if err != nil {
		t.Fatalf("Show returned error: %v", err)
	}

	snap := c.State()
	if snap.PendingStep != "auto-hide" {
		t.Errorf("PendingStep = %q, want auto-hide", snap.PendingStep)
	}

	hidden := rec.waitHidden(t)
	if hidden.Trigger != HideByTimer {
		t.Errorf("hidden trigger = %q, want %q", hidden.Trigger, HideByTimer)
	}

	snap = c.State()
	if snap.Phase != SplashHidden || snap.IsVisible {
		t.Errorf("state after auto hide = %q visible=%v, want hidden", snap.Phase, snap.IsVisible)
	}
}

// TestSplashAutoHideCanceledByHide 测试显式隐藏会取消自动隐藏计时器
func TestSplashAutoHideCanceledByHide(t *testing.T) {
	p := newFakeProvider("launch")
	c, rec := newTestSplash(t, p, nil)

	err := c.Show(&SplashOptions{
		FadeInDuration: fptr(20),
		AutoHide:       bptr(true),
		ShowDuration:   fptr(300),
	})
	if err != nil {
		t.Fatalf("Show returned error: %v", err)
	}

	if err := c.Hide(&SplashOptions{FadeOutDuration: fptr(20)}); err != nil {
		t.Fatalf("Hide returned error: %v", err)
	}

	hidden := rec.waitHidden(t)
	if hidden.Trigger != HideByCall {
		t.Errorf("hidden trigger = %q, want %q", hidden.Trigger, HideByCall)
	}

	// 原定的自动隐藏时刻过去后不得再有动作
	time.Sleep(400 * time.Millisecond)
	if got := rec.drainHidden(); got != 0 {
		t.Errorf("canceled timer produced %d extra hidden events", got)
	}
	if snap := c.State(); snap.Phase != SplashHidden {
		t.Errorf("phase = %q, want hidden", snap.Phase)
	}
}

// TestSplashVisibleUntilFadeOutBegins 测试可见性在淡出开始的瞬间才翻转
func TestSplashVisibleUntilFadeOutBegins(t *testing.T) {
	p := newFakeProvider("launch")
	c, _ := newTestSplash(t, p, nil)

	if err := c.Show(&SplashOptions{FadeInDuration: fptr(20)}); err != nil {
		t.Fatalf("Show returned error: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- c.Hide(&SplashOptions{Delay: fptr(150), FadeOutDuration: fptr(80)})
	}()

	// 隐藏延迟期内仍算可见
	time.Sleep(50 * time.Millisecond)
	snap := c.State()
	if snap.Phase != SplashHiding {
		t.Fatalf("phase during hide delay = %q, want %q", snap.Phase, SplashHiding)
	}
	if !snap.IsVisible {
		t.Error("IsVisible = false during hide delay, want true until fade-out begins")
	}

	// 淡出进行中不再可见
	time.Sleep(120 * time.Millisecond)
	snap = c.State()
	if snap.IsVisible {
		t.Error("IsVisible = true during fade-out")
	}

	if err := <-done; err != nil {
		t.Fatalf("Hide returned error: %v", err)
	}
	if snap := c.State(); snap.Phase != SplashHidden {
		t.Errorf("final phase = %q, want hidden", snap.Phase)
	}
}

// TestSplashAnimateNoop 测试无画面或未开动画时动画调用静默成功
func TestSplashAnimateNoop(t *testing.T) {
	p := newFakeProvider("launch")
	c, _ := newTestSplash(t, p, nil)

	// 全隐藏状态
	if err := c.Animate(); err != nil {
		t.Fatalf("Animate while hidden = %v, want nil", err)
	}

	// 显示中但未开动画
	if err := c.Show(&SplashOptions{FadeInDuration: fptr(20)}); err != nil {
		t.Fatalf("Show returned error: %v", err)
	}
	if err := c.Animate(); err != nil {
		t.Fatalf("Animate on non-animated splash = %v, want nil", err)
	}
	if _, _, _, anims := p.views["launch"].counts(); anims != 0 {
		t.Errorf("StartAnimation calls = %d, want 0", anims)
	}
}

// TestSplashAnimateStartsAnimation 测试动画开启时调用转发到画面
func TestSplashAnimateStartsAnimation(t *testing.T) {
	p := newFakeProvider("launch")
	c, _ := newTestSplash(t, p, nil)

	err := c.Show(&SplashOptions{FadeInDuration: fptr(20), Animated: bptr(true)})
	if err != nil {
		t.Fatalf("Show returned error: %v", err)
	}

	if err := c.Animate(); err != nil {
		t.Fatalf("Animate = %v, want nil", err)
	}
	if _, _, _, anims := p.views["launch"].counts(); anims != 1 {
		t.Errorf("StartAnimation calls = %d, want 1", anims)
	}
}

// TestSplashAnimateMethodMissing 测试画面缺动画定义时的错误码
func TestSplashAnimateMethodMissing(t *testing.T) {
	p := newFakeProvider("launch")
	p.views["launch"].animErr = ErrAnimateMethodMissed
	c, _ := newTestSplash(t, p, nil)

	err := c.Show(&SplashOptions{FadeInDuration: fptr(20), Animated: bptr(true)})
	if err != nil {
		t.Fatalf("Show returned error: %v", err)
	}

	err = c.Animate()
	var serr *SplashError
	if !errors.As(err, &serr) || serr.Code != SplashCodeAnimateMethodMissing {
		t.Fatalf("Animate = %v, want code %q", err, SplashCodeAnimateMethodMissing)
	}

	// 失败的动画调用不影响显示状态
	if snap := c.State(); snap.Phase != SplashVisible {
		t.Errorf("phase after failed animate = %q, want visible", snap.Phase)
	}
}

// TestSplashAnimatedFlagFrozenPerShow 测试动画开关以最近一次显示为准
func TestSplashAnimatedFlagFrozenPerShow(t *testing.T) {
	p := newFakeProvider("launch")
	c, _ := newTestSplash(t, p, nil)

	err := c.Show(&SplashOptions{FadeInDuration: fptr(20), Animated: bptr(true)})
	if err != nil {
		t.Fatalf("first Show returned error: %v", err)
	}
	if err := c.Animate(); err != nil {
		t.Fatalf("Animate with animated on = %v, want nil", err)
	}

	// 同一画面重新显示，动画关掉
	err = c.Show(&SplashOptions{FadeInDuration: fptr(20), Animated: bptr(false)})
	if err != nil {
		t.Fatalf("second Show returned error: %v", err)
	}

	view := p.views["launch"]
	if got := view.stopCount(); got != 2 {
		t.Errorf("StopAnimation calls = %d, want 2 (one per show)", got)
	}
	if err := c.Animate(); err != nil {
		t.Fatalf("Animate = %v, want nil", err)
	}
	if _, _, _, anims := view.counts(); anims != 1 {
		t.Errorf("StartAnimation calls = %d, want 1 (second Animate ignored with animated off)", anims)
	}
}

// TestSplashRePresentSameSource 测试同名画面重新显示时不销毁重建
func TestSplashRePresentSameSource(t *testing.T) {
	p := newFakeProvider("launch")
	c, _ := newTestSplash(t, p, nil)

	if err := c.Show(&SplashOptions{FadeInDuration: fptr(20)}); err != nil {
		t.Fatalf("first Show returned error: %v", err)
	}
	if err := c.Show(&SplashOptions{FadeInDuration: fptr(20), BackgroundColor: sptr("#222222")}); err != nil {
		t.Fatalf("second Show returned error: %v", err)
	}

	view := p.views["launch"]
	presents, cancels, detaches, _ := view.counts()
	if detaches != 0 {
		t.Errorf("detaches = %d, want 0 for same-source re-show", detaches)
	}
	if presents != 2 {
		t.Errorf("presents = %d, want 2", presents)
	}
	if cancels != 1 {
		t.Errorf("cancels = %d, want 1 (in-flight state canceled on supersede)", cancels)
	}
}

// TestSplashSpinnerLifecycle 测试指示器随配置挂载和移除
func TestSplashSpinnerLifecycle(t *testing.T) {
	p := newFakeProvider("launch")
	c, _ := newTestSplash(t, p, nil)

	err := c.Show(&SplashOptions{FadeInDuration: fptr(20), ShowSpinner: bptr(true)})
	if err != nil {
		t.Fatalf("first Show returned error: %v", err)
	}
	if on, _ := p.views["launch"].spinnerCounts(); on != 1 {
		t.Fatalf("spinner attaches = %d, want 1", on)
	}

	// 重新显示时关掉指示器
	err = c.Show(&SplashOptions{FadeInDuration: fptr(20), ShowSpinner: bptr(false)})
	if err != nil {
		t.Fatalf("second Show returned error: %v", err)
	}
	if on, off := p.views["launch"].spinnerCounts(); on != 1 || off != 1 {
		t.Errorf("spinner attach/remove = %d/%d, want 1/1", on, off)
	}

	// 隐藏时不得重复移除
	if err := c.Hide(&SplashOptions{FadeOutDuration: fptr(20)}); err != nil {
		t.Fatalf("Hide returned error: %v", err)
	}
	if _, off := p.views["launch"].spinnerCounts(); off != 1 {
		t.Errorf("spinner removals after hide = %d, want still 1", off)
	}
}

// TestSplashDisabledAtLoad 测试持久配置把显示时长写成 0 时整个子系统停用
func TestSplashDisabledAtLoad(t *testing.T) {
	p := newFakeProvider("launch")
	c, rec := newTestSplash(t, p, &SplashSettings{ShowDuration: fptr(0)})

	if !c.Disabled() {
		t.Fatal("Disabled() = false, want true with showDuration 0")
	}

	if err := c.ShowLaunch(); err != nil {
		t.Fatalf("ShowLaunch on disabled controller = %v, want nil", err)
	}
	if err := c.Show(nil); err != nil {
		t.Fatalf("Show on disabled controller = %v, want nil", err)
	}
	if p.resolveCalls() != 0 {
		t.Errorf("provider resolve calls = %d, want 0", p.resolveCalls())
	}

	snap := c.State()
	if !snap.Disabled || snap.Phase != SplashHidden {
		t.Errorf("state = %+v, want disabled and hidden", snap)
	}

	// 停用状态下隐藏仍然报告没有画面
	if err := c.Hide(nil); !errors.Is(err, ErrNoSplash) {
		t.Errorf("Hide on disabled controller = %v, want NoSplash", err)
	}

	select {
	case ev := <-rec.shown:
		t.Errorf("unexpected shown event: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

// TestSplashLaunchFlag 测试开机自动显示带 launch 标记
func TestSplashLaunchFlag(t *testing.T) {
	p := newFakeProvider("launch")
	saved := &SplashSettings{
		FadeInDuration: fptr(20),
		AutoHide:       bptr(false),
	}
	c, rec := newTestSplash(t, p, saved)

	if err := c.ShowLaunch(); err != nil {
		t.Fatalf("ShowLaunch returned error: %v", err)
	}

	shown := rec.waitShown(t)
	if !shown.Launch {
		t.Error("shown event Launch = false, want true")
	}
	if snap := c.State(); !snap.LaunchSplash {
		t.Error("snapshot LaunchSplash = false, want true")
	}
}

// TestSplashStopReleasesView 测试停机时释放画面并补发已隐藏事件
func TestSplashStopReleasesView(t *testing.T) {
	p := newFakeProvider("launch")
	rec := newSplashRecorder()
	c := NewSplashController(p, func() *SplashSettings { return nil }, rec.listener())

	if err := c.Show(&SplashOptions{FadeInDuration: fptr(20)}); err != nil {
		t.Fatalf("Show returned error: %v", err)
	}

	c.Stop()

	hidden := rec.waitHidden(t)
	if hidden.Trigger != HideOnShutdown {
		t.Errorf("hidden trigger = %q, want %q", hidden.Trigger, HideOnShutdown)
	}
	if _, _, detaches, _ := p.views["launch"].counts(); detaches != 1 {
		t.Errorf("detaches = %d, want 1", detaches)
	}

	// 停机后的调用直接返回，不得阻塞
	if err := c.Show(nil); err != nil {
		t.Errorf("Show after Stop = %v, want nil", err)
	}
}

// TestSplashHideUsesOwnTiming 测试隐藏调用沿用显示配置只替换自身时序
func TestSplashHideUsesOwnTiming(t *testing.T) {
	p := newFakeProvider("launch")
	c, _ := newTestSplash(t, p, nil)

	err := c.Show(&SplashOptions{FadeInDuration: fptr(20), Animated: bptr(true)})
	if err != nil {
		t.Fatalf("Show returned error: %v", err)
	}

	if err := c.Hide(&SplashOptions{FadeOutDuration: fptr(40)}); err != nil {
		t.Fatalf("Hide returned error: %v", err)
	}

	view := p.views["launch"]
	view.mu.Lock()
	last := view.fades[len(view.fades)-1]
	view.mu.Unlock()
	if last.target != 0 {
		t.Errorf("last fade target = %v, want 0", last.target)
	}
	if last.d != 40*time.Millisecond {
		t.Errorf("fade-out duration = %v, want 40ms", last.d)
	}
}
