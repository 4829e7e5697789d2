package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// versionBase extracts the base semver (e.g., "1.0.1" from "1.0.1-beta").
func versionBase(v string) string {
	if idx := strings.Index(v, "-"); idx != -1 {
		return v[:idx]
	}
	return v
}

// versionChannel returns "stable" or "test" for a given version string.
func versionChannel(v string) string {
	if strings.Contains(v, "-") {
		return "test"
	}
	return "stable"
}

// compareVersions compares two semver strings (ignoring pre-release labels).
// Returns: 1 if a > b, -1 if a < b, 0 if equal.
func compareVersions(a, b string) int {
	aBase := versionBase(a)
	bBase := versionBase(b)

	aParts := strings.Split(aBase, ".")
	bParts := strings.Split(bBase, ".")

	maxLen := len(aParts)
	if len(bParts) > maxLen {
		maxLen = len(bParts)
	}

	for i := 0; i < maxLen; i++ {
		var aNum, bNum int
		if i < len(aParts) {
			aNum, _ = strconv.Atoi(aParts[i])
		}
		if i < len(bParts) {
			bNum, _ = strconv.Atoi(bParts[i])
		}
		if aNum > bNum {
			return 1
		}
		if aNum < bNum {
			return -1
		}
	}

	// Same base version: stable > test (e.g., "1.0.0" > "1.0.0-beta")
	aCh := versionChannel(a)
	bCh := versionChannel(b)
	if aCh == "stable" && bCh == "test" {
		return 1
	}
	if aCh == "test" && bCh == "stable" {
		return -1
	}

	return 0
}

// isNewer checks if source version is newer (any channel).
func isNewer(sourceVersion string) bool {
	return compareVersions(sourceVersion, AppVersion) > 0
}

// isCrossChannel returns true if the source version is in a different channel.
func isCrossChannel(sourceVersion string) bool {
	return versionChannel(sourceVersion) != AppChannel()
}

// Updater结构体 - 从局域网同伴实例拉取新版本
type Updater struct {
	discovery *LanDiscovery
	cfg       *AppConfig
	quit      chan struct{}
	stop      sync.Once

	mu        sync.RWMutex
	available *updateSource
	status    string // "", downloading, failed, completed
	lastError string

	// OnAvailable fires once per newly seen version.
	OnAvailable func(updateSource)
	// OnProgress reports download progress (total may be -1).
	OnProgress func(downloaded, total int64)
	// OnDone fires after a download attempt with the final status.
	OnDone func(status, errMsg string)
}

// NewUpdater wires the updater to the discovery peer list.
func NewUpdater(discovery *LanDiscovery, cfg *AppConfig) *Updater {
	return &Updater{discovery: discovery, cfg: cfg, quit: make(chan struct{})}
}

// Start runs the periodic LAN version scan. The first pass waits a few
// seconds for discovery to find peers.
func (u *Updater) Start() {
	if !u.cfg.IsUpdateFromLAN() {
		Log.Info("局域网更新已禁用")
		return
	}
	go func() {
		select {
		case <-time.After(8 * time.Second):
		case <-u.quit:
			return
		}
		for {
			u.CheckOnce()
			select {
			case <-time.After(60 * time.Second):
			case <-u.quit:
				return
			}
		}
	}()
}

// Stop ends the periodic scan.
func (u *Updater) Stop() {
	u.stop.Do(func() { close(u.quit) })
}

// Available returns the best known update source, if any.
func (u *Updater) Available() *updateSource {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if u.available == nil {
		return nil
	}
	cp := *u.available
	return &cp
}

// Status returns the current download state and last error.
func (u *Updater) Status() (string, string) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.status, u.lastError
}

// CheckOnce performs a single update check against all known peers and
// returns the best source found (nil when everyone is older or equal).
func (u *Updater) CheckOnce() *updateSource {
	var newest *updateSource

	for _, peer := range u.discovery.Peers() {
		source := checkPeerVersion(peer.Host, peer.Port, peer.Name)
		if source != nil && isNewer(source.Version) {
			if newest == nil || compareVersions(source.Version, newest.Version) > 0 {
				newest = source
			}
		}
	}

	if newest == nil {
		return nil
	}

	u.mu.Lock()
	alreadyKnown := u.available != nil && u.available.Version == newest.Version
	u.available = newest
	if !alreadyKnown {
		// 新版本出现后允许重新下载
		u.status = ""
		u.lastError = ""
	}
	u.mu.Unlock()

	if !alreadyKnown {
		Log.Info("发现新版本", "version", newest.Version, "source", newest.PeerName, "crossChannel", isCrossChannel(newest.Version))
		if u.OnAvailable != nil {
			go u.OnAvailable(*newest)
		}
	}
	return newest
}

// checkPeerVersion queries a peer's /version endpoint.
func checkPeerVersion(host string, port int, name string) *updateSource {
	client := &http.Client{Timeout: 3 * time.Second}
	baseURL := fmt.Sprintf("http://%s:%d", host, port)
	resp, err := client.Get(baseURL + "/version")
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil
	}

	var info versionInfo
	if json.NewDecoder(resp.Body).Decode(&info) != nil {
		return nil
	}

	peerName := info.Name
	if peerName == "" {
		peerName = name
	}
	return &updateSource{
		PeerName: peerName,
		BaseURL:  baseURL,
		Version:  info.Version,
		Channel:  info.Channel,
	}
}

// Perform downloads the newest version from a peer and swaps it in place of
// the current executable. The running process keeps executing the old image
// until restartApplication is called.
func (u *Updater) Perform() {
	u.setStatus("downloading", "")

	source := u.Available()
	if source == nil {
		// 兜底：立刻扫描一轮
		u.discovery.query()
		source = u.CheckOnce()
		if source == nil {
			u.fail("当前没有可用的更新")
			return
		}
	}

	Log.Info("开始下载新版本", "version", source.Version, "source", source.PeerName, "url", source.BaseURL)

	client := &http.Client{Timeout: 10 * time.Minute}
	resp, err := client.Get(source.BaseURL + "/update")
	if err != nil {
		u.fail(fmt.Sprintf("下载失败: %v", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		u.fail(fmt.Sprintf("下载失败: HTTP %d", resp.StatusCode))
		return
	}

	exePath, err := os.Executable()
	if err != nil {
		u.fail("获取程序路径失败")
		return
	}
	exePath, _ = filepath.EvalSymlinks(exePath)

	newPath := exePath + ".new"
	tmpFile, err := os.Create(newPath)
	if err != nil {
		u.fail("创建临时文件失败")
		return
	}

	totalSize := resp.ContentLength
	var downloaded int64
	buf := make([]byte, 64*1024)
	lastReport := time.Now()

	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := tmpFile.Write(buf[:n]); writeErr != nil {
				tmpFile.Close()
				os.Remove(newPath)
				u.fail("写入文件失败")
				return
			}
			downloaded += int64(n)

			if u.OnProgress != nil && time.Since(lastReport) > 500*time.Millisecond {
				u.OnProgress(downloaded, totalSize)
				lastReport = time.Now()
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			tmpFile.Close()
			os.Remove(newPath)
			u.fail("下载中断")
			return
		}
	}
	tmpFile.Close()
	if u.OnProgress != nil {
		u.OnProgress(downloaded, totalSize)
	}
	Log.Info("下载完成", "bytes", downloaded)

	oldPath := exePath + ".old"
	os.Remove(oldPath)

	if err := os.Rename(exePath, oldPath); err != nil {
		Log.Error("重命名当前程序失败", "error", err)
		os.Remove(newPath)
		u.fail("替换程序文件失败")
		return
	}

	if err := os.Rename(newPath, exePath); err != nil {
		Log.Error("安装新版本失败", "error", err)
		os.Rename(oldPath, exePath)
		u.fail("安装新版本失败")
		return
	}

	Log.Info("更新成功", "oldVersion", AppVersion, "newVersion", source.Version)
	u.setStatus("completed", "")
	if u.OnDone != nil {
		go u.OnDone("completed", "")
	}
}

func (u *Updater) setStatus(status, errMsg string) {
	u.mu.Lock()
	u.status = status
	u.lastError = errMsg
	u.mu.Unlock()
}

func (u *Updater) fail(msg string) {
	Log.Error("更新失败", "reason", msg)
	u.setStatus("failed", msg)
	if u.OnDone != nil {
		go u.OnDone("failed", msg)
	}
}

// cleanupOldExecutable removes leftover .old files and restart scripts from
// previous updates.
func cleanupOldExecutable() {
	exePath, err := os.Executable()
	if err != nil {
		return
	}
	exePath, _ = filepath.EvalSymlinks(exePath)

	// Clean up restart helper script
	scriptPath := filepath.Join(filepath.Dir(exePath), "_launchshell_restart.bat")
	os.Remove(scriptPath)

	// Clean up .old file with retries (may still be locked briefly on Windows)
	oldPath := exePath + ".old"
	if _, err := os.Stat(oldPath); err != nil {
		return
	}
	for i := 0; i < 5; i++ {
		if err := os.Remove(oldPath); err == nil {
			Log.Info("已清理旧版本文件", "path", oldPath)
			return
		}
		time.Sleep(time.Duration(i+1) * time.Second)
	}
	Log.Warn("无法清理旧版本文件", "path", oldPath)
}

// startNewProcess starts the new exe as a detached process.
// Returns the child PID on success. Does NOT exit the current process;
// the caller is responsible for triggering a proper shutdown.
func startNewProcess() (int, error) {
	exePath, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("获取程序路径失败: %w", err)
	}
	exePath, _ = filepath.EvalSymlinks(exePath)

	// After self-update, the running exe was renamed to .old while the new
	// version was placed at the original path. On Windows, os.Executable()
	// may return the renamed (.old) path. We must start the NEW exe instead.
	if strings.HasSuffix(exePath, ".old") {
		exePath = strings.TrimSuffix(exePath, ".old")
	}

	if _, err := os.Stat(exePath); err != nil {
		return 0, fmt.Errorf("目标程序不存在: %s (%w)", exePath, err)
	}

	Log.Info("启动新进程", "exePath", exePath)

	// Pass -restart-delay so the new process retries mutex acquisition for up
	// to N seconds, giving the old process time to fully shut down.
	cmd := exec.Command(exePath, "-restart-delay", "10")
	cmd.Dir = filepath.Dir(exePath)
	setDetachedProcess(cmd)
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("启动新版本失败: %w", err)
	}
	Log.Info("已启动新版本进程", "pid", cmd.Process.Pid)
	return cmd.Process.Pid, nil
}

// restartApplication starts the new exe and force-exits the current process.
// On Windows, uses a helper batch script that waits for this process to die
// (including WebView2 children), cleans up .old files, then launches the new
// exe. On other platforms, falls back to a direct child process launch.
func restartApplication(beforeExit func()) error {
	exePath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("获取程序路径失败: %w", err)
	}
	exePath, _ = filepath.EvalSymlinks(exePath)

	// Resolve actual target path (running exe may be the .old renamed copy)
	targetPath := exePath
	if strings.HasSuffix(exePath, ".old") {
		targetPath = strings.TrimSuffix(exePath, ".old")
	}
	if _, err := os.Stat(targetPath); err != nil {
		return fmt.Errorf("目标程序不存在: %s (%w)", targetPath, err)
	}

	if beforeExit != nil {
		beforeExit()
	}

	Log.Info("正在重启到新版本", "targetPath", targetPath)

	// Try platform-specific restart helper (batch script on Windows). Falls
	// back to direct child process launch if the helper is unavailable.
	if err := launchRestartHelper(targetPath); err != nil {
		Log.Warn("重启脚本不可用，使用直接启动", "error", err)
		pid, startErr := startNewProcess()
		if startErr != nil {
			return startErr
		}
		Log.Info("已直接启动新进程", "pid", pid)
	}

	time.Sleep(200 * time.Millisecond)
	os.Exit(0)
	return nil
}
