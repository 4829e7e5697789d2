package main

import (
	"archive/zip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

// bootstrapWebView2 attempts to find and download the WebView2 runtime from
// LAN peers. The native splash window is updated with progress. Returns true
// if a runtime was installed next to the exe.
func bootstrapWebView2(splash *BootstrapSplash) bool {
	splash.SetText("正在搜索局域网中的 LaunchShell 实例...")

	peers := discoverPeersForBootstrap()
	if len(peers) == 0 {
		Log.Info("WebView2引导: 未发现局域网实例")
		return false
	}

	splash.SetText(fmt.Sprintf("发现 %d 个实例，正在获取运行时...", len(peers)))

	// Target directory sits next to the exe
	exePath, err := os.Executable()
	if err != nil {
		Log.Error("无法确定程序路径", "error", err)
		return false
	}
	targetDir := filepath.Join(filepath.Dir(exePath), "WebView2Runtime")

	for _, peer := range peers {
		url := fmt.Sprintf("http://%s:%d/webview2runtime", peer.Host, peer.Port)
		splash.SetText(fmt.Sprintf("正在从 %s (%s) 获取运行时...", peer.Name, peer.Host))

		if downloadAndExtractWebView2(url, targetDir, splash) {
			Log.Info("WebView2运行时获取成功", "source", peer.Name, "host", peer.Host)
			return true
		}
	}

	return false
}

// discoverPeersForBootstrap runs a one-shot mDNS lookup. It runs before the
// persistent LanDiscovery starts, so it carries its own query.
func discoverPeersForBootstrap() []PreviewPeer {
	entriesCh := make(chan *mdns.ServiceEntry, 8)
	var peers []PreviewPeer
	seen := make(map[string]bool)
	collected := make(chan struct{})

	go func() {
		defer close(collected)
		for entry := range entriesCh {
			ip := ""
			if entry.AddrV4 != nil {
				ip = entry.AddrV4.String()
			} else if entry.AddrV6 != nil {
				ip = entry.AddrV6.String()
			}
			if ip == "" || seen[ip] {
				continue
			}
			seen[ip] = true

			name := "unknown"
			for _, txt := range entry.InfoFields {
				if strings.HasPrefix(txt, "name=") {
					name = strings.TrimPrefix(txt, "name=")
				}
			}
			peers = append(peers, PreviewPeer{Name: name, Host: ip, Port: entry.Port})
			Log.Info("引导发现实例", "name", name, "host", ip)
		}
	}()

	params := &mdns.QueryParam{
		Service: mdnsServiceType,
		Timeout: 5 * time.Second,
		Entries: entriesCh,
	}
	if err := mdns.Query(params); err != nil {
		Log.Debug("引导mDNS查询失败", "err", err)
	}
	close(entriesCh)
	<-collected

	return peers
}

// downloadAndExtractWebView2 downloads the WebView2 runtime zip from a peer
// and extracts it.
func downloadAndExtractWebView2(url, targetDir string, splash *BootstrapSplash) bool {
	client := &http.Client{Timeout: 10 * time.Minute}
	resp, err := client.Get(url)
	if err != nil {
		Log.Error("WebView2下载连接失败", "url", url, "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return false
	}

	totalSize := resp.ContentLength

	tmpFile, err := os.CreateTemp("", "webview2-*.zip")
	if err != nil {
		return false
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	// Download with progress
	var downloaded int64
	buf := make([]byte, 64*1024)
	lastUpdate := time.Now()

	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := tmpFile.Write(buf[:n]); writeErr != nil {
				tmpFile.Close()
				return false
			}
			downloaded += int64(n)

			if time.Since(lastUpdate) > 500*time.Millisecond {
				if totalSize > 0 {
					pct := float64(downloaded) / float64(totalSize) * 100
					splash.SetText(fmt.Sprintf("正在下载运行时... %.0f%%\n(%.1f MB / %.1f MB)",
						pct, float64(downloaded)/1024/1024, float64(totalSize)/1024/1024))
				} else {
					splash.SetText(fmt.Sprintf("正在下载运行时... %.1f MB", float64(downloaded)/1024/1024))
				}
				lastUpdate = time.Now()
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			tmpFile.Close()
			return false
		}
	}
	tmpFile.Close()

	splash.SetText("正在解压运行时...")
	if err := extractZip(tmpPath, targetDir); err != nil {
		os.RemoveAll(targetDir)
		return false
	}

	return true
}

// extractZip extracts a zip file to the target directory.
func extractZip(zipPath, targetDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("打开zip文件失败: %w", err)
	}
	defer r.Close()

	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return fmt.Errorf("创建目标目录失败: %w", err)
	}

	for _, f := range r.File {
		fpath := filepath.Join(targetDir, f.Name)

		// Security: prevent zip slip (path traversal)
		if !isSubPath(targetDir, fpath) {
			continue
		}

		if f.FileInfo().IsDir() {
			os.MkdirAll(fpath, 0755)
			continue
		}

		if err := os.MkdirAll(filepath.Dir(fpath), 0755); err != nil {
			return err
		}

		outFile, err := os.OpenFile(fpath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
		if err != nil {
			return err
		}

		rc, err := f.Open()
		if err != nil {
			outFile.Close()
			return err
		}

		_, err = io.Copy(outFile, rc)
		rc.Close()
		outFile.Close()
		if err != nil {
			return err
		}
	}

	return nil
}

// isSubPath checks if child is under parent directory (prevents zip slip attacks).
func isSubPath(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// findServableWebView2Dir returns a WebView2 runtime directory that can be
// shared over LAN. Priority: 1) local WebView2Runtime/ folder next to exe,
// 2) system Evergreen Runtime.
func findServableWebView2Dir() string {
	// 1. Local bundled Fixed Version (preferred)
	if exePath, err := os.Executable(); err == nil {
		localDir := filepath.Join(filepath.Dir(exePath), "WebView2Runtime")
		if info, err := os.Stat(localDir); err == nil && info.IsDir() {
			return localDir
		}
	}

	// 2. System-installed WebView2 Evergreen Runtime
	candidates := []string{
		os.Getenv("ProgramFiles(x86)"),
		os.Getenv("ProgramFiles"),
		os.Getenv("LOCALAPPDATA"),
	}
	for _, root := range candidates {
		if root == "" {
			continue
		}
		appDir := filepath.Join(root, "Microsoft", "EdgeWebView", "Application")
		entries, err := os.ReadDir(appDir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			dir := filepath.Join(appDir, entry.Name())
			if _, err := os.Stat(filepath.Join(dir, "msedgewebview2.exe")); err == nil {
				return dir
			}
		}
	}

	return ""
}

// serveWebView2Runtime handles HTTP requests for the WebView2 runtime zip.
// Serves from the local WebView2Runtime/ folder or the system-installed
// Evergreen Runtime.
func serveWebView2Runtime(w http.ResponseWriter, r *http.Request) {
	wv2Dir := findServableWebView2Dir()
	if wv2Dir == "" {
		http.Error(w, "WebView2Runtime not available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", "attachment; filename=WebView2Runtime.zip")

	zw := zip.NewWriter(w)
	defer zw.Close()

	filepath.Walk(wv2Dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(wv2Dir, path)
		if err != nil {
			return err
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(relPath)
		header.Method = zip.Deflate

		fw, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(fw, f)
		return err
	})
}
