package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/mdns"
)

const mdnsServiceType = "_launchshell._tcp"

// peerTTL governs how long a discovered instance stays listed after its
// last mDNS answer.
const peerTTL = 2 * time.Minute

// LanDiscovery结构体 - 通过mDNS广播本实例并发现局域网内的其他实例
type LanDiscovery struct {
	instanceID string
	name       string
	port       int

	server *mdns.Server
	quit   chan struct{}
	stop   sync.Once

	mu    sync.RWMutex
	peers map[string]PreviewPeer

	// OnPeers is notified after every query round with the current peer set.
	OnPeers func([]PreviewPeer)
}

// NewLanDiscovery prepares the announcer for the given preview port.
func NewLanDiscovery(name string, port int) *LanDiscovery {
	return &LanDiscovery{
		instanceID: newInstanceID(),
		name:       name,
		port:       port,
		quit:       make(chan struct{}),
		peers:      make(map[string]PreviewPeer),
	}
}

// Start begins periodic peer queries. When advertise is true the instance
// also registers itself, so peers can pull updates and the WebView2 runtime
// from it; browsing alone never exposes anything.
func (d *LanDiscovery) Start(advertise bool) {
	if advertise {
		d.register()
	}

	// 立即执行一次查询
	d.query()

	go d.periodicQuery()
}

func (d *LanDiscovery) register() {
	info := []string{
		fmt.Sprintf("id=%s", d.instanceID),
		fmt.Sprintf("name=%s", d.name),
		fmt.Sprintf("ver=%s", AppVersion),
		fmt.Sprintf("ch=%s", AppChannel()),
	}

	service, err := mdns.NewMDNSService(
		d.instanceID,    // instance name
		mdnsServiceType, // service type
		"",              // domain (default: local)
		"",              // host (default: hostname)
		d.port,          // port
		nil,             // IPs (nil = all interfaces)
		info,            // TXT records
	)
	if err != nil {
		Log.Warn("创建mDNS服务失败", "err", err)
		return
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		Log.Warn("启动mDNS服务器失败", "err", err)
		return
	}
	d.server = server
	Log.Info("mDNS服务已注册", "service", mdnsServiceType, "port", d.port)
}

// 定期查询mDNS服务
func (d *LanDiscovery) periodicQuery() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.query()
		case <-d.quit:
			return
		}
	}
}

// 查询mDNS服务
func (d *LanDiscovery) query() {
	entriesCh := make(chan *mdns.ServiceEntry, 8)

	go func() {
		for entry := range entriesCh {
			d.handleEntry(entry)
		}
	}()

	params := &mdns.QueryParam{
		Service: mdnsServiceType,
		Timeout: 3 * time.Second,
		Entries: entriesCh,
	}

	if err := mdns.Query(params); err != nil {
		Log.Debug("mDNS查询失败", "err", err)
	}
	close(entriesCh)

	d.prune()
	d.notify()
}

// 处理mDNS发现的服务条目
func (d *LanDiscovery) handleEntry(entry *mdns.ServiceEntry) {
	var peerID, peerName, peerVer, peerCh string
	for _, txt := range entry.InfoFields {
		switch {
		case strings.HasPrefix(txt, "id="):
			peerID = strings.TrimPrefix(txt, "id=")
		case strings.HasPrefix(txt, "name="):
			peerName = strings.TrimPrefix(txt, "name=")
		case strings.HasPrefix(txt, "ver="):
			peerVer = strings.TrimPrefix(txt, "ver=")
		case strings.HasPrefix(txt, "ch="):
			peerCh = strings.TrimPrefix(txt, "ch=")
		}
	}

	// 忽略自己
	if peerID == "" || peerID == d.instanceID {
		return
	}
	if peerName == "" {
		peerName = "unknown"
	}

	ip := ""
	if entry.AddrV4 != nil {
		ip = entry.AddrV4.String()
	} else if entry.AddrV6 != nil {
		ip = entry.AddrV6.String()
	}
	if ip == "" {
		return
	}

	d.mu.Lock()
	_, known := d.peers[peerID]
	d.peers[peerID] = PreviewPeer{
		Name:     peerName,
		Host:     ip,
		Port:     entry.Port,
		Version:  peerVer,
		Channel:  peerCh,
		LastSeen: time.Now(),
	}
	d.mu.Unlock()

	if !known {
		Log.Info("发现新实例", "name", peerName, "host", ip, "port", entry.Port, "version", peerVer)
	}
}

// prune drops peers that stopped answering.
func (d *LanDiscovery) prune() {
	cutoff := time.Now().Add(-peerTTL)
	d.mu.Lock()
	for id, peer := range d.peers {
		if peer.LastSeen.Before(cutoff) {
			Log.Info("实例已离线", "name", peer.Name, "host", peer.Host)
			delete(d.peers, id)
		}
	}
	d.mu.Unlock()
}

func (d *LanDiscovery) notify() {
	if d.OnPeers != nil {
		go d.OnPeers(d.Peers())
	}
}

// Peers returns the known instances sorted by name.
func (d *LanDiscovery) Peers() []PreviewPeer {
	d.mu.RLock()
	out := make([]PreviewPeer, 0, len(d.peers))
	for _, peer := range d.peers {
		out = append(out, peer)
	}
	d.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Host < out[j].Host
	})
	return out
}

// 停止mDNS服务
func (d *LanDiscovery) Stop() {
	d.stop.Do(func() { close(d.quit) })
	if d.server != nil {
		if err := d.server.Shutdown(); err != nil {
			Log.Warn("关闭mDNS服务器失败", "err", err)
		} else {
			Log.Info("mDNS服务已停止")
		}
		d.server = nil
	}
}

// newInstanceID returns a short random identifier for this process.
func newInstanceID() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("ls-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

// localIPv4 returns the first non-loopback IPv4 address, or "127.0.0.1".
func localIPv4() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "127.0.0.1"
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}
	return "127.0.0.1"
}
