package main

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestJournal(t *testing.T) *LaunchJournal {
	t.Helper()
	j, err := OpenJournal(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("OpenJournal returned error: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

// TestJournalRecordLaunch 测试进程启动记录的写入与读取
func TestJournalRecordLaunch(t *testing.T) {
	j := openTestJournal(t)

	id1, err := j.RecordLaunch("desktop")
	if err != nil {
		t.Fatalf("RecordLaunch returned error: %v", err)
	}
	id2, err := j.RecordLaunch("headless")
	if err != nil {
		t.Fatalf("RecordLaunch returned error: %v", err)
	}
	if id1 <= 0 || id2 <= id1 {
		t.Errorf("row ids = %d, %d, want increasing positives", id1, id2)
	}

	recs, err := j.RecentLaunches(10)
	if err != nil {
		t.Fatalf("RecentLaunches returned error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d launch rows, want 2", len(recs))
	}
	// 最新的排在最前
	if recs[0].Mode != "headless" || recs[1].Mode != "desktop" {
		t.Errorf("modes = %q, %q, want headless then desktop", recs[0].Mode, recs[1].Mode)
	}
	if recs[0].Version != AppVersion {
		t.Errorf("Version = %q, want %q", recs[0].Version, AppVersion)
	}
	if recs[0].Channel != AppChannel() {
		t.Errorf("Channel = %q, want %q", recs[0].Channel, AppChannel())
	}
}

// TestJournalSplashCycles 测试启动画面周期记录
func TestJournalSplashCycles(t *testing.T) {
	j := openTestJournal(t)

	shownAt := time.Now().UTC()
	hiddenAt := shownAt.Add(3 * time.Second)
	if err := j.RecordSplashEvent(shownAt, "shown", "launch", "", true); err != nil {
		t.Fatalf("RecordSplashEvent(shown) returned error: %v", err)
	}
	if err := j.RecordSplashEvent(hiddenAt, "hidden", "launch", "autoHide", false); err != nil {
		t.Fatalf("RecordSplashEvent(hidden) returned error: %v", err)
	}

	recs, err := j.RecentSplashCycles(10)
	if err != nil {
		t.Fatalf("RecentSplashCycles returned error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d cycle rows, want 2", len(recs))
	}

	newest, oldest := recs[0], recs[1]
	if newest.Event != "hidden" || newest.Trigger != "autoHide" || newest.Launch {
		t.Errorf("newest = %+v, want hidden/autoHide/launch=false", newest)
	}
	if oldest.Event != "shown" || oldest.Trigger != "" || !oldest.Launch {
		t.Errorf("oldest = %+v, want shown/empty trigger/launch=true", oldest)
	}
	if !newest.At.Equal(hiddenAt) {
		t.Errorf("At = %v, want %v", newest.At, hiddenAt)
	}
	if newest.Source != "launch" {
		t.Errorf("Source = %q, want launch", newest.Source)
	}
}

// TestJournalLimit 测试查询条数限制
func TestJournalLimit(t *testing.T) {
	j := openTestJournal(t)

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		if err := j.RecordSplashEvent(base.Add(time.Duration(i)*time.Second), "shown", "launch", "", false); err != nil {
			t.Fatal(err)
		}
	}

	recs, err := j.RecentSplashCycles(3)
	if err != nil {
		t.Fatalf("RecentSplashCycles returned error: %v", err)
	}
	if len(recs) != 3 {
		t.Errorf("got %d rows, want 3", len(recs))
	}
}

// TestParseJournalTime 测试两种时间存储格式的解析
func TestParseJournalTime(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantZero bool
	}{
		{"RFC3339Nano", "2026-03-01T10:20:30.123456789Z", false},
		{"RFC3339", "2026-03-01T10:20:30Z", false},
		{"Sqlite current timestamp", "2026-03-01 10:20:30", false},
		{"Garbage", "yesterday", true},
		{"Empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseJournalTime(tt.in)
			if got.IsZero() != tt.wantZero {
				t.Errorf("parseJournalTime(%q) = %v, wantZero %v", tt.in, got, tt.wantZero)
			}
		})
	}
}
