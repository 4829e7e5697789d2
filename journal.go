package main

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// LaunchJournal records process launches and splash lifecycle cycles so the
// diagnostics panel can answer "what did startup look like last week".
type LaunchJournal struct {
	db *sql.DB
}

// OpenJournal opens the journal database at path, creating the schema and
// pruning entries older than 30 days. Call after InitLogger.
func OpenJournal(path string) (*LaunchJournal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("打开启动日志数据库失败: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS launches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			version TEXT NOT NULL,
			channel TEXT NOT NULL,
			mode TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS splash_cycles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			at DATETIME NOT NULL,
			event TEXT NOT NULL,
			source TEXT NOT NULL,
			reason TEXT,
			launch BOOLEAN DEFAULT FALSE
		);
		CREATE INDEX IF NOT EXISTS idx_launch_time ON launches(started_at DESC);
		CREATE INDEX IF NOT EXISTS idx_cycle_time ON splash_cycles(at DESC);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("创建启动日志表失败: %w", err)
	}

	// 清理旧记录（保留30天）
	if _, err := db.Exec(`DELETE FROM launches WHERE started_at < DATETIME('now', '-30 days')`); err != nil {
		Log.Warn("prune launches failed", "err", err)
	}
	if _, err := db.Exec(`DELETE FROM splash_cycles WHERE at < DATETIME('now', '-30 days')`); err != nil {
		Log.Warn("prune splash cycles failed", "err", err)
	}

	// WAL 模式以提高并发
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		Log.Warn("enable WAL failed", "err", err)
	}

	return &LaunchJournal{db: db}, nil
}

// RecordLaunch inserts one process start and returns its row id.
func (j *LaunchJournal) RecordLaunch(mode string) (int64, error) {
	res, err := j.db.Exec(
		`INSERT INTO launches(version, channel, mode) VALUES(?, ?, ?)`,
		AppVersion, AppChannel(), mode)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RecordSplashEvent appends one splash lifecycle row. Timestamps are stored
// as RFC3339 UTC strings.
func (j *LaunchJournal) RecordSplashEvent(at time.Time, event, source, reason string, launch bool) error {
	_, err := j.db.Exec(
		`INSERT INTO splash_cycles(at, event, source, reason, launch) VALUES(?, ?, ?, ?, ?)`,
		at.UTC().Format(time.RFC3339Nano), event, source, reason, launch)
	return err
}

// RecentLaunches returns the newest launch rows, most recent first.
func (j *LaunchJournal) RecentLaunches(limit int) ([]LaunchRecord, error) {
	rows, err := j.db.Query(
		`SELECT id, started_at, version, channel, mode FROM launches ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LaunchRecord
	for rows.Next() {
		var rec LaunchRecord
		var at string
		if err := rows.Scan(&rec.ID, &at, &rec.Version, &rec.Channel, &rec.Mode); err != nil {
			return nil, err
		}
		rec.StartedAt = parseJournalTime(at)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// RecentSplashCycles returns the newest splash lifecycle rows, most recent
// first.
func (j *LaunchJournal) RecentSplashCycles(limit int) ([]SplashCycleRecord, error) {
	rows, err := j.db.Query(
		`SELECT id, at, event, source, COALESCE(reason, ''), launch FROM splash_cycles ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SplashCycleRecord
	for rows.Next() {
		var rec SplashCycleRecord
		var at string
		if err := rows.Scan(&rec.ID, &at, &rec.Event, &rec.Source, &rec.Trigger, &rec.Launch); err != nil {
			return nil, err
		}
		rec.At = parseJournalTime(at)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (j *LaunchJournal) Close() error {
	return j.db.Close()
}

// parseJournalTime accepts both our RFC3339 inserts and sqlite's own
// CURRENT_TIMESTAMP layout.
func parseJournalTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
