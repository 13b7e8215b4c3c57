// Package decisionlog keeps an append-only JSONL audit trail of routing
// decisions, one file per UTC day, plus daily usage summaries.
package decisionlog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	mu         sync.Mutex
	configured string
)

// Entry is one routed prompt. Aggregate is the blended complexity score the
// router acted on, PromptLen the prompt length in runes.
type Entry struct {
	Time       string
	SessionID  string
	Target     string
	TaskType   string
	Aggregate  float64
	Confidence float64
	PromptLen  int
	Extra      map[string]any `json:"extra,omitempty"`
}

// SetDir points the log at a directory. PLAYGROUND_LOG_DIR still wins.
func SetDir(dir string) {
	mu.Lock()
	defer mu.Unlock()
	configured = dir
}

func logDir() string {
	if v := os.Getenv("PLAYGROUND_LOG_DIR"); v != "" {
		return v
	}
	if configured != "" {
		return configured
	}
	return "logs"
}

func dailyFilepath(t time.Time) string {
	return filepath.Join(logDir(), t.UTC().Format("2006-01-02")+".txt")
}

func summaryCSVPath(t time.Time) string {
	return filepath.Join(logDir(), "summary", t.UTC().Format("2006-01-02")+".csv")
}

// Append stamps the entry with the current UTC time and writes it as one JSON
// line to the day's file, creating directories as needed.
func Append(e Entry) error {
	mu.Lock()
	defer mu.Unlock()

	now := time.Now().UTC()
	e.Time = now.Format("2006-01-02 15:04:05")
	p := dailyFilepath(now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips daily logs older than retentionDays and removes the
// originals. Files that already have a .gz sibling are just removed.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	return filepath.WalkDir(logDir(), func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".txt" {
			return nil
		}
		info, err := os.Stat(p)
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil
		}

		gz := p + ".gz"
		if _, err := os.Stat(gz); err == nil {
			return os.Remove(p)
		}
		if err := compressFile(p, gz); err != nil {
			os.Remove(gz)
			return nil
		}
		return os.Remove(p)
	})
}

func compressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		gw.Close()
		return err
	}
	return gw.Close()
}
