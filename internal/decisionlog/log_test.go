package decisionlog

import (
	"compress/gzip"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestAppendWritesDailyFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PLAYGROUND_LOG_DIR", dir)

	err := Append(Entry{
		SessionID:  "s-1",
		Target:     "local",
		TaskType:   "summarization",
		Aggregate:  0.31,
		Confidence: 0.88,
		PromptLen:  42,
		Extra:      map[string]any{"range": "3M"},
	})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	p := filepath.Join(dir, time.Now().UTC().Format("2006-01-02")+".txt")
	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("Expected daily file at %s: %v", p, err)
	}

	var e Entry
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &e); err != nil {
		t.Fatalf("Expected one JSON line, got %q: %v", data, err)
	}
	if e.Time == "" {
		t.Error("Expected Time to be stamped")
	}
	if e.Target != "local" || e.TaskType != "summarization" {
		t.Errorf("Round trip mismatch: %+v", e)
	}
	if e.Extra["range"] != "3M" {
		t.Errorf("Expected extra to survive, got %v", e.Extra)
	}
}

func TestSetDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PLAYGROUND_LOG_DIR", "")
	SetDir(dir)
	defer SetDir("")

	if err := Append(Entry{Target: "remote", TaskType: "code generation"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	p := filepath.Join(dir, time.Now().UTC().Format("2006-01-02")+".txt")
	if _, err := os.Stat(p); err != nil {
		t.Errorf("Expected log in configured dir: %v", err)
	}
}

func TestSummarizeDay(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PLAYGROUND_LOG_DIR", dir)

	entries := []Entry{
		{Target: "local", TaskType: "summarization", Aggregate: 1.0},
		{Target: "LOCAL", TaskType: "summarization", Aggregate: 2.0},
		{Target: "REMOTE", TaskType: "code generation", Aggregate: 4.0},
	}
	for _, e := range entries {
		if err := Append(e); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	outPath, err := SummarizeDay(time.Now().UTC())
	if err != nil {
		t.Fatalf("SummarizeDay failed: %v", err)
	}
	if outPath == "" {
		t.Fatal("Expected a summary path")
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("Expected CSV at %s: %v", outPath, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("CSV read failed: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("Expected header + 2 task rows + TOTAL, got %d rows", len(records))
	}

	// Rows are sorted by task type
	code := records[1]
	if code[0] != "code generation" || code[1] != "1" || code[2] != "0" || code[3] != "1" || code[4] != "4.0000" {
		t.Errorf("Unexpected code generation row: %v", code)
	}
	summ := records[2]
	if summ[0] != "summarization" || summ[1] != "2" || summ[2] != "2" || summ[3] != "0" || summ[4] != "1.5000" {
		t.Errorf("Unexpected summarization row: %v", summ)
	}
	total := records[3]
	if total[0] != "TOTAL" || total[1] != "3" || total[2] != "2" || total[3] != "1" || total[4] != "2.3333" {
		t.Errorf("Unexpected TOTAL row: %v", total)
	}
}

func TestSummarizeMissingFile(t *testing.T) {
	t.Setenv("PLAYGROUND_LOG_DIR", t.TempDir())

	outPath, err := SummarizeDay(time.Now().UTC())
	if err != nil {
		t.Fatalf("Expected no-op, got error: %v", err)
	}
	if outPath != "" {
		t.Errorf("Expected empty path for missing log, got %q", outPath)
	}
}

func TestSummarizeSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PLAYGROUND_LOG_DIR", dir)

	day := time.Now().UTC()
	p := filepath.Join(dir, day.Format("2006-01-02")+".txt")
	content := "not json at all\n" +
		`{"Target":"local","TaskType":"open qa","Aggregate":0.5}` + "\n"
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("Fixture write failed: %v", err)
	}

	outPath, err := SummarizeDay(day)
	if err != nil {
		t.Fatalf("SummarizeDay failed: %v", err)
	}
	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("Expected CSV: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("CSV read failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected header + 1 row + TOTAL, got %d", len(records))
	}
	if records[1][0] != "open qa" || records[1][1] != "1" {
		t.Errorf("Unexpected row: %v", records[1])
	}
}

func TestCompressOlder(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PLAYGROUND_LOG_DIR", dir)

	old := filepath.Join(dir, "2024-01-02.txt")
	if err := os.WriteFile(old, []byte(`{"Target":"local"}`+"\n"), 0o644); err != nil {
		t.Fatalf("Fixture write failed: %v", err)
	}
	stale := time.Now().AddDate(0, 0, -10)
	if err := os.Chtimes(old, stale, stale); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	fresh := filepath.Join(dir, time.Now().UTC().Format("2006-01-02")+".txt")
	if err := os.WriteFile(fresh, []byte(`{"Target":"remote"}`+"\n"), 0o644); err != nil {
		t.Fatalf("Fixture write failed: %v", err)
	}

	if err := CompressOlder(7); err != nil {
		t.Fatalf("CompressOlder failed: %v", err)
	}

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("Expected stale log to be removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("Expected fresh log to survive")
	}

	gz, err := os.Open(old + ".gz")
	if err != nil {
		t.Fatalf("Expected gzip at %s: %v", old+".gz", err)
	}
	defer gz.Close()
	gr, err := gzip.NewReader(gz)
	if err != nil {
		t.Fatalf("gzip open failed: %v", err)
	}
	defer gr.Close()
	data, err := io.ReadAll(gr)
	if err != nil {
		t.Fatalf("gzip read failed: %v", err)
	}
	if !strings.Contains(string(data), `"Target":"local"`) {
		t.Errorf("Compressed content mismatch: %q", data)
	}
}

func TestCompressOlderKeepsExistingArchive(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PLAYGROUND_LOG_DIR", dir)

	old := filepath.Join(dir, "2024-01-02.txt")
	if err := os.WriteFile(old, []byte("raw\n"), 0o644); err != nil {
		t.Fatalf("Fixture write failed: %v", err)
	}
	if err := os.WriteFile(old+".gz", []byte("archived"), 0o644); err != nil {
		t.Fatalf("Fixture write failed: %v", err)
	}
	stale := time.Now().AddDate(0, 0, -10)
	if err := os.Chtimes(old, stale, stale); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	if err := CompressOlder(7); err != nil {
		t.Fatalf("CompressOlder failed: %v", err)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("Expected original to be removed when archive exists")
	}
	data, err := os.ReadFile(old + ".gz")
	if err != nil || string(data) != "archived" {
		t.Errorf("Expected existing archive untouched, got %q (%v)", data, err)
	}
}

func TestCompressOlderZeroRetention(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PLAYGROUND_LOG_DIR", dir)

	p := filepath.Join(dir, "2024-01-02.txt")
	if err := os.WriteFile(p, []byte("raw\n"), 0o644); err != nil {
		t.Fatalf("Fixture write failed: %v", err)
	}
	if err := CompressOlder(0); err != nil {
		t.Fatalf("Expected no-op: %v", err)
	}
	if _, err := os.Stat(p); err != nil {
		t.Error("Expected file untouched with zero retention")
	}
}
