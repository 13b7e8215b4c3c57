package decisionlog

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

type usageRow struct {
	TaskType     string
	Decisions    int
	Local        int
	Remote       int
	AggregateSum float64
}

// SummarizeDay aggregates the day's decision log into
// <dir>/summary/<date>.csv and returns the CSV path. A missing or empty log
// is a no-op returning "".
func SummarizeDay(t time.Time) (string, error) {
	inPath := dailyFilepath(t)
	if _, err := os.Stat(inPath); err != nil {
		return "", nil
	}
	f, err := os.Open(inPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	rows := map[string]*usageRow{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			continue
		}
		row := rows[e.TaskType]
		if row == nil {
			row = &usageRow{TaskType: e.TaskType}
			rows[e.TaskType] = row
		}
		row.Decisions++
		switch strings.ToUpper(e.Target) {
		case "LOCAL":
			row.Local++
		case "REMOTE":
			row.Remote++
		}
		row.AggregateSum += e.Aggregate
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	outPath := summaryCSVPath(t)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	defer w.Flush()
	if err := w.Write([]string{"task_type", "decisions", "local", "remote", "mean_aggregate"}); err != nil {
		return "", err
	}

	var total usageRow
	for _, k := range keys {
		r := rows[k]
		mean := r.AggregateSum / float64(r.Decisions)
		rec := []string{
			r.TaskType,
			strconv.Itoa(r.Decisions),
			strconv.Itoa(r.Local),
			strconv.Itoa(r.Remote),
			fmt.Sprintf("%.4f", mean),
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
		total.Decisions += r.Decisions
		total.Local += r.Local
		total.Remote += r.Remote
		total.AggregateSum += r.AggregateSum
	}

	totalMean := total.AggregateSum / float64(total.Decisions)
	err = w.Write([]string{
		"TOTAL",
		strconv.Itoa(total.Decisions),
		strconv.Itoa(total.Local),
		strconv.Itoa(total.Remote),
		fmt.Sprintf("%.4f", totalMean),
	})
	if err != nil {
		return "", err
	}
	return outPath, nil
}

// SummarizeToday summarizes the current UTC day.
func SummarizeToday() (string, error) { return SummarizeDay(time.Now().UTC()) }
