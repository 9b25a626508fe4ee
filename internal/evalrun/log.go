// Package evalrun orchestrates batch caption evaluation: it fans items out
// to a worker pool, funnels every result through a single log writer, and
// aggregates the corpus summary by re-reading the log from disk.
package evalrun

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/visionbench/capeval/internal/model"
)

// ResultLog is an append-only JSONL file. Every Append writes exactly one
// line; the orchestrator owns the single instance so workers never touch the
// file directly.
type ResultLog struct {
	mu sync.Mutex
	f  *os.File
}

// OpenLog opens the result log for appending, creating it if needed.
func OpenLog(path string) (*ResultLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, eris.Wrapf(err, "evalrun: open log %s", path)
	}
	return &ResultLog{f: f}, nil
}

// Append marshals v and writes it as one line.
func (l *ResultLog) Append(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return eris.Wrap(err, "evalrun: marshal log line")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.f.Write(append(raw, '\n')); err != nil {
		return eris.Wrap(err, "evalrun: append log line")
	}
	return nil
}

// Close closes the underlying file.
func (l *ResultLog) Close() error {
	return l.f.Close()
}

// LoadProcessed returns the image ids already present in an existing log,
// so a resumed run can skip them. A missing log means a fresh run. Lines
// that do not parse, or parse without an image field (summary lines), are
// skipped with a warning.
func LoadProcessed(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return map[string]struct{}{}, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "evalrun: open existing log %s", path)
	}
	defer f.Close()

	processed := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1<<20), 16<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec model.EvalRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			zap.L().Warn("evalrun: skipping unparseable log line", zap.Error(err))
			continue
		}
		if rec.Image == "" {
			continue
		}
		processed[rec.Image] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrapf(err, "evalrun: scan existing log %s", path)
	}
	return processed, nil
}

// ReadRecords reads every per-image record back from the log. Summary lines
// and unparseable lines are skipped; the log on disk is the source of truth
// for aggregation, including records written by earlier interrupted runs.
func ReadRecords(path string) ([]model.EvalRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "evalrun: open log %s", path)
	}
	defer f.Close()

	var records []model.EvalRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1<<20), 16<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec model.EvalRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			zap.L().Warn("evalrun: skipping unparseable log line", zap.Error(err))
			continue
		}
		if rec.Image == "" {
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrapf(err, "evalrun: scan log %s", path)
	}
	return records, nil
}
