// Package dataset handles the JSON/JSONL file formats the pipelines consume
// and produce: annotation shards, caption files, and shard merging.
package dataset

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/visionbench/capeval/internal/model"
)

// Caption pairs an image identifier with a caption.
type Caption struct {
	Image   string `json:"image"`
	Caption string `json:"caption"`
}

// LoadAnnotations reads a ground-truth caption file: a JSON array of
// {image, caption}.
func LoadAnnotations(path string) ([]Caption, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: read annotations %s", path)
	}
	var captions []Caption
	if err := json.Unmarshal(raw, &captions); err != nil {
		return nil, eris.Wrapf(err, "dataset: parse annotations %s", path)
	}
	return captions, nil
}

// LoadResults reads a candidate caption file: newline-delimited JSON, one
// {image, caption} per line, keyed by image. Later lines win on duplicates.
func LoadResults(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open results %s", path)
	}
	defer f.Close()

	results := make(map[string]string)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1<<20), 16<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var c Caption
		if err := json.Unmarshal([]byte(line), &c); err != nil {
			return nil, eris.Wrapf(err, "dataset: parse results line in %s", path)
		}
		results[c.Image] = c.Caption
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrapf(err, "dataset: scan results %s", path)
	}
	return results, nil
}

// LoadItems reads a dataset shard: a JSON array of items.
func LoadItems(path string) ([]model.DatasetItem, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: read shard %s", path)
	}
	var items []model.DatasetItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, eris.Wrapf(err, "dataset: parse shard %s", path)
	}
	return items, nil
}

// SaveItems writes a dataset shard as an indented JSON array.
func SaveItems(path string, items []model.DatasetItem) error {
	raw, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return eris.Wrap(err, "dataset: marshal items")
	}
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return eris.Wrapf(err, "dataset: write shard %s", path)
	}
	return nil
}

// ListShards returns the sorted absolute paths of every .json file directly
// under dir.
func ListShards(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: list shards in %s", dir)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		abs, err := filepath.Abs(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: resolve %s", e.Name())
		}
		paths = append(paths, abs)
	}
	sort.Strings(paths)
	return paths, nil
}

// MergeShards concatenates the items of every shard in order.
func MergeShards(paths []string) ([]model.DatasetItem, error) {
	var merged []model.DatasetItem
	for _, path := range paths {
		items, err := LoadItems(path)
		if err != nil {
			return nil, err
		}
		merged = append(merged, items...)
	}
	return merged, nil
}

// UpdateByID replaces entries of total whose id appears in updates and
// returns the number replaced. Items without a matching id are untouched.
func UpdateByID(total []model.DatasetItem, updates []model.DatasetItem) int {
	byID := make(map[string]model.DatasetItem, len(updates))
	for _, item := range updates {
		byID[item.ID] = item
	}

	replaced := 0
	for i := range total {
		if updated, ok := byID[total[i].ID]; ok {
			total[i] = updated
			replaced++
		}
	}
	zap.L().Debug("dataset: updated master items", zap.Int("replaced", replaced))
	return replaced
}
