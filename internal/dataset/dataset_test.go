package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visionbench/capeval/internal/model"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAnnotations(t *testing.T) {
	path := writeFile(t, t.TempDir(), "ann.json",
		`[{"image":"sa_1.jpg","caption":"a boat"},{"image":"sa_2.jpg","caption":"a mall"}]`)

	captions, err := LoadAnnotations(path)
	require.NoError(t, err)
	require.Len(t, captions, 2)
	assert.Equal(t, "sa_1.jpg", captions[0].Image)
	assert.Equal(t, "a mall", captions[1].Caption)
}

func TestLoadResults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "res.jsonl",
		"{\"image\":\"sa_1.jpg\",\"caption\":\"boat\"}\n\n{\"image\":\"sa_2.jpg\",\"caption\":\"mall\"}\n")

	results, err := LoadResults(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"sa_1.jpg": "boat", "sa_2.jpg": "mall"}, results)
}

func TestLoadResults_BadLine(t *testing.T) {
	path := writeFile(t, t.TempDir(), "res.jsonl", "{not json}\n")
	_, err := LoadResults(path)
	require.Error(t, err)
}

func TestItemsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	items := []model.DatasetItem{
		{
			ID:    "a",
			Image: "a.jpg",
			Conversations: []model.Turn{
				{From: model.RoleHuman, Value: "<image>\nhi"},
				{From: model.RoleModel, Value: "hello"},
			},
			PerturbationText: "misleading text",
		},
	}
	path := filepath.Join(dir, "shard.json")
	require.NoError(t, SaveItems(path, items))

	loaded, err := LoadItems(path)
	require.NoError(t, err)
	assert.Equal(t, items, loaded)
}

func TestListShardsAndMerge(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b_shard.json", `[{"id":"2","image":"2.jpg","conversations":[]}]`)
	writeFile(t, dir, "a_shard.json", `[{"id":"1","image":"1.jpg","conversations":[]}]`)
	writeFile(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o755)) // dirs skipped

	paths, err := ListShards(dir)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.True(t, filepath.Base(paths[0]) < filepath.Base(paths[1]), "shards must sort by name")

	merged, err := MergeShards(paths)
	require.NoError(t, err)
	require.Len(t, merged, 2)
	assert.Equal(t, "1", merged[0].ID)
	assert.Equal(t, "2", merged[1].ID)
}

func TestUpdateByID(t *testing.T) {
	total := []model.DatasetItem{
		{ID: "1", Image: "1.jpg"},
		{ID: "2", Image: "2.jpg"},
		{ID: "3", Image: "3.jpg"},
	}
	updates := []model.DatasetItem{
		{ID: "2", Image: "2.jpg", PerturbationText: "p"},
		{ID: "9", Image: "9.jpg"},
	}

	replaced := UpdateByID(total, updates)
	assert.Equal(t, 1, replaced)
	assert.Equal(t, "p", total[1].PerturbationText)
	assert.Empty(t, total[0].PerturbationText)
}
