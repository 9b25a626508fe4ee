package evalrun

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visionbench/capeval/internal/judge"
	"github.com/visionbench/capeval/internal/model"
	"github.com/visionbench/capeval/internal/resilience"
	"github.com/visionbench/capeval/internal/scenegraph"
	"github.com/visionbench/capeval/pkg/llm"
)

// routingClient answers extraction and judge prompts by inspecting the
// prompt text, the way the live endpoint would be driven by its content.
type routingClient struct {
	mu      sync.Mutex
	prompts []string
}

const (
	gtGraphText  = "1. (\"object\"{tuple_delimiter}BOAT{tuple_delimiter}large)\n2. (\"object\"{tuple_delimiter}SEA{tuple_delimiter}calm)"
	vlmGraphText = "1. (\"object\"{tuple_delimiter}BOAT{tuple_delimiter}large)\n2. (\"object\"{tuple_delimiter}SEA{tuple_delimiter}calm)\n3. (\"object\"{tuple_delimiter}PLANE{tuple_delimiter}flying)"
)

func (c *routingClient) Invoke(_ context.Context, messages []llm.Message) (string, error) {
	prompt := messages[len(messages)-1].Text
	c.mu.Lock()
	c.prompts = append(c.prompts, prompt)
	c.mu.Unlock()

	switch {
	case strings.Contains(prompt, "Incorrect Serial Numbers"):
		return "The plane has no GT counterpart.\nIncorrect Serial Numbers: 3", nil
	case strings.Contains(prompt, "Missing Serial Numbers"):
		return "Everything in GT is covered.\nMissing Serial Numbers: none", nil
	case strings.Contains(prompt, "broken caption"):
		return "", errors.New("model refused")
	case strings.Contains(prompt, "gt caption"):
		return gtGraphText, nil
	case strings.Contains(prompt, "vlm caption"):
		return vlmGraphText, nil
	}
	return "", errors.New("unexpected prompt")
}

func (c *routingClient) promptsContaining(substr string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, p := range c.prompts {
		if strings.Contains(p, substr) {
			n++
		}
	}
	return n
}

func testRunner(client llm.Client, workers, limit int) *Runner {
	retry := resilience.Config{Op: "test", Attempts: 2, Delay: time.Millisecond}
	extractor := scenegraph.NewExtractor(client, retry, nil)
	j := judge.New(client, retry)
	return NewRunner(extractor, j, workers, limit)
}

func writeCorpus(t *testing.T, dir string) (annotations, results string) {
	t.Helper()
	annotations = filepath.Join(dir, "ann.json")
	require.NoError(t, os.WriteFile(annotations, []byte(`[
		{"image":"sa_1.jpg","caption":"gt caption one"},
		{"image":"sa_2.jpg","caption":"gt caption two"},
		{"image":"sa_3.jpg","caption":"gt caption three"},
		{"image":"sa_4.jpg","caption":"gt caption four"}
	]`), 0o644))

	results = filepath.Join(dir, "res.jsonl")
	require.NoError(t, os.WriteFile(results, []byte(
		"{\"image\":\"sa_1.jpg\",\"caption\":\"vlm caption one\"}\n"+
			"{\"image\":\"sa_2.jpg\",\"caption\":\"vlm caption two\"}\n"+
			"{\"image\":\"sa_3.jpg\",\"caption\":\"broken caption\"}\n"), 0o644))
	return annotations, results
}

func TestRun_MixedOutcomes(t *testing.T) {
	dir := t.TempDir()
	annotations, results := writeCorpus(t, dir)
	out := filepath.Join(dir, "eval.jsonl")

	client := &routingClient{}
	summary, err := testRunner(client, 2, 0).Run(context.Background(), annotations, results, out)
	require.NoError(t, err)

	records, err := ReadRecords(out)
	require.NoError(t, err)
	require.Len(t, records, 4)

	byImage := make(map[string]model.EvalRecord)
	for _, rec := range records {
		byImage[rec.Image] = rec
	}

	// sa_1 and sa_2 complete: 3 VLM concepts, 1 hallucinated, 2 GT, 0 omitted.
	for _, img := range []string{"sa_1.jpg", "sa_2.jpg"} {
		rec := byImage[img]
		require.True(t, rec.Complete(), "%s should be complete", img)
		assert.Equal(t, []int{3}, rec.HallucinatedSerials)
		assert.Equal(t, 3, *rec.VLMConcepts)
		assert.Equal(t, 2, *rec.GTConcepts)
		assert.Equal(t, 0, *rec.OmittedCount)
		assert.InDelta(t, 2.0/3.0, *rec.HallucinationScore, 1e-9)
		assert.InDelta(t, 1.0, *rec.RecallScore, 1e-9)
		assert.InDelta(t, 0.8, *rec.FScore, 1e-9)
	}

	// sa_3's VLM caption fails extraction: partial record keeps the GT side.
	rec3 := byImage["sa_3.jpg"]
	assert.False(t, rec3.Complete())
	assert.Contains(t, rec3.Error, "vlm scene graph")
	require.NotNil(t, rec3.GTConcepts)
	assert.Equal(t, 2, *rec3.GTConcepts)
	assert.Nil(t, rec3.VLMConcepts)

	// sa_4 has no candidate caption at all.
	rec4 := byImage["sa_4.jpg"]
	assert.Contains(t, rec4.Error, "no candidate caption")
	assert.Nil(t, rec4.GTConcepts)

	// Summary micro-averages over the whole log.
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 4, summary.Evaluated)
	assert.Equal(t, 6, summary.TotalVLMConcepts)
	assert.Equal(t, 2, summary.TotalHallucinated)
	assert.Equal(t, 6, summary.TotalGTConcepts)
	assert.Equal(t, 0, summary.TotalOmitted)
	assert.InDelta(t, 2.0/3.0, summary.HallucinationScore, 1e-9)
	assert.InDelta(t, 1.0, summary.RecallScore, 1e-9)
	assert.InDelta(t, 0.8, summary.FScore, 1e-9)
}

func TestRun_ResumeSkipsProcessed(t *testing.T) {
	dir := t.TempDir()
	annotations, results := writeCorpus(t, dir)
	out := filepath.Join(dir, "eval.jsonl")

	// A prior interrupted run already logged sa_1 and its summary line.
	prior := `{"image":"sa_1.jpg","gt_caption":"gt caption one","vlm_caption":"vlm caption one","gt_concepts":2,"vlm_concepts":3,"hallucinated_count":1,"omitted_count":0}
{"run_id":"old","evaluated":1}
`
	require.NoError(t, os.WriteFile(out, []byte(prior), 0o644))

	client := &routingClient{}
	summary, err := testRunner(client, 2, 0).Run(context.Background(), annotations, results, out)
	require.NoError(t, err)

	assert.Zero(t, client.promptsContaining("caption one"), "processed image must not be re-dispatched")
	assert.Equal(t, 4, summary.Evaluated, "summary covers prior and new records")
	assert.Equal(t, 6, summary.TotalVLMConcepts)
}

func TestRun_LimitCapsDispatch(t *testing.T) {
	dir := t.TempDir()
	annotations, results := writeCorpus(t, dir)
	out := filepath.Join(dir, "eval.jsonl")

	client := &routingClient{}
	summary, err := testRunner(client, 2, 1).Run(context.Background(), annotations, results, out)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Evaluated)
	assert.Zero(t, client.promptsContaining("caption two"))
}
