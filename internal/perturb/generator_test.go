package perturb

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visionbench/capeval/internal/model"
	"github.com/visionbench/capeval/internal/resilience"
	"github.com/visionbench/capeval/pkg/llm"
)

type scriptedClient struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     [][]llm.Message
}

func (c *scriptedClient) Invoke(_ context.Context, messages []llm.Message) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := len(c.calls)
	c.calls = append(c.calls, messages)
	if c.err != nil {
		return "", c.err
	}
	if i < len(c.responses) {
		return c.responses[i], nil
	}
	return "", errors.New("no scripted response")
}

func (c *scriptedClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func testItem(t *testing.T) (model.DatasetItem, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "sa_1.jpg"), []byte{0xFF, 0xD8, 0xFF}, 0o644))
	return model.DatasetItem{
		ID:    "1",
		Image: "sa_1.jpg",
		Conversations: []model.Turn{
			{From: model.RoleHuman, Value: "<image>\nWhat is this landmark?"},
			{From: model.RoleModel, Value: "The Eiffel Tower."},
		},
	}, root
}

func fastGenerator(client llm.Client, root string) *Generator {
	g := NewGenerator(client, root, 1)
	g.Retry = resilience.Config{Op: "test", Attempts: 2, Delay: time.Millisecond,
		ShouldRetry: func(error) bool { return true }}
	return g
}

func TestAugment_TwoRoundProtocol(t *testing.T) {
	item, root := testItem(t)
	client := &scriptedClient{responses: []string{
		"a plausible draft",
		"(Perturbation): This is likely a broadcasting tower.",
	}}

	g := fastGenerator(client, root)
	require.NoError(t, g.Augment(context.Background(), &item))
	assert.Equal(t, "This is likely a broadcasting tower.", item.PerturbationText)

	require.Len(t, client.calls, 2)

	round1 := client.calls[0]
	require.Len(t, round1, 2)
	assert.Equal(t, llm.RoleSystem, round1[0].Role)
	require.Len(t, round1[1].Images, 1, "image attaches to the draft round")
	assert.Contains(t, round1[1].Text, "What is this landmark?")
	assert.Contains(t, round1[1].Text, "The Eiffel Tower.")

	round2 := client.calls[1]
	require.Len(t, round2, 4)
	assert.Equal(t, llm.RoleAssistant, round2[2].Role)
	assert.Equal(t, "a plausible draft", round2[2].Text)
	assert.Contains(t, round2[3].Text, "critically evaluate")
}

func TestAugment_SkipsAlreadyAugmented(t *testing.T) {
	item, root := testItem(t)
	item.PerturbationText = "already there"
	client := &scriptedClient{}

	g := fastGenerator(client, root)
	require.NoError(t, g.Augment(context.Background(), &item))
	assert.Equal(t, "already there", item.PerturbationText)
	assert.Zero(t, client.callCount(), "augmented items must not hit the LLM")
}

func TestAugment_MalformedConversation(t *testing.T) {
	item, root := testItem(t)
	item.Conversations = item.Conversations[:1]
	client := &scriptedClient{}

	err := fastGenerator(client, root).Augment(context.Background(), &item)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrMalformedConversation)
	assert.Zero(t, client.callCount())
}

func TestAugment_RetriesWholeProtocol(t *testing.T) {
	item, root := testItem(t)
	client := &scriptedClient{err: errors.New("endpoint down")}

	err := fastGenerator(client, root).Augment(context.Background(), &item)
	require.Error(t, err)
	var exhausted *resilience.ExhaustedError
	assert.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 2, client.callCount(), "each attempt restarts at the draft round")
	assert.Empty(t, item.PerturbationText)
}

func TestProcessShard_FailuresDoNotAbort(t *testing.T) {
	good, root := testItem(t)
	bad := good
	bad.ID = "2"
	bad.Image = "missing.jpg" // encode fails, item stays clean
	items := []model.DatasetItem{good, bad}

	client := &scriptedClient{responses: []string{
		"draft", "(Perturbation): misleading text",
	}}
	g := fastGenerator(client, root)
	g.Workers = 1

	require.NoError(t, g.ProcessShard(context.Background(), items))
	assert.Equal(t, "misleading text", items[0].PerturbationText)
	assert.Empty(t, items[1].PerturbationText)
}

func TestStripPerturbationPrefix(t *testing.T) {
	assert.Equal(t, "foo bar", stripPerturbationPrefix("(Perturbation): foo bar"))
	assert.Equal(t, " foo", stripPerturbationPrefix("(Perturbation) foo"))
	assert.Equal(t, "no prefix", stripPerturbationPrefix("no prefix"))
}
