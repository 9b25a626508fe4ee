// Package judge asks the LLM to compare two scene graphs and flag
// mismatched entries in each direction. Matching semantics (synonyms,
// case-insensitivity, duplicate-object counting) are delegated to the model
// via the prompt text; this package only recovers serial-number sets from
// the semi-structured response.
package judge

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/visionbench/capeval/internal/resilience"
	"github.com/visionbench/capeval/pkg/llm"
)

// serialMarker is the literal the response must end with; everything after
// its last occurrence is scanned for integers.
const serialMarker = "Serial Numbers:"

var digits = regexp.MustCompile(`\d+`)

// Judge runs the hallucination and omission comparison calls.
type Judge struct {
	client llm.Client
	retry  resilience.Config
}

// New creates a Judge.
func New(client llm.Client, retry resilience.Config) *Judge {
	return &Judge{client: client, retry: retry}
}

// Hallucinations returns the VLM-graph serials the model deems spurious,
// along with the raw analysis text.
func (j *Judge) Hallucinations(ctx context.Context, gtGraph, vlmGraph string) ([]int, string, error) {
	return j.compare(ctx, "judge_hallucination", hallucinationPrompt, gtGraph, vlmGraph)
}

// Omissions returns the GT-graph serials the model deems missing from the
// VLM graph, along with the raw analysis text.
func (j *Judge) Omissions(ctx context.Context, gtGraph, vlmGraph string) ([]int, string, error) {
	return j.compare(ctx, "judge_omission", omissionPrompt, gtGraph, vlmGraph)
}

func (j *Judge) compare(ctx context.Context, op, prompt, gtGraph, vlmGraph string) ([]int, string, error) {
	cfg := j.retry
	if cfg.Op == "" {
		cfg.Op = op
	}
	raw, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (string, error) {
		return j.client.Invoke(ctx, []llm.Message{
			{Role: llm.RoleUser, Text: fmt.Sprintf(prompt, gtGraph, vlmGraph)},
		})
	})
	if err != nil {
		return nil, "", eris.Wrapf(err, "judge: %s", op)
	}
	return ParseSerials(raw), raw, nil
}

// ParseSerials recovers the flagged serial set from a judge response: all
// integers after the last occurrence of "Serial Numbers:", deduplicated and
// sorted. A missing marker means zero flagged serials, not an error — this
// permissive default is part of the scoring contract for malformed model
// output.
func ParseSerials(raw string) []int {
	idx := strings.LastIndex(raw, serialMarker)
	if idx < 0 {
		return nil
	}

	seen := make(map[int]struct{})
	var serials []int
	for _, m := range digits.FindAllString(raw[idx+len(serialMarker):], -1) {
		n, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		serials = append(serials, n)
	}
	sort.Ints(serials)
	return serials
}
