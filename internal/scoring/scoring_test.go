package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visionbench/capeval/internal/model"
)

func TestHallucinationScore(t *testing.T) {
	assert.Equal(t, 1.0, HallucinationScore(0, 5))
	assert.Equal(t, 0.0, HallucinationScore(5, 5))
	assert.InDelta(t, 0.6, HallucinationScore(2, 5), 1e-9)
	assert.Equal(t, 0.0, HallucinationScore(0, 0), "zero-concept graph scores 0")
}

func TestRecallScore(t *testing.T) {
	assert.Equal(t, 1.0, RecallScore(0, 5))
	assert.Equal(t, 0.0, RecallScore(5, 5))
	assert.InDelta(t, 0.75, RecallScore(1, 4), 1e-9)
	assert.Equal(t, 0.0, RecallScore(0, 0))
}

func TestFScore(t *testing.T) {
	assert.Equal(t, 1.0, FScore(1.0, 1.0))
	assert.InDelta(t, 0.8, FScore(1.0, 2.0/3.0), 1e-9)

	// Either component at zero must not divide by zero and yields 0.
	assert.Equal(t, 0.0, FScore(0, 0))
	assert.Equal(t, 0.0, FScore(0, 0.9))
	assert.Equal(t, 0.0, FScore(0.9, 0))
}

func TestScoreItem(t *testing.T) {
	rec := model.EvalRecord{
		Image:             "sa_1.jpg",
		VLMConcepts:       model.IntPtr(10),
		GTConcepts:        model.IntPtr(8),
		HallucinatedCount: model.IntPtr(2),
		OmittedCount:      model.IntPtr(2),
	}
	ScoreItem(&rec)

	require.NotNil(t, rec.FScore)
	assert.InDelta(t, 0.8, *rec.HallucinationScore, 1e-9)
	assert.InDelta(t, 0.75, *rec.RecallScore, 1e-9)
	assert.InDelta(t, 2.0/(1.0/0.8+1.0/0.75), *rec.FScore, 1e-9)
}

func TestScoreItem_PartialRecordUntouched(t *testing.T) {
	rec := model.EvalRecord{
		Image:       "sa_2.jpg",
		VLMConcepts: model.IntPtr(10),
		Error:       "judge failed",
	}
	ScoreItem(&rec)
	assert.Nil(t, rec.HallucinationScore)
	assert.Nil(t, rec.FScore)
}

func TestSummarize_MicroAveraging(t *testing.T) {
	records := []model.EvalRecord{
		{
			VLMConcepts:       model.IntPtr(10),
			HallucinatedCount: model.IntPtr(2),
			GTConcepts:        model.IntPtr(20),
			OmittedCount:      model.IntPtr(5),
		},
		{
			VLMConcepts:       model.IntPtr(2),
			HallucinatedCount: model.IntPtr(2),
			GTConcepts:        model.IntPtr(4),
			OmittedCount:      model.IntPtr(0),
		},
	}

	s := Summarize(records)
	assert.Equal(t, 2, s.Evaluated)
	assert.Equal(t, 12, s.TotalVLMConcepts)
	assert.Equal(t, 4, s.TotalHallucinated)
	assert.Equal(t, 24, s.TotalGTConcepts)
	assert.Equal(t, 5, s.TotalOmitted)

	// Micro-averaged: 1-4/12 and 1-5/24, not the mean of per-item scores.
	assert.InDelta(t, 1.0-4.0/12.0, s.HallucinationScore, 1e-9)
	assert.InDelta(t, 1.0-5.0/24.0, s.RecallScore, 1e-9)
	assert.Greater(t, s.FScore, 0.0)
}

func TestSummarize_PartialRecordsExcludedFromSums(t *testing.T) {
	records := []model.EvalRecord{
		{
			VLMConcepts:       model.IntPtr(10),
			HallucinatedCount: model.IntPtr(0),
			GTConcepts:        model.IntPtr(10),
			OmittedCount:      model.IntPtr(0),
		},
		{Error: "extraction failed"}, // contributes nothing
	}

	s := Summarize(records)
	assert.Equal(t, 2, s.Evaluated)
	assert.Equal(t, 10, s.TotalVLMConcepts)
	assert.Equal(t, 1.0, s.HallucinationScore)
	assert.Equal(t, 1.0, s.RecallScore)
	assert.Equal(t, 1.0, s.FScore)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0.0, s.HallucinationScore)
	assert.Equal(t, 0.0, s.RecallScore)
	assert.Equal(t, 0.0, s.FScore)
}
