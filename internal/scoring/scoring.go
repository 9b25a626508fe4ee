// Package scoring turns hallucination/omission counts into per-item and
// corpus-level quality scores.
package scoring

import (
	"github.com/visionbench/capeval/internal/model"
)

// HallucinationScore is the fraction of VLM concepts that are not
// hallucinated: 1 - flagged/total. A zero-concept graph scores 0.
func HallucinationScore(flagged, total int) float64 {
	if total <= 0 {
		return 0
	}
	return 1.0 - float64(flagged)/float64(total)
}

// RecallScore is the fraction of GT concepts the VLM caption covered:
// 1 - omitted/total. A zero-concept graph scores 0.
func RecallScore(omitted, total int) float64 {
	if total <= 0 {
		return 0
	}
	return 1.0 - float64(omitted)/float64(total)
}

// FScore is the harmonic mean of the two component scores. When either
// component is 0 the result is defined as 0: the harmonic mean diverges
// there, and a caption with zero precision or zero recall has no useful
// combined score.
func FScore(hallucination, recall float64) float64 {
	if hallucination <= 0 || recall <= 0 {
		return 0
	}
	return 2.0 / (1.0/hallucination + 1.0/recall)
}

// ScoreItem fills the score fields of a record whose counts are populated.
// Records missing any count are left untouched.
func ScoreItem(rec *model.EvalRecord) {
	if rec.VLMConcepts == nil || rec.GTConcepts == nil ||
		rec.HallucinatedCount == nil || rec.OmittedCount == nil {
		return
	}
	h := HallucinationScore(*rec.HallucinatedCount, *rec.VLMConcepts)
	r := RecallScore(*rec.OmittedCount, *rec.GTConcepts)
	rec.HallucinationScore = model.FloatPtr(h)
	rec.RecallScore = model.FloatPtr(r)
	rec.FScore = model.FloatPtr(FScore(h, r))
}

// Summarize micro-averages a record set: counts are summed across the whole
// corpus before the ratios are computed, so images with rich captions weigh
// proportionally more than sparse ones. Partial records contribute only the
// fields they carry; nil fields are excluded from summation, not zeroed.
func Summarize(records []model.EvalRecord) model.CorpusSummary {
	var s model.CorpusSummary
	for _, rec := range records {
		s.Evaluated++
		if rec.VLMConcepts != nil {
			s.TotalVLMConcepts += *rec.VLMConcepts
		}
		if rec.HallucinatedCount != nil {
			s.TotalHallucinated += *rec.HallucinatedCount
		}
		if rec.GTConcepts != nil {
			s.TotalGTConcepts += *rec.GTConcepts
		}
		if rec.OmittedCount != nil {
			s.TotalOmitted += *rec.OmittedCount
		}
	}

	s.HallucinationScore = HallucinationScore(s.TotalHallucinated, s.TotalVLMConcepts)
	s.RecallScore = RecallScore(s.TotalOmitted, s.TotalGTConcepts)
	s.FScore = FScore(s.HallucinationScore, s.RecallScore)
	return s
}
