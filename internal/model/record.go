package model

// EvalRecord is the per-image evaluation result, appended to the result log
// exactly once and never mutated. Numeric fields are pointers so a record
// from a partially failed item simply omits whatever was never computed;
// aggregation skips nil fields rather than counting them as zero.
type EvalRecord struct {
	Image      string `json:"image"`
	GTCaption  string `json:"gt_caption"`
	VLMCaption string `json:"vlm_caption"`

	// Raw scene-graph texts, kept for audit of the lenient parse.
	GTGraph  string `json:"gt_scene_graph,omitempty"`
	VLMGraph string `json:"vlm_scene_graph,omitempty"`

	HallucinatedSerials []int `json:"hallucinated_serials,omitempty"`
	OmittedSerials      []int `json:"omitted_serials,omitempty"`

	GTConcepts        *int `json:"gt_concepts,omitempty"`
	VLMConcepts       *int `json:"vlm_concepts,omitempty"`
	HallucinatedCount *int `json:"hallucinated_count,omitempty"`
	OmittedCount      *int `json:"omitted_count,omitempty"`

	HallucinationScore *float64 `json:"hallucination_score,omitempty"`
	RecallScore        *float64 `json:"recall_score,omitempty"`
	FScore             *float64 `json:"f_score,omitempty"`

	// Error is set when any evaluation step failed for this image.
	Error string `json:"error,omitempty"`
}

// Complete reports whether every scored field was populated.
func (r *EvalRecord) Complete() bool {
	return r.Error == "" &&
		r.GTConcepts != nil && r.VLMConcepts != nil &&
		r.HallucinatedCount != nil && r.OmittedCount != nil &&
		r.HallucinationScore != nil && r.RecallScore != nil && r.FScore != nil
}

// CorpusSummary is the final line of a result log: counts summed across all
// records with the score formulas applied to the totals (micro-averaging).
type CorpusSummary struct {
	RunID     string `json:"run_id,omitempty"`
	Evaluated int    `json:"evaluated"`

	TotalVLMConcepts  int `json:"total_vlm_concepts"`
	TotalHallucinated int `json:"total_hallucinated"`
	TotalGTConcepts   int `json:"total_gt_concepts"`
	TotalOmitted      int `json:"total_omitted"`

	HallucinationScore float64 `json:"hallucination_score"`
	RecallScore        float64 `json:"recall_score"`
	FScore             float64 `json:"f_score"`
}

// IntPtr and FloatPtr are small helpers for building records.
func IntPtr(v int) *int           { return &v }
func FloatPtr(v float64) *float64 { return &v }
