package domain

import "time"

// ValidationResult is the outcome of validating one topic against its
// matched references. It is created once per validation run and never
// mutated afterwards; persistence is the caller's concern.
type ValidationResult struct {
	// TopicID is the validated topic.
	TopicID string `json:"topic_id"`

	// OverallScore is the composite score in [0,1].
	OverallScore float64 `json:"overall_score"`

	// FieldCompletenessScore reflects how complete the topic's fields
	// are relative to the domain's minimums.
	FieldCompletenessScore float64 `json:"field_completeness_score"`

	// ContentAccuracyScore reflects how well references agree with the
	// topic's content.
	ContentAccuracyScore float64 `json:"content_accuracy_score"`

	// ReferenceCoverageScore reflects how many references support the
	// topic, log-scaled to avoid saturation.
	ReferenceCoverageScore float64 `json:"reference_coverage_score"`

	// Gaps are the detected deficiencies, ordered by priority then
	// confidence.
	Gaps []ContentGap `json:"gaps"`

	// MatchedReferences are the ranked references the scores were
	// computed from.
	MatchedReferences []MatchedReference `json:"matched_references"`

	// ValidatedAt is when the run completed.
	ValidatedAt time.Time `json:"validated_at"`
}
