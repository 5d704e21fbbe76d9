package domain

// GapType identifies the kind of deficiency a gap detector found.
type GapType string

// Available gap types.
const (
	// GapMissingField indicates a required field is empty.
	GapMissingField GapType = "missing_field"

	// GapIncompleteDefinition indicates the definition is present but
	// below the domain's minimum length.
	GapIncompleteDefinition GapType = "incomplete_definition"

	// GapMissingKeywords indicates too few keywords for the domain.
	GapMissingKeywords GapType = "missing_keywords"

	// GapOutdatedContent indicates the topic references older material
	// than its best supporting reference.
	GapOutdatedContent GapType = "outdated_content"

	// GapInaccurateContent indicates a high-trust reference disagrees
	// with the topic's content.
	GapInaccurateContent GapType = "inaccurate_content"

	// GapInsufficientDepth indicates the topic is too shallow relative
	// to the evidence available for it.
	GapInsufficientDepth GapType = "insufficient_depth"

	// GapMissingExample indicates the domain expects a worked example
	// and none is present.
	GapMissingExample GapType = "missing_example"

	// GapInconsistentContent indicates high-trust references disagree
	// with each other about the topic.
	GapInconsistentContent GapType = "inconsistent_content"
)

// IsValid returns true if the gap type is recognised.
func (g GapType) IsValid() bool {
	switch g {
	case GapMissingField, GapIncompleteDefinition, GapMissingKeywords,
		GapOutdatedContent, GapInaccurateContent, GapInsufficientDepth,
		GapMissingExample, GapInconsistentContent:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (g GapType) String() string {
	return string(g)
}

// GapPriority orders gaps for presentation. Lower values sort first.
type GapPriority int

// Gap priorities.
const (
	PriorityHigh GapPriority = iota
	PriorityMedium
	PriorityLow
)

// String returns the string representation.
func (p GapPriority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return unknownDescription
	}
}

// Priority maps a gap type to its presentation priority. This is the
// single conversion point; adding a gap type without extending this
// switch leaves it at the explicit default below, which tests guard
// against via IsValid.
func (g GapType) Priority() GapPriority {
	switch g {
	case GapMissingField, GapInaccurateContent:
		return PriorityHigh
	case GapIncompleteDefinition, GapMissingKeywords, GapOutdatedContent, GapInconsistentContent:
		return PriorityMedium
	case GapInsufficientDepth, GapMissingExample:
		return PriorityLow
	default:
		return PriorityLow
	}
}

// ContentGap is a typed, evidence-backed deficiency detected in a topic
// relative to its matched references. The engine supplies the triggering
// evidence; turning it into user-facing wording is the caller's text
// generator's job.
type ContentGap struct {
	// Type is the kind of deficiency.
	Type GapType `json:"type"`

	// FieldName is the affected topic field, when field-specific.
	FieldName FieldName `json:"field_name,omitempty"`

	// CurrentValue is the field's value at detection time (may be empty).
	CurrentValue string `json:"current_value,omitempty"`

	// SuggestedValue is a pointer for the external text generator. The
	// engine fills in a reference snippet when one supports the gap, and
	// leaves it empty otherwise.
	SuggestedValue string `json:"suggested_value,omitempty"`

	// Confidence is how certain the detector is, in [0,1].
	Confidence float64 `json:"confidence"`

	// ReferenceID is the supporting reference document, when one exists.
	ReferenceID string `json:"reference_id,omitempty"`

	// Reasoning is a short evidence string explaining the trigger.
	Reasoning string `json:"reasoning"`
}
