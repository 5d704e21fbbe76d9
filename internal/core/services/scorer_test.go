package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/notecheck/internal/core/domain"
)

func bookMatch(id string, similarity float64) domain.MatchedReference {
	return domain.MatchedReference{
		ReferenceID:     id,
		SourceType:      domain.SourceTypeBook,
		Domain:          domain.DomainLanguage,
		TrustScore:      1.0,
		SimilarityScore: similarity,
		FinalScore:      similarity,
		RelevantSnippet: "snippet from " + id,
	}
}

func TestValidateRejectsBadTopic(t *testing.T) {
	s := NewScorer(domain.DefaultConfig())

	_, err := s.Validate(domain.Topic{}, nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = s.Validate(domain.Topic{ID: "t-1", Domain: "astrology"}, nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestGradedScore(t *testing.T) {
	tests := []struct {
		name    string
		length  int
		minimum int
		want    float64
	}{
		{"empty", 0, 40, 0},
		{"half of minimum", 20, 40, 0.35},
		{"exactly minimum", 40, 40, 0.7},
		{"halfway past minimum", 60, 40, 0.85},
		{"double the minimum", 80, 40, 1.0},
		{"beyond double caps at one", 200, 40, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, gradedScore(tt.length, tt.minimum, 0.7), 1e-9)
		})
	}
}

func TestFieldCompletenessWeighted(t *testing.T) {
	s := NewScorer(domain.DefaultConfig())

	// Language rules: definition 30, lead 10, keywords 2.
	topic := domain.Topic{
		ID:       "t-1",
		Domain:   domain.DomainLanguage,
		Lead:     strings.Repeat("l", 20), // double the minimum -> 1.0
		Keywords: []string{"a", "b", "c", "d"},
		Tags:     "grammar particles",
	}
	rules := domain.DefaultConfig().RulesFor(domain.DomainLanguage)

	got := s.fieldCompleteness(topic, rules)
	// definition 0, lead 1.0, keywords 1.0, tags 1.0, mnemonic 0:
	// 0.25 + 0.25 + 0.10 = 0.60
	assert.InDelta(t, 0.60, got, 1e-9)
}

func TestContentAccuracyBuckets(t *testing.T) {
	s := NewScorer(domain.DefaultConfig())

	matches := []domain.MatchedReference{
		bookMatch("doc-1", 0.90), // accurate -> 1.0
		bookMatch("doc-2", 0.75), // needs improvement -> 0.7
		bookMatch("doc-3", 0.55), // inaccurate -> 0.3
	}
	got := s.contentAccuracy(matches)
	assert.InDelta(t, (1.0+0.7+0.3)/3, got, 1e-9)
}

func TestContentAccuracyNeutralWithoutMatches(t *testing.T) {
	s := NewScorer(domain.DefaultConfig())
	assert.InDelta(t, 0.5, s.contentAccuracy(nil), 1e-9)
}

func TestReferenceCoverageLogScaled(t *testing.T) {
	s := NewScorer(domain.DefaultConfig())

	coverage := func(high int) float64 {
		matches := make([]domain.MatchedReference, high)
		for i := range matches {
			matches[i] = bookMatch("doc", 0.9)
		}
		return s.referenceCoverage(matches)
	}

	// One high match: 0.35*log2(2) = 0.35.
	assert.InDelta(t, 0.35, coverage(1), 1e-9)

	// Diminishing returns: the tenth reference adds less than the second.
	earlyGain := coverage(2) - coverage(1)
	lateGain := coverage(10) - coverage(9)
	assert.Less(t, lateGain, earlyGain)

	// Capped at 1.
	assert.LessOrEqual(t, coverage(100), 1.0)
}

func TestReferenceCoverageNeutralWithoutMatches(t *testing.T) {
	s := NewScorer(domain.DefaultConfig())
	assert.InDelta(t, 0.5, s.referenceCoverage(nil), 1e-9)
}

func TestReferenceCoverageBands(t *testing.T) {
	s := NewScorer(domain.DefaultConfig())

	matches := []domain.MatchedReference{
		bookMatch("doc-1", 0.85), // high
		bookMatch("doc-2", 0.70), // medium
		bookMatch("doc-3", 0.60), // below both bands
	}
	// 0.35*log2(2) + 0.15*log2(2) = 0.50.
	assert.InDelta(t, 0.50, s.referenceCoverage(matches), 1e-9)
}

func TestDetectMissingDefinition(t *testing.T) {
	s := NewScorer(domain.DefaultConfig())

	topic := domain.Topic{ID: "t-1", Lead: "has a lead", Domain: domain.DomainGeneral}
	matches := []domain.MatchedReference{bookMatch("doc-1", 0.9)}

	result, err := s.Validate(topic, matches)
	require.NoError(t, err)

	gap := findGap(result.Gaps, domain.GapMissingField, domain.FieldDefinition)
	require.NotNil(t, gap)
	assert.InDelta(t, 0.95, gap.Confidence, 1e-9)
	assert.Equal(t, "doc-1", gap.ReferenceID)
	assert.Equal(t, "snippet from doc-1", gap.SuggestedValue)
}

func TestDetectIncompleteDefinition(t *testing.T) {
	s := NewScorer(domain.DefaultConfig())

	// General minimum is 40 runes.
	topic := domain.Topic{ID: "t-1", Definition: "too short", Domain: domain.DomainGeneral}

	result, err := s.Validate(topic, nil)
	require.NoError(t, err)

	gap := findGap(result.Gaps, domain.GapIncompleteDefinition, domain.FieldDefinition)
	require.NotNil(t, gap)
	assert.Equal(t, "too short", gap.CurrentValue)
	assert.Contains(t, gap.Reasoning, "40")
}

func TestDetectMissingKeywords(t *testing.T) {
	s := NewScorer(domain.DefaultConfig())

	topic := domain.Topic{
		ID:         "t-1",
		Definition: strings.Repeat("d", 100),
		Domain:     domain.DomainScience, // minimum 3 keywords
		Keywords:   []string{"one", " "},
	}

	result, err := s.Validate(topic, nil)
	require.NoError(t, err)

	gap := findGap(result.Gaps, domain.GapMissingKeywords, domain.FieldKeywords)
	require.NotNil(t, gap)
	// Blank keywords do not count.
	assert.Contains(t, gap.Reasoning, "1 keywords")
}

func TestDetectInaccurateContent(t *testing.T) {
	s := NewScorer(domain.DefaultConfig())

	topic := domain.Topic{ID: "t-1", Definition: strings.Repeat("d", 100), Domain: domain.DomainGeneral}
	matches := []domain.MatchedReference{
		bookMatch("doc-good", 0.90),
		bookMatch("doc-bad", 0.40), // trusted but barely matching
	}

	result, err := s.Validate(topic, matches)
	require.NoError(t, err)

	gap := findGap(result.Gaps, domain.GapInaccurateContent, domain.FieldDefinition)
	require.NotNil(t, gap)
	assert.Equal(t, "doc-bad", gap.ReferenceID)
	// 0.5 + (0.6 - 0.4) = 0.7.
	assert.InDelta(t, 0.7, gap.Confidence, 1e-9)
}

func TestDetectInaccurateContentIgnoresLowTrust(t *testing.T) {
	s := NewScorer(domain.DefaultConfig())

	topic := domain.Topic{ID: "t-1", Definition: strings.Repeat("d", 100), Domain: domain.DomainGeneral}
	low := bookMatch("doc-low", 0.40)
	low.TrustScore = 0.6 // below the high-trust floor

	result, err := s.Validate(topic, []domain.MatchedReference{low})
	require.NoError(t, err)
	assert.Nil(t, findGap(result.Gaps, domain.GapInaccurateContent, domain.FieldDefinition))
}

func TestDetectOutdatedContent(t *testing.T) {
	s := NewScorer(domain.DefaultConfig())

	topic := domain.Topic{
		ID:         "t-1",
		Definition: "The regulation was last amended in 2019. " + strings.Repeat("d", 60),
		Domain:     domain.DomainLaw,
		Keywords:   []string{"a", "b", "c"},
	}
	best := bookMatch("doc-1", 0.9)
	best.RelevantSnippet = "The regulation was amended again in 2024."

	result, err := s.Validate(topic, []domain.MatchedReference{best})
	require.NoError(t, err)

	gap := findGap(result.Gaps, domain.GapOutdatedContent, domain.FieldDefinition)
	require.NotNil(t, gap)
	assert.Contains(t, gap.Reasoning, "2019")
	assert.Contains(t, gap.Reasoning, "2024")
}

func TestDetectOutdatedContentNoYears(t *testing.T) {
	s := NewScorer(domain.DefaultConfig())

	topic := domain.Topic{ID: "t-1", Definition: strings.Repeat("d", 100), Domain: domain.DomainGeneral}
	result, err := s.Validate(topic, []domain.MatchedReference{bookMatch("doc-1", 0.9)})
	require.NoError(t, err)
	assert.Nil(t, findGap(result.Gaps, domain.GapOutdatedContent, domain.FieldDefinition))
}

func TestDetectInsufficientDepth(t *testing.T) {
	s := NewScorer(domain.DefaultConfig())

	// General depth minimum is 100; definition of 50 with no lead.
	topic := domain.Topic{ID: "t-1", Definition: strings.Repeat("d", 50), Domain: domain.DomainGeneral}

	withEvidence, err := s.Validate(topic, []domain.MatchedReference{bookMatch("doc-1", 0.9)})
	require.NoError(t, err)
	gap := findGap(withEvidence.Gaps, domain.GapInsufficientDepth, domain.FieldDefinition)
	require.NotNil(t, gap)
	assert.Equal(t, "doc-1", gap.ReferenceID)

	// Without high-quality evidence there is nothing to deepen from.
	withoutEvidence, err := s.Validate(topic, []domain.MatchedReference{bookMatch("doc-1", 0.70)})
	require.NoError(t, err)
	assert.Nil(t, findGap(withoutEvidence.Gaps, domain.GapInsufficientDepth, domain.FieldDefinition))
}

func TestDetectMissingExample(t *testing.T) {
	s := NewScorer(domain.DefaultConfig())

	// Language requires an example.
	noExample := domain.Topic{ID: "t-1", Definition: strings.Repeat("d", 50), Domain: domain.DomainLanguage}
	result, err := s.Validate(noExample, nil)
	require.NoError(t, err)
	assert.NotNil(t, findGap(result.Gaps, domain.GapMissingExample, domain.FieldDefinition))

	// Korean example marker satisfies the requirement.
	withExample := noExample
	withExample.Definition += " 예: 사과를 먹었다"
	result, err = s.Validate(withExample, nil)
	require.NoError(t, err)
	assert.Nil(t, findGap(result.Gaps, domain.GapMissingExample, domain.FieldDefinition))

	// Science does not require examples.
	science := domain.Topic{ID: "t-2", Definition: strings.Repeat("d", 50), Domain: domain.DomainScience}
	result, err = s.Validate(science, nil)
	require.NoError(t, err)
	assert.Nil(t, findGap(result.Gaps, domain.GapMissingExample, domain.FieldDefinition))
}

func TestDetectInconsistentContent(t *testing.T) {
	s := NewScorer(domain.DefaultConfig())

	topic := domain.Topic{ID: "t-1", Definition: strings.Repeat("d", 100), Domain: domain.DomainGeneral}
	matches := []domain.MatchedReference{
		bookMatch("doc-agree", 0.90),
		bookMatch("doc-disagree", 0.40),
	}

	result, err := s.Validate(topic, matches)
	require.NoError(t, err)

	gap := findGap(result.Gaps, domain.GapInconsistentContent, domain.FieldDefinition)
	require.NotNil(t, gap)
	assert.Equal(t, "doc-disagree", gap.ReferenceID)
	assert.Equal(t, "snippet from doc-agree", gap.SuggestedValue)
}

func TestGapsOrderedByPriorityThenConfidence(t *testing.T) {
	s := NewScorer(domain.DefaultConfig())

	// Empty definition and lead, language domain: two high-priority
	// missing-field gaps plus lower-priority ones.
	topic := domain.Topic{ID: "t-1", Domain: domain.DomainLanguage, Keywords: []string{"only-one"}}

	result, err := s.Validate(topic, nil)
	require.NoError(t, err)
	require.NotEmpty(t, result.Gaps)

	for i := 1; i < len(result.Gaps); i++ {
		prev, cur := result.Gaps[i-1], result.Gaps[i]
		if prev.Type.Priority() == cur.Type.Priority() {
			assert.GreaterOrEqual(t, prev.Confidence, cur.Confidence)
		} else {
			assert.Less(t, prev.Type.Priority(), cur.Type.Priority())
		}
	}

	// The two missing-field gaps lead, definition (0.95) before lead (0.9).
	assert.Equal(t, domain.GapMissingField, result.Gaps[0].Type)
	assert.Equal(t, domain.FieldDefinition, result.Gaps[0].FieldName)
	assert.Equal(t, domain.GapMissingField, result.Gaps[1].Type)
	assert.Equal(t, domain.FieldLead, result.Gaps[1].FieldName)
}

func TestValidateIdempotent(t *testing.T) {
	s := NewScorer(domain.DefaultConfig())

	topic := domain.Topic{ID: "t-1", Definition: strings.Repeat("d", 50), Domain: domain.DomainGeneral}
	matches := []domain.MatchedReference{bookMatch("doc-1", 0.9), bookMatch("doc-2", 0.7)}

	first, err := s.Validate(topic, matches)
	require.NoError(t, err)
	second, err := s.Validate(topic, matches)
	require.NoError(t, err)

	assert.Equal(t, first.OverallScore, second.OverallScore)
	assert.Equal(t, first.Gaps, second.Gaps)
}

func TestValidateEmptyDefinitionScenario(t *testing.T) {
	s := NewScorer(domain.DefaultConfig())

	topic := domain.Topic{
		ID:       "t-1",
		Domain:   domain.DomainLanguage,
		Lead:     strings.Repeat("l", 20),
		Keywords: []string{"a", "b", "c", "d"},
		Tags:     "grammar particles",
	}
	matches := []domain.MatchedReference{
		bookMatch("doc-1", 0.90),
		bookMatch("doc-2", 0.75),
		bookMatch("doc-3", 0.65),
	}

	result, err := s.Validate(topic, matches)
	require.NoError(t, err)

	// Completeness: definition 0, lead/keywords/tags full, mnemonic 0.
	assert.InDelta(t, 0.60, result.FieldCompletenessScore, 1e-9)

	// Accuracy: buckets 1.0, 0.7, 0.7 -> 0.8.
	assert.InDelta(t, 0.80, result.ContentAccuracyScore, 1e-9)

	// Coverage: 1 high, 2 medium -> 0.35*log2(2)+0.15*log2(3).
	assert.InDelta(t, 0.587744, result.ReferenceCoverageScore, 1e-4)

	// Overall: 0.3*0.6 + 0.4*0.8 + 0.3*coverage.
	assert.InDelta(t, 0.676323, result.OverallScore, 1e-4)

	// The missing definition dominates the gap list.
	require.NotEmpty(t, result.Gaps)
	assert.Equal(t, domain.GapMissingField, result.Gaps[0].Type)
	assert.Equal(t, domain.FieldDefinition, result.Gaps[0].FieldName)
	assert.Equal(t, "doc-1", result.Gaps[0].ReferenceID)

	assert.Len(t, result.MatchedReferences, 3)
	assert.False(t, result.ValidatedAt.IsZero())
}

func findGap(gaps []domain.ContentGap, gapType domain.GapType, field domain.FieldName) *domain.ContentGap {
	for i := range gaps {
		if gaps[i].Type == gapType && gaps[i].FieldName == field {
			return &gaps[i]
		}
	}
	return nil
}
