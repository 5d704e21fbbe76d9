package services

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/notecheck/internal/core/domain"
	"github.com/custodia-labs/notecheck/internal/logger"
)

// yearPattern matches four-digit years between 1800 and 2099, used by
// the outdated-content detector.
var yearPattern = regexp.MustCompile(`\b(1[89]\d{2}|20\d{2})\b`)

// exampleMarkers are the tokens that satisfy a domain's example
// requirement. Covers English and Korean note conventions.
var exampleMarkers = []string{"e.g.", "for example", "example:", "ex)", "예:", "예)", "예시", "예를 들어"}

// highTrust is the trust floor a reference must meet before its
// disagreement with the topic counts as evidence of inaccuracy.
const highTrust = 0.8

// Scorer converts a topic and its ranked reference set into a
// ValidationResult: three component scores, a composite, and typed
// content gaps. It is a pure function of its inputs and the
// configuration it was built with.
type Scorer struct {
	weights domain.FieldWeights
	scoring domain.ScoringConfig
	cfg     domain.Config
}

// NewScorer creates a scorer from a validated configuration.
func NewScorer(cfg domain.Config) *Scorer {
	return &Scorer{
		weights: cfg.FieldWeights,
		scoring: cfg.Scoring,
		cfg:     cfg,
	}
}

// Validate scores the topic against its matched references.
//
// Completeness and gap detection run even when no references matched;
// accuracy and coverage then default to the configured neutral score,
// since "no evidence" is not evidence of inaccuracy.
func (s *Scorer) Validate(topic domain.Topic, matches []domain.MatchedReference) (*domain.ValidationResult, error) {
	if topic.ID == "" {
		return nil, fmt.Errorf("%w: topic has no ID", domain.ErrInvalidInput)
	}
	if topic.Domain != "" && !topic.Domain.IsValid() {
		return nil, fmt.Errorf("%w: unknown domain %q", domain.ErrInvalidInput, topic.Domain)
	}

	rules := s.cfg.RulesFor(topic.Domain)

	completeness := s.fieldCompleteness(topic, rules)
	accuracy := s.contentAccuracy(matches)
	coverage := s.referenceCoverage(matches)

	overall := clip01(s.scoring.CompletenessWeight*completeness +
		s.scoring.AccuracyWeight*accuracy +
		s.scoring.CoverageWeight*coverage)

	gaps := s.detectGaps(topic, matches, rules)

	logger.Debug("Validate %s: completeness=%.3f accuracy=%.3f coverage=%.3f overall=%.3f gaps=%d",
		topic.ID, completeness, accuracy, coverage, overall, len(gaps))

	return &domain.ValidationResult{
		TopicID:                topic.ID,
		OverallScore:           overall,
		FieldCompletenessScore: completeness,
		ContentAccuracyScore:   accuracy,
		ReferenceCoverageScore: coverage,
		Gaps:                   gaps,
		MatchedReferences:      matches,
		ValidatedAt:            time.Now().UTC(),
	}, nil
}

// fieldCompleteness is the field-weight-weighted mean of per-field
// graduated scores.
func (s *Scorer) fieldCompleteness(topic domain.Topic, rules domain.DomainRules) float64 {
	var total, weightSum float64

	for _, field := range domain.FieldOrder {
		weight, ok := s.weights[field]
		if !ok {
			continue
		}

		var score float64
		switch field {
		case domain.FieldDefinition:
			score = gradedScore(runeLen(topic.Definition), rules.MinDefinitionLen, s.scoring.PartialCap)
		case domain.FieldLead:
			score = gradedScore(runeLen(topic.Lead), rules.MinLeadLen, s.scoring.PartialCap)
		case domain.FieldKeywords:
			score = gradedScore(countKeywords(topic.Keywords), rules.MinKeywords, s.scoring.PartialCap)
		default:
			// Tags and mnemonic have no domain minimum; presence is
			// what matters.
			score = gradedScore(runeLen(topic.FieldText(field)), 1, s.scoring.PartialCap)
		}

		total += weight * score
		weightSum += weight
	}

	if weightSum == 0 {
		return 0
	}
	return clip01(total / weightSum)
}

// gradedScore maps a length against a minimum to a graduated score:
// below the minimum the field earns a proportional share of partialCap,
// at the minimum exactly partialCap, and the remainder up to 1.0
// accrues over a second interval of the same size.
func gradedScore(length, minimum int, partialCap float64) float64 {
	if length <= 0 {
		return 0
	}
	if minimum <= 0 {
		minimum = 1
	}
	if length < minimum {
		return float64(length) / float64(minimum) * partialCap
	}
	extra := float64(length-minimum) / float64(minimum)
	if extra > 1 {
		extra = 1
	}
	return clip01(partialCap + extra*(1-partialCap))
}

// contentAccuracy classifies every matched reference into an accuracy
// bucket and averages the bucket values. Averaging classifications
// rather than raw similarities keeps broad coverage from saturating the
// score.
func (s *Scorer) contentAccuracy(matches []domain.MatchedReference) float64 {
	if len(matches) == 0 {
		return s.scoring.NeutralScore
	}

	var sum float64
	for _, m := range matches {
		sum += s.accuracyBucket(m.SimilarityScore)
	}
	return clip01(sum / float64(len(matches)))
}

func (s *Scorer) accuracyBucket(similarity float64) float64 {
	switch {
	case similarity >= s.scoring.AccurateBound:
		return s.scoring.AccurateValue
	case similarity < s.scoring.InaccurateBound:
		return s.scoring.InaccurateValue
	default:
		return s.scoring.NeedsImprovementValue
	}
}

// referenceCoverage counts high- and medium-quality references and
// combines them with logarithmic scaling, so each additional reference
// contributes diminishing marginal coverage.
func (s *Scorer) referenceCoverage(matches []domain.MatchedReference) float64 {
	if len(matches) == 0 {
		return s.scoring.NeutralScore
	}

	var high, medium int
	for _, m := range matches {
		switch {
		case m.SimilarityScore >= s.scoring.HighBand:
			high++
		case m.SimilarityScore >= s.scoring.MediumBand:
			medium++
		}
	}

	coverage := s.scoring.HighWeight*math.Log2(1+float64(high)) +
		s.scoring.MediumWeight*math.Log2(1+float64(medium))
	if coverage > 1 {
		coverage = 1
	}
	return coverage
}

// gapDetector is a pure predicate producing zero or one gap.
type gapDetector func(topic domain.Topic, matches []domain.MatchedReference, rules domain.DomainRules) *domain.ContentGap

// detectGaps runs every detector independently and concatenates their
// outputs, then orders gaps by priority and confidence.
func (s *Scorer) detectGaps(
	topic domain.Topic, matches []domain.MatchedReference, rules domain.DomainRules,
) []domain.ContentGap {
	detectors := []gapDetector{
		s.detectMissingDefinition,
		s.detectMissingLead,
		s.detectIncompleteDefinition,
		s.detectMissingKeywords,
		s.detectInaccurateContent,
		s.detectOutdatedContent,
		s.detectInsufficientDepth,
		s.detectMissingExample,
		s.detectInconsistentContent,
	}

	gaps := make([]domain.ContentGap, 0, len(detectors))
	for _, detect := range detectors {
		if gap := detect(topic, matches, rules); gap != nil {
			gaps = append(gaps, *gap)
		}
	}

	sort.SliceStable(gaps, func(i, j int) bool {
		pi, pj := gaps[i].Type.Priority(), gaps[j].Type.Priority()
		if pi != pj {
			return pi < pj
		}
		return gaps[i].Confidence > gaps[j].Confidence
	})

	return gaps
}

func (s *Scorer) detectMissingDefinition(
	topic domain.Topic, matches []domain.MatchedReference, _ domain.DomainRules,
) *domain.ContentGap {
	if strings.TrimSpace(topic.Definition) != "" {
		return nil
	}
	gap := &domain.ContentGap{
		Type:       domain.GapMissingField,
		FieldName:  domain.FieldDefinition,
		Confidence: 0.95,
		Reasoning:  "definition field is empty",
	}
	attachBestEvidence(gap, matches)
	return gap
}

func (s *Scorer) detectMissingLead(
	topic domain.Topic, matches []domain.MatchedReference, _ domain.DomainRules,
) *domain.ContentGap {
	if strings.TrimSpace(topic.Lead) != "" {
		return nil
	}
	gap := &domain.ContentGap{
		Type:       domain.GapMissingField,
		FieldName:  domain.FieldLead,
		Confidence: 0.9,
		Reasoning:  "lead field is empty",
	}
	attachBestEvidence(gap, matches)
	return gap
}

func (s *Scorer) detectIncompleteDefinition(
	topic domain.Topic, matches []domain.MatchedReference, rules domain.DomainRules,
) *domain.ContentGap {
	length := runeLen(topic.Definition)
	if length == 0 || length >= rules.MinDefinitionLen {
		return nil
	}
	gap := &domain.ContentGap{
		Type:         domain.GapIncompleteDefinition,
		FieldName:    domain.FieldDefinition,
		CurrentValue: topic.Definition,
		Confidence:   0.8,
		Reasoning: fmt.Sprintf("definition is %d characters, domain minimum is %d",
			length, rules.MinDefinitionLen),
	}
	attachBestEvidence(gap, matches)
	return gap
}

func (s *Scorer) detectMissingKeywords(
	topic domain.Topic, _ []domain.MatchedReference, rules domain.DomainRules,
) *domain.ContentGap {
	count := countKeywords(topic.Keywords)
	if count >= rules.MinKeywords {
		return nil
	}
	return &domain.ContentGap{
		Type:         domain.GapMissingKeywords,
		FieldName:    domain.FieldKeywords,
		CurrentValue: strings.Join(topic.Keywords, ", "),
		Confidence:   0.85,
		Reasoning:    fmt.Sprintf("topic has %d keywords, domain minimum is %d", count, rules.MinKeywords),
	}
}

func (s *Scorer) detectInaccurateContent(
	topic domain.Topic, matches []domain.MatchedReference, _ domain.DomainRules,
) *domain.ContentGap {
	var worst *domain.MatchedReference
	for i := range matches {
		m := &matches[i]
		if m.TrustScore < highTrust || m.SimilarityScore >= s.scoring.InaccurateBound {
			continue
		}
		if worst == nil || m.SimilarityScore < worst.SimilarityScore {
			worst = m
		}
	}
	if worst == nil {
		return nil
	}
	return &domain.ContentGap{
		Type:           domain.GapInaccurateContent,
		FieldName:      domain.FieldDefinition,
		CurrentValue:   topic.Definition,
		SuggestedValue: worst.RelevantSnippet,
		Confidence:     clip01(0.5 + (s.scoring.InaccurateBound - worst.SimilarityScore)),
		ReferenceID:    worst.ReferenceID,
		Reasoning: fmt.Sprintf("trusted reference %s (trust %.2f) only reaches similarity %.2f",
			worst.ReferenceID, worst.TrustScore, worst.SimilarityScore),
	}
}

func (s *Scorer) detectOutdatedContent(
	topic domain.Topic, matches []domain.MatchedReference, _ domain.DomainRules,
) *domain.ContentGap {
	best := bestMatch(matches)
	if best == nil {
		return nil
	}

	topicYear := latestYear(topic.Definition + " " + topic.Lead + " " + topic.Tags)
	refYear := latestYear(best.RelevantSnippet)
	if topicYear == 0 || refYear == 0 || refYear <= topicYear {
		return nil
	}

	return &domain.ContentGap{
		Type:           domain.GapOutdatedContent,
		FieldName:      domain.FieldDefinition,
		CurrentValue:   topic.Definition,
		SuggestedValue: best.RelevantSnippet,
		Confidence:     0.6,
		ReferenceID:    best.ReferenceID,
		Reasoning:      fmt.Sprintf("topic cites year %d, reference %s cites %d", topicYear, best.ReferenceID, refYear),
	}
}

func (s *Scorer) detectInsufficientDepth(
	topic domain.Topic, matches []domain.MatchedReference, rules domain.DomainRules,
) *domain.ContentGap {
	if strings.TrimSpace(topic.Definition) == "" {
		return nil
	}
	depth := runeLen(topic.Definition) + runeLen(topic.Lead)
	if depth >= rules.MinDepthLen {
		return nil
	}

	var evidence *domain.MatchedReference
	for i := range matches {
		if matches[i].SimilarityScore >= s.scoring.HighBand {
			evidence = &matches[i]
			break
		}
	}
	if evidence == nil {
		return nil
	}

	return &domain.ContentGap{
		Type:           domain.GapInsufficientDepth,
		FieldName:      domain.FieldDefinition,
		CurrentValue:   topic.Definition,
		SuggestedValue: evidence.RelevantSnippet,
		Confidence:     0.7,
		ReferenceID:    evidence.ReferenceID,
		Reasoning: fmt.Sprintf("topic text is %d characters against a domain depth minimum of %d, with high-quality reference material available",
			depth, rules.MinDepthLen),
	}
}

func (s *Scorer) detectMissingExample(
	topic domain.Topic, _ []domain.MatchedReference, rules domain.DomainRules,
) *domain.ContentGap {
	if !rules.RequireExample {
		return nil
	}
	haystack := strings.ToLower(topic.Definition + "\n" + topic.Lead + "\n" + topic.Mnemonic)
	for _, marker := range exampleMarkers {
		if strings.Contains(haystack, marker) {
			return nil
		}
	}
	return &domain.ContentGap{
		Type:         domain.GapMissingExample,
		FieldName:    domain.FieldDefinition,
		CurrentValue: topic.Definition,
		Confidence:   0.65,
		Reasoning:    "domain expects a worked example and none was found",
	}
}

func (s *Scorer) detectInconsistentContent(
	_ domain.Topic, matches []domain.MatchedReference, _ domain.DomainRules,
) *domain.ContentGap {
	var agree, disagree *domain.MatchedReference
	for i := range matches {
		m := &matches[i]
		if m.TrustScore < highTrust {
			continue
		}
		if m.SimilarityScore >= s.scoring.AccurateBound && agree == nil {
			agree = m
		}
		if m.SimilarityScore < s.scoring.InaccurateBound && disagree == nil {
			disagree = m
		}
	}
	if agree == nil || disagree == nil {
		return nil
	}
	return &domain.ContentGap{
		Type:           domain.GapInconsistentContent,
		FieldName:      domain.FieldDefinition,
		SuggestedValue: agree.RelevantSnippet,
		Confidence:     0.6,
		ReferenceID:    disagree.ReferenceID,
		Reasoning: fmt.Sprintf("trusted references disagree: %s matches at %.2f while %s matches at %.2f",
			agree.ReferenceID, agree.SimilarityScore, disagree.ReferenceID, disagree.SimilarityScore),
	}
}

// attachBestEvidence points a gap at the best-matching reference, when
// one exists, so the external text generator has something to work from.
func attachBestEvidence(gap *domain.ContentGap, matches []domain.MatchedReference) {
	best := bestMatch(matches)
	if best == nil {
		return
	}
	gap.ReferenceID = best.ReferenceID
	gap.SuggestedValue = best.RelevantSnippet
}

// bestMatch returns the highest-ranked match. Matches arrive ordered by
// final score, so the first one wins.
func bestMatch(matches []domain.MatchedReference) *domain.MatchedReference {
	if len(matches) == 0 {
		return nil
	}
	return &matches[0]
}

func latestYear(text string) int {
	latest := 0
	for _, token := range yearPattern.FindAllString(text, -1) {
		if y, err := strconv.Atoi(token); err == nil && y > latest {
			latest = y
		}
	}
	return latest
}

func countKeywords(keywords []string) int {
	count := 0
	for _, k := range keywords {
		if strings.TrimSpace(k) != "" {
			count++
		}
	}
	return count
}

func runeLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}
