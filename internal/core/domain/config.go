package domain

import (
	"fmt"
	"math"
)

// weightSumTolerance absorbs float rounding when checking that weight
// sets sum to 1.
const weightSumTolerance = 1e-6

// FieldWeights maps topic fields to their relative composition weights.
// Weights are positive reals that must sum to 1.
type FieldWeights map[FieldName]float64

// ScoringConfig holds every tunable of the ranker and the validation
// scorer. All values are validated eagerly at configuration-load time;
// services assume a valid config and never re-check on the hot path.
type ScoringConfig struct {
	// BaseWeight and TrustWeight combine similarity with trust:
	// final = similarity * (BaseWeight + TrustWeight*trust).
	// They must sum to 1, which bounds the trust-driven boost or penalty
	// to the TrustWeight fraction of the raw similarity.
	BaseWeight  float64
	TrustWeight float64

	// SourceThresholds is the minimum raw similarity a hit must reach,
	// per source type. Book-grade sources get a lower bar than
	// note-grade, reflecting their higher prior reliability.
	SourceThresholds map[SourceType]float64

	// AccurateBound and InaccurateBound split per-reference similarity
	// into accuracy buckets: accurate at or above AccurateBound,
	// inaccurate below InaccurateBound, needs-improvement between.
	AccurateBound   float64
	InaccurateBound float64

	// Bucket values used when averaging the accuracy classification.
	AccurateValue         float64
	NeedsImprovementValue float64
	InaccurateValue       float64

	// HighBand and MediumBand are the similarity cutoffs for counting a
	// reference as high- or medium-quality coverage.
	HighBand   float64
	MediumBand float64

	// HighWeight and MediumWeight scale the log2 coverage terms.
	HighWeight   float64
	MediumWeight float64

	// Component weights of the overall score. Must sum to 1.
	CompletenessWeight float64
	AccuracyWeight     float64
	CoverageWeight     float64

	// PartialCap is the completeness score a field earns exactly at the
	// domain minimum; the remainder up to 1.0 accrues beyond it.
	PartialCap float64

	// NeutralScore is used for accuracy and coverage when no references
	// matched: absence of evidence is not evidence of inaccuracy.
	NeutralScore float64
}

// ChunkingConfig holds the document chunker tunables.
type ChunkingConfig struct {
	// SizeThreshold is the maximum chunk length in runes. Documents at
	// or below it are indexed as a single chunk.
	SizeThreshold int

	// Overlap is the number of runes consecutive chunks share.
	Overlap int
}

// DomainRules holds the per-domain field minimums the scorer reads.
// Thresholds are always looked up from here, never hard-coded per call.
type DomainRules struct {
	// MinDefinitionLen is the minimum definition length in runes.
	MinDefinitionLen int

	// MinLeadLen is the minimum lead length in runes.
	MinLeadLen int

	// MinKeywords is the minimum keyword count.
	MinKeywords int

	// MinDepthLen is the minimum combined definition+lead length before
	// the insufficient-depth detector triggers.
	MinDepthLen int

	// RequireExample enables the missing-example detector.
	RequireExample bool
}

// Config is the immutable engine configuration. It is consumed, not
// owned, by the engine: callers construct it (typically from a TOML
// file), validate it once, and pass it in.
type Config struct {
	// FieldWeights drive the weighted text composer. Must sum to 1.
	FieldWeights FieldWeights

	// CompositionSlots is the total repetition budget the field weights
	// are mapped onto.
	CompositionSlots int

	// Scoring holds ranker and scorer tunables.
	Scoring ScoringConfig

	// Chunking holds document chunker tunables.
	Chunking ChunkingConfig

	// Rules holds per-domain field minimums. Domains without an entry
	// fall back to the DomainGeneral rules.
	Rules map[KnowledgeDomain]DomainRules

	// TopK is the default number of references a ranking returns.
	TopK int

	// SnippetLength is the display truncation for matched snippets,
	// in runes.
	SnippetLength int
}

// DefaultConfig returns the documented default configuration.
func DefaultConfig() Config {
	return Config{
		FieldWeights: FieldWeights{
			FieldDefinition: 0.35,
			FieldLead:       0.25,
			FieldKeywords:   0.25,
			FieldTags:       0.10,
			FieldMnemonic:   0.05,
		},
		CompositionSlots: 9,
		Scoring: ScoringConfig{
			BaseWeight:  0.7,
			TrustWeight: 0.3,
			SourceThresholds: map[SourceType]float64{
				SourceTypeBook: 0.55,
				SourceTypeWeb:  0.65,
				SourceTypeNote: 0.70,
			},
			AccurateBound:         0.8,
			InaccurateBound:       0.6,
			AccurateValue:         1.0,
			NeedsImprovementValue: 0.7,
			InaccurateValue:       0.3,
			HighBand:              0.80,
			MediumBand:            0.65,
			HighWeight:            0.35,
			MediumWeight:          0.15,
			CompletenessWeight:    0.3,
			AccuracyWeight:        0.4,
			CoverageWeight:        0.3,
			PartialCap:            0.7,
			NeutralScore:          0.5,
		},
		Chunking: ChunkingConfig{
			SizeThreshold: 5000,
			Overlap:       500,
		},
		Rules: map[KnowledgeDomain]DomainRules{
			DomainLanguage: {MinDefinitionLen: 30, MinLeadLen: 10, MinKeywords: 2, MinDepthLen: 80, RequireExample: true},
			DomainScience:  {MinDefinitionLen: 60, MinLeadLen: 15, MinKeywords: 3, MinDepthLen: 150, RequireExample: false},
			DomainHistory:  {MinDefinitionLen: 50, MinLeadLen: 15, MinKeywords: 3, MinDepthLen: 120, RequireExample: false},
			DomainLaw:      {MinDefinitionLen: 80, MinLeadLen: 20, MinKeywords: 3, MinDepthLen: 200, RequireExample: true},
			DomainMedicine: {MinDefinitionLen: 60, MinLeadLen: 15, MinKeywords: 3, MinDepthLen: 150, RequireExample: false},
			DomainGeneral:  {MinDefinitionLen: 40, MinLeadLen: 10, MinKeywords: 2, MinDepthLen: 100, RequireExample: false},
		},
		TopK:          5,
		SnippetLength: 300,
	}
}

// RulesFor returns the rules for a domain, falling back to the general
// rules when the domain has no entry.
func (c Config) RulesFor(d KnowledgeDomain) DomainRules {
	if r, ok := c.Rules[d]; ok {
		return r
	}
	return c.Rules[DomainGeneral]
}

// Validate checks the configuration eagerly. Every returned error wraps
// ErrInvalidConfig so callers can detect the class with errors.Is.
func (c Config) Validate() error {
	if len(c.FieldWeights) == 0 {
		return fmt.Errorf("%w: field weights are empty", ErrInvalidConfig)
	}
	sum := 0.0
	for f, w := range c.FieldWeights {
		switch f {
		case FieldDefinition, FieldLead, FieldKeywords, FieldTags, FieldMnemonic:
		default:
			return fmt.Errorf("%w: unknown field %q in weights", ErrInvalidConfig, f)
		}
		if w <= 0 {
			return fmt.Errorf("%w: weight for %q must be positive, got %v", ErrInvalidConfig, f, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("%w: field weights sum to %v, want 1", ErrInvalidConfig, sum)
	}
	if c.CompositionSlots < len(c.FieldWeights) {
		return fmt.Errorf("%w: composition slots %d cannot cover %d weighted fields",
			ErrInvalidConfig, c.CompositionSlots, len(c.FieldWeights))
	}

	s := c.Scoring
	if math.Abs(s.BaseWeight+s.TrustWeight-1.0) > weightSumTolerance {
		return fmt.Errorf("%w: base weight %v + trust weight %v must sum to 1",
			ErrInvalidConfig, s.BaseWeight, s.TrustWeight)
	}
	if s.BaseWeight < 0 || s.TrustWeight < 0 {
		return fmt.Errorf("%w: base/trust weights must be non-negative", ErrInvalidConfig)
	}
	if len(s.SourceThresholds) == 0 {
		return fmt.Errorf("%w: source thresholds are empty", ErrInvalidConfig)
	}
	for st, th := range s.SourceThresholds {
		if !st.IsValid() {
			return fmt.Errorf("%w: unknown source type %q in thresholds", ErrInvalidConfig, st)
		}
		if th < 0 || th > 1 {
			return fmt.Errorf("%w: threshold for %q is %v, want [0,1]", ErrInvalidConfig, st, th)
		}
	}
	for _, st := range []SourceType{SourceTypeBook, SourceTypeNote, SourceTypeWeb} {
		if _, ok := s.SourceThresholds[st]; !ok {
			return fmt.Errorf("%w: missing similarity threshold for source type %q", ErrInvalidConfig, st)
		}
	}
	for name, v := range map[string]float64{
		"accurate bound":          s.AccurateBound,
		"inaccurate bound":        s.InaccurateBound,
		"accurate value":          s.AccurateValue,
		"needs-improvement value": s.NeedsImprovementValue,
		"inaccurate value":        s.InaccurateValue,
		"high band":               s.HighBand,
		"medium band":             s.MediumBand,
		"partial cap":             s.PartialCap,
		"neutral score":           s.NeutralScore,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s is %v, want [0,1]", ErrInvalidConfig, name, v)
		}
	}
	if s.InaccurateBound > s.AccurateBound {
		return fmt.Errorf("%w: inaccurate bound %v exceeds accurate bound %v",
			ErrInvalidConfig, s.InaccurateBound, s.AccurateBound)
	}
	if s.MediumBand > s.HighBand {
		return fmt.Errorf("%w: medium band %v exceeds high band %v",
			ErrInvalidConfig, s.MediumBand, s.HighBand)
	}
	if s.HighWeight < 0 || s.MediumWeight < 0 {
		return fmt.Errorf("%w: coverage weights must be non-negative", ErrInvalidConfig)
	}
	if math.Abs(s.CompletenessWeight+s.AccuracyWeight+s.CoverageWeight-1.0) > weightSumTolerance {
		return fmt.Errorf("%w: component weights sum to %v, want 1",
			ErrInvalidConfig, s.CompletenessWeight+s.AccuracyWeight+s.CoverageWeight)
	}

	if c.Chunking.SizeThreshold <= 0 {
		return fmt.Errorf("%w: chunk size threshold must be positive", ErrInvalidConfig)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.SizeThreshold {
		return fmt.Errorf("%w: chunk overlap %d must be in [0, size threshold)",
			ErrInvalidConfig, c.Chunking.Overlap)
	}

	if len(c.Rules) == 0 {
		return fmt.Errorf("%w: domain rules are empty", ErrInvalidConfig)
	}
	if _, ok := c.Rules[DomainGeneral]; !ok {
		return fmt.Errorf("%w: domain rules must include the %q fallback", ErrInvalidConfig, DomainGeneral)
	}
	for d, r := range c.Rules {
		if !d.IsValid() {
			return fmt.Errorf("%w: unknown domain %q in rules", ErrInvalidConfig, d)
		}
		if r.MinDefinitionLen <= 0 || r.MinLeadLen <= 0 || r.MinKeywords <= 0 || r.MinDepthLen <= 0 {
			return fmt.Errorf("%w: rules for %q must have positive minimums", ErrInvalidConfig, d)
		}
	}

	if c.TopK <= 0 {
		return fmt.Errorf("%w: top-k must be positive", ErrInvalidConfig)
	}
	if c.SnippetLength <= 0 {
		return fmt.Errorf("%w: snippet length must be positive", ErrInvalidConfig)
	}
	return nil
}
