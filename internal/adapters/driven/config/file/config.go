// Package file loads engine configuration from a TOML file. Every
// setting has a documented default; the file only needs to name the
// values it overrides. The loaded configuration is validated eagerly
// so services never see a bad tunable.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/notecheck/internal/core/domain"
)

// fileConfig mirrors the TOML layout. Pointer fields distinguish
// "absent" from zero so partial files overlay cleanly onto defaults.
type fileConfig struct {
	CompositionSlots *int               `toml:"composition_slots"`
	TopK             *int               `toml:"top_k"`
	SnippetLength    *int               `toml:"snippet_length"`
	FieldWeights     map[string]float64 `toml:"field_weights"`
	Scoring          *scoringConfig     `toml:"scoring"`
	Chunking         *chunkingConfig    `toml:"chunking"`
	Rules            map[string]rules   `toml:"rules"`
}

type scoringConfig struct {
	BaseWeight            *float64           `toml:"base_weight"`
	TrustWeight           *float64           `toml:"trust_weight"`
	SourceThresholds      map[string]float64 `toml:"source_thresholds"`
	AccurateBound         *float64           `toml:"accurate_bound"`
	InaccurateBound       *float64           `toml:"inaccurate_bound"`
	AccurateValue         *float64           `toml:"accurate_value"`
	NeedsImprovementValue *float64           `toml:"needs_improvement_value"`
	InaccurateValue       *float64           `toml:"inaccurate_value"`
	HighBand              *float64           `toml:"high_band"`
	MediumBand            *float64           `toml:"medium_band"`
	HighWeight            *float64           `toml:"high_weight"`
	MediumWeight          *float64           `toml:"medium_weight"`
	CompletenessWeight    *float64           `toml:"completeness_weight"`
	AccuracyWeight        *float64           `toml:"accuracy_weight"`
	CoverageWeight        *float64           `toml:"coverage_weight"`
	PartialCap            *float64           `toml:"partial_cap"`
	NeutralScore          *float64           `toml:"neutral_score"`
}

type chunkingConfig struct {
	SizeThreshold *int `toml:"size_threshold"`
	Overlap       *int `toml:"overlap"`
}

type rules struct {
	MinDefinitionLen *int  `toml:"min_definition_len"`
	MinLeadLen       *int  `toml:"min_lead_len"`
	MinKeywords      *int  `toml:"min_keywords"`
	MinDepthLen      *int  `toml:"min_depth_len"`
	RequireExample   *bool `toml:"require_example"`
}

// DefaultPath returns the default configuration file path,
// ~/.notecheck/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".notecheck", "config.toml"), nil
}

// Load reads configuration from the TOML file at path, overlaying it
// onto the defaults. A missing file yields the defaults. The result is
// validated before it is returned.
func Load(path string) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return domain.Config{}, fmt.Errorf("reading config: %w", err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return domain.Config{}, fmt.Errorf("%w: parsing %s: %v", domain.ErrInvalidConfig, path, err)
	}

	apply(&cfg, fc)

	if err := cfg.Validate(); err != nil {
		return domain.Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// apply overlays file values onto cfg. Only fields present in the file
// are touched.
func apply(cfg *domain.Config, fc fileConfig) {
	if fc.CompositionSlots != nil {
		cfg.CompositionSlots = *fc.CompositionSlots
	}
	if fc.TopK != nil {
		cfg.TopK = *fc.TopK
	}
	if fc.SnippetLength != nil {
		cfg.SnippetLength = *fc.SnippetLength
	}
	if len(fc.FieldWeights) > 0 {
		// A weight table replaces the defaults wholesale: weights must
		// sum to 1, so partial overrides would always fail validation.
		weights := make(domain.FieldWeights, len(fc.FieldWeights))
		for name, w := range fc.FieldWeights {
			weights[domain.FieldName(name)] = w
		}
		cfg.FieldWeights = weights
	}

	if fc.Scoring != nil {
		applyScoring(&cfg.Scoring, *fc.Scoring)
	}

	if fc.Chunking != nil {
		if fc.Chunking.SizeThreshold != nil {
			cfg.Chunking.SizeThreshold = *fc.Chunking.SizeThreshold
		}
		if fc.Chunking.Overlap != nil {
			cfg.Chunking.Overlap = *fc.Chunking.Overlap
		}
	}

	for name, r := range fc.Rules {
		d := domain.KnowledgeDomain(name)
		dr := cfg.Rules[d]
		if r.MinDefinitionLen != nil {
			dr.MinDefinitionLen = *r.MinDefinitionLen
		}
		if r.MinLeadLen != nil {
			dr.MinLeadLen = *r.MinLeadLen
		}
		if r.MinKeywords != nil {
			dr.MinKeywords = *r.MinKeywords
		}
		if r.MinDepthLen != nil {
			dr.MinDepthLen = *r.MinDepthLen
		}
		if r.RequireExample != nil {
			dr.RequireExample = *r.RequireExample
		}
		cfg.Rules[d] = dr
	}
}

func applyScoring(s *domain.ScoringConfig, fs scoringConfig) {
	setFloat := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	setFloat(&s.BaseWeight, fs.BaseWeight)
	setFloat(&s.TrustWeight, fs.TrustWeight)
	setFloat(&s.AccurateBound, fs.AccurateBound)
	setFloat(&s.InaccurateBound, fs.InaccurateBound)
	setFloat(&s.AccurateValue, fs.AccurateValue)
	setFloat(&s.NeedsImprovementValue, fs.NeedsImprovementValue)
	setFloat(&s.InaccurateValue, fs.InaccurateValue)
	setFloat(&s.HighBand, fs.HighBand)
	setFloat(&s.MediumBand, fs.MediumBand)
	setFloat(&s.HighWeight, fs.HighWeight)
	setFloat(&s.MediumWeight, fs.MediumWeight)
	setFloat(&s.CompletenessWeight, fs.CompletenessWeight)
	setFloat(&s.AccuracyWeight, fs.AccuracyWeight)
	setFloat(&s.CoverageWeight, fs.CoverageWeight)
	setFloat(&s.PartialCap, fs.PartialCap)
	setFloat(&s.NeutralScore, fs.NeutralScore)

	for name, th := range fs.SourceThresholds {
		s.SourceThresholds[domain.SourceType(name)] = th
	}
}
