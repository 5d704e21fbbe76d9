package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/notecheck/internal/core/domain"
	"github.com/custodia-labs/notecheck/internal/core/ports/driven"
	"github.com/custodia-labs/notecheck/internal/logger"
)

// overfetchFactor is how many extra chunks the ranker requests from the
// index to leave room for threshold filtering and per-document
// deduplication.
const overfetchFactor = 3

// Ranker turns a topic vector into an ordered list of matched
// references by querying the index and applying trust-adjusted scoring.
type Ranker struct {
	index   driven.VectorIndex
	scoring domain.ScoringConfig
	snippet int
}

// NewRanker creates a ranker from a validated configuration.
func NewRanker(index driven.VectorIndex, cfg domain.Config) *Ranker {
	return &Ranker{
		index:   index,
		scoring: cfg.Scoring,
		snippet: cfg.SnippetLength,
	}
}

// Rank queries the index with the topic vector and returns at most topK
// matched references, one per reference document, ordered by
// trust-adjusted score. An empty domainFilter matches all domains.
//
// An unreachable index surfaces as an error wrapping
// domain.ErrIndexUnavailable, never as an empty result.
func (r *Ranker) Rank(
	ctx context.Context, topicVector []float32, topK int, domainFilter domain.KnowledgeDomain,
) ([]domain.MatchedReference, error) {
	if r.index == nil {
		return nil, fmt.Errorf("%w: no index configured", domain.ErrIndexUnavailable)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top-k must be positive, got %d", domain.ErrInvalidInput, topK)
	}

	var filter *driven.QueryFilter
	if domainFilter != "" {
		filter = &driven.QueryFilter{Domain: domainFilter}
	}

	hits, err := r.index.Query(ctx, topicVector, topK*overfetchFactor, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %w", domain.ErrIndexUnavailable, err)
	}

	logger.Debug("Rank: %d raw hits for top-k %d", len(hits), topK)

	// One candidate per document, keeping the best-scoring chunk.
	best := make(map[string]domain.MatchedReference)
	for _, hit := range hits {
		similarity := clip01(hit.Similarity)

		trust := hit.Metadata.TrustScore
		if trust <= 0 {
			trust = hit.Metadata.SourceType.DefaultTrustScore()
		}

		threshold, ok := r.scoring.SourceThresholds[hit.Metadata.SourceType]
		if !ok {
			logger.Warn("Rank: no threshold for source type %q, skipping chunk %s",
				hit.Metadata.SourceType, hit.ChunkID)
			continue
		}
		if similarity < threshold {
			continue
		}

		final := similarity * (r.scoring.BaseWeight + r.scoring.TrustWeight*trust)

		if current, seen := best[hit.ParentID]; seen && current.FinalScore >= final {
			continue
		}
		best[hit.ParentID] = domain.MatchedReference{
			ReferenceID:     hit.ParentID,
			SourceType:      hit.Metadata.SourceType,
			Domain:          hit.Metadata.Domain,
			TrustScore:      trust,
			SimilarityScore: similarity,
			FinalScore:      final,
			RelevantSnippet: truncateRunes(hit.Text, r.snippet),
			ChunkIndex:      hit.Metadata.ChunkIndex,
		}
	}

	matches := make([]domain.MatchedReference, 0, len(best))
	for _, m := range best {
		matches = append(matches, m)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].FinalScore != matches[j].FinalScore {
			return matches[i].FinalScore > matches[j].FinalScore
		}
		if matches[i].TrustScore != matches[j].TrustScore {
			return matches[i].TrustScore > matches[j].TrustScore
		}
		return matches[i].ReferenceID < matches[j].ReferenceID
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}

	logger.Debug("Rank: %d matches after threshold + dedup", len(matches))
	return matches, nil
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// truncateRunes shortens s to at most limit runes for display.
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
