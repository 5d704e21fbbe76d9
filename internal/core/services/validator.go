package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/notecheck/internal/core/domain"
	"github.com/custodia-labs/notecheck/internal/core/ports/driven"
	"github.com/custodia-labs/notecheck/internal/core/ports/driving"
	"github.com/custodia-labs/notecheck/internal/logger"
)

// Ensure Validator implements the interface.
var _ driving.ValidationService = (*Validator)(nil)

// maxConcurrentValidations bounds the batch fan-out. Each validation is
// independent, so the limit only protects the embedding backend from
// burst load.
const maxConcurrentValidations = 8

// Validator is the pipeline facade: compose, embed, rank, score.
type Validator struct {
	composer  *Composer
	ranker    *Ranker
	scorer    *Scorer
	embedding driven.EmbeddingService
	cache     driven.EmbeddingCache
	topK      int
}

// NewValidator creates a validator from a validated configuration.
// The cache is optional (can be nil).
func NewValidator(
	embedding driven.EmbeddingService,
	index driven.VectorIndex,
	cache driven.EmbeddingCache,
	cfg domain.Config,
) *Validator {
	return &Validator{
		composer:  NewComposer(cfg),
		ranker:    NewRanker(index, cfg),
		scorer:    NewScorer(cfg),
		embedding: embedding,
		cache:     cache,
		topK:      cfg.TopK,
	}
}

// ValidateTopic runs the full pipeline for one topic.
func (v *Validator) ValidateTopic(ctx context.Context, topic domain.Topic) (*domain.ValidationResult, error) {
	if topic.ID == "" {
		return nil, fmt.Errorf("%w: topic has no ID", domain.ErrInvalidInput)
	}
	if topic.Domain != "" && !topic.Domain.IsValid() {
		return nil, fmt.Errorf("%w: unknown domain %q", domain.ErrInvalidInput, topic.Domain)
	}

	logger.Section("Validate Topic")
	logger.Debug("Topic %s (%s)", topic.ID, topic.Domain)

	composed, err := v.composer.Compose(topic)
	if err != nil {
		return nil, err
	}

	vector, err := v.topicVector(ctx, composed)
	if err != nil {
		return nil, err
	}

	matches, err := v.ranker.Rank(ctx, vector, v.topK, topic.Domain)
	if err != nil {
		return nil, err
	}

	return v.scorer.Validate(topic, matches)
}

// ValidateTopics validates many topics concurrently. Each topic's
// pipeline touches only read-only shared state, so results are
// independent; they are returned in input order.
func (v *Validator) ValidateTopics(ctx context.Context, topics []domain.Topic) ([]*domain.ValidationResult, error) {
	results := make([]*domain.ValidationResult, len(topics))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentValidations)

	for i, topic := range topics {
		i, topic := i, topic
		g.Go(func() error {
			result, err := v.ValidateTopic(ctx, topic)
			if err != nil {
				return fmt.Errorf("validate topic %s: %w", topic.ID, err)
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// topicVector embeds the composed text, consulting the cache first.
func (v *Validator) topicVector(ctx context.Context, composed string) ([]float32, error) {
	key := embeddingCacheKey(v.embedding.ModelName(), composed)

	if v.cache != nil {
		if vector, ok := v.cache.Get(key); ok {
			logger.Debug("Topic embedding cache hit")
			return vector, nil
		}
	}

	vector, err := v.embedding.Embed(ctx, composed)
	if err != nil {
		return nil, fmt.Errorf("embed topic: %w", err)
	}

	if v.cache != nil {
		v.cache.Set(key, vector)
	}
	return vector, nil
}

// embeddingCacheKey keys cached embeddings by model and exact input, so
// a model change or any content edit misses the cache.
func embeddingCacheKey(model, text string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
