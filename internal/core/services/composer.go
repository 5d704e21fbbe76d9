package services

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/notecheck/internal/core/domain"
)

// Composer builds the single embedding input for a topic by repeating
// each field proportionally to its configured weight. Same topic
// content always yields the same composed string, and therefore the
// same embedding.
type Composer struct {
	weights domain.FieldWeights
	slots   int
}

// NewComposer creates a composer from a validated configuration.
func NewComposer(cfg domain.Config) *Composer {
	return &Composer{
		weights: cfg.FieldWeights,
		slots:   cfg.CompositionSlots,
	}
}

// Compose returns the embedding input for the topic. Fields are
// NFC-normalised, iterated in canonical order, and repeated
// max(1, round(weight*slots)) times each; empty fields contribute
// nothing. A topic with no text at all is rejected before any
// embedding work happens.
func (c *Composer) Compose(topic domain.Topic) (string, error) {
	parts := make([]string, 0, c.slots)

	for _, field := range domain.FieldOrder {
		weight, ok := c.weights[field]
		if !ok {
			continue
		}

		text := norm.NFC.String(strings.TrimSpace(topic.FieldText(field)))
		if text == "" {
			continue
		}

		for i := 0; i < repetitions(weight, c.slots); i++ {
			parts = append(parts, text)
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("%w: topic %q has no text to compose", domain.ErrInvalidInput, topic.ID)
	}

	return strings.Join(parts, "\n"), nil
}

// repetitions maps a weight to an integer repetition count. Every
// non-empty weighted field gets at least one slot so low-weight fields
// are de-emphasised, not silenced.
func repetitions(weight float64, slots int) int {
	n := int(math.Round(weight * float64(slots)))
	if n < 1 {
		n = 1
	}
	return n
}
