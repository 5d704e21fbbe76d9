package cli

import (
	"context"
	"time"

	"github.com/custodia-labs/notecheck/internal/core/domain"
)

// fakeValidationService records calls and returns canned results.
type fakeValidationService struct {
	results []*domain.ValidationResult
	err     error
	topics  []domain.Topic
}

func (f *fakeValidationService) ValidateTopic(ctx context.Context, topic domain.Topic) (*domain.ValidationResult, error) {
	results, err := f.ValidateTopics(ctx, []domain.Topic{topic})
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

func (f *fakeValidationService) ValidateTopics(_ context.Context, topics []domain.Topic) ([]*domain.ValidationResult, error) {
	f.topics = topics
	if f.err != nil {
		return nil, f.err
	}
	if f.results != nil {
		return f.results, nil
	}
	results := make([]*domain.ValidationResult, len(topics))
	for i, topic := range topics {
		results[i] = &domain.ValidationResult{
			TopicID:      topic.ID,
			OverallScore: 0.5,
			ValidatedAt:  time.Now().UTC(),
		}
	}
	return results, nil
}

// fakeIndexService records calls.
type fakeIndexService struct {
	indexed []domain.ReferenceDocument
	removed []string
	docs    []domain.ReferenceDocument
	err     error
}

func (f *fakeIndexService) IndexDocument(_ context.Context, doc domain.ReferenceDocument) error {
	if f.err != nil {
		return f.err
	}
	f.indexed = append(f.indexed, doc)
	return nil
}

func (f *fakeIndexService) RemoveDocument(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeIndexService) ListDocuments(_ context.Context) ([]domain.ReferenceDocument, error) {
	return f.docs, f.err
}

func (f *fakeIndexService) RebuildIndex(_ context.Context) error {
	return f.err
}

// setupTestServices injects fakes into the package service vars and
// returns a cleanup that restores the previous wiring.
func setupTestServices() (validation *fakeValidationService, index *fakeIndexService, cleanup func()) {
	prevValidation := validationService
	prevIndex := indexService

	validation = &fakeValidationService{}
	index = &fakeIndexService{}
	validationService = validation
	indexService = index

	return validation, index, func() {
		validationService = prevValidation
		indexService = prevIndex
	}
}
