package domain

import "time"

// SourceType classifies how authoritative a reference document is.
// It drives the default trust score and the similarity threshold a
// match against that document must clear.
type SourceType string

// Available source types.
const (
	// SourceTypeBook is book-grade material (textbooks, official manuals).
	SourceTypeBook SourceType = "book"

	// SourceTypeNote is note-grade material (other users' shared notes).
	SourceTypeNote SourceType = "note"

	// SourceTypeWeb is web-grade material (articles, wikis).
	SourceTypeWeb SourceType = "web"
)

// IsValid returns true if the source type is recognised.
func (s SourceType) IsValid() bool {
	switch s {
	case SourceTypeBook, SourceTypeNote, SourceTypeWeb:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s SourceType) String() string {
	return string(s)
}

// DefaultTrustScore returns the prior reliability weight for the source
// type, used when a document carries no explicit trust score.
func (s SourceType) DefaultTrustScore() float64 {
	switch s {
	case SourceTypeBook:
		return 1.0
	case SourceTypeWeb:
		return 0.8
	case SourceTypeNote:
		return 0.6
	default:
		return 0.6
	}
}

// Description returns a human-readable description of the source type.
func (s SourceType) Description() string {
	switch s {
	case SourceTypeBook:
		return "Book (authoritative)"
	case SourceTypeNote:
		return "Note (peer material)"
	case SourceTypeWeb:
		return "Web (online material)"
	default:
		return unknownDescription
	}
}

// ReferenceDocument represents source material a topic is validated
// against. Documents are created at indexing time and immutable
// thereafter; a content change requires re-indexing, which replaces all
// of the document's chunks.
type ReferenceDocument struct {
	// ID is the unique identifier for the document.
	ID string

	// Title is the human-readable title.
	Title string

	// SourceType classifies the document's reliability grade.
	SourceType SourceType

	// Domain is the subject area the document covers.
	Domain KnowledgeDomain

	// Content is the full extracted text. Extraction happens upstream;
	// the engine never parses source files itself.
	Content string

	// TrustScore is the prior reliability weight in [0,1]. Zero means
	// "not set" and the SourceType default applies.
	TrustScore float64

	// IndexedAt is when the document was last indexed.
	IndexedAt time.Time
}

// EffectiveTrustScore returns the document's trust score, falling back
// to the source-type default when none is set.
func (d ReferenceDocument) EffectiveTrustScore() float64 {
	if d.TrustScore > 0 {
		return d.TrustScore
	}
	return d.SourceType.DefaultTrustScore()
}

// ReferenceChunk is a bounded, possibly-overlapping slice of a reference
// document's text, embedded independently. Chunks belonging to one
// document are non-empty and ordered by Index.
type ReferenceChunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// ParentID links to the owning ReferenceDocument.
	ParentID string

	// Index is the ordinal position within the document.
	Index int

	// Text is the chunk's text content.
	Text string

	// Embedding is the vector representation of Text.
	Embedding []float32
}
