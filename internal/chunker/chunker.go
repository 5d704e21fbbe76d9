// Package chunker splits reference documents into overlapping,
// boundary-aware segments for independent embedding.
package chunker

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/notecheck/internal/core/domain"
)

// DefaultSizeThreshold is the default maximum chunk length in runes.
const DefaultSizeThreshold = 5000

// DefaultOverlap is the default number of runes consecutive chunks share.
const DefaultOverlap = 500

// Splitter splits long text into overlapping segments, snapping chunk
// ends to natural boundaries where possible. Splitting is deterministic:
// the same (text, size threshold, overlap) always yields the same chunks.
type Splitter struct {
	sizeThreshold int
	overlap       int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithSizeThreshold sets the maximum chunk length in runes.
func WithSizeThreshold(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.sizeThreshold = size
		}
	}
}

// WithOverlap sets the overlap between chunks in runes.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a new splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		sizeThreshold: DefaultSizeThreshold,
		overlap:       DefaultOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ensure overlap doesn't exceed the size threshold
	if s.overlap >= s.sizeThreshold {
		s.overlap = s.sizeThreshold / 4
	}

	return s
}

// Split returns the ordered chunk texts for the given text.
//
// Text at or below the size threshold is returned unchanged as a single
// chunk. Longer text is cut at the size threshold, with each cut pulled
// back to the nearest paragraph break, line break, or sentence end found
// inside the window, in that priority order. The next chunk starts
// overlap runes before the previous end, and always at least one rune
// past the previous start so progress is guaranteed.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= s.sizeThreshold {
		return []string{text}
	}

	estimated := len(runes)/(s.sizeThreshold-s.overlap) + 1
	chunks := make([]string, 0, estimated)

	start := 0
	for start < len(runes) {
		end := start + s.sizeThreshold
		if end >= len(runes) {
			end = len(runes)
		} else if cut := boundaryCut(runes[start:end], s.overlap); cut > 0 {
			end = start + cut
		}

		if piece := strings.TrimSpace(string(runes[start:end])); piece != "" {
			chunks = append(chunks, piece)
		}

		if end == len(runes) {
			break
		}

		next := end - s.overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return chunks
}

// ChunkDocument splits a reference document's content and wraps each
// piece in a ReferenceChunk with a fresh ID. Embeddings are left empty
// for the indexer to fill in.
func (s *Splitter) ChunkDocument(doc domain.ReferenceDocument) ([]domain.ReferenceChunk, error) {
	if doc.ID == "" {
		return nil, fmt.Errorf("%w: reference document has no ID", domain.ErrInvalidInput)
	}

	pieces := s.Split(doc.Content)
	if len(pieces) == 0 {
		return nil, fmt.Errorf("%w: reference document %s has no content", domain.ErrInvalidInput, doc.ID)
	}

	chunks := make([]domain.ReferenceChunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = domain.ReferenceChunk{
			ID:       uuid.New().String(),
			ParentID: doc.ID,
			Index:    i,
			Text:     piece,
		}
	}

	return chunks, nil
}

// boundaryCut finds the best cut point inside a window that ends before
// the end of the document. It returns the rune offset just after the
// boundary, or 0 when the window has no usable boundary and the caller
// should hard-cut at the window end.
//
// Priority: paragraph break, then line break, then sentence terminator
// followed by whitespace. The CJK full stop needs no trailing space.
// Cuts at or before minCut are rejected: the previous chunk's overlap
// region starts the window, and snapping back into it would re-find the
// boundary the previous chunk already ended on.
func boundaryCut(window []rune, minCut int) int {
	for i := len(window) - 1; i > minCut; i-- {
		if window[i] == '\n' && window[i-1] == '\n' {
			return i + 1
		}
	}

	for i := len(window) - 1; i > minCut; i-- {
		if window[i] == '\n' {
			return i + 1
		}
	}

	for i := len(window) - 1; i > minCut; i-- {
		if window[i-1] == '。' {
			return i
		}
		if (window[i] == ' ' || window[i] == '\t') && isSentenceEnd(window[i-1]) {
			return i + 1
		}
	}

	return 0
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
