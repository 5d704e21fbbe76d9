package domain

// MatchedReference is one reference document ranked against a topic.
// Ranking deduplicates by document: even when several chunks of the same
// document match, at most one MatchedReference is produced per
// ReferenceID, carrying the highest-scoring chunk.
type MatchedReference struct {
	// ReferenceID is the matched ReferenceDocument.
	ReferenceID string `json:"reference_id"`

	// SourceType is the document's reliability grade.
	SourceType SourceType `json:"source_type"`

	// Domain is the document's subject area.
	Domain KnowledgeDomain `json:"domain"`

	// TrustScore is the effective trust score used during ranking.
	TrustScore float64 `json:"trust_score"`

	// SimilarityScore is the raw cosine similarity of the winning chunk,
	// clipped to [0,1].
	SimilarityScore float64 `json:"similarity_score"`

	// FinalScore is the trust-adjusted score used for ordering.
	FinalScore float64 `json:"final_score"`

	// RelevantSnippet is the winning chunk's text, truncated for display.
	RelevantSnippet string `json:"relevant_snippet"`

	// ChunkIndex is the ordinal position of the winning chunk.
	ChunkIndex int `json:"chunk_index"`
}
