package domain

import "time"

const unknownDescription = "Unknown"

// KnowledgeDomain identifies the subject area a topic or reference belongs to.
// Domain-specific validation rules (minimum lengths, keyword counts) are
// keyed by this value.
type KnowledgeDomain string

// Available knowledge domains.
const (
	// DomainLanguage covers vocabulary, grammar and language-learning notes.
	DomainLanguage KnowledgeDomain = "language"

	// DomainScience covers natural-science notes.
	DomainScience KnowledgeDomain = "science"

	// DomainHistory covers history notes.
	DomainHistory KnowledgeDomain = "history"

	// DomainLaw covers legal and regulatory notes.
	DomainLaw KnowledgeDomain = "law"

	// DomainMedicine covers medical and nursing notes.
	DomainMedicine KnowledgeDomain = "medicine"

	// DomainGeneral is the fallback for uncategorised notes.
	DomainGeneral KnowledgeDomain = "general"
)

// IsValid returns true if the knowledge domain is recognised.
func (d KnowledgeDomain) IsValid() bool {
	switch d {
	case DomainLanguage, DomainScience, DomainHistory, DomainLaw, DomainMedicine, DomainGeneral:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (d KnowledgeDomain) String() string {
	return string(d)
}

// Description returns a human-readable description of the domain.
func (d KnowledgeDomain) Description() string {
	switch d {
	case DomainLanguage:
		return "Language"
	case DomainScience:
		return "Science"
	case DomainHistory:
		return "History"
	case DomainLaw:
		return "Law"
	case DomainMedicine:
		return "Medicine"
	case DomainGeneral:
		return "General"
	default:
		return unknownDescription
	}
}

// Topic represents a user's study note. It is read-only to the engine:
// topics are created on import and mutated only by the user, outside
// this module.
//
// Every text field defaults to empty rather than absent, so callers can
// rely on zero values instead of nil checks.
type Topic struct {
	// ID is the unique identifier for the topic.
	ID string `json:"id"`

	// Lead is a short introductory line for the topic.
	Lead string `json:"lead,omitempty"`

	// Definition is the main explanatory text.
	Definition string `json:"definition,omitempty"`

	// Keywords are the key terms associated with the topic.
	Keywords []string `json:"keywords,omitempty"`

	// Tags is a free-form tag string (comma or space separated).
	Tags string `json:"tags,omitempty"`

	// Mnemonic is an optional memory aid.
	Mnemonic string `json:"mnemonic,omitempty"`

	// Domain is the subject area the topic belongs to.
	Domain KnowledgeDomain `json:"domain,omitempty"`

	// CreatedAt is when the topic was imported.
	CreatedAt time.Time `json:"created_at,omitempty"`

	// UpdatedAt is when the topic was last edited by the user.
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// FieldName identifies one of the topic's structured text fields.
type FieldName string

// Topic field names, in canonical composition order.
const (
	FieldDefinition FieldName = "definition"
	FieldLead       FieldName = "lead"
	FieldKeywords   FieldName = "keywords"
	FieldTags       FieldName = "tags"
	FieldMnemonic   FieldName = "mnemonic"
)

// FieldOrder is the canonical ordering of topic fields. Composition and
// scoring iterate fields in this order so results are deterministic.
var FieldOrder = []FieldName{FieldDefinition, FieldLead, FieldKeywords, FieldTags, FieldMnemonic}

// FieldText returns the text of the named field. Keyword lists are joined
// with a single space.
func (t Topic) FieldText(f FieldName) string {
	switch f {
	case FieldDefinition:
		return t.Definition
	case FieldLead:
		return t.Lead
	case FieldKeywords:
		return joinKeywords(t.Keywords)
	case FieldTags:
		return t.Tags
	case FieldMnemonic:
		return t.Mnemonic
	default:
		return ""
	}
}

func joinKeywords(keywords []string) string {
	out := ""
	for _, k := range keywords {
		if k == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += k
	}
	return out
}
