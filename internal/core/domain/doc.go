// Package domain defines the core business entities for Notecheck.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Topic: A user's study note with structured text fields
//   - ReferenceDocument: Authoritative source material indexed for matching
//   - MatchedReference: A reference ranked against a topic
//   - ContentGap: A typed, evidence-backed deficiency in a topic
//   - ValidationResult: The outcome of validating one topic
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
