// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services hold no cross-topic mutable state: validating many topics
// concurrently only shares the read-only reference index.
package services
