// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): the vector store, the embedding provider
// and the answer generator. Implementations live under
// internal/adapters/driven.
package driven
