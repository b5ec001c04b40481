// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - TextExtractor: Turns a binary document into per-page text
//   - EmbeddingService: Generates vector embeddings
//   - VectorStore: Stores chunks and answers nearest-neighbour queries
//   - TokenCounter: Counts model tokens for embedding batch packing
//   - SessionStore: Dialog session persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Completion oracle. Without it, dialog and ask are disabled.
//   - PromptStore: Prompt overrides. Without it, built-in prompts are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
