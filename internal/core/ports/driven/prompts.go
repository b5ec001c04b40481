package driven

import "github.com/custodia-labs/zenji/internal/core/domain"

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not overridden, implementations return the built-in default.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// None of these prompts have format placeholders.
const (
	// PromptPlannerSystem instructs the planner to emit one DialogAction JSON object.
	PromptPlannerSystem = domain.PromptPlanner

	// PromptRecommenderSystem fixes the recommendation output format.
	PromptRecommenderSystem = domain.PromptRecommender

	// PromptRetrievalSystem is the system prompt for ask.
	PromptRetrievalSystem = domain.PromptRetrieval
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
// Services implementing this interface can have their prompt templates customised
// by injecting a PromptStore after construction.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use the built-in default prompts.
	SetPromptStore(store PromptStore)
}
