package driven

// PromptStore provides access to prompt templates for answer generation.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Returns the prompt content and any error encountered.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptAnswerSystem is the system prompt for grounded answer generation.
	// This prompt has no format placeholders.
	PromptAnswerSystem = "answer_system"

	// PromptAnswerUser frames the retrieved context and question.
	// The prompt template expects %s (context) and %s (question) placeholders.
	PromptAnswerUser = "answer_user"

	// PromptNoContext is the reply used when retrieval finds nothing
	// relevant enough to ground an answer. No format placeholders.
	PromptNoContext = "no_context"
)

// PromptStoreAware is an optional interface for responders that can use
// custom prompts. Implementations can have their templates customised by
// injecting a PromptStore after construction.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the responder should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}
