package models

// HedgePhrases is the fixed set of substrings that mark an answer as
// "no information found in the documents". Matching is case-insensitive.
// The literal set must not be reworded; the fallback offer depends on it.
var HedgePhrases = []string{
	"not mentioned",
	"not available",
	"no information",
	"not found",
	"does not contain",
	"no context",
	"i don't know",
	"not provided",
}

const (
	// RAGSystemPrompt frames every retrieval-augmented completion.
	RAGSystemPrompt = "You are a helpful assistant. Use the provided context to answer the query."

	// RAGUserPromptTemplate combines retrieved context with the user query.
	RAGUserPromptTemplate = "Context:\n%s\nQuery: %s"

	// WebSearchPromptTemplate is used for the unrestricted fallback answer,
	// with no document context attached.
	WebSearchPromptTemplate = `Search the web and answer the following question accurately.
If needed, use up-to-date information.

Question: %s
`
)
