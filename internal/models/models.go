package models

// Role identifies the author of a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Chunk represents a bounded segment of extracted document text with metadata
type Chunk struct {
	Content        string
	SourceFilename string
	ChunkID        int
}

// Turn is one message in a chat history. Turns are append-only: once a turn
// is in a history it is never rewritten or reordered.
type Turn struct {
	Role    Role
	Content string
}

// AppendExchange returns history extended with one user turn and one
// assistant turn, in that order. The input slice is not modified.
func AppendExchange(history []Turn, question, answer string) []Turn {
	out := make([]Turn, 0, len(history)+2)
	out = append(out, history...)
	out = append(out, Turn{Role: RoleUser, Content: question})
	out = append(out, Turn{Role: RoleAssistant, Content: answer})
	return out
}
