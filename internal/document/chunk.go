package document

import "strings"

// DefaultChunkSize is the rune budget of a chunk fed to the embedder.
const DefaultChunkSize = 1000

// ChunkText splits text on whitespace into chunks of at most size runes.
// A single word longer than size becomes its own chunk.
func ChunkText(text string, size int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}

	var (
		chunks  []string
		current strings.Builder
		length  int
	)
	for _, word := range strings.Fields(text) {
		wordLen := len([]rune(word))
		if length > 0 && length+1+wordLen > size {
			chunks = append(chunks, current.String())
			current.Reset()
			length = 0
		}
		if length > 0 {
			current.WriteByte(' ')
			length++
		}
		current.WriteString(word)
		length += wordLen
	}
	if length > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
