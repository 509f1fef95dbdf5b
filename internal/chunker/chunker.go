// Package chunker splits normalized document text into overlapping chunks for embedding.
package chunker

import "strings"

const (
	// DefaultChunkSize is the character budget per chunk.
	DefaultChunkSize = 1000
	// DefaultOverlap is the character budget for the overlap carried between chunks.
	DefaultOverlap = 200
)

// Chunker splits text into sentence-aligned chunks with overlapping boundaries.
// Sentences are never split mid-word: a single sentence longer than the chunk
// budget is placed whole in its own chunk.
type Chunker struct {
	chunkSize int
	overlap   int
}

// New creates a chunker with the given character budgets. Non-positive values
// fall back to the defaults.
func New(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}
}

// Chunk splits text into chunks of roughly chunkSize characters. Text is cut
// on "." into naive sentences; sentences accumulate greedily until the budget
// would be exceeded, at which point the chunk is closed and the next chunk is
// seeded with whole trailing sentences of the previous one whose total length
// stays within the overlap budget. The final partial chunk is always emitted.
// Deterministic: identical input and budgets always produce identical output.
func (c *Chunker) Chunk(text string) []string {
	if text == "" {
		return []string{}
	}

	sentences := strings.Split(text, ".")
	chunks := make([]string, 0)
	current := make([]string, 0)
	currentSize := 0

	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence) + "."
		size := len(sentence)

		if currentSize+size > c.chunkSize && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))

			// Seed the next chunk with trailing sentences of the closed one,
			// walking backwards while they still fit the overlap budget.
			overlapSize := 0
			overlapSentences := make([]string, 0)
			for i := len(current) - 1; i >= 0; i-- {
				if overlapSize+len(current[i]) > c.overlap {
					break
				}
				overlapSentences = append([]string{current[i]}, overlapSentences...)
				overlapSize += len(current[i])
			}
			current = overlapSentences
			currentSize = overlapSize
		}

		current = append(current, sentence)
		currentSize += size
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}
