package models

// RetrievedChunk is a single retrieval hit: the chunk text, the metadata of
// the document it came from, and the squared Euclidean distance to the query.
// Results are ordered by ascending distance.
type RetrievedChunk struct {
	Text     string           `json:"text"`
	Metadata DocumentMetadata `json:"metadata"`
	Distance float64          `json:"distance"`
}

// IngestReport is the outcome of ingesting one document in a batch. A failure
// for one document never aborts the rest of the batch; each report carries
// either the recorded metadata or the error message.
type IngestReport struct {
	Filename string            `json:"filename"`
	Metadata *DocumentMetadata `json:"metadata,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// Message is one turn of conversation history passed to the answer generator.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
