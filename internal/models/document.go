// Package models defines core data structures for documents, chunks, and retrieval results.
package models

import "time"

// DocumentMetadata describes one ingested document. It is created at ingest
// time and never mutated; removal deletes the record wholesale. Filename is
// the logical removal key; the catalog does not enforce its uniqueness, so
// re-ingesting the same filename appends a second record.
type DocumentMetadata struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Extension  string    `json:"extension"`
	ChunkCount int       `json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

// Chunk is a bounded span of a document's text, the unit of embedding and retrieval.
type Chunk struct {
	Text       string `json:"text"`
	DocumentID string `json:"document_id"`
}
