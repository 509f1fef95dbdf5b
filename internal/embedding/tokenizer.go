package embedding

import (
	"hash/fnv"
	"strings"
)

// BERT special token IDs used by sentence-transformer style models.
const (
	tokenCLS = 101
	tokenSEP = 102
)

// vocabSize bounds hash-derived token IDs to a BERT-sized vocabulary.
const vocabSize = 30000

// Tokenizer produces model inputs (input_ids, attention_mask, token_type_ids)
// for BERT-style embedding models.
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64)
}

// HashTokenizer is a whitespace tokenizer with hash-derived token IDs. It is
// not a real WordPiece vocabulary, but it is deterministic, which is all the
// retrieval pipeline requires of a fallback tokenizer.
type HashTokenizer struct{}

// Tokenize splits text on whitespace and produces padded inputs up to maxTokens,
// framed with [CLS] and [SEP].
func (t *HashTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	if maxTokens <= 0 {
		maxTokens = 256
	}
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)

	inputIDs[0] = tokenCLS
	attentionMask[0] = 1

	pos := 1
	for _, word := range strings.Fields(text) {
		if pos >= maxTokens-1 {
			break
		}
		inputIDs[pos] = int64(hashToken(word))
		attentionMask[pos] = 1
		pos++
	}
	if pos < maxTokens {
		inputIDs[pos] = tokenSEP
		attentionMask[pos] = 1
	}
	return inputIDs, attentionMask, tokenTypeIDs
}

// hashToken maps a word to a stable pseudo token ID within the vocabulary.
func hashToken(word string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(word))
	return h.Sum32() % vocabSize
}
