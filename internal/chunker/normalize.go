package chunker

import "strings"

// Normalize cleans raw extracted text before chunking: CR/LF sequences become
// single newlines, then all whitespace runs collapse to single spaces.
// Shared by every parser collaborator so chunk boundaries do not depend on the
// source format's whitespace conventions.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Join(strings.Fields(text), " ")
}
