// Package schema defines the data types shared across the companion:
// documents with provenance metadata and conversation history.
package schema

import (
	"strings"

	"github.com/google/uuid"
)

// Metadata keys used for document provenance.
const (
	MetaSource     = "source"
	MetaPageNumber = "page_number"
)

// Document is a unit of retrieved or web-sourced text with provenance
// metadata. Documents live for a single turn; they are scored and
// concatenated into the generation prompt, never persisted.
type Document struct {
	ID       string                 `json:"id"`
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// NewDocument creates a Document with a generated ID.
func NewDocument(text string) Document {
	return Document{
		ID:       uuid.New().String(),
		Text:     text,
		Metadata: make(map[string]interface{}),
	}
}

// NewDocumentWithSource creates a Document tagged with a source identifier.
func NewDocumentWithSource(text, source string) Document {
	doc := NewDocument(text)
	doc.Metadata[MetaSource] = source
	return doc
}

// Source returns the source identifier from metadata, or "" if unset.
func (d Document) Source() string {
	if s, ok := d.Metadata[MetaSource].(string); ok {
		return s
	}
	return ""
}

// JoinDocuments concatenates document texts with blank-line separators,
// preserving document order.
func JoinDocuments(docs []Document) string {
	texts := make([]string, 0, len(docs))
	for _, d := range docs {
		texts = append(texts, d.Text)
	}
	return strings.Join(texts, "\n\n")
}

// Exchange is one completed question/answer pair in a conversation.
type Exchange struct {
	User string `json:"user"`
	Bot  string `json:"bot"`
}

// IsZero reports whether the exchange carries no content at all.
// Such entries are treated as malformed and skipped during formatting.
func (e Exchange) IsZero() bool {
	return e.User == "" && e.Bot == ""
}

// History is an ordered sequence of prior exchanges, oldest first.
type History []Exchange

// Append returns a new History with the exchange appended. The receiver
// is not modified, so callers can safely keep references to the input.
func (h History) Append(e Exchange) History {
	out := make(History, len(h), len(h)+1)
	copy(out, h)
	return append(out, e)
}

// Clone returns a copy of the history.
func (h History) Clone() History {
	if h == nil {
		return nil
	}
	out := make(History, len(h))
	copy(out, h)
	return out
}

// FormatHistory renders a history as a human-readable transcript:
//
//	User: Hello
//	Bot: Hi there
//
// Malformed (empty) entries are skipped rather than failing the whole
// transcript. Formatting the same history twice yields identical output.
func FormatHistory(h History) string {
	if len(h) == 0 {
		return ""
	}

	lines := make([]string, 0, len(h))
	for _, e := range h {
		if e.IsZero() {
			continue
		}
		lines = append(lines, "User: "+e.User+"\nBot: "+e.Bot)
	}
	return strings.Join(lines, "\n")
}
