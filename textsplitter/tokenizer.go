// Package textsplitter provides sentence-aware text chunking for ingestion.
package textsplitter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// EncodingCL100kBase is the tiktoken encoding used by GPT-3.5/4 era models.
const EncodingCL100kBase = "cl100k_base"

// Tokenizer encodes text into a list of string tokens. Splitters only use
// the token count, so the token contents are opaque.
type Tokenizer interface {
	Encode(text string) []string
}

// SimpleTokenizer tokenizes text by splitting on whitespace.
type SimpleTokenizer struct{}

func NewSimpleTokenizer() *SimpleTokenizer {
	return &SimpleTokenizer{}
}

func (t *SimpleTokenizer) Encode(text string) []string {
	return strings.Fields(text)
}

// TikTokenTokenizer tokenizes text using OpenAI's tiktoken encodings.
type TikTokenTokenizer struct {
	encoding *tiktoken.Tiktoken
}

// NewTikTokenTokenizer creates a tokenizer for the given encoding name,
// defaulting to cl100k_base.
func NewTikTokenTokenizer(encodingName string) (*TikTokenTokenizer, error) {
	if encodingName == "" {
		encodingName = EncodingCL100kBase
	}
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to get encoding %s: %w", encodingName, err)
	}
	return &TikTokenTokenizer{encoding: enc}, nil
}

func (t *TikTokenTokenizer) Encode(text string) []string {
	ids := t.encoding.Encode(text, nil, nil)
	tokens := make([]string, len(ids))
	for i, id := range ids {
		tokens[i] = strconv.Itoa(id)
	}
	return tokens
}

// Ensure tokenizers implement the interface.
var _ Tokenizer = (*SimpleTokenizer)(nil)
var _ Tokenizer = (*TikTokenTokenizer)(nil)
