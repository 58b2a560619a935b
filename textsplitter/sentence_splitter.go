package textsplitter

import (
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

const (
	// DefaultChunkSize matches the ingestion chunking used for the
	// Ayurveda corpus.
	DefaultChunkSize = 2000
	// DefaultChunkOverlap is the token overlap between adjacent chunks.
	DefaultChunkOverlap = 500
	// DefaultParagraphSeparator splits text into paragraphs first.
	DefaultParagraphSeparator = "\n\n"
)

// TextSplitter is the interface for splitting text into chunks.
type TextSplitter interface {
	SplitText(text string) []string
}

// SentenceSplitter splits text into token-bounded chunks, preferring to
// keep whole sentences together. Paragraph boundaries are tried first,
// then sentence boundaries, then words, then characters.
type SentenceSplitter struct {
	ChunkSize          int
	ChunkOverlap       int
	ParagraphSeparator string

	tokenizer   Tokenizer
	sentenceTok *sentences.DefaultSentenceTokenizer
}

// NewSentenceSplitter creates a SentenceSplitter. Pass 0 for chunkSize or a
// negative chunkOverlap to use the defaults; a nil tokenizer defaults to
// whitespace tokenization.
func NewSentenceSplitter(chunkSize, chunkOverlap int, tokenizer Tokenizer) (*SentenceSplitter, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = DefaultChunkOverlap
	}
	if tokenizer == nil {
		tokenizer = NewSimpleTokenizer()
	}

	sentenceTok, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, err
	}

	return &SentenceSplitter{
		ChunkSize:          chunkSize,
		ChunkOverlap:       chunkOverlap,
		ParagraphSeparator: DefaultParagraphSeparator,
		tokenizer:          tokenizer,
		sentenceTok:        sentenceTok,
	}, nil
}

// SplitText splits the text into chunks of at most ChunkSize tokens.
func (s *SentenceSplitter) SplitText(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	splits := s.split(text)
	return s.merge(splits)
}

type split struct {
	text   string
	tokens int
}

// split recursively breaks text into pieces that each fit in a chunk.
func (s *SentenceSplitter) split(text string) []split {
	n := s.tokenCount(text)
	if n <= s.ChunkSize {
		return []split{{text: text, tokens: n}}
	}

	var out []split
	for _, part := range s.subdivide(text) {
		if part == "" {
			continue
		}
		n := s.tokenCount(part)
		if n <= s.ChunkSize {
			out = append(out, split{text: part, tokens: n})
		} else {
			out = append(out, s.split(part)...)
		}
	}
	return out
}

// subdivide breaks text by the coarsest boundary that produces more than
// one piece: paragraphs, then sentences, then words, then characters.
func (s *SentenceSplitter) subdivide(text string) []string {
	if parts := strings.SplitAfter(text, s.ParagraphSeparator); len(parts) > 1 {
		return parts
	}
	if parts := s.splitSentences(text); len(parts) > 1 {
		return parts
	}
	if parts := strings.SplitAfter(text, " "); len(parts) > 1 {
		return parts
	}
	return strings.Split(text, "")
}

func (s *SentenceSplitter) splitSentences(text string) []string {
	tokens := s.sentenceTok.Tokenize(text)
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Text
	}
	return parts
}

// merge greedily packs splits into chunks, carrying trailing splits into
// the next chunk as overlap.
func (s *SentenceSplitter) merge(splits []split) []string {
	var chunks []string
	var cur []split
	curLen := 0

	flush := func() {
		if len(cur) == 0 {
			return
		}
		var sb strings.Builder
		for _, sp := range cur {
			sb.WriteString(sp.text)
		}
		if chunk := strings.TrimSpace(sb.String()); chunk != "" {
			chunks = append(chunks, chunk)
		}

		// Seed the next chunk with trailing splits up to the overlap.
		var overlap []split
		overlapLen := 0
		for i := len(cur) - 1; i >= 0; i-- {
			if overlapLen+cur[i].tokens > s.ChunkOverlap {
				break
			}
			overlapLen += cur[i].tokens
			overlap = append([]split{cur[i]}, overlap...)
		}
		cur = overlap
		curLen = overlapLen
	}

	for _, sp := range splits {
		if curLen+sp.tokens > s.ChunkSize && len(cur) > 0 {
			flush()
		}
		cur = append(cur, sp)
		curLen += sp.tokens
	}
	flush()

	return chunks
}

func (s *SentenceSplitter) tokenCount(text string) int {
	return len(s.tokenizer.Encode(text))
}

// Ensure SentenceSplitter implements the interface.
var _ TextSplitter = (*SentenceSplitter)(nil)
