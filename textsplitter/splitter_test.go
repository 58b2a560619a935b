package textsplitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleTokenizer(t *testing.T) {
	tok := NewSimpleTokenizer()
	assert.Equal(t, []string{"two", "words"}, tok.Encode("two words"))
	assert.Empty(t, tok.Encode(""))
}

func TestSentenceSplitter(t *testing.T) {
	t.Run("short text is one chunk", func(t *testing.T) {
		s, err := NewSentenceSplitter(100, 0, nil)
		require.NoError(t, err)

		chunks := s.SplitText("Ayurveda is a system of traditional medicine.")
		require.Len(t, chunks, 1)
		assert.Equal(t, "Ayurveda is a system of traditional medicine.", chunks[0])
	})

	t.Run("empty text", func(t *testing.T) {
		s, err := NewSentenceSplitter(100, 0, nil)
		require.NoError(t, err)
		assert.Nil(t, s.SplitText("   "))
	})

	t.Run("long text is split at sentence boundaries", func(t *testing.T) {
		s, err := NewSentenceSplitter(10, 0, nil)
		require.NoError(t, err)

		text := "The first sentence has exactly seven words in it. " +
			"The second sentence also has quite a few words. " +
			"And here is a third one for good measure."
		chunks := s.SplitText(text)
		require.Greater(t, len(chunks), 1)

		// No chunk exceeds the token budget.
		tok := NewSimpleTokenizer()
		for _, c := range chunks {
			assert.LessOrEqual(t, len(tok.Encode(c)), 10)
		}

		// All content survives, in order.
		joined := strings.Join(chunks, " ")
		assert.Contains(t, joined, "first sentence")
		assert.Contains(t, joined, "third one")
	})

	t.Run("paragraphs preferred over sentences", func(t *testing.T) {
		s, err := NewSentenceSplitter(6, 0, nil)
		require.NoError(t, err)

		chunks := s.SplitText("First short paragraph here.\n\nSecond short paragraph here.")
		require.Len(t, chunks, 2)
		assert.Equal(t, "First short paragraph here.", chunks[0])
		assert.Equal(t, "Second short paragraph here.", chunks[1])
	})

	t.Run("overlap carries trailing content forward", func(t *testing.T) {
		s, err := NewSentenceSplitter(6, 3, nil)
		require.NoError(t, err)

		// No sentence punctuation, so the splitter falls back to words
		// and the overlap window can pick up individual words.
		text := "one two three four five six seven eight nine ten"
		chunks := s.SplitText(text)
		require.Greater(t, len(chunks), 1)
		assert.Contains(t, chunks[0], "six")
		assert.Contains(t, chunks[1], "four")
	})

	t.Run("every chunk advances past the carried overlap", func(t *testing.T) {
		// Each sentence is 5 tokens while only 1 token of budget remains
		// after the overlap window, so every flush is immediately followed
		// by a split that overflows the chunk on its own.
		s, err := NewSentenceSplitter(6, 5, nil)
		require.NoError(t, err)

		text := "The vata dosha governs movement. The pitta dosha governs digestion. The kapha dosha governs structure."
		chunks := s.SplitText(text)
		require.Greater(t, len(chunks), 1)

		// No chunk may consist solely of the previous chunk's overlap
		// tail: each one must introduce content its predecessor lacked.
		assert.Contains(t, chunks[len(chunks)-1], "structure")
		for i := 1; i < len(chunks); i++ {
			assert.NotEqual(t, chunks[i-1], chunks[i])
			assert.False(t, strings.HasSuffix(chunks[i-1], chunks[i]),
				"chunk %d repeats the tail of chunk %d", i, i-1)
		}
	})

	t.Run("defaults applied", func(t *testing.T) {
		s, err := NewSentenceSplitter(0, -1, nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultChunkSize, s.ChunkSize)
		assert.Equal(t, DefaultChunkOverlap, s.ChunkOverlap)
	})
}
