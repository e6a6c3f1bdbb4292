package preprocess

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const (
	defaultChunkTokens = 750
	chunkerEncoding    = "o200k_base" // gpt-4o family
)

// Chunker splits source text into model-sized pieces on paragraph
// boundaries. Sizes are measured in tokens via tiktoken; when the encoding
// cannot be loaded it falls back to a bytes/4 estimate.
type Chunker struct {
	maxTokens int
	counter   func(string) int

	once    sync.Once
	enc     *tiktoken.Tiktoken
	initErr error
}

func NewChunker(maxTokens int) *Chunker {
	if maxTokens <= 0 {
		maxTokens = defaultChunkTokens
	}
	c := &Chunker{maxTokens: maxTokens}
	c.counter = c.tiktokenCount
	return c
}

// Split breaks text into chunks of at most maxTokens, never splitting inside
// a paragraph. A single paragraph larger than the budget becomes its own
// chunk.
func (c *Chunker) Split(text string) []string {
	var chunks []string
	var cur strings.Builder
	curTokens := 0

	for _, paragraph := range strings.Split(text, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		tokens := c.counter(paragraph)
		if curTokens > 0 && curTokens+tokens > c.maxTokens {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curTokens = 0
		}

		if curTokens > 0 {
			cur.WriteString("\n\n")
		}
		cur.WriteString(paragraph)
		curTokens += tokens
	}

	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

func (c *Chunker) tiktokenCount(text string) int {
	c.once.Do(func() {
		enc, err := tiktoken.GetEncoding(chunkerEncoding)
		if err != nil {
			c.initErr = err
			return
		}
		c.enc = enc
	})
	if c.enc == nil {
		return len(text) / 4
	}
	return len(c.enc.Encode(text, nil, nil))
}
