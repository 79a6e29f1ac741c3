// Package chunk splits long responses into transport-sized pieces.
package chunk

import "fmt"

// DiscordMaxMessageLen is the hard limit Discord puts on message content
const DiscordMaxMessageLen = 2000

// MarkerReserve is room left in every Discord message for the continuation
// marker, so rendered chunks still fit the limit.
const MarkerReserve = 32

// Chunk is one ordered piece of a longer text
type Chunk struct {
	Text  string
	Index int // 1-based
	Total int
}

// Render returns the text to deliver. Chunks after the first carry a
// position marker; a single chunk is returned unchanged.
func (c Chunk) Render() string {
	if c.Total <= 1 || c.Index <= 1 {
		return c.Text
	}
	return fmt.Sprintf("*(continued %d/%d)*\n%s", c.Index, c.Total, c.Text)
}

// Chunker splits text into pieces of at most Max runes
type Chunker struct {
	Max int
}

// New creates a chunker. Non-positive sizes fall back to the Discord budget.
func New(max int) *Chunker {
	if max <= 0 {
		max = ForDiscord().Max
	}
	return &Chunker{Max: max}
}

// ForDiscord returns a chunker whose rendered chunks fit one Discord message
func ForDiscord() *Chunker {
	return &Chunker{Max: DiscordMaxMessageLen - MarkerReserve}
}

// Split cuts text into consecutive rune slices. Joining every Chunk.Text
// yields text exactly. A non-positive Max uses the Discord budget.
func (c *Chunker) Split(text string) []Chunk {
	size := c.Max
	if size <= 0 {
		size = DiscordMaxMessageLen - MarkerReserve
	}

	runes := []rune(text)
	if len(runes) <= size {
		return []Chunk{{Text: text, Index: 1, Total: 1}}
	}

	total := (len(runes) + size - 1) / size
	chunks := make([]Chunk, 0, total)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, Chunk{
			Text:  string(runes[start:end]),
			Index: len(chunks) + 1,
			Total: total,
		})
	}
	return chunks
}

// Rendered splits text and renders every chunk for delivery
func (c *Chunker) Rendered(text string) []string {
	chunks := c.Split(text)
	out := make([]string, len(chunks))
	for i, ch := range chunks {
		out[i] = ch.Render()
	}
	return out
}
