// -----------------------------------------------------------------------
// Chunker - Bounded text splitting with math-aware paragraph preservation
// -----------------------------------------------------------------------

package processing

import (
	"strings"
	"unicode/utf8"
)

// genericSeparators is ordered coarse to fine. The empty string is the
// terminal fallback: split at fixed rune offsets.
var genericSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Chunker splits page text into bounded chunks. Non-math text uses a
// recursive splitter with overlap between consecutive chunks; math-flagged
// text accumulates whole paragraphs so equations are never fragmented.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Chunk splits text into segments. Sizes are measured in runes. For
// hasMath=false every segment is at most chunkSize long; for hasMath=true a
// single paragraph longer than chunkSize is kept whole. Empty or
// whitespace-only input yields no chunks.
func (c *Chunker) Chunk(text string, hasMath bool) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if hasMath {
		return c.chunkMathPreserving(text)
	}
	return c.chunkRecursive(text, genericSeparators)
}

// chunkMathPreserving splits on blank lines and packs whole paragraphs into
// chunks. No overlap is applied on this path.
func (c *Chunker) chunkMathPreserving(text string) []string {
	paragraphs := strings.Split(text, "\n\n")

	var chunks []string
	var current string

	for _, paragraph := range paragraphs {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		if current != "" && utf8.RuneCountInString(current)+utf8.RuneCountInString(paragraph)+2 > c.chunkSize {
			chunks = append(chunks, current)
			current = ""
		}

		if current != "" {
			current += "\n\n" + paragraph
		} else {
			current = paragraph
		}
	}

	if current != "" {
		chunks = append(chunks, current)
	}

	return chunks
}

// chunkRecursive splits text on the coarsest separator present, recursing
// into finer separators for pieces that still exceed the chunk size, then
// merges adjacent pieces back together up to the bound.
func (c *Chunker) chunkRecursive(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var next []string
	for i, s := range separators {
		if s == "" || strings.Contains(text, s) {
			separator = s
			next = separators[i+1:]
			break
		}
	}

	var parts []string
	if separator == "" {
		parts = splitEvery(text, c.chunkSize)
	} else {
		parts = strings.Split(text, separator)
	}

	var chunks []string
	var pending []string
	for _, part := range parts {
		if utf8.RuneCountInString(part) <= c.chunkSize {
			pending = append(pending, part)
			continue
		}
		chunks = append(chunks, c.merge(pending, separator)...)
		pending = nil
		chunks = append(chunks, c.chunkRecursive(part, next)...)
	}
	chunks = append(chunks, c.merge(pending, separator)...)

	return chunks
}

// merge greedily joins pieces with their separator while the total stays
// within the chunk size, carrying up to chunkOverlap runes of trailing
// pieces into the next chunk.
func (c *Chunker) merge(parts []string, separator string) []string {
	if len(parts) == 0 {
		return nil
	}

	sepLen := utf8.RuneCountInString(separator)

	var chunks []string
	var current []string
	total := 0

	appendChunk := func() {
		joined := strings.TrimSpace(strings.Join(current, separator))
		if joined != "" {
			chunks = append(chunks, joined)
		}
	}

	for _, part := range parts {
		partLen := utf8.RuneCountInString(part)

		joinLen := 0
		if len(current) > 0 {
			joinLen = sepLen
		}

		if total+joinLen+partLen > c.chunkSize && len(current) > 0 {
			appendChunk()

			// Retain a tail of pieces within the overlap budget.
			for len(current) > 0 && (total > c.chunkOverlap ||
				(total+sepLen+partLen > c.chunkSize && total > 0)) {
				total -= utf8.RuneCountInString(current[0])
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
			}
		}

		if len(current) > 0 {
			total += sepLen
		}
		current = append(current, part)
		total += partLen
	}

	appendChunk()

	return chunks
}

// splitEvery cuts text into rune slices of at most size runes.
func splitEvery(text string, size int) []string {
	if size <= 0 {
		return []string{text}
	}
	runes := []rune(text)
	var parts []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[start:end]))
	}
	return parts
}
