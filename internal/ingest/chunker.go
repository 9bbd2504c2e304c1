package ingest

import "strings"

const (
	// chunkWords targets roughly 450 embedding tokens per passage.
	chunkWords = 180
	// overlapWords carries trailing context into the next passage so rules
	// split across a window boundary remain retrievable.
	overlapWords = 30
	// maxHeadingLen separates heading lines from body lines.
	maxHeadingLen = 64

	defaultSection = "General"
)

// sectionKeywords maps lowercase heading fragments to the canonical section
// labels the query normalizer infers. Keys are checked in this order so the
// longer, more specific fragments win.
var sectionKeywords = []struct {
	fragment string
	section  string
}{
	{"election commission", "Election Commission"},
	{"election", "Election Commission"},
	{"student council", "Student Council"},
	{"council", "Student Council"},
	{"committee", "Committees"},
	{"club", "Clubs"},
}

// Chunk is one passage-to-be: a text window with its page and section label.
type Chunk struct {
	Text    string
	Page    int
	Section string
}

// Chunker splits page texts into overlapping word windows tagged with the
// section in force at that point of the document.
type Chunker struct {
	chunkWords   int
	overlapWords int
}

// NewChunker creates a chunker with the default window and overlap.
func NewChunker() *Chunker {
	return &Chunker{chunkWords: chunkWords, overlapWords: overlapWords}
}

// ChunkPages converts extracted pages into chunks. Section labels carry
// forward from the most recent heading line until the next one.
func (c *Chunker) ChunkPages(pages []PageText) []Chunk {
	var chunks []Chunk
	section := defaultSection

	for _, page := range pages {
		var words []string
		for _, line := range strings.Split(page.Text, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if s, ok := headingSection(trimmed); ok {
				// Flush the window before the section changes so no chunk
				// spans two sections.
				if len(words) > 0 && s != section {
					chunks = append(chunks, c.windows(words, page.Page, section)...)
					words = nil
				}
				section = s
			}
			words = append(words, strings.Fields(trimmed)...)
		}
		if len(words) > 0 {
			chunks = append(chunks, c.windows(words, page.Page, section)...)
		}
	}

	return chunks
}

// windows cuts a word sequence into overlapping chunks.
func (c *Chunker) windows(words []string, page int, section string) []Chunk {
	var out []Chunk
	step := c.chunkWords - c.overlapWords
	if step <= 0 {
		step = c.chunkWords
	}

	for start := 0; start < len(words); start += step {
		end := start + c.chunkWords
		if end > len(words) {
			end = len(words)
		}
		out = append(out, Chunk{
			Text:    strings.Join(words[start:end], " "),
			Page:    page,
			Section: section,
		})
		if end == len(words) {
			break
		}
	}
	return out
}

// headingSection reports whether a line looks like a section heading and, if
// so, which canonical section it starts.
func headingSection(line string) (string, bool) {
	if len(line) > maxHeadingLen {
		return "", false
	}
	lower := strings.ToLower(line)
	for _, kw := range sectionKeywords {
		if strings.Contains(lower, kw.fragment) {
			return kw.section, true
		}
	}
	return "", false
}
