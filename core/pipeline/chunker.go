package pipeline

import (
	"fmt"
	"strings"
)

// SentenceChunker creates a chunker that groups sentences into chunks of at
// most maxSentencesPerChunk sentences
func SentenceChunker(maxSentencesPerChunk int) ChunkFunc {
	return func(text string) ([]ChunkCandidate, error) {
		if maxSentencesPerChunk <= 0 {
			return nil, fmt.Errorf("max sentences per chunk must be positive")
		}

		if strings.TrimSpace(text) == "" {
			return []ChunkCandidate{}, nil
		}

		sentences := splitSentences(text)

		var chunks []ChunkCandidate
		var current []string
		chunkIdx := 0

		flush := func() {
			if len(current) == 0 {
				return
			}
			chunks = append(chunks, ChunkCandidate{
				Content:    strings.Join(current, " "),
				ChunkIndex: chunkIdx,
				Metadata:   make(map[string]interface{}),
			})
			current = nil
			chunkIdx++
		}

		for _, sentence := range sentences {
			current = append(current, sentence)
			if len(current) >= maxSentencesPerChunk {
				flush()
			}
		}
		flush()

		return chunks, nil
	}
}

// SectionChunker creates a chunker that splits text on blank-line separated
// sections, tags each chunk with its section heading and groups sentences
// within a section into chunks of at most maxSentencesPerChunk sentences.
// University pages arrive as heading-led sections (admission, faculties,
// contact), so the section tag survives into the chunk metadata.
func SectionChunker(maxSentencesPerChunk int) ChunkFunc {
	sentenceChunker := SentenceChunker(maxSentencesPerChunk)

	return func(text string) ([]ChunkCandidate, error) {
		if maxSentencesPerChunk <= 0 {
			return nil, fmt.Errorf("max sentences per chunk must be positive")
		}

		if strings.TrimSpace(text) == "" {
			return []ChunkCandidate{}, nil
		}

		var chunks []ChunkCandidate
		chunkIdx := 0

		for _, section := range splitSections(text) {
			sectionChunks, err := sentenceChunker(section.body)
			if err != nil {
				return nil, err
			}

			for _, chunk := range sectionChunks {
				chunk.SectionTag = section.tag
				chunk.ChunkIndex = chunkIdx
				if section.heading != "" {
					chunk.Metadata["section_heading"] = section.heading
				}
				chunks = append(chunks, chunk)
				chunkIdx++
			}
		}

		return chunks, nil
	}
}

// DefaultChunker returns the section-aware chunker with sensible defaults
func DefaultChunker() ChunkFunc {
	return SectionChunker(5)
}

type section struct {
	heading string
	tag     string
	body    string
}

// splitSections splits text on blank lines. A short first line that doesn't
// end a sentence is treated as the section heading.
func splitSections(text string) []section {
	blocks := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n")

	var sections []section
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		heading := ""
		body := block
		if idx := strings.Index(block, "\n"); idx > 0 {
			firstLine := strings.TrimSpace(block[:idx])
			if len(firstLine) <= 80 && !strings.ContainsAny(firstLine, ".!?") {
				heading = strings.TrimLeft(firstLine, "# ")
				body = strings.TrimSpace(block[idx+1:])
			}
		}

		sections = append(sections, section{
			heading: heading,
			tag:     sectionTag(heading),
			body:    body,
		})
	}

	return sections
}

// sectionTag normalizes a heading into a lowercase underscore tag
func sectionTag(heading string) string {
	tag := strings.ToLower(strings.TrimSpace(heading))
	tag = strings.Join(strings.Fields(tag), "_")
	return tag
}

// splitSentences splits text into trimmed sentences on .!? boundaries
func splitSentences(text string) []string {
	text = strings.ReplaceAll(text, "! ", "!|")
	text = strings.ReplaceAll(text, "? ", "?|")
	text = strings.ReplaceAll(text, ". ", ".|")
	text = strings.ReplaceAll(text, "\n", "|")

	var sentences []string
	for _, s := range strings.Split(text, "|") {
		s = strings.TrimSpace(s)
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}
