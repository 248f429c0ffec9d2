// Package chunker splits document text into bounded, chapter-tagged chunks.
package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
)

// headingPattern matches chapter heading lines: a line beginning with
// Chapter, Part, or Book followed by a number. Case-insensitive. The
// line must additionally be preceded by start-of-text or a blank line,
// which the scanner tracks separately.
var headingPattern = regexp.MustCompile(`(?i)^(?:chapter|part|book)\s+[0-9]`)

// Splitter splits raw text into an ordered sequence of chunks no larger
// than a configured size limit, tagging each with its chapter. Output is
// deterministic for identical input and chunk size.
type Splitter struct {
	chunkSize int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the chunk size limit in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: domain.DefaultChunkSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ChunkSize returns the configured size limit.
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// section is a run of prose belonging to one chapter label.
type section struct {
	chapter string
	body    []string
}

// Split chunks the text. Chapter headings become chunk labels, never
// chunk content. Every chunk starts with status pending.
func (s *Splitter) Split(text string) []domain.Chunk {
	var chunks []domain.Chunk

	index := 0
	for _, sec := range s.sections(text) {
		remaining := strings.TrimSpace(strings.Join(sec.body, "\n"))
		if remaining == "" {
			// A heading with no following text contributes no chunks.
			continue
		}

		chapterIndex := 0
		for remaining != "" {
			var piece string
			if len(remaining) <= s.chunkSize {
				piece, remaining = remaining, ""
			} else {
				cut := s.splitPoint(remaining)
				piece, remaining = remaining[:cut], remaining[cut:]
			}

			piece = strings.TrimSpace(piece)
			if piece == "" {
				continue
			}

			chunks = append(chunks, domain.Chunk{
				Index:        index,
				Chapter:      sec.chapter,
				ChapterIndex: chapterIndex,
				Content:      piece,
				Status:       domain.ChunkStatusPending,
			})
			index++
			chapterIndex++
		}
	}

	return chunks
}

// sections scans for chapter headings and splits the text into runs of
// prose. Text before the first heading belongs to the default chapter.
func (s *Splitter) sections(text string) []section {
	lines := strings.Split(text, "\n")
	secs := []section{{chapter: domain.DefaultChapter}}

	prevBlank := true // start-of-text counts as preceded-by-blank
	for _, line := range lines {
		if prevBlank && headingPattern.MatchString(line) {
			secs = append(secs, section{chapter: strings.TrimSpace(line)})
			prevBlank = false
			continue
		}

		cur := &secs[len(secs)-1]
		cur.body = append(cur.body, line)
		prevBlank = strings.TrimSpace(line) == ""
	}

	return secs
}

// splitPoint picks the cut position for a remainder longer than the
// limit. Priority is absolute: the last double line-break in the window
// wins over any sentence end, which wins over any plain space. With no
// qualifying position the cut lands exactly at the limit.
func (s *Splitter) splitPoint(remaining string) int {
	window := remaining[:s.chunkSize]

	if i := strings.LastIndex(window, "\n\n"); i >= 0 {
		return i + 2
	}
	if i := lastSentenceEnd(remaining, s.chunkSize); i >= 0 {
		return i + 1
	}
	if i := strings.LastIndexByte(window, ' '); i >= 0 {
		return i + 1
	}

	cut := s.chunkSize
	for cut > 0 && !utf8.RuneStart(remaining[cut]) {
		cut--
	}
	if cut == 0 {
		_, size := utf8.DecodeRuneInString(remaining)
		cut = size
	}
	return cut
}

// lastSentenceEnd returns the position of the last sentence-ending
// punctuation within the first limit bytes that is followed by a space,
// or -1 when there is none.
func lastSentenceEnd(remaining string, limit int) int {
	for i := limit - 1; i >= 0; i-- {
		switch remaining[i] {
		case '.', '!', '?':
			if i+1 < len(remaining) && remaining[i+1] == ' ' {
				return i
			}
		}
	}
	return -1
}
