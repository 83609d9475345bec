package caddyfile

import (
	"fmt"
	"strings"

	"github.com/ksyq12/caddyman/internal/errors"
)

// Span is the extent of a block within a Caddyfile.
// Lines are 0-based and inclusive; Start and End are byte offsets with End
// exclusive, so text[Start:End] is the block including its final newline.
type Span struct {
	StartLine int
	EndLine   int
	Start     int
	End       int
}

// Lines returns the number of lines covered by the span.
func (s Span) Lines() int {
	return s.EndLine - s.StartLine + 1
}

// rawBlock is a top-level block found by scanBlocks.
type rawBlock struct {
	name   string
	span   Span
	opener int // absolute byte offset of the opening '{'
	closer int // absolute byte offset of the matching '}'
}

// scanBlocks finds every top-level block in text, in file order.
func scanBlocks(text string) ([]rawBlock, error) {
	var (
		s      scanner
		blocks []rawBlock
		cur    *rawBlock
		offset int
	)

	for i, line := range splitLines(text) {
		res := s.feed(line)
		if res.negative {
			return nil, errors.Malformed(i+1, "unexpected '}'")
		}
		if res.reopened {
			return nil, errors.Malformed(i+1, "a block opens on the line where another one closes")
		}

		if cur == nil && res.opener >= 0 {
			cur = &rawBlock{
				name:   strings.TrimSpace(line[:res.opener]),
				opener: offset + res.opener,
				span:   Span{StartLine: i, Start: offset},
			}
		}

		if cur != nil && s.depth == 0 {
			cur.span.EndLine = i
			cur.span.End = offset + len(line)
			cur.closer = offset + res.closer
			blocks = append(blocks, *cur)
			cur = nil
		}

		offset += len(line)
	}

	if cur != nil {
		return nil, errors.Malformed(cur.span.StartLine+1, fmt.Sprintf("block %q is never closed", cur.name))
	}
	return blocks, nil
}

// Find locates the top-level block whose header is "<name> {".
// The name is compared literally. Nested braces in the body are tracked,
// so the span always ends at the brace that closes the header's brace.
// A missing block is reported with found=false, not an error; the
// unnamed global options block is never found. An error
// is returned only when the braces in text do not balance.
func Find(text, name string) (span Span, found bool, err error) {
	blocks, err := scanBlocks(text)
	if err != nil {
		return Span{}, false, err
	}
	if name == "" {
		return Span{}, false, nil
	}
	for _, b := range blocks {
		if b.name == name {
			return b.span, true, nil
		}
	}
	return Span{}, false, nil
}
