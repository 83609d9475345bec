package caddyfile

import "strings"

// scanner tracks brace depth across lines. Braces inside double-quoted or
// backtick-quoted tokens and after a '#' comment token are ignored.
type scanner struct {
	depth int
	quote byte // 0, '"' or '`'
}

// lineScan is the result of feeding one line through the scanner.
type lineScan struct {
	opener   int  // byte index of the block-opening '{' when the line started at depth 0, else -1
	closer   int  // byte index of the last '}' that brought depth back to 0, else -1
	negative bool // a '}' appeared at depth 0
	reopened bool // a block opened on the line where the previous one closed
}

// feed processes a single line (with or without its terminator).
func (s *scanner) feed(line string) lineScan {
	res := lineScan{opener: -1, closer: -1}
	startDepth := s.depth
	firstBrace := -1
	closedBlock := false

	for i := 0; i < len(line); i++ {
		c := line[i]

		if s.quote != 0 {
			if c == '\\' && s.quote == '"' {
				i++
				continue
			}
			if c == s.quote {
				s.quote = 0
			}
			continue
		}

		switch c {
		case '"', '`':
			s.quote = c
		case '#':
			if i == 0 || isSpace(line[i-1]) {
				return s.finish(res, startDepth, firstBrace)
			}
		case '{':
			if s.depth == 0 && closedBlock {
				res.reopened = true
				return res
			}
			if s.depth == 0 && startDepth == 0 {
				if firstBrace < 0 {
					firstBrace = i
				}
				if res.opener < 0 && (i+1 == len(line) || isSpace(line[i+1])) {
					res.opener = i
				}
			}
			s.depth++
		case '}':
			if s.depth == 0 {
				res.negative = true
				return res
			}
			s.depth--
			if s.depth == 0 {
				res.closer = i
				// A placeholder such as {$DOMAIN} in a header is not a block.
				closedBlock = startDepth > 0 || res.opener >= 0
			}
		}
	}

	return s.finish(res, startDepth, firstBrace)
}

// finish falls back to the first '{' as the opener when the line opened a
// block without a whitespace-delimited brace token (e.g. "a.com{").
func (s *scanner) finish(res lineScan, startDepth, firstBrace int) lineScan {
	if startDepth == 0 && res.opener < 0 && s.depth > 0 {
		res.opener = firstBrace
	}
	return res
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// splitLines splits text into lines, keeping each line's terminator.
// The last line has no terminator when text does not end with a newline.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
