package caddyfile

import (
	"strconv"
	"strings"
)

// Kind classifies a block by the directive that serves its traffic.
type Kind string

// Block kinds.
const (
	KindReverseProxy Kind = "reverse_proxy"
	KindRedirect     Kind = "redirect"
	KindOther        Kind = "other"
)

// DefaultUpstream is the reverse proxy target used when none is given.
const DefaultUpstream = "127.0.0.1:8080"

// ValidKinds returns the kinds that can be created by Add.
func ValidKinds() []Kind {
	return []Kind{KindReverseProxy, KindRedirect}
}

// ParseKind converts user input to a Kind. Common aliases are accepted.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reverse_proxy", "reverse-proxy", "proxy":
		return KindReverseProxy, true
	case "redirect", "redir":
		return KindRedirect, true
	default:
		return "", false
	}
}

// Block is a named top-level region of a Caddyfile.
type Block struct {
	Name   string `json:"name"`             // header text before the opening brace
	Kind   Kind   `json:"kind"`             // derived from Body
	Target string `json:"target,omitempty"` // upstream or redirect destination, if Kind is known
	Body   string `json:"body"`             // text between the braces, opaque
	Raw    string `json:"raw"`              // full block text, header through closing line
}

// Entry is the display form of a block.
type Entry struct {
	Name   string `json:"name"`
	Kind   Kind   `json:"kind"`
	Target string `json:"target,omitempty"`
}

// Entry returns the display form of the block.
func (b *Block) Entry() Entry {
	return Entry{Name: b.Name, Kind: b.Kind, Target: b.Target}
}

// newBlock builds a Block from its raw text and the offsets of its
// opening and closing braces within raw.
func newBlock(name, raw string, opener, closer int) *Block {
	b := &Block{
		Name: name,
		Raw:  raw,
		Body: extractBody(raw[opener+1 : closer]),
	}
	b.Kind, b.Target = detectKind(b.Body)
	return b
}

// extractBody normalizes the text between a block's braces. For multi-line
// blocks the remainder of the header line and the indentation before the
// closing brace are dropped, leaving whole lines.
func extractBody(inner string) string {
	if !strings.Contains(inner, "\n") {
		return strings.TrimSpace(inner)
	}
	if nl := strings.Index(inner, "\n"); strings.TrimSpace(inner[:nl]) == "" {
		inner = inner[nl+1:]
	}
	if nl := strings.LastIndex(inner, "\n"); nl >= 0 && strings.TrimSpace(inner[nl+1:]) == "" {
		inner = inner[:nl+1]
	}
	return inner
}

// detectKind returns the kind and target of the first reverse_proxy or
// redir directive in body.
func detectKind(body string) (Kind, string) {
	for _, line := range strings.Split(body, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		args := trimArgs(fields[1:])
		switch fields[0] {
		case "reverse_proxy":
			if len(args) > 1 && isMatcher(args[0]) {
				args = args[1:]
			}
			return KindReverseProxy, first(args)
		case "redir":
			if len(args) > 1 && isMatcher(args[0]) && !isRedirCode(args[1]) {
				args = args[1:]
			}
			return KindRedirect, first(args)
		}
	}
	return KindOther, ""
}

// trimArgs cuts directive arguments at the start of a sub-block or comment.
func trimArgs(args []string) []string {
	for i, a := range args {
		if a == "{" || strings.HasPrefix(a, "#") {
			return args[:i]
		}
	}
	return args
}

func isMatcher(arg string) bool {
	return arg == "*" || strings.HasPrefix(arg, "@") || strings.HasPrefix(arg, "/")
}

func isRedirCode(arg string) bool {
	switch arg {
	case "permanent", "temporary", "html":
		return true
	}
	_, err := strconv.Atoi(arg)
	return err == nil
}

func first(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
