package caddyfile

import (
	"strings"

	"github.com/ksyq12/caddyman/internal/errors"
	"github.com/ksyq12/caddyman/internal/template"
)

// segment is either unstructured text (block == nil) or a top-level block.
type segment struct {
	text  string
	block *Block
}

// Document is an in-memory Caddyfile: an ordered sequence of top-level
// blocks separated by unstructured text (preamble, comments, blank lines).
// String reproduces the parsed text byte-for-byte until a mutation is made,
// and mutations only touch the segments they name.
type Document struct {
	// DefaultUpstream is used by Add and Replace when a reverse proxy
	// target is empty.
	DefaultUpstream string

	segments []segment
}

// Parse reads a Caddyfile into a Document.
func Parse(text string) (*Document, error) {
	blocks, err := scanBlocks(text)
	if err != nil {
		return nil, err
	}

	doc := &Document{DefaultUpstream: DefaultUpstream}
	pos := 0
	for _, rb := range blocks {
		doc.appendText(text[pos:rb.span.Start])
		raw := text[rb.span.Start:rb.span.End]
		b := newBlock(rb.name, raw, rb.opener-rb.span.Start, rb.closer-rb.span.Start)
		doc.segments = append(doc.segments, segment{text: raw, block: b})
		pos = rb.span.End
	}
	doc.appendText(text[pos:])

	return doc, nil
}

// String serializes the document.
func (d *Document) String() string {
	var sb strings.Builder
	for _, s := range d.segments {
		sb.WriteString(s.text)
	}
	return sb.String()
}

// Get returns the block with the given name, or nil.
func (d *Document) Get(name string) *Block {
	if i := d.index(name); i >= 0 {
		return d.segments[i].block
	}
	return nil
}

// Blocks returns all top-level blocks in file order, including the global
// options block and snippets.
func (d *Document) Blocks() []*Block {
	var blocks []*Block
	for _, s := range d.segments {
		if s.block != nil {
			blocks = append(blocks, s.block)
		}
	}
	return blocks
}

// List returns the named blocks in file order. The global options block
// has no name and is skipped.
func (d *Document) List() []Entry {
	entries := make([]Entry, 0)
	for _, b := range d.Blocks() {
		if b.Name == "" {
			continue
		}
		entries = append(entries, b.Entry())
	}
	return entries
}

// Add appends a new block at the end of the document, separated from the
// previous content by one blank line.
func (d *Document) Add(name string, kind Kind, target string) (*Block, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if existing := d.Get(name); existing != nil {
		return nil, errors.AlreadyExists(name, existing.Raw)
	}

	b, err := d.render(name, kind, target)
	if err != nil {
		return nil, err
	}

	if len(d.segments) > 0 {
		d.ensureTrailingNewline()
		if last := d.segments[len(d.segments)-1]; last.block != nil || !endsWithBlankLine(last.text) {
			d.appendText("\n")
		}
	}
	d.segments = append(d.segments, segment{text: b.Raw, block: b})
	return b, nil
}

// Remove deletes a block together with one adjacent blank separator line:
// the one before it if present, otherwise the one after it.
func (d *Document) Remove(name string) error {
	i := d.index(name)
	if i < 0 {
		return errors.NotFound(name)
	}

	switch {
	case i > 0 && d.segments[i-1].block == nil && endsWithBlankLine(d.segments[i-1].text):
		d.segments[i-1].text = dropLastLine(d.segments[i-1].text)
	case i+1 < len(d.segments) && d.segments[i+1].block == nil && startsWithBlankLine(d.segments[i+1].text):
		d.segments[i+1].text = dropFirstLine(d.segments[i+1].text)
	}

	d.segments = append(d.segments[:i], d.segments[i+1:]...)
	d.compact()
	return nil
}

// Replace renders a new block of the given kind and puts it where the old
// block was. Block order is preserved.
func (d *Document) Replace(name string, kind Kind, target string) (*Block, error) {
	i := d.index(name)
	if i < 0 {
		return nil, errors.NotFound(name)
	}
	b, err := d.render(name, kind, target)
	if err != nil {
		return nil, err
	}
	d.segments[i] = segment{text: b.Raw, block: b}
	return b, nil
}

// ReplaceBody swaps a block's body for the given opaque text, in place.
func (d *Document) ReplaceBody(name, body string) (*Block, error) {
	i := d.index(name)
	if i < 0 {
		return nil, errors.NotFound(name)
	}

	raw, err := template.Render(template.Raw, template.BlockData{Name: name, Body: body})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to render block", err)
	}

	b, err := blockFromRaw(name, raw)
	if err != nil {
		return nil, err
	}
	d.segments[i] = segment{text: raw, block: b}
	return b, nil
}

func (d *Document) render(name string, kind Kind, target string) (*Block, error) {
	var tmpl string
	switch kind {
	case KindReverseProxy:
		tmpl = template.ReverseProxy
		if target == "" {
			target = d.DefaultUpstream
		}
		if target == "" {
			target = DefaultUpstream
		}
	case KindRedirect:
		tmpl = template.Redirect
		if target == "" {
			return nil, errors.InvalidInput("redirect target is required")
		}
	default:
		return nil, errors.InvalidInput("unsupported block kind: " + string(kind))
	}
	// Placeholders such as {uri} are fine; stray braces fail the rescan.
	if strings.ContainsAny(target, "\n\r \t") {
		return nil, errors.InvalidInput("target must be a single token: " + target)
	}

	raw, err := template.Render(tmpl, template.BlockData{Name: name, Target: target})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to render block", err)
	}
	return blockFromRaw(name, raw)
}

// blockFromRaw rescans rendered text so a body with unbalanced braces is
// rejected before it can reach the file.
func blockFromRaw(name, raw string) (*Block, error) {
	blocks, err := scanBlocks(raw)
	if err != nil {
		return nil, errors.InvalidInput("block body has unbalanced braces: " + err.Error())
	}
	if len(blocks) != 1 || blocks[0].name != name || blocks[0].span.End != len(raw) {
		return nil, errors.InvalidInput("block body must not close the block")
	}
	return newBlock(name, raw, blocks[0].opener, blocks[0].closer), nil
}

// index returns the segment holding the named block. The global options
// block has no name and cannot be addressed.
func (d *Document) index(name string) int {
	if name == "" {
		return -1
	}
	for i, s := range d.segments {
		if s.block != nil && s.block.Name == name {
			return i
		}
	}
	return -1
}

// appendText adds unstructured text, merging it into a trailing text segment.
func (d *Document) appendText(text string) {
	if text == "" {
		return
	}
	if n := len(d.segments); n > 0 && d.segments[n-1].block == nil {
		d.segments[n-1].text += text
		return
	}
	d.segments = append(d.segments, segment{text: text})
}

func (d *Document) ensureTrailingNewline() {
	last := &d.segments[len(d.segments)-1]
	if strings.HasSuffix(last.text, "\n") {
		return
	}
	last.text += "\n"
	if last.block != nil {
		last.block.Raw = last.text
	}
}

// compact drops empty text segments and merges adjacent ones.
func (d *Document) compact() {
	segments := d.segments
	d.segments = nil
	for _, s := range segments {
		if s.block != nil {
			d.segments = append(d.segments, s)
			continue
		}
		d.appendText(s.text)
	}
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.InvalidInput("block name cannot be empty")
	}
	if name != strings.TrimSpace(name) {
		return errors.InvalidInput("block name cannot start or end with whitespace")
	}
	if strings.ContainsAny(name, "{}\n#\"`") {
		return errors.InvalidInput("block name contains a reserved character: " + name)
	}
	return nil
}

func endsWithBlankLine(text string) bool {
	lines := splitLines(text)
	return len(lines) > 0 && isBlank(lines[len(lines)-1]) && strings.HasSuffix(text, "\n")
}

func startsWithBlankLine(text string) bool {
	lines := splitLines(text)
	return len(lines) > 0 && isBlank(lines[0]) && strings.HasSuffix(lines[0], "\n")
}

func dropLastLine(text string) string {
	lines := splitLines(text)
	return strings.Join(lines[:len(lines)-1], "")
}

func dropFirstLine(text string) string {
	return strings.Join(splitLines(text)[1:], "")
}
