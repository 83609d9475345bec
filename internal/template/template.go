package template

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Template names for the block kinds that can be rendered.
const (
	ReverseProxy = "reverse_proxy"
	Redirect     = "redirect"
	Raw          = "raw"
)

// BlockData contains data for rendering a site block
type BlockData struct {
	Name   string
	Target string
	Body   string
}

// Render renders the block template for the given kind.
// The result always ends with a newline.
func Render(kind string, data BlockData) (string, error) {
	content, err := readTemplate(kind)
	if err != nil {
		return "", err
	}

	funcMap := template.FuncMap{
		"replace": strings.ReplaceAll,
	}

	tmpl, err := template.New(kind).Funcs(funcMap).Parse(content)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	// Raw bodies are spliced between the header and the closing brace,
	// so they must end on a line boundary.
	if data.Body != "" && !strings.HasSuffix(data.Body, "\n") {
		data.Body += "\n"
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}

	return buf.String(), nil
}

// Available returns all block kinds that have a template
func Available() []string {
	return []string{ReverseProxy, Redirect, Raw}
}
