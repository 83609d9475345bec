package template

import (
	"embed"
	"fmt"
)

//go:embed caddy/*.tmpl
var caddyTemplates embed.FS

// readTemplate returns the embedded template source for a block kind
func readTemplate(kind string) (string, error) {
	content, err := caddyTemplates.ReadFile(fmt.Sprintf("caddy/%s.tmpl", kind))
	if err != nil {
		return "", fmt.Errorf("template not found: caddy/%s", kind)
	}
	return string(content), nil
}
