// Package template renders Caddyfile site blocks from embedded Go templates.
//
// One template exists per block kind:
//
//	caddy/reverse_proxy.tmpl   name { reverse_proxy <target> }
//	caddy/redirect.tmpl        name { redir <target> }
//	caddy/raw.tmpl             name { <body verbatim> }
//
// Templates are embedded in the binary using go:embed directives.
//
// # Rendering
//
//	text, err := template.Render(template.ReverseProxy, template.BlockData{
//	    Name:   "app.example.com",
//	    Target: "127.0.0.1:8080",
//	})
//
// produces
//
//	app.example.com {
//		reverse_proxy 127.0.0.1:8080
//	}
//
// Rendered blocks are always terminated by a newline so they can be spliced
// into a Caddyfile on a line boundary.
package template
