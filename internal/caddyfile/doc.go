// Package caddyfile locates and edits top-level blocks in a Caddyfile
// without parsing the full Caddyfile grammar.
//
// A block is recognized by a header line "<name> {" at brace depth 0. Its
// extent is determined by counting braces (skipping comments and quoted
// tokens), so bodies may contain nested sub-blocks such as
//
//	app.example.com {
//		reverse_proxy 127.0.0.1:8080 {
//			health_checks {
//				interval 10s
//			}
//		}
//	}
//
// The body of a block is treated as opaque text. Only the first
// reverse_proxy or redir directive is inspected, to classify the block
// for display.
//
// # Locating
//
//	span, found, err := caddyfile.Find(text, "app.example.com")
//
// found is false when no header matches, and always for the empty name of
// the global options block. err is non-nil only when the braces in text do
// not balance or a block opens on the line where another one closes.
//
// # Editing
//
// A Document holds the file as an ordered sequence of blocks and the text
// between them. Serializing an unmodified Document reproduces the input
// exactly, and every mutation leaves the bytes of other blocks untouched.
//
//	doc, err := caddyfile.Parse(text)
//	_, err = doc.Add("a.com", caddyfile.KindReverseProxy, "")
//	_, err = doc.Replace("b.com", caddyfile.KindRedirect, "https://x.com")
//	err = doc.Remove("c.com")
//	newText := doc.String()
//
// Replace keeps the block at its position; Add always appends.
//
// Document performs no I/O. Reading and writing the file is the job of the
// backup and manager packages.
package caddyfile
