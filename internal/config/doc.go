// Package config loads the caddyman settings stored in YAML format.
//
// Configuration lives at ~/.config/caddyman/config.yaml, or at the path in
// $CADDYMAN_CONFIG. A missing file is not an error: every field has a
// default, and the Caddyfile location falls back to the platform default
// (/etc/caddy/Caddyfile on Linux, the Homebrew etc directory on macOS).
//
// Example config.yaml:
//
//	caddyfile: /etc/caddy/Caddyfile
//	default_upstream: 127.0.0.1:3000
//	env_file: /etc/caddy/caddyman.env
//	caddy:
//	  binary: /usr/bin/caddy
//	  service: caddy
//	  adapter: caddyfile
//	command_timeout: 30s
//	lock_timeout: 10s
//
// $CADDYMAN_CADDYFILE overrides the caddyfile field; the --caddyfile flag
// overrides both.
package config
