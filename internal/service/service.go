package service

import "context"

// Service is the interface for the program serving the Caddyfile.
type Service interface {
	// Name returns the service name
	Name() string

	// Validate checks the configuration at path without applying it.
	// The diagnostic is the validator's output, returned verbatim.
	Validate(ctx context.Context, path string) (diagnostic string, err error)

	// Reload tells the running server to pick up the on-disk configuration
	Reload(ctx context.Context) error

	// Version reports the installed server version
	Version(ctx context.Context) (string, error)

	// Installed reports whether the server binary can be found
	Installed() bool
}
