// Package service wraps the external programs that check and apply a
// Caddyfile: the validator and the reload collaborator.
//
// The Caddy implementation shells out through executor.CommandExecutor:
//
//	caddy validate --config <path> --adapter caddyfile
//	systemctl reload caddy        (falls back to "caddy reload")
//
// Both calls take a context; callers bound them with a timeout so a hung
// process is treated as a failure instead of blocking forever.
//
// # Testing
//
// Use NewCaddyWithExecutor with an executor.MockExecutor to test the
// command lines, or MockService to stub the collaborator entirely:
//
//	svc := service.NewMockService()
//	svc.ValidateFunc = func(path string) (string, error) {
//	    return "Error: unrecognized directive", errors.New("exit status 1")
//	}
package service
