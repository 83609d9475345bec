// Package manager coordinates changes to a Caddyfile so that a bad edit
// never reaches the running server.
//
// Every mutation runs the same pipeline under an exclusive file lock:
//
//	read -> parse -> mutate -> snapshot -> commit (Staged)
//	     -> validate (Validated, or Failed -> RolledBack)
//	     -> reload (Applied)
//
// A validation failure restores the snapshot, so the file on disk is
// byte-identical to its state before the call and the error carries the
// validator's diagnostic. A reload failure is different: the new file is
// valid and stays in place, and the error says the service was not
// reloaded.
//
// Usage:
//
//	m := manager.New(manager.Settings{Caddyfile: "/etc/caddy/Caddyfile"}, svc)
//	res, err := m.Add(ctx, "app.example.com", caddyfile.KindReverseProxy, "", manager.Options{})
//	if errors.Is(err, errors.ErrValidationFailed) {
//	    fmt.Println(errors.DetailOf(err))
//	}
package manager
