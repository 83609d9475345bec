package manager

// State is the position of one mutation in the apply pipeline.
//
//	Idle -> Staged -> Validated -> Applied
//	                \-> Failed -> RolledBack
type State int

const (
	Idle       State = iota // nothing written yet
	Staged                  // new content committed to disk
	Validated               // validator accepted the committed file
	Applied                 // live service reloaded
	Failed                  // validator rejected the committed file
	RolledBack              // snapshot restored after Failed
)

var stateNames = [...]string{
	Idle:       "idle",
	Staged:     "staged",
	Validated:  "validated",
	Applied:    "applied",
	Failed:     "failed",
	RolledBack: "rolled_back",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// MarshalText renders the state by name in JSON output.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
