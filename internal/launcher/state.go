package launcher

// State is a step of the bootstrap sequence.
type State int

const (
	StateVersionCheck State = iota
	StatePlatformCheck
	StateToolCheck
	StateProvision
	StateInstall
	StateServe
	StateDone
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateVersionCheck:
		return "version-check"
	case StatePlatformCheck:
		return "platform-check"
	case StateToolCheck:
		return "tool-check"
	case StateProvision:
		return "provision"
	case StateInstall:
		return "install"
	case StateServe:
		return "serve"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of Run.
type Outcome struct {
	// State is StateDone or StateAborted.
	State State
	// Stage is the last step that ran; for aborted runs, the one that failed.
	Stage    State
	ExitCode int
	// Interrupted is true when the server was stopped by a signal.
	Interrupted bool
	Err         error
}

func (o Outcome) Aborted() bool {
	return o.State == StateAborted
}
