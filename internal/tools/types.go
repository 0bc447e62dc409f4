package tools

// State is the outcome of probing an external tool.
type State string

const (
	// StatePresent means the tool ran and exited zero.
	StatePresent State = "present"
	// StateAbsent means the executable could not be found.
	StateAbsent State = "absent"
	// StateProbeError means the executable exists but the probe itself
	// misbehaved (non-zero exit, permission denied, timeout).
	StateProbeError State = "probe-error"
)

// Status captures the resolved state of a tool. It is not modified after
// Probe returns it.
type Status struct {
	Tool    string `json:"tool"`
	State   State  `json:"state"`
	Version string `json:"version,omitempty"`
	Hint    string `json:"hint,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Present reports whether the tool is usable.
func (s Status) Present() bool {
	return s.State == StatePresent
}
