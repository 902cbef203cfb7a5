package search

import (
	"os/exec"
)

// Executable names looked up on PATH.
const (
	RipgrepBinary = "rg"
	GrepBinary    = "grep"
)

// Capability is the best external search tool present on the host.
type Capability int

const (
	// CapabilityNone means only the in-memory scan is available.
	CapabilityNone Capability = iota
	// CapabilityBasic means grep is available.
	CapabilityBasic
	// CapabilityFast means ripgrep is available.
	CapabilityFast
)

// String returns a string representation of the capability.
func (c Capability) String() string {
	switch c {
	case CapabilityFast:
		return "fast"
	case CapabilityBasic:
		return "basic"
	default:
		return "none"
	}
}

// LookPathFunc finds an executable, like exec.LookPath.
type LookPathFunc func(file string) (string, error)

// ProbeResult records which tools were found.
type ProbeResult struct {
	Capability  Capability
	RipgrepPath string
	GrepPath    string
}

// Probe checks PATH for ripgrep, then grep. Presence is enough; versions are
// not checked.
func Probe(lookPath LookPathFunc) ProbeResult {
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	var p ProbeResult
	if path, err := lookPath(RipgrepBinary); err == nil {
		p.RipgrepPath = path
	}
	if path, err := lookPath(GrepBinary); err == nil {
		p.GrepPath = path
	}

	switch {
	case p.RipgrepPath != "":
		p.Capability = CapabilityFast
	case p.GrepPath != "":
		p.Capability = CapabilityBasic
	default:
		p.Capability = CapabilityNone
	}
	return p
}
