package scan

import "fmt"

// State is the orchestrator's scan state.
type State int

const (
	Idle State = iota
	ScanningWholeScene
	FoundFirstLint
	Complete
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ScanningWholeScene:
		return "scanning_whole_scene"
	case FoundFirstLint:
		return "found_first_lint"
	case Complete:
		return "complete"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Mode selects how a scan treats the first object with lint.
type Mode int

const (
	// StopAtFirstLint halts on the first object with lint and surfaces its
	// flagged elements as the selection to apply.
	StopAtFirstLint Mode = iota
	// FullSweep visits every object and records which ones have lint.
	FullSweep
)

func (m Mode) String() string {
	switch m {
	case StopAtFirstLint:
		return "first"
	case FullSweep:
		return "sweep"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "first" or "sweep".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "first", "stop", "stop-at-first-lint":
		return StopAtFirstLint, nil
	case "sweep", "full", "full-sweep":
		return FullSweep, nil
	default:
		return StopAtFirstLint, fmt.Errorf("unknown scan mode %q (want first or sweep)", s)
	}
}

// Outcome classifies one visited object.
type Outcome int

const (
	LintFree Outcome = iota
	HasLint
	Errored
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case LintFree:
		return "lint_free"
	case HasLint:
		return "has_lint"
	case Errored:
		return "errored"
	case Skipped:
		return "skipped"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}
