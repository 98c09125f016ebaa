package domain

type Action int

const (
	ActionCopy Action = iota
	ActionSkipExisting
	ActionSkipExcluded
)

func (a Action) String() string {
	switch a {
	case ActionCopy:
		return "copy"
	case ActionSkipExisting:
		return "skip-existing"
	case ActionSkipExcluded:
		return "skip-excluded"
	default:
		return "unknown"
	}
}

type CopyDecision struct {
	File       RemoteFile
	Action     Action
	TargetPath string
}

// RootPlan holds the decisions for one source root, in listing order.
type RootPlan struct {
	Root      string
	DestRoot  string
	Found     int
	Decisions []CopyDecision
}

func (p RootPlan) ToCopy() []CopyDecision {
	var out []CopyDecision
	for _, d := range p.Decisions {
		if d.Action == ActionCopy {
			out = append(out, d)
		}
	}
	return out
}

// RootFailure records a source root that could not be enumerated.
type RootFailure struct {
	Root string
	Err  error
}

type SyncPlan struct {
	Roots    []RootPlan
	Failures []RootFailure
}

func (p SyncPlan) Decisions() []CopyDecision {
	var out []CopyDecision
	for _, r := range p.Roots {
		out = append(out, r.Decisions...)
	}
	return out
}

func (p SyncPlan) ToCopy() []CopyDecision {
	var out []CopyDecision
	for _, r := range p.Roots {
		out = append(out, r.ToCopy()...)
	}
	return out
}

func (p SyncPlan) Count(action Action) int {
	n := 0
	for _, r := range p.Roots {
		for _, d := range r.Decisions {
			if d.Action == action {
				n++
			}
		}
	}
	return n
}
