package projects

import "crowdfund-go/internal/model"

// Field selects the numeric project field a Range applies to.
type Field int

const (
	PledgeGoal Field = iota
	Collected
)

func (f Field) String() string {
	switch f {
	case PledgeGoal:
		return "pledge goal"
	case Collected:
		return "collected amount"
	default:
		return "unknown"
	}
}

func (f Field) value(p model.Project) float64 {
	if f == Collected {
		return p.Collected
	}
	return p.PledgeGoal
}

// Range is an inclusive pair of optional bounds. A nil bound imposes no
// constraint on its side.
type Range struct {
	Lower *float64
	Upper *float64
}

// Supplied reports whether at least one bound was given.
func (r Range) Supplied() bool {
	return r.Lower != nil || r.Upper != nil
}

func (r Range) contains(v float64) bool {
	if r.Lower != nil && v < *r.Lower {
		return false
	}
	if r.Upper != nil && v > *r.Upper {
		return false
	}
	return true
}

// FilterByRange keeps the projects whose field lies within r, preserving
// input order. With no bounds the input is returned unchanged.
func FilterByRange(projects []model.Project, field Field, r Range) []model.Project {
	if !r.Supplied() {
		return projects
	}
	out := make([]model.Project, 0, len(projects))
	for _, p := range projects {
		if r.contains(field.value(p)) {
			out = append(out, p)
		}
	}
	return out
}
