// Package modes holds the registry of analysis actions offered to the user
// and decides which of them apply to a selection.
package modes

import (
	"context"

	"github.com/kobzarvs/qguru/internal/offsets"
)

// Applicability decides whether a mode can run for a selection. It is either
// a Local predicate or Remote, in which case the engine is asked.
type Applicability interface {
	applicability()
}

// Local evaluates applicability from the character range alone.
type Local func(sel offsets.Selection) bool

func (Local) applicability() {}

// Remote defers applicability to the engine's "what" query.
type Remote struct{}

func (Remote) applicability() {}

var (
	Always   = Local(func(offsets.Selection) bool { return true })
	Never    = Local(func(offsets.Selection) bool { return false })
	NonEmpty = Local(func(sel offsets.Selection) bool { return sel.Start != sel.End })
)

// Mode is one analysis action.
type Mode struct {
	ID          string
	Name        string
	Description string
	// Menu is false for modes that are only reachable programmatically.
	Menu    bool
	Applies Applicability
}

// Asker asks the engine which modes apply at an encoded position.
type Asker interface {
	ApplicableModes(ctx context.Context, pos string) ([]string, error)
}

// Registry is an ordered, immutable set of modes.
type Registry struct {
	modes []Mode
	byID  map[string]int
}

func NewRegistry(modes ...Mode) *Registry {
	r := &Registry{
		modes: append([]Mode(nil), modes...),
		byID:  make(map[string]int, len(modes)),
	}
	for i, m := range r.modes {
		r.byID[m.ID] = i
	}
	return r
}

// Modes returns a copy of the registered modes in order.
func (r *Registry) Modes() []Mode {
	return append([]Mode(nil), r.modes...)
}

func (r *Registry) Lookup(id string) (Mode, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Mode{}, false
	}
	return r.modes[i], true
}

// NeedsRemote reports whether any menu mode defers to the engine.
func (r *Registry) NeedsRemote() bool {
	for _, m := range r.modes {
		if _, ok := m.Applies.(Remote); ok && m.Menu {
			return true
		}
	}
	return false
}

// Evaluate returns the ids of menu modes whose local predicate accepts sel.
// Remote modes are never included.
func (r *Registry) Evaluate(sel offsets.Selection) map[string]bool {
	out := make(map[string]bool)
	if !sel.Valid() {
		return out
	}
	for _, m := range r.modes {
		if !m.Menu {
			continue
		}
		if pred, ok := m.Applies.(Local); ok && pred != nil && pred(sel) {
			out[m.ID] = true
		}
	}
	return out
}

// Applicable returns the ids of menu modes that apply to sel, whose encoded
// engine position is pos. The engine is consulted at most once and only when
// some mode is Remote. An invalid selection has no applicable modes.
func (r *Registry) Applicable(ctx context.Context, sel offsets.Selection, pos string, asker Asker) (map[string]bool, error) {
	out := r.Evaluate(sel)
	if !sel.Valid() || !r.NeedsRemote() {
		return out, nil
	}
	ids, err := asker.ApplicableModes(ctx, pos)
	if err != nil {
		return out, err
	}
	confirmed := make(map[string]bool, len(ids))
	for _, id := range ids {
		confirmed[id] = true
	}
	for _, m := range r.modes {
		if _, ok := m.Applies.(Remote); ok && m.Menu && confirmed[m.ID] {
			out[m.ID] = true
		}
	}
	return out, nil
}

// GuruModes returns the modes of the guru engine. With remote set every menu
// mode is confirmed by the engine; otherwise coarse local predicates are used
// and only "freevars" requires a non-empty selection.
func GuruModes(remote bool) *Registry {
	var applies, ranged Applicability = Always, NonEmpty
	if remote {
		applies, ranged = Remote{}, Remote{}
	}
	return NewRegistry(
		Mode{ID: "definition", Name: "Definition", Menu: false, Applies: Never,
			Description: "Show the definition of the selected identifier."},
		Mode{ID: "describe", Name: "Describe", Menu: true, Applies: applies,
			Description: "Describe the selected syntax, its kind, type and methods."},
		Mode{ID: "callees", Name: "Call targets", Menu: true, Applies: applies,
			Description: "Show possible callees of the function call at the current point."},
		Mode{ID: "callers", Name: "Callers", Menu: true, Applies: applies,
			Description: "Show the set of callers of the function containing the current point."},
		Mode{ID: "callstack", Name: "Call stack", Menu: true, Applies: applies,
			Description: "Show an arbitrary path from a root of the call graph to the function containing the current point."},
		Mode{ID: "freevars", Name: "Free variables", Menu: true, Applies: ranged,
			Description: "Enumerate the free variables of the current selection."},
		Mode{ID: "implements", Name: "Implements", Menu: true, Applies: applies,
			Description: "Describe the 'implements' relation for types in the package containing the current point."},
		Mode{ID: "peers", Name: "Channel peers", Menu: true, Applies: applies,
			Description: "Enumerate the set of possible corresponding sends/receives for this channel receive/send operation."},
		Mode{ID: "pointsto", Name: "Points to", Menu: true, Applies: applies,
			Description: "Show what the selected expression points to."},
		Mode{ID: "referrers", Name: "Referrers", Menu: true, Applies: applies,
			Description: "Enumerate all references to the object denoted by the selected identifier."},
		Mode{ID: "whicherrs", Name: "Which errors", Menu: true, Applies: applies,
			Description: "Show globals, constants and types to which the selected expression (of type 'error') may refer."},
	)
}
