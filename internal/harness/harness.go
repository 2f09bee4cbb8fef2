// Package harness holds the table of named transformations that blessed
// fixtures refer to. A harness is registered once, during a single-threaded
// initialization phase, and looked up by name every time a test unit runs.
package harness

import (
	"encoding/json"
	"fmt"
)

// Invoke is the uniform invocation contract: a JSON payload in, a JSON
// payload out. The error channel carries wiring failures only (payload
// conversion); domain-level failures travel inside the output value as
// ordinary data.
type Invoke func(params json.RawMessage) (json.RawMessage, error)

// Entry binds a harness name to its uniform contract.
type Entry struct {
	Name   string
	Invoke Invoke
}

// Registry owns harness entries for the process lifetime. Population is a
// run-once phase strictly ordered before test execution; after Freeze the
// registry is immutable and safe for unsynchronized concurrent reads.
type Registry struct {
	entries []Entry
	frozen  bool
}

// NewRegistry returns an empty, unfrozen registry.
func NewRegistry() *Registry { return &Registry{} }

// Register appends an entry. Duplicate names are not rejected here: Lookup
// scans in registration order, so the first registration of a name wins.
func (r *Registry) Register(e Entry) error {
	if r.frozen {
		return fmt.Errorf("harness registry is frozen, cannot register %q", e.Name)
	}
	r.entries = append(r.entries, e)
	return nil
}

// MustRegister is Register for initialization code where a frozen registry
// is a programming error.
func (r *Registry) MustRegister(e Entry) {
	if err := r.Register(e); err != nil {
		panic(err)
	}
}

// Freeze ends the registration phase.
func (r *Registry) Freeze() { r.frozen = true }

// Lookup returns the first entry registered under name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	for _, e := range r.entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Names lists every registered name in registration order, duplicates
// included. Used to build the harness-not-found diagnostic.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Name)
	}
	return out
}

// New adapts a typed transformation to the uniform contract. The returned
// entry deserializes the payload into In, invokes fn, and serializes Out
// back to JSON. A type mismatch between the fixture payload and In is the
// only failure this channel reports; fn itself has no error return, so a
// harness that wants to signal a domain error does it through a field of
// Out.
func New[In, Out any](name string, fn func(In) Out) Entry {
	return Entry{
		Name: name,
		Invoke: func(params json.RawMessage) (json.RawMessage, error) {
			var in In
			if err := json.Unmarshal(params, &in); err != nil {
				return nil, fmt.Errorf("Failed to deserialize input: %v", err)
			}
			out := fn(in)
			b, err := json.Marshal(out)
			if err != nil {
				return nil, fmt.Errorf("Failed to serialize output: %v", err)
			}
			return b, nil
		},
	}
}
