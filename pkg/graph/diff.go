package graph

import "encoding/json"

// EntityDiff is the shape of one entity kind's contribution to an
// IndexDiff: three vectors of opaque diff records (spec.md §4.6, §9 open
// question 3). The actual diff algorithm — matching prior and current
// records for the same logical path, deciding what counts as "changed" —
// is the downstream merge engine's job; this type fixes only the shape a
// merge engine must emit.
type EntityDiff struct {
	Removed []json.RawMessage `json:"removed"`
	Added   []json.RawMessage `json:"added"`
	Changed []json.RawMessage `json:"changed"`
}

// IndexDiff is the payload a merge engine emits when comparing two
// IndexedFiles for the same logical path, one EntityDiff per record kind.
type IndexDiff struct {
	Types EntityDiff `json:"types"`
	Funcs EntityDiff `json:"funcs"`
	Vars  EntityDiff `json:"vars"`
}

// NewIndexDiff returns an IndexDiff with all nine vectors initialized to
// empty (rather than nil), so callers can always range over them and so
// it serializes as `[]`, not `null`.
func NewIndexDiff() *IndexDiff {
	empty := func() EntityDiff {
		return EntityDiff{Removed: []json.RawMessage{}, Added: []json.RawMessage{}, Changed: []json.RawMessage{}}
	}
	return &IndexDiff{Types: empty(), Funcs: empty(), Vars: empty()}
}
