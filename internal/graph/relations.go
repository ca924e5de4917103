package graph

import "sort"

// Set is an unordered set of variable names.
type Set map[string]struct{}

// NewSet returns a set holding names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add inserts name into the set.
func (s Set) Add(name string) {
	s[name] = struct{}{}
}

// Has reports whether name is in the set.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Union adds every member of other to s.
func (s Set) Union(other Set) {
	for n := range other {
		s[n] = struct{}{}
	}
}

// Sorted returns the members in lexicographic order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Relations maps an assignee to the set of variables its value references.
// Every assignee is a key, even when it references nothing.
type Relations map[string]Set

// Assignment is the relation recovered from a single database line.
type Assignment struct {
	Assignee   string
	References []string
}

// Merge folds a into r. Repeated assignments to the same variable add to
// the references already recorded.
func (r Relations) Merge(a Assignment) {
	refs, ok := r[a.Assignee]
	if !ok {
		refs = make(Set, len(a.References))
		r[a.Assignee] = refs
	}
	for _, ref := range a.References {
		refs.Add(ref)
	}
}

// Assignees returns the keys of r in lexicographic order.
func (r Relations) Assignees() []string {
	out := make([]string, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Nodes returns every variable that is an assignee or is referenced.
func (r Relations) Nodes() Set {
	nodes := make(Set, len(r))
	for assignee, refs := range r {
		nodes.Add(assignee)
		nodes.Union(refs)
	}
	return nodes
}

// Edges returns one REFERENCES edge per (assignee, reference) pair, ordered
// by source then target.
func (r Relations) Edges() []Edge {
	var edges []Edge
	for _, assignee := range r.Assignees() {
		for _, ref := range r[assignee].Sorted() {
			edges = append(edges, Edge{
				SourceID: assignee,
				TargetID: ref,
				Kind:     EdgeKindReferences,
			})
		}
	}
	return edges
}

// Isolated returns the assignees that reference nothing and are referenced
// by no assignee.
func Isolated(r Relations) Set {
	// not referencing other variables
	singles := make(Set)
	for assignee, refs := range r {
		if len(refs) == 0 {
			singles.Add(assignee)
		}
	}
	// and not referenced by other variables
	for _, refs := range r {
		for ref := range refs {
			delete(singles, ref)
		}
	}
	return singles
}
