package gdbindex

import "github.com/derekparker/trie"

// Filter excludes symbol names by prefix: a name is excluded if any
// prefix previously added to the filter terminates along its walk
// through the trie. An empty filter excludes nothing.
type Filter struct {
	t *trie.Trie
}

// NewFilter builds a Filter from a set of excluded name prefixes. A
// nil or empty prefixes slice produces a filter that excludes
// nothing.
func NewFilter(prefixes []string) *Filter {
	t := trie.New()
	for _, p := range prefixes {
		if p == "" {
			continue
		}
		t.Add(p, nil)
	}
	return &Filter{t: t}
}

// Excluded reports whether name is covered by one of the filter's
// prefixes.
func (f *Filter) Excluded(name string) bool {
	if f == nil || f.t == nil {
		return false
	}

	node := f.t.Root()
	for _, r := range name {
		child, ok := node.Children()[r]
		if !ok {
			return false
		}
		if term, ok := child.Children()[0]; ok && term.Terminating() {
			return true
		}
		node = child
	}
	return false
}
