// Package treesync keeps a two-level program/add-on check tree and the
// SelectionStore in agreement. The tree is plain data keyed by id, so the
// sync rules run the same with or without a terminal attached.
package treesync

import (
	"slices"
	"strings"

	"github.com/mmcdole/dlcscan/internal/domain"
)

// Kind tells program nodes from add-on nodes
type Kind int

const (
	KindProgram Kind = iota
	KindAddOn
)

// NodeKey identifies a node by platform and id
type NodeKey struct {
	Platform domain.Platform
	ID       string
	Kind     Kind
}

// ProgramNode returns the key of a program's node
func ProgramNode(key domain.ProgramKey) NodeKey {
	return NodeKey{Platform: key.Platform, ID: key.ID, Kind: KindProgram}
}

// AddOnNode returns the key of an add-on's node
func AddOnNode(platform domain.Platform, addOnID string) NodeKey {
	return NodeKey{Platform: platform, ID: addOnID, Kind: KindAddOn}
}

// Node is one entry of the tree.
// Sentinel nodes stand for add-ons no source could name: they start
// unchecked and never follow their parent's state.
type Node struct {
	Key        NodeKey
	Label      string
	Checked    bool
	Sentinel   bool
	Resolution domain.Resolution
	Parent     *NodeKey
	Children   []NodeKey
}

// Tree is the program/add-on hierarchy of one scan
type Tree struct {
	nodes map[NodeKey]*Node
	roots []NodeKey
}

// Build creates a tree from Selections, in the order given. Programs are
// checked when enabled; add-ons when selected.
func Build(selections []domain.Selection) *Tree {
	t := &Tree{nodes: make(map[NodeKey]*Node)}
	for _, sel := range selections {
		rootKey := ProgramNode(sel.Key())
		if _, dup := t.nodes[rootKey]; dup {
			continue
		}
		root := &Node{Key: rootKey, Label: sel.Name, Checked: sel.Enabled}
		t.nodes[rootKey] = root
		t.roots = append(t.roots, rootKey)

		ids := make([]string, 0, len(sel.AllAddOns))
		for id := range sel.AllAddOns {
			ids = append(ids, id)
		}
		slices.SortFunc(ids, func(a, b string) int {
			x, y := sel.AllAddOns[a], sel.AllAddOns[b]
			// Unresolved add-ons sort last
			if x.Resolved() != y.Resolved() {
				if x.Resolved() {
					return -1
				}
				return 1
			}
			if c := strings.Compare(strings.ToLower(x.Name), strings.ToLower(y.Name)); c != 0 {
				return c
			}
			return strings.Compare(a, b)
		})

		for _, id := range ids {
			addOn := sel.AllAddOns[id]
			childKey := AddOnNode(sel.Platform, id)
			if _, dup := t.nodes[childKey]; dup {
				continue
			}
			_, selected := sel.SelectedAddOns[id]
			parent := rootKey
			t.nodes[childKey] = &Node{
				Key:        childKey,
				Label:      addOn.Name,
				Checked:    selected,
				Sentinel:   !addOn.Resolved(),
				Resolution: addOn.Resolution,
				Parent:     &parent,
			}
			root.Children = append(root.Children, childKey)
		}
	}
	return t
}

// Get returns a copy of the node for key
func (t *Tree) Get(key NodeKey) (Node, bool) {
	n, ok := t.nodes[key]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Roots returns the program nodes in build order
func (t *Tree) Roots() []NodeKey {
	return slices.Clone(t.roots)
}

// Len returns the number of nodes
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Walk visits every node depth-first, parents before children
func (t *Tree) Walk(fn func(n Node, depth int)) {
	var visit func(key NodeKey, depth int)
	visit = func(key NodeKey, depth int) {
		n := t.nodes[key]
		fn(*n, depth)
		for _, child := range n.Children {
			visit(child, depth+1)
		}
	}
	for _, root := range t.roots {
		visit(root, 0)
	}
}

// AllChecked reports whether every non-sentinel node is checked
func (t *Tree) AllChecked() bool {
	if len(t.nodes) == 0 {
		return false
	}
	for _, n := range t.nodes {
		if !n.Sentinel && !n.Checked {
			return false
		}
	}
	return true
}

// IsDefault reports whether every add-on node is in its default state:
// resolved ones checked, sentinels unchecked
func (t *Tree) IsDefault() bool {
	for _, n := range t.nodes {
		if n.Parent != nil && n.Checked == n.Sentinel {
			return false
		}
	}
	return true
}

// addOnNodes returns every non-root node in walk order
func (t *Tree) addOnNodes() []*Node {
	var out []*Node
	for _, root := range t.roots {
		for _, child := range t.nodes[root].Children {
			out = append(out, t.nodes[child])
		}
	}
	return out
}
