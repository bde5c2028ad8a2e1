package treesync

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmcdole/dlcscan/internal/domain"
)

// Writer is the part of the SelectionStore the sync writes through
type Writer interface {
	FindAddOnOwner(platform domain.Platform, addOnID string) (domain.Selection, bool)
	ToggleAddOn(key domain.ProgramKey, addOnID string, selected bool) error
	SetEnabled(key domain.ProgramKey, enabled bool) error
}

// Syncer applies check events to a tree and mirrors them into the store
type Syncer struct {
	tree   *Tree
	store  Writer
	logger *slog.Logger
}

// NewSyncer creates a syncer over tree
func NewSyncer(tree *Tree, store Writer, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{tree: tree, store: store, logger: logger}
}

// Tree returns the synced tree
func (s *Syncer) Tree() *Tree {
	return s.tree
}

// Toggle sets one node's checked state and propagates it: the node itself
// is written first, then its ancestors, then its descendants.
func (s *Syncer) Toggle(key NodeKey, checked bool) error {
	n, ok := s.tree.nodes[key]
	if !ok {
		return fmt.Errorf("node %v: %w", key, domain.ErrSelectionNotFound)
	}
	n.Checked = checked
	return errors.Join(
		s.syncNode(n),
		s.syncAncestors(n),
		s.syncDescendants(n),
	)
}

// syncNode writes n's state into its owning Selection
func (s *Syncer) syncNode(n *Node) error {
	if n.Key.Kind == KindProgram {
		return s.store.SetEnabled(domain.ProgramKey{Platform: n.Key.Platform, ID: n.Key.ID}, n.Checked)
	}
	owner, ok := s.store.FindAddOnOwner(n.Key.Platform, n.Key.ID)
	if !ok {
		return fmt.Errorf("add-on %s/%s: %w", n.Key.Platform, n.Key.ID, domain.ErrAddOnNotFound)
	}
	return s.store.ToggleAddOn(owner.Key(), n.Key.ID, n.Checked)
}

// syncAncestors sets each ancestor to the OR of its real children.
// A parent whose children are all sentinels takes the OR of all of them.
func (s *Syncer) syncAncestors(n *Node) error {
	if n.Parent == nil {
		return nil
	}
	parent := s.tree.nodes[*n.Parent]

	anyChecked, anyReal, hasReal := false, false, false
	for _, key := range parent.Children {
		child := s.tree.nodes[key]
		anyChecked = anyChecked || child.Checked
		if !child.Sentinel {
			hasReal = true
			anyReal = anyReal || child.Checked
		}
	}
	checked := anyChecked
	if hasReal {
		checked = anyReal
	}

	var err error
	if parent.Checked != checked {
		parent.Checked = checked
		err = s.syncNode(parent)
	}
	return errors.Join(err, s.syncAncestors(parent))
}

// syncDescendants copies n's state into every non-sentinel child
func (s *Syncer) syncDescendants(n *Node) error {
	var errs []error
	for _, key := range n.Children {
		child := s.tree.nodes[key]
		if child.Sentinel {
			continue
		}
		child.Checked = n.Checked
		errs = append(errs, s.syncNode(child), s.syncDescendants(child))
	}
	return errors.Join(errs...)
}

// ToggleAll flips every program: if any program is unchecked all become
// checked, otherwise all become unchecked. It returns the new state.
func (s *Syncer) ToggleAll() (bool, error) {
	checked := false
	for _, key := range s.tree.roots {
		if !s.tree.nodes[key].Checked {
			checked = true
			break
		}
	}
	return checked, s.SetAll(checked)
}

// SetAll checks or unchecks every program that differs from checked
func (s *Syncer) SetAll(checked bool) error {
	var errs []error
	for _, key := range s.tree.roots {
		if s.tree.nodes[key].Checked != checked {
			errs = append(errs, s.Toggle(key, checked))
		}
	}
	return errors.Join(errs...)
}
