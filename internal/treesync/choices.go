package treesync

import (
	"errors"
	"slices"

	"github.com/mmcdole/dlcscan/internal/domain"
)

// Choices returns previous with this tree's deviations from the default
// merged in: add-ons whose state differs from default are added, add-ons
// back at default are removed. Choices for programs outside the tree are kept.
func (s *Syncer) Choices(previous []domain.Choice) []domain.Choice {
	out := slices.Clone(previous)
	for _, n := range s.tree.addOnNodes() {
		c := choiceFor(n)
		if n.Checked == n.Sentinel {
			if !slices.Contains(out, c) {
				out = append(out, c)
			}
		} else {
			out = slices.DeleteFunc(out, func(existing domain.Choice) bool { return existing == c })
		}
	}
	return out
}

// ApplyChoices sets every add-on node from choices: a listed add-on takes
// the opposite of its default, an unlisted one its default
func (s *Syncer) ApplyChoices(choices []domain.Choice) error {
	listed := make(map[domain.Choice]bool, len(choices))
	for _, c := range choices {
		listed[c] = true
	}
	var errs []error
	for _, n := range s.tree.addOnNodes() {
		checked := !n.Sentinel
		if listed[choiceFor(n)] {
			checked = n.Sentinel
		}
		errs = append(errs, s.Toggle(n.Key, checked))
	}
	return errors.Join(errs...)
}

// Reset puts every add-on node back to its default: resolved add-ons
// checked, sentinels unchecked
func (s *Syncer) Reset() error {
	return s.ApplyChoices(nil)
}

// Save merges the current deviations into store's saved choices
func (s *Syncer) Save(store domain.ChoiceStore) error {
	previous, _ := store.ReadChoices()
	return store.WriteChoices(s.Choices(previous))
}

// Load applies store's saved choices. It reports false when nothing was
// ever saved, leaving the tree untouched.
func (s *Syncer) Load(store domain.ChoiceStore) (bool, error) {
	choices, ok := store.ReadChoices()
	if !ok {
		return false, nil
	}
	return true, s.ApplyChoices(choices)
}

func choiceFor(n *Node) domain.Choice {
	return domain.Choice{Platform: n.Key.Platform, ProgramID: n.Parent.ID, AddOnID: n.Key.ID}
}
