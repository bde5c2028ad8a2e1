package tui

import (
	"strings"

	"github.com/mmcdole/dlcscan/internal/discovery"
	"github.com/mmcdole/dlcscan/internal/search"
	"github.com/mmcdole/dlcscan/internal/treesync"
	"github.com/sahilm/fuzzy"
)

// treeRow is one line of the selection tree
type treeRow struct {
	Key   treesync.NodeKey
	Label string
	Depth int
}

// flattenTree lists the tree's nodes in display order
func flattenTree(t *treesync.Tree) []treeRow {
	var rows []treeRow
	t.Walk(func(n treesync.Node, depth int) {
		rows = append(rows, treeRow{Key: n.Key, Label: n.Label, Depth: depth})
	})
	return rows
}

// rowSource implements fuzzy.Source over row labels
type rowSource []treeRow

func (s rowSource) String(i int) string { return strings.ToLower(s[i].Label) }
func (s rowSource) Len() int            { return len(s) }

// filterTree keeps rows whose label matches query. A matching program
// keeps all its add-ons; a matching add-on keeps its program.
func filterTree(rows []treeRow, query string) []treeRow {
	if query == "" {
		return rows
	}

	matched := make(map[int]bool)
	for _, m := range fuzzy.FindFrom(strings.ToLower(query), rowSource(rows)) {
		matched[m.Index] = true
	}

	var out []treeRow
	parent, parentAdded, parentMatched := -1, false, false
	for i, r := range rows {
		if r.Depth == 0 {
			parent, parentAdded, parentMatched = i, matched[i], matched[i]
			if parentMatched {
				out = append(out, r)
			}
			continue
		}
		if !matched[i] && !parentMatched {
			continue
		}
		if !parentAdded && parent >= 0 {
			out = append(out, rows[parent])
			parentAdded = true
		}
		out = append(out, r)
	}
	return out
}

// filterCatalog returns the indices of entries matching query, best first.
// An empty query keeps catalog order.
func filterCatalog(svc *search.Service, entries []discovery.CatalogEntry, query string) []int {
	if strings.TrimSpace(query) == "" {
		idx := make([]int, len(entries))
		for i := range entries {
			idx[i] = i
		}
		return idx
	}

	pos := make(map[string]int, len(entries))
	for i, e := range entries {
		pos[e.Key.String()] = i
	}
	var idx []int
	for _, m := range svc.Rank(query, entries) {
		idx = append(idx, pos[m.Entry.Key.String()])
	}
	return idx
}
