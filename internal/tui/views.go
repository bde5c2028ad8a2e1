package tui

import (
	"fmt"
	"strings"

	"github.com/mmcdole/dlcscan/internal/domain"
	"github.com/mmcdole/dlcscan/internal/treesync"
	"github.com/mmcdole/dlcscan/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	var body string
	switch m.State {
	case StateLoading:
		body = styles.DimStyle.Render("  Looking for installed programs...")
	case StatePicker:
		body = m.viewPicker()
	case StateScanning:
		body = m.viewScan()
	case StateTree:
		body = m.viewTree()
	}

	return strings.Join([]string{
		m.viewHeader(),
		body,
		m.viewStatus(),
		m.viewHelp(),
	}, "\n")
}

func (m Model) viewHeader() string {
	title := styles.HeaderStyle.Render("dlcscan")
	var sub string
	switch m.State {
	case StatePicker:
		sub = fmt.Sprintf("%d of %d programs picked", len(m.pickedKeys()), len(m.Catalog))
	case StateScanning:
		sub = fmt.Sprintf("Scanning %d programs", len(m.requested))
	case StateTree:
		sub = fmt.Sprintf("%d programs", len(m.Syncer.Tree().Roots()))
		if m.Syncer.Tree().AllChecked() {
			sub += " · all selected"
		}
	}
	return title + " " + styles.SubtitleStyle.Render(sub) + "\n"
}

func (m Model) viewPicker() string {
	if len(m.Catalog) == 0 {
		return styles.DimStyle.Render("  No installed programs found")
	}

	var lines []string
	end := min(len(m.visible), m.offset+m.listHeight())
	for i := m.offset; i < end; i++ {
		e := m.Catalog[m.visible[i]]
		label := fmt.Sprintf("%s %s %s",
			styles.Checkbox(m.picked[e.Key]),
			e.Name,
			styles.DimStyle.Render(e.Key.Platform.String()))
		lines = append(lines, m.renderRow(label, i == m.cursor))
	}
	return m.padList(lines)
}

func (m Model) viewScan() string {
	p := m.Progress
	overall := p.Overall()

	lines := []string{
		fmt.Sprintf("  %s Programs %d/%d   Add-ons %d/%d",
			m.spinner.View(),
			p.Programs.Completed, p.Programs.Total,
			p.AddOns.Completed, p.AddOns.Total),
		"  " + m.bar.ViewAs(float64(overall.Percent())/100),
		"",
	}
	if len(p.RemainingPrograms) > 0 {
		lines = append(lines, "  "+styles.DimStyle.Render(
			styles.Truncate("Remaining programs: "+strings.Join(p.RemainingPrograms, ", "), m.Width-4)))
	}
	if len(p.RemainingAddOns) > 0 {
		lines = append(lines, "  "+styles.DimStyle.Render(
			styles.Truncate("Remaining add-ons: "+strings.Join(p.RemainingAddOns, ", "), m.Width-4)))
	}
	return m.padList(lines)
}

func (m Model) viewTree() string {
	if len(m.rows) == 0 {
		return styles.DimStyle.Render("  Nothing was found")
	}

	tree := m.Syncer.Tree()
	var lines []string
	end := min(len(m.shown), m.offset+m.listHeight())
	for i := m.offset; i < end; i++ {
		r := m.shown[i]
		n, _ := tree.Get(r.Key)
		lines = append(lines, m.renderRow(nodeLabel(n, r.Depth), i == m.cursor))
	}
	return m.padList(lines)
}

func nodeLabel(n treesync.Node, depth int) string {
	indent := strings.Repeat("  ", depth)
	label := n.Label
	switch {
	case n.Sentinel:
		label = styles.SentinelRowStyle.Render(label + " (" + n.Key.ID + ")")
	case n.Key.Kind == treesync.KindAddOn && n.Resolution == domain.ResolutionHidden:
		label += styles.DimStyle.Render(" (hidden)")
	case n.Key.Kind == treesync.KindProgram:
		label = styles.TitleStyle.Render(label) + " " + styles.DimStyle.Render(n.Key.Platform.String())
	}
	return indent + styles.Checkbox(n.Checked) + " " + label
}

func (m Model) renderRow(label string, selected bool) string {
	if selected {
		return styles.AccentStyle.Render("> ") + label
	}
	return "  " + label
}

// padList fills the list area so the footer stays put
func (m Model) padList(lines []string) string {
	for len(lines) < m.listHeight()-1 {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewStatus() string {
	if m.filtering || m.filter.Value() != "" {
		return m.filter.View()
	}
	if m.StatusMsg == "" {
		return ""
	}
	if m.StatusIsErr {
		return styles.ErrorStyle.Render(m.StatusMsg)
	}
	return styles.SuccessStyle.Render(m.StatusMsg)
}

func (m Model) viewHelp() string {
	switch m.State {
	case StatePicker:
		return styles.RenderHelp(
			helpPair(Keys.Toggle), helpPair(Keys.All), helpPair(Keys.Filter),
			[2]string{"enter", "scan"}, helpPair(Keys.Quit))
	case StateScanning:
		return styles.RenderHelp([2]string{"esc", "cancel"}, helpPair(Keys.Quit))
	case StateTree:
		return styles.RenderHelp(
			helpPair(Keys.Toggle), helpPair(Keys.All), helpPair(Keys.Filter),
			helpPair(Keys.Save), helpPair(Keys.Load), helpPair(Keys.Reset),
			helpPair(Keys.Rescan), helpPair(Keys.Quit))
	}
	return styles.RenderHelp(helpPair(Keys.Quit))
}
