package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mmcdole/dlcscan/internal/discovery"
	"github.com/mmcdole/dlcscan/internal/domain"
	"github.com/mmcdole/dlcscan/internal/selection"
	"github.com/mmcdole/dlcscan/internal/store"
	"github.com/mmcdole/dlcscan/internal/treesync"
	"github.com/mmcdole/dlcscan/internal/tui/styles"
)

// clearSpinnerLine clears the progress line from the terminal
const clearSpinnerLine = "\r                                                            \r"

// lineObserver draws one progress line per report
type lineObserver struct {
	w     io.Writer
	frame int
}

func (o *lineObserver) OnProgress(p domain.ScanProgress) {
	o.frame++
	fmt.Fprintf(o.w, "\r%s Programs %d/%d  Add-ons %d/%d  %3d%%",
		styles.SpinnerFrames[o.frame%len(styles.SpinnerFrames)],
		p.Programs.Completed, p.Programs.Total,
		p.AddOns.Completed, p.AddOns.Total,
		p.Overall().Percent())
}

func runHeadless(
	ctx context.Context,
	orch *discovery.Orchestrator,
	selections *selection.Store,
	db *store.Store,
	requested []domain.ProgramKey,
	bulk bool,
	logger *slog.Logger,
) error {
	if len(requested) == 0 {
		fmt.Println("Nothing to scan.")
		return nil
	}
	if err := db.SaveScanRequest(requested); err != nil {
		logger.Warn("failed to save scan request", "error", err)
	}

	result := orch.Run(ctx, requested, discovery.RunOptions{BulkSelect: bulk}, &lineObserver{w: os.Stderr})
	fmt.Fprint(os.Stderr, clearSpinnerLine)

	// Saved choices apply on top of the fresh scan
	syncer := treesync.NewSyncer(treesync.Build(selections.All()), selections, logger)
	if _, err := syncer.Load(db); err != nil {
		logger.Warn("failed to apply saved choices", "error", err)
	}

	fmt.Println(renderSummary(selections.All(), result))
	return nil
}

// renderSummary lists every Selection with its add-on counts
func renderSummary(sels []domain.Selection, result discovery.Result) string {
	var b strings.Builder

	header := fmt.Sprintf("%d programs scanned", len(result.Committed))
	if result.Canceled {
		header += " (cancelled)"
	}
	b.WriteString(styles.TitleStyle.Render(header))

	for _, sel := range sels {
		unresolved := 0
		for _, a := range sel.AllAddOns {
			if !a.Resolved() {
				unresolved++
			}
		}

		line := fmt.Sprintf("%s %s %s  %d/%d add-ons",
			styles.Checkbox(sel.Enabled),
			sel.Name,
			styles.DimStyle.Render(sel.Platform.String()),
			len(sel.SelectedAddOns), len(sel.AllAddOns))
		if unresolved > 0 {
			line += styles.WarnStyle.Render(fmt.Sprintf("  %d unknown", unresolved))
		}
		for _, g := range sel.ExtraSelected {
			line += styles.DimStyle.Render(fmt.Sprintf("\n      + %s (%d)", g.Name, len(g.AddOns)))
		}
		b.WriteString("\n" + line)
	}

	if n := len(result.Abandoned); n > 0 {
		b.WriteString("\n" + styles.DimStyle.Render(fmt.Sprintf("%d programs had nothing to patch", n)))
	}
	if n := len(result.Blocked); n > 0 {
		b.WriteString("\n" + styles.WarnStyle.Render(fmt.Sprintf("%d programs skipped by the block list", n)))
	}

	return styles.BoxStyle.Render(b.String())
}
