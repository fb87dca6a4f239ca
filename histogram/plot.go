package histogram

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"
)

// Plotter renders histograms. Graphical backends live outside this module.
type Plotter interface {
	Plot(h *Histogram) error
}

// TextPlotter writes tab-aligned tables with a bar per bin.
type TextPlotter struct {
	W        io.Writer
	BarWidth int // characters for the fullest bin, 40 when zero
}

// Plot implements Plotter.
func (p TextPlotter) Plot(h *Histogram) error {
	s := h.Summary
	name := h.Field
	if h.Group != "" {
		name = h.Group + "/" + h.Field
	}

	if _, err := fmt.Fprintf(p.W, "%s n=%d mean=%.6g std=%.6g min=%.6g max=%.6g\n",
		name, s.N, s.Mean, s.StdDev, s.Min, s.Max); err != nil {
		return err
	}

	if len(h.Counts) == 0 {
		_, err := fmt.Fprintln(p.W, "  (no data)")
		return err
	}

	width := p.BarWidth
	if width <= 0 {
		width = 40
	}

	var peak float64
	for _, c := range h.Counts {
		peak = math.Max(peak, c)
	}

	tw := tabwriter.NewWriter(p.W, 0, 4, 2, ' ', 0)
	for i, c := range h.Counts {
		bar := 0
		if peak > 0 {
			bar = int(math.Round(c / peak * float64(width)))
		}

		fmt.Fprintf(tw, "  [%.6g, %.6g)\t%g\t%s\n", h.Edges[i], h.Edges[i+1], c, strings.Repeat("#", bar))
	}

	return tw.Flush()
}
