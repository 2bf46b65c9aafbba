//go:build debug

// Package debugviz renders cloud-search and sparse-matrix internals for
// offline inspection: an ASCII heatmap of which cells a sweep kept, and a
// gzip-compressed CSV dump of a sparse matrix's contents. It exists only
// behind the "debug" build tag; no non-debug code path references it,
// mirroring the source's cloud_MX/test_MX toggles as a real Go build-tag
// boundary instead of a runtime flag.
package debugviz

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/grailbio/bio/edgebound"
	"github.com/grailbio/bio/spmatrix"
)

// heatmapChars maps a normalized [0,1] score into one of 10 density levels,
// coarsest first, the way a terminal heatmap legend typically reads.
const heatmapChars = " .:-=+*#%@"

// RenderHeatmap draws one character per (row, column) cell of m's inner
// set, scaled by the given plane's score relative to the matrix's own
// min/max, so differently-scaled matrices (Forward vs. Backward vs.
// posterior) all render with the same ten-level legend.
func RenderHeatmap(m *spmatrix.Matrix, plane spmatrix.Plane) string {
	ids, idStarts := m.Inner.IndexRows()
	min, max := minMax(m, plane)

	var sb strings.Builder
	for idx, row := range ids {
		start := idStarts[idx]
		end := edgebound.RowEnd(idStarts, len(m.Inner.Bounds), idx)
		fmt.Fprintf(&sb, "%4d ", row)
		for r := start; r < end; r++ {
			b := m.Inner.Bounds[r]
			for delta := 0; delta < b.Len(); delta++ {
				v := m.At(r, delta, plane)
				sb.WriteByte(heatmapChars[level(v, min, max)])
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func minMax(m *spmatrix.Matrix, plane spmatrix.Plane) (float64, float64) {
	min, max := 0.0, 0.0
	first := true
	for r := range m.Inner.Bounds {
		b := m.Inner.Bounds[r]
		for delta := 0; delta < b.Len(); delta++ {
			v := m.At(r, delta, plane)
			if first {
				min, max, first = v, v, false
				continue
			}
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}
	return min, max
}

func level(v, min, max float64) int {
	if max <= min {
		return 0
	}
	frac := (v - min) / (max - min)
	n := len(heatmapChars)
	lvl := int(frac * float64(n))
	if lvl < 0 {
		lvl = 0
	}
	if lvl >= n {
		lvl = n - 1
	}
	return lvl
}

// DumpCSVGz writes a gzip-compressed CSV dump of every live cell in m's
// inner set (row, column, Match, Insert, Delete) to w, the same
// klauspost/compress/gzip library this codebase already uses for reading
// BED files, applied here to the write side instead.
func DumpCSVGz(w io.Writer, m *spmatrix.Matrix) error {
	gz := gzip.NewWriter(w)
	defer gz.Close()

	if _, err := io.WriteString(gz, "row,col,match,insert,delete\n"); err != nil {
		return err
	}
	ids, idStarts := m.Inner.IndexRows()
	for idx, row := range ids {
		start := idStarts[idx]
		end := edgebound.RowEnd(idStarts, len(m.Inner.Bounds), idx)
		for r := start; r < end; r++ {
			b := m.Inner.Bounds[r]
			for delta := 0; delta < b.Len(); delta++ {
				col := b.LB + delta
				line := fmt.Sprintf("%d,%d,%g,%g,%g\n", row, col,
					m.At(r, delta, spmatrix.Match), m.At(r, delta, spmatrix.Insert), m.At(r, delta, spmatrix.Delete))
				if _, err := io.WriteString(gz, line); err != nil {
					return err
				}
			}
		}
	}
	return gz.Close()
}

// Enabled reports whether this build includes the real debugviz
// implementation.
const Enabled = true
