//go:build !debug

package debugviz

import (
	"io"

	"github.com/grailbio/bio/spmatrix"
)

// RenderHeatmap is a no-op outside a debug build; dump-cloud reports this
// to the user instead of silently printing nothing.
func RenderHeatmap(m *spmatrix.Matrix, plane spmatrix.Plane) string {
	return "(debugviz disabled: rebuild with -tags debug to render)"
}

// DumpCSVGz writes no matrix data outside a debug build; it writes a
// single notice line to w instead.
func DumpCSVGz(w io.Writer, m *spmatrix.Matrix) error {
	_, err := io.WriteString(w, "debugviz disabled: rebuild with -tags debug to dump\n")
	return err
}

// Enabled reports whether this build includes the real debugviz
// implementation.
const Enabled = false
