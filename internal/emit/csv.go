// Package emit renders a decoded row's cells to a CSV line and owns the
// sidecar BLOB file writer. It hand-rolls CSV quoting instead of using
// encoding/csv because the report format mandates TEXT cells always be
// double-quoted, which conflicts with encoding/csv's "quote only when
// necessary" policy; see DESIGN.md for the justification of this one
// deliberate divergence.
package emit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"sqlitecarve/internal/material"
)

// Writer accumulates CSV rows to Out and spills large BLOB cells to
// numbered sidecar files under BlobDir. The blob counter is the single
// piece of scan-wide mutable state in the whole pipeline; Writer owns it.
type Writer struct {
	Out           io.Writer
	BlobDir       string
	NoBlobs       bool
	BlobSizeLimit int
	// Warn, if set, is called when a sidecar blob write fails. The row
	// is still emitted with the "N.blob" reference and the scan
	// continues regardless.
	Warn func(format string, args ...any)

	blobCounter int
}

// EmitRow writes one CSV line: the rowid (or -1) followed by each
// cell's rendered text, comma-separated, terminated by a newline.
func (w *Writer) EmitRow(rowID int64, cells []material.RenderedCell) error {
	fields := make([]string, 0, len(cells)+1)
	fields = append(fields, strconv.FormatInt(rowID, 10))

	for _, c := range cells {
		switch {
		case c.IsBlob:
			if w.NoBlobs {
				continue
			}
			fields = append(fields, w.renderBlob(c.Blob))
		default:
			fields = append(fields, c.Text)
		}
	}

	line := strings.Join(fields, ",") + "\n"
	_, err := io.WriteString(w.Out, line)
	return err
}

// renderBlob returns the inline hex literal for small BLOBs, or spills
// the bytes to a sidecar file and returns a quoted filename reference.
func (w *Writer) renderBlob(b []byte) string {
	if len(b) < w.BlobSizeLimit {
		return material.HexBlob(b)
	}

	name := fmt.Sprintf("%d.blob", w.blobCounter)
	w.blobCounter++

	path := name
	if w.BlobDir != "" {
		path = filepath.Join(w.BlobDir, name)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil && w.Warn != nil {
		w.Warn("could not write sidecar blob %s: %v", path, err)
	}
	return `"` + name + `"`
}
