// Package diag issues the per-run diagnostic session identifier and
// writes verbose/debug progress lines to stderr. It never touches
// stdout: the emitted row stream must stay byte-identical across runs
// regardless of what diag logs.
package diag

import (
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Logger writes verbosity-gated diagnostic lines to an io.Writer
// (ordinarily os.Stderr). It wraps uuid.New for exactly one purpose,
// a per-run correlation id, rather than pulling in a general logging
// framework.
type Logger struct {
	w         io.Writer
	verbose   bool
	SessionID uuid.UUID
}

// New builds a Logger. verbose gates every method except Warn; fatal
// configuration errors are written by the caller directly.
func New(w io.Writer, verbose bool) *Logger {
	return &Logger{w: w, verbose: verbose, SessionID: uuid.New()}
}

// Banner prints the header-reader summary once at scan start.
func (l *Logger) Banner(path string, pageSize int, pageCount, freelistHead, freelistPages uint32) {
	if !l.verbose {
		return
	}
	fmt.Fprintf(l.w, "[%s] scanning %s: page_size=%d page_count=%d freelist_head=%d freelist_pages=%d\n",
		l.SessionID, path, pageSize, pageCount, freelistHead, freelistPages)
}

// PageTransition logs entry into a new page.
func (l *Logger) PageTransition(pageNumber int, isLeaf bool) {
	if !l.verbose {
		return
	}
	fmt.Fprintf(l.w, "[%s] page %d leaf=%v\n", l.SessionID, pageNumber, isLeaf)
}

// Rejection logs one decode_row rejection reason. Rejections are the
// common case and are silent unless verbose.
func (l *Logger) Rejection(pageNumber, cursor int, reason string) {
	if !l.verbose {
		return
	}
	fmt.Fprintf(l.w, "[%s] page %d cursor %d rejected: %s\n", l.SessionID, pageNumber, cursor, reason)
}

// Warn logs a non-fatal write error: a sidecar blob write failure or a
// failed row write. Always printed, independent of verbosity, since
// these indicate actual data loss. Materialize bounds violations are
// not warned about; they go through Rejection.
func (l *Logger) Warn(format string, args ...any) {
	fmt.Fprintf(l.w, "[%s] warning: "+format+"\n", append([]any{l.SessionID}, args...)...)
}
