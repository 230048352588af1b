package term

import (
	"io"
	"os"
	"sync"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// NewSyncWriter returns a writer that is safe for concurrent use by
// multiple goroutines. Writes to the returned writer are passed on to
// w. If another write is in progress, the calling goroutine blocks
// until the writer is available.
func NewSyncWriter(w io.Writer) io.Writer {
	return &syncWriter{Writer: w}
}

type syncWriter struct {
	sync.Mutex
	io.Writer
}

func (w *syncWriter) Write(p []byte) (n int, err error) {
	w.Lock()
	n, err = w.Writer.Write(p)
	w.Unlock()
	return n, err
}

// colorCapable reports whether w is a terminal that can take ANSI
// colors, and returns a writer that translates them where the platform
// needs it. Non-terminal writers come back unmodified.
func colorCapable(w io.Writer) (io.Writer, bool) {
	f, ok := w.(*os.File)
	if !ok {
		return w, false
	}
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return colorable.NewColorable(f), true
	}
	return w, false
}
