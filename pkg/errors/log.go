package errors

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// LogHandler is an ErrorHandler that logs errors to stderr.
type LogHandler struct {
	// Verbose enables detailed output including stack traces.
	Verbose bool
	// Out overrides the destination; nil means os.Stderr.
	Out io.Writer
}

func (h *LogHandler) out() io.Writer {
	if h.Out != nil {
		return h.Out
	}
	return os.Stderr
}

// HandleError logs a BannerError.
func (h *LogHandler) HandleError(err *BannerError) {
	if err == nil {
		return
	}
	w := h.out()
	if h.Verbose {
		fmt.Fprintf(w, "[bannerkit error] %s [%s]", err.Op, err.Kind)
		if err.NodeID != "" {
			fmt.Fprintf(w, " node=%s", err.NodeID)
		}
		fmt.Fprintf(w, ": %v\n", err.Err)
		if err.StackTrace != "" {
			fmt.Fprintf(w, "Stack trace:\n%s\n", err.StackTrace)
		}
	} else {
		fmt.Fprintf(w, "[bannerkit error] %s: %v\n", err.Op, err.Err)
	}
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	w := h.out()
	fmt.Fprintf(w, "[bannerkit panic] %s\n", err.Error())
	if h.Verbose && err.StackTrace != "" {
		fmt.Fprintf(w, "Stack trace:\n%s\n", err.StackTrace)
	}
}

// Collector is an ErrorHandler that keeps every report in memory. It is
// used by the CLI to summarise a pass and by tests.
type Collector struct {
	mu     sync.Mutex
	errors []*BannerError
	panics []*PanicError
}

// HandleError records err.
func (c *Collector) HandleError(err *BannerError) {
	c.mu.Lock()
	c.errors = append(c.errors, err)
	c.mu.Unlock()
}

// HandlePanic records err.
func (c *Collector) HandlePanic(err *PanicError) {
	c.mu.Lock()
	c.panics = append(c.panics, err)
	c.mu.Unlock()
}

// Errors returns a copy of the recorded errors.
func (c *Collector) Errors() []*BannerError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*BannerError(nil), c.errors...)
}

// Panics returns a copy of the recorded panics.
func (c *Collector) Panics() []*PanicError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*PanicError(nil), c.panics...)
}

// OfKind returns the recorded errors of the given kind.
func (c *Collector) OfKind(kind ErrorKind) []*BannerError {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*BannerError
	for _, err := range c.errors {
		if err.Kind == kind {
			out = append(out, err)
		}
	}
	return out
}

// Reset discards everything recorded so far.
func (c *Collector) Reset() {
	c.mu.Lock()
	c.errors = nil
	c.panics = nil
	c.mu.Unlock()
}

// MultiHandler forwards every report to each of its handlers in order.
type MultiHandler []ErrorHandler

// HandleError forwards err.
func (m MultiHandler) HandleError(err *BannerError) {
	for _, h := range m {
		h.HandleError(err)
	}
}

// HandlePanic forwards err.
func (m MultiHandler) HandlePanic(err *PanicError) {
	for _, h := range m {
		h.HandlePanic(err)
	}
}
