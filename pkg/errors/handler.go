package errors

import (
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	// DefaultHandler is the process-wide fallback handler used when a
	// renderer has no handler of its own.
	// It defaults to LogHandler with verbose=false.
	DefaultHandler ErrorHandler = &LogHandler{}

	handlerMu sync.RWMutex
)

// SetHandler configures the process-wide error handler.
// Pass nil to restore the default LogHandler.
func SetHandler(h ErrorHandler) {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	if h == nil {
		DefaultHandler = &LogHandler{}
	} else {
		DefaultHandler = h
	}
}

func getHandler() ErrorHandler {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return DefaultHandler
}

// Reporter delivers errors to a specific handler, falling back to the
// process-wide handler when none is set. The zero value is ready to use.
type Reporter struct {
	Handler ErrorHandler
}

func (r Reporter) handler() ErrorHandler {
	if r.Handler != nil {
		return r.Handler
	}
	return getHandler()
}

// Report sends an error to the reporter's handler.
// If err.Timestamp is zero, it is set to the current time.
func (r Reporter) Report(err *BannerError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	if h := r.handler(); h != nil {
		h.HandleError(err)
	}
}

// ReportPanic sends a panic error to the reporter's handler.
func (r Reporter) ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	if h := r.handler(); h != nil {
		h.HandlePanic(err)
	}
}

// Report sends an error to the process-wide handler.
func Report(err *BannerError) {
	Reporter{}.Report(err)
}

// ReportPanic sends a panic error to the process-wide handler.
func ReportPanic(err *PanicError) {
	Reporter{}.ReportPanic(err)
}

// Recover is a helper for deferred panic recovery.
// Usage: defer errors.Recover("operation.name")
func Recover(op string) {
	if r := recover(); r != nil {
		ReportPanic(&PanicError{
			Op:         op,
			Value:      r,
			StackTrace: CaptureStack(),
			Timestamp:  time.Now(),
		})
	}
}

// RecoverNode is like Recover but scoped to one component, reporting through
// rep and then calling callback with the panic value.
// Usage: defer errors.RecoverNode(rep, "render.node", id, func(any) { ... })
func RecoverNode(rep Reporter, op, nodeID string, callback func(r any)) {
	if r := recover(); r != nil {
		rep.ReportPanic(&PanicError{
			Op:         op,
			NodeID:     nodeID,
			Value:      r,
			StackTrace: CaptureStack(),
			Timestamp:  time.Now(),
		})
		if callback != nil {
			callback(r)
		}
	}
}

// CaptureStack returns the current call stack as a string.
// It skips the first few frames to exclude the CaptureStack call itself.
func CaptureStack() string {
	const maxDepth = 32
	var pcs [maxDepth]uintptr
	n := runtime.Callers(3, pcs[:])
	if n == 0 {
		return ""
	}

	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		frame, more := frames.Next()
		sb.WriteString(frame.Function)
		sb.WriteString("\n\t")
		sb.WriteString(frame.File)
		sb.WriteString(":")
		sb.WriteString(strconv.Itoa(frame.Line))
		sb.WriteString("\n")
		if !more {
			break
		}
	}
	return sb.String()
}
