// Package errors provides the structured, non-fatal error taxonomy used by the
// banner layout engine.
//
// Nothing in the engine returns these errors to abort a render pass. They are
// reported to an [ErrorHandler] and the engine substitutes a default or a
// placeholder, so a failure stays local to the node that caused it.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindConfigurationMissing indicates a device or layout field was absent
	// and a default was substituted.
	KindConfigurationMissing
	// KindGeometryUnavailable indicates a reference box was not yet measured.
	// The transform is skipped and retried on the next pass.
	KindGeometryUnavailable
	// KindImageResolutionFailure indicates every image strategy was exhausted.
	KindImageResolutionFailure
	// KindUnknownComponentType indicates a node whose type the renderer does
	// not know. The node is skipped.
	KindUnknownComponentType
	// KindParsing indicates a malformed configuration value.
	KindParsing
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfigurationMissing:
		return "configuration_missing"
	case KindGeometryUnavailable:
		return "geometry_unavailable"
	case KindImageResolutionFailure:
		return "image_resolution_failure"
	case KindUnknownComponentType:
		return "unknown_component_type"
	case KindParsing:
		return "parsing"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// BannerError represents a structured error raised while laying out or
// rendering a banner.
type BannerError struct {
	// Op is the operation that failed (e.g., "render.Image").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// NodeID is the component id the error is scoped to, if any.
	NodeID string
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *BannerError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("%s [%s] node=%s: %v", e.Op, e.Kind, e.NodeID, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *BannerError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "render.node").
	Op string
	// NodeID is the component being rendered when the panic happened.
	NodeID string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	switch {
	case e.Op != "" && e.NodeID != "":
		return fmt.Sprintf("panic in %s (node %s): %v", e.Op, e.NodeID, e.Value)
	case e.Op != "":
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	default:
		return fmt.Sprintf("panic: %v", e.Value)
	}
}

// ParseError represents a configuration value that could not be parsed.
type ParseError struct {
	// Field is the configuration field being parsed (e.g., "style.width").
	Field string
	// Value is the raw input.
	Value string
	// Reason describes what was expected.
	Reason string
}

func (e *ParseError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot parse %s %q: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("cannot parse %s %q", e.Field, e.Value)
}

// ErrorHandler receives errors reported by the engine.
type ErrorHandler interface {
	// HandleError is called when a non-fatal error occurs.
	HandleError(err *BannerError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
