package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLoad    Phase = "load"    // PE / metadata root loading
	PhaseDecode  Phase = "decode"  // heap and table stream decoding
	PhaseResolve Phase = "resolve" // entity graph resolution
)

// Kind categorizes the error
type Kind string

const (
	KindOutOfBounds        Kind = "out_of_bounds"
	KindMalformedHeap      Kind = "malformed_heap"
	KindInvalidCodedIndex  Kind = "invalid_coded_index"
	KindMissingStream      Kind = "missing_stream"
	KindNotManagedAssembly Kind = "not_managed_assembly"
	KindUnsupportedVersion Kind = "unsupported_version"
	KindInvalidRow         Kind = "invalid_row"
)

// Error is the structured error type used throughout the reader
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Stream string
	Table  string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Stream != "" || e.Table != "" {
		b.WriteString(": ")
		if e.Stream != "" && e.Table != "" {
			b.WriteString("stream ")
			b.WriteString(e.Stream)
			b.WriteString(", table ")
			b.WriteString(e.Table)
		} else if e.Stream != "" {
			b.WriteString("stream ")
			b.WriteString(e.Stream)
		} else {
			b.WriteString("table ")
			b.WriteString(e.Table)
		}
	}

	if e.Detail != "" {
		if e.Stream != "" || e.Table != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Stream sets the metadata stream name
func (b *Builder) Stream(name string) *Builder {
	b.err.Stream = name
	return b
}

// Table sets the metadata table name
func (b *Builder) Table(name string) *Builder {
	b.err.Table = name
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// OutOfBounds creates an out of bounds read error
func OutOfBounds(phase Phase, offset, width, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("read of %d bytes at offset %d exceeds region of %d bytes", width, offset, length),
	}
}

// MalformedHeap creates a malformed heap record error
func MalformedHeap(stream string, offset uint32, detail string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindMalformedHeap,
		Stream: stream,
		Detail: fmt.Sprintf("offset %d: %s", offset, detail),
	}
}

// InvalidCodedIndex creates an invalid coded index error
func InvalidCodedIndex(kind string, raw uint32, detail string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInvalidCodedIndex,
		Detail: fmt.Sprintf("%s value 0x%x: %s", kind, raw, detail),
	}
}

// MissingStream creates a missing required stream error
func MissingStream(name string) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindMissingStream,
		Stream: name,
		Detail: "required stream not present",
	}
}

// NotManagedAssembly creates an error for inputs without CLI metadata
func NotManagedAssembly(detail string) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindNotManagedAssembly,
		Detail: detail,
	}
}

// UnsupportedVersion creates an unsupported format version error
func UnsupportedVersion(detail string, args ...any) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindUnsupportedVersion,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// InvalidRow creates an error for a row index outside its table
func InvalidRow(table string, rid, rows uint32) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindInvalidRow,
		Table:  table,
		Detail: fmt.Sprintf("row %d out of range (table has %d rows)", rid, rows),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
