package failure

import (
	"errors"
	"fmt"
)

// Kind is the closed set of externally visible failure categories.
type Kind int

const (
	KindInternal Kind = iota
	KindMissingObjectKey
	KindDimensionExceeded
	KindObjectNotFound
	KindUnsupportedOutputFormat
	KindAnimatedSourceUnsupported
	KindUnsupportedInputFormat
)

func (k Kind) String() string {
	switch k {
	case KindMissingObjectKey:
		return "missing_object_key"
	case KindDimensionExceeded:
		return "dimension_exceeded"
	case KindObjectNotFound:
		return "object_not_found"
	case KindUnsupportedOutputFormat:
		return "unsupported_output_format"
	case KindAnimatedSourceUnsupported:
		return "animated_source_unsupported"
	case KindUnsupportedInputFormat:
		return "unsupported_input_format"
	default:
		return "internal"
	}
}

// Error attaches a Kind to a failure at the point where it is raised.
type Error struct {
	Kind Kind
	Op   string
	Err  error

	// Set only for KindDimensionExceeded.
	MaxWidth  int
	MaxHeight int
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an error of the given kind. err may be nil.
func New(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// DimensionExceeded reports a resize request above the configured limits.
func DimensionExceeded(maxWidth, maxHeight int) error {
	return &Error{
		Kind:      KindDimensionExceeded,
		Op:        "validate limits",
		MaxWidth:  maxWidth,
		MaxHeight: maxHeight,
	}
}

// KindOf returns the kind of the outermost *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
