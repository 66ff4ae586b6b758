package failure

import (
	"errors"
	"net/http"
)

// Problem is the external shape of a classified failure.
type Problem struct {
	Kind   Kind
	Status int
	Body   Body
}

// Body is serialized as the JSON error response.
type Body struct {
	Error     string `json:"error"`
	MaxWidth  int    `json:"maxWidth,omitempty"`
	MaxHeight int    `json:"maxHeight,omitempty"`
}

// Classify maps any failure onto the external taxonomy. Unrecognized
// failures become a 500 whose body never carries the internal message.
func Classify(err error) Problem {
	var fe *Error
	if !errors.As(err, &fe) {
		return internal()
	}

	switch fe.Kind {
	case KindMissingObjectKey:
		return Problem{Kind: fe.Kind, Status: http.StatusBadRequest, Body: Body{Error: "Missing image path"}}
	case KindDimensionExceeded:
		return Problem{Kind: fe.Kind, Status: http.StatusBadRequest, Body: Body{
			Error:     "Image dimensions exceed maximum allowed size",
			MaxWidth:  fe.MaxWidth,
			MaxHeight: fe.MaxHeight,
		}}
	case KindObjectNotFound:
		return Problem{Kind: fe.Kind, Status: http.StatusNotFound, Body: Body{Error: "Image not found"}}
	case KindUnsupportedOutputFormat:
		return Problem{Kind: fe.Kind, Status: http.StatusBadRequest, Body: Body{Error: "Output GIF is not supported"}}
	case KindAnimatedSourceUnsupported:
		return Problem{Kind: fe.Kind, Status: http.StatusBadRequest, Body: Body{
			Error: "Animated GIF is not supported for transformation; only the original can be served",
		}}
	case KindUnsupportedInputFormat:
		return Problem{Kind: fe.Kind, Status: http.StatusBadRequest, Body: Body{Error: "Unsupported image format"}}
	default:
		return internal()
	}
}

func internal() Problem {
	return Problem{
		Kind:   KindInternal,
		Status: http.StatusInternalServerError,
		Body:   Body{Error: "Internal server error"},
	}
}
