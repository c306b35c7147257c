package bridge

import (
	"errors"
	"fmt"
	"strings"
)

// Dispatch-layer errors. Each one aborts exactly the invocation it occurs
// in; none is retried and none crashes the process.

// ErrToolNotFound reports an invocation naming a tool absent from the
// operation index.
var ErrToolNotFound = errors.New("tool not found")

// InvalidArgumentsError names the required parameter or body missing from
// the argument bag.
type InvalidArgumentsError struct {
	Name string
}

func (e *InvalidArgumentsError) Error() string {
	return fmt.Sprintf("invalid arguments: missing required parameter %q", e.Name)
}

// UnsupportedContentTypeError reports a request body declared under a
// content type other than application/json. There is no fallback encoding.
type UnsupportedContentTypeError struct {
	ContentTypes []string
}

func (e *UnsupportedContentTypeError) Error() string {
	if len(e.ContentTypes) == 0 {
		return "unsupported content type: request body declares no content"
	}
	return fmt.Sprintf("unsupported content type: request body accepts only %s", strings.Join(e.ContentTypes, ", "))
}

// UpstreamError wraps a network-level failure reaching the upstream API:
// connection refused, DNS failure, timeout. Distinct from an HTTP error
// status, which is a successful dispatch carrying a failure payload.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream request failed: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
