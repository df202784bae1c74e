package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures surfaced by the renderer so callers can
// decide between retrying, recreating the swapchain, or shutting down.
type ErrorKind uint8

const (
	KindUnknown ErrorKind = iota
	// KindCapabilityMissing reports a missing layer, extension, GPU or queue family.
	KindCapabilityMissing
	// KindCreation reports a failed creation of any GPU object.
	KindCreation
	// KindAllocation reports a failed memory allocation or a missing memory type.
	KindAllocation
	// KindFrame reports a failed acquire, record, submit or present.
	KindFrame
	// KindSwapchainStale reports an out of date or suboptimal surface.
	KindSwapchainStale
	KindTimeout
	KindCancelled
	KindDeviceLost
)

func (k ErrorKind) String() string {
	switch k {
	case KindCapabilityMissing:
		return "capability missing"
	case KindCreation:
		return "creation failed"
	case KindAllocation:
		return "allocation failed"
	case KindFrame:
		return "frame failed"
	case KindSwapchainStale:
		return "swapchain stale"
	case KindTimeout:
		return "timeout"
	case KindCancelled:
		return "cancelled"
	case KindDeviceLost:
		return "device lost"
	}
	return "unknown"
}

var (
	ErrUnknown            = &Error{Kind: KindUnknown}
	ErrCapabilityMissing  = &Error{Kind: KindCapabilityMissing}
	ErrCreation           = &Error{Kind: KindCreation}
	ErrAllocation         = &Error{Kind: KindAllocation}
	ErrFrame              = &Error{Kind: KindFrame}
	ErrSwapchainStale     = &Error{Kind: KindSwapchainStale}
	ErrTimeout            = &Error{Kind: KindTimeout}
	ErrCancelled          = &Error{Kind: KindCancelled}
	ErrDeviceLost         = &Error{Kind: KindDeviceLost}
	ErrNotInitialized     = errors.New("renderer not initialized")
	ErrInvalidFrameConfig = errors.New("frames in flight must be at least 1")
)

// Error is the error type returned by every renderer operation. Op names the
// operation that failed, e.g. "vkCreateSwapchainKHR" or "frame.acquire".
type Error struct {
	Kind  ErrorKind
	Op    string
	cause error
}

func NewError(kind ErrorKind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, cause: cause}
}

// Errorf builds an Error whose cause is a formatted message.
func Errorf(kind ErrorKind, op string, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, cause: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	switch {
	case e.Op == "" && e.cause == nil:
		return e.Kind.String()
	case e.cause == nil:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	case e.Op == "":
		return fmt.Sprintf("%s: %v", e.Kind, e.cause)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrTimeout)
// holds for every timeout regardless of where it was raised.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
