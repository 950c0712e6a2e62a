package grading

import "github.com/pkg/errors"

// Kind classifies the business-rule failures the grading service surfaces.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindUnauthorized
	KindNotEnrolled
	KindAlreadySubmitted
	KindNotPublished
	KindOutOfWindow
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotEnrolled:
		return "not_enrolled"
	case KindAlreadySubmitted:
		return "already_submitted"
	case KindNotPublished:
		return "not_published"
	case KindOutOfWindow:
		return "out_of_window"
	}
	return "internal"
}

// Error is a rejection that is reported to the caller verbatim.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

// KindOf returns the Kind carried by err, or KindInternal when err is not a
// grading error.
func KindOf(err error) Kind {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return KindInternal
}

// IsKind reports whether err is a grading error of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func ValidationError(msg string) error { return newError(KindValidation, msg) }
func NotFoundError(msg string) error   { return newError(KindNotFound, msg) }
