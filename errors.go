package gitkit

// Kind tags an Error with one of the categories from spec §7, so
// callers can branch on the kind of failure without string matching.
type Kind int8

// The error kinds named by spec §7.
const (
	KindIO Kind = iota + 1
	KindNotARepository
	KindObjectNotFound
	KindRefNotFound
	KindPathNotFound
	KindInvalidOid
	KindInvalidRefName
	KindInvalidObject
	KindInvalidIndex
	KindTypeMismatch
	KindInvalidUTF8
	KindDecompressionFailed
	KindRefAlreadyExists
	KindCannotDeleteCurrentBranch
	KindEmptyCommit
	KindDirtyWorkingTree
	KindConfigNotFound
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "Io"
	case KindNotARepository:
		return "NotARepository"
	case KindObjectNotFound:
		return "ObjectNotFound"
	case KindRefNotFound:
		return "RefNotFound"
	case KindPathNotFound:
		return "PathNotFound"
	case KindInvalidOid:
		return "InvalidOid"
	case KindInvalidRefName:
		return "InvalidRefName"
	case KindInvalidObject:
		return "InvalidObject"
	case KindInvalidIndex:
		return "InvalidIndex"
	case KindTypeMismatch:
		return "TypeMismatch"
	case KindInvalidUTF8:
		return "InvalidUtf8"
	case KindDecompressionFailed:
		return "DecompressionFailed"
	case KindRefAlreadyExists:
		return "RefAlreadyExists"
	case KindCannotDeleteCurrentBranch:
		return "CannotDeleteCurrentBranch"
	case KindEmptyCommit:
		return "EmptyCommit"
	case KindDirtyWorkingTree:
		return "DirtyWorkingTree"
	case KindConfigNotFound:
		return "ConfigNotFound"
	default:
		return "Unknown"
	}
}

// Error is the single tagged error type exposed by this package (spec
// §7/SPEC_FULL.md §10.2). Every fallible Repository operation that
// fails with a library-level (rather than a raw I/O) cause returns one
// of these, wrapping the underlying sentinel from the package that
// detected it so errors.Is/errors.As keep working against both.
type Error struct {
	kind Kind
	msg  string
	err  error
}

// newError builds an Error, wrapping cause (which may be nil).
func newError(kind Kind, msg string, cause error) *Error {
	return &Error{kind: kind, msg: msg, err: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.err != nil {
		return e.kind.String() + ": " + e.msg + ": " + e.err.Error()
	}
	return e.kind.String() + ": " + e.msg
}

// Unwrap exposes the underlying cause to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.err }

// Kind returns the error's category.
func (e *Error) Kind() Kind { return e.kind }
