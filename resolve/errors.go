package resolve

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoMatchFound        = errors.New("no matching member")
	ErrAmbiguousResolution = errors.New("ambiguous resolution")
	// ErrUnresolvedTypeVariable is only logged: the variable keeps its
	// bound.
	ErrUnresolvedTypeVariable = errors.New("unresolved type variable")
)

// ResolutionError reports a call site that did not resolve to exactly one
// member. It matches its Kind with errors.Is.
type ResolutionError struct {
	Kind       error
	Member     string
	Classes    []string
	Candidates int
}

func (e *ResolutionError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s", e.Kind, e.Member)
	if len(e.Classes) > 0 {
		fmt.Fprintf(&sb, " in %s", strings.Join(e.Classes, ", "))
	}
	if e.Candidates > 0 {
		fmt.Fprintf(&sb, " (%d candidates)", e.Candidates)
	}
	return sb.String()
}

func (e *ResolutionError) Unwrap() error { return e.Kind }
