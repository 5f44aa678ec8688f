package fuzzy

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrNoRuleFired is returned by Compute when the aggregated output set is
	// empty, so the centroid is undefined. It is an outcome, not a fault.
	ErrNoRuleFired = errors.New("fuzzy: no rule fired")

	ErrDanglingTerm        = errors.New("fuzzy: term does not resolve")
	ErrConsequentNotOutput = errors.New("fuzzy: consequent must reference the output variable")
	ErrNoRules             = errors.New("fuzzy: rule set is empty")
	ErrBadUniverse         = errors.New("fuzzy: malformed universe")
	ErrBadMembership       = errors.New("fuzzy: malformed membership function")
	ErrDuplicateName       = errors.New("fuzzy: duplicate name")
	ErrMalformedExpr       = errors.New("fuzzy: malformed antecedent")
	ErrBadWeight           = errors.New("fuzzy: rule weight must be positive")
	ErrMissingInput        = errors.New("fuzzy: missing input")
	ErrUnknownInput        = errors.New("fuzzy: unknown input variable")
)

// ConstructionError reports where a system or simulation failed validation.
// Err wraps one of the sentinel errors above.
type ConstructionError struct {
	Where string
	Err   error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("fuzzy: %s: %v", e.Where, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

func constructionErr(err error, format string, args ...any) error {
	return &ConstructionError{Where: fmt.Sprintf(format, args...), Err: err}
}

// IsConstructionError reports whether err came from Build or NewSimulation validation.
func IsConstructionError(err error) bool {
	var ce *ConstructionError
	return errors.As(err, &ce)
}
